// Package game runs the game side of a game-mode broadcast: launching and
// stopping the configured game process, and spotting game talk in chat so
// the commentary can react to it.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

// ErrAlreadyRunning reports a second launch while a game process is up.
var ErrAlreadyRunning = errors.New("game: a game is already running")

// stopGraceDefault is how long Stop waits after SIGTERM before killing the
// process group.
const stopGraceDefault = 10 * time.Second

// Game is one catalog entry. An empty Command means the game is started by
// hand and only tracked by name.
type Game struct {
	Name    string   `json:"name"`
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Catalog is the set of games the streamer may play.
type Catalog []Game

// Find returns the entry matching name, case-insensitively.
func (c Catalog) Find(name string) (Game, bool) {
	for _, g := range c {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return Game{}, false
}

// Manager owns the lifecycle of the current game's process. Launched games
// get their own process group so Stop can take down children too.
type Manager struct {
	catalog   Catalog
	logger    *slog.Logger
	stopGrace time.Duration

	mu      sync.Mutex
	current string
	cmd     *exec.Cmd
	exited  chan struct{}
}

// NewManager returns a manager over the configured catalog. A nil logger
// falls back to the process default.
func NewManager(catalog Catalog, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{catalog: catalog, logger: logger, stopGrace: stopGraceDefault}
}

// Start launches the named game from the catalog. A game without a command
// counts as started by hand and is only tracked.
func (m *Manager) Start(name string) error {
	g, ok := m.catalog.Find(name)
	if !ok {
		return fmt.Errorf("game: %q is not in the catalog", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cmd != nil {
		return ErrAlreadyRunning
	}

	if g.Command == "" {
		m.current = g.Name
		m.logger.Info("game_tracked_manually", "game", g.Name)
		return nil
	}

	cmd := exec.Command(g.Command, g.Args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("game: launch %s: %w", g.Name, err)
	}

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	m.current = g.Name
	m.cmd = cmd
	m.exited = exited
	m.logger.Info("game_started", "game", g.Name, "pid", cmd.Process.Pid)
	return nil
}

// Current returns the tracked game's name, or "" when none.
func (m *Manager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Running reports whether a launched game process is still alive. Manually
// started games always report false.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.exited == nil {
		return false
	}
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

// Stop terminates the launched game's process group, escalating to SIGKILL
// after the grace period, and clears the tracked game.
func (m *Manager) Stop() {
	m.mu.Lock()
	cmd, exited, name := m.cmd, m.exited, m.current
	m.cmd, m.exited, m.current = nil, nil, ""
	m.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return
	}
	select {
	case <-exited:
		return
	default:
	}

	pgid := -cmd.Process.Pid
	_ = syscall.Kill(pgid, syscall.SIGTERM)
	select {
	case <-exited:
	case <-time.After(m.stopGrace):
		_ = syscall.Kill(pgid, syscall.SIGKILL)
		<-exited
	}
	m.logger.Info("game_stopped", "game", name)
}
