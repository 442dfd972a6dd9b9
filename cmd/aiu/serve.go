package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/junggyeol4444/aiu/brain"
	"github.com/junggyeol4444/aiu/broadcast"
	"github.com/junggyeol4444/aiu/internal/configutil"
	"github.com/junggyeol4444/aiu/internal/fsstore"
	"github.com/junggyeol4444/aiu/internal/logutil"
	"github.com/junggyeol4444/aiu/internal/outputfmt"
	"github.com/junggyeol4444/aiu/internal/statepaths"
	"github.com/junggyeol4444/aiu/perception"
)

// StartBroadcastRequest is the JSON body of POST /v1/broadcast/start.
type StartBroadcastRequest struct {
	Mode            string `json:"mode,omitempty"`
	Game            string `json:"game,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

// ChatRequest is the JSON body of POST /v1/chat.
type ChatRequest struct {
	Username string `json:"username"`
	Text     string `json:"text"`
	Platform string `json:"platform,omitempty"`
}

// EventRequest is the JSON body of POST /v1/events.
type EventRequest struct {
	Type     string  `json:"type"`
	Username string  `json:"username,omitempty"`
	Amount   float64 `json:"amount,omitempty"`
	Months   int     `json:"months,omitempty"`
	Text     string  `json:"text,omitempty"`
}

// ViewersRequest is the JSON body of PUT /v1/viewers.
type ViewersRequest struct {
	Count int `json:"count"`
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the control API over HTTP",
		Long:  "Expose broadcast control, chat and event ingestion, persona editing, and transcript queries as a local HTTP API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			bind := strings.TrimSpace(configutil.FlagOrViperString(cmd, "server-bind", "server.bind"))
			if bind == "" {
				bind = "127.0.0.1"
			}
			port := configutil.FlagOrViperInt(cmd, "server-port", "server.port")
			if port <= 0 {
				port = 8787
			}
			auth := strings.TrimSpace(configutil.FlagOrViperString(cmd, "server-auth-token", "server.auth_token"))
			if auth == "" {
				return fmt.Errorf("missing auth token: set --server-auth-token or AIU_SERVER_AUTH_TOKEN")
			}

			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			rt, err := newRuntime(logger)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !configutil.FlagOrViperBool(cmd, "skip-check", "") {
				if err := capabilityCheck(ctx, rt.client, logger); err != nil {
					return err
				}
			}

			// Sessions outlive the request that started them; they stop on
			// process shutdown, not when the start request disconnects.
			sessionCtx, cancelSessions := context.WithCancel(context.Background())
			defer cancelSessions()
			var sessions sync.WaitGroup

			mux := http.NewServeMux()
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"ok":   true,
					"time": time.Now().Format(time.RFC3339Nano),
				})
			})
			mux.HandleFunc("/v1/broadcast/start", func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
					return
				}
				if !checkAuth(r, auth) {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				var req StartBroadcastRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					http.Error(w, "invalid json", http.StatusBadRequest)
					return
				}
				mode := strings.ToLower(strings.TrimSpace(req.Mode))
				if mode == "" {
					mode = strings.ToLower(strings.TrimSpace(viper.GetString("broadcast.mode")))
				}
				if mode != "talk" && mode != "game" {
					http.Error(w, "mode must be talk or game", http.StatusBadRequest)
					return
				}
				duration := drawSessionDuration()
				if req.DurationMinutes > 0 {
					duration = time.Duration(req.DurationMinutes) * time.Minute
				}

				s, err := rt.startBroadcast(sessionCtx, sessionParams{
					Mode:     mode,
					Game:     req.Game,
					Duration: duration,
				})
				if err != nil {
					if errors.Is(err, broadcast.ErrSessionActive) {
						http.Error(w, "a session is already live", http.StatusConflict)
						return
					}
					http.Error(w, outputfmt.FormatErrorForDisplay(err), http.StatusInternalServerError)
					return
				}
				sessions.Add(1)
				go func() {
					defer sessions.Done()
					if err := rt.runBroadcast(sessionCtx, s); err != nil && sessionCtx.Err() == nil {
						logger.Warn("broadcast_session_failed", "session_id", s.ID, "error", err.Error())
					}
				}()
				_ = json.NewEncoder(w).Encode(map[string]any{
					"session_id":     s.ID,
					"title":          s.Title,
					"mode":           s.Mode.Name(),
					"game":           s.Mode.Game(),
					"started_at":     s.StartedAt.Format(time.RFC3339),
					"planned_end_at": s.PlannedEndAt.Format(time.RFC3339),
				})
			})
			mux.HandleFunc("/v1/broadcast/stop", func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
					return
				}
				if !checkAuth(r, auth) {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				s := rt.gate.Current()
				if s == nil {
					http.Error(w, "no live session", http.StatusConflict)
					return
				}
				s.Ending.RequestStop()
				_ = json.NewEncoder(w).Encode(map[string]any{
					"session_id": s.ID,
					"stopping":   true,
				})
			})
			mux.HandleFunc("/v1/broadcast/status", func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
					return
				}
				if !checkAuth(r, auth) {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				s := rt.gate.Current()
				if s == nil {
					_ = json.NewEncoder(w).Encode(map[string]any{"live": false})
					return
				}
				_ = json.NewEncoder(w).Encode(map[string]any{
					"live":           true,
					"session_id":     s.ID,
					"title":          s.Title,
					"mode":           s.Mode.Name(),
					"game":           s.Mode.Game(),
					"stage":          s.Ending.Stage().String(),
					"started_at":     s.StartedAt.Format(time.RFC3339),
					"planned_end_at": s.PlannedEndAt.Format(time.RFC3339),
					"elapsed":        s.Elapsed(time.Now()).Round(time.Second).String(),
					"viewers":        rt.viewers.Count(),
					"stream":         rt.streamer.Status(r.Context()),
				})
			})
			mux.HandleFunc("/v1/chat", func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
					return
				}
				if !checkAuth(r, auth) {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				var req ChatRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					http.Error(w, "invalid json", http.StatusBadRequest)
					return
				}
				req.Username = strings.TrimSpace(req.Username)
				req.Text = strings.TrimSpace(req.Text)
				if req.Username == "" {
					http.Error(w, "missing username", http.StatusBadRequest)
					return
				}
				if req.Text == "" {
					http.Error(w, "missing text", http.StatusBadRequest)
					return
				}
				rt.chat.Push(perception.ChatMessage{
					Username:  req.Username,
					Text:      req.Text,
					Platform:  req.Platform,
					Timestamp: time.Now(),
				})
				w.WriteHeader(http.StatusAccepted)
				_ = json.NewEncoder(w).Encode(map[string]any{"accepted": true})
			})
			mux.HandleFunc("/v1/events", func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
					return
				}
				if !checkAuth(r, auth) {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				var req EventRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					http.Error(w, "invalid json", http.StatusBadRequest)
					return
				}
				switch strings.ToLower(strings.TrimSpace(req.Type)) {
				case perception.EventDonation:
					rt.events.AddDonation(req.Username, req.Amount, req.Text)
				case perception.EventSubscription:
					rt.events.AddSubscription(req.Username, req.Months)
				case perception.EventFollow:
					rt.events.AddFollow(req.Username)
				case perception.EventRaid:
					rt.events.Push(perception.Event{
						Type:     perception.EventRaid,
						Username: req.Username,
						Amount:   req.Amount,
						Text:     req.Text,
					})
				default:
					http.Error(w, "unknown event type", http.StatusBadRequest)
					return
				}
				w.WriteHeader(http.StatusAccepted)
				_ = json.NewEncoder(w).Encode(map[string]any{"accepted": true})
			})
			mux.HandleFunc("/v1/viewers", func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPut {
					http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
					return
				}
				if !checkAuth(r, auth) {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				var req ViewersRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					http.Error(w, "invalid json", http.StatusBadRequest)
					return
				}
				if req.Count < 0 {
					http.Error(w, "count must not be negative", http.StatusBadRequest)
					return
				}
				rt.viewers.Set(req.Count)
				_ = json.NewEncoder(w).Encode(map[string]any{"count": req.Count})
			})
			mux.HandleFunc("/v1/persona", func(w http.ResponseWriter, r *http.Request) {
				if !checkAuth(r, auth) {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				switch r.Method {
				case http.MethodGet:
					_ = json.NewEncoder(w).Encode(rt.speaker.Persona())
				case http.MethodPut:
					var p brain.Persona
					if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
						http.Error(w, "invalid json", http.StatusBadRequest)
						return
					}
					updated := rt.speaker.UpdatePersona(p)
					if err := fsstore.WriteJSONAtomic(statepaths.PersonaPath(), updated, fsstore.FileOptions{}); err != nil {
						logger.Warn("persona_save_failed", "error", err.Error())
					}
					_ = json.NewEncoder(w).Encode(updated)
				default:
					http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				}
			})
			mux.HandleFunc("/v1/memory", func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
					return
				}
				if !checkAuth(r, auth) {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				entries := rt.mem.Snapshot()
				_ = json.NewEncoder(w).Encode(map[string]any{
					"count":   len(entries),
					"entries": entries,
				})
			})
			mux.HandleFunc("/v1/transcript/", func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
					return
				}
				if !checkAuth(r, auth) {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				if rt.archive == nil {
					http.Error(w, "transcript archive is not enabled", http.StatusBadRequest)
					return
				}
				id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/transcript/"), "/")
				if id == "" {
					http.Error(w, "missing session id", http.StatusBadRequest)
					return
				}
				sess, found, err := rt.archive.Session(r.Context(), id)
				if err != nil {
					http.Error(w, outputfmt.FormatErrorForDisplay(err), http.StatusInternalServerError)
					return
				}
				if !found {
					http.Error(w, "unknown session", http.StatusNotFound)
					return
				}
				lines, err := rt.archive.SessionLines(r.Context(), id)
				if err != nil {
					http.Error(w, outputfmt.FormatErrorForDisplay(err), http.StatusInternalServerError)
					return
				}
				_ = json.NewEncoder(w).Encode(map[string]any{
					"session": sess,
					"lines":   lines,
				})
			})
			mux.HandleFunc("/v1/sessions", func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
					return
				}
				if !checkAuth(r, auth) {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				if rt.archive == nil {
					http.Error(w, "transcript archive is not enabled", http.StatusBadRequest)
					return
				}
				limit := 0
				if raw := r.URL.Query().Get("limit"); raw != "" {
					limit, _ = strconv.Atoi(raw)
				}
				rows, err := rt.archive.Sessions(r.Context(), limit)
				if err != nil {
					http.Error(w, outputfmt.FormatErrorForDisplay(err), http.StatusInternalServerError)
					return
				}
				_ = json.NewEncoder(w).Encode(map[string]any{"sessions": rows})
			})

			addr := bind + ":" + strconv.Itoa(port)
			srv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			logger.Info("server_start", "addr", addr)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			// Stop taking requests first, then end the live session so it can
			// say goodbye and close its transcript before the process exits.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			cancelSessions()
			sessions.Wait()
			logger.Info("server_stopped")
			return nil
		},
	}

	cmd.Flags().String("server-bind", "127.0.0.1", "Bind address (default: 127.0.0.1).")
	cmd.Flags().Int("server-port", 8787, "HTTP port to listen on.")
	cmd.Flags().String("server-auth-token", "", "Bearer token required for all non-/health endpoints.")
	cmd.Flags().Bool("skip-check", false, "Skip the model availability check at startup")

	return cmd
}

func checkAuth(r *http.Request, token string) bool {
	got := strings.TrimSpace(r.Header.Get("Authorization"))
	want := "Bearer " + strings.TrimSpace(token)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
