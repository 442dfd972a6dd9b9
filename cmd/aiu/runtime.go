package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/junggyeol4444/aiu/brain"
	"github.com/junggyeol4444/aiu/broadcast"
	"github.com/junggyeol4444/aiu/db"
	"github.com/junggyeol4444/aiu/decision"
	"github.com/junggyeol4444/aiu/ending"
	"github.com/junggyeol4444/aiu/game"
	"github.com/junggyeol4444/aiu/internal/fsstore"
	"github.com/junggyeol4444/aiu/internal/llminspect"
	"github.com/junggyeol4444/aiu/internal/llmutil"
	"github.com/junggyeol4444/aiu/internal/logutil"
	"github.com/junggyeol4444/aiu/internal/retryutil"
	"github.com/junggyeol4444/aiu/internal/statepaths"
	"github.com/junggyeol4444/aiu/llm"
	"github.com/junggyeol4444/aiu/memory"
	"github.com/junggyeol4444/aiu/perception"
	"github.com/junggyeol4444/aiu/streaming"
	"github.com/junggyeol4444/aiu/voice"
)

const (
	titleTimeout      = 15 * time.Second
	streamStopTimeout = 5 * time.Second
)

// runtime is the assembled broadcaster: every long-lived component the
// subcommands share. Feeds outlive individual sessions so chat and events
// keep queueing between broadcasts.
type runtime struct {
	logger  *slog.Logger
	client  llm.Client
	speaker *brain.Speaker
	titles  *brain.TitleGenerator

	chat     *perception.ChatFeed
	viewers  *perception.ViewerTracker
	events   *perception.EventFeed
	external *perception.ExternalCollector

	mem      *memory.Store
	decider  *decision.Decider
	synth    voice.Synthesizer
	streamer streaming.Controller
	games    *game.Manager
	keywords *game.KeywordWatcher
	archive  *db.Archive

	inspector *llminspect.PromptInspector
	gate      *broadcast.Gate
}

func newRuntime(logger *slog.Logger) (*runtime, error) {
	client, err := llmutil.ClientFromConfig(llmutil.ConfigFromViper())
	if err != nil {
		return nil, err
	}

	var inspector *llminspect.PromptInspector
	if viper.GetBool("inspect_prompt") {
		inspector, err = llminspect.NewPromptInspector(llminspect.Options{
			Mode:    viper.GetString("broadcast.mode"),
			Model:   llmutil.ModelFromViper(),
			DumpDir: statepaths.DumpDir(),
		})
		if err != nil {
			return nil, err
		}
		client = &llminspect.PromptClient{Base: client, Inspector: inspector}
	}

	speaker := brain.NewSpeaker(client, personaFromViper(), brain.Config{
		Model:       llmutil.ModelFromViper(),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		Log:         logutil.SpeechOptionsFromViper(),
	}, logger)

	// Persona edits made over the API in earlier runs overlay the config.
	var saved brain.Persona
	if ok, err := fsstore.ReadJSON(statepaths.PersonaPath(), &saved); err != nil {
		logger.Warn("persona_load_failed", "error", err.Error())
	} else if ok {
		speaker.UpdatePersona(saved)
	}

	window := viper.GetInt("broadcast.memory_window")
	var mirror memory.Mirror
	if strings.EqualFold(strings.TrimSpace(viper.GetString("memory.backend")), "redis") {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rm, err := memory.NewRedisMirror(ctx, memory.RedisConfig{
			Addr:     viper.GetString("memory.redis.addr"),
			Password: viper.GetString("memory.redis.password"),
			DB:       viper.GetInt("memory.redis.db"),
			Key:      viper.GetString("memory.redis.key"),
			Size:     window,
		})
		cancel()
		if err != nil {
			return nil, fmt.Errorf("memory backend: %w", err)
		}
		mirror = rm
	}
	mem := memory.NewStore(window, mirror, logger)
	if mirror != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := mem.Restore(ctx); err != nil {
			logger.Warn("memory_restore_failed", "error", err.Error())
		}
		cancel()
	}

	var external *perception.ExternalCollector
	if viper.GetString("external.weather.api_key") != "" || viper.GetString("external.news.api_key") != "" {
		external = perception.NewExternalCollector(perception.ExternalConfig{
			WeatherAPIKey: viper.GetString("external.weather.api_key"),
			WeatherCity:   viper.GetString("external.weather.city"),
			NewsAPIKey:    viper.GetString("external.news.api_key"),
			NewsCountry:   viper.GetString("external.news.country"),
			CacheTTL:      viper.GetDuration("external.cache_ttl"),
		}, logger)
	}

	var catalog game.Catalog
	if err := viper.UnmarshalKey("game.catalog", &catalog); err != nil {
		return nil, fmt.Errorf("game.catalog: %w", err)
	}

	keywords := viper.GetStringSlice("game.reaction_keywords")
	if len(keywords) == 0 {
		keywords = game.DefaultReactionKeywords
	}

	var streamer streaming.Controller
	if viper.GetBool("obs.enabled") {
		streamer = streaming.NewOBS(streaming.Config{
			URL:         viper.GetString("obs.url"),
			Password:    viper.GetString("obs.password"),
			LiveScene:   viper.GetString("obs.live_scene"),
			EndingScene: viper.GetString("obs.ending_scene"),
		}, logger)
	} else {
		streamer = streaming.NewNop(logger)
	}

	var archive *db.Archive
	if viper.GetBool("transcript.enabled") {
		cfg := db.DefaultConfig()
		cfg.DSN = statepaths.TranscriptPath()
		gdb, err := db.Open(cfg, logger)
		if err != nil {
			return nil, err
		}
		archive = db.NewArchive(gdb, logger)
	}

	return &runtime{
		logger:   logger,
		client:   client,
		speaker:  speaker,
		titles:   brain.NewTitleGenerator(client, llmutil.ModelFromViper(), logger),
		chat:     perception.NewChatFeed(0),
		viewers:  perception.NewViewerTracker(),
		events:   perception.NewEventFeed(0),
		external: external,
		mem:      mem,
		decider:  decision.NewDecider(speaker, rand.New(rand.NewSource(time.Now().UnixNano())), logger),
		synth:    voice.NewMute(logger),
		streamer: streamer,
		games:    game.NewManager(catalog, logger),
		keywords: game.NewKeywordWatcher(keywords),
		archive:  archive,

		inspector: inspector,
		gate:      broadcast.NewGate(),
	}, nil
}

// Close releases process-lifetime resources. Safe on a partially built
// runtime.
func (rt *runtime) Close() error {
	err := rt.inspector.Close()
	if rt.streamer != nil {
		if cerr := rt.streamer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func personaFromViper() brain.Persona {
	return brain.Persona{
		Name:        viper.GetString("persona.name"),
		Personality: viper.GetString("persona.personality"),
		Style:       viper.GetString("persona.speaking_style"),
		Interests:   viper.GetStringSlice("persona.interests"),
		Catchphrase: viper.GetString("persona.catchphrase"),
		Mood:        viper.GetString("persona.mood"),
		Boundaries:  viper.GetStringSlice("persona.boundaries"),
	}
}

func endingConfigFromViper() ending.Config {
	return ending.Config{
		WindDown:    viper.GetDuration("ending.wind_down"),
		FinalCall:   viper.GetDuration("ending.final_call"),
		GoodbyeHold: viper.GetDuration("ending.goodbye_hold"),
	}
}

type sessionParams struct {
	Mode     string
	Game     string
	Duration time.Duration
}

func (rt *runtime) modeFor(p sessionParams) decision.Mode {
	switch strings.ToLower(strings.TrimSpace(p.Mode)) {
	case "game":
		name := strings.TrimSpace(p.Game)
		if name == "" {
			name = strings.TrimSpace(viper.GetString("broadcast.game"))
		}
		return decision.GameMode{
			GameName: name,
			MinPause: viper.GetDuration("broadcast.game_min_pause"),
			MaxPause: viper.GetDuration("broadcast.game_max_pause"),
		}
	default:
		return decision.TalkMode{
			MinPause: viper.GetDuration("broadcast.min_pause"),
			MaxPause: viper.GetDuration("broadcast.max_pause"),
		}
	}
}

// startBroadcast claims the gate and prepares the session: a second start
// while one is live fails with broadcast.ErrSessionActive. The title is
// settled here so the session is fully described before anyone can
// observe it.
func (rt *runtime) startBroadcast(ctx context.Context, p sessionParams) (*broadcast.Session, error) {
	mode := rt.modeFor(p)
	s := broadcast.NewSession(mode, time.Now(), p.Duration, endingConfigFromViper(), rt.logger)
	if err := rt.gate.Acquire(s); err != nil {
		return nil, err
	}

	tctx, cancel := context.WithTimeout(ctx, titleTimeout)
	s.Title = rt.titles.Generate(tctx, mode.Name(), mode.Game(), rt.speaker.Persona().Name)
	cancel()

	return s, nil
}

// runBroadcast drives an acquired session to completion and releases the
// gate. Stream and game teardown happen even when the loop aborts.
func (rt *runtime) runBroadcast(ctx context.Context, s *broadcast.Session) error {
	defer rt.gate.Release(s)

	if gameName := s.Mode.Game(); gameName != "" {
		if err := rt.games.Start(gameName); err != nil {
			rt.logger.Warn("game_start_failed", "game", gameName, "error", err.Error())
		} else {
			defer rt.games.Stop()
		}
	}

	if rt.archive != nil {
		if err := rt.archive.RecordSession(ctx, s); err != nil {
			rt.logger.Warn("session_record_failed", "error", err.Error())
		}
	}

	// OBS may still be starting up when the session begins; give it a few
	// tries before running dark.
	if err := retryutil.WithRetries(ctx, rt.logger, "stream_connect", 3, 2*time.Second, rt.streamer.Connect); err != nil {
		rt.logger.Warn("stream_connect_failed", "error", err.Error())
	}
	if err := rt.streamer.LiveScene(ctx); err != nil {
		rt.logger.Warn("live_scene_failed", "error", err.Error())
	}
	if err := rt.streamer.StartStream(ctx); err != nil {
		rt.logger.Warn("stream_start_failed", "error", err.Error())
	}

	// The first tick should open with a greeting.
	rt.events.SignalStreamStart()

	agg := perception.NewAggregator(rt.chat, rt.viewers, rt.events, rt.external, s.StartedAt, rt.logger)
	source := &contextSource{agg: agg}
	if s.Mode.Game() != "" {
		source.keywords = rt.keywords
	}

	loop := broadcast.New(broadcast.Deps{
		Source:   source,
		Decider:  rt.decider,
		Memory:   rt.mem,
		Synth:    rt.synth,
		Streamer: &streamOutput{ctrl: rt.streamer, logger: rt.logger},
		Archive:  rt.archiveDep(),
	}, broadcast.Config{
		ErrorBackoff: viper.GetDuration("broadcast.error_backoff"),
	}, rt.logger)

	runErr := loop.Run(ctx, s)

	stopCtx, cancel := context.WithTimeout(context.Background(), streamStopTimeout)
	defer cancel()
	if err := rt.streamer.StopStream(stopCtx); err != nil {
		rt.logger.Warn("stream_stop_failed", "error", err.Error())
	}

	return runErr
}

// RunSession is the schedule.Runner hook: one configured-mode broadcast of
// the given length.
func (rt *runtime) RunSession(ctx context.Context, duration time.Duration) error {
	s, err := rt.startBroadcast(ctx, sessionParams{
		Mode:     viper.GetString("broadcast.mode"),
		Game:     viper.GetString("broadcast.game"),
		Duration: duration,
	})
	if err != nil {
		return err
	}
	return rt.runBroadcast(ctx, s)
}

func (rt *runtime) archiveDep() broadcast.Archive {
	if rt.archive == nil {
		return nil
	}
	return rt.archive
}

// contextSource adapts the per-session aggregator for the loop, folding
// game-keyword reactions into the same tick's events during game
// broadcasts.
type contextSource struct {
	agg      *perception.Aggregator
	keywords *game.KeywordWatcher
}

func (s *contextSource) Poll(ctx context.Context) perception.Snapshot {
	snap := s.agg.Poll(ctx)
	if s.keywords != nil {
		snap.Events = append(snap.Events, s.keywords.Detect(snap.FreshChat)...)
	}
	return snap
}

// streamOutput is the loop's Streamer. There is no local playback device
// wired yet, so finished audio is dropped after logging; the ending scene
// goes to the stream controller.
type streamOutput struct {
	ctrl   streaming.Controller
	logger *slog.Logger
}

func (o *streamOutput) PlayAudio(ctx context.Context, audio voice.Audio) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.logger.Debug("audio_dropped",
		"samples", len(audio.Samples),
		"sample_rate", audio.SampleRate,
	)
	return nil
}

func (o *streamOutput) EndingScene(ctx context.Context) error {
	return o.ctrl.EndingScene(ctx)
}

// drawSessionDuration picks a session length between the configured
// minimum and maximum minutes.
func drawSessionDuration() time.Duration {
	min := viper.GetInt("broadcast.duration_min")
	max := viper.GetInt("broadcast.duration_max")
	if min <= 0 {
		min = 1
	}
	if max < min {
		max = min
	}
	return time.Duration(min+rand.Intn(max-min+1)) * time.Minute
}
