package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	// Language model (used by speech generation and titles).
	viper.SetDefault("llm.provider", "ollama")
	viper.SetDefault("llm.endpoint", "http://127.0.0.1:11434")
	viper.SetDefault("llm.model", "llama3.1")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.request_timeout", 90*time.Second)
	viper.SetDefault("llm.temperature", 0.8)
	viper.SetDefault("llm.max_tokens", 300)

	// Global
	viper.SetDefault("file_state_dir", "~/.aiu")

	// Persona overrides; empty fields keep the built-in identity.
	viper.SetDefault("persona.name", "")
	viper.SetDefault("persona.personality", "")
	viper.SetDefault("persona.speaking_style", "")
	viper.SetDefault("persona.interests", []string{})
	viper.SetDefault("persona.catchphrase", "")
	viper.SetDefault("persona.mood", "")
	viper.SetDefault("persona.boundaries", []string{})

	// Broadcast loop
	viper.SetDefault("broadcast.mode", "talk")
	viper.SetDefault("broadcast.game", "")
	viper.SetDefault("broadcast.memory_window", 50)
	viper.SetDefault("broadcast.min_pause", 1*time.Second)
	viper.SetDefault("broadcast.max_pause", 5*time.Second)
	viper.SetDefault("broadcast.game_min_pause", 3*time.Second)
	viper.SetDefault("broadcast.game_max_pause", 10*time.Second)
	viper.SetDefault("broadcast.error_backoff", 5*time.Second)
	viper.SetDefault("broadcast.duration_min", 360)
	viper.SetDefault("broadcast.duration_max", 420)

	// Wind-down
	viper.SetDefault("ending.wind_down", 15*time.Minute)
	viper.SetDefault("ending.final_call", 5*time.Minute)
	viper.SetDefault("ending.goodbye_hold", 30*time.Second)

	// Weekly schedule
	viper.SetDefault("schedule.windows", []map[string]any{})
	viper.SetDefault("schedule.timezone", "Local")
	viper.SetDefault("schedule.grace", 2*time.Minute)

	// Conversation memory
	viper.SetDefault("memory.backend", "memory")
	viper.SetDefault("memory.redis.addr", "127.0.0.1:6379")
	viper.SetDefault("memory.redis.password", "")
	viper.SetDefault("memory.redis.db", 0)
	viper.SetDefault("memory.redis.key", "aiu:history")

	// Transcript archive
	viper.SetDefault("transcript.enabled", true)
	viper.SetDefault("transcript.path", "")

	// OBS
	viper.SetDefault("obs.enabled", false)
	viper.SetDefault("obs.url", "ws://127.0.0.1:4455")
	viper.SetDefault("obs.password", "")
	viper.SetDefault("obs.live_scene", "Live")
	viper.SetDefault("obs.ending_scene", "Ending")

	// External facts
	viper.SetDefault("external.weather.api_key", "")
	viper.SetDefault("external.weather.city", "Seoul")
	viper.SetDefault("external.news.api_key", "")
	viper.SetDefault("external.news.country", "kr")
	viper.SetDefault("external.cache_ttl", 5*time.Minute)

	// Games
	viper.SetDefault("game.catalog", []map[string]any{})
	viper.SetDefault("game.reaction_keywords", []string{})

	// Control server
	viper.SetDefault("server.bind", "127.0.0.1")
	viper.SetDefault("server.port", 8787)
}
