package llmutil

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/junggyeol4444/aiu/llm"
	ollamaProvider "github.com/junggyeol4444/aiu/providers/ollama"
	openaiProvider "github.com/junggyeol4444/aiu/providers/openai"
	"github.com/spf13/viper"
)

type ClientConfig struct {
	Provider       string
	Endpoint       string
	APIKey         string
	Model          string
	RequestTimeout time.Duration
}

func ProviderFromViper() string {
	return strings.TrimSpace(viper.GetString("llm.provider"))
}

func EndpointFromViper() string {
	return strings.TrimSpace(viper.GetString("llm.endpoint"))
}

func APIKeyFromViper() string {
	return strings.TrimSpace(viper.GetString("llm.api_key"))
}

func ModelFromViper() string {
	return strings.TrimSpace(viper.GetString("llm.model"))
}

func ConfigFromViper() ClientConfig {
	return ClientConfig{
		Provider:       ProviderFromViper(),
		Endpoint:       EndpointFromViper(),
		APIKey:         APIKeyFromViper(),
		Model:          ModelFromViper(),
		RequestTimeout: viper.GetDuration("llm.request_timeout"),
	}
}

func ClientFromConfig(cfg ClientConfig) (llm.Client, error) {
	switch normalizeProvider(cfg.Provider) {
	case "ollama":
		c := ollamaProvider.New(cfg.Endpoint)
		if cfg.RequestTimeout > 0 {
			c.HTTP = &http.Client{Timeout: cfg.RequestTimeout}
		}
		return c, nil
	case "openai":
		c := openaiProvider.New(cfg.Endpoint, cfg.APIKey)
		if cfg.RequestTimeout > 0 {
			c.HTTP = &http.Client{Timeout: cfg.RequestTimeout}
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown llm.provider: %s (expected ollama|openai)", cfg.Provider)
	}
}

func normalizeProvider(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return "ollama"
	}
	return provider
}
