package llmutil

import (
	"testing"
	"time"

	ollamaProvider "github.com/junggyeol4444/aiu/providers/ollama"
	openaiProvider "github.com/junggyeol4444/aiu/providers/openai"
)

func TestClientFromConfigProviders(t *testing.T) {
	c, err := ClientFromConfig(ClientConfig{Provider: "ollama", Endpoint: "http://localhost:11434"})
	if err != nil {
		t.Fatalf("ollama: %v", err)
	}
	if _, ok := c.(*ollamaProvider.Client); !ok {
		t.Errorf("ollama client type = %T", c)
	}

	c, err = ClientFromConfig(ClientConfig{Provider: "openai", APIKey: "sk"})
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if _, ok := c.(*openaiProvider.Client); !ok {
		t.Errorf("openai client type = %T", c)
	}

	// Empty provider defaults to ollama.
	c, err = ClientFromConfig(ClientConfig{})
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if _, ok := c.(*ollamaProvider.Client); !ok {
		t.Errorf("default client type = %T", c)
	}

	if _, err := ClientFromConfig(ClientConfig{Provider: "bedrock"}); err == nil {
		t.Error("unknown provider accepted")
	}
}

func TestClientFromConfigTimeout(t *testing.T) {
	c, err := ClientFromConfig(ClientConfig{Provider: "ollama", RequestTimeout: 5 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	oc := c.(*ollamaProvider.Client)
	if oc.HTTP.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", oc.HTTP.Timeout)
	}
}
