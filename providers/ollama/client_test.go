package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/junggyeol4444/aiu/llm"
)

func TestChatSendsOptionsAndDecodesResult(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message":           map[string]string{"role": "assistant", "content": "안녕하세요!"},
			"done":              true,
			"prompt_eval_count": 12,
			"eval_count":        7,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	res, err := c.Chat(context.Background(), llm.Request{
		Model: "llama3.1",
		Messages: []llm.Message{
			llm.System("persona"),
			llm.User("situation"),
		},
		Parameters: map[string]any{"temperature": 0.8, "num_predict": 300},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if res.Text != "안녕하세요!" {
		t.Errorf("Text = %q", res.Text)
	}
	if res.Usage.TotalTokens != 19 {
		t.Errorf("TotalTokens = %d, want 19", res.Usage.TotalTokens)
	}
	if got.Stream {
		t.Error("stream should be false")
	}
	if got.Model != "llama3.1" {
		t.Errorf("model = %q", got.Model)
	}
	if got.Options["temperature"] != 0.8 {
		t.Errorf("options.temperature = %v", got.Options["temperature"])
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != llm.RoleSystem {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestChatSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "model 'missing' not found"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Chat(context.Background(), llm.Request{Model: "missing"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "ollama http 404") || !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v", err)
	}
}

func TestChatForceJSONSetsFormat(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "{}"},
			"done":    true,
		})
	}))
	defer srv.Close()

	if _, err := New(srv.URL).Chat(context.Background(), llm.Request{Model: "m", ForceJSON: true}); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if got.Format != "json" {
		t.Errorf("format = %q, want json", got.Format)
	}
}

func TestNewDefaultsBaseURL(t *testing.T) {
	c := New("")
	if c.BaseURL != "http://localhost:11434" {
		t.Errorf("BaseURL = %q", c.BaseURL)
	}
	c = New("http://example.com/")
	if c.BaseURL != "http://example.com" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", c.BaseURL)
	}
}
