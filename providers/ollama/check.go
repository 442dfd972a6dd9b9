package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Check verifies the model server is reachable and, when model is
// non-empty, that the model is installed. Meant to run once at startup
// before any session is opened.
func (c *Client) Check(ctx context.Context, model string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/tags", nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return fmt.Errorf("ollama unreachable at %s: %w", c.BaseURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ollama http %d: %s", resp.StatusCode, string(raw))
	}

	model = strings.TrimSpace(model)
	if model == "" {
		return nil
	}

	var out tagsResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("ollama decode tags: %w", err)
	}
	for _, m := range out.Models {
		if m.Name == model || strings.HasPrefix(m.Name, model+":") {
			return nil
		}
	}
	return fmt.Errorf("model %q not installed (try: ollama pull %s)", model, model)
}
