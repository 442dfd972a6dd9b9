package llminspect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/junggyeol4444/aiu/llm"
)

type Options struct {
	Mode            string
	Model           string
	TimestampFormat string
	DumpDir         string
}

// PromptInspector writes every generation request and reply of a broadcast
// to one markdown file, for persona and prompt tuning. One file per run.
type PromptInspector struct {
	mu           sync.Mutex
	file         *os.File
	startedAt    time.Time
	mode         string
	model        string
	requestCount int
}

func NewPromptInspector(opts Options) (*PromptInspector, error) {
	startedAt := time.Now()
	dumpDir := strings.TrimSpace(opts.DumpDir)
	if dumpDir == "" {
		dumpDir = "dump"
	}
	if err := os.MkdirAll(dumpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create dump dir: %w", err)
	}
	path := filepath.Join(dumpDir, buildFilename("prompt", opts.Mode, startedAt, opts.TimestampFormat))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open prompt dump file: %w", err)
	}
	inspector := &PromptInspector{
		file:      file,
		startedAt: startedAt,
		mode:      strings.TrimSpace(opts.Mode),
		model:     strings.TrimSpace(opts.Model),
	}
	if err := inspector.writeHeader(); err != nil {
		_ = file.Close()
		return nil, err
	}
	return inspector, nil
}

func (p *PromptInspector) Close() error {
	if p == nil || p.file == nil {
		return nil
	}
	return p.file.Close()
}

// Dump records one request's messages and, once known, its reply.
func (p *PromptInspector) Dump(messages []llm.Message) error {
	if p == nil || p.file == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requestCount++
	var b strings.Builder
	fmt.Fprintf(&b, "\n## Request #%d\n\n", p.requestCount)
	for i, msg := range messages {
		fmt.Fprintf(&b, "### Message #%d-%d\n\n", p.requestCount, i+1)
		b.WriteString("```\n")
		fmt.Fprintf(&b, "role: %s\n\n", msg.Role)
		fmt.Fprintf(&b, "content: %s\n", msg.Content)
		b.WriteString("```\n\n")
	}

	if _, err := p.file.WriteString(b.String()); err != nil {
		return err
	}
	return p.file.Sync()
}

// DumpReply appends the model's answer for the most recent request.
func (p *PromptInspector) DumpReply(text string) error {
	if p == nil || p.file == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "### Reply #%d\n\n", p.requestCount)
	b.WriteString("```\n")
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n\n")

	if _, err := p.file.WriteString(b.String()); err != nil {
		return err
	}
	return p.file.Sync()
}

func (p *PromptInspector) writeHeader() error {
	header := fmt.Sprintf(
		"---\nmode: %s\nmodel: %s\ndatetime: %s\n---\n\n",
		strconv.Quote(p.mode),
		strconv.Quote(p.model),
		strconv.Quote(p.startedAt.Format(time.RFC3339)),
	)
	if _, err := p.file.WriteString(header); err != nil {
		return err
	}
	return p.file.Sync()
}

// PromptClient wraps a client and dumps its traffic through the inspector.
// Dump failures fail the call; a broken dump during an inspection run is
// worse than a dropped utterance.
type PromptClient struct {
	Base      llm.Client
	Inspector *PromptInspector
}

func (c *PromptClient) Chat(ctx context.Context, req llm.Request) (llm.Result, error) {
	if c == nil || c.Base == nil {
		return llm.Result{}, fmt.Errorf("inspect client is not initialized")
	}
	if c.Inspector != nil {
		if err := c.Inspector.Dump(req.Messages); err != nil {
			return llm.Result{}, err
		}
	}
	res, err := c.Base.Chat(ctx, req)
	if err == nil && c.Inspector != nil {
		_ = c.Inspector.DumpReply(res.Text)
	}
	return res, err
}

func buildFilename(kind string, mode string, t time.Time, tsFormat string) string {
	mode = strings.TrimSpace(mode)
	if tsFormat == "" {
		tsFormat = "20060102_1504"
	}
	ts := t.Format(tsFormat)
	if mode == "" {
		return fmt.Sprintf("%s_%s.md", kind, ts)
	}
	return fmt.Sprintf("%s_%s_%s.md", kind, mode, ts)
}
