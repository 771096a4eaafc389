package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yourname/sleepwell/internal"
	"google.golang.org/genai"
)

// GeminiClient calls Models.GenerateContent. System messages become the
// system instruction; assistant turns map to the model role.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  internal.Logger
}

func NewGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration, logger internal.Logger) (*GeminiClient, error) {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create genai client: %w", err)
	}
	return &GeminiClient{client: client, model: model, timeout: timeout, logger: logger}, nil
}

func (g *GeminiClient) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	opts = opts.withDefaults(g.model)
	if _, ok := ctx.Deadline(); !ok && g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	system, contents := toGeminiContents(messages)
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(opts.Temperature)),
		MaxOutputTokens: int32(opts.MaxTokens),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, opts.Model, contents, cfg)
	if err != nil {
		g.logger.Errorf("llm: gemini completion failed after %v: %v", time.Since(start), err)
		return "", fmt.Errorf("llm: gemini generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyCompletion
	}
	g.logger.Debugf("llm: gemini completion model=%s in %v len=%d", opts.Model, time.Since(start), len(text))
	return text, nil
}

func toGeminiContents(messages []Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n\n"), contents
}

var _ Completer = (*GeminiClient)(nil)
