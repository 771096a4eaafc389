// Package llm wraps the hosted chat-completion APIs the insight pipeline calls.
package llm

import (
	"context"
	"errors"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Options tune one completion. Zero values fall back to the client defaults.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

const (
	DefaultMaxTokens   = 500
	DefaultTemperature = 0.7
)

var (
	ErrNotConfigured   = errors.New("llm: provider not configured")
	ErrEmptyCompletion = errors.New("llm: empty completion")
)

// Completer produces the assistant reply to a conversation.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

func (o Options) withDefaults(model string) Options {
	if o.Model == "" {
		o.Model = model
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.Temperature == 0 {
		o.Temperature = DefaultTemperature
	}
	return o
}

// unavailable answers every call with ErrNotConfigured so the server can
// run without LLM credentials.
type unavailable struct{ provider string }

func (u unavailable) Complete(context.Context, []Message, Options) (string, error) {
	return "", errors.Join(ErrNotConfigured, errors.New(u.provider+" API key is not set"))
}
