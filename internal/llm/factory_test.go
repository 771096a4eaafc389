package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/sleepwell/internal"
	"github.com/yourname/sleepwell/internal/config"
)

func TestNew(t *testing.T) {
	ctx := context.Background()
	logger := internal.NewNopLogger()

	c, err := New(ctx, &config.Config{LLMProvider: "openai"}, logger)
	require.NoError(t, err)
	_, err = c.Complete(ctx, nil, Options{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	c, err = New(ctx, &config.Config{LLMProvider: "gemini"}, logger)
	require.NoError(t, err)
	assert.IsType(t, unavailable{}, c)

	c, err = New(ctx, &config.Config{LLMProvider: "openai", OpenAIKey: "sk-test"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	_, err = New(ctx, &config.Config{LLMProvider: "llama"}, logger)
	assert.Error(t, err)
}
