package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/sleepwell/internal"
	"github.com/yourname/sleepwell/internal/storage"
)

func TestJWTProvider_Authenticate(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewMemoryStore(ctx, internal.NewNopLogger())
	require.NoError(t, err)
	defer store.Close()

	user := &internal.User{Email: "a@example.com", PasswordHash: "x", Name: "Al"}
	require.NoError(t, store.CreateUser(ctx, user))

	tokens := NewTokenIssuer("secret", time.Minute, time.Hour)
	p := NewJWTProvider(tokens, store, internal.NewNopLogger())

	access, refresh, err := tokens.IssuePair(user.ID, user.Email)
	require.NoError(t, err)

	got, err := p.Authenticate(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = p.Authenticate(ctx, refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	ghost, err := tokens.Issue(user.ID+100, "ghost@example.com", AccessToken)
	require.NoError(t, err)
	_, err = p.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
