package auth

import (
	"context"
	"errors"

	"github.com/yourname/sleepwell/internal"
	"github.com/yourname/sleepwell/internal/storage"
)

var ErrUserNotFound = errors.New("auth: user not found")

// Provider resolves a bearer token to the user it was issued for.
type Provider interface {
	Authenticate(ctx context.Context, token string) (*internal.User, error)
}

// JWTProvider verifies access tokens and loads the user from storage.
type JWTProvider struct {
	tokens *TokenIssuer
	users  storage.UserRepository
	logger internal.Logger
}

func NewJWTProvider(tokens *TokenIssuer, users storage.UserRepository, logger internal.Logger) *JWTProvider {
	return &JWTProvider{tokens: tokens, users: users, logger: logger}
}

func (p *JWTProvider) Authenticate(ctx context.Context, token string) (*internal.User, error) {
	claims, err := p.tokens.Parse(token, AccessToken)
	if err != nil {
		p.logger.Debugf("rejected token: %v", err)
		return nil, err
	}
	id, _ := claims.UserID()
	user, err := p.users.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		p.logger.Warnf("token for unknown user %d", id)
		return nil, ErrUserNotFound
	}
	if err != nil {
		p.logger.Errorf("failed to load user %d: %v", id, err)
		return nil, err
	}
	return user, nil
}

var _ Provider = (*JWTProvider)(nil)
