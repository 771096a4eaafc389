package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yourname/sleepwell/internal"
	"github.com/yourname/sleepwell/internal/auth"
	"github.com/yourname/sleepwell/internal/storage"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UpdateProfileRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	CurrentPassword *string `json:"current_password,omitempty"`
	NewPassword     *string `json:"new_password,omitempty" validate:"omitempty,password"`
}

type AuthResult struct {
	User         *internal.User `json:"user,omitempty"`
	Token        string         `json:"token"`
	RefreshToken string         `json:"refresh_token"`
}

type AuthService struct {
	users      storage.UserRepository
	tokens     *auth.TokenIssuer
	bcryptCost int
	logger     internal.Logger
}

func NewAuthService(users storage.UserRepository, tokens *auth.TokenIssuer, bcryptCost int, logger internal.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &internal.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, internal.Conflict("A user with this email already exists")
		}
		return nil, err
	}
	s.logger.Infof("registered user %d", user.ID)
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, internal.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, internal.Unauthorized("Invalid email or password")
	}

	now := time.Now().UTC()
	if err := s.users.TouchLogin(ctx, user.ID, now); err != nil {
		s.logger.Warnf("failed to record login for user %d: %v", user.ID, err)
	} else {
		user.LastLoginAt = &now
	}
	return s.issue(user)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, req *RefreshRequest) (*AuthResult, error) {
	if req.RefreshToken == "" {
		return nil, internal.Unauthorized("Refresh token required")
	}
	claims, err := s.tokens.Parse(req.RefreshToken, auth.RefreshToken)
	if err != nil {
		return nil, internal.Unauthorized("Invalid or expired refresh token")
	}
	id, _ := claims.UserID()
	user, err := s.users.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, internal.Unauthorized("User not found")
	}
	if err != nil {
		return nil, err
	}
	res, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	res.User = nil
	return res, nil
}

// UpdateProfile changes name, email or password. A new password needs the current one.
func (s *AuthService) UpdateProfile(ctx context.Context, user *internal.User, req *UpdateProfileRequest) (*internal.User, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	if req.NewPassword != nil {
		if req.CurrentPassword == nil || *req.CurrentPassword == "" {
			return nil, internal.Unauthorized("Current password required to change password")
		}
		if !auth.CheckPassword(user.PasswordHash, *req.CurrentPassword) {
			return nil, internal.Unauthorized("Current password is incorrect")
		}
		hash, err := auth.HashPassword(*req.NewPassword, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			return nil, internal.Conflict("A user with this email already exists")
		case errors.Is(err, storage.ErrNotFound):
			return nil, internal.Unauthorized("User not found")
		}
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the user and, by cascade, all of their data.
func (s *AuthService) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	s.logger.Infof("deleted account %d", userID)
	return nil
}

func (s *AuthService) issue(user *internal.User) (*AuthResult, error) {
	access, refresh, err := s.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: access, RefreshToken: refresh}, nil
}
