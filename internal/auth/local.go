package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourname/smartcoach/internal"
	"github.com/yourname/smartcoach/internal/storage"
)

type LocalAuthProvider struct {
	users  storage.UserRepository
	logger internal.Logger
}

func (a *LocalAuthProvider) ValidateToken(ctx context.Context, token string) (*internal.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	user, err := a.users.GetUserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			a.logger.Warnf("unknown token presented")
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("auth: lookup token: %w", err)
	}
	return user, nil
}

func NewLocalAuthProvider(users storage.UserRepository, logger internal.Logger) *LocalAuthProvider {
	return &LocalAuthProvider{users: users, logger: logger}
}
