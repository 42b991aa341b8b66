package auth

import (
	"context"
	"errors"

	"github.com/yourname/smartcoach/internal"
	"github.com/yourname/smartcoach/internal/config"
	"github.com/yourname/smartcoach/internal/storage"
)

var ErrInvalidToken = errors.New("invalid token")

type Provider interface {
	ValidateToken(ctx context.Context, token string) (*internal.User, error)
}

// NewProvider validates against the remote auth service when one is
// configured and against stored users otherwise.
func NewProvider(cfg *config.Config, users storage.UserRepository, logger internal.Logger) Provider {
	if cfg.AuthServiceURL != "" {
		return NewRemoteAuthProvider(cfg.AuthServiceURL, users, logger)
	}
	return NewLocalAuthProvider(users, logger)
}
