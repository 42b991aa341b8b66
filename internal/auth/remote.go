package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/yourname/smartcoach/internal"
	"github.com/yourname/smartcoach/internal/storage"
)

type RemoteAuthProvider struct {
	AuthServiceURL string
	HTTPClient     *http.Client
	users          storage.UserRepository
	logger         internal.Logger
}

type remoteIdentity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ValidateToken asks the auth service who owns the token and returns the
// matching local user, creating it on first sight.
func (a *RemoteAuthProvider) ValidateToken(ctx context.Context, token string) (*internal.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.AuthServiceURL, bytes.NewReader(body))
	if err != nil {
		a.logger.Errorf("failed to create request: %v", err)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		a.logger.Errorf("failed to call auth service: %v", err)
		return nil, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidToken
	case resp.StatusCode != http.StatusOK:
		a.logger.Errorf("auth service returned %d", resp.StatusCode)
		return nil, fmt.Errorf("auth: service returned %d", resp.StatusCode)
	}

	var ident remoteIdentity
	if err := json.NewDecoder(resp.Body).Decode(&ident); err != nil {
		a.logger.Errorf("failed to decode auth response: %v", err)
		return nil, err
	}
	if ident.ID == "" {
		return nil, ErrInvalidToken
	}

	user, err := a.users.GetUser(ctx, ident.ID)
	switch {
	case errors.Is(err, internal.ErrNotFound):
		user = &internal.User{ID: ident.ID, Token: token, Name: ident.Name}
		if err := a.users.SaveUser(ctx, user); err != nil {
			return nil, fmt.Errorf("auth: save user: %w", err)
		}
		return user, nil
	case err != nil:
		return nil, fmt.Errorf("auth: load user: %w", err)
	}
	if user.Token == token && user.Name == ident.Name {
		return user, nil
	}
	user, err = a.users.UpdateUser(ctx, ident.ID, func(u *internal.User) error {
		u.Token = token
		u.Name = ident.Name
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: update user: %w", err)
	}
	return user, nil
}

func NewRemoteAuthProvider(url string, users storage.UserRepository, logger internal.Logger) *RemoteAuthProvider {
	return &RemoteAuthProvider{
		AuthServiceURL: url,
		HTTPClient:     &http.Client{Timeout: 5 * time.Second},
		users:          users,
		logger:         logger,
	}
}
