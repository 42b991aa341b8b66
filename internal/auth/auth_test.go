package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/smartcoach/internal"
	"github.com/yourname/smartcoach/internal/config"
	"github.com/yourname/smartcoach/internal/storage"
)

func newStore(t *testing.T) *storage.FileStorage {
	t.Helper()
	s, err := storage.NewFileStorage(t.TempDir(), internal.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.SaveUser(context.Background(), &internal.User{ID: "u1", Token: "MOCK-TOKEN", Name: "Test User"}))
	return s
}

func TestLocalAuthProvider(t *testing.T) {
	p := NewLocalAuthProvider(newStore(t), internal.NewNopLogger())

	user, err := p.ValidateToken(context.Background(), "MOCK-TOKEN")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = p.ValidateToken(context.Background(), "WRONG")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = p.ValidateToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRemoteAuthProviderCreatesUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["token"] != "remote-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "u9", "name": "Remote User"})
	}))
	defer srv.Close()

	store := newStore(t)
	p := NewRemoteAuthProvider(srv.URL, store, internal.NewNopLogger())

	user, err := p.ValidateToken(context.Background(), "remote-token")
	require.NoError(t, err)
	assert.Equal(t, "u9", user.ID)
	assert.Equal(t, "Remote User", user.Name)

	stored, err := store.GetUserByToken(context.Background(), "remote-token")
	require.NoError(t, err)
	assert.Equal(t, "u9", stored.ID)

	_, err = p.ValidateToken(context.Background(), "other")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRemoteAuthProviderRefreshKeepsUserState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "u1", "name": "Renamed User"})
	}))
	defer srv.Close()

	store := newStore(t)
	ctx := context.Background()
	_, err := store.UpdateUser(ctx, "u1", func(u *internal.User) error {
		u.MainLogID = "log-1"
		return nil
	})
	require.NoError(t, err)

	p := NewRemoteAuthProvider(srv.URL, store, internal.NewNopLogger())
	user, err := p.ValidateToken(ctx, "fresh-token")
	require.NoError(t, err)
	assert.Equal(t, "Renamed User", user.Name)
	assert.Equal(t, "log-1", user.MainLogID)

	stored, err := store.GetUserByToken(ctx, "fresh-token")
	require.NoError(t, err)
	assert.Equal(t, "log-1", stored.MainLogID)
	_, err = store.GetUserByToken(ctx, "MOCK-TOKEN")
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestRemoteAuthProviderServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewRemoteAuthProvider(srv.URL, newStore(t), internal.NewNopLogger())
	_, err := p.ValidateToken(context.Background(), "remote-token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestNewProviderPicksBackend(t *testing.T) {
	store := newStore(t)
	_, isLocal := NewProvider(&config.Config{}, store, internal.NewNopLogger()).(*LocalAuthProvider)
	assert.True(t, isLocal)
	_, isRemote := NewProvider(&config.Config{AuthServiceURL: "http://auth"}, store, internal.NewNopLogger()).(*RemoteAuthProvider)
	assert.True(t, isRemote)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(NewLocalAuthProvider(newStore(t), internal.NewNopLogger()), internal.NewNopLogger()))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Name)
	})

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"valid", "Bearer MOCK-TOKEN", http.StatusOK},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"no scheme", "MOCK-TOKEN", http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, "Test User", w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"code":401`)
			}
		})
	}
}
