package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"mortgage-dashboard/internal/application/session"
	"mortgage-dashboard/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct{}

func (fakeVerifier) Verify(ctx context.Context, token string) (*session.User, error) {
	if token == "good" {
		return &session.User{ID: "u1", Email: "one@example.com"}, nil
	}
	if token == "" {
		return nil, session.ErrMissingToken
	}
	return nil, session.ErrInvalidToken
}

type fakeRoles map[string]string

func (f fakeRoles) ProfileRole(ctx context.Context, userID string) (string, error) {
	return f[userID], nil
}

type failingPublisher struct{}

func (failingPublisher) Publish(ctx context.Context, ev session.Event) error {
	if !ev.Type.Valid() {
		return session.ErrUnknownEvent
	}
	return errors.New("redis: connection refused")
}

func setupAuthHandlers(t *testing.T) (*fiber.App, *session.Provider) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	provider := session.NewProvider(fakeVerifier{}, fakeRoles{"u1": "editor"}, rdb)
	require.NoError(t, provider.Start(context.Background()))
	t.Cleanup(func() {
		_ = provider.Stop()
		rdb.Close()
		mr.Close()
	})

	h := &Handlers{Publisher: provider, WebhookSecret: "hook-secret"}
	app := fiber.New()
	app.Get("/me", middleware.RequireSession(provider, false), h.Me)
	app.Post("/events", h.Events)
	return app, provider
}

func send(t *testing.T, app *fiber.App, method, path string, headers map[string]string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var req = httptest.NewRequest(method, path, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestMe_ReturnsAuthContext(t *testing.T) {
	app, _ := setupAuthHandlers(t)
	code, out := send(t, app, "GET", "/me", map[string]string{"Authorization": "Bearer good"}, nil)
	assert.Equal(t, fiber.StatusOK, code)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "u1", data["user"].(map[string]interface{})["id"])
	assert.Equal(t, "editor", data["role"])
	assert.Equal(t, false, data["loading"])
}

func TestMe_Unauthenticated(t *testing.T) {
	app, _ := setupAuthHandlers(t)
	code, _ := send(t, app, "GET", "/me", nil, nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)

	h := &Handlers{}
	bare := fiber.New()
	bare.Get("/me", h.Me)
	code, out := send(t, bare, "GET", "/me", nil, nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Equal(t, "Not authenticated", out["error"].(map[string]interface{})["message"])
}

func TestEvents_RejectsBadSecret(t *testing.T) {
	app, _ := setupAuthHandlers(t)
	body := map[string]string{"event": "SIGNED_OUT", "user_id": "u1"}

	code, _ := send(t, app, "POST", "/events", nil, body)
	assert.Equal(t, fiber.StatusUnauthorized, code)
	code, _ = send(t, app, "POST", "/events", map[string]string{WebhookSecretHeader: "nope"}, body)
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestEvents_PublishesToSubscribers(t *testing.T) {
	app, provider := setupAuthHandlers(t)
	got := make(chan session.Event, 1)
	provider.OnChange(func(ev session.Event) { got <- ev })

	code, out := send(t, app, "POST", "/events", map[string]string{WebhookSecretHeader: "hook-secret"},
		map[string]string{"event": "SIGNED_IN", "user_id": "u1", "email": "one@example.com"})
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Event published", out["message"])

	select {
	case ev := <-got:
		assert.Equal(t, session.SignedIn, ev.Type)
		assert.Equal(t, "u1", ev.UserID)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	code, _ = send(t, app, "POST", "/events", map[string]string{WebhookSecretHeader: "hook-secret"},
		map[string]string{"event": "PASSWORD_RECOVERY", "user_id": "u1"})
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestEvents_PublishFailure(t *testing.T) {
	h := &Handlers{Publisher: failingPublisher{}, WebhookSecret: "hook-secret"}
	app := fiber.New()
	app.Post("/events", h.Events)

	code, out := send(t, app, "POST", "/events", map[string]string{WebhookSecretHeader: "hook-secret"},
		map[string]string{"event": "SIGNED_OUT", "user_id": "u1"})
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, "Internal Server Error", out["error"].(map[string]interface{})["message"])
}
