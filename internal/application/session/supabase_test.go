package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSupabaseServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "anon-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/auth/v1/health":
			_, _ = w.Write([]byte(`{"name":"GoTrue"}`))
		case "/auth/v1/user":
			switch r.Header.Get("Authorization") {
			case "Bearer good-token":
				_, _ = w.Write([]byte(`{"id":"550e8400-e29b-41d4-a716-446655440000","email":"agent@example.com"}`))
			case "Bearer broken":
				w.WriteHeader(http.StatusBadGateway)
			case "Bearer truncated":
				w.Header().Set("Content-Length", "200")
				_, _ = w.Write([]byte(`{"id":"550e8400`))
			default:
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
			}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSupabaseAuthClient_Verify(t *testing.T) {
	srv := newSupabaseServer(t)
	c := &SupabaseAuthClient{BaseURL: srv.URL + "/", AnonKey: "anon-key"}
	ctx := context.Background()

	u, err := c.Verify(ctx, "good-token")
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", u.ID)

	_, err = c.Verify(ctx, "expired")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = c.Verify(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)

	_, err = c.Verify(ctx, "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestSupabaseAuthClient_Verify_TruncatedBody(t *testing.T) {
	srv := newSupabaseServer(t)
	c := &SupabaseAuthClient{BaseURL: srv.URL, AnonKey: "anon-key"}

	_, err := c.Verify(context.Background(), "truncated")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supabase read body")
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestSupabaseAuthClient_Ping(t *testing.T) {
	srv := newSupabaseServer(t)
	ctx := context.Background()

	assert.NoError(t, (&SupabaseAuthClient{BaseURL: srv.URL, AnonKey: "anon-key"}).Ping(ctx))
	assert.Error(t, (&SupabaseAuthClient{BaseURL: srv.URL, AnonKey: "wrong"}).Ping(ctx))
	assert.Error(t, (&SupabaseAuthClient{}).Ping(ctx))
}
