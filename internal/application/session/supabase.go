package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SupabaseAuthClient verifies tokens against the Supabase Auth API. It is used when no JWT
// secret is configured.
type SupabaseAuthClient struct {
	BaseURL string
	AnonKey string
	Client  *http.Client
}

type supabaseUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (c *SupabaseAuthClient) httpClient() *http.Client {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 10 * time.Second}
	}
	return c.Client
}

func (c *SupabaseAuthClient) newRequest(ctx context.Context, path, bearer string) (*http.Request, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("supabase: SUPABASE_URL is not set")
	}
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.AnonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	return req, nil
}

// Verify calls GET /auth/v1/user with the user's access token.
func (c *SupabaseAuthClient) Verify(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	req, err := c.newRequest(ctx, "/auth/v1/user", token)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrInvalidToken
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("supabase read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("supabase error: status %d body: %s", resp.StatusCode, string(body))
	}
	var u supabaseUser
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("supabase response decode: %w", err)
	}
	if u.ID == "" {
		return nil, ErrInvalidToken
	}
	return &User{ID: u.ID, Email: u.Email}, nil
}

// Ping checks GET /auth/v1/health with the anon key.
func (c *SupabaseAuthClient) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, "/auth/v1/health", c.AnonKey)
	if err != nil {
		return err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("supabase request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("supabase auth health: status %d", resp.StatusCode)
	}
	return nil
}
