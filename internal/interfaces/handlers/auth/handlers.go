package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"mortgage-dashboard/internal/application/session"
	"mortgage-dashboard/internal/middleware"
	"mortgage-dashboard/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// WebhookSecretHeader carries the shared secret of the Supabase auth hook.
const WebhookSecretHeader = "X-Webhook-Secret"

// EventPublisher sends auth events to every instance.
type EventPublisher interface {
	Publish(ctx context.Context, ev session.Event) error
}

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Publisher     EventPublisher
	WebhookSecret string
}

// EventRequest is the auth hook body.
type EventRequest struct {
	Event  string `json:"event"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Me GET /api/v1/auth/me returns the resolved auth context.
func (h *Handlers) Me(c *fiber.Ctx) error {
	state, ok := middleware.GetSession(c)
	if !ok || state.User == nil {
		log.Info().Str("path", "/auth/me").Str("trace_id", middleware.GetTraceID(c)).Msg("auth/me: returning 401 Not authenticated")
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, "Authenticated", state, nil)
}

// Events POST /api/v1/auth/events accepts SIGNED_IN, SIGNED_OUT and USER_UPDATED from the
// auth hook and publishes them to the session channel.
func (h *Handlers) Events(c *fiber.Ctx) error {
	given := c.Get(WebhookSecretHeader)
	if h.WebhookSecret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(h.WebhookSecret)) != 1 {
		return response.Unauthorized(c, "Invalid webhook secret")
	}
	var req EventRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	ev := session.Event{Type: session.EventType(req.Event), UserID: req.UserID, Email: req.Email}
	if err := h.Publisher.Publish(c.UserContext(), ev); err != nil {
		if errors.Is(err, session.ErrUnknownEvent) {
			return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{"event": req.Event})
		}
		log.Error().Err(err).Str("event", req.Event).Msg("auth/events: publish failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Event published", fiber.Map{"event": ev.Type, "user_id": ev.UserID}, nil)
}
