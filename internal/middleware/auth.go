package middleware

import (
	"context"
	"errors"
	"strings"

	"mortgage-dashboard/internal/application/session"
	"mortgage-dashboard/internal/pkg/constants"
	"mortgage-dashboard/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	userLocal    = "user"
	sessionLocal = "session"
)

// SessionResolver turns a bearer token into the caller's auth state.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (session.State, error)
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) string {
	h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func anonymousAdmin() session.State {
	role := constants.Admin
	return session.State{User: &session.User{ID: "anonymous"}, Role: &role}
}

// RequireSession resolves the bearer token and stores the auth state in Locals. With
// disabled set every request runs as an anonymous admin.
func RequireSession(resolver SessionResolver, disabled bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var state session.State
		if disabled {
			state = anonymousAdmin()
		} else {
			var err error
			state, err = resolver.Resolve(c.UserContext(), BearerToken(c))
			switch {
			case errors.Is(err, session.ErrMissingToken):
				return response.Unauthorized(c, "Unauthorized")
			case errors.Is(err, session.ErrInvalidToken):
				return response.Unauthorized(c, session.ErrInvalidToken.Error())
			case err != nil:
				log.Error().Err(err).Str("trace_id", GetTraceID(c)).Msg("session: token verification failed")
				return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
			}
		}
		c.Locals(sessionLocal, state)
		c.Locals(userLocal, map[string]interface{}{
			"user_id": state.User.ID,
			"email":   state.User.Email,
			"role":    state.RoleName(),
		})
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not signed in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// GetSession returns the resolved auth state, if any.
func GetSession(c *fiber.Ctx) (session.State, bool) {
	s, ok := c.Locals(sessionLocal).(session.State)
	return s, ok
}
