package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"mortgage-dashboard/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// errorLogSize is how many entries /health/errors can show.
const errorLogSize = 50

// NewErrorHandler returns the global error handler. It answers in the standard error
// format and records 5xx failures in the Redis error log when rdb is set.
func NewErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled error")
			RecordError(c.UserContext(), rdb, c, err.Error())
		}
		return response.Error(c, message, code, nil)
	}
}

// ErrorHandler is NewErrorHandler without an error log.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return NewErrorHandler(nil)(c, err)
}

// RecordError prepends one entry to the error log and trims it.
func RecordError(ctx context.Context, rdb *redis.Client, c *fiber.Ctx, message string) {
	if rdb == nil {
		return
	}
	b, _ := json.Marshal(map[string]interface{}{
		"time":     time.Now().UTC().Format(time.RFC3339),
		"method":   c.Method(),
		"path":     c.OriginalURL(),
		"trace_id": GetTraceID(c),
		"message":  message,
	})
	pipe := rdb.TxPipeline()
	pipe.LPush(ctx, KeyErrorLog, b)
	pipe.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Msg("health: error log write failed")
	}
}
