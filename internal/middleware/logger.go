package middleware

import (
	"errors"
	"log/slog"
	"time"

	"vinoteca/internal/logging"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger is a Fiber middleware that logs one line per request,
// leveled by status class, and seeds the request context with a logger
// carrying the request id.
func RequestLogger(base *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		l := base.With(
			"method", c.Method(),
			"path", c.Path(),
		)
		if rid := c.GetRespHeader(fiber.HeaderXRequestID); rid != "" {
			l = l.With("request_id", rid)
		}
		c.SetUserContext(logging.IntoContext(c.UserContext(), l))

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		durMS := time.Since(start).Milliseconds()

		if principal, ok := PrincipalFromCtx(c); ok {
			l = l.With("subject", principal.Subject)
		}

		switch {
		case status >= 500:
			l.Error("request completed", "status", status, "duration_ms", durMS, "error", errStr(err))
		case status >= 400:
			l.Warn("request completed", "status", status, "duration_ms", durMS)
		default:
			l.Info("request completed", "status", status, "duration_ms", durMS, "bytes", len(c.Response().Body()))
		}
		return err
	}
}

func errStr(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
