package middleware

import (
	"strings"

	"vinoteca/internal/auth"
	"vinoteca/internal/logging"

	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

// BearerAuth is a Fiber middleware that rejects requests without a valid
// bearer token. Protected handlers never run for unauthenticated calls.
func BearerAuth(verifier *auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authorization header format must be 'Bearer <token>'",
			})
		}

		principal, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			logging.FromContext(c.UserContext()).Debug("token rejected", "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// PrincipalFromCtx returns the caller BearerAuth authenticated.
func PrincipalFromCtx(c *fiber.Ctx) (*auth.Principal, bool) {
	principal, ok := c.Locals(principalKey).(*auth.Principal)
	return principal, ok
}
