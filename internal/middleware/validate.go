package middleware

import (
	"vinoteca/internal/schema"

	"github.com/gofiber/fiber/v2"
)

const bodyKey = "validated_body"

// ValidateBody is a Fiber middleware that parses the JSON body into T,
// validates it against the registry and stores the result in locals.
// Handlers behind it never see an invalid payload. Validation reports
// every violated field at once.
func ValidateBody[T any](reg *schema.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := new(T)
		if err := c.BodyParser(body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "request body must be valid JSON",
			})
		}

		if err := reg.Validate(*body); err != nil {
			if ve, ok := schema.AsValidationError(err); ok {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error":  "validation failed",
					"fields": ve.Fields,
				})
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals(bodyKey, body)
		return c.Next()
	}
}

// BodyFromCtx returns the validated body stored by ValidateBody. It is nil
// when no ValidateBody middleware ran for T on this route.
func BodyFromCtx[T any](c *fiber.Ctx) *T {
	body, _ := c.Locals(bodyKey).(*T)
	return body
}
