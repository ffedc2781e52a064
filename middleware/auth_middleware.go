package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Pavangowda-dev/StockIQ/auth"
)

// LocalUsername is the fiber local that holds the authenticated username.
const LocalUsername = "username"

// RequireAuth verifies the bearer token in the Authorization header and
// stores the caller's username in the request locals.
func RequireAuth(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Not authenticated")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return unauthorized(c, "Not authenticated")
		}

		user, err := svc.CurrentUser(c.UserContext(), strings.TrimSpace(parts[1]))
		if err != nil {
			return unauthorized(c, "Could not validate credentials")
		}

		c.Locals(LocalUsername, user.Username)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, detail string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": detail})
}
