package middleware

import (
	"log"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gofiber/fiber/v2"
)

// FirebaseAuthMiddleware verifies the mobile client's ID token and attaches
// the caller's identity to the request context. Every route behind it can
// rely on c.Locals("user_id") being a non-empty uid.
func FirebaseAuthMiddleware(authClient *auth.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		token, err := authClient.VerifyIDToken(c.Context(), header[len("Bearer "):])
		if err != nil {
			log.Printf("Token verification failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals("user_id", token.UID)
		if name, ok := token.Claims["name"].(string); ok {
			c.Locals("user_name", name)
		}
		if picture, ok := token.Claims["picture"].(string); ok {
			c.Locals("user_picture", picture)
		}
		return c.Next()
	}
}

// CallerID returns the authenticated uid set by FirebaseAuthMiddleware.
func CallerID(c *fiber.Ctx) string {
	uid, _ := c.Locals("user_id").(string)
	return uid
}

// CallerClaim returns an optional string claim stashed by the middleware.
func CallerClaim(c *fiber.Ctx, key string) string {
	v, _ := c.Locals(key).(string)
	return v
}
