package handlers

import (
	"strings"

	applog "techstore/internal/log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// RequireAdmin checks a bearer token against a bcrypt hash. An empty hash
// disables the admin surface.
func RequireAdmin(tokenHash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" || tokenHash == "" ||
			bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)) != nil {
			applog.Security(c, "access.denied.admin", map[string]any{"has_token": token != ""})
			c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="admin"`)
			return c.Status(fiber.StatusUnauthorized).Render("notfound", fiber.Map{"Message": "Access denied"})
		}
		return c.Next()
	}
}

// HashToken returns the bcrypt hash to configure as ADMIN_TOKEN_HASH.
func HashToken(token string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	return string(b), err
}
