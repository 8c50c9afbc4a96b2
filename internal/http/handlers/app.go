package handlers

import (
	"net/http"
	"time"

	applog "techstore/internal/log"
	"techstore/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
)

// NewApp builds the operations server: health, catalog API and admin pages.
func NewApp(deps *Deps) *fiber.App {
	engine := html.NewFileSystem(http.FS(web.Templates()), ".html")

	app := fiber.New(fiber.Config{
		Views:                 engine,
		UnescapePath:          true,
		DisableStartupMessage: true,
		BodyLimit:             1 << 20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			if code >= 500 {
				applog.Error(c, "server.error", err, nil)
			}
			return c.Status(code).JSON(fiber.Map{"error": http.StatusText(code)})
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.limit.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	api := app.Group("/api/v1")
	api.Get("/catalog/categories", deps.CategoryHandler.Categories)
	api.Get("/catalog/categories/:category/manufacturers", deps.CategoryHandler.Manufacturers)
	api.Get("/catalog/categories/:category/manufacturers/:manufacturer/models", deps.CategoryHandler.Models)
	api.Get("/catalog/models/:model", deps.ProductHandler.Configuration)
	api.Get("/products/:id", deps.ProductHandler.Detail)
	api.Get("/admin/stats", RequireAdmin(deps.AdminTokenHash), deps.AdminHandler.Stats)

	admin := app.Group("/admin", RequireAdmin(deps.AdminTokenHash))
	admin.Get("/users", deps.AdminHandler.UsersPage)
	admin.Get("/requests", deps.AdminHandler.RequestsPage)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})
	return app
}
