package handlers

import (
	"techstore/internal/catalog"
	"techstore/internal/log"
	"techstore/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *catalog.Catalog
}

// GET /api/v1/products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	p, ok := h.Catalog.Product(id)
	if !ok {
		return notFound(c, "this item is no longer available")
	}
	return c.JSON(p)
}

// GET /api/v1/catalog/models/:model
func (h *ProductHandler) Configuration(c *fiber.Ctx) error {
	cfg := h.Catalog.Configuration(c.Params("model"))
	if cfg.Empty() {
		return notFound(c, "this item is no longer available")
	}
	return c.JSON(cfg)
}
