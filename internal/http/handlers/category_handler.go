package handlers

import (
	"techstore/internal/catalog"

	"github.com/gofiber/fiber/v2"
)

// CategoryHandler serves the catalog hierarchy read-only.
type CategoryHandler struct {
	Catalog *catalog.Catalog
}

// GET /api/v1/catalog/categories
func (h *CategoryHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"categories": h.Catalog.Categories()})
}

// GET /api/v1/catalog/categories/:category/manufacturers
func (h *CategoryHandler) Manufacturers(c *fiber.Ctx) error {
	cat := c.Params("category")
	ms := h.Catalog.Manufacturers(cat)
	if len(ms) == 0 {
		return notFound(c, "unknown category")
	}
	return c.JSON(fiber.Map{"category": cat, "manufacturers": ms})
}

// GET /api/v1/catalog/categories/:category/manufacturers/:manufacturer/models
func (h *CategoryHandler) Models(c *fiber.Ctx) error {
	cat, manu := c.Params("category"), c.Params("manufacturer")
	ms := h.Catalog.Models(cat, manu)
	if len(ms) == 0 {
		return notFound(c, "no models in stock")
	}
	return c.JSON(fiber.Map{"category": cat, "manufacturer": manu, "models": ms})
}
