package handlers

import (
	applog "techstore/internal/log"
	"techstore/internal/repos"
	"techstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Users     *repos.UserRepo
	Orders    *services.OrderService
	Products  int
	Sessions  func() int
	Broadcast *services.BroadcastService
}

// UsersPage lists registered bot users.
func (h *AdminHandler) UsersPage(c *fiber.Ctx) error {
	users, err := h.Users.List(500)
	if err != nil {
		applog.Error(c, "admin.users.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load users"})
	}
	total, err := h.Users.Count()
	if err != nil {
		applog.Error(c, "admin.users.count.fail", err, nil)
		total = len(users)
	}
	applog.Audit(c, "admin.users.view", map[string]any{"count": len(users)})
	return render(c, "admin_users", fiber.Map{"Users": users, "Total": total})
}

// GET /admin/requests
func (h *AdminHandler) RequestsPage(c *fiber.Ctx) error {
	reqs, err := h.Orders.Latest(100)
	if err != nil {
		applog.Error(c, "admin.requests.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load requests"})
	}
	return render(c, "admin_requests", fiber.Map{"Requests": reqs})
}

// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	users, err := h.Users.Count()
	if err != nil {
		applog.Error(c, "admin.stats.fail", err, nil)
		return c.Status(500).JSON(fiber.Map{"error": "storage unavailable"})
	}
	reqs, err := h.Orders.Count()
	if err != nil {
		applog.Error(c, "admin.stats.fail", err, nil)
		return c.Status(500).JSON(fiber.Map{"error": "storage unavailable"})
	}
	out := fiber.Map{"users": users, "purchase_requests": reqs, "products": h.Products}
	if h.Sessions != nil {
		out["selection_sessions"] = h.Sessions()
	}
	if h.Broadcast != nil {
		out["scheduled_broadcasts"] = h.Broadcast.Pending()
	}
	return c.JSON(out)
}
