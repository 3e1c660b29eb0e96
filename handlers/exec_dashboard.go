// handlers/exec_dashboard.go
package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"tansa-registration/middleware"
	"tansa-registration/services"
)

func SetupExecDashboardRoutes(app fiber.Router, dashboard *services.ExecDashboardService, sessions *middleware.ExecSessions) {
	app.Post("/api/exec-dashboard/auth", func(c *fiber.Ctx) error {
		var body struct {
			Password string `json:"password"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Bad request"})
		}
		if !dashboard.CheckPassword(body.Password) {
			log.Printf("🚫 [EXEC_AUTH] Wrong dashboard password from %s", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Invalid password"})
		}
		if err := sessions.SetCookie(c); err != nil {
			log.Printf("❌ [EXEC_AUTH] Could not issue session: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Could not start session"})
		}
		return c.JSON(fiber.Map{"ok": true})
	})

	app.Delete("/api/exec-dashboard/auth", func(c *fiber.Ctx) error {
		sessions.ClearCookie(c)
		return c.JSON(fiber.Map{"ok": true})
	})

	// 🔐 Everything below needs the session cookie
	guard := middleware.ExecDashboardAuth(sessions)

	app.Get("/api/exec-dashboard/stats", guard, func(c *fiber.Ctx) error {
		stats, err := dashboard.Stats(c.UserContext())
		if err != nil {
			return respondError(c, err, "Failed to fetch stats")
		}
		return c.JSON(stats)
	})

	app.Get("/api/exec-dashboard/search", guard, func(c *fiber.Ctx) error {
		results, err := dashboard.Search(c.UserContext(), c.Query("q"))
		if err != nil {
			return respondError(c, err, "Failed to search")
		}
		return c.JSON(fiber.Map{"results": results})
	})

	app.Get("/api/exec-dashboard/leaderboard", guard, func(c *fiber.Ctx) error {
		board, err := dashboard.Leaderboard(c.UserContext())
		if err != nil {
			return respondError(c, err, "Failed to fetch leaderboard")
		}
		return c.JSON(fiber.Map{"leaderboard": board})
	})
}
