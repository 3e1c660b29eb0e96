// handlers/referral.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tansa-registration/services"
)

func SetupReferralRoutes(app fiber.Router, leaderboard *services.LeaderboardService, signup *services.SignupService) {
	// Top 15, or one member's standing when ?code= is given
	app.Get("/api/leaderboard", func(c *fiber.Ctx) error {
		code := c.Query("code")
		if code == "" {
			entries, err := leaderboard.Top(c.UserContext())
			if err != nil {
				return respondError(c, err, "Failed to fetch leaderboard")
			}
			return c.JSON(fiber.Map{"entries": entries})
		}

		lookup, err := leaderboard.Lookup(c.UserContext(), code)
		if err != nil {
			return respondError(c, err, "Failed to fetch leaderboard")
		}
		return c.JSON(lookup)
	})

	// Polled by the success page until the webhook has created the registration
	app.Get("/api/get-referral-code", func(c *fiber.Ctx) error {
		paymentID := c.Query("payment_intent")
		if paymentID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Payment intent ID required"})
		}

		reg, err := signup.RegistrationForPayment(c.UserContext(), paymentID)
		if err != nil {
			return respondError(c, err, "Failed to fetch referral code")
		}
		return c.JSON(fiber.Map{
			"referralCode": reg.Code(),
			"firstName":    reg.FirstName,
		})
	})
}
