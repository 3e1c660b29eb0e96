// handlers/signup.go
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"tansa-registration/services"
)

type updatePaymentIntentRequest struct {
	PaymentIntentID string                  `json:"paymentIntentId"`
	FormData        services.SignupMetadata `json:"formData"`
}

func SetupSignupRoutes(app fiber.Router, signup *services.SignupService, dashboard *services.ExecDashboardService) {
	// The fee is fixed server-side; any amount in the body is ignored.
	app.Post("/api/create-payment-intent", func(c *fiber.Ctx) error {
		intent, err := signup.CreatePaymentIntent(c.UserContext())
		if err != nil {
			return respondErrorWithStatus(c, fiber.StatusInternalServerError, err, "Failed to create payment intent")
		}
		return c.JSON(intent)
	})

	app.Post("/api/update-payment-intent", func(c *fiber.Ctx) error {
		var req updatePaymentIntentRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		err := signup.AttachToPayment(c.UserContext(), req.PaymentIntentID, req.FormData)
		switch {
		case err == nil:
			return c.JSON(fiber.Map{"success": true})
		case errors.Is(err, services.ErrValidation),
			errors.Is(err, services.ErrNotFound),
			errors.Is(err, services.ErrConflict):
			// Every rejected form is the user's to fix.
			return respondErrorWithStatus(c, fiber.StatusBadRequest, err, "Invalid request")
		default:
			return respondErrorWithStatus(c, fiber.StatusInternalServerError, err, "Failed to update payment intent")
		}
	})

	app.Get("/api/exec-members", func(c *fiber.Ctx) error {
		members, err := dashboard.ExecMembers(c.UserContext())
		if err != nil {
			return respondError(c, err, "Failed to fetch exec members")
		}
		return c.JSON(fiber.Map{"members": members})
	})
}
