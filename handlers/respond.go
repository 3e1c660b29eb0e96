// handlers/respond.go
package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"tansa-registration/services"
)

// Messages shown to users for errors they can act on.
var publicMessages = []struct {
	err error
	msg string
}{
	{services.ErrInvalidReferralCode, "Invalid code format"},
	{services.ErrReferralCodeNotFound, "Code not found"},
	{services.ErrEmailAlreadyRegistered, "This email is already registered. Please use a different email or contact us if you need help."},
	{services.ErrMissingIdentity, "First name and email are required"},
	{services.ErrMissingPaymentID, "Payment intent ID required"},
	{services.ErrRegistrationNotFound, "Registration not found"},
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func messageFor(err error, fallback string) string {
	for _, m := range publicMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return fallback
}

// respondError answers with the status matching err's kind. Server-side
// failures are logged and get the fallback message.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	return respondErrorWithStatus(c, statusFor(err), err, fallback)
}

func respondErrorWithStatus(c *fiber.Ctx, status int, err error, fallback string) error {
	if status >= fiber.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{"error": messageFor(err, fallback)})
}
