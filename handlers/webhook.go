// handlers/webhook.go
package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"tansa-registration/services"
)

func SetupWebhookRoutes(app fiber.Router, intake *services.RegistrationIntake, webhookSecret string) {
	app.Post("/api/webhooks/stripe", func(c *fiber.Ctx) error {
		signature := c.Get("Stripe-Signature")
		if signature == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No signature provided"})
		}

		payment, ok, err := services.ParseWebhook(c.Body(), signature, webhookSecret)
		if err != nil {
			log.Printf("[WEBHOOK] ❌ Rejected event: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Webhook signature verification failed"})
		}

		// Verified events are always acknowledged. Missed payments are picked up
		// by the reconcile worker.
		if ok {
			result, err := intake.Process(c.UserContext(), *payment)
			if err != nil {
				log.Printf("[WEBHOOK] ❌ Payment %s not registered: %v", payment.PaymentID, err)
			} else {
				log.Printf("[WEBHOOK] 📥 Payment %s: %s", payment.PaymentID, result)
			}
		}
		return c.JSON(fiber.Map{"received": true})
	})
}
