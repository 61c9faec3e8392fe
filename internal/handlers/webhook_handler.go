package handlers

import (
	"errors"
	"log"

	"bichritech/internal/services"

	"github.com/gofiber/fiber/v2"
)

// WebhookHandler receives out-of-band payment callbacks from providers.
type WebhookHandler struct {
	service *services.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(service *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		service: service,
	}
}

// RegisterRoutes registers the webhook route with the Fiber app.
func (h *WebhookHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/payments/webhook", h.HandlePaymentWebhook)
}

// HandlePaymentWebhook reconciles a provider callback with its order.
// Unrecognized payload shapes get a 400; everything else that goes wrong
// is an internal error. Providers retry on non-2xx responses, which is
// exactly what we want for transient failures here.
func (h *WebhookHandler) HandlePaymentWebhook(c *fiber.Ctx) error {
	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing webhook payload: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid webhook payload",
		})
	}

	result, err := h.service.Reconcile(c.Context(), payload)
	if err != nil {
		if errors.Is(err, services.ErrUnrecognizedPayload) {
			log.Printf("Unrecognized webhook payload: %v", payload)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid webhook payload",
			})
		}
		log.Printf("Webhook processing error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Webhook processing failed",
		})
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"orderNumber":   result.OrderNumber,
		"paymentStatus": result.PaymentStatus,
	})
}
