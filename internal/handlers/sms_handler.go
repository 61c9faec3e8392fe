package handlers

import (
	"fmt"
	"log"

	"bichritech/internal/sms"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// SMSHandler exposes the notification dispatcher over HTTP.
type SMSHandler struct {
	dispatcher *sms.Dispatcher
	validate   *validator.Validate
}

// NewSMSHandler creates a new SMSHandler.
func NewSMSHandler(dispatcher *sms.Dispatcher) *SMSHandler {
	return &SMSHandler{
		dispatcher: dispatcher,
		validate:   validator.New(),
	}
}

// SMSRequest is the notification send payload.
type SMSRequest struct {
	To          string `json:"to" validate:"required"`
	Message     string `json:"message" validate:"required"`
	OrderNumber string `json:"orderNumber"`
}

// RegisterRoutes registers the notification routes with the Fiber app.
func (h *SMSHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/notifications/sms", h.HandleSendSMS)
}

// HandleSendSMS attempts delivery through the provider chain and always
// reports the outcome in the body.
func (h *SMSHandler) HandleSendSMS(c *fiber.Ctx) error {
	var req SMSRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing SMS request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Corps de requête invalide",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation échouée",
			"errors":  errorMessages,
		})
	}

	if req.OrderNumber != "" {
		log.Printf("Sending SMS for order %s to %s", req.OrderNumber, req.To)
	} else {
		log.Printf("Sending SMS to %s", req.To)
	}

	result := h.dispatcher.Send(c.Context(), req.To, req.Message)
	status := fiber.StatusOK
	if !result.Success {
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(result)
}
