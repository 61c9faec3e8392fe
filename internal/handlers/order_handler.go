package handlers

import (
	"errors"
	"fmt"
	"log"

	"bichritech/internal/models"
	"bichritech/internal/repositories"
	"bichritech/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for order creation and lookup.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/:orderNumber", h.HandleGetOrder)
}

// HandleCreateOrder creates an order from a cart snapshot and delivery
// details, dispatches payment, and returns the combined result.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req models.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create order request body: %v", err)
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

	var userID *string
	if id, ok := c.Locals("user_id").(string); ok && id != "" {
		userID = &id
		log.Printf("Creating order for user %s", id)
	} else {
		log.Println("Creating order for guest")
	}

	resp, err := h.service.CreateOrder(c.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}
		log.Printf("Error creating order: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Erreur création commande",
		})
	}

	return c.JSON(resp)
}

// HandleGetOrder retrieves an order by its order number, for the order
// confirmation page.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	orderNumber := c.Params("orderNumber")
	order, err := h.service.GetOrderByNumber(orderNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": fmt.Sprintf("Commande %s introuvable", orderNumber),
			})
		}
		log.Printf("Error getting order %s: %v", orderNumber, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Erreur récupération commande",
		})
	}
	return c.JSON(order)
}
