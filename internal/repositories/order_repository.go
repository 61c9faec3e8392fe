package repositories

import (
	"errors"

	"bichritech/internal/models"
)

// ErrOrderNotFound is returned when an order lookup or update targets an
// order that does not exist.
var ErrOrderNotFound = errors.New("order not found")

// ErrDuplicateOrderNumber is returned when an insert collides with an
// existing order number. Callers are expected to regenerate the number
// and retry.
var ErrDuplicateOrderNumber = errors.New("order number already exists")

// OrderRepository defines the interface for order data access.
//
// Order and item creation are separate calls on purpose: the coordinator
// owns the two-phase write and issues the compensating Delete itself
// when item persistence fails. UpdatePaymentStatus writes payment status
// and order status together so the pair can never be split across
// interleaving writes.
type OrderRepository interface {
	Create(order *models.Order) error
	CreateItems(items []models.OrderItem) error
	Delete(id uint) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNumber(orderNumber string) (*models.Order, error)
	UpdatePaymentStatus(id uint, paymentStatus models.PaymentStatus, status models.OrderStatus) error
}
