package repositories

import (
	"fmt"
	"sync"
	"time"

	"bichritech/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// It enforces the same order-number uniqueness the database does, so the
// retry-on-conflict path behaves identically against it.
type MockOrderRepository struct {
	orders  map[uint]models.Order
	items   map[uint][]models.OrderItem
	numbers map[string]uint
	nextID  uint
	mu      sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders:  make(map[uint]models.Order),
		items:   make(map[uint][]models.OrderItem),
		numbers: make(map[string]uint),
		nextID:  1,
	}
}

// Create adds a new order, assigning the next numeric ID.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.numbers[order.OrderNumber]; exists {
		return fmt.Errorf("order number %s: %w", order.OrderNumber, ErrDuplicateOrderNumber)
	}

	order.ID = r.nextID
	r.nextID++
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	r.numbers[order.OrderNumber] = order.ID
	return nil
}

// CreateItems stores the line items under their order.
func (r *MockOrderRepository) CreateItems(items []models.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(items) == 0 {
		return fmt.Errorf("no order items to create")
	}
	for i := range items {
		items[i].ID = r.nextID
		r.nextID++
		r.items[items[i].OrderID] = append(r.items[items[i].OrderID], items[i])
	}
	return nil
}

// Delete removes an order and its items.
func (r *MockOrderRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %d: %w", id, ErrOrderNotFound)
	}
	delete(r.orders, id)
	delete(r.items, id)
	delete(r.numbers, order.OrderNumber)
	return nil
}

// GetByID returns an order with its items by numeric ID.
func (r *MockOrderRepository) GetByID(id uint) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, ErrOrderNotFound)
	}
	order.Items = append([]models.OrderItem(nil), r.items[id]...)
	return &order, nil
}

// GetByOrderNumber returns an order with its items by order number.
func (r *MockOrderRepository) GetByOrderNumber(orderNumber string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.numbers[orderNumber]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderNumber, ErrOrderNotFound)
	}
	order := r.orders[id]
	order.Items = append([]models.OrderItem(nil), r.items[id]...)
	return &order, nil
}

// UpdatePaymentStatus updates payment status and order status together.
func (r *MockOrderRepository) UpdatePaymentStatus(id uint, paymentStatus models.PaymentStatus, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %d: %w", id, ErrOrderNotFound)
	}
	order.PaymentStatus = paymentStatus
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}
