package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"bichritech/internal/models"
	"bichritech/internal/repositories"
	"bichritech/internal/sms"
)

// ErrValidation marks a malformed cart or delivery request. Nothing has
// been written when it is returned.
var ErrValidation = errors.New("invalid order request")

// Notifier sends a text message on a best-effort basis. Implemented by
// sms.Dispatcher.
type Notifier interface {
	Send(ctx context.Context, to, body string) sms.Result
}

// Payments runs a payment attempt for a persisted order. Implemented by
// PaymentService.
type Payments interface {
	ProcessPayment(ctx context.Context, req models.PaymentRequest) models.PaymentResult
}

// EventPublisher publishes order lifecycle events to the broker.
// Implemented by rabbitmq.Client; a nil publisher disables publishing.
type EventPublisher interface {
	PublishOrderEvent(event string, payload map[string]interface{}) error
}

// OrderService coordinates order creation: validation, the two-phase
// order+items write with compensating rollback, payment dispatch, and
// best-effort notification.
type OrderService struct {
	orderRepo repositories.OrderRepository
	payments  Payments
	notifier  Notifier
	publisher EventPublisher
}

// NewOrderService creates a new OrderService. publisher may be nil when
// no broker is available.
func NewOrderService(orderRepo repositories.OrderRepository, payments Payments, notifier Notifier, publisher EventPublisher) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		payments:  payments,
		notifier:  notifier,
		publisher: publisher,
	}
}

// OrderSummary is the caller-facing slice of a created order.
type OrderSummary struct {
	ID          uint               `json:"id"`
	OrderNumber string             `json:"orderNumber"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount float64            `json:"totalAmount"`
}

// CreateOrderResponse is the order creation result returned to the
// caller, payment outcome included.
type CreateOrderResponse struct {
	Success bool                 `json:"success"`
	Order   OrderSummary         `json:"order"`
	Payment models.PaymentResult `json:"payment"`
}

const orderNumberAttempts = 5

// CreateOrder validates the cart snapshot, persists the order and its
// items as one logical unit, invokes payment, and triggers the
// confirmation SMS. userID is nil for guest checkout.
//
// There is deliberately no idempotency key: resubmitting the same cart
// creates a new, distinct order.
func (s *OrderService) CreateOrder(ctx context.Context, userID *string, req *models.CreateOrderRequest) (*CreateOrderResponse, error) {
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:            userID,
		Status:            models.OrderStatusPending,
		PaymentMethod:     req.PaymentMethod,
		PaymentStatus:     models.PaymentStatusPending,
		Subtotal:          req.Subtotal,
		DeliveryFee:       req.DeliveryFee,
		TotalAmount:       req.TotalAmount,
		DeliveryFirstName: req.DeliveryFirstName,
		DeliveryLastName:  req.DeliveryLastName,
		DeliveryPhone:     req.DeliveryPhone,
		DeliveryAddress:   req.DeliveryAddress,
		DeliveryCity:      req.DeliveryCity,
		DeliveryRegion:    req.DeliveryRegion,
		DeliveryNotes:     req.DeliveryNotes,
	}

	// Order numbers are random; a collision shows up as a uniqueness
	// violation on insert and is retried with a fresh number.
	created := false
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.OrderNumber = generateOrderNumber(time.Now())
		err := s.orderRepo.Create(order)
		if err == nil {
			created = true
			break
		}
		if errors.Is(err, repositories.ErrDuplicateOrderNumber) {
			log.Printf("Order number %s collided, regenerating", order.OrderNumber)
			continue
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if !created {
		return nil, fmt.Errorf("failed to create order: exhausted %d order number attempts", orderNumberAttempts)
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, models.OrderItem{
			OrderID:         order.ID,
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			ProductBrand:    item.ProductBrand,
			ProductImageURL: item.ProductImageURL,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TotalPrice:      item.Subtotal,
		})
	}
	if err := s.orderRepo.CreateItems(items); err != nil {
		// Compensating delete: either the order and its items both
		// exist, or neither does.
		if delErr := s.orderRepo.Delete(order.ID); delErr != nil {
			log.Printf("Compensating delete of order %d failed: %v", order.ID, delErr)
		}
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	// A failed payment does not roll the order back; it persists in a
	// payment-pending/failed state for later retry.
	paymentResult := s.payments.ProcessPayment(ctx, models.PaymentRequest{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Amount:        order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		PhoneNumber:   order.DeliveryPhone,
		CustomerName:  order.DeliveryFirstName + " " + order.DeliveryLastName,
	})

	status := order.Status
	if current, err := s.orderRepo.GetByID(order.ID); err == nil {
		status = current.Status
	} else {
		log.Printf("Failed to reload order %d after payment: %v", order.ID, err)
	}

	confirmation := orderConfirmationMessage(order)
	if result := s.notifier.Send(ctx, order.DeliveryPhone, confirmation); !result.Success {
		log.Printf("Failed to send confirmation SMS for order %s: %s", order.OrderNumber, result.Message)
	}

	if s.publisher != nil {
		err := s.publisher.PublishOrderEvent("order.created", map[string]interface{}{
			"orderID":     order.ID,
			"orderNumber": order.OrderNumber,
			"status":      status,
			"total":       order.TotalAmount,
		})
		if err != nil {
			log.Printf("Warning: failed to publish order created event for order %s: %v", order.OrderNumber, err)
		}
	}

	return &CreateOrderResponse{
		Success: true,
		Order: OrderSummary{
			ID:          order.ID,
			OrderNumber: order.OrderNumber,
			Status:      status,
			TotalAmount: order.TotalAmount,
		},
		Payment: paymentResult,
	}, nil
}

// GetOrderByNumber retrieves an order by its human-facing number.
func (s *OrderService) GetOrderByNumber(orderNumber string) (*models.Order, error) {
	return s.orderRepo.GetByOrderNumber(orderNumber)
}

const orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateOrderNumber produces a BT<YY><MM><DD>-<6 chars> order number.
func generateOrderNumber(now time.Time) string {
	var b strings.Builder
	b.WriteString("BT")
	b.WriteString(now.Format("060102"))
	b.WriteByte('-')
	max := big.NewInt(int64(len(orderNumberAlphabet)))
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is
			// broken; degrade to a time-derived character.
			n = big.NewInt(now.UnixNano() >> uint(i) % int64(len(orderNumberAlphabet)))
		}
		b.WriteByte(orderNumberAlphabet[n.Int64()])
	}
	return b.String()
}

// moneyEqual compares monetary amounts with a sub-cent tolerance.
func moneyEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func validateOrderRequest(req *models.CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: le panier est vide", ErrValidation)
	}
	if !req.PaymentMethod.Valid() {
		return fmt.Errorf("%w: méthode de paiement inconnue %q", ErrValidation, req.PaymentMethod)
	}
	if req.DeliveryFee < 0 {
		return fmt.Errorf("%w: frais de livraison négatifs", ErrValidation)
	}

	var itemsTotal float64
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: quantité invalide pour l'article %d", ErrValidation, i+1)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("%w: prix unitaire négatif pour l'article %d", ErrValidation, i+1)
		}
		if !moneyEqual(item.Subtotal, float64(item.Quantity)*item.UnitPrice) {
			return fmt.Errorf("%w: sous-total incohérent pour l'article %d", ErrValidation, i+1)
		}
		itemsTotal += item.Subtotal
	}
	if !moneyEqual(itemsTotal, req.Subtotal) {
		return fmt.Errorf("%w: sous-total de la commande incohérent", ErrValidation)
	}
	if !moneyEqual(req.Subtotal+req.DeliveryFee, req.TotalAmount) {
		return fmt.Errorf("%w: montant total incohérent", ErrValidation)
	}
	return nil
}

var paymentMethodLabels = map[models.PaymentMethod]string{
	models.PaymentMethodWave:           "Wave",
	models.PaymentMethodOrangeMoney:    "Orange Money",
	models.PaymentMethodFreeMoney:      "Free Money",
	models.PaymentMethodCashOnDelivery: "Paiement à la livraison",
}

func orderConfirmationMessage(order *models.Order) string {
	label, ok := paymentMethodLabels[order.PaymentMethod]
	if !ok {
		label = string(order.PaymentMethod)
	}
	return fmt.Sprintf(
		"BichriTech - Commande Confirmée!\n\nBonjour %s,\n\nVotre commande %s de %s a été reçue.\n\nPaiement: %s\n\nMerci pour votre confiance!\nSupport: 77 123 45 67",
		order.DeliveryFirstName,
		order.OrderNumber,
		formatAmount(order.TotalAmount),
		label,
	)
}

// formatAmount renders an XOF amount with thousands separators, e.g.
// "255 000 FCFA".
func formatAmount(amount float64) string {
	digits := strconv.FormatInt(int64(math.Round(amount)), 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 && d != '-' {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	b.WriteString(" FCFA")
	return b.String()
}
