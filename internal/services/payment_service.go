package services

import (
	"context"
	"log"

	"bichritech/internal/models"
	"bichritech/internal/repositories"
)

// PaymentProcessor dispatches a payment request to the gateway for its
// method. Implemented by payments.Processor.
type PaymentProcessor interface {
	Process(ctx context.Context, req models.PaymentRequest) models.PaymentResult
}

// PaymentService runs a payment attempt for an existing order and
// applies the outcome to the order record.
type PaymentService struct {
	orderRepo repositories.OrderRepository
	processor PaymentProcessor
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(orderRepo repositories.OrderRepository, processor PaymentProcessor) *PaymentService {
	return &PaymentService{
		orderRepo: orderRepo,
		processor: processor,
	}
}

// ProcessPayment invokes the gateway for the request's payment method
// and, on a successful result, writes the outcome to the order in a
// single combined update: payment status stays PENDING unless the
// gateway reported synchronous completion, and only cash-on-delivery
// orders are promoted to CONFIRMED here. Redirect-based methods remain
// PENDING until their webhook arrives.
func (s *PaymentService) ProcessPayment(ctx context.Context, req models.PaymentRequest) models.PaymentResult {
	log.Printf("Processing %s payment for order %s", req.PaymentMethod, req.OrderNumber)

	result := s.processor.Process(ctx, req)
	if !result.Success {
		return result
	}

	paymentStatus := models.PaymentStatusPending
	if result.Status == models.PaymentStatusCompleted {
		paymentStatus = models.PaymentStatusCompleted
	}
	status := models.OrderStatusPending
	if req.PaymentMethod == models.PaymentMethodCashOnDelivery {
		status = models.OrderStatusConfirmed
	}

	if err := s.orderRepo.UpdatePaymentStatus(req.OrderID, paymentStatus, status); err != nil {
		// The payment attempt itself succeeded; surface the stale order
		// state in logs rather than failing the caller.
		log.Printf("Failed to update order %d after %s payment: %v", req.OrderID, req.PaymentMethod, err)
	}

	return result
}
