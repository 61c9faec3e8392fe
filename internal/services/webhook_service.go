package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"bichritech/internal/models"
	"bichritech/internal/repositories"
)

// ErrUnrecognizedPayload is returned when no provider parser matches an
// inbound webhook payload.
var ErrUnrecognizedPayload = errors.New("unrecognized webhook payload")

// webhookEvent is the normalized form of a provider callback: which
// provider sent it, which order it references, and whether the payment
// went through.
type webhookEvent struct {
	Provider    string
	OrderNumber string
	Completed   bool
}

type webhookParser func(payload map[string]interface{}) (*webhookEvent, bool)

// Providers share no envelope, so identification is structural: each
// parser is tried in a fixed order and claims a payload only when its
// provider's field pair is present.
var webhookParsers = []webhookParser{
	parseWaveWebhook,
	parseOrangeMoneyWebhook,
	parseFreeMoneyWebhook,
}

func parseWaveWebhook(payload map[string]interface{}) (*webhookEvent, bool) {
	reference, ok := stringField(payload, "client_reference")
	if !ok {
		return nil, false
	}
	status, ok := stringField(payload, "payment_status")
	if !ok {
		return nil, false
	}
	return &webhookEvent{
		Provider:    "wave",
		OrderNumber: reference,
		Completed:   status == "succeeded",
	}, true
}

func parseOrangeMoneyWebhook(payload map[string]interface{}) (*webhookEvent, bool) {
	reference, ok := stringField(payload, "order_id")
	if !ok {
		return nil, false
	}
	status, ok := stringField(payload, "status")
	if !ok {
		return nil, false
	}
	return &webhookEvent{
		Provider:    "orange_money",
		OrderNumber: reference,
		Completed:   status == "SUCCESS",
	}, true
}

func parseFreeMoneyWebhook(payload map[string]interface{}) (*webhookEvent, bool) {
	reference, ok := stringField(payload, "reference")
	if !ok {
		return nil, false
	}
	status, ok := stringField(payload, "transaction_status")
	if !ok {
		return nil, false
	}
	return &webhookEvent{
		Provider:    "free_money",
		OrderNumber: reference,
		Completed:   status == "completed",
	}, true
}

func stringField(payload map[string]interface{}, key string) (string, bool) {
	value, ok := payload[key]
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// WebhookService reconciles asynchronous provider callbacks with
// previously created orders.
type WebhookService struct {
	orderRepo repositories.OrderRepository
	notifier  Notifier
	publisher EventPublisher
}

// NewWebhookService creates a new WebhookService. publisher may be nil.
func NewWebhookService(orderRepo repositories.OrderRepository, notifier Notifier, publisher EventPublisher) *WebhookService {
	return &WebhookService{
		orderRepo: orderRepo,
		notifier:  notifier,
		publisher: publisher,
	}
}

// WebhookResult is the acknowledgement returned to the provider.
type WebhookResult struct {
	OrderNumber   string               `json:"orderNumber"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
}

// Reconcile identifies the provider from the payload shape, maps its
// status vocabulary onto the internal taxonomy, and updates the matching
// order. Providers redeliver webhooks, so a COMPLETED order seeing
// another completion is acknowledged without rewriting state or
// re-sending the payment SMS.
func (s *WebhookService) Reconcile(ctx context.Context, payload map[string]interface{}) (*WebhookResult, error) {
	var event *webhookEvent
	for _, parse := range webhookParsers {
		if parsed, ok := parse(payload); ok {
			event = parsed
			break
		}
	}
	if event == nil {
		return nil, ErrUnrecognizedPayload
	}

	log.Printf("Processing %s webhook for order %s (completed=%t)", event.Provider, event.OrderNumber, event.Completed)

	order, err := s.orderRepo.GetByOrderNumber(event.OrderNumber)
	if err != nil {
		// The provider references an order we have no record of; this
		// must surface, never be dropped silently.
		return nil, fmt.Errorf("%s webhook references unknown order %s: %w", event.Provider, event.OrderNumber, err)
	}

	if !event.Completed {
		// Failed payment: the order itself stays as it was so the
		// customer can retry through a fresh payment attempt.
		if err := s.orderRepo.UpdatePaymentStatus(order.ID, models.PaymentStatusFailed, order.Status); err != nil {
			return nil, fmt.Errorf("failed to record failed payment for order %s: %w", order.OrderNumber, err)
		}
		return &WebhookResult{OrderNumber: order.OrderNumber, PaymentStatus: models.PaymentStatusFailed}, nil
	}

	if order.PaymentStatus == models.PaymentStatusCompleted {
		log.Printf("Order %s already completed, acknowledging duplicate %s webhook", order.OrderNumber, event.Provider)
		return &WebhookResult{OrderNumber: order.OrderNumber, PaymentStatus: models.PaymentStatusCompleted}, nil
	}

	if err := s.orderRepo.UpdatePaymentStatus(order.ID, models.PaymentStatusCompleted, models.OrderStatusConfirmed); err != nil {
		return nil, fmt.Errorf("failed to record completed payment for order %s: %w", order.OrderNumber, err)
	}

	message := fmt.Sprintf(
		"BichriTech - Paiement Confirmé!\n\nVotre paiement pour la commande %s a été reçu.\n\nVotre commande est en cours de préparation.\n\nMerci!",
		order.OrderNumber,
	)
	if result := s.notifier.Send(ctx, order.DeliveryPhone, message); !result.Success {
		log.Printf("Failed to send payment confirmation SMS for order %s: %s", order.OrderNumber, result.Message)
	}

	if s.publisher != nil {
		err := s.publisher.PublishOrderEvent("order.payment_completed", map[string]interface{}{
			"orderID":     order.ID,
			"orderNumber": order.OrderNumber,
			"provider":    event.Provider,
		})
		if err != nil {
			log.Printf("Warning: failed to publish payment completed event for order %s: %v", order.OrderNumber, err)
		}
	}

	return &WebhookResult{OrderNumber: order.OrderNumber, PaymentStatus: models.PaymentStatusCompleted}, nil
}
