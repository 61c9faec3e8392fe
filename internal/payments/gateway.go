// Package payments implements the payment gateway abstraction: one
// gateway per payment method, resolved from configuration at startup.
// A provider whose credential pair is absent gets a deterministic
// simulator instead of a live integration, so the whole pipeline runs
// identically in environments without payment credentials.
package payments

import (
	"context"
	"fmt"
	"log"
	"time"

	"bichritech/internal/config"
	"bichritech/internal/models"

	"github.com/sony/gobreaker"
)

// Gateway processes a payment request for a single payment method. It
// never returns an error: every reachable failure is converted into a
// FAILED PaymentResult with a human-readable message.
type Gateway interface {
	Process(ctx context.Context, req models.PaymentRequest) models.PaymentResult
}

// Processor dispatches payment requests to the gateway registered for
// their method.
type Processor struct {
	gateways map[models.PaymentMethod]Gateway
}

// NewProcessor resolves one gateway per payment method from the
// configuration. The live-vs-simulation decision is made here, once,
// not inside each call.
func NewProcessor(cfg *config.Config) *Processor {
	gateways := make(map[models.PaymentMethod]Gateway)

	if cfg.Wave.Configured() {
		gateways[models.PaymentMethodWave] = newWaveGateway(cfg)
	} else {
		log.Println("Wave API keys not configured - payments will be simulated")
		gateways[models.PaymentMethodWave] = simulatedGateway{
			tag:     "WAVE_SIM_",
			message: "Paiement Wave simulé - En attente de configuration API",
		}
	}

	if cfg.OrangeMoney.Configured() {
		gateways[models.PaymentMethodOrangeMoney] = newOrangeMoneyGateway(cfg)
	} else {
		log.Println("Orange Money API keys not configured - payments will be simulated")
		gateways[models.PaymentMethodOrangeMoney] = simulatedGateway{
			tag:     "OM_SIM_",
			message: "Paiement Orange Money simulé - En attente de configuration API",
		}
	}

	if cfg.FreeMoney.Configured() {
		gateways[models.PaymentMethodFreeMoney] = newFreeMoneyGateway(cfg)
	} else {
		log.Println("Free Money API keys not configured - payments will be simulated")
		gateways[models.PaymentMethodFreeMoney] = simulatedGateway{
			tag:     "FM_SIM_",
			message: "Paiement Free Money simulé - En attente de configuration API",
		}
	}

	gateways[models.PaymentMethodCashOnDelivery] = cashOnDeliveryGateway{}

	return &Processor{gateways: gateways}
}

// Process routes the request to the gateway for its payment method.
func (p *Processor) Process(ctx context.Context, req models.PaymentRequest) models.PaymentResult {
	gateway, ok := p.gateways[req.PaymentMethod]
	if !ok {
		return models.PaymentResult{
			Success: false,
			Status:  models.PaymentStatusFailed,
			Message: "Méthode de paiement non supportée",
		}
	}
	return gateway.Process(ctx, req)
}

// simulatedGateway stands in for a provider whose credentials are not
// configured. It performs no network call and always succeeds with a
// provider-tagged transaction ID, status PENDING and no redirect URL.
type simulatedGateway struct {
	tag     string
	message string
}

func (g simulatedGateway) Process(_ context.Context, _ models.PaymentRequest) models.PaymentResult {
	return models.PaymentResult{
		Success:       true,
		TransactionID: fmt.Sprintf("%s%d", g.tag, time.Now().UnixMilli()),
		Status:        models.PaymentStatusPending,
		Message:       g.message,
	}
}

// cashOnDeliveryGateway handles CASH_ON_DELIVERY: synchronous, always
// succeeds, stays PENDING until physical collection, no redirect.
type cashOnDeliveryGateway struct{}

func (cashOnDeliveryGateway) Process(_ context.Context, _ models.PaymentRequest) models.PaymentResult {
	return models.PaymentResult{
		Success:       true,
		TransactionID: fmt.Sprintf("COD_%d", time.Now().UnixMilli()),
		Status:        models.PaymentStatusPending,
		Message:       "Commande confirmée - Paiement à la livraison",
	}
}

// newProviderBreaker builds the circuit breaker shared by the live
// gateways. A tripped breaker turns into an ordinary FAILED result, the
// same as any other provider error.
func newProviderBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(cbName string, from gobreaker.State, to gobreaker.State) {
			log.Printf("payment provider %s circuit breaker %s -> %s", cbName, from, to)
		},
	})
}
