// Package sms implements best-effort SMS notification: a provider chain
// resolved from configuration at startup, tried in order until one
// succeeds. The dispatcher always returns a result and never an error;
// order processing must not fail because a text message could not be
// sent.
package sms

import (
	"context"
	"fmt"
	"log"
	"time"

	"bichritech/internal/config"
	"bichritech/pkg/phone"
)

// Result describes the outcome of a send attempt.
type Result struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Message   string `json:"message"`
}

// Provider is a single SMS delivery channel.
type Provider interface {
	Name() string
	Send(ctx context.Context, to, body string) Result
}

// Dispatcher tries each provider in order and returns the first
// successful result, or the last failure if every provider fails.
type Dispatcher struct {
	providers []Provider
}

// NewDispatcher resolves the provider chain from configuration: Orange
// SMS first (local aggregator) when configured, then Twilio
// (international gateway). When Twilio is not configured the chain ends
// in a simulator, so unconfigured environments still get a successful
// result.
func NewDispatcher(cfg *config.Config) *Dispatcher {
	var providers []Provider
	if cfg.OrangeSMS.Configured() {
		providers = append(providers, newOrangeProvider(cfg))
	} else {
		log.Println("Orange SMS credentials not configured - skipping primary SMS provider")
	}
	if cfg.Twilio.Configured() {
		providers = append(providers, newTwilioProvider(cfg))
	} else {
		log.Println("Twilio credentials not configured - SMS will be simulated")
		providers = append(providers, simulatorProvider{})
	}
	return &Dispatcher{providers: providers}
}

// NewDispatcherWithProviders builds a dispatcher over an explicit chain.
func NewDispatcherWithProviders(providers ...Provider) *Dispatcher {
	return &Dispatcher{providers: providers}
}

// Send normalizes the destination number and walks the provider chain.
func (d *Dispatcher) Send(ctx context.Context, to, body string) Result {
	formatted := phone.Normalize(to)

	var last Result
	for _, p := range d.providers {
		last = p.Send(ctx, formatted, body)
		if last.Success {
			return last
		}
		log.Printf("SMS provider %s failed for %s: %s", p.Name(), formatted, last.Message)
	}
	return last
}

// simulatorProvider reports success without sending anything. Used when
// no real provider is configured.
type simulatorProvider struct{}

func (simulatorProvider) Name() string { return "simulator" }

func (simulatorProvider) Send(_ context.Context, _, _ string) Result {
	return Result{
		Success:   true,
		MessageID: fmt.Sprintf("SIM_%d", time.Now().UnixMilli()),
		Message:   "SMS simulé - Configuration SMS requise",
	}
}
