package payments

import (
	"context"
	"errors"
	"fmt"
	"log"

	"bichritech/internal/config"
	"bichritech/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

// waveGateway is the live Wave checkout integration.
// Documentation: https://developer.wave.com
type waveGateway struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
	apiKey  string
	siteURL string
}

func newWaveGateway(cfg *config.Config) *waveGateway {
	return &waveGateway{
		client: resty.New().
			SetBaseURL("https://api.wave.com").
			SetTimeout(cfg.ProviderTimeout),
		breaker: newProviderBreaker("wave"),
		apiKey:  cfg.Wave.APIKey,
		siteURL: cfg.SiteURL,
	}
}

type waveCheckoutResponse struct {
	ID            string `json:"id"`
	WaveLaunchURL string `json:"wave_launch_url"`
	Message       string `json:"message"`
}

func (g *waveGateway) Process(ctx context.Context, req models.PaymentRequest) models.PaymentResult {
	session, err := g.breaker.Execute(func() (interface{}, error) {
		var out waveCheckoutResponse
		resp, err := g.client.R().
			SetContext(ctx).
			SetAuthToken(g.apiKey).
			SetBody(map[string]interface{}{
				"amount":           req.Amount,
				"currency":         "XOF",
				"error_url":        g.siteURL + "/checkout?error=true",
				"success_url":      g.siteURL + "/order-success?order=" + req.OrderNumber,
				"client_reference": req.OrderNumber,
			}).
			SetResult(&out).
			Post("/v1/checkout/sessions")
		if err != nil {
			return nil, err
		}
		if !resp.IsSuccess() || out.WaveLaunchURL == "" {
			if out.Message != "" {
				return nil, errors.New(out.Message)
			}
			return nil, fmt.Errorf("erreur Wave API (%s)", resp.Status())
		}
		return &out, nil
	})
	if err != nil {
		log.Printf("Wave payment error for order %s: %v", req.OrderNumber, err)
		return models.PaymentResult{
			Success: false,
			Status:  models.PaymentStatusFailed,
			Message: "Erreur Wave: " + err.Error(),
		}
	}

	out := session.(*waveCheckoutResponse)
	return models.PaymentResult{
		Success:       true,
		TransactionID: out.ID,
		PaymentURL:    out.WaveLaunchURL,
		Status:        models.PaymentStatusPending,
		Message:       "Redirection vers Wave",
	}
}
