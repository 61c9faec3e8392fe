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

// freeMoneyGateway is the live Free Money integration: bearer API key
// plus a merchant ID header.
type freeMoneyGateway struct {
	client     *resty.Client
	breaker    *gobreaker.CircuitBreaker
	apiKey     string
	merchantID string
	siteURL    string
	notifURL   string
}

func newFreeMoneyGateway(cfg *config.Config) *freeMoneyGateway {
	return &freeMoneyGateway{
		client: resty.New().
			SetBaseURL("https://api.freemoney.sn").
			SetTimeout(cfg.ProviderTimeout),
		breaker:    newProviderBreaker("free_money"),
		apiKey:     cfg.FreeMoney.APIKey,
		merchantID: cfg.FreeMoney.MerchantID,
		siteURL:    cfg.SiteURL,
		notifURL:   cfg.BaseURL + "/api/v1/payments/webhook",
	}
}

type freeMoneyResponse struct {
	PaymentURL    string `json:"payment_url"`
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

func (g *freeMoneyGateway) Process(ctx context.Context, req models.PaymentRequest) models.PaymentResult {
	session, err := g.breaker.Execute(func() (interface{}, error) {
		var out freeMoneyResponse
		resp, err := g.client.R().
			SetContext(ctx).
			SetAuthToken(g.apiKey).
			SetHeader("X-Merchant-ID", g.merchantID).
			SetBody(map[string]interface{}{
				"amount":       req.Amount,
				"currency":     "XOF",
				"phone":        req.PhoneNumber,
				"reference":    req.OrderNumber,
				"callback_url": g.notifURL,
				"success_url":  g.siteURL + "/order-success?order=" + req.OrderNumber,
			}).
			SetResult(&out).
			Post("/v1/payments")
		if err != nil {
			return nil, err
		}
		if !resp.IsSuccess() || out.PaymentURL == "" {
			if out.Message != "" {
				return nil, errors.New(out.Message)
			}
			return nil, fmt.Errorf("erreur Free Money API (%s)", resp.Status())
		}
		return &out, nil
	})
	if err != nil {
		log.Printf("Free Money payment error for order %s: %v", req.OrderNumber, err)
		return models.PaymentResult{
			Success: false,
			Status:  models.PaymentStatusFailed,
			Message: "Erreur Free Money: " + err.Error(),
		}
	}

	out := session.(*freeMoneyResponse)
	return models.PaymentResult{
		Success:       true,
		TransactionID: out.TransactionID,
		PaymentURL:    out.PaymentURL,
		Status:        models.PaymentStatusPending,
		Message:       "Redirection vers Free Money",
	}
}
