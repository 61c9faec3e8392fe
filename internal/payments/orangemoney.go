package payments

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"

	"bichritech/internal/config"
	"bichritech/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

// orangeMoneyGateway is the live Orange Money webpay integration. Each
// payment is a two-step flow: a client-credentials OAuth exchange for a
// short-lived token, then a webpay session creation.
// Documentation: https://developer.orange.com/apis/om-webpay
type orangeMoneyGateway struct {
	client      *resty.Client
	breaker     *gobreaker.CircuitBreaker
	apiKey      string
	merchantKey string
	siteURL     string
	notifURL    string
}

func newOrangeMoneyGateway(cfg *config.Config) *orangeMoneyGateway {
	return &orangeMoneyGateway{
		client: resty.New().
			SetBaseURL("https://api.orange.com").
			SetTimeout(cfg.ProviderTimeout),
		breaker:     newProviderBreaker("orange_money"),
		apiKey:      cfg.OrangeMoney.APIKey,
		merchantKey: cfg.OrangeMoney.MerchantKey,
		siteURL:     cfg.SiteURL,
		notifURL:    cfg.BaseURL + "/api/v1/payments/webhook",
	}
}

type orangeTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type orangeWebpayResponse struct {
	PaymentURL string `json:"payment_url"`
	PayToken   string `json:"pay_token"`
	Message    string `json:"message"`
}

func (g *orangeMoneyGateway) Process(ctx context.Context, req models.PaymentRequest) models.PaymentResult {
	session, err := g.breaker.Execute(func() (interface{}, error) {
		token, err := g.fetchToken(ctx)
		if err != nil {
			return nil, err
		}

		var out orangeWebpayResponse
		resp, err := g.client.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetBody(map[string]interface{}{
				"merchant_key": g.merchantKey,
				"currency":     "OUV",
				"order_id":     req.OrderNumber,
				"amount":       req.Amount,
				"return_url":   g.siteURL + "/order-success?order=" + req.OrderNumber,
				"cancel_url":   g.siteURL + "/checkout?error=true",
				"notif_url":    g.notifURL,
				"lang":         "fr",
				"reference":    req.OrderNumber,
			}).
			SetResult(&out).
			Post("/orange-money-webpay/dev/v1/webpayment")
		if err != nil {
			return nil, err
		}
		if !resp.IsSuccess() || out.PaymentURL == "" {
			if out.Message != "" {
				return nil, errors.New(out.Message)
			}
			return nil, fmt.Errorf("erreur Orange Money API (%s)", resp.Status())
		}
		return &out, nil
	})
	if err != nil {
		log.Printf("Orange Money payment error for order %s: %v", req.OrderNumber, err)
		return models.PaymentResult{
			Success: false,
			Status:  models.PaymentStatusFailed,
			Message: "Erreur Orange Money: " + err.Error(),
		}
	}

	out := session.(*orangeWebpayResponse)
	return models.PaymentResult{
		Success:       true,
		TransactionID: out.PayToken,
		PaymentURL:    out.PaymentURL,
		Status:        models.PaymentStatusPending,
		Message:       "Redirection vers Orange Money",
	}
}

func (g *orangeMoneyGateway) fetchToken(ctx context.Context) (string, error) {
	var out orangeTokenResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(g.apiKey))).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody("grant_type=client_credentials").
		SetResult(&out).
		Post("/oauth/v3/token")
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() || out.AccessToken == "" {
		return "", errors.New("erreur d'authentification Orange")
	}
	return out.AccessToken, nil
}
