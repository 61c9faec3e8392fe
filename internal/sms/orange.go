package sms

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"bichritech/internal/config"

	"github.com/go-resty/resty/v2"
)

// orangeProvider sends through the Orange SMS API, the local aggregator
// for Senegal. Like the Orange Money gateway it needs an OAuth
// client-credentials token per send.
type orangeProvider struct {
	client *resty.Client
	apiKey string
	sender string
}

func newOrangeProvider(cfg *config.Config) *orangeProvider {
	return &orangeProvider{
		client: resty.New().
			SetBaseURL("https://api.orange.com").
			SetTimeout(cfg.ProviderTimeout),
		apiKey: cfg.OrangeSMS.APIKey,
		sender: cfg.OrangeSMS.Sender,
	}
}

func (p *orangeProvider) Name() string { return "orange_sms" }

type orangeSMSResponse struct {
	OutboundSMSMessageRequest struct {
		ResourceURL string `json:"resourceURL"`
	} `json:"outboundSMSMessageRequest"`
	Message string `json:"message"`
}

func (p *orangeProvider) Send(ctx context.Context, to, body string) Result {
	token, err := p.fetchToken(ctx)
	if err != nil {
		log.Printf("Orange SMS auth error: %v", err)
		return Result{Success: false, Message: "Erreur d'authentification Orange SMS"}
	}

	var out orangeSMSResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(map[string]interface{}{
			"outboundSMSMessageRequest": map[string]interface{}{
				"address":       "tel:" + to,
				"senderAddress": "tel:" + p.sender,
				"outboundSMSTextMessage": map[string]string{
					"message": body,
				},
			},
		}).
		SetResult(&out).
		Post("/smsmessaging/v1/outbound/" + url.PathEscape("tel:+221") + "/requests")
	if err != nil {
		log.Printf("Orange SMS error: %v", err)
		return Result{Success: false, Message: "Erreur SMS: " + err.Error()}
	}
	if !resp.IsSuccess() {
		message := out.Message
		if message == "" {
			message = resp.Status()
		}
		return Result{Success: false, Message: "Erreur Orange SMS API: " + message}
	}

	messageID := out.OutboundSMSMessageRequest.ResourceURL
	if messageID == "" {
		messageID = fmt.Sprintf("ORANGE_%d", time.Now().UnixMilli())
	}
	return Result{
		Success:   true,
		MessageID: messageID,
		Message:   "SMS envoyé via Orange",
	}
}

func (p *orangeProvider) fetchToken(ctx context.Context) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(p.apiKey))).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody("grant_type=client_credentials").
		SetResult(&out).
		Post("/oauth/v3/token")
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() || out.AccessToken == "" {
		return "", errors.New("erreur d'authentification Orange SMS")
	}
	return out.AccessToken, nil
}
