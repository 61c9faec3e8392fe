package sms

import (
	"context"
	"log"

	"bichritech/internal/config"

	"github.com/go-resty/resty/v2"
)

// twilioProvider sends through Twilio, the international fallback when
// the local aggregator is unavailable.
type twilioProvider struct {
	client     *resty.Client
	accountSID string
	authToken  string
	from       string
}

func newTwilioProvider(cfg *config.Config) *twilioProvider {
	return &twilioProvider{
		client: resty.New().
			SetBaseURL("https://api.twilio.com").
			SetTimeout(cfg.ProviderTimeout),
		accountSID: cfg.Twilio.AccountSID,
		authToken:  cfg.Twilio.AuthToken,
		from:       cfg.Twilio.PhoneNumber,
	}
}

func (p *twilioProvider) Name() string { return "twilio" }

type twilioResponse struct {
	SID     string `json:"sid"`
	Message string `json:"message"`
}

func (p *twilioProvider) Send(ctx context.Context, to, body string) Result {
	var out twilioResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBasicAuth(p.accountSID, p.authToken).
		SetFormData(map[string]string{
			"To":   to,
			"From": p.from,
			"Body": body,
		}).
		SetResult(&out).
		Post("/2010-04-01/Accounts/" + p.accountSID + "/Messages.json")
	if err != nil {
		log.Printf("Twilio SMS error: %v", err)
		return Result{Success: false, Message: "Erreur SMS: " + err.Error()}
	}
	if !resp.IsSuccess() {
		message := out.Message
		if message == "" {
			message = resp.Status()
		}
		return Result{Success: false, Message: "Erreur Twilio: " + message}
	}

	log.Printf("SMS sent successfully via Twilio: %s", out.SID)
	return Result{
		Success:   true,
		MessageID: out.SID,
		Message:   "SMS envoyé avec succès",
	}
}
