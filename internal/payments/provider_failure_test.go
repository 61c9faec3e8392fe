package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bichritech/internal/config"
	"bichritech/internal/models"

	"github.com/stretchr/testify/assert"
)

func liveConfig(timeout time.Duration) *config.Config {
	return &config.Config{
		ProviderTimeout: timeout,
		SiteURL:         "https://shop.example",
		BaseURL:         "https://api.example",
		Wave:            config.WaveConfig{APIKey: "wave-key", MerchantID: "wave-merchant"},
		OrangeMoney:     config.OrangeMoneyConfig{APIKey: "om-key", MerchantKey: "om-merchant"},
		FreeMoney:       config.FreeMoneyConfig{APIKey: "fm-key", MerchantID: "fm-merchant"},
	}
}

func failureRequest() models.PaymentRequest {
	return models.PaymentRequest{
		OrderID:       1,
		OrderNumber:   "BT250101-ABC123",
		Amount:        255000,
		PaymentMethod: models.PaymentMethodWave,
		PhoneNumber:   "+221771234567",
		CustomerName:  "Awa Diop",
	}
}

// A provider that never answers must fail the payment once the client
// timeout elapses, exactly like any other provider error.
func TestWaveGateway_TimeoutBecomesFailedResult(t *testing.T) {
	// The request context is never cancelled here because the unread POST
	// body keeps the server from watching the connection, so the handler
	// also needs a teardown signal or srv.Close deadlocks.
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-done:
		}
	}))
	defer srv.Close()
	defer close(done)

	gateway := newWaveGateway(liveConfig(100 * time.Millisecond))
	gateway.client.SetBaseURL(srv.URL)

	result := gateway.Process(context.Background(), failureRequest())

	assert.False(t, result.Success)
	assert.Equal(t, models.PaymentStatusFailed, result.Status)
	assert.True(t, strings.HasPrefix(result.Message, "Erreur Wave:"), "got message %q", result.Message)
	assert.Empty(t, result.PaymentURL)
}

func TestWaveGateway_Non2xxBecomesFailedResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	gateway := newWaveGateway(liveConfig(time.Second))
	gateway.client.SetBaseURL(srv.URL)

	result := gateway.Process(context.Background(), failureRequest())

	assert.False(t, result.Success)
	assert.Equal(t, models.PaymentStatusFailed, result.Status)
	assert.Contains(t, result.Message, "502")
}

// Three straight failures trip the breaker; the next attempt is rejected
// without reaching the provider and still surfaces as a FAILED result.
func TestWaveGateway_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	gateway := newWaveGateway(liveConfig(time.Second))
	gateway.client.SetBaseURL(srv.URL)

	for i := 0; i < 3; i++ {
		result := gateway.Process(context.Background(), failureRequest())
		assert.False(t, result.Success)
	}
	assert.Equal(t, 3, hits)

	result := gateway.Process(context.Background(), failureRequest())

	assert.False(t, result.Success)
	assert.Equal(t, models.PaymentStatusFailed, result.Status)
	assert.Equal(t, 3, hits, "an open breaker must not reach the provider")
}

func TestOrangeMoneyGateway_AuthFailureBecomesFailedResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	gateway := newOrangeMoneyGateway(liveConfig(time.Second))
	gateway.client.SetBaseURL(srv.URL)

	req := failureRequest()
	req.PaymentMethod = models.PaymentMethodOrangeMoney
	result := gateway.Process(context.Background(), req)

	assert.False(t, result.Success)
	assert.Equal(t, models.PaymentStatusFailed, result.Status)
	assert.Contains(t, result.Message, "Erreur Orange Money")
}

// A webpay response without a payment URL is malformed even when the
// status line says 200.
func TestOrangeMoneyGateway_MalformedResponseBecomesFailedResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "/oauth/") {
			w.Write([]byte(`{"access_token":"tok"}`))
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	gateway := newOrangeMoneyGateway(liveConfig(time.Second))
	gateway.client.SetBaseURL(srv.URL)

	req := failureRequest()
	req.PaymentMethod = models.PaymentMethodOrangeMoney
	result := gateway.Process(context.Background(), req)

	assert.False(t, result.Success)
	assert.Equal(t, models.PaymentStatusFailed, result.Status)
	assert.Empty(t, result.PaymentURL)
}

func TestFreeMoneyGateway_MalformedResponseBecomesFailedResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"transaction_id":"tx-1"}`))
	}))
	defer srv.Close()

	gateway := newFreeMoneyGateway(liveConfig(time.Second))
	gateway.client.SetBaseURL(srv.URL)

	req := failureRequest()
	req.PaymentMethod = models.PaymentMethodFreeMoney
	result := gateway.Process(context.Background(), req)

	assert.False(t, result.Success)
	assert.Equal(t, models.PaymentStatusFailed, result.Status)
	assert.Contains(t, result.Message, "Erreur Free Money")
}
