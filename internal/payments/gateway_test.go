package payments_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"bichritech/internal/config"
	"bichritech/internal/models"
	"bichritech/internal/payments"

	"github.com/stretchr/testify/assert"
)

// An empty config puts every provider into simulation mode.
func newSimulationProcessor() *payments.Processor {
	return payments.NewProcessor(&config.Config{
		ProviderTimeout: time.Second,
		SiteURL:         "https://shop.example",
		BaseURL:         "https://api.example",
	})
}

func paymentRequest(method models.PaymentMethod) models.PaymentRequest {
	return models.PaymentRequest{
		OrderID:       1,
		OrderNumber:   "BT250101-ABC123",
		Amount:        255000,
		PaymentMethod: method,
		PhoneNumber:   "+221771234567",
		CustomerName:  "Awa Diop",
	}
}

func TestProcessor_SimulationMode(t *testing.T) {
	processor := newSimulationProcessor()

	cases := []struct {
		method models.PaymentMethod
		tag    string
	}{
		{models.PaymentMethodWave, "WAVE_SIM_"},
		{models.PaymentMethodOrangeMoney, "OM_SIM_"},
		{models.PaymentMethodFreeMoney, "FM_SIM_"},
	}

	for _, tc := range cases {
		result := processor.Process(context.Background(), paymentRequest(tc.method))

		assert.True(t, result.Success, "simulated %s payment should succeed", tc.method)
		assert.Equal(t, models.PaymentStatusPending, result.Status)
		assert.True(t, strings.HasPrefix(result.TransactionID, tc.tag),
			"transaction ID %q should carry the %s tag", result.TransactionID, tc.tag)
		assert.Empty(t, result.PaymentURL, "simulated payments never redirect")
	}
}

func TestProcessor_CashOnDelivery(t *testing.T) {
	processor := newSimulationProcessor()

	result := processor.Process(context.Background(), paymentRequest(models.PaymentMethodCashOnDelivery))

	assert.True(t, result.Success)
	assert.Equal(t, models.PaymentStatusPending, result.Status)
	assert.True(t, strings.HasPrefix(result.TransactionID, "COD_"))
	assert.Empty(t, result.PaymentURL)
}

func TestProcessor_UnsupportedMethod(t *testing.T) {
	processor := newSimulationProcessor()

	result := processor.Process(context.Background(), paymentRequest(models.PaymentMethod("PAYPAL")))

	assert.False(t, result.Success)
	assert.Equal(t, models.PaymentStatusFailed, result.Status)
	assert.Contains(t, result.Message, "non supportée")
}
