package models

// PaymentRequest carries everything a payment gateway needs to start a
// payment attempt for an already-persisted order.
type PaymentRequest struct {
	OrderID       uint          `json:"orderId" validate:"required"`
	OrderNumber   string        `json:"orderNumber" validate:"required"`
	Amount        float64       `json:"amount" validate:"gt=0"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"required"`
	PhoneNumber   string        `json:"phoneNumber" validate:"required"`
	CustomerName  string        `json:"customerName"`
}

// PaymentResult is the unified outcome of a payment attempt. A non-empty
// PaymentURL means the customer must be redirected to the provider's
// hosted page; completion is then learned later through the webhook.
type PaymentResult struct {
	Success       bool          `json:"success"`
	TransactionID string        `json:"transactionId,omitempty"`
	PaymentURL    string        `json:"paymentUrl,omitempty"`
	Status        PaymentStatus `json:"status"`
	Message       string        `json:"message"`
}
