package models

// CartItem is one line of the cart snapshot supplied by the caller at
// checkout. Subtotal must equal Quantity * UnitPrice; the coordinator
// rejects inconsistent snapshots before writing anything.
type CartItem struct {
	ProductID       int64   `json:"productId" validate:"required"`
	ProductName     string  `json:"productName" validate:"required"`
	ProductBrand    string  `json:"productBrand"`
	ProductImageURL string  `json:"productImageUrl"`
	Quantity        int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice       float64 `json:"unitPrice" validate:"gte=0"`
	Subtotal        float64 `json:"subtotal" validate:"gte=0"`
}

// CreateOrderRequest is the order creation payload.
type CreateOrderRequest struct {
	Items         []CartItem    `json:"items" validate:"required,min=1,dive"`
	Subtotal      float64       `json:"subtotal" validate:"gte=0"`
	DeliveryFee   float64       `json:"deliveryFee" validate:"gte=0"`
	TotalAmount   float64       `json:"totalAmount" validate:"gte=0"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"required"`

	DeliveryFirstName string `json:"deliveryFirstName" validate:"required"`
	DeliveryLastName  string `json:"deliveryLastName" validate:"required"`
	DeliveryPhone     string `json:"deliveryPhone" validate:"required"`
	DeliveryAddress   string `json:"deliveryAddress" validate:"required"`
	DeliveryCity      string `json:"deliveryCity" validate:"required"`
	DeliveryRegion    string `json:"deliveryRegion"`
	DeliveryNotes     string `json:"deliveryNotes"`
}
