package models

import "time"

// PaymentMethod identifies how the customer pays for an order.
type PaymentMethod string

const (
	PaymentMethodWave           PaymentMethod = "WAVE"
	PaymentMethodOrangeMoney    PaymentMethod = "ORANGE_MONEY"
	PaymentMethodFreeMoney      PaymentMethod = "FREE_MONEY"
	PaymentMethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
)

// Valid reports whether the method is one of the supported variants.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodWave, PaymentMethodOrangeMoney, PaymentMethodFreeMoney, PaymentMethodCashOnDelivery:
		return true
	}
	return false
}

// PaymentStatus tracks the lifecycle of an order's payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// OrderStatus tracks the fulfilment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// Order represents a customer order. PaymentStatus and Status are only
// ever written together in a single update so the two can never drift
// apart across interleaved writes.
type Order struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	UserID        *string       `json:"user_id" gorm:"type:varchar(36);index"`
	OrderNumber   string        `json:"order_number" gorm:"uniqueIndex;type:varchar(20)"`
	Status        OrderStatus   `json:"status" gorm:"type:varchar(20)"`
	PaymentMethod PaymentMethod `json:"payment_method" gorm:"type:varchar(20)"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:varchar(20)"`

	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"delivery_fee"`
	TotalAmount float64 `json:"total_amount"`

	DeliveryFirstName string `json:"delivery_first_name" gorm:"type:varchar(100)"`
	DeliveryLastName  string `json:"delivery_last_name" gorm:"type:varchar(100)"`
	DeliveryPhone     string `json:"delivery_phone" gorm:"type:varchar(20)"`
	DeliveryAddress   string `json:"delivery_address" gorm:"type:varchar(255)"`
	DeliveryCity      string `json:"delivery_city" gorm:"type:varchar(100)"`
	DeliveryRegion    string `json:"delivery_region" gorm:"type:varchar(100)"`
	DeliveryNotes     string `json:"delivery_notes" gorm:"type:varchar(500)"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItem is a snapshot of a product at order time. It is deliberately
// decoupled from the live catalog so later product edits never alter
// historical orders.
type OrderItem struct {
	ID              uint    `json:"id" gorm:"primaryKey"`
	OrderID         uint    `json:"order_id" gorm:"index"`
	ProductID       int64   `json:"product_id"`
	ProductName     string  `json:"product_name" gorm:"type:varchar(255)"`
	ProductBrand    string  `json:"product_brand" gorm:"type:varchar(100)"`
	ProductImageURL string  `json:"product_image_url" gorm:"type:varchar(500)"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	TotalPrice      float64 `json:"total_price"`
}
