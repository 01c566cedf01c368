package posapi

import "time"

type OrderType string

const (
	TypeDineIn   OrderType = "dine_in"
	TypeTakeaway OrderType = "takeaway"
)

// Order mirrors the backend's order detail. The terminal treats its copy as
// a cache invalidated after every mutation; backend totals are authoritative.
type Order struct {
	ID                 string      `json:"id"`
	Status             Status      `json:"status"`
	Type               OrderType   `json:"type"`
	Items              []OrderItem `json:"items"`
	GrossTotal         int64       `json:"gross_total"`
	DiscountAmount     int64       `json:"discount_amount"`
	NetTotal           int64       `json:"net_total"`
	IsPaid             bool        `json:"is_paid"`
	AppliedPromotionID string      `json:"applied_promotion_id,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// Terminal reports whether the order can no longer be mutated. Some backend
// responses flip is_paid before the status catches up, so both are checked.
func (o *Order) Terminal() bool {
	return o.IsPaid || o.Status.Terminal()
}

type OrderItem struct {
	ProductID   string `json:"product_id"`
	VariantID   string `json:"variant_id,omitempty"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
}

type PaymentMethod struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GatewayAction is one follow-up action returned by the payment gateway;
// for dynamic QRIS one of them carries the displayable QR code URL.
type GatewayAction struct {
	Name   string `json:"name"`
	Method string `json:"method"`
	URL    string `json:"url"`
}

// CreateOrderItem is the create-order line shape: product, optional
// selected variant, quantity. Prices are never sent, the backend owns them.
type CreateOrderItem struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
}
