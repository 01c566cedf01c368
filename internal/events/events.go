package events

import (
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	EventCheckoutCompleted = "CheckoutCompleted"
	EventCheckoutCancelled = "CheckoutCancelled"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type CheckoutItem struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

type CheckoutCompletedPayload struct {
	OrderID         string         `json:"order_id"`
	SessionID       string         `json:"session_id"`
	OrderType       string         `json:"order_type"`
	PaymentMethodID string         `json:"payment_method_id"`
	PaymentKind     string         `json:"payment_kind"`
	Items           []CheckoutItem `json:"items,omitempty"`
	GrossTotal      int64          `json:"gross_total"`
	DiscountAmount  int64          `json:"discount_amount"`
	NetTotal        int64          `json:"net_total"`
	CashReceived    int64          `json:"cash_received"`
	ChangeDue       int64          `json:"change_due"`
}

type CheckoutCancelledPayload struct {
	OrderID   string `json:"order_id"`
	SessionID string `json:"session_id"`
	ReasonID  string `json:"reason_id"`
	Notes     string `json:"notes,omitempty"`
}

// Publisher is what the checkout session needs from the Kafka producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafka.Header)
}
