package ordercache

import "time"

const (
	// Order detail mirror: order_detail:{order_id} -> order JSON
	keyOrderDetail = "order_detail:%s"

	// Backend payment-method list (changes rarely)
	keyPaymentMethods = "payment_methods"
)

var (
	TTLOrderDetail    = 5 * time.Minute
	TTLPaymentMethods = 15 * time.Minute
)
