package order

import (
	"github.com/tanakrit-dev/marketplace-backend/internal/address"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
	StatusReturned  Status = "RETURNED"
)

// validNext is the fulfillment state machine. CANCELLED and RETURNED are
// terminal.
var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusShipped: true, StatusCancelled: true, StatusReturned: true},
	StatusShipped:   {StatusDelivered: true},
	StatusDelivered: {StatusReturned: true},
	StatusCancelled: {},
	StatusReturned:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func ValidStatus(s Status) bool {
	_, ok := validNext[s]
	return ok
}

// Terminal reports whether no further fulfillment transitions exist.
func (s Status) Terminal() bool {
	return len(validNext[s]) == 0 && ValidStatus(s)
}

// PaymentStatus tracks money received, independent of fulfillment status.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

func ValidPaymentStatus(p PaymentStatus) bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Order is an immutable-once-placed purchase record. Items are fixed at
// creation; only status, payment state and per-item tracking move after
// that. Total always equals Subtotal - Discount + ShippingFee, where
// ShippingFee aggregates the per-item delivery charges.
type Order struct {
	ID                int              `json:"orderId"`
	Number            string           `json:"orderNumber"`
	UserID            int              `json:"userId"`
	Status            Status           `json:"status"`
	PaymentStatus     *PaymentStatus   `json:"paymentStatus"`
	PaymentMethod     *string          `json:"paymentMethod,omitempty"`
	Subtotal          float64          `json:"subtotalAmount"`
	Discount          float64          `json:"discountAmount"`
	ShippingFee       float64          `json:"shippingFee"`
	Total             float64          `json:"totalAmount"`
	Notes             string           `json:"notes,omitempty"`
	ShippingAddressID int              `json:"shippingAddressId"`
	ShippingAddress   *address.Address `json:"shippingAddress,omitempty"`
	Items             []Item           `json:"items"`
	PlacedAt          string           `json:"placedAt"`
	UpdatedAt         string           `json:"updatedAt"`
}

// Item is one purchased line. ShopID is denormalized so vendors can query
// and manage their own lines without joining through products.
type Item struct {
	ID                int     `json:"orderItemId"`
	OrderID           int     `json:"orderId"`
	ProductID         int     `json:"productId"`
	ShopID            int     `json:"shopId"`
	VariantID         *int    `json:"variantId,omitempty"`
	Quantity          int     `json:"quantity"`
	UnitPrice         float64 `json:"unitPrice"`
	TotalPrice        float64 `json:"totalPrice"`
	DeliveryCharge    float64 `json:"deliveryCharge"`
	Status            Status  `json:"status"`
	Carrier           *string `json:"carrier,omitempty"`
	TrackingCode      *string `json:"trackingCode,omitempty"`
	TrackingURL       *string `json:"trackingUrl,omitempty"`
	EstimatedDelivery *string `json:"estimatedDelivery,omitempty"`
	DeliveredAt       *string `json:"deliveredAt,omitempty"`
}
