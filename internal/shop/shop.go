package shop

// Shop is a vendor storefront. Products belong to exactly one shop and
// order items carry the shop id so vendors can manage their own lines.
type Shop struct {
	ID          int    `json:"shopId"`
	OwnerID     int    `json:"ownerId"`
	Name        string `json:"shopName"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

const (
	StatusActive    = "ACTIVE"
	StatusSuspended = "SUSPENDED"
)
