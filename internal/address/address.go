package address

// Address is a shipping destination owned by a user. Rows are immutable
// once created because orders reference them as snapshots; an edit on the
// client side creates a new row.
type Address struct {
	ID        int    `json:"addressId"`
	UserID    int    `json:"userId"`
	Recipient string `json:"recipient"`
	Phone     string `json:"phone"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2,omitempty"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`
	CreatedAt string `json:"createdAt,omitempty"`
}
