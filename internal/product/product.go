package product

// Product maps to the `products` table. Price fields are plain amounts,
// DiscountPct is a percentage of the unit price (0 means no discount).
// Stock is only ever mutated through the order flow's guarded updates.
type Product struct {
	ID             int     `json:"productId"`
	ShopID         int     `json:"shopId"`
	Name           string  `json:"productName"`
	Description    string  `json:"description,omitempty"`
	Price          float64 `json:"price"`
	DiscountPct    float64 `json:"discountPct"`
	DeliveryCharge float64 `json:"deliveryCharge"`
	Stock          int     `json:"stock"`
	Status         string  `json:"status"`
	Image          *string `json:"image,omitempty"`
	CreatedAt      string  `json:"createdAt,omitempty"`
	UpdatedAt      string  `json:"updatedAt,omitempty"`
}

// Variant is a purchasable configuration of a product (e.g. Color/Red)
// with its own stock pool and an optional price delta on top of the
// product's base price.
type Variant struct {
	ID        int     `json:"variantId"`
	ProductID int     `json:"productId"`
	Name      string  `json:"variantName"`
	Value     string  `json:"variantValue"`
	PriceDiff float64 `json:"priceDiff"`
	Stock     int     `json:"stock"`
}

const (
	StatusActive   = "ACTIVE"
	StatusDraft    = "DRAFT"
	StatusInactive = "INACTIVE"
)

// DiscountedUnitPrice is the effective unit price of one unit of the
// product with the given variant (nil for none): base price minus the
// percentage discount plus the variant's price delta.
func (p Product) DiscountedUnitPrice(v *Variant) float64 {
	price := p.Price - p.Price*p.DiscountPct/100
	if v != nil {
		price += v.PriceDiff
	}
	return price
}
