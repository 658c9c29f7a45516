package cart

// Cart is the single pre-checkout collection a user owns. It is created
// lazily on first access. Totals are derived on every read, never stored.
type Cart struct {
	ID            int     `json:"cartId"`
	UserID        int     `json:"userId"`
	Items         []Item  `json:"items"`
	Subtotal      float64 `json:"subtotal"`
	DeliveryTotal float64 `json:"deliveryTotal"`
	Total         float64 `json:"total"`
	CreatedAt     string  `json:"createdAt,omitempty"`
	UpdatedAt     string  `json:"updatedAt,omitempty"`
}

// Item is one (product, variant) line. UnitPrice and DeliveryCharge are
// snapshots taken when the line was added or last updated; they do not
// follow later catalog price changes.
type Item struct {
	ID             int     `json:"cartItemId"`
	CartID         int     `json:"cartId"`
	ProductID      int     `json:"productId"`
	VariantID      *int    `json:"variantId,omitempty"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unitPrice"`
	DeliveryCharge float64 `json:"deliveryCharge"`
	ItemTotal      float64 `json:"itemTotal"`
	DeliveryTotal  float64 `json:"deliveryTotal"`

	Product *ItemProduct `json:"product,omitempty"`
	Variant *ItemVariant `json:"variant,omitempty"`
}

// ItemProduct is the minimal live product projection joined onto a cart
// line for display and re-validation.
type ItemProduct struct {
	ID             int     `json:"productId"`
	Name           string  `json:"productName"`
	Price          float64 `json:"price"`
	DiscountPct    float64 `json:"discountPct"`
	DeliveryCharge float64 `json:"deliveryCharge"`
	Stock          int     `json:"stock"`
	Status         string  `json:"status"`
	Image          *string `json:"image,omitempty"`
}

type ItemVariant struct {
	ID        int     `json:"variantId"`
	Name      string  `json:"variantName"`
	Value     string  `json:"variantValue"`
	PriceDiff float64 `json:"priceDiff"`
	Stock     int     `json:"stock"`
}

// computeTotals fills the derived per-item and cart-level amounts.
func (c *Cart) computeTotals() {
	c.Subtotal = 0
	c.DeliveryTotal = 0
	for i := range c.Items {
		it := &c.Items[i]
		it.ItemTotal = it.UnitPrice * float64(it.Quantity)
		it.DeliveryTotal = it.DeliveryCharge * float64(it.Quantity)
		c.Subtotal += it.ItemTotal
		c.DeliveryTotal += it.DeliveryTotal
	}
	c.Total = c.Subtotal + c.DeliveryTotal
}
