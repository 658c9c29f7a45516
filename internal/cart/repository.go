package cart

import (
	"errors"
	"sync"

	"github.com/tanakrit-dev/marketplace-backend/internal/product"
)

var (
	ErrItemNotFound      = errors.New("cart item not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrVariantNotFound   = errors.New("product variant not found")
	ErrProductInactive   = errors.New("product is not available for purchase")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
)

type Repository interface {
	// GetOrCreate returns the user's cart, creating the row on first
	// access. Items come back with their live product/variant projections.
	GetOrCreate(userID int) (Cart, error)
	// UpsertItem sets the line for (cartID, productID, variantID) to the
	// given quantity and snapshots, inserting the row if it is new.
	UpsertItem(cartID, productID int, variantID *int, quantity int, unitPrice, deliveryCharge float64) error
	UpdateItem(cartID, itemID, quantity int, unitPrice, deliveryCharge float64) error
	DeleteItem(cartID, itemID int) error
	Clear(cartID int) error
}

// InMemoryRepository keeps carts in memory, resolving product projections
// from the given catalog repository. Used for tests and local scenarios.
type InMemoryRepository struct {
	mu       sync.Mutex
	products product.Repository
	nextCart int
	nextItem int
	carts    map[int]*Cart // by userID
}

func NewInMemoryRepository(products product.Repository) *InMemoryRepository {
	return &InMemoryRepository{
		products: products,
		nextCart: 1,
		nextItem: 1,
		carts:    map[int]*Cart{},
	}
}

func (r *InMemoryRepository) GetOrCreate(userID int) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		c = &Cart{ID: r.nextCart, UserID: userID}
		r.nextCart++
		r.carts[userID] = c
	}

	out := Cart{ID: c.ID, UserID: c.UserID, Items: make([]Item, 0, len(c.Items))}
	for _, it := range c.Items {
		if p, err := r.products.GetByID(it.ProductID); err == nil {
			it.Product = &ItemProduct{
				ID: p.ID, Name: p.Name, Price: p.Price, DiscountPct: p.DiscountPct,
				DeliveryCharge: p.DeliveryCharge, Stock: p.Stock, Status: p.Status, Image: p.Image,
			}
		}
		if it.VariantID != nil {
			if v, err := r.products.GetVariant(*it.VariantID); err == nil {
				it.Variant = &ItemVariant{ID: v.ID, Name: v.Name, Value: v.Value, PriceDiff: v.PriceDiff, Stock: v.Stock}
			}
		}
		out.Items = append(out.Items, it)
	}
	return out, nil
}

func (r *InMemoryRepository) UpsertItem(cartID, productID int, variantID *int, quantity int, unitPrice, deliveryCharge float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.cartByID(cartID)
	if c == nil {
		return ErrItemNotFound
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID && sameVariant(c.Items[i].VariantID, variantID) {
			c.Items[i].Quantity = quantity
			c.Items[i].UnitPrice = unitPrice
			c.Items[i].DeliveryCharge = deliveryCharge
			return nil
		}
	}
	c.Items = append(c.Items, Item{
		ID: r.nextItem, CartID: cartID, ProductID: productID, VariantID: variantID,
		Quantity: quantity, UnitPrice: unitPrice, DeliveryCharge: deliveryCharge,
	})
	r.nextItem++
	return nil
}

func (r *InMemoryRepository) UpdateItem(cartID, itemID, quantity int, unitPrice, deliveryCharge float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.cartByID(cartID)
	if c == nil {
		return ErrItemNotFound
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Quantity = quantity
			c.Items[i].UnitPrice = unitPrice
			c.Items[i].DeliveryCharge = deliveryCharge
			return nil
		}
	}
	return ErrItemNotFound
}

func (r *InMemoryRepository) DeleteItem(cartID, itemID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.cartByID(cartID)
	if c == nil {
		return ErrItemNotFound
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func (r *InMemoryRepository) Clear(cartID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.cartByID(cartID); c != nil {
		c.Items = nil
	}
	return nil
}

func (r *InMemoryRepository) cartByID(cartID int) *Cart {
	for _, c := range r.carts {
		if c.ID == cartID {
			return c
		}
	}
	return nil
}

func sameVariant(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
