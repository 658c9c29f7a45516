package cart

import (
	"fmt"

	"github.com/tanakrit-dev/marketplace-backend/internal/product"
)

// Catalog is the slice of the product service the cart needs.
type Catalog interface {
	GetByID(id int) (product.Product, error)
	GetVariantOf(productID, variantID int) (product.Variant, error)
}

type Service struct {
	repo    Repository
	catalog Catalog
}

func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// Get returns the user's cart with derived totals, creating it lazily.
func (s *Service) Get(userID int) (Cart, error) {
	c, err := s.repo.GetOrCreate(userID)
	if err != nil {
		return Cart{}, err
	}
	c.computeTotals()
	return c, nil
}

// AddItem upserts a (product, variant) line. Adding a combination that is
// already in the cart increases the existing row's quantity. The unit
// price (discounted, plus variant delta) and the product's delivery
// charge are snapshotted on the row.
func (s *Service) AddItem(userID, productID int, variantID *int, quantity int) (Cart, error) {
	if quantity <= 0 {
		return Cart{}, fmt.Errorf("quantity must be positive")
	}

	p, err := s.catalog.GetByID(productID)
	if err != nil {
		return Cart{}, ErrProductNotFound
	}
	if p.Status != product.StatusActive {
		return Cart{}, ErrProductInactive
	}

	var v *product.Variant
	available := p.Stock
	if variantID != nil {
		variant, err := s.catalog.GetVariantOf(productID, *variantID)
		if err != nil {
			return Cart{}, ErrVariantNotFound
		}
		v = &variant
		available = variant.Stock
	}

	c, err := s.repo.GetOrCreate(userID)
	if err != nil {
		return Cart{}, err
	}

	newQuantity := quantity
	for _, it := range c.Items {
		if it.ProductID == productID && sameVariant(it.VariantID, variantID) {
			newQuantity += it.Quantity
			break
		}
	}
	if newQuantity > available {
		return Cart{}, ErrInsufficientStock
	}

	unitPrice := p.DiscountedUnitPrice(v)
	if err := s.repo.UpsertItem(c.ID, productID, variantID, newQuantity, unitPrice, p.DeliveryCharge); err != nil {
		return Cart{}, err
	}
	return s.Get(userID)
}

// UpdateItemQuantity sets a line's quantity. A quantity of zero or less
// removes the line (the documented remove-via-zero contract). Snapshots
// are refreshed from the live catalog when the row is updated.
func (s *Service) UpdateItemQuantity(userID, itemID, quantity int) (Cart, error) {
	c, err := s.repo.GetOrCreate(userID)
	if err != nil {
		return Cart{}, err
	}

	var target *Item
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			target = &c.Items[i]
			break
		}
	}
	if target == nil {
		return Cart{}, ErrItemNotFound
	}

	if quantity <= 0 {
		if err := s.repo.DeleteItem(c.ID, itemID); err != nil {
			return Cart{}, err
		}
		return s.Get(userID)
	}

	p, err := s.catalog.GetByID(target.ProductID)
	if err != nil {
		return Cart{}, ErrProductNotFound
	}
	if p.Status != product.StatusActive {
		return Cart{}, ErrProductInactive
	}

	var v *product.Variant
	available := p.Stock
	if target.VariantID != nil {
		variant, err := s.catalog.GetVariantOf(target.ProductID, *target.VariantID)
		if err != nil {
			return Cart{}, ErrVariantNotFound
		}
		v = &variant
		available = variant.Stock
	}
	if quantity > available {
		return Cart{}, ErrInsufficientStock
	}

	if err := s.repo.UpdateItem(c.ID, itemID, quantity, p.DiscountedUnitPrice(v), p.DeliveryCharge); err != nil {
		return Cart{}, err
	}
	return s.Get(userID)
}

func (s *Service) RemoveItem(userID, itemID int) (Cart, error) {
	c, err := s.repo.GetOrCreate(userID)
	if err != nil {
		return Cart{}, err
	}
	if err := s.repo.DeleteItem(c.ID, itemID); err != nil {
		return Cart{}, err
	}
	return s.Get(userID)
}

func (s *Service) Clear(userID int) error {
	c, err := s.repo.GetOrCreate(userID)
	if err != nil {
		return err
	}
	return s.repo.Clear(c.ID)
}

// ValidateForCheckout re-checks every line against the live catalog:
// product existence, ACTIVE status and available stock (variant stock
// when the line has a variant). It mutates nothing and returns the cart
// snapshot alongside a human-readable problem list; an empty list means
// the cart is ready for checkout.
func (s *Service) ValidateForCheckout(userID int) (Cart, []string, error) {
	c, err := s.Get(userID)
	if err != nil {
		return Cart{}, nil, err
	}

	problems := make([]string, 0)
	for _, it := range c.Items {
		p, err := s.catalog.GetByID(it.ProductID)
		if err != nil {
			problems = append(problems, fmt.Sprintf("product %d is no longer available", it.ProductID))
			continue
		}
		if p.Status != product.StatusActive {
			problems = append(problems, fmt.Sprintf("product %q is not available for purchase", p.Name))
			continue
		}
		available := p.Stock
		if it.VariantID != nil {
			v, err := s.catalog.GetVariantOf(it.ProductID, *it.VariantID)
			if err != nil {
				problems = append(problems, fmt.Sprintf("selected variant of product %q is no longer available", p.Name))
				continue
			}
			available = v.Stock
		}
		if it.Quantity > available {
			problems = append(problems, fmt.Sprintf("insufficient stock for product %q: requested %d, available %d", p.Name, it.Quantity, available))
		}
	}
	return c, problems, nil
}
