package order

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tanakrit-dev/marketplace-backend/internal/address"
	"github.com/tanakrit-dev/marketplace-backend/internal/cart"
	"github.com/tanakrit-dev/marketplace-backend/internal/product"
	"github.com/tanakrit-dev/marketplace-backend/internal/shop"
)

// createAttempts bounds the order-number retry loop on unique collisions.
const createAttempts = 3

// Catalog is the slice of the product service the order flow needs.
type Catalog interface {
	GetByID(id int) (product.Product, error)
	GetVariantOf(productID, variantID int) (product.Variant, error)
}

// CartService is what checkout needs from the cart package.
type CartService interface {
	ValidateForCheckout(userID int) (cart.Cart, []string, error)
	Clear(userID int) error
}

// AddressBook resolves a shipping address with ownership enforced.
type AddressBook interface {
	GetByIDForUser(addressID, userID int) (address.Address, error)
}

// ShopDirectory resolves shops for vendor authorization on order items.
type ShopDirectory interface {
	GetByID(id int) (shop.Shop, error)
}

// EventPublisher receives lifecycle events after a state change commits.
// Implementations must not block the request path.
type EventPublisher interface {
	Publish(eventType string, payload any)
}

type Service struct {
	repo      Repository
	catalog   Catalog
	carts     CartService
	addresses AddressBook
	shops     ShopDirectory
	events    EventPublisher
}

// NewService wires the order service. events may be nil when no broker is
// configured.
func NewService(repo Repository, catalog Catalog, carts CartService, addresses AddressBook, shops ShopDirectory, events EventPublisher) *Service {
	return &Service{repo: repo, catalog: catalog, carts: carts, addresses: addresses, shops: shops, events: events}
}

type CreateLine struct {
	ProductID int  `json:"productId"`
	VariantID *int `json:"variantId"`
	Quantity  int  `json:"quantity"`
}

type CreateInput struct {
	Items             []CreateLine `json:"items"`
	ShippingAddressID int          `json:"shippingAddressId"`
	Notes             string       `json:"notes"`
	PaymentMethod     *string      `json:"paymentMethod"`
}

type CheckoutInput struct {
	ShippingAddressID int     `json:"shippingAddressId"`
	Notes             string  `json:"notes"`
	PaymentMethod     *string `json:"paymentMethod"`
}

// TrackingInput carries the shipment metadata a vendor may attach while
// moving one of their order items through fulfillment.
type TrackingInput struct {
	Carrier           *string `json:"carrier"`
	TrackingCode      *string `json:"trackingCode"`
	TrackingURL       *string `json:"trackingUrl"`
	EstimatedDelivery *string `json:"estimatedDelivery"`
}

// Create places an order directly from explicit lines, pricing each line
// from the live catalog. The unit price is the base price plus the variant
// delta; the product's percentage discount accumulates into the order's
// discount amount, and per-line delivery charges accumulate into the
// shipping fee, so total = subtotal - discount + shippingFee.
// Payment tracking starts at PENDING only when a payment method was
// supplied; without one, paymentStatus stays null until the first
// payment update.
func (s *Service) Create(userID int, in CreateInput) (Order, error) {
	if len(in.Items) == 0 {
		return Order{}, fmt.Errorf("%w: order needs at least one item", ErrValidation)
	}

	addr, err := s.addresses.GetByIDForUser(in.ShippingAddressID, userID)
	if err != nil {
		return Order{}, ErrAddressNotFound
	}

	now := time.Now().UTC().Format(time.RFC3339)
	ord := Order{
		UserID:            userID,
		Status:            StatusPending,
		PaymentMethod:     in.PaymentMethod,
		Notes:             in.Notes,
		ShippingAddressID: addr.ID,
		PlacedAt:          now,
		UpdatedAt:         now,
	}
	if in.PaymentMethod != nil {
		ps := PaymentPending
		ord.PaymentStatus = &ps
	}

	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return Order{}, fmt.Errorf("%w: quantity must be positive", ErrValidation)
		}
		p, err := s.catalog.GetByID(line.ProductID)
		if err != nil {
			return Order{}, fmt.Errorf("product %d: %w", line.ProductID, ErrNotFound)
		}
		if p.Status != product.StatusActive {
			return Order{}, fmt.Errorf("product %q is not available for purchase: %w", p.Name, ErrInvalidState)
		}

		unitPrice := p.Price
		if line.VariantID != nil {
			v, err := s.catalog.GetVariantOf(line.ProductID, *line.VariantID)
			if err != nil {
				return Order{}, fmt.Errorf("product %d: %w", line.ProductID, ErrNotFound)
			}
			unitPrice += v.PriceDiff
		}

		lineSubtotal := unitPrice * float64(line.Quantity)
		lineDiscount := lineSubtotal * p.DiscountPct / 100
		lineDelivery := p.DeliveryCharge * float64(line.Quantity)

		ord.Subtotal += lineSubtotal
		ord.Discount += lineDiscount
		ord.ShippingFee += lineDelivery
		ord.Items = append(ord.Items, Item{
			ProductID:      line.ProductID,
			ShopID:         p.ShopID,
			VariantID:      line.VariantID,
			Quantity:       line.Quantity,
			UnitPrice:      unitPrice,
			TotalPrice:     lineSubtotal - lineDiscount,
			DeliveryCharge: p.DeliveryCharge,
			Status:         StatusPending,
		})
	}
	ord.Total = ord.Subtotal - ord.Discount + ord.ShippingFee

	created, err := s.createNumbered(ord)
	if err != nil {
		return Order{}, err
	}
	s.publish("order.created", created)
	return created, nil
}

// Checkout converts the user's cart into an order. Lines are priced from
// the cart's snapshots (already discounted), so the order's discount
// amount is zero. The cart is cleared only after the order commits; a
// clear failure is logged but does not fail the checkout, since the
// order already exists.
func (s *Service) Checkout(userID int, in CheckoutInput) (Order, error) {
	c, problems, err := s.carts.ValidateForCheckout(userID)
	if err != nil {
		return Order{}, err
	}
	if len(c.Items) == 0 {
		return Order{}, ErrEmptyCart
	}
	if len(problems) > 0 {
		return Order{}, fmt.Errorf("%w: %s", ErrCartInvalid, strings.Join(problems, "; "))
	}

	addr, err := s.addresses.GetByIDForUser(in.ShippingAddressID, userID)
	if err != nil {
		return Order{}, ErrAddressNotFound
	}

	now := time.Now().UTC().Format(time.RFC3339)
	ord := Order{
		UserID:            userID,
		Status:            StatusPending,
		PaymentMethod:     in.PaymentMethod,
		Notes:             in.Notes,
		ShippingAddressID: addr.ID,
		PlacedAt:          now,
		UpdatedAt:         now,
	}
	if in.PaymentMethod != nil {
		ps := PaymentPending
		ord.PaymentStatus = &ps
	}

	for _, it := range c.Items {
		p, err := s.catalog.GetByID(it.ProductID)
		if err != nil {
			return Order{}, fmt.Errorf("product %d: %w", it.ProductID, ErrNotFound)
		}
		lineTotal := it.UnitPrice * float64(it.Quantity)
		lineDelivery := it.DeliveryCharge * float64(it.Quantity)

		ord.Subtotal += lineTotal
		ord.ShippingFee += lineDelivery
		ord.Items = append(ord.Items, Item{
			ProductID:      it.ProductID,
			ShopID:         p.ShopID,
			VariantID:      it.VariantID,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			TotalPrice:     lineTotal,
			DeliveryCharge: it.DeliveryCharge,
			Status:         StatusPending,
		})
	}
	ord.Total = ord.Subtotal - ord.Discount + ord.ShippingFee

	created, err := s.createNumbered(ord)
	if err != nil {
		return Order{}, err
	}
	if err := s.carts.Clear(userID); err != nil {
		log.Printf("order %s created but cart for user %d was not cleared: %v", created.Number, userID, err)
	}
	s.publish("order.created", created)
	return created, nil
}

// createNumbered generates an order number and retries on the rare unique
// collision instead of surfacing it to the caller.
func (s *Service) createNumbered(ord Order) (Order, error) {
	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		ord.Number = NewNumber(time.Now())
		created, err := s.repo.Create(ord)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, ErrDuplicateNumber) {
			return Order{}, err
		}
		lastErr = err
	}
	return Order{}, lastErr
}

func (s *Service) Get(userID, orderID int) (Order, error) {
	ord, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}
	if ord.UserID != userID {
		return Order{}, ErrForbidden
	}
	return ord, nil
}

func (s *Service) List(userID int, f ListFilter) ([]Order, int, error) {
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
	}
	if f.PaymentStatus != "" && !ValidPaymentStatus(f.PaymentStatus) {
		return nil, 0, fmt.Errorf("%w: unknown payment status %q", ErrValidation, f.PaymentStatus)
	}
	return s.repo.ListByUser(userID, f)
}

// UpdateStatus moves the whole order along the fulfillment state machine.
// A transition to CANCELLED goes through Cancel so stock is restored.
func (s *Service) UpdateStatus(userID, orderID int, to Status) (Order, error) {
	if !ValidStatus(to) {
		return Order{}, fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}
	ord, err := s.Get(userID, orderID)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(ord.Status, to) {
		return Order{}, fmt.Errorf("cannot move order from %s to %s: %w", ord.Status, to, ErrInvalidTransition)
	}
	if to == StatusCancelled {
		return s.cancel(ord)
	}

	prev := ord.Status
	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.repo.UpdateStatus(ord.ID, to, now); err != nil {
		return Order{}, err
	}
	ord.Status = to
	ord.UpdatedAt = now
	s.publish("order.status_changed", statusChange{OrderID: ord.ID, Number: ord.Number, From: prev, To: to, ChangedAt: now})
	return ord, nil
}

// UpdatePayment records a payment state change. Payment is locked once the
// order reaches a terminal fulfillment state.
func (s *Service) UpdatePayment(userID, orderID int, ps PaymentStatus, method *string) (Order, error) {
	if !ValidPaymentStatus(ps) {
		return Order{}, fmt.Errorf("%w: unknown payment status %q", ErrValidation, ps)
	}
	ord, err := s.Get(userID, orderID)
	if err != nil {
		return Order{}, err
	}
	if ord.Status.Terminal() {
		return Order{}, fmt.Errorf("order %s is %s: %w", ord.Number, ord.Status, ErrInvalidState)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.repo.UpdatePayment(ord.ID, ps, method, now); err != nil {
		return Order{}, err
	}
	ord.PaymentStatus = &ps
	if method != nil {
		ord.PaymentMethod = method
	}
	ord.UpdatedAt = now
	return ord, nil
}

// Cancel aborts an order the buyer no longer wants. Only PENDING and
// CONFIRMED orders can be cancelled; stock returns to its pools.
func (s *Service) Cancel(userID, orderID int) (Order, error) {
	ord, err := s.Get(userID, orderID)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(ord.Status, StatusCancelled) {
		return Order{}, fmt.Errorf("cannot cancel a %s order: %w", ord.Status, ErrInvalidState)
	}
	return s.cancel(ord)
}

func (s *Service) cancel(ord Order) (Order, error) {
	ord.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := s.repo.Cancel(ord); err != nil {
		return Order{}, err
	}
	ord.Status = StatusCancelled
	s.publish("order.cancelled", ord)
	return ord, nil
}

// UpdateItemStatus lets the vendor who owns the item's shop move that line
// through fulfillment and attach tracking metadata. Reaching DELIVERED
// stamps the line's delivery time.
func (s *Service) UpdateItemStatus(userID, orderID, itemID int, to Status, tracking TrackingInput) (Order, error) {
	if !ValidStatus(to) {
		return Order{}, fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}
	ord, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}

	var target *Item
	for i := range ord.Items {
		if ord.Items[i].ID == itemID {
			target = &ord.Items[i]
			break
		}
	}
	if target == nil {
		return Order{}, ErrItemNotFound
	}

	sh, err := s.shops.GetByID(target.ShopID)
	if err != nil || sh.OwnerID != userID {
		return Order{}, ErrForbidden
	}
	if !CanTransition(target.Status, to) {
		return Order{}, fmt.Errorf("cannot move item from %s to %s: %w", target.Status, to, ErrInvalidTransition)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	target.Status = to
	if tracking.Carrier != nil {
		target.Carrier = tracking.Carrier
	}
	if tracking.TrackingCode != nil {
		target.TrackingCode = tracking.TrackingCode
	}
	if tracking.TrackingURL != nil {
		target.TrackingURL = tracking.TrackingURL
	}
	if tracking.EstimatedDelivery != nil {
		target.EstimatedDelivery = tracking.EstimatedDelivery
	}
	if to == StatusDelivered {
		target.DeliveredAt = &now
	}
	if err := s.repo.UpdateItem(*target, now); err != nil {
		return Order{}, err
	}
	ord.UpdatedAt = now
	return ord, nil
}

type statusChange struct {
	OrderID   int    `json:"orderId"`
	Number    string `json:"orderNumber"`
	From      Status `json:"from"`
	To        Status `json:"to"`
	ChangedAt string `json:"changedAt"`
}

func (s *Service) publish(eventType string, payload any) {
	if s.events == nil {
		return
	}
	s.events.Publish(eventType, payload)
}
