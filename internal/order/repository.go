package order

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tanakrit-dev/marketplace-backend/internal/product"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrItemNotFound      = errors.New("order item not found")
	ErrForbidden         = errors.New("you do not own this order")
	ErrInvalidState      = errors.New("invalid order state")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicateNumber   = errors.New("order number already exists")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrCartInvalid       = errors.New("cart failed checkout validation")
	ErrAddressNotFound   = errors.New("shipping address not found")
	ErrValidation        = errors.New("invalid request")
)

// ListFilter narrows a user's order listing. Zero values mean "no filter";
// dates are inclusive RFC 3339 bounds on placedAt.
type ListFilter struct {
	Status        Status
	PaymentStatus PaymentStatus
	StartDate     string
	EndDate       string
	Page          int
	Limit         int
}

type Repository interface {
	// Create persists the order aggregate (order row + item rows) and
	// applies one guarded stock decrement per line, against the variant
	// pool when the line has a variant and the product pool otherwise,
	// all in a single transaction. Any failed guard aborts with
	// ErrInsufficientStock. A colliding order number reports
	// ErrDuplicateNumber so the caller can regenerate and retry.
	Create(ord Order) (Order, error)
	GetByID(orderID int) (Order, error)
	ListByUser(userID int, f ListFilter) ([]Order, int, error)
	UpdateStatus(orderID int, status Status, updatedAt string) error
	UpdatePayment(orderID int, ps PaymentStatus, method *string, updatedAt string) error
	// Cancel marks the order CANCELLED and restores every line's stock
	// in a single transaction, mirroring Create's decrement policy. The
	// status flip only applies while the order is still cancellable, so
	// two racing cancels cannot both restore stock; the loser reports
	// ErrInvalidState.
	Cancel(ord Order) error
	UpdateItem(it Item, updatedAt string) error
}

// InMemoryRepository backs service and handler tests. Stock moves through
// the catalog repository's AdjustStock primitive, with compensation on
// mid-aggregate failure so a partial decrement never leaks.
type InMemoryRepository struct {
	mu       sync.Mutex
	nextID   int
	nextItem int
	orders   map[int]Order
	products product.Repository
}

func NewInMemoryRepository(products product.Repository) *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, nextItem: 1, orders: map[int]Order{}, products: products}
}

func (r *InMemoryRepository) Create(ord Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.orders {
		if existing.Number == ord.Number {
			return Order{}, ErrDuplicateNumber
		}
	}

	applied := make([]Item, 0, len(ord.Items))
	for _, it := range ord.Items {
		if err := r.products.AdjustStock(it.ProductID, it.VariantID, -it.Quantity); err != nil {
			for _, done := range applied {
				_ = r.products.AdjustStock(done.ProductID, done.VariantID, done.Quantity)
			}
			if errors.Is(err, product.ErrInsufficientStock) {
				return Order{}, fmt.Errorf("product %d: %w", it.ProductID, ErrInsufficientStock)
			}
			return Order{}, err
		}
		applied = append(applied, it)
	}

	ord.ID = r.nextID
	r.nextID++
	for i := range ord.Items {
		ord.Items[i].ID = r.nextItem
		ord.Items[i].OrderID = ord.ID
		r.nextItem++
	}
	r.orders[ord.ID] = ord
	return ord, nil
}

func (r *InMemoryRepository) GetByID(orderID int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ord, ok := r.orders[orderID]
	if !ok {
		return Order{}, ErrNotFound
	}
	return ord, nil
}

func (r *InMemoryRepository) ListByUser(userID int, f ListFilter) ([]Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]Order, 0)
	for _, ord := range r.orders {
		if ord.UserID != userID {
			continue
		}
		if f.Status != "" && ord.Status != f.Status {
			continue
		}
		if f.PaymentStatus != "" && (ord.PaymentStatus == nil || *ord.PaymentStatus != f.PaymentStatus) {
			continue
		}
		if f.StartDate != "" && strings.Compare(ord.PlacedAt, f.StartDate) < 0 {
			continue
		}
		if f.EndDate != "" && strings.Compare(ord.PlacedAt, f.EndDate) > 0 {
			continue
		}
		matched = append(matched, ord)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := len(matched)
	page, limit := normalizePage(f.Page, f.Limit)
	start := (page - 1) * limit
	if start >= total {
		return []Order{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *InMemoryRepository) UpdateStatus(orderID int, status Status, updatedAt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ord, ok := r.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	ord.Status = status
	ord.UpdatedAt = updatedAt
	r.orders[orderID] = ord
	return nil
}

func (r *InMemoryRepository) UpdatePayment(orderID int, ps PaymentStatus, method *string, updatedAt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ord, ok := r.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	ord.PaymentStatus = &ps
	if method != nil {
		ord.PaymentMethod = method
	}
	ord.UpdatedAt = updatedAt
	r.orders[orderID] = ord
	return nil
}

func (r *InMemoryRepository) Cancel(ord Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[ord.ID]
	if !ok {
		return ErrNotFound
	}
	if !CanTransition(stored.Status, StatusCancelled) {
		return fmt.Errorf("order %d is %s: %w", stored.ID, stored.Status, ErrInvalidState)
	}
	for _, it := range stored.Items {
		_ = r.products.AdjustStock(it.ProductID, it.VariantID, it.Quantity)
	}
	stored.Status = StatusCancelled
	stored.UpdatedAt = ord.UpdatedAt
	r.orders[ord.ID] = stored
	return nil
}

func (r *InMemoryRepository) UpdateItem(it Item, updatedAt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ord, ok := r.orders[it.OrderID]
	if !ok {
		return ErrNotFound
	}
	for i := range ord.Items {
		if ord.Items[i].ID == it.ID {
			ord.Items[i] = it
			ord.UpdatedAt = updatedAt
			r.orders[it.OrderID] = ord
			return nil
		}
	}
	return ErrItemNotFound
}

func normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return page, limit
}
