package product

import (
	"errors"
	"sync"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrVariantNotFound   = errors.New("product variant not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Repository interface {
	List() ([]Product, error)
	GetByID(id int) (Product, error)
	Create(p Product) (Product, error)
	Update(id int, p Product) (Product, error)
	GetVariant(variantID int) (Variant, error)
	ListVariants(productID int) ([]Variant, error)
	CreateVariant(v Variant) (Variant, error)
	// AdjustStock atomically applies delta to the product's stock pool,
	// or to the variant's pool when variantID is set. A decrement that
	// would take the pool negative fails with ErrInsufficientStock and
	// leaves the row untouched (guarded update, not read-then-write).
	AdjustStock(productID int, variantID *int, delta int) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu            sync.RWMutex
	nextID        int
	nextVariantID int
	products      map[int]Product
	variants      map[int]Variant
}

func NewInMemoryRepository(seedProducts []Product, seedVariants []Variant) *InMemoryRepository {
	r := &InMemoryRepository{
		nextID:        1,
		nextVariantID: 1,
		products:      map[int]Product{},
		variants:      map[int]Variant{},
	}
	for _, p := range seedProducts {
		r.products[p.ID] = p
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
	}
	for _, v := range seedVariants {
		r.variants[v.ID] = v
		if v.ID >= r.nextVariantID {
			r.nextVariantID = v.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) List() ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *InMemoryRepository) GetByID(id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) Create(p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	r.products[p.ID] = p
	return p, nil
}

func (r *InMemoryRepository) Update(id int, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return Product{}, ErrNotFound
	}
	p.ID = id
	r.products[id] = p
	return p, nil
}

func (r *InMemoryRepository) GetVariant(variantID int) (Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variants[variantID]
	if !ok {
		return Variant{}, ErrVariantNotFound
	}
	return v, nil
}

func (r *InMemoryRepository) ListVariants(productID int) ([]Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Variant, 0)
	for _, v := range r.variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) CreateVariant(v Variant) (Variant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[v.ProductID]; !ok {
		return Variant{}, ErrNotFound
	}
	v.ID = r.nextVariantID
	r.nextVariantID++
	r.variants[v.ID] = v
	return v, nil
}

func (r *InMemoryRepository) AdjustStock(productID int, variantID *int, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if variantID != nil {
		v, ok := r.variants[*variantID]
		if !ok {
			return ErrVariantNotFound
		}
		if v.Stock+delta < 0 {
			return ErrInsufficientStock
		}
		v.Stock += delta
		r.variants[*variantID] = v
		return nil
	}
	p, ok := r.products[productID]
	if !ok {
		return ErrNotFound
	}
	if p.Stock+delta < 0 {
		return ErrInsufficientStock
	}
	p.Stock += delta
	r.products[productID] = p
	return nil
}

// SetStock is a test helper for adjusting seeded stock between scenarios.
func (r *InMemoryRepository) SetStock(productID int, stock int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[productID]; ok {
		p.Stock = stock
		r.products[productID] = p
	}
}
