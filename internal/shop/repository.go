package shop

import (
	"errors"
	"sync"
)

var (
	ErrNotFound   = errors.New("shop not found")
	ErrShopExists = errors.New("user already owns a shop")
)

type Repository interface {
	GetByID(id int) (Shop, error)
	GetByOwner(ownerID int) (Shop, error)
	Create(s Shop) (Shop, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu     sync.RWMutex
	nextID int
	shops  []Shop
}

func NewInMemoryRepository(seed []Shop) *InMemoryRepository {
	r := &InMemoryRepository{nextID: 1}
	for _, s := range seed {
		r.shops = append(r.shops, s)
		if s.ID >= r.nextID {
			r.nextID = s.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) GetByID(id int) (Shop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.shops {
		if s.ID == id {
			return s, nil
		}
	}
	return Shop{}, ErrNotFound
}

func (r *InMemoryRepository) GetByOwner(ownerID int) (Shop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.shops {
		if s.OwnerID == ownerID {
			return s, nil
		}
	}
	return Shop{}, ErrNotFound
}

func (r *InMemoryRepository) Create(s Shop) (Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.shops {
		if existing.OwnerID == s.OwnerID {
			return Shop{}, ErrShopExists
		}
	}
	s.ID = r.nextID
	r.nextID++
	r.shops = append(r.shops, s)
	return s, nil
}
