package product

import (
	"errors"
	"time"
)

var ErrInvalidStatus = errors.New("invalid product status")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List() ([]Product, error) {
	return s.repo.List()
}

func (s *Service) GetByID(id int) (Product, error) {
	if id <= 0 {
		return Product{}, ErrNotFound
	}
	return s.repo.GetByID(id)
}

// GetVariantOf loads a variant and verifies it belongs to the given product.
func (s *Service) GetVariantOf(productID, variantID int) (Variant, error) {
	v, err := s.repo.GetVariant(variantID)
	if err != nil {
		return Variant{}, err
	}
	if v.ProductID != productID {
		return Variant{}, ErrVariantNotFound
	}
	return v, nil
}

func (s *Service) ListVariants(productID int) ([]Variant, error) {
	if _, err := s.repo.GetByID(productID); err != nil {
		return nil, err
	}
	return s.repo.ListVariants(productID)
}

func (s *Service) Create(p Product) (Product, error) {
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if !validStatus(p.Status) {
		return Product{}, ErrInvalidStatus
	}
	now := time.Now().UTC().Format(time.RFC3339)
	p.CreatedAt = now
	p.UpdatedAt = now
	return s.repo.Create(p)
}

func (s *Service) Update(id int, p Product) (Product, error) {
	if !validStatus(p.Status) {
		return Product{}, ErrInvalidStatus
	}
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return s.repo.Update(id, p)
}

func (s *Service) CreateVariant(v Variant) (Variant, error) {
	return s.repo.CreateVariant(v)
}

func validStatus(status string) bool {
	switch status {
	case StatusActive, StatusDraft, StatusInactive:
		return true
	}
	return false
}
