package shop

import (
	"errors"
	"time"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(id int) (Shop, error) {
	if id <= 0 {
		return Shop{}, ErrNotFound
	}
	return s.repo.GetByID(id)
}

func (s *Service) GetByOwner(ownerID int) (Shop, error) {
	if ownerID <= 0 {
		return Shop{}, ErrNotFound
	}
	return s.repo.GetByOwner(ownerID)
}

func (s *Service) Create(ownerID int, name, description string) (Shop, error) {
	if name == "" {
		return Shop{}, errors.New("shopName is required")
	}
	return s.repo.Create(Shop{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Status:      StatusActive,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	})
}
