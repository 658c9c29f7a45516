package address

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

func (s *Service) ListByUser(userID int) ([]Address, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.ListByUser(userID)
}

func (s *Service) GetByIDForUser(addressID, userID int) (Address, error) {
	if addressID <= 0 || userID <= 0 {
		return Address{}, ErrNotFound
	}
	return s.repo.GetByIDForUser(addressID, userID)
}

func (s *Service) Create(userID int, a Address) (Address, error) {
	if a.Recipient == "" || a.Line1 == "" {
		return Address{}, errors.New("recipient and line1 are required")
	}
	a.UserID = userID
	a.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	return s.repo.Create(a)
}
