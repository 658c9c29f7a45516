package shop

import (
	"errors"
	"testing"
)

func TestCreateOneShopPerUser(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))

	created, err := svc.Create(1, "Happy Paws", "Pet supplies")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != StatusActive {
		t.Errorf("expected ACTIVE, got %s", created.Status)
	}

	if _, err := svc.Create(1, "Second Shop", ""); !errors.Is(err, ErrShopExists) {
		t.Fatalf("expected ErrShopExists, got %v", err)
	}

	found, err := svc.GetByOwner(1)
	if err != nil {
		t.Fatalf("get by owner: %v", err)
	}
	if found.Name != "Happy Paws" {
		t.Fatalf("unexpected shop %+v", found)
	}
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))
	if _, err := svc.Create(1, "", ""); err == nil {
		t.Fatal("expected an error for empty shop name")
	}
}
