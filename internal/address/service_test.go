package address

import (
	"errors"
	"testing"
)

func TestGetByIDForUserHidesForeignRows(t *testing.T) {
	svc := NewService(NewInMemoryRepository([]Address{
		{ID: 1, UserID: 1, Recipient: "Somchai", Line1: "1 Main Rd"},
		{ID: 2, UserID: 2, Recipient: "Somsak", Line1: "2 Side Rd"},
	}))

	if _, err := svc.GetByIDForUser(1, 1); err != nil {
		t.Fatalf("own address: %v", err)
	}
	// a foreign address id must look like it does not exist
	if _, err := svc.GetByIDForUser(2, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))

	if _, err := svc.Create(1, Address{Line1: "1 Main Rd"}); err == nil {
		t.Fatal("expected error for missing recipient")
	}
	created, err := svc.Create(1, Address{Recipient: "Somchai", Line1: "1 Main Rd", City: "Bangkok", Postcode: "10110"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.UserID != 1 || created.ID == 0 {
		t.Fatalf("unexpected address %+v", created)
	}
	if created.CreatedAt == "" {
		t.Error("expected createdAt to be stamped")
	}
}
