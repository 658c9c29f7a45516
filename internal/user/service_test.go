package user

import (
	"errors"
	"testing"
)

func TestRegisterHashesPassword(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))

	created, err := svc.Register(User{Email: "somchai@example.com", Password: "s3cret", FirstName: "Somchai"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected an assigned id")
	}
	if created.Password == "s3cret" {
		t.Error("password must not be stored in clear")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))

	if _, err := svc.Register(User{Email: "somchai@example.com", Password: "s3cret"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(User{Email: "somchai@example.com", Password: "other"}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))
	if _, err := svc.Register(User{Email: "somchai@example.com", Password: "s3cret"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	u, err := svc.Authenticate("somchai@example.com", "s3cret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if u.Email != "somchai@example.com" {
		t.Fatalf("unexpected user %+v", u)
	}

	if _, err := svc.Authenticate("somchai@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate("nobody@example.com", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
