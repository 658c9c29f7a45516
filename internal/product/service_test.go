package product

import (
	"errors"
	"testing"
)

func seedRepo() *InMemoryRepository {
	return NewInMemoryRepository([]Product{
		{ID: 1, ShopID: 1, Name: "Dog food 2kg", Price: 100, DiscountPct: 10, Stock: 5, Status: StatusActive},
		{ID: 2, ShopID: 2, Name: "Cat tree", Price: 500, Stock: 2, Status: StatusActive},
	}, []Variant{
		{ID: 1, ProductID: 1, Name: "Flavor", Value: "Salmon", PriceDiff: 15, Stock: 2},
	})
}

func TestGetVariantOfChecksOwnership(t *testing.T) {
	svc := NewService(seedRepo())

	if _, err := svc.GetVariantOf(1, 1); err != nil {
		t.Fatalf("own variant: %v", err)
	}
	// variant 1 belongs to product 1, not product 2
	if _, err := svc.GetVariantOf(2, 1); !errors.Is(err, ErrVariantNotFound) {
		t.Fatalf("expected ErrVariantNotFound, got %v", err)
	}
}

func TestDiscountedUnitPrice(t *testing.T) {
	p := Product{Price: 100, DiscountPct: 10}
	if got := p.DiscountedUnitPrice(nil); got != 90 {
		t.Errorf("expected 90, got %v", got)
	}
	v := Variant{PriceDiff: 15}
	if got := p.DiscountedUnitPrice(&v); got != 105 {
		t.Errorf("expected 105, got %v", got)
	}
	free := Product{Price: 250}
	if got := free.DiscountedUnitPrice(nil); got != 250 {
		t.Errorf("expected 250 without discount, got %v", got)
	}
}

func TestAdjustStockGuard(t *testing.T) {
	repo := seedRepo()

	if err := repo.AdjustStock(1, nil, -5); err != nil {
		t.Fatalf("drain to zero: %v", err)
	}
	if err := repo.AdjustStock(1, nil, -1); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	p, _ := repo.GetByID(1)
	if p.Stock != 0 {
		t.Fatalf("failed decrement must leave stock untouched, got %d", p.Stock)
	}

	if err := repo.AdjustStock(1, nil, 3); err != nil {
		t.Fatalf("restore: %v", err)
	}
	p, _ = repo.GetByID(1)
	if p.Stock != 3 {
		t.Fatalf("expected stock 3 after restore, got %d", p.Stock)
	}
}

func TestAdjustStockVariantPool(t *testing.T) {
	repo := seedRepo()
	variantID := 1

	if err := repo.AdjustStock(1, &variantID, -2); err != nil {
		t.Fatalf("variant decrement: %v", err)
	}
	if err := repo.AdjustStock(1, &variantID, -1); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock on empty variant pool, got %v", err)
	}
	// product pool is independent of the variant pool
	p, _ := repo.GetByID(1)
	if p.Stock != 5 {
		t.Fatalf("product pool should be untouched, got %d", p.Stock)
	}
}

func TestCreateDefaultsToDraft(t *testing.T) {
	svc := NewService(seedRepo())

	created, err := svc.Create(Product{ShopID: 1, Name: "New toy", Price: 50})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != StatusDraft {
		t.Fatalf("expected DRAFT default, got %s", created.Status)
	}

	if _, err := svc.Create(Product{ShopID: 1, Name: "Bad", Status: "BOGUS"}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
