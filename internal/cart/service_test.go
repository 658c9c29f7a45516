package cart

import (
	"errors"
	"testing"

	"github.com/tanakrit-dev/marketplace-backend/internal/product"
)

func newTestCatalog() (*product.InMemoryRepository, *product.Service) {
	repo := product.NewInMemoryRepository([]product.Product{
		{ID: 1, ShopID: 1, Name: "Dog food 2kg", Price: 100, DiscountPct: 10, DeliveryCharge: 20, Stock: 5, Status: product.StatusActive},
		{ID: 2, ShopID: 1, Name: "Cat tree", Price: 500, DeliveryCharge: 50, Stock: 2, Status: product.StatusActive},
		{ID: 3, ShopID: 1, Name: "Old leash", Price: 30, Stock: 10, Status: product.StatusInactive},
	}, []product.Variant{
		{ID: 1, ProductID: 1, Name: "Flavor", Value: "Salmon", PriceDiff: 15, Stock: 2},
	})
	return repo, product.NewService(repo)
}

func newTestService(t *testing.T) (*Service, *product.InMemoryRepository) {
	t.Helper()
	repo, catalog := newTestCatalog()
	return NewService(NewInMemoryRepository(repo), catalog), repo
}

func TestAddItemMergesSameLine(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.AddItem(1, 1, nil, 1); err != nil {
		t.Fatalf("first add: %v", err)
	}
	c, err := svc.AddItem(1, 1, nil, 2)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(c.Items) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(c.Items))
	}
	if c.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", c.Items[0].Quantity)
	}
	if c.Items[0].UnitPrice != 90 {
		t.Fatalf("expected discounted unit price 90, got %v", c.Items[0].UnitPrice)
	}
}

func TestAddItemVariantIsSeparateLine(t *testing.T) {
	svc, _ := newTestService(t)
	variantID := 1

	if _, err := svc.AddItem(1, 1, nil, 1); err != nil {
		t.Fatalf("base add: %v", err)
	}
	c, err := svc.AddItem(1, 1, &variantID, 1)
	if err != nil {
		t.Fatalf("variant add: %v", err)
	}
	if len(c.Items) != 2 {
		t.Fatalf("expected two lines, got %d", len(c.Items))
	}
	for _, it := range c.Items {
		if it.VariantID != nil && it.UnitPrice != 105 {
			t.Fatalf("variant line should price at 90+15, got %v", it.UnitPrice)
		}
	}
}

func TestAddItemChecksCumulativeStock(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.AddItem(1, 1, nil, 3); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := svc.AddItem(1, 1, nil, 3); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock for cumulative 6 of 5, got %v", err)
	}
}

func TestAddItemVariantUsesVariantPool(t *testing.T) {
	svc, _ := newTestService(t)
	variantID := 1

	// product pool has 5, variant pool only 2
	if _, err := svc.AddItem(1, 1, &variantID, 3); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected variant pool to cap at 2, got %v", err)
	}
	if _, err := svc.AddItem(1, 1, &variantID, 2); err != nil {
		t.Fatalf("within variant pool: %v", err)
	}
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.AddItem(1, 3, nil, 1); !errors.Is(err, ErrProductInactive) {
		t.Fatalf("expected ErrProductInactive, got %v", err)
	}
}

func TestUpdateItemQuantityZeroRemovesLine(t *testing.T) {
	svc, _ := newTestService(t)

	c, err := svc.AddItem(1, 1, nil, 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	c, err = svc.UpdateItemQuantity(1, c.Items[0].ID, 0)
	if err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	if len(c.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(c.Items))
	}
}

func TestSnapshotSurvivesPriceChange(t *testing.T) {
	svc, repo := newTestService(t)

	c, err := svc.AddItem(1, 1, nil, 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if c.Items[0].UnitPrice != 90 {
		t.Fatalf("expected snapshot 90, got %v", c.Items[0].UnitPrice)
	}

	p, _ := repo.GetByID(1)
	p.Price = 200
	if _, err := repo.Update(1, p); err != nil {
		t.Fatalf("catalog update: %v", err)
	}

	c, err = svc.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c.Items[0].UnitPrice != 90 {
		t.Fatalf("snapshot should not follow price change, got %v", c.Items[0].UnitPrice)
	}
	if c.Items[0].Product.Price != 200 {
		t.Fatalf("live projection should follow price change, got %v", c.Items[0].Product.Price)
	}
}

func TestCartTotals(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.AddItem(1, 1, nil, 2); err != nil {
		t.Fatalf("add 1: %v", err)
	}
	c, err := svc.AddItem(1, 2, nil, 1)
	if err != nil {
		t.Fatalf("add 2: %v", err)
	}
	// 2*90 + 1*500 = 680; delivery 2*20 + 1*50 = 90
	if c.Subtotal != 680 {
		t.Fatalf("expected subtotal 680, got %v", c.Subtotal)
	}
	if c.DeliveryTotal != 90 {
		t.Fatalf("expected delivery total 90, got %v", c.DeliveryTotal)
	}
	if c.Total != 770 {
		t.Fatalf("expected total 770, got %v", c.Total)
	}
}

func TestValidateForCheckoutReportsProblems(t *testing.T) {
	svc, repo := newTestService(t)

	if _, err := svc.AddItem(1, 1, nil, 3); err != nil {
		t.Fatalf("add: %v", err)
	}
	// stock drops under the cart quantity after the line was added
	repo.SetStock(1, 1)

	_, problems, err := svc.ValidateForCheckout(1)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(problems) != 1 {
		t.Fatalf("expected one problem, got %v", problems)
	}

	repo.SetStock(1, 5)
	_, problems, err = svc.ValidateForCheckout(1)
	if err != nil {
		t.Fatalf("validate after restock: %v", err)
	}
	if len(problems) != 0 {
		t.Fatalf("expected no problems, got %v", problems)
	}
}
