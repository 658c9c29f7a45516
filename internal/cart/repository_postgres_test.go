package cart

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestUpsertItemUpdatesExistingLine(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("UPDATE cart_items").
		WithArgs(1, 2, nil, 3, 90.0, 20.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpsertItem(1, 2, nil, 3, 90, 20); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpsertItemInsertsWhenNoRowMatches(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)
	variantID := 7

	mock.ExpectExec("UPDATE cart_items").
		WithArgs(1, 2, 7, 1, 105.0, 20.0).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO cart_items").
		WithArgs(1, 2, 7, 1, 105.0, 20.0).
		WillReturnResult(sqlmock.NewResult(10, 1))

	if err := repo.UpsertItem(1, 2, &variantID, 1, 105, 20); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateItemNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("UPDATE cart_items SET quantity").
		WithArgs(1, 99, 2, 90.0, 20.0).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateItem(1, 99, 2, 90, 20); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetOrCreateInsertsOnFirstAccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("SELECT cart_id, user_id").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id", "user_id", "created_at", "updated_at"}))
	mock.ExpectQuery("INSERT INTO carts").
		WillReturnRows(sqlmock.NewRows([]string{"cart_id", "user_id", "created_at", "updated_at"}).
			AddRow(5, 1, "2025-03-14T09:30:00Z", "2025-03-14T09:30:00Z"))
	mock.ExpectQuery("FROM cart_items ci").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{
			"cart_item_id", "cart_id", "product_id", "variant_id", "quantity", "unit_price", "delivery_charge",
			"product_name", "price", "discount_pct", "p_delivery_charge", "stock", "status", "image",
			"variant_name", "variant_value", "price_diff", "v_stock",
		}))

	c, err := repo.GetOrCreate(1)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if c.ID != 5 || c.UserID != 1 {
		t.Fatalf("unexpected cart %+v", c)
	}
	if len(c.Items) != 0 {
		t.Fatalf("fresh cart should be empty, got %d items", len(c.Items))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
