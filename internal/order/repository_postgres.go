package order

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/tanakrit-dev/marketplace-backend/internal/address"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	selectOrderColumns = `order_id, order_number, user_id, status, payment_status, payment_method, subtotal_amount, discount_amount, shipping_fee, total_amount, notes, shipping_address_id, placed_at, updated_at`

	selectItemColumns = `order_item_id, order_id, product_id, shop_id, variant_id, quantity, unit_price, total_price, delivery_charge, status, carrier, tracking_code, tracking_url, estimated_delivery, delivered_at`

	insertOrderQuery = `
        INSERT INTO orders (order_number, user_id, status, payment_status, payment_method, subtotal_amount, discount_amount, shipping_fee, total_amount, notes, shipping_address_id, placed_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING order_id`

	insertItemQuery = `
        INSERT INTO order_items (order_id, product_id, shop_id, variant_id, quantity, unit_price, total_price, delivery_charge, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING order_item_id`

	decrementProductStock = `UPDATE products SET stock = stock - $1 WHERE product_id = $2 AND stock >= $1`
	decrementVariantStock = `UPDATE product_variants SET stock = stock - $1 WHERE variant_id = $2 AND stock >= $1`
	restoreProductStock   = `UPDATE products SET stock = stock + $1 WHERE product_id = $2`
	restoreVariantStock   = `UPDATE product_variants SET stock = stock + $1 WHERE variant_id = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the order row, its items and the guarded stock decrements
// in one transaction. A guard that matches zero rows means the pool would
// go negative, so the whole order rolls back.
func (r *PostgresRepository) Create(ord Order) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	err = tx.QueryRow(insertOrderQuery,
		ord.Number, ord.UserID, ord.Status, ord.PaymentStatus, ord.PaymentMethod,
		ord.Subtotal, ord.Discount, ord.ShippingFee, ord.Total,
		ord.Notes, ord.ShippingAddressID, ord.PlacedAt, ord.UpdatedAt).Scan(&ord.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Order{}, ErrDuplicateNumber
		}
		return Order{}, err
	}

	for i := range ord.Items {
		it := &ord.Items[i]
		it.OrderID = ord.ID

		var res sql.Result
		if it.VariantID != nil {
			res, err = tx.Exec(decrementVariantStock, it.Quantity, *it.VariantID)
		} else {
			res, err = tx.Exec(decrementProductStock, it.Quantity, it.ProductID)
		}
		if err != nil {
			return Order{}, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return Order{}, err
		}
		if affected == 0 {
			return Order{}, fmt.Errorf("product %d: %w", it.ProductID, ErrInsufficientStock)
		}

		err = tx.QueryRow(insertItemQuery,
			it.OrderID, it.ProductID, it.ShopID, nullableInt(it.VariantID),
			it.Quantity, it.UnitPrice, it.TotalPrice, it.DeliveryCharge, it.Status).Scan(&it.ID)
		if err != nil {
			return Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) GetByID(orderID int) (Order, error) {
	var (
		ord    Order
		addrID sql.NullInt64
	)
	err := r.db.QueryRow(`
        SELECT o.`+selectOrderColumns+`, a.address_id
        FROM orders o
        LEFT JOIN addresses a ON a.address_id = o.shipping_address_id
        WHERE o.order_id = $1`, orderID).Scan(
		&ord.ID, &ord.Number, &ord.UserID, &ord.Status, &ord.PaymentStatus, &ord.PaymentMethod,
		&ord.Subtotal, &ord.Discount, &ord.ShippingFee, &ord.Total,
		&ord.Notes, &ord.ShippingAddressID, &ord.PlacedAt, &ord.UpdatedAt, &addrID)
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}

	if addrID.Valid {
		addr, err := r.loadAddress(int(addrID.Int64))
		if err != nil {
			return Order{}, err
		}
		ord.ShippingAddress = &addr
	}

	items, err := r.loadItems([]int{ord.ID})
	if err != nil {
		return Order{}, err
	}
	ord.Items = items[ord.ID]
	if ord.Items == nil {
		ord.Items = []Item{}
	}
	return ord, nil
}

func (r *PostgresRepository) ListByUser(userID int, f ListFilter) ([]Order, int, error) {
	where := `WHERE user_id = $1`
	args := []any{userID}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if f.PaymentStatus != "" {
		args = append(args, f.PaymentStatus)
		where += fmt.Sprintf(` AND payment_status = $%d`, len(args))
	}
	if f.StartDate != "" {
		args = append(args, f.StartDate)
		where += fmt.Sprintf(` AND placed_at >= $%d`, len(args))
	}
	if f.EndDate != "" {
		args = append(args, f.EndDate)
		where += fmt.Sprintf(` AND placed_at <= $%d`, len(args))
	}

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(f.Page, f.Limit)
	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY order_id DESC LIMIT $%d OFFSET $%d`,
		selectOrderColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	ids := make([]int, 0)
	for rows.Next() {
		var ord Order
		if err := rows.Scan(
			&ord.ID, &ord.Number, &ord.UserID, &ord.Status, &ord.PaymentStatus, &ord.PaymentMethod,
			&ord.Subtotal, &ord.Discount, &ord.ShippingFee, &ord.Total,
			&ord.Notes, &ord.ShippingAddressID, &ord.PlacedAt, &ord.UpdatedAt); err != nil {
			return nil, 0, err
		}
		ord.Items = []Item{}
		orders = append(orders, ord)
		ids = append(ids, ord.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) > 0 {
		itemsByOrder, err := r.loadItems(ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range orders {
			if its, ok := itemsByOrder[orders[i].ID]; ok {
				orders[i].Items = its
			}
		}
	}
	return orders, total, nil
}

func (r *PostgresRepository) UpdateStatus(orderID int, status Status, updatedAt string) error {
	res, err := r.db.Exec(`UPDATE orders SET status = $2, updated_at = $3 WHERE order_id = $1`, orderID, status, updatedAt)
	if err != nil {
		return err
	}
	return requireRow(res, ErrNotFound)
}

func (r *PostgresRepository) UpdatePayment(orderID int, ps PaymentStatus, method *string, updatedAt string) error {
	res, err := r.db.Exec(`
        UPDATE orders
        SET payment_status = $2, payment_method = COALESCE($3, payment_method), updated_at = $4
        WHERE order_id = $1`, orderID, ps, method, updatedAt)
	if err != nil {
		return err
	}
	return requireRow(res, ErrNotFound)
}

// Cancel flips the order to CANCELLED and restores each line's stock pool
// in one transaction, the exact reverse of Create's decrements. The flip
// is guarded on the current status so two concurrent cancels cannot both
// restore stock: the caller has already confirmed the order exists, so a
// zero-row update means it left the cancellable states in the meantime.
func (r *PostgresRepository) Cancel(ord Order) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE orders SET status = $2, updated_at = $3 WHERE order_id = $1 AND status IN ('PENDING','CONFIRMED')`,
		ord.ID, StatusCancelled, ord.UpdatedAt)
	if err != nil {
		return err
	}
	if err := requireRow(res, ErrInvalidState); err != nil {
		return err
	}

	for _, it := range ord.Items {
		if it.VariantID != nil {
			_, err = tx.Exec(restoreVariantStock, it.Quantity, *it.VariantID)
		} else {
			_, err = tx.Exec(restoreProductStock, it.Quantity, it.ProductID)
		}
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) UpdateItem(it Item, updatedAt string) error {
	res, err := r.db.Exec(`
        UPDATE order_items
        SET status = $3, carrier = $4, tracking_code = $5, tracking_url = $6, estimated_delivery = $7, delivered_at = $8
        WHERE order_item_id = $1 AND order_id = $2`,
		it.ID, it.OrderID, it.Status, it.Carrier, it.TrackingCode, it.TrackingURL, it.EstimatedDelivery, it.DeliveredAt)
	if err != nil {
		return err
	}
	if err := requireRow(res, ErrItemNotFound); err != nil {
		return err
	}
	_, err = r.db.Exec(`UPDATE orders SET updated_at = $2 WHERE order_id = $1`, it.OrderID, updatedAt)
	return err
}

func (r *PostgresRepository) loadItems(orderIDs []int) (map[int][]Item, error) {
	rows, err := r.db.Query(`SELECT `+selectItemColumns+` FROM order_items WHERE order_id = ANY($1::int[]) ORDER BY order_item_id`,
		pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int][]Item{}
	for rows.Next() {
		var (
			it  Item
			vID sql.NullInt64
		)
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.ShopID, &vID,
			&it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.DeliveryCharge, &it.Status,
			&it.Carrier, &it.TrackingCode, &it.TrackingURL, &it.EstimatedDelivery, &it.DeliveredAt); err != nil {
			return nil, err
		}
		if vID.Valid {
			v := int(vID.Int64)
			it.VariantID = &v
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) loadAddress(addressID int) (address.Address, error) {
	var a address.Address
	err := r.db.QueryRow(`
        SELECT address_id, user_id, recipient, phone, line1, line2, city, postcode, created_at
        FROM addresses WHERE address_id = $1`, addressID).Scan(
		&a.ID, &a.UserID, &a.Recipient, &a.Phone, &a.Line1, &a.Line2, &a.City, &a.Postcode, &a.CreatedAt)
	return a, err
}

func requireRow(res sql.Result, missing error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return missing
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
