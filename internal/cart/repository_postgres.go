package cart

import (
	"database/sql"
	"time"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	// variant_id IS NOT DISTINCT FROM treats two NULLs as equal, which is
	// what the (cart, product, variant) uniqueness contract needs.
	updateItemByTripleQuery = `
        UPDATE cart_items
        SET quantity=$4, unit_price=$5, delivery_charge=$6
        WHERE cart_id=$1 AND product_id=$2 AND variant_id IS NOT DISTINCT FROM $3
    `
	insertItemQuery = `
        INSERT INTO cart_items (cart_id, product_id, variant_id, quantity, unit_price, delivery_charge)
        VALUES ($1,$2,$3,$4,$5,$6)
    `
	selectItemsQuery = `
        SELECT ci.cart_item_id, ci.cart_id, ci.product_id, ci.variant_id, ci.quantity, ci.unit_price, ci.delivery_charge,
               p.product_name, p.price, p.discount_pct, p.delivery_charge, p.stock, p.status, p.image,
               v.variant_name, v.variant_value, v.price_diff, v.stock
        FROM cart_items ci
        JOIN products p ON p.product_id = ci.product_id
        LEFT JOIN product_variants v ON v.variant_id = ci.variant_id
        WHERE ci.cart_id = $1
        ORDER BY ci.cart_item_id
    `
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetOrCreate(userID int) (Cart, error) {
	var c Cart
	err := r.db.QueryRow(`SELECT cart_id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID).Scan(
		&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		now := time.Now().UTC().Format(time.RFC3339)
		err = r.db.QueryRow(`INSERT INTO carts (user_id, created_at, updated_at) VALUES ($1,$2,$2) RETURNING cart_id, user_id, created_at, updated_at`, userID, now).Scan(
			&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	}
	if err != nil {
		return Cart{}, err
	}

	items, err := r.loadItems(c.ID)
	if err != nil {
		return Cart{}, err
	}
	c.Items = items
	return c, nil
}

func (r *PostgresRepository) loadItems(cartID int) ([]Item, error) {
	rows, err := r.db.Query(selectItemsQuery, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Item, 0)
	for rows.Next() {
		var (
			it           Item
			variantID    sql.NullInt64
			prod         ItemProduct
			variantName  sql.NullString
			variantValue sql.NullString
			priceDiff    sql.NullFloat64
			variantStock sql.NullInt64
		)
		if err := rows.Scan(
			&it.ID, &it.CartID, &it.ProductID, &variantID, &it.Quantity, &it.UnitPrice, &it.DeliveryCharge,
			&prod.Name, &prod.Price, &prod.DiscountPct, &prod.DeliveryCharge, &prod.Stock, &prod.Status, &prod.Image,
			&variantName, &variantValue, &priceDiff, &variantStock,
		); err != nil {
			return nil, err
		}
		prod.ID = it.ProductID
		it.Product = &prod
		if variantID.Valid {
			vid := int(variantID.Int64)
			it.VariantID = &vid
			it.Variant = &ItemVariant{
				ID:        vid,
				Name:      variantName.String,
				Value:     variantValue.String,
				PriceDiff: priceDiff.Float64,
				Stock:     int(variantStock.Int64),
			}
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpsertItem(cartID, productID int, variantID *int, quantity int, unitPrice, deliveryCharge float64) error {
	res, err := r.db.Exec(updateItemByTripleQuery, cartID, productID, nullableInt(variantID), quantity, unitPrice, deliveryCharge)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		_, err = r.db.Exec(insertItemQuery, cartID, productID, nullableInt(variantID), quantity, unitPrice, deliveryCharge)
	}
	return err
}

func (r *PostgresRepository) UpdateItem(cartID, itemID, quantity int, unitPrice, deliveryCharge float64) error {
	res, err := r.db.Exec(`UPDATE cart_items SET quantity=$3, unit_price=$4, delivery_charge=$5 WHERE cart_id=$1 AND cart_item_id=$2`,
		cartID, itemID, quantity, unitPrice, deliveryCharge)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteItem(cartID, itemID int) error {
	res, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id=$1 AND cart_item_id=$2`, cartID, itemID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresRepository) Clear(cartID int) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id=$1`, cartID)
	return err
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
