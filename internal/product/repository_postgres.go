package product

import (
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	selectProductColumns = `product_id, shop_id, product_name, description, price, discount_pct, delivery_charge, stock, status, image, created_at, updated_at`

	insertProductQuery = `
        INSERT INTO products (shop_id, product_name, description, price, discount_pct, delivery_charge, stock, status, image, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING ` + selectProductColumns

	updateProductQuery = `
        UPDATE products
        SET product_name=$2, description=$3, price=$4, discount_pct=$5, delivery_charge=$6, stock=$7, status=$8, image=$9, updated_at=$10
        WHERE product_id=$1
        RETURNING ` + selectProductColumns

	selectVariantColumns = `variant_id, product_id, variant_name, variant_value, price_diff, stock`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List() ([]Product, error) {
	rows, err := r.db.Query(`SELECT ` + selectProductColumns + ` FROM products ORDER BY product_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	var p Product
	err := r.db.QueryRow(`SELECT `+selectProductColumns+` FROM products WHERE product_id = $1`, id).Scan(
		&p.ID, &p.ShopID, &p.Name, &p.Description, &p.Price, &p.DiscountPct, &p.DeliveryCharge, &p.Stock, &p.Status, &p.Image, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Create(p Product) (Product, error) {
	var out Product
	err := r.db.QueryRow(insertProductQuery,
		p.ShopID, p.Name, p.Description, p.Price, p.DiscountPct, p.DeliveryCharge, p.Stock, p.Status, p.Image, p.CreatedAt, p.UpdatedAt).Scan(
		&out.ID, &out.ShopID, &out.Name, &out.Description, &out.Price, &out.DiscountPct, &out.DeliveryCharge, &out.Stock, &out.Status, &out.Image, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	return out, nil
}

func (r *PostgresRepository) Update(id int, p Product) (Product, error) {
	var out Product
	err := r.db.QueryRow(updateProductQuery,
		id, p.Name, p.Description, p.Price, p.DiscountPct, p.DeliveryCharge, p.Stock, p.Status, p.Image, p.UpdatedAt).Scan(
		&out.ID, &out.ShopID, &out.Name, &out.Description, &out.Price, &out.DiscountPct, &out.DeliveryCharge, &out.Stock, &out.Status, &out.Image, &out.CreatedAt, &out.UpdatedAt)
	if err == sql.ErrNoRows {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return out, nil
}

func (r *PostgresRepository) GetVariant(variantID int) (Variant, error) {
	var v Variant
	err := r.db.QueryRow(`SELECT `+selectVariantColumns+` FROM product_variants WHERE variant_id = $1`, variantID).Scan(
		&v.ID, &v.ProductID, &v.Name, &v.Value, &v.PriceDiff, &v.Stock)
	if err == sql.ErrNoRows {
		return Variant{}, ErrVariantNotFound
	}
	if err != nil {
		return Variant{}, err
	}
	return v, nil
}

func (r *PostgresRepository) ListVariants(productID int) ([]Variant, error) {
	rows, err := r.db.Query(`SELECT `+selectVariantColumns+` FROM product_variants WHERE product_id = $1 ORDER BY variant_id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Variant, 0)
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.Value, &v.PriceDiff, &v.Stock); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CreateVariant(v Variant) (Variant, error) {
	var out Variant
	err := r.db.QueryRow(`
        INSERT INTO product_variants (product_id, variant_name, variant_value, price_diff, stock)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING `+selectVariantColumns,
		v.ProductID, v.Name, v.Value, v.PriceDiff, v.Stock).Scan(
		&out.ID, &out.ProductID, &out.Name, &out.Value, &out.PriceDiff, &out.Stock)
	if err != nil {
		return Variant{}, err
	}
	return out, nil
}

func (r *PostgresRepository) AdjustStock(productID int, variantID *int, delta int) error {
	var (
		res sql.Result
		err error
	)
	if variantID != nil {
		res, err = r.db.Exec(`UPDATE product_variants SET stock = stock + $1 WHERE variant_id = $2 AND stock + $1 >= 0`, delta, *variantID)
	} else {
		res, err = r.db.Exec(`UPDATE products SET stock = stock + $1 WHERE product_id = $2 AND stock + $1 >= 0`, delta, productID)
	}
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func scanProductRow(rows *sql.Rows) (Product, error) {
	var p Product
	err := rows.Scan(&p.ID, &p.ShopID, &p.Name, &p.Description, &p.Price, &p.DiscountPct, &p.DeliveryCharge, &p.Stock, &p.Status, &p.Image, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
