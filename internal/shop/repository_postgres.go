package shop

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	selectShopColumns = `shop_id, owner_id, shop_name, description, status, created_at`

	insertShopQuery = `
        INSERT INTO shops (owner_id, shop_name, description, status, created_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING ` + selectShopColumns
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(id int) (Shop, error) {
	return scanShop(r.db.QueryRow(`SELECT `+selectShopColumns+` FROM shops WHERE shop_id = $1`, id))
}

func (r *PostgresRepository) GetByOwner(ownerID int) (Shop, error) {
	return scanShop(r.db.QueryRow(`SELECT `+selectShopColumns+` FROM shops WHERE owner_id = $1`, ownerID))
}

func (r *PostgresRepository) Create(s Shop) (Shop, error) {
	created, err := scanShop(r.db.QueryRow(insertShopQuery, s.OwnerID, s.Name, s.Description, s.Status, s.CreatedAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Shop{}, ErrShopExists
		}
		return Shop{}, err
	}
	return created, nil
}

func scanShop(row *sql.Row) (Shop, error) {
	var s Shop
	err := row.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Description, &s.Status, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return Shop{}, ErrNotFound
	}
	if err != nil {
		return Shop{}, err
	}
	return s, nil
}
