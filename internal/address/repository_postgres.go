package address

import (
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	selectAddressColumns = `address_id, user_id, recipient, phone, line1, line2, city, postcode, created_at`

	insertAddressQuery = `
        INSERT INTO addresses (user_id, recipient, phone, line1, line2, city, postcode, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING ` + selectAddressColumns
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByUser(userID int) ([]Address, error) {
	rows, err := r.db.Query(`SELECT `+selectAddressColumns+` FROM addresses WHERE user_id = $1 ORDER BY address_id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Recipient, &a.Phone, &a.Line1, &a.Line2, &a.City, &a.Postcode, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByIDForUser(addressID, userID int) (Address, error) {
	var a Address
	err := r.db.QueryRow(`SELECT `+selectAddressColumns+` FROM addresses WHERE address_id = $1 AND user_id = $2`, addressID, userID).Scan(
		&a.ID, &a.UserID, &a.Recipient, &a.Phone, &a.Line1, &a.Line2, &a.City, &a.Postcode, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return Address{}, ErrNotFound
	}
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Create(a Address) (Address, error) {
	var out Address
	err := r.db.QueryRow(insertAddressQuery, a.UserID, a.Recipient, a.Phone, a.Line1, a.Line2, a.City, a.Postcode, a.CreatedAt).Scan(
		&out.ID, &out.UserID, &out.Recipient, &out.Phone, &out.Line1, &out.Line2, &out.City, &out.Postcode, &out.CreatedAt)
	if err != nil {
		return Address{}, err
	}
	return out, nil
}
