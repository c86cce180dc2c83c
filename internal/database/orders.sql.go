package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const jerseyOrderColumns = `id, name, jersey_name, class, section, mobile_number, size, jersey_color,
	payment_method, trx_id, payment_number, location, custom_location,
	amount_paid, total_price, remaining_price, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJerseyOrder(row rowScanner, i *JerseyOrder) error {
	return row.Scan(
		&i.ID,
		&i.Name,
		&i.JerseyName,
		&i.Class,
		&i.Section,
		&i.MobileNumber,
		&i.Size,
		&i.JerseyColor,
		&i.PaymentMethod,
		&i.TrxID,
		&i.PaymentNumber,
		&i.Location,
		&i.CustomLocation,
		&i.AmountPaid,
		&i.TotalPrice,
		&i.RemainingPrice,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
}

const createJerseyOrder = `
INSERT INTO jersey_orders (
	name, jersey_name, class, section, mobile_number, size, jersey_color,
	payment_method, trx_id, payment_number, location, custom_location, status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING ` + jerseyOrderColumns

type CreateJerseyOrderParams struct {
	Name           string
	JerseyName     pgtype.Text
	Class          string
	Section        string
	MobileNumber   string
	Size           pgtype.Text
	JerseyColor    pgtype.Text
	PaymentMethod  string
	TrxID          pgtype.Text
	PaymentNumber  pgtype.Text
	Location       pgtype.Text
	CustomLocation pgtype.Text
	Status         string
}

func (q *Queries) CreateJerseyOrder(ctx context.Context, arg CreateJerseyOrderParams) (JerseyOrder, error) {
	row := q.db.QueryRow(ctx, createJerseyOrder,
		arg.Name,
		arg.JerseyName,
		arg.Class,
		arg.Section,
		arg.MobileNumber,
		arg.Size,
		arg.JerseyColor,
		arg.PaymentMethod,
		arg.TrxID,
		arg.PaymentNumber,
		arg.Location,
		arg.CustomLocation,
		arg.Status,
	)
	var i JerseyOrder
	err := scanJerseyOrder(row, &i)
	return i, err
}

const getJerseyOrder = `SELECT ` + jerseyOrderColumns + ` FROM jersey_orders WHERE id = $1`

func (q *Queries) GetJerseyOrder(ctx context.Context, id uuid.UUID) (JerseyOrder, error) {
	row := q.db.QueryRow(ctx, getJerseyOrder, id)
	var i JerseyOrder
	err := scanJerseyOrder(row, &i)
	return i, err
}

// A NULL status lists every order.
const listJerseyOrders = `SELECT ` + jerseyOrderColumns + ` FROM jersey_orders
WHERE ($1::text IS NULL OR status = $1::text)
ORDER BY created_at DESC, id DESC`

func (q *Queries) ListJerseyOrders(ctx context.Context, status pgtype.Text) ([]JerseyOrder, error) {
	rows, err := q.db.Query(ctx, listJerseyOrders, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []JerseyOrder{}
	for rows.Next() {
		var i JerseyOrder
		if err := scanJerseyOrder(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// NULL parameters leave the stored column untouched.
const updateJerseyOrder = `
UPDATE jersey_orders SET
	status          = COALESCE($2::text, status),
	amount_paid     = COALESCE($3::numeric, amount_paid),
	total_price     = COALESCE($4::numeric, total_price),
	remaining_price = COALESCE($5::numeric, remaining_price),
	updated_at      = now()
WHERE id = $1
RETURNING ` + jerseyOrderColumns

type UpdateJerseyOrderParams struct {
	ID             uuid.UUID
	Status         pgtype.Text
	AmountPaid     pgtype.Numeric
	TotalPrice     pgtype.Numeric
	RemainingPrice pgtype.Numeric
}

func (q *Queries) UpdateJerseyOrder(ctx context.Context, arg UpdateJerseyOrderParams) (JerseyOrder, error) {
	row := q.db.QueryRow(ctx, updateJerseyOrder,
		arg.ID,
		arg.Status,
		arg.AmountPaid,
		arg.TotalPrice,
		arg.RemainingPrice,
	)
	var i JerseyOrder
	err := scanJerseyOrder(row, &i)
	return i, err
}

const deleteJerseyOrder = `DELETE FROM jersey_orders WHERE id = $1`

// DeleteJerseyOrder returns the number of rows removed (0 when the id is unknown).
func (q *Queries) DeleteJerseyOrder(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteJerseyOrder, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
