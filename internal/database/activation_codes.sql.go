package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertActivationCodes = `
INSERT INTO activation_code (stock_id, code, expiration_date)
SELECT $1, code, $3
FROM unnest($2::text[]) WITH ORDINALITY AS t(code, ord)
ORDER BY ord
`

type InsertActivationCodesParams struct {
	StockID        int64
	Codes          []string
	ExpirationDate pgtype.Timestamptz
}

// InsertActivationCodes inserts all codes in one statement, keeping their
// order in the id sequence.
func (q *Queries) InsertActivationCodes(ctx context.Context, arg InsertActivationCodesParams) (int64, error) {
	tag, err := q.db.Exec(ctx, insertActivationCodes, arg.StockID, arg.Codes, arg.ExpirationDate)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const listExistingCodes = `
SELECT code
FROM activation_code
WHERE stock_id = $1 AND code = ANY($2::text[])
ORDER BY id
`

// ListExistingCodes returns which of codes the stock already holds.
func (q *Queries) ListExistingCodes(ctx context.Context, stockID int64, codes []string) ([]string, error) {
	rows, err := q.db.Query(ctx, listExistingCodes, stockID, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		items = append(items, code)
	}
	return items, rows.Err()
}

const countActivationCodes = `
SELECT count(*) AS total,
       count(*) FILTER (WHERE booking_id IS NULL) AS available
FROM activation_code
WHERE stock_id = $1
`

type CountActivationCodesRow struct {
	Total     int64
	Available int64
}

func (q *Queries) CountActivationCodes(ctx context.Context, stockID int64) (CountActivationCodesRow, error) {
	row := q.db.QueryRow(ctx, countActivationCodes, stockID)
	var i CountActivationCodesRow
	err := row.Scan(&i.Total, &i.Available)
	return i, err
}

const getActivationCodesExpiration = `
SELECT min(expiration_date)
FROM activation_code
WHERE stock_id = $1
`

// GetActivationCodesExpiration returns the earliest expiration date among
// the stock's codes. It is NULL when the stock has no dated code.
func (q *Queries) GetActivationCodesExpiration(ctx context.Context, stockID int64) (pgtype.Timestamptz, error) {
	row := q.db.QueryRow(ctx, getActivationCodesExpiration, stockID)
	var expiration pgtype.Timestamptz
	err := row.Scan(&expiration)
	return expiration, err
}

const lockAvailableActivationCode = `
SELECT id, code, expiration_date, stock_id, booking_id
FROM activation_code
WHERE stock_id = $1
  AND booking_id IS NULL
  AND (expiration_date IS NULL OR expiration_date > now())
ORDER BY id
LIMIT 1
FOR UPDATE SKIP LOCKED
`

// LockAvailableActivationCode returns the oldest free, unexpired code and
// locks it. Codes locked by concurrent bookings are skipped.
func (q *Queries) LockAvailableActivationCode(ctx context.Context, stockID int64) (ActivationCode, error) {
	row := q.db.QueryRow(ctx, lockAvailableActivationCode, stockID)
	var i ActivationCode
	err := row.Scan(&i.ID, &i.Code, &i.ExpirationDate, &i.StockID, &i.BookingID)
	return i, err
}

const assignActivationCode = `
UPDATE activation_code
SET booking_id = $2
WHERE id = $1 AND booking_id IS NULL
`

func (q *Queries) AssignActivationCode(ctx context.Context, id int64, bookingID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, assignActivationCode, id, bookingID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const insertBooking = `
INSERT INTO booking (id, stock_id, token, status, amount, date_used)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (token) DO NOTHING
RETURNING id, stock_id, token, status, amount, date_created, date_used
`

type InsertBookingParams struct {
	ID       uuid.UUID
	StockID  int64
	Token    string
	Status   string
	Amount   pgtype.Numeric
	DateUsed pgtype.Timestamptz
}

// InsertBooking returns pgx.ErrNoRows when the token is already taken.
func (q *Queries) InsertBooking(ctx context.Context, arg InsertBookingParams) (Booking, error) {
	row := q.db.QueryRow(ctx, insertBooking,
		arg.ID,
		arg.StockID,
		arg.Token,
		arg.Status,
		arg.Amount,
		arg.DateUsed,
	)
	var i Booking
	err := row.Scan(
		&i.ID,
		&i.StockID,
		&i.Token,
		&i.Status,
		&i.Amount,
		&i.DateCreated,
		&i.DateUsed,
	)
	return i, err
}
