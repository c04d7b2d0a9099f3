package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertOffer = `
INSERT INTO offer (name, is_digital, is_event)
VALUES ($1, $2, $3)
RETURNING id, name, is_digital, is_event, created_at
`

type InsertOfferParams struct {
	Name      string
	IsDigital bool
	IsEvent   bool
}

func (q *Queries) InsertOffer(ctx context.Context, arg InsertOfferParams) (Offer, error) {
	row := q.db.QueryRow(ctx, insertOffer, arg.Name, arg.IsDigital, arg.IsEvent)
	var i Offer
	err := row.Scan(&i.ID, &i.Name, &i.IsDigital, &i.IsEvent, &i.CreatedAt)
	return i, err
}

const getOffer = `
SELECT id, name, is_digital, is_event, created_at
FROM offer
WHERE id = $1
`

func (q *Queries) GetOffer(ctx context.Context, id int64) (Offer, error) {
	row := q.db.QueryRow(ctx, getOffer, id)
	var i Offer
	err := row.Scan(&i.ID, &i.Name, &i.IsDigital, &i.IsEvent, &i.CreatedAt)
	return i, err
}

const insertStock = `
INSERT INTO stock (offer_id, price, quantity, booking_limit_datetime)
VALUES ($1, $2, $3, $4)
RETURNING id, offer_id, price, quantity, booked_quantity, booking_limit_datetime, created_at
`

type InsertStockParams struct {
	OfferID              int64
	Price                pgtype.Numeric
	Quantity             pgtype.Int4
	BookingLimitDatetime pgtype.Timestamptz
}

func (q *Queries) InsertStock(ctx context.Context, arg InsertStockParams) (Stock, error) {
	row := q.db.QueryRow(ctx, insertStock, arg.OfferID, arg.Price, arg.Quantity, arg.BookingLimitDatetime)
	var i Stock
	err := row.Scan(
		&i.ID,
		&i.OfferID,
		&i.Price,
		&i.Quantity,
		&i.BookedQuantity,
		&i.BookingLimitDatetime,
		&i.CreatedAt,
	)
	return i, err
}

const getStock = `
SELECT id, offer_id, price, quantity, booked_quantity, booking_limit_datetime, created_at
FROM stock
WHERE id = $1
`

func (q *Queries) GetStock(ctx context.Context, id int64) (Stock, error) {
	row := q.db.QueryRow(ctx, getStock, id)
	var i Stock
	err := row.Scan(
		&i.ID,
		&i.OfferID,
		&i.Price,
		&i.Quantity,
		&i.BookedQuantity,
		&i.BookingLimitDatetime,
		&i.CreatedAt,
	)
	return i, err
}

const getStockForUpdate = `
SELECT id, offer_id, price, quantity, booked_quantity, booking_limit_datetime, created_at
FROM stock
WHERE id = $1
FOR UPDATE
`

// GetStockForUpdate locks the stock row for the rest of the transaction.
func (q *Queries) GetStockForUpdate(ctx context.Context, id int64) (Stock, error) {
	row := q.db.QueryRow(ctx, getStockForUpdate, id)
	var i Stock
	err := row.Scan(
		&i.ID,
		&i.OfferID,
		&i.Price,
		&i.Quantity,
		&i.BookedQuantity,
		&i.BookingLimitDatetime,
		&i.CreatedAt,
	)
	return i, err
}

const syncStockQuantity = `
UPDATE stock
SET quantity = booked_quantity + (
    SELECT count(*)
    FROM activation_code
    WHERE stock_id = $1 AND booking_id IS NULL
)
WHERE id = $1
RETURNING quantity
`

// SyncStockQuantity sets the quantity of a stock holding activation codes
// to its bookings plus its unassigned codes.
func (q *Queries) SyncStockQuantity(ctx context.Context, id int64) (int32, error) {
	row := q.db.QueryRow(ctx, syncStockQuantity, id)
	var quantity int32
	err := row.Scan(&quantity)
	return quantity, err
}

const updateStock = `
UPDATE stock
SET price = $2,
    quantity = $3,
    booking_limit_datetime = $4
WHERE id = $1
RETURNING id, offer_id, price, quantity, booked_quantity, booking_limit_datetime, created_at
`

type UpdateStockParams struct {
	ID                   int64
	Price                pgtype.Numeric
	Quantity             pgtype.Int4
	BookingLimitDatetime pgtype.Timestamptz
}

func (q *Queries) UpdateStock(ctx context.Context, arg UpdateStockParams) (Stock, error) {
	row := q.db.QueryRow(ctx, updateStock, arg.ID, arg.Price, arg.Quantity, arg.BookingLimitDatetime)
	var i Stock
	err := row.Scan(
		&i.ID,
		&i.OfferID,
		&i.Price,
		&i.Quantity,
		&i.BookedQuantity,
		&i.BookingLimitDatetime,
		&i.CreatedAt,
	)
	return i, err
}

const incrementBookedQuantity = `
UPDATE stock
SET booked_quantity = booked_quantity + 1
WHERE id = $1
`

func (q *Queries) IncrementBookedQuantity(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, incrementBookedQuantity, id)
	return err
}
