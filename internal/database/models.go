package database

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Offer struct {
	ID        int64
	Name      string
	IsDigital bool
	IsEvent   bool
	CreatedAt pgtype.Timestamptz
}

type Stock struct {
	ID                   int64
	OfferID              int64
	Price                pgtype.Numeric
	Quantity             pgtype.Int4
	BookedQuantity       int32
	BookingLimitDatetime pgtype.Timestamptz
	CreatedAt            pgtype.Timestamptz
}

type Booking struct {
	ID          uuid.UUID
	StockID     int64
	Token       string
	Status      string
	Amount      pgtype.Numeric
	DateCreated pgtype.Timestamptz
	DateUsed    pgtype.Timestamptz
}

type ActivationCode struct {
	ID             int64
	Code           string
	ExpirationDate pgtype.Timestamptz
	StockID        int64
	BookingID      pgtype.UUID
}

type ActivationCodeImport struct {
	ID          uuid.UUID
	StockID     pgtype.Int8
	FileName    string
	FileSize    int64
	ContentHash string
	CodeCount   int32
	FailureKind pgtype.Text
	IpAddress   pgtype.Text
	UserAgent   pgtype.Text
	CreatedAt   pgtype.Timestamptz
}
