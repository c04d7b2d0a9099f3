package core

// convert.go moves values between the API types and their pgtype columns.
//
// Optional API fields are pointers; they map to pgtype values with
// Valid=false so the database stores NULL.

import (
	"strconv"
	"strings"
	"time"

	db "github.com/JonMunkholm/codeimport/internal/database"
	"github.com/jackc/pgx/v5/pgtype"
)

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgTimestamptz converts an optional time. Times are stored in UTC.
func ToPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil || t.IsZero() {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: t.UTC(), Valid: true}
}

// FromPgTimestamptz returns nil for NULL.
func FromPgTimestamptz(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

// ToPgInt4 converts an optional count. nil means unlimited.
func ToPgInt4(i *int) pgtype.Int4 {
	if i == nil {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(*i), Valid: true}
}

// FromPgInt4 returns nil for NULL.
func FromPgInt4(i pgtype.Int4) *int {
	if !i.Valid {
		return nil
	}
	n := int(i.Int32)
	return &n
}

// ToPgNumeric converts a canonical decimal string, as returned by
// normalizePrice, to pgtype.Numeric.
func ToPgNumeric(s string) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return pgtype.Numeric{Valid: false}, err
	}
	return n, nil
}

// NumericToString formats a price with two decimals. NULL and NaN give "".
func NumericToString(n pgtype.Numeric) string {
	if !n.Valid || n.NaN {
		return ""
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Float64, 'f', 2, 64)
}

func toOffer(o db.Offer) Offer {
	return Offer{
		ID:        o.ID,
		Name:      o.Name,
		IsDigital: o.IsDigital,
		IsEvent:   o.IsEvent,
		CreatedAt: o.CreatedAt.Time,
	}
}

func toStock(s db.Stock, codeCount int, expiration *time.Time) Stock {
	return Stock{
		ID:                                s.ID,
		OfferID:                           s.OfferID,
		Price:                             NumericToString(s.Price),
		Quantity:                          FromPgInt4(s.Quantity),
		BookedQuantity:                    int(s.BookedQuantity),
		BookingLimitDatetime:              FromPgTimestamptz(s.BookingLimitDatetime),
		ActivationCodesCount:              codeCount,
		ActivationCodesExpirationDatetime: expiration,
	}
}

func toImportEntry(i db.ActivationCodeImport) ImportEntry {
	return ImportEntry{
		ID:          i.ID.String(),
		StockID:     i.StockID.Int64,
		FileName:    i.FileName,
		FileSize:    i.FileSize,
		ContentHash: i.ContentHash,
		CodeCount:   int(i.CodeCount),
		FailureKind: i.FailureKind.String,
		IPAddress:   i.IpAddress.String,
		UserAgent:   i.UserAgent.String,
		CreatedAt:   i.CreatedAt.Time,
	}
}
