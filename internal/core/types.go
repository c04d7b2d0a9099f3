package core

import (
	"time"

	"github.com/JonMunkholm/codeimport/internal/codes"
	"golang.org/x/text/language"
)

// Offer is the product a stock belongs to. Only digital, non-event offers
// may carry activation codes.
type Offer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsDigital bool      `json:"isDigital"`
	IsEvent   bool      `json:"isEvent"`
	CreatedAt time.Time `json:"createdAt"`
}

// OfferParams describes an offer to create.
type OfferParams struct {
	Name      string `json:"name"`
	IsDigital bool   `json:"isDigital"`
	IsEvent   bool   `json:"isEvent"`
}

// StockParams describes a stock to create. When ActivationCodes is set,
// Quantity is ignored and replaced by the number of codes.
type StockParams struct {
	OfferID                           int64      `json:"-"`
	Price                             string     `json:"price"`
	Quantity                          *int       `json:"quantity"`
	BookingLimitDatetime              *time.Time `json:"bookingLimitDatetime"`
	ActivationCodes                   []string   `json:"activationCodes"`
	ActivationCodesExpirationDatetime *time.Time `json:"activationCodesExpirationDatetime"`

	Language language.Tag `json:"-"`
}

// StockUpdate describes the changes to an existing stock. Nil fields are
// left as they are.
type StockUpdate struct {
	StockID              int64      `json:"-"`
	Price                *string    `json:"price"`
	Quantity             *int       `json:"quantity"`
	BookingLimitDatetime *time.Time `json:"bookingLimitDatetime"`
}

// Stock is a priced, bookable quantity of an offer.
type Stock struct {
	ID                                int64      `json:"id"`
	OfferID                           int64      `json:"offerId"`
	Price                             string     `json:"price"`
	Quantity                          *int       `json:"quantity"`
	BookedQuantity                    int        `json:"bookedQuantity"`
	BookingLimitDatetime              *time.Time `json:"bookingLimitDatetime"`
	ActivationCodesCount              int        `json:"activationCodesCount"`
	ActivationCodesExpirationDatetime *time.Time `json:"activationCodesExpirationDatetime"`
}

// ImportParams describes an activation code file to append to a stock.
type ImportParams struct {
	StockID            int64
	FileName           string
	File               codes.File
	ExpirationDatetime *time.Time
	Language           language.Tag
}

// ImportResult reports a successful import. Available counts the stock's
// codes not yet assigned to a booking, including the imported ones.
type ImportResult struct {
	ImportID  string `json:"importId"`
	StockID   int64  `json:"stockId"`
	Imported  int    `json:"imported"`
	Quantity  int    `json:"quantity"`
	Available int    `json:"availableCodes"`
}

// ImportEntry is one row of the import history.
type ImportEntry struct {
	ID          string    `json:"id"`
	StockID     int64     `json:"stockId"`
	FileName    string    `json:"fileName"`
	FileSize    int64     `json:"fileSize"`
	ContentHash string    `json:"contentHash"`
	CodeCount   int       `json:"codeCount"`
	FailureKind string    `json:"failureKind,omitempty"`
	IPAddress   string    `json:"ipAddress,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Booking is a confirmed booking holding one activation code.
type Booking struct {
	ID             string     `json:"id"`
	StockID        int64      `json:"stockId"`
	Token          string     `json:"token"`
	Status         string     `json:"status"`
	Amount         string     `json:"amount"`
	ActivationCode string     `json:"activationCode"`
	ExpirationDate *time.Time `json:"activationCodeExpirationDate,omitempty"`
	DateCreated    time.Time  `json:"dateCreated"`
	DateUsed       *time.Time `json:"dateUsed,omitempty"`
}

// BookingStatusUsed marks a booking whose code was handed out on creation.
const BookingStatusUsed = "used"
