package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors. Messages contain the patterns MapError matches on.
var (
	ErrOfferNameRequired         = errors.New("offer name required")
	ErrOfferNotFound             = errors.New("offer not found")
	ErrStockNotFound             = errors.New("stock not found")
	ErrOfferNotDigital           = errors.New("activation codes require a digital offer")
	ErrOfferIsEvent              = errors.New("activation codes are not allowed on event offers")
	ErrExpirationTooEarly        = errors.New("activation code expiration too early")
	ErrInvalidPrice              = errors.New("invalid price")
	ErrPriceTooHigh              = errors.New("price above maximum")
	ErrInvalidQuantity           = errors.New("invalid quantity")
	ErrQuantityBelowBooked       = errors.New("quantity below booked quantity")
	ErrAlreadyImported           = errors.New("file already imported")
	ErrCodesAlreadyExist         = errors.New("activation codes already exist")
	ErrNoActivationCodeAvailable = errors.New("no activation code available")
	ErrBookingLimitPassed        = errors.New("booking limit passed")
)

// CodeConflictError lists the codes a stock already holds.
type CodeConflictError struct {
	Codes []string
}

func (e *CodeConflictError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCodesAlreadyExist, strings.Join(e.Codes, ", "))
}

func (e *CodeConflictError) Unwrap() error {
	return ErrCodesAlreadyExist
}
