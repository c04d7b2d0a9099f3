package core

// validation.go holds the stock rules applied before anything is written.
//
// Activation codes are only accepted for digital offers that are not events.
// Their expiration date must leave at least the configured margin after the
// booking limit, so a beneficiary booking on the last day still has time to
// use the code. When only an expiration date is given, the booking limit is
// derived from it.

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MaxPrice is the highest stock price accepted, in euros.
const MaxPrice = 300.0

// checkOfferAcceptsCodes rejects offers that cannot carry activation codes.
func checkOfferAcceptsCodes(o Offer) error {
	if !o.IsDigital {
		return ErrOfferNotDigital
	}
	if o.IsEvent {
		return ErrOfferIsEvent
	}
	return nil
}

// resolveBookingLimit returns the booking limit to store for a stock with
// codes expiring at expiration. A nil expiration leaves bookingLimit as is.
func resolveBookingLimit(bookingLimit, expiration *time.Time, margin time.Duration) (*time.Time, error) {
	if expiration == nil {
		return bookingLimit, nil
	}
	if bookingLimit == nil {
		derived := expiration.Add(-margin)
		return &derived, nil
	}
	if expiration.Before(bookingLimit.Add(margin)) {
		return nil, fmt.Errorf("%w: must be at least %s after the booking limit", ErrExpirationTooEarly, formatMargin(margin))
	}
	return bookingLimit, nil
}

// formatMargin renders whole-day margins in days.
func formatMargin(d time.Duration) string {
	const day = 24 * time.Hour
	if d >= day && d%day == 0 {
		return strconv.Itoa(int(d/day)) + " days"
	}
	return d.String()
}

// normalizePrice validates a decimal price and returns its canonical text.
func normalizePrice(raw string) (string, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPrice)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	if f < 0 {
		return "", fmt.Errorf("%w: negative", ErrInvalidPrice)
	}
	if f > MaxPrice {
		return "", fmt.Errorf("%w: %.2f exceeds %.0f", ErrPriceTooHigh, f, MaxPrice)
	}
	return strconv.FormatFloat(f, 'f', 2, 64), nil
}

// resolveQuantity returns the stored quantity: the code count when codes are
// given, otherwise the requested quantity (nil meaning unlimited). Quantities
// are stored as 32-bit integers.
func resolveQuantity(requested *int, codeCount int) (*int, error) {
	if codeCount > 0 {
		n := codeCount
		return &n, nil
	}
	if requested != nil {
		if err := checkQuantityRange(*requested); err != nil {
			return nil, err
		}
	}
	return requested, nil
}

func checkQuantityRange(n int) error {
	if n < 0 || n > math.MaxInt32 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, n)
	}
	return nil
}

// checkEditedQuantity validates a quantity set on an existing stock. It may
// not drop below what is already booked, and a stock holding activation
// codes keeps the quantity its codes give it.
func checkEditedQuantity(n, booked int, codeQuantity *int) error {
	if err := checkQuantityRange(n); err != nil {
		return err
	}
	if n < booked {
		return fmt.Errorf("%w: %d < %d", ErrQuantityBelowBooked, n, booked)
	}
	if codeQuantity != nil && n != *codeQuantity {
		return fmt.Errorf("%w: %d, the activation codes set it to %d", ErrInvalidQuantity, n, *codeQuantity)
	}
	return nil
}
