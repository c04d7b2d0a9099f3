package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	db "github.com/JonMunkholm/codeimport/internal/database"
	"github.com/JonMunkholm/codeimport/internal/logging"
	"github.com/JonMunkholm/codeimport/internal/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// tokenAlphabet omits characters that read alike (0/O, 1/I).
const tokenAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// TokenLength is the length of a booking token.
const TokenLength = 6

// maxTokenAttempts bounds the inserts tried when a token is already taken.
const maxTokenAttempts = 5

// newBookingToken derives a short, human-readable token from a random UUID.
func newBookingToken(id uuid.UUID) string {
	token := make([]byte, TokenLength)
	for i := range token {
		token[i] = tokenAlphabet[int(id[i])%len(tokenAlphabet)]
	}
	return string(token)
}

func (s *Service) bookingToken(id uuid.UUID) string {
	if s.newToken != nil {
		return s.newToken(id)
	}
	return newBookingToken(id)
}

// BookActivationCode books the stock and hands out its oldest free,
// unexpired activation code. The booking is created as used: the code is
// the delivered product. A token already taken is replaced by a fresh one.
func (s *Service) BookActivationCode(ctx context.Context, stockID int64) (Booking, error) {
	start := time.Now()
	now := start.UTC()

	var booking Booking
	err := s.inTx(ctx, func(q *db.Queries) error {
		stock, err := q.GetStockForUpdate(ctx, stockID)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("stock %d: %w", stockID, ErrStockNotFound)
		}
		if err != nil {
			return fmt.Errorf("lock stock %d: %w", stockID, err)
		}
		if limit := FromPgTimestamptz(stock.BookingLimitDatetime); limit != nil && now.After(*limit) {
			return fmt.Errorf("stock %d: %w", stockID, ErrBookingLimitPassed)
		}

		code, err := q.LockAvailableActivationCode(ctx, stockID)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("stock %d: %w", stockID, ErrNoActivationCodeAvailable)
		}
		if err != nil {
			return fmt.Errorf("lock activation code: %w", err)
		}

		var row db.Booking
		for attempt := 1; ; attempt++ {
			id := uuid.New()
			row, err = q.InsertBooking(ctx, db.InsertBookingParams{
				ID:       id,
				StockID:  stockID,
				Token:    s.bookingToken(id),
				Status:   BookingStatusUsed,
				Amount:   stock.Price,
				DateUsed: pgtype.Timestamptz{Time: now, Valid: true},
			})
			if err == nil {
				break
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("insert booking: %w", err)
			}
			if attempt == maxTokenAttempts {
				return fmt.Errorf("insert booking: no free token after %d attempts", attempt)
			}
		}

		assigned, err := q.AssignActivationCode(ctx, code.ID, row.ID)
		if err != nil {
			return fmt.Errorf("assign activation code: %w", err)
		}
		if assigned != 1 {
			return fmt.Errorf("activation code %d: %w", code.ID, ErrNoActivationCodeAvailable)
		}

		if err := q.IncrementBookedQuantity(ctx, stockID); err != nil {
			return fmt.Errorf("increment booked quantity: %w", err)
		}

		booking = Booking{
			ID:             row.ID.String(),
			StockID:        row.StockID,
			Token:          row.Token,
			Status:         row.Status,
			Amount:         NumericToString(row.Amount),
			ActivationCode: code.Code,
			ExpirationDate: FromPgTimestamptz(code.ExpirationDate),
			DateCreated:    row.DateCreated.Time,
			DateUsed:       FromPgTimestamptz(row.DateUsed),
		}
		return nil
	})

	s.metrics.ObserveDuration("booking", time.Since(start).Seconds())
	if err != nil {
		s.metrics.ObserveBooking(metrics.OutcomeFailed)
		return Booking{}, err
	}

	s.metrics.ObserveBooking(metrics.OutcomeOK)
	logging.FromContext(ctx).Info("activation code booked",
		"stock_id", stockID,
		"booking_id", booking.ID,
		"token", booking.Token,
	)
	return booking, nil
}
