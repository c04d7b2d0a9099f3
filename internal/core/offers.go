package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	db "github.com/JonMunkholm/codeimport/internal/database"
	"github.com/JonMunkholm/codeimport/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// CreateOffer stores a new offer.
func (s *Service) CreateOffer(ctx context.Context, p OfferParams) (Offer, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return Offer{}, ErrOfferNameRequired
	}

	row, err := db.New(s.pool).InsertOffer(ctx, db.InsertOfferParams{
		Name:      name,
		IsDigital: p.IsDigital,
		IsEvent:   p.IsEvent,
	})
	if err != nil {
		return Offer{}, fmt.Errorf("insert offer: %w", err)
	}

	logging.FromContext(ctx).Info("offer created",
		"offer_id", row.ID,
		"is_digital", row.IsDigital,
		"is_event", row.IsEvent,
	)
	return toOffer(row), nil
}

// GetOffer returns an offer by id.
func (s *Service) GetOffer(ctx context.Context, id int64) (Offer, error) {
	row, err := db.New(s.pool).GetOffer(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Offer{}, fmt.Errorf("offer %d: %w", id, ErrOfferNotFound)
	}
	if err != nil {
		return Offer{}, fmt.Errorf("get offer %d: %w", id, err)
	}
	return toOffer(row), nil
}

// CreateStock stores a stock and, when given, its activation codes.
//
// Codes are re-checked with the file rules (no codes, forbidden characters,
// duplicates) since they may not come from an uploaded file. With codes, the
// quantity is the number of codes and the booking limit is reconciled with
// the codes' expiration date.
func (s *Service) CreateStock(ctx context.Context, p StockParams) (Stock, error) {
	price, err := normalizePrice(p.Price)
	if err != nil {
		return Stock{}, err
	}

	var rows []string
	if len(p.ActivationCodes) > 0 {
		rows, err = s.checker.CheckCodes(p.ActivationCodes, p.Language)
		if err != nil {
			s.observeCheck(nil, err)
			return Stock{}, err
		}
	}

	quantity, err := resolveQuantity(p.Quantity, len(rows))
	if err != nil {
		return Stock{}, err
	}

	bookingLimit := p.BookingLimitDatetime
	var expiration *time.Time
	if len(rows) > 0 {
		expiration = p.ActivationCodesExpirationDatetime
		bookingLimit, err = resolveBookingLimit(bookingLimit, expiration, s.margin)
		if err != nil {
			return Stock{}, err
		}
	}

	numeric, err := ToPgNumeric(price)
	if err != nil {
		return Stock{}, fmt.Errorf("%w: %v", ErrInvalidPrice, err)
	}

	var stock db.Stock
	err = s.inTx(ctx, func(q *db.Queries) error {
		offer, err := q.GetOffer(ctx, p.OfferID)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("offer %d: %w", p.OfferID, ErrOfferNotFound)
		}
		if err != nil {
			return fmt.Errorf("get offer %d: %w", p.OfferID, err)
		}
		if len(rows) > 0 {
			if err := checkOfferAcceptsCodes(toOffer(offer)); err != nil {
				return err
			}
		}

		stock, err = q.InsertStock(ctx, db.InsertStockParams{
			OfferID:              p.OfferID,
			Price:                numeric,
			Quantity:             ToPgInt4(quantity),
			BookingLimitDatetime: ToPgTimestamptz(bookingLimit),
		})
		if err != nil {
			return fmt.Errorf("insert stock: %w", err)
		}

		if len(rows) == 0 {
			return nil
		}
		if _, err := q.InsertActivationCodes(ctx, db.InsertActivationCodesParams{
			StockID:        stock.ID,
			Codes:          rows,
			ExpirationDate: ToPgTimestamptz(expiration),
		}); err != nil {
			return fmt.Errorf("insert activation codes: %w", err)
		}
		return nil
	})
	if err != nil {
		return Stock{}, err
	}

	s.metrics.AddCodes(len(rows))
	logging.FromContext(ctx).Info("stock created",
		"stock_id", stock.ID,
		"offer_id", stock.OfferID,
		"activation_codes", len(rows),
	)
	return toStock(stock, len(rows), expiration), nil
}

// UpdateStock changes a stock's price, quantity or booking limit.
//
// The quantity may not drop below the booked quantity. On a stock holding
// activation codes, the quantity stays what the codes give it and a new
// booking limit must leave the margin before the codes' earliest expiration.
func (s *Service) UpdateStock(ctx context.Context, p StockUpdate) (Stock, error) {
	var price *pgtype.Numeric
	if p.Price != nil {
		normalized, err := normalizePrice(*p.Price)
		if err != nil {
			return Stock{}, err
		}
		numeric, err := ToPgNumeric(normalized)
		if err != nil {
			return Stock{}, fmt.Errorf("%w: %v", ErrInvalidPrice, err)
		}
		price = &numeric
	}

	var (
		stock      db.Stock
		codeCount  int
		expiration *time.Time
	)
	err := s.inTx(ctx, func(q *db.Queries) error {
		current, err := q.GetStockForUpdate(ctx, p.StockID)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("stock %d: %w", p.StockID, ErrStockNotFound)
		}
		if err != nil {
			return fmt.Errorf("lock stock %d: %w", p.StockID, err)
		}

		counts, err := q.CountActivationCodes(ctx, p.StockID)
		if err != nil {
			return fmt.Errorf("count activation codes: %w", err)
		}
		codeCount = int(counts.Total)

		var codeQuantity *int
		if codeCount > 0 {
			n := int(current.BookedQuantity) + int(counts.Available)
			codeQuantity = &n

			exp, err := q.GetActivationCodesExpiration(ctx, p.StockID)
			if err != nil {
				return fmt.Errorf("get activation codes expiration: %w", err)
			}
			expiration = FromPgTimestamptz(exp)
		}

		update := db.UpdateStockParams{
			ID:                   p.StockID,
			Price:                current.Price,
			Quantity:             current.Quantity,
			BookingLimitDatetime: current.BookingLimitDatetime,
		}
		if price != nil {
			update.Price = *price
		}
		if p.Quantity != nil {
			if err := checkEditedQuantity(*p.Quantity, int(current.BookedQuantity), codeQuantity); err != nil {
				return err
			}
			update.Quantity = ToPgInt4(p.Quantity)
		}
		if p.BookingLimitDatetime != nil {
			if _, err := resolveBookingLimit(p.BookingLimitDatetime, expiration, s.margin); err != nil {
				return err
			}
			update.BookingLimitDatetime = ToPgTimestamptz(p.BookingLimitDatetime)
		}

		stock, err = q.UpdateStock(ctx, update)
		if err != nil {
			return fmt.Errorf("update stock %d: %w", p.StockID, err)
		}
		return nil
	})
	if err != nil {
		return Stock{}, err
	}

	logging.FromContext(ctx).Info("stock updated",
		"stock_id", stock.ID,
		"price_changed", p.Price != nil,
		"quantity_changed", p.Quantity != nil,
		"booking_limit_changed", p.BookingLimitDatetime != nil,
	)
	return toStock(stock, codeCount, expiration), nil
}
