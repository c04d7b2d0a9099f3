package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/codeimport/internal/codes"
	"github.com/JonMunkholm/codeimport/internal/config"
	db "github.com/JonMunkholm/codeimport/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/text/language"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("codeimport"),
		postgres.WithUsername("codeimport"),
		postgres.WithPassword("codeimport"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { testcontainers.CleanupContainer(t, container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))
	return pool
}

func integrationConfig() *config.Config {
	return &config.Config{
		Upload: config.UploadConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 4,
			MaxWaitTime:   10 * time.Second,
			Timeout:       30 * time.Second,
		},
		Codes: config.CodesConfig{
			MaxDuplicatesShown: 5,
			ExpirationMargin:   DefaultExpirationMargin,
			TemplateURL:        codes.DefaultTemplateURL,
		},
	}
}

type fixtures struct {
	t   *testing.T
	svc *Service
}

func (f fixtures) offer(digital, event bool) Offer {
	f.t.Helper()
	o, err := f.svc.CreateOffer(context.Background(), OfferParams{Name: "Abonnement", IsDigital: digital, IsEvent: event})
	require.NoError(f.t, err)
	return o
}

func (f fixtures) stock(p StockParams) Stock {
	f.t.Helper()
	if p.OfferID == 0 {
		p.OfferID = f.offer(true, false).ID
	}
	if p.Price == "" {
		p.Price = "10"
	}
	p.Language = language.French
	s, err := f.svc.CreateStock(context.Background(), p)
	require.NoError(f.t, err)
	return s
}

func (f fixtures) importFile(stockID int64, content string, expiration *time.Time) (ImportResult, error) {
	return f.svc.ImportCodes(context.Background(), ImportParams{
		StockID:            stockID,
		FileName:           "codes.csv",
		File:               memFile(content),
		ExpirationDatetime: expiration,
		Language:           language.French,
	})
}

func intPtr(n int) *int { return &n }

func timePtr(t time.Time) *time.Time { return &t }

func TestIntegration_Service(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	pool := setupPostgres(t)
	svc := NewService(pool, integrationConfig(), nil)
	ctx := context.Background()

	t.Run("create stock with codes books them in file order", func(t *testing.T) {
		f := fixtures{t, svc}
		stock := f.stock(StockParams{Quantity: intPtr(50), ActivationCodes: []string{" C ", "A", "B"}})

		require.NotNil(t, stock.Quantity)
		assert.Equal(t, 3, *stock.Quantity)
		assert.Equal(t, 3, stock.ActivationCodesCount)

		var got []string
		for range 3 {
			b, err := svc.BookActivationCode(ctx, stock.ID)
			require.NoError(t, err)
			assert.Equal(t, BookingStatusUsed, b.Status)
			assert.Equal(t, "10.00", b.Amount)
			assert.Len(t, b.Token, TokenLength)
			got = append(got, b.ActivationCode)
		}
		assert.Equal(t, []string{"C", "A", "B"}, got)

		_, err := svc.BookActivationCode(ctx, stock.ID)
		assert.ErrorIs(t, err, ErrNoActivationCodeAvailable)
	})

	t.Run("codes need a digital offer that is not an event", func(t *testing.T) {
		f := fixtures{t, svc}
		for _, tt := range []struct {
			offer Offer
			want  error
		}{
			{f.offer(false, false), ErrOfferNotDigital},
			{f.offer(true, true), ErrOfferIsEvent},
		} {
			_, err := svc.CreateStock(ctx, StockParams{OfferID: tt.offer.ID, Price: "5", ActivationCodes: []string{"A"}})
			assert.ErrorIs(t, err, tt.want)
		}

		_, err := svc.CreateStock(ctx, StockParams{OfferID: 987654, Price: "5"})
		assert.ErrorIs(t, err, ErrOfferNotFound)
	})

	t.Run("booking limit derived from expiration", func(t *testing.T) {
		f := fixtures{t, svc}
		expiration := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)
		stock := f.stock(StockParams{
			ActivationCodes:                   []string{"A"},
			ActivationCodesExpirationDatetime: &expiration,
		})

		require.NotNil(t, stock.BookingLimitDatetime)
		assert.WithinDuration(t, expiration.Add(-DefaultExpirationMargin), *stock.BookingLimitDatetime, time.Second)

		_, err := svc.CreateStock(ctx, StockParams{
			OfferID:                           stock.OfferID,
			Price:                             "5",
			BookingLimitDatetime:              timePtr(expiration.Add(-24 * time.Hour)),
			ActivationCodes:                   []string{"A"},
			ActivationCodesExpirationDatetime: &expiration,
		})
		assert.ErrorIs(t, err, ErrExpirationTooEarly)
	})

	t.Run("booking after the limit is refused", func(t *testing.T) {
		f := fixtures{t, svc}
		stock := f.stock(StockParams{
			BookingLimitDatetime: timePtr(time.Now().Add(-time.Hour)),
			ActivationCodes:      []string{"A"},
		})

		_, err := svc.BookActivationCode(ctx, stock.ID)
		assert.ErrorIs(t, err, ErrBookingLimitPassed)
	})

	t.Run("import sets quantity from codes", func(t *testing.T) {
		f := fixtures{t, svc}
		stock := f.stock(StockParams{Quantity: intPtr(10)})

		res, err := f.importFile(stock.ID, "X\nY\nZ\n", nil)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Imported)
		assert.Equal(t, 3, res.Quantity)
		assert.Equal(t, 3, res.Available)

		_, err = svc.BookActivationCode(ctx, stock.ID)
		require.NoError(t, err)

		res, err = f.importFile(stock.ID, "W\n", nil)
		require.NoError(t, err)
		assert.Equal(t, 4, res.Quantity)
		assert.Equal(t, 3, res.Available)
	})

	t.Run("same file imported twice", func(t *testing.T) {
		f := fixtures{t, svc}
		stock := f.stock(StockParams{})

		_, err := f.importFile(stock.ID, "X\nY\n", nil)
		require.NoError(t, err)

		_, err = f.importFile(stock.ID, "X\nY\n", nil)
		assert.ErrorIs(t, err, ErrAlreadyImported)

		entries, err := svc.ListImports(ctx, stock.ID, 0)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, FailureAlreadyImported, entries[0].FailureKind)
		assert.Empty(t, entries[1].FailureKind)
		assert.Equal(t, 2, entries[1].CodeCount)
		assert.Equal(t, ContentHash("X\nY\n"), entries[1].ContentHash)
	})

	t.Run("codes already in stock", func(t *testing.T) {
		f := fixtures{t, svc}
		stock := f.stock(StockParams{ActivationCodes: []string{"X", "Y"}})

		_, err := f.importFile(stock.ID, "W\nY\nX\n", nil)
		var conflict *CodeConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, []string{"X", "Y"}, conflict.Codes)

		entries, err := svc.ListImports(ctx, stock.ID, 0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, FailureCodeConflict, entries[0].FailureKind)
	})

	t.Run("rejected file is recorded", func(t *testing.T) {
		f := fixtures{t, svc}
		stock := f.stock(StockParams{})

		_, err := f.importFile(stock.ID, "A\nA\n", nil)
		var checkErr *codes.CheckError
		require.ErrorAs(t, err, &checkErr)
		assert.Equal(t, codes.KindDuplicates, checkErr.Kind)

		entries, err := svc.ListImports(ctx, stock.ID, 0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "duplicates", entries[0].FailureKind)
		assert.Equal(t, 0, entries[0].CodeCount)
	})

	t.Run("unknown stock is reported before the file", func(t *testing.T) {
		f := fixtures{t, svc}

		_, err := f.importFile(987654, "A,B\n", nil)
		assert.ErrorIs(t, err, ErrStockNotFound)
		var checkErr *codes.CheckError
		assert.False(t, errors.As(err, &checkErr))

		entries, err := svc.ListImports(ctx, 987654, 0)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("import expiration must follow booking limit", func(t *testing.T) {
		f := fixtures{t, svc}
		limit := time.Now().Add(30 * 24 * time.Hour)
		stock := f.stock(StockParams{BookingLimitDatetime: &limit})

		_, err := f.importFile(stock.ID, "A\n", timePtr(limit.Add(24*time.Hour)))
		assert.ErrorIs(t, err, ErrExpirationTooEarly)

		_, err = f.importFile(stock.ID, "A\n", timePtr(limit.Add(10*24*time.Hour)))
		assert.NoError(t, err)
	})

	t.Run("concurrent bookings get distinct codes", func(t *testing.T) {
		f := fixtures{t, svc}
		const n = 12
		all := make([]string, n)
		for i := range all {
			all[i] = uuid.NewString()[:8]
		}
		stock := f.stock(StockParams{ActivationCodes: all})

		var (
			mu   sync.Mutex
			wg   sync.WaitGroup
			seen = make(map[string]int)
			errs []error
		)
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				b, err := svc.BookActivationCode(ctx, stock.ID)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, err)
					return
				}
				seen[b.ActivationCode]++
			}()
		}
		wg.Wait()

		require.Empty(t, errs)
		assert.Len(t, seen, n)
		for code, count := range seen {
			assert.Equal(t, 1, count, "code %s handed out %d times", code, count)
		}

		_, err := svc.BookActivationCode(ctx, stock.ID)
		assert.ErrorIs(t, err, ErrNoActivationCodeAvailable)
	})

	t.Run("taken token is replaced", func(t *testing.T) {
		f := fixtures{t, svc}
		stock := f.stock(StockParams{ActivationCodes: []string{"A", "B"}})

		calls := 0
		retrying := NewService(pool, integrationConfig(), nil)
		retrying.newToken = func(id uuid.UUID) string {
			calls++
			if calls <= 2 {
				return "TAKEN2"
			}
			return newBookingToken(id)
		}

		first, err := retrying.BookActivationCode(ctx, stock.ID)
		require.NoError(t, err)
		assert.Equal(t, "TAKEN2", first.Token)

		second, err := retrying.BookActivationCode(ctx, stock.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "TAKEN2", second.Token)
		assert.Equal(t, 3, calls)
	})

	t.Run("update stock", func(t *testing.T) {
		f := fixtures{t, svc}
		expiration := time.Now().Add(60 * 24 * time.Hour)
		stock := f.stock(StockParams{
			ActivationCodes:                   []string{"A", "B", "C"},
			ActivationCodesExpirationDatetime: &expiration,
		})
		_, err := svc.BookActivationCode(ctx, stock.ID)
		require.NoError(t, err)

		_, err = svc.UpdateStock(ctx, StockUpdate{StockID: stock.ID, Quantity: intPtr(0)})
		assert.ErrorIs(t, err, ErrQuantityBelowBooked)

		_, err = svc.UpdateStock(ctx, StockUpdate{StockID: stock.ID, Quantity: intPtr(8)})
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		_, err = svc.UpdateStock(ctx, StockUpdate{StockID: stock.ID, BookingLimitDatetime: timePtr(expiration.Add(-24 * time.Hour))})
		assert.ErrorIs(t, err, ErrExpirationTooEarly)

		limit := expiration.Add(-30 * 24 * time.Hour)
		updated, err := svc.UpdateStock(ctx, StockUpdate{
			StockID:              stock.ID,
			Price:                ptr("15"),
			BookingLimitDatetime: &limit,
		})
		require.NoError(t, err)
		assert.Equal(t, "15.00", updated.Price)
		require.NotNil(t, updated.BookingLimitDatetime)
		assert.WithinDuration(t, limit, *updated.BookingLimitDatetime, time.Millisecond)
		require.NotNil(t, updated.Quantity)
		assert.Equal(t, 3, *updated.Quantity)
		assert.Equal(t, 1, updated.BookedQuantity)
		assert.Equal(t, 3, updated.ActivationCodesCount)
	})

	t.Run("update stock without codes", func(t *testing.T) {
		f := fixtures{t, svc}
		stock := f.stock(StockParams{Quantity: intPtr(5)})

		updated, err := svc.UpdateStock(ctx, StockUpdate{StockID: stock.ID, Quantity: intPtr(20)})
		require.NoError(t, err)
		require.NotNil(t, updated.Quantity)
		assert.Equal(t, 20, *updated.Quantity)
		assert.Equal(t, "10.00", updated.Price)

		_, err = svc.UpdateStock(ctx, StockUpdate{StockID: 987654, Quantity: intPtr(1)})
		assert.ErrorIs(t, err, ErrStockNotFound)
	})
}

func ptr[T any](v T) *T { return &v }
