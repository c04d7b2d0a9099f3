package core

// imports.go appends activation code files to existing stocks.
//
// An import holds an UploadLimiter slot, checks the file, then locks the
// stock row while it stores the codes, so two imports into the same stock
// serialize. Every attempt that reaches a known stock leaves an entry in the
// import history, successful or not. The history's content hash lets a
// byte-identical file be rejected before its codes are compared one by one.
//
// A stock holding codes can only be booked as many times as it has codes, so
// an import resets the quantity to the bookings made plus the codes left,
// whatever quantity the stock had before.

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/codeimport/internal/codes"
	db "github.com/JonMunkholm/codeimport/internal/database"
	"github.com/JonMunkholm/codeimport/internal/logging"
	"github.com/JonMunkholm/codeimport/internal/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/zeebo/xxh3"
	"golang.org/x/text/language"
)

// Failure kinds recorded in the import history besides the check kinds.
const (
	FailureAlreadyImported = "already_imported"
	FailureCodeConflict    = "code_conflict"
)

// Import history page sizes.
const (
	DefaultImportListLimit = 50
	MaxImportListLimit     = 500
)

// ContentHash fingerprints file content for duplicate import detection.
func ContentHash(text string) string {
	sum := xxh3.HashString128(text).Bytes()
	return hex.EncodeToString(sum[:])
}

// ImportCodes checks p.File and appends its codes to the stock.
//
// Check failures are returned as *codes.CheckError with the message in
// p.Language. A file already imported into the stock fails with
// ErrAlreadyImported; codes the stock already holds fail with a
// *CodeConflictError.
func (s *Service) ImportCodes(ctx context.Context, p ImportParams) (ImportResult, error) {
	if p.File == nil {
		return ImportResult{}, errors.New("no file provided")
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		s.metrics.ObserveImport(metrics.OutcomeFailed, 0)
		return ImportResult{}, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	start := time.Now()
	importID := uuid.New()
	logger := logging.WithFields(ctx,
		"import_id", importID,
		"stock_id", p.StockID,
		"file_name", p.FileName,
	)

	// Unknown stocks fail before the file is read, so nothing is recorded
	// against them.
	if _, err := db.New(s.pool).GetStock(ctx, p.StockID); err != nil {
		s.metrics.ObserveImport(metrics.OutcomeFailed, 0)
		if errors.Is(err, pgx.ErrNoRows) {
			return ImportResult{}, fmt.Errorf("stock %d: %w", p.StockID, ErrStockNotFound)
		}
		return ImportResult{}, fmt.Errorf("get stock %d: %w", p.StockID, err)
	}

	rows, content, err := s.checkCapturing(ctx, p.File, p.Language)
	hash := ContentHash(content)
	rec := db.InsertImportParams{
		ID:          importID,
		StockID:     pgtype.Int8{Int64: p.StockID, Valid: true},
		FileName:    p.FileName,
		FileSize:    p.File.Size(),
		ContentHash: hash,
		CodeCount:   int32(len(rows)),
		IpAddress:   ToPgText(IPAddressFromContext(ctx)),
		UserAgent:   ToPgText(UserAgentFromContext(ctx)),
	}

	var checkErr *codes.CheckError
	if errors.As(err, &checkErr) {
		logger.Info("activation code file rejected", "kind", checkErr.Kind.String())
		s.recordFailure(ctx, rec, checkErr.Kind.String())
		s.metrics.ObserveImport(metrics.OutcomeFailed, 0)
		return ImportResult{}, err
	}

	var quantity, available int
	err = s.inTx(ctx, func(q *db.Queries) error {
		stock, err := q.GetStockForUpdate(ctx, p.StockID)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("stock %d: %w", p.StockID, ErrStockNotFound)
		}
		if err != nil {
			return fmt.Errorf("lock stock %d: %w", p.StockID, err)
		}

		offer, err := q.GetOffer(ctx, stock.OfferID)
		if err != nil {
			return fmt.Errorf("get offer %d: %w", stock.OfferID, err)
		}
		if err := checkOfferAcceptsCodes(toOffer(offer)); err != nil {
			return err
		}
		if limit := FromPgTimestamptz(stock.BookingLimitDatetime); limit != nil {
			if _, err := resolveBookingLimit(limit, p.ExpirationDatetime, s.margin); err != nil {
				return err
			}
		}

		if prev, err := q.FindSuccessfulImport(ctx, p.StockID, hash); err == nil {
			return fmt.Errorf("%w as %s", ErrAlreadyImported, prev)
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("find previous import: %w", err)
		}

		existing, err := q.ListExistingCodes(ctx, p.StockID, rows)
		if err != nil {
			return fmt.Errorf("list existing codes: %w", err)
		}
		if len(existing) > 0 {
			return &CodeConflictError{Codes: existing}
		}

		if _, err := q.InsertActivationCodes(ctx, db.InsertActivationCodesParams{
			StockID:        p.StockID,
			Codes:          rows,
			ExpirationDate: ToPgTimestamptz(p.ExpirationDatetime),
		}); err != nil {
			return fmt.Errorf("insert activation codes: %w", err)
		}
		synced, err := q.SyncStockQuantity(ctx, p.StockID)
		if err != nil {
			return fmt.Errorf("sync stock quantity: %w", err)
		}
		if _, err := q.InsertImport(ctx, rec); err != nil {
			return fmt.Errorf("record import: %w", err)
		}

		counts, err := q.CountActivationCodes(ctx, p.StockID)
		if err != nil {
			return fmt.Errorf("count activation codes: %w", err)
		}
		available = int(counts.Available)
		quantity = int(synced)
		return nil
	})

	s.metrics.ObserveDuration("import", time.Since(start).Seconds())

	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyImported):
			s.recordFailure(ctx, rec, FailureAlreadyImported)
		case errors.Is(err, ErrCodesAlreadyExist):
			s.recordFailure(ctx, rec, FailureCodeConflict)
		}
		logger.Warn("activation code import failed", "error", err)
		s.metrics.ObserveImport(metrics.OutcomeFailed, 0)
		return ImportResult{}, err
	}

	s.metrics.ObserveImport(metrics.OutcomeOK, len(rows))
	logger.Info("activation codes imported",
		"imported", len(rows),
		"quantity", quantity,
		"available", available,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return ImportResult{
		ImportID:  importID.String(),
		StockID:   p.StockID,
		Imported:  len(rows),
		Quantity:  quantity,
		Available: available,
	}, nil
}

// checkCapturing runs the file checker and also returns the text it read,
// so the content hash covers exactly what was checked.
func (s *Service) checkCapturing(ctx context.Context, f codes.File, tag language.Tag) ([]string, string, error) {
	var content string
	checker := *s.checker
	read := checker.Read
	if read == nil {
		read = codes.ReadText
	}
	checker.Read = func(ctx context.Context, f codes.File) (string, bool) {
		text, ok := read(ctx, f)
		if ok {
			content = text
		}
		return text, ok
	}

	rows, err := checker.Check(ctx, f, tag)
	s.observeCheck(rows, err)
	return rows, content, err
}

// recordFailure stores a failed attempt in the history. The stock must
// exist; errors are logged and otherwise ignored.
func (s *Service) recordFailure(ctx context.Context, rec db.InsertImportParams, kind string) {
	rec.FailureKind = pgtype.Text{String: kind, Valid: true}
	rec.CodeCount = 0

	// The request context may already be done when the import timed out.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if _, err := db.New(s.pool).InsertImport(ctx, rec); err != nil {
		logging.FromContext(ctx).Warn("failed to record import attempt",
			"import_id", rec.ID,
			"stock_id", rec.StockID.Int64,
			"error", err,
		)
	}
}

// ListImports returns the stock's import history, newest first.
func (s *Service) ListImports(ctx context.Context, stockID int64, limit int) ([]ImportEntry, error) {
	switch {
	case limit <= 0:
		limit = DefaultImportListLimit
	case limit > MaxImportListLimit:
		limit = MaxImportListLimit
	}

	rows, err := db.New(s.pool).ListImports(ctx, stockID, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list imports for stock %d: %w", stockID, err)
	}

	entries := make([]ImportEntry, len(rows))
	for i, row := range rows {
		entries[i] = toImportEntry(row)
	}
	return entries, nil
}
