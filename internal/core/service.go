package core

import (
	"context"
	"errors"
	"time"

	"github.com/JonMunkholm/codeimport/internal/codes"
	"github.com/JonMunkholm/codeimport/internal/config"
	db "github.com/JonMunkholm/codeimport/internal/database"
	"github.com/JonMunkholm/codeimport/internal/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/text/language"
)

// DefaultImportTimeout bounds a single import when the config sets none.
const DefaultImportTimeout = time.Minute

// DefaultExpirationMargin is the minimum gap between a stock's booking limit
// and its activation codes' expiration.
const DefaultExpirationMargin = 7 * 24 * time.Hour

// Service provides the activation code operations: stock creation, file
// checks and imports, and bookings.
type Service struct {
	pool          *pgxpool.Pool
	checker       *codes.Checker
	limiter       *UploadLimiter
	metrics       *metrics.Metrics
	margin        time.Duration
	importTimeout time.Duration

	// newToken overrides the booking token generator in tests.
	newToken func(uuid.UUID) string
}

// NewService creates a Service from the loaded configuration. m may be nil.
func NewService(pool *pgxpool.Pool, cfg *config.Config, m *metrics.Metrics) *Service {
	checker := codes.NewChecker()
	checker.MaxSize = cfg.Upload.MaxFileSize
	checker.MaxDuplicatesShown = cfg.Codes.MaxDuplicatesShown
	checker.TemplateURL = cfg.Codes.TemplateURL

	margin := cfg.Codes.ExpirationMargin
	if margin <= 0 {
		margin = DefaultExpirationMargin
	}
	timeout := cfg.Upload.Timeout
	if timeout <= 0 {
		timeout = DefaultImportTimeout
	}

	return &Service{
		pool:          pool,
		checker:       checker,
		limiter:       NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		metrics:       m,
		margin:        margin,
		importTimeout: timeout,
	}
}

// Limiter exposes the import limiter for shutdown draining and health checks.
func (s *Service) Limiter() *UploadLimiter {
	return s.limiter
}

// Checker returns the activation code file checker.
func (s *Service) Checker() *codes.Checker {
	return s.checker
}

// CheckFile runs the file checker without touching the database.
func (s *Service) CheckFile(ctx context.Context, f codes.File, tag language.Tag) ([]string, error) {
	start := time.Now()
	rows, err := s.checker.Check(ctx, f, tag)
	s.observeCheck(rows, err)
	s.metrics.ObserveDuration("check", time.Since(start).Seconds())
	return rows, err
}

// Ping verifies database connectivity.
func (s *Service) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Service) observeCheck(rows []string, err error) {
	var checkErr *codes.CheckError
	switch {
	case err == nil:
		s.metrics.ObserveCheck(metrics.OutcomeOK, len(rows))
	case errors.As(err, &checkErr):
		s.metrics.ObserveCheck(checkErr.Kind.String(), 0)
	}
}

// inTx runs fn in a transaction, committing when fn returns nil.
func (s *Service) inTx(ctx context.Context, fn func(q *db.Queries) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(db.New(s.pool).WithTx(tx))
	})
}
