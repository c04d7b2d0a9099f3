package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertImport = `
INSERT INTO activation_code_import (
    id, stock_id, file_name, file_size, content_hash, code_count, failure_kind, ip_address, user_agent
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING created_at
`

type InsertImportParams struct {
	ID          uuid.UUID
	StockID     pgtype.Int8
	FileName    string
	FileSize    int64
	ContentHash string
	CodeCount   int32
	FailureKind pgtype.Text
	IpAddress   pgtype.Text
	UserAgent   pgtype.Text
}

func (q *Queries) InsertImport(ctx context.Context, arg InsertImportParams) (pgtype.Timestamptz, error) {
	row := q.db.QueryRow(ctx, insertImport,
		arg.ID,
		arg.StockID,
		arg.FileName,
		arg.FileSize,
		arg.ContentHash,
		arg.CodeCount,
		arg.FailureKind,
		arg.IpAddress,
		arg.UserAgent,
	)
	var createdAt pgtype.Timestamptz
	err := row.Scan(&createdAt)
	return createdAt, err
}

const findSuccessfulImport = `
SELECT id
FROM activation_code_import
WHERE stock_id = $1 AND content_hash = $2 AND failure_kind IS NULL
ORDER BY created_at DESC
LIMIT 1
`

// FindSuccessfulImport returns the id of an earlier successful import of
// the same content into the stock. pgx.ErrNoRows when there is none.
func (q *Queries) FindSuccessfulImport(ctx context.Context, stockID int64, contentHash string) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, findSuccessfulImport, stockID, contentHash)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const listImports = `
SELECT id, stock_id, file_name, file_size, content_hash, code_count, failure_kind, ip_address, user_agent, created_at
FROM activation_code_import
WHERE stock_id = $1
ORDER BY created_at DESC
LIMIT $2
`

func (q *Queries) ListImports(ctx context.Context, stockID int64, limit int32) ([]ActivationCodeImport, error) {
	rows, err := q.db.Query(ctx, listImports, stockID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ActivationCodeImport
	for rows.Next() {
		var i ActivationCodeImport
		if err := rows.Scan(
			&i.ID,
			&i.StockID,
			&i.FileName,
			&i.FileSize,
			&i.ContentHash,
			&i.CodeCount,
			&i.FailureKind,
			&i.IpAddress,
			&i.UserAgent,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const purgeImports = `
DELETE FROM activation_code_import
WHERE id IN (
    SELECT id FROM activation_code_import
    WHERE created_at < now() - make_interval(days => $1::int)
    LIMIT $2
)
`

// PurgeImports deletes at most batchSize history entries older than
// retentionDays and returns how many were removed.
func (q *Queries) PurgeImports(ctx context.Context, retentionDays, batchSize int32) (int64, error) {
	tag, err := q.db.Exec(ctx, purgeImports, retentionDays, batchSize)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
