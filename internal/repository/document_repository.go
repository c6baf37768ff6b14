package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/cms-admin/internal/domain"
)

// DBTX is the subset of pgxpool.Pool used by repositories.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ErrDuplicate reports a write rejected by a unique index.
var ErrDuplicate = errors.New("duplicate document")

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Filter is an equality filter over top-level document fields.
type Filter map[string]any

// ListOptions paginates Find.
type ListOptions struct {
	Limit  int
	Offset int
}

// Collection stores documents of one type in the shared documents table.
type Collection[T any, PT interface {
	*T
	domain.Document
}] struct {
	db   DBTX
	name string
	now  func() time.Time
}

// NewCollection binds a typed view of the named collection.
func NewCollection[T any, PT interface {
	*T
	domain.Document
}](db DBTX, name string) *Collection[T, PT] {
	return &Collection[T, PT]{db: db, name: name, now: time.Now}
}

// Name returns the collection name.
func (c *Collection[T, PT]) Name() string {
	return c.name
}

// Insert stores doc, assigning an id when it has none.
func (c *Collection[T, PT]) Insert(ctx context.Context, doc PT) error {
	meta := doc.Metadata()
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	now := c.now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", c.name, err)
	}

	const query = `
        INSERT INTO documents (collection, id, body, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $4)`
	if _, err := c.db.Exec(ctx, query, c.name, meta.ID, body, now); err != nil {
		return fmt.Errorf("insert %s document: %w", c.name, classifyWriteErr(err))
	}
	return nil
}

// Get loads the document with id.
func (c *Collection[T, PT]) Get(ctx context.Context, id string) (PT, error) {
	const query = `
        SELECT body FROM documents
        WHERE collection=$1 AND id=$2`
	return c.scanOne(c.db.QueryRow(ctx, query, c.name, id))
}

// FindOne returns the first document matching filter.
func (c *Collection[T, PT]) FindOne(ctx context.Context, filter Filter) (PT, error) {
	raw, err := encodeFilter(filter)
	if err != nil {
		return nil, err
	}
	const query = `
        SELECT body FROM documents
        WHERE collection=$1 AND body @> $2::jsonb
        ORDER BY created_at
        LIMIT 1`
	return c.scanOne(c.db.QueryRow(ctx, query, c.name, raw))
}

// Find lists documents matching filter, newest first.
func (c *Collection[T, PT]) Find(ctx context.Context, filter Filter, opts ListOptions) ([]PT, error) {
	raw, err := encodeFilter(filter)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 1000
	}
	const query = `
        SELECT body FROM documents
        WHERE collection=$1 AND body @> $2::jsonb
        ORDER BY created_at DESC, id
        LIMIT $3 OFFSET $4`
	rows, err := c.db.Query(ctx, query, c.name, raw, limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("list %s documents: %w", c.name, err)
	}
	defer rows.Close()

	var result []PT
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		doc, err := c.decode(body)
		if err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	return result, rows.Err()
}

// Count returns how many documents match filter.
func (c *Collection[T, PT]) Count(ctx context.Context, filter Filter) (int, error) {
	raw, err := encodeFilter(filter)
	if err != nil {
		return 0, err
	}
	const query = `
        SELECT COUNT(*) FROM documents
        WHERE collection=$1 AND body @> $2::jsonb`
	var total int
	if err := c.db.QueryRow(ctx, query, c.name, raw).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s documents: %w", c.name, err)
	}
	return total, nil
}

// Update replaces an existing document. Returns pgx.ErrNoRows when it does not exist.
func (c *Collection[T, PT]) Update(ctx context.Context, doc PT) error {
	meta := doc.Metadata()
	meta.UpdatedAt = c.now().UTC()

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", c.name, err)
	}

	const query = `
        UPDATE documents SET body=$3, updated_at=$4
        WHERE collection=$1 AND id=$2`
	cmd, err := c.db.Exec(ctx, query, c.name, meta.ID, body, meta.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update %s document: %w", c.name, classifyWriteErr(err))
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Upsert writes doc under its id, creating it if needed. Used for singletons.
func (c *Collection[T, PT]) Upsert(ctx context.Context, doc PT) error {
	meta := doc.Metadata()
	now := c.now().UTC()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	meta.UpdatedAt = now

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", c.name, err)
	}

	const query = `
        INSERT INTO documents (collection, id, body, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (collection, id)
        DO UPDATE SET body=EXCLUDED.body, updated_at=EXCLUDED.updated_at`
	if _, err := c.db.Exec(ctx, query, c.name, meta.ID, body, meta.CreatedAt, now); err != nil {
		return fmt.Errorf("upsert %s document: %w", c.name, err)
	}
	return nil
}

// Delete removes the document with id. Returns pgx.ErrNoRows when it does not exist.
func (c *Collection[T, PT]) Delete(ctx context.Context, id string) error {
	const query = `
        DELETE FROM documents
        WHERE collection=$1 AND id=$2`
	cmd, err := c.db.Exec(ctx, query, c.name, id)
	if err != nil {
		return fmt.Errorf("delete %s document: %w", c.name, err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func classifyWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}
	return err
}

func (c *Collection[T, PT]) scanOne(row pgx.Row) (PT, error) {
	var body []byte
	if err := row.Scan(&body); err != nil {
		return nil, err
	}
	return c.decode(body)
}

func (c *Collection[T, PT]) decode(body []byte) (PT, error) {
	doc := PT(new(T))
	if err := json.Unmarshal(body, doc); err != nil {
		return nil, fmt.Errorf("decode %s document: %w", c.name, err)
	}
	return doc, nil
}

func encodeFilter(filter Filter) ([]byte, error) {
	if len(filter) == 0 {
		return []byte("{}"), nil
	}
	raw, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	return raw, nil
}
