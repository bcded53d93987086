package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps every collection in the single `documents` table with a JSONB body.
// See internal/db/migrations for the schema.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore constructs a PostgresStore backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared query helpers.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	return pgGet(ctx, s.pool, collection, id, false)
}

func (s *PostgresStore) List(ctx context.Context, collection string) ([]Document, error) {
	return pgList(ctx, s.pool, collection)
}

func (s *PostgresStore) QueryByEquality(ctx context.Context, collection, field string, value any) ([]Document, error) {
	return pgQueryByEquality(ctx, s.pool, collection, field, value)
}

func (s *PostgresStore) QueryOrdered(ctx context.Context, collection, field string, dir Direction) ([]Document, error) {
	return pgQueryOrdered(ctx, s.pool, collection, field, dir)
}

func (s *PostgresStore) Insert(ctx context.Context, collection string, data any) (string, error) {
	return pgInsert(ctx, s.pool, collection, "", data, s.now())
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, data any) error {
	return pgSet(ctx, s.pool, collection, id, data, s.now())
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return pgUpdate(ctx, s.pool, collection, id, fields, s.now())
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	return pgDelete(ctx, s.pool, collection, id)
}

// BatchWrite applies all ops inside one transaction using a pgx batch.
func (s *PostgresStore) BatchWrite(ctx context.Context, ops []WriteOp) error {
	if len(ops) == 0 {
		return nil
	}
	now := s.now()

	batch := &pgx.Batch{}
	for i, op := range ops {
		sql, args, err := batchStatement(op, now)
		if err != nil {
			return fmt.Errorf("batch op %d: %w", i, err)
		}
		batch.Queue(sql, args...)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	br := tx.SendBatch(ctx, batch)
	for i, op := range ops {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return fmt.Errorf("batch op %d on %s failed: %w", i, op.Collection, err)
		}
		if op.Kind == OpUpdate && tag.RowsAffected() == 0 {
			_ = br.Close()
			return fmt.Errorf("batch op %d %s/%s: %w", i, op.Collection, op.ID, ErrNotFound)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgTx{tx: tx, now: s.now()}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ── transaction ──────────────────────────────────────────────────────────────

type pgTx struct {
	tx  pgx.Tx
	now time.Time
}

func (t *pgTx) Get(ctx context.Context, collection, id string) (*Document, error) {
	return pgGet(ctx, t.tx, collection, id, false)
}

func (t *pgTx) GetForUpdate(ctx context.Context, collection, id string) (*Document, error) {
	return pgGet(ctx, t.tx, collection, id, true)
}

func (t *pgTx) List(ctx context.Context, collection string) ([]Document, error) {
	return pgList(ctx, t.tx, collection)
}

func (t *pgTx) QueryByEquality(ctx context.Context, collection, field string, value any) ([]Document, error) {
	return pgQueryByEquality(ctx, t.tx, collection, field, value)
}

func (t *pgTx) QueryOrdered(ctx context.Context, collection, field string, dir Direction) ([]Document, error) {
	return pgQueryOrdered(ctx, t.tx, collection, field, dir)
}

func (t *pgTx) Insert(ctx context.Context, collection string, data any) (string, error) {
	return pgInsert(ctx, t.tx, collection, "", data, t.now)
}

func (t *pgTx) Set(ctx context.Context, collection, id string, data any) error {
	return pgSet(ctx, t.tx, collection, id, data, t.now)
}

func (t *pgTx) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return pgUpdate(ctx, t.tx, collection, id, fields, t.now)
}

func (t *pgTx) Delete(ctx context.Context, collection, id string) error {
	return pgDelete(ctx, t.tx, collection, id)
}

// ── shared helpers ───────────────────────────────────────────────────────────

func pgGet(ctx context.Context, q pgxQuerier, collection, id string, forUpdate bool) (*Document, error) {
	sql := "SELECT id, data FROM documents WHERE collection = $1 AND id = $2"
	if forUpdate {
		sql += " FOR UPDATE"
	}
	var d Document
	if err := q.QueryRow(ctx, sql, collection, id).Scan(&d.ID, &d.Data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch %s/%s: %w", collection, id, err)
	}
	return &d, nil
}

func pgList(ctx context.Context, q pgxQuerier, collection string) ([]Document, error) {
	return pgQuery(ctx, q, collection,
		"SELECT id, data FROM documents WHERE collection = $1 ORDER BY seq",
		collection)
}

func pgQueryByEquality(ctx context.Context, q pgxQuerier, collection, field string, value any) ([]Document, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query value: %w", err)
	}
	return pgQuery(ctx, q, collection, `
		SELECT id, data FROM documents
		WHERE collection = $1 AND data -> $2::text = $3::jsonb
		ORDER BY seq`,
		collection, field, json.RawMessage(b))
}

func pgQueryOrdered(ctx context.Context, q pgxQuerier, collection, field string, dir Direction) ([]Document, error) {
	if err := validateDirection(dir); err != nil {
		return nil, err
	}
	order := "ASC NULLS FIRST"
	if dir == Desc {
		order = "DESC NULLS LAST"
	}
	return pgQuery(ctx, q, collection, `
		SELECT id, data FROM documents
		WHERE collection = $1
		ORDER BY data -> $2::text `+order+`, seq`,
		collection, field)
}

func pgQuery(ctx context.Context, q pgxQuerier, collection, sql string, args ...any) ([]Document, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Data); err != nil {
			return nil, fmt.Errorf("failed to scan %s document: %w", collection, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s row iteration error: %w", collection, err)
	}
	return docs, nil
}

func pgInsert(ctx context.Context, q pgxQuerier, collection, id string, data any, now time.Time) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	body, err := encodeBody(data, now)
	if err != nil {
		return "", err
	}
	if _, err := q.Exec(ctx,
		"INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)",
		collection, id, body,
	); err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return id, nil
}

func pgSet(ctx context.Context, q pgxQuerier, collection, id string, data any, now time.Time) error {
	if id == "" {
		return fmt.Errorf("set on %s requires an id", collection)
	}
	body, err := encodeBody(data, now)
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `
		INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		collection, id, body,
	); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func pgUpdate(ctx context.Context, q pgxQuerier, collection, id string, fields map[string]any, now time.Time) error {
	body, err := encodeBody(fields, now)
	if err != nil {
		return err
	}
	tag, err := q.Exec(ctx, `
		UPDATE documents SET data = data || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2`,
		collection, id, body,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

func pgDelete(ctx context.Context, q pgxQuerier, collection, id string) error {
	if _, err := q.Exec(ctx,
		"DELETE FROM documents WHERE collection = $1 AND id = $2",
		collection, id,
	); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func batchStatement(op WriteOp, now time.Time) (string, []any, error) {
	switch op.Kind {
	case OpInsert:
		id := op.ID
		if id == "" {
			id = uuid.NewString()
		}
		body, err := encodeBody(op.Data, now)
		if err != nil {
			return "", nil, err
		}
		return "INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)",
			[]any{op.Collection, id, body}, nil
	case OpSet:
		if op.ID == "" {
			return "", nil, fmt.Errorf("set on %s requires an id", op.Collection)
		}
		body, err := encodeBody(op.Data, now)
		if err != nil {
			return "", nil, err
		}
		return `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)
			ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
			[]any{op.Collection, op.ID, body}, nil
	case OpUpdate:
		body, err := encodeBody(op.Fields, now)
		if err != nil {
			return "", nil, err
		}
		return `UPDATE documents SET data = data || $3::jsonb, updated_at = NOW()
			WHERE collection = $1 AND id = $2`,
			[]any{op.Collection, op.ID, body}, nil
	case OpDelete:
		return "DELETE FROM documents WHERE collection = $1 AND id = $2",
			[]any{op.Collection, op.ID}, nil
	default:
		return "", nil, fmt.Errorf("unknown op kind %d", op.Kind)
	}
}

func encodeBody(data any, now time.Time) (json.RawMessage, error) {
	fields, err := encodeFields(data, now)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document body: %w", err)
	}
	return b, nil
}
