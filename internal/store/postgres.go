package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS documents (
		path        TEXT PRIMARY KEY,
		collection  TEXT NOT NULL,
		doc_id      TEXT NOT NULL,
		data        JSONB NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
`

// PostgresStore keeps every document as a JSONB row keyed by its path. Batches
// run inside one SQL transaction; increments are computed by Postgres.
type PostgresStore struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewPostgresStore wraps an open *sql.DB (lib/pq driver).
func NewPostgresStore(db *sql.DB, log *logrus.Logger) *PostgresStore {
	return &PostgresStore{db: db, log: log}
}

// EnsureSchema creates the documents table if needed.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, path string) (Snapshot, error) {
	var (
		id  string
		raw []byte
	)
	err := p.db.QueryRowContext(ctx, `SELECT doc_id, data FROM documents WHERE path = $1`, path).Scan(&id, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to get %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return Snapshot{ID: id, Path: path, Data: doc}, nil
}

func (p *PostgresStore) Set(ctx context.Context, path string, data Document, merge bool) error {
	return p.Commit(ctx, NewBatch().Set(path, data, merge))
}

func (p *PostgresStore) Update(ctx context.Context, path string, data Document) error {
	return p.Commit(ctx, NewBatch().Update(path, data))
}

func (p *PostgresStore) Delete(ctx context.Context, path string) error {
	return p.Commit(ctx, NewBatch().Delete(path))
}

func (p *PostgresStore) Increment(ctx context.Context, path, field string, delta decimal.Decimal) error {
	return p.Commit(ctx, NewBatch().Increment(path, field, delta))
}

func (p *PostgresStore) Query(ctx context.Context, collection string, q Query) ([]Snapshot, error) {
	query, args := buildQuery(collection, q)
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			s   Snapshot
			raw []byte
		)
		if err := rows.Scan(&s.ID, &s.Path, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", collection, err)
		}
		if err := json.Unmarshal(raw, &s.Data); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", s.Path, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", collection, err)
	}
	return out, nil
}

// buildQuery renders q as SQL. Field names are bound as parameters of the
// ->> operator, never interpolated.
func buildQuery(collection string, q Query) (string, []interface{}) {
	var sb strings.Builder
	args := []interface{}{collection}
	sb.WriteString(`SELECT doc_id, path, data FROM documents WHERE collection = $1`)

	for _, f := range q.Where {
		args = append(args, f.Field, fmt.Sprint(f.Value))
		fmt.Fprintf(&sb, ` AND data->>$%d = $%d`, len(args)-1, len(args))
	}

	dir, cmp := "ASC", ">"
	if q.Desc {
		dir, cmp = "DESC", "<"
	}

	if q.OrderBy == "" {
		if q.StartAfter != "" {
			args = append(args, Join(collection, q.StartAfter))
			fmt.Fprintf(&sb, ` AND doc_id %s (SELECT doc_id FROM documents WHERE path = $%d)`, cmp, len(args))
		}
		fmt.Fprintf(&sb, ` ORDER BY doc_id %s`, dir)
	} else {
		args = append(args, q.OrderBy)
		orderExpr := fmt.Sprintf(`COALESCE(data->>$%d, '')`, len(args))
		if q.StartAfter != "" {
			args = append(args, Join(collection, q.StartAfter))
			fmt.Fprintf(&sb, ` AND (%s, doc_id) %s (SELECT %s, doc_id FROM documents WHERE path = $%d)`,
				orderExpr, cmp, orderExpr, len(args))
		}
		fmt.Fprintf(&sb, ` ORDER BY %s %s, doc_id %s`, orderExpr, dir, dir)
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}
	return sb.String(), args
}

func (p *PostgresStore) Commit(ctx context.Context, b *Batch) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, op := range b.Ops() {
		if err := p.apply(ctx, tx, op); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	p.log.Debugf("Committed batch of %d operations", b.Len())
	return nil
}

func (p *PostgresStore) apply(ctx context.Context, tx *sql.Tx, op Op) error {
	collection, id := Split(op.Path)
	switch op.Kind {
	case OpSet:
		raw, err := json.Marshal(op.Data)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", op.Path, err)
		}
		conflict := `data = EXCLUDED.data`
		if op.Merge {
			conflict = `data = documents.data || EXCLUDED.data`
		}
		query := `
			INSERT INTO documents (path, collection, doc_id, data)
			VALUES ($1, $2, $3, $4::jsonb)
			ON CONFLICT (path) DO UPDATE SET ` + conflict + `, updated_at = CURRENT_TIMESTAMP`
		if _, err := tx.ExecContext(ctx, query, op.Path, collection, id, string(raw)); err != nil {
			return fmt.Errorf("failed to set %s: %w", op.Path, err)
		}
	case OpUpdate:
		raw, err := json.Marshal(op.Data)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", op.Path, err)
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE documents SET data = data || $2::jsonb, updated_at = CURRENT_TIMESTAMP
			WHERE path = $1`, op.Path, string(raw))
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", op.Path, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("update %s: %w", op.Path, ErrNotFound)
		}
	case OpDelete:
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE path = $1`, op.Path); err != nil {
			return fmt.Errorf("failed to delete %s: %w", op.Path, err)
		}
	case OpIncrement:
		var result string
		err := tx.QueryRowContext(ctx, `
			UPDATE documents
			SET data = jsonb_set(data, ARRAY[$2::text],
				to_jsonb((COALESCE((data->>$2)::numeric, 0) + $3::numeric)::text)),
				updated_at = CURRENT_TIMESTAMP
			WHERE path = $1
			RETURNING data->>$2`, op.Path, op.Field, op.Delta.String()).Scan(&result)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("increment %s: %w", op.Path, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to increment %s: %w", op.Path, err)
		}
		next, err := decimal.NewFromString(result)
		if err != nil {
			return fmt.Errorf("increment %s: %w", op.Path, err)
		}
		if op.NonNegative && next.IsNegative() {
			return &ConditionError{Path: op.Path, Field: op.Field, Result: next}
		}
	default:
		return fmt.Errorf("unknown batch operation %d", op.Kind)
	}
	return nil
}
