// Package store is the document store the ledger persists into. Documents are
// JSON objects addressed by slash separated paths such as
// users/{uid}/accounts/{id}; a document's collection is its path minus the
// last segment.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a document addressed by path does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConditionFailed is returned when a guarded write would break its condition.
	ErrConditionFailed = errors.New("write condition failed")
)

// ConditionError describes which guarded increment rejected a batch.
type ConditionError struct {
	Path   string
	Field  string
	Result decimal.Decimal
}

func (e *ConditionError) Error() string {
	return fmt.Sprintf("%s.%s would become %s", e.Path, e.Field, e.Result.String())
}

func (e *ConditionError) Is(target error) bool {
	return target == ErrConditionFailed
}

// Document is the field map of a stored document.
type Document map[string]interface{}

// Snapshot is a document read back from the store.
type Snapshot struct {
	ID   string   `json:"id"`
	Path string   `json:"path"`
	Data Document `json:"data"`
}

// Decode unmarshals the snapshot data into v.
func (s Snapshot) Decode(v interface{}) error {
	raw, err := json.Marshal(s.Data)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.Path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", s.Path, err)
	}
	return nil
}

// Encode converts any JSON serializable value into a Document.
func Encode(v interface{}) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return doc, nil
}

// Filter is an equality clause. Values compare by their string form, the same
// way Postgres compares data->>field.
type Filter struct {
	Field string      `json:"field"`
	Value interface{} `json:"value"`
}

// Query selects documents of one collection.
type Query struct {
	Where   []Filter `json:"where,omitempty"`
	OrderBy string   `json:"orderBy,omitempty"`
	Desc    bool     `json:"desc,omitempty"`
	Limit   int      `json:"limit,omitempty"`
	// StartAfter is the ID of the last document of the previous page.
	StartAfter string `json:"startAfter,omitempty"`
}

// Store is the document store contract. Every write method is equivalent to
// committing a batch with that single operation.
type Store interface {
	Get(ctx context.Context, path string) (Snapshot, error)
	Set(ctx context.Context, path string, data Document, merge bool) error
	// Update merges data into an existing document and fails with ErrNotFound otherwise.
	Update(ctx context.Context, path string, data Document) error
	Delete(ctx context.Context, path string) error
	Query(ctx context.Context, collection string, q Query) ([]Snapshot, error)
	// Increment adds delta to a numeric field atomically on the store side.
	Increment(ctx context.Context, path, field string, delta decimal.Decimal) error
	// Commit applies every operation of b or none of them.
	Commit(ctx context.Context, b *Batch) error
}

type OpKind int

const (
	OpSet OpKind = iota
	OpUpdate
	OpDelete
	OpIncrement
)

func (k OpKind) String() string {
	return [...]string{"set", "update", "delete", "increment"}[k]
}

// Op is one write of a batch.
type Op struct {
	Kind  OpKind
	Path  string
	Data  Document
	Merge bool
	Field string
	Delta decimal.Decimal
	// NonNegative makes an increment fail the batch with ErrConditionFailed
	// when the resulting value would be below zero.
	NonNegative bool
}

// Batch collects writes to be committed atomically.
type Batch struct {
	ops []Op
}

func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) Set(path string, data Document, merge bool) *Batch {
	b.ops = append(b.ops, Op{Kind: OpSet, Path: path, Data: data, Merge: merge})
	return b
}

func (b *Batch) Update(path string, data Document) *Batch {
	b.ops = append(b.ops, Op{Kind: OpUpdate, Path: path, Data: data})
	return b
}

func (b *Batch) Delete(path string) *Batch {
	b.ops = append(b.ops, Op{Kind: OpDelete, Path: path})
	return b
}

func (b *Batch) Increment(path, field string, delta decimal.Decimal) *Batch {
	b.ops = append(b.ops, Op{Kind: OpIncrement, Path: path, Field: field, Delta: delta})
	return b
}

// IncrementNonNegative is Increment guarded so the field never drops below zero.
func (b *Batch) IncrementNonNegative(path, field string, delta decimal.Decimal) *Batch {
	b.ops = append(b.ops, Op{Kind: OpIncrement, Path: path, Field: field, Delta: delta, NonNegative: true})
	return b
}

func (b *Batch) Ops() []Op {
	return b.ops
}

func (b *Batch) Len() int {
	return len(b.ops)
}

// numericValue reads a numeric document field. Decimals are stored as strings;
// plain JSON numbers are accepted too. A missing field counts as zero.
func numericValue(doc Document, field string) (decimal.Decimal, error) {
	switch v := doc[field].(type) {
	case nil:
		return decimal.Zero, nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("field %s is not numeric: %w", field, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	default:
		return decimal.Zero, fmt.Errorf("field %s is not numeric", field)
	}
}
