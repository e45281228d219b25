package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// MemoryStore keeps documents in a map guarded by one lock. A batch is
// applied to staged copies first and only published when every op succeeded.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document)}
}

func (m *MemoryStore) Get(ctx context.Context, path string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[path]
	if !ok {
		return Snapshot{}, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	_, id := Split(path)
	return Snapshot{ID: id, Path: path, Data: cloneDocument(doc)}, nil
}

func (m *MemoryStore) Set(ctx context.Context, path string, data Document, merge bool) error {
	return m.Commit(ctx, NewBatch().Set(path, data, merge))
}

func (m *MemoryStore) Update(ctx context.Context, path string, data Document) error {
	return m.Commit(ctx, NewBatch().Update(path, data))
}

func (m *MemoryStore) Delete(ctx context.Context, path string) error {
	return m.Commit(ctx, NewBatch().Delete(path))
}

func (m *MemoryStore) Increment(ctx context.Context, path, field string, delta decimal.Decimal) error {
	return m.Commit(ctx, NewBatch().Increment(path, field, delta))
}

func (m *MemoryStore) Query(ctx context.Context, collection string, q Query) ([]Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []Snapshot
	for path, doc := range m.docs {
		parent, id := Split(path)
		if parent != collection || !matches(doc, q.Where) {
			continue
		}
		matched = append(matched, Snapshot{ID: id, Path: path, Data: cloneDocument(doc)})
	}

	sort.Slice(matched, func(i, j int) bool {
		return less(matched[i], matched[j], q.OrderBy, q.Desc)
	})

	if q.StartAfter != "" {
		cursor := -1
		for i, s := range matched {
			if s.ID == q.StartAfter {
				cursor = i
				break
			}
		}
		if cursor < 0 {
			return nil, nil
		}
		matched = matched[cursor+1:]
	}

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (m *MemoryStore) Commit(ctx context.Context, b *Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// nil marks a staged delete
	staged := make(map[string]Document)
	lookup := func(path string) (Document, bool) {
		if doc, ok := staged[path]; ok {
			return doc, doc != nil
		}
		doc, ok := m.docs[path]
		if !ok {
			return nil, false
		}
		return cloneDocument(doc), true
	}

	for _, op := range b.Ops() {
		switch op.Kind {
		case OpSet:
			doc, exists := lookup(op.Path)
			if !op.Merge || !exists {
				doc = Document{}
			}
			for k, v := range cloneDocument(op.Data) {
				doc[k] = v
			}
			staged[op.Path] = doc
		case OpUpdate:
			doc, exists := lookup(op.Path)
			if !exists {
				return fmt.Errorf("update %s: %w", op.Path, ErrNotFound)
			}
			for k, v := range cloneDocument(op.Data) {
				doc[k] = v
			}
			staged[op.Path] = doc
		case OpDelete:
			staged[op.Path] = nil
		case OpIncrement:
			doc, exists := lookup(op.Path)
			if !exists {
				return fmt.Errorf("increment %s: %w", op.Path, ErrNotFound)
			}
			current, err := numericValue(doc, op.Field)
			if err != nil {
				return fmt.Errorf("increment %s: %w", op.Path, err)
			}
			next := current.Add(op.Delta)
			if op.NonNegative && next.IsNegative() {
				return &ConditionError{Path: op.Path, Field: op.Field, Result: next}
			}
			doc[op.Field] = next.String()
			staged[op.Path] = doc
		default:
			return fmt.Errorf("unknown batch operation %d", op.Kind)
		}
	}

	for path, doc := range staged {
		if doc == nil {
			delete(m.docs, path)
			continue
		}
		m.docs[path] = doc
	}
	return nil
}

func matches(doc Document, where []Filter) bool {
	for _, f := range where {
		v, ok := doc[f.Field]
		if !ok || v == nil || fmt.Sprint(v) != fmt.Sprint(f.Value) {
			return false
		}
	}
	return true
}

// less orders by the string form of field, then by document ID, so pages are stable.
func less(a, b Snapshot, field string, desc bool) bool {
	c := 0
	if field != "" {
		c = strings.Compare(fieldString(a.Data, field), fieldString(b.Data, field))
	}
	if c == 0 {
		c = strings.Compare(a.ID, b.ID)
	}
	if desc {
		return c > 0
	}
	return c < 0
}

func fieldString(doc Document, field string) string {
	v, ok := doc[field]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// cloneDocument deep copies a document through its JSON form, which also
// normalizes values to what a JSON store would hand back.
func cloneDocument(doc Document) Document {
	if doc == nil {
		return Document{}
	}
	out, err := Encode(doc)
	if err != nil {
		// documents only ever hold JSON values
		panic(err)
	}
	if out == nil {
		out = Document{}
	}
	return out
}
