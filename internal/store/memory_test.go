package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMemoryStore_SetGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	path := AccountPath("u1", "a1")
	if err := s.Set(ctx, path, Document{"name": "Wallet", "balance": "10"}, false); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	snap, err := s.Get(ctx, path)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if snap.ID != "a1" || snap.Data["name"] != "Wallet" {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	// mutating the returned copy must not leak into the store
	snap.Data["name"] = "changed"
	again, _ := s.Get(ctx, path)
	if again.Data["name"] != "Wallet" {
		t.Errorf("store shares memory with callers")
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), "users/u1/accounts/nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_SetMerge(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	path := UserPath("u1")

	_ = s.Set(ctx, path, Document{"email": "a@example.com", "displayName": "A"}, false)
	_ = s.Set(ctx, path, Document{"displayName": "B"}, true)

	snap, _ := s.Get(ctx, path)
	if snap.Data["email"] != "a@example.com" || snap.Data["displayName"] != "B" {
		t.Errorf("merge result = %v", snap.Data)
	}

	_ = s.Set(ctx, path, Document{"displayName": "C"}, false)
	snap, _ = s.Get(ctx, path)
	if _, ok := snap.Data["email"]; ok {
		t.Errorf("non-merge set kept old fields: %v", snap.Data)
	}
}

func TestMemoryStore_UpdateMissing(t *testing.T) {
	err := NewMemoryStore().Update(context.Background(), "users/u1/debts/d1", Document{"name": "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_Increment(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	path := AccountPath("u1", "a1")
	_ = s.Set(ctx, path, Document{"balance": "100.50"}, false)

	if err := s.Increment(ctx, path, "balance", decimal.RequireFromString("-30.25")); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	snap, _ := s.Get(ctx, path)
	if snap.Data["balance"] != "70.25" {
		t.Errorf("balance = %v, want 70.25", snap.Data["balance"])
	}

	if err := s.Increment(ctx, AccountPath("u1", "missing"), "balance", decimal.NewFromInt(1)); !errors.Is(err, ErrNotFound) {
		t.Errorf("Increment on missing doc error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_BatchIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	acc := AccountPath("u1", "a1")
	_ = s.Set(ctx, acc, Document{"balance": "50"}, false)

	b := NewBatch().
		Set(TransactionPath("u1", "t1"), Document{"amount": "80"}, false).
		IncrementNonNegative(acc, "balance", decimal.NewFromInt(-80))

	err := s.Commit(ctx, b)
	if !errors.Is(err, ErrConditionFailed) {
		t.Fatalf("Commit error = %v, want ErrConditionFailed", err)
	}
	var condErr *ConditionError
	if !errors.As(err, &condErr) || condErr.Path != acc {
		t.Errorf("condition error does not name %s: %v", acc, err)
	}

	if _, err := s.Get(ctx, TransactionPath("u1", "t1")); !errors.Is(err, ErrNotFound) {
		t.Errorf("failed batch left a transaction behind")
	}
	snap, _ := s.Get(ctx, acc)
	if snap.Data["balance"] != "50" {
		t.Errorf("failed batch changed balance to %v", snap.Data["balance"])
	}
}

func TestMemoryStore_BatchDeleteThenSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	path := DebtPath("u1", "d1")
	_ = s.Set(ctx, path, Document{"name": "old"}, false)

	b := NewBatch().Delete(path).Update(path, Document{"name": "new"})
	if err := s.Commit(ctx, b); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update after delete error = %v, want ErrNotFound", err)
	}

	b = NewBatch().Delete(path).Set(path, Document{"name": "new"}, false)
	if err := s.Commit(ctx, b); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	snap, _ := s.Get(ctx, path)
	if snap.Data["name"] != "new" {
		t.Errorf("name = %v, want new", snap.Data["name"])
	}
}

func TestMemoryStore_Query(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	col := TransactionsCollection("u1")
	docs := map[string]Document{
		"t1": {"accountId": "a1", "date": "2026-01-03"},
		"t2": {"accountId": "a1", "date": "2026-01-01"},
		"t3": {"accountId": "a2", "date": "2026-01-02"},
		"t4": {"accountId": "a1", "date": "2026-01-05"},
	}
	for id, d := range docs {
		_ = s.Set(ctx, Join(col, id), d, false)
	}
	// another user's data never shows up
	_ = s.Set(ctx, TransactionPath("u2", "t9"), Document{"accountId": "a1", "date": "2026-01-09"}, false)

	got, err := s.Query(ctx, col, Query{
		Where:   []Filter{{Field: "accountId", Value: "a1"}},
		OrderBy: "date",
		Desc:    true,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	want := []string{"t4", "t1", "t2"}
	if len(got) != len(want) {
		t.Fatalf("Query returned %d docs, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
		}
	}

	page, _ := s.Query(ctx, col, Query{OrderBy: "date", Desc: true, Limit: 2, StartAfter: "t1"})
	if len(page) != 2 || page[0].ID != "t3" || page[1].ID != "t2" {
		t.Errorf("second page = %+v", page)
	}

	empty, _ := s.Query(ctx, col, Query{StartAfter: "missing"})
	if len(empty) != 0 {
		t.Errorf("unknown cursor returned %d docs", len(empty))
	}
}
