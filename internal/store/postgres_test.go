package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name       string
		collection string
		q          Query
		fragments  []string
		absent     []string
		args       []interface{}
	}{
		{
			name:       "full",
			collection: "users/u1/transactions",
			q: Query{
				Where:      []Filter{{Field: "accountId", Value: "a1"}},
				OrderBy:    "date",
				Desc:       true,
				Limit:      20,
				StartAfter: "t5",
			},
			fragments: []string{
				"collection = $1",
				"data->>$2 = $3",
				"(COALESCE(data->>$4, ''), doc_id) < (SELECT COALESCE(data->>$4, ''), doc_id FROM documents WHERE path = $5)",
				"ORDER BY COALESCE(data->>$4, '') DESC, doc_id DESC",
				"LIMIT $6",
			},
			args: []interface{}{"users/u1/transactions", "accountId", "a1", "date", "users/u1/transactions/t5", 20},
		},
		{
			name:       "filter without order",
			collection: "users",
			q:          Query{Where: []Filter{{Field: "remindersEnabled", Value: true}}},
			fragments:  []string{"data->>$2 = $3", "ORDER BY doc_id ASC"},
			absent:     []string{"''", "COALESCE", "LIMIT"},
			args:       []interface{}{"users", "remindersEnabled", "true"},
		},
		{
			name:       "order without filter",
			collection: "users/u1/accounts",
			q:          Query{OrderBy: "name"},
			fragments:  []string{"ORDER BY COALESCE(data->>$2, '') ASC, doc_id ASC"},
			absent:     []string{"AND"},
			args:       []interface{}{"users/u1/accounts", "name"},
		},
		{
			name:       "cursor without order",
			collection: "users/u1/debts",
			q:          Query{StartAfter: "d3", Limit: 5},
			fragments: []string{
				"AND doc_id > (SELECT doc_id FROM documents WHERE path = $2)",
				"ORDER BY doc_id ASC",
				"LIMIT $3",
			},
			absent: []string{"''", "COALESCE"},
			args:   []interface{}{"users/u1/debts", "users/u1/debts/d3", 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildQuery(tt.collection, tt.q)
			for _, fragment := range tt.fragments {
				if !strings.Contains(query, fragment) {
					t.Errorf("query %q is missing %q", query, fragment)
				}
			}
			for _, fragment := range tt.absent {
				if strings.Contains(query, fragment) {
					t.Errorf("query %q should not contain %q", query, fragment)
				}
			}
			if !reflect.DeepEqual(args, tt.args) {
				t.Errorf("args = %v, want %v", args, tt.args)
			}
		})
	}
}

// openTestDB connects to TEST_DB_CONN and skips the test when it is unset.
func openTestDB(t *testing.T) *PostgresStore {
	t.Helper()
	conn := os.Getenv("TEST_DB_CONN")
	if conn == "" {
		t.Skip("TEST_DB_CONN not set")
	}
	db, err := sql.Open("postgres", conn)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := NewPostgresStore(db, logrus.New())
	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	return s
}

func TestPostgresStore_BatchAndIncrement(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	uid := uuid.NewString()
	acc := AccountPath(uid, "a1")

	if err := s.Set(ctx, acc, Document{"name": "Wallet", "balance": "100"}, false); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	b := NewBatch().
		Set(TransactionPath(uid, "t1"), Document{"amount": "30", "date": "2026-01-01"}, false).
		IncrementNonNegative(acc, "balance", decimal.NewFromInt(-30))
	if err := s.Commit(ctx, b); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	b = NewBatch().
		Set(TransactionPath(uid, "t2"), Document{"amount": "500", "date": "2026-01-02"}, false).
		IncrementNonNegative(acc, "balance", decimal.NewFromInt(-500))
	if err := s.Commit(ctx, b); !errors.Is(err, ErrConditionFailed) {
		t.Fatalf("overdraw Commit error = %v, want ErrConditionFailed", err)
	}

	snap, err := s.Get(ctx, acc)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	bal, _ := numericValue(snap.Data, "balance")
	if !bal.Equal(decimal.NewFromInt(70)) {
		t.Errorf("balance = %s, want 70", bal)
	}

	txs, err := s.Query(ctx, TransactionsCollection(uid), Query{OrderBy: "date", Desc: true})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(txs) != 1 || txs[0].ID != "t1" {
		t.Errorf("transactions = %+v, want only t1", txs)
	}

	if err := s.Update(ctx, DebtPath(uid, "missing"), Document{"name": "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update missing error = %v, want ErrNotFound", err)
	}
}
