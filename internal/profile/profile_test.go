package profile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// --- Mock DBTX ---

type mockRow struct {
	values []string
	err    error
}

func (r mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		*(d.(*string)) = r.values[i]
	}
	return nil
}

type mockDB struct {
	execFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
}

func (m *mockDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return m.execFn(ctx, sql, args...)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.queryRowFn(ctx, sql, args...)
}

// --- MemoryStore ---

func TestMemoryStore_PutThenGet(t *testing.T) {
	s := NewMemoryStore()
	want := Profile{RestID: "r1", Name: "Avaya", Address: "Main St", ContactInformation: "999"}

	if err := s.Put(context.Background(), want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(context.Background(), "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != want {
		t.Errorf("profile: got %+v, want %+v", got, want)
	}
}

func TestMemoryStore_EmptyIDReturnsLatest(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Put(context.Background(), Profile{RestID: "r1", Name: "First"})
	_ = s.Put(context.Background(), Profile{RestID: "r2", Name: "Second"})

	got, err := s.Get(context.Background(), "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RestID != "r2" {
		t.Errorf("restID: got %q, want %q", got.RestID, "r2")
	}
}

func TestMemoryStore_Missing(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

// --- Resolver ---

func TestResolver_FallsBackToDefault(t *testing.T) {
	r := NewResolver(NewMemoryStore(), "r1", zap.NewNop())

	got := r.Resolve(context.Background())
	if got != Default {
		t.Errorf("profile: got %+v, want default", got)
	}
}

func TestResolver_StoreErrorFallsBackToDefault(t *testing.T) {
	db := &mockDB{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return mockRow{err: errors.New("connection refused")}
		},
	}
	r := NewResolver(NewPGStore(db), "r1", zap.NewNop())

	if got := r.Resolve(context.Background()); got != Default {
		t.Errorf("profile: got %+v, want default", got)
	}
}

func TestResolver_ReturnsCachedProfile(t *testing.T) {
	store := NewMemoryStore()
	want := Profile{RestID: "r1", Name: "Avaya"}
	_ = store.Put(context.Background(), want)

	got := NewResolver(store, "r1", zap.NewNop()).Resolve(context.Background())
	if got != want {
		t.Errorf("profile: got %+v, want %+v", got, want)
	}
}

// --- PGStore ---

func TestPGStore_GetByID(t *testing.T) {
	var gotSQL string
	var gotArgs []any
	db := &mockDB{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			gotSQL, gotArgs = sql, args
			return mockRow{values: []string{"r1", "Avaya", "Main St", "999"}}
		},
	}

	p, err := NewPGStore(db).Get(context.Background(), "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Name != "Avaya" || p.ContactInformation != "999" {
		t.Errorf("profile: got %+v", p)
	}
	if !strings.Contains(gotSQL, "WHERE restaurant_id = $1") {
		t.Errorf("expected lookup by id, got SQL: %s", gotSQL)
	}
	if len(gotArgs) != 1 || gotArgs[0] != "r1" {
		t.Errorf("args: got %v", gotArgs)
	}
}

func TestPGStore_GetLatestWhenIDEmpty(t *testing.T) {
	var gotSQL string
	db := &mockDB{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			gotSQL = sql
			return mockRow{values: []string{"r9", "Latest", "", ""}}
		},
	}

	p, err := NewPGStore(db).Get(context.Background(), "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.RestID != "r9" {
		t.Errorf("restID: got %q, want r9", p.RestID)
	}
	if !strings.Contains(gotSQL, "ORDER BY updated_at DESC") {
		t.Errorf("expected latest lookup, got SQL: %s", gotSQL)
	}
}

func TestPGStore_NoRowsIsNotFound(t *testing.T) {
	db := &mockDB{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return mockRow{err: pgx.ErrNoRows}
		},
	}

	_, err := NewPGStore(db).Get(context.Background(), "r1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestPGStore_PutUpserts(t *testing.T) {
	var gotArgs []any
	db := &mockDB{
		execFn: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			if !strings.Contains(sql, "ON CONFLICT (restaurant_id) DO UPDATE") {
				t.Errorf("expected upsert, got SQL: %s", sql)
			}
			gotArgs = args
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}

	err := NewPGStore(db).Put(context.Background(), Profile{RestID: "r1", Name: "Avaya", Address: "A", ContactInformation: "C"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if len(gotArgs) != 4 || gotArgs[0] != "r1" || gotArgs[3] != "C" {
		t.Errorf("args: got %v", gotArgs)
	}
}

func TestPGStore_PutRequiresID(t *testing.T) {
	db := &mockDB{
		execFn: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			t.Fatal("exec should not be called")
			return pgconn.CommandTag{}, nil
		},
	}

	if err := NewPGStore(db).Put(context.Background(), Profile{Name: "x"}); err == nil {
		t.Fatal("expected error for empty restID")
	}
}
