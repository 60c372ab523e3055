package postgres_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"listing-organizer/internal/core/domain"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	payload []byte
	err     error
}

func (r row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.payload
	return nil
}

// fakeDB хранит строки в карте, понимая только запросы кэша.
type fakeDB struct {
	rows    map[string][]byte
	updated map[string]time.Time
	execSQL []string
	failing error
}

func newFakeDB() *fakeDB {
	return &fakeDB{rows: map[string][]byte{}, updated: map[string]time.Time{}}
}

func (db *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.execSQL = append(db.execSQL, sql)
	if db.failing != nil {
		return pgconn.CommandTag{}, db.failing
	}
	switch {
	case strings.Contains(sql, "INSERT INTO property_cache"):
		key := args[0].(string) + "/" + args[1].(string)
		db.rows[key] = args[2].([]byte)
		db.updated[key] = args[3].(time.Time)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case strings.Contains(sql, "DELETE FROM property_cache"):
		delete(db.rows, args[0].(string)+"/"+args[1].(string))
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (db *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if db.failing != nil {
		return row{err: db.failing}
	}
	key := args[0].(string) + "/" + args[1].(string)
	payload, ok := db.rows[key]
	if !ok || !db.updated[key].After(args[2].(time.Time)) {
		return row{err: pgx.ErrNoRows}
	}
	return row{payload: payload}
}

func TestPropertyCacheRoundTrip(t *testing.T) {
	db := newFakeDB()
	cache, err := NewPostgresPropertyCache(db, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cache.EnsureSchema(ctx))
	assert.Contains(t, db.execSQL[0], "CREATE TABLE IF NOT EXISTS property_cache")

	_, err = cache.Get(ctx, "alice", "p1")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	bucket := "Gostei"
	area := 48.0
	property := domain.Property{
		ID:              "p1",
		Address:         "Rua Bela Cintra, 7",
		Mode:            domain.ModeBoth,
		Information:     domain.Information{TotalArea: &area},
		Costs:           domain.Costs{domain.CostRent: 2000, domain.CostSellPrice: 500000},
		Images:          []domain.Image{{URL: "https://cdn/1.jpg"}},
		Available:       true,
		BoardAssignment: domain.BoardAssignment{BucketID: &bucket, Index: 3},
	}
	require.NoError(t, cache.Put(ctx, "alice", property))

	got, err := cache.Get(ctx, "alice", "p1")
	require.NoError(t, err)
	assert.Equal(t, property, *got)

	_, err = cache.Get(ctx, "bob", "p1")
	assert.ErrorIs(t, err, domain.ErrCacheMiss, "entries are scoped by owner")

	require.NoError(t, cache.Delete(ctx, "alice", "p1"))
	_, err = cache.Get(ctx, "alice", "p1")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestPropertyCacheExpiredEntryIsMiss(t *testing.T) {
	db := newFakeDB()
	cache, err := NewPostgresPropertyCache(db, time.Minute)
	require.NoError(t, err)
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return base }
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "alice", domain.Property{ID: "p1"}))
	cache.now = func() time.Time { return base.Add(2 * time.Minute) }

	_, err = cache.Get(ctx, "alice", "p1")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestPropertyCacheErrors(t *testing.T) {
	db := newFakeDB()
	cache, err := NewPostgresPropertyCache(db, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, cache.Put(ctx, "alice", domain.Property{}), domain.ErrInvalidIdentifier)

	db.rows["alice/bad"] = []byte("{not json")
	db.updated["alice/bad"] = time.Now()
	_, err = cache.Get(ctx, "alice", "bad")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	db.failing = errors.New("connection reset")
	_, err = cache.Get(ctx, "alice", "p1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCacheMiss)
	assert.Error(t, cache.Put(ctx, "alice", domain.Property{ID: "p1"}))

	_, err = NewPostgresPropertyCache(nil, time.Hour)
	assert.Error(t, err)
}

func TestPayloadIsPlainJSON(t *testing.T) {
	db := newFakeDB()
	cache, err := NewPostgresPropertyCache(db, time.Hour)
	require.NoError(t, err)
	require.NoError(t, cache.Put(context.Background(), "alice", domain.Property{ID: "p1", Address: "x"}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(db.rows["alice/p1"], &decoded))
	assert.Equal(t, "x", decoded["Address"])
}
