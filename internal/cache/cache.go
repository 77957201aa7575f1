package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ABCurado/eu-parliment-votes-sdk/internal/components/assert"
	"github.com/ABCurado/eu-parliment-votes-sdk/internal/components/chrono"
	"github.com/ABCurado/eu-parliment-votes-sdk/internal/components/telemetry"
)

//go:embed schema.sql
var Schema string

const (
	report_cache_get  = "cache.get"
	report_cache_put  = "cache.put"
	report_cache_hit  = "cache.hit"
	report_cache_miss = "cache.miss"
)

// Store keeps the JSON results of expensive calls and the ledger of documents
// that were already processed.
type Store struct {
	db   *sql.DB
	tel  telemetry.API
	time chrono.TimeAPI
}

// NewStore creates the schema if it does not exist yet.
func NewStore(ctx context.Context, db *sql.DB, tel telemetry.API, time chrono.TimeAPI) (*Store, error) {
	assert.NotNil(db)
	assert.NotNil(tel)
	assert.NotNil(time)

	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &Store{
		db:   db,
		tel:  telemetry.NewScopedAPI("cache", tel),
		time: time,
	}, nil
}

func Open(ctx context.Context, config Config, tel telemetry.API, time chrono.TimeAPI) (*Store, error) {
	db, err := config.OpenDB()
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	store, err := NewStore(ctx, db, tel, time)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored value of a key, ok is false when there is none.
func (s *Store) Get(ctx context.Context, key string) (value []byte, ok bool, err error) {
	var text string
	err = s.db.QueryRowContext(ctx, "select value from cache_entry where key = ?", key).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(text), true, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(
		ctx,
		`insert into cache_entry(key, value, created_at) values (?, ?, ?)
		on conflict(key) do update set value = excluded.value, created_at = excluded.created_at`,
		key, string(value), s.time.Now().Unix(),
	)
	return err
}

// MarkSeen records that a document was processed, marking it twice is a no-op.
func (s *Store) MarkSeen(ctx context.Context, documentId string) error {
	_, err := s.db.ExecContext(
		ctx,
		"insert into seen_document(document_id, seen_at) values (?, ?) on conflict(document_id) do nothing",
		documentId, s.time.Now().Unix(),
	)
	return err
}

func (s *Store) Seen(ctx context.Context, documentId string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "select count(*) from seen_document where document_id = ?", documentId).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Key is the cache key of a call, the name followed by its JSON encoded arguments.
func Key(name string, args ...any) (string, error) {
	assert.NotEmptyStr(name)

	if args == nil {
		args = []any{}
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	return name + "_" + string(encoded), nil
}

// Cached returns the stored result of fn for the given name and arguments,
// calling fn and storing its result on a miss. A nil store disables caching.
// Failures of the store itself are reported and never returned.
func Cached[T any](ctx context.Context, store *Store, name string, fn func(ctx context.Context) (T, error), args ...any) (T, error) {
	if store == nil {
		return fn(ctx)
	}

	key, err := Key(name, args...)
	if err != nil {
		store.tel.ReportBroken(report_cache_get, fmt.Errorf("encode key: %w", err), name)
		return fn(ctx)
	}

	stored, ok, err := store.Get(ctx, key)
	if err != nil {
		store.tel.ReportBroken(report_cache_get, err, key)
	}
	if ok {
		var value T
		err = json.Unmarshal(stored, &value)
		if err == nil {
			store.tel.ReportDebug(report_cache_hit, key)
			return value, nil
		}
		store.tel.ReportWarning(report_cache_get, fmt.Errorf("decode stored value: %w", err), key)
	}
	store.tel.ReportDebug(report_cache_miss, key)

	value, err := fn(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		store.tel.ReportBroken(report_cache_put, fmt.Errorf("encode value: %w", err), key)
		return value, nil
	}
	err = store.Put(ctx, key, encoded)
	if err != nil {
		store.tel.ReportBroken(report_cache_put, err, key)
	}
	return value, nil
}
