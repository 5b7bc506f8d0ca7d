package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"
)

// ─── Key-Value Blobs ────────────────────────────────────────────────────────

const upsertKV = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`

// Get returns the blob stored under key. ok is false when the key is absent.
func (d *DB) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := d.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set stores a blob under key, replacing any previous value.
func (d *DB) Set(key string, value []byte) error {
	_, err := d.db.Exec(upsertKV, key, value, time.Now().Unix())
	return err
}

// Update reads keys, hands their current values to fn and writes back
// what fn returns, all inside one IMMEDIATE transaction. The write lock is
// taken before the read, so a concurrent writer in another process waits
// (up to the busy timeout) instead of being overwritten. Keys absent from
// the store are absent from the map fn receives. When fn fails nothing is
// written and its error is returned.
func (d *DB) Update(keys []string, fn func(current map[string][]byte) (map[string][]byte, error)) (err error) {
	ctx := context.Background()
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("conn: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_, _ = conn.ExecContext(ctx, "ROLLBACK")
		}
	}()

	current := make(map[string][]byte, len(keys))
	for _, k := range keys {
		var value []byte
		err := conn.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, k).Scan(&value)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", k, err)
		}
		current[k] = value
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	for _, k := range slices.Sorted(maps.Keys(next)) {
		if _, err := conn.ExecContext(ctx, upsertKV, k, next[k], now); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
