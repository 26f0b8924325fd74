package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func (d *Database) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: d.now().Add(ttl).UnixMilli(), Valid: true}
	}

	query := `insert into cache_entries (key, value, expires_at) values (?, ?, ?)
		on conflict (key) do update set value = excluded.value, expires_at = excluded.expires_at`

	if _, err := d.db.ExecContext(ctx, query, key, value, expiresAt); err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}

	return nil
}

func (d *Database) Get(ctx context.Context, key string) (string, bool, error) {
	query := "select value from cache_entries where key = ? and (expires_at is null or expires_at > ?)"

	var value string

	err := d.db.QueryRowContext(ctx, query, key, d.now().UnixMilli()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("select cache entry: %w", err)
	}

	return value, true, nil
}

func (d *Database) Exists(ctx context.Context, key string) (bool, error) {
	query := `select exists (
		select 1 from cache_entries where key = ? and (expires_at is null or expires_at > ?)
	)`

	var exists bool
	if err := d.db.QueryRowContext(ctx, query, key, d.now().UnixMilli()).Scan(&exists); err != nil {
		return false, fmt.Errorf("check cache entry: %w", err)
	}

	return exists, nil
}

func (d *Database) Clear(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, "delete from cache_entries"); err != nil {
		return fmt.Errorf("delete cache entries: %w", err)
	}

	return nil
}

// PurgeExpired deletes every entry whose TTL has elapsed and returns how many
// rows were removed.
func (d *Database) PurgeExpired(ctx context.Context) (int64, error) {
	query := "delete from cache_entries where expires_at is not null and expires_at <= ?"

	res, err := d.db.ExecContext(ctx, query, d.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete expired cache entries: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count purged cache entries: %w", err)
	}

	if n > 0 {
		d.log.DebugContext(ctx, "Expired cache entries are purged",
			"count", n)
	}

	return n, nil
}
