// Package storage is the durable cache tier: dashboard entries persisted to
// SQLite so cached aggregates survive process restarts.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"benchboard/internal/core"
	"benchboard/internal/store"

	_ "modernc.org/sqlite"
)

const metaKeyLastUpdated = "last_updated"

// SQLiteRepository implements store.DurableRepository on a local SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

var _ store.DurableRepository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Put upserts one dashboard entry and bumps the namespace lastUpdated stamp
// in the same transaction.
func (r *SQLiteRepository) Put(ctx context.Context, e store.Entry) error {
	payload, err := json.Marshal(e.Aggregate)
	if err != nil {
		return fmt.Errorf("marshal aggregate: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO dashboard_entries (dashboard_id, aggregate, created_at_ms, version)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(dashboard_id) DO UPDATE SET
		   aggregate = excluded.aggregate,
		   created_at_ms = excluded.created_at_ms,
		   version = excluded.version`,
		e.DashboardID, string(payload), e.CreatedAt, e.Version)
	if err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}

	if err := setLastUpdated(ctx, tx, e.CreatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

// Get returns the entry for a dashboard, or nil when absent.
func (r *SQLiteRepository) Get(ctx context.Context, dashboardID string) (*store.Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT dashboard_id, aggregate, created_at_ms, version
		 FROM dashboard_entries WHERE dashboard_id = ?`, dashboardID)

	entry, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %s: %w", dashboardID, err)
	}
	return entry, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, dashboardID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM dashboard_entries WHERE dashboard_id = ?`, dashboardID); err != nil {
		return fmt.Errorf("delete entry %s: %w", dashboardID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin wipe: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM dashboard_entries`); err != nil {
		return fmt.Errorf("wipe entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM store_meta`); err != nil {
		return fmt.Errorf("wipe meta: %w", err)
	}
	return tx.Commit()
}

// List returns every stored entry ordered by dashboard id.
func (r *SQLiteRepository) List(ctx context.Context) ([]store.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT dashboard_id, aggregate, created_at_ms, version
		 FROM dashboard_entries ORDER BY dashboard_id`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []store.Entry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, *entry)
	}
	return out, rows.Err()
}

// LastUpdated returns the namespace stamp, zero when the store is empty.
func (r *SQLiteRepository) LastUpdated(ctx context.Context) (int64, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM store_meta WHERE key = ?`, metaKeyLastUpdated).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get last updated: %w", err)
	}
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse last updated %q: %w", value, err)
	}
	return ms, nil
}

// DeleteOlderThan removes entries created before the cutoff and returns the
// ids it removed, so callers can drop memory mirrors.
func (r *SQLiteRepository) DeleteOlderThan(ctx context.Context, cutoff int64) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin cleanup: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT dashboard_id FROM dashboard_entries WHERE created_at_ms < ?`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("find stale entries: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan stale id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM dashboard_entries WHERE created_at_ms < ?`, cutoff); err != nil {
		return nil, fmt.Errorf("delete stale entries: %w", err)
	}
	return ids, tx.Commit()
}

// ReplaceAll swaps the entire namespace in one transaction; used by import.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, entries []store.Entry, lastUpdated int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM dashboard_entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	for _, e := range entries {
		payload, err := json.Marshal(e.Aggregate)
		if err != nil {
			return fmt.Errorf("marshal aggregate for %s: %w", e.DashboardID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dashboard_entries (dashboard_id, aggregate, created_at_ms, version)
			 VALUES (?, ?, ?, ?)`,
			e.DashboardID, string(payload), e.CreatedAt, e.Version); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.DashboardID, err)
		}
	}
	if err := setLastUpdated(ctx, tx, lastUpdated); err != nil {
		return err
	}
	return tx.Commit()
}

func setLastUpdated(ctx context.Context, tx *sql.Tx, ms int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO store_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaKeyLastUpdated, strconv.FormatInt(ms, 10))
	if err != nil {
		return fmt.Errorf("set last updated: %w", err)
	}
	return nil
}

func scanEntry(scan func(dest ...any) error) (*store.Entry, error) {
	var (
		entry   store.Entry
		payload string
	)
	if err := scan(&entry.DashboardID, &payload, &entry.CreatedAt, &entry.Version); err != nil {
		return nil, err
	}
	var agg core.Aggregate
	if err := json.Unmarshal([]byte(payload), &agg); err != nil {
		return nil, fmt.Errorf("unmarshal aggregate: %w", err)
	}
	entry.Aggregate = agg
	return &entry, nil
}
