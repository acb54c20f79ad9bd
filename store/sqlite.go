package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/derktes/ir-remote/remote"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// SQLiteBackend stores configurations in a single SQLite table, one row per
// configuration with the key catalog as a JSON column.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteBackend, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	b := &SQLiteBackend{db: db}
	if err := b.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

type migration struct {
	version string
	sql     string
}

func loadMigrations() ([]migration, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	migrations := make([]migration, 0, len(names))
	for _, name := range names {
		data, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, migration{version: strings.TrimSuffix(name, ".sql"), sql: string(data)})
	}
	return migrations, nil
}

func (b *SQLiteBackend) applyMigrations(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)"); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	for _, m := range migrations {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = ?", m.version).Scan(&count); err != nil {
			return fmt.Errorf("scan migration version: %w", err)
		}
		if count > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("record migration %s: %w", m.version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil || !isSQLiteBusy(lastErr) {
			return lastErr
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (b *SQLiteBackend) Load(ctx context.Context) ([]remote.Config, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT id, name, protocol, header, is_default, keys_json, created_at, updated_at
		 FROM remote_configs ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query configurations: %w", err)
	}
	defer rows.Close()

	var out []remote.Config
	for rows.Next() {
		var (
			rec      remote.Record
			keysJSON string
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Protocol, &rec.Header, &rec.IsDefault,
			&keysJSON, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan configuration: %w", err)
		}
		if err := json.Unmarshal([]byte(keysJSON), &rec.Keys); err != nil {
			return nil, fmt.Errorf("decode keys of %s: %w", rec.ID, err)
		}
		cfg, err := rec.Config()
		if err != nil {
			return nil, fmt.Errorf("decode configuration %s: %w", rec.ID, err)
		}
		out = append(out, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate configurations: %w", err)
	}
	return out, nil
}

func (b *SQLiteBackend) Put(ctx context.Context, cfg remote.Config) error {
	rec := cfg.ToRecord()
	keysJSON, err := json.Marshal(rec.Keys)
	if err != nil {
		return fmt.Errorf("encode keys: %w", err)
	}
	return retryOnBusy(ctx, func() error {
		_, err := b.db.ExecContext(ctx,
			`INSERT INTO remote_configs (id, name, protocol, header, is_default, keys_json, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   name = excluded.name,
			   protocol = excluded.protocol,
			   header = excluded.header,
			   is_default = excluded.is_default,
			   keys_json = excluded.keys_json,
			   created_at = excluded.created_at,
			   updated_at = excluded.updated_at`,
			rec.ID, rec.Name, rec.Protocol, rec.Header, rec.IsDefault, string(keysJSON), rec.CreatedAt, rec.UpdatedAt)
		return err
	})
}

func (b *SQLiteBackend) Delete(ctx context.Context, id string) error {
	return retryOnBusy(ctx, func() error {
		_, err := b.db.ExecContext(ctx, "DELETE FROM remote_configs WHERE id = ?", id)
		return err
	})
}

func (b *SQLiteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}
