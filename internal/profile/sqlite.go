package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const addressKey = "bluetooth.address"

// SQLiteStore keeps modes in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and runs the
// schema migration.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open mode db: %w", err)
	}
	// One writer at a time; SQLite would otherwise return SQLITE_BUSY
	// to concurrent snapshots.
	db.SetMaxOpenConns(1)
	// WAL mode for concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate mode db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS modes (
			name        TEXT PRIMARY KEY,
			light_state TEXT NOT NULL,
			brightness  TEXT NOT NULL,
			color_r     INTEGER,
			color_g     INTEGER,
			color_b     INTEGER,
			updated_at  TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	return err
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM modes ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, name string) (Record, error) {
	var (
		rec     Record
		r, g, b sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT light_state, brightness, color_r, color_g, color_b FROM modes WHERE name = ?", name,
	).Scan(&rec.LightState, &rec.Brightness, &r, &g, &b)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	if err != nil {
		return Record{}, err
	}
	if r.Valid || g.Valid || b.Valid {
		rec.Color = &ColorRecord{R: nullInt(r), G: nullInt(g), B: nullInt(b)}
	}
	return rec, nil
}

func (s *SQLiteStore) Put(ctx context.Context, name string, rec Record) error {
	if err := validName(name); err != nil {
		return err
	}
	var r, g, b *int
	if rec.Color != nil {
		r, g, b = rec.Color.R, rec.Color.G, rec.Color.B
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO modes (name, light_state, brightness, color_r, color_g, color_b, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			light_state = excluded.light_state,
			brightness  = excluded.brightness,
			color_r     = excluded.color_r,
			color_g     = excluded.color_g,
			color_b     = excluded.color_b,
			updated_at  = excluded.updated_at`,
		name, rec.LightState, rec.Brightness, intArg(r), intArg(g), intArg(b),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) Address(ctx context.Context) (string, error) {
	var addr string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", addressKey).Scan(&addr)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return normalizeAddress(addr), nil
}

func (s *SQLiteStore) SetAddress(ctx context.Context, address string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		addressKey, address,
	)
	return err
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func intArg(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
