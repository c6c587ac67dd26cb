package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every collection in the records table.
type SQLiteStore struct {
	db *sql.DB
}

func dsn(dbPath string) string {
	return dbPath + "?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)"
}

// NewSQLiteStore opens the database, creating its directory, and migrates it.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func (s *SQLiteStore) Insert(ctx context.Context, collection, id string, data []byte) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO records (collection, id, payload, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?) ON CONFLICT (collection, id) DO NOTHING`,
		collection, id, string(data), now(), now())
	if err != nil {
		return fmt.Errorf("insert %s/%s: %w", collection, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("insert %s/%s: %w", collection, id, ErrDuplicate)
	}
	return nil
}

func (s *SQLiteStore) Replace(ctx context.Context, collection, id string, data []byte) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE records SET payload = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(data), now(), collection, id)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return expectOne(res, collection, id)
}

func (s *SQLiteStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM records WHERE collection = ? AND id = ?`, collection, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return []byte(payload), nil
}

func (s *SQLiteStore) List(ctx context.Context, collection string) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM records WHERE collection = ? ORDER BY seq`, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer func() { _ = rows.Close() }()

	var out [][]byte
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		out = append(out, []byte(payload))
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return expectOne(res, collection, id)
}

func expectOne(res sql.Result, collection, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s/%s rows affected: %w", collection, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}
