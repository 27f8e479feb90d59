package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gitnote/internal/note"
	"gitnote/internal/store/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore keeps every record of a repository in one SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at path and migrates it to
// the latest schema. path may be ":memory:".
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// OpenConnection opens and configures a SQLite connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A second pooled connection to ":memory:" would see a different database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return db, nil
}

func (s *SQLiteStore) Get(identity string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow("SELECT data FROM records WHERE identity = ?", identity).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, note.ErrNoRecord
		}
		return nil, fmt.Errorf("reading record %s: %w", identity, err)
	}
	return data, nil
}

func (s *SQLiteStore) Put(identity string, data []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO records (identity, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(identity) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		identity, data, s.now().UTC())
	if err != nil {
		return fmt.Errorf("writing record %s: %w", identity, err)
	}
	return nil
}

func (s *SQLiteStore) List() ([]string, error) {
	rows, err := s.db.Query("SELECT identity FROM records ORDER BY identity")
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Backend = (*SQLiteStore)(nil)
