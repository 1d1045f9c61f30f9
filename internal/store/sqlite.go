package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/ratecalc/internal/currency"

	_ "modernc.org/sqlite" // register sqlite driver
)

// SQLite keeps settings and the cached rate table in one database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at dbPath.
func OpenSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) Set(key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// SaveRates replaces the cached table.
func (s *SQLite) SaveRates(t currency.Table) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM rates"); err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT INTO rates (code, rate) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for code, rate := range t.Rates() {
		if _, err := stmt.Exec(code, rate); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO rate_snapshot (id, base, fetched_at) VALUES (1, ?, ?)`,
		t.Base(), t.FetchedAt().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return err
	}

	return tx.Commit()
}

// LoadRates returns the cached table, if one was ever saved.
func (s *SQLite) LoadRates() (currency.Table, bool, error) {
	var base, fetched string
	err := s.db.QueryRow("SELECT base, fetched_at FROM rate_snapshot WHERE id = 1").Scan(&base, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return currency.Table{}, false, nil
	}
	if err != nil {
		return currency.Table{}, false, err
	}
	fetchedAt, _ := time.Parse(time.RFC3339Nano, fetched)

	rows, err := s.db.Query("SELECT code, rate FROM rates")
	if err != nil {
		return currency.Table{}, false, err
	}
	defer func() { _ = rows.Close() }()

	rates := make(map[string]string)
	for rows.Next() {
		var code, rate string
		if err := rows.Scan(&code, &rate); err != nil {
			return currency.Table{}, false, err
		}
		rates[code] = rate
	}
	if err := rows.Err(); err != nil {
		return currency.Table{}, false, err
	}
	return currency.NewTable(base, fetchedAt, rates), true, nil
}
