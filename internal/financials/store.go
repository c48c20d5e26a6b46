package financials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS financials (
	symbol      TEXT PRIMARY KEY,
	fcf         REAL NOT NULL,
	shares      REAL NOT NULL,
	cash        REAL NOT NULL,
	debt        REAL NOT NULL,
	source      TEXT NOT NULL,
	fetched_at  TEXT NOT NULL
);
`

// SQLiteStore keeps the latest snapshot per symbol in a SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at path and runs migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get returns the snapshot for symbol if it was fetched within maxAge. A
// non-positive maxAge accepts any age.
func (s *SQLiteStore) Get(ctx context.Context, symbol string, maxAge time.Duration) (*Financials, error) {
	f := Financials{Symbol: symbol}
	var fetchedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT fcf, shares, cash, debt, source, fetched_at
		 FROM financials WHERE symbol = ?`, symbol,
	).Scan(&f.FCF, &f.Shares, &f.Cash, &f.Debt, &f.Source, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get financials %s: %w", symbol, err)
	}

	f.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("parse fetched_at for %s: %w", symbol, err)
	}
	if maxAge > 0 && s.now().Sub(f.FetchedAt) > maxAge {
		return nil, ErrNotFound
	}
	return &f, nil
}

// Put inserts or replaces the snapshot for f.Symbol.
func (s *SQLiteStore) Put(ctx context.Context, f *Financials) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO financials (symbol, fcf, shares, cash, debt, source, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(symbol) DO UPDATE SET
			fcf = excluded.fcf,
			shares = excluded.shares,
			cash = excluded.cash,
			debt = excluded.debt,
			source = excluded.source,
			fetched_at = excluded.fetched_at`,
		f.Symbol, f.FCF, f.Shares, f.Cash, f.Debt, f.Source, f.FetchedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put financials %s: %w", f.Symbol, err)
	}
	return nil
}
