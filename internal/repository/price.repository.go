package repository

import (
	"database/sql"
	"fmt"
	"time"

	"niftyalpha/internal/domain"
	"niftyalpha/internal/util"

	_ "modernc.org/sqlite"
)

// PriceRepository persists daily bars in a local SQLite database so
// screens and backtests run against already-fetched data.
type PriceRepository struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open(path string) (*PriceRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &PriceRepository{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *PriceRepository) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS prices (
			symbol    TEXT NOT NULL,
			date      TEXT NOT NULL,
			open      REAL,
			high      REAL,
			low       REAL,
			close     REAL NOT NULL,
			adj_close REAL,
			volume    INTEGER,
			PRIMARY KEY (symbol, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_date ON prices(date)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:30], err)
		}
	}
	return nil
}

// Add upserts the bars for one symbol in a single transaction.
func (r *PriceRepository) Add(symbol string, bars []domain.Bar) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO prices
		(symbol, date, open, high, low, close, adj_close, volume)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open=excluded.open, high=excluded.high, low=excluded.low,
			close=excluded.close, adj_close=excluded.adj_close, volume=excluded.volume`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.Exec(
			symbol, util.DateKey(b.Date),
			b.Open, b.High, b.Low, b.Close, b.AdjClose, b.Volume,
		); err != nil {
			return fmt.Errorf("insert bar %s %s: %w", symbol, util.DateKey(b.Date), err)
		}
	}

	return tx.Commit()
}

// List returns the stored series for a symbol between start and end,
// ordered by date.
func (r *PriceRepository) List(symbol string, start, end time.Time) (*domain.PriceSeries, error) {
	rows, err := r.db.Query(`SELECT date, open, high, low, close, adj_close, volume
		FROM prices WHERE symbol = ? AND date >= ? AND date <= ? ORDER BY date`,
		symbol, util.DateKey(start), util.DateKey(end))
	if err != nil {
		return nil, fmt.Errorf("list prices for %s: %w", symbol, err)
	}
	defer rows.Close()

	bars := []domain.Bar{}
	for rows.Next() {
		var dateStr string
		var b domain.Bar
		if err := rows.Scan(&dateStr, &b.Open, &b.High, &b.Low, &b.Close, &b.AdjClose, &b.Volume); err != nil {
			return nil, err
		}
		date, err := time.Parse(time.DateOnly, dateStr)
		if err != nil {
			return nil, fmt.Errorf("bad date %q for %s: %w", dateStr, symbol, err)
		}
		b.Date = date
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return domain.NewPriceSeries(symbol, bars)
}

// Symbols lists every symbol with stored prices.
func (r *PriceRepository) Symbols() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT symbol FROM prices ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	symbols := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// LatestDate returns the most recent stored date for a symbol. ok is
// false when the symbol has no data.
func (r *PriceRepository) LatestDate(symbol string) (time.Time, bool, error) {
	var dateStr sql.NullString
	err := r.db.QueryRow(`SELECT MAX(date) FROM prices WHERE symbol = ?`, symbol).Scan(&dateStr)
	if err != nil {
		return time.Time{}, false, err
	}
	if !dateStr.Valid {
		return time.Time{}, false, nil
	}
	date, err := time.Parse(time.DateOnly, dateStr.String)
	if err != nil {
		return time.Time{}, false, err
	}
	return date, true, nil
}

func (r *PriceRepository) Close() error {
	return r.db.Close()
}
