package cache

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"StockBoard/internal/model"
)

const dateLayout = "2006-01-02"

// SQLiteCache persists fetched bars to a SQLite database.
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
	mu  sync.Mutex
}

// NewSQLiteCache opens (or creates) the SQLite database and runs migrations.
// Cached ranges older than ttl are treated as misses.
func NewSQLiteCache(dbPath string, ttl time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboard reads don't block refresh writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &SQLiteCache{db: db, ttl: ttl}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite cache opened: %s (ttl %s)", dbPath, ttl)
	return c, nil
}

func (c *SQLiteCache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bars (
			symbol  TEXT NOT NULL,
			date    TEXT NOT NULL,
			open    REAL NOT NULL,
			high    REAL NOT NULL,
			low     REAL NOT NULL,
			close   REAL NOT NULL,
			volume  INTEGER NOT NULL,
			PRIMARY KEY (symbol, date)
		)`,
		`CREATE TABLE IF NOT EXISTS coverage (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol     TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date   TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_coverage_symbol ON coverage(symbol)`,
	}
	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Get returns cached bars when a fresh coverage interval contains [start, end].
func (c *SQLiteCache) Get(symbol string, start, end time.Time) ([]model.OHLCV, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-c.ttl).Unix()
	var id int64
	err := c.db.QueryRow(
		`SELECT id FROM coverage
		 WHERE symbol = ? AND start_date <= ? AND end_date >= ? AND fetched_at >= ?
		 LIMIT 1`,
		symbol, start.Format(dateLayout), end.Format(dateLayout), cutoff,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query coverage: %w", err)
	}

	rows, err := c.db.Query(
		`SELECT date, open, high, low, close, volume FROM bars
		 WHERE symbol = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC`,
		symbol, start.Format(dateLayout), end.Format(dateLayout),
	)
	if err != nil {
		return nil, false, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.OHLCV
	for rows.Next() {
		var dateStr string
		var b model.OHLCV
		if err := rows.Scan(&dateStr, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, false, fmt.Errorf("scan bar: %w", err)
		}
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, false, fmt.Errorf("parse cached date %q: %w", dateStr, err)
		}
		b.Date = date
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(bars) == 0 {
		return nil, false, nil
	}
	return bars, true, nil
}

// Put stores a fetched range, replacing any rows it overlaps.
func (c *SQLiteCache) Put(symbol string, start, end time.Time, bars []model.OHLCV) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM bars WHERE symbol = ? AND date >= ? AND date <= ?`,
		symbol, start.Format(dateLayout), end.Format(dateLayout),
	); err != nil {
		return fmt.Errorf("clear bars: %w", err)
	}
	for _, b := range bars {
		if _, err := tx.Exec(
			`INSERT INTO bars (symbol, date, open, high, low, close, volume)
			 VALUES (?,?,?,?,?,?,?)`,
			symbol, b.Date.Format(dateLayout), b.Open, b.High, b.Low, b.Close, b.Volume,
		); err != nil {
			return fmt.Errorf("insert bar: %w", err)
		}
	}

	// Drop stale coverage rows for the same span so the table doesn't grow
	// one row per refresh forever.
	if _, err := tx.Exec(
		`DELETE FROM coverage WHERE symbol = ? AND start_date = ? AND end_date = ?`,
		symbol, start.Format(dateLayout), end.Format(dateLayout),
	); err != nil {
		return fmt.Errorf("clear coverage: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO coverage (symbol, start_date, end_date, fetched_at) VALUES (?,?,?,?)`,
		symbol, start.Format(dateLayout), end.Format(dateLayout), time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("insert coverage: %w", err)
	}

	return tx.Commit()
}

func (c *SQLiteCache) Close() error {
	log.Println("[INFO] closing sqlite cache")
	return c.db.Close()
}
