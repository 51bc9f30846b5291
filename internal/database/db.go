package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB wraps the main database connection (securities, fundamentals, news).
type DB struct {
	conn *sql.DB
	path string
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL mode for better concurrency
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)

	return &DB{
		conn: conn,
		path: dbPath,
	}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Migrate creates the schema if it does not exist yet.
func (db *DB) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS securities (
		symbol             TEXT PRIMARY KEY,
		name               TEXT NOT NULL DEFAULT '',
		sector             TEXT NOT NULL DEFAULT '',
		industry           TEXT NOT NULL DEFAULT '',
		current_price      REAL NOT NULL DEFAULT 0,
		previous_close     REAL,
		market_cap         REAL,
		pe_ratio           REAL,
		pbv_ratio          REAL,
		roe                REAL,
		dividend_yield     REAL,
		book_value         REAL,
		shares_outstanding REAL,
		float_shares       REAL,
		enterprise_value   REAL,
		ebitda             REAL,
		week_52_low        REAL,
		week_52_high       REAL,
		last_updated       TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS news_articles (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		link            TEXT NOT NULL UNIQUE,
		title           TEXT NOT NULL,
		source          TEXT NOT NULL DEFAULT '',
		published_at    TEXT NOT NULL,
		sentiment_label TEXT NOT NULL DEFAULT 'NEUTRAL',
		sentiment_score REAL NOT NULL DEFAULT 0,
		related_symbol  TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_news_related_symbol ON news_articles(related_symbol);
	CREATE INDEX IF NOT EXISTS idx_news_published_at ON news_articles(published_at);
	`

	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Begin starts a new transaction
func (db *DB) Begin() (*sql.Tx, error) {
	return db.conn.Begin()
}

// Exec executes a query without returning rows
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

// Query executes a query that returns rows
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// QueryRow executes a query that returns at most one row
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}
