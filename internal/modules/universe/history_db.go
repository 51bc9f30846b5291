package universe

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog"

	"github.com/sahamlab/signal-engine/internal/domain"
)

// HistoryDB provides access to daily OHLCV price data. Kept separate from
// the main store: history rows dwarf everything else and are written in
// bulk.
type HistoryDB struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistoryDB opens (and if needed creates) the history database.
func NewHistoryDB(path string, log zerolog.Logger) (*HistoryDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS daily_prices (
		symbol       TEXT NOT NULL,
		date         TEXT NOT NULL,
		open_price   REAL NOT NULL,
		high_price   REAL NOT NULL,
		low_price    REAL NOT NULL,
		close_price  REAL NOT NULL,
		volume       INTEGER,
		PRIMARY KEY (symbol, date)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &HistoryDB{
		db:  db,
		log: log.With().Str("component", "history_db").Logger(),
	}, nil
}

// Close closes the history database.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// GetDailyPrices fetches up to limit daily bars for a symbol, oldest first.
func (h *HistoryDB) GetDailyPrices(symbol string, limit int) ([]domain.PricePoint, error) {
	query := `
		SELECT date, open_price, high_price, low_price, close_price, volume
		FROM (
			SELECT date, open_price, high_price, low_price, close_price, volume
			FROM daily_prices
			WHERE symbol = ?
			ORDER BY date DESC
			LIMIT ?
		)
		ORDER BY date ASC
	`

	rows, err := h.db.Query(query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	var prices []domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		var volume sql.NullInt64

		if err := rows.Scan(&p.Date, &p.Open, &p.High, &p.Low, &p.Close, &volume); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}
		if volume.Valid {
			p.Volume = &volume.Int64
		}

		prices = append(prices, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}

	return prices, nil
}

// SaveDailyPrices bulk-upserts bars for a symbol inside one transaction.
func (h *HistoryDB) SaveDailyPrices(symbol string, prices []domain.PricePoint) error {
	if len(prices) == 0 {
		return nil
	}

	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO daily_prices
			(symbol, date, open_price, high_price, low_price, close_price, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range prices {
		if _, err := stmt.Exec(symbol, p.Date, p.Open, p.High, p.Low, p.Close, p.Volume); err != nil {
			return fmt.Errorf("failed to insert daily price %s/%s: %w", symbol, p.Date, err)
		}
	}

	return tx.Commit()
}
