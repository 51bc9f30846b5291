package universe

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sahamlab/signal-engine/internal/domain"
)

// SecurityRepository handles security rows in the main database.
type SecurityRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSecurityRepository creates a new security repository
func NewSecurityRepository(db *sql.DB, log zerolog.Logger) *SecurityRepository {
	return &SecurityRepository{
		db:  db,
		log: log.With().Str("repo", "security").Logger(),
	}
}

const securityColumns = `symbol, name, sector, industry, current_price, previous_close,
	market_cap, pe_ratio, pbv_ratio, roe, dividend_yield, book_value,
	shares_outstanding, float_shares, enterprise_value, ebitda,
	week_52_low, week_52_high, last_updated`

// GetBySymbol returns a security snapshot (without price history) by symbol,
// or nil when unknown.
func (r *SecurityRepository) GetBySymbol(symbol string) (*domain.SecuritySnapshot, error) {
	query := "SELECT " + securityColumns + " FROM securities WHERE symbol = ?"

	rows, err := r.db.Query(query, strings.ToUpper(strings.TrimSpace(symbol)))
	if err != nil {
		return nil, fmt.Errorf("failed to query security by symbol: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil // not found
	}

	snapshot, err := scanSecurity(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan security: %w", err)
	}

	return &snapshot, nil
}

// List returns all securities, without price history.
func (r *SecurityRepository) List() ([]domain.SecuritySnapshot, error) {
	query := "SELECT " + securityColumns + " FROM securities ORDER BY symbol"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query securities: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.SecuritySnapshot
	for rows.Next() {
		snapshot, err := scanSecurity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating securities: %w", err)
	}

	return snapshots, nil
}

// Search returns securities whose symbol or name matches the query prefix.
func (r *SecurityRepository) Search(q string, limit int) ([]domain.SecuritySnapshot, error) {
	if limit <= 0 {
		limit = 10
	}

	pattern := strings.ToUpper(strings.TrimSpace(q)) + "%"
	query := "SELECT " + securityColumns + ` FROM securities
		WHERE symbol LIKE ? OR UPPER(name) LIKE ?
		ORDER BY symbol LIMIT ?`

	rows, err := r.db.Query(query, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search securities: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.SecuritySnapshot
	for rows.Next() {
		snapshot, err := scanSecurity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}

// Upsert inserts or replaces a security row from a snapshot.
func (r *SecurityRepository) Upsert(s domain.SecuritySnapshot) error {
	query := `
		INSERT INTO securities (` + securityColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			name = excluded.name,
			sector = excluded.sector,
			industry = excluded.industry,
			current_price = excluded.current_price,
			previous_close = excluded.previous_close,
			market_cap = excluded.market_cap,
			pe_ratio = excluded.pe_ratio,
			pbv_ratio = excluded.pbv_ratio,
			roe = excluded.roe,
			dividend_yield = excluded.dividend_yield,
			book_value = excluded.book_value,
			shares_outstanding = excluded.shares_outstanding,
			float_shares = excluded.float_shares,
			enterprise_value = excluded.enterprise_value,
			ebitda = excluded.ebitda,
			week_52_low = excluded.week_52_low,
			week_52_high = excluded.week_52_high,
			last_updated = excluded.last_updated
	`

	updated := s.LastUpdated
	if updated.IsZero() {
		updated = time.Now().UTC()
	}

	f := s.Fundamentals
	_, err := r.db.Exec(query,
		strings.ToUpper(strings.TrimSpace(s.Symbol)), s.Name, s.Sector, s.Industry,
		s.CurrentPrice, s.PreviousClose,
		f.MarketCap, f.PERatio, f.PBVRatio, f.ROE, f.DividendYield, f.BookValue,
		f.SharesOutstanding, f.FloatShares, f.EnterpriseValue, f.EBITDA,
		s.Week52Low, s.Week52High, updated.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert security %s: %w", s.Symbol, err)
	}
	return nil
}

// scanSecurity maps one securities row onto a snapshot.
func scanSecurity(rows *sql.Rows) (domain.SecuritySnapshot, error) {
	var s domain.SecuritySnapshot
	var prevClose sql.NullFloat64
	var updated string
	nullable := make([]sql.NullFloat64, 12)

	err := rows.Scan(
		&s.Symbol, &s.Name, &s.Sector, &s.Industry, &s.CurrentPrice, &prevClose,
		&nullable[0], &nullable[1], &nullable[2], &nullable[3], &nullable[4], &nullable[5],
		&nullable[6], &nullable[7], &nullable[8], &nullable[9],
		&nullable[10], &nullable[11], &updated,
	)
	if err != nil {
		return s, err
	}

	if prevClose.Valid {
		s.PreviousClose = &prevClose.Float64
	}

	targets := []**float64{
		&s.Fundamentals.MarketCap, &s.Fundamentals.PERatio, &s.Fundamentals.PBVRatio,
		&s.Fundamentals.ROE, &s.Fundamentals.DividendYield, &s.Fundamentals.BookValue,
		&s.Fundamentals.SharesOutstanding, &s.Fundamentals.FloatShares,
		&s.Fundamentals.EnterpriseValue, &s.Fundamentals.EBITDA,
		&s.Week52Low, &s.Week52High,
	}
	for i, t := range targets {
		if nullable[i].Valid {
			v := nullable[i].Float64
			*t = &v
		}
	}

	if ts, err := time.Parse(time.RFC3339, updated); err == nil {
		s.LastUpdated = ts
	}

	return s, nil
}
