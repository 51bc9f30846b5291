package universe

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sahamlab/signal-engine/internal/domain"
)

// NewsRepository handles stored news articles.
type NewsRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewNewsRepository creates a new news repository
func NewNewsRepository(db *sql.DB, log zerolog.Logger) *NewsRepository {
	return &NewsRepository{
		db:  db,
		log: log.With().Str("repo", "news").Logger(),
	}
}

// Save stores articles, skipping any whose link already exists. Returns the
// number of newly inserted rows.
func (r *NewsRepository) Save(items []domain.NewsItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin news transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO news_articles
			(link, title, source, published_at, sentiment_label, sentiment_score, related_symbol)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare news insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, item := range items {
		res, err := stmt.Exec(
			item.Link, item.Title, item.Source,
			item.PublishedAt.UTC().Format(time.RFC3339),
			string(item.SentimentLabel), item.SentimentScore, item.RelatedSymbol,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert article: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// ListForSymbol returns the most recent articles related to a symbol.
func (r *NewsRepository) ListForSymbol(symbol string, limit int) ([]domain.NewsItem, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT title, source, link, published_at, sentiment_label, sentiment_score, related_symbol
		FROM news_articles
		WHERE related_symbol = ?
		ORDER BY published_at DESC
		LIMIT ?
	`
	return r.queryItems(query, symbol, limit)
}

// ListSince returns all articles published at or after the given time.
func (r *NewsRepository) ListSince(since time.Time) ([]domain.NewsItem, error) {
	query := `
		SELECT title, source, link, published_at, sentiment_label, sentiment_score, related_symbol
		FROM news_articles
		WHERE published_at >= ?
		ORDER BY published_at DESC
	`
	return r.queryItems(query, since.UTC().Format(time.RFC3339))
}

func (r *NewsRepository) queryItems(query string, args ...interface{}) ([]domain.NewsItem, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query news: %w", err)
	}
	defer rows.Close()

	var items []domain.NewsItem
	for rows.Next() {
		var item domain.NewsItem
		var published, label string

		err := rows.Scan(&item.Title, &item.Source, &item.Link, &published,
			&label, &item.SentimentScore, &item.RelatedSymbol)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}

		item.SentimentLabel = domain.SentimentLabel(label)
		if ts, err := time.Parse(time.RFC3339, published); err == nil {
			item.PublishedAt = ts
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating news: %w", err)
	}

	return items, nil
}
