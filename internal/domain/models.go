package domain

import "time"

// SentimentLabel classifies a news item. Labels are produced upstream by the
// sentiment pipeline; the engine only aggregates them.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
	SentimentNeutral  SentimentLabel = "NEUTRAL"
)

// PricePoint represents one daily OHLCV bar.
type PricePoint struct {
	Date   string  `json:"date"` // ISO date, e.g. "2026-08-21"
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume *int64  `json:"volume,omitempty"`
}

// Fundamentals holds the raw fundamental figures for a security.
// Every field is optional: a nil pointer means "not reported", which is
// distinct from a reported zero and must never score as one.
type Fundamentals struct {
	MarketCap         *float64 `json:"market_cap,omitempty"`
	PERatio           *float64 `json:"pe_ratio,omitempty"`
	PBVRatio          *float64 `json:"pbv_ratio,omitempty"`
	ROE               *float64 `json:"roe,omitempty"`            // fraction (0.15 = 15%)
	DividendYield     *float64 `json:"dividend_yield,omitempty"` // fraction
	BookValue         *float64 `json:"book_value,omitempty"`
	SharesOutstanding *float64 `json:"shares_outstanding,omitempty"`
	FloatShares       *float64 `json:"float_shares,omitempty"`
	EnterpriseValue   *float64 `json:"enterprise_value,omitempty"`
	EBITDA            *float64 `json:"ebitda,omitempty"`
}

// SecuritySnapshot is the engine's unit of input: everything known about one
// security at evaluation time. All data is materialized upstream; the engine
// never fetches.
type SecuritySnapshot struct {
	Symbol        string       `json:"symbol"`
	Name          string       `json:"name,omitempty"`
	Sector        string       `json:"sector,omitempty"`
	Industry      string       `json:"industry,omitempty"`
	CurrentPrice  float64      `json:"price"`
	PreviousClose *float64     `json:"previous_close,omitempty"`
	History       []PricePoint `json:"history,omitempty"` // chronological, may carry duplicate dates
	Fundamentals  Fundamentals `json:"fundamentals"`
	Week52Low     *float64     `json:"week_52_low,omitempty"`
	Week52High    *float64     `json:"week_52_high,omitempty"`
	LastUpdated   time.Time    `json:"last_updated,omitempty"`
}

// NewsItem is one externally classified news article. Immutable once fetched.
type NewsItem struct {
	Title          string         `json:"title"`
	Source         string         `json:"source"`
	Link           string         `json:"link,omitempty"`
	PublishedAt    time.Time      `json:"published_at"`
	SentimentLabel SentimentLabel `json:"sentiment_label"`
	SentimentScore float64        `json:"sentiment_score"`
	RelatedSymbol  string         `json:"related_symbol,omitempty"`
}

// DedupedCloses returns the closing prices of the snapshot's history in
// chronological order, with duplicate-date entries collapsed to the first
// occurrence.
func (s *SecuritySnapshot) DedupedCloses() []float64 {
	if len(s.History) == 0 {
		return nil
	}

	closes := make([]float64, 0, len(s.History))
	seen := make(map[string]bool, len(s.History))
	for _, p := range s.History {
		if seen[p.Date] {
			continue
		}
		seen[p.Date] = true
		closes = append(closes, p.Close)
	}
	return closes
}
