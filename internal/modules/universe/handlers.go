package universe

import (
	"encoding/json"
	"math"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/sahamlab/signal-engine/internal/domain"
	"github.com/sahamlab/signal-engine/pkg/formulas"
)

// Handlers provides HTTP handlers for the universe module.
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new universe handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("module", "universe_handlers").Logger(),
	}
}

// Routes mounts the universe endpoints.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/stocks", h.HandleMarketSummary)
	r.Get("/stocks/search", h.HandleSearch)
	r.Get("/stocks/{symbol}", h.HandleStockDetail)
	r.Post("/universe/import", h.HandleImport)
}

// SummaryRow is one market-summary entry.
type SummaryRow struct {
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Change    float64  `json:"change"`
	ChangePct float64  `json:"change_pct"`
	Status    string   `json:"status"` // up, down, neutral
	MarketCap *float64 `json:"market_cap,omitempty"`
	Sector    string   `json:"sector"`
}

// HandleMarketSummary handles GET /api/stocks
// Returns the whole universe with daily change, sorted by change_pct desc.
func (h *Handlers) HandleMarketSummary(w http.ResponseWriter, r *http.Request) {
	securities, err := h.service.securities.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list securities")
		h.writeError(w, "Failed to load universe", http.StatusInternalServerError)
		return
	}

	rows := make([]SummaryRow, 0, len(securities))
	for _, s := range securities {
		rows = append(rows, summaryRow(s))
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].ChangePct > rows[j].ChangePct
	})

	h.writeJSON(w, rows)
}

// HandleSearch handles GET /api/stocks/search?q=
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		h.writeJSON(w, []SummaryRow{})
		return
	}

	securities, err := h.service.securities.Search(q, 10)
	if err != nil {
		h.log.Error().Err(err).Str("q", q).Msg("Search failed")
		h.writeError(w, "Search failed", http.StatusInternalServerError)
		return
	}

	rows := make([]SummaryRow, 0, len(securities))
	for _, s := range securities {
		rows = append(rows, summaryRow(s))
	}
	h.writeJSON(w, rows)
}

// StockDetail is the full stock-detail payload.
type StockDetail struct {
	domain.SecuritySnapshot
	MarketCapDisplay string   `json:"market_cap_display,omitempty"`
	EVToEBITDA       *float64 `json:"ev_to_ebitda,omitempty"`
	FreeFloatPct     *float64 `json:"free_float_pct,omitempty"`
	Volatility       *float64 `json:"volatility,omitempty"` // annualized, from daily closes
}

// HandleStockDetail handles GET /api/stocks/{symbol}
func (h *Handlers) HandleStockDetail(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	snapshot, err := h.service.Snapshot(symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to load snapshot")
		h.writeError(w, "Failed to load stock", http.StatusInternalServerError)
		return
	}
	if snapshot == nil {
		h.writeError(w, "Unknown symbol", http.StatusNotFound)
		return
	}

	detail := StockDetail{
		SecuritySnapshot: *snapshot,
		EVToEBITDA:       snapshot.Fundamentals.EVToEBITDA(),
		FreeFloatPct:     snapshot.Fundamentals.FreeFloatPct(),
	}
	if snapshot.Fundamentals.MarketCap != nil {
		detail.MarketCapDisplay = domain.FormatCurrency(*snapshot.Fundamentals.MarketCap)
	}
	if closes := snapshot.DedupedCloses(); len(closes) >= 2 {
		vol := formulas.AnnualizedVolatility(formulas.CalculateReturns(closes))
		detail.Volatility = &vol
	}

	h.writeJSON(w, detail)
}

// ImportRequest is the bulk-import payload from the external data layer.
type ImportRequest struct {
	Securities []domain.SecuritySnapshot `json:"securities"`
	News       []domain.NewsItem         `json:"news"`
}

// ImportResponse reports what was stored.
type ImportResponse struct {
	SecuritiesStored int `json:"securities_stored"`
	ArticlesStored   int `json:"articles_stored"`
}

// HandleImport handles POST /api/universe/import
func (h *Handlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode import request")
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	securities, articles, err := h.service.Import(req.Securities, req.News)
	if err != nil {
		h.log.Error().Err(err).Msg("Import failed")
		h.writeError(w, "Import failed", http.StatusInternalServerError)
		return
	}

	h.log.Info().Int("securities", securities).Int("articles", articles).Msg("Universe imported")
	h.writeJSON(w, ImportResponse{SecuritiesStored: securities, ArticlesStored: articles})
}

// summaryRow derives the display row for one security.
func summaryRow(s domain.SecuritySnapshot) SummaryRow {
	row := SummaryRow{
		Symbol:    s.Symbol,
		Name:      s.Name,
		Price:     s.CurrentPrice,
		Status:    "neutral",
		MarketCap: s.Fundamentals.MarketCap,
		Sector:    normalizeSector(s.Sector),
	}

	if s.PreviousClose != nil && *s.PreviousClose != 0 {
		row.Change = round2(s.CurrentPrice - *s.PreviousClose)
		row.ChangePct = round2(row.Change / *s.PreviousClose * 100)
		switch {
		case row.ChangePct > 0:
			row.Status = "up"
		case row.ChangePct < 0:
			row.Status = "down"
		}
	}

	return row
}

// normalizeSector collapses upstream sector names into the dashboard's
// coarse buckets.
func normalizeSector(sector string) string {
	switch {
	case sector == "":
		return "Others"
	case strings.Contains(sector, "Financial"):
		return "Finance"
	case strings.Contains(sector, "Technology"):
		return "Technology"
	case strings.Contains(sector, "Energy"):
		return "Energy"
	case strings.Contains(sector, "Basic Materials"):
		return "Basic Materials"
	case strings.Contains(sector, "Consumer"):
		return "Consumer"
	case strings.Contains(sector, "Communication"):
		return "Infrastructure"
	case strings.Contains(sector, "Industrials"):
		return "Industrials"
	default:
		return sector
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// writeJSON writes a JSON response
func (h *Handlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handlers) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode error response")
	}
}
