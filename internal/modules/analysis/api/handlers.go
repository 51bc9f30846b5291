package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	shared "github.com/sahamlab/signal-engine/internal/domain"
	"github.com/sahamlab/signal-engine/internal/modules/analysis"
	"github.com/sahamlab/signal-engine/internal/modules/analysis/domain"
)

// newsPerSymbol caps how many recent articles feed one symbol's sentiment.
const newsPerSymbol = 20

// SnapshotSource supplies the engine with already-materialized market data.
type SnapshotSource interface {
	Snapshot(symbol string) (*shared.SecuritySnapshot, error)
	NewsFor(symbol string, limit int) ([]shared.NewsItem, error)
	ListSnapshots() ([]shared.SecuritySnapshot, error)
	NewsSince(since time.Time) ([]shared.NewsItem, error)
}

// Handlers provides HTTP handlers for the analysis module.
type Handlers struct {
	service *analysis.Service
	ranker  *analysis.Ranker
	cache   *analysis.PicksCache
	source  SnapshotSource
	log     zerolog.Logger
}

// NewHandlers creates a new analysis handlers instance
func NewHandlers(
	service *analysis.Service,
	ranker *analysis.Ranker,
	cache *analysis.PicksCache,
	source SnapshotSource,
	log zerolog.Logger,
) *Handlers {
	return &Handlers{
		service: service,
		ranker:  ranker,
		cache:   cache,
		source:  source,
		log:     log.With().Str("module", "analysis_handlers").Logger(),
	}
}

// Routes mounts the analysis endpoints.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/analysis/prediction/{symbol}", h.HandlePrediction)
	r.Get("/analysis/top-picks", h.HandleTopPicks)
	r.Get("/analysis/recap", h.HandleRecap)
}

// HandlePrediction handles GET /api/analysis/prediction/{symbol}?timeframe=
// Unknown timeframes silently fall back to the default; unknown symbols are
// a 404.
func (h *Handlers) HandlePrediction(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	timeframe := domain.ParseTimeframe(r.URL.Query().Get("timeframe"))

	snapshot, err := h.source.Snapshot(symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to load snapshot")
		h.writeError(w, "Failed to load security data", http.StatusInternalServerError)
		return
	}
	if snapshot == nil {
		h.writeError(w, "Unknown symbol", http.StatusNotFound)
		return
	}

	news, err := h.source.NewsFor(snapshot.Symbol, newsPerSymbol)
	if err != nil {
		// Sentiment degrades to NEUTRAL without news; not fatal.
		h.log.Warn().Err(err).Str("symbol", snapshot.Symbol).Msg("Failed to load news")
		news = nil
	}

	h.writeJSON(w, h.service.Predict(*snapshot, news, timeframe))
}

// HandleTopPicks handles GET /api/analysis/top-picks
// Serves the cached ranking when fresh; recomputes otherwise.
func (h *Handlers) HandleTopPicks(w http.ResponseWriter, r *http.Request) {
	if picks, ok := h.cache.Get(); ok {
		h.writeJSON(w, picks)
		return
	}

	picks, err := h.computePicks(r)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute top picks")
		h.writeError(w, "Failed to rank universe", http.StatusInternalServerError)
		return
	}

	h.cache.Set(picks)
	h.writeJSON(w, picks)
}

// HandleRecap handles GET /api/analysis/recap
func (h *Handlers) HandleRecap(w http.ResponseWriter, r *http.Request) {
	since := time.Now().Add(-24 * time.Hour)
	news, err := h.source.NewsSince(since)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load news for recap")
		h.writeError(w, "Failed to load news", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, h.service.BuildRecap(news, time.Now()))
}

// computePicks runs the full ranking pass over the stored universe.
func (h *Handlers) computePicks(r *http.Request) (domain.TopPicks, error) {
	snapshots, err := h.source.ListSnapshots()
	if err != nil {
		return domain.TopPicks{}, err
	}

	universe := make([]analysis.Universe, 0, len(snapshots))
	for _, snapshot := range snapshots {
		news, err := h.source.NewsFor(snapshot.Symbol, newsPerSymbol)
		if err != nil {
			h.log.Warn().Err(err).Str("symbol", snapshot.Symbol).Msg("Failed to load news")
			news = nil
		}
		universe = append(universe, analysis.Universe{Snapshot: snapshot, News: news})
	}

	return h.ranker.Rank(r.Context(), universe, domain.DefaultTimeframe), nil
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
