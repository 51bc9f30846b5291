package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shared "github.com/sahamlab/signal-engine/internal/domain"
	"github.com/sahamlab/signal-engine/internal/modules/analysis"
)

func floatPtr(f float64) *float64 { return &f }

// stubSource serves canned data in place of the universe service.
type stubSource struct {
	snapshots map[string]*shared.SecuritySnapshot
	news      map[string][]shared.NewsItem
	failList  bool
}

func (s *stubSource) Snapshot(symbol string) (*shared.SecuritySnapshot, error) {
	return s.snapshots[symbol], nil
}

func (s *stubSource) NewsFor(symbol string, limit int) ([]shared.NewsItem, error) {
	return s.news[symbol], nil
}

func (s *stubSource) ListSnapshots() ([]shared.SecuritySnapshot, error) {
	if s.failList {
		return nil, fmt.Errorf("stub list error")
	}
	var out []shared.SecuritySnapshot
	for _, snap := range s.snapshots {
		out = append(out, *snap)
	}
	return out, nil
}

func (s *stubSource) NewsSince(since time.Time) ([]shared.NewsItem, error) {
	var out []shared.NewsItem
	for _, items := range s.news {
		out = append(out, items...)
	}
	return out, nil
}

func bullishSnapshot(symbol string) *shared.SecuritySnapshot {
	history := make([]shared.PricePoint, 20)
	for i := range history {
		c := 100.0
		if i >= 15 {
			c = 110.0
		}
		history[i] = shared.PricePoint{Date: fmt.Sprintf("2026-07-%02d", i+1), Close: c}
	}
	return &shared.SecuritySnapshot{
		Symbol:       symbol,
		CurrentPrice: 1000,
		History:      history,
		Fundamentals: shared.Fundamentals{
			PERatio:  floatPtr(10),
			PBVRatio: floatPtr(1.0),
			ROE:      floatPtr(0.20),
		},
	}
}

func newTestRouter(source SnapshotSource, ttl time.Duration) *chi.Mux {
	service := analysis.NewService(zerolog.Nop())
	ranker := analysis.NewRanker(service, analysis.RankerConfig{Workers: 2, SmallCapThreshold: 5e12})
	cache := analysis.NewPicksCache(ttl)
	handlers := NewHandlers(service, ranker, cache, source, zerolog.Nop())

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		handlers.Routes(r)
	})
	return r
}

func TestHandlePrediction(t *testing.T) {
	source := &stubSource{
		snapshots: map[string]*shared.SecuritySnapshot{"BBCA": bullishSnapshot("BBCA")},
		news: map[string][]shared.NewsItem{
			"BBCA": {
				{SentimentLabel: shared.SentimentPositive},
				{SentimentLabel: shared.SentimentPositive},
				{SentimentLabel: shared.SentimentPositive},
			},
		},
	}
	router := newTestRouter(source, time.Hour)

	req := httptest.NewRequest("GET", "/api/analysis/prediction/BBCA?timeframe=6m", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "BBCA", body["symbol"])
	assert.Equal(t, "STRONG BUY", body["prediction"])
	assert.Equal(t, "HIGH", body["confidence"])
	assert.Equal(t, "6m", body["timeframe"])
	assert.Equal(t, float64(3), body["score"])
	assert.InDelta(t, 1240, body["target_price"], 0.01)

	signals, ok := body["signals"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, signals["technical"], "BULLISH(")
}

func TestHandlePredictionUnknownTimeframeFallsBack(t *testing.T) {
	source := &stubSource{
		snapshots: map[string]*shared.SecuritySnapshot{"BBCA": bullishSnapshot("BBCA")},
	}
	router := newTestRouter(source, time.Hour)

	req := httptest.NewRequest("GET", "/api/analysis/prediction/BBCA?timeframe=9m", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "3m", body["timeframe"])
}

func TestHandlePredictionUnknownSymbol(t *testing.T) {
	router := newTestRouter(&stubSource{snapshots: map[string]*shared.SecuritySnapshot{}}, time.Hour)

	req := httptest.NewRequest("GET", "/api/analysis/prediction/NOPE", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Unknown symbol", body["error"])
}

func TestHandleTopPicks(t *testing.T) {
	source := &stubSource{
		snapshots: map[string]*shared.SecuritySnapshot{"BBCA": bullishSnapshot("BBCA")},
	}
	router := newTestRouter(source, time.Hour)

	req := httptest.NewRequest("GET", "/api/analysis/top-picks", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var picks struct {
		Buys       []json.RawMessage `json:"buys"`
		Sells      []json.RawMessage `json:"sells"`
		HiddenGems []json.RawMessage `json:"hidden_gems"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &picks))
	assert.Len(t, picks.Buys, 1)
	assert.Empty(t, picks.Sells)
}

func TestHandleTopPicksServesCache(t *testing.T) {
	// The source fails, so only the cache can answer.
	source := &stubSource{failList: true}

	service := analysis.NewService(zerolog.Nop())
	ranker := analysis.NewRanker(service, analysis.RankerConfig{Workers: 2, SmallCapThreshold: 5e12})
	cache := analysis.NewPicksCache(time.Hour)
	handlers := NewHandlers(service, ranker, cache, source, zerolog.Nop())

	universe := []analysis.Universe{{Snapshot: *bullishSnapshot("CACHED")}}
	cache.Set(ranker.Rank(httptest.NewRequest("GET", "/", nil).Context(), universe, "3m"))

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) { handlers.Routes(r) })

	req := httptest.NewRequest("GET", "/api/analysis/top-picks", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "CACHED")
}

func TestHandleTopPicksSourceFailure(t *testing.T) {
	router := newTestRouter(&stubSource{failList: true}, time.Hour)

	req := httptest.NewRequest("GET", "/api/analysis/top-picks", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleRecap(t *testing.T) {
	source := &stubSource{
		news: map[string][]shared.NewsItem{
			"BBCA": {
				{
					Title:          "Banking profits surge across the board",
					RelatedSymbol:  "BBCA",
					SentimentLabel: shared.SentimentPositive,
					PublishedAt:    time.Now().Add(-time.Hour),
				},
				{
					Title:          "Banking loans expand strongly",
					RelatedSymbol:  "BBCA",
					SentimentLabel: shared.SentimentPositive,
					PublishedAt:    time.Now().Add(-2 * time.Hour),
				},
			},
		},
	}
	router := newTestRouter(source, time.Hour)

	req := httptest.NewRequest("GET", "/api/analysis/recap", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OPTIMISTIC", body["mood"])
	assert.Equal(t, "BBCA", body["top_symbol"])
}
