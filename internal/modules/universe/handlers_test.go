package universe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahamlab/signal-engine/internal/database"
	"github.com/sahamlab/signal-engine/internal/domain"
)

func floatPtr(f float64) *float64 { return &f }

func setupTestService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()

	db, err := database.New(filepath.Join(dir, "market.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	history, err := NewHistoryDB(filepath.Join(dir, "history.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { history.Close() })

	securities := NewSecurityRepository(db.Conn(), zerolog.Nop())
	news := NewNewsRepository(db.Conn(), zerolog.Nop())

	return NewService(securities, history, news, zerolog.Nop())
}

func setupTestRouter(t *testing.T) (*chi.Mux, *Service) {
	t.Helper()
	service := setupTestService(t)
	handlers := NewHandlers(service, zerolog.Nop())

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		handlers.Routes(r)
	})
	return r, service
}

func testSnapshot(symbol string, price, prevClose float64) domain.SecuritySnapshot {
	return domain.SecuritySnapshot{
		Symbol:        symbol,
		Name:          symbol + " Tbk",
		Sector:        "Financial Services",
		CurrentPrice:  price,
		PreviousClose: floatPtr(prevClose),
		Fundamentals: domain.Fundamentals{
			MarketCap: floatPtr(10e12),
			PERatio:   floatPtr(12),
		},
	}
}

func testHistory(days int) []domain.PricePoint {
	history := make([]domain.PricePoint, days)
	for i := range history {
		price := 100.0 + float64(i)
		history[i] = domain.PricePoint{
			Date:  fmt.Sprintf("2026-06-%02d", i+1),
			Open:  price,
			High:  price + 1,
			Low:   price - 1,
			Close: price,
		}
	}
	return history
}

func TestImportAndSnapshotRoundTrip(t *testing.T) {
	service := setupTestService(t)

	snap := testSnapshot("bbca", 9000, 8900) // lowercase on purpose
	snap.History = testHistory(25)

	stored, articles, err := service.Import([]domain.SecuritySnapshot{snap}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stored)
	assert.Equal(t, 0, articles)

	got, err := service.Snapshot("BBCA")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "BBCA", got.Symbol, "symbols are normalized to upper case")
	assert.Equal(t, 9000.0, got.CurrentPrice)
	require.NotNil(t, got.Fundamentals.PERatio)
	assert.Equal(t, 12.0, *got.Fundamentals.PERatio)
	assert.Len(t, got.History, 25)
	assert.Equal(t, "2026-06-01", got.History[0].Date, "history is oldest first")
}

func TestSnapshotUnknownSymbol(t *testing.T) {
	service := setupTestService(t)

	got, err := service.Snapshot("NOPE")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestImportUpsertOverwrites(t *testing.T) {
	service := setupTestService(t)

	first := testSnapshot("BBRI", 4000, 3900)
	_, _, err := service.Import([]domain.SecuritySnapshot{first}, nil)
	require.NoError(t, err)

	second := testSnapshot("BBRI", 4100, 4000)
	_, _, err = service.Import([]domain.SecuritySnapshot{second}, nil)
	require.NoError(t, err)

	all, err := service.ListSnapshots()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 4100.0, all[0].CurrentPrice)
}

func TestImportSkipsBlankSymbols(t *testing.T) {
	service := setupTestService(t)

	stored, _, err := service.Import([]domain.SecuritySnapshot{
		{Symbol: "  "},
		testSnapshot("TLKM", 3200, 3150),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stored)
}

func TestNewsDedupByLink(t *testing.T) {
	service := setupTestService(t)

	items := []domain.NewsItem{
		{
			Title:          "BBCA posts record profit",
			Link:           "https://example.com/a",
			RelatedSymbol:  "BBCA",
			SentimentLabel: domain.SentimentPositive,
			PublishedAt:    time.Now().UTC(),
		},
		{
			Title:          "BBCA posts record profit (syndicated)",
			Link:           "https://example.com/a", // same link
			RelatedSymbol:  "BBCA",
			SentimentLabel: domain.SentimentPositive,
			PublishedAt:    time.Now().UTC(),
		},
	}

	_, saved, err := service.Import(nil, items)
	require.NoError(t, err)
	assert.Equal(t, 1, saved)

	got, err := service.NewsFor("BBCA", 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestHandleMarketSummary(t *testing.T) {
	router, service := setupTestRouter(t)

	_, _, err := service.Import([]domain.SecuritySnapshot{
		testSnapshot("UPUP", 110, 100), // +10%
		testSnapshot("DOWN", 90, 100),  // -10%
	}, nil)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/stocks", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var rows []SummaryRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)

	assert.Equal(t, "UPUP", rows[0].Symbol, "sorted by change_pct desc")
	assert.Equal(t, 10.0, rows[0].ChangePct)
	assert.Equal(t, "up", rows[0].Status)
	assert.Equal(t, "down", rows[1].Status)
	assert.Equal(t, "Finance", rows[0].Sector, "sector is normalized")
}

func TestHandleSearch(t *testing.T) {
	router, service := setupTestRouter(t)

	_, _, err := service.Import([]domain.SecuritySnapshot{
		testSnapshot("BBCA", 9000, 8900),
		testSnapshot("BBRI", 4000, 3900),
		testSnapshot("TLKM", 3200, 3150),
	}, nil)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/stocks/search?q=bb", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var rows []SummaryRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	assert.Len(t, rows, 2)
}

func TestHandleSearchEmptyQuery(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/stocks/search", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleStockDetail(t *testing.T) {
	router, service := setupTestRouter(t)

	snap := testSnapshot("ASII", 5000, 4950)
	snap.Fundamentals.EnterpriseValue = floatPtr(1200)
	snap.Fundamentals.EBITDA = floatPtr(100)
	snap.History = testHistory(30)

	_, _, err := service.Import([]domain.SecuritySnapshot{snap}, nil)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/stocks/ASII", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "ASII", body["symbol"])
	assert.Equal(t, "10.00T", body["market_cap_display"])
	assert.InDelta(t, 12, body["ev_to_ebitda"], 0.001)
	assert.Greater(t, body["volatility"], 0.0)
}

func TestHandleStockDetailUnknown(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/stocks/NOPE", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleImport(t *testing.T) {
	router, _ := setupTestRouter(t)

	payload := ImportRequest{
		Securities: []domain.SecuritySnapshot{testSnapshot("BMRI", 6000, 5900)},
		News: []domain.NewsItem{{
			Title:          "BMRI expands digital banking",
			Link:           "https://example.com/bmri",
			RelatedSymbol:  "BMRI",
			SentimentLabel: domain.SentimentPositive,
			PublishedAt:    time.Now().UTC(),
		}},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/universe/import", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ImportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.SecuritiesStored)
	assert.Equal(t, 1, resp.ArticlesStored)
}

func TestHandleImportInvalidBody(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest("POST", "/api/universe/import", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
