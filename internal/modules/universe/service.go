package universe

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sahamlab/signal-engine/internal/domain"
)

// historyDepth is how many daily bars a snapshot carries. Enough for the
// MA20 with room to spare; history beyond a few months does not change the
// short-term signals.
const historyDepth = 120

// Service assembles full SecuritySnapshots from the security, history and
// news stores. It is the engine's data source; it never fetches from the
// outside world.
type Service struct {
	securities *SecurityRepository
	history    *HistoryDB
	news       *NewsRepository
	log        zerolog.Logger
}

// NewService creates a new universe service.
func NewService(securities *SecurityRepository, history *HistoryDB, news *NewsRepository, log zerolog.Logger) *Service {
	return &Service{
		securities: securities,
		history:    history,
		news:       news,
		log:        log.With().Str("module", "universe").Logger(),
	}
}

// Snapshot returns the full snapshot for one symbol, or nil when the symbol
// is unknown.
func (s *Service) Snapshot(symbol string) (*domain.SecuritySnapshot, error) {
	snapshot, err := s.securities.GetBySymbol(symbol)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, nil
	}

	history, err := s.history.GetDailyPrices(snapshot.Symbol, historyDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", snapshot.Symbol, err)
	}
	snapshot.History = history

	return snapshot, nil
}

// NewsFor returns recent news related to one symbol.
func (s *Service) NewsFor(symbol string, limit int) ([]domain.NewsItem, error) {
	return s.news.ListForSymbol(strings.ToUpper(strings.TrimSpace(symbol)), limit)
}

// NewsSince returns all news published at or after the given time.
func (s *Service) NewsSince(since time.Time) ([]domain.NewsItem, error) {
	return s.news.ListSince(since)
}

// ListSnapshots returns full snapshots for the whole universe. A security
// whose history fails to load is kept with empty history: the engine
// degrades that pillar to NEUTRAL instead of dropping the security.
func (s *Service) ListSnapshots() ([]domain.SecuritySnapshot, error) {
	securities, err := s.securities.List()
	if err != nil {
		return nil, err
	}

	for i := range securities {
		history, err := s.history.GetDailyPrices(securities[i].Symbol, historyDepth)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", securities[i].Symbol).
				Msg("Failed to load history, continuing without it")
			continue
		}
		securities[i].History = history
	}

	return securities, nil
}

// Import bulk-upserts snapshots and news delivered by the external data
// layer. Returns (securities stored, articles stored).
func (s *Service) Import(snapshots []domain.SecuritySnapshot, news []domain.NewsItem) (int, int, error) {
	stored := 0
	for _, snapshot := range snapshots {
		snapshot.Symbol = strings.ToUpper(strings.TrimSpace(snapshot.Symbol))
		if snapshot.Symbol == "" {
			continue
		}
		if err := s.securities.Upsert(snapshot); err != nil {
			return stored, 0, err
		}
		if len(snapshot.History) > 0 {
			if err := s.history.SaveDailyPrices(snapshot.Symbol, snapshot.History); err != nil {
				return stored, 0, err
			}
		}
		stored++
	}

	saved, err := s.news.Save(news)
	if err != nil {
		return stored, 0, err
	}

	return stored, saved, nil
}
