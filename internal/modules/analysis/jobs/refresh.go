package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sahamlab/signal-engine/internal/modules/analysis"
	"github.com/sahamlab/signal-engine/internal/modules/analysis/api"
	"github.com/sahamlab/signal-engine/internal/modules/analysis/domain"
)

// refreshTimeout bounds one full ranking pass over the universe.
const refreshTimeout = 2 * time.Minute

// newsPerSymbol caps how many recent articles feed one symbol's sentiment.
const newsPerSymbol = 20

// RefreshPicksJob recomputes the top-picks ranking in the background so the
// API serves it from cache instead of ranking on request.
type RefreshPicksJob struct {
	ranker *analysis.Ranker
	cache  *analysis.PicksCache
	source api.SnapshotSource
	log    zerolog.Logger
}

// NewRefreshPicksJob creates a new picks refresh job
func NewRefreshPicksJob(
	ranker *analysis.Ranker,
	cache *analysis.PicksCache,
	source api.SnapshotSource,
	log zerolog.Logger,
) *RefreshPicksJob {
	return &RefreshPicksJob{
		ranker: ranker,
		cache:  cache,
		source: source,
		log:    log.With().Str("job", "refresh_picks").Logger(),
	}
}

// Name returns the job name
func (j *RefreshPicksJob) Name() string {
	return "refresh_picks"
}

// Run recomputes the ranking over all stored securities and stores it in the
// cache. An empty universe is not an error; the cache is left untouched.
func (j *RefreshPicksJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	snapshots, err := j.source.ListSnapshots()
	if err != nil {
		return fmt.Errorf("failed to list securities: %w", err)
	}
	if len(snapshots) == 0 {
		j.log.Debug().Msg("Universe is empty, nothing to rank")
		return nil
	}

	universe := make([]analysis.Universe, 0, len(snapshots))
	for _, snapshot := range snapshots {
		news, err := j.source.NewsFor(snapshot.Symbol, newsPerSymbol)
		if err != nil {
			j.log.Warn().Err(err).Str("symbol", snapshot.Symbol).Msg("Failed to load news")
			news = nil
		}
		universe = append(universe, analysis.Universe{Snapshot: snapshot, News: news})
	}

	picks := j.ranker.Rank(ctx, universe, domain.DefaultTimeframe)
	j.cache.Set(picks)

	j.log.Info().
		Int("securities", len(universe)).
		Int("buys", len(picks.Buys)).
		Int("sells", len(picks.Sells)).
		Int("hidden_gems", len(picks.HiddenGems)).
		Msg("Top picks refreshed")

	return nil
}
