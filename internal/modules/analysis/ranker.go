package analysis

import (
	"context"
	"sort"
	"sync"

	shared "github.com/sahamlab/signal-engine/internal/domain"
	"github.com/sahamlab/signal-engine/internal/modules/analysis/domain"
)

// RankerConfig tunes the top-picks pass.
type RankerConfig struct {
	Workers           int
	SmallCapThreshold float64 // hidden gems must be below this market cap
}

// Ranker fans the composer out over a universe of securities and partitions
// the results into buys, sells and small-cap hidden gems.
type Ranker struct {
	service *Service
	cfg     RankerConfig
}

// NewRanker creates a new top-picks ranker.
func NewRanker(service *Service, cfg RankerConfig) *Ranker {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	return &Ranker{service: service, cfg: cfg}
}

// Universe is one security's inputs for a ranking pass.
type Universe struct {
	Snapshot shared.SecuritySnapshot
	News     []shared.NewsItem
}

// Rank evaluates every security in parallel and partitions the results.
// Evaluation order never affects the output: sorting happens after the
// fan-in. A failure on one symbol is logged and that symbol omitted; it
// never aborts the rest of the pass.
func (r *Ranker) Rank(ctx context.Context, universe []Universe, timeframe domain.Timeframe) domain.TopPicks {
	picks := domain.TopPicks{
		Buys:       []domain.Recommendation{},
		Sells:      []domain.Recommendation{},
		HiddenGems: []domain.Recommendation{},
	}
	if len(universe) == 0 {
		return picks
	}

	jobs := make(chan Universe, len(universe))
	results := make(chan domain.Recommendation, len(universe))

	workers := r.cfg.Workers
	if len(universe) < workers {
		workers = len(universe)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				if ctx.Err() != nil {
					return
				}
				r.evaluateOne(item, timeframe, results)
			}
		}()
	}

	for _, item := range universe {
		jobs <- item
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var ranked []domain.Recommendation
	for rec := range results {
		ranked = append(ranked, rec)
	}

	for _, rec := range ranked {
		switch {
		case rec.Prediction.IsBuy():
			picks.Buys = append(picks.Buys, rec)
		case rec.Prediction.IsSell():
			picks.Sells = append(picks.Sells, rec)
		}
	}

	// Buys: strongest composite first, then higher confidence, then symbol
	// for stable output across runs.
	sort.Slice(picks.Buys, func(i, j int) bool {
		a, b := picks.Buys[i], picks.Buys[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.Symbol < b.Symbol
	})

	// Sells: most negative composite first.
	sort.Slice(picks.Sells, func(i, j int) bool {
		a, b := picks.Sells[i], picks.Sells[j]
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		return a.Symbol < b.Symbol
	})

	caps := make(map[string]*float64, len(universe))
	for _, item := range universe {
		caps[item.Snapshot.Symbol] = item.Snapshot.Fundamentals.MarketCap
	}
	for _, rec := range picks.Buys {
		if mcap := caps[rec.Symbol]; mcap != nil && *mcap < r.cfg.SmallCapThreshold {
			picks.HiddenGems = append(picks.HiddenGems, rec)
		}
	}

	return picks
}

// evaluateOne scores a single security, converting a panic into a skipped
// symbol so one bad input cannot take down the whole ranking pass.
func (r *Ranker) evaluateOne(item Universe, timeframe domain.Timeframe, results chan<- domain.Recommendation) {
	defer func() {
		if rec := recover(); rec != nil {
			r.service.log.Error().
				Str("symbol", item.Snapshot.Symbol).
				Interface("panic", rec).
				Msg("Scoring failed, symbol omitted from ranking")
		}
	}()

	results <- r.service.Predict(item.Snapshot, item.News, timeframe)
}
