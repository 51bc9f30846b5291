package analysis

import (
	"math"

	"github.com/rs/zerolog"

	shared "github.com/sahamlab/signal-engine/internal/domain"
	"github.com/sahamlab/signal-engine/internal/modules/analysis/domain"
	"github.com/sahamlab/signal-engine/internal/modules/analysis/scorers"
)

// Service fuses the three pillar signals into a recommendation. All scoring
// is pure: identical inputs produce identical output, safe to call from any
// number of goroutines.
type Service struct {
	technical    *scorers.TechnicalScorer
	fundamentals *scorers.FundamentalsScorer
	sentiment    *scorers.SentimentScorer
	log          zerolog.Logger
}

// NewService creates a new analysis service.
func NewService(log zerolog.Logger) *Service {
	return &Service{
		technical:    scorers.NewTechnicalScorer(),
		fundamentals: scorers.NewFundamentalsScorer(),
		sentiment:    scorers.NewSentimentScorer(),
		log:          log.With().Str("module", "analysis").Logger(),
	}
}

// Predict evaluates one security: each pillar classifies independently, the
// votes are summed into a composite score in [-3, +3], and the composite
// drives prediction label, confidence tier and target price.
func (s *Service) Predict(
	snapshot shared.SecuritySnapshot,
	news []shared.NewsItem,
	timeframe domain.Timeframe,
) domain.Recommendation {
	technical := s.technical.Evaluate(snapshot.DedupedCloses())
	fundamental := s.fundamentals.Calculate(snapshot.Fundamentals).Signal
	sentiment := s.sentiment.Aggregate(news)

	votes := [3]int{technical.Vote(), fundamental.Vote(), sentiment.Vote()}
	composite := votes[0] + votes[1] + votes[2]

	return domain.Recommendation{
		Symbol:      snapshot.Symbol,
		Price:       snapshot.CurrentPrice,
		TargetPrice: projectTarget(snapshot.CurrentPrice, composite, timeframe),
		Prediction:  domain.PredictionFromScore(composite),
		Confidence:  domain.ConfidenceFromVotes(votes),
		Timeframe:   timeframe,
		Score:       composite,
		Signals: domain.Signals{
			Technical:   technical,
			Fundamental: fundamental,
			Sentiment:   sentiment,
		},
	}
}

// projectTarget scales the horizon's maximum move linearly with the
// composite score. Sign-symmetric: +2 and -2 project equal-magnitude moves
// on opposite sides of the base price. A zero composite projects no move.
func projectTarget(price float64, composite int, timeframe domain.Timeframe) float64 {
	move := float64(composite) / 3.0 * timeframe.MaxMovePct()
	return round2(price * (1 + move))
}

// round2 rounds to 2 decimal places
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
