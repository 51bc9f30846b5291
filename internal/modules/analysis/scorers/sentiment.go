package scorers

import (
	"fmt"

	shared "github.com/sahamlab/signal-engine/internal/domain"
	"github.com/sahamlab/signal-engine/internal/modules/analysis/domain"
)

// sentimentMargin is the share of non-neutral articles one side must exceed
// before the aggregate leaves NEUTRAL.
const sentimentMargin = 0.55

// SentimentScorer reduces a set of labeled news items into one market
// sentiment signal.
type SentimentScorer struct{}

// NewSentimentScorer creates a new sentiment scorer
func NewSentimentScorer() *SentimentScorer {
	return &SentimentScorer{}
}

// Aggregate counts POSITIVE vs NEGATIVE items; NEUTRAL items are excluded
// from the ratio but still counted in the reported article total. Zero
// evidence never fabricates a signal.
func (ss *SentimentScorer) Aggregate(items []shared.NewsItem) domain.Signal {
	if len(items) == 0 {
		return domain.Signal{
			Label:  domain.LabelNeutral,
			Detail: "no related news found",
		}
	}

	positive, negative := 0, 0
	for _, item := range items {
		switch item.SentimentLabel {
		case shared.SentimentPositive:
			positive++
		case shared.SentimentNegative:
			negative++
		}
	}

	detail := fmt.Sprintf("%d positive vs %d negative of %d articles", positive, negative, len(items))

	directional := positive + negative
	if directional == 0 {
		return domain.Signal{Label: domain.LabelNeutral, Detail: detail}
	}

	ratio := float64(positive) / float64(directional)
	switch {
	case ratio > sentimentMargin:
		return domain.Signal{Label: domain.LabelBullish, Detail: detail}
	case ratio < 1-sentimentMargin:
		return domain.Signal{Label: domain.LabelBearish, Detail: detail}
	default:
		return domain.Signal{Label: domain.LabelNeutral, Detail: detail}
	}
}
