package scorers

import (
	"fmt"

	"github.com/sahamlab/signal-engine/internal/modules/analysis/domain"
	"github.com/sahamlab/signal-engine/pkg/formulas"
)

// minHistory is the number of closes the MA20 needs.
const minHistory = 20

// maTolerance is the relative band around MA20 inside which the trend is
// treated as flat. Keeps single-tick noise from flipping the signal.
const maTolerance = 0.001

// TechnicalScorer classifies the short-term price trend from the 5- and
// 20-period simple moving averages of closing price.
type TechnicalScorer struct{}

// NewTechnicalScorer creates a new technical scorer
func NewTechnicalScorer() *TechnicalScorer {
	return &TechnicalScorer{}
}

// Evaluate derives the technical signal from deduplicated chronological
// closes. Fewer than 20 data points is not an error: the trend is simply
// unknown.
func (ts *TechnicalScorer) Evaluate(closes []float64) domain.Signal {
	if len(closes) < minHistory {
		return domain.Signal{
			Label:  domain.LabelNeutral,
			Detail: fmt.Sprintf("insufficient history (n=%d, need %d)", len(closes), minHistory),
		}
	}

	ma5 := formulas.CalculateSMA(closes, 5)
	ma20 := formulas.CalculateSMA(closes, minHistory)
	if ma5 == nil || ma20 == nil {
		return domain.Signal{
			Label:  domain.LabelNeutral,
			Detail: "moving averages unavailable",
		}
	}

	detail := fmt.Sprintf("MA5=%.2f MA20=%.2f", *ma5, *ma20)

	switch {
	case *ma5 > *ma20*(1+maTolerance):
		return domain.Signal{Label: domain.LabelBullish, Detail: detail}
	case *ma5 < *ma20*(1-maTolerance):
		return domain.Signal{Label: domain.LabelBearish, Detail: detail}
	default:
		return domain.Signal{Label: domain.LabelNeutral, Detail: detail}
	}
}
