package scorers

import (
	"fmt"
	"strings"

	shared "github.com/sahamlab/signal-engine/internal/domain"
	"github.com/sahamlab/signal-engine/internal/modules/analysis/domain"
)

// FundamentalsScorer computes the weighted health score over valuation,
// profitability, income and liquidity metrics. Points are awarded only for
// metrics that are actually reported; a missing metric contributes nothing.
type FundamentalsScorer struct{}

// FundamentalsScore is the result of fundamental health scoring.
type FundamentalsScore struct {
	Score     int           // net points; max achievable is 10
	Evaluated int           // how many metrics were present
	Signal    domain.Signal // label + dominant contributing metrics
}

// NewFundamentalsScorer creates a new fundamentals scorer
func NewFundamentalsScorer() *FundamentalsScorer {
	return &FundamentalsScorer{}
}

// Label thresholds, tuned so the maximum achievable score is about 10.
const (
	strongThreshold = 6
	goodThreshold   = 4
	weakThreshold   = 1
)

// Calculate scores the given fundamentals.
//
// Point table:
//   +2 for 0 < PER < 15, +2 for 0 < EV/EBITDA < 12, +1 for PBV < 1.5,
//   +2 for ROE > 15%, +1 for 10% < ROE <= 15%, +1 for dividend yield > 3%,
//   +1 for free float > 7.5%, -1 for EV/EBITDA > 30, -1 for PER > 50.
func (fs *FundamentalsScorer) Calculate(f shared.Fundamentals) FundamentalsScore {
	score := 0
	var reasons []string

	// Valuation
	if f.PERatio != nil {
		per := *f.PERatio
		if per > 0 && per < 15 {
			score += 2
			reasons = append(reasons, fmt.Sprintf("PER %.1fx cheap", per))
		}
		if per > 50 {
			score--
			reasons = append(reasons, fmt.Sprintf("PER %.1fx overvalued", per))
		}
	}
	if ev := f.EVToEBITDA(); ev != nil {
		if *ev > 0 && *ev < 12 {
			score += 2
			reasons = append(reasons, fmt.Sprintf("EV/EBITDA %.1fx cheap", *ev))
		}
		if *ev > 30 {
			score--
			reasons = append(reasons, fmt.Sprintf("EV/EBITDA %.1fx expensive", *ev))
		}
	}
	if f.PBVRatio != nil && *f.PBVRatio < 1.5 {
		score++
		reasons = append(reasons, fmt.Sprintf("PBV %.2fx undervalued", *f.PBVRatio))
	}

	// Profitability. ROE is stored as a fraction; compare as percent.
	if roe := f.ROEPct(); roe != nil {
		if *roe > 15 {
			score += 2
			reasons = append(reasons, fmt.Sprintf("ROE %.1f%% high", *roe))
		} else if *roe > 10 {
			score++
			reasons = append(reasons, fmt.Sprintf("ROE %.1f%% decent", *roe))
		}
	}

	// Income
	if dy := f.DividendYieldPct(); dy != nil && *dy > 3 {
		score++
		reasons = append(reasons, fmt.Sprintf("dividend %.1f%%", *dy))
	}

	// Liquidity / structure
	if ff := f.FreeFloatPct(); ff != nil && *ff > 7.5 {
		score++
		reasons = append(reasons, fmt.Sprintf("float %.1f%%", *ff))
	}

	evaluated := f.Available()
	if evaluated == 0 {
		// Absence is not evidence of weakness.
		return FundamentalsScore{
			Score:     0,
			Evaluated: 0,
			Signal:    domain.Signal{Label: domain.LabelNeutral, Detail: "insufficient data"},
		}
	}

	label := domain.LabelNeutral
	switch {
	case score >= strongThreshold:
		label = domain.LabelStrong
	case score >= goodThreshold:
		label = domain.LabelGood
	case score <= weakThreshold:
		label = domain.LabelWeak
	}

	detail := fmt.Sprintf("score %d", score)
	if len(reasons) > 0 {
		detail = strings.Join(reasons, ", ")
	}

	return FundamentalsScore{
		Score:     score,
		Evaluated: evaluated,
		Signal:    domain.Signal{Label: label, Detail: detail},
	}
}
