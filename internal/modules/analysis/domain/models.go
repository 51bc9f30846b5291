package domain

import (
	"encoding/json"
	"fmt"
)

// Signal is one pillar's verdict: a label plus a free-text detail explaining
// it. Kept as a structured pair internally; the "LABEL(detail)" string form
// exists only at the JSON boundary.
type Signal struct {
	Label  string
	Detail string
}

// Signal labels shared by the technical and sentiment pillars.
const (
	LabelBullish = "BULLISH"
	LabelBearish = "BEARISH"
	LabelNeutral = "NEUTRAL"
)

// Fundamental pillar labels.
const (
	LabelStrong = "STRONG"
	LabelGood   = "GOOD"
	LabelWeak   = "WEAK"
)

// String renders the external "LABEL(detail)" form.
func (s Signal) String() string {
	if s.Detail == "" {
		return s.Label
	}
	return fmt.Sprintf("%s(%s)", s.Label, s.Detail)
}

// MarshalJSON serializes the signal as its string form.
func (s Signal) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Vote maps the signal's label to a direction: +1 bullish, -1 bearish,
// 0 neutral.
func (s Signal) Vote() int {
	switch s.Label {
	case LabelBullish, LabelStrong, LabelGood:
		return 1
	case LabelBearish, LabelWeak:
		return -1
	default:
		return 0
	}
}

// Prediction is the final directional verdict for a security.
type Prediction int

const (
	StrongSell Prediction = iota - 2
	Sell
	Hold
	Buy
	StrongBuy
)

// PredictionFromScore maps a composite score in [-3, +3] to a prediction.
// Total: every score resolves to exactly one label.
func PredictionFromScore(score int) Prediction {
	switch {
	case score >= 3:
		return StrongBuy
	case score >= 1:
		return Buy
	case score <= -3:
		return StrongSell
	case score <= -1:
		return Sell
	default:
		return Hold
	}
}

// String returns the external label for the prediction.
func (p Prediction) String() string {
	switch p {
	case StrongBuy:
		return "STRONG BUY"
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	case StrongSell:
		return "STRONG SELL"
	default:
		return "NEUTRAL/HOLD"
	}
}

// MarshalJSON serializes the prediction as its label.
func (p Prediction) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// IsBuy reports whether the prediction is buy-side.
func (p Prediction) IsBuy() bool {
	return p == Buy || p == StrongBuy
}

// IsSell reports whether the prediction is sell-side.
func (p Prediction) IsSell() bool {
	return p == Sell || p == StrongSell
}

// Confidence is the qualitative agreement tier across the three pillars.
type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

// ConfidenceFromVotes derives the tier from signal agreement: all three
// directional votes sharing a sign is HIGH, exactly two is MEDIUM, anything
// else (split votes, or fewer than two directional votes) is LOW.
func ConfidenceFromVotes(votes [3]int) Confidence {
	bullish, bearish := 0, 0
	for _, v := range votes {
		switch {
		case v > 0:
			bullish++
		case v < 0:
			bearish++
		}
	}

	agree := bullish
	if bearish > agree {
		agree = bearish
	}

	// Split bull-vs-bear votes never reach MEDIUM.
	if bullish > 0 && bearish > 0 {
		agree = 0
	}

	switch agree {
	case 3:
		return ConfidenceHigh
	case 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// String returns the external label for the confidence tier.
func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "HIGH"
	case ConfidenceMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// MarshalJSON serializes the confidence tier as its label.
func (c Confidence) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// Timeframe is the projection horizon.
type Timeframe string

const (
	Timeframe1M Timeframe = "1m"
	Timeframe3M Timeframe = "3m"
	Timeframe6M Timeframe = "6m"

	DefaultTimeframe = Timeframe3M
)

// ParseTimeframe resolves a caller-supplied timeframe string. Unrecognized
// or empty values fall back to the default; never an error.
func ParseTimeframe(s string) Timeframe {
	switch Timeframe(s) {
	case Timeframe1M, Timeframe3M, Timeframe6M:
		return Timeframe(s)
	default:
		return DefaultTimeframe
	}
}

// MaxMovePct returns the largest percentage move the horizon supports, as a
// fraction. A composite score of ±3 projects the full move; weaker scores
// scale linearly.
func (t Timeframe) MaxMovePct() float64 {
	switch t {
	case Timeframe1M:
		return 0.08
	case Timeframe6M:
		return 0.24
	default:
		return 0.15
	}
}

// Signals groups the three pillar verdicts.
type Signals struct {
	Technical   Signal `json:"technical"`
	Fundamental Signal `json:"fundamental"`
	Sentiment   Signal `json:"sentiment"`
}

// Recommendation is the engine's output for one security and horizon.
type Recommendation struct {
	Symbol      string     `json:"symbol"`
	Price       float64    `json:"price"`
	TargetPrice float64    `json:"target_price"`
	Prediction  Prediction `json:"prediction"`
	Confidence  Confidence `json:"confidence"`
	Timeframe   Timeframe  `json:"timeframe"`
	Score       int        `json:"score"` // composite, -3..+3
	Signals     Signals    `json:"signals"`
}

// TopPicks partitions ranked recommendations into the dashboard categories.
type TopPicks struct {
	Buys       []Recommendation `json:"buys"`
	Sells      []Recommendation `json:"sells"`
	HiddenGems []Recommendation `json:"hidden_gems"`
}
