package domain

import "fmt"

// EVToEBITDA derives the enterprise-value multiple. Returns nil when either
// operand is missing or EBITDA is zero: an unavailable ratio, not an error
// and never an infinity.
func (f *Fundamentals) EVToEBITDA() *float64 {
	if f.EnterpriseValue == nil || f.EBITDA == nil || *f.EBITDA == 0 {
		return nil
	}
	v := *f.EnterpriseValue / *f.EBITDA
	return &v
}

// FreeFloatPct derives the free-float percentage (0-100). Nil when either
// share count is missing or shares outstanding is zero.
func (f *Fundamentals) FreeFloatPct() *float64 {
	if f.FloatShares == nil || f.SharesOutstanding == nil || *f.SharesOutstanding == 0 {
		return nil
	}
	v := *f.FloatShares / *f.SharesOutstanding * 100
	return &v
}

// ROEPct returns ROE as a percentage for display and threshold checks.
// Internally ROE stays a fraction; the ×100 happens only here.
func (f *Fundamentals) ROEPct() *float64 {
	if f.ROE == nil {
		return nil
	}
	v := *f.ROE * 100
	return &v
}

// DividendYieldPct returns the dividend yield as a percentage.
func (f *Fundamentals) DividendYieldPct() *float64 {
	if f.DividendYield == nil {
		return nil
	}
	v := *f.DividendYield * 100
	return &v
}

// Available reports how many of the scoreable metrics are present. Used to
// distinguish "weak fundamentals" from "no fundamentals at all".
func (f *Fundamentals) Available() int {
	n := 0
	for _, p := range []*float64{f.PERatio, f.PBVRatio, f.ROE, f.DividendYield} {
		if p != nil {
			n++
		}
	}
	if f.EVToEBITDA() != nil {
		n++
	}
	if f.FreeFloatPct() != nil {
		n++
	}
	return n
}

// FormatCurrency buckets a currency magnitude for display (trillions,
// billions, plain). Scoring never uses the bucketed form.
func FormatCurrency(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
