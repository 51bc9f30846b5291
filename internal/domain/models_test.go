package domain

import "testing"

func floatPtr(f float64) *float64 { return &f }

func TestDedupedCloses(t *testing.T) {
	tests := []struct {
		name    string
		history []PricePoint
		want    []float64
	}{
		{
			name: "No duplicates",
			history: []PricePoint{
				{Date: "2026-08-18", Close: 100},
				{Date: "2026-08-19", Close: 102},
				{Date: "2026-08-20", Close: 101},
			},
			want: []float64{100, 102, 101},
		},
		{
			name: "Duplicate date keeps first occurrence",
			history: []PricePoint{
				{Date: "2026-08-18", Close: 100},
				{Date: "2026-08-19", Close: 102},
				{Date: "2026-08-19", Close: 999},
				{Date: "2026-08-20", Close: 101},
			},
			want: []float64{100, 102, 101},
		},
		{
			name:    "Empty history",
			history: nil,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SecuritySnapshot{History: tt.history}
			got := s.DedupedCloses()

			if len(got) != len(tt.want) {
				t.Fatalf("DedupedCloses() len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("DedupedCloses()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestEVToEBITDA(t *testing.T) {
	tests := []struct {
		name string
		f    Fundamentals
		want *float64
	}{
		{
			name: "Both present",
			f:    Fundamentals{EnterpriseValue: floatPtr(1200), EBITDA: floatPtr(100)},
			want: floatPtr(12),
		},
		{
			name: "Missing enterprise value",
			f:    Fundamentals{EBITDA: floatPtr(100)},
			want: nil,
		},
		{
			name: "Missing EBITDA",
			f:    Fundamentals{EnterpriseValue: floatPtr(1200)},
			want: nil,
		},
		{
			name: "Zero EBITDA is unavailable, not infinity",
			f:    Fundamentals{EnterpriseValue: floatPtr(1200), EBITDA: floatPtr(0)},
			want: nil,
		},
		{
			name: "Negative EBITDA still divides",
			f:    Fundamentals{EnterpriseValue: floatPtr(1200), EBITDA: floatPtr(-100)},
			want: floatPtr(-12),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.f.EVToEBITDA()
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("EVToEBITDA() = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("EVToEBITDA() = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestFreeFloatPct(t *testing.T) {
	tests := []struct {
		name string
		f    Fundamentals
		want *float64
	}{
		{
			name: "Both present",
			f:    Fundamentals{FloatShares: floatPtr(250), SharesOutstanding: floatPtr(1000)},
			want: floatPtr(25),
		},
		{
			name: "Missing float shares",
			f:    Fundamentals{SharesOutstanding: floatPtr(1000)},
			want: nil,
		},
		{
			name: "Zero shares outstanding",
			f:    Fundamentals{FloatShares: floatPtr(250), SharesOutstanding: floatPtr(0)},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.f.FreeFloatPct()
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("FreeFloatPct() = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("FreeFloatPct() = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestROEPctKeepsFractionInternal(t *testing.T) {
	f := Fundamentals{ROE: floatPtr(0.18)}

	got := f.ROEPct()
	if got == nil || *got != 18 {
		t.Errorf("ROEPct() = %v, want 18", got)
	}
	// The stored value must stay a fraction.
	if *f.ROE != 0.18 {
		t.Errorf("ROE mutated to %v", *f.ROE)
	}
}

func TestAvailable(t *testing.T) {
	tests := []struct {
		name string
		f    Fundamentals
		want int
	}{
		{
			name: "Nothing reported",
			f:    Fundamentals{},
			want: 0,
		},
		{
			name: "Only market cap does not count",
			f:    Fundamentals{MarketCap: floatPtr(1e12)},
			want: 0,
		},
		{
			name: "PER and ROE",
			f:    Fundamentals{PERatio: floatPtr(12), ROE: floatPtr(0.2)},
			want: 2,
		},
		{
			name: "Derived metrics count only when computable",
			f: Fundamentals{
				PERatio:           floatPtr(12),
				EnterpriseValue:   floatPtr(1000),
				EBITDA:            floatPtr(0), // not computable
				FloatShares:       floatPtr(100),
				SharesOutstanding: floatPtr(1000),
			},
			want: 2, // PER + free float
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Available(); got != tt.want {
				t.Errorf("Available() = %d, want %d", got, tt.want)
			}
		})
	}
}
