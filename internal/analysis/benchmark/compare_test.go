package benchmark

import (
	"math"
	"testing"

	"github.com/j-veylop/agentlens-tui/internal/models"
)

func TestCompare_LatencyFasterBaseline(t *testing.T) {
	// Current call took 12s; the fastest same-operation call took 4s.
	c := Compare(12000, 4000, false)

	if !c.HasData {
		t.Fatal("expected data")
	}
	if c.Ratio != 3.0 {
		t.Errorf("Ratio = %v, want 3.0", c.Ratio)
	}
	if c.Direction != models.DirectionFaster {
		t.Errorf("Direction = %q, want faster", c.Direction)
	}
	if got := FormatRatio(c); got != "3.0x faster" {
		t.Errorf("FormatRatio = %q, want \"3.0x faster\"", got)
	}
}

func TestCompare_CurrentAlreadyFastest(t *testing.T) {
	c := Compare(2000, 6000, false)
	if c.Direction != models.DirectionSlower {
		t.Errorf("Direction = %q, want slower (baseline loses)", c.Direction)
	}
	if c.Ratio >= 1 {
		t.Errorf("Ratio = %v, want < 1 when current wins", c.Ratio)
	}
}

func TestCompare_QualityHigherIsBetter(t *testing.T) {
	// Baseline quality 9 vs current 6: baseline outperforms.
	c := Compare(6, 9, true)
	if c.Direction != models.DirectionBetter {
		t.Errorf("Direction = %q, want better", c.Direction)
	}
	if c.Ratio != 1.5 {
		t.Errorf("Ratio = %v, want 1.5", c.Ratio)
	}

	c = Compare(9, 6, true)
	if c.Direction != models.DirectionWorse {
		t.Errorf("Direction = %q, want worse", c.Direction)
	}
}

func TestCompare_NeutralGuards(t *testing.T) {
	inputs := []struct {
		name              string
		current, baseline float64
	}{
		{"zero baseline", 100, 0},
		{"zero current", 0, 100},
		{"negative baseline", 100, -5},
		{"NaN current", math.NaN(), 100},
		{"Inf baseline", 100, math.Inf(1)},
	}

	for _, tt := range inputs {
		t.Run(tt.name, func(t *testing.T) {
			c := Compare(tt.current, tt.baseline, false)
			if c.HasData {
				t.Error("expected neutral no-data result")
			}
			if c.Ratio != 0 {
				t.Errorf("Ratio = %v, want 0", c.Ratio)
			}
			if c.Direction != models.DirectionNone {
				t.Errorf("Direction = %q, want none", c.Direction)
			}
			if math.IsNaN(c.Ratio) || math.IsInf(c.Ratio, 0) {
				t.Error("ratio must never be NaN/Inf")
			}
		})
	}
}

func TestCompare_RatioAlwaysNonNegative(t *testing.T) {
	values := []float64{0, 1, 10, 4000, 12000}
	for _, cur := range values {
		for _, base := range values {
			c := Compare(cur, base, false)
			if c.Ratio < 0 {
				t.Errorf("Compare(%v, %v) ratio = %v, want >= 0", cur, base, c.Ratio)
			}
		}
	}
}

func TestBuild_CalloutFires(t *testing.T) {
	fastest := 4000.0
	b := Build(12000, References{FastestSameOp: &fastest}, false, 2.0)

	if b.FastestSameOp == nil {
		t.Fatal("expected fastest-same-op comparison")
	}
	if !b.ShowOptimizationTip {
		t.Error("callout should fire at 3.0x against a 2.0x threshold")
	}
}

func TestBuild_CalloutNeedsFastestSameOp(t *testing.T) {
	median := 4000.0
	b := Build(12000, References{MedianForOp: &median}, false, 2.0)

	if b.MedianForOperation == nil {
		t.Fatal("expected median comparison")
	}
	if b.ShowOptimizationTip {
		t.Error("callout must not fire without a fastest-same-operation reference")
	}
}

func TestBuild_CalloutBelowThreshold(t *testing.T) {
	fastest := 8000.0
	b := Build(12000, References{FastestSameOp: &fastest}, false, 2.0)
	if b.ShowOptimizationTip {
		t.Error("callout must not fire at 1.5x against a 2.0x threshold")
	}
}

func TestBuild_PartialReferences(t *testing.T) {
	// Only the similar-context sibling has resolved; the view must still work.
	similar := 5000.0
	b := Build(10000, References{FastestSimilar: &similar}, false, 2.0)

	if b.FastestSameOp != nil || b.MedianForOperation != nil {
		t.Error("absent references must stay nil")
	}
	if b.FastestSimilar == nil || !b.FastestSimilar.HasData {
		t.Error("resolved reference should compare")
	}
}

func TestBarWidth(t *testing.T) {
	tests := []struct {
		name        string
		value, deno float64
		want        float64
	}{
		{"half", 2000, 4000, 50},
		{"full", 4000, 4000, 100},
		{"capped", 12000, 4000, 100},
		{"zero denominator", 100, 0, 0},
		{"zero value", 0, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BarWidth(tt.value, tt.deno); got != tt.want {
				t.Errorf("BarWidth(%v, %v) = %v, want %v", tt.value, tt.deno, got, tt.want)
			}
		})
	}
}

func TestFormatRatio_NoData(t *testing.T) {
	if got := FormatRatio(models.Comparison{}); got != "no data" {
		t.Errorf("FormatRatio = %q, want \"no data\"", got)
	}
}
