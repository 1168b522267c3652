// Package severity classifies raw metric values into ordered severity labels
// using configurable cutover ladders.
package severity

import "math"

// Label is a severity bucket name produced by a ladder.
type Label string

// LabelUnknown is returned for null or NaN inputs.
const LabelUnknown Label = "unknown"

// Rung is one cutover in a ladder.
type Rung struct {
	Cutoff float64
	Label  Label
}

// Mode selects how a value is matched against a rung's cutoff.
type Mode int

const (
	// GreaterThan matches when value > cutoff (higher is worse, e.g. latency).
	GreaterThan Mode = iota
	// LessThan matches when value < cutoff (lower is worse, e.g. quality).
	LessThan
)

// Ladder is an ordered list of cutovers evaluated top-down, first match wins.
// Values that match no rung fall through to Default.
type Ladder struct {
	Rungs   []Rung
	Mode    Mode
	Default Label
}

// Classify maps a value to a severity label. It is total: nil and NaN inputs
// map to LabelUnknown rather than failing.
func (l Ladder) Classify(v *float64) Label {
	if v == nil || math.IsNaN(*v) {
		return LabelUnknown
	}
	for _, r := range l.Rungs {
		switch l.Mode {
		case GreaterThan:
			if *v > r.Cutoff {
				return r.Label
			}
		case LessThan:
			if *v < r.Cutoff {
				return r.Label
			}
		}
	}
	return l.Default
}

// ClassifyValue is Classify for callers that always have a value.
func (l Ladder) ClassifyValue(v float64) Label {
	return l.Classify(&v)
}
