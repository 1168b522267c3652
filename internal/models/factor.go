package models

// FactorSeverity ranks root-cause factors. The order critical < warning < info
// is total and drives the stable sort of diagnosis output.
type FactorSeverity int

const (
	// SeverityCritical marks a factor that makes the record unhealthy.
	SeverityCritical FactorSeverity = iota
	// SeverityWarning marks a factor worth attention.
	SeverityWarning
	// SeverityInfo marks an advisory factor.
	SeverityInfo
)

// String returns the lowercase label for a severity.
func (s FactorSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Factor is one ranked root-cause explanation attached to a call or pattern.
type Factor struct {
	ID       string
	Label    string
	Severity FactorSeverity
	Impact   string // human-readable impact, e.g. "+8.2s over median"
	HasFix   bool
}

// Diagnosis is the aggregated, deduped, severity-sorted factor list for one
// record plus the overall health verdict.
type Diagnosis struct {
	Factors []Factor
	Healthy bool
}

// CriticalCount returns the number of critical factors.
func (d *Diagnosis) CriticalCount() int {
	n := 0
	for _, f := range d.Factors {
		if f.Severity == SeverityCritical {
			n++
		}
	}
	return n
}
