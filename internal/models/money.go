package models

import "fmt"

// FormatMoney renders a USD amount with four decimal places, matching the
// precision the telemetry API uses. Amounts arrive pre-rounded; callers must
// format raw values directly and sum raw values before formatting, so that
// component costs always reconcile with displayed totals.
func FormatMoney(v float64) string {
	return fmt.Sprintf("$%.4f", v)
}

// FormatMoneyShort renders a USD amount with two decimal places for compact
// table columns.
func FormatMoneyShort(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// SumCosts adds raw component costs without intermediate rounding.
func SumCosts(parts []float64) float64 {
	total := 0.0
	for _, p := range parts {
		total += p
	}
	return total
}
