package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// AgeDays is the fractional number of days between install and now.
func AgeDays(install, now time.Time) float64 {
	return now.Sub(install).Hours() / 24
}

// IsOverdue reports whether install lies more than thresholdDays before now.
// A missing install date is never overdue.
func IsOverdue(install *time.Time, now time.Time, thresholdDays int) bool {
	if install == nil {
		return false
	}
	return AgeDays(*install, now) > float64(thresholdDays)
}

// OverdueDays floors the total age before subtracting the threshold, so an
// account 90.1 days old against a 90 day threshold reports 0.
func OverdueDays(install time.Time, now time.Time, thresholdDays int) int {
	return int(math.Floor(AgeDays(install, now))) - thresholdDays
}

// OverdueCutoff is the install time before which an account is overdue.
func OverdueCutoff(now time.Time, thresholdDays int) time.Time {
	return now.Add(-time.Duration(thresholdDays) * 24 * time.Hour)
}

// PaidPercentage is round2(100 × paid / total), or 0 without lines.
func PaidPercentage(paid, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(paid)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
}
