package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestOverdueBoundary(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	exact := now.Add(-90 * day)
	require.False(t, IsOverdue(&exact, now, 90))

	justOver := now.Add(-90*day - day/10)
	require.True(t, IsOverdue(&justOver, now, 90))
	require.Equal(t, 0, OverdueDays(justOver, now, 90))

	older := now.Add(-100*day - day/2)
	require.Equal(t, 10, OverdueDays(older, now, 90))

	require.False(t, IsOverdue(nil, now, 90))
	require.Equal(t, exact, OverdueCutoff(now, 90))
}

func TestPaidPercentage(t *testing.T) {
	require.True(t, PaidPercentage(0, 0).IsZero())
	require.True(t, PaidPercentage(1, 3).Equal(decimal.RequireFromString("33.33")))
	require.True(t, PaidPercentage(2, 3).Equal(decimal.RequireFromString("66.67")))
	require.True(t, PaidPercentage(4, 4).Equal(decimal.NewFromInt(100)))
}

func TestParseDimension(t *testing.T) {
	d, err := ParseDimension(" Backend ")
	require.NoError(t, err)
	require.Equal(t, DimensionBackend, d)
	require.Equal(t, "backend_is_paid", d.LineColumn())
	require.Equal(t, "backend_paid", d.AccountColumn())

	d, err = ParseDimension("frontend")
	require.NoError(t, err)
	require.Equal(t, "frontend_is_paid", d.LineColumn())
	require.Equal(t, "frontend_paid", d.AccountColumn())

	_, err = ParseDimension("middle")
	require.ErrorIs(t, err, ErrInvalidDimension)
}
