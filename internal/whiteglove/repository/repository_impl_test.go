package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/payrollrecon/internal/testutil"
	whiteglovedomain "github.com/smallbiznis/payrollrecon/internal/whiteglove/domain"
	"github.com/stretchr/testify/require"
)

func TestIDListsSpanSeveralQueries(t *testing.T) {
	prev := inChunkSize
	inChunkSize = 2
	t.Cleanup(func() { inChunkSize = prev })

	ctx := context.Background()
	db := testutil.NewDB(t)
	node := testutil.NewNode(t)
	r := Provide()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	old := now.Add(-200 * 24 * time.Hour)
	recent := now.Add(-24 * time.Hour)

	var entries []*whiteglovedomain.Entry
	var ids, orders []string
	for i := 0; i < 5; i++ {
		installed := old
		if i == 4 {
			installed = recent
		}
		e := &whiteglovedomain.Entry{
			ID:          node.Generate(),
			OrderNumber: fmt.Sprintf("W%d", i),
			InstallDate: &installed,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		entries = append(entries, e)
		ids = append(ids, e.ID.String())
		orders = append(orders, e.OrderNumber)
	}
	require.NoError(t, r.Upsert(ctx, db, entries))

	byOrder, err := r.FindByOrderNumbers(ctx, db, orders)
	require.NoError(t, err)
	require.Len(t, byOrder, 5)

	reversed := []snowflake.ID{entries[4].ID, entries[3].ID, entries[2].ID, entries[1].ID, entries[0].ID}
	found, err := r.FindByIDs(ctx, db, reversed)
	require.NoError(t, err)
	require.Len(t, found, 5)
	for i, e := range found {
		require.Equal(t, ids[i], e.ID.String())
	}

	cutoff := now.Add(-90 * 24 * time.Hour)
	withRepeats := append(reversed, entries[0].ID, entries[1].ID)
	count, err := r.CountBackendOverdue(ctx, db, cutoff, withRepeats)
	require.NoError(t, err)
	require.Equal(t, int64(4), count)

	require.NoError(t, r.SetPaid(ctx, db, []snowflake.ID{entries[0].ID, entries[1].ID, entries[2].ID}, "backend_paid", true))
	count, err = r.CountBackendOverdue(ctx, db, cutoff, reversed)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	count, err = r.CountBackendOverdue(ctx, db, cutoff, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	count, err = r.CountBackendOverdue(ctx, db, cutoff, []snowflake.ID{})
	require.NoError(t, err)
	require.Zero(t, count)
}
