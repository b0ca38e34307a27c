package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/payrollrecon/pkg/db/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type widget struct {
	ID    int64  `gorm:"primaryKey"`
	Code  string `gorm:"uniqueIndex"`
	Label string
	Paid  bool
}

func setupStore(t *testing.T) (Repository[widget], *gorm.DB) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&widget{}))
	return ProvideStore[widget](conn), conn
}

func TestStoreFindAndCount(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupStore(t)

	require.NoError(t, repo.BatchCreate(ctx, []*widget{
		{ID: 1, Code: "b", Label: "two"},
		{ID: 2, Code: "a", Label: "one"},
		{ID: 3, Code: "c", Label: "three", Paid: true},
	}))

	items, err := repo.Find(ctx, nil, option.OrderBy("code"))
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].Code)

	items, err = repo.Find(ctx, nil, option.WhereIn("id", []int64{1, 3}), option.OrderByDesc("id"))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(3), items[0].ID)

	items, err = repo.Find(ctx, nil, option.WhereIn("id", []int64{}))
	require.NoError(t, err)
	assert.Empty(t, items)

	count, err := repo.Count(ctx, &widget{Paid: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	missing, err := repo.FindOne(ctx, &widget{Code: "zz"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStoreUpsertKeepsUntouchedColumns(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupStore(t)

	require.NoError(t, repo.Create(ctx, &widget{ID: 1, Code: "a", Label: "old", Paid: true}))
	require.NoError(t, repo.Upsert(ctx, []*widget{{ID: 99, Code: "a", Label: "new"}}, clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"label"}),
	}))

	got, err := repo.FindOne(ctx, &widget{Code: "a"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "new", got.Label)
	assert.True(t, got.Paid)
}

func TestStoreUpdateAndDeleteWhere(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupStore(t)

	require.NoError(t, repo.BatchCreate(ctx, []*widget{
		{ID: 1, Code: "a"}, {ID: 2, Code: "b"}, {ID: 3, Code: "c"},
	}))

	n, err := repo.UpdateWhere(ctx, map[string]any{"paid": true}, option.WhereIn("id", []int64{1, 2}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.UpdateWhere(ctx, map[string]any{"paid": true})
	assert.ErrorIs(t, err, gorm.ErrMissingWhereClause)

	require.NoError(t, repo.Update(ctx, int64(3), map[string]any{"label": "x"}))
	n, err = repo.DeleteWhere(ctx, option.ApplyOperator(option.Condition{Field: "paid", Operator: option.EQ, Value: true}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, repo.Delete(ctx, int64(3)))
	count, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}
