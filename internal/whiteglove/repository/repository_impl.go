package repository

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/bwmarrin/snowflake"
	whiteglovedomain "github.com/smallbiznis/payrollrecon/internal/whiteglove/domain"
	"github.com/smallbiznis/payrollrecon/pkg/db/option"
	"github.com/smallbiznis/payrollrecon/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// inChunkSize is a var so tests can force several round trips.
var inChunkSize = option.MaxInValues

type repo struct{}

func Provide() whiteglovedomain.Repository {
	return &repo{}
}

func store(db *gorm.DB) repository.Repository[whiteglovedomain.Entry] {
	return repository.ProvideStore[whiteglovedomain.Entry](db)
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, entries []*whiteglovedomain.Entry) error {
	return store(db).Upsert(ctx, entries, clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_number"}},
		DoUpdates: clause.AssignmentColumns(whiteglovedomain.FeedColumns),
	})
}

func (r *repo) FindByOrderNumbers(ctx context.Context, db *gorm.DB, orderNumbers []string) ([]whiteglovedomain.Entry, error) {
	out := []whiteglovedomain.Entry{}
	for _, chunk := range option.Chunks(orderNumbers, inChunkSize) {
		items, err := store(db).Find(ctx, nil, option.WhereIn("order_number", chunk))
		if err != nil {
			return nil, err
		}
		out = append(out, deref(items)...)
	}
	return out, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]whiteglovedomain.Entry, error) {
	out := []whiteglovedomain.Entry{}
	for _, chunk := range option.Chunks(ids, inChunkSize) {
		items, err := store(db).Find(ctx, nil, option.WhereIn("id", chunk))
		if err != nil {
			return nil, err
		}
		out = append(out, deref(items)...)
	}
	slices.SortFunc(out, func(a, b whiteglovedomain.Entry) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *repo) SetPaid(ctx context.Context, db *gorm.DB, ids []snowflake.ID, column string, paid bool) error {
	now := time.Now().UTC()
	for _, chunk := range option.Chunks(ids, inChunkSize) {
		_, err := store(db).UpdateWhere(ctx, map[string]any{
			column:       paid,
			"updated_at": now,
		}, option.WhereIn("id", chunk))
		if err != nil {
			return err
		}
	}
	return nil
}

// CountBackendOverdue counts unpaid backend entries installed before cutoff.
// A nil ids counts every entry; otherwise only the distinct ids given.
func (r *repo) CountBackendOverdue(ctx context.Context, db *gorm.DB, cutoff time.Time, ids []snowflake.ID) (int64, error) {
	overdue := []option.QueryOption{
		option.ApplyOperator(option.Condition{Field: "backend_paid", Value: false}),
		option.ApplyOperator(option.Condition{Field: "install_date", Operator: option.LT, Value: cutoff}),
	}
	if ids == nil {
		return store(db).Count(ctx, nil, overdue...)
	}

	distinct := slices.Clone(ids)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)

	var total int64
	for _, chunk := range option.Chunks(distinct, inChunkSize) {
		n, err := store(db).Count(ctx, nil, append(slices.Clone(overdue), option.WhereIn("id", chunk))...)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func deref[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out
}
