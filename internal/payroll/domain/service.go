package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/payrollrecon/internal/commission"
	"github.com/smallbiznis/payrollrecon/internal/feed"
	whiteglovedomain "github.com/smallbiznis/payrollrecon/internal/whiteglove/domain"
)

type Service interface {
	// Ingest writes plans, agents and white glove entries derived from the feeds.
	Ingest(ctx context.Context, installs, whiteGlove []feed.Row, matched []feed.Matched) (*IngestResult, error)
	// Generate matches, ingests, resolves and aggregates. The report is not persisted.
	Generate(ctx context.Context, installs, whiteGlove []feed.Row) (*Report, error)

	SaveBatch(ctx context.Context, name string, lines []commission.ReportLine) (*Batch, error)
	RenameBatch(ctx context.Context, id snowflake.ID, name string) (*Batch, error)
	DeleteBatch(ctx context.Context, id snowflake.ID) error
	ListBatches(ctx context.Context) ([]Batch, error)
	GetBatch(ctx context.Context, id snowflake.ID) (*Batch, error)
	ListLines(ctx context.Context, batchID snowflake.ID) ([]Line, error)
	CountLines(ctx context.Context, batchID snowflake.ID) (int64, error)
}

type IngestResult struct {
	Plans   int
	Agents  int
	Entries map[string]whiteglovedomain.Entry
}

type Report struct {
	Matched int                     `json:"matched"`
	Plans   int                     `json:"plans"`
	Agents  int                     `json:"agents"`
	Entries int                     `json:"entries"`
	Lines   []commission.ReportLine `json:"lines"`
}

var (
	ErrInvalidField      = errors.New("invalid_field")
	ErrInvalidBatchName  = errors.New("invalid_batch_name")
	ErrEmptyReport       = errors.New("empty_report")
	ErrInvalidReportLine = errors.New("invalid_report_line")
	ErrBatchNotFound     = errors.New("batch_not_found")
	ErrLineNotFound      = errors.New("line_not_found")
)

// FieldError pinpoints a feed cell that could not be parsed. Row is the
// 1-based position of the record within the pass that read it.
type FieldError struct {
	Feed   string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s row %d: column %q has invalid value %q: %v", e.Feed, e.Row, e.Column, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return ErrInvalidField }
