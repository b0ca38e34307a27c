package domain

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	payrolldomain "github.com/smallbiznis/payrollrecon/internal/payroll/domain"
	whiteglovedomain "github.com/smallbiznis/payrollrecon/internal/whiteglove/domain"
)

// Dimension is one of the two independent payment stages.
type Dimension string

const (
	DimensionFrontend Dimension = "frontend"
	DimensionBackend  Dimension = "backend"
)

var Dimensions = []Dimension{DimensionFrontend, DimensionBackend}

func ParseDimension(s string) (Dimension, error) {
	switch Dimension(strings.ToLower(strings.TrimSpace(s))) {
	case DimensionFrontend:
		return DimensionFrontend, nil
	case DimensionBackend:
		return DimensionBackend, nil
	default:
		return "", ErrInvalidDimension
	}
}

func (d Dimension) String() string { return string(d) }

// LineColumn is the paid-flag column on payroll_report_lines.
func (d Dimension) LineColumn() string {
	if d == DimensionBackend {
		return "backend_is_paid"
	}
	return "frontend_is_paid"
}

// AccountColumn is the paid-flag column on white_glove_entries.
func (d Dimension) AccountColumn() string {
	return whiteglovedomain.PaidColumn(string(d))
}

func (d Dimension) LinePaid(line payrolldomain.Line) bool {
	if d == DimensionBackend {
		return line.BackendIsPaid
	}
	return line.FrontendIsPaid
}

func (d Dimension) SetLinePaid(line *payrolldomain.Line, paid bool) {
	if d == DimensionBackend {
		line.BackendIsPaid = paid
		return
	}
	line.FrontendIsPaid = paid
}

func (d Dimension) AccountPaid(entry whiteglovedomain.Entry) bool {
	if d == DimensionBackend {
		return entry.BackendPaid
	}
	return entry.FrontendPaid
}

// AllPaid reports whether the line has at least one account and every
// referenced account is present and paid in d.
func (d Dimension) AllPaid(line payrolldomain.Line, accounts map[snowflake.ID]whiteglovedomain.Entry) bool {
	ids := line.EntryIDs()
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		entry, ok := accounts[id]
		if !ok || !d.AccountPaid(entry) {
			return false
		}
	}
	return true
}
