package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueryOption mutates a gorm statement before it is executed.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type QueryOptionFunc func(db *gorm.DB) *gorm.DB

func (f QueryOptionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

type Operator string

const (
	EQ    Operator = "="
	NEQ   Operator = "<>"
	GT    Operator = ">"
	GTE   Operator = ">="
	LT    Operator = "<"
	LTE   Operator = "<="
	IN    Operator = "IN"
	NOTIN Operator = "NOT IN"
)

// Condition filters Field by Operator against Value.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

// ApplyOperator appends a WHERE clause for cond.
func ApplyOperator(cond Condition) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		column := clause.Column{Name: cond.Field}
		switch cond.Operator {
		case IN:
			return db.Where(clause.IN{Column: column, Values: toValues(cond.Value)})
		case NOTIN:
			return db.Not(clause.IN{Column: column, Values: toValues(cond.Value)})
		case "":
			return db.Where(clause.Eq{Column: column, Value: cond.Value})
		default:
			return db.Where(fmt.Sprintf("%s %s ?", cond.Field, cond.Operator), cond.Value)
		}
	})
}

// WhereIn restricts field to values. An empty set matches nothing.
func WhereIn[V any](field string, values []V) QueryOption {
	return ApplyOperator(Condition{Field: field, Operator: IN, Value: values})
}

// QuerySortBy orders by Field when it is allowed, falling back to Default.
type QuerySortBy struct {
	Allow   map[string]bool
	Field   string
	Desc    bool
	Default string
}

func WithSortBy(sort QuerySortBy) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		field := strings.TrimSpace(sort.Field)
		if field == "" || !sort.Allow[field] {
			field = sort.Default
		}
		if field == "" {
			return db
		}
		return db.Order(clause.OrderByColumn{Column: clause.Column{Name: field}, Desc: sort.Desc})
	})
}

// OrderBy orders ascending by each column in turn.
func OrderBy(columns ...string) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		for _, column := range columns {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}})
		}
		return db
	})
}

// OrderByDesc orders descending by each column in turn.
func OrderByDesc(columns ...string) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		for _, column := range columns {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: true})
		}
		return db
	})
}

func WithLimit(limit int) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

func toValues(value any) []any {
	switch v := value.(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	case nil:
		return nil
	}
	return reflectValues(value)
}
