package docstore

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Operator is a filter comparison operator.
type Operator string

const (
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpIn           Operator = "in"
)

var operators = []any{
	OpEqual, OpNotEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual, OpIn,
}

// Filter constrains a data field. Field names refer to keys inside
// Document.Data, except the managed names "id", "createdAt" and "updatedAt"
// which address the document columns directly.
type Filter struct {
	Field string
	Op    Operator
	Value any
}

// Validate reports whether the filter is well formed.
func (f Filter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Field, validation.Required),
		validation.Field(&f.Op, validation.Required, validation.In(operators...)),
	)
}

// Order sorts results by a field.
type Order struct {
	Field string
	Desc  bool
}

// Query is the effective query executed against a Store. TenantID is a
// dedicated field set by the repository layer, never by caller constraints:
// this is what makes the tenant filter non-overridable.
type Query struct {
	TenantID string
	Filters  []Filter
	Orders   []Order
	Limit    int
}

// Validate reports whether the query is well formed. Violations are wrapped
// in ErrInvalidQuery so callers can classify them as permanent.
func (q Query) Validate() error {
	err := validation.ValidateStruct(&q,
		validation.Field(&q.Limit, validation.Min(0)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	for _, f := range q.Filters {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("%w: filter %q: %v", ErrInvalidQuery, f.Field, err)
		}
	}
	for _, o := range q.Orders {
		if o.Field == "" {
			return fmt.Errorf("%w: order by empty field", ErrInvalidQuery)
		}
	}
	return nil
}

// Constraint narrows a query. Constraints are composable and are applied in
// the order given; the repository prepends the tenant scope itself.
type Constraint func(*Query)

// Where adds a field filter.
func Where(field string, op Operator, value any) Constraint {
	return func(q *Query) {
		q.Filters = append(q.Filters, Filter{Field: field, Op: op, Value: value})
	}
}

// OrderBy sorts ascending by field.
func OrderBy(field string) Constraint {
	return func(q *Query) {
		q.Orders = append(q.Orders, Order{Field: field})
	}
}

// OrderByDesc sorts descending by field.
func OrderByDesc(field string) Constraint {
	return func(q *Query) {
		q.Orders = append(q.Orders, Order{Field: field, Desc: true})
	}
}

// Limit caps the number of returned documents.
func Limit(n int) Constraint {
	return func(q *Query) {
		q.Limit = n
	}
}

// BuildQuery materializes constraints into a Query.
func BuildQuery(constraints ...Constraint) Query {
	var q Query
	for _, c := range constraints {
		if c != nil {
			c(&q)
		}
	}
	return q
}
