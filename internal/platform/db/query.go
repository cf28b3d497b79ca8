package db

import (
	"fmt"
	"strings"
)

// Query assembles a SELECT with positional arguments. Clauses passed to Add
// use %d where the argument index belongs, e.g. "doctor = $%d".
type Query struct {
	table   string
	cols    string
	where   []string
	args    []interface{}
	orderBy string
	limit   int
	offset  int
}

func NewQuery(table, cols string) *Query {
	return &Query{table: table, cols: cols}
}

// Add appends a WHERE condition with one argument.
func (q *Query) Add(clause string, arg interface{}) *Query {
	q.args = append(q.args, arg)
	q.where = append(q.where, fmt.Sprintf(clause, len(q.args)))
	return q
}

// Raw appends a WHERE condition that takes no arguments.
func (q *Query) Raw(clause string) *Query {
	q.where = append(q.where, clause)
	return q
}

// Eq adds column = value when value is non-empty.
func (q *Query) Eq(column, value string) *Query {
	if value == "" {
		return q
	}
	return q.Add(column+" = $%d", value)
}

// Between adds an inclusive date range; either bound may be empty.
func (q *Query) Between(column, from, to string) *Query {
	if from != "" {
		q.Add(column+" >= $%d::date", from)
	}
	if to != "" {
		q.Add(column+" <= $%d::date", to)
	}
	return q
}

// AnyOf adds column = ANY(values) when values is non-empty.
func (q *Query) AnyOf(column string, values []string) *Query {
	if len(values) == 0 {
		return q
	}
	return q.Add(column+" = ANY($%d)", values)
}

func (q *Query) OrderBy(orderBy string) *Query {
	q.orderBy = orderBy
	return q
}

// Page sets LIMIT/OFFSET. A non-positive limit leaves the result unbounded.
func (q *Query) Page(limit, offset int) *Query {
	q.limit = limit
	q.offset = offset
	return q
}

func (q *Query) whereSQL() string {
	if len(q.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.where, " AND ")
}

// SQL renders the SELECT statement.
func (q *Query) SQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s%s", q.cols, q.table, q.whereSQL())
	if q.orderBy != "" {
		b.WriteString(" ORDER BY " + q.orderBy)
	}
	if q.limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.limit)
		if q.offset > 0 {
			fmt.Fprintf(&b, " OFFSET %d", q.offset)
		}
	}
	return b.String()
}

// CountSQL renders a COUNT(*) over the same conditions.
func (q *Query) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", q.table, q.whereSQL())
}

func (q *Query) Args() []interface{} {
	return q.args
}
