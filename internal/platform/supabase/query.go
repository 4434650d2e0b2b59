package supabase

import (
	"fmt"
	"net/url"
	"strconv"
)

// Query builds PostgREST query parameters.
type Query struct {
	v url.Values
}

// NewQuery returns an empty query.
func NewQuery() *Query {
	return &Query{v: url.Values{}}
}

// Select sets the column list, including embedded resources.
func (q *Query) Select(cols string) *Query {
	q.v.Set("select", cols)
	return q
}

// Eq adds an equality filter. A nil value (or nil pointer) adds nothing; booleans are sent lower-cased.
func (q *Query) Eq(col string, value any) *Query {
	if s, ok := formatValue(value); ok {
		q.v.Set(col, "eq."+s)
	}
	return q
}

// Order sets the ordering, e.g. "created_at.desc".
func (q *Query) Order(order string) *Query {
	q.v.Set("order", order)
	return q
}

// OnConflict names the unique column an upsert merges on.
func (q *Query) OnConflict(col string) *Query {
	q.v.Set("on_conflict", col)
	return q
}

// Values returns the encoded parameters. A nil query has none.
func (q *Query) Values() url.Values {
	if q == nil {
		return url.Values{}
	}
	return q.v
}

func formatValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case *string:
		if x == nil {
			return "", false
		}
		return *x, true
	case bool:
		return strconv.FormatBool(x), true
	case *bool:
		if x == nil {
			return "", false
		}
		return strconv.FormatBool(*x), true
	case int:
		return strconv.Itoa(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprint(x), true
	}
}
