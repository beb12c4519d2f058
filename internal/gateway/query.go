package gateway

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type Collection string

const (
	Products      Collection = "products"
	CartItems     Collection = "cart_items"
	WishlistItems Collection = "wishlist_items"
	Orders        Collection = "orders"
	Profiles      Collection = "profiles"
	ShippingRules Collection = "shipping_rules"
	Categories    Collection = "categories"
	Slideshow     Collection = "slideshow"
)

var knownCollections = map[Collection]bool{
	Products:      true,
	CartItems:     true,
	WishlistItems: true,
	Orders:        true,
	Profiles:      true,
	ShippingRules: true,
	Categories:    true,
	Slideshow:     true,
}

var identRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrNoColumns         = errors.New("no columns selected")
)

type filter struct {
	column string
	value  any
}

// Query is a table-style read against one collection: equality filters,
// a single ordering, and an optional limit.
type Query struct {
	collection Collection
	columns    []string
	filters    []filter
	orderBy    string
	desc       bool
	limit      int
}

func From(c Collection) *Query {
	return &Query{collection: c}
}

func (q *Query) Select(columns ...string) *Query {
	q.columns = append(q.columns, columns...)
	return q
}

func (q *Query) Eq(column string, value any) *Query {
	q.filters = append(q.filters, filter{column: column, value: value})
	return q
}

func (q *Query) OrderBy(column string, desc bool) *Query {
	q.orderBy = column
	q.desc = desc
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

func (q *Query) validate() error {
	if !knownCollections[q.collection] {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, q.collection)
	}
	idents := append([]string{}, q.columns...)
	for _, f := range q.filters {
		idents = append(idents, f.column)
	}
	if q.orderBy != "" {
		idents = append(idents, q.orderBy)
	}
	for _, id := range idents {
		if !identRegex.MatchString(id) {
			return fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
		}
	}
	return nil
}

func (q *Query) where(args []any) (string, []any) {
	if len(q.filters) == 0 {
		return "", args
	}
	parts := make([]string, 0, len(q.filters))
	for _, f := range q.filters {
		args = append(args, f.value)
		parts = append(parts, fmt.Sprintf("%s = $%d", f.column, len(args)))
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

// ToSQL renders the select statement with positional arguments.
func (q *Query) ToSQL() (string, []any, error) {
	if err := q.validate(); err != nil {
		return "", nil, err
	}
	if len(q.columns) == 0 {
		return "", nil, ErrNoColumns
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(q.columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(string(q.collection))

	where, args := q.where(nil)
	sb.WriteString(where)

	if q.orderBy != "" {
		dir := "ASC"
		if q.desc {
			dir = "DESC"
		}
		sb.WriteString(fmt.Sprintf(" ORDER BY %s %s", q.orderBy, dir))
	}
	if q.limit > 0 {
		args = append(args, q.limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	return sb.String(), args, nil
}

// CountSQL renders an exact COUNT(*) over the same filters. Ordering and
// limit are ignored.
func (q *Query) CountSQL() (string, []any, error) {
	if err := q.validate(); err != nil {
		return "", nil, err
	}
	where, args := q.where(nil)
	return "SELECT COUNT(*) FROM " + string(q.collection) + where, args, nil
}
