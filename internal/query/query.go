// Package query parses the list parameters accepted by the REST API:
//
//	query=field:value[;value2],field2:value   or a bare global term
//	sort=field[,asc|desc]
//	page=0&size=500
package query

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mmynk/munera/internal/storage"
)

const (
	// GlobalFilter is the key under which a bare search term is stored.
	GlobalFilter = "global"

	// DefaultPageSize applies when size is omitted.
	DefaultPageSize = 500

	filtersDivider  = ","
	keyValueDivider = ":"
	valuesDivider   = ";"
)

// Filter is one field with one or more accepted values.
type Filter struct {
	Field  string
	Values []string
}

// Value returns the first value, or "" when there is none.
func (f Filter) Value() string {
	if len(f.Values) == 0 {
		return ""
	}
	return f.Values[0]
}

func (f Filter) String() string {
	return f.Field + keyValueDivider + strings.Join(f.Values, valuesDivider)
}

// Query is a parsed set of filters keyed by field. A field given twice
// keeps the last occurrence.
type Query struct {
	filters map[string]Filter
}

// Parse parses a query string. An empty string yields an empty query. A
// single element without a divider becomes the global filter; in a
// multi-element query such elements are ignored.
func Parse(s string) (*Query, error) {
	q := &Query{filters: make(map[string]Filter)}
	if strings.TrimSpace(s) == "" {
		return q, nil
	}

	elements := strings.Split(s, filtersDivider)
	if len(elements) == 1 && !strings.Contains(elements[0], keyValueDivider) {
		q.filters[GlobalFilter] = Filter{Field: GlobalFilter, Values: []string{strings.TrimSpace(elements[0])}}
		return q, nil
	}

	for _, el := range elements {
		idx := strings.Index(el, keyValueDivider)
		if idx == -1 {
			continue
		}
		field := strings.TrimSpace(el[:idx])
		if field == "" {
			return nil, fmt.Errorf("filter %q has no field", el)
		}
		var values []string
		for _, v := range strings.Split(el[idx+1:], valuesDivider) {
			values = append(values, strings.TrimSpace(v))
		}
		q.filters[field] = Filter{Field: field, Values: values}
	}
	return q, nil
}

// Filter returns the filter for field.
func (q *Query) Filter(field string) (Filter, bool) {
	f, ok := q.filters[field]
	return f, ok
}

// Global returns the bare search term, if any.
func (q *Query) Global() string {
	return q.filters[GlobalFilter].Value()
}

// Fields lists the filtered fields in sorted order.
func (q *Query) Fields() []string {
	fields := make([]string, 0, len(q.filters))
	for f := range q.filters {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// IsEmpty reports whether no filter is set.
func (q *Query) IsEmpty() bool {
	return len(q.filters) == 0
}

func (q *Query) String() string {
	parts := make([]string, 0, len(q.filters))
	for _, field := range q.Fields() {
		parts = append(parts, q.filters[field].String())
	}
	return strings.Join(parts, filtersDivider)
}

// ParseSort parses "field[,asc|desc]". An empty string means unsorted.
func ParseSort(s string) ([]storage.Sort, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	field := strings.TrimSpace(parts[0])
	if field == "" {
		return nil, fmt.Errorf("sort %q has no field", s)
	}

	desc := false
	if len(parts) > 1 {
		switch strings.ToLower(strings.TrimSpace(parts[1])) {
		case "asc", "":
		case "desc":
			desc = true
		default:
			return nil, fmt.Errorf("invalid sort direction %q", parts[1])
		}
	}
	return []storage.Sort{{Field: field, Desc: desc}}, nil
}

// ParsePage parses zero-based page and size parameters. Empty values take
// the defaults 0 and DefaultPageSize.
func ParsePage(page, size string) (storage.Page, error) {
	p, err := parseNonNegative("page", page, 0)
	if err != nil {
		return storage.Page{}, err
	}
	n, err := parseNonNegative("size", size, DefaultPageSize)
	if err != nil {
		return storage.Page{}, err
	}
	return Page(p, n)
}

// Page converts a zero-based page number and a page size to a storage
// window. Pages whose offset overflows an int are rejected.
func Page(page, size int) (storage.Page, error) {
	if page < 0 {
		return storage.Page{}, fmt.Errorf("page must not be negative")
	}
	if size <= 0 {
		return storage.Page{}, fmt.Errorf("size must be positive")
	}
	if page > math.MaxInt/size {
		return storage.Page{}, fmt.Errorf("page %d is out of range", page)
	}
	return storage.Page{Limit: size, Offset: page * size}, nil
}

func parseNonNegative(name, s string, def int) (int, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}
	return n, nil
}
