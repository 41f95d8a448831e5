// Package binding resolves template dot-paths against the row-based data
// supplied for one generation run. Every field and cell renderer goes
// through Resolve; aggregates and formulas use the numeric coercion rules
// defined here.
package binding

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one data row: field name to scalar value. Values may themselves
// be nested records or lists when the upstream source produces them.
type Record = map[string]any

// Data is the complete input for one generation run: one header record, the
// ordered body row-set, and zero or more named auxiliary row-sets.
type Data struct {
	Header    Record
	Items     []Record
	Auxiliary map[string][]Record
}

// RowSet returns the named row-set. The empty name and "items" both select
// the body row-set; any other name selects an auxiliary set.
func (d Data) RowSet(name string) ([]Record, bool) {
	if name == "" || name == "items" {
		return d.Items, true
	}
	rows, ok := d.Auxiliary[name]
	return rows, ok
}

// Lookup resolves a dot-path routed by its first segment: "header.x" against
// the header record, "items.x" against the first body row, any auxiliary
// name against that set's first row. A path with no matching source is
// resolved against the header record as a whole.
func (d Data) Lookup(path string) (any, bool) {
	head, rest, _ := strings.Cut(path, ".")
	switch head {
	case "header":
		if rest == "" {
			return d.Header, d.Header != nil
		}
		return Resolve(d.Header, rest)
	case "items":
		if len(d.Items) == 0 {
			return nil, false
		}
		if rest == "" {
			return d.Items[0], true
		}
		return Resolve(d.Items[0], rest)
	}
	if rows, ok := d.Auxiliary[head]; ok {
		if len(rows) == 0 {
			return nil, false
		}
		if rest == "" {
			return rows[0], true
		}
		return Resolve(rows[0], rest)
	}
	return Resolve(d.Header, path)
}

// Resolve descends a dot-path through nested records and lists and returns
// the scalar at the end. A list segment without an explicit numeric index
// descends into the list's first element.
func Resolve(v any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	cur := v
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return nil, false
		}
		var ok bool
		cur, ok = descend(cur, seg)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func descend(v any, seg string) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		val, ok := t[seg]
		return val, ok
	case []Record:
		if i, err := strconv.Atoi(seg); err == nil {
			if i < 0 || i >= len(t) {
				return nil, false
			}
			return t[i], true
		}
		if len(t) == 0 {
			return nil, false
		}
		return descend(t[0], seg)
	case []any:
		if i, err := strconv.Atoi(seg); err == nil {
			if i < 0 || i >= len(t) {
				return nil, false
			}
			return t[i], true
		}
		if len(t) == 0 {
			return nil, false
		}
		return descend(t[0], seg)
	default:
		return nil, false
	}
}

// Format renders a resolved scalar the way it is drawn into a cell or
// field. Floats drop trailing zeros; nil renders empty.
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Numeric coerces a scalar to float64 for aggregate and formula use.
// Numeric strings count; everything else reports false and is skipped.
func Numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Interpolate substitutes every ${path} occurrence in s with the formatted
// result of Lookup against d. Unresolvable paths substitute empty.
func Interpolate(s string, d Data) string {
	if !strings.Contains(s, "${") {
		return s
	}
	var b strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			b.WriteString(s)
			break
		}
		end := strings.Index(s[start:], "}")
		if end < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:start])
		path := s[start+2 : start+end]
		if v, ok := d.Lookup(path); ok {
			b.WriteString(Format(v))
		}
		s = s[start+end+1:]
	}
	return b.String()
}
