package ckanta

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Record is a CKAN object as returned by the API.
type Record map[string]any

// Name returns the record's name, falling back to its id, or "?".
func (r Record) Name() string {
	for _, key := range []string{"name", "id"} {
		if v, ok := r[key].(string); ok && v != "" {
			return v
		}
	}
	return "?"
}

// Keys returns the record's keys in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatCell renders a JSON value for a table or CSV cell. Nested values are
// written as compact JSON.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// TableDef selects which record fields are shown as table columns.
type TableDef struct {
	Columns []string
	Headers []string
}

// Table is extracted tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTableDef builds a TableDef. Headers are truncated or padded to the
// number of columns; blank headers default to the title-cased column name.
func NewTableDef(columns []string, headers []string) TableDef {
	caser := cases.Title(language.Und)
	out := make([]string, len(columns))
	copy(out, headers)
	for i, col := range columns {
		if strings.TrimSpace(out[i]) == "" {
			out[i] = caser.String(strings.ReplaceAll(col, "_", " "))
		}
	}
	return TableDef{Columns: columns, Headers: out}
}

// ParseTableDef builds a TableDef from colon separated columns and headers,
// e.g. "id:name:state" and "ID::Status".
func ParseTableDef(columns, headers string) TableDef {
	var hdrs []string
	if headers != "" {
		hdrs = strings.Split(headers, ":")
	}
	return NewTableDef(splitColumns(columns), hdrs)
}

func splitColumns(s string) []string {
	var cols []string
	for _, c := range strings.Split(s, ":") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

// DefaultTableDef returns the columns shown for records of the object.
func DefaultTableDef(o Object) TableDef {
	switch o {
	case User:
		return ParseTableDef("id:name:fullname:state:sysadmin", "")
	case Group, Organization:
		return ParseTableDef("id:name:title:package_count:state", "")
	default:
		return ParseTableDef("id:name:title:owner_org:state", "")
	}
}

// MembershipTableDef returns the columns shown for membership listings.
func MembershipTableDef() TableDef {
	return ParseTableDef("id:title:state", "")
}

// Extract pulls the defined columns out of records. Missing fields are empty.
func (d TableDef) Extract(records []Record) Table {
	t := Table{Headers: d.Headers, Rows: make([][]string, 0, len(records))}
	for _, rec := range records {
		row := make([]string, len(d.Columns))
		for i, col := range d.Columns {
			row[i] = FormatCell(rec[col])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
