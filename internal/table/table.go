// Package table holds column-typed, in-memory query results. A Table is owned
// by the render pass that produced it and is never shared across passes.
package table

import (
	"fmt"
	"strconv"
)

// Kind is the logical type of a column.
type Kind int

const (
	String Kind = iota
	Int
	Float
	Bool
	Date
)

var kindNames = [...]string{"string", "int", "float", "bool", "date"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// MarshalText encodes the kind by name in JSON.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Numeric reports whether values of the kind can be read as float64.
func (k Kind) Numeric() bool { return k == Int || k == Float }

// Column describes one result column.
type Column struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Table is an ordered set of rows sharing one column layout. Cells hold
// int64, float64, bool, string (dates as YYYY-MM-DD) or nil.
type Table struct {
	Columns []Column `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// New returns an empty table with the given columns.
func New(cols ...Column) *Table {
	return &Table{Columns: cols, Rows: [][]any{}}
}

// Append adds one row. It panics when the value count does not match the columns.
func (t *Table) Append(values ...any) {
	if len(values) != len(t.Columns) {
		panic(fmt.Sprintf("table: append %d values to %d columns", len(values), len(t.Columns)))
	}
	t.Rows = append(t.Rows, values)
}

// Len returns the number of rows; a nil table has none.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return t.Len() == 0 }

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool { return t.Index(name) >= 0 }

// Value returns the cell at row for the named column, or nil.
func (t *Table) Value(row int, name string) any {
	i := t.Index(name)
	if i < 0 || row < 0 || row >= t.Len() {
		return nil
	}
	return t.Rows[row][i]
}

// Float reads a numeric cell as float64. Non-numeric and nil cells read as 0.
func (t *Table) Float(row int, name string) float64 {
	f, _ := ToFloat(t.Value(row, name))
	return f
}

// Int reads a numeric cell as int64.
func (t *Table) Int(row int, name string) int64 {
	switch v := t.Value(row, name).(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

// Bool reads a flag cell; numeric cells are true when non-zero.
func (t *Table) Bool(row int, name string) bool {
	switch v := t.Value(row, name).(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case float64:
		return v != 0
	}
	return false
}

// String formats a cell for display.
func (t *Table) String(row int, name string) string {
	return FormatValue(t.Value(row, name))
}

// Column returns a copy of all values in the named column.
func (t *Table) Column(name string) []any {
	i := t.Index(name)
	if i < 0 {
		return nil
	}
	out := make([]any, t.Len())
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// Sum adds up the numeric values of a column.
func (t *Table) Sum(name string) float64 {
	var total float64
	for r := range t.Rows {
		total += t.Float(r, name)
	}
	return total
}

// Range returns the minimum and maximum numeric value of a column among the
// first limit rows (all rows when limit <= 0). ok is false when there is no
// numeric value.
func (t *Table) Range(name string, limit int) (lo, hi float64, ok bool) {
	i := t.Index(name)
	if i < 0 {
		return 0, 0, false
	}
	n := t.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	for r := 0; r < n; r++ {
		f, isNum := ToFloat(t.Rows[r][i])
		if !isNum {
			continue
		}
		if !ok {
			lo, hi, ok = f, f, true
			continue
		}
		lo = min(lo, f)
		hi = max(hi, f)
	}
	return lo, hi, ok
}

// Head returns a table holding at most the first n rows. The row slices are shared.
func (t *Table) Head(n int) *Table {
	if n < 0 || n > t.Len() {
		n = t.Len()
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

// Rename returns a copy whose columns are renamed by the mapping. Unmapped
// columns keep their names.
func (t *Table) Rename(names map[string]string) *Table {
	cols := make([]Column, len(t.Columns))
	for i, c := range t.Columns {
		if to, ok := names[c.Name]; ok {
			c.Name = to
		}
		cols[i] = c
	}
	return &Table{Columns: cols, Rows: t.Rows}
}

// Select returns a copy holding only the named columns, in the given order.
// Unknown names are skipped.
func (t *Table) Select(names ...string) *Table {
	idx := make([]int, 0, len(names))
	cols := make([]Column, 0, len(names))
	for _, name := range names {
		if i := t.Index(name); i >= 0 {
			idx = append(idx, i)
			cols = append(cols, t.Columns[i])
		}
	}
	rows := make([][]any, t.Len())
	for r, row := range t.Rows {
		out := make([]any, len(idx))
		for j, i := range idx {
			out[j] = row[i]
		}
		rows[r] = out
	}
	return &Table{Columns: cols, Rows: rows}
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ToFloat converts a numeric cell to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// FormatValue renders a cell without locale formatting. nil renders empty.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
