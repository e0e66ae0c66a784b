package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"github.com/couchcryptid/neo-explorer-service/internal/table"
)

// scanTable drains rows into a Table. Column kinds come from the driver's
// declared type; expression columns without one take the kind of their first
// non-null value. Columns named is_* are flags.
func scanTable(rows *sql.Rows) (*table.Table, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}

	cols := make([]table.Column, len(types))
	known := make([]bool, len(types))
	for i, ct := range types {
		kind, ok := kindOf(ct.Name(), ct.DatabaseTypeName())
		cols[i] = table.Column{Name: ct.Name(), Kind: kind}
		known[i] = ok
	}

	t := table.New(cols...)
	raw := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make([]any, len(cols))
		for i, v := range raw {
			if !known[i] && v != nil {
				t.Columns[i].Kind = inferKind(v)
				known[i] = true
			}
			row[i] = normalize(v, t.Columns[i].Kind)
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return t, nil
}

func kindOf(name, dbType string) (table.Kind, bool) {
	if strings.HasPrefix(strings.ToLower(name), "is_") {
		return table.Bool, true
	}
	t := strings.ToUpper(dbType)
	switch {
	case t == "":
		return table.String, false
	case strings.Contains(t, "BOOL"):
		return table.Bool, true
	case strings.Contains(t, "INT"):
		return table.Int, true
	case strings.Contains(t, "DEC"), strings.Contains(t, "DOUBLE"), strings.Contains(t, "FLOAT"),
		strings.Contains(t, "REAL"), strings.Contains(t, "NUMERIC"):
		return table.Float, true
	case strings.Contains(t, "DATE"), strings.Contains(t, "TIME"):
		return table.Date, true
	default:
		return table.String, true
	}
}

func inferKind(v any) table.Kind {
	switch x := v.(type) {
	case int64:
		return table.Int
	case float64:
		return table.Float
	case bool:
		return table.Bool
	case time.Time:
		return table.Date
	case []byte:
		return inferString(string(x))
	case string:
		return inferString(x)
	default:
		return table.String
	}
}

func inferString(s string) table.Kind {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return table.Int
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return table.Float
	}
	if _, err := time.Parse(domain.DateLayout, s); err == nil {
		return table.Date
	}
	return table.String
}

// normalize converts a driver value to the cell representation of kind.
func normalize(v any, kind table.Kind) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return fromString(string(x), kind)
	case string:
		return fromString(x, kind)
	case time.Time:
		if kind == table.String {
			return x.Format(time.RFC3339)
		}
		return x.Format(domain.DateLayout)
	case int64:
		switch kind {
		case table.Bool:
			return x != 0
		case table.Float:
			return float64(x)
		default:
			return x
		}
	case float64:
		switch kind {
		case table.Int:
			return int64(x)
		case table.Bool:
			return x != 0
		default:
			return x
		}
	case bool:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func fromString(s string, kind table.Kind) any {
	switch kind {
	case table.Int:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f)
		}
	case table.Float:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case table.Bool:
		return s == "1" || strings.EqualFold(s, "true")
	case table.Date:
		if len(s) >= len(domain.DateLayout) {
			return s[:len(domain.DateLayout)]
		}
	}
	return s
}
