package present

import (
	"strings"

	"github.com/couchcryptid/neo-explorer-service/internal/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatNumber renders a number with thousands separators. Floats use
// format (default "%.2f").
func FormatNumber(v any, format string) string {
	switch n := v.(type) {
	case int64:
		if format == "" {
			format = "%d"
		}
		return printer.Sprintf(format, n)
	case int:
		if format == "" {
			format = "%d"
		}
		return printer.Sprintf(format, n)
	case float64:
		if format == "" {
			format = "%.2f"
		}
		return printer.Sprintf(format, n)
	default:
		return FormatCell(v, table.String, "")
	}
}

// FormatCell renders a table cell for display. Identifier columns keep their
// digits ungrouped.
func FormatCell(v any, kind table.Kind, column string) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case int64, int, float64:
		if isIdentifier(column) {
			return table.FormatValue(x)
		}
		if kind == table.Float {
			f, _ := table.ToFloat(x)
			return FormatNumber(f, "")
		}
		return FormatNumber(x, "")
	default:
		return table.FormatValue(x)
	}
}

func isIdentifier(column string) bool {
	c := strings.ToLower(column)
	return c == "id" || strings.HasSuffix(c, "_id") || c == "neo_reference_id"
}
