package store

import "fmt"

// Dialect supplies the engine-specific SQL fragments the catalog needs.
type Dialect struct {
	name string
}

// DialectFor resolves a GORM dialector name ("mysql" or "sqlite").
func DialectFor(name string) (Dialect, error) {
	switch name {
	case "mysql", "sqlite":
		return Dialect{name: name}, nil
	default:
		return Dialect{}, fmt.Errorf("%w: dialect %q", ErrUnsupportedDriver, name)
	}
}

// Name returns the dialect name.
func (d Dialect) Name() string { return d.name }

// Year returns an integer expression for the calendar year of a date column.
func (d Dialect) Year(col string) string {
	if d.name == "sqlite" {
		return fmt.Sprintf("CAST(strftime('%%Y', %s) AS INTEGER)", col)
	}
	return fmt.Sprintf("YEAR(%s)", col)
}

// Month returns an integer expression (1-12) for the calendar month of a date column.
func (d Dialect) Month(col string) string {
	if d.name == "sqlite" {
		return fmt.Sprintf("CAST(strftime('%%m', %s) AS INTEGER)", col)
	}
	return fmt.Sprintf("MONTH(%s)", col)
}
