// Package predicate builds SQL WHERE clauses as an AND-list of bound
// conditions. Condition text only ever comes from code constants; every
// caller-supplied value travels as a bound argument.
package predicate

import (
	"strings"

	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"gorm.io/gorm"
)

// Cond is one SQL condition with its positional arguments.
type Cond struct {
	SQL  string
	Args []any
}

// Set is an immutable AND-list of conditions. The zero value matches everything.
type Set struct {
	conds []Cond
}

// And returns a new Set with one more condition.
func (s Set) And(sql string, args ...any) Set {
	conds := make([]Cond, len(s.conds), len(s.conds)+1)
	copy(conds, s.conds)
	return Set{conds: append(conds, Cond{SQL: sql, Args: args})}
}

// AndIf adds the condition only when ok is true.
func (s Set) AndIf(ok bool, sql string, args ...any) Set {
	if !ok {
		return s
	}
	return s.And(sql, args...)
}

// Hazard adds "<column> = ?" for a hazard-restricting filter and nothing for HazardAll.
func (s Set) Hazard(column string, h domain.HazardFilter) Set {
	v, ok := h.Flag()
	return s.AndIf(ok, column+" = ?", v)
}

// Len returns the number of conditions.
func (s Set) Len() int { return len(s.conds) }

// Conds returns a copy of the conditions.
func (s Set) Conds() []Cond {
	out := make([]Cond, len(s.conds))
	copy(out, s.conds)
	return out
}

// Where renders the conditions joined by AND, or "1=1" when there are none,
// together with the flattened arguments.
func (s Set) Where() (string, []any) {
	if len(s.conds) == 0 {
		return "1=1", nil
	}
	parts := make([]string, len(s.conds))
	var args []any
	for i, c := range s.conds {
		parts[i] = c.SQL
		args = append(args, c.Args...)
	}
	return strings.Join(parts, " AND "), args
}

// Clause renders " WHERE ..." for splicing into a statement template, or an
// empty string when there are no conditions.
func (s Set) Clause() (string, []any) {
	if len(s.conds) == 0 {
		return "", nil
	}
	where, args := s.Where()
	return " WHERE " + where, args
}

// Apply adds every condition to a GORM statement.
func (s Set) Apply(db *gorm.DB) *gorm.DB {
	for _, c := range s.conds {
		db = db.Where(c.SQL, c.Args...)
	}
	return db
}
