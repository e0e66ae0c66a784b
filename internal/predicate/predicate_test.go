package predicate

import (
	"testing"

	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestEmptySet(t *testing.T) {
	var s Set
	where, args := s.Where()
	assert.Equal(t, "1=1", where)
	assert.Empty(t, args)

	clause, args := s.Clause()
	assert.Empty(t, clause)
	assert.Empty(t, args)
}

func TestAndOrderAndArgs(t *testing.T) {
	s := Set{}.
		And("a.absolute_magnitude_h <= ?", 20.0).
		And("c.close_approach_date BETWEEN ? AND ?", "2024-01-01", "2025-12-31")

	where, args := s.Where()
	assert.Equal(t, "a.absolute_magnitude_h <= ? AND c.close_approach_date BETWEEN ? AND ?", where)
	assert.Equal(t, []any{20.0, "2024-01-01", "2025-12-31"}, args)

	clause, _ := s.Clause()
	assert.Equal(t, " WHERE "+where, clause)
}

func TestAndDoesNotAlias(t *testing.T) {
	base := Set{}.And("x = ?", 1)
	left := base.And("y = ?", 2)
	right := base.And("z = ?", 3)

	assert.Equal(t, 1, base.Len())
	lw, _ := left.Where()
	rw, _ := right.Where()
	assert.Equal(t, "x = ? AND y = ?", lw)
	assert.Equal(t, "x = ? AND z = ?", rw)
}

func TestHazard(t *testing.T) {
	col := "a.is_potentially_hazardous_asteroid"

	all := Set{}.Hazard(col, domain.HazardAll)
	assert.Equal(t, 0, all.Len())

	only := Set{}.Hazard(col, domain.HazardOnly)
	where, args := only.Where()
	assert.Equal(t, col+" = ?", where)
	assert.Equal(t, []any{1}, args)

	excl := Set{}.And("ca.relative_velocity_kmph > ?", 50000).Hazard(col, domain.HazardExcluded)
	where, args = excl.Where()
	assert.Equal(t, "ca.relative_velocity_kmph > ? AND "+col+" = ?", where)
	assert.Equal(t, []any{50000, 0}, args)
}

func TestAndIf(t *testing.T) {
	s := Set{}.AndIf(false, "never = ?", 1).AndIf(true, "always = ?", 2)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "always = ?", s.Conds()[0].SQL)
}
