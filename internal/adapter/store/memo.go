package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/couchcryptid/neo-explorer-service/internal/table"
	"gorm.io/gorm"
)

// Memo answers repeated identical statements within one render pass from
// memory. Create one per render and discard it afterwards; results are never
// shared across passes.
type Memo struct {
	store *Store

	mu      sync.Mutex
	results map[string]*table.Table
	hits    int
}

// Memo returns a fresh per-render gateway backed by s.
func (s *Store) Memo() *Memo {
	return &Memo{store: s, results: make(map[string]*table.Table)}
}

// Query runs the statement once per distinct (sql, args) pair. Failures are not remembered.
func (m *Memo) Query(ctx context.Context, name, sql string, args ...any) (*table.Table, error) {
	key := memoKey(sql, args)

	m.mu.Lock()
	if t, ok := m.results[key]; ok {
		m.hits++
		m.mu.Unlock()
		return t, nil
	}
	m.mu.Unlock()

	t, err := m.store.Query(ctx, name, sql, args...)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.results[key] = t
	m.mu.Unlock()
	return t, nil
}

// Dialect returns the backing store's dialect.
func (m *Memo) Dialect() Dialect { return m.store.Dialect() }

// Statement delegates to the backing store.
func (m *Memo) Statement(build func(tx *gorm.DB) *gorm.DB) (string, []any) {
	return m.store.Statement(build)
}

// Hits returns how many statements were answered from memory.
func (m *Memo) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}

func memoKey(sql string, args []any) string {
	var b strings.Builder
	b.WriteString(sql)
	for _, a := range args {
		fmt.Fprintf(&b, "\x00%T:%v", a, a)
	}
	return b.String()
}
