// Package store is the data access gateway: it executes parameterized SQL
// against the asteroid database and returns column-typed tables.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/neo-explorer-service/internal/config"
	"github.com/couchcryptid/neo-explorer-service/internal/observability"
	"github.com/couchcryptid/neo-explorer-service/internal/table"
	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ErrUnsupportedDriver is returned for a database driver or dialect the gateway cannot serve.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Runner executes one named, parameterized statement. Arguments are always
// bound, never interpolated into the statement text.
type Runner interface {
	Query(ctx context.Context, name, sql string, args ...any) (*table.Table, error)
}

// Gateway is what query producers depend on: statement execution plus the
// dialect fragments and builder needed to assemble statements.
type Gateway interface {
	Runner
	Dialect() Dialect
	Statement(build func(tx *gorm.DB) *gorm.DB) (string, []any)
}

// Store executes statements against a pooled GORM connection.
type Store struct {
	db      *gorm.DB
	dialect Dialect
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Open connects to the configured database and sizes the connection pool.
func Open(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverMySQL:
		dialector = gormmysql.Open(MySQLDSN(cfg))
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DBSQLitePath)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: observability.NewGormLogger(logger, cfg.SlowQueryThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying database: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return New(db, logger, metrics)
}

// MySQLDSN builds the MySQL connection string with escaped credentials.
// Dates are parsed in UTC so calendar days never shift.
func MySQLDSN(cfg *config.Config) string {
	mc := mysql.Config{
		User:   cfg.DBUser,
		Passwd: cfg.DBPassword,
		Net:    "tcp",
		Addr:   cfg.DBHost + ":" + strconv.Itoa(cfg.DBPort),
		DBName: cfg.DBName,
		Params: map[string]string{
			"charset":   "utf8mb4",
			"parseTime": "true",
			"loc":       "UTC",
		},
		AllowNativePasswords: true,
	}
	return mc.FormatDSN()
}

// New wraps an existing GORM handle.
func New(db *gorm.DB, logger *slog.Logger, metrics *observability.Metrics) (*Store, error) {
	dialect, err := DialectFor(db.Dialector.Name())
	if err != nil {
		return nil, err
	}
	return &Store{db: db, dialect: dialect, logger: logger, metrics: metrics}, nil
}

// DB exposes the GORM handle for schema management and seeding.
func (s *Store) DB() *gorm.DB { return s.db }

// Dialect returns the SQL fragments for the connected engine.
func (s *Store) Dialect() Dialect { return s.dialect }

// Statement renders a builder chain into SQL and bound arguments without executing it.
func (s *Store) Statement(build func(tx *gorm.DB) *gorm.DB) (string, []any) {
	return renderStatement(s.db, build)
}

// Query executes sql with bound args and returns every row in database order.
// Errors are returned as-is for the caller to abort its render; there is no retry.
func (s *Store) Query(ctx context.Context, name, sql string, args ...any) (*table.Table, error) {
	start := time.Now()
	t, err := s.query(ctx, sql, args...)
	s.metrics.QueryDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.Queries.WithLabelValues(name, "error").Inc()
		s.logger.Error("query failed", "query", name, "error", err)
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	s.metrics.Queries.WithLabelValues(name, "success").Inc()
	s.metrics.QueryRows.WithLabelValues(name).Observe(float64(t.Len()))
	return t, nil
}

func (s *Store) query(ctx context.Context, sql string, args ...any) (*table.Table, error) {
	rows, err := s.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTable(rows)
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get underlying database: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func renderStatement(db *gorm.DB, build func(tx *gorm.DB) *gorm.DB) (string, []any) {
	var sink []map[string]any
	stmt := build(db.Session(&gorm.Session{DryRun: true})).Find(&sink).Statement
	return stmt.SQL.String(), stmt.Vars
}
