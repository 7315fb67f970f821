// Package sqlexec runs candidate queries against a deterministic two-table
// fixture. Every call gets its own in-memory database, so executions never
// observe each other's side effects.
package sqlexec

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"
)

// Engine selects the embedded SQL engine.
type Engine string

const (
	EngineDuckDB Engine = "duckdb"
	EngineSQLite Engine = "sqlite"
)

// DefaultTimeout bounds a single execution, fixture load included.
const DefaultTimeout = 10 * time.Second

// ParseEngine validates an engine name. Empty selects DuckDB.
func ParseEngine(name string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(name))) {
	case "", EngineDuckDB:
		return EngineDuckDB, nil
	case EngineSQLite, "sqlite3":
		return EngineSQLite, nil
	}
	return "", fmt.Errorf("unknown database engine %q (expected duckdb or sqlite)", name)
}

func (e Engine) driver() (name, dsn string) {
	if e == EngineSQLite {
		return "sqlite3", ":memory:"
	}
	return "duckdb", ""
}

// Outcome holds either a result set or an error message, never both.
type Outcome struct {
	Columns []string `json:"columns,omitempty"`
	Rows    [][]any  `json:"rows,omitempty"`
	Err     string   `json:"error,omitempty"`
}

// OK reports whether the query executed.
func (o Outcome) OK() bool { return o.Err == "" }

// RowCount returns the number of result rows.
func (o Outcome) RowCount() int { return len(o.Rows) }

func failure(format string, args ...any) Outcome {
	msg := fmt.Sprintf(format, args...)
	if strings.TrimSpace(msg) == "" {
		msg = "query failed"
	}
	return Outcome{Err: msg}
}

// Executor runs queries against a fresh fixture database.
type Executor struct {
	Engine  Engine
	Timeout time.Duration
}

// Execute runs query on the default engine.
func Execute(ctx context.Context, query string) Outcome {
	return Executor{}.Execute(ctx, query)
}

// Execute opens a private in-memory database, loads the fixture, runs query
// verbatim and closes the database. Every failure, including panics in the
// driver, is reported in Outcome.Err.
func (e Executor) Execute(ctx context.Context, query string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = failure("internal error: %v", r)
		}
	}()
	if strings.TrimSpace(query) == "" {
		return failure("empty query")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	driver, dsn := e.Engine.driver()
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return failure("open %s: %v", driver, err)
	}
	defer func() { _ = db.Close() }()
	// A second pooled connection would be a different in-memory database.
	db.SetMaxOpenConns(1)

	if err := loadFixture(ctx, db); err != nil {
		return failure("load fixture: %v", err)
	}
	return runQuery(ctx, db, query)
}

func runQuery(ctx context.Context, db *sql.DB, query string) Outcome {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return failure("%v", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return failure("%v", err)
	}
	result := Outcome{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return failure("%v", err)
		}
		for i, v := range values {
			values[i] = normalize(v)
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return failure("%v", err)
	}
	return result
}
