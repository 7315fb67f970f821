package sqlexec

import (
	"context"
	"math/big"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"cfgprobe/internal/testutil"
)

var engines = []Engine{EngineDuckDB, EngineSQLite}

func run(t *testing.T, engine Engine, query string) Outcome {
	t.Helper()
	ctx := testutil.Context(t, 30*time.Second)
	return Executor{Engine: engine}.Execute(ctx, query)
}

func int64Column(t *testing.T, out Outcome, name string) []int64 {
	t.Helper()
	idx := -1
	for i, col := range out.Columns {
		if strings.EqualFold(col, name) {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.Fatalf("column %s not in %v", name, out.Columns)
	}
	values := make([]int64, 0, len(out.Rows))
	for _, row := range out.Rows {
		v, ok := row[idx].(int64)
		if !ok {
			t.Fatalf("expected int64 in %s, got %T", name, row[idx])
		}
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return values
}

// TestSelectWithLimit verifies the age filter returns every user over thirty.
func TestSelectWithLimit(t *testing.T) {
	for _, engine := range engines {
		out := run(t, engine, "SELECT id, name FROM users WHERE age > 30 LIMIT 3")
		if !out.OK() {
			t.Fatalf("%s: unexpected error: %s", engine, out.Err)
		}
		if diff := cmp.Diff([]string{"id", "name"}, out.Columns); diff != "" {
			t.Fatalf("%s: columns mismatch (-want +got):\n%s", engine, diff)
		}
		if diff := cmp.Diff([]int64{3, 5, 6}, int64Column(t, out, "id")); diff != "" {
			t.Fatalf("%s: ids mismatch (-want +got):\n%s", engine, diff)
		}
	}
}

// TestJoin verifies join rows for orders above one hundred.
func TestJoin(t *testing.T) {
	for _, engine := range engines {
		out := run(t, engine, "SELECT * FROM users JOIN orders ON users.id = orders.user_id WHERE orders.amount > 100")
		if !out.OK() {
			t.Fatalf("%s: unexpected error: %s", engine, out.Err)
		}
		if out.RowCount() != 5 {
			t.Fatalf("%s: expected 5 rows, got %d", engine, out.RowCount())
		}
		if diff := cmp.Diff([]int64{120, 150, 200, 220, 300}, int64Column(t, out, "amount")); diff != "" {
			t.Fatalf("%s: amounts mismatch (-want +got):\n%s", engine, diff)
		}
	}
}

// TestDefaultCaseQueries verifies reference answers for the built-in SQL prompts.
func TestDefaultCaseQueries(t *testing.T) {
	cases := []struct {
		query string
		rows  int
	}{
		{"SELECT id, name FROM users WHERE age > 30 LIMIT 3", 3},
		{"SELECT id, name FROM users WHERE (city = 'Tokyo' OR city = 'Kyoto') AND age >= 33 LIMIT 10", 2},
		{"SELECT * FROM users WHERE NOT city = 'Tokyo' AND age < 30 LIMIT 10", 2},
		{"SELECT users.name, orders.amount FROM orders JOIN users ON orders.user_id = users.id WHERE orders.amount > 100 LIMIT 5", 5},
		{"SELECT users.name, orders.amount FROM orders JOIN users ON orders.user_id = users.id WHERE orders.status = 'paid' AND orders.amount >= 150 LIMIT 10", 4},
	}
	for _, engine := range engines {
		for _, tc := range cases {
			out := run(t, engine, tc.query)
			if !out.OK() {
				t.Fatalf("%s: %q failed: %s", engine, tc.query, out.Err)
			}
			if out.RowCount() != tc.rows {
				t.Fatalf("%s: %q returned %d rows, want %d", engine, tc.query, out.RowCount(), tc.rows)
			}
		}
	}
}

// TestEmptyResultIsSuccess verifies zero rows still report columns.
func TestEmptyResultIsSuccess(t *testing.T) {
	for _, engine := range engines {
		out := run(t, engine, "SELECT id FROM users WHERE age > 100")
		if !out.OK() {
			t.Fatalf("%s: unexpected error: %s", engine, out.Err)
		}
		if out.RowCount() != 0 || len(out.Columns) != 1 {
			t.Fatalf("%s: unexpected outcome %+v", engine, out)
		}
	}
}

// TestErrorsAreCaptured verifies failing queries produce an error string only.
func TestErrorsAreCaptured(t *testing.T) {
	queries := []string{
		"SELECT users.amount FROM users",
		"SELECT nope FROM users",
		"SELECT * FROM customers",
		"SELEC id FROM users",
		"",
		"   ",
	}
	for _, engine := range engines {
		for _, q := range queries {
			out := run(t, engine, q)
			if out.OK() {
				t.Fatalf("%s: expected %q to fail", engine, q)
			}
			if out.Rows != nil || out.Columns != nil {
				t.Fatalf("%s: expected no payload with error, got %+v", engine, out)
			}
		}
	}
}

// TestExecutionsAreIsolated verifies mutations never leak into later calls.
func TestExecutionsAreIsolated(t *testing.T) {
	for _, engine := range engines {
		_ = run(t, engine, "DELETE FROM orders")
		out := run(t, engine, "SELECT id FROM orders")
		if !out.OK() || out.RowCount() != 8 {
			t.Fatalf("%s: expected a fresh fixture, got %+v", engine, out)
		}
	}
}

// TestCanceledContext verifies cancellation becomes an error outcome.
func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if out := Execute(ctx, "SELECT id FROM users"); out.OK() {
		t.Fatalf("expected canceled execution to fail")
	}
}

// TestParseEngine verifies engine names.
func TestParseEngine(t *testing.T) {
	cases := map[string]Engine{"": EngineDuckDB, "DuckDB": EngineDuckDB, "sqlite": EngineSQLite, "sqlite3": EngineSQLite}
	for in, want := range cases {
		got, err := ParseEngine(in)
		if err != nil || got != want {
			t.Fatalf("ParseEngine(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseEngine("postgres"); err == nil {
		t.Fatalf("expected error for unknown engine")
	}
}

// TestNormalize verifies driver values map onto the portable set.
func TestNormalize(t *testing.T) {
	cases := []struct {
		in   any
		want any
	}{
		{int32(7), int64(7)},
		{int16(-2), int64(-2)},
		{uint64(9), int64(9)},
		{float32(1.5), float64(1.5)},
		{[]byte("Tokyo"), "Tokyo"},
		{big.NewInt(42), int64(42)},
		{nil, nil},
		{true, true},
	}
	for _, tc := range cases {
		if got := normalize(tc.in); got != tc.want {
			t.Fatalf("normalize(%#v) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}

// TestSchemaMentionsTables verifies the DDL used in prompts.
func TestSchemaMentionsTables(t *testing.T) {
	for _, want := range []string{"CREATE TABLE users", "CREATE TABLE orders", "FOREIGN KEY(user_id)"} {
		if !strings.Contains(Schema(), want) {
			t.Fatalf("schema missing %q", want)
		}
	}
}

// TestEnginesDisagreeOnTypeMismatch pins the engine-dependent outcome of a
// grammar-valid comparison between a text column and a number.
func TestEnginesDisagreeOnTypeMismatch(t *testing.T) {
	const query = "SELECT * FROM users WHERE city = 5"
	if out := run(t, EngineSQLite, query); !out.OK() || out.RowCount() != 0 {
		t.Fatalf("sqlite: expected an empty success, got %+v", out)
	}
	if out := run(t, EngineDuckDB, query); out.OK() {
		t.Fatalf("duckdb: expected a conversion error, got %d rows", out.RowCount())
	}
}
