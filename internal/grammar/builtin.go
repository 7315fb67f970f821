package grammar

import (
	"fmt"
	"sort"
)

// Registry names of the built-in grammars.
const (
	NameArithmetic  = "arithmetic"
	NameSQL         = "sql"
	NameMinimalMath = "minimal-math"
)

// ArithmeticSource accepts integer arithmetic with + - * / and parentheses.
// Inline whitespace between tokens is ignored.
const ArithmeticSource = `
start: expr
?expr: term ( ("+"|"-") term )*
?term: factor ( ("*"|"/") factor )*
?factor: INT | "(" expr ")"
%import common.INT
%import common.WS_INLINE
%ignore WS_INLINE
`

// SQLSource is a SELECT-only subset over the users and orders tables with
// uppercase keywords. It intentionally accepts column/table combinations
// the fixture cannot answer.
const SQLSource = `
start: select_stmt

select_stmt: "SELECT" select_list "FROM" table (join_clause)* ("WHERE" condition)? ("LIMIT" INT)?

select_list: "*" | sel_item ("," sel_item)*
sel_item: colref

join_clause: "JOIN" table "ON" colref "=" colref

table: "users" | "orders"

// Allow either qualified or unqualified column references
colref: (table ".")? column

column: "id" | "name" | "age" | "city" | "user_id" | "amount" | "status"

?condition: or_expr
?or_expr: and_expr ("OR" and_expr)*
?and_expr: not_expr ("AND" not_expr)*
?not_expr: ("NOT" not_expr) | cond_atom
?cond_atom: "(" condition ")" | predicate

predicate: colref op value
op: "=" | "!=" | "<" | "<=" | ">" | ">="
value: INT | SQSTRING

SQSTRING: "'" /[^']*/ "'"

%import common.INT
%import common.WS_INLINE
%ignore WS_INLINE
`

// MinimalMathSource only allows + and * separated by single spaces.
const MinimalMathSource = `
start: expr
expr: term (SP ADD SP term)* -> add
    | term
term: factor (SP MUL SP factor)* -> mul
    | factor
factor: INT
SP: " "
ADD: "+"
MUL: "*"
%import common.INT
`

// Built-in grammars, compiled once and shared read-only.
var (
	Arithmetic  = MustLoad(NameArithmetic, ArithmeticSource)
	SQLSubset   = MustLoad(NameSQL, SQLSource)
	MinimalMath = MustLoad(NameMinimalMath, MinimalMathSource)
)

var builtins = map[string]*Grammar{
	NameArithmetic:  Arithmetic,
	NameSQL:         SQLSubset,
	NameMinimalMath: MinimalMath,
}

// Lookup returns a built-in grammar by name.
func Lookup(name string) (*Grammar, error) {
	g, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown grammar %q (available: %v)", name, Names())
	}
	return g, nil
}

// Names lists the built-in grammar names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
