// Package trial runs one grammar-constrained generation task end to end.
package trial

import (
	"fmt"
	"strings"

	"cfgprobe/internal/generate"
	"cfgprobe/internal/grammar"
)

// Family identifies a task family.
type Family string

const (
	FamilyMath Family = "math"
	FamilySQL  Family = "sql"
)

// Families lists the supported families in display order.
func Families() []Family {
	return []Family{FamilyMath, FamilySQL}
}

// ParseFamily resolves a family name case-insensitively.
func ParseFamily(name string) (Family, error) {
	switch Family(strings.ToLower(strings.TrimSpace(name))) {
	case FamilyMath:
		return FamilyMath, nil
	case FamilySQL:
		return FamilySQL, nil
	}
	return "", fmt.Errorf("unknown family %q (want math or sql)", name)
}

const (
	MathToolName = "math_exp"
	SQLToolName  = "sql_query"

	mathToolDescription = "Creates valid mathematical expressions"
	sqlToolDescription  = "Creates a minimal SQL SELECT query for the users table."
)

const sqlInstruction = "Use the sql_query tool to output only one SQL statement. " +
	"Use uppercase keywords. Available tables and schema are:\n" +
	"CREATE TABLE users (\n" +
	"  id INTEGER PRIMARY KEY,\n" +
	"  name TEXT NOT NULL,\n" +
	"  age INTEGER NOT NULL,\n" +
	"  city TEXT NOT NULL\n" +
	");\n" +
	"city: Tokyo, Osaka, Nagoya, Kyoto, Sapporo\n" +
	"CREATE TABLE orders (\n" +
	"  id INTEGER PRIMARY KEY,\n" +
	"  user_id INTEGER NOT NULL,\n" +
	"  amount INTEGER NOT NULL,\n" +
	"  status TEXT NOT NULL,\n" +
	"  FOREIGN KEY(user_id) REFERENCES users(id)\n" +
	");\n" +
	"status: paid, pending, cancelled\n" +
	"Boolean operators supported: AND, OR, NOT. Use parentheses to group conditions when needed. " +
	"Prefer qualified column names (table.column)."

// Grammar returns the grammar that constrains and validates the family's output.
func (f Family) Grammar() *grammar.Grammar {
	if f == FamilySQL {
		return grammar.SQLSubset
	}
	return grammar.Arithmetic
}

// ToolName is the custom tool the model is asked to call.
func (f Family) ToolName() string {
	if f == FamilySQL {
		return SQLToolName
	}
	return MathToolName
}

// Tool builds the grammar-constrained tool definition.
func (f Family) Tool() generate.ToolSpec {
	return f.ToolWith(f.Grammar())
}

// ToolWith builds the tool definition constrained by g instead of the
// family grammar.
func (f Family) ToolWith(g *grammar.Grammar) generate.ToolSpec {
	description := mathToolDescription
	if f == FamilySQL {
		description = sqlToolDescription
	}
	return generate.ToolSpec{
		Name:        f.ToolName(),
		Description: description,
		Grammar: generate.GrammarSpec{
			Syntax:     g.Syntax(),
			Definition: g.Source(),
		},
	}
}

// Instruction wraps the case prompt into the text sent to the model.
func (f Family) Instruction(prompt string) string {
	if f == FamilySQL {
		return sqlInstruction + " Task: " + prompt
	}
	return "Use the math_exp tool to produce only one expression for: " + prompt
}

func (f Family) valid() bool {
	return f == FamilyMath || f == FamilySQL
}
