package grammar

import (
	"regexp"
	"sort"
)

// SyntaxLark is the grammar syntax name sent to the generation service.
const SyntaxLark = "lark"

// Symbol is one element of a production body.
type Symbol struct {
	Name     string
	Terminal bool
}

// Production is a single BNF alternative: Head -> Body.
type Production struct {
	Head string
	Body []Symbol
}

// Terminal is a compiled terminal. Anonymous terminals created from literals
// inside rules are named after their source text, e.g. `"SELECT"`.
type Terminal struct {
	Name     string
	Pattern  string
	Priority int
	re       *regexp.Regexp
}

// Match reports the end offset of the longest leftmost-first match of the
// terminal starting exactly at pos, or -1. Empty matches never count.
func (t *Terminal) Match(text string, pos int) int {
	if pos > len(text) {
		return -1
	}
	loc := t.re.FindStringIndex(text[pos:])
	if loc == nil || loc[1] == 0 {
		return -1
	}
	return pos + loc[1]
}

// Grammar is an immutable compiled grammar. It is safe for concurrent use.
type Grammar struct {
	name        string
	source      string
	start       string
	productions []Production
	byHead      map[string][]int
	terminals   map[string]*Terminal
	ignore      []*Terminal
	nullable    map[string]bool
}

// Name returns the grammar's registry name.
func (g *Grammar) Name() string { return g.name }

// Syntax returns the definition syntax of Source.
func (g *Grammar) Syntax() string { return SyntaxLark }

// Source returns the Lark text the grammar was compiled from.
func (g *Grammar) Source() string { return g.source }

// Start returns the start rule name.
func (g *Grammar) Start() string { return g.start }

// Productions returns every production, helper rules included.
func (g *Grammar) Productions() []Production { return g.productions }

// Production returns the production with index i.
func (g *Grammar) Production(i int) Production { return g.productions[i] }

// Alternatives returns the indexes of the productions for head.
func (g *Grammar) Alternatives(head string) []int { return g.byHead[head] }

// Nullable reports whether the nonterminal derives the empty string.
func (g *Grammar) Nullable(name string) bool { return g.nullable[name] }

// Terminal looks up a compiled terminal by name.
func (g *Grammar) Terminal(name string) (*Terminal, bool) {
	t, ok := g.terminals[name]
	return t, ok
}

// TerminalNames returns the sorted names of all terminals.
func (g *Grammar) TerminalNames() []string {
	names := make([]string, 0, len(g.terminals))
	for name := range g.terminals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ignored returns the terminals skipped between tokens.
func (g *Grammar) Ignored() []*Terminal { return g.ignore }

// SkipIgnored returns every position reachable from pos by consuming zero or
// more ignored terminals, pos first.
func (g *Grammar) SkipIgnored(text string, pos int) []int {
	out := []int{pos}
	if len(g.ignore) == 0 {
		return out
	}
	seen := map[int]bool{pos: true}
	for i := 0; i < len(out); i++ {
		for _, t := range g.ignore {
			end := t.Match(text, out[i])
			if end < 0 || seen[end] {
				continue
			}
			seen[end] = true
			out = append(out, end)
		}
	}
	return out
}

func computeNullable(prods []Production) map[string]bool {
	nullable := map[string]bool{}
	for changed := true; changed; {
		changed = false
		for _, p := range prods {
			if nullable[p.Head] {
				continue
			}
			all := true
			for _, s := range p.Body {
				if s.Terminal || !nullable[s.Name] {
					all = false
					break
				}
			}
			if all {
				nullable[p.Head] = true
				changed = true
			}
		}
	}
	return nullable
}
