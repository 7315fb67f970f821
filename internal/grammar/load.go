package grammar

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// StartRule is the rule every grammar must define.
const StartRule = "start"

type exprKind uint8

const (
	exprName exprKind = iota
	exprLiteral
	exprRegex
	exprRange
	exprGroup
	exprOptional
)

type expr struct {
	kind  exprKind
	value string
	flags string
	hi    string
	alts  [][]*expr
	op    tokenType
	line  int
}

type definition struct {
	name     string
	terminal bool
	priority int
	alts     [][]*expr
	line     int
}

// Load compiles Lark grammar text into a Grammar. It supports the subset of
// Lark the built-in grammars and the "common" imports need.
func Load(name, source string) (*Grammar, error) {
	g, err := load(source)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Grammar = name
			return nil, le
		}
		return nil, fmt.Errorf("grammar %s: %w", name, err)
	}
	g.name = name
	g.source = source
	return g, nil
}

// MustLoad is Load for grammars known to be valid.
func MustLoad(name, source string) *Grammar {
	g, err := Load(name, source)
	if err != nil {
		panic(err)
	}
	return g
}

func load(source string) (*Grammar, error) {
	toks, err := newLexer(source).tokens()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, imports: map[string]string{}}
	if err := p.parse(); err != nil {
		return nil, err
	}
	c := &compiler{
		parser:    p,
		rules:     map[string]*definition{},
		termDefs:  map[string]*definition{},
		terminals: map[string]*Terminal{},
		resolving: map[string]bool{},
		patterns:  map[string]string{},
	}
	return c.compile()
}

type parser struct {
	toks    []token
	pos     int
	defs    []*definition
	imports map[string]string
	ignores [][][]*expr
}

func (p *parser) peek() token { return p.peekAt(0) }

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() token {
	t := p.peek()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(tt tokenType) (token, error) {
	t := p.next()
	if t.typ != tt {
		return t, newLoadError(t.line, "expected %s, found %s", tt, describe(t))
	}
	return t, nil
}

func describe(t token) string {
	if t.value != "" {
		return fmt.Sprintf("%s %q", t.typ, t.value)
	}
	return t.typ.String()
}

func (p *parser) parse() error {
	for {
		t := p.peek()
		var err error
		switch t.typ {
		case tokenEOF:
			return nil
		case tokenNewline:
			p.next()
			continue
		case tokenDirective:
			err = p.parseDirective()
		case tokenQuestion, tokenBang, tokenRule:
			err = p.parseDefinition(false)
		case tokenTerminal:
			err = p.parseDefinition(true)
		default:
			err = newLoadError(t.line, "unexpected %s", describe(t))
		}
		if err != nil {
			return err
		}
		if t := p.peek(); t.typ != tokenNewline && t.typ != tokenEOF {
			return newLoadError(t.line, "unexpected %s at end of definition", describe(t))
		}
	}
}

func (p *parser) parseDefinition(terminal bool) error {
	for !terminal && (p.peek().typ == tokenQuestion || p.peek().typ == tokenBang) {
		p.next()
	}
	want := tokenRule
	if terminal {
		want = tokenTerminal
	}
	name, err := p.expect(want)
	if err != nil {
		return err
	}
	def := &definition{name: name.value, terminal: terminal, line: name.line}
	if p.peek().typ == tokenDot {
		p.next()
		num, err := p.expect(tokenNumber)
		if err != nil {
			return err
		}
		def.priority, _ = strconv.Atoi(num.value)
	}
	if _, err := p.expect(tokenColon); err != nil {
		return err
	}
	def.alts, err = p.parseAlternatives()
	if err != nil {
		return err
	}
	p.defs = append(p.defs, def)
	return nil
}

func (p *parser) parseAlternatives() ([][]*expr, error) {
	var alts [][]*expr
	for {
		seq, err := p.parseSequence()
		if err != nil {
			return nil, err
		}
		alts = append(alts, seq)
		if p.peek().typ == tokenArrow {
			p.next()
			if t := p.next(); t.typ != tokenRule && t.typ != tokenTerminal {
				return nil, newLoadError(t.line, "expected alias name, found %s", describe(t))
			}
		}
		if p.peek().typ == tokenNewline && p.peekAt(1).typ == tokenPipe {
			p.next()
		}
		if p.peek().typ != tokenPipe {
			return alts, nil
		}
		p.next()
	}
}

func (p *parser) parseSequence() ([]*expr, error) {
	var seq []*expr
	for {
		switch p.peek().typ {
		case tokenString, tokenRegex, tokenRule, tokenTerminal, tokenParenOpen, tokenBracketOpen:
		default:
			return seq, nil
		}
		e, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		seq = append(seq, e)
	}
}

func (p *parser) parseItem() (*expr, error) {
	e, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	switch t := p.peek(); t.typ {
	case tokenQuestion, tokenStar, tokenPlus:
		p.next()
		e.op = t.typ
	case tokenTilde:
		return nil, newLoadError(t.line, "repetition ranges (~) are not supported")
	}
	return e, nil
}

func (p *parser) parseAtom() (*expr, error) {
	t := p.next()
	switch t.typ {
	case tokenString:
		if p.peek().typ != tokenRange {
			return &expr{kind: exprLiteral, value: t.value, flags: t.flags, line: t.line}, nil
		}
		p.next()
		hi, err := p.expect(tokenString)
		if err != nil {
			return nil, err
		}
		if len([]rune(t.value)) != 1 || len([]rune(hi.value)) != 1 {
			return nil, newLoadError(t.line, "range bounds must be single characters")
		}
		return &expr{kind: exprRange, value: t.value, hi: hi.value, line: t.line}, nil
	case tokenRegex:
		return &expr{kind: exprRegex, value: t.value, flags: t.flags, line: t.line}, nil
	case tokenRule, tokenTerminal:
		return &expr{kind: exprName, value: t.value, line: t.line}, nil
	case tokenParenOpen, tokenBracketOpen:
		alts, err := p.parseAlternatives()
		if err != nil {
			return nil, err
		}
		kind, closer := exprGroup, tokenParenClose
		if t.typ == tokenBracketOpen {
			kind, closer = exprOptional, tokenBracketClose
		}
		if _, err := p.expect(closer); err != nil {
			return nil, err
		}
		return &expr{kind: kind, alts: alts, line: t.line}, nil
	}
	return nil, newLoadError(t.line, "unexpected %s", describe(t))
}

func (p *parser) parseDirective() error {
	d := p.next()
	switch d.value {
	case "import":
		return p.parseImport(d.line)
	case "ignore":
		alts, err := p.parseAlternatives()
		if err != nil {
			return err
		}
		if len(alts) == 0 || (len(alts) == 1 && len(alts[0]) == 0) {
			return newLoadError(d.line, "%%ignore needs a terminal")
		}
		p.ignores = append(p.ignores, alts)
		return nil
	}
	return newLoadError(d.line, "unsupported directive %%%s", d.value)
}

func (p *parser) parseImport(line int) error {
	var path []string
	first, err := p.expect(tokenRule)
	if err != nil {
		return err
	}
	path = append(path, first.value)
	for p.peek().typ == tokenDot {
		p.next()
		t := p.next()
		if t.typ != tokenRule && t.typ != tokenTerminal {
			return newLoadError(t.line, "expected import name, found %s", describe(t))
		}
		path = append(path, t.value)
	}
	if path[0] != "common" {
		return newLoadError(line, "only the common library can be imported, got %q", strings.Join(path, "."))
	}
	switch {
	case len(path) == 1 && p.peek().typ == tokenParenOpen:
		p.next()
		for {
			t, err := p.expect(tokenTerminal)
			if err != nil {
				return err
			}
			if err := p.addImport(t.line, t.value, t.value); err != nil {
				return err
			}
			if p.peek().typ == tokenComma {
				p.next()
				continue
			}
			_, err = p.expect(tokenParenClose)
			return err
		}
	case len(path) == 2:
		local := path[1]
		if p.peek().typ == tokenArrow {
			p.next()
			alias, err := p.expect(tokenTerminal)
			if err != nil {
				return err
			}
			local = alias.value
		}
		return p.addImport(line, local, path[1])
	}
	return newLoadError(line, "malformed %%import")
}

func (p *parser) addImport(line int, local, name string) error {
	if _, ok := commonTerminals[name]; !ok {
		return newLoadError(line, "common has no terminal %q", name)
	}
	p.imports[local] = name
	return nil
}

type compiler struct {
	*parser
	rules     map[string]*definition
	termDefs  map[string]*definition
	terminals map[string]*Terminal
	resolving map[string]bool
	patterns  map[string]string
	prods     []Production
	helpers   int
}

func (c *compiler) compile() (*Grammar, error) {
	for _, def := range c.defs {
		if c.rules[def.name] != nil || c.termDefs[def.name] != nil {
			return nil, newLoadError(def.line, "%q is defined more than once", def.name)
		}
		if def.terminal {
			c.termDefs[def.name] = def
		} else {
			c.rules[def.name] = def
		}
	}
	for local := range c.imports {
		if c.termDefs[local] != nil {
			return nil, newLoadError(c.termDefs[local].line, "%q is both imported and defined", local)
		}
	}
	if c.rules[StartRule] == nil {
		return nil, newLoadError(0, "missing %q rule", StartRule)
	}

	names := make([]string, 0, len(c.termDefs)+len(c.imports))
	for _, def := range c.defs {
		if def.terminal {
			names = append(names, def.name)
		}
	}
	for local := range c.imports {
		names = append(names, local)
	}
	for _, name := range names {
		if _, err := c.namedTerminal(name, 0); err != nil {
			return nil, err
		}
	}

	for _, def := range c.defs {
		if def.terminal {
			continue
		}
		if err := c.lowerRule(def.name, def.alts); err != nil {
			return nil, err
		}
	}

	var ignore []*Terminal
	for i, alts := range c.ignores {
		var t *Terminal
		var err error
		if len(alts) == 1 && len(alts[0]) == 1 && alts[0][0].kind == exprName && alts[0][0].op == 0 {
			t, err = c.namedTerminal(alts[0][0].value, alts[0][0].line)
		} else {
			var pattern string
			pattern, err = c.terminalPattern(fmt.Sprintf("%%ignore #%d", i+1), alts)
			if err == nil {
				t, err = c.addTerminal(fmt.Sprintf("__IGNORE_%d", i), pattern, 0, 0)
			}
		}
		if err != nil {
			return nil, err
		}
		ignore = append(ignore, t)
	}

	g := &Grammar{
		start:       StartRule,
		productions: c.prods,
		byHead:      map[string][]int{},
		terminals:   c.terminals,
		ignore:      ignore,
		nullable:    computeNullable(c.prods),
	}
	for i, p := range c.prods {
		g.byHead[p.Head] = append(g.byHead[p.Head], i)
	}
	return g, nil
}

// namedTerminal compiles a user-defined or imported terminal.
func (c *compiler) namedTerminal(name string, line int) (*Terminal, error) {
	if t, ok := c.terminals[name]; ok {
		return t, nil
	}
	pattern, err := c.namedPattern(name, line)
	if err != nil {
		return nil, err
	}
	priority := 0
	if def := c.termDefs[name]; def != nil {
		priority = def.priority
		line = def.line
	}
	return c.addTerminal(name, pattern, priority, line)
}

func (c *compiler) addTerminal(name, pattern string, priority, line int) (*Terminal, error) {
	if t, ok := c.terminals[name]; ok {
		return t, nil
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, newLoadError(line, "terminal %s: %v", name, err)
	}
	if re.MatchString("") {
		return nil, newLoadError(line, "terminal %s can match the empty string", name)
	}
	t := &Terminal{Name: name, Pattern: pattern, Priority: priority, re: re}
	c.terminals[name] = t
	return t, nil
}

func (c *compiler) namedPattern(name string, line int) (string, error) {
	if p, ok := c.patterns[name]; ok {
		return p, nil
	}
	if common, ok := c.imports[name]; ok {
		c.patterns[name] = commonTerminals[common]
		return c.patterns[name], nil
	}
	def := c.termDefs[name]
	if def == nil {
		return "", newLoadError(line, "undefined terminal %q", name)
	}
	if c.resolving[name] {
		return "", newLoadError(def.line, "terminal %q is recursive", name)
	}
	c.resolving[name] = true
	defer delete(c.resolving, name)
	p, err := c.terminalPattern(name, def.alts)
	if err != nil {
		return "", err
	}
	c.patterns[name] = p
	return p, nil
}

func (c *compiler) terminalPattern(owner string, alts [][]*expr) (string, error) {
	parts := make([]string, 0, len(alts))
	for _, seq := range alts {
		var b strings.Builder
		for _, e := range seq {
			p, err := c.exprPattern(owner, e)
			if err != nil {
				return "", err
			}
			b.WriteString(p)
		}
		parts = append(parts, b.String())
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(?:" + strings.Join(parts, "|") + ")", nil
}

func (c *compiler) exprPattern(owner string, e *expr) (string, error) {
	var p string
	switch e.kind {
	case exprLiteral:
		p = literalPattern(e.value, e.flags)
	case exprRegex:
		rp, err := regexPattern(e.value, e.flags)
		if err != nil {
			return "", newLoadError(e.line, "%v", err)
		}
		p = rp
	case exprRange:
		p = rangePattern(e.value, e.hi)
	case exprName:
		if !isTerminalName(e.value) {
			return "", newLoadError(e.line, "terminal %s references rule %q", owner, e.value)
		}
		np, err := c.namedPattern(e.value, e.line)
		if err != nil {
			return "", err
		}
		p = "(?:" + np + ")"
	case exprGroup, exprOptional:
		gp, err := c.terminalPattern(owner, e.alts)
		if err != nil {
			return "", err
		}
		p = "(?:" + gp + ")"
		if e.kind == exprOptional {
			p += "?"
		}
	}
	switch e.op {
	case tokenQuestion:
		p = "(?:" + p + ")?"
	case tokenStar:
		p = "(?:" + p + ")*"
	case tokenPlus:
		p = "(?:" + p + ")+"
	}
	return p, nil
}

func literalPattern(text, flags string) string {
	if strings.Contains(flags, "i") {
		return "(?i:" + regexp.QuoteMeta(text) + ")"
	}
	return regexp.QuoteMeta(text)
}

func regexPattern(pattern, flags string) (string, error) {
	var goFlags strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			goFlags.WriteRune(f)
		case 'l', 'u':
		default:
			return "", fmt.Errorf("regexp flag %q is not supported", f)
		}
	}
	if goFlags.Len() == 0 {
		return "(?:" + pattern + ")", nil
	}
	return "(?" + goFlags.String() + ":" + pattern + ")", nil
}

func rangePattern(lo, hi string) string {
	return "[" + classEscape(lo) + "-" + classEscape(hi) + "]"
}

func classEscape(s string) string {
	switch s {
	case `\`, `]`, `[`, `^`, `-`:
		return `\` + s
	}
	return s
}

// lowerRule turns an EBNF rule into BNF productions, introducing helper
// rules for groups, optionals and repetition.
func (c *compiler) lowerRule(head string, alts [][]*expr) error {
	for _, seq := range alts {
		body, err := c.lowerSequence(head, seq)
		if err != nil {
			return err
		}
		c.prods = append(c.prods, Production{Head: head, Body: body})
	}
	return nil
}

func (c *compiler) lowerSequence(owner string, seq []*expr) ([]Symbol, error) {
	body := []Symbol{}
	for _, e := range seq {
		syms, err := c.lowerItem(owner, e)
		if err != nil {
			return nil, err
		}
		body = append(body, syms...)
	}
	return body, nil
}

func (c *compiler) lowerItem(owner string, e *expr) ([]Symbol, error) {
	base, err := c.lowerAtom(owner, e)
	if err != nil {
		return nil, err
	}
	if e.kind == exprOptional {
		base = c.helper(owner, "opt", [][]Symbol{{}, base})
	}
	switch e.op {
	case tokenQuestion:
		return c.helper(owner, "opt", [][]Symbol{{}, base}), nil
	case tokenStar:
		name := c.helperName(owner, "star")
		self := Symbol{Name: name}
		c.addHelper(name, [][]Symbol{{}, append([]Symbol{self}, base...)})
		return []Symbol{self}, nil
	case tokenPlus:
		name := c.helperName(owner, "plus")
		self := Symbol{Name: name}
		c.addHelper(name, [][]Symbol{base, append([]Symbol{self}, base...)})
		return []Symbol{self}, nil
	}
	return base, nil
}

func (c *compiler) lowerAtom(owner string, e *expr) ([]Symbol, error) {
	switch e.kind {
	case exprName:
		if isTerminalName(e.value) {
			if _, err := c.namedTerminal(e.value, e.line); err != nil {
				return nil, err
			}
			return []Symbol{{Name: e.value, Terminal: true}}, nil
		}
		if c.rules[e.value] == nil {
			return nil, newLoadError(e.line, "undefined rule %q", e.value)
		}
		return []Symbol{{Name: e.value}}, nil
	case exprLiteral:
		name := strconv.Quote(e.value) + e.flags
		if _, err := c.addTerminal(name, literalPattern(e.value, e.flags), 0, e.line); err != nil {
			return nil, err
		}
		return []Symbol{{Name: name, Terminal: true}}, nil
	case exprRegex:
		name := "/" + e.value + "/" + e.flags
		pattern, err := regexPattern(e.value, e.flags)
		if err != nil {
			return nil, newLoadError(e.line, "%v", err)
		}
		if _, err := c.addTerminal(name, pattern, 0, e.line); err != nil {
			return nil, err
		}
		return []Symbol{{Name: name, Terminal: true}}, nil
	case exprRange:
		name := strconv.Quote(e.value) + ".." + strconv.Quote(e.hi)
		if _, err := c.addTerminal(name, rangePattern(e.value, e.hi), 0, e.line); err != nil {
			return nil, err
		}
		return []Symbol{{Name: name, Terminal: true}}, nil
	}

	if len(e.alts) == 1 {
		return c.lowerSequence(owner, e.alts[0])
	}
	bodies := make([][]Symbol, 0, len(e.alts))
	for _, seq := range e.alts {
		body, err := c.lowerSequence(owner, seq)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}
	return c.helper(owner, "group", bodies), nil
}

func (c *compiler) helper(owner, kind string, bodies [][]Symbol) []Symbol {
	name := c.helperName(owner, kind)
	c.addHelper(name, bodies)
	return []Symbol{{Name: name}}
}

func (c *compiler) helperName(owner, kind string) string {
	name := fmt.Sprintf("__%s_%s_%d", owner, kind, c.helpers)
	c.helpers++
	return name
}

func (c *compiler) addHelper(name string, bodies [][]Symbol) {
	for _, body := range bodies {
		c.prods = append(c.prods, Production{Head: name, Body: append([]Symbol{}, body...)})
	}
}
