package grammar

import (
	"strings"
	"unicode/utf8"
)

const eof = -1

type tokenType uint8

const (
	tokenEOF tokenType = iota
	tokenError
	tokenNewline
	tokenRule     // lowercase name
	tokenTerminal // UPPERCASE name
	tokenString   // "..." (value unescaped, flags "i" or "")
	tokenRegex    // /.../flags
	tokenNumber
	tokenDirective // %import, %ignore, ...
	tokenColon
	tokenPipe
	tokenParenOpen
	tokenParenClose
	tokenBracketOpen
	tokenBracketClose
	tokenStar
	tokenPlus
	tokenQuestion
	tokenBang
	tokenArrow
	tokenRange
	tokenDot
	tokenComma
	tokenTilde
)

func (tt tokenType) String() string {
	switch tt {
	case tokenEOF:
		return "end of grammar"
	case tokenError:
		return "error"
	case tokenNewline:
		return "newline"
	case tokenRule:
		return "rule name"
	case tokenTerminal:
		return "terminal name"
	case tokenString:
		return "string"
	case tokenRegex:
		return "regexp"
	case tokenNumber:
		return "number"
	case tokenDirective:
		return "directive"
	case tokenColon:
		return `":"`
	case tokenPipe:
		return `"|"`
	case tokenParenOpen:
		return `"("`
	case tokenParenClose:
		return `")"`
	case tokenBracketOpen:
		return `"["`
	case tokenBracketClose:
		return `"]"`
	case tokenStar:
		return `"*"`
	case tokenPlus:
		return `"+"`
	case tokenQuestion:
		return `"?"`
	case tokenBang:
		return `"!"`
	case tokenArrow:
		return `"->"`
	case tokenRange:
		return `".."`
	case tokenDot:
		return `"."`
	case tokenComma:
		return `","`
	case tokenTilde:
		return `"~"`
	}
	return "unknown"
}

type token struct {
	typ   tokenType
	value string
	flags string
	line  int
}

// lexer splits Lark grammar text into tokens. Newlines are significant:
// they end a definition unless the next line continues it with "|".
type lexer struct {
	input   string
	start   int
	current int
	width   int
	line    int
	err     *LoadError
}

func newLexer(input string) *lexer {
	return &lexer{input: input, line: 1}
}

// tokens lexes the whole input.
func (l *lexer) tokens() ([]token, error) {
	var out []token
	for {
		t := l.next()
		if t.typ == tokenError {
			return nil, l.err
		}
		out = append(out, t)
		if t.typ == tokenEOF {
			return out, nil
		}
	}
}

func (l *lexer) next() token {
	l.skipSpace()
	ch := l.nextRune()
	switch {
	case ch == eof:
		return token{typ: tokenEOF, line: l.line}
	case ch == '\n':
		line := l.line
		l.line++
		for {
			l.skipSpace()
			if !l.acceptRune('\n') {
				break
			}
			l.line++
		}
		l.ignore()
		return token{typ: tokenNewline, line: line}
	case ch == '"':
		l.ignore()
		return l.scanString()
	case ch == '/':
		l.ignore()
		return l.scanRegex()
	case ch == '%':
		l.ignore()
		l.acceptAll(isNameRune)
		if l.current == l.start {
			return l.errorf("expected directive name after %%")
		}
		return l.emit(tokenDirective)
	case ch == '-':
		if l.acceptRune('>') {
			return l.emit(tokenArrow)
		}
		if l.acceptAll(isDigit) {
			return l.emit(tokenNumber)
		}
		return l.errorf("unexpected %q", ch)
	case ch == '.':
		if l.acceptRune('.') {
			return l.emit(tokenRange)
		}
		return l.emit(tokenDot)
	case isDigit(ch):
		l.acceptAll(isDigit)
		return l.emit(tokenNumber)
	case ch == '_' || isLetter(ch):
		l.acceptAll(isNameRune)
		name := l.input[l.start:l.current]
		if isTerminalName(name) {
			return l.emit(tokenTerminal)
		}
		return l.emit(tokenRule)
	}
	if tt, ok := punctuation[ch]; ok {
		return l.emit(tt)
	}
	return l.errorf("unexpected character %q", ch)
}

var punctuation = map[rune]tokenType{
	':': tokenColon,
	'|': tokenPipe,
	'(': tokenParenOpen,
	')': tokenParenClose,
	'[': tokenBracketOpen,
	']': tokenBracketClose,
	'*': tokenStar,
	'+': tokenPlus,
	'?': tokenQuestion,
	'!': tokenBang,
	',': tokenComma,
	'~': tokenTilde,
}

// scanString reads a double quoted literal; the opening quote is consumed.
func (l *lexer) scanString() token {
	var b strings.Builder
	for {
		ch := l.nextRune()
		switch ch {
		case '"':
			t := token{typ: tokenString, value: b.String(), line: l.line}
			l.ignore()
			if l.acceptRune('i') {
				t.flags = "i"
			}
			l.ignore()
			return t
		case '\\':
			esc := l.nextRune()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '"':
				b.WriteRune(esc)
			case eof:
				return l.errorf("unterminated string literal")
			default:
				b.WriteByte('\\')
				b.WriteRune(esc)
			}
		case eof, '\n':
			return l.errorf("unterminated string literal")
		default:
			b.WriteRune(ch)
		}
	}
}

// scanRegex reads /pattern/flags; the opening slash is consumed. Comments
// starting with // never reach here.
func (l *lexer) scanRegex() token {
	var b strings.Builder
	for {
		ch := l.nextRune()
		switch ch {
		case '/':
			t := token{typ: tokenRegex, value: b.String(), line: l.line}
			l.ignore()
			l.acceptAll(isRegexFlag)
			t.flags = l.input[l.start:l.current]
			l.ignore()
			return t
		case '\\':
			esc := l.nextRune()
			if esc == eof || esc == '\n' {
				return l.errorf("unterminated regexp")
			}
			if esc != '/' {
				b.WriteByte('\\')
			}
			b.WriteRune(esc)
		case eof, '\n':
			return l.errorf("unterminated regexp")
		default:
			b.WriteRune(ch)
		}
	}
}

func (l *lexer) skipSpace() {
	for l.current < len(l.input) {
		rest := l.input[l.current:]
		switch {
		case rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\r':
			l.current++
		case rest[0] == '#' || strings.HasPrefix(rest, "//"):
			l.skipLine()
		default:
			l.ignore()
			return
		}
	}
	l.ignore()
}

func (l *lexer) skipLine() {
	for {
		ch := l.nextRune()
		if ch == eof {
			return
		}
		if ch == '\n' {
			l.backup()
			return
		}
	}
}

func (l *lexer) emit(tt tokenType) token {
	t := token{typ: tt, value: l.input[l.start:l.current], line: l.line}
	l.ignore()
	return t
}

func (l *lexer) errorf(format string, args ...any) token {
	l.err = newLoadError(l.line, format, args...)
	return token{typ: tokenError, line: l.line}
}

func (l *lexer) nextRune() rune {
	if l.current >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *lexer) backup() {
	l.current -= l.width
	l.width = 0
}

func (l *lexer) ignore() {
	l.start = l.current
}

func (l *lexer) acceptRune(r rune) bool {
	if l.nextRune() == r {
		return true
	}
	l.backup()
	return false
}

func (l *lexer) acceptAll(valid func(rune) bool) bool {
	var matched bool
	for {
		ch := l.nextRune()
		if ch == eof || !valid(ch) {
			l.backup()
			return matched
		}
		matched = true
	}
}

func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }

func isNameRune(r rune) bool { return r == '_' || isLetter(r) || isDigit(r) }

func isRegexFlag(r rune) bool {
	switch r {
	case 'i', 'm', 's', 'l', 'x', 'u':
		return true
	}
	return false
}

func isTerminalName(name string) bool {
	trimmed := strings.TrimLeft(name, "_")
	if trimmed == "" {
		return false
	}
	if trimmed[0] < 'A' || trimmed[0] > 'Z' {
		return false
	}
	return strings.ToUpper(name) == name
}
