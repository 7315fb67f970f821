package arith

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

const eof = -1

// Lexer converts an expression into tokens, one call to Next at a time.
type Lexer struct {
	input   string
	start   int
	current int
	width   int
	err     error
}

// NewLexer creates a lexer over input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Error returns the first lexing error, if any.
func (l *Lexer) Error() error {
	return l.err
}

// Next returns the next token. After the input is exhausted it keeps
// returning TokenEOF.
func (l *Lexer) Next() Token {
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return Token{Type: TokenEOF, Position: l.current}
	}

	if rts, ok := symbols2[ch]; ok {
		for _, rt := range rts {
			if l.acceptRune(rt.r) {
				return l.newToken(rt.tt)
			}
		}
	}
	if tt, ok := symbols1[ch]; ok {
		if ch == '.' && isDigit(l.peekRune()) {
			l.current = l.start
			return l.scanNumber()
		}
		return l.newToken(tt)
	}
	if isDigit(ch) {
		l.backup()
		return l.scanNumber()
	}
	if ch == '_' || unicode.IsLetter(ch) {
		l.acceptAll(func(r rune) bool { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) })
		return l.newToken(TokenName)
	}
	return l.errorf("unexpected character %q", ch)
}

// scanNumber reads a decimal literal: digits, an optional fraction and an
// optional exponent. Integers with redundant leading zeros are rejected.
func (l *Lexer) scanNumber() Token {
	intDigits := l.acceptAll(isDigit)
	isFloat := false
	if l.acceptRune('.') {
		isFloat = true
		fracDigits := l.acceptAll(isDigit)
		if !intDigits && !fracDigits {
			return l.errorf("invalid number")
		}
	}
	if l.acceptRune('e') || l.acceptRune('E') {
		isFloat = true
		if !l.acceptRune('+') {
			l.acceptRune('-')
		}
		if !l.acceptAll(isDigit) {
			return l.errorf("invalid exponent")
		}
	}
	if r := l.peekRune(); r == '_' || unicode.IsLetter(r) {
		l.nextRune()
		return l.errorf("invalid number suffix")
	}
	value := l.input[l.start:l.current]
	if !isFloat && len(value) > 1 && value[0] == '0' && !allZeros(value) {
		return l.errorf("leading zeros in integer literal %s", value)
	}
	return l.newToken(TokenNumber)
}

func (l *Lexer) skipWhitespace() {
	l.acceptAll(unicode.IsSpace)
	l.start = l.current
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{Type: tt, Value: l.input[l.start:l.current], Position: l.start}
	l.start = l.current
	l.width = 0
	return t
}

func (l *Lexer) errorf(format string, args ...any) Token {
	t := l.newToken(TokenError)
	if l.err == nil {
		l.err = fmt.Errorf("offset %d: %s", t.Position, fmt.Sprintf(format, args...))
	}
	return t
}

func (l *Lexer) nextRune() rune {
	if l.err != nil || l.current >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) peekRune() rune {
	r := l.nextRune()
	l.backup()
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
	l.width = 0
}

func (l *Lexer) acceptRune(r rune) bool {
	if l.nextRune() == r {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(valid func(rune) bool) bool {
	var matched bool
	for {
		r := l.nextRune()
		if r == eof || !valid(r) {
			l.backup()
			return matched
		}
		matched = true
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func allZeros(s string) bool {
	for _, r := range s {
		if r != '0' {
			return false
		}
	}
	return true
}
