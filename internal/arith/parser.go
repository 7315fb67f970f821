package arith

import (
	"errors"
	"fmt"
	"strconv"
)

// MaxDepth bounds expression nesting.
const MaxDepth = 200

// ErrEmpty is returned for blank input.
var ErrEmpty = errors.New("empty expression")

// Binding powers, loosest first. Exponentiation is right associative and
// binds tighter than a unary sign on its left.
const (
	bpCompare = 10
	bpSum     = 20
	bpProduct = 30
	bpUnary   = 40
	bpPower   = 50
	bpPostfix = 60
)

var precedence = map[TokenType]int{
	TokenEqual:        bpCompare,
	TokenNotEqual:     bpCompare,
	TokenLess:         bpCompare,
	TokenLessEqual:    bpCompare,
	TokenGreater:      bpCompare,
	TokenGreaterEqual: bpCompare,
	TokenPlus:         bpSum,
	TokenMinus:        bpSum,
	TokenMult:         bpProduct,
	TokenDiv:          bpProduct,
	TokenFloorDiv:     bpProduct,
	TokenMod:          bpProduct,
	TokenPow:          bpPower,
	TokenParenOpen:    bpPostfix,
	TokenDot:          bpPostfix,
}

// Parser is a Pratt parser over Lexer tokens.
type Parser struct {
	lexer   *Lexer
	current Token
	depth   int
}

// Parse parses text into an expression tree.
func Parse(text string) (Node, error) {
	p := &Parser{lexer: NewLexer(text)}
	p.advance()
	if p.current.Type == TokenError {
		return nil, p.lexer.Error()
	}
	if p.current.Type == TokenEOF {
		return nil, ErrEmpty
	}
	node, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenEOF {
		return nil, p.errorf("unexpected %s", p.current.Type)
	}
	return node, nil
}

func (p *Parser) advance() {
	p.current = p.lexer.Next()
}

func (p *Parser) expect(tt TokenType) error {
	if p.current.Type != tt {
		return p.errorf("expected %s but got %s", tt, p.current.Type)
	}
	p.advance()
	return nil
}

func (p *Parser) errorf(format string, args ...any) error {
	if err := p.lexer.Error(); err != nil {
		return err
	}
	return fmt.Errorf("offset %d: %s", p.current.Position, fmt.Sprintf(format, args...))
}

func (p *Parser) parseExpression(rbp int) (Node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxDepth {
		return nil, p.errorf("expression nested too deeply")
	}

	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for rbp < precedence[p.current.Type] {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parsePrefix() (Node, error) {
	tok := p.current
	switch tok.Type {
	case TokenNumber:
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.errorf("invalid number %s", tok.Value)
		}
		p.advance()
		return &Number{Position: tok.Position, Value: v}, nil
	case TokenName:
		p.advance()
		return &Name{Position: tok.Position, Ident: tok.Value}, nil
	case TokenPlus, TokenMinus:
		p.advance()
		operand, err := p.parseExpression(bpUnary)
		if err != nil {
			return nil, err
		}
		return &Unary{Position: tok.Position, Op: tok.Type, Operand: operand}, nil
	case TokenParenOpen:
		p.advance()
		inner, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenParenClose); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, p.errorf("unexpected %s", tok.Type)
}

func (p *Parser) parseInfix(left Node) (Node, error) {
	tok := p.current
	switch tok.Type {
	case TokenParenOpen:
		return p.parseCall(left)
	case TokenDot:
		p.advance()
		if p.current.Type != TokenName {
			return nil, p.errorf("expected attribute name")
		}
		name := p.current.Value
		p.advance()
		return &Attribute{Position: tok.Position, Target: left, Ident: name}, nil
	}

	prec := precedence[tok.Type]
	p.advance()
	rbp := prec
	if tok.Type == TokenPow {
		rbp = prec - 1
	}
	right, err := p.parseExpression(rbp)
	if err != nil {
		return nil, err
	}
	if prec == bpCompare {
		return &Compare{Position: tok.Position, Op: tok.Type, Left: left, Right: right}, nil
	}
	return &Binary{Position: tok.Position, Op: tok.Type, Left: left, Right: right}, nil
}

func (p *Parser) parseCall(fn Node) (Node, error) {
	pos := p.current.Position
	p.advance()
	call := &Call{Position: pos, Func: fn}
	if p.current.Type == TokenParenClose {
		p.advance()
		return call, nil
	}
	for {
		arg, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		if p.current.Type == TokenComma {
			p.advance()
			continue
		}
		if err := p.expect(TokenParenClose); err != nil {
			return nil, err
		}
		return call, nil
	}
}
