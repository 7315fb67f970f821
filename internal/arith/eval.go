// Package arith evaluates arithmetic candidate text without executing it.
// Only numeric literals, a unary sign, + - * / and parentheses evaluate;
// anything else yields no value.
package arith

import (
	"errors"
	"fmt"
	"math"
)

// Tolerance is the absolute difference under which two values match.
const Tolerance = 1e-9

var (
	// ErrNotAllowed marks a construct outside the permitted node set.
	ErrNotAllowed = errors.New("construct not allowed")
	// ErrDivisionByZero is returned for x / 0.
	ErrDivisionByZero = errors.New("division by zero")
)

// Evaluate returns the value of text, or false when the text does not parse,
// uses a disallowed construct, divides by zero, or holds a literal outside
// float64 range. It never panics.
func Evaluate(text string) (value float64, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			value, ok = 0, false
		}
	}()
	node, err := Parse(text)
	if err != nil {
		return 0, false
	}
	v, err := Eval(node)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Eval computes a parsed tree. Division is real-valued.
func Eval(node Node) (float64, error) {
	switch n := node.(type) {
	case *Number:
		if math.IsInf(n.Value, 0) || math.IsNaN(n.Value) {
			return 0, fmt.Errorf("literal out of range at offset %d", n.Position)
		}
		return n.Value, nil
	case *Unary:
		v, err := Eval(n.Operand)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case TokenPlus:
			return v, nil
		case TokenMinus:
			return -v, nil
		}
	case *Binary:
		if !allowedBinary(n.Op) {
			break
		}
		left, err := Eval(n.Left)
		if err != nil {
			return 0, err
		}
		right, err := Eval(n.Right)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case TokenPlus:
			return left + right, nil
		case TokenMinus:
			return left - right, nil
		case TokenMult:
			return left * right, nil
		case TokenDiv:
			if right == 0 {
				return 0, ErrDivisionByZero
			}
			return left / right, nil
		}
	}
	if node == nil {
		return 0, fmt.Errorf("%w: empty node", ErrNotAllowed)
	}
	return 0, fmt.Errorf("%w: %T at offset %d", ErrNotAllowed, node, node.Pos())
}

func allowedBinary(op TokenType) bool {
	switch op {
	case TokenPlus, TokenMinus, TokenMult, TokenDiv:
		return true
	}
	return false
}

// Matches reports whether got equals want within Tolerance.
func Matches(got, want float64) bool {
	return math.Abs(got-want) <= Tolerance
}
