package arith

// TokenType identifies a lexical token.
type TokenType uint8

const (
	TokenEOF TokenType = iota
	TokenError

	TokenNumber // 12, 3.5, 1e-3
	TokenName   // identifiers

	TokenParenOpen  // (
	TokenParenClose // )
	TokenComma      // ,
	TokenDot        // .

	TokenPlus     // +
	TokenMinus    // -
	TokenMult     // *
	TokenDiv      // /
	TokenMod      // %
	TokenPow      // **
	TokenFloorDiv // //

	TokenEqual        // ==
	TokenNotEqual     // !=
	TokenLess         // <
	TokenLessEqual    // <=
	TokenGreater      // >
	TokenGreaterEqual // >=
)

var tokenNames = map[TokenType]string{
	TokenEOF:          "(eof)",
	TokenError:        "(error)",
	TokenNumber:       "(number)",
	TokenName:         "(name)",
	TokenParenOpen:    "(",
	TokenParenClose:   ")",
	TokenComma:        ",",
	TokenDot:          ".",
	TokenPlus:         "+",
	TokenMinus:        "-",
	TokenMult:         "*",
	TokenDiv:          "/",
	TokenMod:          "%",
	TokenPow:          "**",
	TokenFloorDiv:     "//",
	TokenEqual:        "==",
	TokenNotEqual:     "!=",
	TokenLess:         "<",
	TokenLessEqual:    "<=",
	TokenGreater:      ">",
	TokenGreaterEqual: ">=",
}

// String returns the token's source spelling or a descriptive name.
func (tt TokenType) String() string {
	if s, ok := tokenNames[tt]; ok {
		return s
	}
	return "(unknown)"
}

// Token is a lexical token with its byte offset in the input.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}

// symbols1 maps single-character operators.
var symbols1 = map[rune]TokenType{
	'(': TokenParenOpen,
	')': TokenParenClose,
	',': TokenComma,
	'.': TokenDot,
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenMult,
	'/': TokenDiv,
	'%': TokenMod,
	'<': TokenLess,
	'>': TokenGreater,
}

type runeTokenType struct {
	r  rune
	tt TokenType
}

// symbols2 maps the first character of two-character operators to their
// possible second characters.
var symbols2 = map[rune][]runeTokenType{
	'*': {{'*', TokenPow}},
	'/': {{'/', TokenFloorDiv}},
	'=': {{'=', TokenEqual}},
	'!': {{'=', TokenNotEqual}},
	'<': {{'=', TokenLessEqual}},
	'>': {{'=', TokenGreaterEqual}},
}
