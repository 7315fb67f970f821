package arith

// Node is a parsed expression. The parser recognises more shapes than the
// evaluator accepts so that disallowed constructs are distinct node types.
type Node interface {
	Pos() int
}

// Number is a numeric literal.
type Number struct {
	Position int
	Value    float64
}

// Unary is a prefix + or -.
type Unary struct {
	Position int
	Op       TokenType
	Operand  Node
}

// Binary is an infix arithmetic operator.
type Binary struct {
	Position int
	Op       TokenType
	Left     Node
	Right    Node
}

// Compare is a comparison operator.
type Compare struct {
	Position int
	Op       TokenType
	Left     Node
	Right    Node
}

// Name is a bare identifier.
type Name struct {
	Position int
	Ident    string
}

// Attribute is X.name.
type Attribute struct {
	Position int
	Target   Node
	Ident    string
}

// Call is X(args...).
type Call struct {
	Position int
	Func     Node
	Args     []Node
}

func (n *Number) Pos() int    { return n.Position }
func (n *Unary) Pos() int     { return n.Position }
func (n *Binary) Pos() int    { return n.Position }
func (n *Compare) Pos() int   { return n.Position }
func (n *Name) Pos() int      { return n.Position }
func (n *Attribute) Pos() int { return n.Position }
func (n *Call) Pos() int      { return n.Position }
