// Package ast defines the syntax tree produced by the husk parser.
//
// Nodes are deliberately generic: each grammar action combines the
// values of its right-hand side into one node, attaching the source
// location where the construct began. Consumers dispatch on Kind.
package ast

import (
	"strings"

	"github.com/goccy/go-json"
)

// Node kinds produced by the grammar actions.
const (
	KindModule     = "Module"
	KindExprStmt   = "ExprStmt"
	KindAssign     = "Assign"
	KindAugAssign  = "AugAssign"
	KindPass       = "Pass"
	KindBreak      = "Break"
	KindContinue   = "Continue"
	KindReturn     = "Return"
	KindRaise      = "Raise"
	KindDel        = "Del"
	KindAssert     = "Assert"
	KindGlobal     = "Global"
	KindNonlocal   = "Nonlocal"
	KindImport     = "Import"
	KindImportFrom = "ImportFrom"
	KindAlias      = "Alias"
	KindIf         = "If"
	KindElif       = "Elif"
	KindWhile      = "While"
	KindFor        = "For"
	KindTry        = "Try"
	KindExcept     = "Except"
	KindWith       = "With"
	KindWithItem   = "WithItem"
	KindFuncDef    = "FuncDef"
	KindClassDef   = "ClassDef"
	KindDecorated  = "Decorated"
	KindDecorator  = "Decorator"
	KindParams     = "Params"
	KindParam      = "Param"
	KindStarParam  = "StarParam"
	KindKwParam    = "KwParam"
	KindSuite      = "Suite"

	KindTernary    = "Ternary"
	KindLambda     = "Lambda"
	KindBoolOp     = "BoolOp"
	KindBinOp      = "BinOp"
	KindUnaryOp    = "UnaryOp"
	KindCompare    = "Compare"
	KindCall       = "Call"
	KindArgs       = "Args"
	KindKeywordArg = "KeywordArg"
	KindStarArg    = "StarArg"
	KindKwArg      = "KwArg"
	KindAttribute  = "Attribute"
	KindSubscript  = "Subscript"
	KindSlice      = "Slice"
	KindTuple      = "Tuple"
	KindList       = "List"
	KindSet        = "Set"
	KindDict       = "Dict"
	KindDictItem   = "DictItem"
	KindComp       = "Comp"
	KindCompFor    = "CompFor"
	KindCompIf     = "CompIf"
	KindStar       = "Star"
	KindYield      = "Yield"
	KindYieldFrom  = "YieldFrom"
	KindName       = "Name"
	KindNum        = "Num"
	KindStr        = "Str"
	KindConst      = "Const"

	KindEnvName        = "EnvName"
	KindEnvExpr        = "EnvExpr"
	KindSubprocCapture = "SubprocCapture"
	KindSubprocRun     = "SubprocRun"
	KindPipeline       = "Pipeline"
	KindCommand        = "Command"
	KindWord           = "Word"

	KindToken = "Token"
)

// Location mirrors syntax.Location without importing it; ast must stay
// import-free towards the parser packages.
type Location struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// Node is one node of the syntax tree. Leaf nodes carry the token
// lexeme in Lit; interior nodes carry Children. Op holds the operator
// name for BinOp/UnaryOp/BoolOp/Compare/AugAssign nodes.
type Node struct {
	Kind     string    `json:"kind"`
	Lit      string    `json:"lit,omitempty"`
	Op       string    `json:"op,omitempty"`
	Loc      *Location `json:"loc,omitempty"`
	Children []*Node   `json:"children,omitempty"`
}

// New returns an interior node with the given children. Nil children
// are kept: an absent optional element stays visible as an explicit nil
// until the consumer drops it.
func New(kind string, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// Leaf returns a leaf node carrying a token lexeme.
func Leaf(kind, lit string) *Node {
	return &Node{Kind: kind, Lit: lit}
}

// At attaches a location and returns the node.
func (n *Node) At(loc Location) *Node {
	n.Loc = &loc
	return n
}

// WithOp sets the operator name and returns the node.
func (n *Node) WithOp(op string) *Node {
	n.Op = op
	return n
}

// WithLit sets the lexeme and returns the node.
func (n *Node) WithLit(lit string) *Node {
	n.Lit = lit
	return n
}

// Child returns the i-th child, or nil when out of range.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Append adds children and returns the node.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// String renders the tree as a compact s-expression, which the tests
// use for structural comparison.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if n == nil {
		b.WriteString("_")
		return
	}
	if len(n.Children) == 0 {
		b.WriteString(n.Kind)
		if n.Op != "" {
			b.WriteString("[" + n.Op + "]")
		}
		if n.Lit != "" {
			b.WriteString(":" + n.Lit)
		}
		return
	}
	b.WriteString("(" + n.Kind)
	if n.Op != "" {
		b.WriteString("[" + n.Op + "]")
	}
	if n.Lit != "" {
		b.WriteString(":" + n.Lit)
	}
	for _, c := range n.Children {
		b.WriteString(" ")
		c.write(b)
	}
	b.WriteString(")")
}

// MarshalJSON uses goccy/go-json for the parse command's tree dumps.
func (n *Node) MarshalJSON() ([]byte, error) {
	type alias Node
	return json.Marshal((*alias)(n))
}
