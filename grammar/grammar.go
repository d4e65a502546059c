// Package grammar implements a table-driven shift/reduce parser over a
// declaratively defined grammar. Productions are registered through a
// fluent builder, shift/reduce conflicts among operators are resolved
// by an ordered precedence table, and each production carries an action
// that combines the values of its right-hand side into the value of its
// left-hand side.
package grammar

import "fmt"

// Value is whatever a production action produces, typically a syntax
// tree node. The engine never inspects values.
type Value = any

// Action combines the reduced values of a production's right-hand side
// into the value for its left-hand side. args[i] corresponds to the
// i-th right-hand-side symbol; an empty alternative receives no args.
type Action func(args []Value) Value

// Token is the engine's view of one lexical token.
type Token interface {
	// Symbol returns the terminal name the grammar knows the token by.
	Symbol() string
}

// TokenSource produces tokens one at a time. After the input ends it
// must keep returning tokens whose Symbol is EOF.
type TokenSource interface {
	Next() (Token, error)
}

// EOF is the distinguished end-of-input terminal. Token sources emit
// it; grammars never reference it.
const EOF = "EOF"

const acceptSymbol = "$accept"

type symRef struct {
	name     string
	terminal bool
}

type rule struct {
	index   int
	lhs     string
	rhs     []symRef
	precTok string // %prec-style override; empty means rightmost terminal
	action  Action
}

func (r *rule) String() string {
	s := r.lhs + " :"
	if len(r.rhs) == 0 {
		s += " <empty>"
	}
	for _, sym := range r.rhs {
		s += " " + sym.name
	}
	return s
}

// Builder collects productions and the precedence table. Optional
// sub-expressions are declared as ordinary two-alternative rules (one
// empty, one present); nothing is generated at runtime.
type Builder struct {
	rules []*rule
	prec  Precedence
}

func NewBuilder() *Builder {
	return &Builder{}
}

// SetPrecedence installs the operator precedence table, lowest level
// first.
func (b *Builder) SetPrecedence(p Precedence) {
	b.prec = p
}

// Rule starts one alternative for the given left-hand symbol. Chain N,
// T and Prec calls and finish with Do, End or Epsilon.
func (b *Builder) Rule(lhs string) *RuleBuilder {
	return &RuleBuilder{b: b, r: &rule{lhs: lhs}}
}

// Opt declares the canonical optional-element pair for name: an empty
// alternative yielding nil and a single-nonterminal pass-through. The
// result is a plain static rule pair, visible in dumps like any other.
func (b *Builder) Opt(name, wrapped string) {
	b.Rule(name).Epsilon()
	b.Rule(name).N(wrapped).End()
}

// RuleBuilder accumulates the right-hand side of one alternative.
type RuleBuilder struct {
	b *Builder
	r *rule
}

// N appends a nonterminal reference.
func (rb *RuleBuilder) N(name string) *RuleBuilder {
	rb.r.rhs = append(rb.r.rhs, symRef{name: name})
	return rb
}

// T appends a terminal reference.
func (rb *RuleBuilder) T(name string) *RuleBuilder {
	rb.r.rhs = append(rb.r.rhs, symRef{name: name, terminal: true})
	return rb
}

// Prec overrides the alternative's precedence with that of the given
// terminal, like yacc's %prec.
func (rb *RuleBuilder) Prec(tok string) *RuleBuilder {
	rb.r.precTok = tok
	return rb
}

// Do finishes the alternative with an explicit action.
func (rb *RuleBuilder) Do(a Action) {
	rb.r.action = a
	rb.finish()
}

// End finishes the alternative with the default action: pass through
// the first right-hand-side value, or nil for an empty alternative.
func (rb *RuleBuilder) End() {
	rb.r.action = func(args []Value) Value {
		if len(args) == 0 {
			return nil
		}
		return args[0]
	}
	rb.finish()
}

// Epsilon finishes the alternative as empty; its value is nil, the
// sentinel for an absent optional element.
func (rb *RuleBuilder) Epsilon() {
	if len(rb.r.rhs) != 0 {
		panic("grammar: Epsilon on non-empty alternative " + rb.r.lhs)
	}
	rb.End()
}

func (rb *RuleBuilder) finish() {
	rb.r.index = len(rb.b.rules)
	rb.b.rules = append(rb.b.rules, rb.r)
}

// Build validates the grammar and returns an engine. Parse tables are
// constructed lazily per start symbol and cached.
func (b *Builder) Build() (*Engine, error) {
	if len(b.rules) == 0 {
		return nil, fmt.Errorf("grammar: no rules")
	}
	byLHS := make(map[string][]*rule)
	for _, r := range b.rules {
		byLHS[r.lhs] = append(byLHS[r.lhs], r)
	}
	for _, r := range b.rules {
		for _, sym := range r.rhs {
			if sym.terminal {
				if sym.name == EOF {
					return nil, fmt.Errorf("grammar: rule %q references EOF", r.lhs)
				}
				continue
			}
			if len(byLHS[sym.name]) == 0 {
				return nil, fmt.Errorf("grammar: rule %q references undefined nonterminal %q", r.lhs, sym.name)
			}
		}
	}
	return &Engine{
		rules:  b.rules,
		byLHS:  byLHS,
		prec:   b.prec.table(),
		tables: make(map[string]*parseTable),
	}, nil
}
