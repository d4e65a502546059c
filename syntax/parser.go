// Package syntax implements the husk front end: a modal lexer, a
// declarative grammar compiled to shift/reduce tables, and a parser
// that produces ast trees with location-aware errors.
package syntax

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/husklang/husk/grammar"
	"github.com/husklang/husk/syntax/ast"
)

var log = commonlog.GetLogger("husk.syntax")

// SyntaxError is any lexical or grammatical error, carrying the
// location where the input stopped making sense. A zero Loc means the
// input ended before the error position could be pinned down.
type SyntaxError struct {
	Loc Location
	Msg string
}

func (e *SyntaxError) Error() string {
	if e.Loc.IsZero() {
		return ": " + e.Msg
	}
	return e.Loc.String() + ": " + e.Msg
}

// Parser turns husk source text into an ast.Module tree. The grammar
// tables are built once per Parser; Parse resets all per-input state,
// so one Parser can run any number of inputs sequentially. It is not
// safe for concurrent use.
type Parser struct {
	engine *grammar.Engine
	scopes *ScopeStack

	file  string
	debug int
	lexer *Lexer
}

// ParseOption configures a single Parse call.
type ParseOption func(*Parser)

// WithFilename sets the display name used in locations and error
// messages. The default is "<code>".
func WithFilename(name string) ParseOption {
	return func(p *Parser) { p.file = name }
}

// WithDebug enables token tracing at the given verbosity.
func WithDebug(level int) ParseOption {
	return func(p *Parser) { p.debug = level }
}

// NewParser builds the grammar and its parse tables.
func NewParser() (*Parser, error) {
	p := &Parser{scopes: NewScopeStack()}
	eng, err := p.buildGrammar()
	if err != nil {
		return nil, err
	}
	if _, _, err := eng.Conflicts("module"); err != nil {
		return nil, err
	}
	p.engine = eng
	return p, nil
}

// Parse runs the input through the lexer and the parse tables. Empty
// input (no statements at all) yields a nil tree and no error.
func (p *Parser) Parse(source string, opts ...ParseOption) (*ast.Node, error) {
	p.file = "<code>"
	p.debug = 0
	for _, opt := range opts {
		opt(p)
	}
	p.lexer = NewLexer([]byte(source), p.file)
	p.scopes.Reset()

	v, err := p.engine.Parse(&tokenSource{p: p}, "module", p.leaf)
	if err != nil {
		return nil, p.syntaxError(err)
	}
	if v == nil {
		return nil, nil
	}
	return v.(*ast.Node), nil
}

// CurrentLocation is the parser's position at the given line of the
// input being parsed, without column information.
func (p *Parser) CurrentLocation(line int) Location {
	return NewLocation(p.file, line)
}

// CurrentLocationCol is CurrentLocation with a column.
func (p *Parser) CurrentLocationCol(line, col int) Location {
	return NewLocationCol(p.file, line, col)
}

// tokenSource adapts the lexer to the engine and traces tokens when
// debugging is on.
type tokenSource struct {
	p *Parser
}

func (s *tokenSource) Next() (grammar.Token, error) {
	tok, err := s.p.lexer.Next()
	if err != nil {
		return nil, err
	}
	if s.p.debug > 0 {
		log.Debugf("token %s", tok)
	}
	return tok, nil
}

// leaf converts a shifted token into its stack node.
func (p *Parser) leaf(t grammar.Token) grammar.Value {
	tok := t.(Token)
	return &ast.Node{
		Kind: ast.KindToken,
		Op:   tok.Kind,
		Lit:  tok.Lit,
		Loc:  &ast.Location{File: p.file, Line: tok.Line, Column: tok.Col},
	}
}

// syntaxError translates lexer and engine errors into SyntaxError
// values with source locations.
func (p *Parser) syntaxError(err error) error {
	var lexErr *LexError
	if errors.As(err, &lexErr) {
		return &SyntaxError{
			Loc: p.CurrentLocationCol(lexErr.Line, lexErr.Col),
			Msg: lexErr.Msg,
		}
	}
	var parseErr *grammar.ParseError
	if errors.As(err, &parseErr) {
		if parseErr.AtEOF {
			return &SyntaxError{Msg: "no further code"}
		}
		tok := parseErr.Tok.(Token)
		what := tok.Lit
		if what == "" {
			what = tok.Kind
		}
		return &SyntaxError{
			Loc: p.CurrentLocationCol(tok.Line, tok.Col),
			Msg: fmt.Sprintf("code: %s", what),
		}
	}
	return err
}
