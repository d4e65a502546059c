package syntax

import (
	"fmt"
	"sort"
)

// Token kinds. Kinds double as the terminal names used by the grammar
// table, so every name here may appear on the right-hand side of a
// production.
const (
	EOF     = "EOF"
	NEWLINE = "NEWLINE"
	INDENT  = "INDENT"
	DEDENT  = "DEDENT"

	NAME   = "NAME"
	NUMBER = "NUMBER"
	STRING = "STRING"

	// Shell-word tokens, produced only inside $(...) and $[...].
	WORD = "WORD"

	// Keywords.
	AND      = "AND"
	AS       = "AS"
	ASSERT   = "ASSERT"
	BREAK    = "BREAK"
	CLASS    = "CLASS"
	CONTINUE = "CONTINUE"
	DEF      = "DEF"
	DEL      = "DEL"
	ELIF     = "ELIF"
	ELSE     = "ELSE"
	EXCEPT   = "EXCEPT"
	FALSE    = "FALSE"
	FINALLY  = "FINALLY"
	FOR      = "FOR"
	FROM     = "FROM"
	GLOBAL   = "GLOBAL"
	IF       = "IF"
	IMPORT   = "IMPORT"
	IN       = "IN"
	IS       = "IS"
	LAMBDA   = "LAMBDA"
	NONE     = "NONE"
	NONLOCAL = "NONLOCAL"
	NOT      = "NOT"
	OR       = "OR"
	PASS     = "PASS"
	RAISE    = "RAISE"
	RETURN   = "RETURN"
	TRUE     = "TRUE"
	TRY      = "TRY"
	WHILE    = "WHILE"
	WITH     = "WITH"
	YIELD    = "YIELD"

	// Operators and delimiters.
	PLUS      = "PLUS"
	MINUS     = "MINUS"
	TIMES     = "TIMES"
	DIVIDE    = "DIVIDE"
	DOUBLEDIV = "DOUBLEDIV"
	MOD       = "MOD"
	POW       = "POW"
	PIPE      = "PIPE"
	XOR       = "XOR"
	AMPERSAND = "AMPERSAND"
	TILDE     = "TILDE"
	LSHIFT    = "LSHIFT"
	RSHIFT    = "RSHIFT"
	LT        = "LT"
	GT        = "GT"
	LE        = "LE"
	GE        = "GE"
	EQ        = "EQ"
	NE        = "NE"
	ASSIGN    = "ASSIGN"
	LPAREN    = "LPAREN"
	RPAREN    = "RPAREN"
	LBRACKET  = "LBRACKET"
	RBRACKET  = "RBRACKET"
	LBRACE    = "LBRACE"
	RBRACE    = "RBRACE"
	COMMA     = "COMMA"
	COLON     = "COLON"
	SEMI      = "SEMI"
	DOT       = "DOT"
	AT        = "AT"
	ARROW     = "ARROW"
	ELLIPSIS  = "ELLIPSIS"

	// Augmented assignment.
	PLUSEQUAL      = "PLUSEQUAL"
	MINUSEQUAL     = "MINUSEQUAL"
	TIMESEQUAL     = "TIMESEQUAL"
	DIVEQUAL       = "DIVEQUAL"
	DOUBLEDIVEQUAL = "DOUBLEDIVEQUAL"
	MODEQUAL       = "MODEQUAL"
	POWEQUAL       = "POWEQUAL"
	LSHIFTEQUAL    = "LSHIFTEQUAL"
	RSHIFTEQUAL    = "RSHIFTEQUAL"
	AMPERSANDEQUAL = "AMPERSANDEQUAL"
	XOREQUAL       = "XOREQUAL"
	PIPEEQUAL      = "PIPEEQUAL"

	// Subprocess forms.
	DOLLARNAME     = "DOLLARNAME"
	DOLLARLPAREN   = "DOLLARLPAREN"
	DOLLARLBRACKET = "DOLLARLBRACKET"
	DOLLARLBRACE   = "DOLLARLBRACE"

	// Pseudo-terminal used only in the precedence table.
	UMINUS = "UMINUS"
)

var keywords = map[string]string{
	"and":      AND,
	"as":       AS,
	"assert":   ASSERT,
	"break":    BREAK,
	"class":    CLASS,
	"continue": CONTINUE,
	"def":      DEF,
	"del":      DEL,
	"elif":     ELIF,
	"else":     ELSE,
	"except":   EXCEPT,
	"finally":  FINALLY,
	"for":      FOR,
	"from":     FROM,
	"global":   GLOBAL,
	"if":       IF,
	"import":   IMPORT,
	"in":       IN,
	"is":       IS,
	"lambda":   LAMBDA,
	"nonlocal": NONLOCAL,
	"not":      NOT,
	"or":       OR,
	"pass":     PASS,
	"raise":    RAISE,
	"return":   RETURN,
	"try":      TRY,
	"while":    WHILE,
	"with":     WITH,
	"yield":    YIELD,
	"True":     TRUE,
	"False":    FALSE,
	"None":     NONE,
}

// LookupKeyword maps an identifier to its keyword kind, or NAME.
func LookupKeyword(lit string) string {
	if kind, ok := keywords[lit]; ok {
		return kind
	}
	return NAME
}

// Keywords returns every reserved word, sorted.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for lit := range keywords {
		out = append(out, lit)
	}
	sort.Strings(out)
	return out
}

// Token is a single lexical token. Line is 1-based, Col is the 1-based
// column of the token's first character.
type Token struct {
	Kind string
	Lit  string
	Line int
	Col  int
}

// Symbol returns the terminal name of the token for the grammar engine.
func (t Token) Symbol() string { return t.Kind }

func (t Token) String() string {
	return fmt.Sprintf("%d:%d %s %q", t.Line, t.Col, t.Kind, t.Lit)
}
