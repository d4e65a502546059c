package syntax

import "fmt"

// LexError is a lexical error with the position of the offending input.
type LexError struct {
	Msg  string
	Line int
	Col  int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

const tabStop = 8

// Lexer turns husk source text into a token stream. It is modal: at the
// start of each logical line it measures indentation and synthesizes
// INDENT/DEDENT tokens, inside brackets it joins lines implicitly, and
// inside $(...) or $[...] it switches to shell-word scanning until the
// matching closer.
type Lexer struct {
	input []byte
	file  string
	pos   int
	line  int
	col   int

	indents     []int
	pending     []Token
	parenDepth  int
	modes       []byte // 'p' for $(...), 'b' for $[...]
	atLineStart bool
	hasContent  bool
	finished    bool
}

func NewLexer(input []byte, file string) *Lexer {
	return &Lexer{
		input:       input,
		file:        file,
		line:        1,
		col:         1,
		indents:     []int{0},
		atLineStart: true,
	}
}

// Filename returns the display name of the input.
func (l *Lexer) Filename() string { return l.file }

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) errorf(line, col int, format string, args ...any) error {
	return &LexError{Msg: fmt.Sprintf(format, args...), Line: line, Col: col}
}

func (l *Lexer) token(kind, lit string, line, col int) Token {
	return Token{Kind: kind, Lit: lit, Line: line, Col: col}
}

// Next returns the next token. After the input is exhausted it keeps
// returning EOF tokens.
func (l *Lexer) Next() (Token, error) {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok, nil
	}
	if l.finished {
		return l.token(EOF, "", l.line, l.col), nil
	}
	if len(l.modes) > 0 {
		return l.nextWord()
	}

	for {
		if l.atLineStart && l.parenDepth == 0 {
			tok, emitted, err := l.scanIndentation()
			if err != nil {
				return Token{}, err
			}
			if emitted {
				return tok, nil
			}
			if l.finished {
				return l.finish()
			}
		}

		ch := l.peek()

		switch {
		case l.pos >= len(l.input):
			return l.finish()
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.advance()
		case ch == '\\' && l.peekN(1) == '\n':
			l.advanceN(2)
		case ch == '#':
			for l.peek() != 0 && l.peek() != '\n' {
				l.advance()
			}
		case ch == '\n':
			l.advance()
			if l.parenDepth > 0 {
				continue
			}
			l.atLineStart = true
			if l.hasContent {
				l.hasContent = false
				return l.token(NEWLINE, "\n", l.line-1, l.col), nil
			}
		default:
			return l.scanToken()
		}
	}
}

// scanIndentation measures the leading whitespace of a line and queues
// INDENT/DEDENT tokens. Blank and comment-only lines produce nothing.
func (l *Lexer) scanIndentation() (Token, bool, error) {
	width := 0
	for {
		switch l.peek() {
		case ' ':
			width++
			l.advance()
			continue
		case '\t':
			width = (width/tabStop + 1) * tabStop
			l.advance()
			continue
		}
		break
	}

	ch := l.peek()
	if ch == '#' {
		for l.peek() != 0 && l.peek() != '\n' {
			l.advance()
		}
		ch = l.peek()
	}
	if ch == '\n' {
		l.advance()
		return Token{}, false, nil
	}
	if l.pos >= len(l.input) {
		l.finished = true
		return Token{}, false, nil
	}

	l.atLineStart = false
	top := l.indents[len(l.indents)-1]
	switch {
	case width > top:
		l.indents = append(l.indents, width)
		return l.token(INDENT, "", l.line, l.col), true, nil
	case width < top:
		for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
			l.indents = l.indents[:len(l.indents)-1]
			l.pending = append(l.pending, l.token(DEDENT, "", l.line, l.col))
		}
		if l.indents[len(l.indents)-1] != width {
			return Token{}, false, l.errorf(l.line, l.col, "unindent does not match any outer indentation level")
		}
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok, true, nil
	}
	return Token{}, false, nil
}

// finish emits the trailing NEWLINE, any open DEDENTs, and finally EOF.
func (l *Lexer) finish() (Token, error) {
	l.finished = true
	if l.hasContent {
		l.hasContent = false
		l.pending = append(l.pending, l.token(NEWLINE, "\n", l.line, l.col))
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.pending = append(l.pending, l.token(DEDENT, "", l.line, l.col))
	}
	l.pending = append(l.pending, l.token(EOF, "", l.line, l.col))
	tok := l.pending[0]
	l.pending = l.pending[1:]
	return tok, nil
}

func (l *Lexer) scanToken() (Token, error) {
	l.hasContent = true
	line, col := l.line, l.col
	ch := l.peek()

	switch {
	case isNameStart(ch):
		return l.scanName(line, col)
	case isDigit(ch) || (ch == '.' && isDigit(l.peekN(1))):
		return l.scanNumber(line, col)
	case ch == '\'' || ch == '"':
		return l.scanString(line, col)
	case ch == '$':
		return l.scanDollar(line, col)
	}
	return l.scanOperator(line, col)
}

func (l *Lexer) scanName(line, col int) (Token, error) {
	start := l.pos
	for isNameChar(l.peek()) {
		l.advance()
	}
	lit := string(l.input[start:l.pos])

	// String prefixes: r'...', b"...", f'...' and friends.
	if len(lit) <= 2 && (l.peek() == '\'' || l.peek() == '"') && isStringPrefix(lit) {
		tok, err := l.scanString(line, col)
		if err != nil {
			return Token{}, err
		}
		tok.Lit = lit + tok.Lit
		return tok, nil
	}

	return l.token(LookupKeyword(lit), lit, line, col), nil
}

func isStringPrefix(lit string) bool {
	for i := 0; i < len(lit); i++ {
		switch lit[i] {
		case 'r', 'R', 'b', 'B', 'f', 'F', 'u', 'U':
		default:
			return false
		}
	}
	return true
}

func (l *Lexer) scanNumber(line, col int) (Token, error) {
	start := l.pos
	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X') {
		l.advanceN(2)
		for isHexDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
		return l.token(NUMBER, string(l.input[start:l.pos]), line, col), nil
	}
	if l.peek() == '0' && (l.peekN(1) == 'o' || l.peekN(1) == 'O') {
		l.advanceN(2)
		for l.peek() >= '0' && l.peek() <= '7' {
			l.advance()
		}
		return l.token(NUMBER, string(l.input[start:l.pos]), line, col), nil
	}
	if l.peek() == '0' && (l.peekN(1) == 'b' || l.peekN(1) == 'B') {
		l.advanceN(2)
		for l.peek() == '0' || l.peek() == '1' || l.peek() == '_' {
			l.advance()
		}
		return l.token(NUMBER, string(l.input[start:l.pos]), line, col), nil
	}

	for isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		l.advance()
		for isDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	} else if l.peek() == '.' && !isNameStart(l.peekN(1)) && l.peekN(1) != '.' {
		l.advance()
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		next := l.peekN(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekN(2))) {
			l.advance()
			if l.peek() == '+' || l.peek() == '-' {
				l.advance()
			}
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}
	return l.token(NUMBER, string(l.input[start:l.pos]), line, col), nil
}

func (l *Lexer) scanString(line, col int) (Token, error) {
	quote := l.peek()
	if l.peekN(1) == quote && l.peekN(2) == quote {
		return l.scanTripleString(line, col, quote)
	}
	start := l.pos
	l.advance()
	for {
		ch := l.peek()
		switch {
		case ch == 0:
			return Token{}, l.errorf(line, col, "unterminated string literal")
		case ch == '\n':
			return Token{}, l.errorf(line, col, "EOL while scanning string literal")
		case ch == '\\':
			l.advanceN(2)
		case ch == quote:
			l.advance()
			return l.token(STRING, string(l.input[start:l.pos]), line, col), nil
		default:
			l.advance()
		}
	}
}

func (l *Lexer) scanTripleString(line, col int, quote byte) (Token, error) {
	start := l.pos
	l.advanceN(3)
	for {
		if l.peek() == 0 {
			return Token{}, l.errorf(line, col, "unterminated string literal")
		}
		if l.peek() == '\\' {
			l.advanceN(2)
			continue
		}
		if l.peek() == quote && l.peekN(1) == quote && l.peekN(2) == quote {
			l.advanceN(3)
			return l.token(STRING, string(l.input[start:l.pos]), line, col), nil
		}
		l.advance()
	}
}

func (l *Lexer) scanDollar(line, col int) (Token, error) {
	l.advance()
	ch := l.peek()
	switch {
	case isNameStart(ch):
		start := l.pos
		for isNameChar(l.peek()) {
			l.advance()
		}
		return l.token(DOLLARNAME, string(l.input[start:l.pos]), line, col), nil
	case ch == '(':
		l.advance()
		l.modes = append(l.modes, 'p')
		return l.token(DOLLARLPAREN, "$(", line, col), nil
	case ch == '[':
		l.advance()
		l.modes = append(l.modes, 'b')
		return l.token(DOLLARLBRACKET, "$[", line, col), nil
	case ch == '{':
		l.advance()
		l.parenDepth++
		return l.token(DOLLARLBRACE, "${", line, col), nil
	}
	return Token{}, l.errorf(line, col, "invalid token '$'")
}

var operators3 = map[string]string{
	"**=": POWEQUAL,
	"//=": DOUBLEDIVEQUAL,
	"<<=": LSHIFTEQUAL,
	">>=": RSHIFTEQUAL,
	"...": ELLIPSIS,
}

var operators2 = map[string]string{
	"**": POW,
	"//": DOUBLEDIV,
	"<<": LSHIFT,
	">>": RSHIFT,
	"<=": LE,
	">=": GE,
	"==": EQ,
	"!=": NE,
	"->": ARROW,
	"+=": PLUSEQUAL,
	"-=": MINUSEQUAL,
	"*=": TIMESEQUAL,
	"/=": DIVEQUAL,
	"%=": MODEQUAL,
	"&=": AMPERSANDEQUAL,
	"|=": PIPEEQUAL,
	"^=": XOREQUAL,
}

var operators1 = map[byte]string{
	'+': PLUS,
	'-': MINUS,
	'*': TIMES,
	'/': DIVIDE,
	'%': MOD,
	'@': AT,
	'&': AMPERSAND,
	'|': PIPE,
	'^': XOR,
	'~': TILDE,
	'<': LT,
	'>': GT,
	'(': LPAREN,
	')': RPAREN,
	'[': LBRACKET,
	']': RBRACKET,
	'{': LBRACE,
	'}': RBRACE,
	',': COMMA,
	':': COLON,
	'.': DOT,
	';': SEMI,
	'=': ASSIGN,
}

func (l *Lexer) scanOperator(line, col int) (Token, error) {
	if l.pos+3 <= len(l.input) {
		lit := string(l.input[l.pos : l.pos+3])
		if kind, ok := operators3[lit]; ok {
			l.advanceN(3)
			return l.token(kind, lit, line, col), nil
		}
	}
	if l.pos+2 <= len(l.input) {
		lit := string(l.input[l.pos : l.pos+2])
		if kind, ok := operators2[lit]; ok {
			l.advanceN(2)
			return l.token(kind, lit, line, col), nil
		}
	}
	ch := l.peek()
	if kind, ok := operators1[ch]; ok {
		l.advance()
		switch ch {
		case '(', '[', '{':
			l.parenDepth++
		case ')', ']', '}':
			if l.parenDepth > 0 {
				l.parenDepth--
			}
		}
		return l.token(kind, string(ch), line, col), nil
	}
	return Token{}, l.errorf(line, col, "invalid character %q", string(ch))
}

// nextWord scans inside $(...) and $[...]: whitespace separates words,
// '|' forms pipelines, and the matching closer ends the mode.
func (l *Lexer) nextWord() (Token, error) {
	for {
		ch := l.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			l.advance()
			continue
		}
		break
	}

	line, col := l.line, l.col
	ch := l.peek()
	switch {
	case l.pos >= len(l.input):
		return l.finish()
	case ch == '|':
		l.advance()
		return l.token(PIPE, "|", line, col), nil
	case ch == ')':
		l.advance()
		l.modes = l.modes[:len(l.modes)-1]
		return l.token(RPAREN, ")", line, col), nil
	case ch == ']':
		l.advance()
		l.modes = l.modes[:len(l.modes)-1]
		return l.token(RBRACKET, "]", line, col), nil
	}

	start := l.pos
	for {
		ch := l.peek()
		if ch == 0 || ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '|' || ch == ')' || ch == ']' {
			break
		}
		l.advance()
	}
	return l.token(WORD, string(l.input[start:l.pos]), line, col), nil
}

func isNameStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch >= 0x80
}

func isNameChar(ch byte) bool {
	return isNameStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
