package grammar

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

type testToken struct {
	sym string
	lit string
}

func (t testToken) Symbol() string { return t.sym }

type sliceSource struct {
	toks []testToken
	i    int
}

func (s *sliceSource) Next() (Token, error) {
	if s.i >= len(s.toks) {
		return testToken{sym: EOF}, nil
	}
	t := s.toks[s.i]
	s.i++
	return t, nil
}

// lexCalc splits a calculator expression into single-character tokens;
// digits become NUM.
func lexCalc(input string) *sliceSource {
	var toks []testToken
	for _, r := range input {
		switch {
		case r == ' ':
		case r >= '0' && r <= '9':
			toks = append(toks, testToken{sym: "NUM", lit: string(r)})
		default:
			toks = append(toks, testToken{sym: string(r), lit: string(r)})
		}
	}
	return &sliceSource{toks: toks}
}

// calcGrammar is a small arithmetic grammar whose actions render the
// grouping explicitly, so the tests can assert how conflicts resolved.
func calcGrammar(t *testing.T) *Engine {
	t.Helper()
	b := NewBuilder()
	b.SetPrecedence(Precedence{
		{Assoc: Left, Tokens: []string{"+", "-"}},
		{Assoc: Left, Tokens: []string{"*", "/"}},
		{Assoc: Right, Tokens: []string{"NEG"}},
		{Assoc: Right, Tokens: []string{"^"}},
	})

	binop := func(a []Value) Value {
		return fmt.Sprintf("(%s%s%s)", a[0], a[1], a[2])
	}
	for _, op := range []string{"+", "-", "*", "/", "^"} {
		b.Rule("expr").N("expr").T(op).N("expr").Do(binop)
	}
	b.Rule("expr").T("-").N("expr").Prec("NEG").Do(func(a []Value) Value {
		return fmt.Sprintf("(-%s)", a[1])
	})
	b.Rule("expr").T("NUM").End()
	b.Rule("expr").T("(").N("expr").T(")").Do(func(a []Value) Value {
		return a[1]
	})

	eng, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return eng
}

func calcLeaf(tok Token) Value {
	return tok.(testToken).lit
}

func TestEnginePrecedence(t *testing.T) {
	eng := calcGrammar(t)
	tests := []struct {
		input string
		want  string
	}{
		{"1", "1"},
		{"1+2", "(1+2)"},
		{"1+2*3", "(1+(2*3))"},
		{"1*2+3", "((1*2)+3)"},
		{"1-2-3", "((1-2)-3)"},
		{"1+2-3", "((1+2)-3)"},
		{"1^2^3", "(1^(2^3))"},
		{"-1^2", "(-(1^2))"},
		{"-1*2", "((-1)*2)"},
		{"- -1", "(-(-1))"},
		{"(1+2)*3", "((1+2)*3)"},
		{"1*(2+3)", "(1*(2+3))"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := eng.Parse(lexCalc(tt.input), "expr", calcLeaf)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEngineErrors(t *testing.T) {
	eng := calcGrammar(t)
	tests := []struct {
		input   string
		atEOF   bool
		wantTok string
	}{
		{"", true, ""},
		{"1+", true, ""},
		{"(1+2", true, ""},
		{"1 2", false, "NUM"},
		{")", false, ")"},
		{"1+*2", false, "*"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := eng.Parse(lexCalc(tt.input), "expr", calcLeaf)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse(%q) err = %v, want ParseError", tt.input, err)
			}
			if perr.AtEOF != tt.atEOF {
				t.Errorf("Parse(%q) AtEOF = %v, want %v", tt.input, perr.AtEOF, tt.atEOF)
			}
			if !tt.atEOF && perr.Tok.Symbol() != tt.wantTok {
				t.Errorf("Parse(%q) Tok = %s, want %s", tt.input, perr.Tok.Symbol(), tt.wantTok)
			}
		})
	}
}

func TestEngineOptionalRules(t *testing.T) {
	// list : "[" items_opt "]" ; items accumulate into a comma string.
	b := NewBuilder()
	b.Rule("list").T("[").N("items_opt").T("]").Do(func(a []Value) Value {
		if a[1] == nil {
			return "[]"
		}
		return "[" + a[1].(string) + "]"
	})
	b.Opt("items_opt", "items")
	b.Rule("items").T("NUM").End()
	b.Rule("items").N("items").T(",").T("NUM").Do(func(a []Value) Value {
		return a[0].(string) + "," + a[2].(string)
	})
	eng, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tests := []struct {
		input string
		want  string
	}{
		{"[]", "[]"},
		{"[1]", "[1]"},
		{"[1,2,3]", "[1,2,3]"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := eng.Parse(lexCalc(tt.input), "list", calcLeaf)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEngineConflictsResolvedByPrecedence(t *testing.T) {
	eng := calcGrammar(t)
	sr, rr, err := eng.Conflicts("expr")
	if err != nil {
		t.Fatalf("Conflicts: %v", err)
	}
	if sr != 0 || rr != 0 {
		t.Errorf("Conflicts = (%d, %d), want (0, 0): all operator conflicts should resolve via the precedence table", sr, rr)
	}
}

func TestEngineDefaultShift(t *testing.T) {
	// Dangling else: no precedence declared, so the shift/reduce
	// conflict is counted and resolved toward shift, binding the else
	// to the innermost if.
	b := NewBuilder()
	b.Rule("stmt").T("if").N("stmt").Do(func(a []Value) Value {
		return fmt.Sprintf("if(%s)", a[1])
	})
	b.Rule("stmt").T("if").N("stmt").T("else").N("stmt").Do(func(a []Value) Value {
		return fmt.Sprintf("ifelse(%s,%s)", a[1], a[3])
	})
	b.Rule("stmt").T("NUM").End()
	eng, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	sr, _, err := eng.Conflicts("stmt")
	if err != nil {
		t.Fatalf("Conflicts: %v", err)
	}
	if sr == 0 {
		t.Error("Conflicts sr = 0, want > 0 for the dangling else")
	}

	src := &sliceSource{toks: []testToken{
		{sym: "if"}, {sym: "if"}, {sym: "NUM", lit: "1"},
		{sym: "else"}, {sym: "NUM", lit: "2"},
	}}
	got, err := eng.Parse(src, "stmt", calcLeaf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if want := "if(ifelse(1,2))"; got != want {
		t.Errorf("Parse = %v, want %v", got, want)
	}
}

func TestBuildRejectsBadGrammars(t *testing.T) {
	t.Run("undefined nonterminal", func(t *testing.T) {
		b := NewBuilder()
		b.Rule("a").N("missing").End()
		if _, err := b.Build(); err == nil || !strings.Contains(err.Error(), "missing") {
			t.Errorf("Build err = %v, want undefined-nonterminal error", err)
		}
	})
	t.Run("explicit EOF reference", func(t *testing.T) {
		b := NewBuilder()
		b.Rule("a").T(EOF).End()
		if _, err := b.Build(); err == nil {
			t.Error("Build err = nil, want error for EOF reference")
		}
	})
	t.Run("unknown start symbol", func(t *testing.T) {
		b := NewBuilder()
		b.Rule("a").T("NUM").End()
		eng, err := b.Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if _, err := eng.Parse(lexCalc("1"), "nope", calcLeaf); err == nil {
			t.Error("Parse err = nil, want unknown start symbol error")
		}
	})
}
