package syntax

import (
	"errors"
	"strings"
	"testing"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	return p
}

func parseTree(t *testing.T, p *Parser, source string) string {
	t.Helper()
	tree, err := p.Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	if tree == nil {
		return ""
	}
	return tree.String()
}

func TestParseStatements(t *testing.T) {
	p := newTestParser(t)
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"assignment",
			"x = 1\n",
			"(Module (Assign Name:x Num:1))",
		},
		{
			"chained assignment",
			"a = b = 1\n",
			"(Module (Assign Name:a Name:b Num:1))",
		},
		{
			"augmented assignment",
			"x += 1\n",
			"(Module (AugAssign[+=] Name:x Num:1))",
		},
		{
			"tuple assignment",
			"a, b = 1, 2\n",
			"(Module (Assign (Tuple Name:a Name:b) (Tuple Num:1 Num:2)))",
		},
		{
			"semicolon separated",
			"pass; pass\n",
			"(Module (Suite Pass Pass))",
		},
		{
			"if elif else",
			"if a:\n    pass\nelif b:\n    pass\nelse:\n    pass\n",
			"(Module (If Name:a (Suite Pass) (Args (Elif Name:b (Suite Pass))) (Suite Pass)))",
		},
		{
			"while",
			"while x:\n    break\n",
			"(Module (While Name:x (Suite Break) _))",
		},
		{
			"for over tuple",
			"for k, v in items:\n    continue\n",
			"(Module (For (Tuple Name:k Name:v) Name:items (Suite Continue) _))",
		},
		{
			"function definition",
			"def f(x):\n    return x\n",
			"(Module (FuncDef:f (Params (Param:x _ _)) _ (Suite (Return Name:x))))",
		},
		{
			"function with annotations and defaults",
			"def f(x: int = 1) -> int:\n    pass\n",
			"(Module (FuncDef:f (Params (Param:x Name:int Num:1)) Name:int (Suite Pass)))",
		},
		{
			"class definition",
			"class C(Base):\n    pass\n",
			"(Module (ClassDef:C (Args Name:Base) (Suite Pass)))",
		},
		{
			"decorated function",
			"@deco\ndef f():\n    pass\n",
			"(Module (Decorated (Args (Decorator Name:deco _)) (FuncDef:f Params _ (Suite Pass))))",
		},
		{
			"try except finally",
			"try:\n    pass\nexcept ValueError as e:\n    pass\nfinally:\n    pass\n",
			"(Module (Try (Suite Pass) (Args (Except Name:ValueError Name:e (Suite Pass))) _ (Suite Pass)))",
		},
		{
			"with",
			"with open(f) as fh:\n    pass\n",
			"(Module (With (Args (WithItem (Call Name:open (Args Name:f)) Name:fh)) (Suite Pass)))",
		},
		{
			"imports",
			"import os.path as p\n",
			"(Module (Import (Alias Name:os.path Name:p)))",
		},
		{
			"from import",
			"from os import path, sep\n",
			"(Module (ImportFrom Name:os (Alias Name:path _) (Alias Name:sep _)))",
		},
		{
			"raise from",
			"raise E(x) from cause\n",
			"(Module (Raise (Call Name:E (Args Name:x)) Name:cause))",
		},
		{
			"global and del",
			"global a, b; del c\n",
			"(Module (Suite (Global Name:a Name:b) (Del Name:c)))",
		},
		{
			"yield value",
			"def g():\n    yield 1\n",
			"(Module (FuncDef:g Params _ (Suite (ExprStmt (Yield Num:1)))))",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseTree(t, p, tt.source); got != tt.want {
				t.Errorf("tree:\n got %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestParseExpressions(t *testing.T) {
	p := newTestParser(t)
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"precedence",
			"1 + 2 * 3\n",
			"(Module (ExprStmt (BinOp[+] Num:1 (BinOp[*] Num:2 Num:3))))",
		},
		{
			"left associativity",
			"1 - 2 - 3\n",
			"(Module (ExprStmt (BinOp[-] (BinOp[-] Num:1 Num:2) Num:3)))",
		},
		{
			"power is right associative",
			"2 ** 3 ** 2\n",
			"(Module (ExprStmt (BinOp[**] Num:2 (BinOp[**] Num:3 Num:2))))",
		},
		{
			"unary binds below power",
			"-x ** 2\n",
			"(Module (ExprStmt (UnaryOp[-] (BinOp[**] Name:x Num:2))))",
		},
		{
			"not under and",
			"not a and b\n",
			"(Module (ExprStmt (BoolOp[and] (UnaryOp[not] Name:a) Name:b)))",
		},
		{
			"comparison chain groups left",
			"a < b < c\n",
			"(Module (ExprStmt (Compare[<] (Compare[<] Name:a Name:b) Name:c)))",
		},
		{
			"membership",
			"a in b\n",
			"(Module (ExprStmt (Compare[in] Name:a Name:b)))",
		},
		{
			"ternary",
			"a if b else c\n",
			"(Module (ExprStmt (Ternary Name:a Name:b Name:c)))",
		},
		{
			"lambda",
			"lambda x, y=1: x\n",
			"(Module (ExprStmt (Lambda (Params (Param:x _ _) (Param:y _ Num:1)) Name:x)))",
		},
		{
			"call with keyword and star args",
			"f(a, b=1, *rest)\n",
			"(Module (ExprStmt (Call Name:f (Args Name:a (KeywordArg:b Num:1) (StarArg Name:rest)))))",
		},
		{
			"attribute chain",
			"a.b.c\n",
			"(Module (ExprStmt (Attribute:c (Attribute:b Name:a))))",
		},
		{
			"subscript and slice",
			"x[1:n]\n",
			"(Module (ExprStmt (Subscript Name:x (Slice Num:1 Name:n))))",
		},
		{
			"slice with step",
			"x[::2]\n",
			"(Module (ExprStmt (Subscript Name:x (Slice _ _ Num:2))))",
		},
		{
			"list display",
			"[1, 2]\n",
			"(Module (ExprStmt (List Num:1 Num:2)))",
		},
		{
			"dict display",
			"{'a': 1}\n",
			"(Module (ExprStmt (Dict (DictItem Str:'a' Num:1))))",
		},
		{
			"set display",
			"{1, 2}\n",
			"(Module (ExprStmt (Set Num:1 Num:2)))",
		},
		{
			"list comprehension",
			"[i for i in xs if i]\n",
			"(Module (ExprStmt (Comp[list] Name:i (CompFor Name:i Name:xs (CompIf Name:i _)))))",
		},
		{
			"dict comprehension",
			"{k: v for k, v in d}\n",
			"(Module (ExprStmt (Comp[dict] Name:k Name:v (CompFor (Tuple Name:k Name:v) Name:d _))))",
		},
		{
			"parenthesized grouping",
			"(1 + 2) * 3\n",
			"(Module (ExprStmt (BinOp[*] (BinOp[+] Num:1 Num:2) Num:3)))",
		},
		{
			"environment variable",
			"$HOME\n",
			"(Module (ExprStmt EnvName:HOME))",
		},
		{
			"environment expression",
			"${'PA' + 'TH'}\n",
			"(Module (ExprStmt (EnvExpr (BinOp[+] Str:'PA' Str:'TH'))))",
		},
		{
			"subprocess capture",
			"out = $(ls | wc -l)\n",
			"(Module (Assign Name:out (SubprocCapture (Pipeline (Command Word:ls) (Command Word:wc Word:-l)))))",
		},
		{
			"subprocess run",
			"$[echo hi]\n",
			"(Module (ExprStmt (SubprocRun (Command Word:echo Word:hi))))",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseTree(t, p, tt.source); got != tt.want {
				t.Errorf("tree:\n got %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestParseEmptyInput(t *testing.T) {
	p := newTestParser(t)
	for _, source := range []string{"", "\n\n", "# only a comment\n"} {
		tree, err := p.Parse(source)
		if err != nil {
			t.Errorf("Parse(%q) err = %v, want nil", source, err)
		}
		if tree != nil {
			t.Errorf("Parse(%q) = %v, want nil tree", source, tree)
		}
	}
}

func TestParseDeterministic(t *testing.T) {
	p := newTestParser(t)
	const source = "def f(x):\n    return x + 1\n"
	first := parseTree(t, p, source)
	for i := 0; i < 5; i++ {
		if got := parseTree(t, p, source); got != first {
			t.Fatalf("parse %d differs:\n got %s\nwant %s", i, got, first)
		}
	}
}

func TestParseErrors(t *testing.T) {
	p := newTestParser(t)
	tests := []struct {
		name     string
		source   string
		wantLine int
		wantMsg  string
	}{
		{"stray operator", "x +\n", 1, "code:"},
		{"error on second line", "x = 1\ny ==\n", 2, "code:"},
		{"lexical error", "'unterminated\n", 1, "EOL while scanning string literal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.source)
			var serr *SyntaxError
			if !errors.As(err, &serr) {
				t.Fatalf("err = %v, want SyntaxError", err)
			}
			if serr.Loc.Line != tt.wantLine {
				t.Errorf("Loc.Line = %d, want %d", serr.Loc.Line, tt.wantLine)
			}
			if !strings.Contains(serr.Msg, tt.wantMsg) {
				t.Errorf("Msg = %q, want it to contain %q", serr.Msg, tt.wantMsg)
			}
			if !strings.HasPrefix(serr.Error(), "<code>:") {
				t.Errorf("Error() = %q, want <code>: prefix", serr.Error())
			}
		})
	}
}

func TestParseIncompleteInput(t *testing.T) {
	p := newTestParser(t)
	_, err := p.Parse("if x:\n")
	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want SyntaxError", err)
	}
	if serr.Msg != "no further code" {
		t.Errorf("Msg = %q, want %q", serr.Msg, "no further code")
	}
	if !serr.Loc.IsZero() {
		t.Errorf("Loc = %v, want zero", serr.Loc)
	}
}

func TestParseFilenameOption(t *testing.T) {
	p := newTestParser(t)
	_, err := p.Parse("x +\n", WithFilename("script.hsk"))
	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want SyntaxError", err)
	}
	if serr.Loc.File != "script.hsk" {
		t.Errorf("Loc.File = %q, want script.hsk", serr.Loc.File)
	}

	tree, err := p.Parse("x\n", WithFilename("script.hsk"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := tree.Child(0).Child(0).Loc.File; got != "script.hsk" {
		t.Errorf("leaf Loc.File = %q, want script.hsk", got)
	}
}

func TestParseScopeAnnotations(t *testing.T) {
	p := newTestParser(t)
	got := parseTree(t, p, "class Vec:\n    pass\nVec\n")
	want := "(Module (ClassDef:Vec _ (Suite Pass)) (ExprStmt Name[type]:Vec))"
	if got != want {
		t.Errorf("tree:\n got %s\nwant %s", got, want)
	}

	// Scope state must not leak into the next parse.
	got = parseTree(t, p, "Vec\n")
	if want := "(Module (ExprStmt Name:Vec))"; got != want {
		t.Errorf("second parse tree:\n got %s\nwant %s", got, want)
	}
}

func TestParseCurrentLocation(t *testing.T) {
	p := newTestParser(t)
	if _, err := p.Parse("x\n", WithFilename("s.hsk")); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := p.CurrentLocation(4).String(); got != "s.hsk:4" {
		t.Errorf("CurrentLocation = %s, want s.hsk:4", got)
	}
	if got := p.CurrentLocationCol(4, 2).String(); got != "s.hsk:4:2" {
		t.Errorf("CurrentLocationCol = %s, want s.hsk:4:2", got)
	}
}
