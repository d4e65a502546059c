package syntax

import (
	"github.com/husklang/husk/grammar"
	"github.com/husklang/husk/syntax/ast"
)

// precedence is the operator table, lowest level first. Left levels
// reduce on ties so equal-precedence operators group left-to-right.
var precedence = grammar.Precedence{
	{Assoc: grammar.Right, Tokens: []string{IF, ELSE}},
	{Assoc: grammar.Left, Tokens: []string{OR}},
	{Assoc: grammar.Left, Tokens: []string{AND}},
	{Assoc: grammar.Right, Tokens: []string{NOT}},
	{Assoc: grammar.Left, Tokens: []string{LT, GT, LE, GE, EQ, NE, IN, IS}},
	{Assoc: grammar.Left, Tokens: []string{PIPE}},
	{Assoc: grammar.Left, Tokens: []string{XOR}},
	{Assoc: grammar.Left, Tokens: []string{AMPERSAND}},
	{Assoc: grammar.Left, Tokens: []string{LSHIFT, RSHIFT}},
	{Assoc: grammar.Left, Tokens: []string{PLUS, MINUS}},
	{Assoc: grammar.Left, Tokens: []string{TIMES, DIVIDE, DOUBLEDIV, MOD}},
	{Assoc: grammar.Right, Tokens: []string{UMINUS}},
	{Assoc: grammar.Right, Tokens: []string{POW}},
}

func nd(v grammar.Value) *ast.Node {
	if v == nil {
		return nil
	}
	return v.(*ast.Node)
}

func lit(v grammar.Value) string {
	if n := nd(v); n != nil {
		return n.Lit
	}
	return ""
}

// at builds a node carrying the location of src (typically the leading
// token or operand of the construct).
func at(kind string, src grammar.Value, children ...*ast.Node) *ast.Node {
	n := ast.New(kind, children...)
	if s := nd(src); s != nil && s.Loc != nil {
		n.Loc = s.Loc
	}
	return n
}

// group appends to an existing list node, creating it on first use.
func group(left grammar.Value, items ...*ast.Node) *ast.Node {
	n := nd(left)
	if n == nil {
		n = ast.New(ast.KindArgs)
	}
	return n.Append(items...)
}

// buildGrammar declares the husk grammar: the general statement and
// expression productions plus the subprocess forms, with every optional
// element spelled out as an explicit two-alternative rule.
func (p *Parser) buildGrammar() (*grammar.Engine, error) {
	b := grammar.NewBuilder()
	b.SetPrecedence(precedence)

	// --- top level -----------------------------------------------------

	b.Rule("module").Epsilon()
	b.Rule("module").N("stmt_list").End()

	b.Rule("stmt_list").N("stmt").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindModule, a[0], nd(a[0]))
	})
	b.Rule("stmt_list").N("stmt_list").N("stmt").Do(func(a []grammar.Value) grammar.Value {
		return nd(a[0]).Append(nd(a[1]))
	})

	b.Rule("stmt").N("simple_stmt").End()
	b.Rule("stmt").N("compound_stmt").End()

	b.Rule("simple_stmt").N("small_stmts").N("semi_opt").T(NEWLINE).Do(func(a []grammar.Value) grammar.Value {
		s := nd(a[0])
		if len(s.Children) == 1 {
			return s.Children[0]
		}
		return s
	})
	b.Rule("small_stmts").N("small_stmt").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindSuite, a[0], nd(a[0]))
	})
	b.Rule("small_stmts").N("small_stmts").T(SEMI).N("small_stmt").Do(func(a []grammar.Value) grammar.Value {
		return nd(a[0]).Append(nd(a[2]))
	})
	b.Rule("semi_opt").Epsilon()
	b.Rule("semi_opt").T(SEMI).End()

	b.Rule("small_stmt").N("expr_stmt").End()
	b.Rule("small_stmt").N("pass_stmt").End()
	b.Rule("small_stmt").N("flow_stmt").End()
	b.Rule("small_stmt").N("del_stmt").End()
	b.Rule("small_stmt").N("assert_stmt").End()
	b.Rule("small_stmt").N("global_stmt").End()
	b.Rule("small_stmt").N("nonlocal_stmt").End()
	b.Rule("small_stmt").N("import_stmt").End()

	// --- simple statements ---------------------------------------------

	b.Rule("expr_stmt").N("assign_chain").Do(func(a []grammar.Value) grammar.Value {
		n := nd(a[0])
		if n.Kind == ast.KindAssign {
			return n
		}
		return at(ast.KindExprStmt, a[0], n)
	})
	b.Rule("expr_stmt").N("testlist").N("augassign").N("assign_value").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindAugAssign, a[0], nd(a[0]), nd(a[2])).WithOp(lit(a[1]))
	})

	b.Rule("assign_chain").N("testlist").End()
	b.Rule("assign_chain").N("yield_expr").End()
	b.Rule("assign_chain").N("testlist").T(ASSIGN).N("assign_chain").Do(func(a []grammar.Value) grammar.Value {
		rhs := nd(a[2])
		if rhs.Kind == ast.KindAssign {
			children := append([]*ast.Node{nd(a[0])}, rhs.Children...)
			return at(ast.KindAssign, a[0], children...)
		}
		return at(ast.KindAssign, a[0], nd(a[0]), rhs)
	})
	b.Rule("assign_value").N("testlist").End()
	b.Rule("assign_value").N("yield_expr").End()

	for _, tok := range []string{
		PLUSEQUAL, MINUSEQUAL, TIMESEQUAL, DIVEQUAL, DOUBLEDIVEQUAL, MODEQUAL,
		POWEQUAL, LSHIFTEQUAL, RSHIFTEQUAL, AMPERSANDEQUAL, XOREQUAL, PIPEEQUAL,
	} {
		b.Rule("augassign").T(tok).End()
	}

	b.Rule("pass_stmt").T(PASS).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindPass, a[0])
	})

	b.Rule("flow_stmt").T(BREAK).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindBreak, a[0])
	})
	b.Rule("flow_stmt").T(CONTINUE).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindContinue, a[0])
	})
	b.Rule("flow_stmt").N("return_stmt").End()
	b.Rule("flow_stmt").N("raise_stmt").End()

	b.Rule("return_stmt").T(RETURN).N("testlist_opt").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindReturn, a[0], nd(a[1]))
	})
	b.Rule("testlist_opt").Epsilon()
	b.Rule("testlist_opt").N("testlist").End()

	b.Rule("raise_stmt").T(RAISE).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindRaise, a[0])
	})
	b.Rule("raise_stmt").T(RAISE).N("expr").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindRaise, a[0], nd(a[1]))
	})
	b.Rule("raise_stmt").T(RAISE).N("expr").T(FROM).N("expr").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindRaise, a[0], nd(a[1]), nd(a[3]))
	})

	b.Rule("del_stmt").T(DEL).N("testlist").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindDel, a[0], nd(a[1]))
	})

	b.Rule("assert_stmt").T(ASSERT).N("expr").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindAssert, a[0], nd(a[1]))
	})
	b.Rule("assert_stmt").T(ASSERT).N("expr").T(COMMA).N("expr").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindAssert, a[0], nd(a[1]), nd(a[3]))
	})

	b.Rule("global_stmt").T(GLOBAL).N("name_list").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindGlobal, a[0], nd(a[1]).Children...)
	})
	b.Rule("nonlocal_stmt").T(NONLOCAL).N("name_list").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindNonlocal, a[0], nd(a[1]).Children...)
	})
	b.Rule("name_list").T(NAME).Do(func(a []grammar.Value) grammar.Value {
		return group(nil, at(ast.KindName, a[0]).WithLit(lit(a[0])))
	})
	b.Rule("name_list").N("name_list").T(COMMA).T(NAME).Do(func(a []grammar.Value) grammar.Value {
		return group(a[0], at(ast.KindName, a[2]).WithLit(lit(a[2])))
	})

	// --- imports -------------------------------------------------------

	b.Rule("import_stmt").T(IMPORT).N("dotted_as_names").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindImport, a[0], nd(a[1]).Children...)
	})
	b.Rule("import_stmt").T(FROM).N("dotted_name").T(IMPORT).N("import_targets").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindImportFrom, a[0], nd(a[1])).Append(nd(a[3]).Children...)
	})

	b.Rule("dotted_name").T(NAME).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindName, a[0]).WithLit(lit(a[0]))
	})
	b.Rule("dotted_name").N("dotted_name").T(DOT).T(NAME).Do(func(a []grammar.Value) grammar.Value {
		left := nd(a[0])
		return at(ast.KindName, a[0]).WithLit(left.Lit + "." + lit(a[2]))
	})

	b.Rule("dotted_as_names").N("dotted_as_name").Do(func(a []grammar.Value) grammar.Value {
		return group(nil, nd(a[0]))
	})
	b.Rule("dotted_as_names").N("dotted_as_names").T(COMMA).N("dotted_as_name").Do(func(a []grammar.Value) grammar.Value {
		return group(a[0], nd(a[2]))
	})
	b.Rule("dotted_as_name").N("dotted_name").N("as_name_opt").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindAlias, a[0], nd(a[0]), nd(a[1]))
	})
	b.Rule("as_name_opt").Epsilon()
	b.Rule("as_name_opt").T(AS).T(NAME).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindName, a[1]).WithLit(lit(a[1]))
	})

	b.Rule("import_targets").T(TIMES).Do(func(a []grammar.Value) grammar.Value {
		return group(nil, at(ast.KindStar, a[0]))
	})
	b.Rule("import_targets").N("import_as_names").End()
	b.Rule("import_targets").T(LPAREN).N("import_as_names").T(RPAREN).Do(func(a []grammar.Value) grammar.Value {
		return a[1]
	})
	b.Rule("import_as_names").N("import_as_name").Do(func(a []grammar.Value) grammar.Value {
		return group(nil, nd(a[0]))
	})
	b.Rule("import_as_names").N("import_as_names").T(COMMA).N("import_as_name").Do(func(a []grammar.Value) grammar.Value {
		return group(a[0], nd(a[2]))
	})
	b.Rule("import_as_name").T(NAME).N("as_name_opt").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindAlias, a[0], at(ast.KindName, a[0]).WithLit(lit(a[0])), nd(a[1]))
	})

	// --- compound statements -------------------------------------------

	b.Rule("compound_stmt").N("if_stmt").End()
	b.Rule("compound_stmt").N("while_stmt").End()
	b.Rule("compound_stmt").N("for_stmt").End()
	b.Rule("compound_stmt").N("try_stmt").End()
	b.Rule("compound_stmt").N("with_stmt").End()
	b.Rule("compound_stmt").N("funcdef").End()
	b.Rule("compound_stmt").N("classdef").End()
	b.Rule("compound_stmt").N("decorated").End()

	b.Rule("if_stmt").T(IF).N("expr").T(COLON).N("suite").N("elif_blocks").N("else_opt").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindIf, a[0], nd(a[1]), nd(a[3]), nd(a[4]), nd(a[5]))
	})
	b.Rule("elif_blocks").Epsilon()
	b.Rule("elif_blocks").N("elif_blocks").N("elif_block").Do(func(a []grammar.Value) grammar.Value {
		return group(a[0], nd(a[1]))
	})
	b.Rule("elif_block").T(ELIF).N("expr").T(COLON).N("suite").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindElif, a[0], nd(a[1]), nd(a[3]))
	})
	b.Rule("else_opt").Epsilon()
	b.Rule("else_opt").T(ELSE).T(COLON).N("suite").Do(func(a []grammar.Value) grammar.Value {
		return a[2]
	})

	b.Rule("while_stmt").T(WHILE).N("expr").T(COLON).N("suite").N("else_opt").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindWhile, a[0], nd(a[1]), nd(a[3]), nd(a[4]))
	})

	b.Rule("for_stmt").T(FOR).N("target_list").T(IN).N("testlist").T(COLON).N("suite").N("else_opt").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindFor, a[0], nd(a[1]), nd(a[3]), nd(a[5]), nd(a[6]))
	})

	b.Rule("try_stmt").T(TRY).T(COLON).N("suite").N("except_clauses").N("else_opt").N("finally_opt").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindTry, a[0], nd(a[2]), nd(a[3]), nd(a[4]), nd(a[5]))
	})
	b.Rule("try_stmt").T(TRY).T(COLON).N("suite").N("finally_clause").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindTry, a[0], nd(a[2]), nil, nil, nd(a[3]))
	})
	b.Rule("except_clauses").N("except_clause").Do(func(a []grammar.Value) grammar.Value {
		return group(nil, nd(a[0]))
	})
	b.Rule("except_clauses").N("except_clauses").N("except_clause").Do(func(a []grammar.Value) grammar.Value {
		return group(a[0], nd(a[1]))
	})
	b.Rule("except_clause").T(EXCEPT).T(COLON).N("suite").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindExcept, a[0], nil, nil, nd(a[2]))
	})
	b.Rule("except_clause").T(EXCEPT).N("expr").T(COLON).N("suite").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindExcept, a[0], nd(a[1]), nil, nd(a[3]))
	})
	b.Rule("except_clause").T(EXCEPT).N("expr").T(AS).T(NAME).T(COLON).N("suite").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindExcept, a[0], nd(a[1]), at(ast.KindName, a[3]).WithLit(lit(a[3])), nd(a[5]))
	})
	b.Rule("finally_opt").Epsilon()
	b.Rule("finally_opt").N("finally_clause").End()
	b.Rule("finally_clause").T(FINALLY).T(COLON).N("suite").Do(func(a []grammar.Value) grammar.Value {
		return a[2]
	})

	b.Rule("with_stmt").T(WITH).N("with_items").T(COLON).N("suite").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindWith, a[0], nd(a[1]), nd(a[3]))
	})
	b.Rule("with_items").N("with_item").Do(func(a []grammar.Value) grammar.Value {
		return group(nil, nd(a[0]))
	})
	b.Rule("with_items").N("with_items").T(COMMA).N("with_item").Do(func(a []grammar.Value) grammar.Value {
		return group(a[0], nd(a[2]))
	})
	b.Rule("with_item").N("expr").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindWithItem, a[0], nd(a[0]))
	})
	b.Rule("with_item").N("expr").T(AS).N("expr").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindWithItem, a[0], nd(a[0]), nd(a[2]))
	})

	// --- function and class definitions --------------------------------

	b.Rule("funcdef").T(DEF).T(NAME).N("parameters").N("return_opt").T(COLON).N("suite").Do(func(a []grammar.Value) grammar.Value {
		name := lit(a[1])
		p.scopes.Bind(name, false)
		return at(ast.KindFuncDef, a[0], nd(a[2]), nd(a[3]), nd(a[5])).WithLit(name)
	})
	b.Rule("parameters").T(LPAREN).N("params_opt").T(RPAREN).Do(func(a []grammar.Value) grammar.Value {
		if n := nd(a[1]); n != nil {
			return n
		}
		return at(ast.KindParams, a[0])
	})
	b.Rule("params_opt").Epsilon()
	b.Rule("params_opt").N("param_list").End()
	b.Rule("param_list").N("param").Do(func(a []grammar.Value) grammar.Value {
		n := ast.New(ast.KindParams, nd(a[0]))
		n.Loc = nd(a[0]).Loc
		return n
	})
	b.Rule("param_list").N("param_list").T(COMMA).N("param").Do(func(a []grammar.Value) grammar.Value {
		return nd(a[0]).Append(nd(a[2]))
	})
	b.Rule("param").T(NAME).N("annot_opt").N("default_opt").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindParam, a[0], nd(a[1]), nd(a[2])).WithLit(lit(a[0]))
	})
	b.Rule("param").T(TIMES).T(NAME).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindStarParam, a[0]).WithLit(lit(a[1]))
	})
	b.Rule("param").T(POW).T(NAME).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindKwParam, a[0]).WithLit(lit(a[1]))
	})
	b.Rule("annot_opt").Epsilon()
	b.Rule("annot_opt").T(COLON).N("expr").Do(func(a []grammar.Value) grammar.Value {
		return a[1]
	})
	b.Rule("default_opt").Epsilon()
	b.Rule("default_opt").T(ASSIGN).N("expr").Do(func(a []grammar.Value) grammar.Value {
		return a[1]
	})
	b.Rule("return_opt").Epsilon()
	b.Rule("return_opt").T(ARROW).N("expr").Do(func(a []grammar.Value) grammar.Value {
		return a[1]
	})

	b.Rule("classdef").T(CLASS).T(NAME).N("class_args_opt").T(COLON).N("suite").Do(func(a []grammar.Value) grammar.Value {
		name := lit(a[1])
		p.scopes.Bind(name, true)
		return at(ast.KindClassDef, a[0], nd(a[2]), nd(a[4])).WithLit(name)
	})
	b.Rule("class_args_opt").Epsilon()
	b.Rule("class_args_opt").T(LPAREN).N("arglist_opt").T(RPAREN).Do(func(a []grammar.Value) grammar.Value {
		return a[1]
	})

	b.Rule("decorated").N("decorators").N("funcdef").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindDecorated, a[0], nd(a[0]), nd(a[1]))
	})
	b.Rule("decorated").N("decorators").N("classdef").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindDecorated, a[0], nd(a[0]), nd(a[1]))
	})
	b.Rule("decorators").N("decorator").Do(func(a []grammar.Value) grammar.Value {
		return group(nil, nd(a[0]))
	})
	b.Rule("decorators").N("decorators").N("decorator").Do(func(a []grammar.Value) grammar.Value {
		return group(a[0], nd(a[1]))
	})
	b.Rule("decorator").T(AT).N("dotted_name").N("decorator_call_opt").T(NEWLINE).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindDecorator, a[0], nd(a[1]), nd(a[2]))
	})
	b.Rule("decorator_call_opt").Epsilon()
	b.Rule("decorator_call_opt").T(LPAREN).N("arglist_opt").T(RPAREN).Do(func(a []grammar.Value) grammar.Value {
		if n := nd(a[1]); n != nil {
			return n
		}
		return at(ast.KindArgs, a[0])
	})

	b.Rule("suite").N("simple_stmt").Do(func(a []grammar.Value) grammar.Value {
		n := nd(a[0])
		if n.Kind == ast.KindSuite {
			return n
		}
		return at(ast.KindSuite, a[0], n)
	})
	b.Rule("suite").T(NEWLINE).T(INDENT).N("stmt_list").T(DEDENT).Do(func(a []grammar.Value) grammar.Value {
		body := nd(a[2])
		return at(ast.KindSuite, a[2], body.Children...)
	})

	// --- expressions ---------------------------------------------------

	p.exprRules(b)
	p.atomRules(b)
	p.subprocRules(b)

	return b.Build()
}

// exprRules declares the operator productions. The precedence table,
// not the rule shapes, decides grouping.
func (p *Parser) exprRules(b *grammar.Builder) {
	binop := func(kind string) grammar.Action {
		return func(a []grammar.Value) grammar.Value {
			return at(kind, a[1], nd(a[0]), nd(a[2])).WithOp(lit(a[1]))
		}
	}
	for _, tok := range []string{OR, AND} {
		b.Rule("expr").N("expr").T(tok).N("expr").Do(binop(ast.KindBoolOp))
	}
	for _, tok := range []string{LT, GT, LE, GE, EQ, NE, IN, IS} {
		b.Rule("expr").N("expr").T(tok).N("expr").Do(binop(ast.KindCompare))
	}
	for _, tok := range []string{
		PIPE, XOR, AMPERSAND, LSHIFT, RSHIFT,
		PLUS, MINUS, TIMES, DIVIDE, DOUBLEDIV, MOD, POW,
	} {
		b.Rule("expr").N("expr").T(tok).N("expr").Do(binop(ast.KindBinOp))
	}

	unary := func(a []grammar.Value) grammar.Value {
		return at(ast.KindUnaryOp, a[0], nd(a[1])).WithOp(lit(a[0]))
	}
	b.Rule("expr").T(NOT).N("expr").Do(unary)
	b.Rule("expr").T(MINUS).N("expr").Prec(UMINUS).Do(unary)
	b.Rule("expr").T(PLUS).N("expr").Prec(UMINUS).Do(unary)
	b.Rule("expr").T(TILDE).N("expr").Prec(UMINUS).Do(unary)

	b.Rule("expr").N("expr").T(IF).N("expr").T(ELSE).N("expr").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindTernary, a[0], nd(a[0]), nd(a[2]), nd(a[4]))
	})

	b.Rule("expr").T(LAMBDA).N("lambda_params_opt").T(COLON).N("expr").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindLambda, a[0], nd(a[1]), nd(a[3]))
	})
	b.Rule("lambda_params_opt").Epsilon()
	b.Rule("lambda_params_opt").N("lambda_param_list").End()
	b.Rule("lambda_param_list").N("lambda_param").Do(func(a []grammar.Value) grammar.Value {
		n := ast.New(ast.KindParams, nd(a[0]))
		n.Loc = nd(a[0]).Loc
		return n
	})
	b.Rule("lambda_param_list").N("lambda_param_list").T(COMMA).N("lambda_param").Do(func(a []grammar.Value) grammar.Value {
		return nd(a[0]).Append(nd(a[2]))
	})
	b.Rule("lambda_param").T(NAME).N("default_opt").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindParam, a[0], nil, nd(a[1])).WithLit(lit(a[0]))
	})

	// Trailers bind tightest; the default shift resolution of the
	// conflict against binary reduces is exactly what call/subscript/
	// attribute need.
	b.Rule("expr").N("expr").T(LPAREN).N("arglist_opt").T(RPAREN).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindCall, a[0], nd(a[0]), nd(a[2]))
	})
	b.Rule("expr").N("expr").T(LBRACKET).N("subscriptlist").T(RBRACKET).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindSubscript, a[0], nd(a[0]), nd(a[2]))
	})
	b.Rule("expr").N("expr").T(DOT).T(NAME).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindAttribute, a[0], nd(a[0])).WithLit(lit(a[2]))
	})

	b.Rule("arglist_opt").Epsilon()
	b.Rule("arglist_opt").N("arglist").End()
	b.Rule("arglist_opt").N("arglist").T(COMMA).End()
	b.Rule("arglist").N("argument").Do(func(a []grammar.Value) grammar.Value {
		return group(nil, nd(a[0]))
	})
	b.Rule("arglist").N("arglist").T(COMMA).N("argument").Do(func(a []grammar.Value) grammar.Value {
		return group(a[0], nd(a[2]))
	})
	b.Rule("argument").N("expr").End()
	b.Rule("argument").T(NAME).T(ASSIGN).N("expr").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindKeywordArg, a[0], nd(a[2])).WithLit(lit(a[0]))
	})
	b.Rule("argument").T(TIMES).N("expr").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindStarArg, a[0], nd(a[1]))
	})
	b.Rule("argument").T(POW).N("expr").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindKwArg, a[0], nd(a[1]))
	})
	b.Rule("argument").N("expr").N("comp_for").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindComp, a[0], nd(a[0]), nd(a[1])).WithOp("generator")
	})

	b.Rule("subscriptlist").N("subscript").End()
	b.Rule("subscriptlist").N("subscriptlist").T(COMMA).N("subscript").Do(func(a []grammar.Value) grammar.Value {
		left := nd(a[0])
		if left.Kind == ast.KindTuple {
			return left.Append(nd(a[2]))
		}
		return at(ast.KindTuple, a[0], left, nd(a[2]))
	})
	b.Rule("subscript").N("expr").End()
	b.Rule("subscript").N("lower_opt").T(COLON).N("upper_opt").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindSlice, a[1], nd(a[0]), nd(a[2]))
	})
	b.Rule("subscript").N("lower_opt").T(COLON).N("upper_opt").T(COLON).N("step_opt").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindSlice, a[1], nd(a[0]), nd(a[2]), nd(a[4]))
	})
	b.Rule("lower_opt").Epsilon()
	b.Rule("lower_opt").N("expr").End()
	b.Rule("upper_opt").Epsilon()
	b.Rule("upper_opt").N("expr").End()
	b.Rule("step_opt").Epsilon()
	b.Rule("step_opt").N("expr").End()

	// testlist: one expression, or a comma-joined tuple. A trailing
	// comma forces a tuple even for a single element.
	b.Rule("testlist").N("tl_item").End()
	b.Rule("testlist").N("tl_item").T(COMMA).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindTuple, a[0], nd(a[0]))
	})
	b.Rule("testlist").N("tl_items").Do(func(a []grammar.Value) grammar.Value {
		items := nd(a[0])
		return at(ast.KindTuple, a[0], items.Children...)
	})
	b.Rule("testlist").N("tl_items").T(COMMA).Do(func(a []grammar.Value) grammar.Value {
		items := nd(a[0])
		return at(ast.KindTuple, a[0], items.Children...)
	})
	b.Rule("tl_items").N("tl_item").T(COMMA).N("tl_item").Do(func(a []grammar.Value) grammar.Value {
		return group(nil, nd(a[0]), nd(a[2]))
	})
	b.Rule("tl_items").N("tl_items").T(COMMA).N("tl_item").Do(func(a []grammar.Value) grammar.Value {
		return group(a[0], nd(a[2]))
	})
	b.Rule("tl_item").N("expr").End()
	b.Rule("tl_item").T(TIMES).N("expr").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindStar, a[0], nd(a[1]))
	})

	b.Rule("yield_expr").T(YIELD).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindYield, a[0])
	})
	b.Rule("yield_expr").T(YIELD).N("testlist").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindYield, a[0], nd(a[1]))
	})
	b.Rule("yield_expr").T(YIELD).T(FROM).N("expr").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindYieldFrom, a[0], nd(a[2]))
	})

	// Loop and comprehension targets are a restricted expression form:
	// allowing full expressions before IN would make the IN keyword
	// ambiguous with the membership operator.
	b.Rule("target_list").N("targets").Do(func(a []grammar.Value) grammar.Value {
		items := nd(a[0])
		if len(items.Children) == 1 {
			return items.Children[0]
		}
		return at(ast.KindTuple, a[0], items.Children...)
	})
	b.Rule("target_list").N("targets").T(COMMA).Do(func(a []grammar.Value) grammar.Value {
		items := nd(a[0])
		return at(ast.KindTuple, a[0], items.Children...)
	})
	b.Rule("targets").N("target").Do(func(a []grammar.Value) grammar.Value {
		return group(nil, nd(a[0]))
	})
	b.Rule("targets").N("targets").T(COMMA).N("target").Do(func(a []grammar.Value) grammar.Value {
		return group(a[0], nd(a[2]))
	})
	b.Rule("target").T(NAME).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindName, a[0]).WithLit(lit(a[0]))
	})
	b.Rule("target").N("target").T(DOT).T(NAME).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindAttribute, a[0], nd(a[0])).WithLit(lit(a[2]))
	})
	b.Rule("target").N("target").T(LBRACKET).N("subscriptlist").T(RBRACKET).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindSubscript, a[0], nd(a[0]), nd(a[2]))
	})
	b.Rule("target").T(TIMES).T(NAME).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindStar, a[0], at(ast.KindName, a[1]).WithLit(lit(a[1])))
	})
	b.Rule("target").T(LPAREN).N("target_list").T(RPAREN).Do(func(a []grammar.Value) grammar.Value {
		return a[1]
	})
	b.Rule("target").T(LBRACKET).N("target_list").T(RBRACKET).Do(func(a []grammar.Value) grammar.Value {
		inner := nd(a[1])
		if inner.Kind == ast.KindTuple {
			return at(ast.KindList, a[0], inner.Children...)
		}
		return at(ast.KindList, a[0], inner)
	})

	// comprehensions
	b.Rule("comp_for").T(FOR).N("target_list").T(IN).N("expr").N("comp_iter_opt").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindCompFor, a[0], nd(a[1]), nd(a[3]), nd(a[4]))
	})
	b.Rule("comp_if").T(IF).N("expr").N("comp_iter_opt").Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindCompIf, a[0], nd(a[1]), nd(a[2]))
	})
	b.Rule("comp_iter_opt").Epsilon()
	b.Rule("comp_iter_opt").N("comp_for").End()
	b.Rule("comp_iter_opt").N("comp_if").End()
}

// atomRules declares the literal and display forms.
func (p *Parser) atomRules(b *grammar.Builder) {
	b.Rule("expr").T(NAME).Do(func(a []grammar.Value) grammar.Value {
		n := at(ast.KindName, a[0]).WithLit(lit(a[0]))
		if isType, ok := p.scopes.Lookup(n.Lit); ok && isType {
			n.Op = "type"
		}
		return n
	})
	b.Rule("expr").T(NUMBER).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindNum, a[0]).WithLit(lit(a[0]))
	})
	b.Rule("expr").T(STRING).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindStr, a[0]).WithLit(lit(a[0]))
	})
	for _, tok := range []string{TRUE, FALSE, NONE, ELLIPSIS} {
		b.Rule("expr").T(tok).Do(func(a []grammar.Value) grammar.Value {
			return at(ast.KindConst, a[0]).WithLit(lit(a[0]))
		})
	}

	b.Rule("expr").T(LPAREN).T(RPAREN).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindTuple, a[0])
	})
	b.Rule("expr").T(LPAREN).N("testlist").T(RPAREN).Do(func(a []grammar.Value) grammar.Value {
		return a[1]
	})
	b.Rule("expr").T(LPAREN).N("yield_expr").T(RPAREN).Do(func(a []grammar.Value) grammar.Value {
		return a[1]
	})
	b.Rule("expr").T(LPAREN).N("expr").N("comp_for").T(RPAREN).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindComp, a[0], nd(a[1]), nd(a[2])).WithOp("generator")
	})

	b.Rule("expr").T(LBRACKET).T(RBRACKET).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindList, a[0])
	})
	b.Rule("expr").T(LBRACKET).N("testlist").T(RBRACKET).Do(func(a []grammar.Value) grammar.Value {
		inner := nd(a[1])
		if inner.Kind == ast.KindTuple {
			return at(ast.KindList, a[0], inner.Children...)
		}
		return at(ast.KindList, a[0], inner)
	})
	b.Rule("expr").T(LBRACKET).N("expr").N("comp_for").T(RBRACKET).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindComp, a[0], nd(a[1]), nd(a[2])).WithOp("list")
	})

	b.Rule("expr").T(LBRACE).T(RBRACE).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindDict, a[0])
	})
	b.Rule("expr").T(LBRACE).N("dict_items").N("comma_opt").T(RBRACE).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindDict, a[0], nd(a[1]).Children...)
	})
	b.Rule("expr").T(LBRACE).N("set_items").N("comma_opt").T(RBRACE).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindSet, a[0], nd(a[1]).Children...)
	})
	b.Rule("expr").T(LBRACE).N("expr").T(COLON).N("expr").N("comp_for").T(RBRACE).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindComp, a[0], nd(a[1]), nd(a[3]), nd(a[4])).WithOp("dict")
	})
	b.Rule("expr").T(LBRACE).N("expr").N("comp_for").T(RBRACE).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindComp, a[0], nd(a[1]), nd(a[2])).WithOp("set")
	})
	b.Rule("comma_opt").Epsilon()
	b.Rule("comma_opt").T(COMMA).End()

	b.Rule("dict_items").N("expr").T(COLON).N("expr").Do(func(a []grammar.Value) grammar.Value {
		return group(nil, at(ast.KindDictItem, a[0], nd(a[0]), nd(a[2])))
	})
	b.Rule("dict_items").N("dict_items").T(COMMA).N("expr").T(COLON).N("expr").Do(func(a []grammar.Value) grammar.Value {
		return group(a[0], at(ast.KindDictItem, a[2], nd(a[2]), nd(a[4])))
	})
	b.Rule("set_items").N("expr").Do(func(a []grammar.Value) grammar.Value {
		return group(nil, nd(a[0]))
	})
	b.Rule("set_items").N("set_items").T(COMMA).N("expr").Do(func(a []grammar.Value) grammar.Value {
		return group(a[0], nd(a[2]))
	})
}

// subprocRules declares the shell forms: $NAME, ${expr}, $(cmd) and
// $[cmd], with word-mode pipelines inside the capture forms.
func (p *Parser) subprocRules(b *grammar.Builder) {
	b.Rule("expr").T(DOLLARNAME).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindEnvName, a[0]).WithLit(lit(a[0]))
	})
	b.Rule("expr").T(DOLLARLBRACE).N("expr").T(RBRACE).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindEnvExpr, a[0], nd(a[1]))
	})
	b.Rule("expr").T(DOLLARLPAREN).N("subproc").T(RPAREN).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindSubprocCapture, a[0], nd(a[1]))
	})
	b.Rule("expr").T(DOLLARLBRACKET).N("subproc").T(RBRACKET).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindSubprocRun, a[0], nd(a[1]))
	})

	b.Rule("subproc").N("pipeline").End()
	b.Rule("pipeline").N("command").End()
	b.Rule("pipeline").N("pipeline").T(PIPE).N("command").Do(func(a []grammar.Value) grammar.Value {
		left := nd(a[0])
		if left.Kind == ast.KindPipeline {
			return left.Append(nd(a[2]))
		}
		return at(ast.KindPipeline, a[0], left, nd(a[2]))
	})
	b.Rule("command").T(WORD).Do(func(a []grammar.Value) grammar.Value {
		return at(ast.KindCommand, a[0], at(ast.KindWord, a[0]).WithLit(lit(a[0])))
	})
	b.Rule("command").N("command").T(WORD).Do(func(a []grammar.Value) grammar.Value {
		return nd(a[0]).Append(at(ast.KindWord, a[1]).WithLit(lit(a[1])))
	})
}
