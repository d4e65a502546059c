// Package lsp serves husk diagnostics and completion over the language
// server protocol.
package lsp

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/husklang/husk/complete"
	"github.com/husklang/husk/syntax"
	"github.com/husklang/husk/syntax/ast"
)

const lsName = "husk"

type Server struct {
	parser    *syntax.Parser
	completer *complete.Completer
	documents map[string]string
	handler   protocol.Handler
	server    *server.Server
	version   string
}

func NewServer(parser *syntax.Parser, completer *complete.Completer, version string) *Server {
	s := &Server{
		parser:    parser,
		completer: completer,
		documents: map[string]string{},
		version:   version,
	}

	s.handler = protocol.Handler{
		Initialize:             s.initialize,
		Initialized:            s.initialized,
		Shutdown:               s.shutdown,
		SetTrace:               s.setTrace,
		TextDocumentDidOpen:    s.textDocumentDidOpen,
		TextDocumentDidChange:  s.textDocumentDidChange,
		TextDocumentDidClose:   s.textDocumentDidClose,
		TextDocumentCompletion: s.textDocumentCompletion,
	}

	s.server = server.NewServer(&s.handler, lsName, false)

	return s
}

func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{".", "$"},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.documents[params.TextDocument.URI] = params.TextDocument.Text
	s.publishDiagnostics(ctx, params.TextDocument.URI)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.documents[params.TextDocument.URI] = whole.Text
		}
	}
	s.publishDiagnostics(ctx, params.TextDocument.URI)
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	delete(s.documents, params.TextDocument.URI)
	return nil
}

// publishDiagnostics reparses the document and reports the syntax
// error, if any. An empty diagnostic list clears earlier ones.
func (s *Server) publishDiagnostics(ctx *glsp.Context, uri string) {
	text := s.documents[uri]
	diagnostics := []protocol.Diagnostic{}

	_, err := s.parser.Parse(text, syntax.WithFilename(displayName(uri)))
	if serr, ok := err.(*syntax.SyntaxError); ok {
		diagnostics = append(diagnostics, diagnosticFor(serr, text))
	}

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func diagnosticFor(serr *syntax.SyntaxError, text string) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := lsName

	line := serr.Loc.Line - 1
	col := serr.Loc.Column
	if serr.Loc.IsZero() {
		// Input ended too early: point at the end of the document.
		line = strings.Count(text, "\n")
		col = 0
	}
	if line < 0 {
		line = 0
	}
	if col < 0 {
		col = 0
	} else if col > 0 {
		col--
	}

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col)},
			End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col + 1)},
		},
		Severity: &severity,
		Source:   &source,
		Message:  serr.Msg,
	}
}

func (s *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.documents[params.TextDocument.URI]
	if !ok {
		return nil, nil
	}

	lines := strings.Split(text, "\n")
	lineNo := int(params.Position.Line)
	if lineNo >= len(lines) {
		return nil, nil
	}
	line := lines[lineNo]
	col := int(params.Position.Character)
	if col > len(line) {
		col = len(line)
	}

	begin := col
	for begin > 0 && isWordChar(line[begin-1]) {
		begin--
	}

	query := complete.Query{
		Prefix: line[begin:col],
		Line:   line,
		Begin:  begin,
		End:    col,
	}
	query = complete.WithNames(query, s.visibleNames(text))

	candidates, _ := s.completer.Complete(query)
	if len(candidates) == 0 {
		return nil, nil
	}

	kind := protocol.CompletionItemKindText
	items := make([]protocol.CompletionItem, 0, len(candidates))
	for _, c := range candidates {
		c := c
		items = append(items, protocol.CompletionItem{
			Label:      c,
			Kind:       &kind,
			InsertText: &c,
		})
	}
	return items, nil
}

// visibleNames collects identifiers from the last good parse of the
// document. A document that does not parse contributes nothing.
func (s *Server) visibleNames(text string) []string {
	tree, err := s.parser.Parse(text)
	if err != nil || tree == nil {
		return nil
	}
	seen := map[string]bool{}
	var names []string
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		if n == nil {
			return
		}
		switch n.Kind {
		case ast.KindName, ast.KindFuncDef, ast.KindClassDef, ast.KindParam:
			if n.Lit != "" && !seen[n.Lit] {
				seen[n.Lit] = true
				names = append(names, n.Lit)
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(tree)
	return names
}

func isWordChar(ch byte) bool {
	return ch == '_' || ch == '$' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

func displayName(uri string) string {
	if path, err := uriToPath(uri); err == nil {
		return filepath.Base(path)
	}
	return uri
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
