package server

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/basil/compiler"
	"github.com/chazu/basil/vm"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "basil-lsp"

// LspServer offers syntax diagnostics, completion, hover and
// go-to-definition for BASIC sources.
type LspServer struct {
	worker   *CompileWorker
	language int

	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a language server for the given language version.
func NewLSP(language int) *LspServer {
	if language <= 0 {
		language = compiler.DefaultVersion
	}
	s := &LspServer{
		worker:   NewCompileWorker(compiler.Build),
		language: language,
		docs:     make(map[string]string),
		version:  "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentDefinition: s.textDocumentDefinition,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.NewInfoMessage(0, "basil LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	s.worker.Stop()
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.mu.Lock()
			s.docs[string(uri)] = whole.Text
			s.mu.Unlock()

			s.publishDiagnostics(ctx, uri, whole.Text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *LspServer) document(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	prefix := extractPrefix(text, params.Position)
	if prefix == "" {
		return nil, nil
	}
	return s.complete(text, prefix), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}
	return s.hover(text, word), nil
}

func (s *LspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := params.TextDocument.URI
	text, ok := s.document(uri)
	if !ok {
		return nil, nil
	}
	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}
	loc := s.definition(uri, text, word)
	if loc == nil {
		return nil, nil
	}
	return loc, nil
}

// outline parses text for its subroutines and labels. A document that does
// not parse yields nothing.
func (s *LspServer) outline(text string) *compiler.Program {
	prog, _, err := compiler.Parse(text, compiler.ParseOptions{Version: s.language})
	if err != nil {
		return nil
	}
	return prog
}

func (s *LspServer) complete(text, prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	lowerPrefix := strings.ToLower(prefix)

	add := func(label string, kind protocol.CompletionItemKind, detail string) {
		if !strings.HasPrefix(strings.ToLower(label), lowerPrefix) {
			return
		}
		l, d := label, detail
		items = append(items, protocol.CompletionItem{
			Label:      l,
			Kind:       &kind,
			Detail:     &d,
			InsertText: &l,
		})
	}

	keywords := compiler.Keywords(s.language)
	sort.Strings(keywords)
	for _, kw := range keywords {
		add(kw, protocol.CompletionItemKindKeyword, "keyword")
	}
	for _, name := range vm.BuiltinNames() {
		b, _ := vm.LookupBuiltin(name)
		add(name, protocol.CompletionItemKindFunction, builtinSignature(b.Info()))
	}
	if prog := s.outline(text); prog != nil {
		names := make([]string, 0, len(prog.Subs))
		for name := range prog.Subs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			add(name, protocol.CompletionItemKindFunction, subSignature(prog.Subs[name]))
		}
	}

	const maxItems = 100
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return items
}

func (s *LspServer) hover(text, word string) *protocol.Hover {
	var value string
	if b, ok := vm.LookupBuiltin(strings.ToLower(word)); ok {
		value = fmt.Sprintf("**%s** built-in\n\n`%s`", b.Info().Name, builtinSignature(b.Info()))
	} else if prog := s.outline(text); prog != nil {
		sub, ok := prog.Subs[word]
		if !ok {
			return nil
		}
		value = fmt.Sprintf("**%s** subroutine, line %d\n\n`%s`", sub.Name, sub.Pos().Line, subSignature(sub))
	} else {
		return nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: value,
		},
	}
}

func (s *LspServer) definition(uri protocol.DocumentUri, text, word string) *protocol.Location {
	prog := s.outline(text)
	if prog == nil {
		return nil
	}
	var pos compiler.Position
	if sub, ok := prog.Subs[word]; ok {
		pos = sub.Pos()
	} else if at, ok := prog.Labels[word]; ok {
		pos = at
	} else {
		return nil
	}
	p := protocol.Position{Line: protocol.UInteger(pos.Line - 1), Character: protocol.UInteger(pos.Column - 1)}
	return &protocol.Location{URI: uri, Range: protocol.Range{Start: p, End: p}}
}

func builtinSignature(info vm.BuiltinInfo) string {
	args := make([]string, len(info.Args))
	for i, c := range info.Args {
		var a string
		switch c {
		case 'n':
			a = "n"
		case 's':
			a = "s$"
		case 'N':
			a = "n()"
		case 'S':
			a = "s$()"
		case 'A':
			a = "a()"
		}
		if i >= info.MinArgs {
			a = "[" + a + "]"
		}
		args[i] = a
	}
	return info.Name + "(" + strings.Join(args, ", ") + ")"
}

func subSignature(sub *compiler.SubDef) string {
	params := make([]string, len(sub.Params))
	for i, p := range sub.Params {
		params[i] = p.Name
		if p.Array {
			params[i] += "()"
		}
	}
	return "sub " + sub.Name + "(" + strings.Join(params, ", ") + ")"
}

// --- Diagnostics ---

// publishDiagnostics runs the document through the full compile pipeline
// and reports the first syntax error.
func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: s.check(text),
	})
}

func (s *LspServer) check(text string) []protocol.Diagnostic {
	resp, err := s.worker.Do(context.Background(), vm.CompileRequest{Version: s.language, Source: text})
	if err != nil || resp.Err == nil {
		return []protocol.Diagnostic{}
	}
	return []protocol.Diagnostic{syntaxDiagnostic(resp.Err)}
}

func syntaxDiagnostic(se *vm.SyntaxError) protocol.Diagnostic {
	line, col := se.Line-1, se.Column-1
	if line < 0 {
		line = 0
	}
	if col < 0 {
		col = 0
	}
	start := protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col)}
	end := start
	end.Character += protocol.UInteger(len(se.Near))

	severity := protocol.DiagnosticSeverityError
	source := lspName
	msg := se.Msg
	if se.Near != "" {
		msg = fmt.Sprintf("%s near %q", se.Msg, se.Near)
	}
	return protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: end},
		Severity: &severity,
		Source:   &source,
		Message:  msg,
	}
}

// --- Text extraction helpers ---

func isWordRune(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '$'
}

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	start := col
	for start > 0 && isWordRune(rune(line[start-1])) {
		start--
	}
	return line[start:col]
}

// extractWord returns the full identifier under the cursor.
func extractWord(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	start := col
	for start > 0 && isWordRune(rune(line[start-1])) {
		start--
	}
	end := col
	for end < len(line) && isWordRune(rune(line[end])) {
		end++
	}
	return line[start:end]
}

func boolPtr(b bool) *bool {
	return &b
}
