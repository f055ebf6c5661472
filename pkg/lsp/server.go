package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"src.rtorc.sh/pkg/cmdmap"
	"src.rtorc.sh/pkg/diag"
	"src.rtorc.sh/pkg/eval"
	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/parse"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

type server struct {
	evaler  *eval.Evaler
	content map[lsp.DocumentURI]string
}

func newServer(ev *eval.Evaler) *server {
	return &server{ev, make(map[lsp.DocumentURI]string)}
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"initialize":              s.initialize,
		"textDocument/didOpen":    s.didOpen,
		"textDocument/didChange":  s.didChange,
		"textDocument/hover":      s.hover,
		"textDocument/completion": s.completion,

		"textDocument/didClose": s.didClose,
		// Required by the protocol.
		"initialized": noop,
		// Called by clients even when server doesn't advertise support:
		// https://microsoft.github.io/language-server-protocol/specification#workspace_didChangeWatchedFiles
		"workspace/didChangeWatchedFiles": noop,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func noop(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, nil
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

// Handler implementations. These are all called synchronously.

func (s *server) initialize(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			HoverProvider:      true,
			CompletionProvider: &lsp.CompletionOptions{TriggerCharacters: []string{"$", "."}},
		},
	}, nil
}

func (s *server) didOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	uri, content := params.TextDocument.URI, params.TextDocument.Text
	s.content[uri] = content
	go publishDiagnostics(ctx, conn, uri, s.diagnostics(uri, content))
	return nil, nil
}

func (s *server) didChange(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}

	// ContentChanges includes full text since the server is only advertised to
	// support that; see the initialize method.
	uri, content := params.TextDocument.URI, params.ContentChanges[0].Text
	s.content[uri] = content
	go publishDiagnostics(ctx, conn, uri, s.diagnostics(uri, content))
	return nil, nil
}

func (s *server) didClose(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	delete(s.content, params.TextDocument.URI)
	return nil, nil
}

func (s *server) hover(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.TextDocumentPositionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	content := s.content[params.TextDocument.URI]
	idx := lspPositionToIdx(content, params.Position)
	from, to := nameAround(content, idx)
	if from == to {
		return lsp.Hover{}, nil
	}
	e, err := s.evaler.Commands.Resolve(content[from:to])
	if err != nil {
		return lsp.Hover{}, nil
	}
	rg := lspRangeFromRange(content, diag.Ranging{From: from, To: to})
	return lsp.Hover{
		Contents: []lsp.MarkedString{lsp.RawMarkedString(describe(content[from:to], e))},
		Range:    &rg,
	}, nil
}

func (s *server) completion(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.CompletionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	content := s.content[params.TextDocument.URI]
	dot := lspPositionToIdx(content, params.Position)
	from, _ := nameAround(content, dot)
	prefix := content[from:dot]
	lspRange := lspRangeFromRange(content, diag.Ranging{From: from, To: dot})

	lspItems := []lsp.CompletionItem{}
	for _, name := range s.evaler.Commands.Listed(prefix) {
		var detail string
		if e, err := s.evaler.Commands.Resolve(name); err == nil {
			detail = e.ParmDoc
		}
		lspItems = append(lspItems, lsp.CompletionItem{
			Label:  name,
			Kind:   lsp.CIKFunction,
			Detail: detail,
			TextEdit: &lsp.TextEdit{
				Range:   lspRange,
				NewText: name,
			},
		})
	}
	return lspItems, nil
}

// Returns the shown documentation of a command.
func describe(name string, e cmdmap.Entry) string {
	var sb strings.Builder
	sb.WriteString(name + "=" + e.ParmDoc)
	if e.Name != name {
		sb.WriteString("\n\nAlias of " + e.Name + ".")
	}
	if e.Doc != "" {
		sb.WriteString("\n\n" + e.Doc)
	}
	return sb.String()
}

// Returns the range of the command name that contains or ends at idx.
func nameAround(s string, idx int) (int, int) {
	from, to := idx, idx
	for from > 0 && parse.IsNameChar(s[from-1]) {
		from--
	}
	for to < len(s) && parse.IsNameChar(s[to]) {
		to++
	}
	return from, to
}

func publishDiagnostics(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, diags []lsp.Diagnostic) {
	conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: diags})
}

// Names of the commands whose first argument defines a new command. Aliases
// are resolved before looking up.
var definers = map[string]bool{
	"method.insert":        true,
	"method.insert.value":  true,
	"method.insert.bool":   true,
	"method.insert.string": true,
	"method.insert.list":   true,
	"method.insert.simple": true,
	"method.redirect":      true,
}

func (s *server) diagnostics(uri lsp.DocumentURI, content string) []lsp.Diagnostic {
	diags := []lsp.Diagnostic{}
	defined := make(map[string]bool)
	for _, stmt := range parse.SplitLines(content) {
		calls, err := parse.ParseStatements(parse.Source{Name: string(uri), Code: stmt.Code})
		if err != nil {
			var parseErr *parse.Error
			if !errors.As(err, &parseErr) {
				continue
			}
			rg := parseErr.Range()
			diags = append(diags, lsp.Diagnostic{
				Range: lspRangeFromRange(content,
					diag.Ranging{From: stmt.From + rg.From, To: stmt.From + rg.To}),
				Severity: lsp.Error,
				Source:   "parse",
				Message:  parseErr.Message,
			})
			continue
		}
		cursor := 0
		for _, call := range calls {
			name := call.CallName()
			from := cursor
			if i := strings.Index(stmt.Code[cursor:], name); i != -1 {
				from = cursor + i
				cursor = from + len(name)
			}
			if e, err := s.evaler.Commands.Resolve(name); err == nil && definers[e.Name] {
				if newName, ok := definedName(call.CallArgs()); ok {
					defined[newName] = true
				}
			}
			if !defined[name] && !s.evaler.Commands.Has(name) {
				diags = append(diags, lsp.Diagnostic{
					Range: lspRangeFromRange(content,
						diag.Ranging{From: stmt.From + from, To: stmt.From + from + len(name)}),
					Severity: lsp.Warning,
					Source:   "commands",
					Message:  "unknown command " + parse.Quote(name),
				})
			}
		}
	}
	return diags
}

// Returns the name a defining command creates, if it is a literal.
func definedName(args obj.Object) (string, bool) {
	if args.IsList() && args.Len() > 0 {
		args = args.AsList()[0]
	}
	if args.IsString() {
		return args.AsString(), true
	}
	return "", false
}

func lspRangeFromRange(s string, r diag.Ranger) lsp.Range {
	rg := r.Range()
	return lsp.Range{
		Start: lspPositionFromIdx(s, rg.From),
		End:   lspPositionFromIdx(s, rg.To),
	}
}

func lspPositionToIdx(s string, pos lsp.Position) int {
	var idx int
	walkString(s, func(i int, p lsp.Position) bool {
		idx = i
		return p.Line < pos.Line || (p.Line == pos.Line && p.Character < pos.Character)
	})
	return idx
}

func lspPositionFromIdx(s string, idx int) lsp.Position {
	var pos lsp.Position
	walkString(s, func(i int, p lsp.Position) bool {
		pos = p
		return i < idx
	})
	return pos
}

// Generates (index, lspPosition) pairs in s, stopping if f returns false.
func walkString(s string, f func(i int, p lsp.Position) bool) {
	var p lsp.Position
	lastCR := false

	for i, r := range s {
		if !f(i, p) {
			return
		}
		switch {
		case r == '\r':
			p.Line++
			p.Character = 0
		case r == '\n':
			if lastCR {
				// Ignore \n if it's part of a \r\n sequence
			} else {
				p.Line++
				p.Character = 0
			}
		case r <= 0xFFFF:
			// Encoded in UTF-16 with one unit
			p.Character++
		default:
			// Encoded in UTF-16 with two units
			p.Character += 2
		}
		lastCR = r == '\r'
	}
	f(len(s), p)
}
