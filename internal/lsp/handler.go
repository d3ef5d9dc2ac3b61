// Package lsp implements a language server for HC, built on the same
// tliron/glsp stack the teacher's Kanso server uses. It offers diagnostics
// (reusing the compiler's own CompilerError taxonomy) and completion over a
// program's declared variable names, rather than Kanso's module/struct/
// semantic-token surface — HC has no namespaces or types to walk.
package lsp

import (
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/segmentio/ksuid"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"hc/internal/compiler"
	"hc/internal/config"
)

// Handler implements the LSP server handlers for HC.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
	names   map[string][]string // declared variable names, for completion
	cfg     *config.Config
}

// NewHandler creates and returns a new Handler instance.
func NewHandler() *Handler {
	return &Handler{
		content: make(map[string]string),
		names:   make(map[string][]string),
		cfg:     config.Default(),
	}
}

// Initialize responds to the LSP client's initialize request and advertises
// the server's capabilities.
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("LSP Initialize called")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider: ptrBool(false),
			},
		},
	}, nil
}

// Initialized is called after the client receives the server's capabilities.
func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("HC LSP Initialized")
	return nil
}

// Shutdown handles the LSP shutdown request.
func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Println("HC LSP Shutdown")
	return nil
}

// TextDocumentDidOpen handles file open notifications from the editor.
func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	reqID := ksuid.New().String()
	log.Printf("[%s] opened %s\n", reqID, params.TextDocument.URI)
	return h.recompileAndPublish(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

// TextDocumentDidChange handles file change notifications from the editor.
// The server is registered for full-document sync, so the last content
// change carries the entire new text.
func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	reqID := ksuid.New().String()
	log.Printf("[%s] changed %s\n", reqID, params.TextDocument.URI)

	if len(params.ContentChanges) == 0 {
		return nil
	}
	change, ok := params.ContentChanges[len(params.ContentChanges)-1].(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return fmt.Errorf("hc-lsp: expected a full-document change event")
	}
	return h.recompileAndPublish(ctx, params.TextDocument.URI, change.Text)
}

// TextDocumentDidClose handles file close notifications from the editor.
func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Printf("closed %s\n", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", params.TextDocument.URI, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.content, path)
	delete(h.names, path)

	return nil
}

// TextDocumentCompletion offers the set of variable names declared by the
// document's init statements — there is no further vocabulary (HC has no
// functions, types, or modules to complete).
func (h *Handler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to convert URI %s: %w", params.TextDocument.URI, err)
	}

	h.mu.RLock()
	names := h.names[path]
	h.mu.RUnlock()

	items := make([]protocol.CompletionItem, 0, len(names))
	for _, name := range names {
		items = append(items, protocol.CompletionItem{Label: name})
	}

	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}, nil
}

func (h *Handler) recompileAndPublish(ctx *glsp.Context, uri protocol.DocumentUri, text string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", uri, err)
	}

	h.mu.Lock()
	h.content[path] = text
	h.mu.Unlock()

	result, compileErr := compiler.CompileDetailedWithConfig(path, text, h.cfg)

	var diagnostics []protocol.Diagnostic
	if compileErr != nil {
		if se, ok := compileErr.(*compiler.SourceError); ok {
			diagnostics = ConvertCompilerErrors(se.Errs)
		} else {
			log.Printf("internal error compiling %s: %s\n", path, compileErr)
		}
	}

	h.mu.Lock()
	if result != nil {
		names := make([]string, 0, len(result.Addrs))
		for name := range result.Addrs {
			names = append(names, name)
		}
		h.names[path] = names
	} else {
		delete(h.names, path)
	}
	h.mu.Unlock()

	sendDiagnosticNotification(ctx, uri, diagnostics)
	return nil
}

func uriToPath(rawURI protocol.DocumentUri) (string, error) {
	u, err := url.Parse(string(rawURI))
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
