// Package lsp exposes the resolution engine as a Language Server Protocol
// server over stdio.
package lsp

import (
	"context"
	"errors"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/mlowell/cnav"
	"github.com/mlowell/cnav/internal/store"
)

const serverName = "cnav"

// Server wires LSP requests to the resolution engine. Requests run
// concurrently with no coordination; all shared state lives in the Session.
type Server struct {
	session *cnav.Session
	handler protocol.Handler
	logger  commonlog.Logger
	version string
}

// NewServer builds a server around a configured session.
func NewServer(session *cnav.Session, version string) *Server {
	s := &Server{
		session: session,
		logger:  commonlog.GetLogger(serverName),
		version: version,
	}
	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentHover:             s.hover,
		TextDocumentDeclaration:       s.declaration,
		TextDocumentDefinition:        s.definition,
		TextDocumentTypeDefinition:    s.typeDefinition,
		TextDocumentReferences:        s.references,
		TextDocumentDocumentHighlight: s.documentHighlight,
		TextDocumentDocumentSymbol:    s.documentSymbol,
		TextDocumentDocumentLink:      s.documentLink,

		TextDocumentPrepareCallHierarchy: s.prepareCallHierarchy,
		CallHierarchyIncomingCalls:       s.incomingCalls,
		CallHierarchyOutgoingCalls:       s.outgoingCalls,

		TextDocumentSemanticTokensFull:  s.semanticTokensFull,
		TextDocumentSemanticTokensRange: s.semanticTokensRange,

		WorkspaceDidChangeConfiguration: s.didChangeConfiguration,
	}
	return s
}

// RunStdio serves LSP over stdin/stdout until the client disconnects.
func (s *Server) RunStdio() error {
	return glspserver.NewServer(&s.handler, serverName, false).RunStdio()
}

// docQuery is the per-request resolution context: the snapshot handle the
// request captured, its generation, the document text, and the file's
// source number within the snapshot.
type docQuery struct {
	snap *store.Store
	gen  uint64
	doc  *cnav.Document
	path string
	file int64
}

// openDocument resolves a document URI into a docQuery. A URI whose file
// the snapshot never compiled fails with store.ErrNotFound — the request
// cannot be answered.
func (s *Server) openDocument(ctx context.Context, uri protocol.DocumentUri) (*docQuery, error) {
	path, err := uriToPath(uri)
	if err != nil {
		return nil, err
	}
	snap, gen, err := s.session.SnapshotFor(path)
	if err != nil {
		return nil, err
	}
	doc, err := s.session.Document(path)
	if err != nil {
		return nil, err
	}
	src, err := snap.SourceByName(ctx, path)
	if err != nil {
		return nil, err
	}
	return &docQuery{snap: snap, gen: gen, doc: doc, path: path, file: src.Number}, nil
}

// nodeAt resolves a protocol position to an AST node, nil when nothing
// resolvable sits there.
func (q *docQuery) nodeAt(ctx context.Context, pos protocol.Position) (*store.Node, error) {
	return cnav.ResolvePosition(ctx, q.snap, q.doc, q.file, int(pos.Line), int(pos.Character))
}

func (s *Server) initialize(glspCtx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()
	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: protocol.SemanticTokensLegend{
			TokenTypes:     cnav.TokenTypes(),
			TokenModifiers: []string{},
		},
		Full:  true,
		Range: true,
	}
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(glspCtx *glsp.Context, params *protocol.InitializedParams) error {
	s.logger.Info("initialized")
	return nil
}

func (s *Server) shutdown(glspCtx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(glspCtx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// didChangeConfiguration applies the runtime configuration surface: a new
// active snapshot path, or a snapshot derivation rule (extension + alias
// map). Settings may arrive nested under a "cnav" section.
func (s *Server) didChangeConfiguration(glspCtx *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	settings, ok := params.Settings.(map[string]any)
	if !ok {
		return nil
	}
	if section, ok := settings[serverName].(map[string]any); ok {
		settings = section
	}

	if path, ok := settings["snapshot"].(string); ok && path != "" {
		if err := s.session.SetSnapshotPath(path); err != nil {
			s.logger.Errorf("switch snapshot: %s", err.Error())
			return err
		}
		s.logger.Infof("active snapshot: %s", path)
	}

	rule := s.session.Rule()
	changed := false
	if ext, ok := settings["snapshotExtension"].(string); ok {
		rule.Extension = ext
		changed = true
	}
	if raw, ok := settings["snapshotAliases"].(map[string]any); ok {
		aliases := make(map[string]string, len(raw))
		for k, v := range raw {
			repl, ok := v.(string)
			if !ok {
				return errors.New("malformed snapshotAliases: values must be strings")
			}
			aliases[k] = repl
		}
		rule.Aliases = aliases
		changed = true
	}
	if changed {
		s.session.SetRule(rule)
		s.logger.Infof("snapshot rule: ext=%q aliases=%d", rule.Extension, len(rule.Aliases))
	}
	return nil
}
