package lsp

import (
	"context"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/mlowell/cnav"
)

// documentSymbol lists the file's top-level named declarations.
func (s *Server) documentSymbol(glspCtx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	ctx := context.Background()
	q, err := s.openDocument(ctx, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	nodes, err := q.snap.TopLevelByFile(ctx, q.file)
	if err != nil {
		return nil, err
	}

	var symbols []protocol.DocumentSymbol
	for _, n := range nodes {
		if n.Name == "" || !n.Kind.IsDeclaration() {
			continue
		}
		loc, err := cnav.NodeLocation(ctx, q.snap, n)
		if err != nil {
			return nil, err
		}
		sel, err := cnav.NameLocation(ctx, q.snap, n)
		if err != nil {
			return nil, err
		}
		if loc == nil || sel == nil {
			continue
		}
		sym := protocol.DocumentSymbol{
			Name:           n.Name,
			Kind:           symbolKind(n),
			Range:          toRange(loc),
			SelectionRange: toRange(sel),
		}
		if n.QualifiedType != "" {
			detail := n.QualifiedType
			sym.Detail = &detail
		}
		symbols = append(symbols, sym)
	}
	return symbols, nil
}

// documentLink lists the file's inclusion directives as links to the
// included files. Synthetic targets have nothing to open and are skipped.
func (s *Server) documentLink(glspCtx *glsp.Context, params *protocol.DocumentLinkParams) ([]protocol.DocumentLink, error) {
	ctx := context.Background()
	q, err := s.openDocument(ctx, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	includes, err := q.snap.IncludesByFile(ctx, q.file)
	if err != nil {
		return nil, err
	}

	var links []protocol.DocumentLink
	for _, inc := range includes {
		if inc.Name == "" || strings.HasPrefix(inc.Name, "<") {
			continue
		}
		loc, err := cnav.NodeLocation(ctx, q.snap, inc)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			continue
		}
		target := pathToURI(inc.Name)
		links = append(links, protocol.DocumentLink{
			Range:  toRange(loc),
			Target: &target,
		})
	}
	return links, nil
}
