package lsp

import (
	"context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/mlowell/cnav"
	"github.com/mlowell/cnav/internal/store"
)

func (s *Server) definition(glspCtx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	ctx := context.Background()
	q, err := s.openDocument(ctx, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	node, err := q.nodeAt(ctx, params.Position)
	if err != nil || node == nil {
		return nil, err
	}
	def, err := cnav.Definition(ctx, q.snap, node)
	if err != nil || def == nil {
		return nil, err
	}
	return nodeLocations(ctx, q.snap, []*store.Node{def})
}

func (s *Server) declaration(glspCtx *glsp.Context, params *protocol.DeclarationParams) (any, error) {
	ctx := context.Background()
	q, err := s.openDocument(ctx, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	node, err := q.nodeAt(ctx, params.Position)
	if err != nil || node == nil {
		return nil, err
	}
	def, err := cnav.Definition(ctx, q.snap, node)
	if err != nil || def == nil {
		return nil, err
	}
	decls, err := cnav.Declarations(ctx, q.snap, def)
	if err != nil {
		return nil, err
	}
	if len(decls) == 0 {
		decls = []*store.Node{def}
	}
	return nodeLocations(ctx, q.snap, decls)
}

func (s *Server) typeDefinition(glspCtx *glsp.Context, params *protocol.TypeDefinitionParams) (any, error) {
	ctx := context.Background()
	q, err := s.openDocument(ctx, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	node, err := q.nodeAt(ctx, params.Position)
	if err != nil || node == nil {
		return nil, err
	}
	typeDecl, err := cnav.TypeDefinition(ctx, q.snap, node)
	if err != nil || typeDecl == nil {
		return nil, err
	}
	return nodeLocations(ctx, q.snap, []*store.Node{typeDecl})
}

func (s *Server) references(glspCtx *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	ctx := context.Background()
	q, err := s.openDocument(ctx, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	node, err := q.nodeAt(ctx, params.Position)
	if err != nil || node == nil {
		return nil, err
	}
	refs, err := cnav.CollectReferences(ctx, q.snap, node, cnav.RefOptions{
		IncludeDeclarations: params.Context.IncludeDeclaration,
	})
	if err != nil {
		return nil, err
	}
	return nodeLocations(ctx, q.snap, refs)
}

// documentHighlight is find-references scoped to the requesting file,
// declarations included.
func (s *Server) documentHighlight(glspCtx *glsp.Context, params *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	ctx := context.Background()
	q, err := s.openDocument(ctx, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	node, err := q.nodeAt(ctx, params.Position)
	if err != nil || node == nil {
		return nil, err
	}
	refs, err := cnav.CollectReferences(ctx, q.snap, node, cnav.RefOptions{
		ScopeFile:           q.file,
		IncludeDeclarations: true,
	})
	if err != nil {
		return nil, err
	}

	kind := protocol.DocumentHighlightKindText
	var highlights []protocol.DocumentHighlight
	for _, ref := range refs {
		loc, err := cnav.NameLocation(ctx, q.snap, ref)
		if err != nil {
			return nil, err
		}
		if loc != nil {
			highlights = append(highlights, protocol.DocumentHighlight{
				Range: toRange(loc),
				Kind:  &kind,
			})
		}
	}
	return highlights, nil
}
