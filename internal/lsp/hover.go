package lsp

import (
	"context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/mlowell/cnav"
)

func (s *Server) hover(glspCtx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	ctx := context.Background()
	q, err := s.openDocument(ctx, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	node, err := q.nodeAt(ctx, params.Position)
	if err != nil || node == nil {
		return nil, err
	}
	markup, err := cnav.RenderHover(ctx, q.snap, node, q.file)
	if err != nil {
		return nil, err
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: markup.Markdown(),
		},
	}, nil
}
