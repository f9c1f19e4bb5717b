package lsp

import (
	"context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/mlowell/cnav"
)

func (s *Server) semanticTokensFull(glspCtx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	ctx := context.Background()
	q, err := s.openDocument(ctx, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	spans, err := q.snap.SpansByFile(ctx, q.file)
	if err != nil {
		return nil, err
	}
	tokens := cnav.SpanTokens(spans, q.doc)
	return &protocol.SemanticTokens{Data: cnav.EncodeTokens(tokens)}, nil
}

func (s *Server) semanticTokensRange(glspCtx *glsp.Context, params *protocol.SemanticTokensRangeParams) (any, error) {
	ctx := context.Background()
	q, err := s.openDocument(ctx, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	spans, err := q.snap.SpansInRows(ctx, q.file,
		int64(params.Range.Start.Line), int64(params.Range.End.Line))
	if err != nil {
		return nil, err
	}
	tokens := cnav.SpanTokens(spans, q.doc)
	return &protocol.SemanticTokens{Data: cnav.EncodeTokens(tokens)}, nil
}
