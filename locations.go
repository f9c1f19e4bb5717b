package cnav

import (
	"context"

	"github.com/mlowell/cnav/internal/store"
)

// Location is a file-backed source position range.
type Location struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Span is a position range still expressed against a snapshot source
// number, before filename resolution.
type Span struct {
	Src      int64
	StartRow int64
	StartCol int64
	EndRow   int64
	EndCol   int64
}

// NodeLocation resolves a node's full extent to a Location. Nodes at
// synthetic locations ("<built-in>", ...) yield nil: there is no file to
// open.
func NodeLocation(ctx context.Context, s *store.Store, n *store.Node) (*Location, error) {
	src, err := s.SourceByNumber(ctx, n.BeginSrc)
	if err != nil {
		return nil, err
	}
	if src.Synthetic() {
		return nil, nil
	}
	return &Location{
		File:      src.Filename,
		StartLine: int(n.BeginRow),
		StartCol:  int(n.BeginCol),
		EndLine:   int(n.EndRow),
		EndCol:    int(n.EndCol),
	}, nil
}

// NameLocation resolves a node's name-token position to a Location covering
// exactly the name. Falls back to the full extent when the node carries no
// name token.
func NameLocation(ctx context.Context, s *store.Store, n *store.Node) (*Location, error) {
	if n.Row == 0 && n.Col == 0 {
		return NodeLocation(ctx, s, n)
	}
	src, err := s.SourceByNumber(ctx, n.Src)
	if err != nil {
		return nil, err
	}
	if src.Synthetic() {
		return nil, nil
	}
	return &Location{
		File:      src.Filename,
		StartLine: int(n.Row),
		StartCol:  int(n.Col),
		EndLine:   int(n.Row),
		EndCol:    int(n.Col) + len(n.Name),
	}, nil
}

// nodeSpan is a node's extent as a Span.
func nodeSpan(n *store.Node) Span {
	return Span{
		Src:      n.BeginSrc,
		StartRow: n.BeginRow,
		StartCol: n.BeginCol,
		EndRow:   n.EndRow,
		EndCol:   n.EndCol,
	}
}

func spanOf(sp *store.LocSpan) Span {
	return Span{
		Src:      sp.BeginSrc,
		StartRow: sp.BeginRow,
		StartCol: sp.BeginCol,
		EndRow:   sp.EndRow,
		EndCol:   sp.EndCol,
	}
}
