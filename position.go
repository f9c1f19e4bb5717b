package cnav

import (
	"context"

	"github.com/mlowell/cnav/internal/store"
)

// isIdentChar classifies C identifier characters.
func isIdentChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// identifierHead returns the column of the head of the identifier the
// cursor sits in or touches, scanning backward over identifier characters.
// A cursor not adjacent to any identifier character is its own head.
func identifierHead(line string, col int) int {
	if col > len(line) {
		col = len(line)
	}
	for col > 0 && isIdentChar(line[col-1]) {
		col--
	}
	return col
}

// ResolvePosition maps a zero-based cursor in a document to the AST node
// its token resolves to. A nil node without error means nothing resolvable
// sits at the position.
//
// The cursor is first widened to the identifier head, then normalized to
// the start of a containing macro-expansion (or inactive-region) span, so
// hovering anywhere in an expanded invocation answers about the invocation.
// One containing span is unwound; nested invocations are not iterated.
func ResolvePosition(ctx context.Context, s *store.Store, doc *Document, file int64, row, col int) (*store.Node, error) {
	if line, ok := doc.Line(row); ok {
		col = identifierHead(line, col)
	}

	span, err := s.SpanAt(ctx, file, int64(row), int64(col))
	if err != nil {
		return nil, err
	}
	pos := struct{ src, row, col int64 }{file, int64(row), int64(col)}
	if span != nil {
		pos.src, pos.row, pos.col = span.BeginSrc, span.BeginRow, span.BeginCol
	}

	tok, err := s.TokenAt(ctx, pos.src, pos.row, pos.col)
	if err != nil {
		return nil, err
	}
	if tok != nil {
		return s.NodeByNumber(ctx, tok.Decl)
	}

	// Macro arguments inside conditional-compilation regions sometimes
	// produce no token row; fall back to nodes beginning at the position.
	nodes, err := s.NodesAt(ctx, pos.src, pos.row, pos.col)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		candidate := n
		if n.RefPtr != "" {
			target, err := s.NodeByPtr(ctx, n.RefPtr)
			if err != nil {
				return nil, err
			}
			if target != nil {
				candidate = target
			}
		}
		if candidate.Kind.IsDeclaration() {
			return candidate, nil
		}
	}
	return nil, nil
}
