package store

import (
	"context"
	"database/sql"
	"fmt"
)

const nodeColumns = `number, parentNumber, finalNumber, kind, name, qualifiedType, desugaredType,
specs, class, ptr, prev, refPtr, defPtr, typePtr,
beginSrc, beginRow, beginCol, endSrc, endRow, endCol,
src, row, col, expSrc, expRow, expCol, ancestors`

// scanNode reads one ast row into a Node.
func scanNode(row interface{ Scan(dest ...any) error }) (*Node, error) {
	var n Node
	var kind string
	var name, qualType, desugType, ptr, prev, refPtr, defPtr, typePtr, ancestors sql.NullString
	err := row.Scan(
		&n.Number, &n.ParentNumber, &n.FinalNumber, &kind, &name, &qualType, &desugType,
		&n.Specs, &n.Class, &ptr, &prev, &refPtr, &defPtr, &typePtr,
		&n.BeginSrc, &n.BeginRow, &n.BeginCol, &n.EndSrc, &n.EndRow, &n.EndCol,
		&n.Src, &n.Row, &n.Col, &n.ExpSrc, &n.ExpRow, &n.ExpCol, &ancestors,
	)
	if err != nil {
		return nil, err
	}
	n.Kind = NodeKind(kind)
	n.Name = text(name)
	n.QualifiedType = text(qualType)
	n.DesugaredType = text(desugType)
	n.Ptr = text(ptr)
	n.Prev = text(prev)
	n.RefPtr = text(refPtr)
	n.DefPtr = text(defPtr)
	n.TypePtr = text(typePtr)
	n.Ancestors = text(ancestors)
	return &n, nil
}

// queryNode runs a single-row node query. Absence is nil, nil.
func (s *Store) queryNode(ctx context.Context, where string, args ...any) (*Node, error) {
	n, err := scanNode(s.db.QueryRowContext(ctx, "SELECT "+nodeColumns+" FROM ast WHERE "+where, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query node: %w", err)
	}
	return n, nil
}

// queryNodes runs a multi-row node query. No matches is an empty result.
func (s *Store) queryNodes(ctx context.Context, tail string, args ...any) ([]*Node, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+nodeColumns+" FROM ast WHERE "+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// NodeByNumber returns the node with the given positional id, or nil.
func (s *Store) NodeByNumber(ctx context.Context, number int64) (*Node, error) {
	return s.queryNode(ctx, "number = ?", number)
}

// NodeByPtr returns the node with the given pointer identity, or nil.
func (s *Store) NodeByPtr(ctx context.Context, ptr string) (*Node, error) {
	return s.queryNode(ctx, "ptr = ?", ptr)
}

// NodeByPrev returns the node whose prev link names the given identity —
// the next, newer redeclaration in the chain — or nil.
func (s *Store) NodeByPrev(ctx context.Context, ptr string) (*Node, error) {
	return s.queryNode(ctx, "prev = ?", ptr)
}

// Children returns the direct children of a node in stored order.
func (s *Store) Children(ctx context.Context, parentNumber int64) ([]*Node, error) {
	return s.queryNodes(ctx, "parentNumber = ? ORDER BY number", parentNumber)
}

// Range returns all nodes with first <= number <= last, in stored
// (preorder) order. With a node's own number and finalNumber this is its
// entire subtree.
func (s *Store) Range(ctx context.Context, first, last int64) ([]*Node, error) {
	return s.queryNodes(ctx, "number BETWEEN ? AND ? ORDER BY number", first, last)
}

// TopLevelByFile returns the top-level declarations of one source file.
func (s *Store) TopLevelByFile(ctx context.Context, src int64) ([]*Node, error) {
	return s.queryNodes(ctx, "parentNumber = 0 AND beginSrc = ? ORDER BY number", src)
}

// IncludesByFile returns the inclusion directives of one source file.
func (s *Store) IncludesByFile(ctx context.Context, src int64) ([]*Node, error) {
	return s.queryNodes(ctx, "kind = ? AND beginSrc = ? ORDER BY number",
		string(KindInclusionDirective), src)
}

// NodesAt returns the nodes whose extent begins exactly at the position.
func (s *Store) NodesAt(ctx context.Context, src, row, col int64) ([]*Node, error) {
	return s.queryNodes(ctx, "beginSrc = ? AND beginRow = ? AND beginCol = ? ORDER BY number",
		src, row, col)
}

// RefsTo returns every node of the given reference kind whose refPtr is one
// of the identities, optionally restricted to beginSrc = scopeFile
// (scopeFile 0 means all files). One set-membership query, ordered by
// position in the snapshot.
func (s *Store) RefsTo(ctx context.Context, kind NodeKind, identities []string, scopeFile int64) ([]*Node, error) {
	if len(identities) == 0 {
		return nil, nil
	}
	tail := "kind = ? AND refPtr IN (" + placeholderList(len(identities)) + ")"
	args := append([]any{string(kind)}, stringsToArgs(identities)...)
	if scopeFile != 0 {
		tail += " AND beginSrc = ?"
		args = append(args, scopeFile)
	}
	return s.queryNodes(ctx, tail+" ORDER BY number", args...)
}

// RefExprsIn returns the DeclRefExpr nodes inside the id range that carry a
// refPtr, in stored order. Callers filter for call-expression ancestry.
func (s *Store) RefExprsIn(ctx context.Context, first, last int64) ([]*Node, error) {
	return s.queryNodes(ctx,
		"kind = ? AND refPtr IS NOT NULL AND number BETWEEN ? AND ? ORDER BY number",
		string(KindDeclRefExpr), first, last)
}

// EnclosingFunction returns the top-level FunctionDecl whose subtree
// contains the given node id: number < id <= finalNumber. Valid because
// preorder storage puts an ancestor's id strictly before any descendant's.
func (s *Store) EnclosingFunction(ctx context.Context, number int64) (*Node, error) {
	return s.queryNode(ctx,
		"parentNumber = 0 AND kind = ? AND number < ? AND finalNumber >= ?",
		string(KindFunctionDecl), number, number)
}

// SourceByName resolves an absolute filename to its src row. A filename the
// snapshot never compiled is ErrNotFound.
func (s *Store) SourceByName(ctx context.Context, filename string) (*Source, error) {
	src := Source{Filename: filename}
	err := s.db.QueryRowContext(ctx, "SELECT number FROM src WHERE filename = ?", filename).
		Scan(&src.Number)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("source %q: %w", filename, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("source by name: %w", err)
	}
	return &src, nil
}

// SourceByNumber resolves a source number to its src row, or ErrNotFound.
func (s *Store) SourceByNumber(ctx context.Context, number int64) (*Source, error) {
	src := Source{Number: number}
	err := s.db.QueryRowContext(ctx, "SELECT filename FROM src WHERE number = ?", number).
		Scan(&src.Filename)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("source %d: %w", number, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("source by number: %w", err)
	}
	return &src, nil
}

// TokenAt returns the token at an exact position, or nil.
func (s *Store) TokenAt(ctx context.Context, src, row, col int64) (*Token, error) {
	t := Token{Src: src, BeginRow: row, BeginCol: col}
	err := s.db.QueryRowContext(ctx,
		"SELECT decl FROM tok WHERE src = ? AND beginRow = ? AND beginCol = ?",
		src, row, col,
	).Scan(&t.Decl)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("token at: %w", err)
	}
	return &t, nil
}

const spanColumns = "beginSrc, beginRow, beginCol, endSrc, endRow, endCol, semantics"

func scanSpan(row interface{ Scan(dest ...any) error }) (*LocSpan, error) {
	var sp LocSpan
	err := row.Scan(&sp.BeginSrc, &sp.BeginRow, &sp.BeginCol,
		&sp.EndSrc, &sp.EndRow, &sp.EndCol, &sp.Semantics)
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

// SpanAt returns the span whose half-open [begin, end) range contains the
// position, or nil.
func (s *Store) SpanAt(ctx context.Context, src, row, col int64) (*LocSpan, error) {
	sp, err := scanSpan(s.db.QueryRowContext(ctx,
		`SELECT `+spanColumns+` FROM loc
		 WHERE beginSrc = ?
		   AND (beginRow < ? OR (beginRow = ? AND beginCol <= ?))
		   AND (endRow > ? OR (endRow = ? AND endCol > ?))`,
		src, row, row, col, row, row, col,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("span at: %w", err)
	}
	return sp, nil
}

// SpanStartingAt returns the span that begins exactly at the position, or
// nil. Used to map a macro-expansion origin back to its visible invocation.
func (s *Store) SpanStartingAt(ctx context.Context, src, row, col int64) (*LocSpan, error) {
	sp, err := scanSpan(s.db.QueryRowContext(ctx,
		`SELECT `+spanColumns+` FROM loc
		 WHERE beginSrc = ? AND beginRow = ? AND beginCol = ?`,
		src, row, col,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("span starting at: %w", err)
	}
	return sp, nil
}

// SpansByFile returns all spans of one source file in position order.
func (s *Store) SpansByFile(ctx context.Context, src int64) ([]*LocSpan, error) {
	return s.querySpans(ctx,
		"beginSrc = ? ORDER BY beginRow, beginCol", src)
}

// SpansInRows returns the spans of one source file overlapping the
// inclusive row window [firstRow, lastRow].
func (s *Store) SpansInRows(ctx context.Context, src, firstRow, lastRow int64) ([]*LocSpan, error) {
	return s.querySpans(ctx,
		"beginSrc = ? AND beginRow <= ? AND endRow >= ? ORDER BY beginRow, beginCol",
		src, lastRow, firstRow)
}

func (s *Store) querySpans(ctx context.Context, tail string, args ...any) ([]*LocSpan, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+spanColumns+" FROM loc WHERE "+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("query spans: %w", err)
	}
	defer rows.Close()

	var spans []*LocSpan
	for rows.Next() {
		sp, err := scanSpan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan span: %w", err)
		}
		spans = append(spans, sp)
	}
	return spans, rows.Err()
}
