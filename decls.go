package cnav

import (
	"context"

	"github.com/mlowell/cnav/internal/store"
)

// Definition computes the defining declaration for a node. Reference nodes
// are first resolved through refPtr. A declaration with a defPtr yields the
// chain's defining declaration directly; otherwise, for functions, the
// redeclaration chain is walked forward (via the inverse of prev) and the
// newest declaration wins — even when no declaration in the chain has a
// body, definition lookup lands on some declaration rather than nothing.
func Definition(ctx context.Context, s *store.Store, node *store.Node) (*store.Node, error) {
	decl := node
	if node.RefPtr != "" {
		target, err := s.NodeByPtr(ctx, node.RefPtr)
		if err != nil {
			return nil, err
		}
		if target != nil {
			decl = target
		}
	}

	if decl.DefPtr != "" {
		def, err := s.NodeByPtr(ctx, decl.DefPtr)
		if err != nil {
			return nil, err
		}
		if def != nil {
			return def, nil
		}
	}

	if decl.Kind == store.KindFunctionDecl {
		for {
			next, err := s.NodeByPrev(ctx, decl.Ptr)
			if err != nil {
				return nil, err
			}
			if next == nil {
				break
			}
			decl = next
		}
	}
	return decl, nil
}

// Declarations collects the prior declarations of a definition by walking
// prev links backward. The result is ordered oldest-first and excludes the
// definition itself.
func Declarations(ctx context.Context, s *store.Store, def *store.Node) ([]*store.Node, error) {
	var decls []*store.Node
	cur := def
	for cur.Prev != "" {
		prev, err := s.NodeByPtr(ctx, cur.Prev)
		if err != nil {
			return nil, err
		}
		if prev == nil {
			break
		}
		decls = append(decls, prev)
		cur = prev
	}
	for i, j := 0, len(decls)-1; i < j; i, j = i+1, j-1 {
		decls[i], decls[j] = decls[j], decls[i]
	}
	return decls, nil
}

// TypeDefinition resolves the declaration of a node's type, or nil when the
// node carries no type link.
func TypeDefinition(ctx context.Context, s *store.Store, node *store.Node) (*store.Node, error) {
	decl := node
	if node.RefPtr != "" {
		target, err := s.NodeByPtr(ctx, node.RefPtr)
		if err != nil {
			return nil, err
		}
		if target != nil {
			decl = target
		}
	}
	if decl.TypePtr == "" {
		return nil, nil
	}
	return s.NodeByPtr(ctx, decl.TypePtr)
}

// chainIdentities returns the ptr identities of a definition and all its
// prior declarations — the set a reference may point at.
func chainIdentities(def *store.Node, decls []*store.Node) []string {
	seen := make(map[string]bool, len(decls)+1)
	ids := make([]string, 0, len(decls)+1)
	add := func(ptr string) {
		if ptr != "" && !seen[ptr] {
			seen[ptr] = true
			ids = append(ids, ptr)
		}
	}
	add(def.Ptr)
	for _, d := range decls {
		add(d.Ptr)
	}
	return ids
}
