package cnav

import (
	"context"

	"github.com/mlowell/cnav/internal/store"
)

// CallGroup is one call-hierarchy edge: a target node (the caller for
// incoming edges, the callee for outgoing) plus the source spans of every
// call site folded into the edge.
type CallGroup struct {
	Target *store.Node
	Sites  []Span
}

// Caller returns the top-level function whose subtree contains the node id,
// or nil for ids outside any function (file-scope initializers).
func Caller(ctx context.Context, s *store.Store, refNumber int64) (*store.Node, error) {
	return s.EnclosingFunction(ctx, refNumber)
}

// IncomingCalls finds the functions referencing a function definition,
// grouped by the enclosing caller's ptr identity. References outside any
// function are skipped.
func IncomingCalls(ctx context.Context, s *store.Store, def *store.Node) ([]*CallGroup, error) {
	decls, err := Declarations(ctx, s, def)
	if err != nil {
		return nil, err
	}
	refs, err := s.RefsTo(ctx, store.KindDeclRefExpr, chainIdentities(def, decls), 0)
	if err != nil {
		return nil, err
	}

	groups := newCallGrouper()
	for _, ref := range refs {
		caller, err := s.EnclosingFunction(ctx, ref.Number)
		if err != nil {
			return nil, err
		}
		if caller == nil {
			continue
		}
		site, err := callSiteSpan(ctx, s, ref)
		if err != nil {
			return nil, err
		}
		groups.add(caller, site)
	}
	return groups.ordered, nil
}

// OutgoingCalls finds the functions a definition calls, by scanning the
// DeclRefExpr nodes of the definition's subtree. Only references whose
// ancestor chain includes a call expression count — a function name taken
// as a value (pointer, address-of) is not a call site. Grouped by the
// callee's ptr identity.
func OutgoingCalls(ctx context.Context, s *store.Store, def *store.Node) ([]*CallGroup, error) {
	refs, err := s.RefExprsIn(ctx, def.Number, def.FinalNumber)
	if err != nil {
		return nil, err
	}

	groups := newCallGrouper()
	targets := make(map[string]*store.Node)
	for _, ref := range refs {
		if !ref.HasAncestor(store.KindCallExpr) {
			continue
		}
		target, ok := targets[ref.RefPtr]
		if !ok {
			target, err = s.NodeByPtr(ctx, ref.RefPtr)
			if err != nil {
				return nil, err
			}
			targets[ref.RefPtr] = target
		}
		if target == nil || target.Kind != store.KindFunctionDecl {
			continue
		}
		site, err := callSiteSpan(ctx, s, ref)
		if err != nil {
			return nil, err
		}
		groups.add(target, site)
	}
	return groups.ordered, nil
}

// callSiteSpan is the editor-visible range of a call site. A reference
// whose text came from a macro expansion reports the expansion span — the
// invocation the user can see — instead of its own token span.
func callSiteSpan(ctx context.Context, s *store.Store, ref *store.Node) (Span, error) {
	if ref.FromExpansion() {
		sp, err := s.SpanStartingAt(ctx, ref.ExpSrc, ref.ExpRow, ref.ExpCol)
		if err != nil {
			return Span{}, err
		}
		if sp != nil {
			return spanOf(sp), nil
		}
	}
	return nodeSpan(ref), nil
}

// callGrouper merges call sites by target ptr identity, preserving first-
// seen order.
type callGrouper struct {
	byPtr   map[string]*CallGroup
	ordered []*CallGroup
}

func newCallGrouper() *callGrouper {
	return &callGrouper{byPtr: make(map[string]*CallGroup)}
}

func (g *callGrouper) add(target *store.Node, site Span) {
	group, ok := g.byPtr[target.Ptr]
	if !ok {
		group = &CallGroup{Target: target}
		g.byPtr[target.Ptr] = group
		g.ordered = append(g.ordered, group)
	}
	group.Sites = append(group.Sites, site)
}
