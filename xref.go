package cnav

import (
	"context"

	"github.com/mlowell/cnav/internal/store"
)

// RefOptions controls reference collection.
type RefOptions struct {
	// ScopeFile restricts results to references beginning in one source
	// file. 0 means all files.
	ScopeFile int64

	// IncludeDeclarations unions the declaration/definition nodes into the
	// result, ahead of the reference nodes.
	IncludeDeclarations bool
}

// CollectReferences finds every expression referencing the symbol a node
// resolves to. Field symbols are referenced through MemberExpr nodes,
// everything else through DeclRefExpr; the whole redeclaration chain's
// identities are matched in one set-membership query.
func CollectReferences(ctx context.Context, s *store.Store, node *store.Node, opt RefOptions) ([]*store.Node, error) {
	def, err := Definition(ctx, s, node)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, nil
	}
	decls, err := Declarations(ctx, s, def)
	if err != nil {
		return nil, err
	}

	kind := store.KindDeclRefExpr
	if def.Kind == store.KindFieldDecl {
		kind = store.KindMemberExpr
	}
	refs, err := s.RefsTo(ctx, kind, chainIdentities(def, decls), opt.ScopeFile)
	if err != nil {
		return nil, err
	}

	if !opt.IncludeDeclarations {
		return refs, nil
	}
	out := make([]*store.Node, 0, len(decls)+1+len(refs))
	for _, d := range decls {
		if opt.ScopeFile == 0 || d.BeginSrc == opt.ScopeFile {
			out = append(out, d)
		}
	}
	if opt.ScopeFile == 0 || def.BeginSrc == opt.ScopeFile {
		out = append(out, def)
	}
	return append(out, refs...), nil
}
