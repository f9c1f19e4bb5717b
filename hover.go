package cnav

import (
	"context"
	"strings"

	"github.com/mlowell/cnav/internal/store"
)

// RenderHover converts a resolved node into its rich-text hover tree.
// hoverFile is the source number of the file being hovered: declarations
// that live elsewhere get a "provided by" annotation.
func RenderHover(ctx context.Context, s *store.Store, node *store.Node, hoverFile int64) (Markup, error) {
	return renderNode(ctx, s, node, hoverFile)
}

func renderNode(ctx context.Context, s *store.Store, node *store.Node, hoverFile int64) (Markup, error) {
	if node.Kind == store.KindExpansionDecl {
		return renderExpansion(ctx, s, node, hoverFile)
	}

	var items []Markup
	for _, kw := range node.Specs.Keywords() {
		items = append(items, Emphasis(kw), Text(" "))
	}
	if prefix := kindPrefix(node); prefix != "" {
		items = append(items, Emphasis(prefix), Text(" "))
	}
	items = append(items, Strong(node.Name))

	if node.Class != store.ClassNone {
		// Aggregate: the members are the documentation, not the type.
		children, err := s.Children(ctx, node.Number)
		if err != nil {
			return Markup{}, err
		}
		for _, child := range children {
			sub, err := renderNode(ctx, s, child, hoverFile)
			if err != nil {
				return Markup{}, err
			}
			items = append(items, Rule(), sub)
		}
	} else {
		if node.QualifiedType != "" {
			items = append(items, Text(" "), Emphasis(node.QualifiedType))
		}
		if node.DesugaredType != "" && node.DesugaredType != node.QualifiedType {
			items = append(items, Text(" "), Code(node.DesugaredType))
		}
	}

	annotated, err := appendOrigin(ctx, s, items, node, hoverFile)
	if err != nil {
		return Markup{}, err
	}
	return Group(annotated...), nil
}

// kindPrefix is the kind-specific keyword shown before the name.
func kindPrefix(node *store.Node) string {
	switch node.Kind {
	case store.KindTypedefDecl:
		return "typedef"
	case store.KindFieldDecl:
		return "field"
	case store.KindMacroDecl:
		return "#define"
	case store.KindRecordDecl:
		return node.Class.String()
	default:
		return ""
	}
}

// appendOrigin adds the "provided by" annotation for nodes declared in a
// different, non-synthetic file.
func appendOrigin(ctx context.Context, s *store.Store, items []Markup, node *store.Node, hoverFile int64) ([]Markup, error) {
	if node.BeginSrc == hoverFile || node.BeginSrc == 0 {
		return items, nil
	}
	src, err := s.SourceByNumber(ctx, node.BeginSrc)
	if err != nil {
		return nil, err
	}
	if src.Synthetic() {
		return items, nil
	}
	return append(items, Break(), Text("provided by "), Code(src.Filename)), nil
}

// renderExpansion renders a macro invocation: the referenced macro
// definition, then the expansion subtree as a nested outline.
func renderExpansion(ctx context.Context, s *store.Store, node *store.Node, hoverFile int64) (Markup, error) {
	var items []Markup
	if node.RefPtr != "" {
		macro, err := s.NodeByPtr(ctx, node.RefPtr)
		if err != nil {
			return Markup{}, err
		}
		if macro != nil {
			def, err := renderNode(ctx, s, macro, hoverFile)
			if err != nil {
				return Markup{}, err
			}
			items = append(items, def)
		}
	}

	subtree, err := s.Range(ctx, node.Number, node.FinalNumber)
	if err != nil {
		return Markup{}, err
	}
	items = append(items, expansionOutline(subtree)...)
	return Group(items...), nil
}

// expansionOutline lays out a flattened expansion subtree. Indents follow
// the parent chain (root 0, each level +2), computable in one pass because
// the list is in preorder so a parent's indent is always known before its
// children. Consecutive Token runs at equal indent fold into one code
// block, re-spaced from the hasLeadingSpace bit.
func expansionOutline(subtree []*store.Node) []Markup {
	if len(subtree) == 0 {
		return nil
	}

	indents := make(map[int64]int, len(subtree))
	indents[subtree[0].Number] = 0

	var out []Markup
	var code strings.Builder
	codeIndent := -1
	flush := func() {
		if code.Len() > 0 {
			out = append(out, CodeBlock(code.String()))
			code.Reset()
		}
		codeIndent = -1
	}

	for _, n := range subtree[1:] {
		indent := indents[n.ParentNumber] + 2
		indents[n.Number] = indent

		if n.Kind == store.KindToken {
			if codeIndent != indent {
				flush()
				codeIndent = indent
			}
			if code.Len() > 0 && n.Specs.Has(store.SpecLeadingSpace) {
				code.WriteByte(' ')
			}
			code.WriteString(n.Name)
			continue
		}

		flush()
		out = append(out, outlineItem(n, indent))
	}
	flush()
	return out
}

// outlineItem is one non-token expansion node as a bullet.
func outlineItem(n *store.Node, indent int) Markup {
	label := n.Name
	if label == "" {
		label = string(n.Kind)
	}
	items := []Markup{Strong(label)}
	if n.QualifiedType != "" {
		items = append(items, Text(" "), Emphasis(n.QualifiedType))
	}
	return Bullet(indent, items...)
}

// ExpansionIndents computes the outline indent of every node in a
// flattened expansion subtree, in stored order. Exposed for the indent
// invariant; renderExpansion uses the same computation inline.
func ExpansionIndents(subtree []*store.Node) []int {
	if len(subtree) == 0 {
		return nil
	}
	indents := make(map[int64]int, len(subtree))
	out := make([]int, len(subtree))
	indents[subtree[0].Number] = 0
	for i, n := range subtree[1:] {
		indent := indents[n.ParentNumber] + 2
		indents[n.Number] = indent
		out[i+1] = indent
	}
	return out
}
