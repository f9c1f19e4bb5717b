package lsp

import (
	"context"
	"net/url"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/mlowell/cnav"
	"github.com/mlowell/cnav/internal/store"
)

// uriToPath converts a file URI to a local path.
func uriToPath(uri string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "file" {
		return parsed.Path, nil
	}
	return uri, nil
}

// pathToURI converts a local path to a file URI.
func pathToURI(path string) string {
	u := url.URL{Scheme: "file", Path: path}
	return u.String()
}

func toRange(loc *cnav.Location) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(loc.StartLine), Character: uint32(loc.StartCol)},
		End:   protocol.Position{Line: uint32(loc.EndLine), Character: uint32(loc.EndCol)},
	}
}

func spanRange(sp cnav.Span) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(sp.StartRow), Character: uint32(sp.StartCol)},
		End:   protocol.Position{Line: uint32(sp.EndRow), Character: uint32(sp.EndCol)},
	}
}

func toLocation(loc *cnav.Location) protocol.Location {
	return protocol.Location{URI: pathToURI(loc.File), Range: toRange(loc)}
}

// nodeLocations converts nodes to protocol locations, dropping nodes at
// synthetic locations.
func nodeLocations(ctx context.Context, snap *store.Store, nodes []*store.Node) ([]protocol.Location, error) {
	var locations []protocol.Location
	for _, n := range nodes {
		loc, err := cnav.NodeLocation(ctx, snap, n)
		if err != nil {
			return nil, err
		}
		if loc != nil {
			locations = append(locations, toLocation(loc))
		}
	}
	return locations, nil
}

// symbolKind maps a node to the protocol symbol classification.
func symbolKind(n *store.Node) protocol.SymbolKind {
	switch n.Kind {
	case store.KindFunctionDecl:
		return protocol.SymbolKindFunction
	case store.KindVarDecl, store.KindParmVarDecl:
		return protocol.SymbolKindVariable
	case store.KindFieldDecl:
		return protocol.SymbolKindField
	case store.KindTypedefDecl:
		return protocol.SymbolKindClass
	case store.KindEnumConstantDecl:
		return protocol.SymbolKindEnumMember
	case store.KindMacroDecl:
		return protocol.SymbolKindConstant
	case store.KindRecordDecl:
		if n.Class == store.ClassEnum {
			return protocol.SymbolKindEnum
		}
		return protocol.SymbolKindStruct
	default:
		return protocol.SymbolKindObject
	}
}
