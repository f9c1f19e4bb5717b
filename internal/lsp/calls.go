package lsp

import (
	"context"
	"errors"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/mlowell/cnav"
	"github.com/mlowell/cnav/internal/store"
)

// Call-hierarchy items round-trip a node number through the client. The
// number is only meaningful within the snapshot generation that produced
// it, so the generation rides along and is checked on the way back.
type itemData struct {
	Number     int64  `json:"number"`
	Generation uint64 `json:"generation"`
}

func (s *Server) prepareCallHierarchy(glspCtx *glsp.Context, params *protocol.CallHierarchyPrepareParams) ([]protocol.CallHierarchyItem, error) {
	ctx := context.Background()
	q, err := s.openDocument(ctx, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	node, err := q.nodeAt(ctx, params.Position)
	if err != nil || node == nil {
		return nil, err
	}
	def, err := cnav.Definition(ctx, q.snap, node)
	if err != nil {
		return nil, err
	}
	if def == nil || def.Kind != store.KindFunctionDecl {
		return nil, nil
	}
	item, err := s.hierarchyItem(ctx, q.snap, q.gen, def)
	if err != nil || item == nil {
		return nil, err
	}
	return []protocol.CallHierarchyItem{*item}, nil
}

func (s *Server) incomingCalls(glspCtx *glsp.Context, params *protocol.CallHierarchyIncomingCallsParams) ([]protocol.CallHierarchyIncomingCall, error) {
	ctx := context.Background()
	snap, gen, def, err := s.itemTarget(ctx, params.Item)
	if err != nil || def == nil {
		return nil, err
	}
	groups, err := cnav.IncomingCalls(ctx, snap, def)
	if err != nil {
		return nil, err
	}

	var calls []protocol.CallHierarchyIncomingCall
	for _, g := range groups {
		item, err := s.hierarchyItem(ctx, snap, gen, g.Target)
		if err != nil {
			return nil, err
		}
		if item == nil {
			continue
		}
		calls = append(calls, protocol.CallHierarchyIncomingCall{
			From:       *item,
			FromRanges: siteRanges(g.Sites),
		})
	}
	return calls, nil
}

func (s *Server) outgoingCalls(glspCtx *glsp.Context, params *protocol.CallHierarchyOutgoingCallsParams) ([]protocol.CallHierarchyOutgoingCall, error) {
	ctx := context.Background()
	snap, gen, def, err := s.itemTarget(ctx, params.Item)
	if err != nil || def == nil {
		return nil, err
	}
	groups, err := cnav.OutgoingCalls(ctx, snap, def)
	if err != nil {
		return nil, err
	}

	var calls []protocol.CallHierarchyOutgoingCall
	for _, g := range groups {
		item, err := s.hierarchyItem(ctx, snap, gen, g.Target)
		if err != nil {
			return nil, err
		}
		if item == nil {
			continue
		}
		calls = append(calls, protocol.CallHierarchyOutgoingCall{
			To:         *item,
			FromRanges: siteRanges(g.Sites),
		})
	}
	return calls, nil
}

// itemTarget resolves a call-hierarchy item back to its node, failing with
// ErrStaleSnapshot when the active snapshot has changed since the item was
// produced.
func (s *Server) itemTarget(ctx context.Context, item protocol.CallHierarchyItem) (*store.Store, uint64, *store.Node, error) {
	data, err := decodeItemData(item.Data)
	if err != nil {
		return nil, 0, nil, err
	}
	snap, gen, err := s.session.Snapshot()
	if err != nil {
		return nil, 0, nil, err
	}
	if data.Generation != gen {
		return nil, 0, nil, cnav.ErrStaleSnapshot
	}
	node, err := snap.NodeByNumber(ctx, data.Number)
	if err != nil {
		return nil, 0, nil, err
	}
	return snap, gen, node, nil
}

// decodeItemData reads itemData back out of the JSON-decoded item payload.
func decodeItemData(data any) (itemData, error) {
	m, ok := data.(map[string]any)
	if !ok {
		return itemData{}, errors.New("call hierarchy item carries no data")
	}
	number, ok := m["number"].(float64)
	if !ok {
		return itemData{}, errors.New("call hierarchy item data has no node number")
	}
	generation, _ := m["generation"].(float64)
	return itemData{Number: int64(number), Generation: uint64(generation)}, nil
}

// hierarchyItem builds the protocol item for a function node. Functions at
// synthetic locations yield nil.
func (s *Server) hierarchyItem(ctx context.Context, snap *store.Store, gen uint64, fn *store.Node) (*protocol.CallHierarchyItem, error) {
	loc, err := cnav.NodeLocation(ctx, snap, fn)
	if err != nil {
		return nil, err
	}
	sel, err := cnav.NameLocation(ctx, snap, fn)
	if err != nil {
		return nil, err
	}
	if loc == nil || sel == nil {
		return nil, nil
	}
	item := protocol.CallHierarchyItem{
		Name:           fn.Name,
		Kind:           protocol.SymbolKindFunction,
		URI:            pathToURI(loc.File),
		Range:          toRange(loc),
		SelectionRange: toRange(sel),
		Data:           itemData{Number: fn.Number, Generation: gen},
	}
	if fn.QualifiedType != "" {
		detail := fn.QualifiedType
		item.Detail = &detail
	}
	return &item, nil
}

func siteRanges(sites []cnav.Span) []protocol.Range {
	ranges := make([]protocol.Range, len(sites))
	for i, sp := range sites {
		ranges[i] = spanRange(sp)
	}
	return ranges
}
