package cnav

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlowell/cnav/internal/store"
)

func TestIncomingCalls_GroupedByCaller(t *testing.T) {
	t.Parallel()
	s := newSnapshot(t)
	ctx := context.Background()

	// Callee and two calling functions; alpha calls it twice.
	callee := addNode(t, s, &store.Node{Number: 1, FinalNumber: 3, Kind: store.KindFunctionDecl,
		Name: "log_msg", Ptr: "0xg"})
	addNode(t, s, &store.Node{Number: 10, FinalNumber: 19, Kind: store.KindFunctionDecl,
		Name: "alpha", Ptr: "0xa"})
	addNode(t, s, &store.Node{Number: 12, ParentNumber: 10, Kind: store.KindDeclRefExpr,
		RefPtr: "0xg", BeginSrc: 1, BeginRow: 5, BeginCol: 2, EndSrc: 1, EndRow: 5, EndCol: 9})
	addNode(t, s, &store.Node{Number: 15, ParentNumber: 10, Kind: store.KindDeclRefExpr,
		RefPtr: "0xg", BeginSrc: 1, BeginRow: 7, BeginCol: 2, EndSrc: 1, EndRow: 7, EndCol: 9})
	addNode(t, s, &store.Node{Number: 20, FinalNumber: 25, Kind: store.KindFunctionDecl,
		Name: "beta", Ptr: "0xb"})
	addNode(t, s, &store.Node{Number: 22, ParentNumber: 20, Kind: store.KindDeclRefExpr,
		RefPtr: "0xg", BeginSrc: 1, BeginRow: 12, BeginCol: 4, EndSrc: 1, EndRow: 12, EndCol: 11})
	// A file-scope reference (initializer) has no caller and is skipped.
	addNode(t, s, &store.Node{Number: 30, Kind: store.KindDeclRefExpr, RefPtr: "0xg",
		BeginSrc: 1, BeginRow: 20, BeginCol: 0})

	groups, err := IncomingCalls(ctx, s, callee)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "alpha", groups[0].Target.Name)
	require.Len(t, groups[0].Sites, 2)
	assert.Equal(t, int64(5), groups[0].Sites[0].StartRow)
	assert.Equal(t, int64(7), groups[0].Sites[1].StartRow)

	assert.Equal(t, "beta", groups[1].Target.Name)
	require.Len(t, groups[1].Sites, 1)
	assert.Equal(t, int64(12), groups[1].Sites[0].StartRow)
}

func TestIncomingCalls_WholeChain(t *testing.T) {
	t.Parallel()
	s := newSnapshot(t)
	ctx := context.Background()

	// A prototype in a header plus the definition; a call referencing the
	// prototype's identity still counts against the definition.
	addNode(t, s, &store.Node{Number: 1, Kind: store.KindFunctionDecl, Name: "frob", Ptr: "0x1"})
	def := addNode(t, s, &store.Node{Number: 2, FinalNumber: 4, Kind: store.KindFunctionDecl,
		Name: "frob", Ptr: "0x2", Prev: "0x1"})
	addNode(t, s, &store.Node{Number: 10, FinalNumber: 14, Kind: store.KindFunctionDecl,
		Name: "main", Ptr: "0xm"})
	addNode(t, s, &store.Node{Number: 12, ParentNumber: 10, Kind: store.KindDeclRefExpr,
		RefPtr: "0x1", BeginSrc: 1, BeginRow: 3, BeginCol: 2})

	groups, err := IncomingCalls(ctx, s, def)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "main", groups[0].Target.Name)
}

func TestOutgoingCalls_RequiresCallAncestry(t *testing.T) {
	t.Parallel()
	s := newSnapshot(t)
	ctx := context.Background()

	addNode(t, s, &store.Node{Number: 1, Kind: store.KindFunctionDecl, Name: "helper", Ptr: "0xh"})
	addNode(t, s, &store.Node{Number: 2, Kind: store.KindVarDecl, Name: "table", Ptr: "0xt"})
	def := addNode(t, s, &store.Node{Number: 10, FinalNumber: 19, Kind: store.KindFunctionDecl,
		Name: "run", Ptr: "0xr"})
	// A real call site.
	addNode(t, s, &store.Node{Number: 12, ParentNumber: 10, Kind: store.KindDeclRefExpr,
		RefPtr: "0xh", Ancestors: "ImplicitCastExpr CallExpr CompoundStmt",
		BeginSrc: 1, BeginRow: 4, BeginCol: 2})
	// The function's address taken as a value: not a call.
	addNode(t, s, &store.Node{Number: 14, ParentNumber: 10, Kind: store.KindDeclRefExpr,
		RefPtr: "0xh", Ancestors: "UnaryOperator CompoundStmt",
		BeginSrc: 1, BeginRow: 6, BeginCol: 8})
	// A variable used in a call argument: target is not a function.
	addNode(t, s, &store.Node{Number: 16, ParentNumber: 10, Kind: store.KindDeclRefExpr,
		RefPtr: "0xt", Ancestors: "ImplicitCastExpr CallExpr CompoundStmt",
		BeginSrc: 1, BeginRow: 4, BeginCol: 9})

	groups, err := OutgoingCalls(ctx, s, def)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "helper", groups[0].Target.Name)
	require.Len(t, groups[0].Sites, 1)
	assert.Equal(t, int64(4), groups[0].Sites[0].StartRow)
}

func TestCallSite_ExpansionOrigin(t *testing.T) {
	t.Parallel()
	s := newSnapshot(t)
	ctx := context.Background()

	// The call site's text was produced by a macro; the reported range is
	// the visible invocation span, not the token inside the expansion.
	callee := addNode(t, s, &store.Node{Number: 1, Kind: store.KindFunctionDecl,
		Name: "do_log", Ptr: "0xd"})
	addNode(t, s, &store.Node{Number: 10, FinalNumber: 14, Kind: store.KindFunctionDecl,
		Name: "main", Ptr: "0xm"})
	addNode(t, s, &store.Node{Number: 12, ParentNumber: 10, Kind: store.KindDeclRefExpr,
		RefPtr:   "0xd",
		BeginSrc: 1, BeginRow: 5, BeginCol: 4, EndSrc: 1, EndRow: 5, EndCol: 10,
		ExpSrc: 1, ExpRow: 5, ExpCol: 4})
	addSpan(t, s, &store.LocSpan{
		BeginSrc: 1, BeginRow: 5, BeginCol: 4,
		EndSrc: 1, EndRow: 5, EndCol: 20,
		Semantics: store.SemExpansion,
	})

	groups, err := IncomingCalls(ctx, s, callee)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Sites, 1)
	assert.Equal(t, Span{Src: 1, StartRow: 5, StartCol: 4, EndRow: 5, EndCol: 20}, groups[0].Sites[0])
}

func TestCaller_TopLevelReference(t *testing.T) {
	t.Parallel()
	s := newSnapshot(t)
	ctx := context.Background()

	addNode(t, s, &store.Node{Number: 1, FinalNumber: 5, Kind: store.KindFunctionDecl,
		Name: "outer", Ptr: "0xo"})

	fn, err := Caller(ctx, s, 3)
	require.NoError(t, err)
	require.NotNil(t, fn)
	assert.Equal(t, "outer", fn.Name)

	none, err := Caller(ctx, s, 9)
	require.NoError(t, err)
	assert.Nil(t, none)
}
