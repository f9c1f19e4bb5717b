package cnav

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlowell/cnav/internal/store"
)

func TestCollectReferences_WholeChain(t *testing.T) {
	t.Parallel()
	s := newSnapshot(t)
	ctx := context.Background()
	ref := addChain(t, s, true)

	// References split across the chain's identities all count.
	addNode(t, s, &store.Node{Number: 11, Kind: store.KindDeclRefExpr, RefPtr: "0x2", BeginSrc: 1})
	addNode(t, s, &store.Node{Number: 12, Kind: store.KindDeclRefExpr, RefPtr: "0x3", BeginSrc: 2})
	// A reference to an unrelated symbol does not.
	addNode(t, s, &store.Node{Number: 13, Kind: store.KindDeclRefExpr, RefPtr: "0xzz", BeginSrc: 1})

	refs, err := CollectReferences(ctx, s, ref, RefOptions{})
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, int64(10), refs[0].Number)
	assert.Equal(t, int64(11), refs[1].Number)
	assert.Equal(t, int64(12), refs[2].Number)
}

func TestCollectReferences_ScopeFile(t *testing.T) {
	t.Parallel()
	s := newSnapshot(t)
	ref := addChain(t, s, true)

	addNode(t, s, &store.Node{Number: 11, Kind: store.KindDeclRefExpr, RefPtr: "0x3", BeginSrc: 2})

	refs, err := CollectReferences(context.Background(), s, ref, RefOptions{ScopeFile: 1})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, int64(10), refs[0].Number)
}

func TestCollectReferences_IncludeDeclarations(t *testing.T) {
	t.Parallel()
	s := newSnapshot(t)
	ref := addChain(t, s, true)

	refs, err := CollectReferences(context.Background(), s, ref, RefOptions{IncludeDeclarations: true})
	require.NoError(t, err)
	// Declarations oldest-first, then the definition, then the references.
	require.Len(t, refs, 4)
	assert.Equal(t, int64(1), refs[0].Number)
	assert.Equal(t, int64(2), refs[1].Number)
	assert.Equal(t, int64(3), refs[2].Number)
	assert.Equal(t, int64(10), refs[3].Number)
}

func TestCollectReferences_IncludeDeclarationsScoped(t *testing.T) {
	t.Parallel()
	s := newSnapshot(t)
	// Declarations 1 and 2 live in file 2; the definition and the
	// reference in file 1. Scoping to file 1 keeps only those.
	ref := addChain(t, s, true)

	refs, err := CollectReferences(context.Background(), s, ref, RefOptions{
		ScopeFile:           1,
		IncludeDeclarations: true,
	})
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, int64(3), refs[0].Number)
	assert.Equal(t, int64(10), refs[1].Number)
}

func TestCollectReferences_FieldUsesMemberExpr(t *testing.T) {
	t.Parallel()
	s := newSnapshot(t)
	ctx := context.Background()

	addNode(t, s, &store.Node{Number: 1, FinalNumber: 2, Kind: store.KindRecordDecl,
		Name: "point", Class: store.ClassStruct, Ptr: "0xs"})
	addNode(t, s, &store.Node{Number: 2, ParentNumber: 1, Kind: store.KindFieldDecl,
		Name: "x", QualifiedType: "int", Ptr: "0xfx"})
	member := addNode(t, s, &store.Node{Number: 5, Kind: store.KindMemberExpr, RefPtr: "0xfx"})
	// A DeclRefExpr carrying the same identity is a different symbol kind
	// and must not match a field query.
	addNode(t, s, &store.Node{Number: 6, Kind: store.KindDeclRefExpr, RefPtr: "0xfx"})

	refs, err := CollectReferences(ctx, s, member, RefOptions{})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, member.Number, refs[0].Number)
	assert.Equal(t, store.KindMemberExpr, refs[0].Kind)
}
