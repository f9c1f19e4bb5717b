package cnav

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlowell/cnav/internal/store"
)

func TestNodeLocation(t *testing.T) {
	t.Parallel()
	s := newSnapshot(t)
	ctx := context.Background()

	addSource(t, s, 1, "/src/main.c")
	addSource(t, s, 2, "<command line>")

	n := addNode(t, s, &store.Node{Number: 1, Kind: store.KindFunctionDecl, Name: "main",
		BeginSrc: 1, BeginRow: 3, BeginCol: 0, EndSrc: 1, EndRow: 8, EndCol: 1})
	loc, err := NodeLocation(ctx, s, n)
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, &Location{File: "/src/main.c", StartLine: 3, StartCol: 0, EndLine: 8, EndCol: 1}, loc)

	// Synthetic sources have no file to open.
	synthetic := addNode(t, s, &store.Node{Number: 2, Kind: store.KindMacroDecl,
		Name: "NDEBUG", BeginSrc: 2})
	loc, err = NodeLocation(ctx, s, synthetic)
	require.NoError(t, err)
	assert.Nil(t, loc)

	// An unknown source number is a broken snapshot, not an absence.
	orphan := &store.Node{Number: 3, BeginSrc: 99}
	_, err = NodeLocation(ctx, s, orphan)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestNameLocation(t *testing.T) {
	t.Parallel()
	s := newSnapshot(t)
	ctx := context.Background()

	addSource(t, s, 1, "/src/main.c")

	// The name-token position covers exactly the name.
	named := addNode(t, s, &store.Node{Number: 1, Kind: store.KindFunctionDecl, Name: "main",
		BeginSrc: 1, BeginRow: 3, BeginCol: 0, EndSrc: 1, EndRow: 8, EndCol: 1,
		Src: 1, Row: 3, Col: 4})
	loc, err := NameLocation(ctx, s, named)
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, &Location{File: "/src/main.c", StartLine: 3, StartCol: 4, EndLine: 3, EndCol: 8}, loc)

	// No name token: fall back to the full extent.
	unnamed := addNode(t, s, &store.Node{Number: 2, Kind: store.KindRecordDecl,
		Class:    store.ClassStruct,
		BeginSrc: 1, BeginRow: 10, BeginCol: 0, EndSrc: 1, EndRow: 12, EndCol: 1})
	loc, err = NameLocation(ctx, s, unnamed)
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, 10, loc.StartLine)
	assert.Equal(t, 12, loc.EndLine)
}
