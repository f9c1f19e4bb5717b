package cnav

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mlowell/cnav/internal/store"
)

// newSnapshot creates an empty writable snapshot for a test to populate.
func newSnapshot(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Create(filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func addSource(t *testing.T, s *store.Store, number int64, filename string) {
	t.Helper()
	require.NoError(t, s.InsertSource(&store.Source{Number: number, Filename: filename}))
}

func addNode(t *testing.T, s *store.Store, n *store.Node) *store.Node {
	t.Helper()
	if n.FinalNumber == 0 {
		n.FinalNumber = n.Number
	}
	require.NoError(t, s.InsertNode(n))
	return n
}

func addToken(t *testing.T, s *store.Store, src, row, col, decl int64) {
	t.Helper()
	require.NoError(t, s.InsertToken(&store.Token{Src: src, BeginRow: row, BeginCol: col, Decl: decl}))
}

func addSpan(t *testing.T, s *store.Store, sp *store.LocSpan) {
	t.Helper()
	require.NoError(t, s.InsertSpan(sp))
}
