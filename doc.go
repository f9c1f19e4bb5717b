// Package cnav answers structural queries about C source code — symbol at
// cursor, definition, declarations, references, call hierarchy, hover
// documentation, macro/inactive-region highlighting — against a precomputed
// AST snapshot stored in SQLite.
//
// # Snapshots
//
// A snapshot is one translation unit's complete AST, written once by an
// external compiler front-end into four tables (src, ast, tok, loc) and
// never mutated afterwards. Nodes are stored in preorder, so a node's
// entire subtree occupies the contiguous id range [number, finalNumber];
// that invariant drives every containment and subtree query here. Nodes and
// their redeclarations are linked by opaque string identities (ptr / prev /
// refPtr / defPtr / typePtr), which the engine resolves through the
// [internal/store] lookups rather than holding live pointers.
//
// # Usage
//
// Create a Session, point it at a snapshot, and resolve:
//
//	session := cnav.NewSession()
//	err := session.SetSnapshotPath("main.ast")
//
//	snap, _, err := session.Snapshot()
//	doc, err := session.Document("/src/main.c")
//	file, err := snap.SourceByName(ctx, "/src/main.c")
//	node, err := cnav.ResolvePosition(ctx, snap, doc, file.Number, 10, 5)
//	def, err := cnav.Definition(ctx, snap, node)
//
// All resolution functions are pure transformations over the snapshot;
// distinct requests may run them concurrently without coordination. The two
// pieces of shared state — the document cache and the active snapshot
// handle — live in [Session].
//
// The cmd/cnav binary exposes everything as an LSP server (serve) and as
// one-shot CLI queries (query).
package cnav
