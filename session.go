package cnav

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mlowell/cnav/internal/store"
)

// ErrNoSnapshot is returned when a request arrives before any snapshot has
// been configured.
var ErrNoSnapshot = errors.New("no active snapshot configured")

// ErrStaleSnapshot is returned when a payload stamped with an earlier
// generation (a call-hierarchy item from before a snapshot switch) is used
// against the current snapshot. Node numbers are local to one snapshot, so
// resolving them across a switch would silently answer about the wrong
// translation unit.
var ErrStaleSnapshot = errors.New("snapshot changed since item was produced")

// Session owns the two pieces of state shared across requests: the active
// translation-unit handle and the per-path document cache. Everything else
// in the engine is a pure function over a snapshot.
type Session struct {
	mu       sync.Mutex
	snap     *store.Store
	snapPath string
	gen      uint64
	rule     SnapshotRule

	docMu sync.Mutex
	docs  map[string]*Document
}

// NewSession returns an empty session; configure it with SetSnapshotPath or
// SetRule before resolving.
func NewSession() *Session {
	return &Session{docs: make(map[string]*Document)}
}

// Close releases the active snapshot handle.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return nil
	}
	snap := s.snap
	s.snap = nil
	s.snapPath = ""
	return snap.Close()
}

// SetSnapshotPath opens the snapshot at path and makes it the active
// translation unit, bumping the generation. In-flight requests keep the
// handle they captured; the old handle is left open for them.
func (s *Session) SetSnapshotPath(path string) error {
	snap, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("switch snapshot: %w", err)
	}
	s.mu.Lock()
	s.snap = snap
	s.snapPath = path
	s.gen++
	s.mu.Unlock()
	return nil
}

// SetRule configures per-source snapshot path derivation.
func (s *Session) SetRule(rule SnapshotRule) {
	s.mu.Lock()
	s.rule = rule
	s.mu.Unlock()
}

// Rule returns the current derivation rule.
func (s *Session) Rule() SnapshotRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rule
}

// Snapshot returns the active snapshot handle and the generation it belongs
// to, or ErrNoSnapshot.
func (s *Session) Snapshot() (*store.Store, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return nil, 0, ErrNoSnapshot
	}
	return s.snap, s.gen, nil
}

// SnapshotFor returns the snapshot to answer a request about sourcePath.
// When a derivation rule is configured and it derives a different path than
// the active one, the session switches to the derived snapshot first.
func (s *Session) SnapshotFor(sourcePath string) (*store.Store, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rule.Configured() {
		derived := s.rule.SnapshotPath(sourcePath)
		if derived != s.snapPath {
			snap, err := store.Open(derived)
			if err != nil {
				return nil, 0, fmt.Errorf("derive snapshot for %s: %w", sourcePath, err)
			}
			s.snap = snap
			s.snapPath = derived
			s.gen++
		}
	}
	if s.snap == nil {
		return nil, 0, ErrNoSnapshot
	}
	return s.snap, s.gen, nil
}

// Generation returns the current snapshot generation.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Document returns the cached text of a file, reading it on first access.
// Never invalidated within a session; concurrent first accesses may both
// read the file, which is harmless because population is idempotent.
func (s *Session) Document(path string) (*Document, error) {
	s.docMu.Lock()
	doc, ok := s.docs[path]
	s.docMu.Unlock()
	if ok {
		return doc, nil
	}

	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	s.docMu.Lock()
	s.docs[path] = doc
	s.docMu.Unlock()
	return doc, nil
}
