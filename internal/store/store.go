package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a required src row is absent: a filename the
// snapshot never compiled, or a source number with no filename. Requests
// that hit it cannot be answered meaningfully.
var ErrNotFound = errors.New("not found in snapshot")

// Store is the data access layer for one translation-unit snapshot: the
// four tables src, ast, tok, and loc.
type Store struct {
	db *sql.DB
}

// Open opens an existing snapshot read-only. The snapshot is produced by an
// external indexer and never mutated here.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping snapshot: %w", err)
	}
	return &Store{db: db}, nil
}

// Create opens (or creates) a snapshot read-write with WAL mode enabled.
// Used by indexers and test fixtures; the resolution engine itself only
// ever reads.
func Create(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping snapshot: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all four tables and their indexes. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS src (
  number   INTEGER PRIMARY KEY,
  filename TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS ast (
  number        INTEGER PRIMARY KEY,
  parentNumber  INTEGER NOT NULL DEFAULT 0,
  finalNumber   INTEGER NOT NULL,
  kind          TEXT NOT NULL,
  name          TEXT,
  qualifiedType TEXT,
  desugaredType TEXT,
  specs         INTEGER NOT NULL DEFAULT 0,
  class         INTEGER NOT NULL DEFAULT 0,
  ptr           TEXT,
  prev          TEXT,
  refPtr        TEXT,
  defPtr        TEXT,
  typePtr       TEXT,
  beginSrc      INTEGER NOT NULL DEFAULT 0,
  beginRow      INTEGER NOT NULL DEFAULT 0,
  beginCol      INTEGER NOT NULL DEFAULT 0,
  endSrc        INTEGER NOT NULL DEFAULT 0,
  endRow        INTEGER NOT NULL DEFAULT 0,
  endCol        INTEGER NOT NULL DEFAULT 0,
  src           INTEGER NOT NULL DEFAULT 0,
  row           INTEGER NOT NULL DEFAULT 0,
  col           INTEGER NOT NULL DEFAULT 0,
  expSrc        INTEGER NOT NULL DEFAULT 0,
  expRow        INTEGER NOT NULL DEFAULT 0,
  expCol        INTEGER NOT NULL DEFAULT 0,
  ancestors     TEXT
);

CREATE TABLE IF NOT EXISTS tok (
  src      INTEGER NOT NULL,
  beginRow INTEGER NOT NULL,
  beginCol INTEGER NOT NULL,
  decl     INTEGER NOT NULL,
  PRIMARY KEY (src, beginRow, beginCol)
);

CREATE TABLE IF NOT EXISTS loc (
  beginSrc  INTEGER NOT NULL,
  beginRow  INTEGER NOT NULL,
  beginCol  INTEGER NOT NULL,
  endSrc    INTEGER NOT NULL,
  endRow    INTEGER NOT NULL,
  endCol    INTEGER NOT NULL,
  semantics INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ast_ptr    ON ast(ptr);
CREATE INDEX IF NOT EXISTS idx_ast_prev   ON ast(prev);
CREATE INDEX IF NOT EXISTS idx_ast_refptr ON ast(refPtr);
CREATE INDEX IF NOT EXISTS idx_ast_parent ON ast(parentNumber);
CREATE INDEX IF NOT EXISTS idx_ast_kind   ON ast(kind);
CREATE INDEX IF NOT EXISTS idx_ast_begin  ON ast(beginSrc, beginRow, beginCol);
CREATE INDEX IF NOT EXISTS idx_loc_begin  ON loc(beginSrc, beginRow);
`

// InsertSource writes one src row. Writer surface for indexers and fixtures.
func (s *Store) InsertSource(src *Source) error {
	_, err := s.db.Exec("INSERT INTO src (number, filename) VALUES (?, ?)", src.Number, src.Filename)
	if err != nil {
		return fmt.Errorf("insert source: %w", err)
	}
	return nil
}

// InsertNode writes one ast row.
func (s *Store) InsertNode(n *Node) error {
	_, err := s.db.Exec(
		`INSERT INTO ast (`+nodeColumns+`)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		n.Number, n.ParentNumber, n.FinalNumber, string(n.Kind),
		nullable(n.Name), nullable(n.QualifiedType), nullable(n.DesugaredType),
		int64(n.Specs), int64(n.Class),
		nullable(n.Ptr), nullable(n.Prev), nullable(n.RefPtr), nullable(n.DefPtr), nullable(n.TypePtr),
		n.BeginSrc, n.BeginRow, n.BeginCol,
		n.EndSrc, n.EndRow, n.EndCol,
		n.Src, n.Row, n.Col,
		n.ExpSrc, n.ExpRow, n.ExpCol,
		nullable(n.Ancestors),
	)
	if err != nil {
		return fmt.Errorf("insert node %d: %w", n.Number, err)
	}
	return nil
}

// InsertToken writes one tok row.
func (s *Store) InsertToken(t *Token) error {
	_, err := s.db.Exec(
		"INSERT INTO tok (src, beginRow, beginCol, decl) VALUES (?, ?, ?, ?)",
		t.Src, t.BeginRow, t.BeginCol, t.Decl,
	)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// InsertSpan writes one loc row.
func (s *Store) InsertSpan(sp *LocSpan) error {
	_, err := s.db.Exec(
		`INSERT INTO loc (beginSrc, beginRow, beginCol, endSrc, endRow, endCol, semantics)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sp.BeginSrc, sp.BeginRow, sp.BeginCol, sp.EndSrc, sp.EndRow, sp.EndCol, int64(sp.Semantics),
	)
	if err != nil {
		return fmt.Errorf("insert span: %w", err)
	}
	return nil
}
