package store

import "strings"

// NodeKind discriminates AST node rows. The set below covers every kind the
// resolution engine dispatches on; snapshots may contain further kinds
// (statements, literals, ...) which pass through untouched.
type NodeKind string

const (
	KindFunctionDecl       NodeKind = "FunctionDecl"
	KindVarDecl            NodeKind = "VarDecl"
	KindParmVarDecl        NodeKind = "ParmVarDecl"
	KindFieldDecl          NodeKind = "FieldDecl"
	KindRecordDecl         NodeKind = "RecordDecl"
	KindTypedefDecl        NodeKind = "TypedefDecl"
	KindEnumConstantDecl   NodeKind = "EnumConstantDecl"
	KindMacroDecl          NodeKind = "MacroDecl"
	KindExpansionDecl      NodeKind = "ExpansionDecl"
	KindInclusionDirective NodeKind = "InclusionDirective"
	KindDeclRefExpr        NodeKind = "DeclRefExpr"
	KindMemberExpr         NodeKind = "MemberExpr"
	KindCallExpr           NodeKind = "CallExpr"
	KindToken              NodeKind = "Token"
)

// IsDeclaration reports whether the kind names a declaration row.
func (k NodeKind) IsDeclaration() bool {
	return strings.HasSuffix(string(k), "Decl")
}

// Specs is the storage-class/qualifier bitmask on a declaration. The
// hasLeadingSpace bit is lexical: it marks a Token row that was separated
// from its predecessor by whitespace in the original source.
type Specs int64

const (
	SpecExtern Specs = 1 << iota
	SpecStatic
	SpecInline
	SpecConst
	SpecVolatile
	SpecLeadingSpace
)

// Has reports whether all bits in flag are set.
func (s Specs) Has(flag Specs) bool {
	return s&flag == flag
}

// Keywords returns the C keywords encoded in the bitmask, storage class
// before qualifiers.
func (s Specs) Keywords() []string {
	var kws []string
	for _, e := range []struct {
		bit Specs
		kw  string
	}{
		{SpecExtern, "extern"},
		{SpecStatic, "static"},
		{SpecInline, "inline"},
		{SpecConst, "const"},
		{SpecVolatile, "volatile"},
	} {
		if s.Has(e.bit) {
			kws = append(kws, e.kw)
		}
	}
	return kws
}

// RecordClass is the aggregate sub-kind of a RecordDecl.
type RecordClass int64

const (
	ClassNone   RecordClass = 0
	ClassStruct RecordClass = 1
	ClassUnion  RecordClass = 2
	ClassEnum   RecordClass = 3
)

func (c RecordClass) String() string {
	switch c {
	case ClassStruct:
		return "struct"
	case ClassUnion:
		return "union"
	case ClassEnum:
		return "enum"
	default:
		return ""
	}
}

// SpanSemantics classifies a LocSpan row.
type SpanSemantics int64

const (
	SemExpansion SpanSemantics = 1 // text produced by macro substitution
	SemInactive  SpanSemantics = 2 // preprocessor-disabled region
)

// Source is one compiled file of the translation unit.
type Source struct {
	Number   int64
	Filename string
}

// Synthetic reports whether the source has no real file backing
// (builtin/command-line locations, named like "<built-in>").
func (s *Source) Synthetic() bool {
	return strings.HasPrefix(s.Filename, "<")
}

// Node is one AST element. Rows are stored in preorder, so the subtree of a
// node occupies the contiguous id range [Number, FinalNumber].
type Node struct {
	Number       int64
	ParentNumber int64 // 0 = top-level declaration
	FinalNumber  int64

	Kind          NodeKind
	Name          string
	QualifiedType string
	DesugaredType string
	Specs         Specs
	Class         RecordClass

	// Identity links. Ptr is this row's own identity; the others name
	// another row's Ptr and are empty when absent.
	Ptr     string
	Prev    string
	RefPtr  string
	DefPtr  string
	TypePtr string

	// Full extent.
	BeginSrc, BeginRow, BeginCol int64
	EndSrc, EndRow, EndCol       int64

	// Name-token location; Row is 0 when the node has no name token.
	Src, Row, Col int64

	// Macro-expansion origin; ExpRow is 0 when the node's text is not the
	// product of an expansion.
	ExpSrc, ExpRow, ExpCol int64

	// Ancestors is the kind chain above this node, innermost first,
	// space-separated (e.g. "ImplicitCastExpr CallExpr CompoundStmt").
	Ancestors string
}

// Contains reports whether the id lies in this node's subtree range.
func (n *Node) Contains(number int64) bool {
	return n.Number <= number && number <= n.FinalNumber
}

// FromExpansion reports whether the node's text came from a macro expansion.
func (n *Node) FromExpansion() bool {
	return n.ExpRow != 0
}

// HasAncestor reports whether kind appears in the node's ancestor chain.
func (n *Node) HasAncestor(kind NodeKind) bool {
	for _, a := range strings.Fields(n.Ancestors) {
		if NodeKind(a) == kind {
			return true
		}
	}
	return false
}

// Token is the lexical fast path: one row per identifier token, keyed by
// position, naming the node id the token resolves to.
type Token struct {
	Src      int64
	BeginRow int64
	BeginCol int64
	Decl     int64
}

// LocSpan is a macro-expansion or inactive-preprocessor-region span. The
// position range is half-open: [begin, end).
type LocSpan struct {
	BeginSrc, BeginRow, BeginCol int64
	EndSrc, EndRow, EndCol       int64
	Semantics                    SpanSemantics
}
