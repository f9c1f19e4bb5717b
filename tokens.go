package cnav

import (
	"sort"

	"github.com/mlowell/cnav/internal/store"
)

// Semantic token legend. Expansion spans highlight as macros, inactive
// preprocessor regions as comments.
const (
	TokenTypeMacro uint32 = iota
	TokenTypeComment
)

// TokenTypes returns the token type names, indexed by the constants above.
func TokenTypes() []string {
	return []string{"macro", "comment"}
}

// SemanticToken is one absolute, line-bounded classification token.
type SemanticToken struct {
	Line      int
	Start     int
	Length    int
	Type      uint32
	Modifiers uint32
}

// SpanTokens converts spans into line-bounded tokens, sorted by (line,
// character). A multi-line span emits one token per covered line: the first
// from its begin column to end of line, continuations from column 0, the
// last up to its end column. Line lengths come from the document text.
func SpanTokens(spans []*store.LocSpan, doc *Document) []SemanticToken {
	var tokens []SemanticToken
	emit := func(line, start, length int, typ uint32) {
		if length > 0 {
			tokens = append(tokens, SemanticToken{Line: line, Start: start, Length: length, Type: typ})
		}
	}

	for _, sp := range spans {
		typ, ok := tokenType(sp.Semantics)
		if !ok {
			continue
		}
		begin, end := int(sp.BeginRow), int(sp.EndRow)
		if begin == end {
			emit(begin, int(sp.BeginCol), int(sp.EndCol-sp.BeginCol), typ)
			continue
		}
		emit(begin, int(sp.BeginCol), doc.LineLen(begin)-int(sp.BeginCol), typ)
		for line := begin + 1; line < end; line++ {
			emit(line, 0, doc.LineLen(line), typ)
		}
		emit(end, 0, int(sp.EndCol), typ)
	}

	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].Line == tokens[j].Line {
			return tokens[i].Start < tokens[j].Start
		}
		return tokens[i].Line < tokens[j].Line
	})
	return tokens
}

func tokenType(sem store.SpanSemantics) (uint32, bool) {
	switch sem {
	case store.SemExpansion:
		return TokenTypeMacro, true
	case store.SemInactive:
		return TokenTypeComment, true
	default:
		return 0, false
	}
}

// EncodeTokens re-encodes sorted absolute tokens as the delta form the
// protocol wants: each token's line and start column relative to its
// predecessor, then length, type, and modifiers.
func EncodeTokens(tokens []SemanticToken) []uint32 {
	data := make([]uint32, 0, len(tokens)*5)
	prevLine, prevStart := 0, 0
	for _, t := range tokens {
		deltaLine := t.Line - prevLine
		deltaStart := t.Start
		if deltaLine == 0 {
			deltaStart = t.Start - prevStart
		}
		data = append(data,
			uint32(deltaLine), uint32(deltaStart),
			uint32(t.Length), t.Type, t.Modifiers)
		prevLine, prevStart = t.Line, t.Start
	}
	return data
}
