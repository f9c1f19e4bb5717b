package cnav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlowell/cnav/internal/store"
)

func TestSpanTokens_SingleLine(t *testing.T) {
	t.Parallel()

	doc := NewDocument("/src/main.c", "    MAX(a, b)\n")
	spans := []*store.LocSpan{
		{BeginSrc: 1, BeginRow: 0, BeginCol: 4, EndSrc: 1, EndRow: 0, EndCol: 13, Semantics: store.SemExpansion},
	}

	tokens := SpanTokens(spans, doc)
	require.Len(t, tokens, 1)
	assert.Equal(t, SemanticToken{Line: 0, Start: 4, Length: 9, Type: TokenTypeMacro}, tokens[0])
}

func TestSpanTokens_MultiLineSplit(t *testing.T) {
	t.Parallel()

	doc := NewDocument("/src/main.c", "#if 0\nint dead_code;\n#endif tail\n")
	spans := []*store.LocSpan{
		{BeginSrc: 1, BeginRow: 0, BeginCol: 0, EndSrc: 1, EndRow: 2, EndCol: 6, Semantics: store.SemInactive},
	}

	tokens := SpanTokens(spans, doc)
	require.Len(t, tokens, 3)
	assert.Equal(t, SemanticToken{Line: 0, Start: 0, Length: 5, Type: TokenTypeComment}, tokens[0])
	assert.Equal(t, SemanticToken{Line: 1, Start: 0, Length: 14, Type: TokenTypeComment}, tokens[1])
	assert.Equal(t, SemanticToken{Line: 2, Start: 0, Length: 6, Type: TokenTypeComment}, tokens[2])
}

func TestSpanTokens_DropsEmptyAndUnknown(t *testing.T) {
	t.Parallel()

	doc := NewDocument("/src/main.c", "x\n\ny\n")
	spans := []*store.LocSpan{
		// Ends at column 0 of its last line: the final piece is empty.
		{BeginSrc: 1, BeginRow: 0, BeginCol: 0, EndSrc: 1, EndRow: 1, EndCol: 0, Semantics: store.SemExpansion},
		// Unknown semantics are not highlighted at all.
		{BeginSrc: 1, BeginRow: 2, BeginCol: 0, EndSrc: 1, EndRow: 2, EndCol: 1, Semantics: 7},
	}

	tokens := SpanTokens(spans, doc)
	require.Len(t, tokens, 1)
	assert.Equal(t, SemanticToken{Line: 0, Start: 0, Length: 1, Type: TokenTypeMacro}, tokens[0])
}

func TestSpanTokens_SortedByPosition(t *testing.T) {
	t.Parallel()

	doc := NewDocument("/src/main.c", "A B C\n")
	spans := []*store.LocSpan{
		{BeginSrc: 1, BeginRow: 0, BeginCol: 4, EndSrc: 1, EndRow: 0, EndCol: 5, Semantics: store.SemExpansion},
		{BeginSrc: 1, BeginRow: 0, BeginCol: 0, EndSrc: 1, EndRow: 0, EndCol: 1, Semantics: store.SemExpansion},
	}

	tokens := SpanTokens(spans, doc)
	require.Len(t, tokens, 2)
	assert.Equal(t, 0, tokens[0].Start)
	assert.Equal(t, 4, tokens[1].Start)
}

func TestEncodeTokens_Delta(t *testing.T) {
	t.Parallel()

	tokens := []SemanticToken{
		{Line: 2, Start: 4, Length: 3, Type: TokenTypeMacro},
		{Line: 2, Start: 10, Length: 5, Type: TokenTypeComment},
		{Line: 5, Start: 1, Length: 2, Type: TokenTypeMacro},
	}

	assert.Equal(t, []uint32{
		2, 4, 3, TokenTypeMacro, 0, // absolute from origin
		0, 6, 5, TokenTypeComment, 0, // same line: start is relative
		3, 1, 2, TokenTypeMacro, 0, // new line: start is absolute again
	}, EncodeTokens(tokens))
}

func TestEncodeTokens_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, EncodeTokens(nil))
}

func TestTokenTypes_MatchesLegendConstants(t *testing.T) {
	t.Parallel()

	types := TokenTypes()
	assert.Equal(t, "macro", types[TokenTypeMacro])
	assert.Equal(t, "comment", types[TokenTypeComment])
}
