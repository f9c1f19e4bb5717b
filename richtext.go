package cnav

import "strings"

// MarkupKind discriminates Markup variants.
type MarkupKind int

const (
	MarkupText      MarkupKind = iota // plain text, markdown-escaped
	MarkupEmphasis                    // *italic*
	MarkupStrong                      // **bold**
	MarkupCode                        // `inline code`
	MarkupBreak                       // paragraph break
	MarkupRule                        // horizontal rule
	MarkupCodeBlock                   // fenced code block
	MarkupBullet                      // indented bullet list item
	MarkupGroup                       // ordered sequence of children
)

// Markup is a rich-text tree node. Leaves carry Text; Bullet and Group
// carry Children; Bullet additionally carries its Indent in spaces.
type Markup struct {
	Kind     MarkupKind
	Text     string
	Indent   int
	Children []Markup
}

func Text(s string) Markup      { return Markup{Kind: MarkupText, Text: s} }
func Emphasis(s string) Markup  { return Markup{Kind: MarkupEmphasis, Text: s} }
func Strong(s string) Markup    { return Markup{Kind: MarkupStrong, Text: s} }
func Code(s string) Markup      { return Markup{Kind: MarkupCode, Text: s} }
func CodeBlock(s string) Markup { return Markup{Kind: MarkupCodeBlock, Text: s} }
func Break() Markup             { return Markup{Kind: MarkupBreak} }
func Rule() Markup              { return Markup{Kind: MarkupRule} }

func Bullet(indent int, children ...Markup) Markup {
	return Markup{Kind: MarkupBullet, Indent: indent, Children: children}
}

func Group(children ...Markup) Markup {
	return Markup{Kind: MarkupGroup, Children: children}
}

// Markdown renders the tree to markdown text.
func (m Markup) Markdown() string {
	var b strings.Builder
	m.render(&b)
	return b.String()
}

func (m Markup) render(b *strings.Builder) {
	switch m.Kind {
	case MarkupText:
		b.WriteString(escapeMarkdown(m.Text))
	case MarkupEmphasis:
		b.WriteString("*")
		b.WriteString(escapeMarkdown(m.Text))
		b.WriteString("*")
	case MarkupStrong:
		b.WriteString("**")
		b.WriteString(escapeMarkdown(m.Text))
		b.WriteString("**")
	case MarkupCode:
		b.WriteString("`")
		b.WriteString(m.Text)
		b.WriteString("`")
	case MarkupBreak:
		b.WriteString("\n\n")
	case MarkupRule:
		b.WriteString("\n\n---\n\n")
	case MarkupCodeBlock:
		b.WriteString("\n```c\n")
		b.WriteString(m.Text)
		b.WriteString("\n```\n")
	case MarkupBullet:
		var body strings.Builder
		for _, c := range m.Children {
			c.render(&body)
		}
		text := body.String()
		// Only plain text can masquerade as nested list syntax; a leading
		// emphasis/strong marker is formatting, not a bullet.
		if len(m.Children) > 0 && m.Children[0].Kind == MarkupText {
			text = escapeListHead(text)
		}
		b.WriteString("\n")
		b.WriteString(strings.Repeat(" ", m.Indent))
		b.WriteString("- ")
		b.WriteString(text)
	case MarkupGroup:
		for _, c := range m.Children {
			c.render(b)
		}
	}
}

// escapeMarkdown protects literal underscores and asterisks from being read
// as emphasis/strong markers.
func escapeMarkdown(s string) string {
	if !strings.ContainsAny(s, "_*") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if s[i] == '_' || s[i] == '*' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// escapeListHead protects bullet text that begins with a list-marker
// character from being parsed as nested list syntax.
func escapeListHead(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '-', '+', '*':
		return "\\" + s
	}
	if s[0] >= '0' && s[0] <= '9' {
		i := 1
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i < len(s) && (s[i] == '.' || s[i] == ')') {
			return s[:i] + "\\" + s[i:]
		}
	}
	return s
}
