package index

import (
	"fmt"
	"strings"
	"time"

	"github.com/richlew/gist-index/internal/domain"
)

const (
	documentTitle   = "# Gist Index (Public)"
	tableHeader     = "| Title | Files | Lang | Public | Updated | Link |"
	tableAlignment  = "|---|---:|---|:---:|---|---|"
	attributionLine = "_Generated by [gist-index](https://github.com/richlew/gist-index), refreshed daily._"

	// publicMarker is fixed: the lister only returns public gists.
	publicMarker = "✅"

	// timestampLayout renders the zone abbreviation so daylight-saving
	// transitions show up as EDT vs EST rather than a fixed offset.
	timestampLayout = "2006-01-02 15:04 MST"
)

// Renderer produces the index document for a set of gists.
// This interface follows Interface Segregation Principle (SOLID-I).
type Renderer interface {
	Render(gists []domain.Gist) string
}

// MarkdownRenderer implements Renderer for the Markdown table document.
// Rendering never mutates its input; gists are sorted on a copy.
type MarkdownRenderer struct {
	location *time.Location
	now      func() time.Time
}

// NewMarkdownRenderer creates a new Markdown renderer. Timestamps are
// displayed in the given location.
func NewMarkdownRenderer(location *time.Location) *MarkdownRenderer {
	return &MarkdownRenderer{
		location: location,
		now:      time.Now,
	}
}

// Render builds the full Markdown document, newest gists first.
func (r *MarkdownRenderer) Render(gists []domain.Gist) string {
	var sb strings.Builder

	sb.WriteString(documentTitle)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("_Auto-generated daily at %s_\n\n", r.now().In(r.location).Format(timestampLayout)))
	sb.WriteString(tableHeader)
	sb.WriteString("\n")
	sb.WriteString(tableAlignment)
	sb.WriteString("\n")

	for _, gist := range domain.SortByUpdatedDesc(gists) {
		r.writeRow(&sb, gist)
	}

	sb.WriteString("\n")
	sb.WriteString(attributionLine)
	sb.WriteString("\n")

	return sb.String()
}

// writeRow writes a single table row to the string builder.
func (r *MarkdownRenderer) writeRow(sb *strings.Builder, gist domain.Gist) {
	sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | [open](%s) |\n",
		escapePipes(gist.Title()),
		gist.FileCount(),
		gist.PrimaryLanguage(),
		publicMarker,
		formatUpdated(gist.UpdatedAt, r.location),
		gist.HTMLURL))
}

// formatUpdated converts the raw API timestamp into the display timezone.
// A missing timestamp renders as an empty cell; an unparseable one passes
// through raw rather than losing information.
func formatUpdated(raw string, location *time.Location) string {
	if raw == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.In(location).Format(timestampLayout)
}

// escapePipes escapes pipe characters so a title cannot break the table.
func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
