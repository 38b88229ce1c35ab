package index

import (
	"fmt"
	"strings"
	"time"

	"github.com/richlew/gist-index/internal/domain"
)

// HTMLRenderer implements Renderer for a standalone HTML document. It emits
// the same rows in the same order as the Markdown renderer; only the
// presentation differs. All HTML is embedded in methods, no external
// templates needed.
type HTMLRenderer struct {
	location *time.Location
	now      func() time.Time
}

// NewHTMLRenderer creates a new HTML renderer. Timestamps are displayed in
// the given location.
func NewHTMLRenderer(location *time.Location) *HTMLRenderer {
	return &HTMLRenderer{
		location: location,
		now:      time.Now,
	}
}

// Render builds the full HTML document, newest gists first.
func (r *HTMLRenderer) Render(gists []domain.Gist) string {
	var sb strings.Builder

	sb.WriteString(htmlHead("Gist Index (Public)"))
	sb.WriteString(`<body>
	<div class="container">
		<h1>Gist Index (Public)</h1>
`)
	sb.WriteString(fmt.Sprintf("\t\t<p class=\"meta-text\">Auto-generated daily at %s</p>\n",
		escapeHTML(r.now().In(r.location).Format(timestampLayout))))
	sb.WriteString(`		<div class="filters">
			<input type="text" id="titleFilter" placeholder="Filter by title..." class="filter-input">
			<div class="filter-count"></div>
		</div>
		<table class="gist-table" id="gist-table">
			<thead>
				<tr>
					<th class="sortable" onclick="sortBy('title')">Title</th>
					<th class="sortable count-cell" onclick="sortBy('files')">Files</th>
					<th class="sortable" onclick="sortBy('lang')">Lang</th>
					<th class="marker-cell">Public</th>
					<th class="sortable" onclick="sortBy('updated')">Updated</th>
					<th>Link</th>
				</tr>
			</thead>
			<tbody id="gist-tbody">
`)

	sorted := domain.SortByUpdatedDesc(gists)
	if len(sorted) == 0 {
		sb.WriteString(`				<tr><td colspan="6" class="empty">No public gists found.</td></tr>
`)
	} else {
		for _, gist := range sorted {
			r.writeRow(&sb, gist)
		}
	}

	sb.WriteString(`			</tbody>
		</table>
		<p class="meta-text attribution">Generated by <a href="https://github.com/richlew/gist-index">gist-index</a>, refreshed daily.</p>
	</div>
`)
	sb.WriteString(filterSortScript())
	sb.WriteString(`</body>
</html>
`)

	return sb.String()
}

// writeRow writes a single table row to the string builder. The raw
// timestamp rides along in data-updated so the sort script can order rows
// chronologically without reparsing the display format.
func (r *HTMLRenderer) writeRow(sb *strings.Builder, gist domain.Gist) {
	title := gist.Title()
	language := gist.PrimaryLanguage()

	sb.WriteString(fmt.Sprintf(`				<tr class="gist-row" data-title="%s" data-files="%d" data-lang="%s" data-updated="%s">
					<td>%s</td>
					<td class="count-cell">%d</td>
					<td>%s</td>
					<td class="marker-cell">%s</td>
					<td class="meta-text">%s</td>
					<td><a href="%s" target="_blank" rel="noopener noreferrer">open</a></td>
				</tr>
`,
		escapeHTML(strings.ToLower(title)),
		gist.FileCount(),
		escapeHTML(strings.ToLower(language)),
		escapeHTML(gist.UpdatedAt),
		escapeHTML(title),
		gist.FileCount(),
		escapeHTML(language),
		publicMarker,
		escapeHTML(formatUpdated(gist.UpdatedAt, r.location)),
		escapeHTML(gist.HTMLURL)))
}
