package domain

import (
	"sort"
	"strings"
	"time"
)

const (
	// TitleMaxLen is the display length ceiling for a gist title.
	TitleMaxLen = 120
	// NoDescription is the title placeholder for gists without a description.
	NoDescription = "(no description)"
)

// Gist represents one public gist returned by the listing endpoint.
// This is a domain model (part of business logic); it is immutable once fetched.
type Gist struct {
	ID          string
	Description string
	Files       map[string]GistFile
	// UpdatedAt is the raw ISO-8601 UTC timestamp as reported by the API.
	// It stays a string so that gists without a timestamp sort as the empty
	// string, i.e. last, under a plain descending string sort.
	UpdatedAt string
	HTMLURL   string
	Public    bool
}

// GistFile represents a single named file inside a gist.
type GistFile struct {
	Filename string
	Size     int
	Language string
	RawURL   string
}

// Title returns the first line of the description truncated to TitleMaxLen
// characters, or NoDescription when the description is absent or blank.
func (g Gist) Title() string {
	desc := strings.TrimSpace(g.Description)
	if desc == "" {
		return NoDescription
	}

	firstLine := desc
	if idx := strings.IndexAny(desc, "\r\n"); idx >= 0 {
		firstLine = desc[:idx]
	}

	runes := []rune(firstLine)
	if len(runes) > TitleMaxLen {
		return string(runes[:TitleMaxLen])
	}
	return firstLine
}

// FileCount returns the number of files contained in the gist.
func (g Gist) FileCount() int {
	return len(g.Files)
}

// PrimaryLanguage returns the language of the largest file (by reported size)
// among the files that carry a language label, or "" when none does.
// Files are visited in sorted filename order so ties resolve deterministically.
func (g Gist) PrimaryLanguage() string {
	names := make([]string, 0, len(g.Files))
	for name := range g.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	best := ""
	bestSize := -1
	for _, name := range names {
		f := g.Files[name]
		if f.Language == "" {
			continue
		}
		if f.Size > bestSize {
			best = f.Language
			bestSize = f.Size
		}
	}
	return best
}

// UpdatedTime parses the raw timestamp. The second return is false when the
// timestamp is absent or not RFC 3339.
func (g Gist) UpdatedTime() (time.Time, bool) {
	if g.UpdatedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, g.UpdatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SortByUpdatedDesc returns a copy of gists ordered by raw updated timestamp
// descending. The sort is stable: ties and missing timestamps (which compare
// as the empty string and therefore sort last) keep their fetch order.
func SortByUpdatedDesc(gists []Gist) []Gist {
	sorted := make([]Gist, len(gists))
	copy(sorted, gists)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt > sorted[j].UpdatedAt
	})
	return sorted
}
