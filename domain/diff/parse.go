package diff

import (
	"strings"
	"unicode/utf8"
)

const (
	headerPrefix    = "diff --git"
	newMarkerPrefix = "+++ "
	oldMarkerPrefix = "--- "
	devNull         = "/dev/null"
)

// Parse builds a Document from `git diff --unified=0` output.
//
// A "diff --git" header opens a segment named after its a/ path. The "--- "
// and "+++ " lines are kept as path markers and never as content. Any other
// line starting with '+' or '-' becomes a PrefixedLine of the open segment.
// Everything else is ignored.
func Parse(raw string) Document {
	var segments []FileDiffSegment
	current := -1
	guessed := false

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")

		switch {
		case strings.HasPrefix(line, headerPrefix):
			path, exact := headerPath(line)
			segments = append(segments, FileDiffSegment{path: path})
			current = len(segments) - 1
			guessed = !exact
		case strings.HasPrefix(line, newMarkerPrefix):
			if current >= 0 {
				seg := &segments[current]
				seg.newPath = markerPath(line, newMarkerPrefix, "b/")
				if guessed && seg.oldPath == devNull && seg.newPath != devNull {
					seg.path = seg.newPath
				}
			}
		case strings.HasPrefix(line, oldMarkerPrefix):
			if current >= 0 {
				seg := &segments[current]
				seg.oldPath = markerPath(line, oldMarkerPrefix, "a/")
				if guessed && seg.oldPath != devNull {
					seg.path = seg.oldPath
				}
			}
		case strings.HasPrefix(line, "+"), strings.HasPrefix(line, "-"):
			if current < 0 {
				continue
			}
			segments[current].lines = append(segments[current].lines,
				NewPrefixedLine(Sign(line[0]), line[1:]))
		}
	}

	return Document{segments: segments}
}

// headerPath takes the second path token of a section header and strips a
// leading "a/". A header of the form "a/P b/P" yields P even when P contains
// spaces. exact is false when the header had more fields than two paths and
// the split may have cut a path short; the "---" marker then names the file.
func headerPath(line string) (path string, exact bool) {
	rest := strings.TrimPrefix(strings.TrimPrefix(line, headerPrefix), " ")
	if p, ok := symmetricPath(rest); ok {
		return p, true
	}

	parts := strings.Split(line, " ")
	if len(parts) <= 2 {
		return "", true
	}
	return strings.TrimPrefix(parts[2], "a/"), len(parts) <= 4
}

// symmetricPath matches "a/P b/P" and returns P.
func symmetricPath(rest string) (string, bool) {
	if !strings.HasPrefix(rest, "a/") || len(rest)%2 == 0 {
		return "", false
	}
	n := (len(rest) - len("a/ b/")) / 2
	if n <= 0 {
		return "", false
	}
	p := rest[2 : 2+n]
	if rest[2+n:] != " b/"+p {
		return "", false
	}
	return p, true
}

func markerPath(line, prefix, side string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, prefix), side))
}

// Render produces the text handed to the message generator. Each segment
// starts with a "# <path>" heading after a blank line, followed by its path
// markers and changed lines. The result is trimmed.
func Render(doc Document) string {
	var sb strings.Builder
	for _, s := range doc.segments {
		sb.WriteString("\n# ")
		sb.WriteString(s.path)
		sb.WriteByte('\n')
		if s.oldPath != "" {
			sb.WriteString("- ")
			sb.WriteString(s.oldPath)
			sb.WriteByte('\n')
		}
		if s.newPath != "" {
			sb.WriteString("+ ")
			sb.WriteString(s.newPath)
			sb.WriteByte('\n')
		}
		for _, l := range s.lines {
			sb.WriteString(l.String())
			sb.WriteByte('\n')
		}
	}
	return strings.TrimSpace(sb.String())
}

// Length returns the character count of rendered text.
func Length(rendered string) int {
	return utf8.RuneCountInString(rendered)
}
