// Package diff models the zero-context diff summary used as commit message input.
//
// The model is deliberately partial: it keeps added and removed lines per file
// and drops hunk headers and context, so it cannot be applied as a patch.
package diff

import "strings"

// Sign marks a line as added or removed.
type Sign byte

// Sign values.
const (
	Added   Sign = '+'
	Removed Sign = '-'
)

// PrefixedLine is a single added or removed line. Text excludes the sign,
// has trailing whitespace removed and keeps leading whitespace.
type PrefixedLine struct {
	sign Sign
	text string
}

// NewPrefixedLine creates a PrefixedLine.
func NewPrefixedLine(sign Sign, text string) PrefixedLine {
	return PrefixedLine{sign: sign, text: strings.TrimRight(text, " \t\r\n\v\f")}
}

// Sign returns the line sign.
func (l PrefixedLine) Sign() Sign { return l.sign }

// Text returns the line content without its sign.
func (l PrefixedLine) Text() string { return l.text }

// String renders the line with its sign.
func (l PrefixedLine) String() string { return string(l.sign) + l.text }

// FileDiffSegment groups the changed lines for one file.
type FileDiffSegment struct {
	path    string
	oldPath string
	newPath string
	lines   []PrefixedLine
}

// NewFileDiffSegment creates a segment for path.
func NewFileDiffSegment(path string, lines ...PrefixedLine) FileDiffSegment {
	return FileDiffSegment{path: path, lines: lines}
}

// Path returns the file path taken from the section header.
func (s FileDiffSegment) Path() string { return s.path }

// OldPath returns the path from the "--- " marker, if present.
func (s FileDiffSegment) OldPath() string { return s.oldPath }

// NewPath returns the path from the "+++ " marker, if present.
func (s FileDiffSegment) NewPath() string { return s.newPath }

// Lines returns a copy of the changed lines.
func (s FileDiffSegment) Lines() []PrefixedLine {
	result := make([]PrefixedLine, len(s.lines))
	copy(result, s.lines)
	return result
}

// WithMarkers returns a copy of the segment with the given path markers.
func (s FileDiffSegment) WithMarkers(oldPath, newPath string) FileDiffSegment {
	s.oldPath = oldPath
	s.newPath = newPath
	return s
}

// Stats counts additions and deletions in the segment.
func (s FileDiffSegment) Stats() Stats {
	var st Stats
	for _, l := range s.lines {
		switch l.sign {
		case Added:
			st.Additions++
		case Removed:
			st.Deletions++
		}
	}
	return st
}

// Stats holds line counts.
type Stats struct {
	Additions int
	Deletions int
}

// Document is the ordered set of file segments from one extraction.
type Document struct {
	segments []FileDiffSegment
}

// NewDocument creates a Document from segments.
func NewDocument(segments ...FileDiffSegment) Document {
	return Document{segments: segments}
}

// Segments returns a copy of the segments in order.
func (d Document) Segments() []FileDiffSegment {
	result := make([]FileDiffSegment, len(d.segments))
	copy(result, d.segments)
	return result
}

// IsEmpty reports whether the document has no segments.
func (d Document) IsEmpty() bool { return len(d.segments) == 0 }

// Paths returns the segment paths in order.
func (d Document) Paths() []string {
	paths := make([]string, len(d.segments))
	for i, s := range d.segments {
		paths[i] = s.path
	}
	return paths
}

// Stats sums additions and deletions over all segments.
func (d Document) Stats() Stats {
	var total Stats
	for _, s := range d.segments {
		st := s.Stats()
		total.Additions += st.Additions
		total.Deletions += st.Deletions
	}
	return total
}
