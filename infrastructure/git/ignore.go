package git

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreFileName holds extra patterns that never count as modifications.
const IgnoreFileName = ".autocommitignore"

// IgnorePattern decides which paths under a repository root are ignored by
// the change watcher. It combines the repository's gitignore rules with
// patterns from IgnoreFileName.
type IgnorePattern struct {
	base    string
	matcher gitignore.Matcher
}

// NewIgnorePattern loads ignore rules for the repository at base.
// Returns an error if base does not exist or is not a directory.
func NewIgnorePattern(base string) (IgnorePattern, error) {
	info, err := os.Stat(base)
	if err != nil {
		return IgnorePattern{}, err
	}
	if !info.IsDir() {
		return IgnorePattern{}, &NotDirectoryError{Path: base}
	}

	patterns, err := gitignore.ReadPatterns(osfs.New(base), nil)
	if err != nil {
		return IgnorePattern{}, err
	}

	extra, err := loadIgnorePatterns(filepath.Join(base, IgnoreFileName))
	if err == nil {
		for _, p := range extra {
			patterns = append(patterns, gitignore.ParsePattern(p, nil))
		}
	}

	return IgnorePattern{
		base:    base,
		matcher: gitignore.NewMatcher(patterns),
	}, nil
}

// ShouldIgnore reports whether path is ignored. Anything inside .git is
// always ignored, as is anything outside base.
func (p IgnorePattern) ShouldIgnore(path string, isDir bool) bool {
	relPath, err := filepath.Rel(p.base, path)
	if err != nil {
		return true
	}
	relPath = filepath.ToSlash(relPath)
	if relPath == "." {
		return false
	}
	if strings.HasPrefix(relPath, "../") {
		return true
	}

	parts := strings.Split(relPath, "/")
	if parts[0] == ".git" {
		return true
	}
	if p.matcher == nil {
		return false
	}
	return p.matcher.Match(parts, isDir)
}

func loadIgnorePatterns(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var patterns []string
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return patterns, nil
}

// NotDirectoryError indicates the path is not a directory.
type NotDirectoryError struct {
	Path string
}

func (e *NotDirectoryError) Error() string {
	return "path is not a directory: " + e.Path
}
