package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// StdinName is the name reported for input read from standard input
const StdinName = "stdin"

// Source is one file of an ingestion batch
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// FileSource reads a file from disk
type FileSource struct {
	Path string
}

// Name returns the base name of the file
func (s FileSource) Name() string {
	return filepath.Base(s.Path)
}

// Open opens the file for reading
func (s FileSource) Open() (io.ReadCloser, error) {
	return os.Open(s.Path)
}

// readerSource wraps an already open reader (stdin, pasted data)
type readerSource struct {
	name string
	r    io.Reader
}

// NewReaderSource creates a Source backed by r. The reader is not closed.
func NewReaderSource(name string, r io.Reader) Source {
	return &readerSource{name: name, r: r}
}

func (s *readerSource) Name() string { return s.name }

func (s *readerSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(s.r), nil
}

// FromPaths builds a batch from command-line style arguments.
// "-" selects standard input and glob patterns are expanded in place.
// Missing files are not an error here; they fail at read time.
func FromPaths(paths []string) ([]Source, error) {
	var sources []Source
	stdinUsed := false

	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if p == "-" {
			if stdinUsed {
				return nil, fmt.Errorf("stdin '-' can only be given once")
			}
			stdinUsed = true
			sources = append(sources, NewReaderSource(StdinName, os.Stdin))
			continue
		}

		p = expandHome(p)
		if strings.ContainsAny(p, "*?[") {
			matches, err := filepath.Glob(p)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %s: %w", p, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no files match %s", p)
			}
			for _, match := range matches {
				sources = append(sources, FileSource{Path: match})
			}
			continue
		}

		sources = append(sources, FileSource{Path: p})
	}

	return sources, nil
}

// SplitPaths splits a prompt or pasted value into paths.
// Paths are separated by newlines or whitespace; quotes and backslash-escaped
// spaces (as terminals produce for dropped files) are honored.
func SplitPaths(input string) []string {
	var paths []string
	var current strings.Builder
	var quote rune
	escaped := false

	flush := func() {
		if current.Len() > 0 {
			paths = append(paths, current.String())
			current.Reset()
		}
	}

	for _, r := range input {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	for i, p := range paths {
		paths[i] = strings.TrimPrefix(p, "file://")
	}
	return paths
}

// LooksLikePaths reports whether every entry of input names an existing
// regular file. Used to tell a drop of files apart from pasted text.
func LooksLikePaths(input string) bool {
	paths := SplitPaths(input)
	if len(paths) == 0 {
		return false
	}
	for _, p := range paths {
		info, err := os.Stat(expandHome(p))
		if err != nil || !info.Mode().IsRegular() {
			return false
		}
	}
	return true
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
