// Package coverage loads per-line hit counts from coverage reports.
//
// Three report formats are supported: grcov's Coveralls and Covdir
// JSON outputs and Go cover profiles. All of them are normalized to a
// LineCoverage per absolute file path.
package coverage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// NonExecutable marks a line that carries no executable code.
const NonExecutable = -1

// LineCoverage holds one entry per source line, indexed by 0-based
// line offset. An entry is NonExecutable, 0 for an executable line
// that was never run, or the hit count.
type LineCoverage []int

// Executable reports whether the line at index i holds code.
func (lc LineCoverage) Executable(i int) bool {
	return i >= 0 && i < len(lc) && lc[i] != NonExecutable
}

// Covered reports whether the line at index i was run at least once.
func (lc LineCoverage) Covered(i int) bool {
	return lc.Executable(i) && lc[i] > 0
}

// Source answers coverage queries for files of one report.
type Source interface {
	// Lines returns the coverage of the file at the absolute path.
	// The boolean is false when the report does not know the file.
	Lines(path string) (LineCoverage, bool)

	// DisplayName returns the name used for path in output: the
	// slash-separated path relative to projectRoot.
	DisplayName(path, projectRoot string) (string, bool)

	// ProjectCoverage returns a precomputed project coverage
	// percentage, when the report carries one.
	ProjectCoverage() (float64, bool)
}

// ErrMalformed is returned (wrapped) when a report cannot be decoded
// or violates its format.
var ErrMalformed = errors.New("malformed coverage report")

// Format names a coverage report format.
type Format string

// Supported formats.
const (
	FormatCoveralls Format = "coveralls"
	FormatCovdir    Format = "covdir"
	FormatGo        Format = "go"
)

// Formats lists the accepted format names.
func Formats() []Format {
	return []Format{FormatCoveralls, FormatCovdir, FormatGo}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown coverage format %q (want coveralls, covdir or go)", s)
}

// Open loads the report at path. File names inside the report are
// resolved against projectRoot.
func Open(format Format, path, projectRoot string) (Source, error) {
	switch format {
	case FormatCoveralls:
		return LoadCoveralls(path, projectRoot)
	case FormatCovdir:
		return LoadCovdir(path, projectRoot)
	case FormatGo:
		return LoadGoProfile(path, projectRoot)
	default:
		return nil, fmt.Errorf("unknown coverage format %q", format)
	}
}

// fileSet is the lookup table shared by every format.
type fileSet struct {
	byPath map[string]LineCoverage
}

func newFileSet() fileSet {
	return fileSet{byPath: make(map[string]LineCoverage)}
}

func (fs fileSet) add(path string, lc LineCoverage) {
	fs.byPath[filepath.Clean(path)] = lc
}

// Lines implements Source.
func (fs fileSet) Lines(path string) (LineCoverage, bool) {
	lc, ok := fs.byPath[filepath.Clean(path)]
	return lc, ok
}

// DisplayName implements Source.
func (fs fileSet) DisplayName(path, projectRoot string) (string, bool) {
	if _, ok := fs.Lines(path); !ok {
		return "", false
	}
	return displayName(path, projectRoot), true
}

// Len returns the number of files in the report.
func (fs fileSet) Len() int {
	return len(fs.byPath)
}

func displayName(path, projectRoot string) string {
	rel, err := filepath.Rel(projectRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
