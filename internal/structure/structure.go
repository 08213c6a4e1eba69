// Package structure models the lexical-scope decomposition of a
// source file: a rooted tree of code units (file, functions, nested
// blocks), each carrying a line range and complexity totals.
//
// Providers turn one source file into such a tree. The tree is
// read-only once built and is discarded after the file's metrics are
// computed.
package structure

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
)

// Kind classifies a code unit.
type Kind string

// Kind constants.
const (
	KindFile     Kind = "file"
	KindFunction Kind = "function"
	KindOther    Kind = "other"
)

// Sentinel errors returned (wrapped) by providers.
var (
	ErrUnreadableFile   = errors.New("unreadable file")
	ErrUnknownLanguage  = errors.New("unknown language")
	ErrExtractionFailed = errors.New("code structure extraction failed")
)

// Unit is one lexical scope of a source file.
type Unit struct {
	// Kind is the unit classification.
	Kind Kind `json:"kind"`

	// Name is the unit name: the file path for the root, the
	// function name for functions.
	Name string `json:"name"`

	// StartLine and EndLine are 1-based and inclusive.
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`

	// Cyclomatic is the cyclomatic complexity of this unit plus all
	// of its descendants.
	Cyclomatic float64 `json:"cyclomatic"`

	// Cognitive is the cognitive complexity of this unit plus all
	// of its descendants.
	Cognitive float64 `json:"cognitive"`

	// Children are the directly nested units, in source order.
	Children []*Unit `json:"children,omitempty"`
}

// Contains reports whether the 0-based line index falls inside the
// unit's line range.
func (u *Unit) Contains(index int) bool {
	return index >= u.StartLine-1 && index < u.EndLine
}

// Walk visits u and every descendant depth-first in source order.
func (u *Unit) Walk(fn func(*Unit)) {
	fn(u)
	for _, c := range u.Children {
		c.Walk(fn)
	}
}

// Innermost returns the deepest unit of the tree rooted at u whose
// range contains the 0-based line index. The root is returned when no
// child contains the line. Sibling ranges can touch when several
// literals share a line; the first such sibling in source order wins.
func (u *Unit) Innermost(index int) *Unit {
	current := u
	for {
		var next *Unit
		for _, c := range current.Children {
			if c.Contains(index) {
				next = c
				break
			}
		}
		if next == nil {
			return current
		}
		current = next
	}
}

// Functions returns every unit of Kind Function below u, in
// depth-first source order.
func (u *Unit) Functions() []*Unit {
	var out []*Unit
	for _, c := range u.Children {
		c.Walk(func(n *Unit) {
			if n.Kind == KindFunction {
				out = append(out, n)
			}
		})
	}
	return out
}

// LineCount returns the number of lines in src. A trailing newline
// does not start a new line.
func LineCount(src []byte) int {
	if len(src) == 0 {
		return 1
	}
	n := 1
	for i, c := range src {
		if c == '\n' && i != len(src)-1 {
			n++
		}
	}
	return n
}

// Provider parses one source file into its unit tree.
type Provider interface {
	// Language returns the language name handled by the provider.
	Language() string

	// Extensions returns the file extensions handled, with the
	// leading dot.
	Extensions() []string

	// Parse reads and parses the file at path. Errors wrap one of
	// ErrUnreadableFile, ErrUnknownLanguage or ErrExtractionFailed.
	Parse(path string) (*Unit, error)
}

// Registry dispatches parsing to providers by file extension.
type Registry struct {
	mu       sync.RWMutex
	extIndex map[string]Provider
	order    []Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		extIndex: make(map[string]Provider),
	}
}

// Register adds p, indexing it by its extensions. A later provider
// wins for a shared extension.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.order = append(r.order, p)
	for _, ext := range p.Extensions() {
		r.extIndex[strings.ToLower(ext)] = p
	}
}

// ProviderFor returns the provider registered for path's extension.
func (r *Registry) ProviderFor(path string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.extIndex[strings.ToLower(filepath.Ext(path))]
	return p, ok
}

// Supports reports whether a provider is registered for path.
func (r *Registry) Supports(path string) bool {
	_, ok := r.ProviderFor(path)
	return ok
}

// Parse parses path with the matching provider.
func (r *Registry) Parse(path string) (*Unit, error) {
	p, ok := r.ProviderFor(path)
	if !ok {
		return nil, &ParseError{Path: path, Err: ErrUnknownLanguage}
	}
	return p.Parse(path)
}

// Languages returns the registered language names in registration
// order.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for _, p := range r.order {
		names = append(names, p.Language())
	}
	return names
}

// ParseError records the file that failed to parse.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
