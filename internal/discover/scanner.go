// Package discover finds the source files of a project that wcc can
// analyze.
package discover

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/unbound-force/wcc/internal/config"
)

// buildDirs are build output directories never walked.
var buildDirs = map[string]bool{
	"target":       true,
	"node_modules": true,
}

// Options configures a Scan invocation.
type Options struct {
	// Config provides the discovery filters. If nil, DefaultConfig()
	// is used.
	Config *config.Config

	// Supports reports whether a file can be parsed. Files it
	// rejects are not returned. Nil accepts every file.
	Supports func(path string) bool
}

// Scan walks the project rooted at root and returns the absolute,
// sorted paths of every supported file that passes the filters.
// Hidden directories and build output directories are skipped.
func Scan(ctx context.Context, root string, opts Options) ([]string, error) {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if walkErr != nil {
			return walkErr
		}

		rel, relErr := filepath.Rel(abs, path)
		if relErr != nil {
			return relErr
		}

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			base := d.Name()
			if strings.HasPrefix(base, ".") || buildDirs[base] || excludedDir(rel, opts.Config) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if opts.Supports != nil && !opts.Supports(path) {
			return nil
		}
		if !Filter(rel, opts.Config) {
			return nil
		}
		if opts.Config.Discovery.IgnoreGenerated && isGeneratedFile(path) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// generatedRegexp matches the Go convention for generated files:
// "^// Code generated .* DO NOT EDIT\.$"
var generatedRegexp = regexp.MustCompile(`^// Code generated .* DO NOT EDIT\.$`)

// isGeneratedFile checks whether a Go source file was auto-generated
// by looking for a "// Code generated ... DO NOT EDIT." comment line
// before the package clause. Other languages are never generated.
func isGeneratedFile(path string) bool {
	if filepath.Ext(path) != ".go" {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		trimmed := strings.TrimSpace(scanner.Text())
		// Stop scanning once we reach the package clause.
		if strings.HasPrefix(trimmed, "package ") {
			return false
		}
		if generatedRegexp.MatchString(trimmed) {
			return true
		}
	}
	return false
}
