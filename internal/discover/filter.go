package discover

import (
	"path/filepath"
	"strings"

	"github.com/unbound-force/wcc/internal/config"
)

// Filter returns true if the given relative path should be analyzed,
// based on the include/exclude patterns in cfg.
//
// Logic:
//  1. If include patterns are set, the file must match at least one.
//  2. If the file matches any exclude pattern, it is excluded.
//  3. Otherwise, the file is included.
func Filter(rel string, cfg *config.Config) bool {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	d := cfg.Discovery

	// Normalize separators to forward slash for matching consistency.
	rel = filepath.ToSlash(rel)

	if len(d.Include) > 0 {
		matched := false
		for _, pattern := range d.Include {
			if matchGlob(pattern, rel) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, pattern := range d.Exclude {
		if matchGlob(pattern, rel) {
			return false
		}
	}
	return true
}

// excludedDir reports whether a whole directory is excluded, so the
// walk can skip it.
func excludedDir(rel string, cfg *config.Config) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range cfg.Discovery.Exclude {
		if strings.HasSuffix(pattern, "/**") && matchGlob(pattern, rel) {
			return true
		}
	}
	return false
}

// matchGlob matches a path against a glob pattern. It supports
// filepath.Match syntax and double-star suffix patterns like
// "vendor/**".
func matchGlob(pattern, rel string) bool {
	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		return rel == prefix || strings.HasPrefix(rel, prefix+"/")
	}

	matched, err := filepath.Match(pattern, rel)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Patterns without a separator also match the base name
	// (e.g., "*_test.go" matches any test file).
	if !strings.Contains(pattern, "/") {
		matched, err = filepath.Match(pattern, filepath.Base(rel))
		return err == nil && matched
	}
	return false
}
