package coverage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Covdir is a grcov Covdir report: a directory tree whose leaves are
// files. The root's coveragePercent is the project total.
type Covdir struct {
	fileSet
	total float64
}

type covdirNode struct {
	Name            string                 `json:"name"`
	CoveragePercent float64                `json:"coveragePercent"`
	Coverage        []int                  `json:"coverage"`
	Children        map[string]*covdirNode `json:"children"`
}

// LoadCovdir reads a Covdir report.
func LoadCovdir(path, projectRoot string) (*Covdir, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading covdir report: %w", err)
	}
	return ParseCovdir(data, projectRoot)
}

// ParseCovdir decodes an already-loaded Covdir report. Files are
// keyed by projectRoot joined with the names of every directory on
// the way down, the root's included. Leaves without a coverage array
// are skipped.
func ParseCovdir(data []byte, projectRoot string) (*Covdir, error) {
	if err := validate("covdir", CovdirSchema, data); err != nil {
		return nil, err
	}
	var root covdirNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	c := &Covdir{fileSet: newFileSet(), total: root.CoveragePercent}

	type frame struct {
		node   *covdirNode
		prefix string
	}
	stack := []frame{{node: &root}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur.node.Children != nil {
			dir := filepath.Join(cur.prefix, cur.node.Name)
			for _, child := range cur.node.Children {
				if child != nil {
					stack = append(stack, frame{node: child, prefix: dir})
				}
			}
			continue
		}

		// A leaf without line data is not a file grcov measured.
		if cur.node.Coverage == nil {
			continue
		}
		// -1 already means non-executable in covdir.
		lc := make(LineCoverage, len(cur.node.Coverage))
		copy(lc, cur.node.Coverage)
		name := filepath.Join(cur.prefix, cur.node.Name)
		c.add(filepath.Join(projectRoot, name), lc)
	}
	return c, nil
}

// ProjectCoverage implements Source.
func (c *Covdir) ProjectCoverage() (float64, bool) {
	return c.total, true
}
