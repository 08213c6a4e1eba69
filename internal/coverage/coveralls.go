package coverage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Coveralls is a grcov Coveralls report. A null line entry marks a
// non-executable line.
type Coveralls struct {
	fileSet
}

type coverallsReport struct {
	SourceFiles []coverallsFile `json:"source_files"`
}

type coverallsFile struct {
	Name     string `json:"name"`
	Coverage []*int `json:"coverage"`
}

// LoadCoveralls reads a Coveralls report. Each file name is joined to
// projectRoot to form its lookup path.
func LoadCoveralls(path, projectRoot string) (*Coveralls, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading coveralls report: %w", err)
	}
	return ParseCoveralls(data, projectRoot)
}

// ParseCoveralls decodes an already-loaded Coveralls report.
func ParseCoveralls(data []byte, projectRoot string) (*Coveralls, error) {
	if err := validate("coveralls", CoverallsSchema, data); err != nil {
		return nil, err
	}
	var report coverallsReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	c := &Coveralls{fileSet: newFileSet()}
	for _, f := range report.SourceFiles {
		lc := make(LineCoverage, len(f.Coverage))
		for i, hits := range f.Coverage {
			if hits == nil {
				lc[i] = NonExecutable
				continue
			}
			lc[i] = *hits
		}
		c.add(filepath.Join(projectRoot, filepath.FromSlash(f.Name)), lc)
	}
	return c, nil
}

// ProjectCoverage implements Source. Coveralls reports carry no
// project total.
func (c *Coveralls) ProjectCoverage() (float64, bool) {
	return 0, false
}
