package metrics

import (
	"github.com/unbound-force/wcc/internal/coverage"
	"github.com/unbound-force/wcc/internal/structure"
)

// Space accumulates the executable lines attributed to one code unit.
type Space struct {
	Kind         structure.Kind
	PLOC         int
	CoveredLines int

	// Cyclomatic and Cognitive are copied from the unit: totals over
	// the unit and its descendants.
	Cyclomatic float64
	Cognitive  float64
}

// Complexity returns the complexity of dimension d.
func (s *Space) Complexity(d Dimension) float64 {
	if d == Cognitive {
		return s.Cognitive
	}
	return s.Cyclomatic
}

// add folds one executable line into the space.
func (s *Space) add(covered bool) {
	s.PLOC++
	if covered {
		s.CoveredLines++
	}
}

// Spaces maps every unit of one file to its accumulator.
type Spaces map[*structure.Unit]*Space

// Attribute builds a Space for every unit of root and folds each
// executable line of lc into the innermost unit containing it.
// Lines outside the root's range are ignored.
func Attribute(root *structure.Unit, lc coverage.LineCoverage) Spaces {
	spaces := make(Spaces)
	root.Walk(func(u *structure.Unit) {
		spaces[u] = &Space{
			Kind:       u.Kind,
			Cyclomatic: u.Cyclomatic,
			Cognitive:  u.Cognitive,
		}
	})

	end := root.EndLine
	if end > len(lc) {
		end = len(lc)
	}
	for i := max(root.StartLine-1, 0); i < end; i++ {
		if !lc.Executable(i) {
			continue
		}
		spaces[root.Innermost(i)].add(lc.Covered(i))
	}
	return spaces
}

// rollup sums PLOC and covered lines over u and all its descendants.
func (s Spaces) rollup(u *structure.Unit) (ploc, covered int) {
	u.Walk(func(n *structure.Unit) {
		if sp, ok := s[n]; ok {
			ploc += sp.PLOC
			covered += sp.CoveredLines
		}
	})
	return ploc, covered
}

// ProjectData holds the additive totals from which file and project
// metrics are derived. Merge is field-wise addition, so any grouping
// of files merges to the same result.
type ProjectData struct {
	NumSpaces    int `json:"num_spaces"`
	PLOC         int `json:"ploc"`
	CoveredLines int `json:"covered_lines"`

	// WCCCyclomatic and WCCCognitive count the covered lines of units
	// at or below ComplexityGate in each dimension.
	WCCCyclomatic int `json:"wcc_cyclomatic"`
	WCCCognitive  int `json:"wcc_cognitive"`

	Cyclomatic float64 `json:"cyclomatic"`
	Cognitive  float64 `json:"cognitive"`
}

// Merge adds o into p.
func (p *ProjectData) Merge(o ProjectData) {
	p.NumSpaces += o.NumSpaces
	p.PLOC += o.PLOC
	p.CoveredLines += o.CoveredLines
	p.WCCCyclomatic += o.WCCCyclomatic
	p.WCCCognitive += o.WCCCognitive
	p.Cyclomatic += o.Cyclomatic
	p.Cognitive += o.Cognitive
}

func (p ProjectData) wccNumerator(d Dimension) int {
	if d == Cognitive {
		return p.WCCCognitive
	}
	return p.WCCCyclomatic
}

func (p ProjectData) complexity(d Dimension) float64 {
	if d == Cognitive {
		return p.Cognitive
	}
	return p.Cyclomatic
}

// FileData reduces the spaces of one file to its ProjectData.
func (s Spaces) FileData(root *structure.Unit) ProjectData {
	p := ProjectData{
		NumSpaces:  1,
		Cyclomatic: root.Cyclomatic,
		Cognitive:  root.Cognitive,
	}
	for _, sp := range s {
		p.PLOC += sp.PLOC
		p.CoveredLines += sp.CoveredLines
		if sp.Cyclomatic <= ComplexityGate {
			p.WCCCyclomatic += sp.CoveredLines
		}
		if sp.Cognitive <= ComplexityGate {
			p.WCCCognitive += sp.CoveredLines
		}
	}
	return p
}
