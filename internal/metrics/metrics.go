package metrics

import (
	"fmt"

	"github.com/unbound-force/wcc/internal/coverage"
	"github.com/unbound-force/wcc/internal/structure"
)

// FunctionMetrics are the metrics of one function.
type FunctionMetrics struct {
	// Name is "name (start, end)".
	Name    string  `json:"name"`
	Metrics Metrics `json:"metrics"`
}

// FileMetrics are the metrics of one source file.
type FileMetrics struct {
	Name    string  `json:"name"`
	Metrics Metrics `json:"metrics"`

	// Functions is nil unless functions were requested.
	Functions []FunctionMetrics `json:"functions,omitempty"`
}

// FromProjectData derives metrics from accumulated totals. Complexity
// is averaged over NumSpaces. When precomputed is non-nil it replaces
// the coverage derived from the line counts.
func FromProjectData(p ProjectData, t Thresholds, precomputed *float64) Metrics {
	covPct := percent(p.CoveredLines, p.PLOC)
	if precomputed != nil {
		covPct = *precomputed
	}
	covFrac := covPct / 100

	m := Metrics{Coverage: Round(covPct)}
	for _, d := range Dimensions {
		complexity := 0.0
		if p.NumSpaces > 0 {
			complexity = p.complexity(d) / float64(p.NumSpaces)
		}
		data := newData(d, t,
			percent(p.wccNumerator(d), p.PLOC),
			CRAP(complexity, covFrac),
			SKUNK(complexity, covPct),
			complexity,
		)
		if d == Cognitive {
			m.Cognitive = data
		} else {
			m.Cyclomatic = data
		}
	}
	return m
}

// FunctionMetricsFor computes the metrics of function unit fn. Lines
// of nested units count toward the function. A function above
// ComplexityGate in a dimension has a WCC of 0 there.
func FunctionMetricsFor(fn *structure.Unit, spaces Spaces, t Thresholds) FunctionMetrics {
	ploc, covered := spaces.rollup(fn)
	covPct := percent(covered, ploc)
	covFrac := covPct / 100

	m := Metrics{Coverage: Round(covPct)}
	for _, d := range Dimensions {
		complexity := fn.Cyclomatic
		if d == Cognitive {
			complexity = fn.Cognitive
		}
		wcc := covPct
		if complexity > ComplexityGate {
			wcc = 0
		}
		data := newData(d, t, wcc, CRAP(complexity, covFrac), SKUNK(complexity, covPct), complexity)
		if d == Cognitive {
			m.Cognitive = data
		} else {
			m.Cyclomatic = data
		}
	}
	return FunctionMetrics{
		Name:    fmt.Sprintf("%s (%d, %d)", fn.Name, fn.StartLine, fn.EndLine),
		Metrics: m,
	}
}

// File computes the metrics of one file from its unit tree and line
// coverage, and returns the ProjectData it contributes.
func File(name string, root *structure.Unit, lc coverage.LineCoverage, t Thresholds, functions bool) (FileMetrics, ProjectData) {
	spaces := Attribute(root, lc)
	data := spaces.FileData(root)

	fm := FileMetrics{
		Name:    name,
		Metrics: FromProjectData(data, t, nil),
	}
	if functions {
		fns := root.Functions()
		fm.Functions = make([]FunctionMetrics, 0, len(fns))
		for _, fn := range fns {
			fm.Functions = append(fm.Functions, FunctionMetricsFor(fn, spaces, t))
		}
	}
	return fm, data
}
