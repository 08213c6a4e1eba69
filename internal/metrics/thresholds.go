package metrics

import (
	"fmt"
	"strconv"
	"strings"
)

// ReferenceCoverage is the coverage fraction at which user complexity
// thresholds are turned into CRAP and SKUNK ceilings.
const ReferenceCoverage = 0.6

// Dimension selects one complexity measure.
type Dimension int

// Complexity dimensions.
const (
	Cyclomatic Dimension = iota
	Cognitive
)

// Dimensions lists every dimension in output order.
var Dimensions = []Dimension{Cyclomatic, Cognitive}

func (d Dimension) String() string {
	if d == Cognitive {
		return "cognitive"
	}
	return "cyclomatic"
}

// UserThresholds are the thresholds a user configures.
type UserThresholds struct {
	// WCC is the lowest acceptable WCC percentage.
	WCC float64 `json:"wcc" yaml:"wcc"`

	// Cyclomatic is the highest acceptable cyclomatic complexity.
	Cyclomatic float64 `json:"cyclomatic" yaml:"cyclomatic"`

	// Cognitive is the highest acceptable cognitive complexity.
	Cognitive float64 `json:"cognitive" yaml:"cognitive"`
}

// DefaultUserThresholds returns wcc 60, cyclomatic 10, cognitive 10.
func DefaultUserThresholds() UserThresholds {
	return UserThresholds{WCC: 60, Cyclomatic: 10, Cognitive: 10}
}

// ParseUserThresholds parses the "WCC,CYCLOMATIC,COGNITIVE" form, for
// example "60.0,10.0,10.0".
func ParseUserThresholds(s string) (UserThresholds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return UserThresholds{}, fmt.Errorf("thresholds %q: want WCC,CYCLOMATIC,COGNITIVE", s)
	}
	values := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return UserThresholds{}, fmt.Errorf("thresholds %q: %w", s, err)
		}
		if v < 0 {
			return UserThresholds{}, fmt.Errorf("thresholds %q: negative value %v", s, v)
		}
		values[i] = v
	}
	return UserThresholds{WCC: values[0], Cyclomatic: values[1], Cognitive: values[2]}, nil
}

func (u UserThresholds) String() string {
	return fmt.Sprintf("%g,%g,%g", u.WCC, u.Cyclomatic, u.Cognitive)
}

// Thresholds are the classification limits derived once from
// UserThresholds.
type Thresholds struct {
	WCC             float64 `json:"wcc"`
	CRAPCyclomatic  float64 `json:"crap_cyclomatic"`
	CRAPCognitive   float64 `json:"crap_cognitive"`
	SKUNKCyclomatic float64 `json:"skunk_cyclomatic"`
	SKUNKCognitive  float64 `json:"skunk_cognitive"`
}

// NewThresholds evaluates the complexity thresholds at
// ReferenceCoverage.
func NewThresholds(u UserThresholds) Thresholds {
	return Thresholds{
		WCC:             u.WCC,
		CRAPCyclomatic:  CRAP(u.Cyclomatic, ReferenceCoverage),
		CRAPCognitive:   CRAP(u.Cognitive, ReferenceCoverage),
		SKUNKCyclomatic: SKUNK(u.Cyclomatic, ReferenceCoverage*100),
		SKUNKCognitive:  SKUNK(u.Cognitive, ReferenceCoverage*100),
	}
}

// DefaultThresholds returns NewThresholds(DefaultUserThresholds()).
func DefaultThresholds() Thresholds {
	return NewThresholds(DefaultUserThresholds())
}

// IsComplex reports whether the values of dimension d break any
// limit.
func (t Thresholds) IsComplex(d Dimension, wcc, crap, skunk float64) bool {
	crapMax, skunkMax := t.CRAPCyclomatic, t.SKUNKCyclomatic
	if d == Cognitive {
		crapMax, skunkMax = t.CRAPCognitive, t.SKUNKCognitive
	}
	return wcc < t.WCC || crap > crapMax || skunk > skunkMax
}
