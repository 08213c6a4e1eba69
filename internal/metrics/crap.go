// Package metrics derives complexity-weighted coverage metrics (WCC,
// CRAP and SKUNK) from code-unit trees and per-line coverage.
//
// The CRAP formula: CRAP(c, cov) = c^2 * (1 - cov)^3 + c
// where c = complexity and cov = coverage fraction in [0, 1].
//
// The SKUNK formula: SKUNK(c, pct) = c/60 * (100 - pct) + c
// where pct = coverage percentage in [0, 100].
//
// WCC counts only lines of units whose complexity does not exceed
// ComplexityGate, so covering complex code does not raise the score.
package metrics

import (
	"math"
)

// ComplexityGate is the largest complexity at which a unit's covered
// lines still count toward WCC.
const ComplexityGate = 15.0

// skunkFactor is the complexity divisor of the SKUNK formula.
const skunkFactor = 60.0

// CRAP computes the Change Risk Anti-Patterns score for complexity
// and a coverage fraction in [0, 1].
func CRAP(complexity, coverage float64) float64 {
	uncovered := 1.0 - coverage
	return complexity*complexity*math.Pow(uncovered, 3) + complexity
}

// SKUNK computes the SKUNK score for complexity and a coverage
// percentage in [0, 100].
func SKUNK(complexity, coveragePct float64) float64 {
	return complexity/skunkFactor*(100.0-coveragePct) + complexity
}

// Round rounds x to one decimal place.
func Round(x float64) float64 {
	return math.Round(x*10) / 10
}

// percent returns 100 * part / whole, or 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100.0 * float64(part) / float64(whole)
}
