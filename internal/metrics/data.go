package metrics

import "math"

// Data is the snapshot of one complexity dimension for one scope.
type Data struct {
	WCC        float64 `json:"wcc"`
	CRAP       float64 `json:"crap"`
	SKUNK      float64 `json:"skunk"`
	Complexity float64 `json:"complexity"`
	IsComplex  bool    `json:"is_complex"`
}

// newData rounds the inputs and classifies the rounded values.
func newData(d Dimension, t Thresholds, wcc, crap, skunk, complexity float64) Data {
	out := Data{
		WCC:        Round(wcc),
		CRAP:       Round(crap),
		SKUNK:      Round(skunk),
		Complexity: Round(complexity),
	}
	out.IsComplex = t.IsComplex(d, out.WCC, out.CRAP, out.SKUNK)
	return out
}

// Min returns the field-wise minimum. IsComplex is left unset.
func (a Data) Min(b Data) Data {
	return Data{
		WCC:        math.Min(a.WCC, b.WCC),
		CRAP:       math.Min(a.CRAP, b.CRAP),
		SKUNK:      math.Min(a.SKUNK, b.SKUNK),
		Complexity: math.Min(a.Complexity, b.Complexity),
	}
}

// Max returns the field-wise maximum. IsComplex is left unset.
func (a Data) Max(b Data) Data {
	return Data{
		WCC:        math.Max(a.WCC, b.WCC),
		CRAP:       math.Max(a.CRAP, b.CRAP),
		SKUNK:      math.Max(a.SKUNK, b.SKUNK),
		Complexity: math.Max(a.Complexity, b.Complexity),
	}
}

// Add returns the field-wise sum. IsComplex is left unset.
func (a Data) Add(b Data) Data {
	return Data{
		WCC:        a.WCC + b.WCC,
		CRAP:       a.CRAP + b.CRAP,
		SKUNK:      a.SKUNK + b.SKUNK,
		Complexity: a.Complexity + b.Complexity,
	}
}

// Div divides every field by n and rounds. IsComplex is left unset.
func (a Data) Div(n float64) Data {
	if n == 0 {
		return Data{}
	}
	return Data{
		WCC:        Round(a.WCC / n),
		CRAP:       Round(a.CRAP / n),
		SKUNK:      Round(a.SKUNK / n),
		Complexity: Round(a.Complexity / n),
	}
}

func (a Data) classify(d Dimension, t Thresholds) Data {
	a.IsComplex = t.IsComplex(d, a.WCC, a.CRAP, a.SKUNK)
	return a
}

// Metrics holds both dimensions and the coverage of one scope.
type Metrics struct {
	Cyclomatic Data    `json:"cyclomatic"`
	Cognitive  Data    `json:"cognitive"`
	Coverage   float64 `json:"coverage"`
}

// Dimension returns the data of dimension d.
func (m Metrics) Dimension(d Dimension) Data {
	if d == Cognitive {
		return m.Cognitive
	}
	return m.Cyclomatic
}

// Min returns the field-wise minimum of m and o.
func (m Metrics) Min(o Metrics) Metrics {
	return Metrics{
		Cyclomatic: m.Cyclomatic.Min(o.Cyclomatic),
		Cognitive:  m.Cognitive.Min(o.Cognitive),
		Coverage:   math.Min(m.Coverage, o.Coverage),
	}
}

// Max returns the field-wise maximum of m and o.
func (m Metrics) Max(o Metrics) Metrics {
	return Metrics{
		Cyclomatic: m.Cyclomatic.Max(o.Cyclomatic),
		Cognitive:  m.Cognitive.Max(o.Cognitive),
		Coverage:   math.Max(m.Coverage, o.Coverage),
	}
}

// Add returns the field-wise sum of m and o.
func (m Metrics) Add(o Metrics) Metrics {
	return Metrics{
		Cyclomatic: m.Cyclomatic.Add(o.Cyclomatic),
		Cognitive:  m.Cognitive.Add(o.Cognitive),
		Coverage:   m.Coverage + o.Coverage,
	}
}

// Div divides every field by n.
func (m Metrics) Div(n float64) Metrics {
	if n == 0 {
		return Metrics{}
	}
	return Metrics{
		Cyclomatic: m.Cyclomatic.Div(n),
		Cognitive:  m.Cognitive.Div(n),
		Coverage:   Round(m.Coverage / n),
	}
}

// Classify recomputes IsComplex of both dimensions from their values.
func (m Metrics) Classify(t Thresholds) Metrics {
	m.Cyclomatic = m.Cyclomatic.classify(Cyclomatic, t)
	m.Cognitive = m.Cognitive.classify(Cognitive, t)
	return m
}
