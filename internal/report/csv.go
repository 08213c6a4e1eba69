package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/unbound-force/wcc/internal/metrics"
)

// csvHeader names the columns written by WriteCSV.
var csvHeader = []string{
	"kind", "file", "function", "coverage",
	"wcc_cyclomatic", "crap_cyclomatic", "skunk_cyclomatic", "complexity_cyclomatic", "is_complex_cyclomatic",
	"wcc_cognitive", "crap_cognitive", "skunk_cognitive", "complexity_cognitive", "is_complex_cognitive",
}

// WriteCSV writes one row per file, per function and per project
// aggregate. Ignored files are not listed.
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, f := range r.Files {
		if err := cw.Write(csvRow("file", f.Name, "", f.Metrics)); err != nil {
			return err
		}
		for _, fn := range f.Functions {
			if err := cw.Write(csvRow("function", f.Name, fn.Name, fn.Metrics)); err != nil {
				return err
			}
		}
	}

	if len(r.Files) > 0 {
		p := r.ProjectMetrics
		for _, agg := range []struct {
			kind string
			m    metrics.Metrics
		}{
			{"total", p.Total},
			{"min", p.Min},
			{"max", p.Max},
			{"average", p.Average},
		} {
			if err := cw.Write(csvRow(agg.kind, "", "", agg.m)); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvRow(kind, file, function string, m metrics.Metrics) []string {
	row := []string{kind, file, function, formatFloat(m.Coverage)}
	for _, d := range metrics.Dimensions {
		data := m.Dimension(d)
		row = append(row,
			formatFloat(data.WCC),
			formatFloat(data.CRAP),
			formatFloat(data.SKUNK),
			formatFloat(data.Complexity),
			strconv.FormatBool(data.IsComplex),
		)
	}
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
