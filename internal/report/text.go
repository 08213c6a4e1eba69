package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/unbound-force/wcc/internal/metrics"
)

// maxName is the widest file or function name shown in a table cell.
const maxName = 30

// WriteText writes the report as human-readable styled text to the
// writer, one table per complexity dimension. Output uses lipgloss for
// color and formatting when the output is a TTY; degrades gracefully
// for pipes and CI.
func WriteText(w io.Writer, r *Report) error {
	s := DefaultStyles()

	fmt.Fprintln(w, s.Header.Render(fmt.Sprintf("=== %s ===", shorten(r.Project, 60))))
	fmt.Fprintln(w, s.SubHeader.Render(fmt.Sprintf("    mode: %s, wcc threshold: %.1f", r.Mode, r.Thresholds.WCC)))

	if len(r.Files) == 0 {
		fmt.Fprintln(w, s.Muted.Render("    No files analyzed."))
	} else {
		for _, d := range metrics.Dimensions {
			fmt.Fprintln(w)
			writeDimension(w, r, d, s)
		}
	}

	if len(r.IgnoredFiles) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.Header.Render("=== Ignored files ==="))
		for _, name := range r.IgnoredFiles {
			fmt.Fprintln(w, s.Muted.Render("    "+shorten(name, 72)))
		}
	}

	fmt.Fprintf(w, "\n%s\n",
		s.Header.Render(fmt.Sprintf(
			"%d file(s) analyzed, %d complex (cyclomatic), %d complex (cognitive), %d ignored",
			len(r.Files), len(r.ComplexFilesCyclomatic),
			len(r.ComplexFilesCognitive), len(r.IgnoredFiles))))
	return nil
}

func writeDimension(w io.Writer, r *Report, d metrics.Dimension, s Styles) {
	crapLimit, skunkLimit := r.Thresholds.CRAPCyclomatic, r.Thresholds.SKUNKCyclomatic
	if d == metrics.Cognitive {
		crapLimit, skunkLimit = r.Thresholds.CRAPCognitive, r.Thresholds.SKUNKCognitive
	}
	fmt.Fprintln(w, s.Header.Render(fmt.Sprintf("=== %s ===", d)))
	fmt.Fprintln(w, s.SubHeader.Render(fmt.Sprintf(
		"    crap threshold: %.1f, skunk threshold: %.1f", crapLimit, skunkLimit)))

	var (
		rows  [][]string
		flags []bool
	)
	add := func(name string, m metrics.Metrics) {
		data := m.Dimension(d)
		marker := ""
		if data.IsComplex {
			marker = " *"
		}
		rows = append(rows, []string{
			name + marker,
			fmt.Sprintf("%.1f", data.WCC),
			fmt.Sprintf("%.1f", data.CRAP),
			fmt.Sprintf("%.1f", data.SKUNK),
			fmt.Sprintf("%.1f", data.Complexity),
			fmt.Sprintf("%.1f%%", m.Coverage),
		})
		flags = append(flags, data.IsComplex)
	}

	for _, f := range r.Files {
		add(shorten(f.Name, maxName), f.Metrics)
		for _, fn := range f.Functions {
			add("  "+shorten(fn.Name, maxName-2), fn.Metrics)
		}
	}
	p := r.ProjectMetrics
	add("(total)", p.Total)
	add("(min)", p.Min)
	add("(max)", p.Max)
	add("(average)", p.Average)

	t := table.New().
		Width(76).
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			if col == 0 && row >= 0 && row < len(flags) {
				return s.ComplexStyle(flags[row])
			}
			return s.TableCell
		}).
		Headers("NAME", "WCC", "CRAP", "SKUNK", "CPLX", "COV").
		Rows(rows...)

	fmt.Fprintln(w, t)
}

// shorten truncates long names from the left so the file name stays
// visible.
func shorten(name string, limit int) string {
	if len(name) <= limit {
		return name
	}
	return "..." + strings.TrimLeft(name[len(name)-limit+3:], "/")
}
