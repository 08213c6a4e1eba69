package report

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/unbound-force/wcc/internal/metrics"
)

//go:embed templates/*.html
var templates embed.FS

var htmlTemplates = template.Must(template.New("report").Funcs(template.FuncMap{
	"fmt1":     formatFloat,
	"rowClass": rowClass,
}).ParseFS(templates, "templates/*.html"))

// IndexFile is the name of the HTML entry page.
const IndexFile = "index.html"

type complexCounts struct {
	Cyclomatic    int
	NotCyclomatic int
	Cognitive     int
	NotCognitive  int
}

type htmlFile struct {
	metrics.FileMetrics

	// Link is the detail page name, empty when the file has none.
	Link string
}

type indexPage struct {
	Title  string
	Report *Report
	Files  []htmlFile
	Counts complexCounts
}

type filePage struct {
	File       metrics.FileMetrics
	Thresholds metrics.Thresholds
	Counts     complexCounts
}

// WriteHTML writes index.html to dir and, for every file with function
// rows, a file_N.html detail page where N is the file's 1-based
// position. dir is created if needed.
func WriteHTML(dir string, r *Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating HTML output directory: %w", err)
	}

	page := indexPage{
		Title:  "Weighted Code Coverage",
		Report: r,
		Files:  make([]htmlFile, 0, len(r.Files)),
		Counts: countComplex(r.Files),
	}
	for i, f := range r.Files {
		hf := htmlFile{FileMetrics: f}
		if f.Functions != nil {
			hf.Link = fmt.Sprintf("file_%d.html", i+1)
			fns := make([]metrics.FileMetrics, 0, len(f.Functions))
			for _, fn := range f.Functions {
				fns = append(fns, metrics.FileMetrics{Name: fn.Name, Metrics: fn.Metrics})
			}
			detail := filePage{File: f, Thresholds: r.Thresholds, Counts: countComplex(fns)}
			if err := renderHTML(filepath.Join(dir, hf.Link), "file", detail); err != nil {
				return err
			}
		}
		page.Files = append(page.Files, hf)
	}
	return renderHTML(filepath.Join(dir, IndexFile), "index", page)
}

func renderHTML(path, name string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := htmlTemplates.ExecuteTemplate(f, name, data); err != nil {
		f.Close()
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	return f.Close()
}

func countComplex(files []metrics.FileMetrics) complexCounts {
	var c complexCounts
	for _, f := range files {
		if f.Metrics.Cyclomatic.IsComplex {
			c.Cyclomatic++
		} else {
			c.NotCyclomatic++
		}
		if f.Metrics.Cognitive.IsComplex {
			c.Cognitive++
		} else {
			c.NotCognitive++
		}
	}
	return c
}

func rowClass(m metrics.Metrics) string {
	if m.Cyclomatic.IsComplex || m.Cognitive.IsComplex {
		return "complex"
	}
	return "simple"
}
