// Package report provides output formatters for wcc results in JSON,
// CSV, HTML and human-readable text formats.
package report

import (
	"encoding/json"
	"io"

	"github.com/unbound-force/wcc/internal/metrics"
	"github.com/unbound-force/wcc/internal/pipeline"
)

// Report is the top-level output structure shared by every format.
type Report struct {
	Project                string                 `json:"project"`
	Mode                   pipeline.Mode          `json:"mode"`
	Thresholds             metrics.Thresholds     `json:"thresholds"`
	Files                  []metrics.FileMetrics  `json:"files"`
	ProjectMetrics         metrics.ProjectMetrics `json:"project_metrics"`
	ComplexFilesCyclomatic []string               `json:"complex_files_cyclomatic"`
	ComplexFilesCognitive  []string               `json:"complex_files_cognitive"`
	IgnoredFiles           []string               `json:"ignored_files"`
}

// New builds a Report from a pipeline run.
func New(project string, mode pipeline.Mode, t metrics.Thresholds, out *pipeline.Output) *Report {
	if out == nil {
		out = &pipeline.Output{}
	}
	r := &Report{
		Project:                project,
		Mode:                   mode,
		Thresholds:             t,
		Files:                  out.Files,
		ProjectMetrics:         out.Project,
		ComplexFilesCyclomatic: metrics.ComplexFiles(out.Files, metrics.Cyclomatic),
		ComplexFilesCognitive:  metrics.ComplexFiles(out.Files, metrics.Cognitive),
		IgnoredFiles:           out.IgnoredFiles,
	}
	if r.Files == nil {
		r.Files = []metrics.FileMetrics{}
	}
	if r.ComplexFilesCyclomatic == nil {
		r.ComplexFilesCyclomatic = []string{}
	}
	if r.ComplexFilesCognitive == nil {
		r.ComplexFilesCognitive = []string{}
	}
	if r.IgnoredFiles == nil {
		r.IgnoredFiles = []string{}
	}
	return r
}

// WriteJSON writes the report as formatted JSON to the writer.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
