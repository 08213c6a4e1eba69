package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	charmlog "github.com/charmbracelet/log"

	"github.com/unbound-force/wcc/internal/config"
	"github.com/unbound-force/wcc/internal/coverage"
	"github.com/unbound-force/wcc/internal/report"
)

// ---------------------------------------------------------------------------
// fixtures
// ---------------------------------------------------------------------------

const appSource = `package app

func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
`

// appCoverage marks lines 3, 4, 5 and 7 executable; line 5 is missed.
const appCoverage = `{"source_files": [
  {"name": "app.go", "coverage": [null, null, 1, 1, 0, null, 1, null]}
]}`

// writeProject creates a project with app.go (covered), other.go (not
// in the report) and a coveralls report. It returns the project
// directory and the report path.
func writeProject(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"app.go":         appSource,
		"other.go":       "package app\n\nfunc Other() {}\n",
		"coveralls.json": appCoverage,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir, filepath.Join(dir, "coveralls.json")
}

func intPtr(n int) *int { return &n }

// ---------------------------------------------------------------------------
// runRun tests
// ---------------------------------------------------------------------------

func TestRunRun_InvalidFormat(t *testing.T) {
	err := runRun(runParams{
		projectDir: ".",
		format:     "yaml",
		stdout:     &bytes.Buffer{},
		stderr:     &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("expected error for invalid format")
	}
	if !strings.Contains(err.Error(), `invalid format "yaml"`) {
		t.Errorf("unexpected error message: %s", err)
	}
}

func TestRunRun_MissingCoverage(t *testing.T) {
	dir, _ := writeProject(t)
	err := runRun(runParams{
		projectDir: dir,
		format:     "text",
		stdout:     &bytes.Buffer{},
		stderr:     &bytes.Buffer{},
	})
	if err == nil || !strings.Contains(err.Error(), "no coverage report given") {
		t.Errorf("expected missing coverage error, got %v", err)
	}
}

func TestRunRun_JSONFormat(t *testing.T) {
	dir, cov := writeProject(t)
	var stdout, stderr bytes.Buffer
	err := runRun(runParams{
		projectDir:   dir,
		coveragePath: cov,
		format:       "json",
		stdout:       &stdout,
		stderr:       &stderr,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var rpt report.Report
	if err := json.Unmarshal(stdout.Bytes(), &rpt); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, stdout.String())
	}
	if len(rpt.Files) != 1 || rpt.Files[0].Name != "app.go" {
		t.Fatalf("files = %+v, want only app.go", rpt.Files)
	}
	if got := rpt.Files[0].Metrics.Coverage; got != 75 {
		t.Errorf("coverage = %v, want 75", got)
	}
	if got := rpt.Files[0].Metrics.Cyclomatic.WCC; got != 75 {
		t.Errorf("wcc = %v, want 75", got)
	}
	if len(rpt.IgnoredFiles) != 1 || rpt.IgnoredFiles[0] != "other.go" {
		t.Errorf("ignored = %v, want [other.go]", rpt.IgnoredFiles)
	}
	if rpt.Files[0].Functions != nil {
		t.Error("files mode should not emit function rows")
	}
}

func TestRunRun_FunctionsModeFromConfig(t *testing.T) {
	dir, cov := writeProject(t)
	cfg := "mode: functions\ncoverage:\n  path: " + cov + "\n"
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	err := runRun(runParams{
		projectDir: dir,
		format:     "json",
		stdout:     &stdout,
		stderr:     &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var rpt report.Report
	if err := json.Unmarshal(stdout.Bytes(), &rpt); err != nil {
		t.Fatal(err)
	}
	if rpt.Mode != "functions" {
		t.Errorf("mode = %q, want functions", rpt.Mode)
	}
	if len(rpt.Files) != 1 || len(rpt.Files[0].Functions) != 1 {
		t.Fatalf("files = %+v, want one file with one function", rpt.Files)
	}
	if got := rpt.Files[0].Functions[0].Name; got != "Max (3, 8)" {
		t.Errorf("function name = %q, want %q", got, "Max (3, 8)")
	}
}

func TestRunRun_FlagOverridesConfig(t *testing.T) {
	dir, cov := writeProject(t)
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte("mode: functions\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	err := runRun(runParams{
		projectDir:   dir,
		coveragePath: cov,
		mode:         "files",
		format:       "csv",
		stdout:       &stdout,
		stderr:       &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(stdout.String(), "\nfunction,") {
		t.Errorf("expected no function rows, got:\n%s", stdout.String())
	}
	if !strings.Contains(stdout.String(), "file,app.go,") {
		t.Errorf("expected a file row for app.go, got:\n%s", stdout.String())
	}
}

func TestRunRun_InvalidThresholds(t *testing.T) {
	dir, cov := writeProject(t)
	err := runRun(runParams{
		projectDir:   dir,
		coveragePath: cov,
		thresholds:   "60,ten,10",
		format:       "text",
		stdout:       &bytes.Buffer{},
		stderr:       &bytes.Buffer{},
	})
	if err == nil {
		t.Error("expected error for malformed thresholds")
	}
}

func TestRunRun_HTMLOutput(t *testing.T) {
	dir, cov := writeProject(t)
	htmlDir := filepath.Join(t.TempDir(), "html")
	err := runRun(runParams{
		projectDir:   dir,
		coveragePath: cov,
		mode:         "functions",
		format:       "text",
		htmlDir:      htmlDir,
		stdout:       &bytes.Buffer{},
		stderr:       &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{report.IndexFile, "file_1.html"} {
		if _, err := os.Stat(filepath.Join(htmlDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestRunRun_MaxComplexFilesExceeded(t *testing.T) {
	dir, cov := writeProject(t)
	var stderr bytes.Buffer
	err := runRun(runParams{
		projectDir:      dir,
		coveragePath:    cov,
		thresholds:      "90,10,10",
		maxComplexFiles: intPtr(0),
		format:          "text",
		stdout:          &bytes.Buffer{},
		stderr:          &stderr,
	})
	if err == nil {
		t.Fatal("expected CI threshold error")
	}
	if !strings.Contains(stderr.String(), "Complex files: 1/0 (FAIL)") {
		t.Errorf("expected FAIL summary, got %q", stderr.String())
	}
}

func TestRunRun_MaxComplexFilesPass(t *testing.T) {
	dir, cov := writeProject(t)
	var stderr bytes.Buffer
	err := runRun(runParams{
		projectDir:      dir,
		coveragePath:    cov,
		maxComplexFiles: intPtr(0),
		format:          "text",
		stdout:          &bytes.Buffer{},
		stderr:          &stderr,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stderr.String(), "Complex files: 0/0 (PASS)") {
		t.Errorf("expected PASS summary, got %q", stderr.String())
	}
}

func TestRunRun_SourceDirScannedAgainstProjectRoot(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "app.go"), []byte(appSource), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "top.go"), []byte("package top\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cov := filepath.Join(dir, "coveralls.json")
	if err := os.WriteFile(cov, []byte(strings.Replace(appCoverage, `"app.go"`, `"src/app.go"`, 1)), 0o600); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	err := runRun(runParams{
		projectDir:   dir,
		sourceDir:    src,
		coveragePath: cov,
		format:       "json",
		stdout:       &stdout,
		stderr:       &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var rpt report.Report
	if err := json.Unmarshal(stdout.Bytes(), &rpt); err != nil {
		t.Fatal(err)
	}
	if len(rpt.Files) != 1 || rpt.Files[0].Name != "src/app.go" {
		t.Errorf("files = %+v, want only src/app.go", rpt.Files)
	}
	if len(rpt.IgnoredFiles) != 0 {
		t.Errorf("ignored = %v, want none outside the source dir", rpt.IgnoredFiles)
	}
}

// ---------------------------------------------------------------------------
// CI summary tests
// ---------------------------------------------------------------------------

func TestPrintCISummary_NoLimit(t *testing.T) {
	var buf bytes.Buffer
	printCISummary(&buf, &report.Report{ComplexFilesCyclomatic: []string{"a"}}, -1)
	if buf.Len() != 0 {
		t.Errorf("expected no output without a limit, got %q", buf.String())
	}
}

func TestCheckCIThreshold_AtBoundary(t *testing.T) {
	rpt := &report.Report{ComplexFilesCyclomatic: []string{"a", "b"}}
	if err := checkCIThreshold(rpt, 2); err != nil {
		t.Errorf("expected no error at the boundary, got %v", err)
	}
	if err := checkCIThreshold(rpt, 1); err == nil {
		t.Error("expected error above the limit")
	}
}

// ---------------------------------------------------------------------------
// schema and registry tests
// ---------------------------------------------------------------------------

func TestSchemaCmd_OutputsValidJSON(t *testing.T) {
	cmd := newSchemaCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("schema command failed: %v", err)
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("schema output is not valid JSON: %v", err)
	}
	if parsed["title"] != "Weighted Code Coverage Report" {
		t.Errorf("title = %v", parsed["title"])
	}
}

func TestNewRegistry_SupportsLanguages(t *testing.T) {
	r := newRegistry()
	for _, path := range []string{"a.go", "b.rs", "c.py", "d.ts", "e.java", "f.cpp"} {
		if !r.Supports(path) {
			t.Errorf("registry should support %s", path)
		}
	}
	if r.Supports("README.md") {
		t.Error("registry should not support README.md")
	}
}

func TestCargoCmd_ResolvesCrate(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte("[package]\nname = \"demo\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "src", "lib.rs"), []byte("fn f() {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cov := filepath.Join(dir, "coveralls.json")
	covJSON := `{"source_files": [{"name": "src/lib.rs", "coverage": [1]}]}`
	if err := os.WriteFile(cov, []byte(covJSON), 0o600); err != nil {
		t.Fatal(err)
	}

	cmd := newCargoCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{dir, "--coverage", cov, "--json"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("cargo command failed: %v", err)
	}
	if !strings.Contains(stdout.String(), `"name": "src/lib.rs"`) {
		t.Errorf("expected src/lib.rs in output, got:\n%s", stdout.String())
	}
}

func TestWarnUnresolved_LogsGoProfileMisses(t *testing.T) {
	var buf bytes.Buffer
	l := charmlog.New(&buf)
	warnUnresolved(l, &coverage.GoProfile{Unresolved: []string{"example.com/other/b.go"}})
	got := buf.String()
	if !strings.Contains(got, "outside the module") {
		t.Errorf("log = %q, want unresolved warning", got)
	}
	if !strings.Contains(got, "example.com/other/b.go") {
		t.Errorf("log = %q, want unresolved file name", got)
	}
}

func TestWarnUnresolved_QuietWhenAllResolved(t *testing.T) {
	var buf bytes.Buffer
	l := charmlog.New(&buf)
	warnUnresolved(l, &coverage.GoProfile{})
	if buf.Len() != 0 {
		t.Errorf("log = %q, want empty", buf.String())
	}
}
