package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/unbound-force/wcc/internal/coverage"
	"github.com/unbound-force/wcc/internal/metrics"
	"github.com/unbound-force/wcc/internal/structure"
)

const root = "/proj"

// fakeSource serves fixed line coverage keyed by absolute path.
type fakeSource struct {
	lines map[string]coverage.LineCoverage
	total *float64
}

func (f fakeSource) Lines(path string) (coverage.LineCoverage, bool) {
	lc, ok := f.lines[path]
	return lc, ok
}

func (f fakeSource) DisplayName(path, projectRoot string) (string, bool) {
	if _, ok := f.lines[path]; !ok {
		return "", false
	}
	rel, _ := filepath.Rel(projectRoot, path)
	return filepath.ToSlash(rel), true
}

func (f fakeSource) ProjectCoverage() (float64, bool) {
	if f.total == nil {
		return 0, false
	}
	return *f.total, true
}

// fakeParser returns a file unit with one function per path. The
// complexity grows with the path length so files differ.
type fakeParser struct {
	fail  map[string]error
	panic string
}

func (p fakeParser) Parse(path string) (*structure.Unit, error) {
	if err, ok := p.fail[path]; ok {
		return nil, err
	}
	if path == p.panic {
		panic("boom")
	}
	c := float64(len(filepath.Base(path)))
	return &structure.Unit{
		Kind: structure.KindFile, Name: path, StartLine: 1, EndLine: 10,
		Cyclomatic: c + 1, Cognitive: c,
		Children: []*structure.Unit{{
			Kind: structure.KindFunction, Name: "f", StartLine: 2, EndLine: 6,
			Cyclomatic: c, Cognitive: c,
		}},
	}, nil
}

func coveredLines(n int) coverage.LineCoverage {
	lc := make(coverage.LineCoverage, 10)
	for i := range lc {
		if i < n {
			lc[i] = 1
		}
	}
	return lc
}

func fixture(count int) ([]string, fakeSource) {
	src := fakeSource{lines: map[string]coverage.LineCoverage{}}
	var files []string
	for i := 0; i < count; i++ {
		path := filepath.Join(root, "src", fmt.Sprintf("file%02d.rs", i))
		files = append(files, path)
		src.lines[path] = coveredLines(i % 11)
	}
	return files, src
}

func baseOptions(files []string, src coverage.Source) Options {
	return Options{
		Files:       files,
		ProjectRoot: root,
		Parser:      fakeParser{},
		Coverage:    src,
		Thresholds:  metrics.DefaultThresholds(),
		Mode:        ModeFiles,
		Sort:        metrics.SortWCC,
		Threads:     4,
	}
}

func TestRun_MissingCoverageIgnored(t *testing.T) {
	files, src := fixture(3)
	missing := filepath.Join(root, "src", "orphan.rs")
	files = append(files, missing, missing)

	out, err := Run(context.Background(), baseOptions(files, src))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.IgnoredFiles) != 1 || out.IgnoredFiles[0] != "src/orphan.rs" {
		t.Errorf("IgnoredFiles = %v, want [src/orphan.rs]", out.IgnoredFiles)
	}
	if len(out.Files) != 3 {
		t.Errorf("got %d files, want 3", len(out.Files))
	}

	// The ignored file adds nothing to the project totals.
	without, err := Run(context.Background(), baseOptions(files[:3], src))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Project != without.Project {
		t.Errorf("project with ignored file = %+v, want %+v", out.Project, without.Project)
	}
}

func TestRun_DeterministicAcrossThreads(t *testing.T) {
	files, src := fixture(25)

	var first []byte
	for _, threads := range []int{1, 2, 3, 8} {
		opts := baseOptions(files, src)
		opts.Threads = threads
		opts.Mode = ModeFunctions
		out, err := Run(context.Background(), opts)
		if err != nil {
			t.Fatalf("Run(threads=%d): %v", threads, err)
		}
		data, err := json.Marshal(out)
		if err != nil {
			t.Fatal(err)
		}
		if first == nil {
			first = data
			continue
		}
		if string(data) != string(first) {
			t.Errorf("output with %d threads differs from the first run", threads)
		}
	}
}

func TestRun_SortedByKeyThenName(t *testing.T) {
	files, src := fixture(12)
	opts := baseOptions(files, src)
	opts.Sort = metrics.SortCRAP
	out, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i := 1; i < len(out.Files); i++ {
		prev, cur := out.Files[i-1], out.Files[i]
		pv, cv := prev.Metrics.Cyclomatic.CRAP, cur.Metrics.Cyclomatic.CRAP
		if pv < cv || (pv == cv && prev.Name > cur.Name) {
			t.Errorf("files %q (%v) and %q (%v) out of order", prev.Name, pv, cur.Name, cv)
		}
	}
}

func TestRun_FunctionsOnlyInFunctionsMode(t *testing.T) {
	files, src := fixture(2)
	out, err := Run(context.Background(), baseOptions(files, src))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, f := range out.Files {
		if f.Functions != nil {
			t.Errorf("%s has functions in files mode", f.Name)
		}
	}

	opts := baseOptions(files, src)
	opts.Mode = ModeFunctions
	out, err = Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, f := range out.Files {
		if len(f.Functions) != 1 || f.Functions[0].Name != "f (2, 6)" {
			t.Errorf("%s functions = %+v, want [f (2, 6)]", f.Name, f.Functions)
		}
	}
}

func TestRun_PrecomputedTotalVerbatim(t *testing.T) {
	files, src := fixture(4)
	total := 77.21
	src.total = &total
	out, err := Run(context.Background(), baseOptions(files, src))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Project.Total.Coverage != 77.2 {
		t.Errorf("total coverage = %v, want 77.2", out.Project.Total.Coverage)
	}
}

func TestRun_ParseErrorAbortsRun(t *testing.T) {
	files, src := fixture(10)
	parseErr := &structure.ParseError{Path: files[4], Err: structure.ErrExtractionFailed}
	opts := baseOptions(files, src)
	opts.Parser = fakeParser{fail: map[string]error{files[4]: parseErr}}

	out, err := Run(context.Background(), opts)
	if !errors.Is(err, structure.ErrExtractionFailed) {
		t.Fatalf("error = %v, want ErrExtractionFailed", err)
	}
	if out != nil {
		t.Error("no output may be returned on failure")
	}
}

func TestRun_SkipParseErrors(t *testing.T) {
	files, src := fixture(5)
	opts := baseOptions(files, src)
	opts.Parser = fakeParser{fail: map[string]error{
		files[1]: &structure.ParseError{Path: files[1], Err: structure.ErrUnknownLanguage},
	}}
	opts.SkipParseErrors = true

	out, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Files) != 4 {
		t.Errorf("got %d files, want 4", len(out.Files))
	}
	if len(out.IgnoredFiles) != 1 || out.IgnoredFiles[0] != "src/file01.rs" {
		t.Errorf("IgnoredFiles = %v, want [src/file01.rs]", out.IgnoredFiles)
	}
}

func TestRun_ConsumerPanicIsConcurrencyError(t *testing.T) {
	files, src := fixture(6)
	opts := baseOptions(files, src)
	opts.Parser = fakeParser{panic: files[2]}

	_, err := Run(context.Background(), opts)
	if !errors.Is(err, ErrConcurrency) {
		t.Errorf("error = %v, want ErrConcurrency", err)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	files, src := fixture(50)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, baseOptions(files, src))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestRun_EmptyFileSet(t *testing.T) {
	out, err := Run(context.Background(), baseOptions(nil, fakeSource{}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Files) != 0 || len(out.IgnoredFiles) != 0 {
		t.Errorf("output = %+v, want empty", out)
	}
	if out.Project != (metrics.ProjectMetrics{}) {
		t.Errorf("project = %+v, want zero rows", out.Project)
	}
}

func TestRun_MissingCollaborators(t *testing.T) {
	if _, err := Run(context.Background(), Options{}); err == nil {
		t.Error("expected an error without parser and coverage source")
	}
}

func TestNormalizeThreads(t *testing.T) {
	def := DefaultThreads()
	if def < 1 {
		t.Fatalf("DefaultThreads() = %d, want >= 1", def)
	}
	if got := NormalizeThreads(0); got != def {
		t.Errorf("NormalizeThreads(0) = %d, want %d", got, def)
	}
	if got := NormalizeThreads(def + 100); got != def {
		t.Errorf("NormalizeThreads(%d) = %d, want %d", def+100, got, def)
	}
	if got := NormalizeThreads(1); got != 1 {
		t.Errorf("NormalizeThreads(1) = %d, want 1", got)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("Functions"); err != nil || m != ModeFunctions {
		t.Errorf("ParseMode(Functions) = %q, %v", m, err)
	}
	if _, err := ParseMode("lines"); err == nil {
		t.Error("ParseMode(lines) should fail")
	}
}
