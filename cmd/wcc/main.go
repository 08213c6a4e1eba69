package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/unbound-force/wcc/internal/cargo"
	"github.com/unbound-force/wcc/internal/config"
	"github.com/unbound-force/wcc/internal/coverage"
	"github.com/unbound-force/wcc/internal/discover"
	"github.com/unbound-force/wcc/internal/metrics"
	"github.com/unbound-force/wcc/internal/pipeline"
	"github.com/unbound-force/wcc/internal/report"
	"github.com/unbound-force/wcc/internal/structure"
	"github.com/unbound-force/wcc/internal/structure/golang"
	"github.com/unbound-force/wcc/internal/structure/treesitter"
)

// logger is the application-wide structured logger (writes to stderr).
var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
})

// Set by build flags.
var version = "dev"

func main() {
	var verbose bool
	root := &cobra.Command{
		Use:   "wcc",
		Short: "wcc - weighted code coverage",
		Long: `wcc combines a line coverage report with the cyclomatic and
cognitive complexity of every source file to compute Weighted Code
Coverage, CRAP and SKUNK scores, and flags files that are complex.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(charmlog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")

	root.AddCommand(newRunCmd())
	root.AddCommand(newCargoCmd())
	root.AddCommand(newSchemaCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// runParams holds the parsed flags for the run and cargo commands.
// Empty strings and nil pointers leave the configuration value alone.
type runParams struct {
	ctx context.Context

	// projectDir is the directory coverage file names are relative to.
	projectDir string

	// sourceDir is the directory scanned for sources. Empty means
	// projectDir.
	sourceDir string

	configPath      string
	coveragePath    string
	coverageFormat  string
	thresholds      string
	mode            string
	sort            string
	threads         int
	maxComplexFiles *int

	format      string
	htmlDir     string
	interactive bool

	stdout io.Writer
	stderr io.Writer
}

// runRun is the extracted, testable body of the run command.
func runRun(p runParams) error {
	if p.format != "text" && p.format != "json" && p.format != "csv" {
		return fmt.Errorf("invalid format %q: must be 'text', 'json', or 'csv'", p.format)
	}
	if p.ctx == nil {
		p.ctx = context.Background()
	}

	projectRoot, err := filepath.Abs(p.projectDir)
	if err != nil {
		return fmt.Errorf("resolving project directory: %w", err)
	}
	scanRoot := projectRoot
	if p.sourceDir != "" {
		if scanRoot, err = filepath.Abs(p.sourceDir); err != nil {
			return fmt.Errorf("resolving source directory: %w", err)
		}
	}

	cfg, err := loadConfig(p, projectRoot)
	if err != nil {
		return err
	}
	if cfg.Coverage.Path == "" {
		return fmt.Errorf("no coverage report given: use --coverage or set coverage.path in %s", config.FileName)
	}
	format, _ := coverage.ParseFormat(cfg.Coverage.Format)
	mode, _ := pipeline.ParseMode(cfg.Mode)
	sortKey, _ := metrics.ParseSortKey(cfg.Sort)
	thresholds := metrics.NewThresholds(cfg.Thresholds)

	registry := newRegistry()

	logger.Info("discovering sources", "dir", scanRoot, "languages", registry.Languages())
	files, err := discover.Scan(p.ctx, scanRoot, discover.Options{
		Config:   cfg,
		Supports: registry.Supports,
	})
	if err != nil {
		return fmt.Errorf("scanning %s: %w", scanRoot, err)
	}

	logger.Info("loading coverage", "format", format, "path", cfg.Coverage.Path)
	src, err := coverage.Open(format, cfg.Coverage.Path, projectRoot)
	if err != nil {
		return err
	}
	warnUnresolved(logger, src)

	out, err := pipeline.Run(p.ctx, pipeline.Options{
		Files:           files,
		ProjectRoot:     projectRoot,
		Parser:          registry,
		Coverage:        src,
		Thresholds:      thresholds,
		Mode:            mode,
		Sort:            sortKey,
		Threads:         cfg.Threads,
		SkipParseErrors: cfg.SkipParseErrors,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	rpt := report.New(projectRoot, mode, thresholds, out)

	if p.htmlDir != "" {
		if err := report.WriteHTML(p.htmlDir, rpt); err != nil {
			return err
		}
		logger.Info("wrote HTML report", "dir", p.htmlDir)
	}

	if p.interactive {
		if err := runInteractive(rpt); err != nil {
			return err
		}
	} else if err := writeReport(p.stdout, p.format, rpt); err != nil {
		return err
	}

	printCISummary(p.stderr, rpt, cfg.MaxComplexFiles)
	return checkCIThreshold(rpt, cfg.MaxComplexFiles)
}

// loadConfig reads the configuration file (--config, or .wcc.yaml in
// the project root) and applies the flag overrides.
func loadConfig(p runParams, projectRoot string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if p.configPath != "" {
		cfg, err = config.Load(p.configPath)
	} else {
		cfg, err = config.LoadProject(projectRoot)
	}
	if err != nil {
		return nil, err
	}

	if p.coveragePath != "" {
		cfg.Coverage.Path = p.coveragePath
	}
	if p.coverageFormat != "" {
		cfg.Coverage.Format = p.coverageFormat
	}
	if p.thresholds != "" {
		t, err := metrics.ParseUserThresholds(p.thresholds)
		if err != nil {
			return nil, err
		}
		cfg.Thresholds = t
	}
	if p.mode != "" {
		cfg.Mode = p.mode
	}
	if p.sort != "" {
		cfg.Sort = p.sort
	}
	if p.threads != 0 {
		cfg.Threads = p.threads
	}
	if p.maxComplexFiles != nil {
		cfg.MaxComplexFiles = *p.maxComplexFiles
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newRegistry returns a registry with every supported language.
// warnUnresolved reports Go profile entries that did not map to a file
// under the module, since their coverage is silently dropped otherwise.
func warnUnresolved(l *charmlog.Logger, src coverage.Source) {
	g, ok := src.(*coverage.GoProfile)
	if !ok || len(g.Unresolved) == 0 {
		return
	}
	l.Warn("coverage profile entries outside the module",
		"count", len(g.Unresolved), "files", g.Unresolved)
}

func newRegistry() *structure.Registry {
	r := structure.NewRegistry()
	r.Register(golang.NewProvider())
	for _, p := range treesitter.Providers() {
		r.Register(p)
	}
	return r
}

// writeReport outputs the report in the requested format.
func writeReport(w io.Writer, format string, rpt *report.Report) error {
	switch format {
	case "json":
		return report.WriteJSON(w, rpt)
	case "csv":
		return report.WriteCSV(w, rpt)
	default:
		return report.WriteText(w, rpt)
	}
}

// printCISummary prints a one-line CI summary to stderr when the
// complex file limit is set.
func printCISummary(w io.Writer, rpt *report.Report, maxComplexFiles int) {
	if maxComplexFiles < 0 {
		return
	}
	status := "PASS"
	n := len(rpt.ComplexFilesCyclomatic)
	if n > maxComplexFiles {
		status = "FAIL"
	}
	fmt.Fprintf(w, "Complex files: %d/%d (%s)\n", n, maxComplexFiles, status)
}

// checkCIThreshold returns an error if more files than allowed are
// complex in the cyclomatic dimension.
func checkCIThreshold(rpt *report.Report, maxComplexFiles int) error {
	if maxComplexFiles >= 0 && len(rpt.ComplexFilesCyclomatic) > maxComplexFiles {
		return fmt.Errorf("%d complex file(s) exceed maximum %d",
			len(rpt.ComplexFilesCyclomatic), maxComplexFiles)
	}
	return nil
}

// runFlags are the flags shared by run and cargo.
type runFlags struct {
	configPath      string
	coveragePath    string
	coverageFormat  string
	thresholds      string
	mode            string
	sort            string
	threads         int
	maxComplexFiles int
	format          string
	jsonOut         bool
	csvOut          bool
	htmlDir         string
	interactive     bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.coveragePath, "coverage", "c", "",
		"path to the coverage report")
	cmd.Flags().StringVar(&f.coverageFormat, "coverage-format", "",
		"coverage report format: coveralls, covdir, or go (default coveralls)")
	cmd.Flags().StringVarP(&f.thresholds, "thresholds", "t", "",
		`thresholds as "WCC,CYCLOMATIC,COGNITIVE" (default "60,10,10")`)
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "",
		"analysis mode: files or functions (default files)")
	cmd.Flags().StringVar(&f.sort, "sort", "",
		"sort key: wcc, crap, or skunk (default wcc)")
	cmd.Flags().IntVarP(&f.threads, "threads", "j", 0,
		"number of worker threads (default: CPUs - 1)")
	cmd.Flags().IntVar(&f.maxComplexFiles, "max-complex-files", -1,
		"fail if more files than this are complex (-1 = no limit)")
	cmd.Flags().StringVar(&f.configPath, "config", "",
		"path to the configuration file (default: <project>/"+config.FileName+")")
	cmd.Flags().StringVar(&f.format, "format", "text",
		"output format: text, json, or csv")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false,
		"shorthand for --format=json")
	cmd.Flags().BoolVar(&f.csvOut, "csv", false,
		"shorthand for --format=csv")
	cmd.Flags().StringVar(&f.htmlDir, "html", "",
		"also write an HTML report to this directory")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false,
		"launch interactive TUI for browsing results")
	cmd.MarkFlagsMutuallyExclusive("json", "csv")
}

// params converts the flags into runParams.
func (f *runFlags) params(cmd *cobra.Command, projectDir, sourceDir string) runParams {
	format := f.format
	switch {
	case f.jsonOut:
		format = "json"
	case f.csvOut:
		format = "csv"
	}
	p := runParams{
		ctx:            cmd.Context(),
		projectDir:     projectDir,
		sourceDir:      sourceDir,
		configPath:     f.configPath,
		coveragePath:   f.coveragePath,
		coverageFormat: f.coverageFormat,
		thresholds:     f.thresholds,
		mode:           f.mode,
		sort:           f.sort,
		threads:        f.threads,
		format:         format,
		htmlDir:        f.htmlDir,
		interactive:    f.interactive,
		stdout:         cmd.OutOrStdout(),
		stderr:         cmd.ErrOrStderr(),
	}
	if cmd.Flags().Changed("max-complex-files") {
		p.maxComplexFiles = &f.maxComplexFiles
	}
	return p
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [project-dir]",
		Short: "Compute weighted code coverage for a project",
		Long: `Scan a project for source files, match them against a coverage
report and print file (or function) level WCC, CRAP and SKUNK scores
together with the project totals.

Supported languages: Go, Rust, Python, JavaScript, TypeScript, Java,
C and C++.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runRun(flags.params(cmd, dir, ""))
		},
	}
	flags.register(cmd)
	return cmd
}

func newCargoCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "cargo [dir]",
		Short: "Compute weighted code coverage for a Rust crate",
		Long: `Locate the nearest Cargo.toml at or above dir, then analyze the
crate's src directory. Coverage file names are resolved against the
directory holding the package manifest.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			manifest, err := cargo.FindManifest(dir)
			if err != nil {
				return err
			}
			proj, err := cargo.Resolve(manifest)
			if err != nil {
				return err
			}
			logger.Info("analyzing crate", "name", proj.Name, "src", proj.SourceDir)
			return runRun(flags.params(cmd, proj.Dir, proj.SourceDir))
		},
	}
	flags.register(cmd)
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for wcc output",
		Long: `Print the JSON Schema (Draft 2020-12) that documents the
structure of wcc run --format=json output. Useful for validating
output or generating client types.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), report.Schema)
			return err
		},
	}
}
