package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"borrowck/internal/diag"
	"borrowck/internal/diagfmt"
	"borrowck/internal/driver"
	"borrowck/internal/ownership"
	"borrowck/internal/project"
	"borrowck/internal/ui"
	"borrowck/internal/version"
)

var (
	checkFormat   string
	checkJobs     int
	checkCache    bool
	checkProgress bool
	checkNotes    bool
)

func init() {
	checkCmd.Flags().StringVar(&checkFormat, "format", "", "output format (pretty|json|sarif|short); defaults from borrowck.toml")
	checkCmd.Flags().IntVar(&checkJobs, "jobs", 0, "parallel workers for directory runs (0 = GOMAXPROCS)")
	checkCmd.Flags().BoolVar(&checkCache, "cache", false, "reuse cached verdicts for unchanged inputs")
	checkCmd.Flags().BoolVar(&checkProgress, "progress", false, "render interactive progress (directories, terminal only)")
	checkCmd.Flags().BoolVar(&checkNotes, "notes", true, "show secondary notes in pretty output")
}

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Verify ownership and borrows in IR documents",
	Long: `Check decodes one *.mir.json document (or every document below a directory),
validates its structure and verifies move and borrow discipline per function.
Exit status is 0 when clean, 1 when violations are found, 2 on hard errors.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}

	manifest, _, err := project.LoadFrom(startDirFor(target))
	if err != nil {
		return err
	}
	cfg := manifest.Config

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("color") {
		colorMode = cfg.Output.Color
	}
	useColor, err := resolveColor(colorMode)
	if err != nil {
		return err
	}
	color.NoColor = !useColor

	format := cfg.Output.Format
	if cmd.Flags().Changed("format") {
		format = checkFormat
	}
	switch format {
	case "pretty", "json", "sarif", "short":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, json, sarif or short)", format)
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	timings, _ := cmd.Flags().GetBool("timings")

	analysis := ownership.Options{
		MaxIterations:  cfg.Analysis.MaxIterations,
		MaxDiagnostics: cfg.Analysis.MaxDiagnostics,
	}
	if v, _ := cmd.Flags().GetInt("max-iterations"); v > 0 {
		analysis.MaxIterations = v
	}
	if v, _ := cmd.Flags().GetInt("max-diagnostics"); v > 0 {
		analysis.MaxDiagnostics = v
	}

	opts := driver.Options{
		Analysis: analysis,
		Jobs:     checkJobs,
	}
	if checkCache {
		cache, err := driver.OpenDiskCache("borrowck")
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		opts.Cache = cache
	}

	results, err := runVerification(cmd, target, opts, quiet)
	if err != nil {
		return err
	}

	merged := diag.NewBag(analysis.MaxDiagnostics)
	hadErrors := false
	for i := range results {
		merged.Merge(results[i].Bag)
		hadErrors = hadErrors || !results[i].Clean
	}
	merged.Sort()

	out := cmd.OutOrStdout()
	switch format {
	case "pretty":
		diagfmt.Pretty(out, merged, diagfmt.PrettyOpts{Color: useColor, ShowNotes: checkNotes})
	case "json":
		if err := diagfmt.JSON(out, merged, diagfmt.JSONOpts{IncludeNotes: checkNotes, Indent: true}); err != nil {
			return err
		}
	case "sarif":
		meta := diagfmt.SarifRunMeta{
			ToolName:       "borrowck",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args,
		}
		if err := diagfmt.Sarif(out, merged, meta); err != nil {
			return err
		}
	case "short":
		if rendered := diagfmt.Short(merged.Items()); rendered != "" {
			fmt.Fprintln(out, rendered)
		}
	}

	if timings && !quiet {
		printTimings(cmd, results)
	}
	if !quiet && format == "pretty" {
		printSummary(cmd, results, merged)
	}

	if hadErrors {
		return errFindings
	}
	return nil
}

// runVerification drives the analysis, optionally behind an interactive
// progress display for directory runs.
func runVerification(cmd *cobra.Command, target string, opts driver.Options, quiet bool) ([]driver.FileResult, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}

	showProgress := checkProgress && !quiet && info.IsDir() && isTerminal(os.Stderr)
	if !showProgress {
		return driver.VerifyPath(cmd.Context(), target, opts)
	}

	files, err := driver.ListIRFiles(target)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	events := make(chan driver.Event, 64)
	opts.Sink = driver.ChannelSink{Ch: events}

	program := tea.NewProgram(
		ui.NewProgressModel("verifying "+target, files, events),
		tea.WithOutput(os.Stderr),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Rendering errors must not affect the verdict.
		_, _ = program.Run()
	}()

	results, err := driver.VerifyDir(cmd.Context(), target, opts)
	close(events)
	wg.Wait()
	return results, err
}

func printTimings(cmd *cobra.Command, results []driver.FileResult) {
	errOut := cmd.ErrOrStderr()
	for i := range results {
		fmt.Fprintf(errOut, "%s:\n", results[i].Path)
		for _, phase := range results[i].Timing.Phases {
			fmt.Fprintf(errOut, "  %-20s %7.2f ms", phase.Name, phase.DurationMS)
			if phase.Note != "" {
				fmt.Fprintf(errOut, "  // %s", phase.Note)
			}
			fmt.Fprintln(errOut)
		}
	}
}

func printSummary(cmd *cobra.Command, results []driver.FileResult, merged *diag.Bag) {
	files, fns, cached := len(results), 0, 0
	for i := range results {
		fns += len(results[i].Fns)
		if results[i].Cached {
			cached++
		}
	}
	summary := fmt.Sprintf("checked %d functions in %d files", fns, files)
	if cached > 0 {
		summary += fmt.Sprintf(" (%d cached)", cached)
	}
	if merged.HasErrors() {
		summary += ": errors found"
	} else if merged.HasWarnings() {
		summary += ": warnings only"
	} else {
		summary += ": clean"
	}
	fmt.Fprintln(cmd.ErrOrStderr(), summary)
}

func startDirFor(target string) string {
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return target
	}
	return filepath.Dir(target)
}

func resolveColor(mode string) (bool, error) {
	switch strings.ToLower(mode) {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		return isTerminal(os.Stdout), nil
	}
	return false, fmt.Errorf("unsupported color mode %q (must be auto, always or never)", mode)
}
