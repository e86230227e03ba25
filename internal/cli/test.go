package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/simkit/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden,omitempty"` // "match", "updated" or empty
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios>",
		Short: "Run scenario files against the simulation",
		Long: `Run YAML scenarios and check their assertions.

<scenarios> is a scenario file or a directory searched recursively. When a
golden file exists next to a scenario (golden/<name>.golden in the
scenario's directory), the run's canonical trace must match it byte for
byte. --update rewrites the golden files instead.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  simkit test ./scenarios
  simkit test ./scenarios --filter "stew*"
  simkit test ./scenarios --update
  simkit test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosPath string, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	files, err := harness.FindScenarios(scenariosPath, opts.Filter)
	if err != nil {
		var nf *harness.ScenarioNotFoundError
		if errors.As(err, &nf) {
			return NewExitError(ExitCommandError, fmt.Sprintf("scenarios not found: %s", scenariosPath))
		}
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	for _, file := range files {
		sr := runScenario(file, opts, cmd)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	text := func(w io.Writer) { outputTestText(w, result) }
	if result.Failed > 0 {
		msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
		if err := out.Failure(CodeTestFailed, msg, result, text); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return out.Result("", result, text)
}

// runScenario loads, runs and checks a single scenario file.
func runScenario(file string, opts *TestOptions, cmd *cobra.Command) ScenarioResult {
	sr := ScenarioResult{Name: filepath.Base(file), File: file}
	logger := discardLogger()
	if opts.Verbose {
		logger = newLogger(cmd.ErrOrStderr(), true)
	}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return sr
	}
	sr.Name = scenario.Name

	result, err := harness.Run(scenario, harness.WithLogger(logger))
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return sr
	}
	sr.Errors = result.Errors

	snapshot := harness.TraceSnapshot{ScenarioName: scenario.Name, Trace: result.Trace}
	data, err := snapshot.MarshalCanonical()
	if err != nil {
		sr.Errors = append(sr.Errors, fmt.Sprintf("failed to marshal trace: %v", err))
		return sr
	}

	goldenPath := goldenFilePath(file)
	switch {
	case opts.Update:
		if err := writeGolden(goldenPath, data); err != nil {
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to update golden file: %v", err))
			return sr
		}
		sr.Golden = "updated"
	default:
		want, err := os.ReadFile(goldenPath)
		switch {
		case os.IsNotExist(err):
			// No golden file: assertions only.
		case err != nil:
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to read golden file: %v", err))
		case !bytes.Equal(want, data):
			sr.Errors = append(sr.Errors, "trace does not match golden file (run with --update to regenerate)")
		default:
			sr.Golden = "match"
		}
	}

	sr.Pass = len(sr.Errors) == 0
	return sr
}

// goldenFilePath returns <dir>/golden/<name>.golden for <dir>/<name>.yaml.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func outputTestText(w io.Writer, result TestResult) {
	if result.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}

	for _, sr := range result.Scenarios {
		if sr.Pass {
			suffix := ""
			if sr.Golden == "updated" {
				suffix = " (golden updated)"
			}
			fmt.Fprintf(w, "✓ %s%s\n", sr.Name, suffix)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", sr.Name)
		for _, e := range sr.Errors {
			for _, line := range strings.Split(strings.TrimRight(e, "\n"), "\n") {
				fmt.Fprintf(w, "  %s\n", line)
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed == 0 {
		fmt.Fprintln(w, "✓ All scenarios passed")
	}
}
