package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Scenario failed, replay diverged, simulation error
	ExitCommandError = 2 // Bad flags, unreadable config, database errors
)

// Error codes used in JSON error responses.
const (
	CodeConfig       = "E_CONFIG"
	CodeStore        = "E_STORE"
	CodeSimulation   = "E_SIMULATION"
	CodeRunNotFound  = "E_RUN_NOT_FOUND"
	CodeDiverged     = "E_REPLAY_DIVERGED"
	CodeTestFailed   = "E_TEST_FAILED"
	CodeMetricsServe = "E_METRICS"
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int    // Exit code (ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure for any other error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as text or JSON.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; defaults to Writer
	Verbose   bool
}

// CLIResponse is the envelope of every JSON result.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
	RunID  string    `json:"run_id,omitempty"`
}

// CLIError is the error part of a JSON response.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// IsJSON reports whether results should be JSON.
func (f *OutputFormatter) IsJSON() bool { return f.Format == "json" }

// Success writes data. Text mode prints it with fmt.
func (f *OutputFormatter) Success(data any) error {
	if f.IsJSON() {
		return f.writeJSON(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Result writes data as JSON, or calls text to render it.
func (f *OutputFormatter) Result(runID string, data any, text func(w io.Writer)) error {
	if f.IsJSON() {
		return f.writeJSON(CLIResponse{Status: "ok", Data: data, RunID: runID})
	}
	text(f.Writer)
	return nil
}

// Failure writes data together with an error in JSON mode. Text mode
// renders data with text and leaves the error to the exit path.
func (f *OutputFormatter) Failure(code, message string, data any, text func(w io.Writer)) error {
	if f.IsJSON() {
		return f.writeJSON(CLIResponse{
			Status: "error",
			Data:   data,
			Error:  &CLIError{Code: code, Message: message},
		})
	}
	text(f.Writer)
	return nil
}

// Error writes an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.IsJSON() {
		return f.writeJSON(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog writes a diagnostic line when verbose mode is on.
// In JSON mode it goes to ErrWriter so the JSON stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func (f *OutputFormatter) writeJSON(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
