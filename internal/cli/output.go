package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gookit/color"

	"github.com/roach88/col/internal/merge"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Merge validation failure (line count, malformed line, timestamp mismatch)
	ExitCommandError = 2 // Command error (bad flags, unreadable input, write failure, etc.)
)

// ErrCodeCommand is the JSON error code for failures that are not merge errors.
const ErrCodeCommand = "COMMAND_ERROR"

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
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
// Merge validation errors map to ExitFailure; anything else that is not an
// ExitError (cobra argument errors, I/O failures) is a command error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var mergeErr *merge.Error
	if errors.As(err, &mergeErr) && mergeErr.IsValidation() {
		return ExitFailure
	}
	return ExitCommandError
}

// OutputFormatter handles JSON vs text diagnostics for CLI commands.
// Merged records never go through it; they are written straight to stdout.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Color   bool
	Verbose bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // merge error code or COMMAND_ERROR
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	label := "Error"
	if f.Color {
		label = color.FgLightRed.Render(label)
	}
	fmt.Fprintf(f.Writer, "%s: %s\n", label, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// ReportError writes err once in the configured format.
func (f *OutputFormatter) ReportError(err error) error {
	var mergeErr *merge.Error
	if errors.As(err, &mergeErr) {
		return f.Error(string(mergeErr.Code), err.Error(), mergeErrorDetails(mergeErr))
	}
	return f.Error(ErrCodeCommand, err.Error(), nil)
}

func mergeErrorDetails(e *merge.Error) map[string]any {
	d := map[string]any{}
	if e.Path != "" {
		d["path"] = e.Path
	}
	if e.Step > 0 {
		d["line"] = e.Step
	}
	if e.Code == merge.ErrCodeMalformedLine {
		d["text"] = e.Line
	}
	if len(d) == 0 {
		return nil
	}
	return d
}
