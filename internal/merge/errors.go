package merge

import (
	"errors"
	"fmt"
	"io"
)

// ErrorCode categorizes merge failures.
type ErrorCode string

const (
	// ErrCodeOpen indicates an input file could not be opened for reading.
	ErrCodeOpen ErrorCode = "IO_OPEN"

	// ErrCodeRead indicates an I/O error while reading a line.
	ErrCodeRead ErrorCode = "IO_READ"

	// ErrCodeWrite indicates the sink rejected a record.
	ErrCodeWrite ErrorCode = "IO_WRITE"

	// ErrCodeLineCount indicates the inputs ran out of lines at different steps.
	ErrCodeLineCount ErrorCode = "LINE_COUNT_MISMATCH"

	// ErrCodeMalformedLine indicates a line has no timestamp token.
	ErrCodeMalformedLine ErrorCode = "MALFORMED_LINE"

	// ErrCodeTimestamp indicates the timestamps of one step disagree.
	ErrCodeTimestamp ErrorCode = "TIMESTAMP_MISMATCH"
)

// Error is returned for every failure of a merge. All of them are terminal.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the input file involved, if any.
	Path string

	// Step is the 1-based line position at which the merge failed.
	// Zero when the failure happened before the first step.
	Step int

	// Line is the offending raw line (MALFORMED_LINE only).
	Line string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Path != "" {
		msg += fmt.Sprintf(" (file=%s", e.Path)
		if e.Step > 0 {
			msg += fmt.Sprintf(", line=%d", e.Step)
		}
		msg += ")"
	} else if e.Step > 0 {
		msg += fmt.Sprintf(" (line=%d)", e.Step)
	}
	if e.Err != nil && e.Code != ErrCodeLineCount {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsValidation reports whether the error means the inputs do not line up,
// as opposed to an I/O failure.
func (e *Error) IsValidation() bool {
	switch e.Code {
	case ErrCodeLineCount, ErrCodeMalformedLine, ErrCodeTimestamp:
		return true
	}
	return false
}

func hasCode(err error, codes ...ErrorCode) bool {
	var me *Error
	if !errors.As(err, &me) {
		return false
	}
	for _, c := range codes {
		if me.Code == c {
			return true
		}
	}
	return false
}

// IsLineCountMismatch returns true if the inputs had different numbers of lines.
func IsLineCountMismatch(err error) bool {
	return hasCode(err, ErrCodeLineCount)
}

// IsMalformedLine returns true if a line had no timestamp token.
func IsMalformedLine(err error) bool {
	return hasCode(err, ErrCodeMalformedLine)
}

// IsTimestampMismatch returns true if timestamps disagreed across inputs.
func IsTimestampMismatch(err error) bool {
	return hasCode(err, ErrCodeTimestamp)
}

// IsIOError returns true for open, read and write failures.
func IsIOError(err error) bool {
	return hasCode(err, ErrCodeOpen, ErrCodeRead, ErrCodeWrite)
}

func newOpenError(path string, err error) *Error {
	return &Error{
		Code:    ErrCodeOpen,
		Message: "cannot open file",
		Path:    path,
		Err:     err,
	}
}

func newReadError(path string, step int, err error) *Error {
	return &Error{
		Code:    ErrCodeRead,
		Message: "cannot read line",
		Path:    path,
		Step:    step,
		Err:     err,
	}
}

func newWriteError(step int, err error) *Error {
	return &Error{
		Code:    ErrCodeWrite,
		Message: "cannot write merged record",
		Step:    step,
		Err:     err,
	}
}

func newLineCountError(path string, step int) *Error {
	return &Error{
		Code:    ErrCodeLineCount,
		Message: "files have different number of lines",
		Path:    path,
		Step:    step,
		Err:     io.ErrUnexpectedEOF,
	}
}

func newMalformedLineError(path string, step int, line string) *Error {
	return &Error{
		Code:    ErrCodeMalformedLine,
		Message: fmt.Sprintf("line is empty or malformed: %q", line),
		Path:    path,
		Step:    step,
		Line:    line,
	}
}

func newTimestampError(path string, step int, want, got string) *Error {
	return &Error{
		Code:    ErrCodeTimestamp,
		Message: fmt.Sprintf("timestamps do not match across files: %q != %q", got, want),
		Path:    path,
		Step:    step,
	}
}
