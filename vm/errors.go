package vm

import (
	"fmt"

	"github.com/risor-io/tape/errors"
	"github.com/risor-io/tape/token"
)

func runtimeFormatted(code errors.ErrorCode, message string, pos token.Position, source []byte) *errors.FormattedError {
	formatted := &errors.FormattedError{
		Code:     code,
		Kind:     "runtime error",
		Message:  message,
		Filename: pos.File,
	}
	if !pos.IsValid() && source == nil {
		return formatted
	}
	formatted.Line = pos.LineNumber()
	formatted.Column = pos.ColumnNumber()
	if text := errors.LineText(source, pos); text != "" {
		formatted.SourceLines = []errors.SourceLineEntry{
			{Number: pos.LineNumber(), Text: text, IsMain: true},
		}
	}
	return formatted
}

// InputExhaustedError is returned when a read finds the input stream at its
// end and the EOF policy is EOFAbort. It is fatal.
type InputExhaustedError struct {
	Position token.Position
	Pointer  int
	Source   []byte
}

func (e *InputExhaustedError) Error() string {
	return fmt.Sprintf("input exhausted: read at offset %d (cell %d)", e.Position.Char, e.Pointer)
}

func (e *InputExhaustedError) Is(target error) bool {
	return target == ErrInputExhausted
}

func (e *InputExhaustedError) IsFatal() bool {
	return true
}

func (e *InputExhaustedError) ToFormatted() *errors.FormattedError {
	formatted := runtimeFormatted(errors.E3001, "input exhausted", e.Position, e.Source)
	formatted.Note = fmt.Sprintf("the read tried to fill cell %d after the end of input", e.Pointer)
	return formatted
}

// InputError wraps a failure of the input stream other than end of input.
type InputError struct {
	Err      error
	Position token.Position
	Pointer  int
	Source   []byte
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input failure: read at offset %d: %v", e.Position.Char, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func (e *InputError) IsFatal() bool {
	return true
}

func (e *InputError) ToFormatted() *errors.FormattedError {
	return runtimeFormatted(errors.E3003, fmt.Sprintf("input failure: %v", e.Err), e.Position, e.Source)
}

// OutputError records a failed write. It is not fatal: execution continues
// as if the byte had been written.
type OutputError struct {
	Err      error
	Position token.Position
	Pointer  int
	Value    byte
	Source   []byte
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("output failure: write at offset %d: %v", e.Position.Char, e.Err)
}

func (e *OutputError) Unwrap() error {
	return e.Err
}

func (e *OutputError) IsFatal() bool {
	return false
}

func (e *OutputError) ToFormatted() *errors.FormattedError {
	return runtimeFormatted(errors.E3002, fmt.Sprintf("output failure: %v", e.Err), e.Position, e.Source)
}

// HaltedError is returned when an observer or a cancelled context stopped
// execution. Cause holds the context error, if any.
type HaltedError struct {
	Cause    error
	Position token.Position
	Pointer  int
	Source   []byte
}

func (e *HaltedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("execution halted: %v", e.Cause)
	}
	return fmt.Sprintf("execution halted by observer at offset %d", e.Position.Char)
}

func (e *HaltedError) Is(target error) bool {
	return target == ErrHalted
}

func (e *HaltedError) Unwrap() error {
	return e.Cause
}

func (e *HaltedError) IsFatal() bool {
	return true
}

func (e *HaltedError) ToFormatted() *errors.FormattedError {
	return runtimeFormatted(errors.E3004, e.Error(), e.Position, e.Source)
}
