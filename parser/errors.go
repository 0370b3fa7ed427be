package parser

import (
	"fmt"

	"github.com/risor-io/tape/errors"
	"github.com/risor-io/tape/token"
)

// ErrorOpts is a struct that holds a variety of error data.
// All fields are optional, although Message is recommended.
type ErrorOpts struct {
	ErrType       string
	Code          errors.ErrorCode
	Message       string
	Offset        int
	File          string
	StartPosition token.Position
	EndPosition   token.Position
	SourceCode    string
	Hint          string
}

// NewParserError returns a new BaseParserError populated with
// the given error data.
func NewParserError(opts ErrorOpts) *BaseParserError {
	return &BaseParserError{
		errType:       opts.ErrType,
		code:          opts.Code,
		message:       opts.Message,
		offset:        opts.Offset,
		file:          opts.File,
		startPosition: opts.StartPosition,
		endPosition:   opts.EndPosition,
		sourceCode:    opts.SourceCode,
		hint:          opts.Hint,
	}
}

// ParserError is an interface that all parser errors implement.
type ParserError interface {
	Type() string
	Code() errors.ErrorCode
	Message() string
	Offset() int
	File() string
	StartPosition() token.Position
	EndPosition() token.Position
	SourceCode() string
	Error() string
	ToFormatted() *errors.FormattedError
	errors.FriendlyError
}

// BaseParserError is the simplest implementation of ParserError.
type BaseParserError struct {
	// Type of the error, e.g. "syntax error"
	errType string
	// Stable error code
	code errors.ErrorCode
	// The error message
	message string
	// Index of the offending token in the token sequence
	offset int
	// File where the error occurred
	file string
	// Start position of the error in the input
	startPosition token.Position
	// End position of the error in the input
	endPosition token.Position
	// Relevant line of source code text
	sourceCode string
	// Optional suggestion shown with the formatted error
	hint string
}

func (e *BaseParserError) Error() string {
	if e.errType != "" {
		return fmt.Sprintf("%s: %s", e.errType, e.message)
	}
	return e.message
}

func (e *BaseParserError) FriendlyErrorMessage() string {
	return errors.NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts the parser error to a FormattedError for display.
func (e *BaseParserError) ToFormatted() *errors.FormattedError {
	start := e.startPosition
	end := e.endPosition
	formatted := &errors.FormattedError{
		Code:      e.code,
		Kind:      e.errType,
		Message:   e.message,
		Filename:  e.file,
		Line:      start.LineNumber(),
		Column:    start.ColumnNumber(),
		EndColumn: end.ColumnNumber() - 1,
		Hint:      e.hint,
	}
	if e.sourceCode != "" {
		formatted.SourceLines = []errors.SourceLineEntry{
			{Number: start.LineNumber(), Text: e.sourceCode, IsMain: true},
		}
	}
	return formatted
}

func (e *BaseParserError) Type() string {
	return e.errType
}

func (e *BaseParserError) Code() errors.ErrorCode {
	return e.code
}

func (e *BaseParserError) Message() string {
	return e.message
}

// Offset returns the index of the offending token in the token sequence.
func (e *BaseParserError) Offset() int {
	return e.offset
}

func (e *BaseParserError) File() string {
	return e.file
}

func (e *BaseParserError) StartPosition() token.Position {
	return e.startPosition
}

func (e *BaseParserError) EndPosition() token.Position {
	return e.endPosition
}

func (e *BaseParserError) SourceCode() string {
	return e.sourceCode
}

// UnmatchedLoopEndError reports a "]" with no open loop.
type UnmatchedLoopEndError struct {
	*BaseParserError
}

// NewUnmatchedLoopEndError returns an UnmatchedLoopEndError for the token at
// the given offset.
func NewUnmatchedLoopEndError(opts ErrorOpts) *UnmatchedLoopEndError {
	opts.ErrType = "syntax error"
	opts.Code = errors.E1002
	opts.Message = fmt.Sprintf("unmatched loop end at offset %d", opts.Offset)
	opts.Hint = "remove the ']' or add a '[' before it"
	return &UnmatchedLoopEndError{BaseParserError: NewParserError(opts)}
}

// UnmatchedLoopBeginError reports a "[" that is never closed. The offset is
// that of the outermost unclosed loop.
type UnmatchedLoopBeginError struct {
	*BaseParserError
}

// NewUnmatchedLoopBeginError returns an UnmatchedLoopBeginError for the token
// at the given offset.
func NewUnmatchedLoopBeginError(opts ErrorOpts) *UnmatchedLoopBeginError {
	opts.ErrType = "syntax error"
	opts.Code = errors.E1003
	opts.Message = fmt.Sprintf("unmatched loop begin at offset %d", opts.Offset)
	opts.Hint = "add a matching ']'"
	return &UnmatchedLoopBeginError{BaseParserError: NewParserError(opts)}
}

// MaxDepthError reports loop nesting deeper than the configured limit.
type MaxDepthError struct {
	*BaseParserError
	Limit int
}

// NewMaxDepthError returns a MaxDepthError for the token at the given offset.
func NewMaxDepthError(opts ErrorOpts, limit int) *MaxDepthError {
	opts.ErrType = "parse error"
	opts.Code = errors.E1004
	opts.Message = fmt.Sprintf("loop at offset %d exceeds the maximum nesting depth of %d", opts.Offset, limit)
	return &MaxDepthError{BaseParserError: NewParserError(opts), Limit: limit}
}
