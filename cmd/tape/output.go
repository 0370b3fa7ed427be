package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	tapeerrors "github.com/risor-io/tape/errors"
)

// reportedError marks an error whose diagnostics were already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// formatted converts err into diagnostics. A *multierror.Error yields one
// diagnostic per wrapped error.
func formatted(err error) []*tapeerrors.FormattedError {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		var result []*tapeerrors.FormattedError
		for _, e := range merr.Errors {
			result = append(result, formatted(e)...)
		}
		return result
	}
	var fe tapeerrors.FormattableError
	if errors.As(err, &fe) {
		return []*tapeerrors.FormattedError{fe.ToFormatted()}
	}
	return []*tapeerrors.FormattedError{{Kind: "error", Message: err.Error()}}
}

// report prints err as formatted diagnostics and returns it marked as
// reported.
func report(w io.Writer, err error, colored bool) error {
	formatter := tapeerrors.NewFormatter(colored)
	fmt.Fprint(w, formatter.FormatMultiple(formatted(err)))
	return &reportedError{err: err}
}
