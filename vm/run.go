package vm

import (
	"context"

	"github.com/risor-io/tape/ast"
)

// Run the given program on a new Machine and return the Machine, so that the
// caller can inspect the tape. The Machine is returned even when execution
// fails.
func Run(ctx context.Context, program *ast.Program, options ...Option) (*Machine, error) {
	machine := New(options...)
	err := machine.Run(ctx, program)
	return machine, err
}
