package vm

import (
	"github.com/risor-io/tape/ast"
	"github.com/risor-io/tape/token"
)

// Observer is an interface for observing Machine execution. Implementations
// can be used for profiling, tracing or step limits without modifying the
// Machine.
//
// Observer methods are called synchronously during execution.
// Implementations should be fast to avoid impacting performance.
type Observer interface {
	// OnStep is called before each instruction is executed. A Loop is
	// reported once each time it is reached, not on every repetition.
	// Returns false to halt execution immediately.
	OnStep(event StepEvent) bool
}

// MoveObserver is implemented by observers that also want the data pointer
// after each pointer move. StepEvent only carries the pointer before an
// instruction runs.
type MoveObserver interface {
	OnMove(pointer int)
}

// StepEvent contains information about a single instruction step.
type StepEvent struct {
	// Instruction is the instruction about to be executed.
	Instruction ast.Instruction

	// Position is the source location of the instruction.
	Position token.Position

	// Pointer is the data pointer before the instruction.
	Pointer int

	// Value is the current cell before the instruction.
	Value byte

	// Depth is the loop nesting depth of the instruction.
	Depth int
}

// NoOpObserver is an Observer that does nothing. Embed it to implement only
// some behavior.
type NoOpObserver struct{}

func (NoOpObserver) OnStep(StepEvent) bool { return true }

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(event StepEvent) bool

func (f ObserverFunc) OnStep(event StepEvent) bool { return f(event) }

// StepLimit returns an Observer that halts execution after n steps.
func StepLimit(n int64) Observer {
	var steps int64
	return ObserverFunc(func(StepEvent) bool {
		steps++
		return steps <= n
	})
}
