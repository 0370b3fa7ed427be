package vm

import (
	"github.com/risor-io/tape/ast"
)

// Stats is an Observer that counts executed instructions.
type Stats struct {
	// Ops counts executed commands per op.
	Ops map[ast.Op]int64

	// Loops counts how many times a loop instruction was reached.
	Loops int64

	// MaxDepth is the deepest loop nesting that was executed.
	MaxDepth int

	// MaxPointer is the highest cell the data pointer visited.
	MaxPointer int
}

var _ MoveObserver = (*Stats)(nil)

// NewStats returns an empty Stats observer.
func NewStats() *Stats {
	return &Stats{Ops: map[ast.Op]int64{}}
}

func (s *Stats) OnStep(event StepEvent) bool {
	switch n := event.Instruction.(type) {
	case *ast.Command:
		s.Ops[n.Op]++
	case *ast.Loop:
		s.Loops++
	}
	if event.Depth > s.MaxDepth {
		s.MaxDepth = event.Depth
	}
	if event.Pointer > s.MaxPointer {
		s.MaxPointer = event.Pointer
	}
	return true
}

// Total returns the number of steps observed.
func (s *Stats) Total() int64 {
	total := s.Loops
	for _, n := range s.Ops {
		total += n
	}
	return total
}

// OnMove records where the pointer landed, so a final move is counted.
func (s *Stats) OnMove(pointer int) {
	if pointer > s.MaxPointer {
		s.MaxPointer = pointer
	}
}
