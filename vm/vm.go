// Package vm provides a Machine that executes a parsed program against a
// fixed-size tape of byte cells.
package vm

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/risor-io/tape/ast"
	"github.com/risor-io/tape/token"
)

const (
	// TapeSize is the number of cells on the tape.
	TapeSize = 30000

	// DefaultContextCheckInterval is the number of steps between
	// deterministic checks of ctx.Done(). Set to 0 to disable.
	DefaultContextCheckInterval = 1000

	// MaxOutputErrors is the number of output failures kept by a Machine.
	// Later failures are only counted.
	MaxOutputErrors = 16
)

// PointerWrap selects the modulus applied to data pointer movement.
type PointerWrap int

const (
	// WrapByte keeps the data pointer within 0-255, like an unsigned 8-bit
	// integer. Cells beyond 255 are unreachable.
	WrapByte PointerWrap = iota
	// WrapTape wraps the data pointer modulo TapeSize.
	WrapTape
)

// String returns the name of the wrap mode.
func (w PointerWrap) String() string {
	switch w {
	case WrapByte:
		return "byte"
	case WrapTape:
		return "tape"
	}
	return "unknown"
}

// EOFPolicy decides what a read does once the input is exhausted.
type EOFPolicy int

const (
	// EOFAbort stops execution with an *InputExhaustedError.
	EOFAbort EOFPolicy = iota
	// EOFZero stores 0 in the current cell.
	EOFZero
	// EOFUnchanged leaves the current cell as it is.
	EOFUnchanged
)

// String returns the name of the policy.
func (p EOFPolicy) String() string {
	switch p {
	case EOFAbort:
		return "abort"
	case EOFZero:
		return "zero"
	case EOFUnchanged:
		return "unchanged"
	}
	return "unknown"
}

var (
	// ErrInputExhausted is matched by errors.Is for reads past the end of input.
	ErrInputExhausted = errors.New("input exhausted")

	// ErrHalted is matched by errors.Is when an observer or the context
	// stopped execution.
	ErrHalted = errors.New("execution halted")
)

// Machine holds the tape, the data pointer and the injected streams. A
// Machine is not safe for concurrent use; run separate Machines instead.
type Machine struct {
	tape    [TapeSize]byte
	pointer int
	wrap    PointerWrap
	eof     EOFPolicy

	input  io.Reader
	output io.Writer
	source []byte

	observer Observer
	logger   zerolog.Logger
	// failureLogger is logger sampled so that a sink that keeps failing
	// cannot flood the log.
	failureLogger zerolog.Logger

	// contextCheckInterval is the number of steps between deterministic
	// checks of ctx.Done(). A value of 0 disables checking.
	contextCheckInterval int

	outputErrors   *multierror.Error
	outputFailures int64
	executed     int64
	buf          [1]byte
}

// New creates a new Machine with a zeroed tape and the pointer at cell 0.
// Without WithInput every read sees end of input; without WithOutput
// written bytes are discarded.
func New(options ...Option) *Machine {
	m := &Machine{
		input:                strings.NewReader(""),
		output:               io.Discard,
		logger:               zerolog.Nop(),
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range options {
		opt(m)
	}
	m.failureLogger = m.logger.Sample(&zerolog.BurstSampler{
		Burst:  MaxOutputErrors,
		Period: time.Minute,
	})
	return m
}

// Tape returns the memory tape. The slice aliases the Machine's cells.
func (m *Machine) Tape() []byte {
	return m.tape[:]
}

// Cell returns the value of cell i.
func (m *Machine) Cell(i int) byte {
	return m.tape[i]
}

// SetCell stores v in cell i.
func (m *Machine) SetCell(i int, v byte) {
	m.tape[i] = v
}

// Pointer returns the data pointer.
func (m *Machine) Pointer() int {
	return m.pointer
}

// SetPointer moves the data pointer to p, wrapped by the Machine's mode.
func (m *Machine) SetPointer(p int) {
	m.pointer = m.wrapPointer(p)
}

// Executed returns the number of instructions executed since the last Reset.
func (m *Machine) Executed() int64 {
	return m.executed
}

// OutputErrors returns the first MaxOutputErrors write failures recorded
// since the last Reset, as a *multierror.Error, or nil if every byte was
// written. OutputFailures has the full count.
func (m *Machine) OutputErrors() error {
	return m.outputErrors.ErrorOrNil()
}

// OutputFailures returns the number of write failures since the last Reset.
func (m *Machine) OutputFailures() int64 {
	return m.outputFailures
}

// Reset zeroes the tape and moves the pointer back to cell 0.
func (m *Machine) Reset() {
	m.tape = [TapeSize]byte{}
	m.pointer = 0
	m.outputErrors = nil
	m.outputFailures = 0
	m.executed = 0
}

// frame is one instruction sequence being executed. Loop frames repeat
// while the current cell is non-zero.
type frame struct {
	loop *ast.Loop
	body []ast.Instruction
	ip   int
}

// Run executes the program. The tape and pointer carry over from any
// previous run; call Reset to start fresh. On error the tape is left as it
// was after the last successful instruction.
func (m *Machine) Run(ctx context.Context, program *ast.Program) error {
	start := time.Now()
	if e := m.logger.Debug(); e.Enabled() {
		e.Int("instructions", ast.Count(program)).
			Int("pointer", m.pointer).
			Msg("run started")
	}

	err := m.eval(ctx, program.Instructions)
	m.flush()

	if m.outputFailures > MaxOutputErrors {
		m.logger.Warn().
			Int64("failures", m.outputFailures).
			Int("kept", MaxOutputErrors).
			Msg("output failures truncated")
	}

	m.logger.Debug().
		Err(err).
		Int64("executed", m.executed).
		Dur("elapsed", time.Since(start)).
		Msg("run finished")
	return err
}

func (m *Machine) eval(ctx context.Context, instructions []ast.Instruction) error {
	var steps int
	checkInterval := m.contextCheckInterval
	doneChan := ctx.Done()

	mover, _ := m.observer.(MoveObserver)

	stack := []frame{{body: instructions}}
	for len(stack) > 0 {
		// Deterministic check of ctx.Done() every N steps. Loop repetitions
		// count as steps so that "[]" on a non-zero cell stays cancellable.
		if checkInterval > 0 && doneChan != nil {
			steps++
			if steps >= checkInterval {
				steps = 0
				select {
				case <-doneChan:
					return &HaltedError{Cause: ctx.Err(), Pointer: m.pointer}
				default:
				}
			}
		}

		top := &stack[len(stack)-1]
		if top.ip >= len(top.body) {
			if top.loop != nil && m.tape[m.pointer] != 0 {
				top.ip = 0
				continue
			}
			stack = stack[:len(stack)-1]
			continue
		}
		instr := top.body[top.ip]
		top.ip++

		if m.observer != nil {
			event := StepEvent{
				Instruction: instr,
				Position:    instr.Pos(),
				Pointer:     m.pointer,
				Value:       m.tape[m.pointer],
				Depth:       len(stack) - 1,
			}
			if !m.observer.OnStep(event) {
				return &HaltedError{Position: instr.Pos(), Pointer: m.pointer, Source: m.source}
			}
		}

		m.executed++
		switch n := instr.(type) {
		case *ast.Command:
			if err := m.exec(n); err != nil {
				return err
			}
			if mover != nil && (n.Op == ast.IncrementPointer || n.Op == ast.DecrementPointer) {
				mover.OnMove(m.pointer)
			}
		case *ast.Loop:
			if m.tape[m.pointer] != 0 {
				stack = append(stack, frame{loop: n, body: n.Body})
			}
		}
	}
	return nil
}

func (m *Machine) exec(cmd *ast.Command) error {
	switch cmd.Op {
	case ast.IncrementPointer:
		m.pointer = m.wrapPointer(m.pointer + 1)
	case ast.DecrementPointer:
		m.pointer = m.wrapPointer(m.pointer - 1)
	case ast.IncrementValue:
		m.tape[m.pointer]++
	case ast.DecrementValue:
		m.tape[m.pointer]--
	case ast.Write:
		m.write(cmd.OpPos)
	case ast.Read:
		return m.read(cmd.OpPos)
	}
	return nil
}

// write emits the current cell. Failures are recorded and logged but never
// stop execution.
func (m *Machine) write(pos token.Position) {
	m.buf[0] = m.tape[m.pointer]
	if _, err := m.output.Write(m.buf[:]); err != nil {
		m.recordOutputError(&OutputError{
			Err:      err,
			Position: pos,
			Pointer:  m.pointer,
			Value:    m.buf[0],
			Source:   m.source,
		})
	}
}

// read blocks until one byte is available and stores it in the current cell.
func (m *Machine) read(pos token.Position) error {
	// Anything written so far must be visible before waiting for input.
	m.flush()

	_, err := io.ReadFull(m.input, m.buf[:])
	switch {
	case err == nil:
		m.tape[m.pointer] = m.buf[0]
		return nil
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		m.logger.Debug().
			Int("offset", pos.Char).
			Int("pointer", m.pointer).
			Str("policy", m.eof.String()).
			Msg("input exhausted")
		switch m.eof {
		case EOFZero:
			m.tape[m.pointer] = 0
			return nil
		case EOFUnchanged:
			return nil
		}
		return &InputExhaustedError{Position: pos, Pointer: m.pointer, Source: m.source}
	default:
		return &InputError{Err: err, Position: pos, Pointer: m.pointer, Source: m.source}
	}
}

type flusher interface {
	Flush() error
}

func (m *Machine) flush() {
	f, ok := m.output.(flusher)
	if !ok {
		return
	}
	if err := f.Flush(); err != nil {
		m.recordOutputError(&OutputError{Err: err, Pointer: m.pointer, Source: m.source})
	}
}

func (m *Machine) recordOutputError(err *OutputError) {
	m.outputFailures++
	if m.outputFailures <= MaxOutputErrors {
		m.outputErrors = multierror.Append(m.outputErrors, err)
	}
	m.failureLogger.Warn().
		Int64("failures", m.outputFailures).
		Err(err.Err).
		Int("offset", err.Position.Char).
		Int("pointer", err.Pointer).
		Msg("output failure")
}

func (m *Machine) wrapPointer(p int) int {
	size := 256
	if m.wrap == WrapTape {
		size = TapeSize
	}
	p %= size
	if p < 0 {
		p += size
	}
	return p
}
