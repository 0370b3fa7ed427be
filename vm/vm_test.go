package vm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/risor-io/tape/ast"
	"github.com/risor-io/tape/parser"
	"github.com/stretchr/testify/require"
)

const helloWorld = "--<-<<+[+[<+>--->->->-<<<]>]<<--.<++++++.<<-..<<.<+.>>.>>.<<<.+++.>>.>>-.<<<+."

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, err := parser.ParseSource(context.Background(), []byte(source))
	require.NoError(t, err)
	return program
}

func TestMemoryManipulation(t *testing.T) {
	program := parse(t, "+++++++[>++[>+++++<-]<-]>>++<++<+")
	m, err := Run(context.Background(), program)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 72}, m.Tape()[:3])
	require.Equal(t, 0, m.Pointer())
}

func TestHelloWorld(t *testing.T) {
	// The program walks left from cell 0, which wraps to the top of the
	// byte-sized pointer range.
	var out bytes.Buffer
	_, err := Run(context.Background(), parse(t, helloWorld), WithOutput(&out))
	require.NoError(t, err)
	require.Equal(t, "Hello, World!", out.String())
}

func TestPointerWrapByte(t *testing.T) {
	m := New()
	m.SetPointer(255)
	require.NoError(t, m.Run(context.Background(), parse(t, ">")))
	require.Equal(t, 0, m.Pointer())

	require.NoError(t, m.Run(context.Background(), parse(t, "<")))
	require.Equal(t, 255, m.Pointer())

	m.SetPointer(300)
	require.Equal(t, 44, m.Pointer())
}

func TestPointerWrapTape(t *testing.T) {
	m := New(WithPointerWrap(WrapTape))
	m.SetPointer(TapeSize - 1)
	require.NoError(t, m.Run(context.Background(), parse(t, ">")))
	require.Equal(t, 0, m.Pointer())

	require.NoError(t, m.Run(context.Background(), parse(t, "<")))
	require.Equal(t, TapeSize-1, m.Pointer())

	m.Reset()
	require.NoError(t, m.Run(context.Background(), parse(t, strings.Repeat(">", 300)+"+")))
	require.Equal(t, 300, m.Pointer())
	require.Equal(t, byte(1), m.Cell(300))
}

func TestCellWrap(t *testing.T) {
	m := New()
	m.SetCell(0, 255)
	require.NoError(t, m.Run(context.Background(), parse(t, "+")))
	require.Equal(t, byte(0), m.Cell(0))

	require.NoError(t, m.Run(context.Background(), parse(t, "-")))
	require.Equal(t, byte(255), m.Cell(0))
}

func TestLoopSkippedWhenZero(t *testing.T) {
	m, err := Run(context.Background(), parse(t, "[+>+<.]"))
	require.NoError(t, err)
	require.Equal(t, make([]byte, TapeSize), m.Tape())
	require.Equal(t, 0, m.Pointer())
	require.Equal(t, int64(1), m.Executed())
}

func TestLoopRechecksAfterPointerMove(t *testing.T) {
	// The guard is the cell under the pointer after each pass, not the cell
	// the loop started on.
	m, err := Run(context.Background(), parse(t, "+>+>+<<[>]"))
	require.NoError(t, err)
	require.Equal(t, 3, m.Pointer())
}

func TestRead(t *testing.T) {
	m, err := Run(context.Background(), parse(t, ",>,"), WithInput(strings.NewReader("AB")))
	require.NoError(t, err)
	require.Equal(t, []byte("AB"), m.Tape()[:2])
}

func TestEcho(t *testing.T) {
	var out bytes.Buffer
	_, err := Run(context.Background(), parse(t, ",[.,]"),
		WithInput(strings.NewReader("echo\x00")),
		WithOutput(&out))
	require.NoError(t, err)
	require.Equal(t, "echo", out.String())
}

func TestInputExhausted(t *testing.T) {
	m, err := Run(context.Background(), parse(t, "+++>,+"), WithSource([]byte("+++>,+")))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInputExhausted))

	var exhausted *InputExhaustedError
	require.True(t, errors.As(err, &exhausted))
	require.Equal(t, 4, exhausted.Position.Char)
	require.Equal(t, 1, exhausted.Pointer)
	require.EqualError(t, err, "input exhausted: read at offset 4 (cell 1)")

	// No rollback, and nothing after the read ran.
	require.Equal(t, []byte{3, 0}, m.Tape()[:2])
	require.Equal(t, 1, m.Pointer())

	formatted := exhausted.ToFormatted()
	require.Equal(t, "E3001", formatted.Code.String())
	require.Equal(t, 5, formatted.Column)
	require.Equal(t, "+++>,+", formatted.SourceLines[0].Text)
}

func TestEOFPolicies(t *testing.T) {
	tests := []struct {
		policy   EOFPolicy
		expected byte
	}{
		{EOFZero, 0},
		{EOFUnchanged, 5},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			m, err := Run(context.Background(), parse(t, "+++++,"), WithEOFPolicy(tt.policy))
			require.NoError(t, err)
			require.Equal(t, tt.expected, m.Cell(0))
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, fmt.Errorf("device unplugged") }

func TestInputError(t *testing.T) {
	_, err := Run(context.Background(), parse(t, ","), WithInput(failingReader{}))
	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	require.False(t, errors.Is(err, ErrInputExhausted))
	require.Contains(t, err.Error(), "device unplugged")
}

type failingWriter struct {
	writes int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, fmt.Errorf("disk full")
}

func TestOutputFailureIsNotFatal(t *testing.T) {
	var logs bytes.Buffer
	w := &failingWriter{}
	m, err := Run(context.Background(), parse(t, "+.+.+"),
		WithOutput(w),
		WithLogger(zerolog.New(&logs)))
	require.NoError(t, err)
	require.Equal(t, 2, w.writes)
	require.Equal(t, byte(3), m.Cell(0))

	outErr := m.OutputErrors()
	require.Error(t, outErr)
	var merr *multierror.Error
	require.True(t, errors.As(outErr, &merr))
	require.Len(t, merr.Errors, 2)

	var first *OutputError
	require.True(t, errors.As(merr.Errors[0], &first))
	require.Equal(t, byte(1), first.Value)
	require.Equal(t, 1, first.Position.Char)

	require.Contains(t, logs.String(), `"message":"output failure"`)
	require.Contains(t, logs.String(), `"error":"disk full"`)

	m.Reset()
	require.NoError(t, m.OutputErrors())
	require.Equal(t, int64(0), m.OutputFailures())
}

func TestOutputFailuresBounded(t *testing.T) {
	var logs bytes.Buffer
	w := &failingWriter{}
	// "+[.]" writes forever; the step limit ends it.
	m, err := Run(context.Background(), parse(t, "+[.]"),
		WithOutput(w),
		WithObserver(StepLimit(100_000)),
		WithLogger(zerolog.New(&logs)))
	require.True(t, errors.Is(err, ErrHalted))
	require.Equal(t, 99_998, w.writes)
	require.Equal(t, int64(w.writes), m.OutputFailures())

	var merr *multierror.Error
	require.True(t, errors.As(m.OutputErrors(), &merr))
	require.Len(t, merr.Errors, MaxOutputErrors)

	logged := strings.Count(logs.String(), `"message":"output failure"`)
	require.GreaterOrEqual(t, logged, 1)
	require.LessOrEqual(t, logged, 2*MaxOutputErrors)
	require.Contains(t, logs.String(), `"message":"output failures truncated"`)
	require.Contains(t, logs.String(), `"failures":99998`)
}

type flushRecorder struct {
	bytes.Buffer
	flushes []string
}

func (f *flushRecorder) Flush() error {
	f.flushes = append(f.flushes, f.String())
	return nil
}

func TestFlushBeforeRead(t *testing.T) {
	out := &flushRecorder{}
	_, err := Run(context.Background(), parse(t, "+.,."),
		WithOutput(out),
		WithInput(strings.NewReader("A")))
	require.NoError(t, err)
	require.Equal(t, []string{"\x01", "\x01A"}, out.flushes)
}

func TestObserverHalts(t *testing.T) {
	// "+-" keeps the cell non-zero forever.
	m, err := Run(context.Background(), parse(t, "+[+-]"), WithObserver(StepLimit(10)))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrHalted))
	require.Equal(t, int64(10), m.Executed())

	var halted *HaltedError
	require.True(t, errors.As(err, &halted))
	require.Nil(t, halted.Cause)
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := Run(ctx, parse(t, "+[]"), WithContextCheckInterval(1))
	require.True(t, errors.Is(err, ErrHalted))
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestStepEvents(t *testing.T) {
	var events []StepEvent
	observer := ObserverFunc(func(e StepEvent) bool {
		events = append(events, e)
		return true
	})
	_, err := Run(context.Background(), parse(t, "+[-]"), WithObserver(observer))
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, 0, events[0].Depth)
	require.Equal(t, byte(0), events[0].Value)
	require.IsType(t, &ast.Loop{}, events[1].Instruction)
	require.Equal(t, byte(1), events[1].Value)
	require.Equal(t, 1, events[2].Depth)
	require.Equal(t, 2, events[2].Position.Char)
}

func TestStats(t *testing.T) {
	stats := NewStats()
	_, err := Run(context.Background(), parse(t, "+++[>+<-]"), WithObserver(stats))
	require.NoError(t, err)
	require.Equal(t, int64(6), stats.Ops[ast.IncrementValue])
	require.Equal(t, int64(3), stats.Ops[ast.DecrementValue])
	require.Equal(t, int64(3), stats.Ops[ast.IncrementPointer])
	require.Equal(t, int64(1), stats.Loops)
	require.Equal(t, 1, stats.MaxDepth)
	require.Equal(t, 1, stats.MaxPointer)
	require.Equal(t, int64(16), stats.Total())
}

func TestStatsMaxPointerAfterMove(t *testing.T) {
	stats := NewStats()
	_, err := Run(context.Background(), parse(t, ">>"), WithObserver(stats))
	require.NoError(t, err)
	require.Equal(t, 2, stats.MaxPointer)

	stats = NewStats()
	_, err = Run(context.Background(), parse(t, "<"), WithObserver(stats))
	require.NoError(t, err)
	require.Equal(t, 255, stats.MaxPointer)
}

func TestProgramReuse(t *testing.T) {
	program := parse(t, "++++++++[>++++++++<-]>+.")
	for i := 0; i < 3; i++ {
		var out bytes.Buffer
		_, err := Run(context.Background(), program, WithOutput(&out))
		require.NoError(t, err)
		require.Equal(t, "A", out.String())
	}

	m := New()
	require.NoError(t, m.Run(context.Background(), program))
	require.Equal(t, byte(65), m.Cell(1))
	m.Reset()
	require.Equal(t, 0, m.Pointer())
	require.Equal(t, byte(0), m.Cell(1))
	require.Equal(t, int64(0), m.Executed())
}

func TestDeepNestingExecution(t *testing.T) {
	const depth = 20000
	source := "+" + strings.Repeat("[", depth) + "-" + strings.Repeat("]", depth)
	m, err := Run(context.Background(), parse(t, source))
	require.NoError(t, err)
	require.Equal(t, byte(0), m.Cell(0))
}

func TestModeNames(t *testing.T) {
	require.Equal(t, "byte", WrapByte.String())
	require.Equal(t, "tape", WrapTape.String())
	require.Equal(t, "abort", EOFAbort.String())
	require.Equal(t, "unknown", EOFPolicy(9).String())
}
