package tape

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/risor-io/tape/ast"
	"github.com/risor-io/tape/lexer"
	"github.com/risor-io/tape/parser"
	"github.com/risor-io/tape/vm"
	"github.com/stretchr/testify/require"
)

const helloWorld = "--<-<<+[+[<+>--->->->-<<<]>]<<--.<++++++.<<-..<<.<+.>>.>>.<<<.+++.>>.>>-.<<<+."

func TestInterpretHelloWorld(t *testing.T) {
	var out bytes.Buffer
	err := Interpret([]byte(helloWorld), &out, strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, "Hello, World!", out.String())
}

func TestEvalMemory(t *testing.T) {
	m, err := Eval(context.Background(), []byte("+++++++[>++[>+++++<-]<-]>>++<++<+"))
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 72}, m.Tape()[:3])
}

func TestCommentsIgnored(t *testing.T) {
	var out bytes.Buffer
	source := "add eight: ++++++++ then loop [>++++++++<-] >+. print 'A'"
	err := Interpret([]byte(source), &out, nil)
	require.NoError(t, err)
	require.Equal(t, "A", out.String())
}

func TestStrict(t *testing.T) {
	_, err := Compile([]byte("+ // comment\n+"), WithStrict(true))
	require.NoError(t, err)

	_, err = Compile([]byte("+ x"), WithStrict(true))
	var syntaxErr *lexer.SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	require.Equal(t, byte('x'), syntaxErr.Byte)
	require.Equal(t, 2, syntaxErr.Offset())

	_, err = Compile([]byte("+ x"), WithMode(lexer.Permissive))
	require.NoError(t, err)
}

func TestStructuralErrorsBeforeExecution(t *testing.T) {
	var out bytes.Buffer
	err := Interpret([]byte("+.]"), &out, nil)
	var unmatched *parser.UnmatchedLoopEndError
	require.True(t, errors.As(err, &unmatched))
	require.Equal(t, 2, unmatched.Offset())
	// Nothing ran.
	require.Empty(t, out.String())

	_, err = Eval(context.Background(), []byte(".[["))
	var unclosed *parser.UnmatchedLoopBeginError
	require.True(t, errors.As(err, &unclosed))
	require.Equal(t, 1, unclosed.Offset())
}

func TestMaxDepth(t *testing.T) {
	_, err := Compile([]byte("[[[]]]"), WithMaxDepth(2))
	var depthErr *parser.MaxDepthError
	require.True(t, errors.As(err, &depthErr))

	_, err = Compile([]byte("[[[]]]"), WithMaxDepth(3))
	require.NoError(t, err)
}

func TestInputExhaustedIsFatal(t *testing.T) {
	source := []byte("+,")
	m, err := Eval(context.Background(), source, WithFilename("read.b"))
	require.True(t, errors.Is(err, vm.ErrInputExhausted))
	require.Equal(t, byte(1), m.Cell(0))

	var exhausted *vm.InputExhaustedError
	require.True(t, errors.As(err, &exhausted))
	require.Equal(t, source, exhausted.Source)
	require.Equal(t, "read.b", exhausted.Position.File)
}

func TestOptionsReachMachine(t *testing.T) {
	program, err := Compile([]byte("<,"))
	require.NoError(t, err)

	m, err := Run(context.Background(), program,
		WithPointerWrap(vm.WrapTape),
		WithEOFPolicy(vm.EOFZero))
	require.NoError(t, err)
	require.Equal(t, vm.TapeSize-1, m.Pointer())

	stats := vm.NewStats()
	_, err = Run(context.Background(), program,
		WithInput(strings.NewReader("z")),
		WithObserver(stats))
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.Total())
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Eval(ctx, []byte("+[]"), WithContextCheckInterval(1))
	require.True(t, errors.Is(err, vm.ErrHalted))
	require.True(t, errors.Is(err, context.Canceled))
}

func TestCompiledProgramIsReusable(t *testing.T) {
	program, err := Compile([]byte(",[.,]"))
	require.NoError(t, err)
	rendered := program.String()

	for _, input := range []string{"abc\x00", "xyz\x00"} {
		var out bytes.Buffer
		_, err := Run(context.Background(), program,
			WithInput(strings.NewReader(input)),
			WithOutput(&out))
		require.NoError(t, err)
		require.Equal(t, strings.TrimSuffix(input, "\x00"), out.String())
	}
	require.Equal(t, rendered, program.String())

	again, err := Compile([]byte(rendered))
	require.NoError(t, err)
	require.True(t, ast.Equal(program, again))
}
