package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/risor-io/tape"
	"github.com/risor-io/tape/ast"
	"github.com/risor-io/tape/vm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func runHandler(cmd *cobra.Command, v *viper.Viper, args []string) error {
	code, filename, err := getCode(cmd, args)
	if err != nil {
		return err
	}
	stderr := cmd.ErrOrStderr()
	colored := useColor(v, stderr)

	// Structural errors are reported before anything runs.
	program, err := tape.Compile(code, compileOptions(v, filename)...)
	if err != nil {
		return report(stderr, err, colored)
	}

	opts, err := runOptions(v)
	if err != nil {
		return err
	}
	logger, err := newLogger(v, stderr)
	if err != nil {
		return err
	}
	// A program blocked on a read must still see Ctrl+C. Once the first
	// signal has cancelled ctx, a second one gets the default behavior and
	// kills the process.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	context.AfterFunc(ctx, stop)

	input, closeInput, err := programInput(ctx, cmd, v)
	if err != nil {
		return err
	}
	defer closeInput()

	// The machine flushes before every read and at the end of the run.
	out := bufio.NewWriter(cmd.OutOrStdout())
	opts = append(opts,
		tape.WithSource(code),
		tape.WithInput(input),
		tape.WithOutput(out),
		tape.WithLogger(logger))

	var stats *vm.Stats
	if v.GetBool("stats") {
		stats = vm.NewStats()
		opts = append(opts, tape.WithObserver(stats))
	}

	start := time.Now()
	machine, err := tape.Run(ctx, program, opts...)
	elapsed := time.Since(start)

	if stats != nil {
		printStats(stderr, stats, machine)
	}
	if v.GetBool("timing") {
		fmt.Fprintf(stderr, "%s %v\n", cyan("elapsed:"), elapsed)
	}
	if err != nil {
		if errors.Is(err, errInterrupted) || errors.Is(err, context.Canceled) {
			return errInterrupted
		}
		return report(stderr, err, colored)
	}
	return nil
}

// programInput opens the stream the running program reads from. Reads stop
// blocking once ctx is done.
func programInput(ctx context.Context, cmd *cobra.Command, v *viper.Viper) (io.Reader, func(), error) {
	path := v.GetString("input")
	raw := v.GetBool("raw")
	switch {
	case path != "" && raw:
		return nil, nil, errors.New("--input and --raw cannot be combined")
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return bufio.NewReader(newContextReader(ctx, f)), func() { f.Close() }, nil
	case raw:
		if !isTerminal(os.Stdin) {
			return nil, nil, errors.New("--raw requires a terminal on stdin")
		}
		return newContextReader(ctx, newKeyReader()), func() {}, nil
	}
	return bufio.NewReader(newContextReader(ctx, cmd.InOrStdin())), func() {}, nil
}

func printStats(w io.Writer, stats *vm.Stats, machine *vm.Machine) {
	fmt.Fprintln(w, cyan("instruction counts:"))
	for op := ast.IncrementPointer; op <= ast.Read; op++ {
		fmt.Fprintf(w, "  %-18s %s\n", fmt.Sprintf("%s (%s)", op, op.Symbol()), yellow(stats.Ops[op]))
	}
	fmt.Fprintf(w, "  %-18s %s\n", "Loop ([)", yellow(stats.Loops))
	fmt.Fprintf(w, "  %-18s %s\n", "total", yellow(stats.Total()))
	fmt.Fprintf(w, "  %-18s %s\n", "max depth", yellow(stats.MaxDepth))
	fmt.Fprintf(w, "  %-18s %s\n", "max pointer", yellow(stats.MaxPointer))
	if failures := machine.OutputFailures(); failures > 0 {
		fmt.Fprintf(w, "  %-18s %s\n", "output failures", red(failures))
	}
}
