package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

func printError(w io.Writer, msg string) {
	fmt.Fprintln(w, red(msg))
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// useColor reports whether w should receive ANSI colors.
func useColor(v *viper.Viper, w io.Writer) bool {
	if v.GetBool("no-color") || color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags(v *viper.Viper) {
	if v.GetBool("no-color") {
		color.NoColor = true
	}
}
