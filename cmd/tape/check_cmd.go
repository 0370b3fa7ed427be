package main

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/risor-io/tape"
	"github.com/risor-io/tape/ast"
	"github.com/risor-io/tape/lexer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCheckCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Check a program for invalid characters and unbalanced loops",
		Long: `Check a program without running it.

Every byte that is not an instruction, whitespace or part of a // comment
is reported, followed by any bracket mismatch.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkHandler(cmd, v, args)
		},
	}
	cmd.Flags().StringP("code", "c", "", "Code to check")
	return cmd
}

func checkHandler(cmd *cobra.Command, v *viper.Viper, args []string) error {
	code, filename, err := getCode(cmd, args)
	if err != nil {
		return err
	}
	program, err := checkProgram(code, filename, compileOptions(v, filename)...)
	if err != nil {
		return report(cmd.ErrOrStderr(), err, useColor(v, cmd.ErrOrStderr()))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d instructions, loop depth %d\n",
		ast.Count(program), ast.Depth(program))
	return nil
}

// checkProgram collects every strict-mode lexing error and then parses the
// permissive token stream, so that bracket errors are found even when the
// source has invalid characters.
func checkProgram(code []byte, filename string, opts ...tape.Option) (*ast.Program, error) {
	var result *multierror.Error
	if err := lexer.Validate(code, lexer.WithFilename(filename)); err != nil {
		result = multierror.Append(result, err)
	}
	program, err := tape.Compile(code, append(opts, tape.WithStrict(false))...)
	if err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return program, nil
}
