package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/risor-io/tape"
	"github.com/risor-io/tape/vm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, names ...string) {
	for _, name := range names {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// getCode determines what code is to be run. There are two possibilities:
// 1. --code <code>
// 2. path as args[0]
// The returned filename is empty for --code.
func getCode(cmd *cobra.Command, args []string) ([]byte, string, error) {
	codeFlag := cmd.Flags().Lookup("code")
	codeFlagSet := codeFlag != nil && codeFlag.Changed
	pathSupplied := len(args) > 0
	if pathSupplied && codeFlagSet {
		return nil, "", errors.New("multiple input sources specified")
	}
	if pathSupplied {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, "", err
		}
		return data, args[0], nil
	}
	if codeFlagSet {
		return []byte(codeFlag.Value.String()), "", nil
	}
	return nil, "", errors.New("no program provided (pass a file or --code)")
}

func parsePointerWrap(name string) (vm.PointerWrap, error) {
	switch strings.ToLower(name) {
	case "", "byte":
		return vm.WrapByte, nil
	case "tape":
		return vm.WrapTape, nil
	}
	return 0, fmt.Errorf("unknown pointer wrap mode: %s", name)
}

func parseEOFPolicy(name string) (vm.EOFPolicy, error) {
	switch strings.ToLower(name) {
	case "", "abort":
		return vm.EOFAbort, nil
	case "zero":
		return vm.EOFZero, nil
	case "unchanged":
		return vm.EOFUnchanged, nil
	}
	return 0, fmt.Errorf("unknown eof policy: %s", name)
}

// compileOptions returns the options that affect lexing and parsing.
func compileOptions(v *viper.Viper, filename string) []tape.Option {
	opts := []tape.Option{
		tape.WithStrict(v.GetBool("strict")),
		tape.WithMaxDepth(v.GetInt("max-depth")),
	}
	if filename != "" {
		opts = append(opts, tape.WithFilename(filename))
	}
	return opts
}

// runOptions returns the options that affect execution.
func runOptions(v *viper.Viper) ([]tape.Option, error) {
	wrap, err := parsePointerWrap(v.GetString("pointer-wrap"))
	if err != nil {
		return nil, err
	}
	eof, err := parseEOFPolicy(v.GetString("eof"))
	if err != nil {
		return nil, err
	}
	return []tape.Option{
		tape.WithPointerWrap(wrap),
		tape.WithEOFPolicy(eof),
	}, nil
}
