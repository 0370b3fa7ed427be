package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			printError(os.Stderr, err.Error())
		}
		if errors.Is(err, errInterrupted) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Each tree owns its own viper instance
// so that flags, environment and config file are resolved per invocation.
func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "tape [file]",
		Short: "Run programs written in the eight-instruction tape language",
		Long: `Run programs written in the eight-instruction tape language.

The program is read from a file or from --code. The running program reads
its input from stdin, from --input, or from the keyboard with --raw.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(v); err != nil {
				return err
			}
			processGlobalFlags(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHandler(cmd, v, args)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default is $HOME/.tape.yaml)")
	pf.Bool("strict", false, "Reject bytes that are not instructions, whitespace or // comments")
	pf.Int("max-depth", 0, "Maximum loop nesting depth (0 for unlimited)")
	pf.Bool("no-color", false, "Disable colored output")
	pf.String("log-level", "warn", "Log level (trace, debug, info, warn, error, disabled)")
	pf.String("log-format", "console", "Log format (console or json)")

	f := root.Flags()
	f.StringP("code", "c", "", "Code to run")
	f.String("input", "", "Read program input from this file instead of stdin")
	f.Bool("raw", false, "Read program input from the keyboard, one key at a time")
	f.String("pointer-wrap", "byte", "Data pointer wrap mode (byte or tape)")
	f.String("eof", "abort", "Behavior of a read at end of input (abort, zero or unchanged)")
	f.Bool("stats", false, "Print instruction counts after the run")
	f.Bool("timing", false, "Print execution time")

	bindFlags(v, pf, "config", "strict", "max-depth", "no-color", "log-level", "log-format")
	bindFlags(v, f, "input", "raw", "pointer-wrap", "eof", "stats", "timing")

	root.RegisterFlagCompletionFunc("pointer-wrap", fixedCompletion("byte", "tape"))
	root.RegisterFlagCompletionFunc("eof", fixedCompletion("abort", "zero", "unchanged"))
	root.RegisterFlagCompletionFunc("log-format", fixedCompletion("console", "json"))

	root.AddCommand(
		newAstCmd(v),
		newCheckCmd(v),
		newVersionCmd(),
	)
	return root
}

// initConfig reads the config file and TAPE_* environment variables.
// An explicit --config must exist; the default one is optional.
func initConfig(v *viper.Viper) error {
	v.SetEnvPrefix("tape")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
		return nil
	}

	home, err := homedir.Dir()
	if err != nil {
		return nil
	}
	v.SetConfigFile(filepath.Join(home, ".tape.yaml"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func fixedCompletion(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}
