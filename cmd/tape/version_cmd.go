package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "json":
				data, err := json.MarshalIndent(map[string]string{
					"version": version,
					"commit":  commit,
					"date":    date,
				}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			case "", "text":
				fmt.Fprintf(out, "tape %s (commit %s, built %s)\n", version, commit, date)
			default:
				return fmt.Errorf("unknown output format: %s", format)
			}
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	return cmd
}
