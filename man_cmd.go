package main

import (
	"fmt"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

var manCmd = &cobra.Command{
	Use:                   "man",
	Short:                 "Generates manpages",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Hidden:                true,
	Args:                  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		manPage, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			return err
		}

		manPage = manPage.WithSection("Exit Status",
			"0 on success, 64 on usage errors, 66 when the input is missing or unreadable, "+
				"70 when synthesis fails mid-run, 74 on output errors, "+
				"126 when the engine or its lingware cannot be loaded and 127 for unsupported voices.")
		manPage = manPage.WithSection("Environment",
			"NANOTTS_CONFIG_HOME overrides the config directory. "+
				"NANOTTS_DEBUG enables debug logging and NANOTTS_LOG_FILE sends the log to a file.")

		_, err = fmt.Fprintln(cmd.OutOrStdout(), manPage.Build(roff.NewDocument()))
		return err
	},
}
