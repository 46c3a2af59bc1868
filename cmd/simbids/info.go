package main

import (
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/meigma/simbids"
	"github.com/meigma/simbids/configs"
)

func newConfigsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "configs",
		Short: "List the bundled skeleton configurations",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			nameColor := color.New(color.FgCyan)
			for _, name := range configs.Names() {
				nameColor.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			titleColor := color.New(color.FgCyan, color.Bold)
			w := cmd.OutOrStdout()
			titleColor.Fprint(w, "simbids version: ")
			color.New(color.FgWhite).Fprintln(w, simbids.Version)
			titleColor.Fprint(w, "Go version: ")
			color.New(color.FgWhite).Fprintln(w, runtime.Version())
		},
	}
}
