package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/meigma/simbids/layout"
	"github.com/meigma/simbids/skeleton"
)

func newSkeletonCommand(a *app) *cobra.Command {
	var (
		subjects int
		sessions int
		output   string
		db       string
	)
	cmd := &cobra.Command{
		Use:   "skeleton <bids_dir>",
		Short: "Extract a skeleton from an existing BIDS dataset",
		Long: `Index an existing BIDS dataset and write a YAML skeleton that reproduces the
structure of its first subjects and sessions, including sidecar metadata.`,
		Example: `  simbids skeleton /data/ds002278 --subjects 2 --sessions 3 --output ds002278.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			idx, err := layout.Open(ctx, db, layout.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer idx.Close()

			if _, err := idx.Build(ctx, osfs.New(args[0]), "."); err != nil {
				return err
			}
			m, err := idx.Extract(ctx, subjects, sessions)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output) //nolint:gosec // user-provided output path
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := skeleton.EncodeYAML(w, m); err != nil {
				return fmt.Errorf("encode skeleton: %w", err)
			}
			if output != "" {
				color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Skeleton written to %s\n", output)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&subjects, "subjects", 1, "Number of subjects to keep (<0 keeps all)")
	cmd.Flags().IntVar(&sessions, "sessions", 1, "Number of sessions per subject to keep (<0 keeps all)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&db, "db", ":memory:", "SQLite database for the layout index")
	return cmd
}
