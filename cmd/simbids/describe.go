package main

import (
	"path/filepath"

	"github.com/fatih/color"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/meigma/simbids"
	"github.com/meigma/simbids/derivatives"
)

func newDescribeCommand(a *app) *cobra.Command {
	var (
		name      string
		container string
	)
	cmd := &cobra.Command{
		Use:   "describe <input_dir> <output_dir>",
		Short: "Write a derivative dataset_description.json",
		Long: `Derive the dataset_description.json of a derivative dataset in <output_dir>
from the one in <input_dir>. The container URI defaults to $` + derivatives.SingularityEnv + `.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			out, err := filepath.Abs(args[1])
			if err != nil {
				return err
			}
			opts := []derivatives.DescriptionOption{
				derivatives.WithVersion(simbids.Version),
				derivatives.WithLogger(a.logger),
			}
			if name != "" {
				opts = append(opts, derivatives.WithName(name))
			}
			if container != "" {
				opts = append(opts, derivatives.WithContainer(container))
			}
			fsys := osfs.New(string(filepath.Separator))
			if _, err := derivatives.WriteDescription(fsys, in, out, opts...); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Wrote %s\n",
				filepath.Join(out, derivatives.DescriptionFile))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Dataset name (default: "+derivatives.DefaultName+")")
	cmd.Flags().StringVar(&container, "container", "", "Singularity container URI")
	return cmd
}
