package main

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/meigma/simbids"
	"github.com/meigma/simbids/registry"
)

func newRawMRICommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "raw-mri <bids_dir> <config>",
		Short: "Create a raw MRI dataset from a skeleton",
		Long: `Create a BIDS dataset below <bids_dir>/simbids from a skeleton.

<config> is the name of a bundled skeleton (see "simbids configs") or a path
to a JSON or YAML skeleton file.`,
		Example: `  # Bundled skeleton, empty files
  simbids raw-mri /tmp/sim multi_ses_qsiprep.yaml

  # Random image content, one zip per session, saved with DataLad
  simbids raw-mri /tmp/sim multi_ses_qsiprep.yaml --fill-files --granularity session --register datalad`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRawMRI(cmd, args[0], args[1])
		},
	}

	cmd.Flags().Bool("fill-files", false, "Fill .nii.gz files with 10 MiB of random data")
	cmd.Flags().Int("fill-workers", -1, "Files filled concurrently (<0 serial, 0 GOMAXPROCS)")
	cmd.Flags().String("granularity", "none", "Zip archives per subject or session (none, subject, session)")
	cmd.Flags().String("compression", "deflate", "Zip method for archive entries (deflate, store, zstd)")
	cmd.Flags().String("register", "none", "Register the output (none, datalad, git, oci)")
	cmd.Flags().String("datalad", "datalad", "DataLad executable")
	cmd.Flags().String("oci-layout", "", "OCI layout directory for --register oci (default <bids_dir>/oci-layout)")
	a.bind(cmd, "fill-files", "fill-workers", "granularity", "compression", "register", "datalad", "oci-layout")
	return cmd
}

func (a *app) runRawMRI(cmd *cobra.Command, outputDir, config string) error {
	g, err := simbids.ParseGranularity(a.cfg.Granularity)
	if err != nil {
		return err
	}
	c, err := simbids.ParseCompression(a.cfg.Compression)
	if err != nil {
		return err
	}
	opts := []simbids.SimulateOption{
		simbids.WithGranularity(g),
		simbids.WithCompression(c),
		simbids.WithFillFiles(a.cfg.FillFiles),
		simbids.WithFillWorkers(a.cfg.FillWorkers),
		simbids.WithLogger(a.logger),
	}
	reg, err := newRegistrar(a.cfg, a.logger)
	if err != nil {
		return err
	}
	if reg != nil {
		opts = append(opts, simbids.WithRegistrar(reg))
	}

	out, err := simbids.Simulate(cmd.Context(), outputDir, config, opts...)
	if err != nil {
		return err
	}
	successColor := color.New(color.FgGreen, color.Bold)
	successColor.Fprintf(cmd.OutOrStdout(), "Simulated dataset written to %s\n", out)
	return nil
}

func newRegistrar(cfg *Config, logger *slog.Logger) (registry.Registrar, error) {
	runner := registry.ExecRunner{Logger: logger}
	switch cfg.Register {
	case "", "none":
		return nil, nil
	case "datalad":
		return registry.Datalad{Runner: runner, Binary: cfg.Datalad, Logger: logger}, nil
	case "git":
		return registry.Git{Runner: runner, Logger: logger}, nil
	case "oci":
		return registry.OCILayout{Path: cfg.OCILayout, Tag: simbids.Version, Logger: logger}, nil
	default:
		return nil, fmt.Errorf("%w: register %q (want none, datalad, git or oci)", simbids.ErrInvalidConfig, cfg.Register)
	}
}
