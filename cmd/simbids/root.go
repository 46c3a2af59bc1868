package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries state shared by all commands.
type app struct {
	v      *viper.Viper
	cfg    *Config
	logger *slog.Logger
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simbids",
		Short: "Simulate BIDS datasets for testing neuroimaging pipelines",
		Long: `simbids turns a skeleton description of subjects, sessions and files into a
BIDS dataset of placeholder files, optionally fills the images with random
data, zips it per subject or session and registers it with DataLad, git or
an OCI image layout.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("config", "", "Config file (default: simbids.yaml in . or $HOME/.config/simbids)")
	_ = a.v.BindPFlag("log-level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(newRawMRICommand(a))
	cmd.AddCommand(newSkeletonCommand(a))
	cmd.AddCommand(newDescribeCommand(a))
	cmd.AddCommand(newCollectCommand(a))
	cmd.AddCommand(newConfigsCommand())
	cmd.AddCommand(newVersionCommand())
	return cmd
}

// init loads the configuration and installs the logger.
func (a *app) init(cmd *cobra.Command) error {
	if path, _ := cmd.Root().PersistentFlags().GetString("config"); path != "" {
		a.v.SetConfigFile(path)
	}
	cfg, err := loadConfig(a.v)
	if err != nil {
		return err
	}
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("loaded config file", "path", used)
	}
	return nil
}

// bind makes flag values visible through viper under their own names.
func (a *app) bind(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		_ = a.v.BindPFlag(name, cmd.Flags().Lookup(name))
	}
}

func execute(args []string) error {
	home, _ := os.UserHomeDir()
	a := &app{v: newViper(home)}
	root := newRootCommand(a)
	root.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
