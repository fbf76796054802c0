package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/qrtrack/qrtrack/config"
	"github.com/qrtrack/qrtrack/filesystem"
)

type rootOptions struct {
	ConfigPath string
	Verbose    bool
	DataDir    string

	cfg config.Config
	log *slog.Logger
}

func newRootCommand() *cobra.Command {
	opts := new(rootOptions)

	cmd := &cobra.Command{
		Use:           "qrtrack",
		Short:         "QR code service with a persistent attribute table",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log at debug level")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "directory holding the table and tracking files")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newInspectCommand(opts))

	return cmd
}

func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if o.Verbose {
		level = slog.LevelDebug
	}

	o.cfg = cfg
	o.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
	return nil
}

func (o *rootOptions) filesystem() (*filesystem.T, error) {
	fs := &filesystem.T{Base: o.cfg.DataDir}
	if err := fs.Mkdir(""); err != nil {
		return nil, err
	}
	return fs, nil
}
