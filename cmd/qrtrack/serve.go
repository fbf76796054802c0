package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs/v2"

	"github.com/qrtrack/qrtrack/boot"
	"github.com/qrtrack/qrtrack/server"
	"github.com/qrtrack/qrtrack/tracking"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Prepare the attribute table and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if listen != "" {
				root.cfg.Listen = listen
			}
			log, cfg := root.log, root.cfg

			fs, err := root.filesystem()
			if err != nil {
				return err
			}

			tb, err := boot.Attributes(log, fs, cfg.Table)
			if err != nil {
				return errs.Errorf("boot: %w", err)
			}
			log.Debug("attribute table ready", "items", tb.Len(), "saves", tb.Saves())

			store, err := tracking.Open(fs.Child(cfg.Tracking.Path))
			if err != nil {
				return err
			}
			defer func() { err = errs.Combine(err, store.Close()) }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.Run(ctx, log, cfg.Listen, server.New(log, store, cfg.QR))
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (overrides config)")

	return cmd
}
