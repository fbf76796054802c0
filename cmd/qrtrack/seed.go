package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qrtrack/qrtrack/boot"
)

func newSeedCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Run the boot sequence for the attribute table and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := root.filesystem()
			if err != nil {
				return err
			}

			tb, err := boot.Attributes(root.log, fs, root.cfg.Table)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d items, %d saves\n",
				fs.Child(root.cfg.Table.File), tb.Len(), tb.Cap(), tb.Saves())
			return err
		},
	}
}
