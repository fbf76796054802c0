package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/qrtrack/qrtrack"
	"github.com/qrtrack/qrtrack/boot"
	"github.com/qrtrack/qrtrack/hashtbl"
)

func newInspectCommand(root *rootOptions) *cobra.Command {
	var items bool

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Print the layout of an attribute table file",
		Long: `Print the header, occupancy and clustering of an attribute table file.

The file defaults to the configured table file. It is never written.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := root.filesystem()
			if err != nil {
				return err
			}

			path := root.cfg.Table.File
			if len(args) > 0 {
				path = args[0]
			}

			info, err := hashtbl.Stat(fs, path)
			if err != nil {
				return err
			}

			tb, err := hashtbl.Open[qrtrack.Attribute, *qrtrack.Attribute](fs, hashtbl.Options{
				Capacity:   info.Capacity,
				Path:       path,
				Tombstones: info.Tombstones,
			})
			if err != nil {
				return err
			}

			return printTable(cmd.OutOrStdout(), fs.Child(path), info, tb, items)
		},
	}

	cmd.Flags().BoolVar(&items, "items", false, "list every stored attribute with its slot")

	return cmd
}

func printTable(w io.Writer, path string, info hashtbl.Info, tb *boot.Table, items bool) error {
	variant := "clear"
	if info.Tombstones {
		variant = "tombstones"
	}

	occ := tb.Occupied()
	longest, run, prev := 0, 0, -2
	it := occ.Iterator()
	for it.HasNext() {
		i := int(it.Next())
		if i == prev+1 {
			run++
		} else {
			run = 1
		}
		longest, prev = max(longest, run), i
	}

	_, err := fmt.Fprintf(w, "path:        %s\n"+
		"version:     %d\n"+
		"bytes:       %d\n"+
		"variant:     %s\n"+
		"capacity:    %d\n"+
		"items:       %d\n"+
		"load:        %.3f\n"+
		"longest run: %d\n"+
		"marker:      %t\n",
		path, info.Version, info.Size, variant, tb.Cap(), tb.Len(), tb.Load(),
		longest, tb.Search(qrtrack.Marker))
	if err != nil || !items {
		return err
	}

	it = occ.Iterator()
	for it.HasNext() {
		i := int(it.Next())
		a, _ := tb.At(i)
		if _, err := fmt.Fprintf(w, "%5d  %s\n", i, a); err != nil {
			return err
		}
	}
	return nil
}
