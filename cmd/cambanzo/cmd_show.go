package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andypayne/cambanzo/internal/cycle"
	"github.com/andypayne/cambanzo/internal/display"
	"github.com/andypayne/cambanzo/internal/format"
)

var showFlags struct {
	width  int
	height int
	table  bool
}

var showCmd = &cobra.Command{
	Use:   "show <image>...",
	Short: "Show images in the grid window without running a cycle",
	Long: `Compose the given images onto the canvas and display them, using the
same grid layout the cycle loop uses. Press q or ESC to close; r re-reads
the files and redraws, which is handy while a capture tool is still
writing them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShow,
}

func init() {
	f := showCmd.Flags()
	f.IntVar(&showFlags.width, "width", 1280, "Canvas width in pixels")
	f.IntVar(&showFlags.height, "height", 720, "Canvas height in pixels")
	f.BoolVar(&showFlags.table, "table", false, "Print a file table before showing")
}

func runShow(cmd *cobra.Command, args []string) error {
	if showFlags.table {
		printFileTable(cmd, args)
	}

	win := display.NewWindow(showFlags.width, showFlags.height)
	defer win.Close()

	for {
		ev, err := win.Present(cmd.Context(), args)
		if err != nil {
			return fmt.Errorf("show: %w", err)
		}
		if ev == cycle.Quit {
			return nil
		}
	}
}

func printFileTable(cmd *cobra.Command, paths []string) {
	tb := format.NewTable(format.ASCII)
	tb.Header("#", "Image", "Size")
	var total int64
	for i, p := range paths {
		size := "missing"
		if fi, err := os.Stat(p); err == nil {
			size = format.FmtBytes(fi.Size())
			total += fi.Size()
		}
		tb.Row(i+1, p, size)
	}
	tb.Footer("", "", format.FmtBytes(total))
	tb.Columns(
		format.ColumnConfig{Number: 2, MaxWidth: 60},
		format.ColumnConfig{Number: 3, Align: format.AlignRight},
	)
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())
}
