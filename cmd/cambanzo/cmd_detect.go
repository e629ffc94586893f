package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andypayne/cambanzo/internal/config"
	"github.com/andypayne/cambanzo/internal/detect"
	"github.com/andypayne/cambanzo/internal/format"
)

var detectFlags struct {
	configPath string
	markdown   bool
}

var detectCmd = &cobra.Command{
	Use:   "detect <image>...",
	Short: "Run the detection tool over images and print what it found",
	Long: `Run one detection pass over the given images, outside the cycle loop.
Nothing is archived or displayed; the tool's findings are printed as a
table along with the annotated output files it is expected to write.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDetect,
}

func init() {
	f := detectCmd.Flags()
	f.StringVarP(&detectFlags.configPath, "config", "c", config.DefaultPath, "Config file (YAML or JSON)")
	f.BoolVar(&detectFlags.markdown, "markdown", false, "Render the table as Markdown")
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(detectFlags.configPath)
	if err != nil {
		return err
	}
	if cfg.Detect.Command == "" || cfg.Detect.Dir == "" {
		return fmt.Errorf("config %s: detect.command and detect.dir are required", detectFlags.configPath)
	}

	records, outputs, err := detect.New(cfg.Detect).Detect(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintf(out, "No objects detected in %d image(s).\n", len(args))
	} else {
		mode := format.ASCII
		if detectFlags.markdown {
			mode = format.Markdown
		}
		tb := format.NewTable(mode)
		tb.Header("#", "Label", "Confidence")
		for i, r := range records {
			tb.Row(i+1, r.Label, fmt.Sprintf("%d%%", r.Confidence))
		}
		tb.Footer("", "objects", len(records))
		tb.Columns(format.ColumnConfig{Number: 3, Align: format.AlignRight})
		fmt.Fprintln(out, tb.String())
	}

	fmt.Fprintln(out, "Expected outputs:")
	for _, p := range outputs {
		fmt.Fprintf(out, "  %s\n", p)
	}
	return nil
}
