package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/andypayne/cambanzo/internal/archive"
	"github.com/andypayne/cambanzo/internal/capture"
	"github.com/andypayne/cambanzo/internal/config"
	"github.com/andypayne/cambanzo/internal/cycle"
	"github.com/andypayne/cambanzo/internal/detect"
	"github.com/andypayne/cambanzo/internal/display"
	"github.com/andypayne/cambanzo/internal/procrun"
)

var runFlags struct {
	configPath string
	once       bool
	summary    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run acquisition cycles until the operator quits",
	Long: `Run the acquire, detect, archive, display loop.

Each cycle captures images from every configured source, optionally runs
the detection tool over the batch, moves everything into a timestamped
archive directory and shows the results in a grid window. Press r in the
window for another cycle, q or ESC to quit.

Snapshot credentials can be overridden with ` + config.EnvSnapUser + ` and
` + config.EnvSnapPass + `, read from the environment or a .env file.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runFlags.configPath, "config", "c", config.DefaultPath, "Config file (YAML or JSON)")
	f.BoolVar(&runFlags.once, "once", false, "Run a single cycle and exit")
	f.BoolVar(&runFlags.summary, "summary", true, "Print a per-cycle summary table")
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(runFlags.configPath)
	if err != nil {
		return err
	}

	sources := capture.Sources(cfg)
	if len(sources) == 0 {
		return fmt.Errorf("config %s: no capture or snapshot source configured", runFlags.configPath)
	}

	acquirer := capture.NewAcquirer(procrun.New())

	var detector cycle.Detector
	if cfg.Detect.Enabled {
		detector = detect.New(cfg.Detect)
	}

	win := display.NewWindow(cfg.Display.Width, cfg.Display.Height)
	defer win.Close()

	var presenter cycle.Presenter = win
	if runFlags.once {
		presenter = quitAfter{win}
	}

	opts := cycle.Options{
		Sources:       sources,
		DetectEnabled: cfg.Detect.Enabled,
		ArchiveDir:    cfg.Archive.Dir,
		MaxImages:     cfg.MaxImages,
	}
	if runFlags.summary {
		opts.Out = cmd.OutOrStdout()
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	start := time.Now()
	err = cycle.New(acquirer, detector, archive.New(), presenter, opts).Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(cmd.OutOrStdout(), "Interrupted.")
			return nil
		}
		return fmt.Errorf("run: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Done after %s.\n", time.Since(start).Round(time.Second))
	return nil
}

// quitAfter presents one batch and then reports Quit regardless of the key
// pressed, for --once runs.
type quitAfter struct {
	p cycle.Presenter
}

func (q quitAfter) Present(ctx context.Context, images []string) (cycle.Event, error) {
	if _, err := q.p.Present(ctx, images); err != nil {
		return cycle.Quit, err
	}
	return cycle.Quit, nil
}
