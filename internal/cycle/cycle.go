// Package cycle runs the acquire, detect, archive, display loop. One cycle
// is strictly sequential; the display decides whether the loop runs again.
package cycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/andypayne/cambanzo/internal/archive"
	"github.com/andypayne/cambanzo/internal/capture"
	"github.com/andypayne/cambanzo/internal/detect"
	"github.com/andypayne/cambanzo/internal/format"
	"github.com/andypayne/cambanzo/internal/logging"
)

// Event is the display's verdict on what happens after a cycle.
type Event int

const (
	Quit    Event = iota // leave the loop
	Refresh              // run another cycle
)

func (e Event) String() string {
	if e == Refresh {
		return "refresh"
	}
	return "quit"
}

// Acquirer produces image files from the configured sources.
type Acquirer interface {
	Acquire(ctx context.Context, sources []capture.Source) []string
}

// Detector runs object detection over one batch of images.
type Detector interface {
	Detect(ctx context.Context, images []string) ([]detect.Record, []string, error)
}

// Archiver relocates a cycle's files into a per-cycle directory.
type Archiver interface {
	Archive(files []string, baseDir string) (string, error)
}

// Presenter shows a cycle's images and blocks until the operator reacts
// or the context is canceled.
type Presenter interface {
	Present(ctx context.Context, images []string) (Event, error)
}

// Options configures the loop.
type Options struct {
	Sources       []capture.Source
	DetectEnabled bool
	ArchiveDir    string
	MaxImages     int // cap per cycle, 0 = unlimited

	// Out receives a one-row summary table per cycle. Nil disables it.
	Out io.Writer
}

// Orchestrator drives cycles until the display asks to quit or a stage
// fails.
type Orchestrator struct {
	acquirer  Acquirer
	detector  Detector
	archiver  Archiver
	presenter Presenter
	opts      Options
	log       *slog.Logger
}

// New wires the four stages into an orchestrator.
func New(a Acquirer, d Detector, ar Archiver, p Presenter, opts Options) *Orchestrator {
	return &Orchestrator{
		acquirer:  a,
		detector:  d,
		archiver:  ar,
		presenter: p,
		opts:      opts,
		log:       logging.New("cycle"),
	}
}

// Run loops cycles until the presenter returns Quit, the context is
// canceled, or a cycle fails.
func (o *Orchestrator) Run(ctx context.Context) error {
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := o.runCycle(ctx, n)
		if err != nil {
			return err
		}
		if ev == Quit {
			o.log.Info("loop finished", "cycles", n)
			return nil
		}
		o.log.Info("refresh requested", "next", n+1)
	}
}

// runCycle performs one acquire, detect, archive, display pass and returns
// the display's event. Detection failures abort the cycle before anything
// is archived, so the inputs stay in place for a rerun.
func (o *Orchestrator) runCycle(ctx context.Context, n int) (Event, error) {
	start := time.Now()
	o.log.Info("cycle started", "n", n)

	images := o.acquirer.Acquire(ctx, o.opts.Sources)
	if len(images) == 0 {
		return Quit, fmt.Errorf("cycle %d: no images acquired", n)
	}
	if o.opts.MaxImages > 0 && len(images) > o.opts.MaxImages {
		o.log.Warn("too many images, keeping the first ones",
			"acquired", len(images), "kept", o.opts.MaxImages)
		images = images[:o.opts.MaxImages]
	}

	var records []detect.Record
	var outputs []string
	if o.opts.DetectEnabled {
		var err error
		records, outputs, err = o.detector.Detect(ctx, images)
		if err != nil {
			return Quit, fmt.Errorf("cycle %d: %w", n, err)
		}
		for _, r := range records {
			o.log.Info("object detected", "label", r.Label, "confidence", r.Confidence)
		}
	}

	display := images
	if o.opts.DetectEnabled {
		display = outputs
	}

	dir, err := o.archiver.Archive(append(append([]string{}, images...), outputs...), o.opts.ArchiveDir)
	if err != nil {
		var partial *archive.PartialError
		if !errors.As(err, &partial) {
			return Quit, fmt.Errorf("cycle %d: %w", n, err)
		}
		o.log.Warn("cycle archived incompletely", "missing", len(partial.Failures))
	}
	display = relocate(display, dir, err)

	o.summarize(n, len(images), len(records), dir, time.Since(start))

	ev, err := o.presenter.Present(ctx, display)
	if err != nil {
		return Quit, fmt.Errorf("cycle %d: %w", n, err)
	}
	return ev, nil
}

// relocate maps display paths to their archived locations. Files the
// archiver could not move keep their original path; the display skips them
// if they are gone.
func relocate(paths []string, dir string, archiveErr error) []string {
	failed := map[string]bool{}
	var partial *archive.PartialError
	if errors.As(archiveErr, &partial) {
		for _, f := range partial.Failures {
			failed[f.Path] = true
		}
	}

	out := make([]string, len(paths))
	for i, p := range paths {
		if failed[p] {
			out[i] = p
			continue
		}
		out[i] = filepath.Join(dir, filepath.Base(p))
	}
	return out
}

func (o *Orchestrator) summarize(n, images, objects int, dir string, took time.Duration) {
	if o.opts.Out == nil {
		return
	}
	tb := format.NewTable(format.ASCII)
	tb.Header("Cycle", "Images", "Objects", "Archive", "Took")
	tb.Row(n, images, objects, dir, format.FmtDuration(took))
	tb.Columns(
		format.ColumnConfig{Number: 2, Align: format.AlignRight},
		format.ColumnConfig{Number: 3, Align: format.AlignRight},
		format.ColumnConfig{Number: 4, MaxWidth: 48},
	)
	fmt.Fprintln(o.opts.Out, tb.String())
}
