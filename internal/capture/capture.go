// Package capture produces the cycle's input images from the configured
// acquisition sources: a time-boxed capture tool run followed by a scan of
// its output tree, and/or an authenticated HTTP snapshot fetch.
package capture

import (
	"context"
	"log/slog"
	"time"

	"github.com/andypayne/cambanzo/internal/logging"
)

// ProcessRunner bounds a capture tool invocation to a wall-clock duration.
type ProcessRunner interface {
	RunFor(d time.Duration, argv []string) ([]string, error)
}

// Acquirer runs acquisition sources in order. Source failures are isolated:
// a source that fails contributes zero images and the rest still run.
type Acquirer struct {
	runner ProcessRunner
	log    *slog.Logger
	now    func() time.Time
}

// NewAcquirer returns an Acquirer using the given runner for TimedProcess
// sources.
func NewAcquirer(runner ProcessRunner) *Acquirer {
	return &Acquirer{
		runner: runner,
		log:    logging.New("capture"),
		now:    time.Now,
	}
}

// Acquire runs every source in the given order and returns the concatenated
// image paths. No deduplication and no ordering guarantee beyond source
// order.
func (a *Acquirer) Acquire(ctx context.Context, sources []Source) []string {
	var images []string
	for _, src := range sources {
		switch src.Kind {
		case TimedProcess:
			images = append(images, a.runCapture(src)...)
		case HTTPSnapshot:
			path, err := a.fetchSnapshot(ctx, src)
			if err != nil {
				a.log.Warn("snapshot source failed", "url", src.URL, "error", err)
				continue
			}
			a.log.Info("snapshot fetched", "path", path)
			images = append(images, path)
		}
	}
	return images
}

func (a *Acquirer) runCapture(src Source) []string {
	out, err := a.runner.RunFor(src.Timeout, src.Command)
	if err != nil {
		a.log.Warn("capture tool failed to start", "error", err)
		return nil
	}
	a.log.Debug("capture tool finished", "lines", len(out))

	ids, err := CameraIDs(src.ScanPath)
	if err != nil {
		a.log.Warn("capture scan failed", "path", src.ScanPath, "error", err)
		return nil
	}
	found, err := ScanImages(src.ScanPath)
	if err != nil {
		a.log.Warn("capture scan failed", "path", src.ScanPath, "error", err)
		return nil
	}
	a.log.Info("capture scan", "cameras", len(ids), "images", len(found))
	return found
}
