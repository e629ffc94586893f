// Package detect invokes the external object-detection tool over a batch of
// images and adapts its textual output into detection records. The tool's
// output grammar stops at this boundary; nothing downstream parses text.
package detect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/andypayne/cambanzo/internal/config"
	"github.com/andypayne/cambanzo/internal/logging"
)

// Record is one detected object from a batch run. Labels are grouped per
// run, not attributed to individual images; the tool reports them for the
// whole invocation.
type Record struct {
	Label      string
	Confidence int // percent, 0-100
}

// ToolError reports a detection tool that exited nonzero. It aborts the
// batch: no partial records are returned.
type ToolError struct {
	ExitCode int
	Output   string // tail of the merged output, for diagnostics
}

func (e *ToolError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("detection tool exited %d", e.ExitCode)
	}
	return fmt.Sprintf("detection tool exited %d: %s", e.ExitCode, e.Output)
}

// Detector runs the configured tool once per batch. The tool expects to be
// invoked from its install directory with paths relative to it; Dir is set
// on the child process so our own working directory is never touched.
type Detector struct {
	cfg config.Detect
	log *slog.Logger

	// run executes an assembled command line and returns merged output.
	// Swapped in tests.
	run func(ctx context.Context, dir, cmdline string) ([]byte, error)
}

// New returns a Detector for the given tool configuration.
func New(cfg config.Detect) *Detector {
	return &Detector{
		cfg: cfg,
		log: logging.New("detect"),
		run: runShell,
	}
}

func runShell(ctx context.Context, dir, cmdline string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdline)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Detect runs one tool invocation over the whole batch and returns the
// records parsed from its output plus the expected output image paths, one
// per input in input order. Output files are not stat'ed here; whoever opens
// them owns that failure.
func (d *Detector) Detect(ctx context.Context, images []string) ([]Record, []string, error) {
	if len(images) == 0 {
		return nil, nil, errors.New("detect: empty image batch")
	}

	cmdline := d.commandLine(images)
	d.log.Debug("running detection tool", "dir", d.cfg.Dir, "cmd", cmdline)

	out, err := d.run(ctx, d.cfg.Dir, cmdline)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, fmt.Errorf("detection tool: %w", ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, nil, &ToolError{ExitCode: exitErr.ExitCode(), Output: outputTail(out, 3)}
		}
		return nil, nil, fmt.Errorf("run detection tool: %w", err)
	}

	records := ParseRecords(string(out))
	outputs := d.OutputPaths(len(images))
	d.log.Info("detection finished", "images", len(images), "objects", len(records))
	return records, outputs, nil
}

// commandLine fills the configured template. {images} expands to the
// space-joined batch so the tool starts once, not once per image.
func (d *Detector) commandLine(images []string) string {
	r := strings.NewReplacer(
		"{cfg}", d.cfg.Cfg,
		"{weights}", d.cfg.Weights,
		"{data}", d.cfg.Data,
		"{out}", d.cfg.OutPrefix,
		"{images}", strings.Join(images, " "),
	)
	return r.Replace(d.cfg.Command)
}

// OutputPaths synthesizes the paths the tool is expected to write: base
// output path, double underscore, two-digit index, in input order. The
// naming convention is the tool's contract; it is not verified here.
func (d *Detector) OutputPaths(n int) []string {
	paths := make([]string, n)
	for i := range paths {
		p := fmt.Sprintf("%s__%02d.jpg", d.cfg.OutPrefix, i)
		if !filepath.IsAbs(p) {
			p = filepath.Join(d.cfg.Dir, p)
		}
		paths[i] = p
	}
	return paths
}

func outputTail(out []byte, n int) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, " | "))
}
