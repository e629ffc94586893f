// Package archive relocates a cycle's image files into a per-cycle
// directory named by the epoch-millisecond timestamp of the move.
package archive

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andypayne/cambanzo/internal/logging"
)

// MoveFailure is one file that could not be moved into the cycle directory.
type MoveFailure struct {
	Path string
	Err  error
}

// PartialError reports moves that failed. Files moved before the failures
// stay where they landed; the caller decides whether partial archival is
// fatal.
type PartialError struct {
	Failures []MoveFailure
}

func (e *PartialError) Error() string {
	paths := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		paths[i] = f.Path
	}
	return fmt.Sprintf("archive: %d file(s) not moved: %s", len(e.Failures), strings.Join(paths, ", "))
}

// Archiver moves files under a base directory, one subdirectory per cycle.
type Archiver struct {
	log *slog.Logger

	// now stamps the cycle directory. Swapped in tests.
	now func() time.Time
}

// New returns an Archiver.
func New() *Archiver {
	return &Archiver{
		log: logging.New("archive"),
		now: time.Now,
	}
}

// Archive moves the given files into a fresh timestamped directory under
// baseDir and returns that directory. Base names are preserved, so two
// captures with the same name in one cycle would collide; in practice the
// capture tool namespaces files by camera directory before they get here.
//
// On failure to move some files the directory and an error describing the
// leftovers are both returned.
func (a *Archiver) Archive(files []string, baseDir string) (string, error) {
	dir := filepath.Join(baseDir, strconv.FormatInt(a.now().UnixMilli(), 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	var failures []MoveFailure
	for _, f := range files {
		dst := filepath.Join(dir, filepath.Base(f))
		if err := os.Rename(f, dst); err != nil {
			a.log.Warn("file not archived", "path", f, "error", err)
			failures = append(failures, MoveFailure{Path: f, Err: err})
		}
	}
	a.log.Info("cycle archived", "dir", dir, "moved", len(files)-len(failures), "failed", len(failures))

	if len(failures) > 0 {
		return dir, &PartialError{Failures: failures}
	}
	return dir, nil
}
