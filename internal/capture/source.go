package capture

import (
	"time"

	"github.com/andypayne/cambanzo/internal/config"
)

// Kind selects which fields of a Source are meaningful.
type Kind int

const (
	// TimedProcess runs the capture tool under a deadline, then scans the
	// capture tree for the images it left behind.
	TimedProcess Kind = iota
	// HTTPSnapshot fetches one still image over digest-authenticated HTTP.
	HTTPSnapshot
)

// Source is one configured acquisition source. Sources are immutable once
// built from config; the zero value is not a usable source.
type Source struct {
	Kind Kind

	// TimedProcess fields.
	Command  []string      // capture tool argv
	Timeout  time.Duration // forced-kill deadline
	ScanPath string        // root of the capture tree

	// HTTPSnapshot fields.
	URL      string
	Username string
	Password string
	Prefix   string // output file = Prefix + epoch-millis + ".jpg"
}

// Sources derives the ordered source list from config: capture tool first,
// snapshot second. A source with no command/URL is simply absent.
func Sources(cfg *config.Config) []Source {
	var srcs []Source
	if len(cfg.Capture.Command) > 0 {
		srcs = append(srcs, Source{
			Kind:     TimedProcess,
			Command:  cfg.Capture.Command,
			Timeout:  time.Duration(cfg.Capture.RuntimeSeconds) * time.Second,
			ScanPath: cfg.Capture.Path,
		})
	}
	if cfg.Snapshot.URL != "" {
		srcs = append(srcs, Source{
			Kind:     HTTPSnapshot,
			URL:      cfg.Snapshot.URL,
			Username: cfg.Snapshot.Username,
			Password: cfg.Snapshot.Password,
			Prefix:   cfg.Snapshot.Prefix,
		})
	}
	return srcs
}
