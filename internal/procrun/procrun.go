// Package procrun runs external commands under a wall-clock bound. Capture
// tools here are built to run until told to stop; the bounded runner is the
// only thing that makes their runtime deterministic.
package procrun

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/andypayne/cambanzo/internal/logging"
)

// LaunchError reports a command that could not be started at all (missing
// executable, permissions). It is fatal to the source that asked for the
// run, not to the cycle.
type LaunchError struct {
	Name string
	Err  error
}

func (e *LaunchError) Error() string { return fmt.Sprintf("launch %s: %v", e.Name, e.Err) }

func (e *LaunchError) Unwrap() error { return e.Err }

// Runner executes commands with merged stdout/stderr and a forced-kill
// deadline.
type Runner struct {
	log *slog.Logger
}

// New returns a Runner logging under the "procrun" component.
func New() *Runner {
	return &Runner{log: logging.New("procrun")}
}

// RunFor starts argv, reads its merged stdout+stderr line by line, and kills
// the process once d elapses. It returns the lines collected before the
// stream closed, in arrival order. Lines emitted concurrently with the kill
// may or may not appear; that is accepted nondeterminism.
//
// The process's own exit status is deliberately ignored: capture tools are
// judged by the files they leave behind, not by how they die.
func (r *Runner) RunFor(d time.Duration, argv []string) ([]string, error) {
	if len(argv) == 0 {
		return nil, &LaunchError{Name: "(empty)", Err: errors.New("empty command")}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	// Own process group, so the deadline kill reaches helpers the tool forks
	// (they would otherwise hold the pipe open past the deadline).
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// One pipe for both streams, matching how the tool's operators see it.
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("output pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, &LaunchError{Name: argv[0], Err: err}
	}
	// The child holds its own copies of the write end.
	pw.Close()

	r.log.Debug("started", "cmd", argv[0], "pid", cmd.Process.Pid, "deadline", d)

	// Kill timer: the single auxiliary goroutine. It either fires at the
	// deadline or is released when the process finishes on its own. Kill
	// errors (already-exited process) are swallowed.
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-time.After(d):
			r.log.Debug("deadline reached, killing", "cmd", argv[0], "pid", cmd.Process.Pid)
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		case <-done:
		}
	}()

	var lines []string
	sc := bufio.NewScanner(pr)
	// Capture tools write progress lines past the scanner's 64KB default.
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		r.log.Warn("output collection stopped early", "cmd", argv[0], "error", err)
	}
	pr.Close()

	// Reap; exit state is irrelevant whether natural or killed.
	_ = cmd.Wait()
	close(done)
	wg.Wait()

	r.log.Debug("finished", "cmd", argv[0], "lines", len(lines))
	return lines, nil
}
