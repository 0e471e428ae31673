package export

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sync"
)

// ErrExportInProgress rejects a second export while one is running.
var ErrExportInProgress = errors.New("an export is already in progress")

// ErrNoActiveExport is returned when cancel is requested while idle.
var ErrNoActiveExport = errors.New("no export in progress")

// LaunchError reports that the encoder process could not be started at
// all, typically a missing or unrunnable ffmpeg binary.
type LaunchError struct {
	Err error
}

// Error formats the launch failure for the UI.
func (e *LaunchError) Error() string {
	return fmt.Sprintf("cannot start encoder process: %v", e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Outcome is the single terminal signal of one export job.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// Callbacks receive progress and the terminal outcome of a job. OnFinished
// fires exactly once, after every temp file has been handled.
type Callbacks struct {
	OnProgress func(percent float64)
	OnFinished func(outcome Outcome, err error)
}

// process is a started external encode the supervisor can wait on or kill.
type process interface {
	Wait() error
	Kill() error
}

// launchFunc starts a command and exposes its diagnostic stream.
type launchFunc func(name string, args []string) (process, io.ReadCloser, error)

// execProcess adapts *exec.Cmd to the process interface.
type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}

func (p *execProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// launchExec starts the command with its stderr exposed for incremental
// progress reads. ffmpeg writes status lines to stderr, not stdout.
func launchExec(name string, args []string) (process, io.ReadCloser, error) {
	cmd := exec.Command(name, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}
	return &execProcess{cmd: cmd}, stderr, nil
}

// jobHandle is the supervisor's record of the one running export.
type jobHandle struct {
	proc      process
	cancelled bool
}

// Supervisor runs one export process at a time as a cancellable,
// progress-observable background operation. Temp files handed to Start
// are deleted after process exit on every path, never before.
type Supervisor struct {
	launch launchFunc
	remove func(string) error

	mu     sync.Mutex
	active *jobHandle
}

// NewSupervisor builds a supervisor backed by os/exec.
func NewSupervisor() *Supervisor {
	return &Supervisor{
		launch: launchExec,
		remove: os.Remove,
	}
}

// NewSupervisorForTests builds a supervisor with injectable dependencies.
func NewSupervisorForTests(launch launchFunc, remove func(string) error) *Supervisor {
	return &Supervisor{launch: launch, remove: remove}
}

// Running reports whether an export process is currently active.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

// Start launches the built command in the background. totalSeconds is the
// expected output duration used for percent computation; zero means
// unknown and suppresses progress reports. Temp files are removed before
// returning a launch error, so the caller owns them only on success.
func (s *Supervisor) Start(cmd Command, tempFiles []string, totalSeconds float64, cb Callbacks) error {
	s.mu.Lock()
	if s.active != nil {
		s.mu.Unlock()
		return ErrExportInProgress
	}

	proc, stderr, err := s.launch(cmd.Name, cmd.Args)
	if err != nil {
		s.mu.Unlock()
		s.removeAll(tempFiles)
		return &LaunchError{Err: err}
	}

	handle := &jobHandle{proc: proc}
	s.active = handle
	s.mu.Unlock()

	go s.superviseJob(handle, stderr, tempFiles, totalSeconds, cb)
	return nil
}

// Cancel forcibly terminates the running export, if any. The terminal
// cleanup path still runs and reports OutcomeCancelled. A process that
// already exited on its own keeps its real outcome; the cancelled flag
// is set only once the kill has actually landed.
func (s *Supervisor) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return ErrNoActiveExport
	}
	if err := s.active.proc.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return ErrNoActiveExport
		}
		return err
	}
	s.active.cancelled = true
	return nil
}

// superviseJob drains the diagnostic stream, waits for exit, cleans up,
// and emits the single terminal signal.
func (s *Supervisor) superviseJob(handle *jobHandle, stderr io.ReadCloser, tempFiles []string, totalSeconds float64, cb Callbacks) {
	parser := &progressParser{}
	buf := make([]byte, 4096)
	for {
		n, err := stderr.Read(buf)
		if n > 0 {
			for _, elapsed := range parser.Feed(string(buf[:n])) {
				if percent, ok := percentOf(elapsed, totalSeconds); ok && cb.OnProgress != nil {
					cb.OnProgress(percent)
				}
			}
		}
		if err != nil {
			break
		}
	}

	waitErr := handle.proc.Wait()

	s.mu.Lock()
	cancelled := handle.cancelled
	s.active = nil
	s.mu.Unlock()

	// Temp file deletion is strictly ordered after process exit; the
	// filter chain reads the files until the encoder terminates.
	s.removeAll(tempFiles)

	if cb.OnFinished == nil {
		return
	}
	switch {
	case cancelled:
		cb.OnFinished(OutcomeCancelled, nil)
	case waitErr != nil:
		cb.OnFinished(OutcomeFailed, waitErr)
	default:
		cb.OnFinished(OutcomeSucceeded, nil)
	}
}

// removeAll deletes job temp files best-effort: a failed removal is
// logged and never blocks the remaining deletions or the outcome signal.
func (s *Supervisor) removeAll(paths []string) {
	for _, path := range paths {
		if err := s.remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("remove temp subtitle file %s: %v", path, err)
		}
	}
}
