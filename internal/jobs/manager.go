package jobs

import (
	"errors"
	"fmt"
	"sync"

	"dual-subtitle-burner/internal/domain"
)

// ErrJobAlreadyRunning is returned when starting a second export job.
var ErrJobAlreadyRunning = errors.New("an export is already running")

// ErrNoRunningJob is returned when cancel is requested for idle state.
var ErrNoRunningJob = errors.New("no running export")

// Manager tracks the single allowed export job and its transitions.
type Manager struct {
	mu      sync.RWMutex
	current domain.Job
}

// NewManager creates a manager in idle state.
func NewManager() *Manager {
	return &Manager{
		current: domain.Job{
			Status: domain.JobStatusIdle,
		},
	}
}

// Start creates a new job and moves it to running state.
func (m *Manager) Start(jobID, outputPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.Status == domain.JobStatusRunning {
		return ErrJobAlreadyRunning
	}

	m.current = domain.Job{
		ID:         jobID,
		Status:     domain.JobStatusRunning,
		OutputPath: outputPath,
	}
	return nil
}

// Transition validates and applies a state change for the current job.
func (m *Manager) Transition(status domain.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.ID == "" && status != domain.JobStatusIdle {
		return fmt.Errorf("cannot transition without an active job")
	}
	if status == m.current.Status {
		return nil
	}
	if !isValidTransition(m.current.Status, status) {
		return fmt.Errorf("invalid transition: %s -> %s", m.current.Status, status)
	}

	m.current.Status = status
	return nil
}

// Current returns a snapshot of the current job.
func (m *Manager) Current() domain.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// IsRunning reports whether an export is currently active.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Status == domain.JobStatusRunning
}

// isValidTransition enforces the job state machine edges. A job in a
// terminal state is replaced by the next Start, which counts as a
// transition back through running.
func isValidTransition(from, to domain.JobStatus) bool {
	switch from {
	case domain.JobStatusIdle:
		return to == domain.JobStatusRunning
	case domain.JobStatusRunning:
		return to == domain.JobStatusSucceeded || to == domain.JobStatusFailed || to == domain.JobStatusCancelled
	case domain.JobStatusSucceeded, domain.JobStatusFailed, domain.JobStatusCancelled:
		return to == domain.JobStatusIdle || to == domain.JobStatusRunning
	default:
		return false
	}
}
