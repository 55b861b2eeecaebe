package terminal

import (
	"context"
	"sync"
	"time"

	"github.com/datasprayio/dataspray/internal/shared/id"
)

// State is the lifecycle position of one execution.
type State int

const (
	Idle State = iota
	Running
	Completed
	TimedOut
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Completed:
		return "completed"
	case TimedOut:
		return "timed_out"
	default:
		return "idle"
	}
}

// Result is the aggregated outcome of a non-streaming execution.
type Result struct {
	Output   []byte
	ExitCode int
	Elapsed  time.Duration
	TimedOut bool
}

// ExecutionInfo is the public representation of an in-flight execution
type ExecutionInfo struct {
	ID        string    `json:"id"`
	Command   string    `json:"command"`
	StartedAt time.Time `json:"startedAt"`
	State     string    `json:"state"`
	PTY       bool      `json:"pty"`
}

// Recorder receives the outcome of every finished execution. mode is
// "simple" or "stream".
type Recorder interface {
	RecordExecution(mode string, exitCode int, duration time.Duration)
}

// execution tracks one running command
type execution struct {
	ID        id.ExecID
	Command   string
	StartedAt time.Time
	pty       bool

	// stopped is cancelled by Shutdown, and by collect once it returns.
	stopped context.Context
	stop    context.CancelFunc

	mu    sync.RWMutex
	state State
}

func (e *execution) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

func (e *execution) info() ExecutionInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return ExecutionInfo{
		ID:        e.ID.String(),
		Command:   e.Command,
		StartedAt: e.StartedAt,
		State:     e.state.String(),
		PTY:       e.pty,
	}
}
