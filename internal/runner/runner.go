package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/torosent/apiperf/internal/metrics"
)

// ErrPacingInterrupted is returned when the wait between two tasks is cancelled.
var ErrPacingInterrupted = errors.New("pacing interrupted")

// State is the lifecycle position of a Runner.
type State int

const (
	StatePending State = iota
	StateRunning
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Task identifies one call of a run by its 0-based index.
type Task struct {
	Index int
	Total int
}

// Last reports whether t is the final task of the run.
func (t Task) Last() bool { return t.Index == t.Total-1 }

// Tasks returns the ordered task descriptors of a run of n calls.
func Tasks(n int) []Task {
	if n <= 0 {
		return nil
	}
	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = Task{Index: i, Total: n}
	}
	return tasks
}

// Runner executes the tasks of one run strictly one after another.
type Runner struct {
	opt Options

	mu        sync.Mutex
	state     State
	completed int
}

func New(opt Options) (*Runner, error) {
	if opt.Config.IsZero() {
		return nil, errors.New("runner: request config is required")
	}
	if opt.Executor == nil {
		return nil, errors.New("runner: executor is required")
	}
	opt.normalize()
	return &Runner{opt: opt}, nil
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Progress returns the number of finished tasks and the task limit.
func (r *Runner) Progress() (completed, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed, r.opt.Config.TaskLimit()
}

// Run executes every task in order and returns one result per task, index
// aligned. A cancelled pacing wait aborts the run with ErrPacingInterrupted and
// no results. A Runner can only be run once.
func (r *Runner) Run(ctx context.Context) ([]metrics.TestResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !r.transition(StatePending, StateRunning) {
		return nil, fmt.Errorf("runner: cannot run from state %s", r.State())
	}

	cfg := r.opt.Config
	tasks := Tasks(cfg.TaskLimit())
	results := make([]metrics.TestResult, 0, len(tasks))

	for _, task := range tasks {
		results = append(results, r.opt.Executor.Execute(ctx, cfg))

		r.mu.Lock()
		r.completed = task.Index + 1
		r.mu.Unlock()
		r.opt.Progress(task.Index+1, task.Total)

		if task.Last() {
			break
		}
		if err := r.opt.Pacer.Wait(ctx, cfg.WaitTime()); err != nil {
			r.transition(StateRunning, StateAborted)
			return nil, fmt.Errorf("%w after task %d of %d: %w", ErrPacingInterrupted, task.Index+1, task.Total, err)
		}
	}

	r.transition(StateRunning, StateCompleted)
	return results, nil
}

func (r *Runner) transition(from, to State) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != from {
		return false
	}
	r.state = to
	return true
}
