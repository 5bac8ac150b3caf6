package tasks

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"footage-archive/internal/logging"
	"footage-archive/internal/mediatypes"
	"footage-archive/internal/metrics"

	"github.com/google/uuid"
)

// ErrRunnerStopped is returned by Submit once Stop has been called.
var ErrRunnerStopped = errors.New("task runner stopped")

// Option configures a Runner.
type Option func(*Runner)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// Runner executes submitted jobs on a single worker goroutine.
type Runner struct {
	exec Executor
	now  func() time.Time

	mu      sync.RWMutex
	tasks   map[string]*Task
	order   []string
	queue   []string
	stopped bool

	wake      chan struct{}
	stopChan  chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	started   bool

	jobMu     sync.Mutex
	jobCancel context.CancelFunc
}

// NewRunner creates a runner that hands jobs to exec. Call Start to begin
// processing.
func NewRunner(exec Executor, opts ...Option) *Runner {
	r := &Runner{
		exec:     exec,
		now:      time.Now,
		tasks:    make(map[string]*Task),
		wake:     make(chan struct{}, 1),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the worker. Jobs inherit ctx; cancelling it aborts the
// running job but does not stop the worker.
func (r *Runner) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		r.mu.Lock()
		r.started = true
		r.mu.Unlock()
		go r.loop(ctx)
		logging.Info("Task runner started")
	})
}

// Stop prevents new submissions and waits for the running job to finish.
// Queued tasks stay QUEUED. If ctx expires first the running job's context
// is cancelled and ctx.Err() is returned.
func (r *Runner) Stop(ctx context.Context) error {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.stopped = true
		close(r.stopChan)
		r.mu.Unlock()
	})

	r.mu.RLock()
	started := r.started
	r.mu.RUnlock()
	if !started {
		return nil
	}

	select {
	case <-r.done:
		logging.Info("Task runner stopped")
		return nil
	case <-ctx.Done():
		r.jobMu.Lock()
		if r.jobCancel != nil {
			r.jobCancel()
		}
		r.jobMu.Unlock()
		<-r.done
		return ctx.Err()
	}
}

// Submit registers job and queues it behind any earlier submissions.
func (r *Runner) Submit(job Job) (Task, error) {
	if job == nil {
		return Task{}, fmt.Errorf("%w: nil job", mediatypes.ErrInvalidInput)
	}
	name, desc := job.describe()
	return r.SubmitNamed(name, desc, job)
}

// SubmitNamed is Submit with an explicit name and description.
func (r *Runner) SubmitNamed(name, description string, job Job) (Task, error) {
	if job == nil {
		return Task{}, fmt.Errorf("%w: nil job", mediatypes.ErrInvalidInput)
	}

	now := r.now()
	t := &Task{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Kind:        job.Kind(),
		Status:      StatusPending,
		ScheduledAt: now,
		LastUpdated: now,
		job:         job,
	}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return Task{}, ErrRunnerStopped
	}
	t.Status = StatusQueued
	r.tasks[t.ID] = t
	r.order = append(r.order, t.ID)
	r.queue = append(r.queue, t.ID)
	queued := len(r.queue)
	snapshot := t.snapshot()
	r.mu.Unlock()

	metrics.TasksSubmitted.WithLabelValues(string(t.Kind)).Inc()
	metrics.TasksQueued.Set(float64(queued))
	logging.Info("Task %s queued: %s", t.ID, description)

	select {
	case r.wake <- struct{}{}:
	default:
	}

	return snapshot, nil
}

// Get returns a snapshot of the task with id.
func (r *Runner) Get(id string) (Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return Task{}, false
	}
	return t.snapshot(), true
}

// List returns snapshots of every registered task in submission order.
func (r *Runner) List() []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Task, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tasks[id].snapshot())
	}
	return out
}

// ClearCompleted removes every finished task from the registry and returns
// them in submission order.
func (r *Runner) ClearCompleted() []Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cleared []Task
	kept := r.order[:0]
	for _, id := range r.order {
		t := r.tasks[id]
		if t.Status.Terminal() {
			cleared = append(cleared, t.snapshot())
			delete(r.tasks, id)
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept

	if len(cleared) > 0 {
		logging.Info("Cleared %d finished tasks", len(cleared))
	}
	return cleared
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)

	for {
		select {
		case <-r.stopChan:
			return
		default:
		}

		t, ok := r.dequeue()
		if !ok {
			select {
			case <-r.wake:
				continue
			case <-r.stopChan:
				return
			}
		}

		r.run(ctx, t)
	}
}

// dequeue pops the next task and marks it RUNNING.
func (r *Runner) dequeue() (*Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.queue) == 0 {
		return nil, false
	}
	id := r.queue[0]
	r.queue = r.queue[1:]
	metrics.TasksQueued.Set(float64(len(r.queue)))

	t := r.tasks[id]
	now := r.now()
	t.Status = StatusRunning
	t.StartedAt = &now
	t.LastUpdated = now
	return t, true
}

func (r *Runner) run(parent context.Context, t *Task) {
	ctx, cancel := context.WithCancel(parent)
	r.jobMu.Lock()
	r.jobCancel = cancel
	r.jobMu.Unlock()
	defer func() {
		r.jobMu.Lock()
		r.jobCancel = nil
		r.jobMu.Unlock()
		cancel()
	}()

	metrics.TaskRunning.Set(1)
	defer metrics.TaskRunning.Set(0)

	logging.Info("Task %s started: %s", t.ID, t.Description)
	start := time.Now()
	err := r.execute(ctx, t.job)
	metrics.TaskDuration.WithLabelValues(string(t.Kind)).Observe(time.Since(start).Seconds())

	r.mu.Lock()
	t.LastUpdated = r.now()
	if err != nil {
		t.Status = StatusFailed
		t.Error = err.Error()
		t.ErrorKind = mediatypes.KindOf(err)
	} else {
		t.Status = StatusCompleted
	}
	status := t.Status
	r.mu.Unlock()

	metrics.TasksFinished.WithLabelValues(string(t.Kind), string(status)).Inc()
	if err != nil {
		logging.Error("Task %s failed after %v: %v", t.ID, time.Since(start).Round(time.Millisecond), err)
		return
	}
	logging.Info("Task %s completed in %v", t.ID, time.Since(start).Round(time.Millisecond))
}

// execute runs the job, turning a panic into an internal error.
func (r *Runner) execute(ctx context.Context, job Job) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.Error("Task panicked: %v\n%s", rec, debug.Stack())
			err = &panicError{value: rec}
		}
	}()
	return r.exec.Execute(ctx, job)
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("job panicked: %v", e.value)
}

func (t *Task) snapshot() Task {
	c := *t
	if t.StartedAt != nil {
		started := *t.StartedAt
		c.StartedAt = &started
	}
	c.job = nil
	return c
}
