package job

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Runner produces one artifact for a niche. A returned error fails only
// that iteration, never the whole job.
type Runner interface {
	RunOne(ctx context.Context, niche string) error
}

// Coordinator owns the live job collection and its history. Every
// submitted job gets exactly one worker goroutine; control operations
// and workers serialize on a single mutex, and paused workers wait on
// the condition variable instead of polling.
type Coordinator struct {
	runner    Runner
	retention time.Duration

	mu      sync.Mutex
	cond    *sync.Cond
	jobs    map[string]*Job
	cancels map[string]context.CancelFunc
	history []Job
}

// NewCoordinator creates a Coordinator. retention is how long terminal
// jobs stay visible in the live set before removal.
func NewCoordinator(runner Runner, retention time.Duration) *Coordinator {
	c := &Coordinator{
		runner:    runner,
		retention: retention,
		jobs:      make(map[string]*Job),
		cancels:   make(map[string]context.CancelFunc),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Submit validates the request, registers a new job and starts its
// worker. It never blocks on pipeline execution.
func (c *Coordinator) Submit(niche string, count int) (string, error) {
	if strings.TrimSpace(niche) == "" {
		return "", fmt.Errorf("%w: niche must not be empty", ErrInvalidInput)
	}
	if count < 1 {
		return "", fmt.Errorf("%w: count must be at least 1", ErrInvalidInput)
	}

	id := uuid.NewString()[:8]
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.jobs[id] = &Job{
		ID:             id,
		Niche:          niche,
		RequestedCount: count,
		Status:         StatusInProgress,
		Message:        "Starting Shorts automation...",
		Progress:       0,
		StartedAt:      time.Now().UTC(),
	}
	c.cancels[id] = cancel
	c.mu.Unlock()

	go c.work(ctx, id, niche, count)

	log.Printf("[jobs] Submitted job %s: %d video(s) for niche %q", id, count, niche)
	return id, nil
}

// Pause marks a live job paused. Idempotent on already-paused jobs.
func (c *Coordinator) Pause(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	j, ok := c.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if j.Status == StatusInProgress {
		j.Status = StatusPaused
		log.Printf("[jobs] Paused job %s", id)
	}
	return nil
}

// Resume returns a paused job to in_progress and wakes its worker.
func (c *Coordinator) Resume(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	j, ok := c.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if j.Status == StatusPaused {
		j.Status = StatusInProgress
		c.cond.Broadcast()
		log.Printf("[jobs] Resumed job %s", id)
	}
	return nil
}

// Cancel terminates a job: the record moves to history as failed with
// the fixed cancellation message, in the same critical section that
// removes it from the live set, so no snapshot ever sees both. The
// worker observes cancellation through its context and through the
// record's disappearance at its next checkpoint.
func (c *Coordinator) Cancel(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	j, ok := c.jobs[id]
	if !ok {
		return ErrNotFound
	}
	// Terminal jobs still visible during their retention window are
	// already archived; re-archiving would double-count them.
	if j.Status == StatusCompleted || j.Status == StatusFailed {
		return nil
	}

	j.Status = StatusFailed
	j.Message = CancelledMessage
	c.history = append(c.history, *j)
	delete(c.jobs, id)

	if cancel, ok := c.cancels[id]; ok {
		cancel()
		delete(c.cancels, id)
	}
	c.cond.Broadcast()

	log.Printf("[jobs] Cancelled job %s", id)
	return nil
}

// Snapshot is a read-only copy of the coordinator's observable state.
type Snapshot struct {
	Jobs        []Job `json:"jobs"`
	ActiveJobs  int   `json:"activeJobs"`
	SuccessRate int   `json:"successRate"`
}

// Status returns copies of all live jobs plus aggregate stats. The
// success rate is completed/(completed+failed) over history, 100 when
// history is empty.
func (c *Coordinator) Status() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	jobs := make([]Job, 0, len(c.jobs))
	for _, j := range c.jobs {
		jobs = append(jobs, *j)
	}

	return Snapshot{
		Jobs:        jobs,
		ActiveJobs:  len(jobs),
		SuccessRate: c.successRateLocked(),
	}
}

// History returns a copy of all archived jobs.
func (c *Coordinator) History() []Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Job{}, c.history...)
}

func (c *Coordinator) successRateLocked() int {
	if len(c.history) == 0 {
		return 100
	}
	completed := 0
	for _, j := range c.history {
		if j.Status == StatusCompleted {
			completed++
		}
	}
	return completed * 100 / len(c.history)
}

// work is the per-job worker. Stage failures are recorded in the job
// message and the loop continues; only a panic fails the whole job.
func (c *Coordinator) work(ctx context.Context, id, niche string, count int) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[jobs] Job %s worker panicked: %v", id, r)
			c.fail(id, fmt.Sprintf("Error: %v", r))
		}
	}()

	perVideo := 90 / count

	for i := 0; i < count; i++ {
		if !c.awaitRunnable(id) {
			log.Printf("[jobs] Job %s cancelled, worker exiting", id)
			return
		}

		c.update(id, fmt.Sprintf("Generating Short %d of %d for %s...", i+1, count, niche), 10+i*90/count)

		if err := c.runner.RunOne(ctx, niche); err != nil {
			if ctx.Err() != nil {
				log.Printf("[jobs] Job %s cancelled mid-iteration, worker exiting", id)
				return
			}
			log.Printf("[jobs] ⚠️  Job %s: Short %d failed: %v", id, i+1, err)
			c.update(id, fmt.Sprintf("Error on Short %d: %v", i+1, err), -1)
			continue
		}

		progress := 10 + (i+1)*perVideo
		if progress > 95 {
			progress = 95
		}
		c.update(id, fmt.Sprintf("Generated %d/%d Shorts for niche: %s", i+1, count, niche), progress)
	}

	c.complete(id, niche, count)
}

// awaitRunnable blocks while the job is paused and reports whether the
// worker may proceed. It returns false once the job has been cancelled.
func (c *Coordinator) awaitRunnable(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		j, ok := c.jobs[id]
		if !ok || j.Status == StatusFailed {
			return false
		}
		if j.Status != StatusPaused {
			return true
		}
		c.cond.Wait()
	}
}

// update sets message and, when progress >= 0, the progress value.
// Updates after cancellation are dropped with the record already gone.
func (c *Coordinator) update(id, message string, progress int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	j, ok := c.jobs[id]
	if !ok {
		return
	}
	j.Message = message
	if progress >= 0 {
		j.Progress = progress
	}
}

func (c *Coordinator) complete(id, niche string, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	j, ok := c.jobs[id]
	if !ok {
		return
	}
	j.Status = StatusCompleted
	j.Progress = 100
	j.Message = fmt.Sprintf("Created %d Shorts for niche: %s", count, niche)
	c.history = append(c.history, *j)
	c.scheduleRemovalLocked(id)

	log.Printf("[jobs] ✅ Job %s completed", id)
}

func (c *Coordinator) fail(id, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	j, ok := c.jobs[id]
	if !ok {
		return
	}
	j.Status = StatusFailed
	j.Message = message
	c.history = append(c.history, *j)
	c.scheduleRemovalLocked(id)
}

// scheduleRemovalLocked drops a terminal job from the live set after
// the retention delay. Callers must hold the lock.
func (c *Coordinator) scheduleRemovalLocked(id string) {
	if cancel, ok := c.cancels[id]; ok {
		cancel()
		delete(c.cancels, id)
	}

	time.AfterFunc(c.retention, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.jobs, id)
	})
}
