package jobs

import (
	"context"
	"sync"
	"time"

	"statustracker/pkg/logger"
)

// Job is a task repeated every Interval.
type Job interface {
	Name() string
	Interval() time.Duration
	Run(ctx context.Context) error
}

type entry struct {
	job     Job
	aligned bool
}

// Manager runs registered jobs until its context ends.
type Manager struct {
	ctx     context.Context
	cancel  context.CancelFunc
	entries []entry
	started bool

	mu sync.Mutex
	wg sync.WaitGroup
}

func NewManager(parent context.Context) *Manager {
	ctx, cancel := context.WithCancel(parent)
	return &Manager{ctx: ctx, cancel: cancel}
}

// Register adds a job that runs once at Start and then every interval.
func (m *Manager) Register(job Job) {
	m.add(job, false)
}

// RegisterAligned adds a job that runs on interval boundaries only, see NextAligned.
func (m *Manager) RegisterAligned(job Job) {
	m.add(job, true)
}

func (m *Manager) add(job Job, aligned bool) {
	if job == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry{job: job, aligned: aligned})
}

// Start launches every registered job. Later calls do nothing.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	entries := append([]entry(nil), m.entries...)
	m.mu.Unlock()

	for _, e := range entries {
		m.wg.Add(1)
		go m.loop(e)
	}
}

func (m *Manager) Stop() {
	m.cancel()
}

func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) loop(e entry) {
	defer m.wg.Done()

	interval := e.job.Interval()
	if interval <= 0 {
		interval = time.Minute
	}

	var wait time.Duration
	for {
		if e.aligned {
			now := time.Now()
			next := NextAligned(now, interval)
			wait = next.Sub(now)
			logger.DebugCtx(m.ctx, "job %s next run at %s", e.job.Name(), next.Format("15:04:05"))
		}

		timer := time.NewTimer(wait)
		select {
		case <-m.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		m.run(e.job)
		wait = interval
	}
}

func (m *Manager) run(job Job) {
	start := time.Now()
	if err := job.Run(m.ctx); err != nil {
		logger.WarnCtx(m.ctx, "job %s failed after %v: %v", job.Name(), time.Since(start).Round(time.Millisecond), err)
		return
	}
	logger.DebugCtx(m.ctx, "job %s finished in %v", job.Name(), time.Since(start).Round(time.Millisecond))
}

// NextAligned returns the first multiple of interval after now, counted from
// the zero time. For intervals dividing an hour this is a wall-clock boundary.
func NextAligned(now time.Time, interval time.Duration) time.Time {
	return now.Truncate(interval).Add(interval)
}
