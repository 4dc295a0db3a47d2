package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindImport   Kind = "import"
	KindGenerate Kind = "generate"
)

type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

var ErrJobNotFound = errors.New("job not found")

// Job is one long operation. Run reports percent complete through progress
// and returns how many records it produced.
type Job struct {
	ID     string
	Kind   Kind
	UserID string
	Run    func(ctx context.Context, progress func(float64)) (int, error)
}

func NewJob(kind Kind, userID string, run func(ctx context.Context, progress func(float64)) (int, error)) Job {
	return Job{ID: uuid.NewString(), Kind: kind, UserID: userID, Run: run}
}

type Status struct {
	ID         string     `json:"id"`
	Kind       Kind       `json:"kind"`
	State      State      `json:"state"`
	Progress   float64    `json:"progress"`
	Count      int        `json:"count"`
	Error      string     `json:"error,omitempty"`
	QueuedAt   time.Time  `json:"queued_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	userID string
}

// Tracker keeps the last known status of every job. Finished jobs are
// forgotten once they are older than the retention period.
type Tracker struct {
	mu        sync.RWMutex
	jobs      map[string]*Status
	retention time.Duration
	now       func() time.Time
}

// NewTracker returns a tracker keeping finished jobs for retention. Zero
// keeps them for the life of the process.
func NewTracker(retention time.Duration) *Tracker {
	return &Tracker{
		jobs:      make(map[string]*Status),
		retention: retention,
		now:       time.Now,
	}
}

func (t *Tracker) Queue(job Job) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.evictLocked()

	t.jobs[job.ID] = &Status{
		ID:       job.ID,
		Kind:     job.Kind,
		State:    StateQueued,
		QueuedAt: t.now(),
		userID:   job.UserID,
	}
}

func (t *Tracker) evictLocked() {
	if t.retention <= 0 {
		return
	}
	cutoff := t.now().Add(-t.retention)
	for id, st := range t.jobs {
		if st.FinishedAt != nil && st.FinishedAt.Before(cutoff) {
			delete(t.jobs, id)
		}
	}
}

func (t *Tracker) update(id string, fn func(*Status)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if st, ok := t.jobs[id]; ok {
		fn(st)
	}
}

func (t *Tracker) Start(id string) {
	t.update(id, func(s *Status) { s.State = StateRunning })
}

func (t *Tracker) Progress(id string, pct float64) {
	t.update(id, func(s *Status) { s.Progress = pct })
}

func (t *Tracker) Finish(id string, count int, err error) {
	now := t.now()
	t.update(id, func(s *Status) {
		s.Count = count
		s.FinishedAt = &now
		if err != nil {
			s.State = StateFailed
			s.Error = err.Error()
			return
		}
		s.State = StateSucceeded
		s.Progress = 100
	})
}

// Get returns a copy of the job status if it belongs to userID.
func (t *Tracker) Get(userID, id string) (Status, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st, ok := t.jobs[id]
	if !ok || st.userID != userID {
		return Status{}, ErrJobNotFound
	}
	return *st, nil
}
