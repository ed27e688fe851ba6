// Package scheduler runs periodic jobs on independent timers.
//
// Each job is single-flight: a tick that is still running blocks the next
// tick of the same job, whether it came from the timer or from Trigger.
// Jobs run concurrently with each other. A tick that fails or panics is
// logged and the timer keeps going.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/followup/internal/ctxutil"
)

var (
	// ErrTickInFlight is returned by Trigger when the job is already running.
	ErrTickInFlight = errors.New("tick already in flight")

	// ErrUnknownJob is returned by Trigger for a name that was never registered.
	ErrUnknownJob = errors.New("unknown job")
)

// Job is one periodic unit of work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type entry struct {
	job Job
	mu  sync.Mutex
}

// Scheduler owns a fixed set of jobs.
type Scheduler struct {
	entries    []*entry
	byName     map[string]*entry
	runOnStart bool
	logger     *zap.Logger
}

// New validates the jobs and returns a scheduler. With runOnStart each job
// ticks once as soon as Start is called.
func New(logger *zap.Logger, runOnStart bool, jobs ...Job) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		byName:     make(map[string]*entry, len(jobs)),
		runOnStart: runOnStart,
		logger:     logger,
	}
	for _, j := range jobs {
		if j.Name == "" || j.Run == nil {
			return nil, errors.New("job needs a name and a run function")
		}
		if j.Interval <= 0 {
			return nil, fmt.Errorf("job %s: interval must be positive", j.Name)
		}
		if _, dup := s.byName[j.Name]; dup {
			return nil, fmt.Errorf("job %s registered twice", j.Name)
		}
		e := &entry{job: j}
		s.entries = append(s.entries, e)
		s.byName[j.Name] = e
	}
	return s, nil
}

// Jobs returns the registered job names in registration order.
func (s *Scheduler) Jobs() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.job.Name
	}
	return names
}

// Start runs every job's timer until ctx is cancelled. It returns once all
// in-flight ticks have finished.
func (s *Scheduler) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, e := range s.entries {
		g.Go(func() error {
			s.loop(ctx, e)
			return nil
		})
	}
	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, e *entry) {
	log := s.logger.With(zap.String("job", e.job.Name))
	log.Info("starting timer", zap.Duration("interval", e.job.Interval))

	if s.runOnStart {
		s.fire(ctx, e)
	}

	ticker := time.NewTicker(e.job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.fire(ctx, e)
		case <-ctx.Done():
			log.Info("stopping timer")
			return
		}
	}
}

// fire runs a timer tick. Errors were already logged by tick.
func (s *Scheduler) fire(ctx context.Context, e *entry) {
	if ctx.Err() != nil {
		return
	}
	if err := s.tick(ctx, e); errors.Is(err, ErrTickInFlight) {
		s.logger.Warn("tick skipped, previous tick still running", zap.String("job", e.job.Name))
	}
}

// Trigger runs one tick of the named job now and returns its error.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	e, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.tick(ctx, e)
}

func (s *Scheduler) tick(ctx context.Context, e *entry) (err error) {
	if !e.mu.TryLock() {
		return ErrTickInFlight
	}
	defer e.mu.Unlock()

	tickID := uuid.NewString()
	log := s.logger.With(zap.String("job", e.job.Name), zap.String("tick_id", tickID))

	// Shutdown stops new ticks, not this one.
	runCtx := context.WithoutCancel(ctx)
	runCtx = ctxutil.WithPass(runCtx, e.job.Name)
	runCtx = ctxutil.WithTickID(runCtx, tickID)

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", e.job.Name, r)
			log.Error("tick panicked",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			return
		}
		if err != nil {
			log.Error("tick failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
			return
		}
		log.Debug("tick finished", zap.Duration("elapsed", time.Since(start)))
	}()

	return e.job.Run(runCtx)
}
