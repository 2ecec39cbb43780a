package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"

	maxRunHistory = 50
)

type RunFunc func(context.Context) (any, error)

// Run is the record of one job execution.
type Run struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Details     any        `json:"details,omitempty"`
	Error       string     `json:"error,omitempty"`
}

type job struct {
	Type string
	Run  RunFunc
}

// Service runs jobs from a queue, on cron schedules, or inline, and keeps the
// most recent run records in memory.
type Service struct {
	queue   chan job
	cron    *cron.Cron
	timeout time.Duration

	mu   sync.Mutex
	runs []Run
}

func New(loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	logger := cronLogger{}
	return &Service{
		queue:   make(chan job, 128),
		cron:    cron.New(cron.WithLocation(loc), cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger))),
		timeout: 4 * time.Minute,
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	s.cron.Start()
}

// Stop halts the scheduler and waits for running cron jobs.
func (s *Service) Stop() {
	<-s.cron.Stop().Done()
}

// Schedule runs fn on spec. Overlapping executions are skipped.
func (s *Service) Schedule(spec, jobType string, fn RunFunc) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.RunNow(ctx, jobType, fn); err != nil {
			log.Warn().Err(err).Str("jobType", jobType).Msg("scheduled job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", jobType, spec, err)
	}
	log.Info().Str("jobType", jobType).Str("schedule", spec).Msg("job scheduled")
	return nil
}

// Enqueue hands fn to the worker. It reports false when the queue is full and
// the job was dropped.
func (s *Service) Enqueue(jobType string, fn RunFunc) bool {
	select {
	case s.queue <- job{Type: jobType, Run: fn}:
		return true
	default:
		log.Warn().Str("jobType", jobType).Msg("job queue full")
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, fn RunFunc) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: fn})
}

// Runs returns recorded runs, newest first.
func (s *Service) Runs() []Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Run, len(s.runs))
	for i, r := range s.runs {
		out[len(s.runs)-1-i] = r
	}
	return out
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				log.Warn().Err(err).Str("jobType", j.Type).Msg("job run failed")
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	run := Run{ID: uuid.NewString(), Type: j.Type, Status: StatusRunning, StartedAt: time.Now().UTC()}
	idx := s.record(run)

	details, err := j.Run(ctx)

	completed := time.Now().UTC()
	run.CompletedAt = &completed
	run.Details = details
	run.Status = StatusCompleted
	if err != nil {
		run.Status = StatusFailed
		run.Error = err.Error()
	}
	s.update(idx, run)
	log.Info().
		Str("jobType", j.Type).
		Str("runId", run.ID).
		Str("status", run.Status).
		Dur("duration", completed.Sub(run.StartedAt)).
		Msg("job finished")
	return details, err
}

func (s *Service) record(run Run) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	if len(s.runs) > maxRunHistory {
		s.runs = append([]Run(nil), s.runs[len(s.runs)-maxRunHistory:]...)
	}
	return run.ID
}

func (s *Service) update(id string, run Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.runs {
		if s.runs[i].ID == id {
			s.runs[i] = run
			return
		}
	}
}

// cronLogger sends robfig/cron's internal logging to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
