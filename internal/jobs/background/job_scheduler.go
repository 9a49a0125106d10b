package background

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"rentledger/pkg/logger"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	OverdueSweepJob   = "rent-period-overdue-sweep"
	ReportSnapshotJob = "report-snapshot"
)

// Runner is a unit of background work.
type Runner interface {
	Run(ctx context.Context) error
}

// JobScheduler runs named Runners on fixed intervals.
type JobScheduler struct {
	scheduler gocron.Scheduler
	timeout   time.Duration
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a scheduler. timeout bounds a single run; zero
// means runs are bounded only by shutdown.
func NewJobScheduler(timeout time.Duration) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &JobScheduler{
		scheduler: scheduler,
		timeout:   timeout,
		jobs:      make(map[string]gocron.Job),
	}, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	logger.Log.WithField("jobs", js.JobNames()).Info("Starting background job scheduler")
	js.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler
func (js *JobScheduler) Stop() error {
	logger.Log.Info("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// AddJob schedules runner every interval under name. A run never overlaps
// with a previous run of the same job.
func (js *JobScheduler) AddJob(name string, interval time.Duration, runner Runner) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}

	js.mu.Lock()
	defer js.mu.Unlock()

	if _, exists := js.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(js.run, name, runner),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithEventListeners(
			gocron.AfterJobRunsWithError(func(_ uuid.UUID, jobName string, err error) {
				logger.Log.WithFields(logrus.Fields{
					"job":   jobName,
					"error": err,
				}).Error("background job failed")
			}),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", name, err)
	}

	js.jobs[name] = job
	logger.Log.WithFields(logrus.Fields{
		"job":      name,
		"interval": interval.String(),
	}).Info("Registered background job")
	return nil
}

func (js *JobScheduler) run(ctx context.Context, name string, runner Runner) error {
	if js.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, js.timeout)
		defer cancel()
	}

	start := time.Now()
	err := runner.Run(ctx)
	logger.Log.WithFields(logrus.Fields{
		"job":         name,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("background job finished")
	return err
}

// RunNow triggers an immediate run of a registered job.
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, exists := js.jobs[name]
	js.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not registered", name)
	}
	return job.RunNow()
}

// RemoveJob removes a job from the scheduler
func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[name]; exists {
		err := js.scheduler.RemoveJob(job.ID())
		delete(js.jobs, name)
		return err
	}
	return nil
}

// JobNames lists the registered jobs in name order.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
