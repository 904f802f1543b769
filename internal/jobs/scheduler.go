package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of periodic work.
type Job interface {
	Name() string
	// Spec is the cron schedule; an empty spec disables the job.
	Spec() string
	Run(ctx context.Context) error
}

// Scheduler runs registered jobs on a shared cron scheduler.
type Scheduler struct {
	cron    *cron.Cron
	jobs    []Job
	timeout time.Duration
	logger  *zap.Logger
}

func NewScheduler(logger *zap.Logger, jobs ...Job) *Scheduler {
	cl := NewCronLogger(logger.Named("cron"))
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl))),
		jobs:    jobs,
		timeout: 5 * time.Minute,
		logger:  logger.Named("Scheduler"),
	}
}

// NewJobScheduler schedules the OTP purge and news warm-up jobs.
func NewJobScheduler(logger *zap.Logger, otp *OTPPurgeJob, news *NewsRefreshJob) *Scheduler {
	return NewScheduler(logger, otp, news)
}

// SetupAndStart schedules every job with a spec and starts the scheduler.
func (s *Scheduler) SetupAndStart() error {
	for _, job := range s.jobs {
		job := job
		if job.Spec() == "" {
			s.logger.Warn("Job schedule not defined, job will not run", zap.String("job", job.Name()))
			continue
		}
		id, err := s.cron.AddFunc(job.Spec(), func() { s.runJob(job) })
		if err != nil {
			s.logger.Error("Failed to schedule job", zap.String("job", job.Name()), zap.String("spec", job.Spec()), zap.Error(err))
			return fmt.Errorf("scheduling %s: %w", job.Name(), err)
		}
		s.logger.Info("Job scheduled", zap.String("job", job.Name()), zap.String("spec", job.Spec()), zap.Any("jobID", id))
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) runJob(job Job) {
	logger := s.logger.With(zap.String("job", job.Name()))
	logger.Info("Starting job run")
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		logger.Error("Job run failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		return
	}
	logger.Info("Job run completed", zap.Duration("took", time.Since(start)))
}

// Stop waits up to 10 seconds for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping job scheduler...")
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.logger.Info("Job scheduler stopped gracefully.")
	case <-time.After(10 * time.Second):
		s.logger.Warn("Job scheduler stop timed out.")
	}
}

// cronLogger adapts zap.Logger to cron.Logger.
type cronLogger struct {
	zl *zap.Logger
}

func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Debug(msg, cl.fields(keysAndValues...)...)
}

func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := append(cl.fields(keysAndValues...), zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) fields(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprintf("%v", keysAndValues[i])
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(key, keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(key, "MISSING_VALUE"))
		}
	}
	return fields
}
