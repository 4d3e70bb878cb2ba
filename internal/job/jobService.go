package job

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/jobModel"
	"github.com/voicedesk/orchestrator/internal/metrics"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

// ErrQueueFull is returned when the job channel cannot take another job.
var ErrQueueFull = errors.New("job queue is full")

// Service owns the job queue. Handlers enqueue through it and workers
// drain JobChannel; DispatcherChannel nudges the pool to grow when
// requests pile up.
type Service struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore

	logger       *logger_i.Logger
	requestCount int64
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		logger:            logger_i.NewLogger("jobService"),
	}
}

// Enqueue records the job as queued and hands it to the pool. The save
// happens first so a status poll never sees an unknown id for an
// accepted job.
func (s *Service) Enqueue(ctx context.Context, j jobModel.Job) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "jobId", j.Id)

	j.Status = jobModel.JobStatusQueued
	j.CreatedTime = time.Now()
	if err := s.JobStore.SaveJob(ctx, j); err != nil {
		return err
	}

	select {
	case s.JobChannel <- j:
		metrics.IncrementJobsInQueue()
	default:
		log.Error("job queue full, rejecting job")
		s.JobStore.DeleteJob(ctx, j.Id)
		return ErrQueueFull
	}

	if atomic.AddInt64(&s.requestCount, 1)%config.RequestsPerNewWorkerCount == 0 {
		s.signalDispatcher()
	}

	log.Debug("job queued")
	return nil
}

func (s *Service) Get(ctx context.Context, jobId string) (jobModel.Job, bool) {
	return s.JobStore.GetJob(ctx, jobId)
}

func (s *Service) signalDispatcher() {
	select {
	case s.DispatcherChannel <- true:
		metrics.StartDispatcherSignalCount()
	default:
	}
}
