package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/jobModel"
	"github.com/voicedesk/orchestrator/internal/job"
	"github.com/voicedesk/orchestrator/internal/metrics"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

// Executor runs one job to completion and returns it with its final
// status and report filled in.
type Executor interface {
	Execute(ctx context.Context, j jobModel.Job) jobModel.Job
}

// Pool is the elastic worker pool draining the job queue. It starts with
// one worker, grows on dispatcher signals up to MaxWorkerCount, and idle
// workers above the floor retire themselves.
type Pool struct {
	jobs     *job.Service
	executor Executor
	logger   *logger_i.Logger

	stop    chan bool
	wg      *sync.WaitGroup
	current int64
	floor   int64
}

func NewPool(jobs *job.Service, executor Executor) *Pool {
	return &Pool{
		jobs:     jobs,
		executor: executor,
		logger:   logger_i.NewLogger("workerPool"),
		floor:    config.MinWorkerCount,
	}
}

func (p *Pool) Start(stop chan bool, wg *sync.WaitGroup) {
	p.stop = stop
	p.wg = wg
	p.logger.Info("starting worker pool")
	go p.dispatcher()
}

func (p *Pool) dispatcher() {
	p.createWorker()
	p.logger.Info("dispatcher started")
	for range p.jobs.DispatcherChannel {
		if atomic.LoadInt64(&p.current) < config.MaxWorkerCount {
			p.logger.Info("growing pool", "workerCount", atomic.LoadInt64(&p.current))
			p.createWorker()
		}
	}
}

func (p *Pool) createWorker() {
	p.wg.Add(1)
	go p.worker()
	atomic.AddInt64(&p.current, 1)
	metrics.IncrementActiveWorkerCount()
}

func (p *Pool) worker() {
	for {
		select {
		case currentJob := <-p.jobs.JobChannel:
			p.executeJob(currentJob)
			metrics.DecrementJobsInQueue()

		case <-p.stop:
			p.removeWorker("stop signal received")
			return

		case <-time.After(config.IdleWorkerTimeout):
			if atomic.LoadInt64(&p.current) > p.floor {
				p.removeWorker("idle timeout")
				return
			}
		}
	}
}

func (p *Pool) removeWorker(reason string) {
	p.wg.Done()
	atomic.AddInt64(&p.current, -1)
	metrics.DecrementActiveWorkerCount()
	p.logger.Info("worker retired", "reason", reason, "workerCount", atomic.LoadInt64(&p.current))
}

func (p *Pool) executeJob(j jobModel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(j.Status), time.Since(start))
	}()

	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, j.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.ReindexJobTimeout)
	defer cancel()

	log := p.logger.With("traceId", j.TraceId, "jobId", j.Id)
	log.Debug("processing job")

	j.Status = jobModel.JobStatusRunning
	p.saveJobState(ctx, j)

	j = p.executor.Execute(ctx, j)
	if j.Status != jobModel.JobStatusError {
		j.Status = jobModel.JobStatusComplete
	}
	j.EndTime = time.Now()
	p.saveJobState(ctx, j)
	log.Debug("job finished", "status", j.Status)
}

func (p *Pool) saveJobState(ctx context.Context, j jobModel.Job) {
	if err := p.jobs.JobStore.SaveJob(ctx, j); err != nil {
		p.logger.Error("failed to persist job status", "jobId", j.Id, "err", err)
	}
}
