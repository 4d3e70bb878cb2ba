package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/voicedesk/orchestrator/internal/domain/jobModel"
	"github.com/voicedesk/orchestrator/internal/job"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

func init() { logger_i.Init() }

type mockExecutor struct {
	Processed int32
	OnExecute func(ctx context.Context, j jobModel.Job) jobModel.Job
}

func (m *mockExecutor) Execute(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.Processed, 1)
	if m.OnExecute != nil {
		return m.OnExecute(ctx, j)
	}
	return j
}

type mockJobStore struct {
	mu   sync.Mutex
	jobs map[string]jobModel.Job
}

func (m *mockJobStore) SaveJob(_ context.Context, j jobModel.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.jobs == nil {
		m.jobs = make(map[string]jobModel.Job)
	}
	m.jobs[j.Id] = j
	return nil
}

func (m *mockJobStore) GetJob(_ context.Context, jobId string) (jobModel.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobId]
	return j, ok
}

func (m *mockJobStore) DeleteJob(_ context.Context, jobId string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, jobId)
}

func newTestPool(executor Executor, store jobModel.JobStore) (*Pool, *job.Service, chan bool, *sync.WaitGroup) {
	jobSvc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          store,
	})
	pool := NewPool(jobSvc, executor)
	stop := make(chan bool)
	wg := &sync.WaitGroup{}
	pool.Start(stop, wg)
	return pool, jobSvc, stop, wg
}

func TestPool_ProcessesQueuedJobs(t *testing.T) {
	executor := &mockExecutor{}
	store := &mockJobStore{}
	pool, jobSvc, stop, _ := newTestPool(executor, store)
	defer close(stop)

	if err := jobSvc.Enqueue(context.Background(), jobModel.Job{Id: "job-1", TraceId: "t-1", JobType: jobModel.JobTypeReindex}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&executor.Processed) == 0 {
		select {
		case <-deadline:
			t.Fatal("job was never executed")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// last saved state must be terminal
	time.Sleep(50 * time.Millisecond)
	final, found := store.GetJob(context.Background(), "job-1")
	if !found || final.Status != jobModel.JobStatusComplete {
		t.Errorf("final job state = %+v", final)
	}
	if final.EndTime.IsZero() {
		t.Error("EndTime must be set on completion")
	}
	_ = pool
}

func TestPool_ExecutorErrorIsRecorded(t *testing.T) {
	executor := &mockExecutor{
		OnExecute: func(_ context.Context, j jobModel.Job) jobModel.Job {
			j.Status = jobModel.JobStatusError
			j.Error = jobModel.JobError{Message: "source gone"}
			return j
		},
	}
	store := &mockJobStore{}
	_, jobSvc, stop, _ := newTestPool(executor, store)
	defer close(stop)

	if err := jobSvc.Enqueue(context.Background(), jobModel.Job{Id: "job-err"}); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if j, ok := store.GetJob(context.Background(), "job-err"); ok && j.Status == jobModel.JobStatusError {
			if j.Error.Message != "source gone" {
				t.Errorf("error not carried: %+v", j.Error)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("error status never recorded")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestPool_DispatcherGrowsOnSignal(t *testing.T) {
	executor := &mockExecutor{}
	pool, jobSvc, stop, _ := newTestPool(executor, &mockJobStore{})
	defer close(stop)

	// Start spawns the first worker
	time.Sleep(50 * time.Millisecond)
	before := atomic.LoadInt64(&pool.current)
	if before < 1 {
		t.Fatalf("pool did not start a worker, count = %d", before)
	}

	jobSvc.DispatcherChannel <- true
	time.Sleep(50 * time.Millisecond)

	after := atomic.LoadInt64(&pool.current)
	if after != before+1 {
		t.Errorf("worker count = %d, want %d", after, before+1)
	}
}

func TestPool_StopRetiresWorkers(t *testing.T) {
	executor := &mockExecutor{}
	_, jobSvc, stop, wg := newTestPool(executor, &mockJobStore{})
	_ = jobSvc

	time.Sleep(50 * time.Millisecond)
	close(stop)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop")
	}
}

func TestEnqueue_QueueFull(t *testing.T) {
	store := &mockJobStore{}
	jobSvc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 1),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          store,
	})
	// no pool draining the channel

	ctx := context.Background()
	if err := jobSvc.Enqueue(ctx, jobModel.Job{Id: "fits"}); err != nil {
		t.Fatal(err)
	}
	err := jobSvc.Enqueue(ctx, jobModel.Job{Id: "overflow"})
	if err != job.ErrQueueFull {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
	if _, found := store.GetJob(ctx, "overflow"); found {
		t.Error("rejected job must not linger in the store")
	}
}
