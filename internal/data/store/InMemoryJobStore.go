package store

import (
	"context"
	"sync"

	"github.com/voicedesk/orchestrator/internal/domain/jobModel"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

// InMemoryJobStore is the fallback when Redis is unreachable. Job status
// then only resolves on the instance that accepted the job.
type InMemoryJobStore struct {
	mu     sync.RWMutex
	jobs   map[string]jobModel.Job
	logger *logger_i.Logger
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobs:   make(map[string]jobModel.Job),
		logger: logger_i.NewLogger("InMemJobStore"),
	}
}

func (s *InMemoryJobStore) SaveJob(_ context.Context, job jobModel.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Id] = job
	s.logger.Debug("saved job", "jobId", job.Id, "status", job.Status)
	return nil
}

func (s *InMemoryJobStore) GetJob(_ context.Context, jobId string) (jobModel.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, found := s.jobs[jobId]
	return job, found
}

func (s *InMemoryJobStore) DeleteJob(_ context.Context, jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}
