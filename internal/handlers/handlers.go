package handlers

import (
	"github.com/voicedesk/orchestrator/internal/conversation"
	"github.com/voicedesk/orchestrator/internal/job"
	"github.com/voicedesk/orchestrator/internal/rag/retriever"
	"github.com/voicedesk/orchestrator/internal/rag/vectorDB"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

// Handler carries the wired services behind the HTTP surface. It is built
// once by the composition root and shared across routes.
type Handler struct {
	retriever retriever.Service
	engine    *conversation.Engine
	jobs      *job.Service
	store     vectorDB.Store
	logger    *logger_i.Logger
}

func New(r retriever.Service, engine *conversation.Engine, jobs *job.Service, store vectorDB.Store) *Handler {
	return &Handler{
		retriever: r,
		engine:    engine,
		jobs:      jobs,
		store:     store,
		logger:    logger_i.NewLogger("handlers"),
	}
}
