// @title           Voice Desk Orchestrator API
// @version         1.0
// @description     Retrieval-augmented conversational orchestrator for the customer service desk.
// @termsOfService  http://swagger.io/terms/

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/conversation"
	"github.com/voicedesk/orchestrator/internal/data/redisStore"
	"github.com/voicedesk/orchestrator/internal/data/store"
	"github.com/voicedesk/orchestrator/internal/domain/jobModel"
	"github.com/voicedesk/orchestrator/internal/handlers"
	"github.com/voicedesk/orchestrator/internal/job"
	"github.com/voicedesk/orchestrator/internal/middleware"
	"github.com/voicedesk/orchestrator/internal/rag/chunker"
	"github.com/voicedesk/orchestrator/internal/rag/embedding"
	"github.com/voicedesk/orchestrator/internal/rag/embedding/googleEmbedding"
	"github.com/voicedesk/orchestrator/internal/rag/embedding/openaiEmbedding"
	"github.com/voicedesk/orchestrator/internal/rag/intent"
	"github.com/voicedesk/orchestrator/internal/rag/llm"
	"github.com/voicedesk/orchestrator/internal/rag/llm/gemini"
	"github.com/voicedesk/orchestrator/internal/rag/llm/openaiLLM"
	"github.com/voicedesk/orchestrator/internal/rag/retriever"
	"github.com/voicedesk/orchestrator/internal/rag/vectorDB"
	"github.com/voicedesk/orchestrator/internal/rag/vectorDB/pgVector"
	"github.com/voicedesk/orchestrator/internal/rag/vectorDB/qdrantCache"
	"github.com/voicedesk/orchestrator/internal/server"
	"github.com/voicedesk/orchestrator/internal/worker"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

var listenAddr string

func main() {
	_ = godotenv.Load()
	logger_i.Init()
	logger := logger_i.NewLogger("main")

	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	// storage
	db, err := pgVector.Connect(serviceContext, config.EnvOr("POSTGRES_DSN", config.PostgresDSN))
	if err != nil {
		logger.Error("postgres is unreachable, shutting down", "error", err)
		return
	}
	defer db.Close()
	if err := pgVector.Migrate(db); err != nil {
		logger.Error("migrations failed, shutting down", "error", err)
		return
	}
	kbStore, err := pgVector.New(db)
	if err != nil {
		logger.Error("vector store init failed, shutting down", "error", err)
		return
	}

	// providers
	embedder, provider, err := buildProviders(serviceContext)
	if err != nil {
		logger.Error("model provider init failed, shutting down", "provider", config.ModelProvider, "error", err)
		return
	}

	var answerCache vectorDB.AnswerCache
	qCache, err := qdrantCache.New(serviceContext, config.QdrantHost, config.QdrantGrpcPort)
	if err != nil {
		logger.Warn("qdrant unavailable, running without the answer cache", "error", err)
	} else {
		answerCache = qCache
		defer qCache.Close()
	}

	// retrieval
	splitter, err := chunker.New(chunker.Options{
		MaxSize: config.DefaultChunkSize,
		Overlap: config.DefaultChunkOverlap,
		Mode:    chunker.ModeSentence,
	})
	if err != nil {
		logger.Error("chunker misconfigured, shutting down", "error", err)
		return
	}
	retrievalService := retriever.NewService(kbStore, embedder, splitter)

	// conversation state: redis with in-memory fallback
	var convStore conversation.Store
	if rs, err := redisStore.Connect(serviceContext, config.RedisConversationStore); err != nil {
		logger.Warn("redis offline, conversation state held in memory", "error", err)
		convStore = conversation.NewMemoryStore()
	} else {
		convStore = conversation.NewRedisStore(rs)
		defer rs.Close()
	}

	engine, err := conversation.NewEngine(conversation.Deps{
		Store:      convStore,
		Retriever:  retrievalService,
		Classifier: intent.NewKeywordClassifier(nil),
		LLM:        provider,
		Embedder:   embedder,
		Cache:      answerCache,
		Tools: map[string]conversation.Tool{
			"appointment":     conversation.NewCalendarTool(config.CalendarEndpoint),
			"general_inquiry": conversation.NewContactTool(config.ContactsEndpoint),
		},
	})
	if err != nil {
		logger.Error("conversation engine init failed, shutting down", "error", err)
		return
	}

	// jobs: redis store with in-memory fallback
	var jobStore jobModel.JobStore
	if rs, err := redisStore.Connect(serviceContext, config.RedisJobStore); err != nil {
		logger.Warn("redis offline, job status held in memory", "error", err)
		jobStore = store.InitInMemoryJobStore()
	} else {
		jobStore = store.NewRedisJobStore(rs)
		defer rs.Close()
	}

	jobService := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, config.BufferLimit),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          jobStore,
	})

	stopWorkerChannel := make(chan bool, 1)
	workerWaitGroup := &sync.WaitGroup{}
	pool := worker.NewPool(jobService, worker.NewReindexExecutor(config.KnowledgeRootDir, retrievalService))
	pool.Start(stopWorkerChannel, workerWaitGroup)

	// http surface
	handler := handlers.New(retrievalService, engine, jobService, kbStore)
	chain := middleware.NewChain(middleware.DefaultRateLimiter())
	srv := server.New(listenAddr, handler, chain)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	go srv.ShutDownHandler(server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            workerWaitGroup,
		CloseServices:    closeExternalServices,
	})
	go srv.Run()

	<-stopExecution
	logger.Info("server stopped")
}

func buildProviders(ctx context.Context) (embedding.Embedder, llm.Provider, error) {
	if strings.EqualFold(config.ModelProvider, "google") {
		embedder, err := googleEmbedding.New(ctx, config.GoogleAPIKey)
		if err != nil {
			return nil, nil, err
		}
		provider, err := gemini.New(ctx, config.GoogleAPIKey)
		if err != nil {
			return nil, nil, err
		}
		return embedder, provider, nil
	}

	embedder, err := openaiEmbedding.New(config.OpenAIAPIKey)
	if err != nil {
		return nil, nil, err
	}
	provider, err := openaiLLM.New(config.OpenAIAPIKey)
	if err != nil {
		return nil, nil, err
	}
	return embedder, provider, nil
}
