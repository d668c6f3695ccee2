// @title           Document Q&A API
// @version         1.0
// @description     Indexes blob-stored documents and answers questions against them with cited sources.

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/adevara/docqa/internal/blob/s3Blob"
	"github.com/adevara/docqa/internal/config"
	"github.com/adevara/docqa/internal/data/lockStore"
	"github.com/adevara/docqa/internal/events"
	"github.com/adevara/docqa/internal/handlers"
	"github.com/adevara/docqa/internal/rag"
	"github.com/adevara/docqa/internal/rag/embedding"
	"github.com/adevara/docqa/internal/rag/embedding/googleEmbedding"
	"github.com/adevara/docqa/internal/rag/embedding/openaiEmbedding"
	"github.com/adevara/docqa/internal/rag/ingest"
	"github.com/adevara/docqa/internal/rag/llm"
	"github.com/adevara/docqa/internal/rag/llm/gemini"
	"github.com/adevara/docqa/internal/rag/llm/openaiLLM"
	"github.com/adevara/docqa/internal/rag/vectorDB/qdrantDB"
	"github.com/adevara/docqa/internal/server"
	"github.com/adevara/docqa/pkg/logger_i"
)

var listenAddr string

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	env := config.LoadEnv()
	flag.StringVar(&listenAddr, "listen-addr", env.ListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	// NewClient bootstraps the collection and payload indexes itself.
	vectorStore, err := qdrantDB.NewClient(serviceContext, env.QdrantHost, env.QdrantPort)
	if err != nil {
		logger.Error("Vector store failed to initialize", "error", err)
		return
	}

	var embeddingService embedding.Embedder
	var llmProvider llm.Provider
	switch env.Provider {
	case config.ProviderGemini:
		embeddingService, err = googleEmbedding.NewClient(serviceContext, env.GeminiAPIKey, config.GoogleEmbeddingModel)
		if err == nil {
			llmProvider, err = gemini.NewClient(serviceContext, env.GeminiAPIKey, config.GeminiModelName)
		}
	default:
		embeddingService, err = openaiEmbedding.NewClient(env.OpenAIAPIKey, env.OpenAIBaseURL)
		if err == nil {
			llmProvider, err = openaiLLM.NewClient(env.OpenAIAPIKey, env.OpenAIBaseURL)
		}
	}
	if err != nil {
		logger.Error("Model provider failed to initialize", "provider", env.Provider, "error", err)
		return
	}

	blobReader, err := s3Blob.NewS3Client(serviceContext, env)
	if err != nil {
		logger.Error("Blob store failed to initialize", "error", err)
		return
	}

	var locker lockStore.DocumentLocker
	if redisLocker := lockStore.GetRedisLocker(serviceContext, env.RedisAddr); redisLocker != nil {
		locker = redisLocker
	} else {
		logger.Error("Redis lock store is offline")
		locker = lockStore.InitInMemoryLocker()
	}

	pipeline := ingest.NewPipeline(blobReader, vectorStore, embeddingService, locker, env.ContainerName)
	dispatcher := events.NewDispatcher(pipeline)
	ragService := rag.NewService(vectorStore, llmProvider, embeddingService)

	handler := handlers.NewHandler(ragService, dispatcher)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, handler)

	<-stopExecution
	logger.Info("Server stopped")
}
