package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//chunking defaults, in characters
	ChunkSize    = 1000
	ChunkOverlap = 100

	EmbeddingOutputDimensionality int32 = 1536
	IndexCollectionName                 = "documents-index"
	SearchTopK                          = 3
	CitationExcerptLength               = 200

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 60 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false //set for https
	QdrantPoolSize          = 1     //2-5 is preferred for prod according to documentation
	QdrantKeepAliveTimeout  = 30 * time.Second

	//providers
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	OpenAIEmbeddingModel = "text-embedding-ada-002"
	OpenAIChatModel      = "gpt-4o"
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"

	ModelTemperature float64 = 0.7
	MaxAnswerTokens  int64   = 500

	SystemPrompt = "You are a helpful assistant that answers questions based on provided context and always cites sources using [Source: filename]."

	//a provider call past this bound is reported as a retryable timeout fault
	ProviderCallTimeout = 30 * time.Second
	BlobFetchTimeout    = 2 * time.Minute

	//only blobs with this extension trigger a reindex on create/update events
	SupportedIngestExt = ".pdf"

	DefaultContainerName = "documents"

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisLockStore = 0

	//per-document reindex lease; bounds how long a crashed reindex can block a document
	ReindexLockTTL = 5 * time.Minute
)

// Env is the environment-provided half of the configuration. The constants
// above are fixed policy; Env covers endpoints and credentials.
type Env struct {
	ListenAddr string

	Provider string //"openai" or "gemini"

	OpenAIAPIKey  string
	OpenAIBaseURL string //optional, for gateway deployments
	GeminiAPIKey  string

	QdrantHost string
	QdrantPort int

	RedisAddr string

	AwsAccessKey  string
	AwsSecretKey  string
	AwsRegion     string
	ContainerName string
}

// LoadEnv reads the process environment, with a .env file as a convenience
// for local runs.
func LoadEnv() *Env {
	_ = godotenv.Load()

	return &Env{
		ListenAddr:    getEnv("LISTEN_ADDR", ServerListenAddr),
		Provider:      getEnv("MODEL_PROVIDER", ProviderOpenAI),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_ENDPOINT", ""),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		QdrantHost:    getEnv("QDRANT_HOST", ""),
		QdrantPort:    getEnvInt("QDRANT_PORT", QdrantGrpcPort),
		RedisAddr:     getEnv("REDIS_ADDR", RedisAddr),
		AwsAccessKey:  getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:  getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:     getEnv("AWS_REGION", "us-east-2"),
		ContainerName: getEnv("CONTAINER_NAME", DefaultContainerName),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
