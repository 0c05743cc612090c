package bootstrap

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"insight_server/adapter/out/graph"
	"insight_server/adapter/out/huggingface"
	"insight_server/adapter/out/messaging"
	"insight_server/adapter/out/mongodb"
	"insight_server/adapter/out/persistence"
	"insight_server/config"
	"insight_server/core/llm"
	"insight_server/core/port/out"
	"insight_server/core/service/analysis"
	"insight_server/core/service/enrich"
	"insight_server/infra/database"
	"insight_server/pkg/cache"
	"insight_server/pkg/logger"
)

// Dependencies wires the whole object graph once for both run modes.
type Dependencies struct {
	Config *config.Config
	DB     *pgxpool.Pool
	SQLDB  *sqlx.DB
	Redis  *redis.Client
	Mongo  *mongo.Client
	Neo4j  neo4j.DriverWithContext

	// Repositories
	SocialCommentRepo out.SocialCommentRepository
	InsightRepo       out.InsightRepository
	CommentRepo       out.CommentRepository
	ReplyRepo         out.ReplyRepository
	SentimentRepo     out.SentimentRecordRepository
	ReportRepo        out.RunReportRepository
	GraphStore        out.EntityGraphStore

	// Messaging
	Producer out.JobProducer

	// Pipeline
	Stages    *enrich.Stages
	Scheduler *enrich.Scheduler
	Assembler *enrich.Assembler
	Runner    *enrich.Runner

	// Services
	AnalysisService  *analysis.Service
	SentimentService *analysis.SentimentService
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Database (pgxpool for health checks)
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	deps.DB = db
	cleanups = append(cleanups, func() { db.Close() })

	// Database (sqlx for the repository adapters)
	sqlDB, err := database.NewSQLX(cfg.DatabaseURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.SQLDB = sqlDB
	cleanups = append(cleanups, func() { sqlDB.Close() })

	// Redis (cache, streams)
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis connection failed: %v", err)
		} else {
			deps.Redis = redisClient
			cleanups = append(cleanups, func() { redisClient.Close() })
			deps.Producer = messaging.NewRedisProducer(redisClient)
		}
	}

	// MongoDB (run report archive)
	if cfg.MongoDBURL != "" {
		mongoClient, err := mongodb.NewClient(cfg.MongoDBURL)
		if err != nil {
			logger.Warn("MongoDB connection failed: %v", err)
		} else {
			deps.Mongo = mongoClient
			cleanups = append(cleanups, func() {
				mongoClient.Disconnect(context.Background())
			})

			reportAdapter := mongodb.NewRunReportAdapter(mongoClient.Database(cfg.MongoDBName))
			if err := reportAdapter.EnsureIndexes(context.Background()); err != nil {
				logger.Warn("Failed to ensure MongoDB indexes: %v", err)
			}
			deps.ReportRepo = reportAdapter
		}
	}

	// Neo4j (entity mention graph)
	if cfg.EntityGraphEnabled && cfg.Neo4jURL != "" {
		neo4jDriver, err := graph.NewDriver(cfg.Neo4jURL, cfg.Neo4jUsername, cfg.Neo4jPassword)
		if err != nil {
			logger.Warn("Neo4j connection failed: %v", err)
		} else {
			deps.Neo4j = neo4jDriver
			cleanups = append(cleanups, func() {
				neo4jDriver.Close(context.Background())
			})

			mentionAdapter := graph.NewMentionAdapter(neo4jDriver, "neo4j")
			if err := mentionAdapter.EnsureIndexes(context.Background()); err != nil {
				logger.Warn("Failed to ensure Neo4j indexes: %v", err)
			}
			deps.GraphStore = mentionAdapter
		}
	}

	// Repositories
	deps.SocialCommentRepo = persistence.NewSocialCommentAdapter(sqlDB)
	deps.InsightRepo = persistence.NewAnalyticsAdapter(sqlDB)
	deps.CommentRepo = persistence.NewCommentAdapter(sqlDB)
	deps.ReplyRepo = persistence.NewReplyAdapter(sqlDB)
	deps.SentimentRepo = persistence.NewSentimentAdapter(sqlDB)

	// Classification stages
	deps.Stages = newStages(cfg)

	// Pipeline
	mode := enrich.Mode(cfg.SchedulerMode)
	deps.Scheduler = enrich.NewScheduler(mode, cfg.StageWorkers, cfg.StageBatchSize, nil)
	deps.Assembler = enrich.NewAssembler(nil)
	deps.Runner = enrich.NewRunner(deps.Stages, deps.Scheduler, deps.Assembler, cfg.ChunkSize, cfg.WorkerID, nil)

	// Result cache for targeted sentiment analysis
	var resultCache *cache.RedisCache
	if deps.Redis != nil {
		resultCache = cache.NewRedisCache(deps.Redis, "insight")
	}

	// Services
	deps.AnalysisService = analysis.NewService(analysis.Deps{
		Records:  deps.SocialCommentRepo,
		Insights: deps.InsightRepo,
		Reports:  deps.ReportRepo,
		Graph:    deps.GraphStore,
		Producer: deps.Producer,
		Runner:   deps.Runner,
	})
	deps.SentimentService = analysis.NewSentimentService(analysis.SentimentDeps{
		Comments:  deps.CommentRepo,
		Replies:   deps.ReplyRepo,
		Records:   deps.SentimentRepo,
		Sentiment: deps.Stages.Sentiment,
		Emotion:   deps.Stages.Emotion,
		Cache:     resultCache,
		CacheTTL:  time.Duration(cfg.CacheResultTTLMin) * time.Minute,
		Producer:  deps.Producer,
	})

	return deps, cleanup, nil
}

// newStages builds the classification stage set. Zero-shot stages can run on
// the chat completion provider instead of the hosted inference API.
func newStages(cfg *config.Config) *enrich.Stages {
	hfClient := huggingface.NewClient(huggingface.ClientConfig{
		BaseURL:      cfg.HFAPIURL,
		Token:        cfg.HFAPIToken,
		WaitForModel: cfg.HFWaitForModel,
		Timeout:      time.Duration(cfg.HFTimeoutSec) * time.Second,
	}, nil)

	var zeroShot out.ZeroShotClassifier
	if cfg.IntentProvider == "openai" && cfg.OpenAIAPIKey != "" {
		llmClient := llm.NewClient(llm.ClientConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.LLMModel,
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: cfg.LLMTemperature,
		})
		zeroShot = llm.NewZeroShotClassifier(llmClient)
		logger.Info("Zero-shot stages using chat completion provider (%s)", cfg.LLMModel)
	} else {
		zeroShot = huggingface.NewZeroShotClassifier(hfClient, huggingface.ModelZeroShot)
	}

	return &enrich.Stages{
		Sentiment: enrich.NewSentimentStage(huggingface.NewTextClassifier(hfClient, huggingface.ModelSentiment)),
		Emotion:   enrich.NewEmotionStage(huggingface.NewTextClassifier(hfClient, huggingface.ModelEmotion)),
		Language:  enrich.NewLanguageStage(huggingface.NewTextClassifier(hfClient, huggingface.ModelLanguage)),
		Toxicity:  enrich.NewToxicityStage(huggingface.NewTextClassifier(hfClient, huggingface.ModelToxicity)),
		Sarcasm:   enrich.NewSarcasmStage(huggingface.NewTextClassifier(hfClient, huggingface.ModelSarcasm)),
		Intent:    enrich.NewIntentStage(zeroShot),
		Topics: enrich.NewTopicEntityStage(
			zeroShot,
			huggingface.NewTokenClassifier(hfClient, huggingface.ModelNER),
			cfg.TopicThreshold,
		),
	}
}
