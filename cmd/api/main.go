package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/sngm3741/interview-desk/api/internal/config"
	"github.com/sngm3741/interview-desk/api/internal/infrastructure/ai"
	"github.com/sngm3741/interview-desk/api/internal/infrastructure/memory"
	"github.com/sngm3741/interview-desk/api/internal/infrastructure/messenger"
	mongodoc "github.com/sngm3741/interview-desk/api/internal/infrastructure/mongo"
	recordshttp "github.com/sngm3741/interview-desk/api/internal/interfaces/http/records"
	"github.com/sngm3741/interview-desk/api/internal/interview/application"
	"github.com/sngm3741/interview-desk/api/internal/interview/questionnaire"
	"github.com/sngm3741/interview-desk/api/internal/logging"
	"github.com/sngm3741/interview-desk/api/internal/metrics"
	"github.com/sngm3741/interview-desk/api/internal/server"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf(".env の読み込みに失敗しました: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("ロガーの初期化に失敗しました: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Fatal("api exited", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("failed to load timezone, falling back to KST", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.FixedZone("KST", 9*60*60)
	}

	q, err := questionnaire.Load(cfg.QuestionnairePath)
	if err != nil {
		return fmt.Errorf("load questionnaire: %w", err)
	}

	var (
		repo     application.RecordRepository
		failures messenger.FailureRecorder
		health   func(context.Context) error
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory record store; records are lost on restart")
		repo = memory.NewRecordRepository()
	default:
		client, err := connectMongo(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(shutdownCtx); err != nil {
				logger.Warn("mongo disconnect", zap.Error(err))
			}
		}()

		db := client.Database(cfg.MongoDatabase)
		mongoRepo := mongodoc.NewRecordRepository(db, cfg.RecordCollection)
		indexCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		err = mongoRepo.EnsureIndexes(indexCtx)
		cancel()
		if err != nil {
			logger.Warn("ensure record indexes", zap.Error(err))
		}
		repo = mongoRepo
		failures = mongodoc.NewFailedNotificationRepository(db, cfg.FailedNotificationCollection)
		health = func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
	}

	summarizer, closeSummarizer := buildSummarizer(ctx, cfg, logger)
	defer closeSummarizer()

	var notifier application.Notifier
	if n := messenger.New(messenger.Config{
		Endpoint:     cfg.MessengerEndpoint,
		Destination:  cfg.MessengerAdminDestination,
		Timeout:      cfg.MessengerTimeout,
		AdminBaseURL: cfg.AdminRecordBaseURL,
		RetryDelay:   time.Second,
	}, failures, logger.Named("messenger")); n != nil {
		notifier = n
		logger.Info("admin notifications enabled", zap.String("endpoint", cfg.MessengerEndpoint))
	}

	m := metrics.New()
	sessions := application.NewSessionStore(cfg.SessionIdleTimeout)
	m.RegisterGauge("interview_open_sessions", "Number of open interview form sessions", func() float64 {
		return float64(sessions.Len())
	})

	records := application.NewRecordService(repo, notifier)
	summaries := application.NewSummaryService(q, summarizer, cfg.AITimeout, logger.Named("summary"))
	forms := application.NewFormService(q, records, summaries, sessions, logger.Named("form"))

	srv := server.New(server.Config{
		Logger:         logger.Named("http"),
		Addr:           cfg.Addr,
		AllowedOrigins: cfg.AllowedOrigins,
		JWTConfigs:     cfg.JWTConfigs,
		JWTAudience:    cfg.JWTAudience,
		Metrics:        m,
		Health:         health,
		Records: recordshttp.NewHandler(recordshttp.Config{
			Logger:         logger.Named("records"),
			Records:        records,
			Forms:          forms,
			Metrics:        m,
			Location:       loc,
			MaxResumeBytes: cfg.MaxResumeBytes,
			StoreTimeout:   5 * time.Second,
			AITimeout:      cfg.AITimeout,
		}),
	})

	logger.Info("starting interview desk api",
		zap.String("addr", cfg.Addr),
		zap.String("storeDriver", cfg.StoreDriver),
		zap.String("aiProvider", cfg.AIProvider),
		zap.Bool("aiAvailable", summarizer != nil),
		zap.Int("stages", len(q.Stages)),
	)
	runErr := srv.Run(ctx)

	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := records.Drain(drainCtx); err != nil {
		logger.Warn("pending admin notifications cancelled", zap.Error(err))
	}
	return runErr
}

func connectMongo(ctx context.Context, cfg config.Config) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// buildSummarizer は設定されたプロバイダの要約器を返す。認証情報が無ければ nil で起動を続ける。
func buildSummarizer(ctx context.Context, cfg config.Config, logger *zap.Logger) (application.Summarizer, func()) {
	noop := func() {}
	switch cfg.AIProvider {
	case config.AIProviderGemini:
		gemini, err := ai.NewGeminiSummarizer(ctx, ai.GeminiConfig{
			ProjectID: cfg.GoogleCloudProject,
			Location:  cfg.GoogleCloudLocation,
			Model:     cfg.GeminiModel,
		})
		if err != nil {
			logSummarizerError(logger, cfg.AIProvider, err)
			return nil, noop
		}
		return gemini, func() {
			if err := gemini.Close(); err != nil {
				logger.Warn("close gemini client", zap.Error(err))
			}
		}
	case config.AIProviderOpenAI:
		openai, err := ai.NewOpenAISummarizer(ai.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.AITimeout,
		})
		if err != nil {
			logSummarizerError(logger, cfg.AIProvider, err)
			return nil, noop
		}
		return openai, noop
	}
	logger.Info("ai summaries disabled")
	return nil, noop
}

func logSummarizerError(logger *zap.Logger, provider string, err error) {
	if errors.Is(err, application.ErrSummarizerUnavailable) {
		logger.Warn("ai summarizer unavailable, analysis will report it", zap.String("provider", provider), zap.Error(err))
		return
	}
	logger.Error("ai summarizer init failed", zap.String("provider", provider), zap.Error(err))
}
