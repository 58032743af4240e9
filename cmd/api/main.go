package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/unitematch/unitematch-api/internal/cache"
	"github.com/unitematch/unitematch-api/internal/config"
	"github.com/unitematch/unitematch-api/internal/diagnostics"
	"github.com/unitematch/unitematch-api/internal/feedback"
	"github.com/unitematch/unitematch-api/internal/fusion"
	"github.com/unitematch/unitematch-api/internal/handlers"
	"github.com/unitematch/unitematch-api/internal/logic"
	"github.com/unitematch/unitematch-api/internal/modelstore"
	"github.com/unitematch/unitematch-api/internal/traininglog"
	"github.com/unitematch/unitematch-api/internal/worker"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	var logger *zap.Logger
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Feedback store
	var (
		store feedback.Store
		pg    *pgxpool.Pool
		mysql *sqlx.DB
	)
	switch cfg.FeedbackBackend {
	case config.BackendPostgres:
		pg, err = pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			sugar.Fatalw("Failed to connect to Postgres", "error", err)
		}
		defer pg.Close()
		store = feedback.NewPostgresStore(pg)
	case config.BackendMySQL:
		mysql, err = feedback.OpenMySQL(ctx, cfg.MySQLDSN)
		if err != nil {
			sugar.Fatalw("Failed to connect to MySQL", "error", err)
		}
		defer mysql.Close()
		store = feedback.NewMySQLStore(mysql)
	default:
		store = feedback.NewCSVStore(cfg.FeedbackCSVPath)
	}
	sugar.Infow("Feedback store ready", "backend", cfg.FeedbackBackend)

	// Prediction cache
	var (
		predictionCache cache.PredictionCache = cache.NoopCache{}
		rdb             *redis.Client
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			sugar.Fatalw("Invalid REDIS_URL", "error", err)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
		predictionCache = cache.NewRedisCache(rdb, cfg.PredictionCacheTTL, logger)
	}

	// Training log
	trainingLog := traininglog.Multi{traininglog.NewCSVLog(cfg.TrainingLogPath)}
	var ch driver.Conn
	if cfg.ClickHouseURL != "" {
		opts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
		if err != nil {
			sugar.Fatalw("Invalid CLICKHOUSE_URL", "error", err)
		}
		ch, err = clickhouse.Open(opts)
		if err != nil {
			sugar.Fatalw("Failed to connect to ClickHouse", "error", err)
		}
		defer ch.Close()
		trainingLog = append(trainingLog, traininglog.NewClickHouseLog(ch))
	}

	var sink diagnostics.Sink = diagnostics.NoopSink{}
	var fileSink *diagnostics.FileSink
	if cfg.DiagnosticsEnabled && cfg.ChartDir != "" {
		fileSink = diagnostics.NewFileSink(cfg.ChartDir, logger)
		sink = fileSink
	}

	bundles, err := modelstore.NewStore(cfg.ModelDir, logger)
	if err != nil {
		sugar.Fatalw("Failed to open model store", "error", err)
	}

	loader := fusion.NewLoader(cfg.BaseDataPath, cfg.MetaDataPath, store, logger)

	trainingCfg := logic.DefaultTrainingConfig()
	trainingCfg.Seed = cfg.RandomSeed
	trainingCfg.TestFraction = cfg.TestFraction
	trainingCfg.CVFolds = cfg.CVFolds
	difficulty := logic.NewDifficultyService(loader, bundles, trainingLog, sink, predictionCache, trainingCfg, logger)

	pool := worker.NewPool(worker.PoolConfig{
		QueueSize: cfg.TrainQueueSize,
		Timeout:   cfg.TrainTimeout,
		Trainer:   difficulty,
		Logger:    logger,
	})
	pool.Start(ctx)

	hcfg := handlers.Config{
		Training:   pool,
		ClickHouse: ch,
		Redis:      rdb,
		Logger:     logger,
		Data:       logic.NewDataService(loader),
		Difficulty: difficulty,
		Synergy:    logic.NewSynergyService(loader, bundles, predictionCache, logger),
		Feedback:   logic.NewFeedbackService(store, logger),
	}
	// typed nils would defeat the handler's nil checks
	if pg != nil {
		hcfg.Postgres = pg
	}
	if mysql != nil {
		hcfg.MySQL = mysql
	}
	h := handlers.New(hcfg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	h.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// train-model holds the connection until the run finishes
		WriteTimeout: cfg.TrainTimeout + 30*time.Second,
	}

	go func() {
		sugar.Infow("Server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Server shutdown failed", "error", err)
	}
	pool.Stop()
	if fileSink != nil {
		fileSink.Wait()
	}
	sugar.Info("Server stopped")
}
