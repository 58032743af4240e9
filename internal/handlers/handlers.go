package handlers

import (
	"context"
	"database/sql"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/unitematch/unitematch-api/internal/logic"
	"github.com/unitematch/unitematch-api/internal/models"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// TrainingQueue defines the interface for the background training worker
type TrainingQueue interface {
	Submit(ctx context.Context, tune bool) (*models.TrainingReport, error)
	QueueDepth() int
}

// PostgresExecer is the subset of pgxpool.Pool used for readiness and migrations.
type PostgresExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// MySQLExecer is the subset of sqlx.DB used for readiness and migrations.
type MySQLExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PingContext(ctx context.Context) error
}

// Config wires the handler. Infrastructure clients are optional; nil
// means the backend is not configured.
type Config struct {
	Training   TrainingQueue
	Postgres   PostgresExecer
	MySQL      MySQLExecer
	ClickHouse driver.Conn
	Redis      *redis.Client
	Logger     *zap.Logger
	// MigrationsDir holds postgres/, mysql/ and clickhouse/ SQL files.
	MigrationsDir string
	// Services
	Data       logic.DataService
	Difficulty logic.DifficultyService
	Synergy    logic.SynergyService
	Feedback   logic.FeedbackService
}

type Handler struct {
	training      TrainingQueue
	pg            PostgresExecer
	mysql         MySQLExecer
	ch            driver.Conn
	redis         *redis.Client
	logger        *zap.SugaredLogger
	validator     *validator.Validate
	migrationsDir string
	data          logic.DataService
	difficulty    logic.DifficultyService
	synergy       logic.SynergyService
	feedback      logic.FeedbackService
}

func New(cfg Config) *Handler {
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = "migrations"
	}
	return &Handler{
		training:      cfg.Training,
		pg:            cfg.Postgres,
		mysql:         cfg.MySQL,
		ch:            cfg.ClickHouse,
		redis:         cfg.Redis,
		logger:        cfg.Logger.Sugar(),
		validator:     validator.New(),
		migrationsDir: cfg.MigrationsDir,
		data:          cfg.Data,
		difficulty:    cfg.Difficulty,
		synergy:       cfg.Synergy,
		feedback:      cfg.Feedback,
	}
}
