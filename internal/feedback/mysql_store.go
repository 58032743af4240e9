package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/unitematch/unitematch-api/internal/models"
)

// MySQLStore keeps feedback in a MySQL feedback table.
type MySQLStore struct {
	db *sqlx.DB
}

// OpenMySQL connects with parseTime enabled so DATETIME columns scan into time.Time.
func OpenMySQL(ctx context.Context, dsn string) (*sqlx.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}

	db, err := sqlx.ConnectContext(ctx, "mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

func NewMySQLStore(db *sqlx.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) Record(ctx context.Context, team []string, result string, ts time.Time) (int, error) {
	events, err := buildEvents(team, result, ts)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin feedback tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.NamedExecContext(ctx,
		`INSERT INTO feedback (name, result, timestamp) VALUES (:name, :result, :timestamp)`, events)
	if err != nil {
		return 0, fmt.Errorf("insert feedback: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit feedback: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return len(events), nil
	}
	return int(n), nil
}

func (s *MySQLStore) ListAll(ctx context.Context) ([]models.FeedbackEvent, error) {
	var events []models.FeedbackEvent
	if err := s.db.SelectContext(ctx, &events, `SELECT name, result, timestamp FROM feedback ORDER BY id`); err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	return events, nil
}
