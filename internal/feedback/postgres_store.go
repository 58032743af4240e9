package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/unitematch/unitematch-api/internal/models"
)

// PgPool defines the subset of pgxpool.Pool used by PostgresStore
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore keeps feedback in the feedback table (id, name, result, timestamp).
type PostgresStore struct {
	pg PgPool
}

func NewPostgresStore(pg PgPool) *PostgresStore {
	return &PostgresStore{pg: pg}
}

func (s *PostgresStore) Record(ctx context.Context, team []string, result string, ts time.Time) (int, error) {
	events, err := buildEvents(team, result, ts)
	if err != nil {
		return 0, err
	}

	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = ev.Name
	}

	// One statement so a team submission is stored all-or-nothing
	tag, err := s.pg.Exec(ctx, `
		INSERT INTO feedback (name, result, timestamp)
		SELECT unnest($1::text[]), $2, $3
	`, names, events[0].Result, events[0].Timestamp)
	if err != nil {
		return 0, fmt.Errorf("insert feedback: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]models.FeedbackEvent, error) {
	rows, err := s.pg.Query(ctx, `SELECT name, result, timestamp FROM feedback ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	var events []models.FeedbackEvent
	for rows.Next() {
		var ev models.FeedbackEvent
		if err := rows.Scan(&ev.Name, &ev.Result, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return events, nil
}
