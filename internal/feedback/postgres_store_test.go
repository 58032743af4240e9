package feedback

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockPgPool struct {
	QueryFunc func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	ExecFunc  func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (m *MockPgPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sql, args...)
	}
	return &MockRows{}, nil
}

func (m *MockPgPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

type MockRows struct {
	pgx.Rows
	data [][]any
	pos  int
}

func (m *MockRows) Next() bool {
	m.pos++
	return m.pos <= len(m.data)
}

func (m *MockRows) Scan(dest ...any) error {
	row := m.data[m.pos-1]
	for i, d := range dest {
		switch v := d.(type) {
		case *string:
			*v = row[i].(string)
		case *time.Time:
			*v = row[i].(time.Time)
		}
	}
	return nil
}

func (m *MockRows) Close()     {}
func (m *MockRows) Err() error { return nil }

func TestPostgresStore_Record(t *testing.T) {
	var gotArgs []any
	pool := &MockPgPool{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			if !strings.Contains(sql, "INSERT INTO feedback") {
				return pgconn.CommandTag{}, errors.New("unexpected statement")
			}
			gotArgs = args
			return pgconn.NewCommandTag("INSERT 0 2"), nil
		},
	}

	n, err := NewPostgresStore(pool).Record(context.Background(), []string{"Pikachu", "Snorlax"}, "loss", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, gotArgs, 3)
	assert.Equal(t, []string{"Pikachu", "Snorlax"}, gotArgs[0])
	assert.Equal(t, "loss", gotArgs[1])
}

func TestPostgresStore_RecordRejectsBadResult(t *testing.T) {
	called := false
	pool := &MockPgPool{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			called = true
			return pgconn.CommandTag{}, nil
		},
	}
	_, err := NewPostgresStore(pool).Record(context.Background(), []string{"Pikachu"}, "tie", time.Now())
	assert.Error(t, err)
	assert.False(t, called)
}

func TestPostgresStore_ListAll(t *testing.T) {
	ts := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	pool := &MockPgPool{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return &MockRows{data: [][]any{
				{"Pikachu", "win", ts},
				{"Snorlax", "loss", ts},
			}}, nil
		},
	}

	events, err := NewPostgresStore(pool).ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Snorlax", events[1].Name)
	assert.Equal(t, ts, events[0].Timestamp)
}

func TestPostgresStore_ListAllError(t *testing.T) {
	pool := &MockPgPool{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return nil, errors.New("connection refused")
		},
	}
	_, err := NewPostgresStore(pool).ListAll(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}
