package feedback

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/unitematch/unitematch-api/internal/models"
)

var csvHeader = []string{"name", "result", "timestamp"}

// CSVStore appends feedback rows to a local CSV file. Appends are serialized
// by a mutex and the file is opened with O_APPEND, so rows are never
// rewritten.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSVStore creates a store backed by path. The file is created on first write.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) Record(ctx context.Context, team []string, result string, ts time.Time) (int, error) {
	events, err := buildEvents(team, result, ts)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return 0, fmt.Errorf("create feedback dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open feedback file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat feedback file: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return 0, fmt.Errorf("write feedback header: %w", err)
		}
	}
	for _, ev := range events {
		if err := w.Write([]string{ev.Name, ev.Result, ev.Timestamp.Format(time.RFC3339Nano)}); err != nil {
			return 0, fmt.Errorf("write feedback row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush feedback rows: %w", err)
	}
	if err := f.Sync(); err != nil {
		return 0, fmt.Errorf("sync feedback file: %w", err)
	}
	return len(events), nil
}

// ListAll reads every stored event. A missing file means no feedback yet.
// Files written by the legacy exporter (Name,Win,Loss,Timestamp) are also
// understood.
func (s *CSVStore) ListAll(ctx context.Context) ([]models.FeedbackEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open feedback file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read feedback header: %w", err)
	}
	legacy := len(header) == 4 && strings.EqualFold(header[1], "win") && strings.EqualFold(header[2], "loss")

	var events []models.FeedbackEvent
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read feedback row: %w", err)
		}
		ev, ok := parseRecord(rec, legacy)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseRecord(rec []string, legacy bool) (models.FeedbackEvent, bool) {
	if legacy {
		if len(rec) < 4 {
			return models.FeedbackEvent{}, false
		}
		result := models.ResultLoss
		if strings.TrimSpace(rec[1]) == "1" {
			result = models.ResultWin
		} else if strings.TrimSpace(rec[2]) != "1" {
			return models.FeedbackEvent{}, false
		}
		return models.FeedbackEvent{Name: rec[0], Result: result, Timestamp: parseTimestamp(rec[3])}, true
	}
	if len(rec) < 3 {
		return models.FeedbackEvent{}, false
	}
	return models.FeedbackEvent{Name: rec[0], Result: rec[1], Timestamp: parseTimestamp(rec[2])}, true
}

// parseTimestamp accepts RFC3339 with or without fractional seconds; anything
// else becomes the zero time.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000Z07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
