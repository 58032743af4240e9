package traininglog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"sync"
	"time"
)

var csvHeader = []string{
	"timestamp", "run_id", "model_version", "algorithm", "tuned",
	"accuracy", "f1_weighted", "cv_score", "hyperparameters", "feature_importances",
	"train_size", "test_size", "synergy_r2", "duration_ms",
}

// CSVLog appends rows to a CSV file opened with O_APPEND.
type CSVLog struct {
	path string
	mu   sync.Mutex
}

func NewCSVLog(path string) *CSVLog {
	return &CSVLog{path: path}
}

func (l *CSVLog) Append(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open training log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return err
		}
	}
	if err := w.Write(e.record()); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write training log: %w", err)
	}
	return f.Sync()
}

// Recent returns up to n of the newest rows, oldest first. A missing file
// is an empty log.
func (l *CSVLog) Recent(ctx context.Context, n int) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)
	var out []Entry
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read training log: %w", err)
		}
		if first {
			first = false
			if rec[0] == csvHeader[0] {
				continue
			}
		}
		e, err := parseRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

func (e Entry) record() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		e.RunID,
		e.ModelVersion,
		e.Algorithm,
		strconv.FormatBool(e.Tuned),
		f(e.Accuracy),
		f(e.F1Weighted),
		f(e.CVScore),
		e.Hyperparameters,
		e.FeatureImportances,
		strconv.Itoa(e.TrainSize),
		strconv.Itoa(e.TestSize),
		f(e.SynergyR2),
		strconv.FormatInt(e.DurationMS, 10),
	}
}

func parseRecord(rec []string) (Entry, error) {
	var (
		e   Entry
		err error
	)
	errs := make([]error, 0)
	keep := func(perr error) {
		if perr != nil {
			errs = append(errs, perr)
		}
	}
	e.Timestamp, err = time.Parse(time.RFC3339Nano, rec[0])
	keep(err)
	e.RunID, e.ModelVersion, e.Algorithm = rec[1], rec[2], rec[3]
	e.Tuned, err = strconv.ParseBool(rec[4])
	keep(err)
	e.Accuracy, err = strconv.ParseFloat(rec[5], 64)
	keep(err)
	e.F1Weighted, err = strconv.ParseFloat(rec[6], 64)
	keep(err)
	e.CVScore, err = strconv.ParseFloat(rec[7], 64)
	keep(err)
	e.Hyperparameters, e.FeatureImportances = rec[8], rec[9]
	e.TrainSize, err = strconv.Atoi(rec[10])
	keep(err)
	e.TestSize, err = strconv.Atoi(rec[11])
	keep(err)
	e.SynergyR2, err = strconv.ParseFloat(rec[12], 64)
	keep(err)
	e.DurationMS, err = strconv.ParseInt(rec[13], 10, 64)
	keep(err)
	if len(errs) > 0 {
		return Entry{}, fmt.Errorf("parse training log row %s: %w", rec[1], errors.Join(errs...))
	}
	return e, nil
}
