package modelstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/unitematch/unitematch-api/internal/models"
)

const currentFile = "CURRENT"

var (
	bundleLoads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unitematch_model_bundle_loads_total",
		Help: "Model bundles read from disk",
	})
	bundleCommits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unitematch_model_bundle_commits_total",
		Help: "Model bundles committed",
	})
)

// Store keeps bundles under one directory. Save is single-writer; Latest
// is a read-through cache keyed by the committed version.
type Store struct {
	dir    string
	logger *zap.SugaredLogger

	writeMu sync.Mutex

	mu     sync.RWMutex
	cached *Bundle
	loads  singleflight.Group
}

func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}
	return &Store{dir: dir, logger: logger.Sugar()}, nil
}

func bundleFile(version string) string {
	return "bundle-" + version + ".json"
}

// Save writes the bundle and then points CURRENT at it. Readers see either
// the previous bundle or this one, never a partial file.
func (s *Store) Save(ctx context.Context, b *Bundle) error {
	if b.Version == "" {
		b.Version = NewVersion(time.Now())
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	if err := b.validate(); err != nil {
		return err
	}
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeAtomic(s.dir, bundleFile(b.Version), data); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	if err := writeAtomic(s.dir, currentFile, []byte(b.Version+"\n")); err != nil {
		return fmt.Errorf("swap current pointer: %w", err)
	}

	s.mu.Lock()
	s.cached = b
	s.mu.Unlock()

	bundleCommits.Inc()
	s.logger.Infow("Committed model bundle", "version", b.Version, "bytes", len(data))
	return nil
}

// CurrentVersion returns the committed version or ModelNotTrainedError.
func (s *Store) CurrentVersion() (string, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, currentFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", &models.ModelNotTrainedError{Dir: s.dir}
	}
	if err != nil {
		return "", fmt.Errorf("read current pointer: %w", err)
	}
	v := strings.TrimSpace(string(raw))
	if v == "" {
		return "", &models.ModelNotTrainedError{Dir: s.dir}
	}
	return v, nil
}

// Latest returns the committed bundle, reading it from disk only when the
// committed version changed since the last call.
func (s *Store) Latest(ctx context.Context) (*Bundle, error) {
	version, err := s.CurrentVersion()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil && cached.Version == version {
		return cached, nil
	}

	ch := s.loads.DoChan(version, func() (interface{}, error) {
		b, err := s.load(version)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cached = b
		s.mu.Unlock()
		return b, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Bundle), nil
	}
}

func (s *Store) load(version string) (*Bundle, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, bundleFile(version)))
	if err != nil {
		return nil, fmt.Errorf("read bundle %s: %w", version, err)
	}
	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode bundle %s: %w", version, err)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	bundleLoads.Inc()
	s.logger.Infow("Loaded model bundle", "version", version)
	return &b, nil
}

// writeAtomic writes data to a temp file in dir, syncs it and renames it
// over name.
func writeAtomic(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		return err
	}

	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		d.Close()
	}
	return nil
}
