package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/cardio/internal/domain/encoding"
	"github.com/okian/cardio/internal/domain/forest"
	"github.com/okian/cardio/internal/domain/scaling"
	"github.com/okian/cardio/pkg/logger"
	"github.com/okian/cardio/pkg/metrics"
)

// Blob names inside the artifact directory.
const (
	ModelFile    = "model.json"
	ScalerFile   = "scaler.json"
	OrderingFile = "feature_names.json"
)

type modelBlob struct {
	RunID     string         `json:"run_id"`
	TrainedAt time.Time      `json:"trained_at"`
	Forest    *forest.Forest `json:"forest"`
}

type scalerBlob struct {
	RunID  string        `json:"run_id"`
	Scaler scaling.State `json:"scaler"`
}

type orderingBlob struct {
	RunID    string            `json:"run_id"`
	Features encoding.Ordering `json:"feature_names"`
}

// FileStore keeps the three artifacts as JSON files in one directory.
type FileStore struct {
	dir    string
	perm   fs.FileMode
	logger logger.Logger
}

// NewFileStore returns a store rooted at dir. The directory is created on
// first Save.
func NewFileStore(dir string, opts ...Option) *FileStore {
	s := &FileStore{
		dir:    dir,
		perm:   0o644,
		logger: logger.Get().Named("artifacts"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the artifact directory.
func (s *FileStore) Dir() string { return s.dir }

// Save writes model, scaler and ordering blobs, each through a temp file
// and rename.
func (s *FileStore) Save(ctx context.Context, a *Artifacts) (err error) {
	start := time.Now()
	defer func() { observe("save", start, err) }()

	if err := a.Validate(); err != nil {
		return fmt.Errorf("save artifacts: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	blobs := []struct {
		name string
		v    any
	}{
		{ModelFile, modelBlob{RunID: a.RunID, TrainedAt: a.TrainedAt, Forest: a.Forest}},
		{ScalerFile, scalerBlob{RunID: a.RunID, Scaler: a.Scaler}},
		{OrderingFile, orderingBlob{RunID: a.RunID, Features: a.Ordering}},
	}
	for _, b := range blobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.write(b.name, b.v); err != nil {
			return err
		}
	}
	s.logger.Info(ctx, "artifacts saved", logger.String("dir", s.dir), logger.String("run_id", a.RunID))
	return nil
}

// Load reads all three blobs and checks they share a run id.
func (s *FileStore) Load(ctx context.Context) (a *Artifacts, err error) {
	start := time.Now()
	defer func() { observe("load", start, err) }()

	m, err := s.LoadModel(ctx)
	if err != nil {
		return nil, err
	}
	sc, scRun, err := s.loadScaler()
	if err != nil {
		return nil, err
	}
	ord, ordRun, err := s.loadOrdering()
	if err != nil {
		return nil, err
	}
	if scRun != m.RunID || ordRun != m.RunID {
		return nil, fmt.Errorf("%w: model=%s scaler=%s features=%s", ErrInconsistentArtifacts, m.RunID, scRun, ordRun)
	}
	a = &Artifacts{RunID: m.RunID, TrainedAt: m.TrainedAt, Forest: m.Forest, Scaler: sc, Ordering: ord}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("load artifacts: %w", err)
	}
	return a, nil
}

// LoadModel reads only the forest blob.
func (s *FileStore) LoadModel(_ context.Context) (*Artifacts, error) {
	var b modelBlob
	if err := s.read(ModelFile, &b); err != nil {
		return nil, err
	}
	if err := b.Forest.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ModelFile, err)
	}
	return &Artifacts{RunID: b.RunID, TrainedAt: b.TrainedAt, Forest: b.Forest}, nil
}

// LoadScaler reads only the scaler blob.
func (s *FileStore) LoadScaler(_ context.Context) (scaling.State, error) {
	st, _, err := s.loadScaler()
	return st, err
}

// LoadOrdering reads only the feature name ordering.
func (s *FileStore) LoadOrdering(_ context.Context) (encoding.Ordering, error) {
	ord, _, err := s.loadOrdering()
	return ord, err
}

func (s *FileStore) loadScaler() (scaling.State, string, error) {
	var b scalerBlob
	if err := s.read(ScalerFile, &b); err != nil {
		return scaling.State{}, "", err
	}
	if err := b.Scaler.Validate(); err != nil {
		return scaling.State{}, "", fmt.Errorf("%s: %w", ScalerFile, err)
	}
	return b.Scaler, b.RunID, nil
}

func (s *FileStore) loadOrdering() (encoding.Ordering, string, error) {
	var b orderingBlob
	if err := s.read(OrderingFile, &b); err != nil {
		return nil, "", err
	}
	if len(b.Features) == 0 {
		return nil, "", fmt.Errorf("%s: %w", OrderingFile, ErrIncompleteArtifacts)
	}
	return b.Features, b.RunID, nil
}

func (s *FileStore) read(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) write(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), s.perm); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

func observe(op string, start time.Time, err error) {
	status := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	metrics.RecordArtifactOperation(op, status, float64(time.Since(start).Microseconds())/1000)
}
