// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/cardio/internal/adapters/dataset"
	"github.com/okian/cardio/internal/adapters/repository"
	"github.com/okian/cardio/internal/domain/encoding"
	"github.com/okian/cardio/internal/domain/model"
	"github.com/okian/cardio/internal/domain/types"
	"github.com/okian/cardio/pkg/logger"
	"github.com/okian/cardio/pkg/metrics"
)

// Journal records training runs.
type Journal interface {
	Record(ctx context.Context, r repository.Run) error
	Recent(ctx context.Context, limit int) ([]repository.Run, error)
}

// Service trains or loads the classifier artifacts and serves predictions.
type Service struct {
	mu sync.RWMutex

	// Core components
	trainer   *Trainer
	store     repository.Store
	journal   Journal
	artifacts *repository.Artifacts

	// Configuration
	dataPath       string
	trainOnStartup bool
	strict         bool

	// State
	started     bool
	lastReport  *Report
	predictions atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithTrainer sets the trainer used on startup.
func WithTrainer(t *Trainer) Option {
	return func(s *Service) {
		if t != nil {
			s.trainer = t
		}
	}
}

// WithStore sets where artifacts are saved after training and loaded from
// when training on startup is disabled.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithJournal sets the training-run journal.
func WithJournal(j Journal) Option {
	return func(s *Service) {
		s.journal = j
	}
}

// WithDataPath sets the training CSV path.
func WithDataPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dataPath = path
		}
	}
}

// WithTrainOnStartup chooses between training from the CSV (true) and
// loading persisted artifacts (false) in Start.
func WithTrainOnStartup(train bool) Option {
	return func(s *Service) {
		s.trainOnStartup = train
	}
}

// WithStrictCategories rejects records with undeclared categorical codes
// instead of encoding them as an all-zero block.
func WithStrictCategories(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataPath:       "heart.csv",
		trainOnStartup: true,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start trains from the dataset or loads persisted artifacts. Missing data,
// insufficient data and missing or inconsistent artifacts leave the service
// running untrained. A malformed dataset is returned as an error.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.trainer == nil {
		s.trainer = NewTrainer(WithStrictTraining(s.strict))
	}

	s.logger.Info(ctx, "starting prediction service...",
		logger.Bool("train_on_startup", s.trainOnStartup),
		logger.String("data_path", s.dataPath),
		logger.Bool("strict", s.strict),
	)

	var err error
	if s.trainOnStartup {
		err = s.trainLocked(ctx)
	} else {
		err = s.loadLocked(ctx)
	}
	if err != nil {
		return err
	}

	s.started = true
	s.publishLocked()
	s.logger.Info(ctx, "prediction service started", logger.Bool("ready", s.artifacts != nil))
	return nil
}

func (s *Service) trainLocked(ctx context.Context) error {
	rows, err := dataset.Load(ctx, s.dataPath)
	if errors.Is(err, dataset.ErrNoData) {
		s.logger.Warn(ctx, "no training data, serving untrained", logger.String("path", s.dataPath))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load training data: %w", err)
	}

	a, report, err := s.trainer.Train(ctx, rows)
	s.recordRun(ctx, report, err)
	if errors.Is(err, ErrInsufficientData) {
		s.logger.Warn(ctx, "training data insufficient, serving untrained", logger.Error(err))
		return nil
	}
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	s.lastReport = &report

	if s.store != nil {
		if err := s.store.Save(ctx, a); err != nil {
			// the in-memory set is still consistent and can serve
			s.logger.Error(ctx, "failed to persist artifacts", logger.Error(err))
			metrics.RecordErrorByComponent("service", "artifact_save")
		}
	}
	s.artifacts = a
	return nil
}

func (s *Service) loadLocked(ctx context.Context) error {
	if s.store == nil {
		s.logger.Warn(ctx, "training disabled and no artifact store configured, serving untrained")
		return nil
	}
	a, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Warn(ctx, "no persisted artifacts, serving untrained", logger.Error(err))
		return nil
	case err != nil:
		s.logger.Error(ctx, "persisted artifacts unusable, serving untrained", logger.Error(err))
		metrics.RecordErrorByComponent("service", "artifact_load")
		return nil
	}
	s.artifacts = a
	s.logger.Info(ctx, "artifacts loaded", logger.String("run_id", a.RunID))
	return nil
}

func (s *Service) recordRun(ctx context.Context, report Report, err error) {
	if s.journal == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	if jerr := s.journal.Record(ctx, report.Run(status, err)); jerr != nil {
		s.logger.Error(ctx, "failed to journal training run", logger.Error(jerr))
	}
}

func (s *Service) publishLocked() {
	if s.artifacts == nil {
		metrics.UpdateModelInfo(false, 0, 0)
		return
	}
	metrics.UpdateModelInfo(true, len(s.artifacts.Ordering), len(s.artifacts.Forest.Trees))
}

// Stop releases the service. The loaded artifacts stay in memory.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if closer, ok := s.journal.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Error(context.Background(), "error closing journal", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(context.Background(), "prediction service stopped")
}

// Use installs an already trained artifact set.
func (s *Service) Use(a *repository.Artifacts) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts = a
	s.publishLocked()
	return nil
}

// Ready reports whether all three artifacts are loaded.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.artifacts != nil
}

func (s *Service) current() *repository.Artifacts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.artifacts
}

// Predict classifies one decoded record.
func (s *Service) Predict(ctx context.Context, rec model.Record) (types.Prediction, error) {
	a := s.current()
	if a == nil {
		return types.Prediction{}, ErrModelUnavailable
	}
	start := time.Now()

	if s.strict {
		if err := rec.Validate(); err != nil {
			return types.Prediction{}, err
		}
	} else if bad := rec.OutOfDomain(); len(bad) > 0 {
		for _, feature := range bad {
			metrics.RecordOutOfDomain(feature)
		}
		s.log().Debug(ctx, "undeclared categorical codes encoded as zero", logger.Any("features", bad))
	}

	scaled, err := a.Scaler.TransformVector(encoding.Encode(rec, a.Ordering))
	if err != nil {
		return types.Prediction{}, fmt.Errorf("scale: %w", err)
	}
	label, proba, err := a.Forest.Predict(scaled.Values)
	if err != nil {
		return types.Prediction{}, fmt.Errorf("forest: %w", err)
	}

	s.predictions.Add(1)
	metrics.RecordPrediction(label, proba, float64(time.Since(start).Microseconds())/1000)
	return types.Prediction{Label: label, Probability: proba}, nil
}

// Info describes the served artifact set.
func (s *Service) Info() types.ModelInfo {
	a := s.current()
	info := types.ModelInfo{Strict: s.strict}
	if a == nil {
		return info
	}
	info.Ready = true
	info.RunID = a.RunID
	info.Features = len(a.Ordering)
	info.Trees = len(a.Forest.Trees)
	return info
}

// Runs returns the most recent journal entries.
func (s *Service) Runs(ctx context.Context, limit int) ([]repository.Run, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	return s.journal.Recent(ctx, limit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	info := s.Info()

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"ready":       info.Ready,
		"strict":      info.Strict,
		"features":    info.Features,
		"trees":       info.Trees,
		"predictions": s.predictions.Load(),
	}
	if info.RunID != "" {
		stats["runId"] = info.RunID
	}
	if s.lastReport != nil {
		stats["trainRows"] = s.lastReport.Rows
		stats["trainAccuracy"] = s.lastReport.TrainAccuracy
		if s.lastReport.Test.Samples > 0 {
			stats["testAccuracy"] = s.lastReport.Test.Accuracy
		}
	}
	return stats
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	l := s.logger
	s.mu.RUnlock()
	if l == nil {
		return logger.Get()
	}
	return l
}
