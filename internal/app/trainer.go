package service

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/okian/cardio/internal/adapters/repository"
	"github.com/okian/cardio/internal/domain/encoding"
	"github.com/okian/cardio/internal/domain/forest"
	"github.com/okian/cardio/internal/domain/model"
	"github.com/okian/cardio/internal/domain/scaling"
	"github.com/okian/cardio/internal/domain/schema"
	"github.com/okian/cardio/pkg/logger"
	"github.com/okian/cardio/pkg/metrics"
)

// Report summarizes one training run.
type Report struct {
	RunID         string
	StartedAt     time.Time
	Duration      time.Duration
	Rows          int
	Dropped       int
	OutOfDomain   int
	Features      int
	Trees         int
	TrainAccuracy float64
	Test          Evaluation
	Constant      []string
}

// Run converts the report into a journal entry.
func (r Report) Run(status string, err error) repository.Run {
	run := repository.Run{
		ID:            r.RunID,
		StartedAt:     r.StartedAt,
		Duration:      r.Duration,
		Status:        status,
		Rows:          r.Rows,
		Dropped:       r.Dropped,
		Features:      r.Features,
		Trees:         r.Trees,
		TrainAccuracy: r.TrainAccuracy,
		TestAccuracy:  r.Test.Accuracy,
		Precision:     r.Test.Precision,
		Recall:        r.Test.Recall,
		Constant:      r.Constant,
	}
	if err != nil {
		run.Error = err.Error()
	}
	return run
}

// Trainer turns labeled records into a consistent artifact set.
type Trainer struct {
	trees           int
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int
	seed            int64
	workers         int
	testRatio       float64
	strict          bool
	logger          logger.Logger
}

// TrainerOption applies a configuration option to the Trainer.
type TrainerOption func(*Trainer)

// WithTrees sets the forest size.
func WithTrees(n int) TrainerOption {
	return func(t *Trainer) {
		if n > 0 {
			t.trees = n
		}
	}
}

// WithMaxDepth bounds tree depth; zero is unbounded.
func WithMaxDepth(depth int) TrainerOption {
	return func(t *Trainer) {
		if depth >= 0 {
			t.maxDepth = depth
		}
	}
}

// WithMinSamplesSplit sets the smallest node the trees may split.
func WithMinSamplesSplit(n int) TrainerOption {
	return func(t *Trainer) {
		if n >= 2 {
			t.minSamplesSplit = n
		}
	}
}

// WithMaxFeatures sets the candidate features per split; zero is sqrt(n).
func WithMaxFeatures(n int) TrainerOption {
	return func(t *Trainer) {
		if n >= 0 {
			t.maxFeatures = n
		}
	}
}

// WithSeed sets the base random seed for bootstrap, feature draws and the split.
func WithSeed(seed int64) TrainerOption {
	return func(t *Trainer) { t.seed = seed }
}

// WithTrainWorkers sets how many goroutines grow trees.
func WithTrainWorkers(n int) TrainerOption {
	return func(t *Trainer) {
		if n > 0 {
			t.workers = n
		}
	}
}

// WithTestRatio holds out a fraction of rows for evaluation.
func WithTestRatio(ratio float64) TrainerOption {
	return func(t *Trainer) {
		if ratio >= 0 && ratio < 1 {
			t.testRatio = ratio
		}
	}
}

// WithStrictTraining drops rows carrying undeclared categorical codes.
func WithStrictTraining(strict bool) TrainerOption {
	return func(t *Trainer) { t.strict = strict }
}

// WithTrainerLogger sets a custom logger for the trainer.
func WithTrainerLogger(l logger.Logger) TrainerOption {
	return func(t *Trainer) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTrainer constructs a Trainer with the forest defaults.
func NewTrainer(opts ...TrainerOption) *Trainer {
	t := &Trainer{
		trees:           forest.DefaultTrees,
		minSamplesSplit: forest.DefaultMinSamplesSplit,
		seed:            forest.DefaultSeed,
		workers:         runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logger.Get().Named("trainer")
	}
	return t
}

// Train fits encoder ordering, scaler and forest on rows.
func (t *Trainer) Train(ctx context.Context, rows []model.Labeled) (*repository.Artifacts, Report, error) {
	report := Report{RunID: uuid.NewString(), StartedAt: time.Now()}
	a, err := t.train(ctx, rows, &report)
	report.Duration = time.Since(report.StartedAt)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordTrainingRun(status, report.Duration.Seconds())
	if err != nil {
		t.logger.Error(ctx, "training failed", logger.String("run_id", report.RunID), logger.Error(err))
		return nil, report, err
	}
	metrics.UpdateTrainingResult(report.Rows, report.Dropped, len(report.Constant), report.TrainAccuracy, report.Test.Accuracy)
	t.logger.Info(ctx, "training finished",
		logger.String("run_id", report.RunID),
		logger.Int("rows", report.Rows),
		logger.Int("features", report.Features),
		logger.Int("trees", report.Trees),
		logger.Float64("train_accuracy", report.TrainAccuracy),
		logger.Float64("test_accuracy", report.Test.Accuracy),
		logger.Duration("took", report.Duration),
	)
	return a, report, nil
}

func (t *Trainer) train(ctx context.Context, rows []model.Labeled, report *Report) (*repository.Artifacts, error) {
	kept := make([]model.Labeled, 0, len(rows))
	for _, row := range rows {
		if bad := row.OutOfDomain(); len(bad) > 0 {
			report.OutOfDomain++
			if t.strict {
				report.Dropped++
				continue
			}
		}
		kept = append(kept, row)
	}
	if report.OutOfDomain > 0 {
		t.logger.Warn(ctx, "training rows with undeclared categorical codes",
			logger.Int("rows", report.OutOfDomain), logger.Bool("dropped", t.strict))
	}
	if err := checkClasses(kept); err != nil {
		return nil, err
	}

	vectors := make([]encoding.Vector, len(kept))
	for i, row := range kept {
		vectors[i] = encoding.Encode(row.Record, nil)
	}
	ordering := encoding.DeriveOrdering(vectors)
	for i, row := range kept {
		vectors[i] = encoding.Encode(row.Record, ordering)
	}

	trainIdx, testIdx := t.split(len(kept))
	if err := checkClasses(pick(kept, trainIdx)); err != nil {
		return nil, fmt.Errorf("training split: %w", err)
	}
	report.Rows = len(trainIdx)
	report.Features = len(ordering)

	scaler, err := fitScaler(vectors, trainIdx, ordering)
	if err != nil {
		return nil, err
	}
	report.Constant = scaler.Constant
	if scaler.Degenerate() {
		t.logger.Warn(ctx, "constant continuous columns scaled with std 1", logger.Any("columns", scaler.Constant))
	}

	matrix := make([][]float64, len(kept))
	labels := make([]int, len(kept))
	for i := range kept {
		scaled, err := scaler.TransformVector(vectors[i])
		if err != nil {
			return nil, err
		}
		matrix[i] = scaled.Values
		labels[i] = kept[i].Target
	}

	trainRows, trainLabels := gather(matrix, labels, trainIdx)
	f, err := forest.Fit(ctx, trainRows, trainLabels,
		forest.WithTrees(t.trees),
		forest.WithMaxDepth(t.maxDepth),
		forest.WithMinSamplesSplit(t.minSamplesSplit),
		forest.WithMaxFeatures(t.maxFeatures),
		forest.WithSeed(t.seed),
		forest.WithWorkers(t.workers),
	)
	if err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}
	report.Trees = len(f.Trees)

	trainEval, err := Evaluate(f, trainRows, trainLabels)
	if err != nil {
		return nil, err
	}
	report.TrainAccuracy = trainEval.Accuracy
	if len(testIdx) > 0 {
		testRows, testLabels := gather(matrix, labels, testIdx)
		if report.Test, err = Evaluate(f, testRows, testLabels); err != nil {
			return nil, err
		}
	}

	return &repository.Artifacts{
		RunID:     report.RunID,
		TrainedAt: report.StartedAt.UTC(),
		Forest:    f,
		Scaler:    scaler,
		Ordering:  ordering,
	}, nil
}

// split shuffles row indices with the trainer seed and holds out testRatio of them.
func (t *Trainer) split(n int) (train, test []int) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if t.testRatio <= 0 {
		return idx, nil
	}
	rng := rand.New(rand.NewSource(t.seed))
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	cut := int(float64(n) * t.testRatio)
	return idx[cut:], idx[:cut]
}

func fitScaler(vectors []encoding.Vector, rows []int, ordering encoding.Ordering) (scaling.State, error) {
	cont := schema.Continuous()
	data := make([][]float64, len(cont))
	for j, name := range cont {
		col := ordering.Index(name)
		if col < 0 {
			return scaling.State{}, fmt.Errorf("%w: %s", scaling.ErrMissingColumn, name)
		}
		series := make([]float64, len(rows))
		for k, i := range rows {
			series[k] = vectors[i].Values[col]
		}
		data[j] = series
	}
	return scaling.Fit(cont, data)
}

func checkClasses(rows []model.Labeled) error {
	if len(rows) == 0 {
		return fmt.Errorf("%w: no rows", ErrInsufficientData)
	}
	var seen [2]bool
	for _, r := range rows {
		if r.Target != 0 && r.Target != 1 {
			return fmt.Errorf("%w: %d", forest.ErrInvalidLabel, r.Target)
		}
		seen[r.Target] = true
	}
	if !seen[0] || !seen[1] {
		return fmt.Errorf("%w: only one class present", ErrInsufficientData)
	}
	return nil
}

func pick(rows []model.Labeled, idx []int) []model.Labeled {
	out := make([]model.Labeled, len(idx))
	for k, i := range idx {
		out[k] = rows[i]
	}
	return out
}

func gather(matrix [][]float64, labels []int, idx []int) ([][]float64, []int) {
	rows := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for k, i := range idx {
		rows[k] = matrix[i]
		ys[k] = labels[i]
	}
	return rows, ys
}
