// Command train fits the classifier offline and writes the artifact set
// that the server loads when training on startup is disabled.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/okian/cardio/internal/adapters/dataset"
	"github.com/okian/cardio/internal/adapters/repository"
	service "github.com/okian/cardio/internal/app"
	"github.com/okian/cardio/pkg/logger"
)

type options struct {
	data      string
	out       string
	journal   string
	trees     int
	maxDepth  int
	minSplit  int
	seed      int64
	testRatio float64
	workers   int
	strict    bool
}

func main() {
	var o options
	flag.StringVar(&o.data, "data", "heart.csv", "Training CSV")
	flag.StringVar(&o.out, "out", "artifacts", "Directory for model.json, scaler.json and feature_names.json")
	flag.StringVar(&o.journal, "journal", "", "SQLite file to record the run in (optional)")
	flag.IntVar(&o.trees, "trees", 100, "Number of trees")
	flag.IntVar(&o.maxDepth, "max-depth", 0, "Maximum tree depth, 0 for unbounded")
	flag.IntVar(&o.minSplit, "min-samples-split", 2, "Minimum samples to split a node")
	flag.Int64Var(&o.seed, "seed", 42, "Random seed")
	flag.Float64Var(&o.testRatio, "test-ratio", 0.2, "Held-out fraction for evaluation")
	flag.IntVar(&o.workers, "workers", runtime.NumCPU(), "Concurrent tree builders")
	flag.BoolVar(&o.strict, "strict", false, "Drop rows with undeclared categorical codes")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := train(ctx, o, logger.Get())
	if err != nil {
		logger.Get().Error(ctx, "training failed", logger.Error(err))
		os.Exit(1)
	}
	fmt.Printf("run %s: %d rows, train accuracy %.3f, test accuracy %.3f (precision %.3f, recall %.3f)\n",
		report.RunID, report.Rows, report.TrainAccuracy, report.Test.Accuracy, report.Test.Precision, report.Test.Recall)
}

func train(ctx context.Context, o options, log logger.Logger) (service.Report, error) {
	rows, err := dataset.Load(ctx, o.data)
	if err != nil {
		return service.Report{}, fmt.Errorf("load %s: %w", o.data, err)
	}

	trainer := service.NewTrainer(
		service.WithTrees(o.trees),
		service.WithMaxDepth(o.maxDepth),
		service.WithMinSamplesSplit(o.minSplit),
		service.WithSeed(o.seed),
		service.WithTestRatio(o.testRatio),
		service.WithTrainWorkers(o.workers),
		service.WithStrictTraining(o.strict),
		service.WithTrainerLogger(log.Named("trainer")),
	)
	artifacts, report, trainErr := trainer.Train(ctx, rows)

	if o.journal != "" {
		journal, err := repository.OpenJournal(ctx, o.journal)
		if err != nil {
			return report, fmt.Errorf("open journal: %w", err)
		}
		defer journal.Close()
		status := "ok"
		if trainErr != nil {
			status = "error"
		}
		if err := journal.Record(ctx, report.Run(status, trainErr)); err != nil {
			log.Error(ctx, "failed to journal run", logger.Error(err))
		}
	}
	if trainErr != nil {
		return report, trainErr
	}

	store := repository.NewFileStore(o.out, repository.WithLogger(log.Named("artifacts")))
	if err := store.Save(ctx, artifacts); err != nil {
		return report, fmt.Errorf("save artifacts: %w", err)
	}
	return report, nil
}
