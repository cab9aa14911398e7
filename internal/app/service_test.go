package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/cardio/internal/adapters/repository"
	service "github.com/okian/cardio/internal/app"
	"github.com/okian/cardio/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it is not ready and reports no model", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Ready(), ShouldBeFalse)
			info := svc.Info()
			So(info.Ready, ShouldBeFalse)
			So(info.RunID, ShouldBeEmpty)
		})
	})
}

func TestService_StartTraining(t *testing.T) {
	Convey("Given a training CSV and an artifact store", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		path := writeCSV(t, syntheticRows(200, 5))
		dir := t.TempDir()
		store := repository.NewFileStore(dir)
		journal, err := repository.OpenJournal(ctx, filepath.Join(dir, "runs.db"))
		So(err, ShouldBeNil)

		svc := service.New(
			service.WithDataPath(path),
			service.WithStore(store),
			service.WithJournal(journal),
			service.WithTrainer(service.NewTrainer(service.WithTrees(20))),
		)
		defer svc.Stop()

		Convey("When starting the service", func() {
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then it is ready and the model info is populated", func() {
				So(svc.Ready(), ShouldBeTrue)
				info := svc.Info()
				So(info.Features, ShouldEqual, 28)
				So(info.Trees, ShouldEqual, 20)
				So(info.RunID, ShouldNotBeEmpty)
			})

			Convey("Then the reference patient gets a well-formed prediction", func() {
				p, err := svc.Predict(ctx, referenceRecord())
				So(err, ShouldBeNil)
				So(p.Label == 0 || p.Label == 1, ShouldBeTrue)
				So(p.Probability, ShouldBeBetweenOrEqual, 0, 1)
				So(p.Label == 1, ShouldEqual, p.Probability > 0.5)
			})

			Convey("Then the artifacts were persisted under the same run id", func() {
				a, err := store.Load(ctx)
				So(err, ShouldBeNil)
				So(a.RunID, ShouldEqual, svc.Info().RunID)
			})

			Convey("Then the run was journaled", func() {
				runs, err := svc.Runs(ctx, 5)
				So(err, ShouldBeNil)
				So(runs, ShouldHaveLength, 1)
				So(runs[0].ID, ShouldEqual, svc.Info().RunID)
				So(runs[0].Status, ShouldEqual, "ok")
			})

			Convey("Then stats count served predictions", func() {
				_, _ = svc.Predict(ctx, referenceRecord())
				_, _ = svc.Predict(ctx, referenceRecord())
				stats := svc.GetStats()
				So(stats["ready"], ShouldEqual, true)
				So(stats["predictions"], ShouldEqual, int64(2))
				So(stats["trainRows"], ShouldEqual, 200)
			})

			Convey("Then starting again is a no-op", func() {
				runID := svc.Info().RunID
				So(svc.Start(ctx), ShouldBeNil)
				So(svc.Info().RunID, ShouldEqual, runID)
			})
		})
	})
}

func TestService_Untrained(t *testing.T) {
	Convey("Given no training data", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithDataPath(filepath.Join(t.TempDir(), "heart.csv")))
		defer svc.Stop()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then it starts untrained", func() {
				So(err, ShouldBeNil)
				So(svc.Ready(), ShouldBeFalse)
			})

			Convey("And predictions fail with model unavailable", func() {
				_, err := svc.Predict(ctx, referenceRecord())
				So(errors.Is(err, service.ErrModelUnavailable), ShouldBeTrue)
			})

			Convey("And the journal is reported as disabled", func() {
				_, err := svc.Runs(ctx, 5)
				So(errors.Is(err, service.ErrJournalDisabled), ShouldBeTrue)
			})
		})
	})

	Convey("Given a single-class dataset", t, func() {
		rows := syntheticRows(30, 6)
		for i := range rows {
			rows[i].Target = 0
		}
		svc := service.New(service.WithDataPath(writeCSV(t, rows)))
		defer svc.Stop()

		Convey("Then the service starts untrained", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Ready(), ShouldBeFalse)
		})
	})

	Convey("Given a malformed dataset", t, func() {
		path := filepath.Join(t.TempDir(), "heart.csv")
		So(os.WriteFile(path, []byte("age,target\n1,0\n"), 0o600), ShouldBeNil)
		svc := service.New(service.WithDataPath(path))

		Convey("Then Start returns the error", func() {
			So(svc.Start(context.Background()), ShouldNotBeNil)
		})
	})
}

func TestService_LoadPersisted(t *testing.T) {
	Convey("Given artifacts saved by an earlier run", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		store := repository.NewFileStore(dir)
		a, _, err := service.NewTrainer(service.WithTrees(10)).Train(ctx, syntheticRows(150, 7))
		So(err, ShouldBeNil)
		So(store.Save(ctx, a), ShouldBeNil)

		Convey("When a service starts without training", func() {
			svc := service.New(service.WithTrainOnStartup(false), service.WithStore(store))
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then it serves the persisted run", func() {
				So(svc.Ready(), ShouldBeTrue)
				So(svc.Info().RunID, ShouldEqual, a.RunID)
			})

			Convey("Then its predictions match the in-memory artifacts", func() {
				direct := service.New()
				So(direct.Use(a), ShouldBeNil)
				for _, row := range syntheticRows(30, 8) {
					p1, err := svc.Predict(ctx, row.Record)
					So(err, ShouldBeNil)
					p2, err := direct.Predict(ctx, row.Record)
					So(err, ShouldBeNil)
					So(p1, ShouldResemble, p2)
				}
			})
		})

		Convey("When one blob belongs to another run", func() {
			other := *a
			other.RunID = "other"
			otherDir := t.TempDir()
			So(repository.NewFileStore(otherDir).Save(ctx, &other), ShouldBeNil)
			blob, err := os.ReadFile(filepath.Join(otherDir, repository.ModelFile))
			So(err, ShouldBeNil)
			So(os.WriteFile(filepath.Join(dir, repository.ModelFile), blob, 0o600), ShouldBeNil)

			svc := service.New(service.WithTrainOnStartup(false), service.WithStore(store))
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then the service refuses the mixed set and stays untrained", func() {
				So(svc.Ready(), ShouldBeFalse)
			})
		})

		Convey("When nothing was persisted", func() {
			svc := service.New(service.WithTrainOnStartup(false), service.WithStore(repository.NewFileStore(t.TempDir())))
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()
			So(svc.Ready(), ShouldBeFalse)
		})
	})
}

func TestService_CategoryPolicy(t *testing.T) {
	Convey("Given a trained artifact set", t, func() {
		ctx := context.Background()
		a, _, err := service.NewTrainer(service.WithTrees(10)).Train(ctx, syntheticRows(150, 9))
		So(err, ShouldBeNil)

		rec := referenceRecord()
		rec.Thal = 9

		Convey("When the service is permissive", func() {
			svc := service.New()
			So(svc.Use(a), ShouldBeNil)
			p, err := svc.Predict(ctx, rec)

			Convey("Then the undeclared code is encoded as zeros and served", func() {
				So(err, ShouldBeNil)
				So(p.Probability, ShouldBeBetweenOrEqual, 0, 1)
			})
		})

		Convey("When the service is strict", func() {
			svc := service.New(service.WithStrictCategories(true))
			So(svc.Use(a), ShouldBeNil)
			_, err := svc.Predict(ctx, rec)

			Convey("Then the record is rejected", func() {
				So(errors.Is(err, model.ErrOutOfDomain), ShouldBeTrue)
				So(svc.Info().Strict, ShouldBeTrue)
			})
		})

		Convey("When installing an inconsistent set", func() {
			bad := *a
			bad.Ordering = bad.Ordering[:5]
			So(errors.Is(service.New().Use(&bad), repository.ErrInconsistentArtifacts), ShouldBeTrue)
		})
	})
}
