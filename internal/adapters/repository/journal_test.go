package repository_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/cardio/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

func TestJournal(t *testing.T) {
	Convey("Given a fresh journal", t, func() {
		ctx := context.Background()
		j, err := repository.OpenJournal(ctx, filepath.Join(t.TempDir(), "runs.db"))
		So(err, ShouldBeNil)
		Reset(func() { _ = j.Close() })

		Convey("When no run was recorded", func() {
			runs, err := j.Recent(ctx, 10)
			So(err, ShouldBeNil)
			So(runs, ShouldBeEmpty)
		})

		Convey("When three runs are recorded", func() {
			start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
			for i := 1; i <= 3; i++ {
				So(j.Record(ctx, repository.Run{
					ID:            fmt.Sprintf("run-%d", i),
					StartedAt:     start.Add(time.Duration(i) * time.Minute),
					Duration:      time.Duration(i) * time.Second,
					Status:        "ok",
					Rows:          300 + i,
					Features:      28,
					Trees:         100,
					TrainAccuracy: 1,
					TestAccuracy:  0.8,
					Constant:      []string{"oldpeak"},
				}), ShouldBeNil)
			}

			Convey("Then Recent returns the newest first", func() {
				runs, err := j.Recent(ctx, 2)
				So(err, ShouldBeNil)
				So(runs, ShouldHaveLength, 2)
				So(runs[0].ID, ShouldEqual, "run-3")
				So(runs[0].Rows, ShouldEqual, 303)
				So(runs[0].DurationMs, ShouldEqual, 3000)
				So(runs[0].Constant, ShouldResemble, []string{"oldpeak"})
				So(runs[0].StartedAt.Equal(start.Add(3*time.Minute)), ShouldBeTrue)
				So(runs[1].ID, ShouldEqual, "run-2")
			})

			Convey("Then a duplicate run id is rejected", func() {
				err := j.Record(ctx, repository.Run{ID: "run-1", StartedAt: start, Status: "ok"})
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the limit is out of range", func() {
			_, err := j.Recent(ctx, 0)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
			_, err = j.Recent(ctx, repository.MaxJournalLimit+1)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
		})
	})
}
