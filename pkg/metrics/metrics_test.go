package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metrics are registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.modelReady.Set(1)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_model_ready")
			})
		})

		Convey("When two managers share a registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestPredictionMetrics(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording predictions", func() {
			before := testutil.ToFloat64(globalManager.predictions.WithLabelValues("1"))
			RecordPrediction(1, 0.83, 0.4)
			RecordPrediction(1, 0.61, 0.2)

			Convey("Then the label counter advances", func() {
				So(testutil.ToFloat64(globalManager.predictions.WithLabelValues("1")), ShouldEqual, before+2)
			})
		})

		Convey("When an out-of-domain value is seen", func() {
			before := testutil.ToFloat64(globalManager.outOfDomain.WithLabelValues("thal"))
			RecordOutOfDomain("thal")
			So(testutil.ToFloat64(globalManager.outOfDomain.WithLabelValues("thal")), ShouldEqual, before+1)
		})

		Convey("When the model becomes ready", func() {
			UpdateModelInfo(true, 28, 100)
			So(testutil.ToFloat64(globalManager.modelReady), ShouldEqual, 1)
			So(testutil.ToFloat64(globalManager.modelFeatures), ShouldEqual, 28)
			UpdateModelInfo(false, 0, 0)
			So(testutil.ToFloat64(globalManager.modelReady), ShouldEqual, 0)
		})
	})
}

func TestTrainingMetrics(t *testing.T) {
	Convey("Given a finished training run", t, func() {
		before := testutil.ToFloat64(globalManager.trainingRuns.WithLabelValues("ok"))
		RecordTrainingRun("ok", 1.5)
		UpdateTrainingResult(303, 2, 1, 1.0, 0.85)

		Convey("Then the run and its numbers are published", func() {
			So(testutil.ToFloat64(globalManager.trainingRuns.WithLabelValues("ok")), ShouldEqual, before+1)
			So(testutil.ToFloat64(globalManager.trainingRows), ShouldEqual, 303)
			So(testutil.ToFloat64(globalManager.trainingAccuracy.WithLabelValues("test")), ShouldEqual, 0.85)
		})
	})
}

func TestOperationalMetrics(t *testing.T) {
	Convey("Given operational recorders", t, func() {
		So(func() {
			RecordHTTPRequest("/predict", "POST", "200")
			RecordHTTPRequestDuration("/predict", "POST", "200", 3.2)
			RecordErrorByComponent("api", "validation_error")
			RecordErrorByEndpoint("/predict", "POST", "model_unavailable")
			RecordValidationFailure("thal")
			RecordArtifactOperation("load", "ok", 1.2)
			UpdateSystemMemoryUsage(1 << 20)
			UpdateSystemGoroutineCount(12)
			RecordSystemGCPauseTime(0.3)
		}, ShouldNotPanic)
		So(GetRegistry(), ShouldNotBeNil)
	})
}
