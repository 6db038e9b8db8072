package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom registry and options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 2, 3}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it registers its collectors on that registry", func() {
				So(manager, ShouldNotBeNil)
				manager.sarcasmDetected.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_sarcasm_detected_total"], ShouldBeTrue)
			})
		})

		Convey("When empty options are given", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "truerate")
				So(manager.subsystem, ShouldEqual, "reviews")
				So(manager.histogramBuckets, ShouldResemble, latencyBucketsMs)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording review analyses", func() {
			before := testutil.ToFloat64(globalManager.reviewsAnalyzed.WithLabelValues("bot"))
			RecordReviewAnalyzed("bot")
			RecordReviewAnalyzed("bot")

			Convey("Then the labelled counter increases", func() {
				So(testutil.ToFloat64(globalManager.reviewsAnalyzed.WithLabelValues("bot")), ShouldEqual, before+2)
			})
		})

		Convey("When recording feedback votes", func() {
			before := testutil.ToFloat64(globalManager.feedbackReceived.WithLabelValues("-1"))
			RecordFeedback(-1)

			Convey("Then the vote label is the signed value", func() {
				So(testutil.ToFloat64(globalManager.feedbackReceived.WithLabelValues("-1")), ShouldEqual, before+1)
			})
		})

		Convey("When recording weight persistence", func() {
			okBefore := testutil.ToFloat64(globalManager.weightPersist.WithLabelValues("ok"))
			errBefore := testutil.ToFloat64(globalManager.weightPersist.WithLabelValues("error"))
			RecordWeightPersist(true, 1.5)
			RecordWeightPersist(false, 3)

			Convey("Then results are split by label", func() {
				So(testutil.ToFloat64(globalManager.weightPersist.WithLabelValues("ok")), ShouldEqual, okBefore+1)
				So(testutil.ToFloat64(globalManager.weightPersist.WithLabelValues("error")), ShouldEqual, errBefore+1)
			})
		})

		Convey("When recording store operations", func() {
			before := testutil.ToFloat64(globalManager.storeErrors.WithLabelValues("sqlite", "put"))
			RecordStoreOperation("sqlite", "put", 2, nil)
			RecordStoreOperation("sqlite", "put", 2, errors.New("locked"))

			Convey("Then only failures are counted as errors", func() {
				So(testutil.ToFloat64(globalManager.storeErrors.WithLabelValues("sqlite", "put")), ShouldEqual, before+1)
			})
		})

		Convey("When updating gauges", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(10)
			UpdateQueueUtilization(70)
			UpdateLearnedWeights(12)
			UpdateDedupeSize(3)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.queueUtilization), ShouldEqual, 70)
				So(testutil.ToFloat64(globalManager.learnedWeights), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.dedupeSize), ShouldEqual, 3)
			})
		})

		Convey("When recording everything else", func() {
			So(func() {
				RecordSarcasmDetected()
				RecordAdjustedRating(3.4, -1.6)
				RecordCredibility(0.42)
				RecordAnalysisLatency(0.3)
				RecordFeedbackDuplicate()
				RecordFeedbackRateLimited()
				RecordWeightUpdates(5)
				RecordSentimentCacheHit()
				RecordSentimentCacheMiss()
				RecordWeightPersistDropped()
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(1)
				UpdateWorkerActiveCount(0)
				RecordWorkerProcessingLatency(1)
				RecordWorkerError()
				RecordHTTPRequest("/analyze", "POST", "200")
				RecordHTTPRequestDuration("/analyze", "POST", "200", 4)
				RecordErrorByComponent("learner", "persist_failed")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
		})

		Convey("Then the registry is exposed", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
