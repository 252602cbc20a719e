package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager()

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "hackbite")
			})
		})

		Convey("When creating with custom options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.matchRequests.WithLabelValues("overall").Inc()

			Convey("Then collectors are registered under the custom names", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_match_requests_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording match metrics", func() {
			before := testutil.ToFloat64(globalManager.matchRequests.WithLabelValues("git"))
			RecordMatch("git", 12, 3.5)
			RecordMatchError("not_found")

			Convey("Then the counter should increase", func() {
				So(testutil.ToFloat64(globalManager.matchRequests.WithLabelValues("git")), ShouldEqual, before+1)
			})
		})

		Convey("When updating queue size", func() {
			UpdateQueueCapacity(10)
			UpdateQueueSize(5, 10)

			Convey("Then utilization is derived from capacity", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 5)
				So(testutil.ToFloat64(globalManager.queueUtilization), ShouldEqual, 0.5)
			})
		})

		Convey("When recording the rating pipeline", func() {
			So(func() {
				RecordRatingSubmitted()
				RecordRatingDuplicate()
				RecordRatingFinished("completed", 1500)
				RecordAIRequest(800, false)
				RecordAIRequest(20, true)
				RecordScrape(300, false)
				RecordResumeExtractError()
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP, worker, repository and system metrics", func() {
			So(func() {
				RecordHTTPRequest("team_candidates", "GET", "200")
				RecordHTTPRequestDuration("team_candidates", "GET", "200", 4)
				RecordErrorByEndpoint("team_candidates", "GET", "not_found")
				RecordErrorByComponent("queue", "full")
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError("full")
				UpdateWorkerCount(4)
				RecordWorkerProcessingLatency(12)
				RecordWorkerError()
				RecordRepositoryQueryLatency("candidates_in_range", 2)
				UpdateUsersTotal(10)
				UpdateTeamsTotal(3)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})

		Convey("When gathering the custom registry", func() {
			RecordHTTPRequest("health", "GET", "200")
			families, err := GetRegistry().Gather()

			Convey("Then only service metrics are exposed", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "hackbite_"), ShouldBeTrue)
				}
			})
		})
	})
}
