package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// counterValue sums every series of the named family.
func counterValue(reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	if err != nil {
		return -1
	}
	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if c := m.GetCounter(); c != nil {
				total += c.GetValue()
			}
			if h := m.GetHistogram(); h != nil {
				total += float64(h.GetSampleCount())
			}
		}
	}
	return total
}

func labelValue(reg *prometheus.Registry, name, label string) string {
	families, _ := reg.Gather()
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label {
					return lp.GetValue()
				}
			}
		}
	}
	return ""
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		m := New(WithRegistry(reg))

		Convey("When a comparison completes", func() {
			m.ComparisonCompleted(12)
			m.ComparisonCompleted(0)

			Convey("Then the counter and the histogram both move", func() {
				So(counterValue(reg, "k9_versus_comparisons_total"), ShouldEqual, 2)
				So(counterValue(reg, "k9_versus_shared_runs"), ShouldEqual, 2)
			})
		})

		Convey("When fields degrade", func() {
			m.ParseDegraded("speed")
			m.ParseDegraded("speed")
			m.ParseDegraded("penalty")

			Convey("Then they are counted per field", func() {
				So(counterValue(reg, "k9_versus_parse_degradations_total"), ShouldEqual, 3)
			})
		})

		Convey("When a request is observed", func() {
			m.ObserveRequest("/api/v1/versus", http.MethodGet, http.StatusBadRequest, 15*time.Millisecond)

			Convey("Then the status is recorded as a label", func() {
				So(counterValue(reg, "k9_http_requests_total"), ShouldEqual, 1)
				So(labelValue(reg, "k9_http_requests_total", "status"), ShouldEqual, "400")
				So(counterValue(reg, "k9_http_request_duration_seconds"), ShouldEqual, 1)
			})
		})

		Convey("When failures are reported", func() {
			m.ComparisonFailed("fetch")
			m.PublishFailed("k9.versus.compared")

			Convey("Then each failure counter moves once", func() {
				So(counterValue(reg, "k9_versus_comparison_failures_total"), ShouldEqual, 1)
				So(labelValue(reg, "k9_events_publish_failures_total", "subject"), ShouldEqual, "k9.versus.compared")
			})
		})
	})
}

func TestMetricsOptions(t *testing.T) {
	Convey("Given a custom namespace", t, func() {
		reg := prometheus.NewRegistry()
		m := New(WithRegistry(reg), WithNamespace("agility"), WithLatencyBuckets([]float64{0.1, 1}))
		m.ComparisonCompleted(3)

		Convey("Then collector names carry it", func() {
			So(counterValue(reg, "agility_versus_comparisons_total"), ShouldEqual, 1)
			So(counterValue(reg, "k9_versus_comparisons_total"), ShouldEqual, 0)
		})
	})
}

func TestNilMetrics(t *testing.T) {
	Convey("Given a nil Metrics", t, func() {
		var m *Metrics

		Convey("Then recording is a no-op", func() {
			So(func() {
				m.ObserveRequest("/", http.MethodGet, 200, time.Second)
				m.ComparisonCompleted(1)
				m.ComparisonFailed("fetch")
				m.ParseDegraded("speed")
				m.PublishFailed("x")
			}, ShouldNotPanic)
		})
	})
}
