package events

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/k9tracker/k9tracker/internal/metrics"
	"github.com/k9tracker/k9tracker/internal/versus"
)

// Reporter turns comparison notifications into log lines, metrics and, when a
// client is configured, published events. Publish failures are logged and
// counted, never returned.
type Reporter struct {
	client  Client
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

var _ versus.Observer = (*Reporter)(nil)

func NewReporter(client Client, m *metrics.Metrics, logger *slog.Logger) *Reporter {
	return &Reporter{client: client, metrics: m, logger: logger, now: time.Now}
}

func (r *Reporter) ParseDegraded(d versus.Degradation) {
	r.logger.Warn("unparseable run figure",
		"side", d.Side,
		"field", d.Field,
		"raw", d.Raw,
		"event_date", d.EventDate,
		"venue", d.Venue,
		"course", d.Course,
	)
	r.metrics.ParseDegraded(string(d.Field))

	r.publish(SubjectParseDegraded, ParseDegradedEvent{
		ID:        uuid.NewString(),
		Side:      d.Side,
		Field:     string(d.Field),
		Raw:       d.Raw,
		EventDate: d.EventDate,
		Venue:     d.Venue,
		Course:    d.Course,
		Timestamp: r.now().UTC(),
	})
}

func (r *Reporter) Compared(c *versus.Comparison) {
	r.metrics.ComparisonCompleted(c.Summary.TotalRuns)

	r.publish(SubjectCompared, ComparedEvent{
		ID:        uuid.NewString(),
		A:         string(c.A),
		B:         string(c.B),
		TotalRuns: c.Summary.TotalRuns,
		ScoreA:    c.Summary.ScoreA,
		ScoreB:    c.Summary.ScoreB,
		Ties:      c.Summary.Ties,
		Timestamp: r.now().UTC(),
	})
}

func (r *Reporter) publish(subject string, evt interface{}) {
	if r.client == nil {
		return
	}
	if err := r.client.Publish(subject, evt); err != nil {
		r.logger.Error("failed to publish event", "subject", subject, "error", err)
		r.metrics.PublishFailed(subject)
	}
}
