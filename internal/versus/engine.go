// Package versus compares two couples over the courses they ran together:
// per-run verdicts, an aggregate score and a match sheet grouped by event.
package versus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/k9tracker/k9tracker/internal/store"
)

var (
	// ErrSameCompetitor is returned when both sides name the same couple.
	ErrSameCompetitor = errors.New("cannot compare a couple with itself")
	// ErrFetch marks failures of the data access layer, as opposed to the
	// comparison itself which cannot fail.
	ErrFetch = errors.New("fetch comparison data")
)

// Fetcher is the data access the engine needs.
type Fetcher interface {
	SharedRuns(ctx context.Context, a, b store.CoupleID) ([]store.SharedRun, error)
	CoupleTotals(ctx context.Context, id store.CoupleID) (*store.CoupleTotals, error)
}

// Degradation describes one raw field that could not be parsed.
type Degradation struct {
	Side      string `json:"side"`
	Field     Field  `json:"field"`
	Raw       string `json:"raw"`
	EventDate string `json:"event_date"`
	Venue     string `json:"venue"`
	Course    string `json:"course"`
}

// Observer receives data-quality and comparison notifications. Implementations
// must be safe for concurrent use.
type Observer interface {
	ParseDegraded(d Degradation)
	Compared(c *Comparison)
}

// Overall compares the two couples' all-time figures, outside of their
// direct confrontations. Deltas are B minus A.
type Overall struct {
	A              store.CoupleTotals `json:"a"`
	B              store.CoupleTotals `json:"b"`
	AvgSpeedA      float64            `json:"avg_speed_a"`
	AvgSpeedB      float64            `json:"avg_speed_b"`
	CleanRateA     float64            `json:"clean_rate_a"`
	CleanRateB     float64            `json:"clean_rate_b"`
	SpeedDelta     float64            `json:"speed_delta"`
	CleanRateDelta float64            `json:"clean_rate_delta"`
}

type Comparison struct {
	A       store.CoupleID `json:"a"`
	B       store.CoupleID `json:"b"`
	Overall Overall        `json:"overall"`
	Summary Summary        `json:"summary"`
	Ledger  Ledger         `json:"ledger"`
}

type Settings struct {
	// ParallelThreshold is the record count from which parsing is split
	// across workers. Zero disables parallel parsing.
	ParallelThreshold int
	Workers           int
}

// Engine runs head-to-head comparisons. It keeps no state between calls.
type Engine struct {
	fetcher  Fetcher
	observer Observer
	settings Settings
	logger   *slog.Logger
}

func NewEngine(f Fetcher, o Observer, s Settings, logger *slog.Logger) *Engine {
	if s.Workers <= 0 {
		s.Workers = 1
	}
	return &Engine{fetcher: f, observer: o, settings: s, logger: logger}
}

// Compare fetches every course both couples ran together and produces the
// summary and match sheet.
func (e *Engine) Compare(ctx context.Context, a, b store.CoupleID) (*Comparison, error) {
	if a == b {
		return nil, ErrSameCompetitor
	}

	records, err := e.fetcher.SharedRuns(ctx, a, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	totalsA, err := e.fetcher.CoupleTotals(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	totalsB, err := e.fetcher.CoupleTotals(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	runs, tally, err := e.evaluate(ctx, records)
	if err != nil {
		return nil, err
	}

	c := &Comparison{
		A:       a,
		B:       b,
		Overall: compareOverall(*totalsA, *totalsB),
		Summary: tally.Summary(),
		Ledger:  BuildLedger(runs),
	}
	e.logger.Debug("comparison computed",
		"a", a,
		"b", b,
		"runs", c.Summary.TotalRuns,
		"score_a", c.Summary.ScoreA,
		"score_b", c.Summary.ScoreB,
	)
	if e.observer != nil {
		e.observer.Compared(c)
	}
	return c, nil
}

// evaluate parses and resolves every record. Above the parallel threshold the
// records are split into contiguous chunks; runs keep their input positions
// and the chunk tallies are merged in chunk order.
func (e *Engine) evaluate(ctx context.Context, records []store.SharedRun) ([]Run, Tally, error) {
	runs := make([]Run, len(records))

	if e.settings.ParallelThreshold <= 0 || len(records) < e.settings.ParallelThreshold || e.settings.Workers == 1 {
		var t Tally
		for i, rec := range records {
			runs[i] = e.evaluateOne(rec)
			t = t.Add(runs[i])
		}
		return runs, t, nil
	}

	workers := e.settings.Workers
	chunk := (len(records) + workers - 1) / workers
	partials := make([]Tally, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo, hi := w*chunk, min((w+1)*chunk, len(records))
		if lo >= hi {
			break
		}
		w := w
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				runs[i] = e.evaluateOne(records[i])
				partials[w] = partials[w].Add(runs[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Tally{}, err
	}

	var total Tally
	for _, p := range partials {
		total = total.Merge(p)
	}
	return runs, total, nil
}

func (e *Engine) evaluateOne(rec store.SharedRun) Run {
	r := Evaluate(rec)
	if e.observer == nil {
		return r
	}
	if r.A.Degraded != "" {
		e.observer.ParseDegraded(degradation("A", r.A.Degraded, rec.SpeedA, rec.PenaltyA, rec))
	}
	if r.B.Degraded != "" {
		e.observer.ParseDegraded(degradation("B", r.B.Degraded, rec.SpeedB, rec.PenaltyB, rec))
	}
	return r
}

func degradation(side string, f Field, speed, penalty string, rec store.SharedRun) Degradation {
	raw := speed
	if f == FieldPenalty {
		raw = penalty
	}
	return Degradation{
		Side:      side,
		Field:     f,
		Raw:       raw,
		EventDate: rec.EventDate,
		Venue:     rec.Venue,
		Course:    rec.Course,
	}
}

func compareOverall(a, b store.CoupleTotals) Overall {
	o := Overall{
		A:          a,
		B:          b,
		AvgSpeedA:  round(deref(a.AvgSpeed), 2),
		AvgSpeedB:  round(deref(b.AvgSpeed), 2),
		CleanRateA: percent(a.CleanRuns, a.Runs),
		CleanRateB: percent(b.CleanRuns, b.Runs),
	}
	o.SpeedDelta = round(o.AvgSpeedB-o.AvgSpeedA, 2)
	o.CleanRateDelta = round(o.CleanRateB-o.CleanRateA, 1)
	return o
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
