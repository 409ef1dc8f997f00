package versus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/k9tracker/k9tracker/internal/store"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) SharedRuns(ctx context.Context, a, b store.CoupleID) ([]store.SharedRun, error) {
	args := m.Called(ctx, a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.SharedRun), args.Error(1)
}

func (m *mockFetcher) CoupleTotals(ctx context.Context, id store.CoupleID) (*store.CoupleTotals, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.CoupleTotals), args.Error(1)
}

type recordingObserver struct {
	mu           sync.Mutex
	degradations []Degradation
	compared     int
}

func (o *recordingObserver) ParseDegraded(d Degradation) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.degradations = append(o.degradations, d)
}

func (o *recordingObserver) Compared(*Comparison) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.compared++
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func floatPtr(v float64) *float64 { return &v }

func newFetcher(records []store.SharedRun) *mockFetcher {
	f := &mockFetcher{}
	f.On("SharedRuns", mock.Anything, store.CoupleID("10"), store.CoupleID("20")).Return(records, nil)
	f.On("CoupleTotals", mock.Anything, store.CoupleID("10")).
		Return(&store.CoupleTotals{ID: "10", Runs: 10, AvgSpeed: floatPtr(4.126), CleanRuns: 6}, nil)
	f.On("CoupleTotals", mock.Anything, store.CoupleID("20")).
		Return(&store.CoupleTotals{ID: "20", Runs: 8, AvgSpeed: floatPtr(4.5), CleanRuns: 2}, nil)
	return f
}

func TestCompare(t *testing.T) {
	obs := &recordingObserver{}
	e := NewEngine(newFetcher(sampleRecords()), obs, Settings{}, discardLogger())

	c, err := e.Compare(context.Background(), "10", "20")
	require.NoError(t, err)

	assert.Equal(t, store.CoupleID("10"), c.A)
	assert.Equal(t, 4, c.Summary.TotalRuns)
	assert.Equal(t, 1, c.Summary.ScoreA)
	assert.Equal(t, 2, c.Summary.ScoreB)
	assert.Len(t, c.Ledger.Groups, 2)
	assert.Equal(t, 1, obs.compared)
	assert.Empty(t, obs.degradations)
}

func TestCompareOverall(t *testing.T) {
	e := NewEngine(newFetcher(nil), nil, Settings{}, discardLogger())

	c, err := e.Compare(context.Background(), "10", "20")
	require.NoError(t, err)

	o := c.Overall
	assert.Equal(t, 4.13, o.AvgSpeedA)
	assert.Equal(t, 4.5, o.AvgSpeedB)
	assert.Equal(t, 60.0, o.CleanRateA)
	assert.Equal(t, 25.0, o.CleanRateB)
	assert.Equal(t, 0.37, o.SpeedDelta)
	assert.Equal(t, -35.0, o.CleanRateDelta)
}

func TestCompareNoSharedRuns(t *testing.T) {
	e := NewEngine(newFetcher([]store.SharedRun{}), nil, Settings{}, discardLogger())

	c, err := e.Compare(context.Background(), "10", "20")
	require.NoError(t, err)
	assert.Equal(t, Summary{}, c.Summary)
	assert.NotNil(t, c.Ledger.Groups)
	assert.Empty(t, c.Ledger.Groups)
}

func TestCompareMissingAverageSpeed(t *testing.T) {
	f := &mockFetcher{}
	f.On("SharedRuns", mock.Anything, store.CoupleID("1"), store.CoupleID("2")).Return([]store.SharedRun{}, nil)
	f.On("CoupleTotals", mock.Anything, store.CoupleID("1")).Return(&store.CoupleTotals{ID: "1"}, nil)
	f.On("CoupleTotals", mock.Anything, store.CoupleID("2")).
		Return(&store.CoupleTotals{ID: "2", Runs: 4, AvgSpeed: floatPtr(3.999), CleanRuns: 1}, nil)
	e := NewEngine(f, nil, Settings{}, discardLogger())

	c, err := e.Compare(context.Background(), "1", "2")
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.Overall.AvgSpeedA)
	assert.Equal(t, 0.0, c.Overall.CleanRateA)
	assert.Equal(t, 4.0, c.Overall.SpeedDelta)
	assert.Equal(t, 25.0, c.Overall.CleanRateDelta)
}

func TestCompareSameCompetitor(t *testing.T) {
	f := &mockFetcher{}
	e := NewEngine(f, nil, Settings{}, discardLogger())

	_, err := e.Compare(context.Background(), "10", "10")
	assert.ErrorIs(t, err, ErrSameCompetitor)
	f.AssertNotCalled(t, "SharedRuns", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompareFetchError(t *testing.T) {
	boom := errors.New("connection reset")
	f := &mockFetcher{}
	f.On("SharedRuns", mock.Anything, store.CoupleID("10"), store.CoupleID("20")).Return(nil, boom)
	e := NewEngine(f, nil, Settings{}, discardLogger())

	_, err := e.Compare(context.Background(), "10", "20")
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, boom)
}

func TestCompareTotalsError(t *testing.T) {
	f := &mockFetcher{}
	f.On("SharedRuns", mock.Anything, store.CoupleID("10"), store.CoupleID("20")).Return([]store.SharedRun{}, nil)
	f.On("CoupleTotals", mock.Anything, store.CoupleID("10")).Return(nil, store.ErrNotFound)
	e := NewEngine(f, nil, Settings{}, discardLogger())

	_, err := e.Compare(context.Background(), "10", "20")
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCompareReportsDegradations(t *testing.T) {
	obs := &recordingObserver{}
	records := []store.SharedRun{
		shared("01/01/2023", "Caen", "Agility", "fast", "0", "4.00", "0"),
		shared("01/01/2023", "Caen", "Jumping", "4.00", "0", "4.00", "None"),
	}
	e := NewEngine(newFetcher(records), obs, Settings{}, discardLogger())

	c, err := e.Compare(context.Background(), "10", "20")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Summary.ScoreA)
	assert.Equal(t, 1, c.Summary.ScoreB)

	require.Len(t, obs.degradations, 2)
	assert.Equal(t, Degradation{
		Side: "A", Field: FieldSpeed, Raw: "fast",
		EventDate: "01/01/2023", Venue: "Caen", Course: "Agility",
	}, obs.degradations[0])
	assert.Equal(t, "B", obs.degradations[1].Side)
	assert.Equal(t, FieldPenalty, obs.degradations[1].Field)
	assert.Equal(t, "None", obs.degradations[1].Raw)
}

func manyRecords(n int) []store.SharedRun {
	speeds := []string{"-", "3.85", "4,10", "0", "4.52", "bad", "3.20"}
	penalties := []string{"0", "5", "-", "10", "None", "2,5", ""}
	records := make([]store.SharedRun, n)
	for i := range records {
		records[i] = shared(
			fmt.Sprintf("%02d/%02d/2024", i%28+1, i%12+1),
			fmt.Sprintf("Venue %d", i%9),
			fmt.Sprintf("Course %d", i),
			speeds[i%len(speeds)], penalties[i%len(penalties)],
			speeds[(i*3+1)%len(speeds)], penalties[(i*5+2)%len(penalties)],
		)
	}
	return records
}

func TestCompareParallelMatchesSequential(t *testing.T) {
	records := manyRecords(1000)

	seq, err := NewEngine(newFetcher(records), nil, Settings{}, discardLogger()).
		Compare(context.Background(), "10", "20")
	require.NoError(t, err)
	par, err := NewEngine(newFetcher(records), &recordingObserver{}, Settings{ParallelThreshold: 10, Workers: 4}, discardLogger()).
		Compare(context.Background(), "10", "20")
	require.NoError(t, err)

	assert.Equal(t, seq.Summary.TotalRuns, par.Summary.TotalRuns)
	assert.Equal(t, seq.Summary.Ties, par.Summary.Ties)
	assert.Equal(t, seq.Summary.ScoreA, par.Summary.ScoreA)
	assert.Equal(t, seq.Summary.ScoreB, par.Summary.ScoreB)
	assert.Equal(t, seq.Summary.EliminationsA, par.Summary.EliminationsA)
	assert.Equal(t, seq.Summary.EliminationsB, par.Summary.EliminationsB)
	assert.InDelta(t, seq.Summary.AvgSpeedA, par.Summary.AvgSpeedA, 1e-9)
	assert.InDelta(t, seq.Summary.AvgPenaltyB, par.Summary.AvgPenaltyB, 1e-9)
	assert.Equal(t, seq.Ledger, par.Ledger)
	assert.Equal(t, seq.Summary.TotalRuns, seq.Summary.ScoreA+seq.Summary.ScoreB+seq.Summary.Ties)
}

func TestCompareParallelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewEngine(newFetcher(manyRecords(100)), nil, Settings{ParallelThreshold: 10, Workers: 4}, discardLogger())

	_, err := e.Compare(ctx, "10", "20")
	assert.ErrorIs(t, err, context.Canceled)
}
