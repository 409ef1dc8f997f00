package analytics

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/k9tracker/k9tracker/internal/store"
)

// MockStore implements store.Store for testing.
type MockStore struct {
	mock.Mock
}

var _ store.Store = (*MockStore)(nil)

func (m *MockStore) Overview(ctx context.Context) (*store.Overview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Overview), args.Error(1)
}

func (m *MockStore) RecentEvents(ctx context.Context, limit int) ([]store.RecentEvent, error) {
	args := m.Called(ctx, limit)
	v, _ := args.Get(0).([]store.RecentEvent)
	return v, args.Error(1)
}

func (m *MockStore) TopBreeds(ctx context.Context, limit int) ([]store.BreedCount, error) {
	args := m.Called(ctx, limit)
	v, _ := args.Get(0).([]store.BreedCount)
	return v, args.Error(1)
}

func (m *MockStore) SearchCompetitors(ctx context.Context, query string, limit int) ([]store.Competitor, error) {
	args := m.Called(ctx, query, limit)
	v, _ := args.Get(0).([]store.Competitor)
	return v, args.Error(1)
}

func (m *MockStore) CoupleYears(ctx context.Context, id store.CoupleID) ([]string, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).([]string)
	return v, args.Error(1)
}

func (m *MockStore) CouplePerformance(ctx context.Context, id store.CoupleID, f store.ProfileFilter) (*store.PerformanceCounts, error) {
	args := m.Called(ctx, id, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.PerformanceCounts), args.Error(1)
}

func (m *MockStore) CoupleMonthlySpeed(ctx context.Context, id store.CoupleID, f store.ProfileFilter) ([]store.MonthlySpeed, error) {
	args := m.Called(ctx, id, f)
	v, _ := args.Get(0).([]store.MonthlySpeed)
	return v, args.Error(1)
}

func (m *MockStore) CoupleRawRuns(ctx context.Context, id store.CoupleID, f store.ProfileFilter) ([]store.RawRun, error) {
	args := m.Called(ctx, id, f)
	v, _ := args.Get(0).([]store.RawRun)
	return v, args.Error(1)
}

func (m *MockStore) CoupleHistory(ctx context.Context, id store.CoupleID, f store.ProfileFilter) ([]store.RunResult, error) {
	args := m.Called(ctx, id, f)
	v, _ := args.Get(0).([]store.RunResult)
	return v, args.Error(1)
}

func (m *MockStore) CoupleTotals(ctx context.Context, id store.CoupleID) (*store.CoupleTotals, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.CoupleTotals), args.Error(1)
}

func (m *MockStore) Breeds(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]string)
	return v, args.Error(1)
}

func (m *MockStore) TopByBreed(ctx context.Context, breed string, limit int) ([]store.TopRun, error) {
	args := m.Called(ctx, breed, limit)
	v, _ := args.Get(0).([]store.TopRun)
	return v, args.Error(1)
}

func (m *MockStore) EventYears(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]string)
	return v, args.Error(1)
}

func (m *MockStore) RegionStats(ctx context.Context, f store.RegionFilter) ([]store.RegionAggregate, error) {
	args := m.Called(ctx, f)
	v, _ := args.Get(0).([]store.RegionAggregate)
	return v, args.Error(1)
}

func (m *MockStore) JudgeStats(ctx context.Context, f store.JudgeFilter) ([]store.JudgeAggregate, error) {
	args := m.Called(ctx, f)
	v, _ := args.Get(0).([]store.JudgeAggregate)
	return v, args.Error(1)
}

func (m *MockStore) SharedRuns(ctx context.Context, a, b store.CoupleID) ([]store.SharedRun, error) {
	args := m.Called(ctx, a, b)
	v, _ := args.Get(0).([]store.SharedRun)
	return v, args.Error(1)
}

func (m *MockStore) Close() error {
	return m.Called().Error(0)
}
