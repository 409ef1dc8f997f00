// Package analytics derives the dashboard figures (overview, couple profiles,
// breed, region and judge rankings) from the read-only results store.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/k9tracker/k9tracker/internal/store"
)

// ErrInvalidFilter is returned for an unknown discipline or sort criterion.
var ErrInvalidFilter = errors.New("invalid filter")

// Settings bounds list sizes and the minimum sample of the rankings.
type Settings struct {
	RecentEvents  int
	TopBreeds     int
	SearchLimit   int
	TopLimit      int
	RegionMinRuns int
	JudgeMinRuns  int
}

func DefaultSettings() Settings {
	return Settings{
		RecentEvents:  10,
		TopBreeds:     10,
		SearchLimit:   20,
		TopLimit:      10,
		RegionMinRuns: 50,
		JudgeMinRuns:  30,
	}
}

type Service struct {
	store    store.Store
	settings Settings
	logger   *slog.Logger
}

func NewService(s store.Store, settings Settings, logger *slog.Logger) *Service {
	return &Service{store: s, settings: settings, logger: logger}
}

type OverviewReport struct {
	Totals       store.Overview      `json:"totals"`
	RecentEvents []store.RecentEvent `json:"recent_events"`
	TopBreeds    []store.BreedCount  `json:"top_breeds"`
}

func (s *Service) Overview(ctx context.Context) (*OverviewReport, error) {
	totals, err := s.store.Overview(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.store.RecentEvents(ctx, s.settings.RecentEvents)
	if err != nil {
		return nil, err
	}
	breeds, err := s.store.TopBreeds(ctx, s.settings.TopBreeds)
	if err != nil {
		return nil, err
	}
	return &OverviewReport{
		Totals:       *totals,
		RecentEvents: nonNil(events),
		TopBreeds:    nonNil(breeds),
	}, nil
}

// SearchResult is a competitor with its display label. Labels are not unique;
// clients select by ID.
type SearchResult struct {
	store.Competitor
	Label string `json:"label"`
}

func Label(c store.Competitor) string {
	return fmt.Sprintf("%s (%s - %s)", c.Dog, c.Handler, c.Breed)
}

// Search matches dog or handler names. A limit of zero or less uses the
// configured default.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}
	if limit <= 0 || limit > s.settings.SearchLimit {
		limit = s.settings.SearchLimit
	}
	found, err := s.store.SearchCompetitors(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]SearchResult, len(found))
	for i, c := range found {
		out[i] = SearchResult{Competitor: c, Label: Label(c)}
	}
	return out, nil
}

func (s *Service) Breeds(ctx context.Context) ([]string, error) {
	breeds, err := s.store.Breeds(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(breeds), nil
}

// TopByBreed lists the fastest clean runs of a breed.
func (s *Service) TopByBreed(ctx context.Context, breed string) ([]store.TopRun, error) {
	runs, err := s.store.TopByBreed(ctx, breed, s.settings.TopLimit)
	if err != nil {
		return nil, err
	}
	for i := range runs {
		runs[i].Speed = round(runs[i].Speed, 2)
	}
	return nonNil(runs), nil
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func roundPtr(v *float64, places int32) *float64 {
	if v == nil {
		return nil
	}
	r := round(*v, places)
	return &r
}

// rate is n out of total as a percentage rounded to one decimal.
func rate(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(n)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(total)), 1).
		InexactFloat64()
}
