package analytics

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/k9tracker/k9tracker/internal/store"
)

type RegionStat struct {
	Region      string   `json:"region"`
	Runs        int      `json:"runs"`
	AvgSpeed    *float64 `json:"avg_speed"`
	CleanRuns   int      `json:"clean_runs"`
	SuccessRate float64  `json:"success_rate"`
}

// Regions ranks French regions by average speed, fastest first. Regions
// without a measurable speed come last.
func (s *Service) Regions(ctx context.Context, year, grade string) ([]RegionStat, error) {
	aggs, err := s.store.RegionStats(ctx, store.RegionFilter{
		Year:    year,
		Grade:   grade,
		MinRuns: s.settings.RegionMinRuns,
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(aggs, func(a, b store.RegionAggregate) int {
		return descNilLast(a.AvgSpeed, b.AvgSpeed)
	})

	out := make([]RegionStat, len(aggs))
	for i, a := range aggs {
		out[i] = RegionStat{
			Region:      a.Region,
			Runs:        a.Runs,
			AvgSpeed:    roundPtr(a.AvgSpeed, 2),
			CleanRuns:   a.CleanRuns,
			SuccessRate: rate(a.CleanRuns, a.Runs),
		}
	}
	return out, nil
}

func (s *Service) EventYears(ctx context.Context) ([]string, error) {
	years, err := s.store.EventYears(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(years), nil
}

// JudgeSort is the ranking criterion of the judge list.
type JudgeSort string

const (
	SortByVolume   JudgeSort = "volume"
	SortBySpeed    JudgeSort = "speed"
	SortBySuccess  JudgeSort = "success"
	SortByDistance JudgeSort = "distance"
)

// ParseJudgeSort defaults to volume.
func ParseJudgeSort(s string) (JudgeSort, error) {
	switch JudgeSort(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByVolume:
		return SortByVolume, nil
	case SortBySpeed:
		return SortBySpeed, nil
	case SortBySuccess:
		return SortBySuccess, nil
	case SortByDistance:
		return SortByDistance, nil
	}
	return "", fmt.Errorf("%w: sort %q", ErrInvalidFilter, s)
}

type JudgeStat struct {
	Judge           string   `json:"judge"`
	Runs            int      `json:"runs"`
	AvgSpeed        *float64 `json:"avg_speed"`
	AvgDistance     *float64 `json:"avg_distance"`
	SuccessRate     float64  `json:"success_rate"`
	EliminationRate float64  `json:"elimination_rate"`
}

func judgeStat(a store.JudgeAggregate) JudgeStat {
	return JudgeStat{
		Judge:           a.Judge,
		Runs:            a.Runs,
		AvgSpeed:        roundPtr(a.AvgSpeed, 2),
		AvgDistance:     roundPtr(a.AvgDistance, 0),
		SuccessRate:     rate(a.CleanRuns, a.Runs),
		EliminationRate: rate(a.Eliminated, a.Runs),
	}
}

// Judges ranks judges with enough judged runs, highest first on the chosen
// criterion. Equal values keep alphabetical order.
func (s *Service) Judges(ctx context.Context, grade string, by JudgeSort) ([]JudgeStat, error) {
	aggs, err := s.store.JudgeStats(ctx, store.JudgeFilter{Grade: grade, MinRuns: s.settings.JudgeMinRuns})
	if err != nil {
		return nil, err
	}
	out := make([]JudgeStat, len(aggs))
	for i, a := range aggs {
		out[i] = judgeStat(a)
	}

	slices.SortStableFunc(out, func(a, b JudgeStat) int {
		switch by {
		case SortBySpeed:
			return descNilLast(a.AvgSpeed, b.AvgSpeed)
		case SortBySuccess:
			return cmp.Compare(b.SuccessRate, a.SuccessRate)
		case SortByDistance:
			return descNilLast(a.AvgDistance, b.AvgDistance)
		default:
			return cmp.Compare(b.Runs, a.Runs)
		}
	})
	return out, nil
}

// Judge looks up one judge among the ranked ones, ignoring case.
func (s *Service) Judge(ctx context.Context, name, grade string) (*JudgeStat, error) {
	want := strings.ToUpper(strings.TrimSpace(name))
	aggs, err := s.store.JudgeStats(ctx, store.JudgeFilter{Grade: grade, MinRuns: s.settings.JudgeMinRuns})
	if err != nil {
		return nil, err
	}
	for _, a := range aggs {
		if strings.ToUpper(a.Judge) == want {
			j := judgeStat(a)
			return &j, nil
		}
	}
	return nil, fmt.Errorf("judge %q: %w", name, store.ErrNotFound)
}

func descNilLast(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*b, *a)
	}
}
