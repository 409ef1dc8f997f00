package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/k9tracker/k9tracker/internal/store"
	"github.com/k9tracker/k9tracker/internal/versus"
)

// FaultCategory buckets a run by its penalty.
type FaultCategory string

const (
	FaultClean      FaultCategory = "Sans Faute"
	FaultExcellent  FaultCategory = "Excellent"
	FaultVeryGood   FaultCategory = "Très Bon"
	FaultGood       FaultCategory = "Bon"
	FaultEliminated FaultCategory = "Eliminé"
)

// FaultCategories is the display order of the breakdown.
var FaultCategories = []FaultCategory{FaultClean, FaultExcellent, FaultVeryGood, FaultGood, FaultEliminated}

// Categorize places one run: eliminated when the speed is an elimination
// token, otherwise by penalty (0, up to 5, up to 10, above). A missing penalty
// counts as 0 and an unreadable one as the lowest category.
func Categorize(run store.RawRun) FaultCategory {
	if versus.IsEliminationToken(run.Speed) {
		return FaultEliminated
	}
	raw := strings.TrimSpace(run.Penalty)
	if raw == "" || raw == "-" {
		return FaultClean
	}
	p, err := versus.ParseDecimal(raw)
	switch {
	case err != nil:
		return FaultGood
	case p == 0:
		return FaultClean
	case p <= 5:
		return FaultExcellent
	case p <= 10:
		return FaultVeryGood
	default:
		return FaultGood
	}
}

type FaultShare struct {
	Category FaultCategory `json:"category"`
	Count    int           `json:"count"`
	Percent  float64       `json:"percent"`
}

// FaultBreakdown counts runs per category, every category present and in
// display order.
func FaultBreakdown(runs []store.RawRun) []FaultShare {
	counts := make(map[FaultCategory]int, len(FaultCategories))
	for _, r := range runs {
		counts[Categorize(r)]++
	}
	out := make([]FaultShare, len(FaultCategories))
	for i, c := range FaultCategories {
		out[i] = FaultShare{Category: c, Count: counts[c], Percent: rate(counts[c], len(runs))}
	}
	return out
}

// ParseDiscipline accepts "", "all", "agility" and "jumping" in any case.
func ParseDiscipline(s string) (store.Discipline, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return store.DisciplineAll, nil
	case "agility":
		return store.DisciplineAgility, nil
	case "jumping":
		return store.DisciplineJumping, nil
	}
	return "", fmt.Errorf("%w: discipline %q", ErrInvalidFilter, s)
}

type Profile struct {
	ID              store.CoupleID       `json:"id"`
	Years           []string             `json:"years"`
	Year            string               `json:"year"`
	Discipline      store.Discipline     `json:"discipline"`
	Runs            int                  `json:"runs"`
	CleanRuns       int                  `json:"clean_runs"`
	Eliminated      int                  `json:"eliminated"`
	SuccessRate     float64              `json:"success_rate"`
	EliminationRate float64              `json:"elimination_rate"`
	MonthlySpeed    []store.MonthlySpeed `json:"monthly_speed"`
	Faults          []FaultShare         `json:"faults"`
}

// Profile computes one couple's figures for a year, the most recent year with
// results when year is empty. A couple without any dated result is unknown.
func (s *Service) Profile(ctx context.Context, id store.CoupleID, year string, d store.Discipline) (*Profile, error) {
	years, err := s.store.CoupleYears(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("couple %s: %w", id, store.ErrNotFound)
	}
	if year == "" {
		year = years[0]
		s.logger.Debug("profile year defaulted", "couple", id, "year", year)
	}

	filter := store.ProfileFilter{Year: year, Discipline: d}
	perf, err := s.store.CouplePerformance(ctx, id, filter)
	if err != nil {
		return nil, err
	}
	monthly, err := s.store.CoupleMonthlySpeed(ctx, id, filter)
	if err != nil {
		return nil, err
	}
	raw, err := s.store.CoupleRawRuns(ctx, id, filter)
	if err != nil {
		return nil, err
	}

	for i := range monthly {
		monthly[i].AvgSpeed = round(monthly[i].AvgSpeed, 2)
	}

	return &Profile{
		ID:              id,
		Years:           years,
		Year:            year,
		Discipline:      d,
		Runs:            perf.Runs,
		CleanRuns:       perf.CleanRuns,
		Eliminated:      perf.Eliminated,
		SuccessRate:     rate(perf.CleanRuns, perf.Runs),
		EliminationRate: rate(perf.Eliminated, perf.Runs),
		MonthlySpeed:    nonNil(monthly),
		Faults:          FaultBreakdown(raw),
	}, nil
}

// History lists a couple's runs, most recent first. An empty year covers all
// years.
func (s *Service) History(ctx context.Context, id store.CoupleID, year string, d store.Discipline) ([]store.RunResult, error) {
	runs, err := s.store.CoupleHistory(ctx, id, store.ProfileFilter{Year: year, Discipline: d})
	if err != nil {
		return nil, err
	}
	return nonNil(runs), nil
}
