package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a lookup by key matches nothing.
var ErrNotFound = errors.New("not found")

// CoupleID identifies a dog/handler pair (id_couple). Display names are not
// unique, so every couple-scoped query is keyed on this value.
type CoupleID string

type Competitor struct {
	ID      CoupleID `json:"id"`
	Dog     string   `json:"dog"`
	Handler string   `json:"handler"`
	Breed   string   `json:"breed,omitempty"`
}

// SharedRun is one course that two couples both ran within the same event.
// Speed and penalty values are the raw text stored in the results table.
type SharedRun struct {
	EventDate string `json:"event_date"`
	Venue     string `json:"venue"`
	Course    string `json:"course"`
	SpeedA    string `json:"speed_a"`
	PenaltyA  string `json:"penalty_a"`
	SpeedB    string `json:"speed_b"`
	PenaltyB  string `json:"penalty_b"`
}

// CoupleTotals are the all-time figures of one couple, regardless of opponent.
type CoupleTotals struct {
	ID        CoupleID `json:"id"`
	Runs      int      `json:"runs"`
	AvgSpeed  *float64 `json:"avg_speed,omitempty"`
	CleanRuns int      `json:"clean_runs"`
}

type Overview struct {
	TotalRuns     int `json:"total_runs"`
	TotalEvents   int `json:"total_events"`
	TotalDogs     int `json:"total_dogs"`
	TotalHandlers int `json:"total_handlers"`
}

type RecentEvent struct {
	Date         string `json:"date"`
	Club         string `json:"club"`
	Participants int    `json:"participants"`
}

type BreedCount struct {
	Breed string `json:"breed"`
	Runs  int    `json:"runs"`
}

// Discipline narrows couple queries to course names containing it. The zero
// value matches every course.
type Discipline string

const (
	DisciplineAll     Discipline = ""
	DisciplineAgility Discipline = "Agility"
	DisciplineJumping Discipline = "Jumping"
)

type ProfileFilter struct {
	Year       string
	Discipline Discipline
}

type PerformanceCounts struct {
	Runs       int `json:"runs"`
	CleanRuns  int `json:"clean_runs"`
	Eliminated int `json:"eliminated"`
}

type MonthlySpeed struct {
	Month    string  `json:"month"`
	AvgSpeed float64 `json:"avg_speed"`
}

// RawRun carries the untouched speed/penalty text of one run.
type RawRun struct {
	Speed   string
	Penalty string
}

type RunResult struct {
	Date      string `json:"date"`
	Venue     string `json:"venue"`
	Course    string `json:"course"`
	Speed     string `json:"speed"`
	Penalty   string `json:"penalty"`
	Qualifier string `json:"qualifier"`
}

type TopRun struct {
	Dog     string  `json:"dog"`
	Handler string  `json:"handler"`
	Speed   float64 `json:"speed"`
	Region  string  `json:"region"`
	Club    string  `json:"club"`
	Penalty string  `json:"penalty"`
}

type RegionFilter struct {
	Year    string
	Grade   string
	MinRuns int
}

type RegionAggregate struct {
	Region    string
	Runs      int
	AvgSpeed  *float64
	CleanRuns int
}

type JudgeFilter struct {
	Grade   string
	MinRuns int
}

type JudgeAggregate struct {
	Judge       string
	Runs        int
	AvgSpeed    *float64
	AvgDistance *float64
	CleanRuns   int
	Eliminated  int
}

// Store is the read-only view over the results database.
type Store interface {
	Overview(ctx context.Context) (*Overview, error)
	RecentEvents(ctx context.Context, limit int) ([]RecentEvent, error)
	TopBreeds(ctx context.Context, limit int) ([]BreedCount, error)

	SearchCompetitors(ctx context.Context, query string, limit int) ([]Competitor, error)
	CoupleYears(ctx context.Context, id CoupleID) ([]string, error)
	CouplePerformance(ctx context.Context, id CoupleID, filter ProfileFilter) (*PerformanceCounts, error)
	CoupleMonthlySpeed(ctx context.Context, id CoupleID, filter ProfileFilter) ([]MonthlySpeed, error)
	CoupleRawRuns(ctx context.Context, id CoupleID, filter ProfileFilter) ([]RawRun, error)
	CoupleHistory(ctx context.Context, id CoupleID, filter ProfileFilter) ([]RunResult, error)
	CoupleTotals(ctx context.Context, id CoupleID) (*CoupleTotals, error)

	Breeds(ctx context.Context) ([]string, error)
	TopByBreed(ctx context.Context, breed string, limit int) ([]TopRun, error)

	EventYears(ctx context.Context) ([]string, error)
	RegionStats(ctx context.Context, filter RegionFilter) ([]RegionAggregate, error)
	JudgeStats(ctx context.Context, filter JudgeFilter) ([]JudgeAggregate, error)

	// SharedRuns returns every course both couples ran in the same event,
	// most recent event first.
	SharedRuns(ctx context.Context, a, b CoupleID) ([]SharedRun, error)

	Close() error
}
