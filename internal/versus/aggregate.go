package versus

import "github.com/k9tracker/k9tracker/internal/store"

// Run is one shared course after parsing and resolution.
type Run struct {
	Record store.SharedRun
	A      Outcome
	B      Outcome
	Winner Winner
}

// Evaluate parses both sides of a shared course and resolves the verdict.
func Evaluate(rec store.SharedRun) Run {
	a := ParseRun(rec.SpeedA, rec.PenaltyA)
	b := ParseRun(rec.SpeedB, rec.PenaltyB)
	return Run{Record: rec, A: a, B: b, Winner: Resolve(a, b)}
}

// SideTally accumulates one competitor's contribution over a set of runs.
type SideTally struct {
	Wins         int
	Eliminations int
	SpeedRuns    int
	SpeedSum     float64
	PenaltyRuns  int
	PenaltySum   float64
}

func (s SideTally) add(o Outcome, won bool) SideTally {
	if won {
		s.Wins++
	}
	if o.Eliminated {
		s.Eliminations++
	} else {
		s.SpeedRuns++
		s.SpeedSum += o.Speed
	}
	if o.PenaltyPresent {
		s.PenaltyRuns++
		s.PenaltySum += o.Penalty
	}
	return s
}

func (s SideTally) merge(o SideTally) SideTally {
	return SideTally{
		Wins:         s.Wins + o.Wins,
		Eliminations: s.Eliminations + o.Eliminations,
		SpeedRuns:    s.SpeedRuns + o.SpeedRuns,
		SpeedSum:     s.SpeedSum + o.SpeedSum,
		PenaltyRuns:  s.PenaltyRuns + o.PenaltyRuns,
		PenaltySum:   s.PenaltySum + o.PenaltySum,
	}
}

// Tally is the running state of the match aggregation. The zero value is the
// empty tally.
type Tally struct {
	Runs int
	Ties int
	A    SideTally
	B    SideTally
}

// Add folds one run into the tally and returns the new state.
func (t Tally) Add(r Run) Tally {
	t.Runs++
	if r.Winner == Tie {
		t.Ties++
	}
	t.A = t.A.add(r.A, r.Winner == WinnerA)
	t.B = t.B.add(r.B, r.Winner == WinnerB)
	return t
}

// Merge combines two partial tallies. Counts and sums only, so partial results
// may be combined in any grouping.
func (t Tally) Merge(o Tally) Tally {
	return Tally{
		Runs: t.Runs + o.Runs,
		Ties: t.Ties + o.Ties,
		A:    t.A.merge(o.A),
		B:    t.B.merge(o.B),
	}
}

// Fold reduces runs left to right with step, starting from init.
func Fold[S any](runs []Run, init S, step func(S, Run) S) S {
	state := init
	for _, r := range runs {
		state = step(state, r)
	}
	return state
}

// Summary is the aggregate verdict of a head-to-head comparison.
type Summary struct {
	TotalRuns        int     `json:"total_runs"`
	Ties             int     `json:"ties"`
	ScoreA           int     `json:"score_a"`
	ScoreB           int     `json:"score_b"`
	EliminationsA    int     `json:"eliminations_a"`
	EliminationsB    int     `json:"eliminations_b"`
	EliminationRateA float64 `json:"elimination_rate_a"`
	EliminationRateB float64 `json:"elimination_rate_b"`
	AvgSpeedA        float64 `json:"avg_speed_a"`
	AvgSpeedB        float64 `json:"avg_speed_b"`
	AvgPenaltyA      float64 `json:"avg_penalty_a"`
	AvgPenaltyB      float64 `json:"avg_penalty_b"`
}

// Summary derives rates and means. Averages over no runs are 0.
func (t Tally) Summary() Summary {
	return Summary{
		TotalRuns:        t.Runs,
		Ties:             t.Ties,
		ScoreA:           t.A.Wins,
		ScoreB:           t.B.Wins,
		EliminationsA:    t.A.Eliminations,
		EliminationsB:    t.B.Eliminations,
		EliminationRateA: percent(t.A.Eliminations, t.Runs),
		EliminationRateB: percent(t.B.Eliminations, t.Runs),
		AvgSpeedA:        mean(t.A.SpeedSum, t.A.SpeedRuns),
		AvgSpeedB:        mean(t.B.SpeedSum, t.B.SpeedRuns),
		AvgPenaltyA:      mean(t.A.PenaltySum, t.A.PenaltyRuns),
		AvgPenaltyB:      mean(t.B.PenaltySum, t.B.PenaltyRuns),
	}
}

// Summarize evaluates and folds a whole record set.
func Summarize(records []store.SharedRun) Summary {
	runs := make([]Run, len(records))
	for i, rec := range records {
		runs[i] = Evaluate(rec)
	}
	return Fold(runs, Tally{}, Tally.Add).Summary()
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
