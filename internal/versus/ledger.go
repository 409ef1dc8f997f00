package versus

import "github.com/k9tracker/k9tracker/internal/store"

// Marker is how one side of a run should be presented on the match sheet.
type Marker string

const (
	MarkerEliminated Marker = "eliminated"
	MarkerNormal     Marker = "normal"
	MarkerWinning    Marker = "winning"
)

type LedgerEntry struct {
	Course  string          `json:"course"`
	Record  store.SharedRun `json:"record"`
	Winner  Winner          `json:"winner"`
	MarkerA Marker          `json:"marker_a"`
	MarkerB Marker          `json:"marker_b"`
}

// LedgerGroup holds the runs of one event, keyed by date and venue.
type LedgerGroup struct {
	EventDate string        `json:"event_date"`
	Venue     string        `json:"venue"`
	Runs      []LedgerEntry `json:"runs"`
}

// Ledger is the match sheet: events in the order they first appear in the
// fetched records, never re-sorted.
type Ledger struct {
	Groups []LedgerGroup `json:"groups"`
}

type ledgerKey struct {
	date  string
	venue string
}

func marker(o Outcome, side, winner Winner) Marker {
	switch {
	case o.Eliminated:
		return MarkerEliminated
	case winner == side:
		return MarkerWinning
	default:
		return MarkerNormal
	}
}

// BuildLedger groups runs by (event date, venue) preserving first-seen order of
// each group and the relative order of runs inside it.
func BuildLedger(runs []Run) Ledger {
	index := make(map[ledgerKey]int)
	groups := []LedgerGroup{}

	for _, r := range runs {
		key := ledgerKey{date: r.Record.EventDate, venue: r.Record.Venue}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, LedgerGroup{EventDate: key.date, Venue: key.venue})
		}
		groups[i].Runs = append(groups[i].Runs, LedgerEntry{
			Course:  r.Record.Course,
			Record:  r.Record,
			Winner:  r.Winner,
			MarkerA: marker(r.A, WinnerA, r.Winner),
			MarkerB: marker(r.B, WinnerB, r.Winner),
		})
	}
	return Ledger{Groups: groups}
}
