package versus

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PenaltySentinel is the penalty assigned when a run's figures cannot be read.
// It makes a corrupt run lose against almost any real one.
const PenaltySentinel = 999.0

// Kind classifies how a competitor's raw run figures were read.
type Kind int

const (
	KindValue Kind = iota
	KindEliminated
	KindUnparseable
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindEliminated:
		return "eliminated"
	case KindUnparseable:
		return "unparseable"
	default:
		return "unknown"
	}
}

// Field names the raw column a degradation came from.
type Field string

const (
	FieldSpeed   Field = "speed"
	FieldPenalty Field = "penalty"
)

// Outcome is one competitor's parsed result on one run.
type Outcome struct {
	Kind       Kind    `json:"-"`
	Eliminated bool    `json:"eliminated"`
	Speed      float64 `json:"speed"`
	Penalty    float64 `json:"penalty"`

	// PenaltyPresent reports whether the raw penalty held a value at all;
	// only those runs count towards the average penalty.
	PenaltyPresent bool `json:"-"`

	// Degraded is the field that failed to parse, if any.
	Degraded Field `json:"-"`
}

// IsEliminationToken reports whether a trimmed raw speed means no valid run was
// recorded. The vocabulary is exactly "", "-", "0" and "None".
func IsEliminationToken(rawSpeed string) bool {
	switch strings.TrimSpace(rawSpeed) {
	case "", "-", "0", "None":
		return true
	}
	return false
}

func isPenaltyPlaceholder(rawPenalty string) bool {
	return rawPenalty == "" || rawPenalty == "-"
}

// ParseDecimal reads a number that may use a comma as decimal separator.
// NaN and infinities are rejected.
func ParseDecimal(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parse %q: not a finite number", raw)
	}
	return v, nil
}

// ParseRun normalises one competitor's raw speed and penalty. It never fails:
// an unreadable speed or penalty degrades the whole run to speed 0 and the
// penalty sentinel, and the outcome records which field was at fault.
func ParseRun(rawSpeed, rawPenalty string) Outcome {
	speedText := strings.TrimSpace(rawSpeed)
	penaltyText := strings.TrimSpace(rawPenalty)

	o := Outcome{
		Kind:           KindValue,
		Eliminated:     IsEliminationToken(speedText),
		PenaltyPresent: !isPenaltyPlaceholder(penaltyText),
	}

	if o.Eliminated {
		o.Kind = KindEliminated
	} else {
		speed, err := ParseDecimal(speedText)
		if err != nil {
			o.Kind = KindUnparseable
			o.Degraded = FieldSpeed
			o.Penalty = PenaltySentinel
			return o
		}
		o.Speed = speed
	}

	if !o.PenaltyPresent {
		return o
	}
	penalty, err := ParseDecimal(penaltyText)
	if err != nil {
		if !o.Eliminated {
			o.Kind = KindUnparseable
		}
		o.Degraded = FieldPenalty
		o.Speed = 0
		o.Penalty = PenaltySentinel
		return o
	}
	o.Penalty = penalty
	return o
}
