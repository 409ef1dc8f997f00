package versus

import "fmt"

// Winner is the verdict of one run between competitors A and B.
type Winner int

const (
	Tie Winner = iota
	WinnerA
	WinnerB
)

func (w Winner) String() string {
	switch w {
	case WinnerA:
		return "A"
	case WinnerB:
		return "B"
	default:
		return "TIE"
	}
}

func (w Winner) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

func (w *Winner) UnmarshalText(text []byte) error {
	switch string(text) {
	case "A":
		*w = WinnerA
	case "B":
		*w = WinnerB
	case "TIE":
		*w = Tie
	default:
		return fmt.Errorf("unknown winner %q", text)
	}
	return nil
}

// Resolve ranks two outcomes of the same run. Precedence:
//
//  1. both eliminated: tie
//  2. one eliminated: the other wins
//  3. lower penalty wins
//  4. equal penalty: higher speed wins
//  5. otherwise tie
func Resolve(a, b Outcome) Winner {
	switch {
	case a.Eliminated && b.Eliminated:
		return Tie
	case a.Eliminated:
		return WinnerB
	case b.Eliminated:
		return WinnerA
	case a.Penalty < b.Penalty:
		return WinnerA
	case b.Penalty < a.Penalty:
		return WinnerB
	case a.Speed > b.Speed:
		return WinnerA
	case b.Speed > a.Speed:
		return WinnerB
	default:
		return Tie
	}
}
