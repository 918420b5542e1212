package model

import "fmt"

// Signal is the discrete crossover outcome for one session.
type Signal int

const (
	Sell Signal = -1
	Hold Signal = 0
	Buy  Signal = 1
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Label is the Vietnamese action label used in prompts and reports.
func (s Signal) Label() string {
	switch s {
	case Buy:
		return "MUA"
	case Sell:
		return "BÁN"
	default:
		return "CHỜ"
	}
}

func (s Signal) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Signal) UnmarshalText(text []byte) error {
	switch string(text) {
	case "BUY":
		*s = Buy
	case "SELL":
		*s = Sell
	case "HOLD":
		*s = Hold
	default:
		return fmt.Errorf("unknown signal %q", string(text))
	}
	return nil
}
