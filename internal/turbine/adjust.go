package turbine

import (
	"fmt"
	"strings"
)

// Adjustment scales the final power output.
type Adjustment int

const (
	AdjustBase Adjustment = iota
	AdjustAdd
	AdjustSubtract
)

// Adjustments lists the radio options in display order.
var Adjustments = []Adjustment{AdjustBase, AdjustAdd, AdjustSubtract}

// Factor is exactly 1.10, 0.90 or 1.0; modes never compound.
func (a Adjustment) Factor() float64 {
	switch a {
	case AdjustAdd:
		return 1.10
	case AdjustSubtract:
		return 0.90
	default:
		return 1.0
	}
}

func (a Adjustment) String() string {
	switch a {
	case AdjustAdd:
		return "Add (+10%)"
	case AdjustSubtract:
		return "Subtract (-10%)"
	default:
		return "Base"
	}
}

func (a Adjustment) Next() Adjustment {
	return Adjustments[(int(a)+1)%len(Adjustments)]
}

// ParseAdjustment accepts the radio labels and short forms such as "add", "+10%" or "sub".
func ParseAdjustment(s string) (Adjustment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "base", "none":
		return AdjustBase, nil
	case "add", "add (+10%)", "+10%", "+10", "plus":
		return AdjustAdd, nil
	case "subtract", "sub", "subtract (-10%)", "-10%", "-10", "minus":
		return AdjustSubtract, nil
	}
	return AdjustBase, fmt.Errorf("%w: %q", ErrUnknownAdjustment, s)
}

func (a Adjustment) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Adjustment) UnmarshalText(b []byte) error {
	v, err := ParseAdjustment(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
