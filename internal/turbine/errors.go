package turbine

import (
	"errors"
	"fmt"
)

var (
	// ErrParameterBounds indicates a parameter value is outside its slider range.
	ErrParameterBounds = errors.New("turbine: parameter out of valid bounds")

	// ErrUnknownParam indicates a parameter name that Inputs does not expose.
	ErrUnknownParam = errors.New("turbine: unknown parameter")

	ErrUnknownMaterial   = errors.New("turbine: unknown blade material")
	ErrUnknownAdjustment = errors.New("turbine: unknown adjustment mode")

	// ErrBladeCount indicates a blade count other than 2, 3 or 4.
	ErrBladeCount = errors.New("turbine: blade count must be 2, 3 or 4")
)

// ParamError wraps a bounds violation with the offending field.
type ParamError struct {
	Name  string
	Value float64
	Range Range
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("turbine: %s=%g outside [%g, %g]", e.Name, e.Value, e.Range.Min, e.Range.Max)
}

func (e *ParamError) Unwrap() error {
	return ErrParameterBounds
}
