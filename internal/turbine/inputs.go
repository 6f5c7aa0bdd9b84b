package turbine

import (
	"fmt"
	"math"
	"sort"
)

// Range is a slider's bounds and starting value.
type Range struct {
	Min, Max, Default float64
	Step              float64
}

// Clamp pins v into [Min, Max]. NaN has no position on a slider and becomes Default.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Default
	}
	return math.Max(r.Min, math.Min(r.Max, v))
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Slider ranges, matching the input widgets.
var (
	BladeLengthRange  = Range{Min: 5, Max: 60, Default: 25, Step: 0.5}
	RPMRange          = Range{Min: 10, Max: 70, Default: 30, Step: 1}
	WindSpeedRange    = Range{Min: 3, Max: 25, Default: 12, Step: 0.1}
	AirDensityRange   = Range{Min: 1.0, Max: 1.5, Default: 1.225, Step: 0.005}
	PowerCoeffRange   = Range{Min: 0.1, Max: 0.59, Default: 0.4, Step: 0.01}
	FanRPMRange       = Range{Min: 10, Max: 120, Default: 30, Step: 1}
	BladeCountOptions = []int{2, 3, 4}
)

// Inputs holds every user-adjustable parameter.
type Inputs struct {
	BladeLength float64    `yaml:"blade_length" json:"blade_length"`
	RPM         float64    `yaml:"rpm" json:"rpm"`
	WindSpeed   float64    `yaml:"wind_speed" json:"wind_speed"`
	AirDensity  float64    `yaml:"air_density" json:"air_density"`
	PowerCoeff  float64    `yaml:"power_coefficient" json:"power_coefficient"`
	Material    Material   `yaml:"material" json:"material"`
	Blades      int        `yaml:"blades" json:"blades"`
	Adjustment  Adjustment `yaml:"adjustment" json:"adjustment"`
	FanRPM      float64    `yaml:"fan_rpm" json:"fan_rpm"`
}

// DefaultInputs returns the widget defaults: the first dropdown options and
// each slider's starting value.
func DefaultInputs() Inputs {
	return Inputs{
		BladeLength: BladeLengthRange.Default,
		RPM:         RPMRange.Default,
		WindSpeed:   WindSpeedRange.Default,
		AirDensity:  AirDensityRange.Default,
		PowerCoeff:  PowerCoeffRange.Default,
		Material:    Fiberglass,
		Blades:      BladeCountOptions[0],
		Adjustment:  AdjustBase,
		FanRPM:      FanRPMRange.Default,
	}
}

var paramRanges = map[string]Range{
	"blade_length":      BladeLengthRange,
	"rpm":               RPMRange,
	"wind_speed":        WindSpeedRange,
	"air_density":       AirDensityRange,
	"power_coefficient": PowerCoeffRange,
	"fan_rpm":           FanRPMRange,
}

// ParamRange returns the range for a numeric parameter name.
func ParamRange(name string) (Range, bool) {
	r, ok := paramRanges[name]
	return r, ok
}

// ParamNames lists the numeric parameters in slider order.
func ParamNames() []string {
	return []string{"blade_length", "rpm", "wind_speed", "air_density", "power_coefficient", "fan_rpm"}
}

// Clamp pins every field into its widget range. An unknown material falls back
// to the first option and a blade count snaps to the nearest valid choice.
func (in Inputs) Clamp() Inputs {
	in.BladeLength = BladeLengthRange.Clamp(in.BladeLength)
	in.RPM = RPMRange.Clamp(in.RPM)
	in.WindSpeed = WindSpeedRange.Clamp(in.WindSpeed)
	in.AirDensity = AirDensityRange.Clamp(in.AirDensity)
	in.PowerCoeff = PowerCoeffRange.Clamp(in.PowerCoeff)
	in.FanRPM = FanRPMRange.Clamp(in.FanRPM)
	if !in.Material.Valid() {
		in.Material = Materials[0]
	}
	in.Blades = nearestBladeCount(in.Blades)
	if in.Adjustment < AdjustBase || in.Adjustment > AdjustSubtract {
		in.Adjustment = AdjustBase
	}
	return in
}

// Validate reports the first field outside its range.
func (in Inputs) Validate() error {
	params := in.GetParams()
	for _, name := range ParamNames() {
		r := paramRanges[name]
		if v := params[name]; !r.Contains(v) || math.IsNaN(v) {
			return &ParamError{Name: name, Value: v, Range: r}
		}
	}
	if !in.Material.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMaterial, in.Material)
	}
	if nearestBladeCount(in.Blades) != in.Blades {
		return fmt.Errorf("%w: got %d", ErrBladeCount, in.Blades)
	}
	if in.Adjustment < AdjustBase || in.Adjustment > AdjustSubtract {
		return fmt.Errorf("%w: %d", ErrUnknownAdjustment, int(in.Adjustment))
	}
	return nil
}

func (in Inputs) GetParams() map[string]float64 {
	return map[string]float64{
		"blade_length":      in.BladeLength,
		"rpm":               in.RPM,
		"wind_speed":        in.WindSpeed,
		"air_density":       in.AirDensity,
		"power_coefficient": in.PowerCoeff,
		"fan_rpm":           in.FanRPM,
	}
}

func (in *Inputs) SetParam(name string, value float64) error {
	switch name {
	case "blade_length":
		in.BladeLength = value
	case "rpm":
		in.RPM = value
	case "wind_speed":
		in.WindSpeed = value
	case "air_density":
		in.AirDensity = value
	case "power_coefficient":
		in.PowerCoeff = value
	case "fan_rpm":
		in.FanRPM = value
	case "blades":
		in.Blades = int(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}

// NextBladeCount cycles 2 -> 3 -> 4 -> 2.
func NextBladeCount(n int) int {
	for i, c := range BladeCountOptions {
		if c == n {
			return BladeCountOptions[(i+1)%len(BladeCountOptions)]
		}
	}
	return BladeCountOptions[0]
}

func nearestBladeCount(n int) int {
	opts := append([]int(nil), BladeCountOptions...)
	sort.Slice(opts, func(i, j int) bool {
		di, dj := abs(opts[i]-n), abs(opts[j]-n)
		if di == dj {
			return opts[i] < opts[j]
		}
		return di < dj
	})
	return opts[0]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
