package turbine

import "math"

const (
	// RatedRPM is the rotor speed at which rpm efficiency reaches 1.0.
	RatedRPM = 70.0

	secondsPerHour = 3600.0
	hoursPerDay    = 24.0
	daysPerMonth   = 30.0
)

// Result holds every derived quantity for one set of inputs.
type Result struct {
	TipSpeedRatio  float64 `json:"tip_speed_ratio"`
	SweptArea      float64 `json:"swept_area"`
	BasePower      float64 `json:"base_power"`
	MaterialFactor float64 `json:"material_factor"`
	RPMEfficiency  float64 `json:"rpm_efficiency"`
	AdjustFactor   float64 `json:"adjust_factor"`
	PowerOutput    float64 `json:"power_output"`
	EnergyHour     float64 `json:"energy_hour"`
	EnergyDay      float64 `json:"energy_day"`
	EnergyMonth    float64 `json:"energy_month"`
}

// TipSpeedRatio is the blade tip's linear speed over the wind speed.
// A zero wind speed gives +Inf.
func TipSpeedRatio(rpm, bladeLength, windSpeed float64) float64 {
	omega := rpm * 2 * math.Pi / 60
	return omega * bladeLength / windSpeed
}

func SweptArea(bladeLength float64) float64 {
	return math.Pi * bladeLength * bladeLength
}

// BasePower is the available wind power scaled by the power coefficient, in watts.
func BasePower(airDensity, sweptArea, windSpeed, powerCoeff float64) float64 {
	return 0.5 * airDensity * sweptArea * windSpeed * windSpeed * windSpeed * powerCoeff
}

func RPMEfficiency(rpm float64) float64 {
	return rpm / RatedRPM
}

// EnergyPerHour converts a power in watts to kWh over one hour.
func EnergyPerHour(power float64) float64 {
	return power * secondsPerHour / 1000
}

// Calculate evaluates the power model. It does not validate; clamp first.
func Calculate(in Inputs) Result {
	r := Result{
		TipSpeedRatio:  TipSpeedRatio(in.RPM, in.BladeLength, in.WindSpeed),
		SweptArea:      SweptArea(in.BladeLength),
		MaterialFactor: in.Material.Efficiency(),
		RPMEfficiency:  RPMEfficiency(in.RPM),
		AdjustFactor:   in.Adjustment.Factor(),
	}
	r.BasePower = BasePower(in.AirDensity, r.SweptArea, in.WindSpeed, in.PowerCoeff)
	r.PowerOutput = r.BasePower * r.MaterialFactor * r.RPMEfficiency * r.AdjustFactor
	r.EnergyHour = EnergyPerHour(r.PowerOutput)
	r.EnergyDay = r.EnergyHour * hoursPerDay
	r.EnergyMonth = r.EnergyDay * daysPerMonth
	return r
}

// FanEstimate is the animation panel's illustrative output. It is not derived
// from the aerodynamic model above.
type FanEstimate struct {
	RPM        float64 `json:"rpm"`
	Power      float64 `json:"power"`
	EnergyHour float64 `json:"energy_hour"`
	EnergyDay  float64 `json:"energy_day"`
}

// Fan computes (rpm*0.5)^3 watts and its hourly and daily energy.
func Fan(rpm float64) FanEstimate {
	half := rpm * 0.5
	f := FanEstimate{RPM: rpm, Power: half * half * half}
	f.EnergyHour = f.Power / 1000
	f.EnergyDay = f.EnergyHour * hoursPerDay
	return f
}
