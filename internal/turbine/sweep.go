package turbine

// CurvePoint is one sample of a power curve.
type CurvePoint struct {
	WindSpeed     float64 `json:"wind_speed"`
	TipSpeedRatio float64 `json:"tip_speed_ratio"`
	Power         float64 `json:"power"`
	EnergyDay     float64 `json:"energy_day"`
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// PowerCurve evaluates in at each wind speed, holding every other input fixed.
func PowerCurve(in Inputs, winds []float64) []CurvePoint {
	pts := make([]CurvePoint, len(winds))
	for i, v := range winds {
		in.WindSpeed = v
		r := Calculate(in)
		pts[i] = CurvePoint{
			WindSpeed:     v,
			TipSpeedRatio: r.TipSpeedRatio,
			Power:         r.PowerOutput,
			EnergyDay:     r.EnergyDay,
		}
	}
	return pts
}

// DefaultCurve samples the full wind speed slider range.
func DefaultCurve(in Inputs, samples int) []CurvePoint {
	return PowerCurve(in, Linspace(WindSpeedRange.Min, WindSpeedRange.Max, samples))
}

// Powers extracts the power column, for plotting.
func Powers(pts []CurvePoint) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = p.Power
	}
	return out
}
