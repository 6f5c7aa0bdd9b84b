package turbine

import "fmt"

const (
	AppTitle     = "Wind Turbine Pro Designer"
	Heading      = "Wind Turbine Power Calculator & 3D Visualizer"
	FanHeading   = "Energy & Power Generated:"
	FooterCredit = "Made by Bilal Waseem"
)

var paramLabels = map[string]string{
	"blade_length":      "Blade Length (m)",
	"rpm":               "Rotational Speed (RPM)",
	"wind_speed":        "Wind Speed (m/s)",
	"air_density":       "Air Density (kg/m³)",
	"power_coefficient": "Power Coefficient (Cp)",
	"fan_rpm":           "Rotation Speed (RPM)",
	"material":          "Blade Material",
	"blades":            "Number of Blades",
	"adjustment":        "Adjust Calculation",
}

// Label returns the widget caption for a parameter, or name itself.
func Label(name string) string {
	if l, ok := paramLabels[name]; ok {
		return l
	}
	return name
}

// Metric is one formatted output tile.
type Metric struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// Metrics formats the six result tiles in display order.
func (r Result) Metrics() []Metric {
	return []Metric{
		{"Tip Speed Ratio", fmt.Sprintf("%.2f", r.TipSpeedRatio)},
		{"Swept Area", fmt.Sprintf("%.2f m²", r.SweptArea)},
		{"Power Output", fmt.Sprintf("%.0f W", r.PowerOutput)},
		{"Energy / Hour", fmt.Sprintf("%.2f kWh", r.EnergyHour)},
		{"Energy / Day", fmt.Sprintf("%.2f kWh", r.EnergyDay)},
		{"Energy / Month", fmt.Sprintf("%.2f kWh", r.EnergyMonth)},
	}
}

// Overlay is the three text lines drawn over the fan animation.
func (f FanEstimate) Overlay() []string {
	return []string{
		fmt.Sprintf("Power Output: %.2f W", f.Power),
		fmt.Sprintf("Hourly Energy: %.2f kWh", f.EnergyHour),
		fmt.Sprintf("Daily Energy: %.2f kWh", f.EnergyDay),
	}
}
