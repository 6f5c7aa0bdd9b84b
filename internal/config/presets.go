package config

import (
	"sort"

	"github.com/san-kum/windsim/internal/turbine"
)

// Presets are named starting points for common turbine classes.
var Presets = map[string]turbine.Inputs{
	"default": turbine.DefaultInputs(),
	"small": {
		BladeLength: 5, RPM: 70, WindSpeed: 8, AirDensity: 1.225, PowerCoeff: 0.35,
		Material: turbine.Plastic, Blades: 3, FanRPM: 60,
	},
	"community": {
		BladeLength: 25, RPM: 30, WindSpeed: 12, AirDensity: 1.225, PowerCoeff: 0.4,
		Material: turbine.CarbonFiber, Blades: 3, FanRPM: 30,
	},
	"utility": {
		BladeLength: 50, RPM: 16, WindSpeed: 11, AirDensity: 1.225, PowerCoeff: 0.45,
		Material: turbine.Fiberglass, Blades: 3, FanRPM: 20,
	},
	"offshore": {
		BladeLength: 60, RPM: 12, WindSpeed: 14, AirDensity: 1.25, PowerCoeff: 0.48,
		Material: turbine.CarbonFiber, Blades: 3, FanRPM: 15,
	},
	"highland": {
		BladeLength: 30, RPM: 25, WindSpeed: 9, AirDensity: 1.05, PowerCoeff: 0.4,
		Material: turbine.Aluminum, Blades: 2, FanRPM: 40,
	},
}

func GetPreset(name string) (turbine.Inputs, bool) {
	in, ok := Presets[name]
	return in, ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
