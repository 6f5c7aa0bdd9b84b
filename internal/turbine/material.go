package turbine

import (
	"fmt"
	"strings"
)

// Material is a blade material with an illustrative efficiency multiplier.
type Material string

const (
	Fiberglass  Material = "Fiberglass"
	CarbonFiber Material = "Carbon Fiber"
	Aluminum    Material = "Aluminum"
	Plastic     Material = "Plastic"
)

// Materials lists the selectable materials in dropdown order.
var Materials = []Material{Fiberglass, CarbonFiber, Aluminum, Plastic}

var materialEfficiency = map[Material]float64{
	Fiberglass:  0.95,
	CarbonFiber: 1.0,
	Aluminum:    0.85,
	Plastic:     0.75,
}

// Efficiency returns the material factor, or 0 for an unknown material.
func (m Material) Efficiency() float64 {
	return materialEfficiency[m]
}

func (m Material) Valid() bool {
	_, ok := materialEfficiency[m]
	return ok
}

// Next returns the material after m in dropdown order, wrapping around.
func (m Material) Next() Material {
	for i, mat := range Materials {
		if mat == m {
			return Materials[(i+1)%len(Materials)]
		}
	}
	return Materials[0]
}

// ParseMaterial accepts display names case-insensitively, with or without
// separators ("carbon fiber", "carbon-fiber", "carbonfiber").
func ParseMaterial(s string) (Material, error) {
	key := normalize(s)
	for _, m := range Materials {
		if normalize(string(m)) == key {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMaterial, s)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}

func (m *Material) UnmarshalText(b []byte) error {
	v, err := ParseMaterial(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
