package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/windsim/internal/config"
	"github.com/san-kum/windsim/internal/turbine"
)

// Scenario is a scripted batch of designs evaluated in order.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep describes one design as a preset plus overrides.
type ScenarioStep struct {
	Name       string             `yaml:"name"`
	Preset     string             `yaml:"preset"`
	Material   string             `yaml:"material"`
	Blades     int                `yaml:"blades"`
	Adjustment string             `yaml:"adjustment"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

// StepResult is one evaluated step. ID is set when the step was saved.
type StepResult struct {
	Name   string
	Inputs turbine.Inputs
	Result turbine.Result
	ID     string
}

// Saver persists a design and returns its id.
type Saver interface {
	Save(name string, in turbine.Inputs) (string, error)
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Inputs resolves a step against base: preset first, then the overrides.
// Out-of-range values are clamped.
func (s ScenarioStep) Inputs(base turbine.Inputs) (turbine.Inputs, error) {
	in := base
	if s.Preset != "" {
		p, ok := config.GetPreset(s.Preset)
		if !ok {
			return in, fmt.Errorf("unknown preset: %s", s.Preset)
		}
		in = p
	}
	if s.Material != "" {
		m, err := turbine.ParseMaterial(s.Material)
		if err != nil {
			return in, err
		}
		in.Material = m
	}
	if s.Blades != 0 {
		in.Blades = s.Blades
	}
	if s.Adjustment != "" {
		a, err := turbine.ParseAdjustment(s.Adjustment)
		if err != nil {
			return in, err
		}
		in.Adjustment = a
	}
	names := make([]string, 0, len(s.Params))
	for k := range s.Params {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if err := in.SetParam(k, s.Params[k]); err != nil {
			return in, err
		}
	}
	return in.Clamp(), nil
}

// RunScenario evaluates every step. Steps with SaveAs are written through
// saver when it is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, base turbine.Inputs, saver Saver, log *zap.Logger) ([]StepResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		log.Debug("running step", zap.Int("step", i+1), zap.Int("of", len(scenario.Steps)), zap.String("name", name))

		in, err := step.Inputs(base)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		r := StepResult{Name: name, Inputs: in, Result: turbine.Calculate(in)}

		if step.SaveAs != "" && saver != nil {
			if r.ID, err = saver.Save(step.SaveAs, in); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, r)
	}

	return results, nil
}

// MonteCarloConfig perturbs wind speed and air density around Base.
// Spreads are fractions of the base value, drawn uniformly.
type MonteCarloConfig struct {
	Base          turbine.Inputs
	WindSpread    float64
	DensitySpread float64
	NumTrials     int
	Seed          int64
}

type MonteCarloResult struct {
	TrialID    int
	WindSpeed  float64
	AirDensity float64
	Power      float64
}

// RunMonteCarlo evaluates NumTrials perturbed copies of the base design.
// Perturbed values are clamped to the slider ranges.
func RunMonteCarlo(ctx context.Context, cfg MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.NumTrials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", cfg.NumTrials)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		if trial%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		in := cfg.Base
		in.WindSpeed *= 1 + (rng.Float64()-0.5)*2*cfg.WindSpread
		in.AirDensity *= 1 + (rng.Float64()-0.5)*2*cfg.DensitySpread
		in = in.Clamp()

		results = append(results, MonteCarloResult{
			TrialID:    trial,
			WindSpeed:  in.WindSpeed,
			AirDensity: in.AirDensity,
			Power:      turbine.Calculate(in).PowerOutput,
		})
	}
	return results, nil
}

// Stats summarises trial power in watts.
type Stats struct {
	Mean, StdDev float64
	Min, Max     float64
	P10, P50     float64
	P90          float64
}

func MonteCarloStats(results []MonteCarloResult) Stats {
	if len(results) == 0 {
		return Stats{}
	}
	powers := make([]float64, len(results))
	var sum float64
	for i, r := range results {
		powers[i] = r.Power
		sum += r.Power
	}
	sort.Float64s(powers)

	st := Stats{
		Mean: sum / float64(len(powers)),
		Min:  powers[0],
		Max:  powers[len(powers)-1],
		P10:  percentile(powers, 0.10),
		P50:  percentile(powers, 0.50),
		P90:  percentile(powers, 0.90),
	}
	var ss float64
	for _, p := range powers {
		ss += (p - st.Mean) * (p - st.Mean)
	}
	st.StdDev = math.Sqrt(ss / float64(len(powers)))
	return st
}

// percentile reads a sorted slice by nearest rank.
func percentile(sorted []float64, q float64) float64 {
	i := int(math.Ceil(q*float64(len(sorted)))) - 1
	return sorted[max(0, min(i, len(sorted)-1))]
}
