package turbine

import (
	"context"
	"fmt"
	"math"
)

// Objective scores a result; GridSearch maximises it.
type Objective func(Result) float64

// Objectives available by name on the command line.
var Objectives = map[string]Objective{
	"power":        func(r Result) float64 { return r.PowerOutput },
	"energy_day":   func(r Result) float64 { return r.EnergyDay },
	"energy_month": func(r Result) float64 { return r.EnergyMonth },
	// closeness to the tip speed ratio of a well-matched three-blade rotor
	"tsr": func(r Result) float64 { return -math.Abs(r.TipSpeedRatio - 7) },
}

// GridSearch exhaustively evaluates every combination of named parameter values.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// SearchResult is the best parameter set found.
type SearchResult struct {
	Params    map[string]float64 `json:"params"`
	Inputs    Inputs             `json:"inputs"`
	Result    Result             `json:"result"`
	Score     float64            `json:"score"`
	Evaluated int                `json:"evaluated"`
}

// Search returns the highest scoring combination, starting from base for any
// parameter not in the grid.
func (g *GridSearch) Search(ctx context.Context, base Inputs, obj Objective) (*SearchResult, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("turbine: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}
	for _, name := range g.paramNames {
		if err := (&Inputs{}).SetParam(name, 0); err != nil {
			return nil, err
		}
	}
	best := &SearchResult{Score: math.Inf(-1)}
	if err := g.searchRecursive(ctx, 0, base, make(map[string]float64), obj, best); err != nil {
		return nil, err
	}
	if best.Params == nil {
		return nil, fmt.Errorf("turbine: empty search grid")
	}
	return best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	in Inputs,
	current map[string]float64,
	obj Objective,
	best *SearchResult,
) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := Calculate(in)
		best.Evaluated++
		if score := obj(res); score > best.Score {
			best.Score = score
			best.Inputs = in
			best.Result = res
			best.Params = make(map[string]float64, len(current))
			for k, v := range current {
				best.Params[k] = v
			}
		}
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := in
		_ = next.SetParam(name, val)
		current[name] = val
		if err := g.searchRecursive(ctx, depth+1, next, current, obj, best); err != nil {
			return err
		}
	}
	delete(current, name)
	return nil
}
