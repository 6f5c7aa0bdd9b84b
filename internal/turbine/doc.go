// Package turbine computes wind turbine power output from blade and wind parameters.
//
// The model is a closed-form evaluation of the standard aerodynamic relations:
//
//   - [TipSpeedRatio]: blade tip speed divided by wind speed
//   - [SweptArea]: area traced by the rotor, π·L²
//   - [BasePower]: ½·ρ·A·v³·Cp
//
// [Calculate] combines them with an illustrative material multiplier, a linear
// rpm efficiency (rpm/70) and an optional ±10% adjustment, then derives energy
// per hour, day and month. [Fan] is the independent estimate shown next to the
// 2D fan animation.
//
// # Edge Cases
//
// The formulas are unguarded. Inputs are expected to be clamped to their slider
// ranges first ([Inputs.Clamp]); a zero wind speed yields an infinite tip speed
// ratio.
package turbine
