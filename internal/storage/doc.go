// Package storage persists turbine designs on disk.
//
// Each design lives in its own directory named <slug>_<uuid8>:
//
//	metadata.json  name, timestamp, inputs, result and fan estimate
//	curve.csv      power curve over the wind speed slider range
package storage
