package main

import (
	"github.com/pthm-cable/trophic/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters:
// mutation noise widths and the behavior constants they interact with.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Mutation ranges
			{Name: "mut_speed", Path: "mutation.ranges.speed", Min: 0, Max: 10, Default: 5},
			{Name: "mut_burst", Path: "mutation.ranges.burst", Min: 0, Max: 20, Default: 10},
			{Name: "mut_recover", Path: "mutation.ranges.recover", Min: 0, Max: 20, Default: 10},
			{Name: "mut_mass", Path: "mutation.ranges.mass", Min: 0, Max: 3, Default: 1},
			{Name: "mut_vision", Path: "mutation.ranges.vision", Min: 0, Max: 40, Default: 20},
			// Behavior
			{Name: "hunger_threshold", Path: "behavior.hunger_threshold", Min: 0.2, Max: 0.9, Default: 0.5},
			{Name: "burst_multiplier", Path: "behavior.burst_multiplier", Min: 1.0, Max: 2.5, Default: 1.5},
			{Name: "recover_multiplier", Path: "behavior.recover_multiplier", Min: 0.2, Max: 1.0, Default: 0.6},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = max(spec.Min, min(v[i], spec.Max))
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	cfg.Mutation.Ranges = config.TraitValues{
		Speed:   c[0],
		Burst:   c[1],
		Recover: c[2],
		Mass:    c[3],
		Vision:  c[4],
	}
	cfg.Behavior.HungerThreshold = c[5]
	cfg.Behavior.BurstMultiplier = c[6]
	cfg.Behavior.RecoverMultiplier = c[7]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	r := cfg.Mutation.Ranges
	return []float64{
		r.Speed, r.Burst, r.Recover, r.Mass, r.Vision,
		cfg.Behavior.HungerThreshold,
		cfg.Behavior.BurstMultiplier,
		cfg.Behavior.RecoverMultiplier,
	}
}
