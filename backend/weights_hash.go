package main

import "math"

const fnv64Offset = 14695981039346656037
const fnv64Prime = 1099511628211

// resolvedWeights fills zero-valued fields from the defaults, so a
// partial weight payload tweaks one knob without zeroing the rest.
func resolvedWeights(weights EvalWeights) EvalWeights {
	defaults := DefaultEvalWeights()
	if weights == (EvalWeights{}) {
		return defaults
	}
	if weights.Openness == 0 {
		weights.Openness = defaults.Openness
	}
	if weights.Smoothness == 0 {
		weights.Smoothness = defaults.Smoothness
	}
	if weights.Monotonicity == 0 {
		weights.Monotonicity = defaults.Monotonicity
	}
	if weights.Corner == 0 {
		weights.Corner = defaults.Corner
	}
	return weights
}

// weightsHash fingerprints a weight vector so diagnostics and tuning
// runs can tell configurations apart at a glance.
func weightsHash(weights EvalWeights) uint64 {
	hash := uint64(fnv64Offset)
	mix := func(value float64) {
		bits := math.Float64bits(value)
		for i := 0; i < 8; i++ {
			hash ^= uint64(byte(bits >> (8 * i)))
			hash *= fnv64Prime
		}
	}
	mix(weights.Openness)
	mix(weights.Smoothness)
	mix(weights.Monotonicity)
	mix(weights.Corner)
	return hash
}
