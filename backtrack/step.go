// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backtrack

// StepFunc applies a signed scaled direction to the parameter vector in place.
// The search logic is identical for either sign convention, so the rule is
// injected rather than baked into the engine.
type StepFunc func(x, d []float64, step float64)

// DefaultStep moves the parameters along the direction: x += step·d.
func DefaultStep(x, d []float64, step float64) {
	daxpy(len(x), step, d, x)
}

// NegativeStep moves the parameters against the direction: x -= step·d.
// Use it when the caller supplies an ascent direction for a score
// that should decrease.
func NegativeStep(x, d []float64, step float64) {
	daxpy(len(x), -step, d, x)
}
