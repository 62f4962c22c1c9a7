// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backtrack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStep(t *testing.T) {
	x := []float64{1, 2, 3}
	DefaultStep(x, []float64{1, 0, -2}, 0.5)
	assert.Equal(t, []float64{1.5, 2, 2}, x)
}

func TestNegativeStep(t *testing.T) {
	x := []float64{1, 2, 3}
	NegativeStep(x, []float64{1, 0, -2}, 0.5)
	assert.Equal(t, []float64{0.5, 2, 4}, x)
}

func TestNegativeStepSearch(t *testing.T) {

	// Same bowl as the default rule, with the direction and
	// gradient signs flipped: the caller hands in an ascent
	// direction and the negated rule still walks downhill.
	params := []float64{10}
	target := &scorer{x: params, fn: sumSquares}

	s, err := (&Problem{Target: target, Step: NegativeStep}).New()
	require.NoError(t, err)

	step, err := s.Optimize(0, params, []float64{-20}, []float64{1})
	require.NoError(t, err)

	assert.Equal(t, 1.0, step)
	assert.Equal(t, []float64{9}, params)
}
