// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backtrack

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lengths straddling the unroll factors of the kernels
var kernelSizes = []int{1, 2, 3, 4, 5, 7, 12, 33}

func randVec(n int, rnd *rand.Rand) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = rnd.NormFloat64()
	}
	return v
}

func TestDdot(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))
	for _, n := range kernelSizes {
		x, y := randVec(n, rnd), randVec(n, rnd)
		want := zero
		for i := 0; i < n; i++ {
			want += x[i] * y[i]
		}
		assert.InDelta(t, want, ddot(n, x, y), 1e-12, "n = %d", n)
	}
	assert.Zero(t, ddot(0, nil, nil))
}

func TestDaxpy(t *testing.T) {
	rnd := rand.New(rand.NewPCG(3, 4))
	for _, n := range kernelSizes {
		x, y := randVec(n, rnd), randVec(n, rnd)
		want := make([]float64, n)
		for i := 0; i < n; i++ {
			want[i] = y[i] + 2.5*x[i]
		}
		daxpy(n, 2.5, x, y)
		for i := 0; i < n; i++ {
			assert.InDelta(t, want[i], y[i], 1e-14, "n = %d, i = %d", n, i)
		}
	}

	// zero multiplier leaves the target untouched
	y := []float64{1, 2, 3}
	daxpy(3, 0, []float64{9, 9, 9}, y)
	assert.Equal(t, []float64{1, 2, 3}, y)
}

func TestDscal(t *testing.T) {
	rnd := rand.New(rand.NewPCG(5, 6))
	for _, n := range kernelSizes {
		x := randVec(n, rnd)
		want := make([]float64, n)
		for i := 0; i < n; i++ {
			want[i] = -0.5 * x[i]
		}
		dscal(n, -0.5, x)
		assert.Equal(t, want, x, "n = %d", n)
	}
}

func TestDcopy(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := make([]float64, 4)
	dcopy(4, x, y)
	assert.Equal(t, x, y)
}

func TestDnrm2(t *testing.T) {
	require.Equal(t, 5.0, dnrm2(2, []float64{3, 4}))
	require.Equal(t, 2.0, dnrm2(1, []float64{-2}))
	require.Zero(t, dnrm2(0, nil))

	// no overflow for huge components
	huge := dnrm2(2, []float64{1e200, 1e200})
	require.False(t, math.IsInf(huge, 0))
	require.InEpsilon(t, 1e200*math.Sqrt2, huge, 1e-12)
}
