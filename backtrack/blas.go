// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backtrack

import "math"

// daxpy performs constant times a vector plus a vector operation.
func daxpy(n int, da float64, dx, dy []float64) {
	if n <= 0 || da == 0.0 {
		return
	}
	m := uint(n % 4)
	if m > uint(len(dx)) || m > uint(len(dy)) {
		panic("bound check error")
	}
	for i := uint(0); i < m; i++ {
		dy[i] += da * dx[i]
	}
	if n < 4 {
		return
	}
	for i := m; i < uint(n); i += 4 {
		x := dx[i : i+4 : i+4]
		y := dy[i : i+4 : i+4]
		y[0] += da * x[0]
		y[1] += da * x[1]
		y[2] += da * x[2]
		y[3] += da * x[3]
	}
}

// ddot computes the dot product of two vectors.
func ddot(n int, dx, dy []float64) (dot float64) {
	if n <= 0 {
		return zero
	}
	m := uint(n % 5)
	if m > uint(len(dx)) || m > uint(len(dy)) {
		panic("bound check error")
	}
	for i := uint(0); i < m; i++ {
		dot += dx[i] * dy[i]
	}
	if n < 5 {
		return dot
	}
	for i := m; i < uint(n); i += 5 {
		x := dx[i : i+5 : i+5]
		y := dy[i : i+5 : i+5]
		dot += x[0]*y[0] + x[1]*y[1] + x[2]*y[2] + x[3]*y[3] + x[4]*y[4]
	}
	return dot
}

// dcopy copies a vector to another vector.
func dcopy(n int, dx, dy []float64) {
	if n <= 0 {
		return
	}
	copy(dy[:n], dx[:n])
}

// dscal scales a vector by a constant.
func dscal(n int, da float64, dx []float64) {
	if n <= 0 {
		return
	}
	m := uint(n % 5)
	if m > uint(len(dx)) {
		panic("bound check error")
	}
	for i := uint(0); i < m; i++ {
		dx[i] *= da
	}
	if n < 5 {
		return
	}
	for i := m; i < uint(n); i += 5 {
		d := dx[i : i+5 : i+5]
		d[0] *= da
		d[1] *= da
		d[2] *= da
		d[3] *= da
		d[4] *= da
	}
}

// dnrm2 computes the euclidean norm of a vector
// without overflow or destructive underflow.
func dnrm2(n int, x []float64) float64 {
	if n < 1 {
		return zero
	}
	if n > len(x) {
		panic("bound check error")
	}
	if n == 1 {
		return math.Abs(x[0])
	}
	scale := zero
	ssq := one
	for i := 0; i < n; i++ {
		if absxi := math.Abs(x[i]); absxi > 0 {
			if scale < absxi {
				sxi := scale / absxi
				ssq = 1 + ssq*sxi*sxi
				scale = absxi
			} else {
				sxi := absxi / scale
				ssq += sxi * sxi
			}
		}
	}
	return scale * math.Sqrt(ssq)
}
