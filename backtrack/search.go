// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package backtrack implements a safeguarded backtracking line search
// with polynomial interpolation ("Line Searches and Backtracking",
// Numerical Recipes in C, p.385, lnsrch).
//
// No attempt at accurately locating the true minimizer along the
// direction is made. The goal is only to find a step fraction that
// yields a sufficient decrease of the score, or to report that no
// such step exists.
package backtrack

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

const (
	zero  = 0.0
	one   = 1.0
	two   = 2.0
	three = 3.0
	eps   = float64(7)/3 - float64(4)/3 - 1.
)

const (
	defStepMax  = 100.0
	defRelTolX  = 1e-7
	defAbsTolX  = 1e-4
	defDecrease = 1e-4
	defMaxIter  = 5
	// shrink factor applied when a trial score is infinite or NaN
	instShrink = 0.2
)

// Objective is the scoring target of the search.
// SetParams installs a trial parameter vector and Score evaluates
// the currently installed one. The scorer is expected to be cheap
// and idempotent: the search installs and scores several trial
// points per call.
type Objective interface {
	Score() float64
	SetParams(x []float64)
}

// Problem specifies a backtracking line search over an objective.
type Problem struct {
	// Target is the scoring target. Required.
	Target Objective
	// Step is the rule turning a step fraction into a parameter
	// update. Defaults to DefaultStep.
	Step StepFunc
	// StepMax caps the euclidean norm of the search direction.
	// A direction with a larger norm is rescaled before the search
	// to prevent catastrophically large first steps. Defaults to 100.
	StepMax float64
	// RelTolX is the relative tolerance on the parameter change.
	// The search converges with a zero step once |Δxᵢ/xᵢ| < RelTolX
	// would hold for all coordinates. Defaults to 1e-7.
	RelTolX float64
	// AbsTolX is the absolute tolerance on the parameter change.
	// Reserved: validated but not consulted by the accept logic.
	// Defaults to 1e-4.
	AbsTolX float64
	// MaxIterations bounds the number of trial evaluations per call.
	// Defaults to 5.
	MaxIterations int
	// Decrease is the sufficient-decrease constant ɑ of the Armijo
	// condition f(λ) ≤ f(0) + ɑλf′(0). Defaults to 1e-4.
	Decrease float64
	// Contraction bounds the geometric shrink rate of consecutive
	// trial steps: λₖ₊₁ ∈ [Contraction[0]·λₖ, Contraction[1]·λₖ].
	// Defaults to [0.1, 0.5].
	Contraction [2]float64
	// Trace optionally observes the search. Nil disables tracing.
	Trace Tracer
}

// New validates the problem and creates a search.
func (p *Problem) New() (search *Search, err error) {

	target, step, trace := p.Target, p.Step, p.Trace
	stpmax, relTolX, absTolX := p.StepMax, p.RelTolX, p.AbsTolX
	maxIter, alf, shrink := p.MaxIterations, p.Decrease, p.Contraction

	if step == nil {
		step = DefaultStep
	}
	if stpmax == zero {
		stpmax = defStepMax
	}
	if relTolX == zero {
		relTolX = defRelTolX
	}
	if absTolX == zero {
		absTolX = defAbsTolX
	}
	if maxIter == 0 {
		maxIter = defMaxIter
	}
	if alf == zero {
		alf = defDecrease
	}
	if shrink == [2]float64{} {
		shrink = [2]float64{0.1, 0.5}
	}

	switch {
	case target == nil:
		err = errors.New("scoring target is required")
	case math.IsNaN(stpmax) || stpmax <= zero:
		err = errors.New("direction norm cap must greater than 0")
	case math.IsNaN(relTolX) || relTolX <= zero:
		err = errors.New("relative tolerance must greater than 0")
	case math.IsNaN(absTolX) || absTolX <= zero:
		err = errors.New("absolute tolerance must greater than 0")
	case maxIter < 0:
		err = errors.New("max iteration must greater than 0")
	case math.IsNaN(alf) || alf <= zero || alf >= one:
		err = errors.New("sufficient decrease constant must lie in (0,1)")
	case !(shrink[0] > zero && shrink[0] < shrink[1] && shrink[1] < one):
		err = errors.New("contraction bounds must satisfy 0 < lower < upper < 1")
	}
	if err != nil {
		return
	}

	search = &Search{
		target:  target,
		apply:   step,
		trace:   trace,
		stpmax:  stpmax,
		relTolX: relTolX,
		absTolX: absTolX,
		maxIter: maxIter,
		alf:     alf,
		shrink:  shrink,
	}
	return
}

// Search performs safeguarded backtracking line searches.
// One Search may serve many calls, but a given Objective must not be
// searched from multiple goroutines at once: the engine is the sole
// mutator of the target during a call and does no locking.
type Search struct {
	target  Objective
	apply   StepFunc
	trace   Tracer
	stpmax  float64
	relTolX float64
	absTolX float64
	maxIter int
	alf     float64
	shrink  [2]float64
}

// Optimize searches along direction for a step fraction that
// sufficiently decreases the target score.
//
// On entry params must be the vector currently installed in the
// target and gradient the gradient of the score at that point.
// The direction is borrowed: the engine rescales a private copy
// when its norm exceeds the cap and never writes to the caller's
// slice. The params slice is mutated in place as trials are
// applied; on a zero-step return it is restored to its entry value
// and reinstalled in the target.
//
// initialStep is accepted but ignored: the search always starts at
// the full unit step. Seeding with a non-unit step is documented to
// confuse the backtracking in some regimes (the jump can grow on
// the first iteration instead of shrinking).
//
// The returned fraction lies in (0, 1], or is 0 when the step
// became negligible or the iteration budget ran out without an
// acceptable trial.
func (s *Search) Optimize(initialStep float64, params, gradient, direction []float64) (float64, error) {

	n := len(params)
	if len(gradient) != n || len(direction) != n {
		panic("gradient and direction dimension not match parameters")
	}

	x0 := slices.Clone(params)
	d := slices.Clone(direction)

	if sum := dnrm2(n, d); sum > s.stpmax {
		dscal(n, s.stpmax/sum, d)
	}

	slope := ddot(n, d, gradient)
	if slope >= zero {
		return zero, fmt.Errorf("%w: slope = %v", ErrNotDescent, slope)
	}

	// The largest relative sensitivity of the score to a coordinate
	// determines the smallest step still worth trying.
	test := zero
	for i := 0; i < n; i++ {
		if temp := math.Abs(gradient[i]) / math.Max(math.Abs(x0[i]), one); temp > test {
			test = temp
		}
	}
	alamin := s.relTolX / test

	fold := s.target.Score()
	f2 := fold

	if s.trace != nil {
		s.trace.EnterSearch(fold, slope, alamin)
	}

	lo, hi := s.shrink[0], s.shrink[1]
	alam, alam2 := one, zero
	var tmplam float64

	for iter := 0; iter < s.maxIter; iter++ {

		dcopy(n, x0, params)
		s.apply(params, d, alam)

		// Convergence on Δx: the step is negligible either by the
		// precomputed threshold or because no coordinate detectably moved.
		if alam < alamin || !moved(x0, params) {
			s.restore(x0, params)
			s.branch(iter, BranchConverge, zero)
			s.exit(zero, fold)
			return zero, nil
		}

		s.target.SetParams(params)
		f := s.target.Score()
		s.iteration(iter, alam, f)

		switch {
		case f <= fold+s.alf*alam*slope:
			// Sufficient decrease (Armijo condition).
			if f > fold {
				return zero, fmt.Errorf("%w: f = %v > %v = fold", ErrScoreIncreased, f, fold)
			}
			s.branch(iter, BranchAccept, alam)
			s.exit(alam, f)
			return alam, nil

		case math.IsInf(f, 0) || math.IsNaN(f) || math.IsInf(f2, 0) || math.IsNaN(f2):
			// Jumped to unstable territory, scale down.
			tmplam = instShrink * alam
			if tmplam < alamin {
				s.restore(x0, params)
				s.branch(iter, BranchConverge, zero)
				s.exit(zero, fold)
				return zero, nil
			}
			s.branch(iter, BranchUnstable, tmplam)

		default:
			if alam == one {
				// First backtrack: minimize the quadratic through
				// (0, fold), (1, f) with slope f′(0).
				tmplam = -slope / (two * (f - fold - slope))
			} else {
				if alam == alam2 {
					s.restore(x0, params)
					return zero, fmt.Errorf("%w: alam = %v", ErrDegenerateStep, alam)
				}
				// Later backtracks: minimize the cubic through the last
				// two trials and the slope at 0.
				rhs1 := f - fold - alam*slope
				rhs2 := f2 - fold - alam2*slope
				a := (rhs1/(alam*alam) - rhs2/(alam2*alam2)) / (alam - alam2)
				b := (-alam2*rhs1/(alam*alam) + alam*rhs2/(alam2*alam2)) / (alam - alam2)
				if a == zero {
					tmplam = -slope / (two * b)
				} else if disc := b*b - three*a*slope; disc < zero {
					tmplam = hi * alam
				} else if b <= zero {
					tmplam = (-b + math.Sqrt(disc)) / (three * a)
				} else {
					// Equivalent root written to avoid cancellation when b > 0.
					tmplam = -slope / (b + math.Sqrt(disc))
				}
			}
			if tmplam > hi*alam {
				tmplam = hi * alam // λₖ₊₁ ≤ ½λₖ
			}
			s.branch(iter, BranchBacktrack, tmplam)
		}

		alam2, f2 = alam, f
		alam = math.Max(tmplam, lo*alam) // λₖ₊₁ ≥ λₖ/10
	}

	s.restore(x0, params)
	s.branch(s.maxIter, BranchExhaust, zero)
	s.exit(zero, fold)
	return zero, nil
}

// restore reinstalls the entry parameters after a fruitless search.
func (s *Search) restore(x0, params []float64) {
	dcopy(len(params), x0, params)
	s.target.SetParams(params)
}

func (s *Search) iteration(iter int, alam, f float64) {
	if s.trace != nil {
		s.trace.Iteration(iter, alam, f)
	}
}

func (s *Search) branch(iter int, kind BranchKind, nextAlam float64) {
	if s.trace != nil {
		s.trace.Branch(iter, kind, nextAlam)
	}
}

func (s *Search) exit(step, score float64) {
	if s.trace != nil {
		s.trace.ExitSearch(step, score)
	}
}

// moved reports whether any coordinate of x differs from x0 beyond
// machine tolerance.
func moved(x0, x []float64) bool {
	for i := range x {
		if math.Abs(x[i]-x0[i]) > eps*math.Max(math.Abs(x0[i]), one) {
			return true
		}
	}
	return false
}
