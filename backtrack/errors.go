// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backtrack

import "errors"

var (
	// ErrNotDescent the directional derivative at the starting point is zero or positive,
	// so no step along the direction can decrease the score.
	ErrNotDescent = errors.New("directional derivative is not negative")

	// ErrDegenerateStep two consecutive trial steps collapsed to the same value
	// during cubic interpolation.
	ErrDegenerateStep = errors.New("trial steps collapsed during interpolation")

	// ErrScoreIncreased the sufficient-decrease test accepted a step whose score
	// is worse than the starting score. The sign conventions of the target,
	// the step rule and the search disagree.
	ErrScoreIncreased = errors.New("accepted step increased the score")
)
