// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backtrack

import (
	"fmt"
	"io"
	"os"
)

// BranchKind identifies which branch of the backtracking loop fired.
type BranchKind int

const (
	// BranchAccept the trial step satisfied the sufficient-decrease condition.
	BranchAccept BranchKind = iota
	// BranchUnstable the trial score was infinite or NaN and the step was scaled back.
	BranchUnstable
	// BranchBacktrack the trial step was rejected and a shorter one interpolated.
	BranchBacktrack
	// BranchConverge the trial step fell below the relative tolerance.
	BranchConverge
	// BranchExhaust the iteration budget ran out without an acceptable step.
	BranchExhaust
)

func (k BranchKind) String() string {
	switch k {
	case BranchAccept:
		return "accept"
	case BranchUnstable:
		return "unstable"
	case BranchBacktrack:
		return "backtrack"
	case BranchConverge:
		return "converge"
	case BranchExhaust:
		return "exhaust"
	}
	return "unknown"
}

// Tracer observes the search at well-defined points.
// Implementations must not mutate the search state.
// A nil Tracer disables observation entirely.
type Tracer interface {
	// EnterSearch is invoked once before the first trial,
	// after the slope and the minimum meaningful step are known.
	EnterSearch(fold, slope, alamin float64)
	// Iteration is invoked after each trial score evaluation.
	Iteration(iter int, alam, f float64)
	// Branch is invoked when the loop decides what to do with a trial.
	Branch(iter int, kind BranchKind, nextAlam float64)
	// ExitSearch is invoked once with the returned step and the final score.
	ExitSearch(step, score float64)
}

// LogLevel controls the frequency and type of logger output.
type LogLevel int

const (
	// LogNoop no output is generated (level < 0)
	LogNoop LogLevel = -1
	// LogExit print only one line when the search returns
	LogExit LogLevel = 0
	// LogStep print also the score after every trial step
	LogStep LogLevel = 1
	// LogTrace print details of every branch taken
	LogTrace LogLevel = 99
)

// Logger is a Tracer writing plain text to an io.Writer.
// Note the writer must be thread-safe if searches run on multiple goroutines.
type Logger struct {
	Level LogLevel
	Msg   io.Writer
}

func (l *Logger) enable(level LogLevel) bool {
	return l.Level >= level
}

func (l *Logger) log(format string, a ...any) {
	w := l.Msg
	if w == nil {
		w = os.Stdout
	}
	if len(a) > 0 {
		_, _ = fmt.Fprintf(w, format, a...)
	} else {
		_, _ = fmt.Fprint(w, format)
	}
}

func (l *Logger) EnterSearch(fold, slope, alamin float64) {
	if l.enable(LogTrace) {
		l.log("enter backtrack: f = %g, slope = %g, alamin = %g\n", fold, slope, alamin)
	}
}

func (l *Logger) Iteration(iter int, alam, f float64) {
	if l.enable(LogStep) {
		l.log("iter %d: alam = %g, f = %g\n", iter, alam, f)
	}
}

func (l *Logger) Branch(iter int, kind BranchKind, nextAlam float64) {
	if l.enable(LogTrace) {
		l.log("iter %d: %v, next alam = %g\n", iter, kind, nextAlam)
	}
}

func (l *Logger) ExitSearch(step, score float64) {
	if l.enable(LogExit) {
		l.log("exit backtrack: step = %g, f = %g\n", step, score)
	}
}
