package bms

/*
 This file defines the Rng capability the AST evaluator draws discriminant
 values from. Grounded on katalvlaran-lvlath/tsp/rng.go and
 katalvlaran-lvlath/builder/options.go's WithRand/WithSeed: draw from a
 private *rand.Rand built from an explicit seed, never read the global
 source, and keep the interface to a single operation per spec.md's "no
 inheritance hierarchy" convention.
*/

import "math/rand"

// Rng draws a discriminant value for one #RANDOM or #SWITCH block. max is
// the block's declared upper bound; the result must be in [1, max].
type Rng interface {
	NextInRange(max int64) int64
}

type seededRng struct {
	r *rand.Rand
}

// NewSeededRng returns an Rng backed by a *rand.Rand seeded with seed.
// Each build should own its own instance: seededRng is not safe for
// concurrent use, matching the single-threaded, per-build ownership the
// rest of the pipeline assumes.
func NewSeededRng(seed int64) Rng {
	return &seededRng{r: rand.New(rand.NewSource(seed))}
}

func (s *seededRng) NextInRange(max int64) int64 {
	if max <= 0 {
		return 1
	}
	return s.r.Int63n(max) + 1
}

// sequenceRng replays a fixed sequence of draws, cycling if exhausted.
// It exists for deterministic tests of the evaluator's block-selection
// logic, where a real random draw would make assertions unreliable.
type sequenceRng struct {
	values []int64
	i      int
}

// NewSequenceRng returns an Rng that returns values[0], values[1], ...
// in order, wrapping around once exhausted.
func NewSequenceRng(values ...int64) Rng {
	return &sequenceRng{values: values}
}

func (s *sequenceRng) NextInRange(max int64) int64 {
	if len(s.values) == 0 {
		return 1
	}
	v := s.values[s.i%len(s.values)]
	s.i++
	if v < 1 {
		v = 1
	}
	if max > 0 && v > max {
		v = max
	}
	return v
}
