package agent

import (
	"golang.org/x/exp/rand"

	"sfneuman.com/gorl/environment"
	"sfneuman.com/gorl/timestep"
)

// base holds the state every algorithm family shares: the step
// counters that define the update cadence, the discount factor, and
// an explicitly owned random number generator. There is no
// process-wide seed; every stochastic operation draws from this rng.
type base struct {
	rng *rand.Rand

	gamma    float64
	numSteps int

	envStep      int
	learningStep int
}

func newBase(numSteps int, gamma float64, seed uint64) (base, error) {
	if numSteps < 1 {
		return base{}, configErrorf("newbase", "numSteps must be >= 1, "+
			"got %v", numSteps)
	}
	if gamma < 0 || gamma > 1 {
		return base{}, configErrorf("newbase", "gamma must be in [0, 1], "+
			"got %v", gamma)
	}

	return base{
		rng:      rand.New(rand.NewSource(seed)),
		gamma:    gamma,
		numSteps: numSteps,
	}, nil
}

// EnvStep returns the number of environment steps taken so far
func (b *base) EnvStep() int {
	return b.envStep
}

// LearningStep returns the number of learning updates performed so
// far
func (b *base) LearningStep() int {
	return b.learningStep
}

// doneMask computes the terminal mask for a transition ending at the
// argument timestep. Forced truncation at the environment's step
// limit is not a true terminal: the mask stays 0 so that learners
// bootstrap past timeouts.
func doneMask(next timestep.TimeStep, env environment.Environment) float64 {
	if next.Last() && next.Number != env.MaxEpisodeSteps() {
		return 1.0
	}
	return 0.0
}
