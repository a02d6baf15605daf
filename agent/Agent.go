// Package agent defines the algorithm state machines that coordinate
// environment interaction, experience storage, and learning updates.
//
// An Algorithm owns exactly one experience buffer and a private random
// number generator. The external training loop repeatedly calls Step
// to interact with the environment and fill the buffer, and
// IsUpdate/Update to trigger learning on the algorithm's cadence. The
// neural networks behind an algorithm are not part of this package:
// they are injected at construction as policy functions and as the
// Learner and TargetSyncer collaborators, so the state machines never
// inspect parameter representations, only the data-flow contracts
// around them.
package agent

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"sfneuman.com/gorl/environment"
	"sfneuman.com/gorl/expreplay"
	"sfneuman.com/gorl/timestep"
)

// Algorithm is the uniform control contract every algorithm family
// implements and the only type the external training loop depends on.
type Algorithm interface {
	// SelectAction selects an action for evaluation
	SelectAction(state mat.Vector) mat.Vector

	// Explore selects an action for training-time interaction
	Explore(state mat.Vector) mat.Vector

	// Step advances the agent-environment interaction by one tick:
	// it selects an action, steps the environment, records the
	// transition in the owned buffer, and resets the environment when
	// the episode ends. The returned timestep is the input to the
	// next Step call.
	Step(env environment.Environment,
		step timestep.TimeStep) (timestep.TimeStep, error)

	// IsUpdate returns whether the algorithm's update cadence
	// condition currently holds
	IsUpdate() bool

	// Update performs one learning update from the owned buffer
	Update() error

	fmt.Stringer
}

// Learner is the opaque gradient-update primitive behind an
// algorithm. GradientStep updates the online parameters from one
// batch and returns the per-sample TD error magnitudes, which
// prioritized replay feeds back as priorities.
type Learner interface {
	GradientStep(batch *expreplay.Batch) ([]float64, error)
}

// TargetSyncer synchronizes target parameters toward online
// parameters: tau == 1 is a hard copy, tau < 1 an exponential moving
// average target ← (1-tau)·target + tau·online.
type TargetSyncer interface {
	Sync(tau float64) error
}

// SelectActionFunc selects an evaluation action in the argument state
type SelectActionFunc func(rng *rand.Rand, state mat.Vector) mat.Vector

// ExploreFunc selects a training action in the argument state
type ExploreFunc func(rng *rand.Rand, state mat.Vector) mat.Vector

// ExploreLogProbFunc selects a training action and returns its log
// probability under the behaviour policy. On-policy methods store the
// log probability alongside the transition.
type ExploreLogProbFunc func(rng *rand.Rand, state mat.Vector) (mat.Vector,
	float64)

// ForwardFunc computes the greedy action index in the argument state.
// Discrete Q-learning algorithms receive their network's forward pass
// through this type.
type ForwardFunc func(state mat.Vector) int
