// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	"sfneuman.com/gorl/spec"
	"sfneuman.com/gorl/timestep"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() mat.Vector
}

// Environment implements a simulated environment that an agent
// interacts with.
//
// Environments are episodic. Reset begins a new episode and returns
// its first timestep. Step advances the environment by one tick and
// returns the resulting timestep; the returned TimeStep is Last when
// the episode has ended, either because a terminal state was reached
// or because the episode hit MaxEpisodeSteps. Agents that need to
// distinguish the two cases compare the step number against
// MaxEpisodeSteps.
type Environment interface {
	Reset() (timestep.TimeStep, error)
	Step(action mat.Vector) (timestep.TimeStep, error)

	// MaxEpisodeSteps returns the step count at which episodes are
	// forcibly truncated
	MaxEpisodeSteps() int

	ObservationSpec() spec.Environment
	ActionSpec() spec.Environment
}
