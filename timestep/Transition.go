package timestep

import "gonum.org/v1/gonum/mat"

// Transition packages together a single transition of the
// agent-environment interaction: taking Action in State produced
// Reward and NextState.
//
// Done is a mask, not the raw episode-end signal. A forced episode
// truncation at the environment's step limit keeps Done == 0 so that
// learners bootstrap past timeouts, while a true terminal state sets
// Done == 1. LogProb is the log probability of Action under the
// behaviour policy and is only meaningful for on-policy transitions.
type Transition struct {
	State     mat.Vector
	Action    mat.Vector
	Reward    float64
	Done      float64
	LogProb   float64
	NextState mat.Vector
}

// NewTransition packages a transition between two timesteps
func NewTransition(step TimeStep, action mat.Vector, done float64,
	nextStep TimeStep) Transition {
	return Transition{
		State:     step.Observation,
		Action:    action,
		Reward:    nextStep.Reward,
		Done:      done,
		NextState: nextStep.Observation,
	}
}
