package agent

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"sfneuman.com/gorl/environment"
	"sfneuman.com/gorl/expreplay"
	"sfneuman.com/gorl/spec"
	"sfneuman.com/gorl/timestep"
)

// OnPolicyConfig configures an on-policy actor-critic algorithm. The
// rollout buffer's length equals BufferSize, which is also the update
// interval: an update is due exactly when the buffer is full.
type OnPolicyConfig struct {
	NumSteps   int
	BufferSize int
	BatchSize  int
	Gamma      float64
}

// Validate returns an error describing whether or not the
// configuration is valid
func (c OnPolicyConfig) Validate() error {
	const op = "validate"

	if c.NumSteps < 1 {
		return configErrorf(op, "numSteps must be >= 1, got %v", c.NumSteps)
	}
	if c.BufferSize < 1 {
		return configErrorf(op, "bufferSize must be >= 1, got %v",
			c.BufferSize)
	}
	if c.BatchSize < 1 || c.BatchSize > c.BufferSize {
		return configErrorf(op, "batchSize must be in [1, bufferSize], "+
			"got %v", c.BatchSize)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return configErrorf(op, "gamma must be in [0, 1], got %v", c.Gamma)
	}
	return nil
}

// OnPolicyActorCritic implements the control state machine for
// on-policy actor-critic algorithms. Transitions are collected into a
// fixed-length rollout buffer together with the behaviour policy's
// log probabilities; once the buffer is full it is drained entirely
// into a single learning update.
type OnPolicyActorCritic struct {
	base
	config OnPolicyConfig

	buffer *expreplay.Rollout

	learner      Learner
	explore      ExploreLogProbFunc
	selectAction SelectActionFunc
}

// NewOnPolicyActorCritic returns a new on-policy actor-critic state
// machine. The explore strategy returns both the sampled action and
// its log probability; selectAction is the deterministic evaluation
// policy.
func NewOnPolicyActorCritic(obsSpec, actionSpec spec.Environment,
	c OnPolicyConfig, selectAction SelectActionFunc,
	explore ExploreLogProbFunc, learner Learner,
	seed uint64) (*OnPolicyActorCritic, error) {
	const op = "newonpolicyactorcritic"

	if err := c.Validate(); err != nil {
		return nil, err
	}
	if selectAction == nil || explore == nil {
		return nil, configErrorf(op, "selectAction and explore strategies "+
			"are required")
	}
	if learner == nil {
		return nil, configErrorf(op, "learner is required")
	}

	b, err := newBase(c.NumSteps, c.Gamma, seed)
	if err != nil {
		return nil, err
	}

	featureSize := obsSpec.Shape.Len()
	actionSize := 1
	if actionSpec.Cardinality == spec.Continuous {
		actionSize = actionSpec.Shape.Len()
	}

	buffer, err := expreplay.NewRollout(c.BufferSize, featureSize,
		actionSize)
	if err != nil {
		return nil, configErrorf(op, "%v", err)
	}

	return &OnPolicyActorCritic{
		base:         b,
		config:       c,
		buffer:       buffer,
		learner:      learner,
		explore:      explore,
		selectAction: selectAction,
	}, nil
}

// SelectAction selects an evaluation action
func (o *OnPolicyActorCritic) SelectAction(state mat.Vector) mat.Vector {
	return o.selectAction(o.rng, state)
}

// Explore selects a training action, discarding the log probability
func (o *OnPolicyActorCritic) Explore(state mat.Vector) mat.Vector {
	action, _ := o.explore(o.rng, state)
	return action
}

// Step advances the agent-environment interaction by one tick,
// recording the transition and its log probability in the rollout
// buffer. On episode end the environment is reset and the first
// timestep of the new episode returned.
func (o *OnPolicyActorCritic) Step(env environment.Environment,
	step timestep.TimeStep) (timestep.TimeStep, error) {
	o.envStep++

	action, logProb := o.explore(o.rng, step.Observation)

	next, err := env.Step(action)
	if err != nil {
		return timestep.TimeStep{}, fmt.Errorf("step: %v", err)
	}

	transition := timestep.NewTransition(step, action, doneMask(next, env),
		next)
	transition.LogProb = logProb
	if err := o.buffer.Append(transition); err != nil {
		return timestep.TimeStep{}, fmt.Errorf("step: %v", err)
	}

	if next.Last() {
		return env.Reset()
	}
	return next, nil
}

// IsUpdate returns whether a learning update is due: the rollout
// buffer holds exactly BufferSize fresh transitions
func (o *OnPolicyActorCritic) IsUpdate() bool {
	return o.envStep > 0 && o.envStep%o.config.BufferSize == 0
}

// Update drains the rollout buffer into one full-batch gradient step
func (o *OnPolicyActorCritic) Update() error {
	batch, err := o.buffer.Get()
	if err != nil {
		return fmt.Errorf("update: %v", err)
	}

	if _, err := o.learner.GradientStep(batch); err != nil {
		return fmt.Errorf("update: could not perform gradient step: %v", err)
	}
	o.learningStep++
	return nil
}

// Buffer returns the rollout buffer owned by the algorithm
func (o *OnPolicyActorCritic) Buffer() *expreplay.Rollout {
	return o.buffer
}

func (o *OnPolicyActorCritic) String() string {
	return fmt.Sprintf("OnPolicyActorCritic | rollout: %v",
		o.config.BufferSize)
}
