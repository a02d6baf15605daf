package agent

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"sfneuman.com/gorl/spec"
)

// QLearningConfig configures a discrete Q-learning algorithm. Eps is
// the ε-greedy exploration rate during training and EpsEval the
// separate rate used at evaluation.
type QLearningConfig struct {
	OffPolicyConfig
	Eps     float64
	EpsEval float64
}

// Validate returns an error describing whether or not the
// configuration is valid
func (c QLearningConfig) Validate() error {
	const op = "validate"

	if err := c.OffPolicyConfig.Validate(); err != nil {
		return err
	}
	if c.Eps < 0 || c.Eps > 1 {
		return configErrorf(op, "eps must be in [0, 1], got %v", c.Eps)
	}
	if c.EpsEval < 0 || c.EpsEval > 1 {
		return configErrorf(op, "epsEval must be in [0, 1], got %v",
			c.EpsEval)
	}
	return nil
}

// QLearning implements the control state machine for discrete
// Q-learning algorithms: an OffPolicy machine whose behaviour policy
// is ε-greedy over an injected forward pass, with separate ε for
// training and evaluation.
type QLearning struct {
	*OffPolicy

	eps        float64
	epsEval    float64
	forward    ForwardFunc
	numActions int
}

// NewQLearning returns a new Q-learning state machine over a discrete
// action space. The forward parameter computes the greedy action
// index and is supplied by the caller's network.
func NewQLearning(obsSpec, actionSpec spec.Environment, c QLearningConfig,
	forward ForwardFunc, learner Learner, syncer TargetSyncer,
	seed uint64) (*QLearning, error) {
	const op = "newqlearning"

	if actionSpec.Cardinality != spec.Discrete {
		return nil, configErrorf(op, "discrete action space required, "+
			"got %v", actionSpec.Cardinality)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if forward == nil {
		return nil, configErrorf(op, "forward strategy is required")
	}

	q := &QLearning{
		eps:        c.Eps,
		epsEval:    c.EpsEval,
		forward:    forward,
		numActions: actionSpec.NumActions(),
	}

	offPolicy, err := NewOffPolicy(obsSpec, actionSpec, c.OffPolicyConfig,
		q.evalPolicy, q.behaviourPolicy, learner, syncer, seed)
	if err != nil {
		return nil, err
	}
	q.OffPolicy = offPolicy

	return q, nil
}

// behaviourPolicy is the ε-greedy training policy
func (q *QLearning) behaviourPolicy(rng *rand.Rand,
	state mat.Vector) mat.Vector {
	return q.eGreedy(rng, state, q.eps)
}

// evalPolicy is the ε-greedy evaluation policy
func (q *QLearning) evalPolicy(rng *rand.Rand, state mat.Vector) mat.Vector {
	return q.eGreedy(rng, state, q.epsEval)
}

// eGreedy takes the greedy action from the injected forward pass with
// probability 1-eps and a uniform random action otherwise
func (q *QLearning) eGreedy(rng *rand.Rand, state mat.Vector,
	eps float64) mat.Vector {
	var action int
	if rng.Float64() < eps {
		action = rng.Intn(q.numActions)
	} else {
		action = q.forward(state)
	}
	return mat.NewVecDense(1, []float64{float64(action)})
}

func (q *QLearning) String() string {
	return fmt.Sprintf("QLearning | actions: %v | ε: %v | ε-eval: %v",
		q.numActions, q.eps, q.epsEval)
}
