package deepq

import (
	"fmt"

	"sfneuman.com/gorl/agent"
	"sfneuman.com/gorl/initwfn"
	"sfneuman.com/gorl/network"
	"sfneuman.com/gorl/solver"
)

// Config describes a deep Q-learning agent: the Q-learning control
// settings plus the architecture of the value network and the solver
// that adapts its weights.
type Config struct {
	agent.QLearningConfig

	// PolicyLayers, Biases, and Activations describe the hidden layers
	// of the value network. A final linear layer with one output per
	// action is always added.
	PolicyLayers []int
	Biases       []bool
	Activations  []*network.Activation

	InitWFn *initwfn.InitWFn
	Solver  *solver.Solver
}

// Validate returns an error describing whether or not the
// configuration is valid
func (c Config) Validate() error {
	if err := c.QLearningConfig.Validate(); err != nil {
		return err
	}

	if len(c.PolicyLayers) != len(c.Biases) {
		return fmt.Errorf("validate: invalid number of biases\n\twant(%d)"+
			"\n\thave(%d)", len(c.PolicyLayers), len(c.Biases))
	}
	if len(c.PolicyLayers) != len(c.Activations) {
		return fmt.Errorf("validate: invalid number of activations"+
			"\n\twant(%d)\n\thave(%d)", len(c.PolicyLayers),
			len(c.Activations))
	}
	if c.InitWFn == nil {
		return fmt.Errorf("validate: weight initializer is required")
	}
	if c.Solver == nil {
		return fmt.Errorf("validate: solver is required")
	}
	return nil
}
