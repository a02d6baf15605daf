package deepq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfneuman.com/gorl/agent"
	"sfneuman.com/gorl/environment/classiccontrol/cartpole"
	"sfneuman.com/gorl/initwfn"
	"sfneuman.com/gorl/network"
	"sfneuman.com/gorl/solver"
)

func validConfig(t *testing.T) Config {
	t.Helper()

	init, err := initwfn.NewGlorotU(1.0)
	require.NoError(t, err)
	adam, err := solver.NewDefaultAdam(0.001, 8)
	require.NoError(t, err)

	return Config{
		QLearningConfig: agent.QLearningConfig{
			OffPolicyConfig: agent.OffPolicyConfig{
				NumSteps:             1000,
				BufferSize:           100,
				BatchSize:            8,
				NStep:                1,
				Gamma:                0.99,
				StartSteps:           10,
				UpdateInterval:       1,
				UpdateIntervalTarget: 10,
			},
			Eps:     0.1,
			EpsEval: 0.0,
		},
		PolicyLayers: []int{16},
		Biases:       []bool{true},
		Activations:  []*network.Activation{network.TanH()},
		InitWFn:      init,
		Solver:       adam,
	}
}

func TestNewBuildsAgent(t *testing.T) {
	env, _, err := cartpole.New(cartpole.NewStarter(42), 100)
	require.NoError(t, err)

	q, err := New(env, validConfig(t), 42)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, 0, q.EnvStep())
}

func TestNewLearnsOnCartpole(t *testing.T) {
	env, step, err := cartpole.New(cartpole.NewStarter(42), 100)
	require.NoError(t, err)

	config := validConfig(t)
	q, err := New(env, config, 42)
	require.NoError(t, err)

	// Run past the warm-up so several gradient steps execute
	for i := 0; i < 30; i++ {
		step, err = q.Step(env, step)
		require.NoError(t, err)
		if q.IsUpdate() {
			require.NoError(t, q.Update())
		}
	}

	assert.Equal(t, 30, q.EnvStep())
	assert.Greater(t, q.LearningStep(), 0)
}

func TestConfigValidation(t *testing.T) {
	env, _, err := cartpole.New(cartpole.NewStarter(42), 100)
	require.NoError(t, err)

	c := validConfig(t)
	c.Biases = []bool{true, false}
	_, err = New(env, c, 42)
	assert.Error(t, err)

	c = validConfig(t)
	c.InitWFn = nil
	_, err = New(env, c, 42)
	assert.Error(t, err)

	c = validConfig(t)
	c.Solver = nil
	_, err = New(env, c, 42)
	assert.Error(t, err)
}
