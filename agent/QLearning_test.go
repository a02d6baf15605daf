package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func validQLearningConfig() QLearningConfig {
	return QLearningConfig{
		OffPolicyConfig: validOffPolicyConfig(),
		Eps:             0.1,
		EpsEval:         0.0,
	}
}

func newTestQLearning(t *testing.T, c QLearningConfig,
	forward ForwardFunc) *QLearning {
	t.Helper()
	env := &fakeEnv{episodeLen: 1000, maxSteps: 1000}
	q, err := NewQLearning(env.ObservationSpec(), env.ActionSpec(), c,
		forward, &fakeLearner{}, &fakeSyncer{}, 17)
	require.NoError(t, err)
	return q
}

func TestQLearningGreedyWhenEpsZero(t *testing.T) {
	c := validQLearningConfig()
	c.Eps = 0.0
	q := newTestQLearning(t, c, func(state mat.Vector) int { return 1 })

	state := mat.NewVecDense(2, nil)
	for i := 0; i < 50; i++ {
		action := q.Explore(state)
		assert.Equal(t, 1.0, action.AtVec(0))
	}
}

func TestQLearningUniformWhenEpsOne(t *testing.T) {
	c := validQLearningConfig()
	c.Eps = 1.0
	q := newTestQLearning(t, c, func(state mat.Vector) int { return 1 })

	state := mat.NewVecDense(2, nil)
	seen := map[float64]int{}
	for i := 0; i < 200; i++ {
		seen[q.Explore(state).AtVec(0)]++
	}

	// Both actions of the two-action space appear under full
	// exploration
	assert.Contains(t, seen, 0.0)
	assert.Contains(t, seen, 1.0)
}

func TestQLearningSeparateEvalEps(t *testing.T) {
	c := validQLearningConfig()
	c.Eps = 1.0
	c.EpsEval = 0.0
	q := newTestQLearning(t, c, func(state mat.Vector) int { return 0 })

	state := mat.NewVecDense(2, nil)
	for i := 0; i < 50; i++ {
		action := q.SelectAction(state)
		assert.Equal(t, 0.0, action.AtVec(0))
	}
}

func TestNewQLearningRequiresDiscreteActions(t *testing.T) {
	env := &continuousEnv{fakeEnv{episodeLen: 10, maxSteps: 10}}
	_, err := NewQLearning(env.ObservationSpec(), env.ActionSpec(),
		validQLearningConfig(), func(state mat.Vector) int { return 0 },
		&fakeLearner{}, &fakeSyncer{}, 17)
	assert.True(t, IsConfigError(err))
}

func TestNewQLearningRequiresForward(t *testing.T) {
	env := &fakeEnv{episodeLen: 10, maxSteps: 10}
	_, err := NewQLearning(env.ObservationSpec(), env.ActionSpec(),
		validQLearningConfig(), nil, &fakeLearner{}, &fakeSyncer{}, 17)
	assert.True(t, IsConfigError(err))
}

func TestQLearningConfigValidatesEps(t *testing.T) {
	c := validQLearningConfig()
	c.Eps = 1.5
	assert.True(t, IsConfigError(c.Validate()))

	c = validQLearningConfig()
	c.EpsEval = -0.5
	assert.True(t, IsConfigError(c.Validate()))
}
