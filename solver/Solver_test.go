package solver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolverJSONRoundTrip(t *testing.T) {
	adam, err := NewAdam(0.001, 1e-8, 0.9, 0.999, 32)
	require.NoError(t, err)

	data, err := json.Marshal(adam)
	require.NoError(t, err)

	var decoded Solver
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, Adam, decoded.Type)
	assert.Equal(t, AdamConfig{
		StepSize: 0.001,
		Epsilon:  1e-8,
		Beta1:    0.9,
		Beta2:    0.999,
		Batch:    32,
	}, decoded.Config)
	assert.NotNil(t, decoded.Solver)
}

func TestVanillaJSONRoundTrip(t *testing.T) {
	vanilla, err := NewVanilla(0.1, 16, 0.5)
	require.NoError(t, err)

	data, err := json.Marshal(vanilla)
	require.NoError(t, err)

	var decoded Solver
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, Vanilla, decoded.Type)
	assert.Equal(t, VanillaConfig{StepSize: 0.1, Batch: 16, Clip: 0.5},
		decoded.Config)
}
