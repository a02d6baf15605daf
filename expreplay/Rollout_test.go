package expreplay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRolloutPreservesInsertionOrder(t *testing.T) {
	buffer, err := NewRollout(4, 2, 1)
	require.NoError(t, err)

	for i := 1; i <= 4; i++ {
		tr := transitionAt(float64(i))
		tr.LogProb = float64(i) / 10
		require.NoError(t, buffer.Append(tr))
	}

	batch, err := buffer.Get()
	require.NoError(t, err)
	require.Equal(t, 4, batch.Size)

	for i := 0; i < 4; i++ {
		expected := float64(i + 1)
		assert.Equal(t, expected, batch.Rewards[i])
		assert.Equal(t, []float64{expected, expected + 0.5}, batch.State(i))
		assert.Equal(t, expected/10, batch.LogProbs[i])
	}
}

func TestRolloutOverflow(t *testing.T) {
	buffer, err := NewRollout(2, 2, 1)
	require.NoError(t, err)

	require.NoError(t, buffer.Append(transitionAt(1)))
	require.NoError(t, buffer.Append(transitionAt(2)))

	err = buffer.Append(transitionAt(3))
	assert.True(t, IsBufferOverflow(err))
}

func TestRolloutGetResetsWritePointer(t *testing.T) {
	buffer, err := NewRollout(2, 2, 1)
	require.NoError(t, err)

	require.NoError(t, buffer.Append(transitionAt(1)))
	require.NoError(t, buffer.Append(transitionAt(2)))

	_, err = buffer.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, buffer.Len())

	// The buffer accepts a fresh rollout after draining
	require.NoError(t, buffer.Append(transitionAt(3)))
	batch, err := buffer.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, batch.Size)
	assert.Equal(t, 3.0, batch.Rewards[0])
}

func TestRolloutGetEmpty(t *testing.T) {
	buffer, err := NewRollout(2, 2, 1)
	require.NoError(t, err)

	_, err = buffer.Get()
	assert.True(t, IsEmptyBuffer(err))
}

func TestRolloutAppendValidatesShape(t *testing.T) {
	buffer, err := NewRollout(2, 2, 1)
	require.NoError(t, err)

	bad := transitionAt(1)
	bad.Action = transitionAt(1).State
	assert.Error(t, buffer.Append(bad))
}
