package expreplay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"sfneuman.com/gorl/timestep"
)

// transitionAt returns a transition whose fields are derived from i so
// that tests can recognize which transition a batch row came from
func transitionAt(i float64) timestep.Transition {
	return timestep.Transition{
		State:     mat.NewVecDense(2, []float64{i, i + 0.5}),
		Action:    mat.NewVecDense(1, []float64{i}),
		Reward:    i,
		Done:      0,
		NextState: mat.NewVecDense(2, []float64{i + 1, i + 1.5}),
	}
}

func TestCircularOverwritesOldest(t *testing.T) {
	buffer, err := NewCircular(5, 2, 1)
	require.NoError(t, err)

	for i := 1; i <= 7; i++ {
		buffer.Append(transitionAt(float64(i)))
	}

	assert.Equal(t, 5, buffer.Len())
	assert.Equal(t, 5, buffer.Cap())

	// The two oldest transitions were overwritten in place: transition
	// k lives at slot (k-1) mod 5
	assert.Equal(t, []float64{6, 7, 3, 4, 5}, buffer.rewardCache)
}

func TestCircularSampleRowsAreStoredTransitions(t *testing.T) {
	buffer, err := NewCircular(10, 2, 1)
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		buffer.Append(transitionAt(float64(i)))
	}

	rng := rand.New(rand.NewSource(42))
	batch, err := buffer.Sample(rng, 64)
	require.NoError(t, err)
	require.Equal(t, 64, batch.Size)

	// Each row must be one of the stored transitions, fields consistent
	// with one another
	for i := 0; i < batch.Size; i++ {
		r := batch.Rewards[i]
		assert.Contains(t, []float64{1, 2, 3}, r)
		assert.Equal(t, []float64{r, r + 0.5}, batch.State(i))
		assert.Equal(t, []float64{r}, batch.Action(i))
		assert.Equal(t, []float64{r + 1, r + 1.5}, batch.NextState(i))
	}
}

func TestCircularSampleEmpty(t *testing.T) {
	buffer, err := NewCircular(5, 2, 1)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	_, err = buffer.Sample(rng, 1)
	assert.True(t, IsEmptyBuffer(err))
}

func TestCircularAppendPanicsOnWrongShape(t *testing.T) {
	buffer, err := NewCircular(5, 2, 1)
	require.NoError(t, err)

	bad := transitionAt(1)
	bad.State = mat.NewVecDense(3, nil)
	assert.Panics(t, func() { buffer.Append(bad) })
}

func TestNewCircularValidatesArguments(t *testing.T) {
	_, err := NewCircular(0, 2, 1)
	assert.Error(t, err)

	_, err = NewCircular(5, 0, 1)
	assert.Error(t, err)

	_, err = NewCircular(5, 2, 0)
	assert.Error(t, err)
}
