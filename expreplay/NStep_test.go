package expreplay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNStepFoldsDiscountedReturn(t *testing.T) {
	gamma := 0.9
	ns, err := NewNStep(3, gamma)
	require.NoError(t, err)

	t1, t2, t3 := transitionAt(1), transitionAt(2), transitionAt(3)
	t1.Reward, t2.Reward, t3.Reward = 1, 1, 1

	// The window is still filling
	assert.Empty(t, ns.Feed(t1, false))
	assert.Empty(t, ns.Feed(t2, false))

	folds := ns.Feed(t3, false)
	require.Len(t, folds, 1)

	fold := folds[0]
	assert.InDelta(t, 1+gamma+gamma*gamma, fold.Reward, 1e-12)
	assert.Equal(t, t1.State, fold.State)
	assert.Equal(t, t1.Action, fold.Action)
	assert.Equal(t, t3.NextState, fold.NextState)
	assert.Equal(t, 0.0, fold.Done)

	// The oldest transition was dropped, so the next fold starts at t2
	t4 := transitionAt(4)
	t4.Reward = 1
	folds = ns.Feed(t4, false)
	require.Len(t, folds, 1)
	assert.Equal(t, t2.State, folds[0].State)
}

func TestNStepTerminalFlushesSuffixes(t *testing.T) {
	gamma := 0.9
	ns, err := NewNStep(3, gamma)
	require.NoError(t, err)

	t1, t2, t3 := transitionAt(1), transitionAt(2), transitionAt(3)
	t1.Reward, t2.Reward, t3.Reward = 1, 1, 1
	t3.Done = 1

	ns.Feed(t1, false)
	ns.Feed(t2, false)
	folds := ns.Feed(t3, true)
	require.Len(t, folds, 3)

	// Shrinking suffix folds, each ending at the terminal state
	assert.InDelta(t, 1+gamma+gamma*gamma, folds[0].Reward, 1e-12)
	assert.InDelta(t, 1+gamma, folds[1].Reward, 1e-12)
	assert.InDelta(t, 1.0, folds[2].Reward, 1e-12)

	for _, fold := range folds {
		assert.Equal(t, t3.NextState, fold.NextState)
		assert.Equal(t, 1.0, fold.Done)
	}
	assert.Equal(t, t1.State, folds[0].State)
	assert.Equal(t, t2.State, folds[1].State)
	assert.Equal(t, t3.State, folds[2].State)

	assert.Equal(t, 0, ns.Len())
}

func TestNStepTruncationFlushesButBootstraps(t *testing.T) {
	ns, err := NewNStep(3, 0.9)
	require.NoError(t, err)

	// A forced truncation ends the episode without a terminal mask
	t1, t2 := transitionAt(1), transitionAt(2)
	ns.Feed(t1, false)
	folds := ns.Feed(t2, true)
	require.Len(t, folds, 2)

	for _, fold := range folds {
		assert.Equal(t, 0.0, fold.Done)
	}
	assert.Equal(t, 0, ns.Len())
}

func TestNewNStepValidatesArguments(t *testing.T) {
	_, err := NewNStep(0, 0.9)
	assert.Error(t, err)

	_, err = NewNStep(3, 1.5)
	assert.Error(t, err)
}
