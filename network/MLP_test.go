package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"
)

func newTestMLP(t *testing.T, batch int) NeuralNet {
	t.Helper()
	net, err := NewMLP(4, batch, 3, G.NewGraph(), []int{8},
		[]bool{true}, G.GlorotU(1.0), []*Activation{ReLU()})
	require.NoError(t, err)
	return net
}

func TestNewMLPShapes(t *testing.T) {
	net := newTestMLP(t, 2)

	assert.Equal(t, 4, net.Features())
	assert.Equal(t, 2, net.BatchSize())
	assert.Equal(t, 3, net.Outputs())

	// One hidden layer with bias plus the final linear layer with bias
	assert.Len(t, net.Learnables(), 4)
	assert.Len(t, net.Model(), 4)

	// Prediction is (batch, outputs)
	assert.Equal(t, []int{2, 3}, []int(net.Prediction().Shape()))
}

func TestNewMLPValidatesArchitecture(t *testing.T) {
	_, err := NewMLP(4, 1, 3, G.NewGraph(), []int{8}, []bool{true, true},
		G.GlorotU(1.0), []*Activation{ReLU()})
	assert.Error(t, err)

	_, err = NewMLP(4, 1, 3, G.NewGraph(), []int{8}, []bool{true},
		G.GlorotU(1.0), []*Activation{ReLU(), TanH()})
	assert.Error(t, err)
}

func TestSetInputPanicsOnWrongSize(t *testing.T) {
	net := newTestMLP(t, 2)

	assert.Panics(t, func() { net.SetInput(make([]float64, 3)) })
	assert.NoError(t, net.SetInput(make([]float64, 8)))
}

func TestSetCopiesWeights(t *testing.T) {
	source := newTestMLP(t, 1)
	dest := newTestMLP(t, 1)

	require.NoError(t, dest.Set(source))

	for i, learnable := range dest.Learnables() {
		assert.Equal(t, source.Learnables()[i].Value().Data(),
			learnable.Value().Data())
	}
}

func TestPolyakBlendsWeights(t *testing.T) {
	source := newTestMLP(t, 1)
	dest := newTestMLP(t, 1)

	before := make([][]float64, len(dest.Learnables()))
	for i, learnable := range dest.Learnables() {
		data := learnable.Value().Data().([]float64)
		before[i] = append([]float64{}, data...)
	}

	tau := 0.25
	require.NoError(t, dest.Polyak(source, tau))

	for i, learnable := range dest.Learnables() {
		after := learnable.Value().Data().([]float64)
		sourceData := source.Learnables()[i].Value().Data().([]float64)
		for j := range after {
			expected := (1-tau)*before[i][j] + tau*sourceData[j]
			assert.InDelta(t, expected, after[j], 1e-12)
		}
	}
}

func TestActivations(t *testing.T) {
	assert.True(t, Identity().IsIdentity())
	assert.False(t, ReLU().IsIdentity())
	assert.Equal(t, "relu", ReLU().String())
	assert.Equal(t, "tanh", TanH().String())
}
