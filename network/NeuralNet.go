package network

import (
	G "gorgonia.org/gorgonia"
)

// NeuralNet is a function approximator living on a gorgonia
// computational graph. Implementations are constructed for a fixed
// batch size; SetInput fills the input node before the graph's virtual
// machine runs, and Output holds the last computed prediction
// afterwards.
type NeuralNet interface {
	Graph() *G.ExprGraph
	BatchSize() int
	Features() int
	Outputs() int

	SetInput([]float64) error

	// Set copies another network's weights; Polyak blends them in with
	// an exponential moving average of rate tau
	Set(NeuralNet) error
	Polyak(NeuralNet, float64) error

	Learnables() G.Nodes
	Model() []G.ValueGrad

	Output() G.Value
	Prediction() *G.Node
}
