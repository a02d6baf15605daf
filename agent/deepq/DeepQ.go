// Package deepq implements the deep Q-learning algorithm. This
// algorithm is conceptually similar to DQN, but uses the MSE loss.
package deepq

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"sfneuman.com/gorl/agent"
	"sfneuman.com/gorl/environment"
	"sfneuman.com/gorl/expreplay"
	"sfneuman.com/gorl/network"
	"sfneuman.com/gorl/solver"
	"sfneuman.com/gorl/spec"
	"sfneuman.com/gorl/utils/floatutils"
)

// deepQ holds the value networks of a deep Q-learning agent and wires
// them into the off-policy control loop as its gradient-update and
// target-sync primitives.
//
// Three networks share one architecture: policyNet (batch size 1)
// selects actions, trainNet learns the weights on sampled batches, and
// targetNet provides the update target
//
//	r + γⁿ * max[Q(s', a')]
//
// for each batch row. policyNet tracks trainNet after every gradient
// step; targetNet is synchronized on the schedule the control loop
// chooses.
type deepQ struct {
	policyNet network.NeuralNet
	policyVM  G.VM

	trainNet   network.NeuralNet
	trainNetVM G.VM
	solver     *solver.Solver

	targetNet   network.NeuralNet
	targetNetVM G.VM

	// Input nodes of the trainNet loss graph
	nextStateActionValues *G.Node
	rewards               *G.Node
	discounts             *G.Node
	selectedActions       *G.Node // One-hot actions taken at the states
	weights               *G.Node // Importance sampling corrections

	// tdErrVal reads the per-sample TD errors out of the last run of
	// the trainNet graph
	tdErrVal G.Value

	numActions int
	batchSize  int
	discount   float64 // γⁿ applied across each stored transition
}

// New creates and returns a new deep Q-learning agent interacting with
// the argument environment
func New(env environment.Environment, config Config,
	seed uint64) (*agent.QLearning, error) {
	// Ensure environment has discrete actions
	if env.ActionSpec().Cardinality != spec.Discrete {
		return nil, fmt.Errorf("deepq: cannot use non-discrete actions")
	}

	// Ensure actions are one-dimensional and enumerated from 0
	if env.ActionSpec().LowerBound.Len() > 1 {
		return nil, fmt.Errorf("deepq: actions must be 1-dimensional")
	}
	if env.ActionSpec().LowerBound.AtVec(0) != 0.0 {
		return nil, fmt.Errorf("deepq: actions must be enumerated " +
			"starting from 0")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	numFeatures := env.ObservationSpec().Shape.Len()
	numActions := env.ActionSpec().NumActions()
	batchSize := config.BatchSize
	init := config.InitWFn.InitWFn()

	d := &deepQ{
		solver:     config.Solver,
		numActions: numActions,
		batchSize:  batchSize,
		discount:   math.Pow(config.Gamma, float64(config.NStep)),
	}

	// Network for selecting single actions
	gPolicy := G.NewGraph()
	policyNet, err := network.NewMLP(numFeatures, 1, numActions, gPolicy,
		config.PolicyLayers, config.Biases, init, config.Activations)
	if err != nil {
		return nil, fmt.Errorf("deepq: could not create policy net: %v", err)
	}
	d.policyNet = policyNet
	d.policyVM = G.NewTapeMachine(gPolicy)

	// Network which learns the weights
	gTrain := G.NewGraph()
	trainNet, err := network.NewMLP(numFeatures, batchSize, numActions,
		gTrain, config.PolicyLayers, config.Biases, init, config.Activations)
	if err != nil {
		return nil, fmt.Errorf("deepq: could not create train net: %v", err)
	}
	d.trainNet = trainNet

	// Network which provides the update target
	gTarget := G.NewGraph()
	targetNet, err := network.NewMLP(numFeatures, batchSize, numActions,
		gTarget, config.PolicyLayers, config.Biases, init, config.Activations)
	if err != nil {
		return nil, fmt.Errorf("deepq: could not create target net: %v", err)
	}
	d.targetNet = targetNet
	d.targetNetVM = G.NewTapeMachine(gTarget)

	// All three networks start from the same weights
	if err := targetNet.Set(trainNet); err != nil {
		return nil, fmt.Errorf("deepq: could not initialize target net: %v",
			err)
	}
	if err := policyNet.Set(trainNet); err != nil {
		return nil, fmt.Errorf("deepq: could not initialize policy net: %v",
			err)
	}

	// Create nodes to compute the update target: r + γⁿ * max[Q(s', a')]
	d.nextStateActionValues = G.NewMatrix(gTrain, tensor.Float64,
		G.WithShape(batchSize, numActions), G.WithName("targetActionVals"))
	d.rewards = G.NewVector(gTrain, tensor.Float64, G.WithShape(batchSize),
		G.WithName("reward"))
	d.discounts = G.NewVector(gTrain, tensor.Float64, G.WithShape(batchSize),
		G.WithName("discount"))

	updateTarget := G.Must(G.Max(d.nextStateActionValues, 1))
	updateTarget = G.Must(G.HadamardProd(updateTarget, d.discounts))
	updateTarget = G.Must(G.Add(updateTarget, d.rewards))

	// Action selected at each state. This is needed to compute the
	// loss using the correct action value since the network outputs N
	// action values, one for each environmental action
	d.selectedActions = G.NewMatrix(gTrain, tensor.Float64,
		G.WithName("actionSelected"), G.WithShape(batchSize, numActions))
	selectedActionsValue := G.Must(G.HadamardProd(trainNet.Prediction(),
		d.selectedActions))
	selectedActionsValue = G.Must(G.Sum(selectedActionsValue, 1))

	// Per-sample TD errors feed back into prioritized replay
	tdErr := G.Must(G.Sub(updateTarget, selectedActionsValue))
	G.Read(tdErr, &d.tdErrVal)

	// Compute the weighted mean squared TD error. The weights are the
	// importance sampling corrections of prioritized replay and are
	// all one under uniform sampling
	d.weights = G.NewVector(gTrain, tensor.Float64, G.WithShape(batchSize),
		G.WithName("isWeights"))
	losses := G.Must(G.Square(tdErr))
	losses = G.Must(G.HadamardProd(losses, d.weights))
	cost := G.Must(G.Mean(losses))

	if _, err := G.Grad(cost, trainNet.Learnables()...); err != nil {
		return nil, fmt.Errorf("deepq: could not compute gradient: %v", err)
	}

	d.trainNetVM = G.NewTapeMachine(
		gTrain,
		G.BindDualValues(trainNet.Learnables()...),
	)

	return agent.NewQLearning(env.ObservationSpec(), env.ActionSpec(),
		config.QLearningConfig, d.forward, d, d, seed)
}

// forward computes the greedy action at the argument state
func (d *deepQ) forward(state mat.Vector) int {
	if err := d.policyNet.SetInput(vecData(state)); err != nil {
		panic(fmt.Sprintf("forward: could not set policy net input: %v", err))
	}
	if err := d.policyVM.RunAll(); err != nil {
		panic(fmt.Sprintf("forward: could not run policy net: %v", err))
	}

	actionValues := d.policyNet.Output().Data().([]float64)
	_, maxIndices := floatutils.MaxSlice(actionValues)

	d.policyVM.Reset()
	return maxIndices[0]
}

// GradientStep performs a single gradient descent step of the training
// network on the argument batch and returns the TD error of each batch
// row. The action selection network tracks the training network after
// every step.
func (d *deepQ) GradientStep(batch *expreplay.Batch) ([]float64, error) {
	if batch.Size != d.batchSize {
		return nil, fmt.Errorf("gradientstep: invalid batch size"+
			"\n\twant(%v)\n\thave(%v)", d.batchSize, batch.Size)
	}

	// Selected actions as one-hot vectors
	selected := make([]float64, d.batchSize*d.numActions)
	for i := 0; i < d.batchSize; i++ {
		action := int(batch.Action(i)[0])
		if action < 0 || action >= d.numActions {
			return nil, fmt.Errorf("gradientstep: action %v out of range "+
				"[0, %v)", action, d.numActions)
		}
		selected[i*d.numActions+action] = 1.0
	}
	selectedTensor := tensor.New(tensor.WithBacking(selected),
		tensor.WithShape(d.batchSize, d.numActions))
	if err := G.Let(d.selectedActions, selectedTensor); err != nil {
		return nil, fmt.Errorf("gradientstep: could not set selected "+
			"actions: %v", err)
	}

	// Predict the action values in the next states
	if err := d.targetNet.SetInput(batch.NextStates); err != nil {
		return nil, fmt.Errorf("gradientstep: could not set target net "+
			"input: %v", err)
	}
	if err := d.targetNetVM.RunAll(); err != nil {
		return nil, fmt.Errorf("gradientstep: could not run target net: %v",
			err)
	}
	if err := G.Let(d.nextStateActionValues, d.targetNet.Output()); err != nil {
		return nil, fmt.Errorf("gradientstep: could not set next "+
			"state-action values: %v", err)
	}
	d.targetNetVM.Reset()

	// Predict the action values in the sampled states
	if err := d.trainNet.SetInput(batch.States); err != nil {
		return nil, fmt.Errorf("gradientstep: could not set train net "+
			"input: %v", err)
	}

	rewardTensor := tensor.New(tensor.WithBacking(batch.Rewards),
		tensor.WithShape(d.batchSize))
	if err := G.Let(d.rewards, rewardTensor); err != nil {
		return nil, fmt.Errorf("gradientstep: could not set rewards: %v", err)
	}

	// A transition ending at a true terminal does not bootstrap
	discounts := make([]float64, d.batchSize)
	for i := range discounts {
		discounts[i] = d.discount * (1.0 - batch.Dones[i])
	}
	discountTensor := tensor.New(tensor.WithBacking(discounts),
		tensor.WithShape(d.batchSize))
	if err := G.Let(d.discounts, discountTensor); err != nil {
		return nil, fmt.Errorf("gradientstep: could not set discounts: %v",
			err)
	}

	weights := batch.Weights
	if weights == nil {
		weights = make([]float64, d.batchSize)
		for i := range weights {
			weights[i] = 1.0
		}
	}
	weightTensor := tensor.New(tensor.WithBacking(weights),
		tensor.WithShape(d.batchSize))
	if err := G.Let(d.weights, weightTensor); err != nil {
		return nil, fmt.Errorf("gradientstep: could not set weights: %v", err)
	}

	// Run the learning step
	if err := d.trainNetVM.RunAll(); err != nil {
		return nil, fmt.Errorf("gradientstep: could not run train net: %v",
			err)
	}
	if err := d.solver.Step(d.trainNet.Model()); err != nil {
		return nil, fmt.Errorf("gradientstep: could not step solver: %v", err)
	}
	d.trainNetVM.Reset()

	// Action selection follows the newly learned weights
	if err := d.policyNet.Set(d.trainNet); err != nil {
		return nil, fmt.Errorf("gradientstep: could not sync policy net: %v",
			err)
	}

	tdErrors := make([]float64, d.batchSize)
	copy(tdErrors, d.tdErrVal.Data().([]float64))
	return tdErrors, nil
}

// Sync synchronizes the target network toward the training network's
// weights: a hard copy when tau is 1 and a polyak average otherwise
func (d *deepQ) Sync(tau float64) error {
	if tau == 1.0 {
		return d.targetNet.Set(d.trainNet)
	}
	return d.targetNet.Polyak(d.trainNet, tau)
}

// vecData returns the backing data of a vector
func vecData(v mat.Vector) []float64 {
	if dense, ok := v.(*mat.VecDense); ok {
		return dense.RawVector().Data
	}
	data := make([]float64, v.Len())
	for i := range data {
		data[i] = v.AtVec(i)
	}
	return data
}
