package agent

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"sfneuman.com/gorl/expreplay"
	"sfneuman.com/gorl/spec"
	"sfneuman.com/gorl/timestep"
)

// fakeEnv is a deterministic environment for exercising the control
// state machines. Episodes end after episodeLen steps; when episodeLen
// equals maxSteps the ending is a forced truncation.
type fakeEnv struct {
	episodeLen int
	maxSteps   int

	steps  int
	resets int
}

func (f *fakeEnv) obs() mat.Vector {
	return mat.NewVecDense(2, []float64{float64(f.steps), 0})
}

func (f *fakeEnv) Reset() (timestep.TimeStep, error) {
	f.steps = 0
	f.resets++
	return timestep.New(timestep.First, 0, f.obs(), 0), nil
}

func (f *fakeEnv) Step(action mat.Vector) (timestep.TimeStep, error) {
	f.steps++
	stepType := timestep.Mid
	if f.steps >= f.episodeLen {
		stepType = timestep.Last
	}
	return timestep.New(stepType, 1.0, f.obs(), f.steps), nil
}

func (f *fakeEnv) MaxEpisodeSteps() int {
	return f.maxSteps
}

func (f *fakeEnv) ObservationSpec() spec.Environment {
	shape := mat.NewVecDense(2, nil)
	low := mat.NewVecDense(2, []float64{-1, -1})
	high := mat.NewVecDense(2, []float64{1, 1})
	return spec.NewEnvironment(shape, spec.Observation, low, high,
		spec.Continuous)
}

func (f *fakeEnv) ActionSpec() spec.Environment {
	shape := mat.NewVecDense(1, nil)
	low := mat.NewVecDense(1, []float64{0})
	high := mat.NewVecDense(1, []float64{1})
	return spec.NewEnvironment(shape, spec.Action, low, high, spec.Discrete)
}

// continuousEnv is a fakeEnv with a continuous action space
type continuousEnv struct {
	fakeEnv
}

func (c *continuousEnv) ActionSpec() spec.Environment {
	shape := mat.NewVecDense(1, nil)
	low := mat.NewVecDense(1, []float64{-1})
	high := mat.NewVecDense(1, []float64{1})
	return spec.NewEnvironment(shape, spec.Action, low, high,
		spec.Continuous)
}

// fakeLearner counts gradient steps and records the batches it was
// given
type fakeLearner struct {
	batches  []*expreplay.Batch
	tdErrors []float64
}

func (f *fakeLearner) GradientStep(
	batch *expreplay.Batch) ([]float64, error) {
	f.batches = append(f.batches, batch)
	if f.tdErrors != nil {
		return f.tdErrors, nil
	}
	return make([]float64, batch.Size), nil
}

// fakeSyncer records the tau of every synchronization request
type fakeSyncer struct {
	taus []float64
}

func (f *fakeSyncer) Sync(tau float64) error {
	f.taus = append(f.taus, tau)
	return nil
}

// fixedAction returns a strategy that always selects the argument
// action index
func fixedAction(action float64) SelectActionFunc {
	return func(rng *rand.Rand, state mat.Vector) mat.Vector {
		return mat.NewVecDense(1, []float64{action})
	}
}

// validOffPolicyConfig returns a configuration accepted by Validate
// that tests tweak as needed
func validOffPolicyConfig() OffPolicyConfig {
	return OffPolicyConfig{
		NumSteps:       100,
		BufferSize:     100,
		BatchSize:      4,
		NStep:          1,
		Gamma:          0.9,
		StartSteps:     0,
		UpdateInterval: 1,
		Tau:            0.05,
	}
}
