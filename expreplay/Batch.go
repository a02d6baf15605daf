package expreplay

// Batch holds a batch of transitions gathered from a buffer. Each
// field is a flat row-major slice: row i of States occupies
// States[i*FeatureSize : (i+1)*FeatureSize], and similarly for
// Actions and NextStates. Rewards and Dones hold one scalar per row.
//
// LogProbs is filled only by rollout buffers. Weights and Indices are
// filled only by prioritized buffers: Weights holds the importance
// sampling correction for each row and Indices the buffer slot each
// row was drawn from, to be passed back to UpdatePriority.
type Batch struct {
	Size        int
	FeatureSize int
	ActionSize  int

	States     []float64
	Actions    []float64
	Rewards    []float64
	Dones      []float64
	NextStates []float64

	LogProbs []float64
	Weights  []float64
	Indices  []int
}

// State returns the state stored at row i of the batch
func (b *Batch) State(i int) []float64 {
	return b.States[i*b.FeatureSize : (i+1)*b.FeatureSize]
}

// Action returns the action stored at row i of the batch
func (b *Batch) Action(i int) []float64 {
	return b.Actions[i*b.ActionSize : (i+1)*b.ActionSize]
}

// NextState returns the next state stored at row i of the batch
func (b *Batch) NextState(i int) []float64 {
	return b.NextStates[i*b.FeatureSize : (i+1)*b.FeatureSize]
}

func newBatch(size, featureSize, actionSize int) *Batch {
	return &Batch{
		Size:        size,
		FeatureSize: featureSize,
		ActionSize:  actionSize,
		States:      make([]float64, size*featureSize),
		Actions:     make([]float64, size*actionSize),
		Rewards:     make([]float64, size),
		Dones:       make([]float64, size),
		NextStates:  make([]float64, size*featureSize),
	}
}
