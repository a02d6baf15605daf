package expreplay

import (
	"fmt"

	"sfneuman.com/gorl/timestep"
)

// Rollout is an append-only, fixed-length buffer used by on-policy
// methods. The external control loop appends exactly Cap transitions
// between drains; Get returns the entire contents as one batch in
// insertion order and resets the write pointer. Appending beyond
// capacity without an intervening drain fails loudly rather than
// silently wrapping.
type Rollout struct {
	stateCache     []float64
	actionCache    []float64
	rewardCache    []float64
	doneCache      []float64
	logProbCache   []float64
	nextStateCache []float64

	pos int

	capacity    int
	featureSize int
	actionSize  int
}

// NewRollout returns a new rollout buffer storing exactly capacity
// transitions per update cycle
func NewRollout(capacity, featureSize, actionSize int) (*Rollout, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("newrollout: capacity must be >= 1, "+
			"got %v", capacity)
	}
	if featureSize < 1 || actionSize < 1 {
		return nil, fmt.Errorf("newrollout: feature size (%v) and action "+
			"size (%v) must be >= 1", featureSize, actionSize)
	}

	return &Rollout{
		stateCache:     make([]float64, capacity*featureSize),
		actionCache:    make([]float64, capacity*actionSize),
		rewardCache:    make([]float64, capacity),
		doneCache:      make([]float64, capacity),
		logProbCache:   make([]float64, capacity),
		nextStateCache: make([]float64, capacity*featureSize),

		capacity:    capacity,
		featureSize: featureSize,
		actionSize:  actionSize,
	}, nil
}

// Append writes a transition at the current write pointer. Appending
// more than Cap times without an intervening Get is an error
// satisfying IsBufferOverflow.
func (r *Rollout) Append(t timestep.Transition) error {
	if r.pos >= r.capacity {
		return &BufferError{
			Op:  "append",
			Err: errBufferOverflow,
		}
	}
	if t.State.Len() != r.featureSize || t.NextState.Len() != r.featureSize {
		return fmt.Errorf("append: invalid feature size \n\twant(%v)"+
			"\n\thave(%v)", r.featureSize, t.State.Len())
	}
	if t.Action.Len() != r.actionSize {
		return fmt.Errorf("append: invalid action size \n\twant(%v)"+
			"\n\thave(%v)", r.actionSize, t.Action.Len())
	}

	stateInd := r.pos * r.featureSize
	for i := 0; i < r.featureSize; i++ {
		r.stateCache[stateInd+i] = t.State.AtVec(i)
		r.nextStateCache[stateInd+i] = t.NextState.AtVec(i)
	}

	actionInd := r.pos * r.actionSize
	for i := 0; i < r.actionSize; i++ {
		r.actionCache[actionInd+i] = t.Action.AtVec(i)
	}

	r.rewardCache[r.pos] = t.Reward
	r.doneCache[r.pos] = t.Done
	r.logProbCache[r.pos] = t.LogProb

	r.pos++
	return nil
}

// Get returns the entire contents of the buffer as one batch in
// insertion order, then resets the write pointer. Draining an empty
// buffer is an error satisfying IsEmptyBuffer.
func (r *Rollout) Get() (*Batch, error) {
	if r.pos == 0 {
		return nil, &BufferError{
			Op:  "get",
			Err: errEmptyBuffer,
		}
	}

	size := r.pos
	batch := newBatch(size, r.featureSize, r.actionSize)
	copy(batch.States, r.stateCache[:size*r.featureSize])
	copy(batch.Actions, r.actionCache[:size*r.actionSize])
	copy(batch.Rewards, r.rewardCache[:size])
	copy(batch.Dones, r.doneCache[:size])
	copy(batch.NextStates, r.nextStateCache[:size*r.featureSize])

	batch.LogProbs = make([]float64, size)
	copy(batch.LogProbs, r.logProbCache[:size])

	r.pos = 0
	return batch, nil
}

// Len returns the number of transitions appended since the last drain
func (r *Rollout) Len() int {
	return r.pos
}

// Cap returns the fixed rollout length
func (r *Rollout) Cap() int {
	return r.capacity
}

// String returns the string representation of the buffer
func (r *Rollout) String() string {
	return fmt.Sprintf("Rollout | capacity: %v | stored: %v", r.capacity,
		r.pos)
}
