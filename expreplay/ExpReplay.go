// Package expreplay implements the experience buffers used by
// reinforcement learning algorithms: circular replay buffers with
// uniform or prioritized sampling, n-step return accumulation, and
// fixed-length rollout buffers for on-policy methods.
//
// Buffers are exclusively owned by a single algorithm instance and
// provide no internal locking. Append and Sample are expected to run
// on the same logical thread in strict call order; callers that step
// environments from multiple goroutines must wrap the buffer with
// their own mutual exclusion boundary.
package expreplay

import (
	"fmt"

	"golang.org/x/exp/rand"

	"sfneuman.com/gorl/timestep"
)

// Buffer is a replay buffer that transitions can be appended to and
// batches sampled from.
type Buffer interface {
	// Append adds a transition to the buffer. Appending to a full
	// buffer overwrites the oldest entry; it is never an error.
	Append(t timestep.Transition)

	// Sample draws a batch of batchSize transitions from the buffer
	// using the argument random number generator
	Sample(rng *rand.Rand, batchSize int) (*Batch, error)

	// Len returns the current number of transitions in the buffer
	Len() int

	// Cap returns the maximum number of transitions the buffer holds
	Cap() int
}

// Circular is a fixed-capacity replay buffer with overwrite-on-wrap
// semantics and uniform random sampling. Storage is allocated once at
// construction as flat row-major slabs, one per transition field, and
// never grows.
type Circular struct {
	stateCache     []float64
	actionCache    []float64
	rewardCache    []float64
	doneCache      []float64
	nextStateCache []float64

	pos int // Next slot to write
	n   int // Current fill count

	capacity    int
	featureSize int
	actionSize  int
}

// NewCircular returns a new circular replay buffer storing at most
// capacity transitions with the given state feature and action vector
// sizes
func NewCircular(capacity, featureSize, actionSize int) (*Circular, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("newcircular: capacity must be >= 1, "+
			"got %v", capacity)
	}
	if featureSize < 1 || actionSize < 1 {
		return nil, fmt.Errorf("newcircular: feature size (%v) and action "+
			"size (%v) must be >= 1", featureSize, actionSize)
	}

	return &Circular{
		stateCache:     make([]float64, capacity*featureSize),
		actionCache:    make([]float64, capacity*actionSize),
		rewardCache:    make([]float64, capacity),
		doneCache:      make([]float64, capacity),
		nextStateCache: make([]float64, capacity*featureSize),

		capacity:    capacity,
		featureSize: featureSize,
		actionSize:  actionSize,
	}, nil
}

// Append adds a transition to the buffer, overwriting the oldest
// stored transition once the buffer is full
func (c *Circular) Append(t timestep.Transition) {
	c.write(c.pos, t)
	c.pos = (c.pos + 1) % c.capacity
	if c.n < c.capacity {
		c.n++
	}
}

// write copies a transition into the given slot
func (c *Circular) write(index int, t timestep.Transition) {
	if t.State.Len() != c.featureSize || t.NextState.Len() != c.featureSize {
		panic(fmt.Sprintf("append: invalid feature size \n\twant(%v)"+
			"\n\thave(%v)", c.featureSize, t.State.Len()))
	}
	if t.Action.Len() != c.actionSize {
		panic(fmt.Sprintf("append: invalid action size \n\twant(%v)"+
			"\n\thave(%v)", c.actionSize, t.Action.Len()))
	}

	stateInd := index * c.featureSize
	for i := 0; i < c.featureSize; i++ {
		c.stateCache[stateInd+i] = t.State.AtVec(i)
		c.nextStateCache[stateInd+i] = t.NextState.AtVec(i)
	}

	actionInd := index * c.actionSize
	for i := 0; i < c.actionSize; i++ {
		c.actionCache[actionInd+i] = t.Action.AtVec(i)
	}

	c.rewardCache[index] = t.Reward
	c.doneCache[index] = t.Done
}

// gather copies the transitions at the argument slots into a batch
func (c *Circular) gather(indices []int) *Batch {
	batch := newBatch(len(indices), c.featureSize, c.actionSize)

	for i, index := range indices {
		batchStart := i * c.featureSize
		expStart := index * c.featureSize
		copy(batch.States[batchStart:batchStart+c.featureSize],
			c.stateCache[expStart:expStart+c.featureSize])
		copy(batch.NextStates[batchStart:batchStart+c.featureSize],
			c.nextStateCache[expStart:expStart+c.featureSize])

		batchStart = i * c.actionSize
		expStart = index * c.actionSize
		copy(batch.Actions[batchStart:batchStart+c.actionSize],
			c.actionCache[expStart:expStart+c.actionSize])

		batch.Rewards[i] = c.rewardCache[index]
		batch.Dones[i] = c.doneCache[index]
	}

	return batch
}

// Sample draws batchSize transitions independently and uniformly with
// replacement from the buffer. No ordering is guaranteed among the
// batch. Sampling from an empty buffer is an error satisfying
// IsEmptyBuffer.
func (c *Circular) Sample(rng *rand.Rand, batchSize int) (*Batch, error) {
	if c.n == 0 {
		return nil, &BufferError{
			Op:  "sample",
			Err: errEmptyBuffer,
		}
	}

	indices := make([]int, batchSize)
	for i := range indices {
		indices[i] = rng.Intn(c.n)
	}

	return c.gather(indices), nil
}

// Len returns the current number of transitions in the buffer
func (c *Circular) Len() int {
	return c.n
}

// Cap returns the maximum number of transitions the buffer holds
func (c *Circular) Cap() int {
	return c.capacity
}

// String returns the string representation of the buffer
func (c *Circular) String() string {
	return fmt.Sprintf("Circular | capacity: %v | stored: %v | cursor: %v",
		c.capacity, c.n, c.pos)
}
