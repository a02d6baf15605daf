package expreplay

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"sfneuman.com/gorl/timestep"
)

// priorityEps is added to every priority so that a transition whose
// learner-reported loss is exactly zero keeps a nonzero chance of
// being drawn again
const priorityEps float64 = 1e-6

// Prioritized is a circular replay buffer whose sampling probability
// is proportional to each transition's priority raised to a fixed
// exponent α. A sum tree keyed by the same slot indices as the
// circular storage holds the priority masses, so slot recycling on
// wraparound keeps the two structures consistent: the last writer for
// a slot wins.
//
// Newly appended transitions receive the maximum priority seen so
// far, guaranteeing that they are sampled at least once. Sampled
// batches carry importance sampling weights computed with an exponent
// β that anneals linearly to 1.0 over a configured number of sample
// calls.
type Prioritized struct {
	*Circular
	tree *sumTree

	alpha       float64
	maxPriority float64
	beta        betaSchedule
}

// betaSchedule anneals the importance sampling exponent linearly from
// an initial value to 1.0 over a fixed number of calls
type betaSchedule struct {
	init  float64
	steps int
	calls int
}

// next returns the current β and advances the schedule
func (b *betaSchedule) next() float64 {
	beta := b.at(b.calls)
	b.calls++
	return beta
}

// at returns the β in effect after the argument number of calls
func (b *betaSchedule) at(calls int) float64 {
	if calls >= b.steps {
		return 1.0
	}
	return b.init + (1.0-b.init)*float64(calls)/float64(b.steps)
}

// NewPrioritized returns a new prioritized replay buffer. The alpha
// parameter is the fixed priority exponent, betaInit the starting
// value of the importance sampling exponent, and betaSteps the number
// of Sample calls over which β anneals to 1.0.
func NewPrioritized(capacity, featureSize, actionSize int, alpha,
	betaInit float64, betaSteps int) (*Prioritized, error) {
	circular, err := NewCircular(capacity, featureSize, actionSize)
	if err != nil {
		return nil, fmt.Errorf("newprioritized: %v", err)
	}
	if alpha < 0 {
		return nil, fmt.Errorf("newprioritized: alpha must be >= 0, "+
			"got %v", alpha)
	}
	if betaInit <= 0 || betaInit > 1 {
		return nil, fmt.Errorf("newprioritized: betaInit must be in "+
			"(0, 1], got %v", betaInit)
	}
	if betaSteps < 1 {
		return nil, fmt.Errorf("newprioritized: betaSteps must be >= 1, "+
			"got %v", betaSteps)
	}

	return &Prioritized{
		Circular:    circular,
		tree:        newSumTree(capacity),
		alpha:       alpha,
		maxPriority: 1.0,
		beta:        betaSchedule{init: betaInit, steps: betaSteps},
	}, nil
}

// Append adds a transition to the buffer with the maximum priority
// seen so far, overwriting the oldest stored transition and its
// priority once the buffer is full
func (p *Prioritized) Append(t timestep.Transition) {
	slot := p.pos
	p.Circular.Append(t)
	p.tree.set(slot, p.mass(p.maxPriority))
}

// mass converts a raw priority into the sampling mass stored in the
// sum tree
func (p *Prioritized) mass(priority float64) float64 {
	return math.Pow(math.Abs(priority)+priorityEps, p.alpha)
}

// Sample draws batchSize transitions with probability proportional to
// priority^α and fills the batch's Weights with the normalized
// importance sampling corrections and Indices with the drawn slots.
// Sampling from an empty buffer is an error satisfying IsEmptyBuffer.
func (p *Prioritized) Sample(rng *rand.Rand, batchSize int) (*Batch, error) {
	if p.n == 0 {
		return nil, &BufferError{
			Op:  "sample",
			Err: errEmptyBuffer,
		}
	}

	beta := p.beta.next()
	total := p.tree.total()

	indices := make([]int, batchSize)
	weights := make([]float64, batchSize)
	maxWeight := 0.0
	for i := range indices {
		slot := p.tree.find(rng.Float64() * total)
		indices[i] = slot

		// w_i = (n * P(i))^(-β)
		prob := p.tree.get(slot) / total
		weights[i] = math.Pow(float64(p.n)*prob, -beta)
		if weights[i] > maxWeight {
			maxWeight = weights[i]
		}
	}

	// Normalize so the largest weight in the batch is 1
	for i := range weights {
		weights[i] /= maxWeight
	}

	batch := p.gather(indices)
	batch.Weights = weights
	batch.Indices = indices
	return batch, nil
}

// UpdatePriority overwrites the priorities at the given slots. It is
// called by the learner after computing per-sample loss magnitudes.
// Slots recycled by an intervening Append keep the priority that
// Append assigned only until this call lands; the last writer wins.
func (p *Prioritized) UpdatePriority(indices []int, priorities []float64) {
	if len(indices) != len(priorities) {
		panic(fmt.Sprintf("updatepriority: length mismatch "+
			"\n\twant(%v indices)\n\thave(%v priorities)", len(indices),
			len(priorities)))
	}

	for i, slot := range indices {
		priority := math.Abs(priorities[i])
		p.tree.set(slot, p.mass(priority))
		if priority > p.maxPriority {
			p.maxPriority = priority
		}
	}
}

// Beta returns the importance sampling exponent currently in effect
func (p *Prioritized) Beta() float64 {
	return p.beta.at(p.beta.calls)
}

// MaxPriority returns the running maximum priority assigned to newly
// appended transitions
func (p *Prioritized) MaxPriority() float64 {
	return p.maxPriority
}

// String returns the string representation of the buffer
func (p *Prioritized) String() string {
	return fmt.Sprintf("Prioritized | capacity: %v | stored: %v | α: %v "+
		"| β: %v", p.capacity, p.n, p.alpha, p.Beta())
}
