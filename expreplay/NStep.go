package expreplay

import (
	"fmt"

	"github.com/gammazero/deque"

	"sfneuman.com/gorl/timestep"
)

// NStep folds windows of consecutive raw transitions into single
// n-step transitions before they are committed to a replay buffer.
//
// Raw transitions are fed in the order the environment produced them.
// Once n raw transitions are buffered, each further Feed emits one
// folded transition whose reward is the discounted n-step return of
// the window. When an episode ends, every partially filled suffix
// window is flushed as a shrinking fold so that no reward from the
// finished episode is lost.
type NStep struct {
	n      int
	window *deque.Deque[timestep.Transition]
	gammas []float64 // gammas[i] = gamma^i
}

// NewNStep returns a new n-step return accumulator folding windows of
// n transitions with discount factor gamma
func NewNStep(n int, gamma float64) (*NStep, error) {
	if n < 1 {
		return nil, fmt.Errorf("newnstep: n must be >= 1, got %v", n)
	}
	if gamma < 0 || gamma > 1 {
		return nil, fmt.Errorf("newnstep: gamma must be in [0, 1], got %v",
			gamma)
	}

	gammas := make([]float64, n)
	gammas[0] = 1.0
	for i := 1; i < n; i++ {
		gammas[i] = gammas[i-1] * gamma
	}

	return &NStep{
		n:      n,
		window: deque.New[timestep.Transition](n),
		gammas: gammas,
	}, nil
}

// N returns the number of raw transitions folded into each emission
func (ns *NStep) N() int {
	return ns.n
}

// Len returns the number of raw transitions currently buffered
func (ns *NStep) Len() int {
	return ns.window.Len()
}

// Feed pushes a raw transition into the accumulator and returns the
// folded transitions that are ready to be committed downstream.
//
// While the window is still filling, Feed returns nothing. Once the
// window holds n raw transitions, Feed returns a single fold and
// drops the oldest raw transition. The done parameter is the raw
// episode-end signal, which differs from the transition's Done mask
// on forced truncation: a truncated episode still flushes the window,
// but its folds keep mask 0 so that learners bootstrap past the
// timeout. On episode end every suffix of the window is emitted as a
// shrinking fold and the window is emptied.
func (ns *NStep) Feed(t timestep.Transition, done bool) []timestep.Transition {
	ns.window.PushBack(t)

	if done {
		folds := make([]timestep.Transition, 0, ns.window.Len())
		for ns.window.Len() > 0 {
			folds = append(folds, ns.fold())
			ns.window.PopFront()
		}
		return folds
	}

	if ns.window.Len() == ns.n {
		fold := ns.fold()
		ns.window.PopFront()
		return []timestep.Transition{fold}
	}

	return nil
}

// fold computes the n-step transition for the current window: the
// state and action of the oldest raw transition, the discounted
// reward sum stopped at the first terminal mask, the next state of
// the newest raw transition, and the OR of the window's masks.
func (ns *NStep) fold() timestep.Transition {
	first := ns.window.Front()
	last := ns.window.Back()

	var reward, mask float64
	for i := 0; i < ns.window.Len(); i++ {
		raw := ns.window.At(i)
		reward += ns.gammas[i] * raw.Reward
		if raw.Done != 0 {
			mask = 1.0
			break
		}
	}

	return timestep.Transition{
		State:     first.State,
		Action:    first.Action,
		Reward:    reward,
		Done:      mask,
		NextState: last.NextState,
	}
}
