package experiment

import (
	"gonum.org/v1/gonum/mat"

	"sfneuman.com/gorl/environment"
	"sfneuman.com/gorl/experiment/tracker"
	ts "sfneuman.com/gorl/timestep"
)

// trackedEnvironment wraps an environment so that every timestep it
// produces is cached in each registered Tracker before the algorithm
// sees it. Because the algorithm resets the environment itself at the
// end of an episode, the wrapper is the one place that observes every
// timestep, terminal ones included.
type trackedEnvironment struct {
	environment.Environment
	trackers []tracker.Tracker
}

func newTrackedEnvironment(env environment.Environment,
	trackers []tracker.Tracker) *trackedEnvironment {
	return &trackedEnvironment{Environment: env, trackers: trackers}
}

// Reset resets the wrapped environment and tracks the first timestep
// of the new episode
func (t *trackedEnvironment) Reset() (ts.TimeStep, error) {
	step, err := t.Environment.Reset()
	if err != nil {
		return step, err
	}
	t.track(step)
	return step, nil
}

// Step steps the wrapped environment and tracks the resulting timestep
func (t *trackedEnvironment) Step(action mat.Vector) (ts.TimeStep, error) {
	step, err := t.Environment.Step(action)
	if err != nil {
		return step, err
	}
	t.track(step)
	return step, nil
}

// track caches the current timestep in each tracker
func (t *trackedEnvironment) track(step ts.TimeStep) {
	for _, tr := range t.trackers {
		tr.Track(step)
	}
}
