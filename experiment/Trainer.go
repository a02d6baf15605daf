// Package experiment implements functionality for running an
// agent-environment interaction loop and recording the data it
// generates
package experiment

import (
	"fmt"

	"github.com/rs/zerolog"

	"sfneuman.com/gorl/agent"
	"sfneuman.com/gorl/environment"
	"sfneuman.com/gorl/experiment/tracker"
)

// Trainer runs an algorithm online on an environment for a fixed
// number of environment steps. The algorithm drives its own update
// cadence through IsUpdate and Update; the trainer only ticks the
// interaction loop and records progress.
type Trainer struct {
	env environment.Environment
	alg agent.Algorithm

	numSteps    int
	logInterval int
	logger      zerolog.Logger

	trackers []tracker.Tracker
}

// New creates and returns a new Trainer. The logInterval parameter
// determines the number of environment steps between progress log
// lines, and the t parameter is a slice of tracker.Tracker which
// determine what data is recorded.
func New(env environment.Environment, alg agent.Algorithm, numSteps,
	logInterval int, logger zerolog.Logger, t ...tracker.Tracker) *Trainer {
	return &Trainer{
		env:         env,
		alg:         alg,
		numSteps:    numSteps,
		logInterval: logInterval,
		logger:      logger,
		trackers:    t,
	}
}

// Register registers a tracker.Tracker with the Trainer so that data
// generated during training can be tracked and saved
func (t *Trainer) Register(tr tracker.Tracker) {
	t.trackers = append(t.trackers, tr)
}

// Run runs the entire interaction loop for all timesteps
func (t *Trainer) Run() error {
	env := newTrackedEnvironment(t.env, t.trackers)

	step, err := env.Reset()
	if err != nil {
		return fmt.Errorf("run: could not reset environment: %v", err)
	}

	t.logger.Info().
		Str("algorithm", t.alg.String()).
		Int("numSteps", t.numSteps).
		Msg("starting training")

	for i := 1; i <= t.numSteps; i++ {
		step, err = t.alg.Step(env, step)
		if err != nil {
			return fmt.Errorf("run: %v", err)
		}

		if t.alg.IsUpdate() {
			if err := t.alg.Update(); err != nil {
				return fmt.Errorf("run: %v", err)
			}
		}

		if t.logInterval > 0 && i%t.logInterval == 0 {
			t.logger.Info().
				Int("step", i).
				Msg("training")
		}
	}

	t.logger.Info().Msg("training finished")
	return nil
}

// Save saves all the data cached by the Trackers to disk
func (t *Trainer) Save() {
	for _, tr := range t.trackers {
		tr.Save()
	}
}
