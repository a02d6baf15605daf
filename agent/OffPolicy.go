package agent

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"

	"golang.org/x/exp/rand"

	"sfneuman.com/gorl/environment"
	"sfneuman.com/gorl/expreplay"
	"sfneuman.com/gorl/spec"
	"sfneuman.com/gorl/timestep"
)

// OffPolicyConfig configures an off-policy algorithm
type OffPolicyConfig struct {
	// NumSteps is the total number of environment steps the run will
	// take. Prioritized replay derives its β anneal horizon from it.
	NumSteps int

	BufferSize int
	BatchSize  int

	// NStep is the number of transitions folded into each n-step
	// return; 1 stores raw transitions
	NStep int

	Gamma float64

	// UsePER selects prioritized experience replay with exponent
	// Alpha and initial importance-weight exponent BetaInit
	UsePER   bool
	Alpha    float64
	BetaInit float64

	// StartSteps is the warm-up window during which actions are drawn
	// uniformly at random to pre-fill the buffer
	StartSteps int

	// UpdateInterval is the number of environment steps between
	// learning updates
	UpdateInterval int

	// Exactly one of UpdateIntervalTarget and Tau must be set.
	// UpdateIntervalTarget hard-copies the target parameters every
	// that many learning steps; Tau blends them continuously with an
	// exponential moving average.
	UpdateIntervalTarget int
	Tau                  float64
}

// Validate returns an error describing whether or not the
// configuration is valid
func (c OffPolicyConfig) Validate() error {
	const op = "validate"

	if c.NumSteps < 1 {
		return configErrorf(op, "numSteps must be >= 1, got %v", c.NumSteps)
	}
	if c.BufferSize < 1 {
		return configErrorf(op, "bufferSize must be >= 1, got %v",
			c.BufferSize)
	}
	if c.BatchSize < 1 {
		return configErrorf(op, "batchSize must be >= 1, got %v",
			c.BatchSize)
	}
	if c.NStep < 1 {
		return configErrorf(op, "nStep must be >= 1, got %v", c.NStep)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return configErrorf(op, "gamma must be in [0, 1], got %v", c.Gamma)
	}
	if c.StartSteps < 0 {
		return configErrorf(op, "startSteps must be >= 0, got %v",
			c.StartSteps)
	}
	if c.UpdateInterval < 1 {
		return configErrorf(op, "updateInterval must be >= 1, got %v",
			c.UpdateInterval)
	}
	if c.UpdateIntervalTarget > 0 && c.Tau > 0 {
		return configErrorf(op, "cannot set both updateIntervalTarget "+
			"(%v) and tau (%v)", c.UpdateIntervalTarget, c.Tau)
	}
	if c.UpdateIntervalTarget <= 0 && c.Tau <= 0 {
		return configErrorf(op, "one of updateIntervalTarget and tau is "+
			"required")
	}
	if c.Tau > 1 {
		return configErrorf(op, "tau must be in (0, 1], got %v", c.Tau)
	}
	if c.UsePER {
		if c.Alpha < 0 {
			return configErrorf(op, "alpha must be >= 0, got %v", c.Alpha)
		}
		if c.BetaInit <= 0 || c.BetaInit > 1 {
			return configErrorf(op, "betaInit must be in (0, 1], got %v",
				c.BetaInit)
		}
	}
	return nil
}

// betaSteps returns the number of updates over which β anneals to 1:
// one update per UpdateInterval steps after the warm-up window
func (c OffPolicyConfig) betaSteps() int {
	steps := (c.NumSteps - c.StartSteps) / c.UpdateInterval
	if steps < 1 {
		steps = 1
	}
	return steps
}

// OffPolicy implements the control state machine shared by all
// off-policy algorithms: warm-up exploration, circular (optionally
// prioritized, optionally n-step) experience storage, interval-gated
// updates, and target-network synchronization.
type OffPolicy struct {
	base
	config   OffPolicyConfig
	discount float64 // gamma^nstep

	buffer expreplay.Buffer
	per    *expreplay.Prioritized // non-nil when UsePER
	nstep  *expreplay.NStep       // non-nil when NStep > 1

	learner Learner
	syncer  TargetSyncer

	selectAction SelectActionFunc
	explore      ExploreFunc

	actionSpec spec.Environment
	warmup     *distmv.Uniform // continuous warm-up action sampler
}

// NewOffPolicy returns a new off-policy algorithm state machine for
// the argument observation and action specifications. The explore and
// selectAction strategies, the gradient-update primitive, and the
// target synchronizer are injected; the state machine owns the buffer
// and the random number generator.
func NewOffPolicy(obsSpec, actionSpec spec.Environment, c OffPolicyConfig,
	selectAction SelectActionFunc, explore ExploreFunc, learner Learner,
	syncer TargetSyncer, seed uint64) (*OffPolicy, error) {
	const op = "newoffpolicy"

	if err := c.Validate(); err != nil {
		return nil, err
	}
	if selectAction == nil || explore == nil {
		return nil, configErrorf(op, "selectAction and explore strategies "+
			"are required")
	}
	if learner == nil || syncer == nil {
		return nil, configErrorf(op, "learner and target syncer are "+
			"required")
	}

	b, err := newBase(c.NumSteps, c.Gamma, seed)
	if err != nil {
		return nil, err
	}

	featureSize := obsSpec.Shape.Len()
	actionSize := 1
	if actionSpec.Cardinality == spec.Continuous {
		actionSize = actionSpec.Shape.Len()
	}

	o := &OffPolicy{
		base:         b,
		config:       c,
		discount:     pow(c.Gamma, c.NStep),
		learner:      learner,
		syncer:       syncer,
		selectAction: selectAction,
		explore:      explore,
		actionSpec:   actionSpec,
	}

	if c.UsePER {
		per, err := expreplay.NewPrioritized(c.BufferSize, featureSize,
			actionSize, c.Alpha, c.BetaInit, c.betaSteps())
		if err != nil {
			return nil, configErrorf(op, "%v", err)
		}
		o.per = per
		o.buffer = per
	} else {
		buffer, err := expreplay.NewCircular(c.BufferSize, featureSize,
			actionSize)
		if err != nil {
			return nil, configErrorf(op, "%v", err)
		}
		o.buffer = buffer
	}

	if c.NStep > 1 {
		nstep, err := expreplay.NewNStep(c.NStep, c.Gamma)
		if err != nil {
			return nil, configErrorf(op, "%v", err)
		}
		o.nstep = nstep
	}

	if actionSpec.Cardinality == spec.Continuous {
		bounds := make([]r1.Interval, actionSize)
		for i := range bounds {
			bounds[i] = r1.Interval{
				Min: actionSpec.LowerBound.AtVec(i),
				Max: actionSpec.UpperBound.AtVec(i),
			}
		}
		o.warmup = distmv.NewUniform(bounds, rand.NewSource(seed))
	}

	return o, nil
}

// NewOffPolicyActorCritic returns an off-policy actor-critic state
// machine. It is an OffPolicy over a continuous action space whose
// explore strategy is the actor's noisy forward pass.
func NewOffPolicyActorCritic(obsSpec, actionSpec spec.Environment,
	c OffPolicyConfig, selectAction SelectActionFunc, explore ExploreFunc,
	learner Learner, syncer TargetSyncer, seed uint64) (*OffPolicy, error) {
	if actionSpec.Cardinality != spec.Continuous {
		return nil, configErrorf("newoffpolicyactorcritic", "continuous "+
			"action space required, got %v", actionSpec.Cardinality)
	}
	return NewOffPolicy(obsSpec, actionSpec, c, selectAction, explore,
		learner, syncer, seed)
}

// SelectAction selects an evaluation action
func (o *OffPolicy) SelectAction(state mat.Vector) mat.Vector {
	return o.selectAction(o.rng, state)
}

// Explore selects a training action
func (o *OffPolicy) Explore(state mat.Vector) mat.Vector {
	return o.explore(o.rng, state)
}

// randomAction draws a uniform random action for the warm-up window
func (o *OffPolicy) randomAction() mat.Vector {
	if o.actionSpec.Cardinality == spec.Discrete {
		action := float64(o.rng.Intn(o.actionSpec.NumActions()))
		return mat.NewVecDense(1, []float64{action})
	}
	return mat.NewVecDense(o.actionSpec.Shape.Len(), o.warmup.Rand(nil))
}

// Step advances the agent-environment interaction by one tick.
// Actions are uniform random during the warm-up window and come from
// the explore strategy afterwards. The recorded transition's mask
// distinguishes true terminals from forced truncation, and the
// transition is folded through the n-step accumulator when one is
// configured. On episode end the environment is reset and the first
// timestep of the new episode returned.
func (o *OffPolicy) Step(env environment.Environment,
	step timestep.TimeStep) (timestep.TimeStep, error) {
	o.envStep++

	var action mat.Vector
	if o.envStep <= o.config.StartSteps {
		action = o.randomAction()
	} else {
		action = o.Explore(step.Observation)
	}

	next, err := env.Step(action)
	if err != nil {
		return timestep.TimeStep{}, fmt.Errorf("step: %v", err)
	}

	done := next.Last()
	transition := timestep.NewTransition(step, action, doneMask(next, env),
		next)

	if o.nstep != nil {
		for _, fold := range o.nstep.Feed(transition, done) {
			o.buffer.Append(fold)
		}
	} else {
		o.buffer.Append(transition)
	}

	if done {
		return env.Reset()
	}
	return next, nil
}

// IsUpdate returns whether a learning update is due: the warm-up
// window has elapsed and the environment step count is a multiple of
// the update interval
func (o *OffPolicy) IsUpdate() bool {
	return o.envStep%o.config.UpdateInterval == 0 &&
		o.envStep >= o.config.StartSteps
}

// Update samples a batch from the owned buffer, performs one gradient
// step, feeds the resulting TD errors back as priorities when
// prioritized replay is in use, and synchronizes the target
// parameters on the configured schedule
func (o *OffPolicy) Update() error {
	batch, err := o.buffer.Sample(o.rng, o.config.BatchSize)
	if err != nil {
		return fmt.Errorf("update: %v", err)
	}

	tdErrors, err := o.learner.GradientStep(batch)
	if err != nil {
		return fmt.Errorf("update: could not perform gradient step: %v", err)
	}
	o.learningStep++

	if o.per != nil {
		o.per.UpdatePriority(batch.Indices, tdErrors)
	}

	if o.config.UpdateIntervalTarget > 0 {
		if o.learningStep%o.config.UpdateIntervalTarget == 0 {
			return o.syncer.Sync(1.0)
		}
		return nil
	}
	return o.syncer.Sync(o.config.Tau)
}

// Discount returns the effective discount applied across each stored
// transition, gamma^nstep
func (o *OffPolicy) Discount() float64 {
	return o.discount
}

// Buffer returns the buffer owned by the algorithm
func (o *OffPolicy) Buffer() expreplay.Buffer {
	return o.buffer
}

func (o *OffPolicy) String() string {
	return fmt.Sprintf("OffPolicy | buffer: %v | nstep: %v | per: %v",
		o.config.BufferSize, o.config.NStep, o.config.UsePER)
}

// pow computes gamma^n for small integer n
func pow(gamma float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= gamma
	}
	return result
}
