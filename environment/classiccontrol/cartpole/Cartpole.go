// Package cartpole implements the classic cart and pole balancing
// environment with a discrete action space
package cartpole

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"sfneuman.com/gorl/environment"
	"sfneuman.com/gorl/spec"
	"sfneuman.com/gorl/timestep"
)

// Physical constants of the cart-pole system
const (
	Gravity        float64 = 9.8
	CartMass       float64 = 1.0
	PoleMass       float64 = 0.1
	TotalMass      float64 = CartMass + PoleMass
	HalfPoleLength float64 = 0.5
	PoleMassLength float64 = PoleMass * HalfPoleLength
	ForceMagnitude float64 = 10.0
	Dt             float64 = 0.02

	// Episode failure bounds
	PositionBound float64 = 2.4
	AngleBound    float64 = 12.0 * math.Pi / 180.0

	// ObservationDims is the number of state observation features
	ObservationDims int = 4

	// NumActions is the number of discrete actions: push left, do
	// nothing, push right
	NumActions int = 3

	// StartBound bounds the uniform distribution of starting state
	// features
	StartBound float64 = 0.05
)

// Cartpole implements the classic control cart and pole environment.
// The agent applies a horizontal force to a cart on a frictionless
// track and is rewarded +1 on every step that the attached pole stays
// within AngleBound of vertical and the cart within PositionBound of
// the track centre. Episodes end when either bound is exceeded or
// when the step limit is reached.
type Cartpole struct {
	environment.Starter
	state    mat.Vector
	steps    int
	maxSteps int
}

// New creates a new Cartpole environment with the given starting
// state distribution and episode step limit. The first timestep of
// the first episode is returned along with the environment.
func New(s environment.Starter, maxSteps int) (*Cartpole,
	timestep.TimeStep, error) {
	if maxSteps <= 0 {
		return nil, timestep.TimeStep{}, fmt.Errorf("cartpole: maxSteps "+
			"must be positive, got %v", maxSteps)
	}

	c := &Cartpole{Starter: s, maxSteps: maxSteps}
	step, err := c.Reset()
	if err != nil {
		return nil, timestep.TimeStep{}, err
	}
	return c, step, nil
}

// NewStarter returns the conventional starting state distribution for
// Cartpole, which draws every state feature uniformly from
// [-StartBound, StartBound]
func NewStarter(seed uint64) environment.Starter {
	bounds := make([]r1.Interval, ObservationDims)
	for i := range bounds {
		bounds[i] = r1.Interval{Min: -StartBound, Max: StartBound}
	}
	return environment.NewUniformStarter(bounds, seed)
}

// Reset resets the environment and returns the first timestep of the
// new episode
func (c *Cartpole) Reset() (timestep.TimeStep, error) {
	start := c.Start()
	if start.Len() != ObservationDims {
		return timestep.TimeStep{}, fmt.Errorf("reset: illegal starting "+
			"state \n\twant(%v dims)\n\thave(%v dims)", ObservationDims,
			start.Len())
	}

	c.state = start
	c.steps = 0
	return timestep.New(timestep.First, 0, start, 0), nil
}

// Step takes one environmental step given the argument action and
// returns the next timestep. Actions are scalar indices: 0 pushes the
// cart left, 1 applies no force, and 2 pushes right.
func (c *Cartpole) Step(action mat.Vector) (timestep.TimeStep, error) {
	direction := int(action.AtVec(0))
	if direction < 0 || direction >= NumActions {
		return timestep.TimeStep{}, fmt.Errorf("step: illegal action %v",
			direction)
	}
	force := float64(direction-1) * ForceMagnitude

	x := c.state.AtVec(0)
	xDot := c.state.AtVec(1)
	theta := c.state.AtVec(2)
	thetaDot := c.state.AtVec(3)

	cosTheta := math.Cos(theta)
	sinTheta := math.Sin(theta)

	// Euler integration of the cart-pole dynamics
	temp := (force + PoleMassLength*thetaDot*thetaDot*sinTheta) / TotalMass
	thetaAcc := (Gravity*sinTheta - cosTheta*temp) /
		(HalfPoleLength * (4.0/3.0 - PoleMass*cosTheta*cosTheta/TotalMass))
	xAcc := temp - PoleMassLength*thetaAcc*cosTheta/TotalMass

	x += Dt * xDot
	xDot += Dt * xAcc
	theta += Dt * thetaDot
	thetaDot += Dt * thetaAcc

	c.state = mat.NewVecDense(ObservationDims,
		[]float64{x, xDot, theta, thetaDot})
	c.steps++

	failed := x < -PositionBound || x > PositionBound ||
		theta < -AngleBound || theta > AngleBound

	stepType := timestep.Mid
	if failed || c.steps >= c.maxSteps {
		stepType = timestep.Last
	}

	return timestep.New(stepType, 1.0, c.state, c.steps), nil
}

// MaxEpisodeSteps returns the step count at which episodes are
// truncated
func (c *Cartpole) MaxEpisodeSteps() int {
	return c.maxSteps
}

// ObservationSpec returns the observation specification of the
// environment
func (c *Cartpole) ObservationSpec() spec.Environment {
	shape := mat.NewVecDense(ObservationDims, nil)
	low := mat.NewVecDense(ObservationDims, []float64{-PositionBound,
		math.Inf(-1), -AngleBound, math.Inf(-1)})
	high := mat.NewVecDense(ObservationDims, []float64{PositionBound,
		math.Inf(1), AngleBound, math.Inf(1)})

	return spec.NewEnvironment(shape, spec.Observation, low, high,
		spec.Continuous)
}

// ActionSpec returns the action specification of the environment
func (c *Cartpole) ActionSpec() spec.Environment {
	shape := mat.NewVecDense(1, nil)
	low := mat.NewVecDense(1, []float64{0})
	high := mat.NewVecDense(1, []float64{float64(NumActions - 1)})

	return spec.NewEnvironment(shape, spec.Action, low, high,
		spec.Discrete)
}

func (c *Cartpole) String() string {
	return fmt.Sprintf("Cartpole | state: %v | step: %v", c.state, c.steps)
}
