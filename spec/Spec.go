// Package spec implements specifications which describe the layout of
// the observations and actions that environments and agents exchange
package spec

import "gonum.org/v1/gonum/mat"

// Cardinality indicates whether the associated space is continuous or
// discrete
type Cardinality int

const (
	Discrete Cardinality = iota
	Continuous
)

func (c Cardinality) String() string {
	if c == Discrete {
		return "Discrete"
	}
	return "Continuous"
}

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an action or an observation
type SpecType int

const (
	Action SpecType = iota
	Observation
)

// Environment implements a specification, which tells the type, shape,
// and bounds of an action or observation in an environment.
//
// For a Discrete action spec, the shape has length 1 and actions are
// enumerated 0, 1, ..., UpperBound[0].
type Environment struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewEnvironment constructs a new environment specification
func NewEnvironment(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, c Cardinality) Environment {
	return Environment{shape, t, lowerBound, upperBound, c}
}

// NumActions returns the number of discrete actions described by the
// specification. It is only meaningful for Discrete action specs.
func (e Environment) NumActions() int {
	return int(e.UpperBound.AtVec(0)) + 1
}
