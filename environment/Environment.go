// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/deepsea-rl/deepsea/timestep"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() mat.Vector
}

// Task implements the reward scheme for taking actions in some
// environment
type Task interface {
	// GetReward returns the reward for taking the argument action
	// on the argument timestep
	GetReward(t timestep.TimeStep, action int) float64

	// AtGoal returns whether the argument state is a goal state
	AtGoal(state mat.Vector) bool

	// Min and Max return the minimum and maximum attainable rewards
	Min() float64
	Max() float64
}

// Environment implements a simulated environment, which includes a
// Task to complete
type Environment interface {
	Task
	Starter

	// Reset resets the environment between episodes, returning the
	// first timestep of the new episode
	Reset() timestep.TimeStep

	// Step takes one transition in the environment given a discrete
	// action index, returning the next timestep and whether it is the
	// last in the episode. Invalid action indices are an error.
	Step(action int) (timestep.TimeStep, bool, error)

	RewardSpec() Spec
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}
