// Package agent defines an agent interface
package agent

import (
	"gonum.org/v1/gonum/mat"

	"github.com/deepsea-rl/deepsea/timestep"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns values, and a Policy
// which chooses actions in each state. The Policy chooses which actions
// are taken, and the Learner uses these actions to update the Policy.
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm that defines how values are
// updated.
//
// A Learner determines how values are changed, and therefore how a
// Policy changes over time. The Learner and Policy of an Agent should
// have pointers to the same values so that the Learner can use the
// transitions chosen by the Policy to update the values appropriately.
type Learner interface {
	// Step performs a single update to the learner
	Step() error

	// Observe records that an action led to some timestep
	Observe(action int, nextObs timestep.TimeStep)

	// ObserveFirst records the first timestep in an episode
	ObserveFirst(timestep.TimeStep)

	// EndEpisode performs cleanup at the end of an episode, such as
	// advancing parameter schedules
	EndEpisode()

	// TdError returns the TD error of a transition under the current
	// values, without changing them
	TdError(t timestep.Transition) float64

	Weights() map[string]*mat.Dense
	SetWeights(map[string]*mat.Dense) error
}

// Policy represents a policy that an agent can have.
//
// Policies determine how agents select actions. Agents usually have a
// target and behaviour policy. For a given agent, the Policy and
// Learner should have pointers to the same values so that any changes
// the learner makes to the values are reflected in the actions the
// Policy chooses.
type Policy interface {
	SelectAction(t timestep.TimeStep) int
	Weights() map[string]*mat.Dense
	SetWeights(map[string]*mat.Dense) error
}
