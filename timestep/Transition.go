package timestep

import "gonum.org/v1/gonum/mat"

// Transition packages together a single (S, A, R, S') observation of
// the agent-environment interaction. Actions are discrete indices.
// Transitions are immutable once created: the replay buffer copies
// their data on insertion.
type Transition struct {
	State     mat.Vector
	Action    int
	Reward    float64
	Discount  float64
	NextState mat.Vector
}

// NewTransition creates a Transition from the TimeStep at which action
// was selected and the TimeStep that the action led to. The reward and
// discount of the transition are those received on nextStep.
func NewTransition(step TimeStep, action int, nextStep TimeStep) Transition {
	return Transition{
		State:     step.Observation,
		Action:    action,
		Reward:    nextStep.Reward,
		Discount:  nextStep.Discount,
		NextState: nextStep.Observation,
	}
}
