package qlearning

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/deepsea-rl/deepsea/agent/tabular/schedule"
	"github.com/deepsea-rl/deepsea/timestep"
)

// QLearner implements the update functionality for the Q-Learning
// algorithm over a table of action values:
//
//	Q(s, a) <- Q(s, a) + α * (r + γ * max_a' Q(s', a') - Q(s, a))
//
// The step size α is provided by a per-episode schedule. Replayed
// transitions may use a separately scheduled step size.
type QLearner struct {
	weights      *mat.Dense
	step         timestep.TimeStep
	action       int
	nextStep     timestep.TimeStep
	learningRate schedule.Schedule
	replayRate   schedule.Schedule
}

// NewQLearner creates a new QLearner struct.
//
// The weights argument is the table of action values to learn, with
// one row per action and one column per state.
func NewQLearner(weights *mat.Dense, learningRate,
	replayRate schedule.Schedule) *QLearner {
	step := timestep.TimeStep{}
	nextStep := timestep.TimeStep{}

	return &QLearner{weights, step, 0, nextStep, learningRate, replayRate}
}

// ObserveFirst observes and records the first episodic timestep
func (q *QLearner) ObserveFirst(t timestep.TimeStep) {
	if !t.First() {
		fmt.Fprintf(os.Stderr, "Warning: ObserveFirst() should only be "+
			"called on the first timestep (current timestep = %d)", t.Number)
	}
	q.step = timestep.TimeStep{}
	q.nextStep = t
}

// Observe observes and records any timestep other than the first
// timestep
func (q *QLearner) Observe(action int, nextStep timestep.TimeStep) {
	q.step = q.nextStep
	q.action = action
	q.nextStep = nextStep
}

// Step updates the action values from the live transition
func (q *QLearner) Step() error {
	t := timestep.NewTransition(q.step, q.action, q.nextStep)
	q.update(t, q.learningRate.Value())
	return nil
}

// EndEpisode advances the step-size schedules at an episode boundary
func (q *QLearner) EndEpisode() {
	q.learningRate.EndEpisode()
	q.replayRate.EndEpisode()
}

// TdError returns the TD error of a transition under the current
// action values, without changing them
func (q *QLearner) TdError(t timestep.Transition) float64 {
	numActions, _ := q.weights.Dims()

	// Calculate the action values in the next state
	actionValues := mat.NewVecDense(numActions, nil)
	actionValues.MulVec(q.weights, t.NextState)

	// Create the update target from the maximum action value in the
	// next state. On terminal transitions the discount is 0, so the
	// target reduces to the reward.
	target := t.Reward + t.Discount*mat.Max(actionValues)

	// Find the current estimate of the taken action
	currentEstimate := mat.Dot(q.weights.RowView(t.Action), t.State)

	return target - currentEstimate
}

// update applies a single Q-Learning update to the action values with
// the argument step size, returning the TD error the transition
// produced
func (q *QLearner) update(t timestep.Transition, stepSize float64) float64 {
	tdError := q.TdError(t)

	// Construct the scaling factor of the gradient
	scale := stepSize * tdError

	// Perform gradient descent on the row of the taken action:
	// ∇weights = scale * state
	weights := q.weights.RowView(t.Action)
	newWeights := mat.NewVecDense(weights.Len(), nil)
	newWeights.AddScaledVec(weights, scale, t.State)
	q.weights.SetRow(t.Action, mat.Col(nil, 0, newWeights))

	return tdError
}

// Weights gets and returns the weights of the learner
func (q *QLearner) Weights() map[string]*mat.Dense {
	weights := make(map[string]*mat.Dense)
	weights["weights"] = q.weights

	return weights
}

// SetWeights sets the weight pointers to point to a new set of weights
func (q *QLearner) SetWeights(weights map[string]*mat.Dense) error {
	newWeights, ok := weights["weights"]
	if !ok {
		return fmt.Errorf("setWeights: no weights named \"weights\"")
	}

	q.weights = newWeights
	return nil
}
