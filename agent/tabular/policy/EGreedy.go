// Package policy implements policies over tabular action values
package policy

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/deepsea-rl/deepsea/environment"
	"github.com/deepsea-rl/deepsea/timestep"
	"github.com/deepsea-rl/deepsea/utils/matutils"
)

const (
	// Key for weights map: map[string]*mat.Dense
	WeightsKey string = "weights"
)

// EGreedy implements an ε-greedy policy over a table of action values.
// The table has one row per action and one column per state, so the
// action values of a state are the product of the table with the
// state's one-hot observation.
type EGreedy struct {
	weights *mat.Dense
	epsilon float64
	source  rand.Source
}

// NewEGreedy constructs a new EGreedy policy, where e = epsilon is the
// probability with which a random action is selected
func NewEGreedy(e float64, seed uint64,
	env environment.Environment) (*EGreedy, error) {
	if e < 0 || e > 1 {
		return nil, fmt.Errorf("newEGreedy: epsilon must be in [0, 1], "+
			"got %v", e)
	}
	if env.ActionSpec().Shape.Len() != 1 {
		return nil, fmt.Errorf("newEGreedy: actions must be 1-dimensional")
	}
	if env.ActionSpec().Cardinality != environment.Discrete {
		return nil, fmt.Errorf("newEGreedy: actions must be discrete")
	}

	actions := int(env.ActionSpec().UpperBound.AtVec(0)) + 1
	features := env.ObservationSpec().Shape.Len()

	// Rows = actions, cols = states
	weights := mat.NewDense(actions, features, nil)

	return &EGreedy{weights, e, rand.NewSource(seed)}, nil
}

// Epsilon returns the probability with which the policy selects a
// random action
func (p *EGreedy) Epsilon() float64 {
	return p.epsilon
}

// SetEpsilon sets the probability with which the policy selects a
// random action, so that exploration can follow a decay schedule
func (p *EGreedy) SetEpsilon(e float64) {
	p.epsilon = e
}

// Weights gets and returns the weights of the EGreedy policy as a
// string description -> weights
func (p *EGreedy) Weights() map[string]*mat.Dense {
	weights := make(map[string]*mat.Dense)
	weights[WeightsKey] = p.weights

	return weights
}

// SetWeights sets the weight pointers to point to a new set of
// weights. The SetWeights function can take the output of a call to
// Weights() on another policy directly.
func (p *EGreedy) SetWeights(weights map[string]*mat.Dense) error {
	newWeights, ok := weights[WeightsKey]
	if !ok {
		return fmt.Errorf("setWeights: no weights named %q", WeightsKey)
	}

	p.weights = newWeights
	return nil
}

// SelectAction selects an action from an ε-greedy policy
func (p *EGreedy) SelectAction(t timestep.TimeStep) int {
	// Calculate all action values in the current state
	numActions, _ := p.weights.Dims()
	actionValues := mat.NewVecDense(numActions, nil)
	actionValues.MulVec(p.weights, t.Observation)

	// Find the greedy action; equal action values are broken towards
	// the lowest action index
	greedyAction := matutils.MaxVec(actionValues)
	if p.epsilon == 0 {
		return greedyAction
	}

	// Calculate the ε probability of choosing any action at random
	prob := p.epsilon / float64(numActions)
	actionProbabilities := make([]float64, numActions)
	for i := 0; i < numActions; i++ {
		actionProbabilities[i] = prob
	}

	// Adjust the probability of choosing the greedy action
	actionProbabilities[greedyAction] += 1.0 - p.epsilon

	// Sample an action from the categorical distribution over actions
	dist := distuv.NewCategorical(actionProbabilities, p.source)
	return int(dist.Rand())
}
