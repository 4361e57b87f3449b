package qlearning

import (
	"fmt"

	"github.com/deepsea-rl/deepsea/agent"
	"github.com/deepsea-rl/deepsea/environment"
	"github.com/deepsea-rl/deepsea/expreplay"
	"github.com/deepsea-rl/deepsea/utils/matutils/initializers/weights"
)

// Config represents a configuration for the QLearning agent.
//
// The decay fields are per-episode multiplicative factors in (0, 1];
// a decay of 1 holds the parameter constant. ReplayLearningRate is the
// initial step size used for replayed updates; if 0, replayed updates
// use the same schedule as online updates.
type Config struct {
	Epsilon      float64 // epsilon for behaviour policy
	EpsilonDecay float64
	MinEpsilon   float64

	LearningRate       float64
	LearningRateDecay  float64
	MinLearningRate    float64
	ReplayLearningRate float64

	Replay expreplay.Config
}

// CreateAgent creates the agent from the Config. Action values are
// always initialized to zero using this function. To initialize from
// some other distribution, use the agent's constructor manually.
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {

	// Create the zero weight initializer
	rand := weights.NewZeroUV() // Zero RNG
	init := weights.NewLinearUV(rand)

	return New(env, c, init, seed)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*QLearning)
	return ok
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("epsilon must be in [0, 1]")
	}
	if c.Epsilon > 0 && (c.EpsilonDecay <= 0 || c.EpsilonDecay > 1) {
		return fmt.Errorf("epsilon decay must be in (0, 1]")
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive")
	}
	if c.LearningRateDecay <= 0 || c.LearningRateDecay > 1 {
		return fmt.Errorf("learning rate decay must be in (0, 1]")
	}
	if c.ReplayLearningRate < 0 {
		return fmt.Errorf("replay learning rate cannot be negative")
	}
	return c.Replay.Validate()
}
