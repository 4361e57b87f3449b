// Package qlearning implements tabular Q-Learning with experience
// replay.
//
// On every environmental step the agent performs one online update
// from the live transition, then replays a batch of transitions drawn
// from an experience replay buffer and updates from each. The replay
// buffer's sampling strategy is pluggable; see the expreplay package.
package qlearning

import (
	"fmt"

	"github.com/deepsea-rl/deepsea/agent"
	"github.com/deepsea-rl/deepsea/agent/tabular/policy"
	"github.com/deepsea-rl/deepsea/agent/tabular/schedule"
	"github.com/deepsea-rl/deepsea/environment"
	"github.com/deepsea-rl/deepsea/expreplay"
	"github.com/deepsea-rl/deepsea/timestep"
	"github.com/deepsea-rl/deepsea/utils/matutils/initializers/weights"
)

// QLearning implements the Q-Learning algorithm with experience replay
type QLearning struct {
	*QLearner
	behaviour *policy.EGreedy
	target    *policy.Greedy
	replay    expreplay.ExperienceReplayer
	epsilon   schedule.Schedule
	seed      uint64
}

// Compile-time interface check
var _ agent.Agent = (*QLearning)(nil)

// New creates a new QLearning agent on the argument environment. The
// init argument initializes the table of action values.
func New(env environment.Environment, config Config,
	init weights.Initializer, seed uint64) (*QLearning, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: invalid configuration: %v", err)
	}

	// Create the behaviour policy and initialize the action values
	behaviour, err := policy.NewEGreedy(config.Epsilon, seed, env)
	if err != nil {
		return nil, fmt.Errorf("new: could not create behaviour policy: "+
			"%v", err)
	}
	table := behaviour.Weights()[policy.WeightsKey]
	init.Initialize(table)

	// The target policy shares the behaviour policy's action values
	target, err := policy.NewGreedy(seed, env)
	if err != nil {
		return nil, fmt.Errorf("new: could not create target policy: %v",
			err)
	}
	if err := target.SetWeights(behaviour.Weights()); err != nil {
		return nil, err
	}

	// Step-size and exploration schedules advance between episodes
	learningRate, err := schedule.NewExponential(config.LearningRate,
		config.LearningRateDecay, config.MinLearningRate)
	if err != nil {
		return nil, fmt.Errorf("new: invalid step-size schedule: %v", err)
	}

	replayLearningRate := config.ReplayLearningRate
	if replayLearningRate == 0 {
		replayLearningRate = config.LearningRate
	}
	replayRate, err := schedule.NewExponential(replayLearningRate,
		config.LearningRateDecay, config.MinLearningRate)
	if err != nil {
		return nil, fmt.Errorf("new: invalid replay step-size schedule: "+
			"%v", err)
	}

	// A greedy behaviour policy has nothing to decay
	var epsilon schedule.Schedule = noSchedule{}
	if config.Epsilon > 0 {
		epsilon, err = schedule.NewExponential(config.Epsilon,
			config.EpsilonDecay, config.MinEpsilon)
		if err != nil {
			return nil, fmt.Errorf("new: invalid epsilon schedule: %v", err)
		}
	}

	learner := NewQLearner(table, learningRate, replayRate)

	// Create the experience replay buffer
	features := env.ObservationSpec().Shape.Len()
	actions := int(env.ActionSpec().UpperBound.AtVec(0)) + 1
	replay, err := config.Replay.Create(features, actions, seed)
	if err != nil {
		return nil, fmt.Errorf("new: could not create experience replay "+
			"buffer: %v", err)
	}

	return &QLearning{
		QLearner:  learner,
		behaviour: behaviour,
		target:    target,
		replay:    replay,
		epsilon:   epsilon,
		seed:      seed,
	}, nil
}

// SelectAction selects an action from the behaviour policy
func (q *QLearning) SelectAction(t timestep.TimeStep) int {
	return q.behaviour.SelectAction(t)
}

// SelectGreedyAction selects an action from the target policy
func (q *QLearning) SelectGreedyAction(t timestep.TimeStep) int {
	return q.target.SelectAction(t)
}

// Observe observes and records any timestep other than the first
// timestep and stores the resulting transition in the replay buffer,
// with a priority computed from its TD error
func (q *QLearning) Observe(action int, nextStep timestep.TimeStep) {
	q.QLearner.Observe(action, nextStep)

	t := timestep.NewTransition(q.step, q.action, q.nextStep)
	if err := q.replay.Add(t, q.TdError(t)); err != nil {
		panic(fmt.Sprintf("observe: could not buffer transition: %v", err))
	}
}

// Step performs one online update from the live transition, then one
// update per replayed transition sampled from the replay buffer. The
// priorities of the replayed transitions are refreshed with the TD
// errors they produced.
func (q *QLearning) Step() error {
	t := timestep.NewTransition(q.step, q.action, q.nextStep)
	q.update(t, q.learningRate.Value())

	batch, slots, err := q.replay.Sample()
	if expreplay.IsEmptyBuffer(err) || expreplay.IsInsufficientSamples(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("step: could not sample from replay buffer: %v",
			err)
	}

	tdErrors := make([]float64, len(batch))
	for i, transition := range batch {
		tdErrors[i] = q.update(transition, q.replayRate.Value())
	}

	if err := q.replay.UpdatePriorities(slots, tdErrors); err != nil {
		return fmt.Errorf("step: could not update priorities: %v", err)
	}
	return nil
}

// EndEpisode advances the step-size and exploration schedules at an
// episode boundary
func (q *QLearning) EndEpisode() {
	q.QLearner.EndEpisode()
	q.epsilon.EndEpisode()
	q.behaviour.SetEpsilon(q.epsilon.Value())
}

// noSchedule is the epsilon schedule of a greedy behaviour policy
type noSchedule struct{}

func (noSchedule) Value() float64 { return 0 }
func (noSchedule) EndEpisode()    {}
