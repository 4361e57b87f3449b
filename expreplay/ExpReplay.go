// Package expreplay implements experience replay buffers with
// pluggable sampling strategies.
//
// The buffer always evicts in insertion order: once full, each new
// transition overwrites the oldest stored one. What varies between
// strategies is how transitions are drawn for replay - uniformly, in
// proportion to a TD-error priority, re-weighted by how rare a
// state-action pair is, or masked by a per-pair replay budget.
package expreplay

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/deepsea-rl/deepsea/timestep"
	"github.com/deepsea-rl/deepsea/utils/matutils"
)

// ExperienceReplayer implements an experience replay buffer
type ExperienceReplayer interface {
	// Add adds a transition to the buffer along with the TD error the
	// transition produced when it was observed, from which the stored
	// priority is computed
	Add(t timestep.Transition, tdError float64) error

	// Sample draws a batch of transitions from the buffer, with
	// replacement, and returns the batch along with the buffer slots
	// the transitions were drawn from. The slots can be passed to
	// UpdatePriorities after the transitions have been replayed.
	Sample() ([]timestep.Transition, []int, error)

	// UpdatePriorities recomputes the priorities of the transitions
	// at the argument slots from the argument TD errors
	UpdatePriorities(slots []int, tdErrors []float64) error

	// Capacity returns the current number of samples in the buffer
	Capacity() int

	// MaxCapacity returns the maximum allowable samples in the buffer
	MaxCapacity() int

	// MinCapacity returns the number of samples required to be in
	// the buffer before the buffer can be sampled
	MinCapacity() int

	// BatchSize returns the number of samples returned by Sample()
	BatchSize() int
}

// Config describes a specific configuration of an ExperienceReplayer
type Config struct {
	SampleMethod      SelectorType
	PriorityMethod    PriorityType
	BatchSize         int
	MinReplayCapacity int
	MaxReplayCapacity int

	// PriorityExponent and PriorityOffset parameterize the TD-error
	// priorities; NegativePenalty parameterizes the asymmetric
	// priority; ReplayThreshold parameterizes threshold selection
	PriorityExponent float64
	PriorityOffset   float64
	NegativePenalty  float64
	ReplayThreshold  float64
}

// Validate ensures the Config describes a valid ExperienceReplayer
func (c Config) Validate() error {
	if c.MinReplayCapacity <= 0 {
		return fmt.Errorf("config: min replay capacity must be > 0")
	}
	if c.MaxReplayCapacity < 1 {
		return fmt.Errorf("config: max replay capacity must be >= 1")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("config: batch size must be > 0")
	}
	return nil
}

// Create creates and returns the ExperienceReplayer with the specified
// Config for an environment with featureSize states and actions
// actions
func (c Config) Create(featureSize, actions int,
	seed uint64) (ExperienceReplayer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	sampler, err := CreateSelector(c.SampleMethod, c.BatchSize,
		c.ReplayThreshold, seed)
	if err != nil {
		return nil, err
	}

	priority, err := CreatePriority(c.PriorityMethod, c.PriorityExponent,
		c.PriorityOffset, c.NegativePenalty)
	if err != nil {
		return nil, err
	}

	return New(sampler, priority, c.MinReplayCapacity, c.MaxReplayCapacity,
		featureSize, actions)
}

// cache implements a concrete ExperienceReplayer. Transitions are
// stored as state and action indices; one-hot observations are
// reconstructed when sampling. Once the cache is full, new transitions
// overwrite the oldest stored ones (first in, first out).
type cache struct {
	stateCache     []int
	actionCache    []int
	rewardCache    []float64
	discountCache  []float64
	nextStateCache []int

	// priorities holds the stored priority of each in-use slot
	priorities []float64

	// insertCounts tracks how many times each state-action pair was
	// inserted into the cache; replayCounts tracks how many times each
	// pair was drawn by a threshold selector
	insertCounts *mat.Dense
	replayCounts *mat.Dense

	// currentPos is the slot the next transition is written to. Slots
	// [0, Capacity()) always hold data: the cache fills from slot 0
	// and wraps around once full.
	currentPos int
	isFull     bool

	sampler  Selector
	priority Priority

	minCapacity int
	maxCapacity int
	featureSize int
	numActions  int
}

// New creates and returns a new ExperienceReplayer. The sampler
// determines how transitions are drawn from the buffer, and priority
// determines how the stored priorities that samplers may consult are
// computed from TD errors. The featureSize and numActions parameters
// give the number of states and actions of the environment whose
// transitions are stored.
func New(sampler Selector, priority Priority, minCapacity, maxCapacity,
	featureSize, numActions int) (ExperienceReplayer, error) {
	if minCapacity <= 0 {
		return nil, fmt.Errorf("new: minCapacity must be > 0")
	}
	if maxCapacity < 1 {
		return nil, fmt.Errorf("new: maxCapacity must be >= 1")
	}
	if maxCapacity < sampler.BatchSize() {
		return nil, fmt.Errorf("new: cannot have batch size (%v) > max "+
			"buffer capacity (%v)", sampler.BatchSize(), maxCapacity)
	}
	if featureSize < 1 || numActions < 1 {
		return nil, fmt.Errorf("new: need at least one state and one "+
			"action, have %v states and %v actions", featureSize, numActions)
	}

	return &cache{
		stateCache:     make([]int, maxCapacity),
		actionCache:    make([]int, maxCapacity),
		rewardCache:    make([]float64, maxCapacity),
		discountCache:  make([]float64, maxCapacity),
		nextStateCache: make([]int, maxCapacity),

		priorities:   make([]float64, maxCapacity),
		insertCounts: mat.NewDense(featureSize, numActions, nil),
		replayCounts: mat.NewDense(featureSize, numActions, nil),

		sampler:  sampler,
		priority: priority,

		minCapacity: minCapacity,
		maxCapacity: maxCapacity,
		featureSize: featureSize,
		numActions:  numActions,
	}, nil
}

// String returns the string representation of the cache
func (c *cache) String() string {
	baseStr := "States: %v \nActions: %v \nRewards: %v \nDiscounts: %v " +
		"\nNext States: %v \nPriorities: %v"
	n := c.Capacity()
	return fmt.Sprintf(baseStr, c.stateCache[:n], c.actionCache[:n],
		c.rewardCache[:n], c.discountCache[:n], c.nextStateCache[:n],
		c.priorities[:n])
}

// BatchSize returns the number of samples drawn by Sample()
func (c *cache) BatchSize() int {
	return c.sampler.BatchSize()
}

// Capacity returns the current number of transitions in the cache that
// are available for sampling
func (c *cache) Capacity() int {
	if c.isFull {
		return c.maxCapacity
	}
	return c.currentPos
}

// MaxCapacity returns the maximum number of transitions that are
// allowed in the cache
func (c *cache) MaxCapacity() int {
	return c.maxCapacity
}

// MinCapacity returns the minimum number of transitions required in
// the cache before sampling is allowed
func (c *cache) MinCapacity() int {
	return c.minCapacity
}

// Add adds a transition to the cache, overwriting the oldest stored
// transition if the cache is full
func (c *cache) Add(t timestep.Transition, tdError float64) error {
	if t.State.Len() != c.featureSize || t.NextState.Len() != c.featureSize {
		return fmt.Errorf("add: invalid feature size \n\twant(%v)"+
			"\n\thave(%v)", c.featureSize, t.State.Len())
	}
	if t.Action < 0 || t.Action >= c.numActions {
		return fmt.Errorf("add: invalid action %d ∉ [0, %d)", t.Action,
			c.numActions)
	}

	state := matutils.OneHotIndex(t.State)
	nextState := matutils.OneHotIndex(t.NextState)
	if state < 0 || nextState < 0 {
		return fmt.Errorf("add: observations must be one-hot state " +
			"encodings")
	}

	slot := c.currentPos
	c.stateCache[slot] = state
	c.actionCache[slot] = t.Action
	c.rewardCache[slot] = t.Reward
	c.discountCache[slot] = t.Discount
	c.nextStateCache[slot] = nextState
	c.priorities[slot] = c.priority.priorityOf(tdError)

	c.insertCounts.Set(state, t.Action,
		c.insertCounts.At(state, t.Action)+1)

	c.currentPos++
	if c.currentPos == c.maxCapacity {
		c.currentPos = 0
		c.isFull = true
	}
	return nil
}

// Sample draws a batch of transitions from the cache, with
// replacement, returning the batch and the slots the transitions were
// drawn from
func (c *cache) Sample() ([]timestep.Transition, []int, error) {
	if c.Capacity() == 0 {
		err := &ExpReplayError{
			Op:  "sample",
			Err: errEmptyCache,
		}
		return nil, nil, err
	}
	if c.Capacity() < c.MinCapacity() {
		err := &ExpReplayError{
			Op:  "sample",
			Err: errInsufficientSamples,
		}
		return nil, nil, err
	}

	slots := c.sampler.choose(c)

	batch := make([]timestep.Transition, len(slots))
	for i, slot := range slots {
		batch[i] = timestep.Transition{
			State:     matutils.OneHot(c.stateCache[slot], c.featureSize),
			Action:    c.actionCache[slot],
			Reward:    c.rewardCache[slot],
			Discount:  c.discountCache[slot],
			NextState: matutils.OneHot(c.nextStateCache[slot], c.featureSize),
		}
	}
	return batch, slots, nil
}

// UpdatePriorities recomputes the priorities of the transitions at the
// argument slots from the argument TD errors. Slots are those returned
// by Sample().
func (c *cache) UpdatePriorities(slots []int, tdErrors []float64) error {
	if len(slots) != len(tdErrors) {
		return fmt.Errorf("updatePriorities: got %d slots but %d TD "+
			"errors", len(slots), len(tdErrors))
	}

	for i, slot := range slots {
		if slot < 0 || slot >= c.Capacity() {
			return fmt.Errorf("updatePriorities: slot %d ∉ [0, %d)", slot,
				c.Capacity())
		}
		c.priorities[slot] = c.priority.priorityOf(tdErrors[i])
	}
	return nil
}
