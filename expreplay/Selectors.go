package expreplay

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// SelectorType determines how transitions are drawn from an experience
// replay buffer
type SelectorType string

const (
	// UniformSelection draws transitions uniformly randomly,
	// ignoring priorities
	UniformSelection SelectorType = "UniformSelection"

	// ProportionalSelection draws transitions with probability
	// proportional to their stored priorities
	ProportionalSelection SelectorType = "ProportionalSelection"

	// RaritySelection draws transitions with probability proportional
	// to their stored priorities divided by the number of times the
	// transition's state-action pair was inserted into the buffer, so
	// that rare transitions are replayed more often
	RaritySelection SelectorType = "RaritySelection"

	// ThresholdSelection draws transitions with probability
	// proportional to their stored priorities, but only from
	// transitions whose state-action pair has been replayed fewer
	// times than a threshold. When every stored transition has reached
	// the threshold, selection falls back to plain proportional
	// selection.
	ThresholdSelection SelectorType = "ThresholdSelection"
)

// Selector implements functionality for choosing which transitions are
// sampled from an experience replay buffer
type Selector interface {
	// choose selects the slots at which transitions should be sampled
	// from the experience replay buffer. Slots may repeat: selection
	// is with replacement.
	choose(c *cache) []int

	// BatchSize returns the number of elements that will be selected
	BatchSize() int
}

// CreateSelector is a factory for creating a Selector of the argument
// type, selecting batchSize transitions per call. The threshold
// argument is used by ThresholdSelection only.
func CreateSelector(t SelectorType, batchSize int, threshold float64,
	seed uint64) (Selector, error) {
	switch t {
	case UniformSelection:
		return NewUniformSelector(batchSize, seed), nil

	case ProportionalSelection:
		return NewProportionalSelector(batchSize, seed), nil

	case RaritySelection:
		return NewRaritySelector(batchSize, seed), nil

	case ThresholdSelection:
		return NewThresholdSelector(batchSize, threshold, seed)
	}
	return nil, fmt.Errorf("createSelector: no such selector type %v", t)
}

// uniformSelector is a Selector which selects transitions from an
// experience replay buffer uniformly randomly
type uniformSelector struct {
	samples int
	rng     *rand.Rand
}

// NewUniformSelector returns a new Selector which selects transitions
// uniformly randomly from an experience replay buffer
func NewUniformSelector(samples int, seed uint64) Selector {
	return &uniformSelector{samples: samples, rng: rand.New(rand.NewSource(seed))}
}

// BatchSize gets the number of samples in a batch drawn from the buffer
func (u *uniformSelector) BatchSize() int {
	return u.samples
}

// choose selects the slots at which to draw transitions from the
// buffer
func (u *uniformSelector) choose(c *cache) []int {
	selected := make([]int, u.BatchSize())
	for i := range selected {
		selected[i] = u.rng.Intn(c.Capacity())
	}
	return selected
}

// proportionalSelector is a Selector which selects transitions with
// probability proportional to their priorities
type proportionalSelector struct {
	samples int
	source  rand.Source
}

// NewProportionalSelector returns a new Selector which selects
// transitions with probability proportional to their priorities
func NewProportionalSelector(samples int, seed uint64) Selector {
	return &proportionalSelector{samples: samples, source: rand.NewSource(seed)}
}

// BatchSize gets the number of samples in a batch drawn from the buffer
func (p *proportionalSelector) BatchSize() int {
	return p.samples
}

// choose selects the slots at which to draw transitions from the
// buffer
func (p *proportionalSelector) choose(c *cache) []int {
	return drawCategorical(c.priorities[:c.Capacity()], p.BatchSize(),
		p.source)
}

// raritySelector is a Selector which down-weights the priorities of
// transitions whose state-action pairs occur often in the buffer's
// insertion history
type raritySelector struct {
	samples int
	source  rand.Source
}

// NewRaritySelector returns a new Selector which selects transitions
// with probability proportional to their priorities scaled by the
// inverse insertion count of their state-action pairs
func NewRaritySelector(samples int, seed uint64) Selector {
	return &raritySelector{samples: samples, source: rand.NewSource(seed)}
}

// BatchSize gets the number of samples in a batch drawn from the buffer
func (r *raritySelector) BatchSize() int {
	return r.samples
}

// choose selects the slots at which to draw transitions from the
// buffer
func (r *raritySelector) choose(c *cache) []int {
	weights := make([]float64, c.Capacity())
	for i := range weights {
		count := c.insertCounts.At(c.stateCache[i], c.actionCache[i])
		weights[i] = c.priorities[i] / count
	}
	return drawCategorical(weights, r.BatchSize(), r.source)
}

// thresholdSelector is a Selector which masks out transitions whose
// state-action pairs have already been replayed threshold or more
// times
type thresholdSelector struct {
	samples   int
	threshold float64
	source    rand.Source
}

// NewThresholdSelector returns a new Selector which only selects
// transitions whose state-action pairs have been replayed fewer than
// threshold times, proportionally to their priorities. Replay counts
// are tracked per state-action pair, not per buffer slot.
func NewThresholdSelector(samples int, threshold float64,
	seed uint64) (Selector, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("newThresholdSelector: threshold must be "+
			"positive, got %v", threshold)
	}
	return &thresholdSelector{
		samples:   samples,
		threshold: threshold,
		source:    rand.NewSource(seed),
	}, nil
}

// BatchSize gets the number of samples in a batch drawn from the buffer
func (t *thresholdSelector) BatchSize() int {
	return t.samples
}

// choose selects the slots at which to draw transitions from the
// buffer, counting each selection against the replay budget of the
// selected state-action pair
func (t *thresholdSelector) choose(c *cache) []int {
	weights := make([]float64, c.Capacity())
	masked := 0.0
	for i := range weights {
		if c.replayCounts.At(c.stateCache[i], c.actionCache[i]) < t.threshold {
			weights[i] = c.priorities[i]
			masked += weights[i]
		}
	}

	// Every stored pair has used up its replay budget, so fall back
	// to the unmasked priorities
	if masked == 0 {
		copy(weights, c.priorities[:c.Capacity()])
	}

	selected := drawCategorical(weights, t.BatchSize(), t.source)
	for _, slot := range selected {
		state, action := c.stateCache[slot], c.actionCache[slot]
		c.replayCounts.Set(state, action, c.replayCounts.At(state, action)+1)
	}
	return selected
}

// drawCategorical draws n indices, with replacement, from the
// categorical distribution defined by the argument weights. The
// weights need not be normalized.
func drawCategorical(weights []float64, n int, source rand.Source) []int {
	dist := distuv.NewCategorical(weights, source)

	selected := make([]int, n)
	for i := range selected {
		selected[i] = int(dist.Rand())
	}
	return selected
}
