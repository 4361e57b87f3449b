// Package schedule implements per-episode parameter schedules, used
// for step sizes and exploration rates. Schedules hold their current
// value fixed within an episode and decay it at episode boundaries,
// and decaying schedules are never increasing.
package schedule

import (
	"fmt"
	"math"
)

// Schedule provides the current value of a scheduled parameter.
// EndEpisode advances the schedule at an episode boundary.
type Schedule interface {
	Value() float64
	EndEpisode()
}

// constant is a Schedule whose value never changes
type constant struct {
	value float64
}

// NewConstant returns a Schedule fixed at the argument value for an
// entire run
func NewConstant(value float64) (Schedule, error) {
	if value <= 0 {
		return nil, fmt.Errorf("newConstant: value must be positive, "+
			"got %v", value)
	}
	return &constant{value}, nil
}

func (c *constant) Value() float64 {
	return c.value
}

func (c *constant) EndEpisode() {}

// exponential is a Schedule whose value is scaled by a fixed decay
// factor at each episode boundary, floored at a minimum value
type exponential struct {
	value float64
	decay float64
	min   float64
}

// NewExponential returns a Schedule starting at initial and multiplied
// by decay at every episode boundary, never falling below min. A decay
// of 1 gives a constant schedule.
func NewExponential(initial, decay, min float64) (Schedule, error) {
	if initial <= 0 {
		return nil, fmt.Errorf("newExponential: initial value must be "+
			"positive, got %v", initial)
	}
	if decay <= 0 || decay > 1 {
		return nil, fmt.Errorf("newExponential: decay must be in (0, 1], "+
			"got %v", decay)
	}
	if min < 0 || min > initial {
		return nil, fmt.Errorf("newExponential: min must be in [0, %v], "+
			"got %v", initial, min)
	}
	return &exponential{initial, decay, min}, nil
}

func (e *exponential) Value() float64 {
	return e.value
}

func (e *exponential) EndEpisode() {
	e.value *= e.decay
	if e.value < e.min {
		e.value = e.min
	}
}

// polynomial is a Schedule whose value on episode n (counted from 0)
// is initial / (n + 1)^power
type polynomial struct {
	initial float64
	power   float64
	episode int
}

// NewPolynomial returns a Schedule that decays polynomially in the
// episode number: on episode n the value is initial / (n + 1)^power
func NewPolynomial(initial, power float64) (Schedule, error) {
	if initial <= 0 {
		return nil, fmt.Errorf("newPolynomial: initial value must be "+
			"positive, got %v", initial)
	}
	if power < 0 {
		return nil, fmt.Errorf("newPolynomial: power must be "+
			"non-negative, got %v", power)
	}
	return &polynomial{initial: initial, power: power}, nil
}

func (p *polynomial) Value() float64 {
	return p.initial / math.Pow(float64(p.episode+1), p.power)
}

func (p *polynomial) EndEpisode() {
	p.episode++
}
