package expreplay

import (
	"fmt"
	"math"
)

// PriorityType determines how a stored priority is computed from the
// TD error of a transition
type PriorityType string

const (
	// ConstantPriority assigns every transition the same priority.
	// With a uniform sampler this is standard experience replay.
	ConstantPriority PriorityType = "ConstantPriority"

	// TDErrorPriority assigns priority (|δ| + offset)^exponent
	TDErrorPriority PriorityType = "TDErrorPriority"

	// AsymmetricTDErrorPriority is TDErrorPriority with negative TD
	// errors scaled down by a penalty factor before the priority is
	// computed, so that positive surprises are replayed more often
	// than equally large negative ones
	AsymmetricTDErrorPriority PriorityType = "AsymmetricTDErrorPriority"

	// SoftmaxTDErrorPriority assigns priority exp(|δ|)
	SoftmaxTDErrorPriority PriorityType = "SoftmaxTDErrorPriority"
)

// Priority computes the stored priority of a transition from its TD
// error. Priorities must be strictly positive so that every transition
// in the buffer keeps a non-zero probability of being sampled.
type Priority interface {
	priorityOf(tdError float64) float64
}

// CreatePriority is a factory for creating a Priority of the argument
// type. The exponent and offset arguments are used by the TD-error
// priorities; penalty is used by the asymmetric priority only.
func CreatePriority(t PriorityType, exponent, offset,
	penalty float64) (Priority, error) {
	switch t {
	case ConstantPriority:
		return NewConstantPriority(), nil

	case TDErrorPriority:
		return NewTDErrorPriority(exponent, offset)

	case AsymmetricTDErrorPriority:
		return NewAsymmetricTDErrorPriority(exponent, offset, penalty)

	case SoftmaxTDErrorPriority:
		return NewSoftmaxTDErrorPriority(), nil
	}
	return nil, fmt.Errorf("createPriority: no such priority type %v", t)
}

// constantPriority assigns every transition priority 1
type constantPriority struct{}

// NewConstantPriority returns a Priority that assigns every transition
// the same priority
func NewConstantPriority() Priority {
	return constantPriority{}
}

func (constantPriority) priorityOf(float64) float64 {
	return 1.0
}

// tdErrorPriority assigns priority (|δ| + offset)^exponent
type tdErrorPriority struct {
	exponent float64
	offset   float64
}

// NewTDErrorPriority returns a Priority that computes priorities
// proportional to the magnitude of the TD error. The offset keeps
// every priority non-zero and must be positive; the exponent controls
// how strongly large errors dominate the sampling distribution.
func NewTDErrorPriority(exponent, offset float64) (Priority, error) {
	if offset <= 0 {
		return nil, fmt.Errorf("newTDErrorPriority: offset must be "+
			"positive, got %v", offset)
	}
	if exponent < 0 {
		return nil, fmt.Errorf("newTDErrorPriority: exponent must be "+
			"non-negative, got %v", exponent)
	}
	return tdErrorPriority{exponent, offset}, nil
}

func (t tdErrorPriority) priorityOf(tdError float64) float64 {
	return math.Pow(math.Abs(tdError)+t.offset, t.exponent)
}

// asymmetricTDErrorPriority scales negative TD errors by a penalty in
// (0, 1) before computing the TD-error priority
type asymmetricTDErrorPriority struct {
	penalty float64
	inner   tdErrorPriority
}

// NewAsymmetricTDErrorPriority returns a Priority that prioritizes
// positive and negative surprises differently: negative TD errors are
// scaled by penalty before the (|δ| + offset)^exponent priority is
// computed
func NewAsymmetricTDErrorPriority(exponent, offset,
	penalty float64) (Priority, error) {
	if penalty <= 0 || penalty >= 1 {
		return nil, fmt.Errorf("newAsymmetricTDErrorPriority: penalty "+
			"must be in (0, 1), got %v", penalty)
	}

	inner, err := NewTDErrorPriority(exponent, offset)
	if err != nil {
		return nil, err
	}
	return asymmetricTDErrorPriority{penalty, inner.(tdErrorPriority)}, nil
}

func (a asymmetricTDErrorPriority) priorityOf(tdError float64) float64 {
	if tdError < 0 {
		tdError *= a.penalty
	}
	return a.inner.priorityOf(tdError)
}

// softmaxTDErrorPriority assigns priority exp(|δ|)
type softmaxTDErrorPriority struct{}

// NewSoftmaxTDErrorPriority returns a Priority that computes
// priorities as the exponential of the TD error magnitude
func NewSoftmaxTDErrorPriority() Priority {
	return softmaxTDErrorPriority{}
}

func (softmaxTDErrorPriority) priorityOf(tdError float64) float64 {
	return math.Exp(math.Abs(tdError))
}
