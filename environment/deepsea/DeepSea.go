// Package deepsea implements the Deep Sea diving environment
//
// Deep Sea is an N x N grid. A diver starts at the surface in the
// top-left cell and sinks by one row on every step. The only choice at
// each step is to drift left or to swim right: swimming right costs a
// small amount of energy, and a treasure lies in the bottom-right
// corner. The only rewarding policy is to swim right on every step,
// paying the cost the whole way down, which makes the treasure
// transition very rare under random exploration.
//
// Observations are one-hot vectors over the N x N cells. Episodes are
// exactly N-1 steps long: the episode ends when the diver reaches the
// bottom row.
package deepsea

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/deepsea-rl/deepsea/environment"
	"github.com/deepsea-rl/deepsea/timestep"
	"github.com/deepsea-rl/deepsea/utils/matutils"
)

// Discrete actions available to the diver
const (
	ActionLeft int = iota
	ActionRight
)

// NumActions is the size of the Deep Sea action set
const NumActions = 2

// DeepSea implements the Deep Sea environment
//
// The grid is represented as a flattened matrix in row-major order,
// but only the grid size and the diver's current position are tracked.
type DeepSea struct {
	environment.Task
	environment.Starter
	size        int
	position    int
	discount    float64
	currentStep timestep.TimeStep
}

// New creates a new Deep Sea environment of the argument grid size with
// task t, discount factor discount, and starting state distribution s.
// The environment is returned along with the first timestep of the
// first episode.
func New(size int, t environment.Task, discount float64,
	s environment.Starter) (*DeepSea, timestep.TimeStep, error) {
	if size < 2 {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: grid size must "+
			"be at least 2, got %d", size)
	}
	if discount <= 0 || discount > 1 {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: discount must be "+
			"in (0, 1], got %v", discount)
	}

	d := &DeepSea{
		Task:     t,
		Starter:  s,
		size:     size,
		discount: discount,
	}
	return d, d.Reset(), nil
}

// Size returns the number of rows (= columns) in the grid
func (d *DeepSea) Size() int {
	return d.size
}

// At checks the value at position (row, col) in the grid. A value of
// 1.0 indicates that the diver is at position (row, col).
func (d *DeepSea) At(row, col int) float64 {
	if cToInd(row, col, d.size) == d.position {
		return 1.0
	}
	return 0.0
}

// Reset resets the environment to a start state and returns the first
// timestep of the new episode
func (d *DeepSea) Reset() timestep.TimeStep {
	startVec := d.Start()
	d.position = matutils.OneHotIndex(startVec)

	startStep := timestep.New(timestep.First, 0, d.discount,
		d.getObservation(), 0)
	d.currentStep = startStep
	return startStep
}

// Step takes one environmental transition given a discrete action
// index, returning the timestep the action led to and whether that
// timestep is the last in the episode
func (d *DeepSea) Step(action int) (timestep.TimeStep, bool, error) {
	if action < 0 || action >= NumActions {
		return timestep.TimeStep{}, false, fmt.Errorf("step: invalid "+
			"action %d ∉ [0, %d)", action, NumActions)
	}
	if d.currentStep.Last() {
		return timestep.TimeStep{}, false, fmt.Errorf("step: cannot step " +
			"in a completed episode, call Reset first")
	}

	reward := d.GetReward(d.currentStep, action)

	row, col := indToC(d.position, d.size)
	d.position = cToInd(row+1, move(col, action, d.size), d.size)

	// The diver sinks one row per step, so reaching the bottom row
	// ends the episode
	stepType := timestep.Mid
	discount := d.discount
	if row+1 == d.size-1 {
		stepType = timestep.Last
		discount = 0
	}

	number := d.currentStep.Number + 1
	step := timestep.New(stepType, reward, discount, d.getObservation(),
		number)
	d.currentStep = step

	return step, stepType == timestep.Last, nil
}

// RewardSpec returns the reward specification of the environment
func (d *DeepSea) RewardSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{d.Min()})
	upperBound := mat.NewVecDense(1, []float64{d.Max()})

	return environment.NewSpec(shape, environment.Reward, lowerBound,
		upperBound, environment.Continuous)
}

// DiscountSpec returns the discount specification of the environment
func (d *DeepSea) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, nil)
	upperBound := mat.NewVecDense(1, []float64{d.discount})

	return environment.NewSpec(shape, environment.Discount, lowerBound,
		upperBound, environment.Continuous)
}

// ObservationSpec returns the observation specification of the
// environment. Observations are one-hot vectors over the grid cells.
func (d *DeepSea) ObservationSpec() environment.Spec {
	cells := d.size * d.size
	shape := mat.NewVecDense(cells, nil)
	lowerBound := mat.NewVecDense(cells, nil)

	ones := make([]float64, cells)
	for i := range ones {
		ones[i] = 1.0
	}
	upperBound := mat.NewVecDense(cells, ones)

	return environment.NewSpec(shape, environment.Observation, lowerBound,
		upperBound, environment.Discrete)
}

// ActionSpec returns the action specification of the environment
func (d *DeepSea) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{float64(ActionLeft)})
	upperBound := mat.NewVecDense(1, []float64{float64(NumActions - 1)})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Discrete)
}

// String returns a string representation of the environment
func (d *DeepSea) String() string {
	row, col := indToC(d.position, d.size)
	return fmt.Sprintf("DeepSea | size: %d  |  Position: (%d, %d)",
		d.size, row, col)
}

// getObservation returns the one-hot observation of the current
// position
func (d *DeepSea) getObservation() mat.Vector {
	return matutils.OneHot(d.position, d.size*d.size)
}

// move returns the column the diver occupies after taking action in
// column col. Columns are clamped to the grid.
func move(col, action, size int) int {
	if action == ActionRight {
		if col+1 < size {
			return col + 1
		}
		return col
	}
	if col-1 >= 0 {
		return col - 1
	}
	return col
}

// cToInd converts (row, col) coordinates to a flat row-major index
func cToInd(row, col, size int) int {
	return row*size + col
}

// indToC converts a flat row-major index to (row, col) coordinates
func indToC(ind, size int) (row, col int) {
	return ind / size, ind % size
}
