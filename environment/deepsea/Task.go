package deepsea

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/deepsea-rl/deepsea/timestep"
	"github.com/deepsea-rl/deepsea/utils/floatutils"
	"github.com/deepsea-rl/deepsea/utils/matutils"
)

// Treasure represents the task of reaching the treasure in the
// bottom-right corner of a Deep Sea grid. Swimming right costs
// moveCost/size reward on every step; the treasure is worth
// treasureReward.
type Treasure struct {
	size           int
	moveCost       float64
	treasureReward float64
}

// NewTreasure creates and returns a new Treasure task for a grid of
// the argument size. The moveCost argument is the unscaled cost of
// swimming right; each right move costs moveCost/size so that the
// total cost of the rewarding dive stays constant across grid sizes.
func NewTreasure(size int, moveCost, treasureReward float64) (*Treasure,
	error) {
	if size < 2 {
		return nil, fmt.Errorf("newTreasure: grid size must be at least "+
			"2, got %d", size)
	}
	if moveCost < 0 {
		return nil, fmt.Errorf("newTreasure: move cost must be "+
			"non-negative, got %v", moveCost)
	}

	return &Treasure{size, moveCost, treasureReward}, nil
}

// GetReward returns the reward for taking the argument action on the
// argument timestep
func (g *Treasure) GetReward(t timestep.TimeStep, action int) float64 {
	row, col := indToC(matutils.OneHotIndex(t.Observation), g.size)

	reward := 0.0
	if action == ActionRight {
		reward -= g.moveCost / float64(g.size)
	}

	nextRow, nextCol := row+1, move(col, action, g.size)
	if nextRow == g.size-1 && nextCol == g.size-1 {
		reward += g.treasureReward
	}

	return reward
}

// AtGoal returns whether the argument state is the treasure state
func (g *Treasure) AtGoal(state mat.Vector) bool {
	return matutils.OneHotIndex(state) == cToInd(g.size-1, g.size-1, g.size)
}

// Min returns the minimum reward attainable in the Task
func (g *Treasure) Min() float64 {
	return floatutils.Min(0.0, -g.moveCost/float64(g.size))
}

// Max returns the maximum reward attainable in the Task
func (g *Treasure) Max() float64 {
	return floatutils.Max(0.0, g.treasureReward)
}

// String returns the Treasure task as a string
func (g *Treasure) String() string {
	return fmt.Sprintf("Treasure | Reward: %v  |  Move cost: %v",
		g.treasureReward, g.moveCost/float64(g.size))
}
