package deepsea

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/deepsea-rl/deepsea/environment"
	"github.com/deepsea-rl/deepsea/utils/matutils"
)

// SingleStart implements a starting state distribution concentrated on
// a single cell of a Deep Sea grid
type SingleStart struct {
	state mat.Vector
}

// NewSingleStart returns a Starter that always starts episodes at
// position (row, col) in a grid of the argument size
func NewSingleStart(row, col, size int) (environment.Starter, error) {
	if row < 0 || row >= size {
		return nil, fmt.Errorf("newSingleStart: row = %d ∉ [0, %d)", row,
			size)
	}
	if col < 0 || col >= size {
		return nil, fmt.Errorf("newSingleStart: col = %d ∉ [0, %d)", col,
			size)
	}

	start := matutils.OneHot(cToInd(row, col, size), size*size)
	return &SingleStart{start}, nil
}

// Start returns the starting state
func (s *SingleStart) Start() mat.Vector {
	return s.state
}
