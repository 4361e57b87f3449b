package policy

import "github.com/deepsea-rl/deepsea/environment"

// Greedy implements a greedy policy over a table of action values.
// A Greedy policy is an EGreedy policy with ε = 0.
type Greedy struct {
	*EGreedy
}

// NewGreedy constructs a new Greedy policy
func NewGreedy(seed uint64, env environment.Environment) (*Greedy, error) {
	egreedy, err := NewEGreedy(0.0, seed, env)
	if err != nil {
		return nil, err
	}
	return &Greedy{egreedy}, nil
}
