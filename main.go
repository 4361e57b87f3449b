// Compares experience-replay strategies for tabular Q-Learning on the
// Deep Sea environment. Each strategy trains a fresh agent from the
// same seed, so runs differ only in how the replay buffer samples
// transitions.
package main

import (
	"fmt"
	"log"

	"github.com/samuelfneumann/progressbar"

	"github.com/deepsea-rl/deepsea/agent/tabular/qlearning"
	"github.com/deepsea-rl/deepsea/environment/deepsea"
	"github.com/deepsea-rl/deepsea/experiment"
	"github.com/deepsea-rl/deepsea/experiment/trackers"
	"github.com/deepsea-rl/deepsea/expreplay"
	"github.com/deepsea-rl/deepsea/utils/intutils"
)

const (
	seed uint64 = 192382

	gridSize = 10
	episodes = 2000
	discount = 0.99

	moveCost       = 0.01
	treasureReward = 1.0
)

func main() {
	strategies := []struct {
		name   string
		replay expreplay.Config
	}{
		{"uniform", replayConfig(expreplay.UniformSelection,
			expreplay.ConstantPriority)},
		{"prioritized", replayConfig(expreplay.ProportionalSelection,
			expreplay.TDErrorPriority)},
		{"asymmetric", replayConfig(expreplay.ProportionalSelection,
			expreplay.AsymmetricTDErrorPriority)},
		{"rare", replayConfig(expreplay.RaritySelection,
			expreplay.TDErrorPriority)},
		{"threshold", replayConfig(expreplay.ThresholdSelection,
			expreplay.TDErrorPriority)},
		{"softmax", replayConfig(expreplay.ProportionalSelection,
			expreplay.SoftmaxTDErrorPriority)},
	}

	for _, strategy := range strategies {
		fmt.Printf("== %v\n", strategy.name)
		run(strategy.name, strategy.replay)
	}
}

// run trains one agent with the argument replay strategy and prints
// the returns of its final episodes
func run(name string, replay expreplay.Config) {
	// Create the environment
	start, err := deepsea.NewSingleStart(0, 0, gridSize)
	if err != nil {
		log.Fatalf("could not create starter: %v", err)
	}
	task, err := deepsea.NewTreasure(gridSize, moveCost, treasureReward)
	if err != nil {
		log.Fatalf("could not create task: %v", err)
	}
	env, _, err := deepsea.New(gridSize, task, discount, start)
	if err != nil {
		log.Fatalf("could not create environment: %v", err)
	}

	// Create the learning algorithm
	args := qlearning.Config{
		Epsilon:      1.0,
		EpsilonDecay: 0.997,
		MinEpsilon:   0.01,

		LearningRate:      0.1,
		LearningRateDecay: 0.999,
		MinLearningRate:   0.001,

		Replay: replay,
	}
	q, err := args.CreateAgent(env, seed)
	if err != nil {
		log.Fatalf("could not create agent: %v", err)
	}

	// Every episode is exactly gridSize-1 steps long
	maxSteps := uint(episodes * (gridSize - 1))

	returnsFile := fmt.Sprintf("%v_returns.bin", name)
	lengthsFile := fmt.Sprintf("%v_lengths.bin", name)
	e := experiment.NewOnline(env, q, maxSteps,
		trackers.NewReturn(returnsFile),
		trackers.NewEpisodeLength(lengthsFile))

	pbar := progressbar.NewManual(40, episodes)
	ended := false
	for !ended {
		ended, err = e.RunEpisode()
		if err != nil {
			log.Fatalf("could not run episode: %v", err)
		}
		pbar.Increment()
		pbar.Display()
	}
	e.Save()
	fmt.Println()

	data := trackers.LoadData(returnsFile)
	tail := intutils.Min(10, len(data))
	fmt.Println(data[len(data)-tail:])
}

// replayConfig returns the replay buffer configuration shared by every
// strategy under comparison, specialized to the argument sampling and
// priority methods
func replayConfig(sample expreplay.SelectorType,
	priority expreplay.PriorityType) expreplay.Config {
	return expreplay.Config{
		SampleMethod:      sample,
		PriorityMethod:    priority,
		BatchSize:         8,
		MinReplayCapacity: 1,
		MaxReplayCapacity: 1024,

		PriorityExponent: 0.7,
		PriorityOffset:   0.01,
		NegativePenalty:  0.5,
		ReplayThreshold:  16,
	}
}
