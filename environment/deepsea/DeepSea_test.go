package deepsea

import (
	"math"
	"testing"

	"github.com/deepsea-rl/deepsea/timestep"
	"github.com/deepsea-rl/deepsea/utils/matutils"
)

const (
	testMoveCost       = 0.01
	testTreasureReward = 1.0
)

func newTestEnv(t *testing.T, size int) (*DeepSea, timestep.TimeStep) {
	t.Helper()

	starter, err := NewSingleStart(0, 0, size)
	if err != nil {
		t.Fatalf("could not create starter: %v", err)
	}
	task, err := NewTreasure(size, testMoveCost, testTreasureReward)
	if err != nil {
		t.Fatalf("could not create task: %v", err)
	}
	env, first, err := New(size, task, 1.0, starter)
	if err != nil {
		t.Fatalf("could not create environment: %v", err)
	}
	return env, first
}

func TestNewValidatesArguments(t *testing.T) {
	starter, err := NewSingleStart(0, 0, 3)
	if err != nil {
		t.Fatalf("could not create starter: %v", err)
	}
	task, err := NewTreasure(3, testMoveCost, testTreasureReward)
	if err != nil {
		t.Fatalf("could not create task: %v", err)
	}

	if _, _, err := New(1, task, 1.0, starter); err == nil {
		t.Error("expected error on grid size < 2")
	}
	if _, _, err := New(3, task, 0, starter); err == nil {
		t.Error("expected error on non-positive discount")
	}
	if _, _, err := New(3, task, 1.5, starter); err == nil {
		t.Error("expected error on discount > 1")
	}
}

func TestResetStartsAtTopLeft(t *testing.T) {
	env, first := newTestEnv(t, 3)

	if !first.First() {
		t.Errorf("first timestep has step type %v", first)
	}
	if first.Number != 0 {
		t.Errorf("first timestep has number %d, want 0", first.Number)
	}
	if matutils.OneHotIndex(first.Observation) != 0 {
		t.Errorf("diver should start at cell 0, got %d",
			matutils.OneHotIndex(first.Observation))
	}
	if env.At(0, 0) != 1.0 {
		t.Error("diver not at (0, 0) after reset")
	}
}

// The diver sinks one row per step, shifting column by the chosen
// action, so transitions are fully deterministic.
func TestStepDynamics(t *testing.T) {
	env, _ := newTestEnv(t, 4)

	step, done, err := env.Step(ActionRight)
	if err != nil {
		t.Fatalf("could not step: %v", err)
	}
	if done || !step.Mid() {
		t.Error("episode ended before the bottom row")
	}
	if got := matutils.OneHotIndex(step.Observation); got != cToInd(1, 1, 4) {
		t.Errorf("diver at cell %d after swimming right, want %d", got,
			cToInd(1, 1, 4))
	}

	// Drifting left at column 0 keeps the diver at column 0
	step, _, err = env.Step(ActionLeft)
	if err != nil {
		t.Fatalf("could not step: %v", err)
	}
	if got := matutils.OneHotIndex(step.Observation); got != cToInd(2, 0, 4) {
		t.Errorf("diver at cell %d after drifting left, want %d", got,
			cToInd(2, 0, 4))
	}
}

// Episodes last exactly size-1 steps: one per row below the surface.
func TestEpisodeLength(t *testing.T) {
	size := 5
	env, _ := newTestEnv(t, size)

	var last timestep.TimeStep
	for i := 0; i < size-1; i++ {
		step, done, err := env.Step(ActionLeft)
		if err != nil {
			t.Fatalf("could not step: %v", err)
		}
		if done != (i == size-2) {
			t.Errorf("done = %v on step %d", done, i+1)
		}
		last = step
	}

	if !last.Last() {
		t.Errorf("final timestep has step type %v", last)
	}
	if last.Discount != 0 {
		t.Errorf("final timestep has discount %v, want 0", last.Discount)
	}
	if last.Number != size-1 {
		t.Errorf("final timestep has number %d, want %d", last.Number, size-1)
	}

	if _, _, err := env.Step(ActionLeft); err == nil {
		t.Error("expected error when stepping a completed episode")
	}

	// Reset starts a fresh episode
	first := env.Reset()
	if !first.First() || matutils.OneHotIndex(first.Observation) != 0 {
		t.Error("reset did not restart the episode at the surface")
	}
	if _, _, err := env.Step(ActionRight); err != nil {
		t.Errorf("could not step after reset: %v", err)
	}
}

func TestStepRejectsInvalidAction(t *testing.T) {
	env, _ := newTestEnv(t, 3)

	if _, _, err := env.Step(-1); err == nil {
		t.Error("expected error on action -1")
	}
	if _, _, err := env.Step(NumActions); err == nil {
		t.Errorf("expected error on action %d", NumActions)
	}
}

// Swimming right on every step pays the move cost the whole way down
// and collects the treasure on the final step.
func TestRewards(t *testing.T) {
	size := 3
	env, _ := newTestEnv(t, size)
	moveCost := testMoveCost / float64(size)

	step, _, err := env.Step(ActionRight)
	if err != nil {
		t.Fatalf("could not step: %v", err)
	}
	if math.Abs(step.Reward+moveCost) > 1e-15 {
		t.Errorf("right move rewarded %v, want %v", step.Reward, -moveCost)
	}

	step, done, err := env.Step(ActionRight)
	if err != nil {
		t.Fatalf("could not step: %v", err)
	}
	if !done {
		t.Error("episode should end at the bottom row")
	}
	want := testTreasureReward - moveCost
	if math.Abs(step.Reward-want) > 1e-15 {
		t.Errorf("treasure step rewarded %v, want %v", step.Reward, want)
	}

	if !env.AtGoal(step.Observation) {
		t.Error("diver should be at the treasure cell")
	}

	// Drifting left is free
	env.Reset()
	step, _, err = env.Step(ActionLeft)
	if err != nil {
		t.Fatalf("could not step: %v", err)
	}
	if step.Reward != 0 {
		t.Errorf("left move rewarded %v, want 0", step.Reward)
	}
}

func TestTreasureValidatesArguments(t *testing.T) {
	if _, err := NewTreasure(1, testMoveCost, testTreasureReward); err == nil {
		t.Error("expected error on grid size < 2")
	}
	if _, err := NewTreasure(3, -0.5, testTreasureReward); err == nil {
		t.Error("expected error on negative move cost")
	}
}

func TestSingleStartValidatesArguments(t *testing.T) {
	if _, err := NewSingleStart(3, 0, 3); err == nil {
		t.Error("expected error on out-of-range row")
	}
	if _, err := NewSingleStart(0, -1, 3); err == nil {
		t.Error("expected error on out-of-range col")
	}
}
