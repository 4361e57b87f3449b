package expreplay

import (
	"testing"

	"github.com/deepsea-rl/deepsea/timestep"
	"github.com/deepsea-rl/deepsea/utils/matutils"
)

const (
	testFeatures = 4
	testActions  = 2
)

// transition returns a transition between the argument state indices
func transition(state, action, nextState int, reward float64) timestep.Transition {
	return timestep.Transition{
		State:     matutils.OneHot(state, testFeatures),
		Action:    action,
		Reward:    reward,
		Discount:  1.0,
		NextState: matutils.OneHot(nextState, testFeatures),
	}
}

func newTestCache(t *testing.T, sampler Selector, priority Priority,
	minCapacity, maxCapacity int) ExperienceReplayer {
	t.Helper()

	buffer, err := New(sampler, priority, minCapacity, maxCapacity,
		testFeatures, testActions)
	if err != nil {
		t.Fatalf("could not create buffer: %v", err)
	}
	return buffer
}

func TestSampleEmptyBuffer(t *testing.T) {
	buffer := newTestCache(t, NewUniformSelector(1, 1), NewConstantPriority(),
		1, 8)

	_, _, err := buffer.Sample()
	if !IsEmptyBuffer(err) {
		t.Errorf("expected empty buffer error, got %v", err)
	}
}

func TestSampleInsufficientSamples(t *testing.T) {
	buffer := newTestCache(t, NewUniformSelector(1, 1), NewConstantPriority(),
		3, 8)

	if err := buffer.Add(transition(0, 0, 1, 0), 0); err != nil {
		t.Fatalf("could not add transition: %v", err)
	}

	_, _, err := buffer.Sample()
	if !IsInsufficientSamples(err) {
		t.Errorf("expected insufficient samples error, got %v", err)
	}
}

// Sampling must return exactly BatchSize transitions once a single
// transition has been stored, even when the batch size exceeds the
// number of distinct stored transitions.
func TestSampleReturnsBatchSize(t *testing.T) {
	batchSize := 10
	buffer := newTestCache(t, NewUniformSelector(batchSize, 1),
		NewConstantPriority(), 1, 16)

	if err := buffer.Add(transition(0, 1, 2, 0.5), 0); err != nil {
		t.Fatalf("could not add transition: %v", err)
	}

	batch, slots, err := buffer.Sample()
	if err != nil {
		t.Fatalf("could not sample: %v", err)
	}
	if len(batch) != batchSize || len(slots) != batchSize {
		t.Errorf("expected %d samples, got %d transitions and %d slots",
			batchSize, len(batch), len(slots))
	}
	for _, sampled := range batch {
		if sampled.Action != 1 || sampled.Reward != 0.5 {
			t.Errorf("sampled transition does not match the stored one: %v",
				sampled)
		}
	}
}

// The buffer must never exceed its maximum capacity, and once full new
// transitions must overwrite the oldest stored ones.
func TestFIFOOverwrite(t *testing.T) {
	maxCapacity := 3
	buffer := newTestCache(t, NewUniformSelector(1, 1), NewConstantPriority(),
		1, maxCapacity)

	for i := 0; i < 7; i++ {
		if err := buffer.Add(transition(i%testFeatures, 0,
			(i+1)%testFeatures, float64(i)), 0); err != nil {
			t.Fatalf("could not add transition %d: %v", i, err)
		}
		if buffer.Capacity() > maxCapacity {
			t.Fatalf("capacity %d exceeds max capacity %d after %d "+
				"inserts", buffer.Capacity(), maxCapacity, i+1)
		}
	}

	// After 7 inserts into 3 slots, the buffer should hold transitions
	// 4, 5, and 6; transition 6 overwrote slot 0
	c := buffer.(*cache)
	wantRewards := []float64{6, 4, 5}
	for slot, want := range wantRewards {
		if c.rewardCache[slot] != want {
			t.Errorf("slot %d holds reward %v, want %v", slot,
				c.rewardCache[slot], want)
		}
	}
}

// Transitions with overwhelmingly larger priorities should dominate
// proportional selection.
func TestProportionalSelectionPrefersHighPriority(t *testing.T) {
	priority := NewSoftmaxTDErrorPriority()
	buffer := newTestCache(t, NewProportionalSelector(20, 1), priority, 1, 32)

	// exp(|0|) = 1 versus exp(|50|): the second transition carries
	// essentially all of the probability mass
	if err := buffer.Add(transition(0, 0, 1, 0), 0); err != nil {
		t.Fatalf("could not add transition: %v", err)
	}
	if err := buffer.Add(transition(2, 1, 3, 1), 50); err != nil {
		t.Fatalf("could not add transition: %v", err)
	}

	batch, _, err := buffer.Sample()
	if err != nil {
		t.Fatalf("could not sample: %v", err)
	}
	for _, sampled := range batch {
		if sampled.Action != 1 {
			t.Errorf("sampled the negligible-priority transition")
		}
	}
}

// Rarity selection should sample state-action pairs that occur rarely
// in the insertion history far more often than uniform selection
// would.
func TestRaritySelectionPrefersRarePairs(t *testing.T) {
	batchSize := 100
	buffer := newTestCache(t, NewRaritySelector(batchSize, 1),
		NewConstantPriority(), 1, 128)

	// 100 inserts of a common pair, one insert of a rare pair. Under
	// rarity weighting the rare transition is drawn with probability
	// 1/2 per draw; uniformly it would be drawn with probability
	// 1/101.
	for i := 0; i < 100; i++ {
		if err := buffer.Add(transition(0, 0, 1, 0), 0); err != nil {
			t.Fatalf("could not add transition: %v", err)
		}
	}
	if err := buffer.Add(transition(2, 1, 3, 1), 0); err != nil {
		t.Fatalf("could not add transition: %v", err)
	}

	batch, _, err := buffer.Sample()
	if err != nil {
		t.Fatalf("could not sample: %v", err)
	}

	rare := 0
	for _, sampled := range batch {
		if sampled.Action == 1 {
			rare++
		}
	}
	if rare < 10 {
		t.Errorf("rare pair sampled %d times of %d, expected around %d",
			rare, batchSize, batchSize/2)
	}
}

// Threshold selection falls back to plain proportional selection once
// every stored pair has exhausted its replay budget, so sampling never
// fails on a non-empty buffer.
func TestThresholdSelectionFallback(t *testing.T) {
	sampler, err := NewThresholdSelector(1, 1, 1)
	if err != nil {
		t.Fatalf("could not create selector: %v", err)
	}
	buffer := newTestCache(t, sampler, NewConstantPriority(), 1, 8)

	if err := buffer.Add(transition(0, 0, 1, 0), 0); err != nil {
		t.Fatalf("could not add transition: %v", err)
	}

	// The first sample uses up the pair's replay budget; subsequent
	// samples must still return a full batch
	for i := 0; i < 3; i++ {
		batch, _, err := buffer.Sample()
		if err != nil {
			t.Fatalf("sample %d failed: %v", i, err)
		}
		if len(batch) != 1 {
			t.Fatalf("sample %d returned %d transitions, want 1", i,
				len(batch))
		}
	}
}

func TestUpdatePrioritiesValidatesArguments(t *testing.T) {
	buffer := newTestCache(t, NewUniformSelector(1, 1), NewConstantPriority(),
		1, 8)

	if err := buffer.Add(transition(0, 0, 1, 0), 0); err != nil {
		t.Fatalf("could not add transition: %v", err)
	}

	if err := buffer.UpdatePriorities([]int{0, 0}, []float64{1}); err == nil {
		t.Error("expected error on mismatched slots and TD errors")
	}
	if err := buffer.UpdatePriorities([]int{5}, []float64{1}); err == nil {
		t.Error("expected error on out-of-range slot")
	}
	if err := buffer.UpdatePriorities([]int{0}, []float64{1}); err != nil {
		t.Errorf("valid update failed: %v", err)
	}
}

// Two buffers created from the same seed and fed the same transitions
// must produce identical sample sequences.
func TestSamplingReproducibility(t *testing.T) {
	config := Config{
		SampleMethod:      ProportionalSelection,
		PriorityMethod:    TDErrorPriority,
		BatchSize:         4,
		MinReplayCapacity: 1,
		MaxReplayCapacity: 16,
		PriorityExponent:  0.7,
		PriorityOffset:    0.01,
	}

	var seed uint64 = 42
	first, err := config.Create(testFeatures, testActions, seed)
	if err != nil {
		t.Fatalf("could not create buffer: %v", err)
	}
	second, err := config.Create(testFeatures, testActions, seed)
	if err != nil {
		t.Fatalf("could not create buffer: %v", err)
	}

	for i := 0; i < 10; i++ {
		tr := transition(i%testFeatures, i%testActions,
			(i+1)%testFeatures, float64(i))
		tdError := float64(i) - 4.5
		if err := first.Add(tr, tdError); err != nil {
			t.Fatalf("could not add transition: %v", err)
		}
		if err := second.Add(tr, tdError); err != nil {
			t.Fatalf("could not add transition: %v", err)
		}
	}

	for draw := 0; draw < 5; draw++ {
		_, firstSlots, err := first.Sample()
		if err != nil {
			t.Fatalf("could not sample: %v", err)
		}
		_, secondSlots, err := second.Sample()
		if err != nil {
			t.Fatalf("could not sample: %v", err)
		}

		for i := range firstSlots {
			if firstSlots[i] != secondSlots[i] {
				t.Fatalf("draw %d diverged: %v != %v", draw, firstSlots,
					secondSlots)
			}
		}
	}
}

func TestNewValidatesArguments(t *testing.T) {
	sampler := NewUniformSelector(4, 1)
	priority := NewConstantPriority()

	if _, err := New(sampler, priority, 0, 8, testFeatures,
		testActions); err == nil {
		t.Error("expected error on non-positive min capacity")
	}
	if _, err := New(sampler, priority, 1, 0, testFeatures,
		testActions); err == nil {
		t.Error("expected error on max capacity < 1")
	}
	if _, err := New(sampler, priority, 1, 2, testFeatures,
		testActions); err == nil {
		t.Error("expected error on batch size > max capacity")
	}
}
