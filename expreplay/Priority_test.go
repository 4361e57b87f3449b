package expreplay

import (
	"math"
	"testing"
)

const tolerance = 1e-12

func TestConstantPriority(t *testing.T) {
	p := NewConstantPriority()
	for _, tdError := range []float64{-3, 0, 0.5, 100} {
		if got := p.priorityOf(tdError); got != 1.0 {
			t.Errorf("priorityOf(%v) = %v, want 1.0", tdError, got)
		}
	}
}

func TestTDErrorPriority(t *testing.T) {
	exponent, offset := 0.7, 0.01
	p, err := NewTDErrorPriority(exponent, offset)
	if err != nil {
		t.Fatalf("could not create priority: %v", err)
	}

	for _, tdError := range []float64{-2, -0.5, 0, 0.5, 2} {
		want := math.Pow(math.Abs(tdError)+offset, exponent)
		if got := p.priorityOf(tdError); math.Abs(got-want) > tolerance {
			t.Errorf("priorityOf(%v) = %v, want %v", tdError, got, want)
		}
	}
}

func TestTDErrorPriorityValidation(t *testing.T) {
	if _, err := NewTDErrorPriority(0.7, 0); err == nil {
		t.Error("expected error on non-positive offset")
	}
	if _, err := NewTDErrorPriority(-1, 0.01); err == nil {
		t.Error("expected error on negative exponent")
	}
}

// Negative TD errors are scaled down before the priority is computed,
// so a negative surprise gets a strictly smaller priority than an
// equally large positive one.
func TestAsymmetricTDErrorPriority(t *testing.T) {
	exponent, offset, penalty := 1.0, 0.01, 0.5
	p, err := NewAsymmetricTDErrorPriority(exponent, offset, penalty)
	if err != nil {
		t.Fatalf("could not create priority: %v", err)
	}

	positive := p.priorityOf(2)
	negative := p.priorityOf(-2)

	wantPositive := math.Pow(2+offset, exponent)
	wantNegative := math.Pow(2*penalty+offset, exponent)
	if math.Abs(positive-wantPositive) > tolerance {
		t.Errorf("priorityOf(2) = %v, want %v", positive, wantPositive)
	}
	if math.Abs(negative-wantNegative) > tolerance {
		t.Errorf("priorityOf(-2) = %v, want %v", negative, wantNegative)
	}
	if negative >= positive {
		t.Errorf("negative TD error priority (%v) should be below the "+
			"positive one (%v)", negative, positive)
	}
}

func TestAsymmetricTDErrorPriorityValidation(t *testing.T) {
	for _, penalty := range []float64{0, 1, -0.5, 2} {
		if _, err := NewAsymmetricTDErrorPriority(1, 0.01, penalty); err == nil {
			t.Errorf("expected error on penalty %v", penalty)
		}
	}
}

func TestSoftmaxTDErrorPriority(t *testing.T) {
	p := NewSoftmaxTDErrorPriority()
	for _, tdError := range []float64{-1, 0, 3} {
		want := math.Exp(math.Abs(tdError))
		if got := p.priorityOf(tdError); math.Abs(got-want) > tolerance {
			t.Errorf("priorityOf(%v) = %v, want %v", tdError, got, want)
		}
	}
}

func TestCreatePriorityUnknownType(t *testing.T) {
	if _, err := CreatePriority(PriorityType("NoSuchPriority"), 1, 0.01,
		0.5); err == nil {
		t.Error("expected error on unknown priority type")
	}
}
