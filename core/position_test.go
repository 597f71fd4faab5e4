package core

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		x      float64
		period float64
	}{
		{0, 2 * math.Pi},
		{1.5, 2 * math.Pi},
		{2 * math.Pi, 2 * math.Pi},
		{-0.1, 2 * math.Pi},
		{-7, 2 * math.Pi},
		{100, 2 * math.Pi},
		{360, 360},
		{-360, 360},
		{719.5, 360},
		{24, 24},
		{-1, 24},
		{24.0001, 24},
	}

	for _, tc := range testCases {
		got := Normalize(tc.x, tc.period)
		if got < 0 || got >= tc.period {
			t.Errorf("Normalize(%g, %g) = %g, outside [0, %g)", tc.x, tc.period, got, tc.period)
		}

		// The result must be congruent to x modulo the period.
		diff := (tc.x - got) / tc.period
		if math.Abs(diff-math.Round(diff)) > 1e-9 {
			t.Errorf("Normalize(%g, %g) = %g is not congruent to %g mod %g", tc.x, tc.period, got, tc.x, tc.period)
		}
	}
}

func TestPositionTrackerValidation(t *testing.T) {
	testCases := []struct {
		name      string
		period    float64
		increment float64
		wantErr   error
	}{
		{"zero period", 0, 0.1, ErrBadPeriod},
		{"negative period", -1, 0.1, ErrBadPeriod},
		{"NaN period", math.NaN(), 0.1, ErrBadPeriod},
		{"infinite period", math.Inf(1), 0.1, ErrBadPeriod},
		{"zero increment", 360, 0, ErrBadIncrement},
		{"negative increment", 360, -0.5, ErrBadIncrement},
		{"NaN increment", 360, math.NaN(), ErrBadIncrement},
		{"infinite increment", 360, math.Inf(1), ErrBadIncrement},
	}

	for _, tc := range testCases {
		_, err := NewPositionTracker(tc.period, tc.increment)
		if err != tc.wantErr {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}

	if _, err := NewPositionTracker(2*math.Pi, 0.05); err != nil {
		t.Errorf("valid tracker: unexpected error %v", err)
	}
}

func TestAdvanceWrapsForward(t *testing.T) {
	tracker, err := NewPositionTracker(360, 100)
	if err != nil {
		t.Fatalf("NewPositionTracker: %v", err)
	}

	want := []float64{100, 200, 300, 40, 140}
	for i, expected := range want {
		got := tracker.Advance(Forward)
		if math.Abs(got-expected) > 1e-9 {
			t.Errorf("tick %d: expected position %g, got %g", i+1, expected, got)
		}
	}
}

func TestAdvanceWrapsBackward(t *testing.T) {
	tracker, err := NewPositionTracker(360, 100)
	if err != nil {
		t.Fatalf("NewPositionTracker: %v", err)
	}

	want := []float64{260, 160, 60, 320}
	for i, expected := range want {
		got := tracker.Advance(Backward)
		if math.Abs(got-expected) > 1e-9 {
			t.Errorf("tick %d: expected position %g, got %g", i+1, expected, got)
		}
	}
}

func TestAdvanceFractionalIncrement(t *testing.T) {
	// An increment that does not evenly divide the period leaves the
	// position at a fractional point; that is expected, not an error.
	tracker, err := NewPositionTracker(24, 0.7)
	if err != nil {
		t.Fatalf("NewPositionTracker: %v", err)
	}

	for i := 0; i < 1000; i++ {
		pos := tracker.Advance(Forward)
		if pos < 0 || pos >= 24 {
			t.Fatalf("tick %d: position %g outside [0, 24)", i+1, pos)
		}
	}
}

func TestDirectionReversalReturnsToStart(t *testing.T) {
	// 252 ticks forward at 0.05 over a 2π cycle, then the same distance
	// backward, lands back at the origin.
	tracker, err := NewPositionTracker(2*math.Pi, 0.05)
	if err != nil {
		t.Fatalf("NewPositionTracker: %v", err)
	}

	for i := 0; i < 252; i++ {
		tracker.Advance(Forward)
	}

	// Each backward tick retreats by exactly one increment, modulo the
	// period.
	prev := tracker.Position()
	for i := 0; i < 252; i++ {
		got := tracker.Advance(Backward)
		expected := Normalize(prev-0.05, 2*math.Pi)
		if math.Abs(got-expected) > 1e-9 {
			t.Fatalf("backward tick %d: expected %g, got %g", i+1, expected, got)
		}
		prev = got
	}

	if off := math.Min(prev, 2*math.Pi-prev); off > 1e-6 {
		t.Errorf("after symmetric forward/backward travel, position %g is not back at origin", prev)
	}
}

func TestStepsPerCycle(t *testing.T) {
	tracker, err := NewPositionTracker(2*math.Pi, 0.05)
	if err != nil {
		t.Fatalf("NewPositionTracker: %v", err)
	}

	want := 2 * math.Pi / 0.05
	if got := tracker.StepsPerCycle(); math.Abs(got-want) > 1e-9 {
		t.Errorf("StepsPerCycle: expected %g, got %g", want, got)
	}
}
