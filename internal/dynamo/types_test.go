package dynamo

import (
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Norm(t *testing.T) {
	tests := []struct {
		state    State
		expected float64
	}{
		{State{3, 4}, 5.0},
		{State{0, 0}, 0.0},
		{State{1, 1, 1, 1}, 2.0},
	}

	for _, tt := range tests {
		if got := tt.state.Norm(); math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Norm(%v) = %v, want %v", tt.state, got, tt.expected)
		}
	}
}

func TestState_CloneIsIndependent(t *testing.T) {
	a := State{1, 2}
	b := a.Clone()
	b[0] = 5
	if a[0] != 1 {
		t.Errorf("clone shares storage with original")
	}
}

func TestConfigSteps(t *testing.T) {
	cfg := Config{Dt: 0.01, Duration: 10}
	if cfg.Steps() != 1000 {
		t.Errorf("expected 1000 steps, got %d", cfg.Steps())
	}
	cfg = Config{Dt: 0.02, Duration: 40}
	if cfg.Steps() != 2000 {
		t.Errorf("expected 2000 steps, got %d", cfg.Steps())
	}
}

func TestResultSeries(t *testing.T) {
	r := &Result{States: []State{{1, 10}, {2, 20}, {3, 30}}}
	got := r.Series(1)
	want := []float64{10, 20, 30}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Series(1)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if (&Result{}).Final() != nil {
		t.Errorf("empty result should have nil final state")
	}
}
