package optim

import (
	"context"
	"testing"

	"github.com/san-kum/reactorlab/internal/config"
)

func TestTunePIDPrefersFeedback(t *testing.T) {
	base, err := config.GetPreset(config.ModelKinetics, "regulated")
	if err != nil {
		t.Fatal(err)
	}
	base.Duration = 20

	kp, _, trackingErr, err := TunePID(context.Background(), base, []float64{0, 0.01, 0.05}, []float64{0, 0.001}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if kp == 0 {
		t.Errorf("expected a non-zero proportional gain to win, got kp=%v (error %v)", kp, trackingErr)
	}
}

func TestSearchCancelled(t *testing.T) {
	base := config.DefaultConfig()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, _, err := TunePID(ctx, base, []float64{0.01}, []float64{0}, nil); err == nil {
		t.Error("expected error from cancelled search")
	}
}

func TestSearchMismatchedGrid(t *testing.T) {
	g := NewGridSearch([]string{"kp"}, nil, nil)
	if _, _, err := g.Search(context.Background(), nil, "x"); err == nil {
		t.Error("expected error for mismatched grid")
	}
}
