package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/san-kum/reactorlab/internal/config"
	"github.com/san-kum/reactorlab/internal/dynamo"
	"github.com/san-kum/reactorlab/internal/experiment"
)

// StableBound is how far a final state component may grow relative to
// max(1, |start|) and still count as stable.
const StableBound = 1e6

type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64 // half width of the uniform start perturbation
	Trials       int
	Seed         int64
}

type Trial struct {
	ID         int
	InitState  dynamo.State
	FinalState dynamo.State
	Stable     bool
}

// RunMonteCarlo perturbs every start component uniformly within
// +-Perturbation and runs all trials concurrently as one ensemble.
func RunMonteCarlo(ctx context.Context, mc MonteCarloConfig, logger *zap.SugaredLogger) ([]Trial, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if mc.Trials < 1 {
		return nil, fmt.Errorf("monte carlo needs at least one trial, got %d", mc.Trials)
	}
	if err := mc.Base.Validate(); err != nil {
		return nil, err
	}

	reg := experiment.NewRegistry()
	rng := rand.New(rand.NewSource(mc.Seed))
	base := dynamo.State(mc.Base.GetInitState())

	members := make([]dynamo.Member, mc.Trials)
	trials := make([]Trial, mc.Trials)
	for i := range members {
		dyn, err := reg.GetModel(mc.Base)
		if err != nil {
			return nil, err
		}
		integ, err := reg.GetIntegrator(mc.Base.Integrator)
		if err != nil {
			return nil, err
		}
		ctrl, err := reg.GetController(mc.Base, dyn.ControlDim())
		if err != nil {
			return nil, err
		}

		x0 := base.Clone()
		for j := range x0 {
			x0[j] += (rng.Float64() - 0.5) * 2 * mc.Perturbation
		}
		trials[i] = Trial{ID: i, InitState: x0}
		members[i] = dynamo.Member{System: dyn, Integrator: integ, Controller: ctrl, X0: x0.Clone()}
	}

	logger.Infow("monte carlo started", "model", mc.Base.Model, "trials", mc.Trials, "perturbation", mc.Perturbation)

	results, err := dynamo.NewEnsemble(members, mc.Seed).Run(ctx, mc.Base.SimConfig())
	if err != nil {
		return nil, err
	}

	for i, res := range results {
		if len(res.States) == 0 {
			continue
		}
		final := res.States[len(res.States)-1]
		trials[i].FinalState = final
		trials[i].Stable = bounded(trials[i].InitState, final)
	}
	return trials, nil
}

func bounded(x0, x dynamo.State) bool {
	if !x.IsValid() {
		return false
	}
	for i, v := range x {
		if math.Abs(v) > StableBound*math.Max(1, math.Abs(x0[i])) {
			return false
		}
	}
	return true
}

func MonteCarloStats(trials []Trial) (stable, unstable int) {
	for _, t := range trials {
		if t.Stable {
			stable++
		} else {
			unstable++
		}
	}
	return
}

// Spread is the mean and standard deviation of final state component idx
// over all trials.
func Spread(trials []Trial, idx int) (mean, std float64) {
	n := 0
	for _, t := range trials {
		if idx < len(t.FinalState) {
			mean += t.FinalState[idx]
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	mean /= float64(n)
	for _, t := range trials {
		if idx < len(t.FinalState) {
			d := t.FinalState[idx] - mean
			std += d * d
		}
	}
	return mean, math.Sqrt(std / float64(n))
}
