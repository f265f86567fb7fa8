package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/reactorlab/internal/config"
	"github.com/san-kum/reactorlab/internal/dynamo"
)

type SweepPoint struct {
	Value  float64
	Result *dynamo.Result
}

// Sweep runs one ensemble member per value of a model parameter, all
// concurrently. Points come back in the order of values.
func Sweep(ctx context.Context, base *config.Config, param string, values []float64, logger *zap.SugaredLogger) ([]SweepPoint, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}

	reg := NewRegistry()
	members := make([]dynamo.Member, 0, len(values))
	for _, v := range values {
		dyn, err := reg.GetModel(base)
		if err != nil {
			return nil, err
		}
		conf, ok := dyn.(dynamo.Configurable)
		if !ok {
			return nil, fmt.Errorf("model %s has no tunable parameters", base.Model)
		}
		if err := conf.SetParam(param, v); err != nil {
			return nil, err
		}
		if val, ok := dyn.(validator); ok {
			if err := val.Validate(); err != nil {
				return nil, fmt.Errorf("%s=%g: %w", param, v, err)
			}
		}

		integ, err := reg.GetIntegrator(base.Integrator)
		if err != nil {
			return nil, err
		}
		ctrl, err := reg.GetController(base, dyn.ControlDim())
		if err != nil {
			return nil, err
		}

		x0 := dynamo.State(base.GetInitState())
		if init, ok := dyn.(dynamo.Initializer); ok {
			x0 = init.InitialState()
		}

		members = append(members, dynamo.Member{
			System:     dyn,
			Integrator: integ,
			Controller: ctrl,
			Metrics:    reg.DefaultMetrics(base, dyn),
			X0:         x0,
		})
	}

	logger.Infow("sweep started", "model", base.Model, "param", param, "members", len(members))

	results, err := dynamo.NewEnsemble(members, base.Seed).Run(ctx, base.SimConfig())
	if err != nil {
		return nil, err
	}

	points := make([]SweepPoint, len(values))
	for i, v := range values {
		points[i] = SweepPoint{Value: v, Result: results[i]}
	}
	return points, nil
}
