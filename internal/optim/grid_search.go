// Package optim searches controller settings over a grid.
package optim

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/reactorlab/internal/config"
	"github.com/san-kum/reactorlab/internal/experiment"
)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	logger     *zap.SugaredLogger
}

func NewGridSearch(params []string, ranges [][]float64, logger *zap.SugaredLogger) *GridSearch {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &GridSearch{paramNames: params, ranges: ranges, logger: logger}
}

// Search evaluates every grid point and returns the parameters with the
// lowest value of metricName. Runs that fail are logged and skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("grid search: %d names for %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, fmt.Errorf("grid search: no run produced %q", metricName)
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		exp, err := buildExperiment(current)
		if err != nil {
			g.logger.Debugw("grid point rejected", "params", current, "error", err)
			return nil
		}

		result, err := exp.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			g.logger.Debugw("grid point failed", "params", current, "error", err)
			return nil
		}

		val, ok := result.Metrics[metricName]
		if !ok || math.IsNaN(val) {
			return nil
		}
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// TunePID searches PID gains that minimize the tracking error of a
// regulated kinetics run.
func TunePID(ctx context.Context, base *config.Config, kps, kis []float64, logger *zap.SugaredLogger) (kp, ki, trackingErr float64, err error) {
	g := NewGridSearch([]string{"kp", "ki"}, [][]float64{kps, kis}, logger)

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := *base
		cfg.Controller = "pid"
		cfg.ControllerParams.Kp = params["kp"]
		cfg.ControllerParams.Ki = params["ki"]
		exp := experiment.New(&cfg, nil)
		if err := exp.Setup(); err != nil {
			return nil, err
		}
		return exp, nil
	}

	best, val, err := g.Search(ctx, build, "tracking_error")
	if err != nil {
		return 0, 0, 0, err
	}
	return best["kp"], best["ki"], val, nil
}
