package dynamo

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Member describes one run of an ensemble.
type Member struct {
	System     System
	Integrator Integrator
	Controller Controller
	Metrics    []Metric
	X0         State
}

type Ensemble struct {
	members   []Member
	seedStart int64
}

func NewEnsemble(members []Member, seedStart int64) *Ensemble {
	return &Ensemble{members: members, seedStart: seedStart}
}

// Run executes every member concurrently. Results keep member order; the
// first error cancels the remaining runs.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(e.members))

	g, ctx := errgroup.WithContext(ctx)
	for i, m := range e.members {
		i, m := i, m
		g.Go(func() error {
			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(i)

			s := New(m.System, m.Integrator, m.Controller)
			for _, metric := range m.Metrics {
				s.AddMetric(metric)
			}

			res, err := s.Run(ctx, m.X0, cfgCopy)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
