package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/reactorlab/internal/analysis"
	"github.com/san-kum/reactorlab/internal/automation"
	"github.com/san-kum/reactorlab/internal/config"
	"github.com/san-kum/reactorlab/internal/dynamo"
	"github.com/san-kum/reactorlab/internal/experiment"
	"github.com/san-kum/reactorlab/internal/export"
	"github.com/san-kum/reactorlab/internal/optim"
)

func (a *app) chaosCmd() *cobra.Command {
	var (
		eps      float64
		every    int
		poincare bool
		spectrum bool
		svg      string
	)
	cmd := &cobra.Command{
		Use:   "chaos",
		Short: "measure sensitivity of the double pendulum to its start",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), config.ModelDoublePendulum)
			if err != nil {
				return err
			}
			integ, err := experiment.NewRegistry().GetIntegrator(cfg.Integrator)
			if err != nil {
				return err
			}
			dyn := cfg.PendulumModel()
			x0 := cfg.GetInitState()

			lyap := analysis.LyapunovExponent(dyn, integ, x0, cfg.Dt, cfg.Duration, eps)
			fmt.Printf("largest lyapunov exponent: %s\n", a.au.Bold(fmt.Sprintf("%.4f", lyap)))
			if lyap > 0 {
				fmt.Println(a.au.Red("trajectories diverge exponentially (chaotic)"))
			} else {
				fmt.Println(a.au.Green("no exponential divergence"))
			}

			times, seps := analysis.Divergence(dyn, integ, x0, eps, cfg.Dt, cfg.Duration, every)
			logSeps := make([]float64, len(seps))
			for i, s := range seps {
				logSeps[i] = math.Log10(math.Max(s, 1e-300))
			}
			fmt.Println()
			fmt.Println(asciigraph.Plot(logSeps,
				asciigraph.Height(12),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("log10 separation, eps=%g, t=0..%g", eps, times[len(times)-1])),
			))

			portrait := analysis.GeneratePhasePortrait(dyn, integ, x0, 0, 2, cfg.Dt, cfg.Duration)
			fmt.Println("\nphase portrait (theta1, omega1):")
			fmt.Println(analysis.PhasePortraitToASCII(portrait, 70, 20))

			if poincare {
				section := analysis.GeneratePoincareSection(dyn, integ, x0, 0, 0, 1, 3, cfg.Dt, cfg.Duration)
				fmt.Println("poincare section at theta1=0 (theta2, omega2):")
				fmt.Println(analysis.PoincareSectionToASCII(section, 70, 20))
			}

			if spectrum {
				a.printSpectra(dyn, integ, x0, cfg.Dt, cfg.Duration, eps)
			}

			if svg != "" && portrait != nil {
				f, err := os.Create(svg)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := export.TrajectoryToSVG(f, portrait.Points, 800, 600, "#00ff88"); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", a.au.Green(svg))
			}
			return nil
		},
	}
	addConfigFlags(cmd.Flags())
	cmd.Flags().Float64Var(&eps, "eps", 1e-8, "initial separation in theta1")
	cmd.Flags().IntVar(&every, "every", 10, "sample separation every n steps")
	cmd.Flags().BoolVar(&poincare, "poincare", false, "also print a poincare section")
	cmd.Flags().BoolVar(&spectrum, "spectrum", false, "also print per-direction lyapunov exponents and the theta1 power spectrum")
	cmd.Flags().StringVar(&svg, "svg", "", "write the phase portrait as SVG")
	return cmd
}

func (a *app) printSpectra(dyn dynamo.System, integ dynamo.Integrator, x0 dynamo.State, dt, duration, eps float64) {
	labels := experiment.StateLabels(config.ModelDoublePendulum)
	fmt.Println("lyapunov exponent per perturbed component:")
	for i, l := range analysis.LyapunovSpectrum(dyn, integ, x0, dt, duration, eps) {
		fmt.Printf("  %-8s %.4f\n", labels[i], l)
	}

	s := analysis.PowerSpectrum(analysis.ComponentSeries(dyn, integ, x0, 0, dt, duration), dt)
	if len(s.Power) < 2 {
		return
	}
	// Display up to 5 Hz; the pendulum's modes sit well below that.
	top := len(s.Power)
	for top > 2 && s.Freqs[top-1] > 5 {
		top--
	}
	logPower := make([]float64, top-1)
	for i := range logPower {
		logPower[i] = math.Log10(math.Max(s.Power[i+1], 1e-300))
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(logPower,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("log10 power of theta1, %.3g..%.3g Hz", s.Freqs[1], s.Freqs[top-1])),
	))
	f, _ := s.Dominant()
	fmt.Printf("dominant frequency: %s Hz, spectral flatness %.3f\n", a.au.Bold(fmt.Sprintf("%.4f", f)), s.Flatness())
}

func (a *app) convergenceCmd() *cobra.Command {
	var dts []float64
	cmd := &cobra.Command{
		Use:   "convergence",
		Short: "compare explicit euler kinetics with the exact solution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), config.ModelKinetics)
			if err != nil {
				return err
			}
			p := cfg.KineticsModel()
			if err := p.Validate(); err != nil {
				return err
			}

			r1, r2 := analysis.KineticsEigenvalues(p)
			fmt.Printf("eigenvalues: %.6g, %.6g\n", r1, r2)
			if r1 != 0 {
				fmt.Printf("stable period: %.4g s\n", 1/r1)
			}

			points := analysis.EulerErrorSweep(p, cfg.Duration, dts)
			orders := analysis.ConvergenceOrder(points)

			fmt.Println()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, a.au.Bold("DT\tSTEPS\tMAX REL ERR\tEND REL ERR\tORDER"))
			for i, pt := range points {
				order := "-"
				if !math.IsNaN(orders[i]) {
					order = fmt.Sprintf("%.3f", orders[i])
				}
				fmt.Fprintf(w, "%g\t%d\t%.3e\t%.3e\t%s\n", pt.Dt, pt.Steps, pt.MaxError, pt.EndError, order)
			}
			return w.Flush()
		},
	}
	addConfigFlags(cmd.Flags())
	cmd.Flags().Float64SliceVar(&dts, "dts", []float64{0.1, 0.05, 0.02, 0.01, 0.005, 0.001}, "step sizes to compare")
	return cmd
}

func (a *app) ensembleCmd() *cobra.Command {
	var (
		param  string
		values []float64
		chart  string
	)
	cmd := &cobra.Command{
		Use:   "ensemble [model]",
		Short: "run one member per parameter value concurrently",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), modelArg(args))
			if err != nil {
				return err
			}
			points, err := experiment.Sweep(cmd.Context(), cfg, param, values, a.log)
			if err != nil {
				return err
			}

			labels := make([]string, len(points))
			finals := make([]float64, len(points))
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\n", a.au.Bold(fmt.Sprintf("%s\tFINAL X0\tMETRICS", param)))
			for i, pt := range points {
				labels[i] = strconv.FormatFloat(pt.Value, 'g', 4, 64)
				last := pt.Result.States[len(pt.Result.States)-1]
				finals[i] = last[0]
				fmt.Fprintf(w, "%g\t%.6g\t%v\n", pt.Value, last[0], pt.Result.Metrics)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if chart != "" {
				f, err := os.Create(chart)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := export.SweepPNG(f, "final x0 by "+param, labels, finals); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", a.au.Green(chart))
			}
			return nil
		},
	}
	addConfigFlags(cmd.Flags())
	cmd.Flags().StringVar(&param, "param", "rho", "model parameter to sweep")
	cmd.Flags().Float64SliceVar(&values, "values", []float64{-0.002, 0, 0.001, 0.002, 0.003}, "parameter values")
	cmd.Flags().StringVar(&chart, "chart", "", "write final values as a PNG bar chart")
	return cmd
}

func (a *app) tuneCmd() *cobra.Command {
	var kps, kis []float64
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search pid gains for power regulation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			if !fs.Changed("preset") {
				if err := fs.Set("preset", "regulated"); err != nil {
					return err
				}
			}
			cfg, err := resolveConfig(fs, config.ModelKinetics)
			if err != nil {
				return err
			}

			kp, ki, trackErr, err := optim.TunePID(cmd.Context(), cfg, kps, kis, a.log)
			if err != nil {
				return err
			}
			fmt.Printf("best kp: %v\n", a.au.Bold(kp))
			fmt.Printf("best ki: %v\n", a.au.Bold(ki))
			fmt.Printf("tracking error: %.4g\n", trackErr)
			return nil
		},
	}
	addConfigFlags(cmd.Flags())
	cmd.Flags().Float64SliceVar(&kps, "kps", []float64{0.01, 0.02, 0.05, 0.1}, "kp values")
	cmd.Flags().Float64SliceVar(&kis, "kis", []float64{0, 0.001, 0.005, 0.01}, "ki values")
	return cmd
}

func (a *app) scenarioCmd() *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a scripted sequence of experiments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			st := a.store()
			if save {
				if err := st.Init(); err != nil {
					return err
				}
			} else {
				st = nil
			}

			results, err := automation.RunScenario(cmd.Context(), sc, st, a.log)
			fmt.Printf("%s: %s\n", a.au.Bold(sc.Name), sc.Description)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, a.au.Bold("STEP\tMODEL\tSTATES\tFINAL X0\tRUN"))
			for _, r := range results {
				last := r.Result.States[len(r.Result.States)-1]
				fmt.Fprintf(w, "%s\t%s\t%d\t%.6g\t%s\n", r.Name, r.Config.Model, len(r.Result.States), last[0], r.RunID)
			}
			if ferr := w.Flush(); ferr != nil && err == nil {
				err = ferr
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&save, "save", true, "store every step result")
	return cmd
}

func (a *app) monteCarloCmd() *cobra.Command {
	var (
		trials int
		eps    float64
	)
	cmd := &cobra.Command{
		Use:   "montecarlo [model]",
		Short: "run perturbed copies of a start state concurrently",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model := config.ModelDoublePendulum
			if len(args) > 0 {
				model = args[0]
			}
			cfg, err := resolveConfig(cmd.Flags(), model)
			if err != nil {
				return err
			}

			res, err := automation.RunMonteCarlo(cmd.Context(), automation.MonteCarloConfig{
				Base:         cfg,
				Perturbation: eps,
				Trials:       trials,
				Seed:         cfg.Seed,
			}, a.log)
			if err != nil {
				return err
			}

			stable, unstable := automation.MonteCarloStats(res)
			fmt.Printf("trials: %d, %v stable, %v unstable\n", len(res), a.au.Green(stable), a.au.Red(unstable))
			labels := experiment.StateLabels(cfg.Model)
			for i, label := range labels {
				mean, std := automation.Spread(res, i)
				fmt.Printf("  final %-8s mean %12.6g  std %12.6g\n", label, mean, std)
			}
			return nil
		},
	}
	addConfigFlags(cmd.Flags())
	cmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	cmd.Flags().Float64Var(&eps, "eps", 1e-3, "half width of the start perturbation")
	return cmd
}
