package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/san-kum/reactorlab/internal/config"
	"github.com/san-kum/reactorlab/internal/experiment"
	"github.com/san-kum/reactorlab/internal/storage"
	"github.com/san-kum/reactorlab/internal/viz"
)

// floatFlags maps numeric run flags onto config fields.
func floatFlags(cfg *config.Config) map[string]*float64 {
	return map[string]*float64{
		"dt":        &cfg.Dt,
		"time":      &cfg.Duration,
		"tolerance": &cfg.Tolerance,
		"n0":        &cfg.Kinetics.N0,
		"rho":       &cfg.Kinetics.Rho,
		"beta":      &cfg.Kinetics.Beta,
		"lambda":    &cfg.Kinetics.Lambda,
		"gen-time":  &cfg.Kinetics.GenerationTime,
		"theta":     &cfg.InitState.Theta,
		"theta2":    &cfg.InitState.Theta2,
		"omega":     &cfg.InitState.Omega,
		"omega2":    &cfg.InitState.Omega2,
		"m1":        &cfg.Pendulum.M1,
		"m2":        &cfg.Pendulum.M2,
		"l1":        &cfg.Pendulum.L1,
		"l2":        &cfg.Pendulum.L2,
		"gravity":   &cfg.Pendulum.Gravity,
		"kp":        &cfg.ControllerParams.Kp,
		"ki":        &cfg.ControllerParams.Ki,
		"kd":        &cfg.ControllerParams.Kd,
		"target":    &cfg.ControllerParams.Target,
		"limit":     &cfg.ControllerParams.Limit,
		"amount":    &cfg.ControllerParams.Amount,
		"at":        &cfg.ControllerParams.At,
		"rate":      &cfg.ControllerParams.Rate,
	}
}

var flagUsage = map[string]string{
	"dt":        "timestep [s]",
	"time":      "duration [s]",
	"tolerance": "adaptive step tolerance",
	"n0":        "initial neutron density",
	"rho":       "reactivity",
	"beta":      "delayed neutron fraction",
	"lambda":    "precursor decay constant [1/s]",
	"gen-time":  "neutron generation time",
	"theta":     "first arm angle [rad]",
	"theta2":    "second arm angle [rad]",
	"omega":     "first arm angular velocity",
	"omega2":    "second arm angular velocity",
	"m1":        "first bob mass",
	"m2":        "second bob mass",
	"l1":        "first arm length",
	"l2":        "second arm length",
	"gravity":   "gravitational acceleration",
	"kp":        "pid kp",
	"ki":        "pid ki",
	"kd":        "pid kd",
	"target":    "pid target density",
	"limit":     "controller output limit",
	"amount":    "step reactivity",
	"at":        "step or ramp start time [s]",
	"rate":      "ramp rate [1/s]",
}

// addConfigFlags registers the run configuration flags. Defaults shown are
// those of the reference kinetics run; only flags set on the command line
// override the resolved configuration.
func addConfigFlags(fs *pflag.FlagSet) {
	defaults := floatFlags(config.DefaultConfig())
	names := make([]string, 0, len(defaults))
	for name := range defaults {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fs.Float64(name, *defaults[name], flagUsage[name])
	}
	fs.String("integrator", "", "integrator (euler, rk4, rk45)")
	fs.String("controller", "", "controller (none, constant, step, ramp, pid, manual)")
	fs.Int64("seed", 0, "random seed")
	fs.Bool("adaptive", false, "adaptive step size")
	fs.String("config", "", "run config file (yaml)")
	fs.String("preset", "", "preset name")
}

// resolveConfig builds the run configuration: model preset, then the
// config file, then flags set on the command line.
func resolveConfig(fs *pflag.FlagSet, model string) (*config.Config, error) {
	presetName, _ := fs.GetString("preset")
	configFile, _ := fs.GetString("config")

	var (
		cfg *config.Config
		err error
	)
	if presetName != "" {
		cfg, err = config.GetPreset(model, presetName)
	} else {
		cfg, err = config.ForModel(model)
	}
	if err != nil {
		return nil, err
	}

	if configFile != "" {
		if cfg, err = config.LoadOver(configFile, cfg); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if cfg.Model != model {
			return nil, fmt.Errorf("config file %s is for model %s, not %s", configFile, cfg.Model, model)
		}
	}

	for name, field := range floatFlags(cfg) {
		if fs.Changed(name) {
			if *field, err = fs.GetFloat64(name); err != nil {
				return nil, err
			}
		}
	}
	if fs.Changed("integrator") {
		cfg.Integrator, _ = fs.GetString("integrator")
	}
	if fs.Changed("controller") {
		cfg.Controller, _ = fs.GetString("controller")
	}
	if fs.Changed("seed") {
		cfg.Seed, _ = fs.GetInt64("seed")
	}
	if fs.Changed("adaptive") {
		cfg.Adaptive, _ = fs.GetBool("adaptive")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func modelArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return config.ModelKinetics
}

func (a *app) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a simulation and save it",
		Long:  "Run kinetics (default) or double_pendulum and store the result in the data directory.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), modelArg(args))
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") && cfg.Seed == 0 {
				cfg.Seed = time.Now().UnixNano()
			}
			return a.runSimulation(cmd.Context(), cfg)
		},
	}
	addConfigFlags(cmd.Flags())
	return cmd
}

func (a *app) runSimulation(ctx context.Context, cfg *config.Config) error {
	st := a.store()
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, a.log)
	if err := exp.Setup(); err != nil {
		return err
	}

	fmt.Printf("running %s simulation...\n", a.au.Bold(cfg.Model))
	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.Run{
		Model:      cfg.Model,
		Integrator: cfg.Integrator,
		Controller: cfg.Controller,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Seed:       cfg.Seed,
		Labels:     experiment.StateLabels(cfg.Model),
		Params:     experiment.ModelParams(cfg),
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", a.au.Green(runID))
	fmt.Printf("states: %d\n", len(result.States))
	if len(result.States) > 0 {
		fmt.Printf("final: %v\n", result.States[len(result.States)-1])
	}
	return a.printMetrics(result.Metrics)
}

func (a *app) printMetrics(m map[string]float64) error {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, a.au.Bold("METRIC\tVALUE"))
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.6g\n", a.au.Cyan(name), m[name])
	}
	return w.Flush()
}

func (a *app) liveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live [model]",
		Short: "step a model live in the terminal",
		Long:  "Without a model, open the interactive launcher.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return viz.RunInteractive()
			}
			cfg, err := resolveConfig(cmd.Flags(), args[0])
			if err != nil {
				return err
			}
			a.log.Debugw("live view", "model", cfg.Model, "dt", cfg.Dt)
			return viz.Run(cfg)
		},
	}
	addConfigFlags(cmd.Flags())
	return cmd
}

func (a *app) presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [model]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modelNames := config.Models()
			if len(args) > 0 {
				modelNames = args[:1]
			}
			for _, model := range modelNames {
				names := config.ListPresets(model)
				if len(names) == 0 {
					return fmt.Errorf("%w: no presets for model %q", config.ErrUnknownPreset, model)
				}
				fmt.Printf("%s:\n", a.au.Bold(model))
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				for _, name := range names {
					cfg, err := config.GetPreset(model, name)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "  %s\tdt=%g\tT=%g\t%s\t%s\n", a.au.Cyan(name), cfg.Dt, cfg.Duration, cfg.Integrator, cfg.Controller)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
