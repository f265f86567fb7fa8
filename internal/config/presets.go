package config

import (
	"fmt"
	"math"
	"sort"
)

func kineticsPreset(dt, duration float64, k KineticsConfig) *Config {
	cfg := DefaultConfig()
	cfg.Dt = dt
	cfg.Duration = duration
	cfg.Kinetics = k
	return cfg
}

func pendulumPreset(dt, duration, theta1, theta2 float64) *Config {
	cfg := DefaultConfig()
	cfg.Model = ModelDoublePendulum
	cfg.Integrator = "rk4"
	cfg.Dt = dt
	cfg.Duration = duration
	cfg.InitState = InitStateConfig{Theta: theta1, Theta2: theta2}
	return cfg
}

func withKinetics(mod func(*KineticsConfig)) KineticsConfig {
	k := DefaultKinetics()
	mod(&k)
	return k
}

var Presets = map[string]map[string]func() *Config{
	ModelKinetics: {
		"reference": func() *Config {
			return kineticsPreset(0.01, 10, DefaultKinetics())
		},
		"subcritical": func() *Config {
			return kineticsPreset(0.01, 60, withKinetics(func(k *KineticsConfig) { k.Rho = -0.003 }))
		},
		"prompt_critical": func() *Config {
			return kineticsPreset(0.01, 10, withKinetics(func(k *KineticsConfig) { k.Rho = k.Beta }))
		},
		"scram": func() *Config {
			cfg := kineticsPreset(0.01, 30, DefaultKinetics())
			cfg.Controller = "step"
			cfg.ControllerParams.Amount = -0.05
			cfg.ControllerParams.At = 5
			return cfg
		},
		"regulated": func() *Config {
			cfg := kineticsPreset(0.01, 60, DefaultKinetics())
			cfg.Controller = "pid"
			cfg.ControllerParams.Limit = 0.01
			return cfg
		},
	},
	ModelDoublePendulum: {
		"exemplary": func() *Config {
			return pendulumPreset(0.02, 40, math.Pi/2, math.Pi/2)
		},
		"gentle": func() *Config {
			return pendulumPreset(0.01, 30, 0.3, 0.3)
		},
		"chaos": func() *Config {
			return pendulumPreset(0.005, 60, 3.0, 3.0)
		},
	},
}

// GetPreset returns a fresh copy of the named preset.
func GetPreset(model, preset string) (*Config, error) {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil, fmt.Errorf("%w: no presets for model %q", ErrUnknownPreset, model)
	}
	fn, ok := modelPresets[preset]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s (available: %v)", ErrUnknownPreset, model, preset, ListPresets(model))
	}
	return fn(), nil
}

// ForModel is the default preset of a model: reference kinetics or the
// exemplary double pendulum.
func ForModel(model string) (*Config, error) {
	switch model {
	case ModelKinetics:
		return GetPreset(model, "reference")
	case ModelDoublePendulum:
		return GetPreset(model, "exemplary")
	}
	return nil, fmt.Errorf("unknown model %q (available: %v)", model, Models())
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Models() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
