package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/reactorlab/internal/dynamo"
	"github.com/san-kum/reactorlab/internal/models"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultKp       = 0.05
	DefaultKi       = 0.005
	DefaultKd       = 0.0
)

const (
	ModelKinetics       = "kinetics"
	ModelDoublePendulum = "double_pendulum"
)

var ErrUnknownPreset = errors.New("unknown preset")

type Config struct {
	Model            string           `yaml:"model"`
	Integrator       string           `yaml:"integrator"`
	Controller       string           `yaml:"controller"`
	Dt               float64          `yaml:"dt"`
	Duration         float64          `yaml:"duration"`
	Seed             int64            `yaml:"seed"`
	Adaptive         bool             `yaml:"adaptive,omitempty"`
	Tolerance        float64          `yaml:"tolerance,omitempty"`
	InitState        InitStateConfig  `yaml:"init_state"`
	Kinetics         KineticsConfig   `yaml:"kinetics"`
	Pendulum         PendulumConfig   `yaml:"pendulum"`
	ControllerParams ControllerConfig `yaml:"controller_params"`
}

// InitStateConfig holds the double pendulum start. Kinetics runs start from
// N0 with precursors in equilibrium.
type InitStateConfig struct {
	Theta  float64 `yaml:"theta"`
	Theta2 float64 `yaml:"theta2"`
	Omega  float64 `yaml:"omega"`
	Omega2 float64 `yaml:"omega2"`
}

type KineticsConfig struct {
	N0             float64 `yaml:"n0"`
	Rho            float64 `yaml:"rho"`
	Beta           float64 `yaml:"beta"`
	Lambda         float64 `yaml:"lambda"`
	GenerationTime float64 `yaml:"generation_time"`
}

type PendulumConfig struct {
	M1      float64 `yaml:"m1"`
	M2      float64 `yaml:"m2"`
	L1      float64 `yaml:"l1"`
	L2      float64 `yaml:"l2"`
	Gravity float64 `yaml:"gravity"`
}

type ControllerConfig struct {
	Kp     float64 `yaml:"kp"`
	Ki     float64 `yaml:"ki"`
	Kd     float64 `yaml:"kd"`
	Target float64 `yaml:"target"`
	Limit  float64 `yaml:"limit"`
	Amount float64 `yaml:"amount"`
	At     float64 `yaml:"at"`
	Rate   float64 `yaml:"rate"`
}

// Set assigns one gain or schedule value by its yaml key.
func (c *ControllerConfig) Set(name string, value float64) error {
	switch name {
	case "kp":
		c.Kp = value
	case "ki":
		c.Ki = value
	case "kd":
		c.Kd = value
	case "target":
		c.Target = value
	case "limit":
		c.Limit = value
	case "amount":
		c.Amount = value
	case "at":
		c.At = value
	case "rate":
		c.Rate = value
	default:
		return fmt.Errorf("unknown controller parameter %q", name)
	}
	return nil
}

func DefaultKinetics() KineticsConfig {
	return KineticsConfig{
		N0:             models.DefaultN0,
		Rho:            models.DefaultRho,
		Beta:           models.DefaultBeta,
		Lambda:         models.DefaultLambda,
		GenerationTime: models.DefaultGenerationTime,
	}
}

func DefaultPendulum() PendulumConfig {
	return PendulumConfig{
		M1: models.DefaultMass, M2: models.DefaultMass,
		L1: models.DefaultLength, L2: models.DefaultLength,
		Gravity: models.DefaultGravity,
	}
}

// DefaultConfig is the reference kinetics run.
func DefaultConfig() *Config {
	return &Config{
		Model:      ModelKinetics,
		Integrator: "euler",
		Controller: "none",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Kinetics:   DefaultKinetics(),
		Pendulum:   DefaultPendulum(),
		ControllerParams: ControllerConfig{
			Kp:     DefaultKp,
			Ki:     DefaultKi,
			Kd:     DefaultKd,
			Target: models.DefaultN0,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file on top of base. Keys missing from the file
// keep the base values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch c.Model {
	case ModelKinetics, ModelDoublePendulum:
	default:
		return fmt.Errorf("unknown model %q", c.Model)
	}
	return dynamo.ValidateConfig(c.SimConfig())
}

// SimConfig converts to the simulator's run configuration.
func (c *Config) SimConfig() dynamo.Config {
	sc := dynamo.DefaultConfig()
	sc.Dt = c.Dt
	sc.Duration = c.Duration
	sc.Seed = c.Seed
	sc.Adaptive = c.Adaptive
	if c.Tolerance > 0 {
		sc.Tolerance = c.Tolerance
	}
	if sc.MaxDt < c.Dt {
		sc.MaxDt = c.Dt
	}
	return sc
}

func (c *Config) KineticsModel() *models.PointKinetics {
	return &models.PointKinetics{
		N0:             c.Kinetics.N0,
		Rho:            c.Kinetics.Rho,
		Beta:           c.Kinetics.Beta,
		Lambda:         c.Kinetics.Lambda,
		GenerationTime: c.Kinetics.GenerationTime,
	}
}

func (c *Config) PendulumModel() *models.DoublePendulum {
	return &models.DoublePendulum{
		M1: c.Pendulum.M1, M2: c.Pendulum.M2,
		L1: c.Pendulum.L1, L2: c.Pendulum.L2,
		Gravity: c.Pendulum.Gravity,
	}
}

func (c *Config) GetInitState() []float64 {
	switch c.Model {
	case ModelDoublePendulum:
		return []float64{c.InitState.Theta, c.InitState.Theta2, c.InitState.Omega, c.InitState.Omega2}
	default:
		return c.KineticsModel().InitialState()
	}
}

// SetModelParam sets a model parameter by the name the model itself uses,
// e.g. "rho" for kinetics or "l2" for the double pendulum.
func (c *Config) SetModelParam(name string, value float64) error {
	switch c.Model {
	case ModelKinetics:
		p := c.KineticsModel()
		if err := p.SetParam(name, value); err != nil {
			return err
		}
		c.Kinetics = KineticsConfig{
			N0:             p.N0,
			Rho:            p.Rho,
			Beta:           p.Beta,
			Lambda:         p.Lambda,
			GenerationTime: p.GenerationTime,
		}
	case ModelDoublePendulum:
		d := c.PendulumModel()
		if err := d.SetParam(name, value); err != nil {
			return err
		}
		c.Pendulum = PendulumConfig{M1: d.M1, M2: d.M2, L1: d.L1, L2: d.L2, Gravity: d.Gravity}
	default:
		return fmt.Errorf("unknown model %q", c.Model)
	}
	return nil
}
