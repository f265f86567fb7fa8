package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/reactorlab/internal/storage"
	"github.com/san-kum/reactorlab/internal/viz"
)

// app holds what every command shares: settings resolved by viper, the
// logger and the color writer for stdout tables.
type app struct {
	v   *viper.Viper
	log *zap.SugaredLogger
	au  aurora.Aurora
}

func newLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.Config{
		Level:            lvl,
		Encoding:         "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			MessageKey:     "msg",
			EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05.000"),
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func (a *app) store() *storage.Store {
	return storage.New(a.v.GetString("data"), a.log)
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: zap.NewNop().Sugar(), au: aurora.NewAurora(true)}

	rootCmd := &cobra.Command{
		Use:           "reactorlab",
		Short:         "reactor kinetics and chaos lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(a.v.GetString("log-level"))
			if err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			a.log = logger
			a.au = aurora.NewAurora(!a.v.GetBool("no-color"))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.String("data", ".reactorlab", "data directory")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.Bool("no-color", false, "disable colored output")

	a.v.SetEnvPrefix("reactorlab")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	for _, name := range []string{"data", "log-level", "no-color"} {
		if err := a.v.BindPFlag(name, pf.Lookup(name)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(
		a.runCmd(),
		a.liveCmd(),
		a.presetsCmd(),
		a.listCmd(),
		a.plotCmd(),
		a.chartCmd(),
		a.exportJSONCmd(),
		a.exportCSVCmd(),
		a.animateCmd(),
		a.chaosCmd(),
		a.convergenceCmd(),
		a.ensembleCmd(),
		a.tuneCmd(),
		a.scenarioCmd(),
		a.monteCarloCmd(),
		a.buildCmd(),
		a.materialsCmd(),
	)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, aurora.Red("error:"), err)
		os.Exit(1)
	}
}
