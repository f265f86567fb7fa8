package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/reactorlab/internal/config"
	"github.com/san-kum/reactorlab/internal/dynamo"
	"github.com/san-kum/reactorlab/internal/experiment"
	"github.com/san-kum/reactorlab/internal/export"
	"github.com/san-kum/reactorlab/internal/models"
	"github.com/san-kum/reactorlab/internal/storage"
)

// runID is the first argument, or the latest stored run.
func runID(st *storage.Store, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return st.Latest()
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := a.store().List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, a.au.Bold("ID\tMODEL\tTIME\tDURATION\tDT\tINTEG\tCTRL\tSTEPS"))
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%d\n",
					run.ID,
					run.Model,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Duration,
					run.Dt,
					run.Integrator,
					run.Controller,
					run.Steps,
				)
			}
			return w.Flush()
		},
	}
}

func (a *app) plotCmd() *cobra.Command {
	var logScale bool
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.store()
			id, err := runID(st, args)
			if err != nil {
				return err
			}
			meta, err := st.Load(id)
			if err != nil {
				return err
			}
			states, _, err := st.LoadStates(id)
			if err != nil {
				return err
			}
			if len(states) == 0 {
				return fmt.Errorf("run %s has no states", id)
			}

			fmt.Printf("run: %s\nmodel: %s\nsamples: %d\n\n", a.au.Bold(meta.ID), meta.Model, len(states))

			for i := range states[0] {
				data := make([]float64, len(states))
				for j := range states {
					data[j] = states[j][i]
					if logScale && data[j] > 0 {
						data[j] = math.Log10(data[j])
					}
				}
				caption := fmt.Sprintf("x%d vs time", i)
				if i < len(meta.Labels) {
					caption = meta.Labels[i] + " vs time"
				}
				if logScale {
					caption = "log10 " + caption
				}
				fmt.Println(asciigraph.Plot(data,
					asciigraph.Height(10),
					asciigraph.Width(80),
					asciigraph.Caption(caption),
				))
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&logScale, "log", false, "plot log10 of positive values")
	return cmd
}

// pendulumFor rebuilds the pendulum a stored run used.
func pendulumFor(meta *storage.RunMetadata) (*models.DoublePendulum, error) {
	dp := config.DefaultConfig().PendulumModel()
	for k, v := range meta.Params {
		if err := dp.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	return dp, nil
}

func (a *app) chartCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "chart [run_id]",
		Short: "render a stored run to PNG",
		Long:  "Kinetics runs are charted as N and C against time; double pendulum runs as the trace of the second bob.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.store()
			id, err := runID(st, args)
			if err != nil {
				return err
			}
			meta, err := st.Load(id)
			if err != nil {
				return err
			}
			states, times, err := st.LoadStates(id)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			column := func(i int) []float64 {
				col := make([]float64, len(states))
				for j := range states {
					col[j] = states[j][i]
				}
				return col
			}

			switch meta.Model {
			case config.ModelKinetics:
				err = export.TimeSeriesPNG(f, meta.ID, times,
					export.Series{Name: "neutron density N", Values: column(0)},
					export.Series{Name: "precursor density C", Values: column(1)},
				)
			case config.ModelDoublePendulum:
				dp, perr := pendulumFor(meta)
				if perr != nil {
					return perr
				}
				xs, ys := secondBob(dp, states)
				err = export.TrajectoryPNG(f, meta.ID+" second bob", xs, ys)
			default:
				return fmt.Errorf("no chart for model %s", meta.Model)
			}
			if err != nil {
				return err
			}

			a.log.Infow("chart written", "run", id, "path", out)
			fmt.Printf("wrote %s\n", a.au.Green(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "reactorlab.png", "output file")
	return cmd
}

func (a *app) exportJSONCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write a stored run as JSON to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.store()
			id, err := runID(st, args)
			if err != nil {
				return err
			}
			return st.ExportJSON(os.Stdout, id)
		},
	}
}

func (a *app) exportCSVCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a stored run as CSV to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.store()
			id, err := runID(st, args)
			if err != nil {
				return err
			}
			return st.ExportCSV(os.Stdout, id)
		},
	}
}

func (a *app) animateCmd() *cobra.Command {
	var (
		out   string
		svg   string
		trace string
		opts  = export.DefaultAnimationOptions()
	)
	cmd := &cobra.Command{
		Use:   "animate",
		Short: "integrate the double pendulum and save it as a GIF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), config.ModelDoublePendulum)
			if err != nil {
				return err
			}
			exp := experiment.New(cfg, a.log)
			if err := exp.Setup(); err != nil {
				return err
			}
			result, err := exp.Run(cmd.Context())
			if err != nil {
				return err
			}
			dp := cfg.PendulumModel()

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			last, err := export.AnimationGIF(f, dp, result.States, opts)
			if err != nil {
				return err
			}
			fmt.Printf("wrote %s (%d states, every %d)\n", a.au.Green(out), len(result.States), opts.Every)

			if svg != "" {
				if err := os.WriteFile(svg, []byte(export.CanvasToSVG(last, 4)), 0644); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", a.au.Green(svg))
			}
			if trace != "" {
				if err := writeTrace(trace, dp, result.States); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", a.au.Green(trace))
			}
			return nil
		},
	}
	addConfigFlags(cmd.Flags())
	cmd.Flags().StringVarP(&out, "out", "o", "double_pendulum.gif", "output GIF")
	cmd.Flags().StringVar(&svg, "svg", "", "also write the last frame as SVG")
	cmd.Flags().StringVar(&trace, "trace", "", "also write the second bob trace as PNG")
	cmd.Flags().IntVar(&opts.Every, "every", opts.Every, "draw every n-th state")
	cmd.Flags().IntVar(&opts.Delay, "delay", opts.Delay, "frame delay in 1/100 s")
	cmd.Flags().IntVar(&opts.Trail, "trail", opts.Trail, "trace length in frames")
	cmd.Flags().IntVar(&opts.Width, "width", opts.Width, "canvas width in cells")
	cmd.Flags().IntVar(&opts.Height, "height", opts.Height, "canvas height in cells")
	return cmd
}

func secondBob[S ~[]float64](dp *models.DoublePendulum, states []S) (xs, ys []float64) {
	xs = make([]float64, len(states))
	ys = make([]float64, len(states))
	for i, s := range states {
		b := dp.Positions(dynamo.State(s))
		xs[i], ys[i] = b.X2, b.Y2
	}
	return xs, ys
}

func writeTrace(path string, dp *models.DoublePendulum, states []dynamo.State) error {
	xs, ys := secondBob(dp, states)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.TrajectoryPNG(f, "second bob", xs, ys)
}
