package main

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cwbudde/numopt/internal/gd"
	"github.com/cwbudde/numopt/internal/objectives"
	"github.com/cwbudde/numopt/internal/opt"
	"github.com/cwbudde/numopt/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// trainOptions holds every scalar train setting. Vector settings (x0, bounds,
// params) are resolved separately by float64SliceSetting and stringMapSetting.
type trainOptions struct {
	gd.OptimConfig `mapstructure:",squash"`

	Objective string `mapstructure:"objective"`

	CSV     string `mapstructure:"csv"`
	Console bool   `mapstructure:"console"`

	DecayFactor float64 `mapstructure:"decay-factor"`
	DecayPeriod int     `mapstructure:"decay-period"`
	MinLR       float64 `mapstructure:"min-lr"`
	Target      float64 `mapstructure:"target"`

	PlateauPatience  int     `mapstructure:"plateau-patience"`
	PlateauThreshold float64 `mapstructure:"plateau-threshold"`

	WarmStart bool  `mapstructure:"warm-start"`
	WarmIters int   `mapstructure:"warm-iters"`
	WarmPop   int   `mapstructure:"warm-pop"`
	Seed      int64 `mapstructure:"seed"`

	DataDir     string `mapstructure:"data-dir"`
	Save        bool   `mapstructure:"save"`
	Trace       bool   `mapstructure:"trace"`
	MetricsFile string `mapstructure:"metrics-file"`
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Minimize a built-in objective with gradient descent",
	Long: `Runs gradient descent on one of the built-in objectives:

  cubic        a3*x^3 + a2*x^2 + a1*x + a0            (params a3 a2 a1 a0)
  quadratic2d  a11*x1^2 + a22*x2^2 + a12*x1*x2 + ...  (params a11 a22 a12 b1 b2 c0)
  quadratic    0.5*|x - c|^2                          (params c1 .. cN)
  sincos       sin(x1) + cos(x2), numeric gradient only

Parameters are given as --param key=value.`,
	RunE: runTrain,
}

func init() {
	defaults := gd.DefaultOptimConfig()
	f := trainCmd.Flags()

	f.String("objective", "quadratic", "Objective: "+joinNames(objectives.Supported()))
	f.StringToString("param", nil, "Objective parameter as key=value (repeatable)")
	f.Float64Slice("x0", nil, "Starting point (default: origin)")

	f.Float64("lr", defaults.LearningRate, "Learning rate")
	f.Float64("eps", defaults.Tolerance, "Stop when |grad|_inf < eps")
	f.Int("max-iters", defaults.MaxIterations, "Maximum number of iterations")
	f.Float64("h", defaults.NumericGradientStep, "Finite-difference step")

	f.String("csv", "", "Write a per-iteration CSV log to this path")
	f.Bool("console", false, "Print one line per iteration")
	f.Float64("decay-factor", 0.5, "Learning-rate decay factor")
	f.Int("decay-period", 0, "Decay the learning rate every N iterations (0 = off)")
	f.Float64("min-lr", 0, "Learning-rate floor for decay")
	f.Float64("target", math.NaN(), "Stop once f(x) <= target")
	f.Int("plateau-patience", 0, "Stop after N iterations without relative improvement (0 = off)")
	f.Float64("plateau-threshold", 1e-6, "Relative improvement that resets the plateau counter")

	f.Bool("warm-start", false, "Pick x0 with mayfly inside --lower/--upper first")
	f.Float64Slice("lower", nil, "Warm-start lower bounds")
	f.Float64Slice("upper", nil, "Warm-start upper bounds")
	f.Int("warm-iters", 50, "Warm-start iterations")
	f.Int("warm-pop", opt.MinPopulation, "Warm-start population size")
	f.Int64("seed", 42, "Warm-start random seed")

	f.String("data-dir", "./data", "Base directory for run records")
	f.Bool("save", false, "Save a run record")
	f.Bool("trace", false, "With --save, also write trace.jsonl")
	f.String("metrics-file", "", "Write final Prometheus metrics to this file")

	rootCmd.AddCommand(trainCmd)
}

func joinNames(names []objectives.Name) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}

func runTrain(cmd *cobra.Command, args []string) error {
	v, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	var opts trainOptions
	if err := v.Unmarshal(&opts); err != nil {
		return fmt.Errorf("failed to decode options: %w", err)
	}

	flags := cmd.Flags()
	rawParams, err := stringMapSetting(v, flags, "param")
	if err != nil {
		return err
	}
	x0, err := float64SliceSetting(v, flags, "x0")
	if err != nil {
		return err
	}

	params, err := objectives.ParseParams(rawParams)
	if err != nil {
		return err
	}
	obj, err := objectives.New(opts.Objective, len(x0), params)
	if err != nil {
		return err
	}
	if len(x0) == 0 {
		x0 = make([]float64, obj.Dim())
	}

	if opts.WarmStart {
		lower, err := float64SliceSetting(v, flags, "lower")
		if err != nil {
			return err
		}
		upper, err := float64SliceSetting(v, flags, "upper")
		if err != nil {
			return err
		}
		optimizer := opt.NewMayfly(opts.WarmIters, opts.WarmPop, opts.Seed)
		x0, _, err = opt.WarmStart(optimizer, obj, lower, upper)
		if err != nil {
			return fmt.Errorf("failed to warm start: %w", err)
		}
	}

	initial := append([]float64(nil), x0...)
	x := append([]float64(nil), x0...)

	callbacks, cleanup, err := buildCallbacks(cmd, &opts)
	if err != nil {
		return err
	}
	defer cleanup()

	runID := store.NewRunID()
	var traceWriter *store.TraceWriter
	if opts.Save && opts.Trace {
		traceWriter, err = store.NewTraceWriter(opts.DataDir, runID, false)
		if err != nil {
			return fmt.Errorf("failed to create trace writer: %w", err)
		}
		defer traceWriter.Close()
		callbacks = append(callbacks, gd.NewTraceRecorder(traceWriter, true))
	}

	var registry *prometheus.Registry
	if opts.MetricsFile != "" {
		registry = prometheus.NewRegistry()
		recorder, err := gd.NewMetricsRecorder(registry)
		if err != nil {
			return err
		}
		callbacks = append(callbacks, recorder)
	}

	cfg := opts.OptimConfig
	slog.Info("Starting training", "objective", opts.Objective, "dim", obj.Dim(), "lr", cfg.LearningRate)

	start := time.Now()
	stats, err := gd.NewTrainer().Minimize(cmd.Context(), obj, x, &cfg, callbacks...)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	if traceWriter != nil {
		if err := traceWriter.Close(); err != nil {
			return fmt.Errorf("failed to close trace: %w", err)
		}
	}

	if registry != nil {
		if err := prometheus.WriteToTextfile(opts.MetricsFile, registry); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	if opts.Save {
		summary := store.TrainSummary{
			Objective:     string(objectives.NormalizeName(opts.Objective)),
			Initial:       initial,
			Final:         x,
			Iterations:    stats.Iterations,
			FinalValue:    stats.FinalValue,
			FinalGradNorm: stats.FinalGradNorm,
			Outcome:       string(stats.Outcome()),
			LearningRate:  cfg.LearningRate,
			Tolerance:     cfg.Tolerance,
			MaxIterations: cfg.MaxIterations,
		}
		if err := saveRun(opts.DataDir, store.NewTrainRecord(runID, summary, elapsed)); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Outcome: %s after %d iterations\n", stats.Outcome(), stats.Iterations)
	fmt.Fprintf(out, "f(x) = %.10f\n", stats.FinalValue)
	fmt.Fprintf(out, "|grad|_inf = %.3e\n", stats.FinalGradNorm)
	for i, xi := range x {
		fmt.Fprintf(out, "x%d = %.10f\n", i+1, xi)
	}
	return nil
}

// buildCallbacks assembles the observers selected by opts. Loggers come
// first so they record each iteration before a stop or decay callback acts.
func buildCallbacks(cmd *cobra.Command, opts *trainOptions) ([]gd.Callback, func(), error) {
	var callbacks []gd.Callback
	cleanup := func() {}

	if opts.CSV != "" {
		csvLogger, err := gd.NewCSVLogger(opts.CSV)
		if err != nil {
			return nil, cleanup, err
		}
		callbacks = append(callbacks, csvLogger)
		cleanup = func() {
			if err := csvLogger.Close(); err != nil {
				slog.Error("Failed to close CSV log", "path", opts.CSV, "error", err)
			}
		}
	}
	if opts.Console {
		callbacks = append(callbacks, gd.NewConsoleLogger(cmd.OutOrStdout()))
	}
	if opts.DecayPeriod > 0 {
		callbacks = append(callbacks, &gd.LearningRateDecay{
			Factor: opts.DecayFactor,
			Period: opts.DecayPeriod,
			MinLR:  opts.MinLR,
		})
	}
	if !math.IsNaN(opts.Target) {
		callbacks = append(callbacks, &gd.EarlyStop{Target: opts.Target})
	}
	if opts.PlateauPatience > 0 {
		callbacks = append(callbacks, gd.NewPlateauStop(opts.PlateauPatience, opts.PlateauThreshold))
	}
	return callbacks, cleanup, nil
}
