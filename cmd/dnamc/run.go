package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/dnamc/internal/config"
	"github.com/san-kum/dnamc/internal/experiment"
	"github.com/san-kum/dnamc/internal/npz"
	"github.com/san-kum/dnamc/internal/optim"
	"github.com/san-kum/dnamc/internal/sim"
	"github.com/san-kum/dnamc/internal/storage"
	"github.com/san-kum/dnamc/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg).WithLogger(logger)
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	start := time.Now()
	res, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := exp.WriteOutputs(res); err != nil {
		return err
	}
	printReport(exp, res, elapsed)
	return recordRun(ctx, exp, res)
}

func runLive(cmd *cobra.Command, args []string) error {
	if preset == "" && configFile == "" {
		choices := make([]viz.Choice, 0, len(config.Presets))
		for _, name := range config.ListPresets() {
			p := config.GetPreset(name)
			choices = append(choices, viz.Choice{Name: name, Info: presetInfo(p)})
		}
		chosen, err := viz.Pick("select a preset", choices)
		if err != nil {
			return err
		}
		if chosen == "" {
			return nil
		}
		preset = chosen
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		return err
	}

	title := "dnamc"
	if preset != "" {
		title += " · " + preset
	}

	start := time.Now()
	res, err := viz.RunLive(context.Background(), exp, title)
	if errors.Is(err, context.Canceled) {
		fmt.Println("run canceled")
		return nil
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := exp.WriteOutputs(res); err != nil {
		return err
	}
	printReport(exp, res, elapsed)
	return recordRun(context.Background(), exp, res)
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	if runs < 1 {
		return fmt.Errorf("%w: --runs must be at least 1", sim.ErrConfiguration)
	}
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg).WithLogger(logger)
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	start := time.Now()
	results, err := exp.Ensemble(ctx, runs)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REPLICA\tSEED\tACCEPT\tMEAN Z\tMEAN LK\tOUTPUT")
	for i, res := range results {
		out := replicaPath(cfg.Out, i)
		if err := npz.FromResult(res).Save(out); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintf(w, "%d\t%d\t%.1f%%\t%.2f\t%s\t%s\n",
			i,
			exp.Seed()+int64(i),
			100*res.AcceptRate(),
			res.Metrics["mean_extension"],
			formatMetric(res.Metrics["mean_link_turns"]),
			out,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d replicas completed in %v\n", len(results), elapsed.Round(time.Millisecond))
	return nil
}

// replicaPath turns MC_data.npz into MC_data_r<i>.npz.
func replicaPath(out string, i int) string {
	base := strings.TrimSuffix(out, ".npz")
	return fmt.Sprintf("%s_r%d.npz", base, i)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	grid := forces
	if len(grid) == 0 {
		if forceN < 1 {
			return fmt.Errorf("%w: --force-n must be at least 1", sim.ErrConfiguration)
		}
		grid = optim.Linspace(forceMin, forceMax, forceN)
	}

	ctx, stop := signalContext()
	defer stop()

	// every grid point starts from the same seed
	base := experiment.New(cfg).Seed()
	gs := optim.NewGridSearch([]string{"force"}, [][]float64{grid})
	points, err := gs.Scan(ctx, func(params map[string]float64) (*experiment.Experiment, error) {
		c := *cfg
		c.Force = params["force"]
		c.Seed = base
		c.ConstantSeed = true
		c.SnapshotPrefix = ""
		c.CheckFuller = ""
		logger.Info("scan point", "force", c.Force)
		return experiment.New(&c).WithLogger(logger), nil
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FORCE (pN)\tMEAN Z (A)\tLATERAL RMS\tACCEPT")
	ext := make([]float64, 0, len(points))
	for _, p := range points {
		z := p.Metrics["mean_extension"]
		ext = append(ext, z)
		fmt.Fprintf(w, "%.3f\t%.2f\t%.2f\t%.1f%%\n",
			p.Params["force"], z, p.Metrics["lateral_rms"], 100*p.AcceptRate)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(ext) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(ext,
			asciigraph.Height(12),
			asciigraph.Width(60),
			asciigraph.Caption("mean extension vs force"),
		))
	}
	if best, ok := optim.Best(points, "mean_extension", true); ok {
		fmt.Printf("\nlongest: %.2f A at %.3f pN\n", best.Metrics["mean_extension"], best.Params["force"])
	}
	return nil
}

func printReport(exp *experiment.Experiment, res *sim.Result, elapsed time.Duration) {
	cfg := exp.Config()
	lines := []string{
		viz.Title.Render("dnamc run"),
		"",
		viz.Row("base pairs", "%d", cfg.BasePairs()),
		viz.Row("sweeps", "%d", cfg.NumStep),
		viz.Row("seed", "%d", exp.Seed()),
		viz.Row("functional", "%s", cfg.Tweezers()),
		viz.Row("accepted", "%d / %d (%.1f%%)", res.Accepted, res.Trials, 100*res.AcceptRate()),
	}
	if r := res.Ramp; r != nil {
		lines = append(lines,
			viz.Row("ramp", "%d adjustments in %d sweeps", r.Adjustments, r.Sweeps),
			viz.Row("final link", "%.3f turns", r.FinalLink/(2*math.Pi)),
			viz.Row("  with exact writhe", "%.3f turns", r.FinalLinkExact/(2*math.Pi)),
		)
	}

	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, viz.Row(name, "%s", formatMetric(res.Metrics[name])))
	}

	switch {
	case cfg.CheckFuller != "":
		lines = append(lines, viz.Row("check file", "%s", cfg.CheckFuller))
	default:
		lines = append(lines, viz.Row("output", "%s", cfg.Out))
	}
	lines = append(lines, viz.Subtle.Render(fmt.Sprintf("completed in %v", elapsed.Round(time.Millisecond))))
	fmt.Println(viz.Panel.Render(strings.Join(lines, "\n")))
}

func formatMetric(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.4g", v)
}

func recordRun(ctx context.Context, exp *experiment.Experiment, res *sim.Result) error {
	if noRecord {
		return nil
	}
	cfg := exp.Config()

	st := storage.New(dataDir)
	if err := st.Init(ctx); err != nil {
		return fmt.Errorf("open registry: %w", err)
	}
	defer st.Close()

	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	metrics := make(map[string]float64, len(res.Metrics))
	for k, v := range res.Metrics {
		// encoding/json rejects NaN
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			metrics[k] = v
		}
	}
	out := cfg.Out
	if cfg.CheckFuller != "" {
		out = cfg.CheckFuller
	}

	id, err := st.Save(ctx, storage.Run{
		NumBP:      cfg.BasePairs(),
		NumStep:    cfg.NumStep,
		Force:      cfg.Force,
		TargetLink: cfg.TargetLink,
		AcceptRate: res.AcceptRate(),
		Output:     out,
		Seed:       exp.Seed(),
		Config:     raw,
		Metrics:    metrics,
	})
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", id)
	return nil
}

func presetInfo(cfg *config.Config) string {
	parts := []string{fmt.Sprintf("%d bp", cfg.BasePairs()), fmt.Sprintf("%d sweeps", cfg.NumStep)}
	if cfg.Force != 0 {
		parts = append(parts, fmt.Sprintf("F=%g pN", cfg.Force))
	}
	if cfg.TargetLink != nil {
		parts = append(parts, fmt.Sprintf("Lk=%g", *cfg.TargetLink))
	}
	if cfg.Seq != "" {
		parts = append(parts, "sequence")
	}
	return strings.Join(parts, ", ")
}
