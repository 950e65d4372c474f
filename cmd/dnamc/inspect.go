package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/dnamc/internal/analysis"
	"github.com/san-kum/dnamc/internal/config"
	"github.com/san-kum/dnamc/internal/export"
	"github.com/san-kum/dnamc/internal/npz"
	"github.com/san-kum/dnamc/internal/storage"
	"github.com/san-kum/dnamc/internal/viz"
)

func analyzeTrajectory(cmd *cobra.Command, args []string) error {
	traj, err := npz.Load(args[0])
	if err != nil {
		return err
	}
	if len(traj.Coords) == 0 {
		return fmt.Errorf("%s: no sweeps recorded", args[0])
	}

	ext := traj.Extension()
	lines := []string{
		viz.Title.Render("trajectory " + filepath.Base(args[0])),
		"",
		viz.Row("sweeps", "%d", len(ext)),
	}
	lines = append(lines, summaryRows("extension (A)", analysis.Summarize(ext))...)
	if p := analysis.DominantPeriod(ext); p > 0 {
		lines = append(lines, viz.Row("  period (sweeps)", "%.1f", p))
	}

	var link []float64
	if lk := traj.Link(); lk != nil {
		link = analysis.Turns(lk)
		lines = append(lines, "")
		lines = append(lines, summaryRows("link (turns)", analysis.Summarize(link))...)
		lines = append(lines, summaryRows("writhe (turns)", analysis.Summarize(analysis.Turns(traj.Writhe)))...)
	}
	fmt.Println(viz.Panel.Render(strings.Join(lines, "\n")))

	if pngDir == "" {
		return nil
	}
	if err := os.MkdirAll(pngDir, 0755); err != nil {
		return err
	}
	written := []string{filepath.Join(pngDir, "extension_hist.png"), filepath.Join(pngDir, "extension_trace.png")}
	if err := export.Histogram(written[0], "terminal extension", "z (A)", ext, bins); err != nil {
		return err
	}
	if err := export.Series(written[1], "terminal extension", "z (A)", ext); err != nil {
		return err
	}
	if link != nil {
		path := filepath.Join(pngDir, "link_hist.png")
		if err := export.Histogram(path, "linking number", "Lk (turns)", link, bins); err != nil {
			return err
		}
		written = append(written, path)
	}
	for _, p := range written {
		fmt.Printf("wrote %s\n", p)
	}
	return nil
}

func summaryRows(label string, s analysis.Summary) []string {
	return []string{
		viz.Row(label, "%.3f ± %.3f", s.Mean, s.StdErr),
		viz.Row("  stddev", "%.3f", s.StdDev),
		viz.Row("  range", "[%.3f, %.3f]", s.Min, s.Max),
		viz.Row("  tau (sweeps)", "%.1f", s.Tau),
	}
}

func plotTrajectory(cmd *cobra.Command, args []string) error {
	traj, err := npz.Load(args[0])
	if err != nil {
		return err
	}
	if len(traj.Coords) == 0 {
		return fmt.Errorf("%s: no sweeps recorded", args[0])
	}

	fmt.Printf("trajectory: %s\n", args[0])
	fmt.Printf("sweeps: %d\n\n", len(traj.Coords))

	fmt.Println(asciigraph.Plot(traj.Extension(),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("terminal z (A) per sweep"),
	))
	fmt.Println()

	if traj.Writhe != nil {
		fmt.Println(asciigraph.Plot(analysis.Turns(traj.Writhe),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("writhe (turns) per sweep"),
		))
		fmt.Println()
	}
	return nil
}

func openStore(ctx context.Context) (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(ctx); err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	return st, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tBP\tSWEEPS\tFORCE\tLK\tACCEPT\tOUTPUT")
	for _, run := range runs {
		lk := "-"
		if run.TargetLink != nil {
			lk = fmt.Sprintf("%g", *run.TargetLink)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%g\t%s\t%.1f%%\t%s\n",
			run.ID,
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.NumBP,
			run.NumStep,
			run.Force,
			lk,
			100*run.AcceptRate,
			run.Output,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.Load(ctx, args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSETTINGS")
	for _, name := range config.ListPresets() {
		fmt.Fprintf(w, "%s\t%s\n", name, presetInfo(config.GetPreset(name)))
	}
	return w.Flush()
}
