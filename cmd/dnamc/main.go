package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/san-kum/dnamc/internal/config"
	"github.com/san-kum/dnamc/internal/sim"
)

var (
	dataDir string
	verbose bool
	logger  *log.Logger

	nBP                int
	nStep              int
	seq                string
	paramsFile         string
	gaussianParams     string
	gaussianSampling   bool
	force              float64
	torsionalStiffness float64
	targetLink         float64
	xyStiffness        float64
	kT                 float64
	relaxStep          int
	linkRelaxStep      int
	maxRampSweeps      int
	exactLink          bool
	fullerLink         bool
	checkFuller        string
	outPath            string
	outFrame           string
	inFrame            string
	snapshotPrefix     string
	seed               int64
	constantSeed       bool
	configFile         string
	preset             string
	noRecord           bool

	// ensemble
	runs int

	// scan
	forces   []float64
	forceMin float64
	forceMax float64
	forceN   int

	// analyze
	pngDir string
	bins   int
)

func main() {
	_ = godotenv.Load(".env")

	rootCmd := &cobra.Command{
		Use:   "dnamc",
		Short: "base-pair level monte carlo for DNA under tweezers",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = log.NewWithOptions(os.Stderr, log.Options{
				Prefix:          "dnamc",
				ReportTimestamp: true,
			})
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DataDir(), "data directory holding the run registry")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run one simulation and write the trajectory",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&noRecord, "no-record", false, "do not add the run to the registry")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run independent replicas concurrently",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&runs, "runs", 4, "number of replicas")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "force-extension curve over a grid of forces",
		Args:  cobra.NoArgs,
		RunE:  runScan,
	}
	addRunFlags(scanCmd)
	scanCmd.Flags().Float64SliceVar(&forces, "forces", nil, "explicit forces in pN")
	scanCmd.Flags().Float64Var(&forceMin, "force-min", 0.1, "lowest force in pN")
	scanCmd.Flags().Float64Var(&forceMax, "force-max", 10, "highest force in pN")
	scanCmd.Flags().IntVar(&forceN, "force-n", 8, "number of forces between min and max")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation in an interactive terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().BoolVar(&noRecord, "no-record", false, "do not add the run to the registry")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [npz]",
		Short: "summary statistics and autocorrelation of a trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeTrajectory,
	}
	analyzeCmd.Flags().StringVar(&pngDir, "png-dir", "", "write histogram PNGs to this directory")
	analyzeCmd.Flags().IntVar(&bins, "bins", 40, "histogram bins")

	plotCmd := &cobra.Command{
		Use:   "plot [npz]",
		Short: "plot extension and writhe per sweep",
		Args:  cobra.ExactArgs(1),
		RunE:  plotTrajectory,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "show a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, ensembleCmd, scanCmd, liveCmd, analyzeCmd, plotCmd, listCmd, showCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&nBP, "n-bp", config.DefaultNumBasePairs, "number of base pairs")
	f.IntVar(&nStep, "n-step", 0, "number of sampled sweeps")
	f.StringVar(&seq, "seq", "", "sequence; sets the number of base pairs")
	f.StringVar(&paramsFile, "params-file", "", "step parameter database (yaml)")
	f.StringVar(&gaussianParams, "gaussian-params", "", "gaussian step parameters (yaml, or a built-in name)")
	f.BoolVar(&gaussianSampling, "gaussian-sampling", false, "sample from a gaussian fitted to the database")
	f.Float64Var(&force, "force", 0, "stretching force in pN")
	f.Float64Var(&torsionalStiffness, "torsional-stiffness", 0, "torsional trap stiffness in kT/rad^2")
	f.Float64Var(&targetLink, "target-link", 0, "target linking number in turns")
	f.Float64Var(&xyStiffness, "xy-stiffness", 0, "lateral trap stiffness in pN/A")
	f.Float64Var(&kT, "kt", 0, "thermal energy in pN*A")
	f.IntVar(&relaxStep, "relax-step", config.DefaultRelaxStep, "relaxation sweeps")
	f.IntVar(&linkRelaxStep, "link-relax-step", config.DefaultLinkRelaxStep, "sweeps after the trap ramp")
	f.IntVar(&maxRampSweeps, "max-ramp-sweeps", config.DefaultMaxRamp, "give up on the trap ramp after this many sweeps")
	f.BoolVar(&exactLink, "compute-exact-link", false, "record twist and exact writhe")
	f.BoolVar(&fullerLink, "compute-fuller-link", false, "record twist and Fuller writhe")
	f.StringVar(&checkFuller, "check-fuller", "", "write Fuller vs exact writhe pairs to this file")
	f.StringVar(&outPath, "out", config.DefaultOut, "trajectory output (npz)")
	f.StringVar(&outFrame, "out-frame", "", "save the final chain here")
	f.StringVar(&inFrame, "in-frame", "", "start from a saved chain; sets the number of base pairs")
	f.StringVar(&snapshotPrefix, "snapshot-prefix", "", "save the chain after every sweep as <prefix>_<n>.csv")
	f.Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	f.BoolVar(&constantSeed, "constant-seed", false, "use --seed even when it is 0")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "start from a preset")
}

// buildConfig layers preset, config file and explicitly set flags, in that
// order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q (try `dnamc presets`)", sim.ErrConfiguration, preset)
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if preset == "" && configFile == "" && !f.Changed("n-step") {
		return nil, fmt.Errorf("%w: --n-step is required", sim.ErrConfiguration)
	}

	if f.Changed("n-bp") {
		cfg.NumBasePairs = nBP
	}
	if f.Changed("n-step") {
		cfg.NumStep = nStep
	}
	if f.Changed("seq") {
		cfg.Seq = seq
		if !f.Changed("n-bp") {
			cfg.NumBasePairs = 0
		}
	}
	if f.Changed("params-file") {
		cfg.ParamsFile = paramsFile
	}
	if f.Changed("gaussian-params") {
		cfg.GaussianParams = gaussianParams
	}
	if f.Changed("gaussian-sampling") {
		cfg.GaussianSampling = gaussianSampling
	}
	if f.Changed("force") {
		cfg.Force = force
	}
	if f.Changed("torsional-stiffness") {
		cfg.TorsionalStiffness = torsionalStiffness
	}
	if f.Changed("target-link") {
		lk := targetLink
		cfg.TargetLink = &lk
	}
	if f.Changed("xy-stiffness") {
		cfg.XYStiffness = xyStiffness
	}
	if f.Changed("kt") {
		cfg.KT = kT
	}
	if f.Changed("relax-step") {
		cfg.RelaxStep = relaxStep
	}
	if f.Changed("link-relax-step") {
		cfg.LinkRelaxStep = linkRelaxStep
	}
	if f.Changed("max-ramp-sweeps") {
		cfg.MaxRampSweeps = maxRampSweeps
	}
	if f.Changed("compute-exact-link") {
		cfg.ComputeExactLink = exactLink
	}
	if f.Changed("compute-fuller-link") {
		cfg.ComputeFullerLink = fullerLink
	}
	if f.Changed("check-fuller") {
		cfg.CheckFuller = checkFuller
	}
	if f.Changed("out") {
		cfg.Out = outPath
	}
	if f.Changed("out-frame") {
		cfg.OutFrame = outFrame
	}
	if f.Changed("in-frame") {
		cfg.InFrame = inFrame
		if !f.Changed("n-bp") {
			cfg.NumBasePairs = 0
		}
	}
	if f.Changed("snapshot-prefix") {
		cfg.SnapshotPrefix = snapshotPrefix
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("constant-seed") {
		cfg.ConstantSeed = constantSeed
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
