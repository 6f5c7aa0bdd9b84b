package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/windsim/internal/config"
	"github.com/san-kum/windsim/internal/logging"
	"github.com/san-kum/windsim/internal/turbine"
	"github.com/san-kum/windsim/internal/version"
)

var (
	configFile string
	dataDir    string
	logLevel   string
	logFile    string
	theme      string

	// turbine inputs
	preset      string
	bladeLength float64
	rpm         float64
	windSpeed   float64
	airDensity  float64
	powerCoeff  float64
	material    string
	blades      int
	adjust      string
	fanRPM      float64

	jsonOut bool

	cfg    *config.Config
	logger = zap.NewNop()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd wires every subcommand. With no subcommand the dashboard starts.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "windsim",
		Short:             "wind turbine power calculator and blade visualizer",
		Version:           version.Version,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) { _ = logger.Sync() },
		RunE:              runDashboard,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory for saved designs")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file")
	rootCmd.Flags().StringVar(&theme, "theme", "", "dashboard theme ("+strings.Join(themeNames(), ", ")+")")
	addInputFlags(rootCmd)

	calcCmd := &cobra.Command{
		Use:   "calc",
		Short: "compute power and energy for one design",
		RunE:  runCalc,
	}
	addInputFlags(calcCmd)
	calcCmd.Flags().BoolVar(&jsonOut, "json", false, "print JSON")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "power curve over a wind speed range",
		RunE:  runSweep,
	}
	addInputFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", turbine.WindSpeedRange.Min, "lowest wind speed (m/s)")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", turbine.WindSpeedRange.Max, "highest wind speed (m/s)")
	sweepCmd.Flags().IntVar(&samples, "samples", 12, "number of wind speeds")
	sweepCmd.Flags().StringVar(&csvPath, "csv", "", "also write the curve to this CSV file")
	sweepCmd.Flags().StringVar(&chartPath, "chart", "", "also save a chart (.png, .svg, .pdf)")

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "grid search the inputs for the best objective",
		RunE:  runOptimize,
	}
	addInputFlags(optimizeCmd)
	optimizeCmd.Flags().StringVar(&objective, "objective", "power", "objective ("+strings.Join(objectiveNames(), ", ")+")")
	optimizeCmd.Flags().StringSliceVar(&searchParams, "params", []string{"blade_length", "rpm"}, "parameters to search")
	optimizeCmd.Flags().IntVar(&steps, "steps", 10, "grid points per parameter")

	bladesCmd := &cobra.Command{
		Use:   "blades",
		Short: "draw the 3D blade geometry",
		RunE:  runBlades,
	}
	addInputFlags(bladesCmd)
	bladesCmd.Flags().StringVar(&svgPath, "svg", "", "write the projected plot as SVG")
	bladesCmd.Flags().StringVar(&pngPath, "png", "", "write the projected plot as PNG")
	bladesCmd.Flags().StringVar(&chartPath, "front", "", "save the front-view projection chart")
	bladesCmd.Flags().BoolVar(&jsonOut, "json", false, "print the blade curves as JSON")
	bladesCmd.Flags().Float64Var(&yaw, "yaw", 0, "extra rotation about the hub axis (rad)")
	bladesCmd.Flags().Float64Var(&pitch, "pitch", 0, "extra tilt toward the viewer (rad)")

	fanCmd := &cobra.Command{
		Use:   "fan",
		Short: "play the 2D fan animation",
		RunE:  runFan,
	}
	addInputFlags(fanCmd)
	fanCmd.Flags().IntVar(&loops, "loops", 1, "times to play the sequence (0 = until interrupted)")
	fanCmd.Flags().StringVar(&gifPath, "gif", "", "write the animation as GIF instead of playing it")
	fanCmd.Flags().StringVar(&canvasSVG, "svg", "", "write the first frame's braille canvas as SVG")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the calculator page and API over HTTP",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address")

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "write a PDF and/or XLSX design report",
		RunE:  runReport,
	}
	addInputFlags(reportCmd)
	reportCmd.Flags().StringVar(&pdfPath, "pdf", "", "PDF output path")
	reportCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "XLSX output path")
	reportCmd.Flags().StringVar(&fromXLSX, "from", "", "read inputs from a workbook written by --xlsx")
	reportCmd.Flags().StringVar(&designName, "name", "", "design name")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "evaluate a scripted list of designs",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	addInputFlags(batchCmd)
	batchCmd.Flags().BoolVar(&saveSteps, "save", false, "save steps that set save_as")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "power spread under wind speed and density variation",
		RunE:  runMonteCarlo,
	}
	addInputFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 1000, "number of trials")
	monteCarloCmd.Flags().Float64Var(&windSpread, "wind-spread", 0.2, "wind speed variation (fraction)")
	monteCarloCmd.Flags().Float64Var(&densitySpread, "density-spread", 0.05, "air density variation (fraction)")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")

	saveCmd := &cobra.Command{
		Use:   "save [name]",
		Short: "save a design",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSave,
	}
	addInputFlags(saveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved designs",
		RunE:  runList,
	}

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "show a saved design",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
	showCmd.Flags().BoolVar(&jsonOut, "json", false, "print JSON")

	deleteCmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "delete a saved design",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list turbine presets",
		RunE:  runPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "inspect or create the config file",
	}
	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "print the effective configuration",
			RunE:  runConfigShow,
		},
		&cobra.Command{
			Use:   "init [path]",
			Short: "write the default configuration",
			Args:  cobra.MaximumNArgs(1),
			RunE:  runConfigInit,
		},
	)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}

	rootCmd.AddCommand(calcCmd, sweepCmd, optimizeCmd, bladesCmd, fanCmd, serveCmd, reportCmd,
		batchCmd, monteCarloCmd, saveCmd, listCmd, showCmd, deleteCmd, presetsCmd, configCmd, versionCmd)
	return rootCmd
}

func addInputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&preset, "preset", "", "start from a preset ("+strings.Join(config.ListPresets(), ", ")+")")
	f.Float64Var(&bladeLength, "blade-length", turbine.BladeLengthRange.Default, "blade length (m)")
	f.Float64Var(&rpm, "rpm", turbine.RPMRange.Default, "rotational speed (RPM)")
	f.Float64Var(&windSpeed, "wind", turbine.WindSpeedRange.Default, "wind speed (m/s)")
	f.Float64Var(&airDensity, "density", turbine.AirDensityRange.Default, "air density (kg/m³)")
	f.Float64Var(&powerCoeff, "cp", turbine.PowerCoeffRange.Default, "power coefficient")
	f.StringVar(&material, "material", string(turbine.Materials[0]), "blade material")
	f.IntVar(&blades, "blades", turbine.BladeCountOptions[0], "number of blades (2, 3 or 4)")
	f.StringVar(&adjust, "adjust", turbine.AdjustBase.String(), "adjustment (base, add, subtract)")
	f.Float64Var(&fanRPM, "fan-rpm", turbine.FanRPMRange.Default, "animation rotation speed (RPM)")
}

// setup loads .env, the config file and WINDSIM_* variables, then applies
// the persistent flags on top.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnv(".env"); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	cfg = config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if theme != "" {
		cfg.Dashboard.Theme = theme
	}
	cfg.Normalize()

	var err error
	if cmd.Name() == "serve" {
		logger, err = logging.New(logging.Options{Level: cfg.LogLevel, OutputPath: cfg.LogFile})
	} else {
		logger, err = logging.ForTerminal(cfg.LogLevel, cfg.LogFile)
	}
	return err
}

// resolveInputs starts from the config file's turbine section, then a preset,
// then any input flag set explicitly.
func resolveInputs(cmd *cobra.Command) (turbine.Inputs, error) {
	in := cfg.Turbine
	if preset != "" {
		p, ok := config.GetPreset(preset)
		if !ok {
			return in, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		in = p
	}
	flags := cmd.Flags()
	set := func(name, param string, v float64) {
		if flags.Changed(name) {
			_ = in.SetParam(param, v)
		}
	}
	set("blade-length", "blade_length", bladeLength)
	set("rpm", "rpm", rpm)
	set("wind", "wind_speed", windSpeed)
	set("density", "air_density", airDensity)
	set("cp", "power_coefficient", powerCoeff)
	set("fan-rpm", "fan_rpm", fanRPM)
	if flags.Changed("blades") {
		in.Blades = blades
	}
	if flags.Changed("material") {
		m, err := turbine.ParseMaterial(material)
		if err != nil {
			return in, err
		}
		in.Material = m
	}
	if flags.Changed("adjust") {
		a, err := turbine.ParseAdjustment(adjust)
		if err != nil {
			return in, err
		}
		in.Adjustment = a
	}
	if err := in.Validate(); err != nil {
		clamped := in.Clamp()
		logger.Warn("inputs clamped to widget ranges", zap.Error(err))
		fmt.Fprintf(cmd.ErrOrStderr(), "note: %v; using clamped inputs\n", err)
		in = clamped
	}
	return in, nil
}
