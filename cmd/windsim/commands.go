package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/windsim/internal/animation"
	"github.com/san-kum/windsim/internal/automation"
	"github.com/san-kum/windsim/internal/config"
	"github.com/san-kum/windsim/internal/diagram"
	"github.com/san-kum/windsim/internal/export"
	"github.com/san-kum/windsim/internal/report"
	"github.com/san-kum/windsim/internal/server"
	"github.com/san-kum/windsim/internal/storage"
	"github.com/san-kum/windsim/internal/turbine"
	"github.com/san-kum/windsim/internal/viz"
)

var (
	sweepMin  float64
	sweepMax  float64
	samples   int
	csvPath   string
	chartPath string

	objective    string
	searchParams []string
	steps        int

	svgPath string
	pngPath string
	yaw     float64
	pitch   float64

	loops     int
	gifPath   string
	canvasSVG string

	addr string

	saveSteps     bool
	trials        int
	windSpread    float64
	densitySpread float64
	seed          int64

	pdfPath    string
	xlsxPath   string
	fromXLSX   string
	designName string
)

func themeNames() []string { return viz.ThemeNames() }

func objectiveNames() []string {
	names := make([]string, 0, len(turbine.Objectives))
	for name := range turbine.Objectives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func newStore() (*storage.Store, error) {
	st := storage.New(cfg.DataDir).WithCurveSamples(cfg.Dashboard.CurveSamples)
	if err := st.Init(); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return st, nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	in, err := resolveInputs(cmd)
	if err != nil {
		return err
	}
	st, err := newStore()
	if err != nil {
		return err
	}
	style := animation.DefaultStyle()
	style.Blades = cfg.Animation.FanBlades
	logger.Info("starting dashboard", zap.String("theme", cfg.Dashboard.Theme), zap.String("data_dir", st.Dir()))
	return viz.RunDashboard(viz.DashboardOptions{
		Inputs:       in,
		Theme:        cfg.Dashboard.Theme,
		FPS:          cfg.Animation.FPS,
		Frames:       cfg.Animation.Frames,
		CurveSamples: cfg.Dashboard.CurveSamples,
		Style:        style,
		GIFPath:      filepath.Join(st.Dir(), "fan.gif"),
		Saver:        st,
		Logger:       logger,
	})
}

func runCalc(cmd *cobra.Command, args []string) error {
	in, err := resolveInputs(cmd)
	if err != nil {
		return err
	}
	res := turbine.Calculate(in)
	fan := turbine.Fan(in.FanRPM)
	out := cmd.OutOrStdout()

	if jsonOut {
		return storage.WriteJSON(out, map[string]any{
			"inputs":  in,
			"result":  res,
			"metrics": res.Metrics(),
			"fan":     fan,
		})
	}

	fmt.Fprintln(out, turbine.Heading)
	fmt.Fprintln(out)
	printInputs(out, in)
	fmt.Fprintln(out)
	for _, m := range res.Metrics() {
		fmt.Fprintf(out, "  %-24s %s\n", m.Title+":", m.Value)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, turbine.FanHeading)
	for _, line := range fan.Overlay() {
		fmt.Fprintf(out, "  %s\n", line)
	}
	return nil
}

func printInputs(out io.Writer, in turbine.Inputs) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  %s\t%.1f\n", turbine.Label("blade_length"), in.BladeLength)
	fmt.Fprintf(w, "  %s\t%.0f\n", turbine.Label("rpm"), in.RPM)
	fmt.Fprintf(w, "  %s\t%s\n", turbine.Label("material"), in.Material)
	fmt.Fprintf(w, "  %s\t%d\n", turbine.Label("blades"), in.Blades)
	fmt.Fprintf(w, "  %s\t%.1f\n", turbine.Label("wind_speed"), in.WindSpeed)
	fmt.Fprintf(w, "  %s\t%.3f\n", turbine.Label("air_density"), in.AirDensity)
	fmt.Fprintf(w, "  %s\t%.2f\n", turbine.Label("power_coefficient"), in.PowerCoeff)
	fmt.Fprintf(w, "  %s\t%s\n", turbine.Label("adjustment"), in.Adjustment)
	fmt.Fprintf(w, "  %s\t%.0f\n", turbine.Label("fan_rpm"), in.FanRPM)
	w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	in, err := resolveInputs(cmd)
	if err != nil {
		return err
	}
	if samples < 2 {
		return fmt.Errorf("need at least 2 samples, got %d", samples)
	}
	if sweepMin <= 0 || sweepMax <= sweepMin {
		return fmt.Errorf("invalid wind range: %.2f to %.2f", sweepMin, sweepMax)
	}
	curve := turbine.PowerCurve(in, turbine.Linspace(sweepMin, sweepMax, samples))
	out := cmd.OutOrStdout()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WIND (m/s)\tTSR\tPOWER (kW)\tENERGY/DAY (kWh)")
	for _, p := range curve {
		fmt.Fprintf(w, "%.2f\t%.2f\t%.2f\t%.2f\n", p.WindSpeed, p.TipSpeedRatio, p.Power/1000, p.EnergyDay)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	kw := turbine.Powers(curve)
	for i := range kw {
		kw[i] /= 1000
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, asciigraph.Plot(kw,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("power (kW), wind %.1f to %.1f m/s", sweepMin, sweepMax)),
	))

	if csvPath != "" {
		if err := writeFile(csvPath, func(w io.Writer) error { return storage.WriteCurveCSV(w, curve) }); err != nil {
			return err
		}
		fmt.Fprintf(out, "\ncurve written to %s\n", csvPath)
	}
	if chartPath != "" {
		p, err := diagram.PowerCurve(curve, in)
		if err != nil {
			return err
		}
		if err := diagram.Save(p, chartPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "chart written to %s\n", chartPath)
	}
	return nil
}

// searchRange spans a parameter's widget range; blade count uses its options.
func searchRange(name string, n int) ([]float64, error) {
	if name == "blades" {
		vals := make([]float64, len(turbine.BladeCountOptions))
		for i, b := range turbine.BladeCountOptions {
			vals[i] = float64(b)
		}
		return vals, nil
	}
	r, ok := turbine.ParamRange(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", turbine.ErrUnknownParam, name)
	}
	return turbine.Linspace(r.Min, r.Max, n), nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	in, err := resolveInputs(cmd)
	if err != nil {
		return err
	}
	obj, ok := turbine.Objectives[objective]
	if !ok {
		return fmt.Errorf("unknown objective: %s (available: %v)", objective, objectiveNames())
	}
	if steps < 2 {
		return fmt.Errorf("need at least 2 steps, got %d", steps)
	}
	ranges := make([][]float64, len(searchParams))
	for i, name := range searchParams {
		if ranges[i], err = searchRange(name, steps); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "optimizing %s over %s...\n", objective, strings.Join(searchParams, ", "))
	start := time.Now()
	best, err := turbine.NewGridSearch(searchParams, ranges).Search(ctx, in, obj)
	if err != nil {
		return err
	}
	logger.Debug("grid search finished", zap.Int("evaluated", best.Evaluated), zap.Duration("elapsed", time.Since(start)))

	fmt.Fprintf(out, "evaluated %d designs in %v\n\n", best.Evaluated, time.Since(start).Round(time.Millisecond))
	names := make([]string, 0, len(best.Params))
	for name := range best.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(out, "best parameters:")
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %.3f\n", turbine.Label(name), best.Params[name])
	}
	fmt.Fprintf(out, "\nscore: %.4f\n", best.Score)
	for _, m := range best.Result.Metrics() {
		fmt.Fprintf(out, "  %-24s %s\n", m.Title+":", m.Value)
	}
	return nil
}

func runBlades(cmd *cobra.Command, args []string) error {
	in, err := resolveInputs(cmd)
	if err != nil {
		return err
	}
	curves := viz.BladeCurves(in.BladeLength, in.Blades, viz.BladeSamples)
	cam := viz.NewCamera()
	cam.RotateZ(yaw)
	cam.RotateX(pitch)
	out := cmd.OutOrStdout()

	if jsonOut {
		return storage.WriteJSON(out, curves)
	}

	written := false
	if svgPath != "" {
		err := writeFile(svgPath, func(w io.Writer) error {
			return export.BladesSVG(w, curves, cam, 6*vg.Inch, 6*vg.Inch)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "blades written to %s\n", svgPath)
		written = true
	}
	if pngPath != "" {
		err := writeFile(pngPath, func(w io.Writer) error {
			return export.BladesPNG(w, curves, cam, 6*vg.Inch, 6*vg.Inch)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "blades written to %s\n", pngPath)
		written = true
	}
	if chartPath != "" {
		p, err := diagram.BladeProjection(curves)
		if err != nil {
			return err
		}
		if err := diagram.Save(p, chartPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "front view written to %s\n", chartPath)
		written = true
	}
	if written {
		return nil
	}

	canvas := viz.NewCanvas(60, 30)
	viz.Render3D(canvas, viz.AxesWireframe(1.2, viz.InkAxis), cam)
	viz.Render3D(canvas, viz.BladeWireframe(curves, in.BladeLength), cam)
	fmt.Fprintln(out, "3D Helical Blade Design")
	fmt.Fprint(out, canvas.String())
	for _, b := range curves {
		fmt.Fprintf(out, "  %s (%s)\n", b.Name, b.Color)
	}
	return nil
}

func runFan(cmd *cobra.Command, args []string) error {
	in, err := resolveInputs(cmd)
	if err != nil {
		return err
	}
	style := animation.DefaultStyle()
	style.Blades = cfg.Animation.FanBlades
	style.Size = cfg.Animation.ImageSize
	out := cmd.OutOrStdout()
	angles := animation.Sequence(in.FanRPM, cfg.Animation.Frames, cfg.Animation.FPS)

	if canvasSVG != "" {
		c := viz.NewCanvas(40, 20)
		viz.DrawFan(c, angles[0], style)
		svg := export.CanvasToSVG(c, 4, "#ffffff")
		if err := os.WriteFile(canvasSVG, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Fprintf(out, "frame written to %s\n", canvasSVG)
	}
	if gifPath != "" {
		frames := animation.Frames(angles, style)
		err := writeFile(gifPath, func(w io.Writer) error {
			return animation.EncodeGIF(w, frames, cfg.Animation.FPS)
		})
		if err != nil {
			return err
		}
		logger.Info("exported fan animation", zap.String("path", gifPath), zap.Int("frames", len(frames)))
		fmt.Fprintf(out, "animation written to %s (%d frames)\n", gifPath, len(frames))
	}
	if canvasSVG != "" || gifPath != "" {
		return nil
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	term := viz.NewFanTerminal(out, viz.GetTheme(cfg.Dashboard.Theme))
	term.Style = style
	if f, ok := out.(*os.File); !ok || f != os.Stdout {
		term.Color = false
	}
	err = term.Play(ctx, in.FanRPM, cfg.Animation.Frames, cfg.Animation.FPS, loops)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr != "" {
		cfg.Server.Addr = addr
	}
	st, err := newStore()
	if err != nil {
		return err
	}
	srv := server.New(server.Options{
		Addr:         cfg.Server.Addr,
		RateLimit:    cfg.Server.RateLimit,
		RateBurst:    cfg.Server.RateBurst,
		Frames:       cfg.Animation.Frames,
		FPS:          cfg.Animation.FPS,
		FanBlades:    cfg.Animation.FanBlades,
		ImageSize:    cfg.Animation.ImageSize,
		CurveSamples: cfg.Dashboard.CurveSamples,
		Defaults:     cfg.Turbine,
	}, st, logger)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })
	g.Go(func() error {
		designs, err := st.List()
		if err != nil {
			return fmt.Errorf("failed to read designs: %w", err)
		}
		logger.Info("design store ready", zap.String("dir", st.Dir()), zap.Int("designs", len(designs)))
		return nil
	})
	fmt.Fprintf(cmd.OutOrStdout(), "serving on %s (designs in %s)\n", cfg.Server.Addr, st.Dir())
	return g.Wait()
}

func runReport(cmd *cobra.Command, args []string) error {
	if pdfPath == "" && xlsxPath == "" {
		return fmt.Errorf("nothing to write: pass --pdf and/or --xlsx")
	}
	in, err := resolveInputs(cmd)
	if err != nil {
		return err
	}
	if fromXLSX != "" {
		f, err := os.Open(fromXLSX)
		if err != nil {
			return err
		}
		in, err = report.ReadInputsXLSX(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", fromXLSX, err)
		}
	}
	name := designName
	if name == "" {
		name = "design"
	}
	d := report.NewDesign(name, in, cfg.Dashboard.CurveSamples)
	out := cmd.OutOrStdout()

	// render both before touching the filesystem so a failure leaves no partial file
	var pdfBuf, xlsxBuf bytes.Buffer
	if pdfPath != "" {
		if err := report.PDF(&pdfBuf, d); err != nil {
			return err
		}
	}
	if xlsxPath != "" {
		if err := report.XLSX(&xlsxBuf, d); err != nil {
			return err
		}
	}
	if pdfPath != "" {
		if err := os.WriteFile(pdfPath, pdfBuf.Bytes(), 0644); err != nil {
			return err
		}
		fmt.Fprintf(out, "report written to %s\n", pdfPath)
	}
	if xlsxPath != "" {
		if err := os.WriteFile(xlsxPath, xlsxBuf.Bytes(), 0644); err != nil {
			return err
		}
		fmt.Fprintf(out, "workbook written to %s\n", xlsxPath)
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	base, err := resolveInputs(cmd)
	if err != nil {
		return err
	}
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	var saver automation.Saver
	if saveSteps {
		st, err := newStore()
		if err != nil {
			return err
		}
		saver = st
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	results, err := automation.RunScenario(ctx, scenario, base, saver, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if scenario.Name != "" {
		fmt.Fprintf(out, "scenario: %s\n", scenario.Name)
	}
	if scenario.Description != "" {
		fmt.Fprintf(out, "%s\n", scenario.Description)
	}
	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tLENGTH\tRPM\tWIND\tMATERIAL\tTSR\tPOWER (kW)\tENERGY/DAY (kWh)\tSAVED")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%.1fm\t%.0f\t%.1fm/s\t%s\t%.2f\t%.2f\t%.2f\t%s\n",
			r.Name,
			r.Inputs.BladeLength,
			r.Inputs.RPM,
			r.Inputs.WindSpeed,
			r.Inputs.Material,
			r.Result.TipSpeedRatio,
			r.Result.PowerOutput/1000,
			r.Result.EnergyDay,
			r.ID,
		)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	in, err := resolveInputs(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd)
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, automation.MonteCarloConfig{
		Base:          in,
		WindSpread:    windSpread,
		DensitySpread: densitySpread,
		NumTrials:     trials,
		Seed:          seed,
	})
	if err != nil {
		return err
	}
	st := automation.MonteCarloStats(results)
	nominal := turbine.Calculate(in).PowerOutput

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d trials, wind ±%.0f%%, density ±%.0f%%\n\n", len(results), windSpread*100, densitySpread*100)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STAT\tPOWER (kW)")
	for _, row := range []struct {
		name string
		v    float64
	}{
		{"nominal", nominal},
		{"mean", st.Mean},
		{"std dev", st.StdDev},
		{"min", st.Min},
		{"p10", st.P10},
		{"p50", st.P50},
		{"p90", st.P90},
		{"max", st.Max},
	} {
		fmt.Fprintf(w, "%s\t%.2f\n", row.name, row.v/1000)
	}
	return w.Flush()
}

func runSave(cmd *cobra.Command, args []string) error {
	in, err := resolveInputs(cmd)
	if err != nil {
		return err
	}
	name := "design"
	if len(args) > 0 {
		name = args[0]
	}
	st, err := newStore()
	if err != nil {
		return err
	}
	id, err := st.Save(name, in)
	if err != nil {
		return err
	}
	logger.Info("saved design", zap.String("id", id))
	fmt.Fprintf(cmd.OutOrStdout(), "saved: %s\n", id)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	designs, err := st.List()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(designs) == 0 {
		fmt.Fprintln(out, "no designs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tLENGTH\tRPM\tWIND\tMATERIAL\tPOWER (kW)")
	for _, d := range designs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1fm\t%.0f\t%.1fm/s\t%s\t%.2f\n",
			d.ID,
			d.Name,
			d.Timestamp.Format("2006-01-02 15:04:05"),
			d.Inputs.BladeLength,
			d.Inputs.RPM,
			d.Inputs.WindSpeed,
			d.Inputs.Material,
			d.Result.PowerOutput/1000,
		)
	}
	return w.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOut {
		return storage.WriteJSON(out, meta)
	}

	fmt.Fprintf(out, "design: %s\n", meta.ID)
	fmt.Fprintf(out, "name: %s\n", meta.Name)
	fmt.Fprintf(out, "saved: %s\n\n", meta.Timestamp.Format(time.RFC3339))
	printInputs(out, meta.Inputs)
	fmt.Fprintln(out)
	for _, m := range meta.Result.Metrics() {
		fmt.Fprintf(out, "  %-24s %s\n", m.Title+":", m.Value)
	}

	curve, err := st.LoadCurve(meta.ID)
	if err != nil {
		logger.Warn("no stored curve", zap.String("id", meta.ID), zap.Error(err))
		return nil
	}
	if len(curve) < 2 {
		return nil
	}
	kw := turbine.Powers(curve)
	for i := range kw {
		kw[i] /= 1000
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, asciigraph.Plot(kw,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption("power curve (kW)"),
	))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	if err := st.Delete(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted: %s\n", args[0])
	return nil
}

func runPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLENGTH\tRPM\tWIND\tMATERIAL\tBLADES\tPOWER (kW)")
	for _, name := range config.ListPresets() {
		p, _ := config.GetPreset(name)
		res := turbine.Calculate(p)
		fmt.Fprintf(w, "%s\t%.1fm\t%.0f\t%.1fm/s\t%s\t%d\t%.2f\n",
			name, p.BladeLength, p.RPM, p.WindSpeed, p.Material, p.Blades, res.PowerOutput/1000)
	}
	return w.Flush()
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := cfg.YAML()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := "windsim.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

// writeFile creates path and closes it, reporting the first error.
func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
