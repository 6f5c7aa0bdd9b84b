package viz

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"go.uber.org/zap"

	"github.com/san-kum/windsim/internal/animation"
	"github.com/san-kum/windsim/internal/turbine"
)

const (
	bladeCanvasW, bladeCanvasH = 44, 18
	fanCanvasW, fanCanvasH     = 30, 15
	sliderWidth                = 14
	defaultGIFPath             = "windsim_fan.gif"
)

// Saver persists a design and returns its id.
type Saver interface {
	Save(name string, in turbine.Inputs) (string, error)
}

type DashboardOptions struct {
	Inputs       turbine.Inputs
	Theme        string
	FPS          int
	Frames       int
	CurveSamples int
	Style        animation.Style
	GIFPath      string
	Saver        Saver
	Logger       *zap.Logger
}

type tickMsg time.Time

type gifSavedMsg struct {
	path string
	err  error
}

type designSavedMsg struct {
	id  string
	err error
}

// rows is the widget order of the control panel.
var rows = []string{
	"blade_length", "rpm", "material", "blades",
	"wind_speed", "air_density", "power_coefficient", "adjustment",
	"fan_rpm",
}

// Dashboard is the interactive calculator: controls on the left, metric tiles,
// the 3D blade plot and the animated fan on the right.
type Dashboard struct {
	in, initial turbine.Inputs
	result      turbine.Result
	fan         turbine.FanEstimate
	curve       []turbine.CurvePoint

	selected int
	editing  bool
	editBuf  string

	camera  *Camera
	blades  *Wireframe
	angle   float64
	running bool

	theme    Theme
	styles   Styles
	showHelp bool
	status   string
	failed   bool

	fps, frames, samples int
	style                animation.Style
	gifPath              string
	saver                Saver
	log                  *zap.Logger
}

func NewDashboard(opts DashboardOptions) Dashboard {
	if opts.FPS <= 0 {
		opts.FPS = animation.DefaultFPS
	}
	if opts.Frames <= 0 {
		opts.Frames = animation.DefaultFrames
	}
	if opts.CurveSamples < 2 {
		opts.CurveSamples = 45
	}
	if opts.Style.Size <= 0 {
		opts.Style = animation.DefaultStyle()
	}
	if opts.GIFPath == "" {
		opts.GIFPath = defaultGIFPath
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	in := opts.Inputs.Clamp()
	theme := GetTheme(opts.Theme)
	d := Dashboard{
		in:      in,
		initial: in,
		camera:  NewCamera(),
		running: true,
		theme:   theme,
		styles:  NewStyles(theme),
		fps:     opts.FPS,
		frames:  opts.Frames,
		samples: opts.CurveSamples,
		style:   opts.Style,
		gifPath: opts.GIFPath,
		saver:   opts.Saver,
		log:     opts.Logger,
	}
	d.recalc()
	return d
}

// Inputs returns the current, clamped inputs.
func (d Dashboard) Inputs() turbine.Inputs { return d.in }

func (d Dashboard) Result() turbine.Result { return d.result }

func (d Dashboard) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(d.fps), func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (d Dashboard) Init() tea.Cmd { return d.tick() }

func (d Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if d.editing {
			return d.editKey(msg)
		}
		return d.handleKey(msg)
	case tickMsg:
		if d.running {
			d.angle = math.Mod(d.angle+animation.AngleStep(d.in.FanRPM, d.fps), 2*math.Pi)
		}
		return d, d.tick()
	case gifSavedMsg:
		if msg.err != nil {
			d.setError("gif export failed: " + msg.err.Error())
			return d, nil
		}
		d.setStatus("saved animation to " + msg.path)
	case designSavedMsg:
		if msg.err != nil {
			d.setError("save failed: " + msg.err.Error())
			return d, nil
		}
		d.setStatus("saved design " + msg.id)
	}
	return d, nil
}

func (d Dashboard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return d, tea.Quit
	case "tab", "down", "j":
		d.selected = (d.selected + 1) % len(rows)
	case "shift+tab", "up", "k":
		d.selected = (d.selected - 1 + len(rows)) % len(rows)
	case "right", "l":
		d.step(1)
	case "left", "h":
		d.step(-1)
	case "enter":
		if _, ok := turbine.ParamRange(rows[d.selected]); ok {
			d.editing = true
			d.editBuf = strconv.FormatFloat(d.in.GetParams()[rows[d.selected]], 'f', -1, 64)
		}
	case "m":
		d.in.Material = d.in.Material.Next()
		d.recalc()
	case "b":
		d.in.Blades = turbine.NextBladeCount(d.in.Blades)
		d.recalc()
	case "a":
		d.in.Adjustment = d.in.Adjustment.Next()
		d.recalc()
	case " ":
		d.running = !d.running
	case "r":
		d.in = d.initial
		d.angle = 0
		d.camera = NewCamera()
		d.recalc()
		d.setStatus("reset to starting inputs")
	case "t":
		d.theme = NextTheme(d.theme)
		d.styles = NewStyles(d.theme)
	case "?":
		d.showHelp = !d.showHelp
	case "x":
		d.camera.RotateX(0.1)
	case "X":
		d.camera.RotateX(-0.1)
	case "y":
		d.camera.RotateY(0.1)
	case "Y":
		d.camera.RotateY(-0.1)
	case "z":
		d.camera.RotateZ(0.1)
	case "Z":
		d.camera.RotateZ(-0.1)
	case "+", "=":
		d.camera.ZoomIn()
	case "-", "_":
		d.camera.ZoomOut()
	case "g":
		d.setStatus("rendering animation...")
		return d, d.exportGIF()
	case "s":
		if d.saver == nil {
			d.setError("no design store configured")
			return d, nil
		}
		return d, d.saveDesign()
	}
	return d, nil
}

func (d Dashboard) editKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := rows[d.selected]
		v, err := strconv.ParseFloat(d.editBuf, 64)
		d.editing, d.editBuf = false, ""
		if err != nil {
			d.setError(fmt.Sprintf("invalid number for %s", turbine.Label(name)))
			return d, nil
		}
		_ = d.in.SetParam(name, v)
		d.recalc()
	case "esc":
		d.editing, d.editBuf = false, ""
	case "backspace":
		if len(d.editBuf) > 0 {
			d.editBuf = d.editBuf[:len(d.editBuf)-1]
		}
	default:
		for _, c := range msg.Runes {
			if (c >= '0' && c <= '9') || c == '.' || c == '-' {
				d.editBuf += string(c)
			}
		}
	}
	return d, nil
}

// step moves the selected slider by one step, or cycles a dropdown.
func (d *Dashboard) step(dir int) {
	name := rows[d.selected]
	switch name {
	case "material":
		d.in.Material = d.in.Material.Next()
	case "blades":
		d.in.Blades = turbine.NextBladeCount(d.in.Blades)
	case "adjustment":
		d.in.Adjustment = d.in.Adjustment.Next()
	default:
		r, _ := turbine.ParamRange(name)
		v := d.in.GetParams()[name] + float64(dir)*r.Step
		_ = d.in.SetParam(name, math.Round(v/r.Step)*r.Step)
	}
	d.recalc()
}

// recalc clamps the inputs and refreshes every derived value.
func (d *Dashboard) recalc() {
	d.in = d.in.Clamp()
	d.result = turbine.Calculate(d.in)
	d.fan = turbine.Fan(d.in.FanRPM)
	d.curve = turbine.DefaultCurve(d.in, d.samples)
	d.blades = BladeWireframe(BladeCurves(d.in.BladeLength, d.in.Blades, BladeSamples), d.in.BladeLength)
	d.failed = false
}

func (d *Dashboard) setStatus(s string) { d.status, d.failed = s, false }

func (d *Dashboard) setError(s string) {
	d.status, d.failed = s, true
	d.log.Warn("dashboard", zap.String("error", s))
}

func (d Dashboard) exportGIF() tea.Cmd {
	path, rpm, frames, fps, style := d.gifPath, d.in.FanRPM, d.frames, d.fps, d.style
	log := d.log
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return gifSavedMsg{err: err}
		}
		imgs := animation.Frames(animation.Sequence(rpm, frames, fps), style)
		if err := animation.EncodeGIF(f, imgs, fps); err != nil {
			f.Close()
			return gifSavedMsg{err: err}
		}
		if err := f.Close(); err != nil {
			return gifSavedMsg{err: err}
		}
		log.Info("exported fan animation", zap.String("path", path), zap.Int("frames", len(imgs)))
		return gifSavedMsg{path: path}
	}
}

func (d Dashboard) saveDesign() tea.Cmd {
	saver, in := d.saver, d.in
	name := "dashboard-" + time.Now().Format("20060102-150405")
	return func() tea.Msg {
		id, err := saver.Save(name, in)
		return designSavedMsg{id: id, err: err}
	}
}

func (d Dashboard) View() string {
	st := d.styles
	var left strings.Builder
	left.WriteString(GradientText(turbine.AppTitle, d.theme.Primary, d.theme.Secondary) + "\n")
	left.WriteString(st.Heading.Render(turbine.Heading) + "\n")
	for i, name := range rows {
		left.WriteString(d.renderRow(i, name) + "\n")
	}
	left.WriteString("\n" + st.Muted.Render("Power vs wind speed (kW)") + "\n")
	left.WriteString(d.curvePlot() + "\n")

	right := lipgloss.JoinVertical(lipgloss.Left,
		d.renderTiles(),
		lipgloss.JoinHorizontal(lipgloss.Top, d.renderBlades(), d.renderFan()),
	)
	main := lipgloss.JoinHorizontal(lipgloss.Top, st.Panel.Render(left.String()), right)

	var s strings.Builder
	s.WriteString(main + "\n")
	if d.status != "" {
		if d.failed {
			s.WriteString(st.Error.Render(d.status) + "\n")
		} else {
			s.WriteString(st.Status.Render(d.status) + "\n")
		}
	}
	s.WriteString(st.Help.Render("tab/↑↓ select  ←→ adjust  enter edit  m/b/a cycle  x/y/z/+/- view  g gif  s save  ? help  q quit") + "\n")
	s.WriteString(Separator(60, st.Muted) + "\n")
	s.WriteString(st.Muted.Render(turbine.FooterCredit))
	if d.showHelp {
		return helpText + "\n" + s.String()
	}
	return s.String()
}

func (d Dashboard) renderRow(i int, name string) string {
	st := d.styles
	var value, bar string
	switch name {
	case "material":
		value = string(d.in.Material)
	case "blades":
		value = strconv.Itoa(d.in.Blades)
	case "adjustment":
		value = d.in.Adjustment.String()
	default:
		r, _ := turbine.ParamRange(name)
		v := d.in.GetParams()[name]
		value = strconv.FormatFloat(v, 'f', decimals(r.Step), 64)
		bar = SliderBar(v, r.Min, r.Max, sliderWidth) + " "
	}
	if i == d.selected && d.editing {
		value = d.editBuf + "▏"
	}
	label := turbine.Label(name)
	if i == d.selected {
		return st.Selected.Render("> "+fmt.Sprintf("%-24s", label)) + bar + st.Selected.Render(value)
	}
	return "  " + st.Label.Render(label) + st.Muted.Render(bar) + st.Value.Render(value)
}

func (d Dashboard) renderTiles() string {
	metrics := d.result.Metrics()
	tiles := make([]string, len(metrics))
	for i, m := range metrics {
		tiles[i] = d.styles.Tile.Render(d.styles.Muted.Render(m.Title) + "\n" + d.styles.Value.Render(m.Value))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, tiles[:3]...),
		lipgloss.JoinHorizontal(lipgloss.Top, tiles[3:]...),
	)
}

func (d Dashboard) renderBlades() string {
	c := NewCanvas(bladeCanvasW, bladeCanvasH)
	Render3D(c, AxesWireframe(1.2, InkAxis), d.camera)
	Render3D(c, d.blades, d.camera)
	var legend strings.Builder
	inks := d.theme.Inks()
	for i := 0; i < d.in.Blades; i++ {
		legend.WriteString(inks[i%len(BladeColors)+1].Render("━ ") + fmt.Sprintf("Blade %d  ", i+1))
	}
	return d.styles.Panel.Render(c.Render(inks) + "\n" + legend.String())
}

func (d Dashboard) renderFan() string {
	c := NewCanvas(fanCanvasW, fanCanvasH)
	DrawFan(c, d.angle, d.style)
	var b strings.Builder
	b.WriteString(c.Render(d.theme.Inks()) + "\n")
	b.WriteString(d.styles.Value.Render(turbine.FanHeading) + "\n")
	for _, line := range d.fan.Overlay() {
		b.WriteString(line + "\n")
	}
	b.WriteString(d.styles.Muted.Render("illustrative estimate"))
	return d.styles.Panel.Render(b.String())
}

func (d Dashboard) curvePlot() string {
	if len(d.curve) < 2 {
		return ""
	}
	kw := turbine.Powers(d.curve)
	for i := range kw {
		kw[i] /= 1000
	}
	return asciigraph.Plot(kw,
		asciigraph.Height(6),
		asciigraph.Width(40),
		asciigraph.Caption(fmt.Sprintf("%.0f–%.0f m/s", d.curve[0].WindSpeed, d.curve[len(d.curve)-1].WindSpeed)),
	)
}

func decimals(step float64) int {
	n := 0
	for step < 1 && n < 4 {
		step *= 10
		n++
	}
	if step != math.Trunc(step) && n < 4 {
		n++
	}
	return n
}

// RunDashboard starts the dashboard in the alternate screen.
func RunDashboard(opts DashboardOptions) error {
	_, err := tea.NewProgram(NewDashboard(opts), tea.WithAltScreen()).Run()
	return err
}

const helpText = `
╔══════════════════════════════════════════╗
║            KEYBOARD SHORTCUTS            ║
╠══════════════════════════════════════════╣
║  Tab/↑↓   - Select control               ║
║  ←/→      - Adjust slider, cycle choice  ║
║  Enter    - Type an exact value          ║
║  M / B / A - Material, blades, adjust    ║
║  x/y/z    - Rotate 3D view (shift: back) ║
║  + / -    - Zoom 3D view                 ║
║  Space    - Pause/resume animation       ║
║  G        - Export fan GIF               ║
║  S        - Save design                  ║
║  T        - Cycle themes                 ║
║  R        - Reset inputs                 ║
║  Q        - Quit                         ║
╚══════════════════════════════════════════╝`
