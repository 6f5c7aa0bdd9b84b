package viz

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/windsim/internal/animation"
	"github.com/san-kum/windsim/internal/turbine"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, d Dashboard, keys ...string) (Dashboard, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var m tea.Model
		m, cmd = d.Update(key(k))
		d = m.(Dashboard)
	}
	return d, cmd
}

func newTestDashboard(opts DashboardOptions) Dashboard {
	if opts.Inputs == (turbine.Inputs{}) {
		opts.Inputs = turbine.DefaultInputs()
	}
	return NewDashboard(opts)
}

func TestDashboardDefaults(t *testing.T) {
	d := newTestDashboard(DashboardOptions{})
	assert.Equal(t, turbine.DefaultInputs(), d.Inputs())
	assert.Equal(t, turbine.Calculate(turbine.DefaultInputs()), d.Result())
	assert.Equal(t, "ocean", d.theme.Name)
}

func TestDashboardSliderStep(t *testing.T) {
	d := newTestDashboard(DashboardOptions{})
	d, _ = press(t, d, "right")
	assert.InDelta(t, 25.5, d.Inputs().BladeLength, 1e-9)

	d, _ = press(t, d, "left", "left")
	assert.InDelta(t, 24.5, d.Inputs().BladeLength, 1e-9)
	assert.InDelta(t, turbine.SweptArea(24.5), d.Result().SweptArea, 1e-9)
}

func TestDashboardSliderClamps(t *testing.T) {
	d := newTestDashboard(DashboardOptions{})
	d, _ = press(t, d, "down")
	for i := 0; i < 100; i++ {
		d, _ = press(t, d, "right")
	}
	assert.Equal(t, turbine.RPMRange.Max, d.Inputs().RPM)
	assert.InDelta(t, 1.0, d.Result().RPMEfficiency, 1e-12)
}

func TestDashboardCycleKeys(t *testing.T) {
	d := newTestDashboard(DashboardOptions{})
	d, _ = press(t, d, "m", "b", "a")

	in := d.Inputs()
	assert.Equal(t, turbine.CarbonFiber, in.Material)
	assert.Equal(t, 3, in.Blades)
	assert.Equal(t, turbine.AdjustAdd, in.Adjustment)
	assert.InDelta(t, 1.10, d.Result().AdjustFactor, 1e-12)
	assert.Equal(t, 3, len(d.blades.Edges)/(BladeSamples-1))
}

func TestDashboardRowCycle(t *testing.T) {
	d := newTestDashboard(DashboardOptions{})
	d, _ = press(t, d, "down", "down", "right")
	assert.Equal(t, turbine.CarbonFiber, d.Inputs().Material)

	d, _ = press(t, d, "up", "up", "up")
	assert.Equal(t, len(rows)-1, d.selected)
}

func TestDashboardEdit(t *testing.T) {
	d := newTestDashboard(DashboardOptions{})
	d, _ = press(t, d, "enter")
	require.True(t, d.editing)
	assert.Equal(t, "25", d.editBuf)

	d, _ = press(t, d, "backspace", "backspace", "4", "0", "x", "enter")
	assert.False(t, d.editing)
	assert.Equal(t, 40.0, d.Inputs().BladeLength)

	d, _ = press(t, d, "enter", "backspace", "backspace", "9", "9", "enter")
	assert.Equal(t, turbine.BladeLengthRange.Max, d.Inputs().BladeLength)

	d, _ = press(t, d, "enter", "esc")
	assert.False(t, d.editing)
	assert.Equal(t, turbine.BladeLengthRange.Max, d.Inputs().BladeLength)
}

func TestDashboardEditInvalid(t *testing.T) {
	d := newTestDashboard(DashboardOptions{})
	d, _ = press(t, d, "enter", "backspace", "backspace", "-", "enter")
	assert.True(t, d.failed)
	assert.Equal(t, 25.0, d.Inputs().BladeLength)
}

func TestDashboardTick(t *testing.T) {
	d := newTestDashboard(DashboardOptions{})
	m, cmd := d.Update(tickMsg(time.Now()))
	d = m.(Dashboard)
	assert.NotNil(t, cmd)
	assert.InDelta(t, animation.AngleStep(30, 30), d.angle, 1e-12)

	d, _ = press(t, d, " ")
	m, _ = d.Update(tickMsg(time.Now()))
	d = m.(Dashboard)
	assert.InDelta(t, animation.AngleStep(30, 30), d.angle, 1e-12, "paused fan should not turn")
}

func TestDashboardReset(t *testing.T) {
	d := newTestDashboard(DashboardOptions{})
	d, _ = press(t, d, "right", "m", "z", "r")
	assert.Equal(t, turbine.DefaultInputs(), d.Inputs())
	assert.Equal(t, NewCamera().Yaw, d.camera.Yaw)
}

func TestDashboardQuit(t *testing.T) {
	d := newTestDashboard(DashboardOptions{})
	_, cmd := press(t, d, "q")
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

type fakeSaver struct {
	name string
	in   turbine.Inputs
	err  error
}

func (f *fakeSaver) Save(name string, in turbine.Inputs) (string, error) {
	f.name, f.in = name, in
	if f.err != nil {
		return "", f.err
	}
	return "design_1234abcd", nil
}

func TestDashboardSave(t *testing.T) {
	saver := &fakeSaver{}
	d := newTestDashboard(DashboardOptions{Saver: saver})
	d, cmd := press(t, d, "b", "s")
	require.NotNil(t, cmd)

	m, _ := d.Update(cmd())
	d = m.(Dashboard)
	assert.Equal(t, 3, saver.in.Blades)
	assert.True(t, strings.HasPrefix(saver.name, "dashboard-"))
	assert.Contains(t, d.status, "design_1234abcd")
	assert.False(t, d.failed)
}

func TestDashboardSaveError(t *testing.T) {
	d := newTestDashboard(DashboardOptions{Saver: &fakeSaver{err: errors.New("disk full")}})
	d, cmd := press(t, d, "s")
	m, _ := d.Update(cmd())
	d = m.(Dashboard)
	assert.True(t, d.failed)
	assert.Contains(t, d.status, "disk full")

	d = newTestDashboard(DashboardOptions{})
	d, cmd = press(t, d, "s")
	assert.Nil(t, cmd)
	assert.True(t, d.failed)
}

func TestDashboardExportGIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fan.gif")
	style := animation.DefaultStyle()
	style.Size = 48
	d := newTestDashboard(DashboardOptions{GIFPath: path, Style: style, Frames: 4})
	d, cmd := press(t, d, "g")
	require.NotNil(t, cmd)

	m, _ := d.Update(cmd())
	d = m.(Dashboard)
	assert.False(t, d.failed, d.status)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestDashboardView(t *testing.T) {
	d := newTestDashboard(DashboardOptions{})
	v := d.View()
	for _, want := range []string{
		turbine.Heading,
		"Blade Length (m)",
		"Power Output",
		"Energy / Month",
		turbine.FanHeading,
		"Power Output: 3375.00 W",
		turbine.FooterCredit,
	} {
		assert.Contains(t, v, want)
	}
	d, _ = press(t, d, "?")
	assert.Contains(t, d.View(), "KEYBOARD SHORTCUTS")
}
