package diagram

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/windsim/internal/turbine"
	"github.com/san-kum/windsim/internal/viz"
)

func TestPowerCurvePNG(t *testing.T) {
	in := turbine.DefaultInputs()
	var buf bytes.Buffer
	require.NoError(t, PowerCurvePNG(&buf, turbine.DefaultCurve(in, 20), in))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 100)
}

func TestPowerCurveSVG(t *testing.T) {
	in := turbine.DefaultInputs()
	var buf bytes.Buffer
	require.NoError(t, PowerCurveSVG(&buf, turbine.DefaultCurve(in, 10), in))
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), "Wind Speed (m/s)")
}

func TestPowerCurveNoData(t *testing.T) {
	_, err := PowerCurve(nil, turbine.DefaultInputs())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestPowerCurveMarkerOnlyInRange(t *testing.T) {
	in := turbine.DefaultInputs()
	curve := turbine.PowerCurve(in, turbine.Linspace(3, 10, 8))
	render := func(in turbine.Inputs) string {
		p, err := PowerCurve(curve, in)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, p, Width, Height, "svg"))
		return buf.String()
	}

	label := fmt.Sprintf("%.0f W", turbine.Calculate(in).PowerOutput)
	assert.NotContains(t, render(in), label)

	in.WindSpeed = 8
	label = fmt.Sprintf("%.0f W", turbine.Calculate(in).PowerOutput)
	assert.Contains(t, render(in), label)
}

func TestBladeProjection(t *testing.T) {
	blades := viz.BladeCurves(25, 3, viz.BladeSamples)
	p, err := BladeProjection(blades)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, p, Width, Height, "svg"))
	for _, b := range blades {
		assert.Contains(t, buf.String(), b.Name)
	}

	_, err = BladeProjection(nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSave(t *testing.T) {
	p, err := BladeProjection(viz.BladeCurves(10, 2, 20))
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, Save(p, filepath.Join(dir, "out", "blades.svg")))
	_, err = os.Stat(filepath.Join(dir, "out", "blades.svg"))
	assert.NoError(t, err)

	require.NoError(t, Save(p, filepath.Join(dir, "noext")))
	_, err = os.Stat(filepath.Join(dir, "noext.png"))
	assert.NoError(t, err)
}
