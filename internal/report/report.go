// Package report produces printable and spreadsheet summaries of a design.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/san-kum/windsim/internal/diagram"
	"github.com/san-kum/windsim/internal/turbine"
)

// Design bundles what a report describes.
type Design struct {
	Name    string
	Created time.Time
	Inputs  turbine.Inputs
	Result  turbine.Result
	Fan     turbine.FanEstimate
	Curve   []turbine.CurvePoint
}

// NewDesign evaluates in and samples its power curve.
func NewDesign(name string, in turbine.Inputs, samples int) Design {
	in = in.Clamp()
	return Design{
		Name:    name,
		Created: time.Now(),
		Inputs:  in,
		Result:  turbine.Calculate(in),
		Fan:     turbine.Fan(in.FanRPM),
		Curve:   turbine.DefaultCurve(in, samples),
	}
}

// inputRows lists the inputs with their parameter keys, in widget order.
func inputRows(in turbine.Inputs) [][3]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return [][3]string{
		{turbine.Label("blade_length"), f(in.BladeLength), "blade_length"},
		{turbine.Label("rpm"), f(in.RPM), "rpm"},
		{turbine.Label("material"), string(in.Material), "material"},
		{turbine.Label("blades"), strconv.Itoa(in.Blades), "blades"},
		{turbine.Label("wind_speed"), f(in.WindSpeed), "wind_speed"},
		{turbine.Label("air_density"), f(in.AirDensity), "air_density"},
		{turbine.Label("power_coefficient"), f(in.PowerCoeff), "power_coefficient"},
		{turbine.Label("adjustment"), in.Adjustment.String(), "adjustment"},
		{turbine.Label("fan_rpm"), f(in.FanRPM), "fan_rpm"},
	}
}

// PDF writes a one-page design sheet with the power curve chart.
func PDF(w io.Writer, d Design) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(turbine.AppTitle, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, turbine.AppTitle)
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	if d.Name != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Design: %s", d.Name))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", d.Created.Format("2006-01-02 15:04")))
	pdf.Ln(10)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, title)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
	}
	row := func(label, value string) {
		pdf.CellFormat(80, 6, tr(label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, tr(value), "1", 1, "R", false, 0, "")
	}

	section("Inputs")
	for _, r := range inputRows(d.Inputs) {
		row(r[0], r[1])
	}
	pdf.Ln(4)

	section("Results")
	for _, m := range d.Result.Metrics() {
		row(m.Title, m.Value)
	}
	pdf.Ln(4)

	section(turbine.FanHeading)
	for _, line := range d.Fan.Overlay() {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}
	pdf.SetFont("Helvetica", "I", 8)
	pdf.Cell(0, 5, "Animation figures are an illustrative estimate, not the aerodynamic model.")
	pdf.Ln(8)

	if len(d.Curve) >= 2 {
		var chart bytes.Buffer
		if err := diagram.PowerCurvePNG(&chart, d.Curve, d.Inputs); err != nil {
			return fmt.Errorf("report: power curve: %w", err)
		}
		opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader("curve", opt, &chart)
		pdf.ImageOptions("curve", pdf.GetX(), pdf.GetY(), 170, 0, true, opt, 0, "")
	}

	pdf.SetY(-20)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 6, turbine.FooterCredit, "", 0, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
