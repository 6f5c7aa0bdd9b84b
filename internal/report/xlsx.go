package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/san-kum/windsim/internal/turbine"
)

const (
	SummarySheet = "Summary"
	CurveSheet   = "Power Curve"
)

var ErrNoInputs = errors.New("report: workbook has no inputs")

// XLSX writes a workbook with a Summary sheet (inputs and results) and a
// Power Curve sheet with a line chart.
func XLSX(w io.Writer, d Design) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	set := func(sheet, cell string, v any) {
		if err == nil {
			err = f.SetCellValue(sheet, cell, v)
		}
	}
	set(SummarySheet, "A1", turbine.AppTitle)
	if d.Name != "" {
		set(SummarySheet, "B1", d.Name)
	}
	set(SummarySheet, "A3", "Parameter")
	set(SummarySheet, "B3", "Value")
	set(SummarySheet, "C3", "Key")
	r := 4
	for _, in := range inputRows(d.Inputs) {
		set(SummarySheet, fmt.Sprintf("A%d", r), in[0])
		set(SummarySheet, fmt.Sprintf("B%d", r), in[1])
		set(SummarySheet, fmt.Sprintf("C%d", r), in[2])
		r++
	}
	r++
	set(SummarySheet, fmt.Sprintf("A%d", r), "Result")
	resultHeader := r
	r++
	for _, m := range d.Result.Metrics() {
		set(SummarySheet, fmt.Sprintf("A%d", r), m.Title)
		set(SummarySheet, fmt.Sprintf("B%d", r), m.Value)
		r++
	}
	r++
	set(SummarySheet, fmt.Sprintf("A%d", r), turbine.FanHeading)
	for i, line := range d.Fan.Overlay() {
		set(SummarySheet, fmt.Sprintf("A%d", r+1+i), line)
	}
	if err != nil {
		return err
	}
	for _, cell := range []string{"A1", "A3", "B3", "C3", fmt.Sprintf("A%d", resultHeader)} {
		if err := f.SetCellStyle(SummarySheet, cell, cell, bold); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SummarySheet, "A", "A", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(SummarySheet, "B", "C", 20); err != nil {
		return err
	}

	if _, err := f.NewSheet(CurveSheet); err != nil {
		return err
	}
	header := []any{"Wind Speed (m/s)", "Tip Speed Ratio", "Power Output (W)", "Energy / Day (kWh)"}
	if err := f.SetSheetRow(CurveSheet, "A1", &header); err != nil {
		return err
	}
	for i, p := range d.Curve {
		row := []any{p.WindSpeed, p.TipSpeedRatio, p.Power, p.EnergyDay}
		if err := f.SetSheetRow(CurveSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	if len(d.Curve) >= 2 {
		last := len(d.Curve) + 1
		sheetRef := "'" + CurveSheet + "'"
		if err := f.AddChart(CurveSheet, "F2", &excelize.Chart{
			Type: excelize.Line,
			Series: []excelize.ChartSeries{{
				Name:       sheetRef + "!$C$1",
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheetRef, last),
				Values:     fmt.Sprintf("%s!$C$2:$C$%d", sheetRef, last),
			}},
			Title: []excelize.RichTextRun{{Text: "Power Output vs Wind Speed"}},
		}); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}

// ReadInputsXLSX reads the inputs back from a workbook written by XLSX.
// Missing keys keep their default; values are clamped.
func ReadInputsXLSX(r io.Reader) (turbine.Inputs, error) {
	in := turbine.DefaultInputs()
	f, err := excelize.OpenReader(r)
	if err != nil {
		return in, err
	}
	defer f.Close()

	rows, err := f.GetRows(SummarySheet)
	if err != nil {
		return in, err
	}
	found := 0
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		key, value := strings.TrimSpace(row[2]), strings.TrimSpace(row[1])
		switch key {
		case "", "Key":
			continue
		case "material":
			m, err := turbine.ParseMaterial(value)
			if err != nil {
				return in, err
			}
			in.Material = m
		case "adjustment":
			a, err := turbine.ParseAdjustment(value)
			if err != nil {
				return in, err
			}
			in.Adjustment = a
		default:
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return in, fmt.Errorf("report: %s: %w", key, err)
			}
			if err := in.SetParam(key, v); err != nil {
				return in, err
			}
		}
		found++
	}
	if found == 0 {
		return in, ErrNoInputs
	}
	return in.Clamp(), nil
}
