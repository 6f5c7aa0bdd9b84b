package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/windsim/internal/animation"
	"github.com/san-kum/windsim/internal/config"
	"github.com/san-kum/windsim/internal/diagram"
	"github.com/san-kum/windsim/internal/export"
	"github.com/san-kum/windsim/internal/report"
	"github.com/san-kum/windsim/internal/storage"
	"github.com/san-kum/windsim/internal/turbine"
	"github.com/san-kum/windsim/internal/viz"
)

type calcResponse struct {
	Inputs  turbine.Inputs      `json:"inputs"`
	Result  turbine.Result      `json:"result"`
	Metrics []turbine.Metric    `json:"metrics"`
	Fan     turbine.FanEstimate `json:"fan"`
	Overlay []string            `json:"overlay"`
}

func newCalcResponse(in turbine.Inputs) calcResponse {
	res := turbine.Calculate(in)
	fan := turbine.Fan(in.FanRPM)
	return calcResponse{
		Inputs:  in,
		Result:  res,
		Metrics: res.Metrics(),
		Fan:     fan,
		Overlay: fan.Overlay(),
	}
}

// writeJSON encodes v before touching the response, so a value the encoder
// rejects is logged and answered with a 500 instead of an empty body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.log.Error("encode response", zap.Int("status", status), zap.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Errorf("encode response: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// writeBuffered renders into memory first so an encoding error can still
// become a 500.
func (s *Server) writeBuffered(w http.ResponseWriter, contentType string, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.log.Error("render failed", zap.String("content_type", contentType), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

func (s *Server) inputs(w http.ResponseWriter, r *http.Request) (turbine.Inputs, bool) {
	in, err := inputsFromRequest(r, s.opts.Defaults)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return in, false
	}
	return in, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCalc(w http.ResponseWriter, r *http.Request) {
	in, ok := s.inputs(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, newCalcResponse(in))
}

func (s *Server) handleBlades(w http.ResponseWriter, r *http.Request) {
	in, ok := s.inputs(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, viz.BladeCurves(in.BladeLength, in.Blades, viz.BladeSamples))
}

// camera applies yaw, pitch and zoom query offsets to the default view.
func camera(r *http.Request) *viz.Camera {
	q := r.URL.Query()
	cam := viz.NewCamera()
	cam.RotateZ(floatQuery(q, "yaw", 0))
	cam.RotateX(floatQuery(q, "pitch", 0))
	if z := floatQuery(q, "zoom", 1); z > 0 {
		cam.Zoom = min(10, max(0.1, z))
	}
	return cam
}

func (s *Server) handleBladesSVG(w http.ResponseWriter, r *http.Request) {
	in, ok := s.inputs(w, r)
	if !ok {
		return
	}
	blades := viz.BladeCurves(in.BladeLength, in.Blades, viz.BladeSamples)
	cam := camera(r)
	s.writeBuffered(w, "image/svg+xml", func(b *bytes.Buffer) error {
		return export.BladesSVG(b, blades, cam, 5*vg.Inch, 5*vg.Inch)
	})
}

func (s *Server) fanStyle() animation.Style {
	st := animation.DefaultStyle()
	st.Size = s.opts.ImageSize
	st.Blades = s.opts.FanBlades
	return st
}

func (s *Server) fanRPM(w http.ResponseWriter, r *http.Request) (float64, bool) {
	rpm := s.opts.Defaults.FanRPM
	if raw := r.URL.Query().Get("rpm"); raw != "" {
		v, err := parseFinite("rpm", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return 0, false
		}
		rpm = v
	}
	return turbine.FanRPMRange.Clamp(rpm), true
}

func (s *Server) handleFanGIF(w http.ResponseWriter, r *http.Request) {
	rpm, ok := s.fanRPM(w, r)
	if !ok {
		return
	}
	frames := animation.Frames(animation.Sequence(rpm, s.opts.Frames, s.opts.FPS), s.fanStyle())
	s.writeBuffered(w, "image/gif", func(b *bytes.Buffer) error {
		return animation.EncodeGIF(b, frames, s.opts.FPS)
	})
}

func (s *Server) handleFanFrame(w http.ResponseWriter, r *http.Request) {
	rpm, ok := s.fanRPM(w, r)
	if !ok {
		return
	}
	n, err := strconv.Atoi(mux.Vars(r)["frame"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	angles := animation.Sequence(rpm, s.opts.Frames, s.opts.FPS)
	img := animation.DrawFrame(angles[n%len(angles)], s.fanStyle())
	w.Header().Set("Cache-Control", "no-store")
	s.writeBuffered(w, "image/png", func(b *bytes.Buffer) error {
		return animation.EncodePNG(b, img)
	})
}

func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	in, ok := s.inputs(w, r)
	if !ok {
		return
	}
	curve := turbine.DefaultCurve(in, s.opts.CurveSamples)
	s.writeBuffered(w, "image/png", func(b *bytes.Buffer) error {
		return diagram.PowerCurvePNG(b, curve, in)
	})
}

func (s *Server) design(r *http.Request, in turbine.Inputs) report.Design {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	return report.NewDesign(name, in, s.opts.CurveSamples)
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	in, ok := s.inputs(w, r)
	if !ok {
		return
	}
	d := s.design(r, in)
	w.Header().Set("Content-Disposition", `attachment; filename="windsim-report.pdf"`)
	s.writeBuffered(w, "application/pdf", func(b *bytes.Buffer) error {
		return report.PDF(b, d)
	})
}

func (s *Server) handleReportXLSX(w http.ResponseWriter, r *http.Request) {
	in, ok := s.inputs(w, r)
	if !ok {
		return
	}
	d := s.design(r, in)
	w.Header().Set("Content-Disposition", `attachment; filename="windsim-report.xlsx"`)
	s.writeBuffered(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", func(b *bytes.Buffer) error {
		return report.XLSX(b, d)
	})
}

type materialInfo struct {
	Name       turbine.Material `json:"name"`
	Efficiency float64          `json:"efficiency"`
}

func (s *Server) handleMaterials(w http.ResponseWriter, r *http.Request) {
	out := make([]materialInfo, len(turbine.Materials))
	for i, m := range turbine.Materials {
		out[i] = materialInfo{Name: m, Efficiency: m.Efficiency()}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]turbine.Inputs, len(config.Presets))
	for _, name := range config.ListPresets() {
		in, _ := config.GetPreset(name)
		out[name] = in
	}
	s.writeJSON(w, http.StatusOK, out)
}

var errNoStore = errors.New("design storage is not configured")

func (s *Server) handleListDesigns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, errNoStore)
		return
	}
	designs, err := s.store.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, designs)
}

func (s *Server) handleSaveDesign(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, errNoStore)
		return
	}
	in, ok := s.inputs(w, r)
	if !ok {
		return
	}
	id, err := s.store.Save(r.URL.Query().Get("name"), in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	meta, err := s.store.Load(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, meta)
}

func storeStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrInvalidID):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleGetDesign(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, errNoStore)
		return
	}
	meta, err := s.store.Load(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, storeStatus(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handleDeleteDesign(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, errNoStore)
		return
	}
	if err := s.store.Delete(mux.Vars(r)["id"]); err != nil {
		writeError(w, storeStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
