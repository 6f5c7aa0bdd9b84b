package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/gif"
	"image/png"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/windsim/internal/storage"
	"github.com/san-kum/windsim/internal/turbine"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.ImageSize == 0 {
		opts.ImageSize = 64
	}
	return New(opts, storage.New(t.TempDir()), nil)
}

func do(t *testing.T, s *Server, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestCalcDefaults(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/api/calc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[calcResponse](t, rec)
	assert.Equal(t, turbine.DefaultInputs(), resp.Inputs)
	assert.Equal(t, turbine.Calculate(turbine.DefaultInputs()), resp.Result)
	assert.Len(t, resp.Metrics, 6)
	assert.Equal(t, "Power Output: 3375.00 W", resp.Overlay[0])
}

func TestCalcQuery(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/api/calc?blade_length=25&rpm=30&wind_speed=12&material=carbon-fiber&blades=3&adjustment=add", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[calcResponse](t, rec)
	assert.Equal(t, turbine.CarbonFiber, resp.Inputs.Material)
	assert.Equal(t, 3, resp.Inputs.Blades)
	assert.Equal(t, turbine.AdjustAdd, resp.Inputs.Adjustment)
	assert.InDelta(t, 831265*1.0*(30.0/70)*1.10, resp.Result.PowerOutput, 1)
}

func TestCalcPostJSON(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodPost, "/api/calc", `{"blade_length": 40, "material": "Aluminum", "adjustment": "Subtract (-10%)"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[calcResponse](t, rec)
	assert.Equal(t, 40.0, resp.Inputs.BladeLength)
	assert.Equal(t, turbine.Aluminum, resp.Inputs.Material)
	assert.Equal(t, turbine.AdjustSubtract, resp.Inputs.Adjustment)
	assert.Equal(t, turbine.DefaultInputs().RPM, resp.Inputs.RPM)
}

func TestCalcClamps(t *testing.T) {
	s := newTestServer(t, Options{})
	resp := decode[calcResponse](t, do(t, s, http.MethodGet, "/api/calc?wind_speed=0&rpm=500&blades=9", ""))
	assert.Equal(t, turbine.WindSpeedRange.Min, resp.Inputs.WindSpeed)
	assert.Equal(t, turbine.RPMRange.Max, resp.Inputs.RPM)
	assert.Equal(t, 4, resp.Inputs.Blades)
}

func TestCalcBadRequest(t *testing.T) {
	s := newTestServer(t, Options{})
	for _, target := range []string{
		"/api/calc?rpm=fast",
		"/api/calc?material=balsa",
		"/api/calc?adjustment=double",
		"/api/calc?blades=two",
	} {
		rec := do(t, s, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "error")
	}
	rec := do(t, s, http.MethodPost, "/api/calc", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalcRejectsNonFinite(t *testing.T) {
	s := newTestServer(t, Options{})
	for _, target := range []string{
		"/api/calc?wind_speed=NaN",
		"/api/calc?rpm=Inf",
		"/api/calc?air_density=-Inf",
		"/api/fan.gif?rpm=NaN",
		"/api/curve.png?blade_length=nan",
	} {
		rec := do(t, s, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "not a finite number", target)
	}

	rec := do(t, s, http.MethodGet, "/api/blades.svg?yaw=NaN", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWriteJSONEncodeFailure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	s := New(Options{}, nil, zap.New(core))

	rec := httptest.NewRecorder()
	s.writeJSON(rec, http.StatusOK, map[string]float64{"power": math.NaN()})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "encode response")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "encode response", logs.All()[0].Message)
}

func TestBlades(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/api/blades?blades=3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var blades []struct {
		Name   string `json:"name"`
		Color  string `json:"color"`
		Points []any  `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &blades))
	require.Len(t, blades, 3)
	assert.Equal(t, "Blade 2", blades[1].Name)
	assert.Equal(t, "#3b00fd", blades[1].Color)
	assert.Len(t, blades[0].Points, 100)
}

func TestBladesSVG(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/api/blades.svg?yaw=0.3&zoom=1.5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")
}

func TestFanGIF(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/api/fan.gif?rpm=60", "")
	require.Equal(t, http.StatusOK, rec.Code)

	g, err := gif.DecodeAll(rec.Body)
	require.NoError(t, err)
	assert.Len(t, g.Image, 30)
	assert.Equal(t, 0, g.LoopCount)

	rec = do(t, s, http.MethodGet, "/api/fan.gif?rpm=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFanFrame(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/api/fan/31.png?rpm=45", "")
	require.Equal(t, http.StatusOK, rec.Code)

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())

	rec = do(t, s, http.MethodGet, "/api/fan/abc.png", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCurveAndReports(t *testing.T) {
	s := newTestServer(t, Options{CurveSamples: 8})

	rec := do(t, s, http.MethodGet, "/api/curve.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, err := png.Decode(rec.Body)
	assert.NoError(t, err)

	rec = do(t, s, http.MethodGet, "/api/report.pdf?name=test", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = do(t, s, http.MethodGet, "/api/report.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestMaterialsAndPresets(t *testing.T) {
	s := newTestServer(t, Options{})
	mats := decode[[]materialInfo](t, do(t, s, http.MethodGet, "/api/materials", ""))
	require.Len(t, mats, 4)
	assert.Equal(t, turbine.CarbonFiber, mats[1].Name)
	assert.Equal(t, 1.0, mats[1].Efficiency)

	presets := decode[map[string]turbine.Inputs](t, do(t, s, http.MethodGet, "/api/presets", ""))
	assert.Contains(t, presets, "default")
	assert.Equal(t, turbine.DefaultInputs(), presets["default"])
}

func TestDesignsCRUD(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := do(t, s, http.MethodPost, "/api/designs?name=hilltop", `{"blade_length": 30}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saved := decode[storage.DesignMetadata](t, rec)
	assert.Equal(t, "hilltop", saved.Name)
	assert.Equal(t, 30.0, saved.Inputs.BladeLength)

	list := decode[[]storage.DesignMetadata](t, do(t, s, http.MethodGet, "/api/designs", ""))
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)

	rec = do(t, s, http.MethodGet, "/api/designs/"+saved.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/designs/"+saved.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/designs/"+saved.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDesignsWithoutStore(t *testing.T) {
	s := New(Options{}, nil, nil)
	rec := do(t, s, http.MethodGet, "/api/designs", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPage(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/?wind_speed=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		"<title>Wind Turbine Pro Designer</title>",
		"Wind Turbine Power Calculator &amp; 3D Visualizer",
		"Blade Length (m)",
		"Air Density (kg/m³)",
		"Energy &amp; Power Generated:",
		"Made by Bilal Waseem",
		`value="10"`,
	} {
		assert.Contains(t, body, want)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, Options{RateLimit: 0.001, RateBurst: 2})
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, do(t, s, http.MethodGet, "/api/materials", "").Code)
	}
	assert.Equal(t, []int{200, 200, http.StatusTooManyRequests}, codes)

	// health checks sit outside the limited API
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/healthz", "").Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodOptions, "/api/calc", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServeShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := newTestServer(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = client.Get("http://" + ln.Addr().String() + "/healthz")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	resp.Body.Close()
	client.CloseIdleConnections()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}
