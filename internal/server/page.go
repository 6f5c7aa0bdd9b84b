package server

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"

	"github.com/san-kum/windsim/internal/turbine"
)

type sliderView struct {
	Name, Label string
	Min, Max    float64
	Step, Value float64
}

type optionView struct {
	Value, Label string
	Selected     bool
}

type pageView struct {
	Title, Heading, FanHeading, Footer string
	Sliders                            []sliderView
	FanSlider                          sliderView
	Materials, Blades, Adjustments     []optionView
	Metrics                            []turbine.Metric
	Overlay                            []string
	FanRPM                             float64
}

func slider(name string, v float64) sliderView {
	r, _ := turbine.ParamRange(name)
	return sliderView{Name: name, Label: turbine.Label(name), Min: r.Min, Max: r.Max, Step: r.Step, Value: v}
}

func newPageView(in turbine.Inputs) pageView {
	p := in.GetParams()
	v := pageView{
		Title:      turbine.AppTitle,
		Heading:    turbine.Heading,
		FanHeading: turbine.FanHeading,
		Footer:     turbine.FooterCredit,
		Metrics:    turbine.Calculate(in).Metrics(),
		Overlay:    turbine.Fan(in.FanRPM).Overlay(),
		FanSlider:  slider("fan_rpm", in.FanRPM),
		FanRPM:     in.FanRPM,
	}
	for _, name := range []string{"blade_length", "rpm", "wind_speed", "air_density", "power_coefficient"} {
		v.Sliders = append(v.Sliders, slider(name, p[name]))
	}
	for _, m := range turbine.Materials {
		v.Materials = append(v.Materials, optionView{string(m), string(m), m == in.Material})
	}
	for _, n := range turbine.BladeCountOptions {
		s := strconv.Itoa(n)
		v.Blades = append(v.Blades, optionView{s, s, n == in.Blades})
	}
	for _, a := range turbine.Adjustments {
		s, _ := a.MarshalText()
		v.Adjustments = append(v.Adjustments, optionView{string(s), a.String(), a == in.Adjustment})
	}
	return v
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	in, ok := s.inputs(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, newPageView(in)); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 0; display: flex; }
aside { width: 300px; padding: 1rem; background: #f4f6f8; min-height: 100vh; }
main { flex: 1; padding: 1rem 2rem; }
label { display: block; margin-top: .8rem; font-size: .9rem; }
input[type=range], select { width: 100%; }
.metrics { display: grid; grid-template-columns: repeat(3, 1fr); gap: .8rem; }
.metric { border: 1px solid #ddd; border-radius: 6px; padding: .6rem; }
.metric span { display: block; color: #666; font-size: .8rem; }
.metric b { font-size: 1.3rem; }
.views { display: flex; gap: 2rem; margin-top: 1.5rem; flex-wrap: wrap; }
footer { margin-top: 2rem; color: #888; }
</style>
</head>
<body>
<aside>
<form id="controls">
{{range .Sliders}}<label>{{.Label}} <output id="{{.Name}}-out">{{.Value}}</output>
<input type="range" name="{{.Name}}" min="{{.Min}}" max="{{.Max}}" step="{{.Step}}" value="{{.Value}}"></label>
{{end}}
<label>Blade Material<select name="material">{{range .Materials}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}</select></label>
<label>Number of Blades<select name="blades">{{range .Blades}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}</select></label>
<label>Adjust Calculation<select name="adjustment">{{range .Adjustments}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}</select></label>
{{with .FanSlider}}<label>{{.Label}} <output id="{{.Name}}-out">{{.Value}}</output>
<input type="range" name="{{.Name}}" min="{{.Min}}" max="{{.Max}}" step="{{.Step}}" value="{{.Value}}"></label>{{end}}
</form>
<p><a id="pdf" href="/api/report.pdf">PDF report</a> · <a id="xlsx" href="/api/report.xlsx">Spreadsheet</a></p>
</aside>
<main>
<h1>{{.Heading}}</h1>
<div class="metrics">{{range $i, $m := .Metrics}}<div class="metric"><span>{{$m.Title}}</span><b id="metric-{{$i}}">{{$m.Value}}</b></div>{{end}}</div>
<div class="views">
<div>
<img id="blades" src="/api/blades.svg" width="480" height="480" alt="3D blade geometry">
<div><button data-rot="yaw=-0.2">⟲</button><button data-rot="yaw=0.2">⟳</button><button data-rot="pitch=0.2">▲</button><button data-rot="pitch=-0.2">▼</button><button data-rot="zoom=1.2">+</button><button data-rot="zoom=0.8">−</button></div>
</div>
<div>
<img id="fan" src="/api/fan.gif?rpm={{.FanRPM}}" width="320" height="320" alt="Fan animation">
<h3>{{.FanHeading}}</h3>
<div id="overlay">{{range .Overlay}}<div>{{.}}</div>{{end}}</div>
<small>illustrative estimate</small>
</div>
</div>
<footer>{{.Footer}}</footer>
</main>
<script>
const form = document.getElementById('controls');
const view = { yaw: 0, pitch: 0, zoom: 1 };
function query() { return new URLSearchParams(new FormData(form)).toString(); }
function camera() { return '&yaw=' + view.yaw + '&pitch=' + view.pitch + '&zoom=' + view.zoom; }
async function refresh(fanChanged) {
  const q = query();
  const res = await fetch('/api/calc?' + q);
  if (!res.ok) return;
  const data = await res.json();
  data.metrics.forEach((m, i) => { document.getElementById('metric-' + i).textContent = m.value; });
  document.getElementById('overlay').innerHTML = data.overlay.map(l => '<div>' + l + '</div>').join('');
  document.getElementById('blades').src = '/api/blades.svg?' + q + camera();
  if (fanChanged) document.getElementById('fan').src = '/api/fan.gif?rpm=' + data.inputs.fan_rpm;
  document.getElementById('pdf').href = '/api/report.pdf?' + q;
  document.getElementById('xlsx').href = '/api/report.xlsx?' + q;
}
form.addEventListener('input', e => {
  const out = document.getElementById(e.target.name + '-out');
  if (out) out.textContent = e.target.value;
  refresh(e.target.name === 'fan_rpm');
});
document.querySelectorAll('[data-rot]').forEach(b => b.addEventListener('click', () => {
  const [k, v] = b.dataset.rot.split('=');
  view[k] = k === 'zoom' ? view.zoom * parseFloat(v) : view[k] + parseFloat(v);
  refresh(false);
}));
</script>
</body>
</html>
`))
