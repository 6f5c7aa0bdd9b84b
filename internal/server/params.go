package server

import (
	"encoding/json"
	"fmt"
	"errors"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/san-kum/windsim/internal/turbine"
)

const maxBodyBytes = 1 << 16

var errNotFinite = errors.New("not a finite number")

// inputsFromRequest overlays query parameters, then a JSON body for POST,
// on top of base. The result is clamped into the widget ranges.
func inputsFromRequest(r *http.Request, base turbine.Inputs) (turbine.Inputs, error) {
	in, err := inputsFromQuery(r.URL.Query(), base)
	if err != nil {
		return in, err
	}
	if r.Method == http.MethodPost && r.Body != nil {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return in, err
		}
		if len(strings.TrimSpace(string(body))) > 0 {
			if err := json.Unmarshal(body, &in); err != nil {
				return in, fmt.Errorf("invalid JSON body: %w", err)
			}
		}
	}
	return in.Clamp(), nil
}

func inputsFromQuery(q url.Values, in turbine.Inputs) (turbine.Inputs, error) {
	for _, name := range turbine.ParamNames() {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := parseFinite(name, raw)
		if err != nil {
			return in, err
		}
		_ = in.SetParam(name, v)
	}
	if raw := q.Get("blades"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return in, fmt.Errorf("blades: %w", err)
		}
		in.Blades = n
	}
	if raw := q.Get("material"); raw != "" {
		m, err := turbine.ParseMaterial(raw)
		if err != nil {
			return in, err
		}
		in.Material = m
	}
	if raw := q.Get("adjustment"); raw != "" {
		a, err := turbine.ParseAdjustment(raw)
		if err != nil {
			return in, err
		}
		in.Adjustment = a
	}
	return in, nil
}

// parseFinite rejects NaN and ±Inf along with malformed numbers.
func parseFinite(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: %w: %q", name, errNotFinite, raw)
	}
	return v, nil
}

func floatQuery(q url.Values, name string, def float64) float64 {
	v, err := parseFinite(name, q.Get(name))
	if err != nil {
		return def
	}
	return v
}
