package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/san-kum/windsim/internal/turbine"
)

const (
	metadataFile = "metadata.json"
	curveFile    = "curve.csv"
)

var (
	ErrNotFound  = errors.New("storage: design not found")
	ErrInvalidID = errors.New("storage: invalid design id")
)

// Store keeps saved designs as one directory per design under baseDir.
type Store struct {
	baseDir string
	samples int
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, samples: 45}
}

// WithCurveSamples sets how many wind speeds curve.csv holds.
func (s *Store) WithCurveSamples(n int) *Store {
	if n >= 2 {
		s.samples = n
	}
	return s
}

func (s *Store) Dir() string { return s.baseDir }

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type DesignMetadata struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Timestamp time.Time           `json:"timestamp"`
	Inputs    turbine.Inputs      `json:"inputs"`
	Result    turbine.Result      `json:"result"`
	Fan       turbine.FanEstimate `json:"fan"`
}

// Save clamps in, evaluates it and writes metadata.json and curve.csv.
func (s *Store) Save(name string, in turbine.Inputs) (string, error) {
	in = in.Clamp()
	id := fmt.Sprintf("%s_%s", slug(name), uuid.NewString()[:8])
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	meta := DesignMetadata{
		ID:        id,
		Name:      name,
		Timestamp: time.Now().UTC(),
		Inputs:    in,
		Result:    turbine.Calculate(in),
		Fan:       turbine.Fan(in.FanRPM),
	}
	if err := writeFile(filepath.Join(dir, metadataFile), func(w io.Writer) error {
		return WriteJSON(w, meta)
	}); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	if err := writeFile(filepath.Join(dir, curveFile), func(w io.Writer) error {
		return WriteCurveCSV(w, turbine.DefaultCurve(in, s.samples))
	}); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return id, nil
}

// createFile is swapped in tests to simulate a failing disk.
var createFile = os.Create

func writeFile(path string, render func(io.Writer) error) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns every readable design, newest first. Unreadable entries are skipped.
func (s *Store) List() ([]DesignMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []DesignMetadata{}, nil
		}
		return nil, err
	}

	designs := make([]DesignMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		designs = append(designs, *meta)
	}
	sort.SliceStable(designs, func(i, j int) bool {
		return designs[i].Timestamp.After(designs[j].Timestamp)
	})
	return designs, nil
}

func (s *Store) Load(id string) (*DesignMetadata, error) {
	dir, err := s.designDir(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	var meta DesignMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadCurve(id string) ([]turbine.CurvePoint, error) {
	dir, err := s.designDir(id)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Join(dir, curveFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	defer file.Close()
	return ReadCurveCSV(file)
}

func (s *Store) Delete(id string) error {
	dir, err := s.designDir(id)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}
	return os.RemoveAll(dir)
}

func (s *Store) designDir(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(s.baseDir, id), nil
}

var curveHeader = []string{"wind_speed", "tip_speed_ratio", "power", "energy_day"}

func WriteCurveCSV(w io.Writer, curve []turbine.CurvePoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(curveHeader); err != nil {
		return err
	}
	for _, p := range curve {
		row := []string{
			strconv.FormatFloat(p.WindSpeed, 'f', 6, 64),
			strconv.FormatFloat(p.TipSpeedRatio, 'f', 6, 64),
			strconv.FormatFloat(p.Power, 'f', 6, 64),
			strconv.FormatFloat(p.EnergyDay, 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCurveCSV parses a file written by WriteCurveCSV, skipping malformed rows.
func ReadCurveCSV(r io.Reader) ([]turbine.CurvePoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []turbine.CurvePoint{}, nil
	}

	curve := make([]turbine.CurvePoint, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < len(curveHeader) {
			continue
		}
		var vals [4]float64
		ok := true
		for i := range vals {
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		curve = append(curve, turbine.CurvePoint{
			WindSpeed:     vals[0],
			TipSpeedRatio: vals[1],
			Power:         vals[2],
			EnergyDay:     vals[3],
		})
	}
	return curve, nil
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimRight(b.String(), "-")
	if s == "" {
		return "design"
	}
	if len(s) > 40 {
		s = strings.TrimRight(s[:40], "-")
	}
	return s
}
