package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/san-kum/windsim/internal/turbine"
)

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	in := turbine.DefaultInputs()
	in.Material = turbine.Aluminum
	id, err := st.Save("Coastal Site #1", in)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !regexp.MustCompile(`^coastal-site-1_[0-9a-f]{8}$`).MatchString(id) {
		t.Errorf("unexpected id %q", id)
	}

	meta, err := st.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "Coastal Site #1" {
		t.Errorf("expected name to round trip, got %q", meta.Name)
	}
	if meta.Inputs != in {
		t.Errorf("inputs mismatch: %+v", meta.Inputs)
	}
	if meta.Result != turbine.Calculate(in) {
		t.Errorf("result mismatch: %+v", meta.Result)
	}
	if meta.Fan != turbine.Fan(in.FanRPM) {
		t.Errorf("fan mismatch: %+v", meta.Fan)
	}

	curve, err := st.LoadCurve(id)
	if err != nil {
		t.Fatalf("load curve failed: %v", err)
	}
	if len(curve) != 45 {
		t.Fatalf("expected 45 curve points, got %d", len(curve))
	}
	if curve[0].WindSpeed != turbine.WindSpeedRange.Min || curve[44].WindSpeed != turbine.WindSpeedRange.Max {
		t.Errorf("curve spans %f..%f", curve[0].WindSpeed, curve[44].WindSpeed)
	}
}

func TestStoreSaveClamps(t *testing.T) {
	st := New(t.TempDir())
	id, err := st.Save("", turbine.Inputs{BladeLength: 1000, Blades: 7})
	if err != nil {
		t.Fatal(err)
	}
	meta, err := st.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Inputs.BladeLength != turbine.BladeLengthRange.Max || meta.Inputs.Blades != 4 {
		t.Errorf("inputs not clamped: %+v", meta.Inputs)
	}
	if filepath.Base(id)[:7] != "design_" {
		t.Errorf("empty name should slug to design, got %q", id)
	}
}

func TestStoreListSorted(t *testing.T) {
	st := New(t.TempDir()).WithCurveSamples(3)
	first, err := st.Save("first", turbine.DefaultInputs())
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	second, err := st.Save("second", turbine.DefaultInputs())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(st.Dir(), "stray.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(st.Dir(), "broken"), 0755); err != nil {
		t.Fatal(err)
	}

	designs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(designs) != 2 {
		t.Fatalf("expected 2 designs, got %d", len(designs))
	}
	if designs[0].ID != second || designs[1].ID != first {
		t.Errorf("expected newest first, got %s, %s", designs[0].ID, designs[1].ID)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	designs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil || len(designs) != 0 {
		t.Errorf("expected empty list, got %v, %v", designs, err)
	}
}

func TestStoreDelete(t *testing.T) {
	st := New(t.TempDir())
	id, err := st.Save("gone", turbine.DefaultInputs())
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Delete(id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := st.Load(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := st.Delete(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreInvalidID(t *testing.T) {
	st := New(t.TempDir())
	for _, id := range []string{"", "..", "../etc", `a\b`} {
		if _, err := st.Load(id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Load(%q): expected ErrInvalidID, got %v", id, err)
		}
	}
}

func TestCurveCSVSkipsBadRows(t *testing.T) {
	var buf bytes.Buffer
	curve := turbine.DefaultCurve(turbine.DefaultInputs(), 4)
	if err := WriteCurveCSV(&buf, curve); err != nil {
		t.Fatal(err)
	}
	buf.WriteString("oops,1,2,3\n1,2\n")

	got, err := ReadCurveCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 points, got %d", len(got))
	}
	if d := got[3].Power - curve[3].Power; d > 1e-6 || d < -1e-6 {
		t.Errorf("power drifted by %g", d)
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Hello World":  "hello-world",
		"  --x--  ":    "x",
		"Ünïcode only": "n-code-only",
		"":             "design",
		"###":          "design",
		"Site 12 / B":  "site-12-b",
	}
	for in, want := range cases {
		if got := slug(in); got != want {
			t.Errorf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStoreSaveFailureLeavesNoDirectory(t *testing.T) {
	base := t.TempDir()
	st := New(base)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	diskFull := errors.New("no space left on device")
	for _, failing := range []string{metadataFile, curveFile} {
		t.Run(failing, func(t *testing.T) {
			orig := createFile
			defer func() { createFile = orig }()
			createFile = func(path string) (*os.File, error) {
				if filepath.Base(path) == failing {
					return nil, diskFull
				}
				return orig(path)
			}

			if _, err := st.Save("broken", turbine.DefaultInputs()); !errors.Is(err, diskFull) {
				t.Fatalf("expected disk error, got %v", err)
			}
			entries, err := os.ReadDir(base)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 0 {
				t.Errorf("expected no design directories, found %d", len(entries))
			}
		})
	}

	designs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(designs) != 0 {
		t.Errorf("expected no designs listed, got %d", len(designs))
	}
}
