package storage

import (
	"math"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	omegas := []float64{0.1, 1, 10}
	mags := []float64{39.9, 20.1, -0.5}

	id, err := st.Save("bode", "margin-lesson",
		map[string]float64{"points": 3},
		map[string]float64{"pm": -3.1},
		[]string{"omega", "mag_db"},
		[][]float64{omegas, mags},
	)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Kind != "bode" || meta.Plant != "margin-lesson" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if math.Abs(meta.Results["pm"]+3.1) > 1e-12 {
		t.Errorf("results did not round-trip: %v", meta.Results)
	}

	header, cols, err := st.LoadPoints(id)
	if err != nil {
		t.Fatalf("load points failed: %v", err)
	}
	if len(header) != 2 || header[0] != "omega" {
		t.Errorf("unexpected header: %v", header)
	}
	for i, want := range mags {
		if math.Abs(cols[1][i]-want) > 1e-9 {
			t.Errorf("mag[%d]: expected %f, got %f", i, want, cols[1][i])
		}
	}
}

func TestSaveRejectsRaggedColumns(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	_, err := st.Save("step", "p", nil, nil,
		[]string{"t", "y"},
		[][]float64{{0, 1}, {0}},
	)
	if err == nil {
		t.Error("expected error for ragged columns")
	}
}

func TestListEmpty(t *testing.T) {
	st := New(t.TempDir())
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}
