package preprocess

import (
	"math"
	"testing"

	"github.com/specscore/specscore/pkg/core"
)

func TestPrecursorExclusion(t *testing.T) {
	spec := &core.Spectrum{
		MZ:          []float64{200.0, 295.0},
		Intensity:   []float64{50.0, 100.0},
		PrecursorMZ: 300.0,
	}

	out, err := DefaultConfig().Apply(spec)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if out.Len() != 1 {
		t.Fatalf("got %d peaks, want 1 (peak at 295 is within 14 Da of precursor 300)", out.Len())
	}
	if out.MZ[0] != 200.0 {
		t.Errorf("kept peak m/z = %v, want 200.0", out.MZ[0])
	}
}

func TestNoiseFilter(t *testing.T) {
	spec := &core.Spectrum{
		MZ:          []float64{100.0, 150.0},
		Intensity:   []float64{100.0, 0.5},
		PrecursorMZ: 500.0,
	}

	out, err := DefaultConfig().Apply(spec)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if out.Len() != 1 {
		t.Fatalf("got %d peaks, want 1 (0.5 is 0.5%% of base peak 100)", out.Len())
	}
	if out.Intensity[0] != 100.0 {
		t.Errorf("kept peak intensity = %v, want 100.0", out.Intensity[0])
	}
}

func TestNoiseThresholdUsesPrecursorFilteredBasePeak(t *testing.T) {
	// Base peak sits inside the precursor window; after exclusion the
	// threshold must come from the remaining peaks.
	spec := &core.Spectrum{
		MZ:          []float64{100.0, 295.0},
		Intensity:   []float64{5.0, 1000.0},
		PrecursorMZ: 300.0,
	}

	out, err := DefaultConfig().Apply(spec)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if out.Len() != 1 || out.MZ[0] != 100.0 {
		t.Errorf("peak at 100 (base peak after exclusion) must survive, got %v", out.MZ)
	}
}

func TestRounding(t *testing.T) {
	spec := &core.Spectrum{
		MZ:          []float64{100.23456},
		Intensity:   []float64{10.0},
		PrecursorMZ: 312.98765,
	}

	out, err := DefaultConfig().Apply(spec)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if math.Abs(out.MZ[0]-100.235) > 1e-9 {
		t.Errorf("m/z = %v, want 100.235", out.MZ[0])
	}
	if math.Abs(out.PrecursorMZ-312.988) > 1e-9 {
		t.Errorf("precursor m/z = %v, want 312.988", out.PrecursorMZ)
	}
}

func TestAllPeaksRemovedIsNotAnError(t *testing.T) {
	spec := &core.Spectrum{
		MZ:          []float64{295.0, 305.0},
		Intensity:   []float64{10.0, 20.0},
		PrecursorMZ: 300.0,
	}

	out, err := DefaultConfig().Apply(spec)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !out.IsEmpty() {
		t.Errorf("expected empty spectrum, got %d peaks", out.Len())
	}
}

func TestInputIsNotMutated(t *testing.T) {
	spec := &core.Spectrum{
		MZ:          []float64{100.23456, 295.0},
		Intensity:   []float64{100.0, 50.0},
		PrecursorMZ: 300.0,
	}

	if _, err := DefaultConfig().Apply(spec); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if spec.Len() != 2 || spec.MZ[0] != 100.23456 {
		t.Error("Apply must not mutate its input")
	}
}

func TestMergeDuplicates(t *testing.T) {
	cfg := Config{
		RoundDecimals: 4,
		DedupMinDiff:  0.002,
	}
	spec := &core.Spectrum{
		MZ:          []float64{100.000, 100.001, 150.0},
		Intensity:   []float64{10.0, 20.0, 5.0},
		PrecursorMZ: 500.0,
	}

	out, err := cfg.Apply(spec)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if out.Len() != 2 {
		t.Fatalf("got %d peaks, want 2", out.Len())
	}
	if math.Abs(out.MZ[0]-100.0005) > 1e-9 {
		t.Errorf("merged m/z = %v, want 100.0005 (mean)", out.MZ[0])
	}
	if out.Intensity[0] != 30.0 {
		t.Errorf("merged intensity = %v, want 30.0 (sum)", out.Intensity[0])
	}
}

func TestMalformedSpectrumRejected(t *testing.T) {
	spec := &core.Spectrum{
		MZ:          []float64{100.0, 200.0},
		Intensity:   []float64{1.0},
		PrecursorMZ: 300.0,
	}

	if _, err := DefaultConfig().Apply(spec); err == nil {
		t.Error("mismatched array lengths must be rejected")
	}
}

func TestApplyCollectionReportsPosition(t *testing.T) {
	col := &core.Collection{Spectra: []*core.Spectrum{
		{MZ: []float64{100.0}, Intensity: []float64{1.0}, PrecursorMZ: 300.0},
		{MZ: []float64{math.Inf(1)}, Intensity: []float64{1.0}, PrecursorMZ: 300.0},
	}}

	_, err := DefaultConfig().ApplyCollection(col)
	if err == nil {
		t.Fatal("expected error for invalid spectrum")
	}
}
