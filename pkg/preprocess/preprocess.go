// Package preprocess provides peak cleaning transforms applied to spectra
// before discretization: precursor-window exclusion, noise removal, optional
// duplicate-ion merging, and m/z rounding.
package preprocess

import (
	"fmt"
	"math"

	"github.com/specscore/specscore/pkg/core"
)

// Config holds preprocessing configuration.
type Config struct {
	PrecursorWindow float64 // Remove ions within this window (Da) of the precursor m/z
	NoiseFraction   float64 // Remove ions below this fraction of the base peak (0 = no cutoff)
	RoundDecimals   int     // Decimal places to round m/z values to
	DedupMinDiff    float64 // Merge ions closer than this in m/z (0 = no merging)
}

// DefaultConfig returns the standard preprocessing configuration: a 14 Da
// precursor window, a 1% base-peak noise threshold, and 3-decimal rounding.
func DefaultConfig() Config {
	return Config{
		PrecursorWindow: 14.0,
		NoiseFraction:   0.01,
		RoundDecimals:   3,
	}
}

// Apply validates the spectrum and returns a cleaned copy. The input is not
// mutated. Filtering may legally remove every peak; the result is then an
// empty spectrum, not an error.
func (c Config) Apply(spec *core.Spectrum) (*core.Spectrum, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	out := spec.Clone()
	c.excludePrecursorWindow(out)
	c.filterNoise(out)
	if c.DedupMinDiff > 0 {
		mergeDuplicates(out, c.DedupMinDiff)
	}
	c.round(out)

	return out, nil
}

// ApplyCollection applies the configuration to every spectrum in a
// collection, reporting the position of the first spectrum that fails
// validation.
func (c Config) ApplyCollection(col *core.Collection) (*core.Collection, error) {
	out := &core.Collection{Spectra: make([]*core.Spectrum, col.Len())}
	for i, spec := range col.Spectra {
		cleaned, err := c.Apply(spec)
		if err != nil {
			return nil, fmt.Errorf("spectrum %d: %w", i, err)
		}
		out.Spectra[i] = cleaned
	}
	return out, nil
}

// excludePrecursorWindow removes ions within the configured window of the
// precursor m/z. These represent precursor and adduct contamination rather
// than fragment signal.
func (c Config) excludePrecursorWindow(spec *core.Spectrum) {
	if c.PrecursorWindow <= 0 {
		return
	}
	keepIf(spec, func(mz, _ float64) bool {
		return math.Abs(spec.PrecursorMZ-mz) > c.PrecursorWindow
	})
}

// filterNoise removes ions below the noise threshold, computed as a fraction
// of the base peak of the already precursor-filtered spectrum.
func (c Config) filterNoise(spec *core.Spectrum) {
	if c.NoiseFraction <= 0 || spec.IsEmpty() {
		return
	}
	threshold := c.NoiseFraction * spec.BasePeak()
	keepIf(spec, func(_, inten float64) bool {
		return inten >= threshold
	})
}

// round rounds peak and precursor m/z values to the configured precision to
// normalize representation differences between acquisition software.
func (c Config) round(spec *core.Spectrum) {
	if c.RoundDecimals < 0 {
		return
	}
	scale := math.Pow(10, float64(c.RoundDecimals))
	for i, mz := range spec.MZ {
		spec.MZ[i] = math.Round(mz*scale) / scale
	}
	spec.PrecursorMZ = math.Round(spec.PrecursorMZ*scale) / scale
}

// mergeDuplicates collapses runs of adjacent ions closer than minDiff into a
// single ion, averaging their m/z and summing their intensities. Spectra are
// sorted by m/z, so a single forward pass finds every run.
func mergeDuplicates(spec *core.Spectrum, minDiff float64) {
	if spec.Len() < 2 {
		return
	}

	var mz, inten []float64
	groupMZ := spec.MZ[0]
	groupInten := spec.Intensity[0]
	groupSize := 1

	flush := func() {
		mz = append(mz, groupMZ/float64(groupSize))
		inten = append(inten, groupInten)
	}

	for i := 1; i < spec.Len(); i++ {
		if spec.MZ[i]-spec.MZ[i-1] < minDiff {
			groupMZ += spec.MZ[i]
			groupInten += spec.Intensity[i]
			groupSize++
			continue
		}
		flush()
		groupMZ = spec.MZ[i]
		groupInten = spec.Intensity[i]
		groupSize = 1
	}
	flush()

	spec.MZ = mz
	spec.Intensity = inten
}

// keepIf retains only the peaks for which keep returns true.
func keepIf(spec *core.Spectrum, keep func(mz, inten float64) bool) {
	mz := spec.MZ[:0]
	inten := spec.Intensity[:0]
	for i := range spec.MZ {
		if keep(spec.MZ[i], spec.Intensity[i]) {
			mz = append(mz, spec.MZ[i])
			inten = append(inten, spec.Intensity[i])
		}
	}
	spec.MZ = mz
	spec.Intensity = inten
}
