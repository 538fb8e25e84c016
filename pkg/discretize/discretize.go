// Package discretize converts spectrum collections into sparse binned
// representations over two bin spaces: direct m/z and neutral loss.
package discretize

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/specscore/specscore/pkg/core"
)

// Space identifies a bin space of a binned representation.
type Space string

const (
	// SpaceMZ bins peaks by fragment m/z.
	SpaceMZ Space = "direct"
	// SpaceNeutralLoss bins peaks by precursor m/z minus fragment m/z.
	SpaceNeutralLoss Space = "neutral_loss"
)

// Spaces lists the bin spaces in canonical order.
var Spaces = []Space{SpaceMZ, SpaceNeutralLoss}

// Params controls discretization.
type Params struct {
	BinWidth       float64 // Bin width in m/z units
	IntensityPower float64 // Power to raise intensities to before binning
	Normalize      bool    // Scale each spectrum's weight vector to unit L2 norm
}

// DefaultParams returns the standard discretization parameters.
func DefaultParams() Params {
	return Params{
		BinWidth:       0.001,
		IntensityPower: 0.5,
		Normalize:      true,
	}
}

// Validate rejects parameters before any discretization occurs.
func (p Params) Validate() error {
	if p.BinWidth <= 0 || math.IsNaN(p.BinWidth) || math.IsInf(p.BinWidth, 0) {
		return fmt.Errorf("discretize: bin width must be positive, got %v", p.BinWidth)
	}
	if p.IntensityPower < 0 || math.IsNaN(p.IntensityPower) || math.IsInf(p.IntensityPower, 0) {
		return fmt.Errorf("discretize: intensity power must be non-negative, got %v", p.IntensityPower)
	}
	return nil
}

// BinIndex maps a continuous value to its bin. Floor semantics: the lower
// bin edge is inclusive, the upper edge exclusive, so a value exactly on a
// boundary always lands in the higher bin's lower edge.
func BinIndex(v, width float64) int64 {
	return int64(math.Floor(v / width))
}

// Entry is one non-zero cell of a binned representation.
type Entry struct {
	Spec   int     // Spectrum position within the collection
	Bin    int64   // Bin index; may be negative in neutral-loss space
	Weight float64 // Accumulated intensity^power
}

// Binned is the sparse binned representation of a spectrum collection.
// Entries are sorted by (Spec, Bin); bins with zero accumulated weight are
// not materialized.
type Binned struct {
	NumSpectra  int
	Params      Params
	MZ          []Entry
	NeutralLoss []Entry
}

// Entries returns the entries of the requested bin space.
func (b *Binned) Entries(space Space) []Entry {
	if space == SpaceNeutralLoss {
		return b.NeutralLoss
	}
	return b.MZ
}

// Validate checks that every entry references a spectrum inside the
// collection the representation claims to cover.
func (b *Binned) Validate() error {
	for _, space := range Spaces {
		for _, e := range b.Entries(space) {
			if e.Spec < 0 || e.Spec >= b.NumSpectra {
				return fmt.Errorf("discretize: %s entry references spectrum %d outside collection of %d",
					space, e.Spec, b.NumSpectra)
			}
		}
	}
	return nil
}

// Collection discretizes every spectrum in the collection into both bin
// spaces. Peaks colliding in a bin have their weights summed. Empty spectra
// contribute no entries and consequently score zero against everything.
func Collection(col *core.Collection, p Params) (*Binned, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	b := &Binned{
		NumSpectra: col.Len(),
		Params:     p,
	}

	for i, spec := range col.Spectra {
		if spec.IsEmpty() {
			continue
		}

		weights := make([]float64, spec.Len())
		for j, inten := range spec.Intensity {
			weights[j] = math.Pow(inten, p.IntensityPower)
		}
		if p.Normalize {
			if norm := floats.Norm(weights, 2); norm > 0 {
				floats.Scale(1/norm, weights)
			}
		}

		mzBins := make(map[int64]float64)
		nlBins := make(map[int64]float64)
		for j, mz := range spec.MZ {
			mzBins[BinIndex(mz, p.BinWidth)] += weights[j]
			nlBins[BinIndex(spec.PrecursorMZ-mz, p.BinWidth)] += weights[j]
		}

		b.MZ = appendSorted(b.MZ, i, mzBins)
		b.NeutralLoss = appendSorted(b.NeutralLoss, i, nlBins)
	}

	return b, nil
}

// appendSorted flattens one spectrum's bin map into entries in ascending bin
// order, dropping zero-weight bins.
func appendSorted(entries []Entry, spec int, bins map[int64]float64) []Entry {
	keys := make([]int64, 0, len(bins))
	for bin, w := range bins {
		if w != 0 {
			keys = append(keys, bin)
		}
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })

	for _, bin := range keys {
		entries = append(entries, Entry{Spec: spec, Bin: bin, Weight: bins[bin]})
	}
	return entries
}
