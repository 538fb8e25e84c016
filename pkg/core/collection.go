package core

import "fmt"

// Collection is an ordered set of spectra. Position within the collection is
// the canonical index used by score matrices, so spectra must not be
// reordered once scoring has begun.
type Collection struct {
	Spectra []*Spectrum
}

// NewCollection builds a collection from parallel peak arrays and precursor
// m/z values.
func NewCollection(mz, intensity [][]float64, precursorMZ []float64) (*Collection, error) {
	if len(mz) != len(intensity) || len(mz) != len(precursorMZ) {
		return nil, fmt.Errorf("mismatched collection inputs: %d mz arrays, %d intensity arrays, %d precursors",
			len(mz), len(intensity), len(precursorMZ))
	}

	c := &Collection{Spectra: make([]*Spectrum, len(mz))}
	for i := range mz {
		c.Spectra[i] = &Spectrum{
			MZ:          mz[i],
			Intensity:   intensity[i],
			PrecursorMZ: precursorMZ[i],
		}
	}
	return c, nil
}

// Len returns the number of spectra in the collection.
func (c *Collection) Len() int {
	return len(c.Spectra)
}

// Append adds a spectrum to the end of the collection.
func (c *Collection) Append(s *Spectrum) {
	c.Spectra = append(c.Spectra, s)
}

// PrecursorMZs returns the parallel precursor m/z list indexed by position.
func (c *Collection) PrecursorMZs() []float64 {
	pmzs := make([]float64, len(c.Spectra))
	for i, s := range c.Spectra {
		pmzs[i] = s.PrecursorMZ
	}
	return pmzs
}

// Validate validates every spectrum, reporting the position of the first
// invalid one.
func (c *Collection) Validate() error {
	for i, s := range c.Spectra {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("spectrum %d: %w", i, err)
		}
	}
	return nil
}
