// Package core provides the spectrum data model and validation logic
// shared by the preprocessing, discretization, and scoring packages.
package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Spectrum represents a single tandem mass spectrum as parallel m/z and
// intensity arrays with an associated precursor m/z.
type Spectrum struct {
	// Required fields
	MZ          []float64 // Fragment m/z values, ascending
	Intensity   []float64 // Fragment intensities, parallel to MZ
	PrecursorMZ float64   // Precursor (parent ion) m/z

	// Optional metadata
	ID     string // Spectrum identifier (e.g., MGF TITLE)
	Charge int    // Precursor charge state, 0 if unknown

	// Internal tracking
	SourceFile string
}

// ValidationError represents an error found during spectrum validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Validate checks that a spectrum meets all requirements for processing.
func (s *Spectrum) Validate() error {
	var errs []string

	if len(s.MZ) != len(s.Intensity) {
		errs = append(errs, fmt.Sprintf("mz and intensity lengths differ (%d vs %d)", len(s.MZ), len(s.Intensity)))
	}
	if s.PrecursorMZ <= 0 || math.IsNaN(s.PrecursorMZ) || math.IsInf(s.PrecursorMZ, 0) {
		errs = append(errs, "precursor m/z must be positive and finite")
	}

	n := min(len(s.MZ), len(s.Intensity))
	for i := 0; i < n; i++ {
		if math.IsNaN(s.MZ[i]) || math.IsInf(s.MZ[i], 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid m/z", i))
		} else if s.MZ[i] <= 0 {
			errs = append(errs, fmt.Sprintf("peak %d m/z must be positive", i))
		}
		if math.IsNaN(s.Intensity[i]) || math.IsInf(s.Intensity[i], 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid intensity", i))
		} else if s.Intensity[i] < 0 {
			errs = append(errs, fmt.Sprintf("peak %d intensity must be non-negative", i))
		}
	}

	if !s.IsSorted() {
		errs = append(errs, "peaks must be sorted by m/z")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Spectrum",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// Len returns the number of peaks.
func (s *Spectrum) Len() int {
	return len(s.MZ)
}

// IsEmpty reports whether the spectrum has no peaks. Empty spectra are
// legal everywhere downstream; they score zero against everything.
func (s *Spectrum) IsEmpty() bool {
	return len(s.MZ) == 0
}

// IsSorted checks if peaks are sorted by m/z in ascending order.
func (s *Spectrum) IsSorted() bool {
	return sort.Float64sAreSorted(s.MZ)
}

// Sort sorts peaks by m/z in ascending order, keeping intensities aligned.
func (s *Spectrum) Sort() {
	idx := make([]int, len(s.MZ))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return s.MZ[idx[a]] < s.MZ[idx[b]]
	})

	mz := make([]float64, len(s.MZ))
	inten := make([]float64, len(s.Intensity))
	for i, j := range idx {
		mz[i] = s.MZ[j]
		inten[i] = s.Intensity[j]
	}
	s.MZ = mz
	s.Intensity = inten
}

// BasePeak returns the maximum intensity in the spectrum, or 0 if empty.
func (s *Spectrum) BasePeak() float64 {
	base := 0.0
	for _, inten := range s.Intensity {
		if inten > base {
			base = inten
		}
	}
	return base
}

// Clone returns a deep copy of the spectrum.
func (s *Spectrum) Clone() *Spectrum {
	out := *s
	out.MZ = append([]float64(nil), s.MZ...)
	out.Intensity = append([]float64(nil), s.Intensity...)
	return &out
}

// Name returns the spectrum identifier, falling back to "precursor@mz".
func (s *Spectrum) Name() string {
	if s.ID != "" {
		return s.ID
	}
	return fmt.Sprintf("precursor@%.4f", s.PrecursorMZ)
}
