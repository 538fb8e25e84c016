// Package score computes pairwise similarity and matched-ion counts between
// binned spectrum collections using sparse products over a tolerance window.
package score

import (
	"fmt"
	"math"
)

// Params controls scoring.
type Params struct {
	Tolerance  float64   // Maximum m/z distance for fragment ions to match
	MassDiffs  []float64 // Mass differences to network ions across (0 = direct match only)
	ReactSteps int       // Combine mass diffs within this number of reaction steps
	MinScore   float64   // Post-filter: drop pairs below this score unless matches qualify
	MinMatches int       // Post-filter: drop pairs below this match count unless score qualifies
	Workers    int       // Concurrent query blocks; 0 means GOMAXPROCS
}

// DefaultParams returns the standard scoring parameters.
func DefaultParams() Params {
	return Params{
		Tolerance:  0.01,
		MassDiffs:  []float64{0},
		ReactSteps: 1,
	}
}

// Validate rejects invalid configuration before any scoring occurs.
func (p Params) Validate() error {
	if p.Tolerance <= 0 || math.IsNaN(p.Tolerance) || math.IsInf(p.Tolerance, 0) {
		return fmt.Errorf("score: tolerance must be positive, got %v", p.Tolerance)
	}
	if p.ReactSteps < 0 {
		return fmt.Errorf("score: react steps must be non-negative, got %d", p.ReactSteps)
	}
	for _, d := range p.MassDiffs {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return fmt.Errorf("score: mass diff must be finite, got %v", d)
		}
	}
	if p.Workers < 0 {
		return fmt.Errorf("score: workers must be non-negative, got %d", p.Workers)
	}
	return nil
}
