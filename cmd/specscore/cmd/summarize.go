package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/specscore/specscore/pkg/reader/mgf"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file.mgf>",
	Short: "Summarize spectral file contents",
	Long:  `Print summary statistics about an MGF file: spectrum count, peak counts, and m/z ranges.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

func runSummarize(cmd *cobra.Command, args []string) error {
	col, err := mgf.ReadFile(args[0])
	if err != nil {
		return err
	}

	totalPeaks := 0
	empty := 0
	minMZ, maxMZ := math.Inf(1), math.Inf(-1)
	minPMZ, maxPMZ := math.Inf(1), math.Inf(-1)

	for _, spec := range col.Spectra {
		totalPeaks += spec.Len()
		if spec.IsEmpty() {
			empty++
		} else {
			if spec.MZ[0] < minMZ {
				minMZ = spec.MZ[0]
			}
			if last := spec.MZ[spec.Len()-1]; last > maxMZ {
				maxMZ = last
			}
		}
		if spec.PrecursorMZ < minPMZ {
			minPMZ = spec.PrecursorMZ
		}
		if spec.PrecursorMZ > maxPMZ {
			maxPMZ = spec.PrecursorMZ
		}
	}

	fmt.Printf("File: %s\n", args[0])
	fmt.Printf("Spectra: %d (%d empty)\n", col.Len(), empty)
	fmt.Printf("Total peaks: %d\n", totalPeaks)
	if col.Len() > 0 {
		fmt.Printf("Average peaks per spectrum: %.1f\n", float64(totalPeaks)/float64(col.Len()))
		fmt.Printf("Precursor m/z range: %.4f - %.4f\n", minPMZ, maxPMZ)
	}
	if totalPeaks > 0 {
		fmt.Printf("Fragment m/z range: %.4f - %.4f\n", minMZ, maxMZ)
	}

	return nil
}
