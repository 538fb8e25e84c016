// Package cmd provides CLI command implementations
package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Flags for score command
	outputFile      string
	configFile      string
	binWidth        float64
	intensityPower  float64
	noNormalize     bool
	tolerance       float64
	massDiffs       []float64
	reactSteps      int
	minScore        float64
	minMatches      int
	precursorWindow float64
	noiseFraction   float64
	roundDecimals   int
	dedup           bool
	workers         int
	verbose         bool
)

var rootCmd = &cobra.Command{
	Use:   "specscore",
	Short: "specscore - Sparse spectral similarity scoring",
	Long: `specscore discretizes tandem mass spectra (given MGF inputs) and scores
query spectra against reference spectra using sparse cosine-style similarity.

Scores and matched-ion counts are computed independently in the fragment m/z
and neutral-loss bin spaces; combined reporting takes the per-pair maximum
across both spaces (modified cosine).`,
	Version: "1.0.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func setupLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(summarizeCmd)

	// Score command flags
	scoreCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output file: .tab/.tsv or .db/.sqlite (required)")
	scoreCmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML parameter file overriding flag defaults")
	scoreCmd.Flags().Float64VarP(&binWidth, "bin-width", "b", 0.001, "Width of bins in m/z")
	scoreCmd.Flags().Float64VarP(&intensityPower, "intensity-power", "i", 0.5, "Power to raise intensities to when scoring")
	scoreCmd.Flags().BoolVar(&noNormalize, "no-normalize", false, "Skip per-spectrum L2 normalization of binned weights")
	scoreCmd.Flags().Float64VarP(&tolerance, "tolerance", "t", 0.01, "Maximum tolerance in m/z for fragment ions to match")
	scoreCmd.Flags().Float64SliceVarP(&massDiffs, "mass-diffs", "d", []float64{0}, "Mass diffs to network ions across")
	scoreCmd.Flags().IntVarP(&reactSteps, "react-steps", "r", 1, "Recursively combine mass diffs within this number of reaction steps")
	scoreCmd.Flags().Float64VarP(&minScore, "min-score", "s", 0, "Minimum score to include in output (0 = keep all)")
	scoreCmd.Flags().IntVarP(&minMatches, "min-matches", "m", 0, "Minimum matches to include in output (0 = keep all)")
	scoreCmd.Flags().Float64Var(&precursorWindow, "precursor-window", 14, "Remove ions within this window (Da) of the precursor m/z")
	scoreCmd.Flags().Float64Var(&noiseFraction, "noise-fraction", 0.01, "Remove ions below this fraction of the base peak")
	scoreCmd.Flags().IntVar(&roundDecimals, "round-decimals", 3, "Decimal places to round m/z values to")
	scoreCmd.Flags().BoolVar(&dedup, "dedup", false, "Merge fragment ions within 2 times bin width")
	scoreCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent scoring blocks (0 = number of CPUs)")

	scoreCmd.MarkFlagRequired("out")
}
