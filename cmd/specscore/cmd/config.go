package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/specscore/specscore/pkg/discretize"
	"github.com/specscore/specscore/pkg/preprocess"
	"github.com/specscore/specscore/pkg/score"
)

// options is the fully resolved parameter set for a scoring run.
type options struct {
	Preprocess preprocess.Config
	Discretize discretize.Params
	Score      score.Params
}

// fileConfig mirrors the YAML parameter file. Pointer fields distinguish
// "absent" from zero values.
type fileConfig struct {
	Preprocess struct {
		PrecursorWindow *float64 `yaml:"precursorWindow"`
		NoiseFraction   *float64 `yaml:"noiseFraction"`
		RoundDecimals   *int     `yaml:"roundDecimals"`
		Dedup           *bool    `yaml:"dedup"`
	} `yaml:"preprocess"`
	Discretize struct {
		BinWidth       *float64 `yaml:"binWidth"`
		IntensityPower *float64 `yaml:"intensityPower"`
		Normalize      *bool    `yaml:"normalize"`
	} `yaml:"discretize"`
	Score struct {
		Tolerance  *float64  `yaml:"tolerance"`
		MassDiffs  []float64 `yaml:"massDiffs"`
		ReactSteps *int      `yaml:"reactSteps"`
		MinScore   *float64  `yaml:"minScore"`
		MinMatches *int      `yaml:"minMatches"`
		Workers    *int      `yaml:"workers"`
	} `yaml:"score"`
}

// resolveOptions layers configuration: package defaults, then the YAML file
// if given, then any flag the user set explicitly.
func resolveOptions(cmd *cobra.Command) (options, error) {
	opts := options{
		Preprocess: preprocess.DefaultConfig(),
		Discretize: discretize.DefaultParams(),
		Score:      score.DefaultParams(),
	}
	useDedup := false

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return options{}, fmt.Errorf("failed to read config file: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return options{}, fmt.Errorf("failed to parse config file: %w", err)
		}

		setIf(&opts.Preprocess.PrecursorWindow, fc.Preprocess.PrecursorWindow)
		setIf(&opts.Preprocess.NoiseFraction, fc.Preprocess.NoiseFraction)
		setIf(&opts.Preprocess.RoundDecimals, fc.Preprocess.RoundDecimals)
		setIf(&useDedup, fc.Preprocess.Dedup)
		setIf(&opts.Discretize.BinWidth, fc.Discretize.BinWidth)
		setIf(&opts.Discretize.IntensityPower, fc.Discretize.IntensityPower)
		setIf(&opts.Discretize.Normalize, fc.Discretize.Normalize)
		setIf(&opts.Score.Tolerance, fc.Score.Tolerance)
		if fc.Score.MassDiffs != nil {
			opts.Score.MassDiffs = fc.Score.MassDiffs
		}
		setIf(&opts.Score.ReactSteps, fc.Score.ReactSteps)
		setIf(&opts.Score.MinScore, fc.Score.MinScore)
		setIf(&opts.Score.MinMatches, fc.Score.MinMatches)
		setIf(&opts.Score.Workers, fc.Score.Workers)
	}

	flags := cmd.Flags()
	if flags.Changed("precursor-window") {
		opts.Preprocess.PrecursorWindow = precursorWindow
	}
	if flags.Changed("noise-fraction") {
		opts.Preprocess.NoiseFraction = noiseFraction
	}
	if flags.Changed("round-decimals") {
		opts.Preprocess.RoundDecimals = roundDecimals
	}
	if flags.Changed("dedup") {
		useDedup = dedup
	}
	if flags.Changed("bin-width") {
		opts.Discretize.BinWidth = binWidth
	}
	if flags.Changed("intensity-power") {
		opts.Discretize.IntensityPower = intensityPower
	}
	if flags.Changed("no-normalize") {
		opts.Discretize.Normalize = !noNormalize
	}
	if flags.Changed("tolerance") {
		opts.Score.Tolerance = tolerance
	}
	if flags.Changed("mass-diffs") {
		opts.Score.MassDiffs = massDiffs
	}
	if flags.Changed("react-steps") {
		opts.Score.ReactSteps = reactSteps
	}
	if flags.Changed("min-score") {
		opts.Score.MinScore = minScore
	}
	if flags.Changed("min-matches") {
		opts.Score.MinMatches = minMatches
	}
	if flags.Changed("workers") {
		opts.Score.Workers = workers
	}

	if useDedup {
		opts.Preprocess.DedupMinDiff = 2 * opts.Discretize.BinWidth
	}

	if err := opts.Discretize.Validate(); err != nil {
		return options{}, err
	}
	if err := opts.Score.Validate(); err != nil {
		return options{}, err
	}

	return opts, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
