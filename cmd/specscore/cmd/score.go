package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/specscore/specscore/pkg/core"
	"github.com/specscore/specscore/pkg/discretize"
	"github.com/specscore/specscore/pkg/reader/mgf"
	"github.com/specscore/specscore/pkg/score"
	"github.com/specscore/specscore/pkg/writer/sqlite"
	"github.com/specscore/specscore/pkg/writer/tab"
)

var scoreCmd = &cobra.Command{
	Use:   "score <query.mgf> [ref.mgf]",
	Short: "Score spectra of one MGF file against another",
	Long: `Score every spectrum of the query file against every spectrum of the
reference file. With a single input the file is scored against itself.

Examples:
  # Self-score a library with defaults
  specscore score library.mgf --out library.tab

  # Score queries against a reference library into SQLite
  specscore score queries.mgf library.mgf --out scores.db --min-score 0.4 --min-matches 3

  # Analog networking across common biochemical mass differences
  specscore score queries.mgf library.mgf --out scores.tab --mass-diffs 0,1.00783,15.99491 --react-steps 2`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runScore,
}

func runScore(cmd *cobra.Command, args []string) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}

	queryPath := args[0]
	refPath := queryPath
	if len(args) == 2 {
		refPath = args[1]
	}

	queryCol, err := mgf.ReadFile(queryPath)
	if err != nil {
		return err
	}
	log.Info().Str("file", filepath.Base(queryPath)).Int("spectra", queryCol.Len()).Msg("loaded query spectra")

	refCol := queryCol
	if refPath != queryPath {
		refCol, err = mgf.ReadFile(refPath)
		if err != nil {
			return err
		}
		log.Info().Str("file", filepath.Base(refPath)).Int("spectra", refCol.Len()).Msg("loaded reference spectra")
	}

	prepare := func(col *core.Collection) (*discretize.Binned, error) {
		cleaned, err := opts.Preprocess.ApplyCollection(col)
		if err != nil {
			return nil, err
		}
		return discretize.Collection(cleaned, opts.Discretize)
	}

	start := time.Now()
	queryBinned, err := prepare(queryCol)
	if err != nil {
		return fmt.Errorf("query %s: %w", queryPath, err)
	}
	refBinned := queryBinned
	if refPath != queryPath {
		refBinned, err = prepare(refCol)
		if err != nil {
			return fmt.Errorf("reference %s: %w", refPath, err)
		}
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("discretized spectra")

	start = time.Now()
	result, err := score.Collections(context.Background(), queryBinned, refBinned, opts.Score)
	if err != nil {
		return err
	}
	log.Info().
		Dur("elapsed", time.Since(start)).
		Int("directPairs", result.Direct().Scores.NNZ()).
		Int("neutralLossPairs", result.NeutralLoss().Scores.NNZ()).
		Msg("scored spectra")

	return writeResult(result, queryPath, refPath, queryCol.Len(), refCol.Len(), opts)
}

func writeResult(result *score.Result, queryPath, refPath string, querySpectra, refSpectra int, opts options) error {
	switch strings.ToLower(filepath.Ext(outputFile)) {
	case ".tab", ".tsv":
		if err := tab.WriteFile(outputFile, result); err != nil {
			return err
		}

	case ".db", ".sqlite":
		w, err := sqlite.NewWriter(outputFile)
		if err != nil {
			return err
		}
		defer w.Close()

		runID, err := w.WriteRun(sqlite.RunMeta{
			QueryFile:    queryPath,
			RefFile:      refPath,
			QuerySpectra: querySpectra,
			RefSpectra:   refSpectra,
			Discretize:   opts.Discretize,
			Score:        opts.Score,
		})
		if err != nil {
			return err
		}
		if err := w.WriteResult(runID, result); err != nil {
			return err
		}

	default:
		return fmt.Errorf("cannot detect output format from extension %q, use .tab, .tsv, .db, or .sqlite",
			filepath.Ext(outputFile))
	}

	log.Info().Str("file", outputFile).Msg("wrote scores")
	return nil
}
