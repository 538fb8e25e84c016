// Package tab writes score matrices as tab-separated text, one row per
// materialized (query, reference) pair with the score and match count of
// every bin space side by side.
package tab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/specscore/specscore/pkg/discretize"
	"github.com/specscore/specscore/pkg/score"
)

// Write emits the result to w. Pairs appear in row-major order; cells absent
// from a space are written as 0.
func Write(w io.Writer, result *score.Result) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprint(bw, "query\tref"); err != nil {
		return err
	}
	for _, space := range discretize.Spaces {
		if _, err := fmt.Fprintf(bw, "\t%s_score\t%s_matches", space, space); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(bw); err != nil {
		return err
	}

	for _, pair := range collectPairs(result) {
		if _, err := fmt.Fprintf(bw, "%d\t%d", pair[0], pair[1]); err != nil {
			return err
		}
		for _, space := range discretize.Spaces {
			sr := result.Spaces[space]
			if _, err := fmt.Fprintf(bw, "\t%g\t%d",
				sr.Scores.At(pair[0], pair[1]),
				int(sr.Matches.At(pair[0], pair[1]))); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(bw); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteFile writes the result to a file path.
func WriteFile(path string, result *score.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := Write(f, result); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// collectPairs unions the materialized cells of every space in row-major
// order.
func collectPairs(result *score.Result) [][2]int {
	seen := make(map[[2]int]struct{})
	for _, sr := range result.Spaces {
		sr.Scores.Range(func(row, col int, _ float64) {
			seen[[2]int{row, col}] = struct{}{}
		})
	}

	pairs := make([][2]int, 0, len(seen))
	for p := range seen {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a][0] != pairs[b][0] {
			return pairs[a][0] < pairs[b][0]
		}
		return pairs[a][1] < pairs[b][1]
	})
	return pairs
}
