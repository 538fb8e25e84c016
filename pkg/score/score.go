package score

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/specscore/specscore/pkg/discretize"
	"github.com/specscore/specscore/pkg/sparse"
)

// SpaceResult holds one bin space's paired output matrices. Both are
// |Q| x |R|; pairs with no shared bins within tolerance are not materialized.
type SpaceResult struct {
	Scores  *sparse.Matrix // Similarity scores (sums of matched weight products)
	Matches *sparse.Matrix // Matched bin-pair counts, unweighted
}

// Result is the score matrix set produced by one scoring run, keyed by bin
// space.
type Result struct {
	Spaces map[discretize.Space]SpaceResult
}

// Direct returns the mz-space result.
func (r *Result) Direct() SpaceResult {
	return r.Spaces[discretize.SpaceMZ]
}

// NeutralLoss returns the neutral-loss-space result.
func (r *Result) NeutralLoss() SpaceResult {
	return r.Spaces[discretize.SpaceNeutralLoss]
}

// Best returns the element-wise maximum of both spaces' scores and matches,
// the modified-cosine style combined report: a fragment may match either by
// direct mass or by a shared neutral-loss shift.
func (r *Result) Best() (SpaceResult, error) {
	direct, nl := r.Direct(), r.NeutralLoss()

	scores, err := sparse.MaxElem(direct.Scores, nl.Scores)
	if err != nil {
		return SpaceResult{}, fmt.Errorf("combining scores: %w", err)
	}
	matches, err := sparse.MaxElem(direct.Matches, nl.Matches)
	if err != nil {
		return SpaceResult{}, fmt.Errorf("combining matches: %w", err)
	}
	return SpaceResult{Scores: scores, Matches: matches}, nil
}

// FilterThresholds returns a copy of the result keeping only (query,
// reference) pairs whose score reaches minScore or whose match count reaches
// minMatches in at least one bin space. Zero thresholds keep everything.
func (r *Result) FilterThresholds(minScore float64, minMatches int) *Result {
	if minScore <= 0 && minMatches <= 0 {
		return r
	}

	type cell struct{ row, col int }
	keep := make(map[cell]struct{})
	for _, sr := range r.Spaces {
		if minScore > 0 {
			sr.Scores.Range(func(row, col int, v float64) {
				if v >= minScore {
					keep[cell{row, col}] = struct{}{}
				}
			})
		}
		if minMatches > 0 {
			sr.Matches.Range(func(row, col int, v float64) {
				if v >= float64(minMatches) {
					keep[cell{row, col}] = struct{}{}
				}
			})
		}
	}

	keepFn := func(row, col int) bool {
		_, ok := keep[cell{row, col}]
		return ok
	}

	out := &Result{Spaces: make(map[discretize.Space]SpaceResult, len(r.Spaces))}
	for space, sr := range r.Spaces {
		out.Spaces[space] = SpaceResult{
			Scores:  sr.Scores.Filter(keepFn),
			Matches: sr.Matches.Filter(keepFn),
		}
	}
	return out
}

// Collections scores every query spectrum against every reference spectrum
// in both bin spaces. The representations must share a bin width. Query rows
// are split into blocks scored concurrently; blocks write disjoint output
// rows, so results are combined by index regardless of completion order.
func Collections(ctx context.Context, query, ref *discretize.Binned, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if query.Params.BinWidth != ref.Params.BinWidth {
		return nil, fmt.Errorf("score: bin width mismatch: query %v, reference %v",
			query.Params.BinWidth, ref.Params.BinWidth)
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	offsets := binOffsets(p, query.Params.BinWidth)
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	result := &Result{Spaces: make(map[discretize.Space]SpaceResult, len(discretize.Spaces))}
	for _, space := range discretize.Spaces {
		sr, err := scoreSpace(ctx, query, ref, space, offsets, workers)
		if err != nil {
			return nil, err
		}
		result.Spaces[space] = sr
	}

	log.Debug().
		Int("querySpectra", query.NumSpectra).
		Int("refSpectra", ref.NumSpectra).
		Int("offsets", len(offsets)).
		Dur("elapsed", time.Since(start)).
		Msg("scored collections")

	return result.FilterThresholds(p.MinScore, p.MinMatches), nil
}

// refIndex inverts a reference representation into bin -> entries lookups.
type refIndex map[int64][]refEntry

type refEntry struct {
	spec   int
	weight float64
}

func buildRefIndex(entries []discretize.Entry) refIndex {
	idx := make(refIndex)
	for _, e := range entries {
		idx[e.Bin] = append(idx[e.Bin], refEntry{spec: e.Spec, weight: e.Weight})
	}
	return idx
}

// scoreSpace computes one bin space's score and match matrices.
func scoreSpace(ctx context.Context, query, ref *discretize.Binned, space discretize.Space, offsets []int64, workers int) (SpaceResult, error) {
	qEntries := query.Entries(space)
	idx := buildRefIndex(ref.Entries(space))

	blocks := splitBySpec(qEntries, workers)
	partialScores := make([]*sparse.Builder, len(blocks))
	partialMatches := make([]*sparse.Builder, len(blocks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, block := range blocks {
		g.Go(func() error {
			scores := sparse.NewBuilder(query.NumSpectra, ref.NumSpectra)
			matches := sparse.NewBuilder(query.NumSpectra, ref.NumSpectra)

			prevSpec := -1
			for _, e := range block {
				if e.Spec != prevSpec {
					// Cancellation checkpoint once per query spectrum.
					if err := ctx.Err(); err != nil {
						return err
					}
					prevSpec = e.Spec
				}
				for _, off := range offsets {
					for _, re := range idx[e.Bin+off] {
						scores.Add(e.Spec, re.spec, e.Weight*re.weight)
						matches.Add(e.Spec, re.spec, 1)
					}
				}
			}

			partialScores[i] = scores
			partialMatches[i] = matches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SpaceResult{}, err
	}

	scores := sparse.NewBuilder(query.NumSpectra, ref.NumSpectra)
	matches := sparse.NewBuilder(query.NumSpectra, ref.NumSpectra)
	for i := range blocks {
		if err := scores.Merge(partialScores[i]); err != nil {
			return SpaceResult{}, err
		}
		if err := matches.Merge(partialMatches[i]); err != nil {
			return SpaceResult{}, err
		}
	}

	return SpaceResult{Scores: scores.Build(), Matches: matches.Build()}, nil
}

// splitBySpec partitions entries into up to n blocks along spectrum
// boundaries so that no two blocks touch the same output row.
func splitBySpec(entries []discretize.Entry, n int) [][]discretize.Entry {
	if len(entries) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}

	target := (len(entries) + n - 1) / n
	var blocks [][]discretize.Entry
	start := 0
	for start < len(entries) {
		end := start + target
		if end >= len(entries) {
			end = len(entries)
		} else {
			// Extend to the end of the current spectrum's run.
			for end < len(entries) && entries[end].Spec == entries[end-1].Spec {
				end++
			}
		}
		blocks = append(blocks, entries[start:end])
		start = end
	}
	return blocks
}
