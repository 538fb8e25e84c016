package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specscore/specscore/pkg/discretize"
	"github.com/specscore/specscore/pkg/score"
	"github.com/specscore/specscore/pkg/sparse"
)

func TestWriteRunAndResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.db")

	w, err := NewWriter(path)
	require.NoError(t, err)
	defer w.Close()

	meta := RunMeta{
		QueryFile:    "query.mgf",
		RefFile:      "ref.mgf",
		QuerySpectra: 2,
		RefSpectra:   2,
		Discretize:   discretize.DefaultParams(),
		Score:        score.Params{Tolerance: 0.01, MassDiffs: []float64{0, 1.00783}, ReactSteps: 1},
	}
	runID, err := w.WriteRun(meta)
	require.NoError(t, err)
	require.Greater(t, runID, int64(0))

	mzScores := sparse.NewBuilder(2, 2)
	mzScores.Set(0, 1, 0.8)
	mzMatches := sparse.NewBuilder(2, 2)
	mzMatches.Set(0, 1, 4)
	nlScores := sparse.NewBuilder(2, 2)
	nlMatches := sparse.NewBuilder(2, 2)

	result := &score.Result{Spaces: map[discretize.Space]score.SpaceResult{
		discretize.SpaceMZ:          {Scores: mzScores.Build(), Matches: mzMatches.Build()},
		discretize.SpaceNeutralLoss: {Scores: nlScores.Build(), Matches: nlMatches.Build()},
	}}
	require.NoError(t, w.WriteResult(runID, result))
	require.NoError(t, w.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var massDiffs string
	var tolerance float64
	err = db.QueryRow(`SELECT MassDiffs, Tolerance FROM RunTable WHERE RunId = ?`, runID).
		Scan(&massDiffs, &tolerance)
	require.NoError(t, err)
	assert.Equal(t, "0,1.00783", massDiffs)
	assert.Equal(t, 0.01, tolerance)

	var space string
	var queryIdx, refIdx, matches int
	var scoreVal float64
	err = db.QueryRow(`SELECT Space, QueryIdx, RefIdx, Score, Matches FROM ScoreTable WHERE RunId = ?`, runID).
		Scan(&space, &queryIdx, &refIdx, &scoreVal, &matches)
	require.NoError(t, err)
	assert.Equal(t, "direct", space)
	assert.Equal(t, 0, queryIdx)
	assert.Equal(t, 1, refIdx)
	assert.Equal(t, 0.8, scoreVal)
	assert.Equal(t, 4, matches)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM ScoreTable`).Scan(&count))
	assert.Equal(t, 1, count, "empty neutral-loss matrices contribute no rows")
}
