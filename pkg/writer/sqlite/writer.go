// Package sqlite provides SQLite persistence for scoring runs and their
// sparse score matrices.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/specscore/specscore/pkg/discretize"
	"github.com/specscore/specscore/pkg/score"
)

const creationDateFormat = "2006-01-02 15:04:05"

// RunMeta describes one scoring run for provenance.
type RunMeta struct {
	QueryFile    string
	RefFile      string
	QuerySpectra int
	RefSpectra   int
	Discretize   discretize.Params
	Score        score.Params
}

// Writer handles writing score matrices to SQLite database files.
type Writer struct {
	db         *sql.DB
	outputPath string
	cellStmt   *sql.Stmt
}

// NewWriter creates a new SQLite writer, creating the schema if needed.
func NewWriter(outputPath string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// createTables creates the required database schema.
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS RunTable (
		RunId INTEGER PRIMARY KEY AUTOINCREMENT,
		CreationDate TEXT,
		QueryFile TEXT,
		RefFile TEXT,
		QuerySpectra INTEGER,
		RefSpectra INTEGER,
		BinWidth DOUBLE,
		IntensityPower DOUBLE,
		Normalize BOOL,
		Tolerance DOUBLE,
		MassDiffs TEXT,
		ReactSteps INTEGER,
		MinScore DOUBLE,
		MinMatches INTEGER
	);

	CREATE TABLE IF NOT EXISTS ScoreTable (
		RunId INTEGER REFERENCES RunTable(RunId),
		Space TEXT,
		QueryIdx INTEGER,
		RefIdx INTEGER,
		Score DOUBLE,
		Matches INTEGER
	);

	CREATE INDEX IF NOT EXISTS ScoreTableRunIdx ON ScoreTable(RunId, Space, QueryIdx);
	`

	if _, err := w.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion.
func (w *Writer) prepareStatements() error {
	var err error
	w.cellStmt, err = w.db.Prepare(`
		INSERT INTO ScoreTable (RunId, Space, QueryIdx, RefIdx, Score, Matches)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare score statement: %w", err)
	}
	return nil
}

// WriteRun records run metadata and returns the run ID for its cells.
func (w *Writer) WriteRun(meta RunMeta) (int64, error) {
	diffs := make([]string, len(meta.Score.MassDiffs))
	for i, d := range meta.Score.MassDiffs {
		diffs[i] = fmt.Sprintf("%g", d)
	}

	res, err := w.db.Exec(`
		INSERT INTO RunTable (
			CreationDate, QueryFile, RefFile, QuerySpectra, RefSpectra,
			BinWidth, IntensityPower, Normalize,
			Tolerance, MassDiffs, ReactSteps, MinScore, MinMatches
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().Format(creationDateFormat),
		meta.QueryFile, meta.RefFile, meta.QuerySpectra, meta.RefSpectra,
		meta.Discretize.BinWidth, meta.Discretize.IntensityPower, meta.Discretize.Normalize,
		meta.Score.Tolerance, strings.Join(diffs, ","), meta.Score.ReactSteps,
		meta.Score.MinScore, meta.Score.MinMatches,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	return runID, nil
}

// WriteResult persists every materialized cell of the result under the given
// run ID inside a single transaction.
func (w *Writer) WriteResult(runID int64, result *score.Result) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt := tx.Stmt(w.cellStmt)
	defer stmt.Close()

	for _, space := range discretize.Spaces {
		sr, ok := result.Spaces[space]
		if !ok {
			continue
		}
		var insertErr error
		sr.Scores.Range(func(row, col int, v float64) {
			if insertErr != nil {
				return
			}
			matches := int(sr.Matches.At(row, col))
			_, insertErr = stmt.Exec(runID, string(space), row, col, v, matches)
		})
		if insertErr != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert score cell: %w", insertErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scores: %w", err)
	}
	return nil
}

// Close finalizes the database and releases resources.
func (w *Writer) Close() error {
	if w.cellStmt != nil {
		w.cellStmt.Close()
	}
	return w.db.Close()
}
