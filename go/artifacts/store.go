// Package artifacts keeps the intermediate tables of a build (per-column
// block samples, counts, weights and placeholder diagnostics) in a sqlite
// database for inspection.
package artifacts

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/wotr-tools/blockweights/go/weights"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (id TEXT PRIMARY KEY, theme TEXT NOT NULL, started_at TEXT NOT NULL);
CREATE TABLE IF NOT EXISTS grids (run_id TEXT, processor INTEGER, path TEXT, width INTEGER, height INTEGER,
	length INTEGER, valid INTEGER, error TEXT, PRIMARY KEY (run_id, processor));
CREATE TABLE IF NOT EXISTS palette (run_id TEXT, processor INTEGER, id INTEGER, block TEXT,
	PRIMARY KEY (run_id, processor, id));
CREATE TABLE IF NOT EXISTS samples (run_id TEXT, processor INTEGER, col INTEGER, blocks BLOB,
	PRIMARY KEY (run_id, processor, col));
CREATE TABLE IF NOT EXISTS counts (run_id TEXT, processor INTEGER, col INTEGER, ord INTEGER, block TEXT, count INTEGER);
CREATE TABLE IF NOT EXISTS weights (run_id TEXT, processor INTEGER, col INTEGER, ord INTEGER, block TEXT, weight REAL);
CREATE TABLE IF NOT EXISTS diagnostics (run_id TEXT, processor INTEGER, col INTEGER, expected TEXT, actual TEXT,
	missing INTEGER, message TEXT);
`

// Store is an artifact database. It is safe to share between runs.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "creating tables in %s", path)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Run records the artifacts of one theme build.
type Run struct {
	ID    string
	store *Store
}

// NewRun starts a run for theme under a fresh id.
func (s *Store) NewRun(theme string) (*Run, error) {
	r := &Run{ID: uuid.New().String(), store: s}
	_, err := s.db.Exec("INSERT INTO runs (id, theme, started_at) VALUES (?, ?, ?)",
		r.ID, theme, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, errors.Wrap(err, "starting run")
	}
	return r, nil
}

// RecordGrid stores a template's column samples and placeholder
// diagnostics, plus counts and weights when the template was valid.
func (r *Run) RecordGrid(processor int, path string, g weights.Grid, res weights.GridResult) error {
	tx, err := r.store.db.Begin()
	if err != nil {
		return errors.Wrap(err, "recording grid")
	}
	defer tx.Rollback()

	width, height, length := g.Dims()
	_, err = tx.Exec("INSERT INTO grids (run_id, processor, path, width, height, length, valid) VALUES (?, ?, ?, ?, ?, ?, ?)",
		r.ID, processor, path, width, height, length, res.Report.Valid)
	if err != nil {
		return errors.Wrap(err, "grids")
	}

	palette := map[string]int{}
	for z := 0; z < length; z++ {
		run := make([]int, 0, width*height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				b := g.BlockAt(x + z*width + y*width*length)
				id, ok := palette[b]
				if !ok {
					id = len(palette)
					palette[b] = id
					if _, err := tx.Exec("INSERT INTO palette (run_id, processor, id, block) VALUES (?, ?, ?, ?)",
						r.ID, processor, id, b); err != nil {
						return errors.Wrap(err, "palette")
					}
				}
				run = append(run, id)
			}
		}
		blob, err := packRun(run)
		if err != nil {
			return errors.Wrapf(err, "packing column %d", z)
		}
		if _, err := tx.Exec("INSERT INTO samples (run_id, processor, col, blocks) VALUES (?, ?, ?, ?)",
			r.ID, processor, z, blob); err != nil {
			return errors.Wrap(err, "samples")
		}
	}

	for _, c := range res.Columns {
		for i, bc := range c.Counts {
			if _, err := tx.Exec("INSERT INTO counts (run_id, processor, col, ord, block, count) VALUES (?, ?, ?, ?, ?, ?)",
				r.ID, processor, c.Index, i, bc.Block, bc.Count); err != nil {
				return errors.Wrap(err, "counts")
			}
		}
		for i, w := range c.Weights {
			if _, err := tx.Exec("INSERT INTO weights (run_id, processor, col, ord, block, weight) VALUES (?, ?, ?, ?, ?, ?)",
				r.ID, processor, c.Index, i, w.Block, w.Weight); err != nil {
				return errors.Wrap(err, "weights")
			}
		}
	}

	for _, m := range res.Report.Mismatches {
		if _, err := tx.Exec("INSERT INTO diagnostics (run_id, processor, col, expected, actual, missing, message) VALUES (?, ?, ?, ?, ?, ?, ?)",
			r.ID, processor, m.Column, m.Expected, m.Actual, m.Missing, m.Err().Error()); err != nil {
			return errors.Wrap(err, "diagnostics")
		}
	}
	return errors.Wrap(tx.Commit(), "recording grid")
}

// RecordFailure stores a template that could not be read.
func (r *Run) RecordFailure(processor int, path string, failure error) error {
	tx, err := r.store.db.Begin()
	if err != nil {
		return errors.Wrap(err, "recording failure")
	}
	defer tx.Rollback()
	if _, err := tx.Exec("INSERT INTO grids (run_id, processor, path, valid, error) VALUES (?, ?, ?, 0, ?)",
		r.ID, processor, path, failure.Error()); err != nil {
		return errors.Wrap(err, "grids")
	}
	if _, err := tx.Exec("INSERT INTO diagnostics (run_id, processor, message) VALUES (?, ?, ?)",
		r.ID, processor, failure.Error()); err != nil {
		return errors.Wrap(err, "diagnostics")
	}
	return errors.Wrap(tx.Commit(), "recording failure")
}

// Samples returns the blocks of one recorded column, height outer and
// depth inner.
func (s *Store) Samples(runID string, processor, column int) ([]string, error) {
	var blob []byte
	err := s.db.QueryRow("SELECT blocks FROM samples WHERE run_id=? AND processor=? AND col=?",
		runID, processor, column).Scan(&blob)
	if err != nil {
		return nil, errors.Wrapf(err, "samples for processor %d column %d", processor, column)
	}
	ids, err := unpackRun(blob)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query("SELECT id, block FROM palette WHERE run_id=? AND processor=?", runID, processor)
	if err != nil {
		return nil, errors.Wrap(err, "palette")
	}
	defer rows.Close()
	palette := map[int]string{}
	for rows.Next() {
		var id int
		var block string
		if err := rows.Scan(&id, &block); err != nil {
			return nil, errors.Wrap(err, "palette")
		}
		palette[id] = block
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "palette")
	}

	ret := make([]string, len(ids))
	for i, id := range ids {
		b, ok := palette[id]
		if !ok {
			return nil, errors.Errorf("sample references palette id %d with no entry", id)
		}
		ret[i] = b
	}
	return ret, nil
}
