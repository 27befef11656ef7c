/*
 * enelog.go, part of cljgrid.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

//Package enelog keeps the energies obtained along sequences of moves in a SQLite database.
package enelog

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rmera/cljgrid/clj"
	_ "modernc.org/sqlite"
)

//Step is the energy after one move of a run.
type Step struct {
	Run     int64   `db:"run"`
	Step    int     `db:"step"`
	Coulomb float64 `db:"coulomb"`
	LJ      float64 `db:"lj"`
	Rebuilt bool    `db:"rebuilt"` //the grid had to be rebuilt for this step
}

//Components returns the energy of the step
func (S Step) Components() clj.Components {
	return clj.Components{Coulomb: S.Coulomb, LJ: S.LJ}
}

//Run describes one sequence of moves
type Run struct {
	ID      int64  `db:"id"`
	Label   string `db:"label"`
	Created string `db:"created"`
}

//Log is an energy log stored in a SQLite file.
type Log struct {
	conn *sqlx.DB
}

//Open opens the log at path, creating it if needed.
func Open(path string) (*Log, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("enelog: open %s: %w", path, err)
	}
	conn.SetMaxOpenConns(1)
	L := &Log{conn: conn}
	if err := L.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enelog: migrate %s: %w", path, err)
	}
	return L, nil
}

//Close closes the database
func (L *Log) Close() error {
	return L.conn.Close()
}

func (L *Log) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL,
		created TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS steps (
		run INTEGER NOT NULL REFERENCES runs(id),
		step INTEGER NOT NULL,
		coulomb REAL NOT NULL,
		lj REAL NOT NULL,
		rebuilt INTEGER NOT NULL,
		PRIMARY KEY (run, step)
	);
	`
	_, err := L.conn.Exec(schema)
	return err
}

//NewRun registers a new run with the given label and returns its id.
func (L *Log) NewRun(label string) (int64, error) {
	res, err := L.conn.Exec("INSERT INTO runs (label, created) VALUES (?, ?)", label, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("enelog: new run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("enelog: new run: %w", err)
	}
	return id, nil
}

//Record stores the energy of one step of a run.
func (L *Log) Record(run int64, step int, e clj.Components, rebuilt bool) error {
	return L.RecordAll([]Step{{Run: run, Step: step, Coulomb: e.Coulomb, LJ: e.LJ, Rebuilt: rebuilt}})
}

//RecordAll stores several steps in a single transaction.
func (L *Log) RecordAll(steps []Step) error {
	tx, err := L.conn.Beginx()
	if err != nil {
		return fmt.Errorf("enelog: record: %w", err)
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareNamed("INSERT INTO steps (run, step, coulomb, lj, rebuilt) VALUES (:run, :step, :coulomb, :lj, :rebuilt)")
	if err != nil {
		return fmt.Errorf("enelog: record: %w", err)
	}
	defer stmt.Close()
	for _, s := range steps {
		if _, err := stmt.Exec(s); err != nil {
			return fmt.Errorf("enelog: record step %d of run %d: %w", s.Step, s.Run, err)
		}
	}
	return tx.Commit()
}

//Steps returns all the steps of a run, in order.
func (L *Log) Steps(run int64) ([]Step, error) {
	var steps []Step
	err := L.conn.Select(&steps, "SELECT run, step, coulomb, lj, rebuilt FROM steps WHERE run = ? ORDER BY step", run)
	if err != nil {
		return nil, fmt.Errorf("enelog: steps of run %d: %w", run, err)
	}
	return steps, nil
}

//Runs returns all the runs in the log
func (L *Log) Runs() ([]Run, error) {
	var runs []Run
	if err := L.conn.Select(&runs, "SELECT id, label, created FROM runs ORDER BY id"); err != nil {
		return nil, fmt.Errorf("enelog: runs: %w", err)
	}
	return runs, nil
}

//Rebuilds returns the number of steps of a run that required rebuilding the grid.
func (L *Log) Rebuilds(run int64) (int, error) {
	var n int
	if err := L.conn.Get(&n, "SELECT COUNT(*) FROM steps WHERE run = ? AND rebuilt = 1", run); err != nil {
		return 0, fmt.Errorf("enelog: rebuilds of run %d: %w", run, err)
	}
	return n, nil
}
