/*
 * root.go, part of cljgrid.
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

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	chem "github.com/rmera/cljgrid"
	"github.com/rmera/cljgrid/clj"
	"github.com/rmera/cljgrid/enelog"
	"github.com/rmera/cljgrid/gridff"
	"github.com/rmera/cljgrid/gridplot"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel string  // Log verbosity level
	units    string  // kcal or kj
	outFile  string  // Output file for plot and save
	gridFile string  // Saved grid for load
	dbFile   string  // SQLite energy log for replay
	planeZ   float64 // Height of the plotted plane
	label    string  // Label of the replay run
	trajFile string  // XYZ trajectory of the probes during replay
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "cljgrid",
	Short: "Grid-accelerated Coulomb and Lennard-Jones energies",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
		if units != "kcal" && units != "kj" {
			return fmt.Errorf("invalid units %q, use kcal or kj", units)
		}
		return nil
	},
	SilenceUsage: true,
}

func convert(e clj.Components) clj.Components {
	if units == "kj" {
		return e.KJ()
	}
	return e
}

func unitName() string {
	if units == "kj" {
		return "kJ/mol"
	}
	return "kcal/mol"
}

func printEnergy(w io.Writer, title string, e clj.Components) {
	e = convert(e)
	fmt.Fprintf(w, "%s (%s)\n  coulomb %14.6f\n  lj      %14.6f\n  total   %14.6f\n", title, unitName(), e.Coulomb, e.LJ, e.Total())
}

func printGrid(w io.Writer, F *gridff.GridFF) {
	g := F.Grid()
	if g == nil {
		fmt.Fprintln(w, "no grid (no probe atoms)")
		return
	}
	fmt.Fprintf(w, "grid %s dims %v spacing %.4f A\n", g.Box, g.Dims, g.Spacing)
	fmt.Fprintf(w, "  close atoms %d, far atoms %d, skipped %d, chunks %d\n", g.Built.Close, g.Built.Far, g.Built.Skipped, g.Built.Chunks)
	fmt.Fprintf(w, "  potential %s\n", g.Stats())
	for _, warn := range F.LastWarnings() {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
}

// forceField reads the system file and returns the system and its forcefield
func forceField(path string) (*System, *gridff.GridFF, error) {
	S, err := ReadSystem(path)
	if err != nil {
		return nil, nil, err
	}
	F, err := S.ForceField()
	if err != nil {
		return nil, nil, err
	}
	return S, F, nil
}

var energyCmd = &cobra.Command{
	Use:   "energy SYSTEM.yaml",
	Short: "Build the grid and print the energy between probes and environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, F, err := forceField(args[0])
		if err != nil {
			return err
		}
		e, err := F.Energy()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printGrid(out, F)
		printEnergy(out, "energy", e)
		return nil
	},
}

// replay applies the moves of S one by one, logging every step, and returns the
// final energy and how far it is from a calculation from scratch. If traj is not
// nil, the probes are written to it as an XYZ frame after every step.
func replay(S *System, F *gridff.GridFF, log *enelog.Log, run int64, w, traj io.Writer) (final, drift clj.Components, err error) {
	e, err := F.Energy()
	if err != nil {
		return final, drift, err
	}
	frame := func(step int, e clj.Components) error {
		if traj == nil {
			return nil
		}
		return chem.XYZWrite(traj, F.Probes().Molecules(), fmt.Sprintf("step %d %s", step, e))
	}
	if err := frame(0, e); err != nil {
		return final, drift, err
	}
	steps := []enelog.Step{{Run: run, Step: 0, Coulomb: e.Coulomb, LJ: e.LJ, Rebuilt: true}}
	for i, mv := range S.Moves {
		before := F.Rebuilds()
		if err := Apply(F, mv); err != nil {
			return final, drift, chem.Decorate(err, fmt.Sprintf("move %d", i+1))
		}
		e, err = F.Energy()
		if err != nil {
			return final, drift, chem.Decorate(err, fmt.Sprintf("move %d", i+1))
		}
		rebuilt := F.Rebuilds() != before
		if err := frame(i+1, e); err != nil {
			return final, drift, err
		}
		logrus.Debugf("step %d: %s rebuilt: %t", i+1, e, rebuilt)
		steps = append(steps, enelog.Step{Run: run, Step: i + 1, Coulomb: e.Coulomb, LJ: e.LJ, Rebuilt: rebuilt})
	}
	if log != nil {
		if err := log.RecordAll(steps); err != nil {
			return final, drift, err
		}
	}
	//the same final coordinates, from scratch
	F.MustNowRecalculateFromScratch()
	scratch, err := F.Energy()
	if err != nil {
		return final, drift, err
	}
	fmt.Fprintf(w, "%d moves, %d grid builds, %d incremental updates\n", len(S.Moves), F.Rebuilds()-1, F.DeltaUpdates())
	return e, e.Sub(scratch), nil
}

var replayCmd = &cobra.Command{
	Use:   "replay SYSTEM.yaml",
	Short: "Apply the moves in the system file incrementally and log the energy of each step",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		S, F, err := forceField(args[0])
		if err != nil {
			return err
		}
		var log *enelog.Log
		var run int64
		if dbFile != "" {
			log, err = enelog.Open(dbFile)
			if err != nil {
				return err
			}
			defer log.Close()
			name := label
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			if run, err = log.NewRun(name); err != nil {
				return err
			}
		}
		var traj io.Writer
		var f *os.File
		var bw *bufio.Writer
		if trajFile != "" {
			f, err = os.Create(trajFile)
			if err != nil {
				return err
			}
			defer f.Close()
			bw = bufio.NewWriter(f)
			traj = bw
		}
		out := cmd.OutOrStdout()
		final, drift, err := replay(S, F, log, run, out, traj)
		if err != nil {
			return err
		}
		if bw != nil {
			if err := bw.Flush(); err != nil {
				return fmt.Errorf("write trajectory %s: %w", trajFile, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close trajectory %s: %w", trajFile, err)
			}
			fmt.Fprintf(out, "trajectory written to %s\n", trajFile)
		}
		printEnergy(out, "final energy", final)
		printEnergy(out, "difference with a calculation from scratch", drift)
		if log != nil {
			fmt.Fprintf(out, "steps logged to %s, run %d\n", dbFile, run)
		}
		return nil
	},
}

var plotCmd = &cobra.Command{
	Use:   "plot SYSTEM.yaml",
	Short: "Draw the plane of the potential grid closest to a given height",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, F, err := forceField(args[0])
		if err != nil {
			return err
		}
		if _, err := F.Energy(); err != nil {
			return err
		}
		S, err := gridplot.SliceAt(F.Grid(), planeZ)
		if err != nil {
			return err
		}
		title := fmt.Sprintf("Potential at z=%.2f A", S.Height())
		if err := gridplot.Plot(S, title, 32).Save(5*72, 5*72, outFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "plane at z=%.2f A written to %s\n", S.Height(), outFile)
		return nil
	},
}

var saveCmd = &cobra.Command{
	Use:   "save SYSTEM.yaml",
	Short: "Build the grid and save it, with the energy cache, to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, F, err := forceField(args[0])
		if err != nil {
			return err
		}
		if err := F.SaveFile(outFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "grid written to %s\n", outFile)
		return nil
	},
}

var loadCmd = &cobra.Command{
	Use:   "load SYSTEM.yaml",
	Short: "Load a saved grid for the system and print its energy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, F, err := forceField(args[0])
		if err != nil {
			return err
		}
		if err := F.LoadFile(gridFile); err != nil {
			return err
		}
		e, err := F.Energy()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printGrid(out, F)
		printEnergy(out, "energy", e)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&units, "units", "kcal", "Energy units (kcal or kj)")

	replayCmd.Flags().StringVar(&dbFile, "db", "", "SQLite file to log the energy of each step")
	replayCmd.Flags().StringVar(&label, "label", "", "Label for the run in the log (default: system file name)")
	replayCmd.Flags().StringVar(&trajFile, "traj", "", "XYZ file to write the probes after every step")

	plotCmd.Flags().StringVar(&outFile, "out", "potential.png", "Image file (png, svg, pdf)")
	plotCmd.Flags().Float64Var(&planeZ, "z", 0, "Height of the plane to draw (A)")

	saveCmd.Flags().StringVar(&outFile, "out", "grid.gclj", "Output file")
	loadCmd.Flags().StringVar(&gridFile, "grid", "grid.gclj", "Saved grid")

	rootCmd.AddCommand(energyCmd, replayCmd, plotCmd, saveCmd, loadCmd)
}
