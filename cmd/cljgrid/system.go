/*
 * system.go, part of cljgrid.
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
	"bytes"
	"fmt"
	"os"
	"strings"

	chem "github.com/rmera/cljgrid"
	"github.com/rmera/cljgrid/clj"
	"github.com/rmera/cljgrid/grid"
	"github.com/rmera/cljgrid/gridff"
	"github.com/rmera/cljgrid/lj"
	"github.com/rmera/cljgrid/space"
	v3 "github.com/rmera/cljgrid/v3"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// AtomType holds the nonbonded parameters shared by atoms of one type.
type AtomType struct {
	Charge  float64 `yaml:"charge"`  // e
	Sigma   float64 `yaml:"sigma"`   // A
	Epsilon float64 `yaml:"epsilon"` // kcal/mol
}

// AtomSpec is one atom of a molecule in the system file
type AtomSpec struct {
	Name string     `yaml:"name"`
	Type string     `yaml:"type"`
	XYZ  [3]float64 `yaml:"xyz"`
}

// MoleculeSpec is a molecule in the system file
type MoleculeSpec struct {
	Num   int        `yaml:"num"`
	Name  string     `yaml:"name"`
	Atoms []AtomSpec `yaml:"atoms"`
}

// Move translates some atoms of a probe molecule (all of them if Atoms is empty).
type Move struct {
	Molecule  int        `yaml:"molecule"`
	Atoms     []int      `yaml:"atoms"`
	Translate [3]float64 `yaml:"translate"`
}

// OptionsSpec are the forcefield options. Unset fields keep the library defaults.
type OptionsSpec struct {
	Buffer         *float64  `yaml:"buffer"`
	Spacing        *float64  `yaml:"spacing"`
	CoulombCutoff  *float64  `yaml:"coulomb_cutoff"`
	LJCutoff       *float64  `yaml:"lj_cutoff"`
	Electrostatics string    `yaml:"electrostatics"` // cutoff, shifted or reaction-field
	Dielectric     *float64  `yaml:"dielectric"`
	ChunkSize      int       `yaml:"chunk_size"`
	PeriodicBox    []float64 `yaml:"periodic_box"`
	CombiningRule  string    `yaml:"combining_rule"` // arithmetic or geometric
}

// System is the full content of a system file.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type System struct {
	Options     OptionsSpec         `yaml:"options"`
	AtomTypes   map[string]AtomType `yaml:"atom_types"`
	Probes      []MoleculeSpec      `yaml:"probes"`
	Environment []MoleculeSpec      `yaml:"environment"`
	Fixed       []MoleculeSpec      `yaml:"fixed"`
	Moves       []Move              `yaml:"moves"`
}

// ParseSystem decodes a system description. Unknown fields are errors.
func ParseSystem(data []byte) (*System, error) {
	var S System
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&S); err != nil {
		return nil, fmt.Errorf("parse system: %w", err)
	}
	if len(S.Probes) == 0 {
		return nil, fmt.Errorf("parse system: no probe molecules")
	}
	return &S, nil
}

// ReadSystem reads and decodes the system file at path
func ReadSystem(path string) (*System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read system: %w", err)
	}
	return ParseSystem(data)
}

func (S *System) rule() (lj.Rule, error) {
	switch strings.ToLower(S.Options.CombiningRule) {
	case "", "arithmetic", "lorentz-berthelot":
		return lj.Arithmetic, nil
	case "geometric":
		return lj.Geometric, nil
	}
	return lj.Arithmetic, fmt.Errorf("unknown combining rule %q", S.Options.CombiningRule)
}

// GridOptions returns the grid options described by the system file
func (S *System) GridOptions() (grid.Options, error) {
	O := grid.DefaultOptions()
	o := S.Options
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&O.Buffer, o.Buffer)
	set(&O.Spacing, o.Spacing)
	set(&O.CLJ.CoulombCutoff, o.CoulombCutoff)
	set(&O.CLJ.LJCutoff, o.LJCutoff)
	set(&O.CLJ.Dielectric, o.Dielectric)
	if o.ChunkSize > 0 {
		O.ChunkSize = o.ChunkSize
	}
	switch strings.ToLower(o.Electrostatics) {
	case "", "cutoff":
		O.CLJ.Policy = clj.Cutoff
	case "shifted":
		O.CLJ.Policy = clj.Shifted
	case "reaction-field", "reactionfield", "rf":
		O.CLJ.Policy = clj.ReactionField
	default:
		return O, fmt.Errorf("unknown electrostatics %q", o.Electrostatics)
	}
	if len(o.PeriodicBox) != 0 {
		if len(o.PeriodicBox) != 3 {
			return O, fmt.Errorf("periodic_box needs 3 values, got %d", len(o.PeriodicBox))
		}
		pb, err := space.NewPeriodicBox(r3.Vec{X: o.PeriodicBox[0], Y: o.PeriodicBox[1], Z: o.PeriodicBox[2]})
		if err != nil {
			return O, err
		}
		O.Space = pb
	}
	return O, O.Validate()
}

// molecules builds the molecules in specs with the atom types of the system.
func (S *System) molecules(specs []MoleculeSpec) ([]*chem.Molecule, error) {
	mols := make([]*chem.Molecule, 0, len(specs))
	for _, ms := range specs {
		atoms := make([]*chem.Atom, 0, len(ms.Atoms))
		coords := make([]float64, 0, 3*len(ms.Atoms))
		for i, as := range ms.Atoms {
			at, ok := S.AtomTypes[as.Type]
			if !ok {
				return nil, fmt.Errorf("molecule %d atom %d: unknown atom type %q", ms.Num, i, as.Type)
			}
			name := as.Name
			if name == "" {
				name = as.Type
			}
			atoms = append(atoms, &chem.Atom{Name: name, ID: i + 1, Symbol: as.Type, Molname: ms.Name, Charge: at.Charge, Sigma: at.Sigma, Epsilon: at.Epsilon})
			coords = append(coords, as.XYZ[:]...)
		}
		c, err := v3.NewMatrix(coords)
		if err != nil {
			return nil, fmt.Errorf("molecule %d: %w", ms.Num, err)
		}
		m, err := chem.NewMolecule(ms.Num, atoms, c)
		if err != nil {
			return nil, err
		}
		m.Name = ms.Name
		mols = append(mols, m)
	}
	return mols, nil
}

// ForceField returns a forcefield with all the molecules of the system, before any move.
func (S *System) ForceField() (*gridff.GridFF, error) {
	O, err := S.GridOptions()
	if err != nil {
		return nil, err
	}
	rule, err := S.rule()
	if err != nil {
		return nil, err
	}
	F := gridff.New(lj.NewTable(rule), O)
	probes, err := S.molecules(S.Probes)
	if err != nil {
		return nil, err
	}
	env, err := S.molecules(S.Environment)
	if err != nil {
		return nil, err
	}
	fixed, err := S.molecules(S.Fixed)
	if err != nil {
		return nil, err
	}
	if err := F.AddProbe(probes...); err != nil {
		return nil, err
	}
	if err := F.AddEnvironment(env...); err != nil {
		return nil, err
	}
	if len(fixed) > 0 {
		if err := F.AddFixedMolecules(fixed...); err != nil {
			return nil, err
		}
	}
	return F, nil
}

// Apply performs the move on F. Whole-molecule moves replace the molecule,
// others only move the listed atoms.
func Apply(F *gridff.GridFF, mv Move) error {
	m, ok := F.Probes().Molecule(mv.Molecule)
	if !ok {
		return chem.NewError(chem.NotFound, fmt.Sprintf("probe molecule %d not found", mv.Molecule), "Apply")
	}
	t := r3.Vec{X: mv.Translate[0], Y: mv.Translate[1], Z: mv.Translate[2]}
	if len(mv.Atoms) == 0 {
		moved := m.Copy()
		moved.Coords.AddVec(moved.Coords, t)
		return F.Update(moved)
	}
	coords := v3.Zeros(len(mv.Atoms))
	for j, i := range mv.Atoms {
		if i < 0 || i >= m.Len() {
			return chem.NewError(chem.ConfigurationError, fmt.Sprintf("atom %d out of range for molecule %d", i, m.Num), "Apply")
		}
		coords.SetVec(j, r3.Add(m.Coords.Vec(i), t))
	}
	return F.UpdateAtoms(m.Num, mv.Atoms, coords)
}
