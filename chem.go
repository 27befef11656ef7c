/*
 * chem.go, part of cljgrid.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

package chem

import (
	"fmt"

	v3 "github.com/rmera/cljgrid/v3"
)

/**Note: Some funcitons here panic instead of returning errors. This is because they are "fundamental"
 * functions. I considered that if something goes wrong here, the program is way-most likely wrong and should
 * crash. Most panics are related to using the funciton on a nil object or trying to access out-of bounds
 * fields**/

//Atom contains the atom data except for the coordinates, which will be in a matrix.
type Atom struct {
	Name    string
	ID      int
	Symbol  string
	Molname string
	Charge  float64 //partial charge in units of e
	Sigma   float64 //LJ sigma in A
	Epsilon float64 //LJ epsilon in kcal/mol
}

//Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	N := *A
	return &N
}

/*****Molecule type***/

//Molecule is a set of atoms with its coordinates. Num identifies the molecule
//in the simulation and must be unique among the molecules given to a forcefield.
type Molecule struct {
	Num    int
	Name   string
	Atoms  []*Atom
	Coords *v3.Matrix
}

//NewMolecule returns a molecule with the given number, atoms and coordinates.
//It returns a ConfigurationError if the number of atoms and coordinates don't match.
func NewMolecule(num int, atoms []*Atom, coords *v3.Matrix) (*Molecule, error) {
	if len(atoms) == 0 || coords == nil {
		return nil, NewError(ConfigurationError, fmt.Sprintf("Molecule %d has no atoms or coordinates", num), "NewMolecule")
	}
	if coords.NVecs() != len(atoms) {
		return nil, NewError(ConfigurationError, fmt.Sprintf("Molecule %d: %d atoms but %d coordinates", num, len(atoms), coords.NVecs()), "NewMolecule")
	}
	return &Molecule{Num: num, Atoms: atoms, Coords: coords}, nil
}

//Len returns the number of atoms in the molecule
func (M *Molecule) Len() int {
	return len(M.Atoms)
}

//Atom returns the Atom corresponding to the index i
//of the Atom slice in the molecule. Panics if
//out of range.
func (M *Molecule) Atom(i int) *Atom {
	if i >= M.Len() || i < 0 {
		panic("Molecule: Requested Atom out of bounds")
	}
	return M.Atoms[i]
}

//Copy returns a deep copy of the molecule, including coordinates.
func (M *Molecule) Copy() *Molecule {
	N := new(Molecule)
	N.Num = M.Num
	N.Name = M.Name
	N.Atoms = make([]*Atom, len(M.Atoms))
	for i, v := range M.Atoms {
		N.Atoms[i] = v.Copy()
	}
	N.Coords = v3.Zeros(M.Coords.NVecs())
	N.Coords.Copy(M.Coords)
	return N
}

//Charge returns the sum of the partial charges of the molecule.
func (M *Molecule) Charge() float64 {
	q := 0.0
	for _, v := range M.Atoms {
		q += v.Charge
	}
	return q
}
