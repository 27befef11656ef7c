/*
 * fixed.go, part of cljgrid.
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

package gridff

import (
	chem "github.com/rmera/cljgrid"
	"github.com/rmera/cljgrid/clj"
	"github.com/rmera/cljgrid/lj"
)

//FixedAtoms is a set of environment atoms that never move. A set can be shared by
//several forcefields, which only read it. Adding atoms to a shared set is seen by
//all of them, and makes each rebuild its grid on the next energy query.
//Concurrent modification is not supported.
type FixedAtoms struct {
	atoms   *clj.Atoms
	params  []lj.Param //by value, so each forcefield can map them to its own LJ table
	version uint64
}

//NewFixedAtoms returns an empty set
func NewFixedAtoms() *FixedAtoms {
	return &FixedAtoms{atoms: new(clj.Atoms)}
}

//Len returns the number of atoms in the set
func (F *FixedAtoms) Len() int {
	if F == nil {
		return 0
	}
	return F.atoms.Len()
}

//Version changes every time atoms are added to the set.
func (F *FixedAtoms) Version() uint64 {
	if F == nil {
		return 0
	}
	return F.version
}

//AddAtoms adds the atoms in A, whose LJ ids refer to table.
func (F *FixedAtoms) AddAtoms(A *clj.Atoms, table *lj.Table) error {
	params := make([]lj.Param, A.Len())
	for i := range params {
		p, err := table.Param(int(A.ID[i]))
		if err != nil {
			return chem.NewError(chem.ConfigurationError, err.Error(), "gridff.FixedAtoms.AddAtoms")
		}
		params[i] = p
	}
	F.atoms.AppendAtoms(A)
	F.params = append(F.params, params...)
	F.version++
	return nil
}

//AddMolecules adds all the atoms of the given molecules
func (F *FixedAtoms) AddMolecules(mols ...*chem.Molecule) error {
	table := lj.NewTable()
	A, err := clj.ExtractMany(mols, table)
	if err != nil {
		return chem.Decorate(err, "gridff.FixedAtoms.AddMolecules")
	}
	return F.AddAtoms(A, table)
}

//AddGroup adds all the atoms of the molecules in the group
func (F *FixedAtoms) AddGroup(G *chem.MoleculeGroup) error {
	return F.AddMolecules(G.Molecules()...)
}

//Batch returns the atoms of the set, with LJ ids from table.
func (F *FixedAtoms) Batch(table *lj.Table) *clj.Atoms {
	B := F.atoms.Copy()
	for i, p := range F.params {
		B.ID[i] = int32(table.Add(p))
	}
	return B
}
