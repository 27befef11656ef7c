/*
 * group.go, part of cljgrid.
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

package chem

import "fmt"

//MoleculeGroup is an ordered set of molecules, indexed by their number.
//Every change in membership increases the version of the group, so
//users can find out cheaply whether a group has changed.
type MoleculeGroup struct {
	Name    string
	mols    []*Molecule
	index   map[int]int
	version uint64
}

//NewMoleculeGroup returns an empty group with the given name.
func NewMoleculeGroup(name string) *MoleculeGroup {
	return &MoleculeGroup{Name: name, index: make(map[int]int)}
}

//Add appends molecules to the group. It returns a ConfigurationError,
//and adds nothing, if any of the molecule numbers is already present.
func (G *MoleculeGroup) Add(mols ...*Molecule) error {
	seen := make(map[int]bool, len(mols))
	for _, m := range mols {
		if _, ok := G.index[m.Num]; ok || seen[m.Num] {
			return NewError(ConfigurationError, fmt.Sprintf("Molecule %d already in group %s", m.Num, G.Name), "MoleculeGroup.Add")
		}
		seen[m.Num] = true
	}
	for _, m := range mols {
		G.index[m.Num] = len(G.mols)
		G.mols = append(G.mols, m)
	}
	if len(mols) > 0 {
		G.version++
	}
	return nil
}

//Remove removes the molecule with number num from the group.
//It returns false if the molecule was not in the group.
func (G *MoleculeGroup) Remove(num int) bool {
	i, ok := G.index[num]
	if !ok {
		return false
	}
	G.mols = append(G.mols[:i], G.mols[i+1:]...)
	delete(G.index, num)
	for j := i; j < len(G.mols); j++ {
		G.index[G.mols[j].Num] = j
	}
	G.version++
	return true
}

//Replace puts m in place of the molecule with the same number.
//Membership doesn't change, so neither does the version.
func (G *MoleculeGroup) Replace(m *Molecule) error {
	i, ok := G.index[m.Num]
	if !ok {
		return NewError(NotFound, fmt.Sprintf("Molecule %d not in group %s", m.Num, G.Name), "MoleculeGroup.Replace")
	}
	G.mols[i] = m
	return nil
}

//Molecule returns the molecule with number num, and whether it was found.
func (G *MoleculeGroup) Molecule(num int) (*Molecule, bool) {
	i, ok := G.index[num]
	if !ok {
		return nil, false
	}
	return G.mols[i], true
}

//Contains returns true if a molecule with number num is in the group
func (G *MoleculeGroup) Contains(num int) bool {
	_, ok := G.index[num]
	return ok
}

//Molecules returns the molecules in the group, in the order they were added.
//The slice must not be modified.
func (G *MoleculeGroup) Molecules() []*Molecule {
	return G.mols
}

//Len returns the number of molecules in the group
func (G *MoleculeGroup) Len() int {
	return len(G.mols)
}

//NAtoms returns the total number of atoms in the group
func (G *MoleculeGroup) NAtoms() int {
	n := 0
	for _, m := range G.mols {
		n += m.Len()
	}
	return n
}

//Version returns a number that changes every time the membership of the group changes.
func (G *MoleculeGroup) Version() uint64 {
	return G.version
}
