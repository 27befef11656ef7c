/*
 * atoms.go, part of cljgrid.
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

package clj

import (
	"fmt"

	chem "github.com/rmera/cljgrid"
	"github.com/rmera/cljgrid/lanes"
	"github.com/rmera/cljgrid/lj"
	v3 "github.com/rmera/cljgrid/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

//Far is the coordinate given to the padding atoms at the end of a batch.
//It is large enough to put them beyond any cutoff.
const Far = 1e10

//Atoms is a batch of atoms in structure-of-arrays form, ready for the
//lane kernels. The slices are always padded to a multiple of lanes.Width
//with dummy atoms (no charge, no LJ, at Far), so only the first Len()
//elements of each slice are real atoms.
type Atoms struct {
	X, Y, Z []float64
	Q       []float64 //reduced charges
	ID      []int32   //LJ ids, parallel to the coordinates
	Mol     []int     //number of the molecule each atom belongs to, -1 for padding
	n       int
}

//NewAtoms builds a batch from parallel slices of coordinates, reduced charges and LJ ids.
//All the slices must have the same length, otherwise a ConfigurationError is returned.
//ids can be nil, in which case all the atoms get the dummy LJ id.
func NewAtoms(xs, ys, zs, qs []float64, ids []int32) (*Atoms, error) {
	n := len(xs)
	if len(ys) != n || len(zs) != n || len(qs) != n || (ids != nil && len(ids) != n) {
		return nil, chem.NewError(chem.ConfigurationError, fmt.Sprintf("mismatched batch lengths x:%d y:%d z:%d q:%d ids:%d", len(xs), len(ys), len(zs), len(qs), len(ids)), "clj.NewAtoms")
	}
	A := new(Atoms)
	A.Grow(n)
	for i := 0; i < n; i++ {
		var id int32
		if ids != nil {
			id = ids[i]
		}
		A.Append(xs[i], ys[i], zs[i], qs[i], id, -1)
	}
	return A, nil
}

//Len returns the number of real atoms in the batch
func (A *Atoms) Len() int {
	if A == nil {
		return 0
	}
	return A.n
}

//Grow makes room for n more atoms without further allocations.
func (A *Atoms) Grow(n int) {
	need := lanes.Pad(A.n + n)
	if need <= cap(A.X) {
		return
	}
	grow := func(s []float64) []float64 {
		t := make([]float64, len(s), need)
		copy(t, s)
		return t
	}
	A.X, A.Y, A.Z, A.Q = grow(A.X), grow(A.Y), grow(A.Z), grow(A.Q)
	ids := make([]int32, len(A.ID), need)
	copy(ids, A.ID)
	A.ID = ids
	mols := make([]int, len(A.Mol), need)
	copy(mols, A.Mol)
	A.Mol = mols
}

//Append adds one atom at the end of the batch.
func (A *Atoms) Append(x, y, z, q float64, id int32, mol int) {
	if A.n == len(A.X) {
		for i := 0; i < lanes.Width; i++ {
			A.X = append(A.X, Far)
			A.Y = append(A.Y, Far)
			A.Z = append(A.Z, Far)
			A.Q = append(A.Q, 0)
			A.ID = append(A.ID, 0)
			A.Mol = append(A.Mol, -1)
		}
	}
	A.X[A.n] = x
	A.Y[A.n] = y
	A.Z[A.n] = z
	A.Q[A.n] = q
	A.ID[A.n] = id
	A.Mol[A.n] = mol
	A.n++
}

//AppendAtoms adds all the real atoms of B at the end of A
func (A *Atoms) AppendAtoms(B *Atoms) {
	A.Grow(B.Len())
	for i := 0; i < B.Len(); i++ {
		A.Append(B.X[i], B.Y[i], B.Z[i], B.Q[i], B.ID[i], B.Mol[i])
	}
}

//Reset empties the batch, keeping the allocated memory.
func (A *Atoms) Reset() {
	A.X, A.Y, A.Z, A.Q, A.ID, A.Mol = A.X[:0], A.Y[:0], A.Z[:0], A.Q[:0], A.ID[:0], A.Mol[:0]
	A.n = 0
}

//Point returns the coordinates of the ith atom
func (A *Atoms) Point(i int) r3.Vec {
	return r3.Vec{X: A.X[i], Y: A.Y[i], Z: A.Z[i]}
}

//SetPoint sets the coordinates of the ith atom
func (A *Atoms) SetPoint(i int, p r3.Vec) {
	A.X[i], A.Y[i], A.Z[i] = p.X, p.Y, p.Z
}

//Subset returns a new batch with the atoms in indexes, in that order.
func (A *Atoms) Subset(indexes []int) (*Atoms, error) {
	S := new(Atoms)
	S.Grow(len(indexes))
	for _, i := range indexes {
		if i < 0 || i >= A.n {
			return nil, chem.NewError(chem.ConfigurationError, fmt.Sprintf("atom index %d out of range (%d atoms)", i, A.n), "clj.Atoms.Subset")
		}
		S.Append(A.X[i], A.Y[i], A.Z[i], A.Q[i], A.ID[i], A.Mol[i])
	}
	return S, nil
}

//Copy returns a deep copy of the batch
func (A *Atoms) Copy() *Atoms {
	C := new(Atoms)
	C.AppendAtoms(A)
	return C
}

//Bounds returns the corners of the axis-aligned box containing the real atoms
//of the batch. ok is false if the batch is empty.
func (A *Atoms) Bounds() (min, max r3.Vec, ok bool) {
	if A.Len() == 0 {
		return min, max, false
	}
	min, max = A.Point(0), A.Point(0)
	for i := 1; i < A.n; i++ {
		min.X, max.X = minmax(min.X, max.X, A.X[i])
		min.Y, max.Y = minmax(min.Y, max.Y, A.Y[i])
		min.Z, max.Z = minmax(min.Z, max.Z, A.Z[i])
	}
	return min, max, true
}

func minmax(min, max, x float64) (float64, float64) {
	if x < min {
		min = x
	}
	if x > max {
		max = x
	}
	return min, max
}

//Extract returns the CLJ parameters and coordinates of mol as a batch: the reduced
//charge and the LJ id of each atom. LJ parameters not yet in table are added to it.
func Extract(mol *chem.Molecule, table *lj.Table) (*Atoms, error) {
	if mol.Coords == nil || mol.Coords.NVecs() != mol.Len() {
		return nil, chem.NewError(chem.ConfigurationError, fmt.Sprintf("molecule %d has %d atoms but inconsistent coordinates", mol.Num, mol.Len()), "clj.Extract")
	}
	A := new(Atoms)
	A.Grow(mol.Len())
	for i, at := range mol.Atoms {
		id := table.Add(lj.Param{Sigma: at.Sigma, Epsilon: at.Epsilon})
		p := mol.Coords.Vec(i)
		A.Append(p.X, p.Y, p.Z, chem.ReducedCharge(at.Charge), int32(id), mol.Num)
	}
	return A, nil
}

//ExtractMany extracts the parameters of several molecules into a single batch
func ExtractMany(mols []*chem.Molecule, table *lj.Table) (*Atoms, error) {
	A := new(Atoms)
	for _, m := range mols {
		B, err := Extract(m, table)
		if err != nil {
			return nil, chem.Decorate(err, "clj.ExtractMany")
		}
		A.AppendAtoms(B)
	}
	return A, nil
}

//WithCoords returns a copy of the batch with the coordinates in coords, which
//must have one vector per real atom.
func (A *Atoms) WithCoords(coords *v3.Matrix) (*Atoms, error) {
	if coords.NVecs() != A.Len() {
		return nil, chem.NewError(chem.ConfigurationError, fmt.Sprintf("%d coordinates for %d atoms", coords.NVecs(), A.Len()), "clj.Atoms.WithCoords")
	}
	C := A.Copy()
	for i := 0; i < C.n; i++ {
		C.SetPoint(i, coords.Vec(i))
	}
	return C, nil
}
