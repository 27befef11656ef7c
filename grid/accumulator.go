/*
 * accumulator.go, part of cljgrid.
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

package grid

import (
	"fmt"
	"math"

	chem "github.com/rmera/cljgrid"
	"github.com/rmera/cljgrid/clj"
	"github.com/rmera/cljgrid/lanes"
)

//Accumulator adds the Coulomb potential of batches of atoms to the nodes of a grid.
type Accumulator struct {
	g          *Grid
	k          *clj.Kernel
	rc         float64
	x, y, z, q []float64
}

//NewAccumulator returns an accumulator for G, using the electrostatics policy and
//Coulomb cutoff of the grid.
func NewAccumulator(G *Grid) *Accumulator {
	return &Accumulator{g: G, k: clj.NewKernel(G.Params, nil), rc: G.Params.CoulombCutoff}
}

//Add sums on every node the Coulomb potential of the atoms with coordinates xs, ys, zs
//and reduced charges qs. All slices must have the same length. Add only ever adds
//to the potential, so batches can come in any order and size.
func (A *Accumulator) Add(xs, ys, zs, qs []float64) error {
	n := len(xs)
	if len(ys) != n || len(zs) != n || len(qs) != n {
		return chem.NewError(chem.ConfigurationError, fmt.Sprintf("mismatched batch lengths x:%d y:%d z:%d q:%d", len(xs), len(ys), len(zs), len(qs)), "grid.Accumulator.Add")
	}
	if n == 0 {
		return nil
	}
	A.load(xs, ys, zs, qs)
	G := A.g
	//only nodes within the cutoff of the batch bounding box can get anything
	var lo, hi [3]int
	coords := [3][]float64{xs, ys, zs}
	mins := [3]float64{G.Box.Min.X, G.Box.Min.Y, G.Box.Min.Z}
	for ax := 0; ax < 3; ax++ {
		bmin, bmax := coords[ax][0], coords[ax][0]
		for _, v := range coords[ax][1:] {
			bmin = math.Min(bmin, v)
			bmax = math.Max(bmax, v)
		}
		l := math.Ceil((bmin - A.rc - mins[ax]) / G.Spacing)
		h := math.Floor((bmax + A.rc - mins[ax]) / G.Spacing)
		l = math.Max(l, 0)
		h = math.Min(h, float64(G.Dims[ax]-1))
		if l > h {
			return nil
		}
		lo[ax], hi[ax] = int(l), int(h)
	}
	padded := len(A.x)
	for k := lo[2]; k <= hi[2]; k++ {
		for j := lo[1]; j <= hi[1]; j++ {
			for i := lo[0]; i <= hi[0]; i++ {
				node := G.Node(i, j, k)
				nx, ny, nz := lanes.Splat(node.X), lanes.Splat(node.Y), lanes.Splat(node.Z)
				var pot lanes.Float
				for a := 0; a < padded; a += lanes.Width {
					dx := nx.Sub(lanes.Load(A.x[a:]))
					dy := ny.Sub(lanes.Load(A.y[a:]))
					dz := nz.Sub(lanes.Load(A.z[a:]))
					r := dx.Mul(dx).Add(dy.Mul(dy)).Add(dz.Mul(dz)).Sqrt()
					pot = pot.Add(A.k.Coulomb(r).Mul(lanes.Load(A.q[a:])))
				}
				G.Pot[G.Index(i, j, k)] += pot.Sum()
			}
		}
	}
	return nil
}

//load copies the batch to the scratch slices, padded with uncharged atoms far away.
func (A *Accumulator) load(xs, ys, zs, qs []float64) {
	p := lanes.Pad(len(xs))
	if cap(A.x) < p {
		A.x, A.y, A.z, A.q = make([]float64, p), make([]float64, p), make([]float64, p), make([]float64, p)
	}
	A.x, A.y, A.z, A.q = A.x[:p], A.y[:p], A.z[:p], A.q[:p]
	copy(A.x, xs)
	copy(A.y, ys)
	copy(A.z, zs)
	copy(A.q, qs)
	for i := len(xs); i < p; i++ {
		A.x[i], A.y[i], A.z[i], A.q[i] = clj.Far, clj.Far, clj.Far, 0
	}
}
