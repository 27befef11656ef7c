/*
 * grid.go, part of cljgrid.
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
	"github.com/rmera/cljgrid/space"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

//faceTolerance is the largest fractional offset past the last node that
//is still taken as lying on the upper face of the grid.
const faceTolerance = 1e-9

//Grid holds the Coulomb potential that the far environment atoms create on
//evenly spaced nodes around the probes, and the environment atoms that
//are too close to the probes to be represented by the grid.
type Grid struct {
	Box      Box //Max is always Min+(Dims-1)*Spacing
	Spacing  float64
	Dims     [3]int
	Pot      []float64 //node (i,j,k) is at i+j*Dims[0]+k*Dims[0]*Dims[1]
	Close    *clj.Atoms
	Params   clj.Params
	Space    space.Space
	Warnings []error //non-critical problems found while building
	Built    BuildStats
}

//BuildStats counts what happened to the environment atoms during a build
type BuildStats struct {
	Close   int
	Far     int
	Skipped int
	Chunks  int
}

//Stats summarizes the values of the potential
type Stats struct {
	Min, Max, Mean float64
}

func (S Stats) String() string {
	return fmt.Sprintf("min: %.4f max: %.4f mean: %.4f", S.Min, S.Max, S.Mean)
}

//Build returns a grid enclosing all the probe atoms, with the potential of the
//far environment atoms accumulated on it and the close environment atoms in
//its close list. The grid is nil, with no error, if there are no probe atoms.
func Build(probes *clj.Atoms, env []*clj.Atoms, O Options) (*Grid, error) {
	if err := O.Validate(); err != nil {
		return nil, chem.Decorate(err, "grid.Build")
	}
	min, max, ok := probes.Bounds()
	if !ok {
		return nil, nil
	}
	box := Box{Min: min, Max: max}.Expand(O.Buffer)
	dims, spacing, coarsened := dimensions(box.Extent(), O.Spacing)
	G := &Grid{
		Spacing: spacing,
		Dims:    dims,
		Params:  O.CLJ,
		Space:   O.space(),
		Close:   new(clj.Atoms),
	}
	if coarsened {
		err := chem.NewError(chem.CapacityWarning, fmt.Sprintf("grid spacing coarsened from %.4f to %.4f A to keep at most %d nodes per axis", O.Spacing, spacing, MaxDim), "grid.Build")
		G.Warnings = append(G.Warnings, err)
		logrus.Warn(err.Error())
	}
	G.Box.Min = box.Min
	G.Box.Max = r3.Add(box.Min, r3.Vec{X: float64(dims[0]-1) * spacing, Y: float64(dims[1]-1) * spacing, Z: float64(dims[2]-1) * spacing})
	G.Pot = make([]float64, dims[0]*dims[1]*dims[2])
	if err := G.fill(env, O.chunkSize()); err != nil {
		return nil, chem.Decorate(err, "grid.Build")
	}
	logrus.Debugf("grid built: box %s dims %v spacing %.4f close %d far %d skipped %d chunks %d", G.Box, G.Dims, G.Spacing, G.Built.Close, G.Built.Far, G.Built.Skipped, G.Built.Chunks)
	return G, nil
}

//axisDim returns the number of nodes needed to cover extent e with spacing s.
//Extents that are a whole number of spacings up to roundoff get the extra node,
//so the snapped box always covers the extent.
func axisDim(e, s float64) int {
	return 2 + int(math.Floor(e/s+faceTolerance))
}

//dimensions returns the number of nodes per axis needed to cover extent with the given
//spacing, and the spacing actually used. If some axis would get more than MaxDim nodes,
//the spacing is coarsened to the smallest float64 that keeps every axis within MaxDim.
func dimensions(extent r3.Vec, spacing float64) (dims [3]int, s float64, coarsened bool) {
	ext := [3]float64{extent.X, extent.Y, extent.Z}
	longest := floats.Max(ext[:])
	s = spacing
	if axisDim(longest, s) > MaxDim {
		coarsened = true
		//the longest axis fits iff longest/s + faceTolerance < MaxDim-1
		s = longest / (float64(MaxDim-1) - faceTolerance)
		for axisDim(longest, s) > MaxDim {
			s = math.Nextafter(s, math.Inf(1))
		}
		for {
			smaller := math.Nextafter(s, 0)
			if smaller <= spacing || axisDim(longest, smaller) > MaxDim {
				break
			}
			s = smaller
		}
	}
	for i, e := range ext {
		dims[i] = axisDim(e, s)
	}
	return dims, s, coarsened
}

//fill classifies the environment atoms and accumulates the far ones on the grid.
func (G *Grid) fill(env []*clj.Atoms, chunk int) error {
	acc := NewAccumulator(G)
	center := G.Box.Center()
	xs := make([]float64, 0, chunk)
	ys := make([]float64, 0, chunk)
	zs := make([]float64, 0, chunk)
	qs := make([]float64, 0, chunk)
	flush := func() error {
		if len(xs) == 0 {
			return nil
		}
		if err := acc.Add(xs, ys, zs, qs); err != nil {
			return err
		}
		G.Built.Chunks++
		xs, ys, zs, qs = xs[:0], ys[:0], zs[:0], qs[:0]
		return nil
	}
	for _, batch := range env {
		for i := 0; i < batch.Len(); i++ {
			p := G.Space.MinimumImage(batch.Point(i), center)
			d := MinimumDistanceToBox(p, G.Box)
			q := batch.Q[i]
			switch {
			case d < G.Params.LJCutoff:
				G.Close.Append(p.X, p.Y, p.Z, q, batch.ID[i], batch.Mol[i])
				G.Built.Close++
			case q != 0 && d < G.Params.CoulombCutoff:
				xs, ys, zs, qs = append(xs, p.X), append(ys, p.Y), append(zs, p.Z), append(qs, q)
				G.Built.Far++
				if len(xs) == chunk {
					if err := flush(); err != nil {
						return err
					}
				}
			default:
				G.Built.Skipped++
			}
		}
	}
	return flush()
}

//Len returns the number of nodes in the grid
func (G *Grid) Len() int {
	return len(G.Pot)
}

//Index returns the position in Pot of the node i,j,k
func (G *Grid) Index(i, j, k int) int {
	return i + j*G.Dims[0] + k*G.Dims[0]*G.Dims[1]
}

//At returns the potential at the node i,j,k
func (G *Grid) At(i, j, k int) float64 {
	return G.Pot[G.Index(i, j, k)]
}

//Node returns the position of the node i,j,k
func (G *Grid) Node(i, j, k int) r3.Vec {
	return r3.Vec{
		X: G.Box.Min.X + float64(i)*G.Spacing,
		Y: G.Box.Min.Y + float64(j)*G.Spacing,
		Z: G.Box.Min.Z + float64(k)*G.Spacing,
	}
}

//Stats returns the minimum, maximum and mean of the potential.
func (G *Grid) Stats() Stats {
	if len(G.Pot) == 0 {
		return Stats{}
	}
	return Stats{Min: floats.Min(G.Pot), Max: floats.Max(G.Pot), Mean: floats.Sum(G.Pot) / float64(len(G.Pot))}
}

//cell returns the index of the cell containing the coordinate x along an axis
//with dim nodes, and the fractional offset of x inside that cell.
func (G *Grid) cell(x, min float64, dim int) (int, float64, bool) {
	u := (x - min) / G.Spacing
	if math.IsNaN(u) || math.IsInf(u, 0) {
		return 0, 0, false
	}
	fl := math.Floor(u)
	f := u - fl
	switch {
	case fl >= 0 && fl < float64(dim-1):
		return int(fl), f, true
	case fl == float64(dim-1) && f <= faceTolerance:
		return dim - 2, 1, true
	case fl == -1 && f >= 1-faceTolerance:
		return 0, 0, true
	}
	return 0, 0, false
}

//Interpolate returns the potential at p, tri-linearly interpolated from the 8 nodes
//around it. p must be in the frame of the grid (see Image). Points outside the grid
//return an ApproximationBreach error.
func (G *Grid) Interpolate(p r3.Vec) (float64, error) {
	i, R, okx := G.cell(p.X, G.Box.Min.X, G.Dims[0])
	j, S, oky := G.cell(p.Y, G.Box.Min.Y, G.Dims[1])
	k, T, okz := G.cell(p.Z, G.Box.Min.Z, G.Dims[2])
	if !okx || !oky || !okz {
		return 0, chem.NewError(chem.ApproximationBreach, fmt.Sprintf("point (%.4f %.4f %.4f) outside grid box %s", p.X, p.Y, p.Z, G.Box), "grid.Grid.Interpolate")
	}
	nx := G.Dims[0]
	nxy := G.Dims[0] * G.Dims[1]
	i000 := G.Index(i, j, k)
	c000, c100 := G.Pot[i000], G.Pot[i000+1]
	c010, c110 := G.Pot[i000+nx], G.Pot[i000+nx+1]
	c001, c101 := G.Pot[i000+nxy], G.Pot[i000+nxy+1]
	c011, c111 := G.Pot[i000+nxy+nx], G.Pot[i000+nxy+nx+1]
	c00 := c000*(1-R) + c100*R
	c10 := c010*(1-R) + c110*R
	c01 := c001*(1-R) + c101*R
	c11 := c011*(1-R) + c111*R
	c0 := c00*(1-S) + c10*S
	c1 := c01*(1-S) + c11*S
	return c0*(1-T) + c1*T, nil
}

//Image returns the atoms in A mapped to their minimum image with respect to the grid
//center. If the grid's space is not periodic, A itself is returned.
func (G *Grid) Image(A *clj.Atoms) *clj.Atoms {
	if G.Space == nil || !G.Space.Periodic() {
		return A
	}
	center := G.Box.Center()
	I := A.Copy()
	for i := 0; i < I.Len(); i++ {
		I.SetPoint(i, G.Space.MinimumImage(I.Point(i), center))
	}
	return I
}

//Coulomb returns the far-field Coulomb energy of the atoms in A, from the potential
//interpolated at each charged atom. A must be in the frame of the grid.
func (G *Grid) Coulomb(A *clj.Atoms) (float64, error) {
	var e float64
	for i := 0; i < A.Len(); i++ {
		if A.Q[i] == 0 {
			continue
		}
		v, err := G.Interpolate(A.Point(i))
		if err != nil {
			return 0, chem.Decorate(err, "grid.Grid.Coulomb")
		}
		e += A.Q[i] * v
	}
	return e, nil
}

//Encloses returns true if all the atoms in A, mapped to the grid frame, are inside the grid box.
func (G *Grid) Encloses(A *clj.Atoms) bool {
	I := G.Image(A)
	for i := 0; i < I.Len(); i++ {
		if !G.Box.Contains(I.Point(i)) {
			return false
		}
	}
	return true
}
