/*
 * gridplot.go, part of cljgrid.
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

//Package gridplot draws slices of a potential grid as heat maps.
package gridplot

import (
	"fmt"
	"math"

	chem "github.com/rmera/cljgrid"
	"github.com/rmera/cljgrid/grid"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//Slice is the plane of nodes of a grid with a given k (z) index.
//It implements plotter.GridXYZ, with columns along x and rows along y.
type Slice struct {
	g *grid.Grid
	k int
}

//NewSlice returns the plane k of g.
func NewSlice(g *grid.Grid, k int) (*Slice, error) {
	if g == nil {
		return nil, chem.NewError(chem.ConfigurationError, "nil grid", "gridplot.NewSlice")
	}
	if k < 0 || k >= g.Dims[2] {
		return nil, chem.NewError(chem.ConfigurationError, fmt.Sprintf("plane %d out of range, the grid has %d", k, g.Dims[2]), "gridplot.NewSlice")
	}
	return &Slice{g: g, k: k}, nil
}

//SliceAt returns the plane of g closest to the height z.
func SliceAt(g *grid.Grid, z float64) (*Slice, error) {
	if g == nil {
		return nil, chem.NewError(chem.ConfigurationError, "nil grid", "gridplot.SliceAt")
	}
	k := int(math.Round((z - g.Box.Min.Z) / g.Spacing))
	return NewSlice(g, k)
}

func (S *Slice) Dims() (c, r int) { return S.g.Dims[0], S.g.Dims[1] }

func (S *Slice) Z(c, r int) float64 { return S.g.At(c, r, S.k) }

func (S *Slice) X(c int) float64 { return S.g.Box.Min.X + float64(c)*S.g.Spacing }

func (S *Slice) Y(r int) float64 { return S.g.Box.Min.Y + float64(r)*S.g.Spacing }

//Height returns the z coordinate of the plane
func (S *Slice) Height() float64 { return S.g.Box.Min.Z + float64(S.k)*S.g.Spacing }

//Range returns the smallest and largest potential in the plane
func (S *Slice) Range() (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	c, r := S.Dims()
	for j := 0; j < r; j++ {
		for i := 0; i < c; i++ {
			v := S.Z(i, j)
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
	}
	return min, max
}

//Plot returns a heat map of the slice, with ncolors levels.
func Plot(S *Slice, title string, ncolors int) *plot.Plot {
	if ncolors < 2 {
		ncolors = 32
	}
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "x (A)"
	p.Y.Label.Text = "y (A)"
	h := plotter.NewHeatMap(S, palette.Heat(ncolors, 1))
	min, max := S.Range()
	if min == max {
		//flat planes (i.e. no far atoms) still need a valid range
		max = min + 1
	}
	h.Min, h.Max = min, max
	p.Add(h)
	return p
}

//Save draws the plane k of g to filename. The format is given by the
//extension of the file name (png, svg, pdf...).
func Save(g *grid.Grid, k int, title, filename string) error {
	S, err := NewSlice(g, k)
	if err != nil {
		return chem.Decorate(err, "gridplot.Save")
	}
	if title == "" {
		title = fmt.Sprintf("Potential at z=%.2f A", S.Height())
	}
	if err := Plot(S, title, 32).Save(5*vg.Inch, 5*vg.Inch, filename); err != nil {
		return fmt.Errorf("gridplot.Save: %w", err)
	}
	return nil
}
