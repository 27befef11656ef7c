/*
 * box.go, part of cljgrid.
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

	"gonum.org/v1/gonum/spatial/r3"
)

//Box is an axis-aligned box given by its minimum and maximum corners.
type Box struct {
	Min, Max r3.Vec
}

//Center returns the center of the box
func (B Box) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(B.Min, B.Max))
}

//Extent returns the length of the box along each axis
func (B Box) Extent() r3.Vec {
	return r3.Sub(B.Max, B.Min)
}

//Contains returns true if p is inside the box or on its surface.
func (B Box) Contains(p r3.Vec) bool {
	return p.X >= B.Min.X && p.Y >= B.Min.Y && p.Z >= B.Min.Z &&
		p.X <= B.Max.X && p.Y <= B.Max.Y && p.Z <= B.Max.Z
}

//Expand returns the box grown by d on every side
func (B Box) Expand(d float64) Box {
	v := r3.Vec{X: d, Y: d, Z: d}
	return Box{Min: r3.Sub(B.Min, v), Max: r3.Add(B.Max, v)}
}

func (B Box) String() string {
	return fmt.Sprintf("[%.3f %.3f %.3f]-[%.3f %.3f %.3f]", B.Min.X, B.Min.Y, B.Min.Z, B.Max.X, B.Max.Y, B.Max.Z)
}

//MinimumDistanceToBox returns the shortest distance between p and
//any point of the box B. It is zero for points inside the box.
func MinimumDistanceToBox(p r3.Vec, B Box) float64 {
	dx := axisDistance(p.X, B.Min.X, B.Max.X)
	dy := axisDistance(p.Y, B.Min.Y, B.Max.Y)
	dz := axisDistance(p.Z, B.Min.Z, B.Max.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func axisDistance(x, min, max float64) float64 {
	if x < min {
		return min - x
	}
	if x > max {
		return x - max
	}
	return 0
}
