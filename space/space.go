/*
 * space.go, part of cljgrid.
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

//Package space provides the simulation spaces: an infinite Cartesian space
//and an orthorhombic periodic box.
package space

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

//Space is the interface for a simulation space.
type Space interface {
	//Periodic returns true if the space has periodic boundaries
	Periodic() bool
	//MinimumImage returns the periodic image of p closest to center.
	//Non-periodic spaces return p unchanged.
	MinimumImage(p, center r3.Vec) r3.Vec
	//Distance returns the (minimum image) distance between two points.
	Distance(a, b r3.Vec) float64
	String() string
}

//Cartesian is an infinite, non-periodic space
type Cartesian struct{}

func (C Cartesian) Periodic() bool { return false }

func (C Cartesian) MinimumImage(p, center r3.Vec) r3.Vec { return p }

func (C Cartesian) Distance(a, b r3.Vec) float64 { return r3.Norm(r3.Sub(a, b)) }

func (C Cartesian) String() string { return "Cartesian" }

//PeriodicBox is an orthorhombic box with periodic boundaries in all three dimensions.
type PeriodicBox struct {
	dims    r3.Vec
	invdims r3.Vec
}

//NewPeriodicBox returns a periodic box with the given side lengths.
func NewPeriodicBox(dims r3.Vec) (*PeriodicBox, error) {
	if dims.X <= 0 || dims.Y <= 0 || dims.Z <= 0 {
		return nil, fmt.Errorf("space: box dimensions must be positive, got %v", dims)
	}
	return &PeriodicBox{dims: dims, invdims: r3.Vec{X: 1 / dims.X, Y: 1 / dims.Y, Z: 1 / dims.Z}}, nil
}

//Dims returns the side lengths of the box.
func (P *PeriodicBox) Dims() r3.Vec { return P.dims }

func (P *PeriodicBox) Periodic() bool { return true }

func (P *PeriodicBox) MinimumImage(p, center r3.Vec) r3.Vec {
	d := r3.Sub(p, center)
	return r3.Sub(p, P.wrapShift(d))
}

func (P *PeriodicBox) Distance(a, b r3.Vec) float64 {
	d := r3.Sub(a, b)
	return r3.Norm(r3.Sub(d, P.wrapShift(d)))
}

//wrapShift returns the lattice vector that brings d into the
//central box, i.e. d - wrapShift(d) has all components in [-L/2, L/2].
func (P *PeriodicBox) wrapShift(d r3.Vec) r3.Vec {
	return r3.Vec{
		X: P.dims.X * math.Round(d.X*P.invdims.X),
		Y: P.dims.Y * math.Round(d.Y*P.invdims.Y),
		Z: P.dims.Z * math.Round(d.Z*P.invdims.Z),
	}
}

func (P *PeriodicBox) String() string {
	return fmt.Sprintf("PeriodicBox(%.3f, %.3f, %.3f)", P.dims.X, P.dims.Y, P.dims.Z)
}
