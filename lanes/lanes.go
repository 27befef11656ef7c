/*
 * lanes.go, part of cljgrid.
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

/*Package lanes provides a small, portable, fixed-width vector type, so the
energy kernels can be written as batched, branch-free operations over several
atoms (or grid points) at a time. Each method works element-wise on all the
lanes. The compiler is free to turn the fixed-size loops into vector
instructions, but nothing here depends on it doing so.

Cutoffs are applied as in hand-written SIMD code: a comparison produces a
Mask with all bits set on the lanes where it holds, and the mask is then
and-ed with the values, which zeroes the lanes outside the cutoff.*/
package lanes

import "math"

//Width is the number of lanes in each vector.
const Width = 4

//Float is a vector of Width float64 lanes
type Float [Width]float64

//Int is a vector of Width int32 lanes, kept in parallel to a Float
//when integer data (i.e. LJ ids) has to travel with the coordinates.
type Int [Width]int32

//Mask holds the result of a lane-wise comparison, all ones where the
//comparison was true, all zeros elsewhere.
type Mask [Width]uint64

const allOnes = ^uint64(0)

//Splat returns a Float with all the lanes set to v
func Splat(v float64) Float {
	var F Float
	for i := range F {
		F[i] = v
	}
	return F
}

//Load returns a Float with the first Width elements of s.
//It panics if s is shorter than Width.
func Load(s []float64) Float {
	var F Float
	copy(F[:], s[:Width])
	return F
}

//LoadInt is Load for int32 data.
func LoadInt(s []int32) Int {
	var I Int
	copy(I[:], s[:Width])
	return I
}

//Store puts the lanes of F in the first Width elements of s
func (F Float) Store(s []float64) {
	copy(s[:Width], F[:])
}

func (F Float) Add(A Float) Float {
	for i := range F {
		F[i] += A[i]
	}
	return F
}

func (F Float) Sub(A Float) Float {
	for i := range F {
		F[i] -= A[i]
	}
	return F
}

func (F Float) Mul(A Float) Float {
	for i := range F {
		F[i] *= A[i]
	}
	return F
}

//MulAdd returns F*A+B
func (F Float) MulAdd(A, B Float) Float {
	for i := range F {
		F[i] = F[i]*A[i] + B[i]
	}
	return F
}

//Sqrt returns the lane-wise square root of F
func (F Float) Sqrt() Float {
	for i := range F {
		F[i] = math.Sqrt(F[i])
	}
	return F
}

//Rcp returns the lane-wise reciprocal, 1/F.
func (F Float) Rcp() Float {
	for i := range F {
		F[i] = 1 / F[i]
	}
	return F
}

//Less returns a Mask set on the lanes where F<A
func (F Float) Less(A Float) Mask {
	var M Mask
	for i := range F {
		M[i] = boolMask(F[i] < A[i])
	}
	return M
}

//NotEqual returns a Mask set on the lanes where F!=A
func (F Float) NotEqual(A Float) Mask {
	var M Mask
	for i := range F {
		M[i] = boolMask(F[i] != A[i])
	}
	return M
}

//And returns the lanes of F where M is set, and zero elsewhere.
//This is a bitwise and, as it would be done in SIMD registers.
func (F Float) And(M Mask) Float {
	for i := range F {
		F[i] = math.Float64frombits(math.Float64bits(F[i]) & M[i])
	}
	return F
}

//Sum returns the horizontal sum of the lanes of F.
func (F Float) Sum() float64 {
	s := 0.0
	for _, v := range F {
		s += v
	}
	return s
}

//And returns the lane-wise intersection of two masks.
func (M Mask) And(A Mask) Mask {
	for i := range M {
		M[i] &= A[i]
	}
	return M
}

//Any returns true if at least one lane of the mask is set
func (M Mask) Any() bool {
	var acc uint64
	for _, v := range M {
		acc |= v
	}
	return acc != 0
}

func boolMask(b bool) uint64 {
	if b {
		return allOnes
	}
	return 0
}

//Pad returns the smallest multiple of Width that is equal to or larger than n.
func Pad(n int) int {
	if r := n % Width; r != 0 {
		return n + Width - r
	}
	return n
}
