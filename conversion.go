/*
 * conversion.go, part of cljgrid.
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

import "math"

//This provides useful conversion factors and other constants

//Conversions
const (
	KJ2Kcal = 1 / 4.184
	Kcal2KJ = 4.184
	A2nm    = 0.1
	Nm2A    = 10.0
)

//Others
const (
	//OneOverFourPiEps0 is 1/(4 pi epsilon_0) in kcal A mol^-1 e^-2,
	//so q1*q2*OneOverFourPiEps0/r is an energy in kcal/mol when r is in A.
	OneOverFourPiEps0 = 332.0637133
)

//ReducedCharge returns the charge q (in e) pre-scaled by sqrt(1/(4 pi epsilon_0)), so
//the product of two reduced charges over a distance in A is an energy in kcal/mol.
func ReducedCharge(q float64) float64 {
	return q * math.Sqrt(OneOverFourPiEps0)
}
