/*
 * components.go, part of cljgrid.
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
)

//Components holds the two terms of a CLJ energy, in kcal/mol.
type Components struct {
	Coulomb float64
	LJ      float64
}

//Total returns the sum of both terms
func (C Components) Total() float64 {
	return C.Coulomb + C.LJ
}

func (C Components) Add(D Components) Components {
	return Components{Coulomb: C.Coulomb + D.Coulomb, LJ: C.LJ + D.LJ}
}

func (C Components) Sub(D Components) Components {
	return Components{Coulomb: C.Coulomb - D.Coulomb, LJ: C.LJ - D.LJ}
}

//KJ returns the components converted to kJ/mol
func (C Components) KJ() Components {
	return Components{Coulomb: C.Coulomb * chem.Kcal2KJ, LJ: C.LJ * chem.Kcal2KJ}
}

func (C Components) String() string {
	return fmt.Sprintf("coulomb: %.6f lj: %.6f total: %.6f", C.Coulomb, C.LJ, C.Total())
}
