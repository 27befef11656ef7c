/*
 * evaluator.go, part of cljgrid.
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

package gridff

import (
	chem "github.com/rmera/cljgrid"
	"github.com/rmera/cljgrid/clj"
	"github.com/rmera/cljgrid/grid"
	"github.com/rmera/cljgrid/lj"
)

//Evaluator obtains the CLJ energy of probe atoms with the environment represented by
//a grid: exactly for the atoms in the close list, by interpolation for the rest.
type Evaluator struct {
	g      *grid.Grid
	table  *lj.Table
	k      *clj.Kernel
	ntypes int
}

//NewEvaluator returns an evaluator for g. The LJ ids of the close list and
//of the probes must refer to table.
func NewEvaluator(g *grid.Grid, table *lj.Table) *Evaluator {
	E := &Evaluator{g: g, table: table}
	E.refresh()
	return E
}

//refresh rebuilds the kernel if the LJ table has grown since it was built.
func (E *Evaluator) refresh() {
	if E.k == nil || E.table.Len() != E.ntypes {
		E.k = clj.NewKernel(E.g.Params, E.table)
		E.ntypes = E.table.Len()
	}
}

//Energy returns the Coulomb and LJ energy of the atoms in A with the environment.
//If any charged atom lies outside the grid, it returns an ApproximationBreach error.
func (E *Evaluator) Energy(A *clj.Atoms) (clj.Components, error) {
	E.refresh()
	I := E.g.Image(A)
	far, err := E.g.Coulomb(I)
	if err != nil {
		return clj.Components{}, chem.Decorate(err, "gridff.Evaluator.Energy")
	}
	coul, ljsum := E.k.CloseEnergy(I, E.g.Close)
	return clj.Components{Coulomb: coul + far, LJ: 4 * ljsum}, nil
}

//Grid returns the grid used by the evaluator
func (E *Evaluator) Grid() *grid.Grid {
	return E.g
}
