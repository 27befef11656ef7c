/*
 * doc.go, part of cljgrid.
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

/*Package clj contains the pieces of a Coulomb + Lennard-Jones calculation that
don't depend on the grid: batches of atoms in structure-of-arrays form, the
extraction of reduced charges and LJ ids from molecules, the electrostatics
policies and the lane kernel that evaluates pairs exactly.

Charges in a batch are reduced, i.e. already multiplied by the square root
of 1/(4 pi epsilon_0), so energies come out in kcal/mol with distances in A.*/
package clj
