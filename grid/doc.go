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

/*Package grid builds a regular 3D grid around a set of probe atoms and accumulates on
its nodes the Coulomb potential of the environment atoms that are far from the probes.
Environment atoms closer than the LJ cutoff to the grid box are not put on the grid but
kept in a close list, to be evaluated exactly.

The energy of a probe atom with the far environment is then its reduced charge times
the potential tri-linearly interpolated from the 8 nodes around it.

The number of nodes along each axis is capped (MaxDim). Grids that would be larger
get a coarser spacing, and a non-critical CapacityWarning is recorded.*/
package grid
