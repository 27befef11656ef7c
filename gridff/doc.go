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

/*Package gridff keeps the CLJ energy between a group of probe molecules and their
environment up to date while the probes move.

A GridFF is in one of three states. In NoGrid, the next energy query builds the grid
around the probes and evaluates every probe molecule, caching the energy of each.
In Clean, the cached total is returned as is. In Dirty, only the probe molecules that
moved are re-evaluated: all their atoms if the whole molecule was replaced, or the
difference between the new and old positions of the atoms that moved. A molecule that
leaves the grid box, or any change in the environment, the groups or the parameters,
brings the forcefield back to NoGrid.

The grid, with its close list and the energy cache, can be saved in a small versioned,
zstd-compressed binary format and loaded back.*/
package gridff
