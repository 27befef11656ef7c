/*
 * doc.go, part of cljgrid.
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

/*Package chem is the main package of the cljgrid library. It provides the atom, molecule
and molecule group structures that the rest of the library works on, together with
the error types and physical constants shared by all packages.



	**cljgrid Capabilities**


    Calculates the Coulomb and Lennard-Jones interaction energy between a small set of
	"probe" molecules, which move often, and a large environment, which rarely does.

    The Coulomb potential of the environment atoms far from the probes is accumulated
	on a 3D grid, and only interpolated afterwards, while the atoms close to the probes
	are evaluated exactly, within cutoffs (package grid).

    Supports plain cutoff, shifted and reaction-field electrostatics (package clj).

    Keeps an energy cache per molecule, so moving one probe molecule costs only the
	evaluation of that molecule (package gridff).

    Persists the grid in a versioned, compressed binary format, draws slices of the
	potential, and logs energies along a sequence of moves to SQLite (packages
	gridff, gridplot and enelog). The cljgrid command (cmd/cljgrid) exposes all of that
	from YAML system files.

Coordinates are kept in v3.Matrix objects (package v3), based on gonum's Dense type.
Each row of a Matrix represents one point in space.*/
package chem
