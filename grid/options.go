/*
 * options.go, part of cljgrid.
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

	chem "github.com/rmera/cljgrid"
	"github.com/rmera/cljgrid/clj"
	"github.com/rmera/cljgrid/space"
)

//MaxDim is the largest number of nodes allowed along any axis of a grid.
const MaxDim = 250

//DefaultChunkSize is the number of far atoms sent at once to the accumulator.
const DefaultChunkSize = 1024

//Options controls the construction of a grid.
type Options struct {
	Buffer    float64 //A added around the probes on every side
	Spacing   float64 //A between nodes
	CLJ       clj.Params
	ChunkSize int
	Space     space.Space
}

//DefaultOptions returns a 2 A buffer, 0.5 A spacing, the default CLJ
//parameters and a non-periodic space.
func DefaultOptions() Options {
	return Options{
		Buffer:    2,
		Spacing:   0.5,
		CLJ:       clj.DefaultParams(),
		ChunkSize: DefaultChunkSize,
		Space:     space.Cartesian{},
	}
}

//Validate returns a ConfigurationError if the options can't be used to build a grid.
func (O Options) Validate() error {
	if O.Spacing <= 0 {
		return chem.NewError(chem.ConfigurationError, fmt.Sprintf("grid spacing must be positive, got %g", O.Spacing), "grid.Options.Validate")
	}
	if O.Buffer < 0 {
		return chem.NewError(chem.ConfigurationError, fmt.Sprintf("grid buffer can't be negative, got %g", O.Buffer), "grid.Options.Validate")
	}
	if err := O.CLJ.Validate(); err != nil {
		return chem.Decorate(err, "grid.Options.Validate")
	}
	return nil
}

func (O Options) chunkSize() int {
	if O.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return O.ChunkSize
}

func (O Options) space() space.Space {
	if O.Space == nil {
		return space.Cartesian{}
	}
	return O.Space
}
