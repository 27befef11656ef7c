/*
 * files.go, part of cljgrid.
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

package chem

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	v3 "github.com/rmera/cljgrid/v3"
)

//XYZWrite writes the molecules in mols as one frame of an XYZ file to w,
//with comment in the second line. Calling it repeatedly on the same writer
//produces a multi-frame XYZ trajectory.
func XYZWrite(w io.Writer, mols []*Molecule, comment string) error {
	n := 0
	for _, m := range mols {
		n += m.Len()
	}
	comment = strings.ReplaceAll(comment, "\n", " ")
	if _, err := fmt.Fprintf(w, "%-4d\n%s\n", n, comment); err != nil {
		return NewError(ConfigurationError, err.Error(), "XYZWrite")
	}
	for _, m := range mols {
		for i, at := range m.Atoms {
			symbol := at.Symbol
			if symbol == "" {
				symbol = at.Name
			}
			c := m.Coords.Vec(i)
			if _, err := fmt.Fprintf(w, "%-2s  %12.6f%12.6f%12.6f\n", symbol, c.X, c.Y, c.Z); err != nil {
				return NewError(ConfigurationError, err.Error(), "XYZWrite")
			}
		}
	}
	return nil
}

//XYZRead reads the next frame of an XYZ stream. It returns io.EOF when there are no
//frames left. The atoms only get their symbols, the rest of their data is zero.
func XYZRead(r *bufio.Reader) ([]*Atom, *v3.Matrix, error) {
	line, err := r.ReadString('\n')
	if err == io.EOF && strings.TrimSpace(line) == "" {
		return nil, nil, io.EOF
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || natoms <= 0 {
		return nil, nil, NewError(ConfigurationError, fmt.Sprintf("ill formatted XYZ atom count %q", strings.TrimSpace(line)), "XYZRead")
	}
	if _, err := r.ReadString('\n'); err != nil {
		return nil, nil, NewError(ConfigurationError, "XYZ frame truncated after the atom count", "XYZRead")
	}
	atoms := make([]*Atom, natoms)
	coords := make([]float64, 3*natoms)
	for i := 0; i < natoms; i++ {
		line, err = r.ReadString('\n')
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, nil, NewError(ConfigurationError, fmt.Sprintf("XYZ line %d ill formed", i+3), "XYZRead")
		}
		atoms[i] = &Atom{Symbol: fields[0], Name: fields[0], ID: i + 1}
		for j := 0; j < 3; j++ {
			coords[3*i+j], err = strconv.ParseFloat(fields[j+1], 64)
			if err != nil {
				return nil, nil, NewError(ConfigurationError, fmt.Sprintf("XYZ line %d: %s", i+3, err), "XYZRead")
			}
		}
	}
	c, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, nil, Decorate(err, "XYZRead")
	}
	return atoms, c, nil
}
