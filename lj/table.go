/*
 * table.go, part of cljgrid.
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

//Package lj keeps the Lennard-Jones parameters of a simulation in a Table.
//Atoms refer to their parameters by an integer id into the table, and
//the energy kernels obtain the combined parameters for a pair of atoms
//from their two ids. The id 0 is reserved for dummy atoms without LJ.
//
//A Table is owned by the caller (normally, one per simulation) and passed
//around explicitly. It is not safe for concurrent modification.
package lj

import (
	"fmt"
	"math"
)

//Param contains the LJ parameters of one atom type, sigma in A and epsilon in kcal/mol.
type Param struct {
	Sigma   float64
	Epsilon float64
}

//Dummy returns true if the parameter describes an atom without LJ interactions.
func (P Param) Dummy() bool {
	return P.Sigma == 0 || P.Epsilon == 0
}

//C6C12 returns the parameters in the c6/c12 form, where the energy is
//c12/r^12 - c6/r^6.
func (P Param) C6C12() (c6, c12 float64) {
	s6 := math.Pow(P.Sigma, 6)
	c6 = 4 * P.Epsilon * s6
	c12 = 4 * P.Epsilon * s6 * s6
	return c6, c12
}

//FromC6C12 returns the Param (sigma/epsilon form) equivalent
//to the c6/c12 pair given.
func FromC6C12(c6, c12 float64) Param {
	if c6 <= 0 || c12 <= 0 {
		return Param{}
	}
	sigma := math.Pow(c12/c6, 1.0/6.0)
	epsilon := c6 * c6 / (4 * c12)
	return Param{Sigma: sigma, Epsilon: epsilon}
}

//Rule is the combining rule used to obtain the parameters for a pair of atoms.
type Rule int

const (
	//Arithmetic is the Lorentz-Berthelot rule, sigma=(s1+s2)/2, epsilon=sqrt(e1*e2)
	Arithmetic Rule = iota
	//Geometric uses sigma=sqrt(s1*s2), epsilon=sqrt(e1*e2)
	Geometric
)

func (R Rule) String() string {
	switch R {
	case Arithmetic:
		return "arithmetic"
	case Geometric:
		return "geometric"
	default:
		return fmt.Sprintf("Rule(%d)", int(R))
	}
}

//Pair holds the combined parameters for a pair of atoms.
type Pair struct {
	Sigma   float64
	Epsilon float64
}

//Table is an arena of LJ parameters indexed by integer ids.
type Table struct {
	rule   Rule
	params []Param
	index  map[Param]int
	pairs  []Pair //row-major len(params)xlen(params), rebuilt lazily
	npairs int    //number of parameters the pair matrix was built for
}

//NewTable returns a Table containing only the dummy parameter (id 0).
//The combining rule is Arithmetic unless other is given.
func NewTable(rule ...Rule) *Table {
	T := new(Table)
	if len(rule) > 0 {
		T.rule = rule[0]
	}
	T.params = []Param{{}}
	T.index = map[Param]int{{}: 0}
	return T
}

//Rule returns the combining rule of the table
func (T *Table) Rule() Rule {
	return T.rule
}

//Len returns the number of parameters in the table, including the dummy one.
func (T *Table) Len() int {
	return len(T.params)
}

//Add registers p in the table and returns its id. Parameters already present
//return their old id, and dummy parameters always return 0.
func (T *Table) Add(p Param) int {
	if p.Dummy() {
		return 0
	}
	if id, ok := T.index[p]; ok {
		return id
	}
	T.params = append(T.params, p)
	id := len(T.params) - 1
	T.index[p] = id
	return id
}

//Param returns the parameter with the given id.
func (T *Table) Param(id int) (Param, error) {
	if id < 0 || id >= len(T.params) {
		return Param{}, fmt.Errorf("lj: id %d not in table of %d parameters", id, len(T.params))
	}
	return T.params[id], nil
}

//Combine returns the combined parameters of a and b under the rule of the table.
func (T *Table) Combine(a, b Param) Pair {
	eps := math.Sqrt(a.Epsilon * b.Epsilon)
	var sig float64
	switch T.rule {
	case Geometric:
		sig = math.Sqrt(a.Sigma * b.Sigma)
	default:
		sig = 0.5 * (a.Sigma + b.Sigma)
	}
	if eps == 0 {
		sig = 0
	}
	return Pair{Sigma: sig, Epsilon: eps}
}

//Pair returns the combined parameters for the ids a and b. It panics
//if either id is not in the table, as that means the ids were produced
//with a different table.
func (T *Table) Pair(a, b int32) Pair {
	n := T.ensurePairs()
	return T.pairs[int(a)*n+int(b)]
}

//Pairs returns the full pair matrix, row-major, and its side. The slice
//must not be modified, and it is only valid until the next call to Add.
func (T *Table) Pairs() ([]Pair, int) {
	n := T.ensurePairs()
	return T.pairs, n
}

func (T *Table) ensurePairs() int {
	n := len(T.params)
	if T.npairs == n && T.pairs != nil {
		return n
	}
	T.pairs = make([]Pair, n*n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			p := T.Combine(T.params[i], T.params[j])
			T.pairs[i*n+j] = p
			T.pairs[j*n+i] = p
		}
	}
	T.npairs = n
	return n
}
