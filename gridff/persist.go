/*
 * persist.go, part of cljgrid.
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
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/klauspost/compress/zstd"
	chem "github.com/rmera/cljgrid"
	"github.com/rmera/cljgrid/clj"
	"github.com/rmera/cljgrid/grid"
	"github.com/rmera/cljgrid/lj"
	"github.com/rmera/cljgrid/space"
	"gonum.org/v1/gonum/spatial/r3"
)

//Magic identifies a saved grid
const Magic = "GCLJ"

//FormatVersion is the version of the format written by Save.
//Load rejects any other version.
const FormatVersion uint32 = 1

var order = binary.LittleEndian

type binWriter struct {
	w   io.Writer
	err error
}

func (b *binWriter) put(v any) {
	if b.err == nil {
		b.err = binary.Write(b.w, order, v)
	}
}

type binReader struct {
	r   io.Reader
	err error
}

func (b *binReader) get(v any) {
	if b.err == nil {
		b.err = binary.Read(b.r, order, v)
	}
}

//Save writes the grid, the close list, the parameters and the energy cache of the
//forcefield to w. The magic string and the format version are written uncompressed,
//the rest is zstd-compressed. The energy is calculated first, if needed.
func (F *GridFF) Save(w io.Writer) error {
	if _, err := F.Energy(); err != nil {
		return chem.Decorate(err, "gridff.Save")
	}
	g := F.Grid()
	if g == nil {
		return chem.NewError(chem.ConfigurationError, "no grid to save, the forcefield has no probes", "gridff.Save")
	}
	if _, err := io.WriteString(w, Magic); err != nil {
		return fmt.Errorf("gridff.Save: %w", err)
	}
	if err := binary.Write(w, order, FormatVersion); err != nil {
		return fmt.Errorf("gridff.Save: %w", err)
	}
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("gridff.Save: %w", err)
	}
	b := &binWriter{w: zw}
	o := F.opts
	b.put([2]float64{o.Buffer, o.Spacing})
	b.put(int32(o.CLJ.Policy))
	b.put([3]float64{o.CLJ.CoulombCutoff, o.CLJ.LJCutoff, o.CLJ.Dielectric})
	b.put(int32(o.ChunkSize))
	var periodic uint8
	var sdims r3.Vec
	if pb, ok := g.Space.(*space.PeriodicBox); ok {
		periodic = 1
		sdims = pb.Dims()
	}
	b.put(periodic)
	b.put([3]float64{sdims.X, sdims.Y, sdims.Z})
	b.put(g.Spacing)
	b.put([6]float64{g.Box.Min.X, g.Box.Min.Y, g.Box.Min.Z, g.Box.Max.X, g.Box.Max.Y, g.Box.Max.Z})
	b.put([3]int32{int32(g.Dims[0]), int32(g.Dims[1]), int32(g.Dims[2])})
	b.put(g.Pot)
	c := g.Close
	b.put(int32(c.Len()))
	for i := 0; i < c.Len(); i++ {
		p, err := F.table.Param(int(c.ID[i]))
		if err != nil {
			zw.Close()
			return chem.NewError(chem.ConfigurationError, err.Error(), "gridff.Save")
		}
		b.put([6]float64{c.X[i], c.Y[i], c.Z[i], c.Q[i], p.Sigma, p.Epsilon})
		b.put(int64(c.Mol[i]))
	}
	nums := make([]int, 0, len(F.cache))
	for num := range F.cache {
		nums = append(nums, num)
	}
	sort.Ints(nums)
	b.put(int32(len(nums)))
	for _, num := range nums {
		e := F.cache[num]
		b.put(int64(num))
		b.put([2]float64{e.Coulomb, e.LJ})
	}
	b.put([2]float64{F.total.Coulomb, F.total.LJ})
	if b.err != nil {
		zw.Close()
		return fmt.Errorf("gridff.Save: %w", b.err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("gridff.Save: %w", err)
	}
	return nil
}

//Load replaces the grid, parameters and energy cache of the forcefield with those read
//from r, as written by Save. The probe group of the forcefield must contain exactly the
//probe molecules that were cached when the grid was saved, in their saved positions.
//LJ parameters of the close list are added to the table of the forcefield.
//A format version other than FormatVersion gives a SerializationVersionError.
func (F *GridFF) Load(r io.Reader) error {
	head := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, head); err != nil {
		return fmt.Errorf("gridff.Load: %w", err)
	}
	if string(head) != Magic {
		return chem.NewError(chem.ConfigurationError, fmt.Sprintf("not a saved grid (magic %q)", head), "gridff.Load")
	}
	var version uint32
	if err := binary.Read(r, order, &version); err != nil {
		return fmt.Errorf("gridff.Load: %w", err)
	}
	if version != FormatVersion {
		return chem.NewError(chem.SerializationVersionError, fmt.Sprintf("format version %d, only %d is supported", version, FormatVersion), "gridff.Load")
	}
	zr, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("gridff.Load: %w", err)
	}
	defer zr.Close()
	b := &binReader{r: zr}

	o := F.opts
	var bs [2]float64
	var policy, chunk int32
	var cuts [3]float64
	b.get(&bs)
	b.get(&policy)
	b.get(&cuts)
	b.get(&chunk)
	o.Buffer, o.Spacing = bs[0], bs[1]
	o.CLJ = clj.Params{Policy: clj.Policy(policy), CoulombCutoff: cuts[0], LJCutoff: cuts[1], Dielectric: cuts[2]}
	o.ChunkSize = int(chunk)
	var periodic uint8
	var sdims [3]float64
	b.get(&periodic)
	b.get(&sdims)
	if b.err != nil {
		return fmt.Errorf("gridff.Load: %w", b.err)
	}
	o.Space = space.Cartesian{}
	if periodic == 1 {
		pb, err := space.NewPeriodicBox(r3.Vec{X: sdims[0], Y: sdims[1], Z: sdims[2]})
		if err != nil {
			return chem.NewError(chem.ConfigurationError, err.Error(), "gridff.Load")
		}
		o.Space = pb
	}
	if err := o.Validate(); err != nil {
		return chem.Decorate(err, "gridff.Load")
	}
	g := &grid.Grid{Params: o.CLJ, Space: o.Space, Close: new(clj.Atoms)}
	var box [6]float64
	var dims [3]int32
	b.get(&g.Spacing)
	b.get(&box)
	b.get(&dims)
	if b.err != nil {
		return fmt.Errorf("gridff.Load: %w", b.err)
	}
	n := 1
	for i, d := range dims {
		if d < 2 || d > grid.MaxDim {
			return chem.NewError(chem.ConfigurationError, fmt.Sprintf("invalid grid dimension %d", d), "gridff.Load")
		}
		g.Dims[i] = int(d)
		n *= int(d)
	}
	g.Box = grid.Box{Min: r3.Vec{X: box[0], Y: box[1], Z: box[2]}, Max: r3.Vec{X: box[3], Y: box[4], Z: box[5]}}
	g.Pot = make([]float64, n)
	b.get(g.Pot)
	var nclose int32
	b.get(&nclose)
	if b.err != nil {
		return fmt.Errorf("gridff.Load: %w", b.err)
	}
	if nclose < 0 {
		return chem.NewError(chem.ConfigurationError, fmt.Sprintf("invalid close list length %d", nclose), "gridff.Load")
	}
	for i := 0; i < int(nclose) && b.err == nil; i++ {
		var at [6]float64
		var mol int64
		b.get(&at)
		b.get(&mol)
		id := F.table.Add(lj.Param{Sigma: at[4], Epsilon: at[5]})
		g.Close.Append(at[0], at[1], at[2], at[3], int32(id), int(mol))
	}
	g.Built.Close = g.Close.Len()
	var ncache int32
	b.get(&ncache)
	cache := make(map[int]clj.Components, max(ncache, 0))
	for i := 0; i < int(ncache) && b.err == nil; i++ {
		var num int64
		var e [2]float64
		b.get(&num)
		b.get(&e)
		cache[int(num)] = clj.Components{Coulomb: e[0], LJ: e[1]}
	}
	var total [2]float64
	b.get(&total)
	if b.err != nil {
		return fmt.Errorf("gridff.Load: %w", b.err)
	}
	if len(cache) != F.probes.Len() {
		return chem.NewError(chem.ConfigurationError, fmt.Sprintf("saved grid has %d probe molecules, the forcefield %d", len(cache), F.probes.Len()), "gridff.Load")
	}
	batches := make(map[int]*clj.Atoms, len(cache))
	for _, m := range F.probes.Molecules() {
		if _, ok := cache[m.Num]; !ok {
			return chem.NewError(chem.ConfigurationError, fmt.Sprintf("probe molecule %d not in the saved grid", m.Num), "gridff.Load")
		}
		bt, err := clj.Extract(m, F.table)
		if err != nil {
			return chem.Decorate(err, "gridff.Load")
		}
		batches[m.Num] = bt
	}
	F.MustNowRecalculateFromScratch()
	F.opts = o
	F.eval = NewEvaluator(g, F.table)
	F.batches = batches
	F.cache = cache
	F.total = clj.Components{Coulomb: total[0], LJ: total[1]}
	F.warnings = nil
	F.envVersion, F.fixedVersion = F.env.Version(), F.fixed.Version()
	F.state = Clean
	return nil
}

//SaveFile saves the forcefield grid to the file name (see Save).
func (F *GridFF) SaveFile(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("gridff.SaveFile: %w", err)
	}
	if err := F.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

//LoadFile loads the forcefield grid from the file name (see Load).
func (F *GridFF) LoadFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("gridff.LoadFile: %w", err)
	}
	defer f.Close()
	return F.Load(f)
}
