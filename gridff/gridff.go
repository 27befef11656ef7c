/*
 * gridff.go, part of cljgrid.
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
	"fmt"
	"sort"

	chem "github.com/rmera/cljgrid"
	"github.com/rmera/cljgrid/clj"
	"github.com/rmera/cljgrid/grid"
	"github.com/rmera/cljgrid/lj"
	"github.com/rmera/cljgrid/space"
	v3 "github.com/rmera/cljgrid/v3"
	"github.com/sirupsen/logrus"
)

//State tells what a forcefield needs to do before it can return an energy.
type State int

const (
	//NoGrid: the grid must be built from scratch
	NoGrid State = iota
	//Clean: the cached energy is current
	Clean
	//Dirty: some probe molecules moved since the last evaluation
	Dirty
)

func (S State) String() string {
	switch S {
	case NoGrid:
		return "NoGrid"
	case Clean:
		return "Clean"
	case Dirty:
		return "Dirty"
	default:
		return fmt.Sprintf("State(%d)", int(S))
	}
}

//move records what changed in a probe molecule since it was last evaluated.
type move struct {
	full  bool
	atoms map[int]bool
}

//GridFF calculates the CLJ energy between a group of probe molecules and an
//environment made of molecules and fixed atoms. The potential of the environment
//far from the probes is kept on a grid, which is only rebuilt when the environment,
//the membership of either group or the parameters change, or when a probe leaves
//the grid. Moving probe molecules only requires re-evaluating the moved atoms.
type GridFF struct {
	opts  grid.Options
	table *lj.Table

	probes *chem.MoleculeGroup
	env    *chem.MoleculeGroup
	fixed  *FixedAtoms

	state State
	eval  *Evaluator
	//probe batches as of their last evaluation
	batches map[int]*clj.Atoms
	cache   map[int]clj.Components
	total   clj.Components
	pending map[int]*move

	//versions of the environment at the last rebuild
	envVersion   uint64
	fixedVersion uint64

	rebuilds int
	deltas   int
	warnings []error
}

//New returns an empty forcefield. table holds the LJ parameters and can be
//shared with other forcefields, if nil a new one is created. The options
//are grid.DefaultOptions() unless given.
func New(table *lj.Table, opts ...grid.Options) *GridFF {
	if table == nil {
		table = lj.NewTable()
	}
	o := grid.DefaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Space == nil {
		o.Space = space.Cartesian{}
	}
	return &GridFF{
		opts:    o,
		table:   table,
		probes:  chem.NewMoleculeGroup("probes"),
		env:     chem.NewMoleculeGroup("environment"),
		fixed:   NewFixedAtoms(),
		state:   NoGrid,
		batches: make(map[int]*clj.Atoms),
		cache:   make(map[int]clj.Components),
		pending: make(map[int]*move),
	}
}

//Options returns the current grid options
func (F *GridFF) Options() grid.Options { return F.opts }

//Table returns the LJ table of the forcefield
func (F *GridFF) Table() *lj.Table { return F.table }

//State returns the current state of the energy cache
func (F *GridFF) State() State { return F.state }

//Rebuilds returns the number of times the grid has been built
func (F *GridFF) Rebuilds() int { return F.rebuilds }

//DeltaUpdates returns the number of times the energy was updated without rebuilding the grid.
func (F *GridFF) DeltaUpdates() int { return F.deltas }

//LastWarnings returns the non-critical problems found in the last grid build
func (F *GridFF) LastWarnings() []error { return F.warnings }

//Probes returns the group of probe molecules. It must not be modified directly.
func (F *GridFF) Probes() *chem.MoleculeGroup { return F.probes }

//Environment returns the group of environment molecules. It must not be modified directly.
func (F *GridFF) Environment() *chem.MoleculeGroup { return F.env }

//FixedAtoms returns the fixed atoms of the forcefield, which can be shared
//with other forcefields through ShareFixedAtoms.
func (F *GridFF) FixedAtoms() *FixedAtoms { return F.fixed }

//Grid returns the current grid, nil if there isn't one.
func (F *GridFF) Grid() *grid.Grid {
	if F.state == NoGrid || F.eval == nil {
		return nil
	}
	return F.eval.Grid()
}

//MustNowRecalculateFromScratch drops the grid and all cached energies.
func (F *GridFF) MustNowRecalculateFromScratch() {
	F.state = NoGrid
	F.eval = nil
	F.pending = make(map[int]*move)
	F.batches = make(map[int]*clj.Atoms)
	F.cache = make(map[int]clj.Components)
	F.total = clj.Components{}
}

func (F *GridFF) setFloat(field *float64, v float64) {
	if *field != v {
		*field = v
		F.MustNowRecalculateFromScratch()
	}
}

//SetBuffer sets the distance added around the probes to get the grid box.
func (F *GridFF) SetBuffer(b float64) { F.setFloat(&F.opts.Buffer, b) }

//SetSpacing sets the distance between grid nodes
func (F *GridFF) SetSpacing(s float64) { F.setFloat(&F.opts.Spacing, s) }

func (F *GridFF) SetCoulombCutoff(c float64) { F.setFloat(&F.opts.CLJ.CoulombCutoff, c) }

func (F *GridFF) SetLJCutoff(c float64) { F.setFloat(&F.opts.CLJ.LJCutoff, c) }

//SetReactionFieldDielectric sets the dielectric constant used by the reaction field.
func (F *GridFF) SetReactionFieldDielectric(e float64) { F.setFloat(&F.opts.CLJ.Dielectric, e) }

func (F *GridFF) setPolicy(p clj.Policy, on bool) {
	cur := F.opts.CLJ.Policy
	switch {
	case on && cur != p:
		F.opts.CLJ.Policy = p
	case !on && cur == p:
		F.opts.CLJ.Policy = clj.Cutoff
	default:
		return
	}
	F.MustNowRecalculateFromScratch()
}

//SetShiftElectrostatics turns shifted electrostatics on or off. Turning it on
//turns the reaction field off.
func (F *GridFF) SetShiftElectrostatics(on bool) { F.setPolicy(clj.Shifted, on) }

//SetReactionField turns the reaction field on or off. Turning it on
//turns shifted electrostatics off.
func (F *GridFF) SetReactionField(on bool) { F.setPolicy(clj.ReactionField, on) }

//SetSpace sets the space in which the molecules live.
func (F *GridFF) SetSpace(s space.Space) {
	if s == nil {
		s = space.Cartesian{}
	}
	if F.opts.Space != nil && F.opts.Space.String() == s.String() {
		return
	}
	F.opts.Space = s
	F.MustNowRecalculateFromScratch()
}

//AddFixedAtoms adds atoms that never move to the environment. Their LJ ids must
//refer to the table of the forcefield.
func (F *GridFF) AddFixedAtoms(A *clj.Atoms) error {
	if err := F.fixed.AddAtoms(A, F.table); err != nil {
		return chem.Decorate(err, "gridff.AddFixedAtoms")
	}
	F.MustNowRecalculateFromScratch()
	return nil
}

//AddFixedMolecules adds the atoms of the given molecules as fixed atoms.
func (F *GridFF) AddFixedMolecules(mols ...*chem.Molecule) error {
	if err := F.fixed.AddMolecules(mols...); err != nil {
		return chem.Decorate(err, "gridff.AddFixedMolecules")
	}
	F.MustNowRecalculateFromScratch()
	return nil
}

//AddFixedGroup adds the atoms of all the molecules in G as fixed atoms.
func (F *GridFF) AddFixedGroup(G *chem.MoleculeGroup) error {
	return F.AddFixedMolecules(G.Molecules()...)
}

//ShareFixedAtoms replaces the fixed atoms of the forcefield with the set S,
//which may be used by other forcefields too.
func (F *GridFF) ShareFixedAtoms(S *FixedAtoms) {
	if S == nil {
		S = NewFixedAtoms()
	}
	F.fixed = S
	F.MustNowRecalculateFromScratch()
}

func (F *GridFF) checkNew(mols []*chem.Molecule, caller string) error {
	for _, m := range mols {
		if F.probes.Contains(m.Num) || F.env.Contains(m.Num) {
			return chem.NewError(chem.ConfigurationError, fmt.Sprintf("molecule %d already in the forcefield", m.Num), caller)
		}
		if m.Coords == nil || m.Coords.NVecs() != m.Len() {
			return chem.NewError(chem.ConfigurationError, fmt.Sprintf("molecule %d has inconsistent coordinates", m.Num), caller)
		}
	}
	return nil
}

//AddProbe adds molecules to the probe group.
func (F *GridFF) AddProbe(mols ...*chem.Molecule) error {
	if err := F.checkNew(mols, "gridff.AddProbe"); err != nil {
		return err
	}
	if err := F.probes.Add(mols...); err != nil {
		return chem.Decorate(err, "gridff.AddProbe")
	}
	F.MustNowRecalculateFromScratch()
	return nil
}

//AddEnvironment adds molecules to the environment group.
func (F *GridFF) AddEnvironment(mols ...*chem.Molecule) error {
	if err := F.checkNew(mols, "gridff.AddEnvironment"); err != nil {
		return err
	}
	if err := F.env.Add(mols...); err != nil {
		return chem.Decorate(err, "gridff.AddEnvironment")
	}
	F.MustNowRecalculateFromScratch()
	return nil
}

//Remove removes the molecule with number num from whichever group contains it.
func (F *GridFF) Remove(num int) error {
	if !F.probes.Remove(num) && !F.env.Remove(num) {
		return chem.NewError(chem.NotFound, fmt.Sprintf("molecule %d not in the forcefield", num), "gridff.Remove")
	}
	F.MustNowRecalculateFromScratch()
	return nil
}

//Update replaces the molecule with the same number as m. Moving a probe molecule
//only marks it for re-evaluation, while any change in the environment requires
//rebuilding the grid.
func (F *GridFF) Update(m *chem.Molecule) error {
	if m.Coords == nil || m.Coords.NVecs() != m.Len() {
		return chem.NewError(chem.ConfigurationError, fmt.Sprintf("molecule %d has inconsistent coordinates", m.Num), "gridff.Update")
	}
	if F.env.Contains(m.Num) {
		if err := F.env.Replace(m); err != nil {
			return chem.Decorate(err, "gridff.Update")
		}
		F.MustNowRecalculateFromScratch()
		return nil
	}
	if err := F.probes.Replace(m); err != nil {
		return chem.Decorate(err, "gridff.Update")
	}
	F.markMoved(m.Num, nil)
	return nil
}

//UpdateAtoms moves the atoms with the given indexes of the probe molecule num to
//coords, which must have one row per index.
func (F *GridFF) UpdateAtoms(num int, indexes []int, coords *v3.Matrix) error {
	m, ok := F.probes.Molecule(num)
	if !ok {
		if F.env.Contains(num) {
			return chem.NewError(chem.ConfigurationError, fmt.Sprintf("molecule %d is in the environment, use Update", num), "gridff.UpdateAtoms")
		}
		return chem.NewError(chem.NotFound, fmt.Sprintf("probe molecule %d not in the forcefield", num), "gridff.UpdateAtoms")
	}
	if coords.NVecs() != len(indexes) {
		return chem.NewError(chem.ConfigurationError, fmt.Sprintf("%d coordinates for %d atoms", coords.NVecs(), len(indexes)), "gridff.UpdateAtoms")
	}
	for _, i := range indexes {
		if i < 0 || i >= m.Len() {
			return chem.NewError(chem.ConfigurationError, fmt.Sprintf("atom %d out of range for molecule %d with %d atoms", i, num, m.Len()), "gridff.UpdateAtoms")
		}
	}
	for j, i := range indexes {
		m.Coords.SetVec(i, coords.Vec(j))
	}
	F.markMoved(num, indexes)
	return nil
}

//markMoved records that some atoms (all of them if indexes is nil) of
//the probe molecule num have moved.
func (F *GridFF) markMoved(num int, indexes []int) {
	if F.state == NoGrid || F.eval == nil {
		//no grid, either nothing to update or a full rebuild pending
		return
	}
	mv, ok := F.pending[num]
	if !ok {
		mv = &move{atoms: make(map[int]bool)}
		F.pending[num] = mv
	}
	if indexes == nil {
		mv.full = true
	}
	for _, i := range indexes {
		mv.atoms[i] = true
	}
	F.state = Dirty
}

//Energy returns the CLJ energy between the probes and the environment, updating
//the grid and the energy cache first, if needed.
func (F *GridFF) Energy() (clj.Components, error) {
	if F.state != NoGrid && (F.env.Version() != F.envVersion || F.fixed.Version() != F.fixedVersion) {
		F.MustNowRecalculateFromScratch()
	}
	var err error
	switch F.state {
	case Clean:
		return F.total, nil
	case Dirty:
		err = F.delta()
		if chem.IsKind(err, chem.ApproximationBreach) {
			logrus.Infof("Probes left the grid, rebuilding: %s", err.Error())
			err = F.rebuild()
		}
	default:
		err = F.rebuild()
	}
	if err != nil {
		F.MustNowRecalculateFromScratch()
		return clj.Components{}, chem.Decorate(err, "gridff.Energy")
	}
	return F.total, nil
}

//environment returns the batches of all the environment atoms.
func (F *GridFF) environment() ([]*clj.Atoms, error) {
	mols, err := clj.ExtractMany(F.env.Molecules(), F.table)
	if err != nil {
		return nil, err
	}
	return []*clj.Atoms{mols, F.fixed.Batch(F.table)}, nil
}

//rebuild builds the grid from scratch and evaluates all the probe molecules.
func (F *GridFF) rebuild() error {
	F.MustNowRecalculateFromScratch()
	F.warnings = nil
	if F.probes.Len() == 0 || (F.env.Len() == 0 && F.fixed.Len() == 0) {
		//nothing interacts, so no grid is needed
		F.envVersion, F.fixedVersion = F.env.Version(), F.fixed.Version()
		F.state = Clean
		return nil
	}
	probes := new(clj.Atoms)
	for _, m := range F.probes.Molecules() {
		b, err := clj.Extract(m, F.table)
		if err != nil {
			return chem.Decorate(err, "gridff.rebuild")
		}
		F.batches[m.Num] = b
		probes.AppendAtoms(b)
	}
	env, err := F.environment()
	if err != nil {
		return chem.Decorate(err, "gridff.rebuild")
	}
	g, err := grid.Build(probes, env, F.opts)
	if err != nil {
		return chem.Decorate(err, "gridff.rebuild")
	}
	F.envVersion, F.fixedVersion = F.env.Version(), F.fixed.Version()
	if g == nil {
		//no probes, no energy
		F.state = Clean
		return nil
	}
	F.rebuilds++
	F.warnings = g.Warnings
	F.eval = NewEvaluator(g, F.table)
	for _, m := range F.probes.Molecules() {
		e, err := F.eval.Energy(F.batches[m.Num])
		if err != nil {
			F.MustNowRecalculateFromScratch()
			return chem.Decorate(err, "gridff.rebuild")
		}
		F.cache[m.Num] = e
	}
	F.total = F.sumCache()
	F.state = Clean
	logrus.Debugf("Grid rebuilt (%d): %d probe molecules, energy %s", F.rebuilds, len(F.cache), F.total)
	return nil
}

//delta updates the cached energies of the probe molecules that moved.
func (F *GridFF) delta() error {
	nums := make([]int, 0, len(F.pending))
	for num := range F.pending {
		nums = append(nums, num)
	}
	sort.Ints(nums)
	g := F.eval.Grid()
	for _, num := range nums {
		m, _ := F.probes.Molecule(num)
		nb, err := clj.Extract(m, F.table)
		if err != nil {
			return chem.Decorate(err, "gridff.delta")
		}
		if !g.Encloses(nb) {
			return chem.NewError(chem.ApproximationBreach, fmt.Sprintf("probe molecule %d left the grid box %s", num, g.Box), "gridff.delta")
		}
		mv := F.pending[num]
		old := F.batches[num]
		if mv.full || old.Len() != nb.Len() {
			e, err := F.eval.Energy(nb)
			if err != nil {
				return chem.Decorate(err, "gridff.delta")
			}
			F.cache[num] = e
		} else {
			e, err := F.partial(old, nb, mv.atoms)
			if err != nil {
				return chem.Decorate(err, "gridff.delta")
			}
			F.cache[num] = F.cache[num].Add(e)
		}
		F.batches[num] = nb
		delete(F.pending, num)
	}
	F.deltas++
	F.total = F.sumCache()
	F.state = Clean
	return nil
}

//partial returns the change in energy when the given atoms move from their
//positions in old to those in nw.
func (F *GridFF) partial(old, nw *clj.Atoms, atoms map[int]bool) (clj.Components, error) {
	idx := make([]int, 0, len(atoms))
	for i := range atoms {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	op, err := old.Subset(idx)
	if err != nil {
		return clj.Components{}, err
	}
	np, err := nw.Subset(idx)
	if err != nil {
		return clj.Components{}, err
	}
	eold, err := F.eval.Energy(op)
	if err != nil {
		return clj.Components{}, err
	}
	enew, err := F.eval.Energy(np)
	if err != nil {
		return clj.Components{}, err
	}
	return enew.Sub(eold), nil
}

func (F *GridFF) sumCache() clj.Components {
	var t clj.Components
	for _, m := range F.probes.Molecules() {
		t = t.Add(F.cache[m.Num])
	}
	return t
}

//Check re-evaluates every probe molecule on the current grid and returns the difference
//between that energy and the cached one. It returns a zero difference if there is no grid.
func (F *GridFF) Check() (clj.Components, error) {
	if F.state == NoGrid || F.eval == nil {
		return clj.Components{}, nil
	}
	var t clj.Components
	for _, m := range F.probes.Molecules() {
		b, err := clj.Extract(m, F.table)
		if err != nil {
			return clj.Components{}, chem.Decorate(err, "gridff.Check")
		}
		e, err := F.eval.Energy(b)
		if err != nil {
			return clj.Components{}, chem.Decorate(err, "gridff.Check")
		}
		t = t.Add(e)
	}
	return t.Sub(F.total), nil
}
