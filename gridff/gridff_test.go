package gridff

import (
	"bytes"
	"encoding/binary"
	"testing"

	chem "github.com/rmera/cljgrid"
	"github.com/rmera/cljgrid/clj"
	"github.com/rmera/cljgrid/grid"
	"github.com/rmera/cljgrid/lj"
	v3 "github.com/rmera/cljgrid/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func molecule(t *testing.T, num int, atoms []*chem.Atom, xyz ...float64) *chem.Molecule {
	t.Helper()
	c, err := v3.NewMatrix(xyz)
	require.NoError(t, err)
	m, err := chem.NewMolecule(num, atoms, c)
	require.NoError(t, err)
	return m
}

func water(t *testing.T, num int, x, y, z float64) *chem.Molecule {
	atoms := []*chem.Atom{
		{Name: "OW", Symbol: "O", Charge: -0.834, Sigma: 3.15, Epsilon: 0.152},
		{Name: "HW1", Symbol: "H", Charge: 0.417},
		{Name: "HW2", Symbol: "H", Charge: 0.417},
	}
	return molecule(t, num, atoms, x, y, z, x+0.96, y, z, x-0.24, y+0.93, z)
}

func ion(t *testing.T, num int, q, x, y, z float64) *chem.Molecule {
	return molecule(t, num, []*chem.Atom{{Name: "ION", Symbol: "Na", Charge: q, Sigma: 3.0, Epsilon: 0.1}}, x, y, z)
}

//lattice returns ions of alternating charge on a cubic lattice with
//the given spacing, leaving out those closer than hole to the origin.
func lattice(t *testing.T, first int, n int, spacing, hole float64) []*chem.Molecule {
	var mols []*chem.Molecule
	num := first
	for i := -n; i <= n; i++ {
		for j := -n; j <= n; j++ {
			for k := -n; k <= n; k++ {
				x, y, z := float64(i)*spacing, float64(j)*spacing, float64(k)*spacing
				if x*x+y*y+z*z < hole*hole {
					continue
				}
				q := 1.0
				if (i+j+k)%2 != 0 {
					q = -1
				}
				mols = append(mols, ion(t, num, q, x, y, z))
				num++
			}
		}
	}
	return mols
}

func options(rlj, rc float64) grid.Options {
	O := grid.DefaultOptions()
	O.Buffer = 3
	O.Spacing = 0.5
	O.CLJ.LJCutoff = rlj
	O.CLJ.CoulombCutoff = rc
	return O
}

func system(t *testing.T, rlj, rc float64) (*GridFF, *chem.Molecule) {
	F := New(nil, options(rlj, rc))
	w := water(t, 1, 0, 0, 0)
	require.NoError(t, F.AddProbe(w))
	require.NoError(t, F.AddEnvironment(lattice(t, 100, 3, 4, 4)...))
	return F, w
}

func TestEmptyProbes(t *testing.T) {
	F := New(nil)
	require.NoError(t, F.AddEnvironment(ion(t, 1, 1, 0, 0, 0)))
	e, err := F.Energy()
	require.NoError(t, err)
	assert.Equal(t, clj.Components{}, e)
	assert.Equal(t, Clean, F.State())
	assert.Nil(t, F.Grid())
	assert.Equal(t, 0, F.Rebuilds())
}

func TestStateMachine(t *testing.T) {
	F, w := system(t, 6, 12)
	assert.Equal(t, NoGrid, F.State())
	e, err := F.Energy()
	require.NoError(t, err)
	assert.NotZero(t, e.Coulomb)
	assert.Equal(t, Clean, F.State())
	assert.Equal(t, 1, F.Rebuilds())

	e2, err := F.Energy()
	require.NoError(t, err)
	assert.Equal(t, e, e2)
	assert.Equal(t, 1, F.Rebuilds())
	assert.Equal(t, 0, F.DeltaUpdates())

	c, _ := v3.NewMatrix([]float64{0.3, 0.2, -0.1})
	require.NoError(t, F.UpdateAtoms(w.Num, []int{0}, c))
	assert.Equal(t, Dirty, F.State())
	_, err = F.Energy()
	require.NoError(t, err)
	assert.Equal(t, Clean, F.State())
	assert.Equal(t, 1, F.Rebuilds())
	assert.Equal(t, 1, F.DeltaUpdates())

	F.SetLJCutoff(6) //same value
	assert.Equal(t, Clean, F.State())
	F.SetLJCutoff(5)
	assert.Equal(t, NoGrid, F.State())
	_, err = F.Energy()
	require.NoError(t, err)
	assert.Equal(t, 2, F.Rebuilds())

	F.MustNowRecalculateFromScratch()
	assert.Equal(t, NoGrid, F.State())
	assert.Nil(t, F.Grid())
	assert.Empty(t, F.cache)
	assert.Empty(t, F.batches)
	assert.Empty(t, F.pending)
	assert.Equal(t, clj.Components{}, F.total)
}

func TestEmptyEnvironment(t *testing.T) {
	F := New(nil, options(6, 12))
	w := water(t, 1, 0, 0, 0)
	require.NoError(t, F.AddProbe(w))
	e, err := F.Energy()
	require.NoError(t, err)
	assert.Equal(t, clj.Components{}, e)
	assert.Equal(t, Clean, F.State())
	assert.Nil(t, F.Grid())
	assert.Equal(t, 0, F.Rebuilds())

	//moving probes with nothing to interact with is still free
	c, _ := v3.NewMatrix([]float64{0.3, 0.2, -0.1})
	require.NoError(t, F.UpdateAtoms(w.Num, []int{0}, c))
	require.NoError(t, F.Update(water(t, 1, 1, 0, 0)))
	assert.Equal(t, Clean, F.State())
	e, err = F.Energy()
	require.NoError(t, err)
	assert.Equal(t, clj.Components{}, e)
	assert.Equal(t, 0, F.Rebuilds())
	assert.Equal(t, 0, F.DeltaUpdates())

	//fixed atoms count as environment
	near, err := clj.Extract(ion(t, 900, 1, 4, 0, 0), F.Table())
	require.NoError(t, err)
	require.NoError(t, F.AddFixedAtoms(near))
	e, err = F.Energy()
	require.NoError(t, err)
	assert.NotZero(t, e.Coulomb)
	assert.Equal(t, 1, F.Rebuilds())
	assert.NotNil(t, F.Grid())
}

func TestSettersInvalidate(t *testing.T) {
	F, _ := system(t, 6, 12)
	setters := []func(){
		func() { F.SetBuffer(4) },
		func() { F.SetSpacing(0.4) },
		func() { F.SetCoulombCutoff(11) },
		func() { F.SetShiftElectrostatics(true) },
		func() { F.SetReactionField(true) },
		func() { F.SetReactionFieldDielectric(40) },
		func() { F.SetReactionField(false) },
	}
	for i, set := range setters {
		_, err := F.Energy()
		require.NoError(t, err)
		set()
		assert.Equal(t, NoGrid, F.State(), "setter %d", i)
	}
	assert.Equal(t, clj.Cutoff, F.Options().CLJ.Policy)
	F.SetShiftElectrostatics(true)
	assert.Equal(t, clj.Shifted, F.Options().CLJ.Policy)
	F.SetReactionField(true)
	assert.Equal(t, clj.ReactionField, F.Options().CLJ.Policy)
	assert.Equal(t, 40.0, F.Options().CLJ.Dielectric)
}

//With everything in the close list the grid holds no potential, so the energy after
//any sequence of moves must match that of a forcefield built from scratch.
func TestDeltaMatchesScratchWithCloseEnvironment(t *testing.T) {
	F, _ := system(t, 12, 12)
	_, err := F.Energy()
	require.NoError(t, err)
	moves := [][]float64{
		{0.3, 0.2, -0.1, 1.2, 0.3, 0, 0, 1, 0.2},
		{-0.5, 0.1, 0.4, 0.4, 0.1, 0.4, -0.8, 1.0, 0.4},
	}
	for _, mv := range moves {
		c, _ := v3.NewMatrix(mv)
		moved := water(t, 1, 0, 0, 0)
		moved.Coords = c
		require.NoError(t, F.Update(moved))
		e, err := F.Energy()
		require.NoError(t, err)

		S, _ := system(t, 12, 12)
		require.NoError(t, S.Update(moved.Copy()))
		want, err := S.Energy()
		require.NoError(t, err)
		assert.InDelta(t, want.Coulomb, e.Coulomb, 1e-8)
		assert.InDelta(t, want.LJ, e.LJ, 1e-8)
	}
	assert.Equal(t, 1, F.Rebuilds())
	assert.Equal(t, 2, F.DeltaUpdates())
}

func TestPartialMovesMatchFullEvaluation(t *testing.T) {
	F, w := system(t, 6, 12)
	_, err := F.Energy()
	require.NoError(t, err)
	//the same atom twice, then another one
	c1, _ := v3.NewMatrix([]float64{1.1, 0.1, 0.1})
	c2, _ := v3.NewMatrix([]float64{1.3, -0.2, 0.3})
	c3, _ := v3.NewMatrix([]float64{0.1, 0.2, 0.3})
	require.NoError(t, F.UpdateAtoms(w.Num, []int{1}, c1))
	require.NoError(t, F.UpdateAtoms(w.Num, []int{1}, c2))
	require.NoError(t, F.UpdateAtoms(w.Num, []int{0}, c3))
	e, err := F.Energy()
	require.NoError(t, err)
	diff, err := F.Check()
	require.NoError(t, err)
	assert.InDelta(t, 0, diff.Coulomb, 1e-9)
	assert.InDelta(t, 0, diff.LJ, 1e-9)
	assert.Equal(t, 1, F.DeltaUpdates())
	assert.Equal(t, 1, F.Rebuilds())

	//the delta and a full evaluation on the same grid agree
	full := F.eval
	b, _ := clj.Extract(w, F.Table())
	want, err := full.Energy(b)
	require.NoError(t, err)
	assert.InDelta(t, want.Total(), e.Total(), 1e-9)
}

//TestDeltaMatchesScratch checks incremental updates against forcefields built
//from scratch for each configuration, with far atoms on the grid. The Coulomb
//cutoff holds the whole lattice, and whole-molecule moves are multiples of the
//spacing while atom moves keep the lower corner of the probes, so both grids
//share their nodes and only atoms that change between the close list and the
//grid contribute interpolation differences.
func TestDeltaMatchesScratch(t *testing.T) {
	policies := []clj.Policy{clj.Cutoff, clj.Shifted, clj.ReactionField}
	for _, p := range policies {
		t.Run(p.String(), func(t *testing.T) {
			O := options(5, 30)
			O.Spacing = 0.25
			O.CLJ.Policy = p
			F := New(nil, O)
			require.NoError(t, F.AddProbe(water(t, 1, 0, 0, 0)))
			require.NoError(t, F.AddEnvironment(lattice(t, 100, 3, 4, 4)...))
			_, err := F.Energy()
			require.NoError(t, err)
			require.NotZero(t, F.Grid().Built.Far)

			moves := []func() error{
				func() error { return F.Update(water(t, 1, 0.5, 0, 0)) },
				func() error {
					c, _ := v3.NewMatrix([]float64{1.66, 0.3, 0.2})
					return F.UpdateAtoms(1, []int{1}, c)
				},
				func() error {
					c, _ := v3.NewMatrix([]float64{0.7, 0, 0.3, 1.8, 0.4, 0.1})
					return F.UpdateAtoms(1, []int{0, 1}, c)
				},
				func() error { return F.Update(water(t, 1, 0, 0.5, -0.5)) },
			}
			for i, mv := range moves {
				require.NoError(t, mv())
				e, err := F.Energy()
				require.NoError(t, err)

				m, _ := F.Probes().Molecule(1)
				S := New(nil, O)
				require.NoError(t, S.AddProbe(m.Copy()))
				require.NoError(t, S.AddEnvironment(lattice(t, 100, 3, 4, 4)...))
				want, err := S.Energy()
				require.NoError(t, err)
				assert.InDelta(t, want.Coulomb, e.Coulomb, 1.0, "move %d", i)
				assert.InDelta(t, want.LJ, e.LJ, 1e-8, "move %d", i)
			}
			assert.Equal(t, 1, F.Rebuilds())
			assert.Equal(t, len(moves), F.DeltaUpdates())
		})
	}
}

func TestLeavingTheGridRebuildsOnce(t *testing.T) {
	F, w := system(t, 6, 12)
	_, err := F.Energy()
	require.NoError(t, err)
	moved := w.Copy()
	for i := 0; i < moved.Len(); i++ {
		v := moved.Coords.Vec(i)
		v.X += 6
		moved.Coords.SetVec(i, v)
	}
	require.NoError(t, F.Update(moved))
	_, err = F.Energy()
	require.NoError(t, err)
	assert.Equal(t, 2, F.Rebuilds())
	assert.Equal(t, 0, F.DeltaUpdates())
	assert.True(t, F.Grid().Encloses(F.batches[w.Num]))
}

func TestEnvironmentChangeRebuilds(t *testing.T) {
	F, _ := system(t, 6, 12)
	_, err := F.Energy()
	require.NoError(t, err)
	env := F.Environment().Molecules()[0].Copy()
	env.Coords.SetVec(0, r3.Scale(2, env.Coords.Vec(0)))
	require.NoError(t, F.Update(env))
	assert.Equal(t, NoGrid, F.State())
	_, err = F.Energy()
	require.NoError(t, err)
	assert.Equal(t, 2, F.Rebuilds())

	require.NoError(t, F.Remove(env.Num))
	_, err = F.Energy()
	require.NoError(t, err)
	assert.Equal(t, 3, F.Rebuilds())
}

func TestMembershipErrors(t *testing.T) {
	F, w := system(t, 6, 12)
	err := F.AddEnvironment(w)
	assert.True(t, chem.IsKind(err, chem.ConfigurationError))
	err = F.Remove(5000)
	assert.ErrorIs(t, err, chem.ErrNotFound)
	err = F.Update(ion(t, 5000, 1, 0, 0, 0))
	assert.ErrorIs(t, err, chem.ErrNotFound)
	c, _ := v3.NewMatrix([]float64{0, 0, 0})
	err = F.UpdateAtoms(w.Num, []int{7}, c)
	assert.ErrorIs(t, err, chem.ErrConfiguration)
	err = F.UpdateAtoms(100, []int{0}, c)
	assert.ErrorIs(t, err, chem.ErrConfiguration)
}

func TestFixedAtoms(t *testing.T) {
	table := lj.NewTable()
	A := New(table, options(6, 12))
	B := New(table, options(6, 12))
	require.NoError(t, A.AddProbe(water(t, 1, 0, 0, 0)))
	require.NoError(t, B.AddProbe(water(t, 1, 0.5, 0, 0)))
	B.ShareFixedAtoms(A.FixedAtoms())
	require.NoError(t, A.AddFixedMolecules(lattice(t, 100, 2, 4, 4)...))
	assert.Equal(t, A.FixedAtoms().Len(), B.FixedAtoms().Len())

	ea, err := A.Energy()
	require.NoError(t, err)
	assert.NotZero(t, ea.Coulomb)
	_, err = B.Energy()
	require.NoError(t, err)

	//a fixed atom added through A is seen by B
	near, err := clj.Extract(ion(t, 900, 1, 3, 0, 0), table)
	require.NoError(t, err)
	require.NoError(t, A.AddFixedAtoms(near))
	eb, err := B.Energy()
	require.NoError(t, err)
	assert.Equal(t, 2, B.Rebuilds())

	//and is equivalent to having it as an environment molecule
	C := New(table, options(6, 12))
	require.NoError(t, C.AddProbe(water(t, 1, 0.5, 0, 0)))
	require.NoError(t, C.AddFixedGroup(groupOf(t, lattice(t, 100, 2, 4, 4))))
	require.NoError(t, C.AddEnvironment(ion(t, 900, 1, 3, 0, 0)))
	ec, err := C.Energy()
	require.NoError(t, err)
	assert.InDelta(t, eb.Coulomb, ec.Coulomb, 1e-8)
	assert.InDelta(t, eb.LJ, ec.LJ, 1e-8)
}

func groupOf(t *testing.T, mols []*chem.Molecule) *chem.MoleculeGroup {
	G := chem.NewMoleculeGroup("fixed")
	require.NoError(t, G.Add(mols...))
	return G
}

func TestCapacityWarning(t *testing.T) {
	O := options(6, 12)
	O.Buffer = 0
	F := New(nil, O)
	require.NoError(t, F.AddProbe(ion(t, 1, 1, 0, 0, 0), ion(t, 2, -1, 300, 0, 0)))
	require.NoError(t, F.AddEnvironment(ion(t, 3, 1, 150, 5, 0)))
	_, err := F.Energy()
	require.NoError(t, err)
	require.Len(t, F.LastWarnings(), 1)
	assert.ErrorIs(t, F.LastWarnings()[0], chem.ErrCapacity)
	assert.LessOrEqual(t, F.Grid().Dims[0], grid.MaxDim)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	F, w := system(t, 6, 12)
	F.SetReactionField(true)
	e, err := F.Energy()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, F.Save(&buf))
	assert.Equal(t, Magic, buf.String()[:4])

	//a different table, so the LJ ids must be remapped
	table := lj.NewTable()
	table.Add(lj.Param{Sigma: 1, Epsilon: 1})
	L := New(table)
	require.NoError(t, L.AddProbe(w.Copy()))
	require.NoError(t, L.AddEnvironment(lattice(t, 100, 3, 4, 4)...))
	require.NoError(t, L.Load(&buf))
	assert.Equal(t, Clean, L.State())

	g, h := F.Grid(), L.Grid()
	assert.Equal(t, g.Box, h.Box)
	assert.Equal(t, g.Dims, h.Dims)
	assert.Equal(t, g.Spacing, h.Spacing)
	assert.Equal(t, g.Pot, h.Pot)
	assert.Equal(t, g.Params, h.Params)
	assert.Equal(t, g.Close.X, h.Close.X)
	assert.Equal(t, g.Close.Q, h.Close.Q)
	assert.Equal(t, F.Options().CLJ, L.Options().CLJ)

	el, err := L.Energy()
	require.NoError(t, err)
	assert.Equal(t, e, el)
	diff, err := L.Check()
	require.NoError(t, err)
	assert.Equal(t, clj.Components{}, diff)

	//and it goes on working incrementally
	c, _ := v3.NewMatrix([]float64{0.2, 0.1, 0})
	require.NoError(t, L.UpdateAtoms(w.Num, []int{0}, c))
	_, err = L.Energy()
	require.NoError(t, err)
	assert.Equal(t, 1, L.DeltaUpdates())
	assert.Equal(t, 0, L.Rebuilds())
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(Magic)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, FormatVersion+1))
	F := New(nil)
	err := F.Load(&buf)
	assert.ErrorIs(t, err, chem.ErrVersion)
	assert.True(t, chem.IsCritical(err))

	err = F.Load(bytes.NewBufferString("NOPE...."))
	assert.ErrorIs(t, err, chem.ErrConfiguration)
}

func TestLoadRejectsOtherProbes(t *testing.T) {
	F, _ := system(t, 6, 12)
	var buf bytes.Buffer
	require.NoError(t, F.Save(&buf))
	L := New(nil)
	require.NoError(t, L.AddProbe(water(t, 2, 0, 0, 0)))
	err := L.Load(&buf)
	assert.ErrorIs(t, err, chem.ErrConfiguration)
	assert.Equal(t, NoGrid, L.State())
}
