package grid

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	chem "github.com/rmera/cljgrid"
	"github.com/rmera/cljgrid/clj"
	"github.com/rmera/cljgrid/lj"
	"github.com/rmera/cljgrid/space"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

var sqrtK = math.Sqrt(chem.OneOverFourPiEps0)

//atoms builds a batch from (x,y,z,q) quadruplets, q in e.
func atoms(t *testing.T, data ...float64) *clj.Atoms {
	t.Helper()
	A := new(clj.Atoms)
	for i := 0; i+3 < len(data); i += 4 {
		A.Append(data[i], data[i+1], data[i+2], data[i+3]*sqrtK, 0, i/4)
	}
	return A
}

func opts(spacing, buffer, rlj, rc float64) Options {
	O := DefaultOptions()
	O.Spacing = spacing
	O.Buffer = buffer
	O.CLJ.LJCutoff = rlj
	O.CLJ.CoulombCutoff = rc
	return O
}

func TestMinimumDistanceToBox(t *testing.T) {
	B := Box{Min: r3.Vec{}, Max: r3.Vec{X: 2, Y: 2, Z: 2}}
	assert.Equal(t, 0.0, MinimumDistanceToBox(r3.Vec{X: 1, Y: 1, Z: 1}, B))
	assert.Equal(t, 0.0, MinimumDistanceToBox(r3.Vec{X: 2, Y: 0, Z: 1}, B))
	assert.InDelta(t, 3.0, MinimumDistanceToBox(r3.Vec{X: 5, Y: 1, Z: 1}, B), 1e-12)
	assert.InDelta(t, math.Sqrt(2), MinimumDistanceToBox(r3.Vec{X: -1, Y: 3, Z: 1}, B), 1e-12)
	assert.Equal(t, r3.Vec{X: 1, Y: 1, Z: 1}, B.Center())
}

func TestBuildEmptyProbes(t *testing.T) {
	G, err := Build(new(clj.Atoms), nil, DefaultOptions())
	assert.NoError(t, err)
	assert.Nil(t, G)
}

func TestBuildInvalidOptions(t *testing.T) {
	_, err := Build(atoms(t, 0, 0, 0, 1), nil, opts(0, 1, 5, 10))
	assert.ErrorIs(t, err, chem.ErrConfiguration)
	_, err = Build(atoms(t, 0, 0, 0, 1), nil, opts(1, 1, 5, 0))
	assert.ErrorIs(t, err, chem.ErrConfiguration)
}

func TestDimensionsAndSnap(t *testing.T) {
	probes := atoms(t, 0, 0, 0, 1, 10, 4, 2.5, 0)
	G, err := Build(probes, nil, opts(1, 0, 5, 10))
	require.NoError(t, err)
	assert.Equal(t, [3]int{12, 6, 4}, G.Dims)
	assert.Equal(t, 12*6*4, G.Len())
	assert.Equal(t, r3.Vec{X: 11, Y: 5, Z: 3}, G.Box.Max)
	assert.Empty(t, G.Warnings)
	assert.Equal(t, G.Node(11, 5, 3), G.Box.Max)
	assert.Equal(t, 11+5*12+3*72, G.Index(11, 5, 3))
}

func TestCoarsening(t *testing.T) {
	probes := atoms(t, 0, 0, 0, 1, 300, 10, 10, 0)
	G, err := Build(probes, nil, opts(1, 0, 5, 10))
	require.NoError(t, err)
	for _, d := range G.Dims {
		assert.LessOrEqual(t, d, MaxDim)
	}
	assert.Equal(t, MaxDim, G.Dims[0])
	assert.Greater(t, G.Spacing, 1.0)
	assert.True(t, G.Box.Max.X >= 300)
	require.Len(t, G.Warnings, 1)
	assert.True(t, chem.IsKind(G.Warnings[0], chem.CapacityWarning))
	assert.False(t, chem.IsCritical(G.Warnings[0]))
	//no finer spacing would respect the cap
	assert.Greater(t, axisDim(300, math.Nextafter(G.Spacing, 0)), MaxDim)
}

func TestCoarseningIsMinimal(t *testing.T) {
	for _, extent := range []float64{249, 300, 1000.3, 497.5} {
		dims, s, coarsened := dimensions(r3.Vec{X: extent, Y: 1, Z: 2}, 0.5)
		require.True(t, coarsened)
		assert.Equal(t, MaxDim, dims[0], "extent %g", extent)
		assert.Greater(t, axisDim(extent, math.Nextafter(s, 0)), MaxDim, "extent %g", extent)
		assert.GreaterOrEqual(t, float64(dims[0]-1)*s, extent)
	}
	_, s, _ := dimensions(r3.Vec{X: 249, Y: 1, Z: 1}, 0.5)
	assert.InDelta(t, 1.0, s, 1e-9)

	dims, s, coarsened := dimensions(r3.Vec{X: 10, Y: 4, Z: 0}, 0.5)
	assert.False(t, coarsened)
	assert.Equal(t, 0.5, s)
	assert.Equal(t, [3]int{22, 10, 2}, dims)
}

func TestClassification(t *testing.T) {
	probes := atoms(t, 0, 0, 0, 1)
	env := atoms(t,
		3, 0, 0, -1, //close
		10, 0, 0, 1, //far
		10, 0, 1, 0, //far but uncharged
		30, 0, 0, 1, //beyond the Coulomb cutoff
	)
	G, err := Build(probes, []*clj.Atoms{env}, opts(1, 0, 5, 15))
	require.NoError(t, err)
	assert.Equal(t, BuildStats{Close: 1, Far: 1, Skipped: 2, Chunks: 1}, G.Built)
	require.Equal(t, 1, G.Close.Len())
	assert.Equal(t, 3.0, G.Close.X[0])
	assert.Equal(t, 0, G.Close.Mol[0])
}

func TestZeroLJCutoffEmptiesCloseList(t *testing.T) {
	probes := atoms(t, 0, 0, 0, 1)
	env := atoms(t, 3, 0, 0, -1, 0.5, 0.5, 0.5, 1, 8, 0, 0, 1)
	G, err := Build(probes, []*clj.Atoms{env}, opts(1, 0, 0, 15))
	require.NoError(t, err)
	assert.Equal(t, 0, G.Close.Len())
	assert.Equal(t, 3, G.Built.Far)
}

func TestPeriodicImages(t *testing.T) {
	pb, err := space.NewPeriodicBox(r3.Vec{X: 50, Y: 50, Z: 50})
	require.NoError(t, err)
	O := opts(1, 0, 5, 15)
	O.Space = pb
	G, err := Build(atoms(t, 0, 0, 0, 1), []*clj.Atoms{atoms(t, 47, 0, 0, -1)}, O)
	require.NoError(t, err)
	require.Equal(t, 1, G.Close.Len())
	assert.InDelta(t, -3, G.Close.X[0], 1e-12)
}

//The potential of one ion at a node is exact, and the interpolation
//error close to it is small.
func TestIonPair(t *testing.T) {
	table := lj.NewTable()
	probe := atoms(t, 0, 0, 0, 1)
	far := atoms(t, 17, 0, 0, -1)
	G, err := Build(probe, []*clj.Atoms{far}, opts(1, 10, 5, 30))
	require.NoError(t, err)
	require.Equal(t, 1, G.Built.Far)
	exact := -chem.OneOverFourPiEps0 / 17
	e, err := G.Coulomb(probe)
	require.NoError(t, err)
	assert.InEpsilon(t, exact, e, 0.03)

	moved := atoms(t, 0.5, 0.3, 0.2, 1)
	e, err = G.Coulomb(moved)
	require.NoError(t, err)
	r := math.Sqrt(16.5*16.5 + 0.09 + 0.04)
	assert.InEpsilon(t, -chem.OneOverFourPiEps0/r, e, 0.03)

	//in the close list, the energy is exact
	near := atoms(t, 3, 0, 0, -1)
	G, err = Build(probe, []*clj.Atoms{near}, opts(1, 10, 5, 30))
	require.NoError(t, err)
	require.Equal(t, 1, G.Close.Len())
	coul, _ := clj.NewKernel(G.Params, table).CloseEnergy(probe, G.Close)
	assert.InDelta(t, -chem.OneOverFourPiEps0/3, coul, 1e-9)
	e, err = G.Coulomb(probe)
	require.NoError(t, err)
	assert.Equal(t, 0.0, e)
}

func randomShell(r *rand.Rand, n int, rmin, rmax float64) []float64 {
	var data []float64
	for len(data) < 4*n {
		p := r3.Vec{X: r.Float64()*2 - 1, Y: r.Float64()*2 - 1, Z: r.Float64()*2 - 1}
		norm := r3.Norm(p)
		if norm < 0.1 || norm > 1 {
			continue
		}
		d := rmin + r.Float64()*(rmax-rmin)
		p = r3.Scale(d/norm, p)
		data = append(data, p.X, p.Y, p.Z, r.Float64()*2-1)
	}
	return data
}

func TestChunkSizeIndependence(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	probes := atoms(t, -1, -1, -1, 1, 1, 1, 1, -1)
	env := atoms(t, randomShell(rnd, 300, 8, 14)...)
	var pots [][]float64
	for _, chunk := range []int{1024, 64, 7, 1} {
		O := opts(0.5, 1, 2, 15)
		O.ChunkSize = chunk
		G, err := Build(probes, []*clj.Atoms{env}, O)
		require.NoError(t, err)
		assert.Equal(t, 0, G.Built.Close)
		assert.Equal(t, (300+chunk-1)/chunk, G.Built.Chunks)
		pots = append(pots, G.Pot)
	}
	for _, p := range pots[1:] {
		assert.True(t, floats.EqualApprox(pots[0], p, 1e-9))
	}
}

func TestAccumulatorMatchesDirectSum(t *testing.T) {
	for _, policy := range []clj.Policy{clj.Cutoff, clj.Shifted, clj.ReactionField} {
		rnd := rand.New(rand.NewSource(3))
		O := opts(1, 1, 2, 9)
		O.CLJ.Policy = policy
		env := atoms(t, randomShell(rnd, 50, 3, 10)...)
		G, err := Build(atoms(t, 0, 0, 0, 1), []*clj.Atoms{env}, O)
		require.NoError(t, err)
		krf, crf := O.CLJ.ReactionFieldConstants()
		rc := O.CLJ.CoulombCutoff
		for _, n := range [][3]int{{0, 0, 0}, {1, 2, 0}, {3, 3, 3}} {
			node := G.Node(n[0], n[1], n[2])
			var want float64
			for a := 0; a < env.Len(); a++ {
				if MinimumDistanceToBox(env.Point(a), G.Box) < O.CLJ.LJCutoff {
					continue
				}
				r := r3.Norm(r3.Sub(node, env.Point(a)))
				if r >= rc {
					continue
				}
				switch policy {
				case clj.Shifted:
					want += env.Q[a] * (1/r - 1/rc + (r-rc)/(rc*rc))
				case clj.ReactionField:
					want += env.Q[a] * (1/r + krf*r*r - crf)
				default:
					want += env.Q[a] / r
				}
			}
			assert.InDelta(t, want, G.At(n[0], n[1], n[2]), 1e-9, policy.String())
		}
	}
}

func TestAccumulatorMismatch(t *testing.T) {
	G, err := Build(atoms(t, 0, 0, 0, 1), nil, opts(1, 1, 2, 9))
	require.NoError(t, err)
	err = NewAccumulator(G).Add([]float64{1, 2}, []float64{1, 2}, []float64{1}, []float64{1, 2})
	assert.True(t, chem.IsKind(err, chem.ConfigurationError))
	assert.NoError(t, NewAccumulator(G).Add(nil, nil, nil, nil))
	assert.Equal(t, 0.0, floats.Sum(G.Pot))
}

func TestInterpolateLinearIsExact(t *testing.T) {
	G, err := Build(atoms(t, 0, 0, 0, 1, 4, 3, 2, 1), nil, opts(0.5, 0, 2, 9))
	require.NoError(t, err)
	lin := func(p r3.Vec) float64 { return 1 + 2*p.X - 3*p.Y + 0.5*p.Z }
	for k := 0; k < G.Dims[2]; k++ {
		for j := 0; j < G.Dims[1]; j++ {
			for i := 0; i < G.Dims[0]; i++ {
				G.Pot[G.Index(i, j, k)] = lin(G.Node(i, j, k))
			}
		}
	}
	rnd := rand.New(rand.NewSource(1))
	for n := 0; n < 100; n++ {
		p := r3.Vec{X: rnd.Float64() * 4, Y: rnd.Float64() * 3, Z: rnd.Float64() * 2}
		v, err := G.Interpolate(p)
		require.NoError(t, err)
		assert.InDelta(t, lin(p), v, 1e-9)
	}
}

func TestInterpolateFacesAndOutside(t *testing.T) {
	G, err := Build(atoms(t, 0, 0, 0, 1, 2, 2, 2, 1), nil, opts(1, 0, 2, 9))
	require.NoError(t, err)
	for i := range G.Pot {
		G.Pot[i] = float64(i)
	}
	v, err := G.Interpolate(G.Box.Max)
	require.NoError(t, err)
	assert.InDelta(t, G.At(G.Dims[0]-1, G.Dims[1]-1, G.Dims[2]-1), v, 1e-9)
	v, err = G.Interpolate(G.Box.Min)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = G.Interpolate(r3.Add(G.Box.Max, r3.Vec{X: 0.5}))
	assert.True(t, errors.Is(err, chem.ErrOutOfGrid))
	assert.True(t, chem.IsCritical(err))
	_, err = G.Interpolate(r3.Vec{X: -0.2, Y: 1, Z: 1})
	assert.ErrorIs(t, err, chem.ErrOutOfGrid)

	assert.True(t, G.Encloses(atoms(t, 1, 1, 1, 1)))
	assert.False(t, G.Encloses(atoms(t, 1, 1, 5, 1)))
}

func TestStats(t *testing.T) {
	G, err := Build(atoms(t, 0, 0, 0, 1), nil, opts(1, 0, 2, 9))
	require.NoError(t, err)
	copy(G.Pot, []float64{-2, 0, 0, 0, 0, 0, 0, 6})
	S := G.Stats()
	assert.Equal(t, Stats{Min: -2, Max: 6, Mean: 0.5}, S)
}

func BenchmarkAccumulator(b *testing.B) {
	rnd := rand.New(rand.NewSource(5))
	probes := new(clj.Atoms)
	probes.Append(0, 0, 0, 1, 0, 0)
	probes.Append(6, 6, 6, 1, 0, 0)
	G, err := Build(probes, nil, opts(0.5, 2, 2, 12))
	if err != nil {
		b.Fatal(err)
	}
	data := randomShell(rnd, 1024, 6, 14)
	var xs, ys, zs, qs []float64
	for i := 0; i < len(data); i += 4 {
		xs, ys, zs, qs = append(xs, data[i]+3), append(ys, data[i+1]+3), append(zs, data[i+2]+3), append(qs, data[i+3])
	}
	acc := NewAccumulator(G)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := acc.Add(xs, ys, zs, qs); err != nil {
			b.Fatal(err)
		}
	}
}
