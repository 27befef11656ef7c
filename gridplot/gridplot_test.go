package gridplot

import (
	"os"
	"path/filepath"
	"testing"

	chem "github.com/rmera/cljgrid"
	"github.com/rmera/cljgrid/clj"
	"github.com/rmera/cljgrid/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"
)

var _ plotter.GridXYZ = &Slice{}

func testGrid(t *testing.T) *grid.Grid {
	probes := new(clj.Atoms)
	probes.Append(0, 0, 0, 1, 0, 1)
	probes.Append(4, 4, 2, 1, 0, 1)
	env := new(clj.Atoms)
	env.Append(12, 2, 1, chem.ReducedCharge(-1), 0, 2)
	O := grid.DefaultOptions()
	O.Spacing = 0.5
	O.Buffer = 1
	O.CLJ.LJCutoff = 3
	g, err := grid.Build(probes, []*clj.Atoms{env}, O)
	require.NoError(t, err)
	return g
}

func TestSlice(t *testing.T) {
	g := testGrid(t)
	S, err := NewSlice(g, 2)
	require.NoError(t, err)
	c, r := S.Dims()
	assert.Equal(t, g.Dims[0], c)
	assert.Equal(t, g.Dims[1], r)
	assert.Equal(t, g.At(3, 4, 2), S.Z(3, 4))
	assert.Equal(t, g.Node(3, 4, 2).X, S.X(3))
	assert.Equal(t, g.Node(3, 4, 2).Y, S.Y(4))
	assert.Equal(t, 0.0, S.Height())
	min, max := S.Range()
	assert.Less(t, min, max)
	assert.Less(t, max, 0.0) //only a negative charge around

	_, err = NewSlice(g, g.Dims[2])
	assert.ErrorIs(t, err, chem.ErrConfiguration)
	S, err = SliceAt(g, 1.1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, S.Height(), 1e-12)
}

func TestSave(t *testing.T) {
	g := testGrid(t)
	name := filepath.Join(t.TempDir(), "slice.png")
	require.NoError(t, Save(g, 1, "", name))
	info, err := os.Stat(name)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
