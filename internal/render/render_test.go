package render

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penlab-data/synth.dataset/internal/config"
	"github.com/penlab-data/synth.dataset/internal/fsutil"
	"github.com/penlab-data/synth.dataset/internal/rotation"
)

// tetrahedronSTL is a minimal ASCII STL: four faces enclosing a small volume,
// enough for a non-degenerate bounding box.
const tetrahedronSTL = `solid tetra
facet normal 0 0 -1
  outer loop
    vertex 0 0 0
    vertex 1 0 0
    vertex 0 1 0
  endloop
endfacet
facet normal 0 -1 0
  outer loop
    vertex 0 0 0
    vertex 0 0 1
    vertex 1 0 0
  endloop
endfacet
facet normal -1 0 0
  outer loop
    vertex 0 0 0
    vertex 0 1 0
    vertex 0 0 1
  endloop
endfacet
facet normal 1 1 1
  outer loop
    vertex 1 0 0
    vertex 0 0 1
    vertex 0 1 0
  endloop
endfacet
endsolid tetra
`

func writeTetrahedron(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(tetrahedronSTL), 0644))
	return path
}

func TestMeshID(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "sun_c", MeshID("/data/stl_files/sun_c.stl"))
	assert.Equal(t, "lid_c", MeshID("lid_c.STL"))
}

func TestListMeshes(t *testing.T) {
	t.Parallel()
	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, fs.WriteFile("/stl/b.stl", []byte("x"), 0644))
	require.NoError(t, fs.WriteFile("/stl/a.stl", []byte("x"), 0644))
	require.NoError(t, fs.WriteFile("/stl/readme.txt", []byte("x"), 0644))
	require.NoError(t, fs.MkdirAll("/stl/nested", 0755))

	paths, err := ListMeshes(fs, "/stl")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("/stl", "a.stl"), filepath.Join("/stl", "b.stl")}, paths)
}

func TestSampleScale(t *testing.T) {
	t.Parallel()
	cfg := config.EmptyGeneratorConfig()
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 200; i++ {
		s := SampleScale(rng, "sun_c", cfg)
		assert.GreaterOrEqual(t, s, config.DefaultScaleMin)
		assert.Less(t, s, config.DefaultScaleMax)

		m := SampleScale(rng, "lid_c", cfg)
		assert.GreaterOrEqual(t, m, config.DefaultMarkerScaleMin)
		assert.Less(t, m, config.DefaultMarkerScaleMax)
	}
}

func TestRasterSize(t *testing.T) {
	t.Parallel()
	r := &Renderer{BaseWidth: 1024, BaseHeight: 768}

	w, h := r.RasterSize(0.25)
	assert.Equal(t, 256, w)
	assert.Equal(t, 192, h)

	w, h = r.RasterSize(0.0001)
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestRenderFile(t *testing.T) {
	t.Parallel()
	cfg := config.EmptyGeneratorConfig()
	renderer := NewRenderer(cfg)
	meshPath := writeTetrahedron(t, t.TempDir(), "cap_c.stl")

	rng := rand.New(rand.NewSource(11))
	scale := 0.1
	raster, err := renderer.RenderFile(meshPath, rotation.Random(rng), scale)
	require.NoError(t, err)

	bounds := raster.Bounds()
	assert.Equal(t, int(scale*1024), bounds.Dx())
	assert.Equal(t, int(scale*768), bounds.Dy())
}

func TestRenderFileErrors(t *testing.T) {
	t.Parallel()
	renderer := NewRenderer(config.EmptyGeneratorConfig())
	rot := rotation.Compose(0, 0, 0)

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := renderer.RenderFile(filepath.Join(t.TempDir(), "absent.stl"), rot, 0.1)
		assert.Error(t, err)
	})

	t.Run("empty mesh", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "empty.stl")
		require.NoError(t, os.WriteFile(path, []byte("solid empty\nendsolid empty\n"), 0644))
		_, err := renderer.RenderFile(path, rot, 0.1)
		assert.Error(t, err)
	})
}

func TestToFauxglPreservesEntries(t *testing.T) {
	t.Parallel()
	rot := rotation.Compose(0.1, 0.2, 0.3)
	m := toFauxgl(rot)

	assert.InDelta(t, rot.At(0, 0), m.X00, 1e-12)
	assert.InDelta(t, rot.At(1, 2), m.X12, 1e-12)
	assert.InDelta(t, rot.At(2, 1), m.X21, 1e-12)
	assert.Equal(t, 1.0, m.X33)

	// Sanity: rotation block magnitudes stay in [-1, 1].
	for _, v := range []float64{m.X00, m.X01, m.X02, m.X10, m.X11, m.X12, m.X20, m.X21, m.X22} {
		assert.LessOrEqual(t, math.Abs(v), 1.0+1e-12)
	}
}

func TestListMeshesMissingDir(t *testing.T) {
	t.Parallel()
	fs := fsutil.NewMemoryFileSystem()
	_, err := ListMeshes(fs, "/absent")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "list mesh directory"))
}
