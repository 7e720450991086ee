// Package render produces transparent-background rasters of STL meshes under
// a supplied rotation, using an off-screen software renderer.
package render

import (
	"fmt"
	"image"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/fauxgl"
	"gonum.org/v1/gonum/mat"

	"github.com/penlab-data/synth.dataset/internal/config"
	"github.com/penlab-data/synth.dataset/internal/fsutil"
)

const (
	// fieldOfView matches the fixed camera used for every render, in degrees.
	fieldOfView = 30
)

// Renderer renders meshes off-screen at a fraction of the base window size.
type Renderer struct {
	// BaseWidth and BaseHeight are the unscaled render window dimensions.
	// A render at scale s produces a raster of (s*BaseWidth) x (s*BaseHeight).
	BaseWidth  int
	BaseHeight int

	// ColorFor maps a mesh identifier to its hex render color.
	ColorFor func(meshID string) string
}

// NewRenderer builds a Renderer from generator config.
func NewRenderer(cfg *config.GeneratorConfig) *Renderer {
	return &Renderer{
		BaseWidth:  cfg.GetBaseWindowWidth(),
		BaseHeight: cfg.GetBaseWindowHeight(),
		ColorFor:   cfg.ColorFor,
	}
}

// MeshID derives the class identifier from a mesh path: the file base name
// with the extension stripped.
func MeshID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ListMeshes returns the sorted .stl file paths directly under dir.
func ListMeshes(fs fsutil.FileSystem, dir string) ([]string, error) {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list mesh directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".stl") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}

// SampleScale draws the per-mesh scale factor: meshes whose identifier
// contains the marker token use the marker range, all others the standard
// range.
func SampleScale(rng *rand.Rand, meshID string, cfg *config.GeneratorConfig) float64 {
	lo, hi := cfg.GetScaleMin(), cfg.GetScaleMax()
	if strings.Contains(meshID, cfg.GetMarkerToken()) {
		lo, hi = cfg.GetMarkerScaleMin(), cfg.GetMarkerScaleMax()
	}
	return lo + rng.Float64()*(hi-lo)
}

// RasterSize returns the pixel dimensions of a render at the given scale.
// Both dimensions are at least 1.
func (r *Renderer) RasterSize(scale float64) (width, height int) {
	width = int(scale * float64(r.BaseWidth))
	height = int(scale * float64(r.BaseHeight))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

// RenderFile loads the STL at meshPath, applies the homogeneous rotation and
// renders it against a transparent background. The camera sits at
// (0, 0, -2*d) where d is the rotated mesh's bounding diagonal, looking at
// the origin with +y up.
func (r *Renderer) RenderFile(meshPath string, rot *mat.Dense, scale float64) (*image.NRGBA, error) {
	mesh, err := fauxgl.LoadSTL(meshPath)
	if err != nil {
		return nil, fmt.Errorf("load mesh %s: %w", meshPath, err)
	}
	if len(mesh.Triangles) == 0 {
		return nil, fmt.Errorf("mesh %s has no triangles", meshPath)
	}

	mesh.Transform(toFauxgl(rot))

	diagonal := mesh.BoundingBox().Size().Length()
	if diagonal == 0 {
		return nil, fmt.Errorf("mesh %s is degenerate", meshPath)
	}

	width, height := r.RasterSize(scale)
	context := fauxgl.NewContext(width, height)
	context.ClearColorBufferWith(fauxgl.Color{})

	eye := fauxgl.V(0, 0, -2*diagonal)
	center := fauxgl.V(0, 0, 0)
	up := fauxgl.V(0, 1, 0)
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fieldOfView, aspect, diagonal/100, diagonal*10)

	light := fauxgl.V(-0.75, 1, 0.25).Normalize()
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.HexColor(r.ColorFor(MeshID(meshPath)))
	context.Shader = shader
	context.DrawMesh(mesh)

	return imaging.Clone(context.Image()), nil
}

// toFauxgl converts a gonum 4x4 homogeneous transform to a fauxgl matrix.
func toFauxgl(m *mat.Dense) fauxgl.Matrix {
	return fauxgl.Matrix{
		X00: m.At(0, 0), X01: m.At(0, 1), X02: m.At(0, 2), X03: m.At(0, 3),
		X10: m.At(1, 0), X11: m.At(1, 1), X12: m.At(1, 2), X13: m.At(1, 3),
		X20: m.At(2, 0), X21: m.At(2, 1), X22: m.At(2, 2), X23: m.At(2, 3),
		X30: m.At(3, 0), X31: m.At(3, 1), X32: m.At(3, 2), X33: m.At(3, 3),
	}
}
