// Package synth orchestrates synthetic training-image generation: meshes are
// rendered under random rotations, composited onto background photographs at
// grid positions, and labeled with normalized bounding boxes.
package synth

import (
	"bytes"
	"fmt"
	"image"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/penlab-data/synth.dataset/internal/compose"
	"github.com/penlab-data/synth.dataset/internal/config"
	"github.com/penlab-data/synth.dataset/internal/diag"
	"github.com/penlab-data/synth.dataset/internal/fsutil"
	"github.com/penlab-data/synth.dataset/internal/labels"
	"github.com/penlab-data/synth.dataset/internal/monitoring"
	"github.com/penlab-data/synth.dataset/internal/placement"
	"github.com/penlab-data/synth.dataset/internal/render"
	"github.com/penlab-data/synth.dataset/internal/rotation"
)

// RenderFunc produces the raster for one mesh under the given rotation and
// scale. Injectable so the pipeline is testable without a real renderer.
type RenderFunc func(meshPath string, rot *mat.Dense, scale float64) (*image.NRGBA, error)

// Generator runs the synthetic-data pipeline over a directory of backgrounds.
type Generator struct {
	FS       fsutil.FileSystem
	Cfg      *config.GeneratorConfig
	Rng      *rand.Rand
	Render   RenderFunc
	Recorder *diag.Recorder // optional instrumentation

	// TempRoot hosts the per-run scratch directory. Defaults to os.TempDir().
	TempRoot string
}

// NewGenerator wires a Generator with the real mesh renderer.
func NewGenerator(fs fsutil.FileSystem, cfg *config.GeneratorConfig, rng *rand.Rand) *Generator {
	renderer := render.NewRenderer(cfg)
	return &Generator{
		FS:     fs,
		Cfg:    cfg,
		Rng:    rng,
		Render: renderer.RenderFile,
	}
}

// ImageResult reports the outcome for one background image.
type ImageResult struct {
	Input   string
	Output  string
	Placed  int
	Skipped int
	Err     error
}

// Summary aggregates a whole generation run.
type Summary struct {
	ImagesProcessed int
	ImagesFailed    int
	ObjectsPlaced   int
	ObjectsSkipped  int
}

func (s Summary) String() string {
	return fmt.Sprintf("images: %d ok, %d failed; objects: %d placed, %d skipped",
		s.ImagesProcessed, s.ImagesFailed, s.ObjectsPlaced, s.ObjectsSkipped)
}

// Run processes every background image in backgroundsDir against the meshes
// in meshDir, writing composited images to outImageDir and label files to
// outLabelDir. Per-object and per-image failures are logged and skipped;
// only top-level path errors abort the run.
func (g *Generator) Run(meshDir, backgroundsDir, outImageDir, outLabelDir string) (Summary, []ImageResult, error) {
	meshes, err := render.ListMeshes(g.FS, meshDir)
	if err != nil {
		return Summary{}, nil, err
	}
	if len(meshes) == 0 {
		return Summary{}, nil, fmt.Errorf("no .stl files in %s", meshDir)
	}

	backgrounds, err := g.listBackgrounds(backgroundsDir)
	if err != nil {
		return Summary{}, nil, err
	}
	if len(backgrounds) == 0 {
		return Summary{}, nil, fmt.Errorf("no background images in %s", backgroundsDir)
	}

	for _, dir := range []string{outImageDir, outLabelDir} {
		if err := g.FS.MkdirAll(dir, 0755); err != nil {
			return Summary{}, nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	// Scratch space is scoped to this run so concurrent invocations cannot
	// collide, and fully removed afterwards.
	tempRoot := g.TempRoot
	if tempRoot == "" {
		tempRoot = os.TempDir()
	}
	runTemp := filepath.Join(tempRoot, "synth-"+uuid.NewString())
	if err := g.FS.MkdirAll(runTemp, 0755); err != nil {
		return Summary{}, nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer g.FS.RemoveAll(runTemp)

	var summary Summary
	results := make([]ImageResult, 0, len(backgrounds))
	for i, bgPath := range backgrounds {
		result := g.processBackground(i, bgPath, meshes, runTemp, outImageDir, outLabelDir)
		if result.Err != nil {
			monitoring.Logf("background %s: %v", bgPath, result.Err)
			summary.ImagesFailed++
		} else {
			summary.ImagesProcessed++
		}
		summary.ObjectsPlaced += result.Placed
		summary.ObjectsSkipped += result.Skipped
		results = append(results, result)
	}
	return summary, results, nil
}

// listBackgrounds returns the sorted .png/.jpg paths directly under dir.
func (g *Generator) listBackgrounds(dir string) ([]string, error) {
	entries, err := g.FS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list backgrounds: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".png" || ext == ".jpg" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}

// processBackground renders every mesh once, builds the placement grid from
// the average rendered footprint, composites all renders onto the background
// and writes the image and its label file.
func (g *Generator) processBackground(index int, bgPath string, meshes []string, runTemp, outImageDir, outLabelDir string) ImageResult {
	result := ImageResult{Input: bgPath}
	mainStart := g.now()

	background, err := g.loadImage(bgPath)
	if err != nil {
		result.Err = fmt.Errorf("open background: %w", err)
		return result
	}
	bgWidth := background.Bounds().Dx()
	bgHeight := background.Bounds().Dy()

	// Scratch directory for this background's renders, removed on all paths.
	tempDir := filepath.Join(runTemp, fmt.Sprintf("bg-%04d", index))
	if err := g.FS.MkdirAll(tempDir, 0755); err != nil {
		result.Err = fmt.Errorf("create render dir: %w", err)
		return result
	}
	defer g.FS.RemoveAll(tempDir)

	avgWidth, avgHeight, rendered := g.renderMeshes(meshes, tempDir)
	result.Skipped += len(meshes) - rendered
	if rendered == 0 {
		result.Err = fmt.Errorf("no mesh rendered successfully")
		return result
	}

	// Halve the average footprint to leave spacing margin between objects.
	avgWidth = avgWidth / rendered / 2
	avgHeight = avgHeight / rendered / 2

	gridStart := g.now()
	points, err := placement.Grid(bgWidth, bgHeight, avgWidth, avgHeight)
	g.recordDuration("compute_positions", gridStart)
	if err != nil {
		result.Err = fmt.Errorf("placement grid: %w", err)
		return result
	}

	labelPath := filepath.Join(outLabelDir, fmt.Sprintf("%d.txt", index))
	if g.FS.Exists(labelPath) {
		if err := g.FS.Remove(labelPath); err != nil {
			result.Err = fmt.Errorf("reset label file: %w", err)
			return result
		}
	}

	placeStart := g.now()
	placer := compose.NewPlacer(background, placement.NewSlots(points), g.Rng, g.Cfg.GetLegacyHalfWidthBoxes())
	entries, err := g.FS.ReadDir(tempDir)
	if err != nil {
		result.Err = fmt.Errorf("list renders: %w", err)
		return result
	}
	for _, entry := range entries {
		rasterPath := filepath.Join(tempDir, entry.Name())
		classID := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))

		if err := g.placeOne(placer, classID, rasterPath, labelPath); err != nil {
			monitoring.Logf("place %s on %s: %v", classID, bgPath, err)
			result.Skipped++
			continue
		}
		result.Placed++
	}
	g.recordDuration("place_objects", placeStart)

	// All pastes accumulated in memory; persist the composite once.
	outPath := filepath.Join(outImageDir, fmt.Sprintf("%d.jpg", index))
	if err := g.saveJPEG(outPath, placer.Image()); err != nil {
		result.Err = fmt.Errorf("save composite: %w", err)
		return result
	}
	result.Output = outPath

	g.recordDuration("process_image", mainStart)
	return result
}

// renderMeshes renders each mesh to a temp raster, returning summed footprint
// dimensions and the number of successful renders. Failed meshes are logged
// and skipped.
func (g *Generator) renderMeshes(meshes []string, tempDir string) (sumWidth, sumHeight, rendered int) {
	start := g.now()
	defer g.recordDuration("render_objects", start)

	for _, meshPath := range meshes {
		meshID := render.MeshID(meshPath)
		rot := rotation.Random(g.Rng)
		scale := render.SampleScale(g.Rng, meshID, g.Cfg)

		raster, err := g.Render(meshPath, rot, scale)
		if err != nil {
			monitoring.Logf("render %s: %v", meshPath, err)
			continue
		}

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, raster, imaging.PNG); err != nil {
			monitoring.Logf("encode render %s: %v", meshPath, err)
			continue
		}
		rasterPath := filepath.Join(tempDir, meshID+".png")
		if err := g.FS.WriteFile(rasterPath, buf.Bytes(), 0644); err != nil {
			monitoring.Logf("write render %s: %v", meshPath, err)
			continue
		}

		sumWidth += raster.Bounds().Dx()
		sumHeight += raster.Bounds().Dy()
		rendered++
	}
	return sumWidth, sumHeight, rendered
}

// placeOne composites a single temp raster and appends its label line. The
// temp raster is removed whether or not placement succeeds.
func (g *Generator) placeOne(placer *compose.Placer, classID, rasterPath, labelPath string) (err error) {
	defer func() {
		if removeErr := g.FS.Remove(rasterPath); removeErr != nil && err == nil {
			err = fmt.Errorf("remove temp raster: %w", removeErr)
		}
	}()

	raster, err := g.loadImage(rasterPath)
	if err != nil {
		return fmt.Errorf("open render: %w", err)
	}

	record, err := placer.Place(classID, raster)
	if err != nil {
		return err
	}
	if err := labels.Append(g.FS, labelPath, record); err != nil {
		return err
	}
	return nil
}

func (g *Generator) loadImage(path string) (image.Image, error) {
	data, err := g.FS.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func (g *Generator) saveJPEG(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(95)); err != nil {
		return err
	}
	return g.FS.WriteFile(path, buf.Bytes(), 0644)
}

func (g *Generator) now() time.Time {
	if g.Recorder != nil {
		return g.Recorder.Now()
	}
	return time.Time{}
}

func (g *Generator) recordDuration(label string, start time.Time) {
	if g.Recorder != nil {
		g.Recorder.RecordDuration(label, start)
	}
}
