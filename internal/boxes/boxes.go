// Package boxes overlays YOLO label boxes onto images for visual inspection.
package boxes

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"gocv.io/x/gocv"

	"github.com/penlab-data/synth.dataset/internal/fsutil"
	"github.com/penlab-data/synth.dataset/internal/labels"
	"github.com/penlab-data/synth.dataset/internal/monitoring"
)

var (
	boxColor  = color.RGBA{G: 255, A: 255}
	textColor = color.RGBA{G: 255, A: 255}
)

// PixelRect converts a normalized label record to a pixel rectangle on an
// image of the given dimensions.
func PixelRect(r labels.Record, imgWidth, imgHeight int) image.Rectangle {
	centerX := r.CenterX * float64(imgWidth)
	centerY := r.CenterY * float64(imgHeight)
	width := r.Width * float64(imgWidth)
	height := r.Height * float64(imgHeight)
	return image.Rect(
		int(math.Round(centerX-width/2)),
		int(math.Round(centerY-height/2)),
		int(math.Round(centerX+width/2)),
		int(math.Round(centerY+height/2)),
	)
}

// ReadRecords parses a label file leniently: blank lines are ignored and
// malformed lines are logged and skipped rather than failing the read.
func ReadRecords(fs fsutil.FileSystem, path string) ([]labels.Record, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read label file: %w", err)
	}

	var records []labels.Record
	for i, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		r, err := labels.Parse(line)
		if err != nil {
			monitoring.Logf("label %s line %d: %v", path, i+1, err)
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// Draw reads an image and its label file, draws one rectangle and class
// caption per record and writes the annotated image to outPath. Returns the
// number of boxes drawn. Label records are read through fs; the image itself
// goes through OpenCV and therefore always hits the real filesystem.
func Draw(fs fsutil.FileSystem, imagePath, labelPath, outPath string) (int, error) {
	records, err := ReadRecords(fs, labelPath)
	if err != nil {
		return 0, err
	}

	img := gocv.IMRead(imagePath, gocv.IMReadColor)
	if img.Empty() {
		return 0, fmt.Errorf("read image %s", imagePath)
	}
	defer img.Close()

	for _, r := range records {
		rect := PixelRect(r, img.Cols(), img.Rows())
		gocv.Rectangle(&img, rect, boxColor, 2)
		// Caption sits just above the box, clamped to stay on the image.
		origin := image.Pt(rect.Min.X, rect.Min.Y-5)
		if origin.Y < 10 {
			origin.Y = rect.Min.Y + 15
		}
		gocv.PutText(&img, r.ClassID, origin, gocv.FontHersheySimplex, 0.5, textColor, 1)
	}

	if ok := gocv.IMWrite(outPath, img); !ok {
		return 0, fmt.Errorf("write annotated image %s", outPath)
	}
	return len(records), nil
}
