// Package compose pastes rendered object rasters onto a background image and
// derives the matching normalized label records.
package compose

import (
	"fmt"
	"image"
	"math/rand"

	"github.com/disintegration/imaging"

	"github.com/penlab-data/synth.dataset/internal/labels"
	"github.com/penlab-data/synth.dataset/internal/placement"
)

// Placer accumulates object pastes on an in-memory canvas. The caller writes
// the finished canvas out once per background image.
type Placer struct {
	canvas   *image.NRGBA
	bgWidth  int
	bgHeight int
	slots    *placement.Slots
	rng      *rand.Rand

	// legacyBoxes writes half the raster width as both label dimensions,
	// reproducing the historical output instead of the true raster extent.
	legacyBoxes bool
}

// NewPlacer starts a placement pass over a copy of the background.
func NewPlacer(background image.Image, slots *placement.Slots, rng *rand.Rand, legacyBoxes bool) *Placer {
	canvas := imaging.Clone(background)
	bounds := canvas.Bounds()
	return &Placer{
		canvas:      canvas,
		bgWidth:     bounds.Dx(),
		bgHeight:    bounds.Dy(),
		slots:       slots,
		rng:         rng,
		legacyBoxes: legacyBoxes,
	}
}

// Place takes a random unused slot, centers the raster on it,
// alpha-composites it onto the canvas and returns the normalized label.
// Returns placement.ErrExhausted when no slots remain.
func (p *Placer) Place(classID string, raster image.Image) (labels.Record, error) {
	slot, err := p.slots.Take(p.rng)
	if err != nil {
		return labels.Record{}, err
	}

	bounds := raster.Bounds()
	origin := image.Pt(slot.X-bounds.Dx()/2, slot.Y-bounds.Dy()/2)
	p.canvas = imaging.Overlay(p.canvas, raster, origin, 1.0)

	boxWidth := float64(bounds.Dx())
	boxHeight := float64(bounds.Dy())
	if p.legacyBoxes {
		boxWidth = float64(bounds.Dx()) / 2
		boxHeight = float64(bounds.Dx()) / 2
	}

	record, err := labels.Normalize(classID, float64(slot.X), float64(slot.Y),
		boxWidth, boxHeight, p.bgWidth, p.bgHeight)
	if err != nil {
		return labels.Record{}, fmt.Errorf("label for %s: %w", classID, err)
	}
	return record, nil
}

// Remaining reports how many placement slots are still unused.
func (p *Placer) Remaining() int {
	return p.slots.Remaining()
}

// Image returns the current canvas with all pastes applied so far.
func (p *Placer) Image() *image.NRGBA {
	return p.canvas
}
