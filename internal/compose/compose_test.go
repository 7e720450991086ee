package compose

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penlab-data/synth.dataset/internal/placement"
)

func solidRaster(w, h int, c color.NRGBA) *image.NRGBA {
	img := imaging.New(w, h, c)
	return img
}

func TestPlace(t *testing.T) {
	t.Parallel()

	t.Run("centers raster on slot and labels true extent", func(t *testing.T) {
		t.Parallel()
		background := imaging.New(100, 100, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
		slots := placement.NewSlots([]placement.Point{{X: 50, Y: 50}})
		placer := NewPlacer(background, slots, rand.New(rand.NewSource(1)), false)

		raster := solidRaster(40, 20, color.NRGBA{R: 255, A: 255})
		record, err := placer.Place("body", raster)
		require.NoError(t, err)

		assert.Equal(t, "body", record.ClassID)
		assert.InDelta(t, 0.5, record.CenterX, 1e-9)
		assert.InDelta(t, 0.5, record.CenterY, 1e-9)
		assert.InDelta(t, 0.4, record.Width, 1e-9)
		assert.InDelta(t, 0.2, record.Height, 1e-9)

		// Paste origin is (50-20, 50-10): the slot pixel turns red, a pixel
		// outside the raster stays background.
		out := placer.Image()
		r, _, _, _ := out.At(50, 50).RGBA()
		assert.Equal(t, uint32(0xffff), r)
		r, _, _, _ = out.At(10, 10).RGBA()
		assert.NotEqual(t, uint32(0xffff), r)
	})

	t.Run("legacy boxes use half raster width for both dimensions", func(t *testing.T) {
		t.Parallel()
		background := imaging.New(100, 100, color.NRGBA{A: 255})
		slots := placement.NewSlots([]placement.Point{{X: 50, Y: 50}})
		placer := NewPlacer(background, slots, rand.New(rand.NewSource(1)), true)

		record, err := placer.Place("cap", solidRaster(40, 20, color.NRGBA{G: 255, A: 255}))
		require.NoError(t, err)
		assert.InDelta(t, 0.2, record.Width, 1e-9)
		assert.InDelta(t, 0.2, record.Height, 1e-9)
	})

	t.Run("slot exhaustion", func(t *testing.T) {
		t.Parallel()
		background := imaging.New(100, 100, color.NRGBA{A: 255})
		slots := placement.NewSlots([]placement.Point{{X: 50, Y: 50}})
		placer := NewPlacer(background, slots, rand.New(rand.NewSource(1)), false)

		_, err := placer.Place("a", solidRaster(4, 4, color.NRGBA{B: 255, A: 255}))
		require.NoError(t, err)
		assert.Zero(t, placer.Remaining())

		_, err = placer.Place("b", solidRaster(4, 4, color.NRGBA{B: 255, A: 255}))
		assert.ErrorIs(t, err, placement.ErrExhausted)
	})

	t.Run("edge slot clamps label to image", func(t *testing.T) {
		t.Parallel()
		background := imaging.New(100, 100, color.NRGBA{A: 255})
		slots := placement.NewSlots([]placement.Point{{X: 5, Y: 5}})
		placer := NewPlacer(background, slots, rand.New(rand.NewSource(1)), false)

		record, err := placer.Place("edge", solidRaster(40, 40, color.NRGBA{R: 255, A: 255}))
		require.NoError(t, err)
		require.NoError(t, record.Validate())
		assert.InDelta(t, 0.1, record.Width, 1e-9)
		assert.InDelta(t, 0.1, record.Height, 1e-9)
	})

	t.Run("every label stays normalized over a full grid", func(t *testing.T) {
		t.Parallel()
		background := imaging.New(320, 240, color.NRGBA{A: 255})
		points, err := placement.Grid(320, 240, 40, 40)
		require.NoError(t, err)
		placer := NewPlacer(background, placement.NewSlots(points), rand.New(rand.NewSource(9)), false)

		raster := solidRaster(40, 40, color.NRGBA{R: 128, A: 255})
		for i := 0; i < len(points); i++ {
			record, err := placer.Place("obj", raster)
			require.NoError(t, err)
			assert.NoError(t, record.Validate())
		}
	})

	t.Run("source background is not mutated", func(t *testing.T) {
		t.Parallel()
		background := imaging.New(100, 100, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
		slots := placement.NewSlots([]placement.Point{{X: 50, Y: 50}})
		placer := NewPlacer(background, slots, rand.New(rand.NewSource(1)), false)

		_, err := placer.Place("a", solidRaster(10, 10, color.NRGBA{R: 255, A: 255}))
		require.NoError(t, err)

		r, _, _, _ := background.At(50, 50).RGBA()
		assert.Equal(t, uint32(0x0101), r)
	})
}
