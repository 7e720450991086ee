package video

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsVideo(t *testing.T) {
	t.Parallel()
	assert.True(t, IsVideo("labor.mp4"))
	assert.True(t, IsVideo("CLIP.MOV"))
	assert.True(t, IsVideo("a.avi"))
	assert.True(t, IsVideo("b.mkv"))
	assert.False(t, IsVideo("frame.jpg"))
	assert.False(t, IsVideo("notes.txt"))
	assert.False(t, IsVideo("mp4"))
}

func TestFrameName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "labor_frame_0.jpg", FrameName("/videos/labor.mp4", 0))
	assert.Equal(t, "clip.v2_frame_17.jpg", FrameName("clip.v2.mov", 17))
}

func TestSampleInterval(t *testing.T) {
	t.Parallel()

	t.Run("rounds the container rate", func(t *testing.T) {
		t.Parallel()
		interval, err := SampleInterval(29.97)
		require.NoError(t, err)
		assert.Equal(t, 30, interval)

		interval, err = SampleInterval(25)
		require.NoError(t, err)
		assert.Equal(t, 25, interval)
	})

	t.Run("sub-1fps clamps to every frame", func(t *testing.T) {
		t.Parallel()
		interval, err := SampleInterval(0.4)
		require.NoError(t, err)
		assert.Equal(t, 1, interval)
	})

	t.Run("rejects missing rate", func(t *testing.T) {
		t.Parallel()
		_, err := SampleInterval(0)
		assert.Error(t, err)
		_, err = SampleInterval(-30)
		assert.Error(t, err)
	})
}

func TestCropRect(t *testing.T) {
	t.Parallel()

	t.Run("square inside a large frame", func(t *testing.T) {
		t.Parallel()
		rng := rand.New(rand.NewSource(3))
		for i := 0; i < 50; i++ {
			rect := CropRect(rng, 1920, 1080)
			assert.Equal(t, CropSize, rect.Dx())
			assert.Equal(t, CropSize, rect.Dy())
			assert.GreaterOrEqual(t, rect.Min.X, 0)
			assert.GreaterOrEqual(t, rect.Min.Y, 0)
			assert.LessOrEqual(t, rect.Max.X, 1920)
			assert.LessOrEqual(t, rect.Max.Y, 1080)
		}
	})

	t.Run("small frame uses the full extent", func(t *testing.T) {
		t.Parallel()
		rng := rand.New(rand.NewSource(3))
		rect := CropRect(rng, 200, 480)
		assert.Equal(t, 200, rect.Dx())
		assert.Equal(t, CropSize, rect.Dy())
	})

	t.Run("deterministic for a fixed seed", func(t *testing.T) {
		t.Parallel()
		a := CropRect(rand.New(rand.NewSource(9)), 1280, 720)
		b := CropRect(rand.New(rand.NewSource(9)), 1280, 720)
		assert.Equal(t, a, b)
	})
}
