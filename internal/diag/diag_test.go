package diag

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penlab-data/synth.dataset/internal/fsutil"
	"github.com/penlab-data/synth.dataset/internal/timeutil"
)

func TestRecordDuration(t *testing.T) {
	t.Parallel()
	clock := timeutil.NewMockClock(time.Unix(1000, 0))
	r := NewRecorder(clock)

	start := clock.Now()
	clock.Advance(1500 * time.Millisecond)
	r.RecordDuration("Rend_Obj", start)

	events := r.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "Rend_Obj", events[0].Label)
	assert.Equal(t, 1500*time.Millisecond, events[0].Duration)
}

func TestMemorySampler(t *testing.T) {
	t.Parallel()

	t.Run("collects a sample per tick", func(t *testing.T) {
		t.Parallel()
		clock := timeutil.NewMockClock(time.Unix(0, 0))
		r := NewRecorder(clock)

		sampled := make(chan struct{}, 16)
		r.sample = func() (float64, error) {
			sampled <- struct{}{}
			return 123.5, nil
		}

		stop := r.StartMemorySampler(time.Second)
		for i := 0; i < 3; i++ {
			clock.Advance(time.Second)
			select {
			case <-sampled:
			case <-time.After(2 * time.Second):
				t.Fatal("sampler never fired")
			}
		}
		stop()

		samples := r.MemorySamples()
		require.NotEmpty(t, samples)
		assert.Equal(t, 123.5, samples[0])
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		t.Parallel()
		clock := timeutil.NewMockClock(time.Unix(0, 0))
		r := NewRecorder(clock)
		stop := r.StartMemorySampler(time.Second)
		stop()
		assert.NotPanics(t, stop)
	})

	t.Run("default sampler reads real process memory", func(t *testing.T) {
		t.Parallel()
		mb, err := processResidentMB()
		require.NoError(t, err)
		assert.Greater(t, mb, 0.0)
	})
}

func TestWriteCSVs(t *testing.T) {
	t.Parallel()

	t.Run("memory and timestamps", func(t *testing.T) {
		t.Parallel()
		clock := timeutil.NewMockClock(time.Unix(0, 0))
		r := NewRecorder(clock)
		r.memoryMB = []float64{100.5, 101.25}

		start := clock.Now()
		clock.Advance(2 * time.Second)
		r.RecordDuration("Main", start)

		fs := fsutil.NewMemoryFileSystem()
		require.NoError(t, r.WriteCSVs(fs, "/out"))

		memory, err := fs.ReadFile(filepath.Join("/out", MemoryCSV))
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(memory)), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "Time (s),Memory Usage (MB)", lines[0])
		assert.Equal(t, "0,100.500", lines[1])

		stamps, err := fs.ReadFile(filepath.Join("/out", TimestampsCSV))
		require.NoError(t, err)
		assert.Contains(t, string(stamps), "Main,2.000000")

		assert.False(t, fs.Exists(filepath.Join("/out", VideoStatsCSV)))
	})

	t.Run("video stats written when present", func(t *testing.T) {
		t.Parallel()
		r := NewRecorder(timeutil.NewMockClock(time.Unix(0, 0)))
		r.AddVideoStat("labor.mp4", 61.5, 8.25)

		fs := fsutil.NewMemoryFileSystem()
		require.NoError(t, r.WriteCSVs(fs, "/out"))

		stats, err := fs.ReadFile(filepath.Join("/out", VideoStatsCSV))
		require.NoError(t, err)
		assert.Contains(t, string(stats), "labor.mp4,61.500,8.250")
	})
}

func TestWriteMemoryPlot(t *testing.T) {
	t.Parallel()

	t.Run("errors without samples", func(t *testing.T) {
		t.Parallel()
		r := NewRecorder(timeutil.NewMockClock(time.Unix(0, 0)))
		assert.Error(t, r.WriteMemoryPlot(filepath.Join(t.TempDir(), "mem.png")))
	})

	t.Run("writes png", func(t *testing.T) {
		t.Parallel()
		r := NewRecorder(timeutil.NewMockClock(time.Unix(0, 0)))
		r.memoryMB = []float64{100, 120, 110}

		path := filepath.Join(t.TempDir(), "mem.png")
		require.NoError(t, r.WriteMemoryPlot(path))
		assert.FileExists(t, path)
	})
}

func TestWriteHTMLReport(t *testing.T) {
	t.Parallel()
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	r := NewRecorder(clock)
	r.memoryMB = []float64{90, 95}

	start := clock.Now()
	clock.Advance(time.Second)
	r.RecordDuration("Place_Objects", start)
	r.RecordDuration("Place_Objects", start)

	path := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, r.WriteHTMLReport(path))
	assert.FileExists(t, path)
}
