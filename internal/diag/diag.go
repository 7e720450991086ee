// Package diag records optional run diagnostics: resident-memory samples from
// a background sampler, and per-event durations. A Recorder is passed
// explicitly to the operations that want instrumentation; correctness never
// depends on it.
package diag

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/penlab-data/synth.dataset/internal/fsutil"
	"github.com/penlab-data/synth.dataset/internal/timeutil"
)

// Default output file names.
const (
	MemoryCSV     = "memory_usage.csv"
	TimestampsCSV = "timestamps.csv"
	VideoStatsCSV = "video_processing_stats.csv"
)

// Event is one timed operation.
type Event struct {
	Label    string
	Duration time.Duration
}

// VideoStat records the processing of a single video file.
type VideoStat struct {
	Name           string
	VideoSeconds   float64
	ProcessingTime float64
}

// Recorder accumulates diagnostics for one tool invocation.
type Recorder struct {
	mu         sync.Mutex
	clock      timeutil.Clock
	memoryMB   []float64
	events     []Event
	videoStats []VideoStat

	// sample reads the current resident memory in MB. Replaceable in tests.
	sample func() (float64, error)
}

// NewRecorder creates a Recorder driven by the given clock.
func NewRecorder(clock timeutil.Clock) *Recorder {
	return &Recorder{
		clock:  clock,
		sample: processResidentMB,
	}
}

// processResidentMB reads the current process RSS in megabytes.
func processResidentMB() (float64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	info, err := p.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return float64(info.RSS) / (1024 * 1024), nil
}

// StartMemorySampler polls resident memory on the given interval until the
// returned stop function is called. Sampling failures are silently skipped;
// this is best-effort instrumentation.
func (r *Recorder) StartMemorySampler(interval time.Duration) (stop func()) {
	ticker := r.clock.NewTicker(interval)
	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-quit:
				return
			case <-ticker.C():
				mb, err := r.sample()
				if err != nil {
					continue
				}
				r.mu.Lock()
				r.memoryMB = append(r.memoryMB, mb)
				r.mu.Unlock()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(quit)
			<-done
		})
	}
}

// RecordDuration records the time elapsed since start under the given label.
func (r *Recorder) RecordDuration(label string, start time.Time) {
	elapsed := r.clock.Since(start)
	r.mu.Lock()
	r.events = append(r.events, Event{Label: label, Duration: elapsed})
	r.mu.Unlock()
}

// Now exposes the recorder's clock for callers timing their own events.
func (r *Recorder) Now() time.Time {
	return r.clock.Now()
}

// AddVideoStat records processing stats for one video file.
func (r *Recorder) AddVideoStat(name string, videoSeconds, processingSeconds float64) {
	r.mu.Lock()
	r.videoStats = append(r.videoStats, VideoStat{
		Name:           name,
		VideoSeconds:   videoSeconds,
		ProcessingTime: processingSeconds,
	})
	r.mu.Unlock()
}

// MemorySamples returns a copy of the collected memory samples.
func (r *Recorder) MemorySamples() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]float64, len(r.memoryMB))
	copy(out, r.memoryMB)
	return out
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// VideoStats returns a copy of the recorded per-video stats.
func (r *Recorder) VideoStats() []VideoStat {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]VideoStat, len(r.videoStats))
	copy(out, r.videoStats)
	return out
}

// WriteCSVs writes memory_usage.csv and timestamps.csv into dir, plus
// video_processing_stats.csv when video stats were recorded.
func (r *Recorder) WriteCSVs(fs fsutil.FileSystem, dir string) error {
	samples := r.MemorySamples()
	memory := make([][]string, 0, len(samples))
	for i, mb := range samples {
		memory = append(memory, []string{
			strconv.Itoa(i),
			strconv.FormatFloat(mb, 'f', 3, 64),
		})
	}
	if err := writeCSV(fs, filepath.Join(dir, MemoryCSV),
		[]string{"Time (s)", "Memory Usage (MB)"}, memory); err != nil {
		return err
	}

	events := r.Events()
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.Label,
			strconv.FormatFloat(e.Duration.Seconds(), 'f', 6, 64),
		})
	}
	if err := writeCSV(fs, filepath.Join(dir, TimestampsCSV),
		[]string{"Label", "Duration (s)"}, rows); err != nil {
		return err
	}

	stats := r.VideoStats()
	if len(stats) == 0 {
		return nil
	}
	rows = rows[:0]
	for _, s := range stats {
		rows = append(rows, []string{
			s.Name,
			strconv.FormatFloat(s.VideoSeconds, 'f', 3, 64),
			strconv.FormatFloat(s.ProcessingTime, 'f', 3, 64),
		})
	}
	return writeCSV(fs, filepath.Join(dir, VideoStatsCSV),
		[]string{"Video Name", "Video Duration (s)", "Processing Time (s)"}, rows)
}

func writeCSV(fs fsutil.FileSystem, path string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return fs.WriteFile(path, buf.Bytes(), 0644)
}
