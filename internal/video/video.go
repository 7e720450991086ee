// Package video extracts still frames from video files at one frame per
// second of footage.
package video

import (
	"fmt"
	"image"
	"math"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"github.com/penlab-data/synth.dataset/internal/diag"
	"github.com/penlab-data/synth.dataset/internal/fsutil"
	"github.com/penlab-data/synth.dataset/internal/monitoring"
)

// CropSize is the edge length of the optional random square cut taken from
// each sampled frame before rescaling back to the frame dimensions.
const CropSize = 300

var videoExts = map[string]bool{
	".mp4": true,
	".avi": true,
	".mov": true,
	".mkv": true,
}

// IsVideo reports whether the file name carries a supported video extension.
func IsVideo(name string) bool {
	return videoExts[strings.ToLower(filepath.Ext(name))]
}

// FrameName returns the output file name for the n-th sampled frame of a video.
func FrameName(videoPath string, n int) string {
	base := filepath.Base(videoPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_frame_%d.jpg", base, n)
}

// SampleInterval converts a container frame rate into the stride between
// sampled frames, at one sample per second of footage.
func SampleInterval(fps float64) (int, error) {
	if fps <= 0 || math.IsNaN(fps) {
		return 0, fmt.Errorf("invalid frame rate %v", fps)
	}
	interval := int(math.Round(fps))
	if interval < 1 {
		interval = 1
	}
	return interval, nil
}

// CropRect picks a random CropSize square inside a frame. Frames smaller than
// the crop in either dimension use their full extent on that axis.
func CropRect(rng *rand.Rand, frameWidth, frameHeight int) image.Rectangle {
	width := CropSize
	if width > frameWidth {
		width = frameWidth
	}
	height := CropSize
	if height > frameHeight {
		height = frameHeight
	}
	x := 0
	if frameWidth > width {
		x = rng.Intn(frameWidth - width + 1)
	}
	y := 0
	if frameHeight > height {
		y = rng.Intn(frameHeight - height + 1)
	}
	return image.Rect(x, y, x+width, y+height)
}

// Extractor samples frames from videos into JPEG files.
type Extractor struct {
	FS       fsutil.FileSystem
	Rng      *rand.Rand
	Recorder *diag.Recorder // optional instrumentation

	// Crop takes a random CropSize square from each sampled frame and
	// rescales it back to the frame dimensions before saving.
	Crop bool
}

// Result reports the outcome for one video file.
type Result struct {
	Video  string
	Frames int
	Err    error
}

// ExtractDir samples every supported video directly under inDir. Per-video
// failures are logged and reported in the results; only path errors abort.
func (e *Extractor) ExtractDir(inDir, outDir string) ([]Result, error) {
	entries, err := e.FS.ReadDir(inDir)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	if err := e.FS.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var results []Result
	for _, entry := range entries {
		if entry.IsDir() || !IsVideo(entry.Name()) {
			continue
		}
		videoPath := filepath.Join(inDir, entry.Name())
		frames, err := e.ExtractFile(videoPath, outDir)
		if err != nil {
			monitoring.Logf("video %s: %v", videoPath, err)
		}
		results = append(results, Result{Video: videoPath, Frames: frames, Err: err})
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no video files in %s", inDir)
	}
	return results, nil
}

// ExtractFile samples one video at a frame per second, writing JPEGs named
// FrameName(videoPath, n) into outDir. Returns the number of frames written.
func (e *Extractor) ExtractFile(videoPath, outDir string) (int, error) {
	start := e.now()

	capture, err := gocv.OpenVideoCapture(videoPath)
	if err != nil {
		return 0, fmt.Errorf("open video: %w", err)
	}
	defer capture.Close()

	fps := capture.Get(gocv.VideoCaptureFPS)
	interval, err := SampleInterval(fps)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", videoPath, err)
	}
	frameTotal := capture.Get(gocv.VideoCaptureFrameCount)

	img := gocv.NewMat()
	defer img.Close()

	frameIndex, saved := 0, 0
	for capture.Read(&img) {
		if img.Empty() {
			frameIndex++
			continue
		}
		if frameIndex%interval == 0 {
			outPath := filepath.Join(outDir, FrameName(videoPath, saved))
			if err := e.saveFrame(outPath, &img); err != nil {
				return saved, fmt.Errorf("frame %d: %w", saved, err)
			}
			saved++
		}
		frameIndex++
	}

	if e.Recorder != nil {
		videoSeconds := frameTotal / fps
		e.Recorder.AddVideoStat(filepath.Base(videoPath), videoSeconds,
			e.Recorder.Now().Sub(start).Seconds())
	}
	return saved, nil
}

// saveFrame writes one frame, optionally through the random crop-and-rescale.
func (e *Extractor) saveFrame(outPath string, img *gocv.Mat) error {
	if !e.Crop {
		if ok := gocv.IMWrite(outPath, *img); !ok {
			return fmt.Errorf("write %s", outPath)
		}
		return nil
	}

	frame, err := img.ToImage()
	if err != nil {
		return fmt.Errorf("convert frame: %w", err)
	}
	bounds := frame.Bounds()
	cut := imaging.Crop(frame, CropRect(e.Rng, bounds.Dx(), bounds.Dy()))
	scaled := imaging.Resize(cut, bounds.Dx(), bounds.Dy(), imaging.Lanczos)
	if err := imaging.Save(scaled, outPath, imaging.JPEGQuality(95)); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	return nil
}

func (e *Extractor) now() time.Time {
	if e.Recorder != nil {
		return e.Recorder.Now()
	}
	return time.Time{}
}
