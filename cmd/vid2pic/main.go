// Command vid2pic samples videos at one frame per second and writes the
// frames as JPEG files, for building background image sets from footage.
package main

import (
	"flag"
	"log"
	"math/rand"
	"time"

	"github.com/penlab-data/synth.dataset/internal/diag"
	"github.com/penlab-data/synth.dataset/internal/fsutil"
	"github.com/penlab-data/synth.dataset/internal/timeutil"
	"github.com/penlab-data/synth.dataset/internal/video"
)

func main() {
	input := flag.String("in", "", "video file or directory of videos (.mp4/.avi/.mov/.mkv)")
	outDir := flag.String("out", "frames", "output directory for extracted frames")
	crop := flag.Bool("crop", false, "take a random square cut from each frame and rescale it")
	seed := flag.Int64("seed", 0, "crop seed (0 = time-based)")
	diagDir := flag.String("diag-dir", "", "write per-video processing stats into this directory")
	flag.Parse()

	if *input == "" {
		log.Fatal("-in is required")
	}

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}

	fs := fsutil.OSFileSystem{}
	e := &video.Extractor{
		FS:   fs,
		Rng:  rand.New(rand.NewSource(s)),
		Crop: *crop,
	}
	if *diagDir != "" {
		e.Recorder = diag.NewRecorder(timeutil.RealClock{})
	}

	info, err := fs.Stat(*input)
	if err != nil {
		log.Fatalf("stat input: %v", err)
	}

	if info.IsDir() {
		results, err := e.ExtractDir(*input, *outDir)
		if err != nil {
			log.Fatalf("extraction failed: %v", err)
		}
		var frames, failed int
		for _, r := range results {
			frames += r.Frames
			if r.Err != nil {
				failed++
			}
		}
		log.Printf("extracted %d frames from %d videos (%d failed)", frames, len(results), failed)
	} else {
		if err := fs.MkdirAll(*outDir, 0755); err != nil {
			log.Fatalf("create output dir: %v", err)
		}
		frames, err := e.ExtractFile(*input, *outDir)
		if err != nil {
			log.Fatalf("extraction failed: %v", err)
		}
		log.Printf("extracted %d frames", frames)
	}

	if e.Recorder != nil {
		if err := fs.MkdirAll(*diagDir, 0755); err != nil {
			log.Printf("diagnostics dir: %v", err)
			return
		}
		if err := e.Recorder.WriteCSVs(fs, *diagDir); err != nil {
			log.Printf("write diagnostics: %v", err)
		}
	}
}
