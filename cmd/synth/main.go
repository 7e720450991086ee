// Command synth generates synthetic object-detection training data: it
// renders STL meshes under random rotations, composites them onto background
// photographs and writes one image plus one YOLO label file per background.
package main

import (
	"flag"
	"log"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/penlab-data/synth.dataset/internal/config"
	"github.com/penlab-data/synth.dataset/internal/diag"
	"github.com/penlab-data/synth.dataset/internal/fsutil"
	"github.com/penlab-data/synth.dataset/internal/runstore"
	"github.com/penlab-data/synth.dataset/internal/synth"
	"github.com/penlab-data/synth.dataset/internal/timeutil"
	"github.com/penlab-data/synth.dataset/internal/version"
)

func main() {
	meshDir := flag.String("meshes", "", "directory of .stl mesh files")
	backgroundsDir := flag.String("backgrounds", "", "directory of background images (.png/.jpg)")
	outImages := flag.String("out-images", "train_data/images", "output directory for generated images")
	outLabels := flag.String("out-labels", "train_data/labels", "output directory for label files")
	configPath := flag.String("config", "", "optional generator config (.json)")
	seed := flag.Int64("seed", 0, "random seed (0 = config seed, or time-based)")
	diagDir := flag.String("diag-dir", "", "write diagnostics CSVs (and charts) into this directory")
	report := flag.Bool("report", false, "with -diag-dir, also write memory plot and HTML report")
	runsDB := flag.String("runs-db", "", "optional sqlite database recording run summaries")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		log.Printf("synth %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *meshDir == "" || *backgroundsDir == "" {
		log.Fatal("both -meshes and -backgrounds are required")
	}

	cfg := config.EmptyGeneratorConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadGeneratorConfig(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	s := *seed
	if s == 0 {
		s = cfg.GetSeed()
	}
	if s == 0 {
		s = time.Now().UnixNano()
	}

	fs := fsutil.OSFileSystem{}
	g := synth.NewGenerator(fs, cfg, rand.New(rand.NewSource(s)))

	var recorder *diag.Recorder
	if *diagDir != "" {
		recorder = diag.NewRecorder(timeutil.RealClock{})
		g.Recorder = recorder
		stop := recorder.StartMemorySampler(time.Second)
		defer stop()
	}

	start := time.Now()
	summary, _, err := g.Run(*meshDir, *backgroundsDir, *outImages, *outLabels)
	if err != nil {
		log.Fatalf("generation failed: %v", err)
	}
	log.Printf("done: %s", summary)

	if recorder != nil {
		writeDiagnostics(fs, recorder, *diagDir, *report)
	}
	if *runsDB != "" {
		recordRun(*runsDB, start, summary)
	}
}

func writeDiagnostics(fs fsutil.FileSystem, recorder *diag.Recorder, dir string, report bool) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		log.Printf("diagnostics dir: %v", err)
		return
	}
	if err := recorder.WriteCSVs(fs, dir); err != nil {
		log.Printf("write diagnostics: %v", err)
	}
	if !report {
		return
	}
	if err := recorder.WriteMemoryPlot(filepath.Join(dir, "memory_usage.png")); err != nil {
		log.Printf("write memory plot: %v", err)
	}
	if err := recorder.WriteHTMLReport(filepath.Join(dir, "report.html")); err != nil {
		log.Printf("write report: %v", err)
	}
}

func recordRun(path string, start time.Time, summary synth.Summary) {
	store, err := runstore.Open(path)
	if err != nil {
		log.Printf("open run store: %v", err)
		return
	}
	defer store.Close()

	id, err := store.RecordRun(runstore.Run{
		Tool:           "synth",
		StartedAt:      start,
		Duration:       time.Since(start),
		ImagesOK:       summary.ImagesProcessed,
		ImagesFailed:   summary.ImagesFailed,
		ObjectsPlaced:  summary.ObjectsPlaced,
		ObjectsSkipped: summary.ObjectsSkipped,
		Notes:          summary.String(),
	})
	if err != nil {
		log.Printf("record run: %v", err)
		return
	}
	log.Printf("recorded run %s", id)
}
