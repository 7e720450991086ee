// Command splitdata partitions a dataset of paired image/label files into
// train, valid and test trees by ratio.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/penlab-data/synth.dataset/internal/fsutil"
	"github.com/penlab-data/synth.dataset/internal/runstore"
	"github.com/penlab-data/synth.dataset/internal/split"
)

func main() {
	root := flag.String("root", "train_data", "dataset root containing images/ and labels/")
	trainRatio := flag.Float64("train", 0.75, "fraction of pairs assigned to train")
	valRatio := flag.Float64("val", 0.125, "fraction of pairs assigned to valid")
	shuffle := flag.Bool("shuffle", true, "shuffle pairs before partitioning")
	seed := flag.Int64("seed", 0, "shuffle seed (0 = time-based)")
	runsDB := flag.String("runs-db", "", "optional sqlite database recording run summaries")
	flag.Parse()

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}

	start := time.Now()
	result, err := split.Split(fsutil.OSFileSystem{}, *root, *trainRatio, *valRatio,
		split.Options{Shuffle: *shuffle, Seed: s})
	if err != nil {
		log.Fatalf("split failed: %v", err)
	}
	log.Printf("split %d pairs: %d train, %d valid, %d test",
		result.Total(), result.Train, result.Valid, result.Test)

	if *runsDB != "" {
		store, err := runstore.Open(*runsDB)
		if err != nil {
			log.Printf("open run store: %v", err)
			return
		}
		defer store.Close()
		if _, err := store.RecordRun(runstore.Run{
			Tool:      "splitdata",
			StartedAt: start,
			Duration:  time.Since(start),
			ImagesOK:  result.Total(),
		}); err != nil {
			log.Printf("record run: %v", err)
		}
	}
}
