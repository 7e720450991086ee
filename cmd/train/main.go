// Command train invokes an external YOLOv5 training script against a split
// dataset with the project's fixed hyperparameters.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/penlab-data/synth.dataset/internal/trainer"
)

func main() {
	script := flag.String("script", "yolov5/train.py", "path to the YOLOv5 train.py entry point")
	python := flag.String("python", "", "python interpreter (default python3)")
	data := flag.String("data", "", "dataset description YAML")
	weights := flag.String("weights", "yolov5s.pt", "initial weights")
	imageSize := flag.Int("img", trainer.DefaultImageSize, "training image size")
	batch := flag.Int("batch", trainer.DefaultBatchSize, "batch size")
	epochs := flag.Int("epochs", trainer.DefaultEpochs, "training epochs")
	workers := flag.Int("workers", trainer.DefaultWorkers, "dataloader workers")
	dryRun := flag.Bool("dry-run", false, "print the command without running it")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := trainer.Run(ctx, trainer.Options{
		Python:      *python,
		TrainScript: *script,
		Data:        *data,
		Weights:     *weights,
		ImageSize:   *imageSize,
		BatchSize:   *batch,
		Epochs:      *epochs,
		Workers:     *workers,
		DryRun:      *dryRun,
	})
	if err != nil {
		log.Fatalf("training: %v", err)
	}
}
