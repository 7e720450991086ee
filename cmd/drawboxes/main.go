// Command drawboxes overlays the boxes from a YOLO label file onto its image
// for visual inspection of generated labels.
package main

import (
	"flag"
	"log"

	"github.com/penlab-data/synth.dataset/internal/boxes"
	"github.com/penlab-data/synth.dataset/internal/fsutil"
)

func main() {
	imagePath := flag.String("image", "", "input image")
	labelPath := flag.String("labels", "", "YOLO label file for the image")
	outPath := flag.String("o", "annotated.jpg", "output path for the annotated image")
	flag.Parse()

	if *imagePath == "" || *labelPath == "" {
		log.Fatal("both -image and -labels are required")
	}

	drawn, err := boxes.Draw(fsutil.OSFileSystem{}, *imagePath, *labelPath, *outPath)
	if err != nil {
		log.Fatalf("draw failed: %v", err)
	}
	log.Printf("drew %d boxes: %s", drawn, *outPath)
}
