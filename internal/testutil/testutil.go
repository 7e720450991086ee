// Package testutil provides shared test fixtures for dataset tooling tests.
package testutil

import (
	"bytes"
	"fmt"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/penlab-data/synth.dataset/internal/fsutil"
)

// WritePNG writes a solid-color PNG of the given size through fs.
func WritePNG(t *testing.T, fs fsutil.FileSystem, path string, width, height int) {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 30, G: 60, B: 90, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := fs.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteDatasetPairs seeds root/images and root/labels with n paired files
// named 0..n-1 and returns the image file names.
func WriteDatasetPairs(t *testing.T, fs fsutil.FileSystem, root string, n int) []string {
	t.Helper()
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%d.jpg", i)
		imgPath := filepath.Join(root, "images", name)
		lblPath := filepath.Join(root, "labels", fmt.Sprintf("%d.txt", i))
		if err := fs.WriteFile(imgPath, []byte("img"), 0644); err != nil {
			t.Fatalf("write %s: %v", imgPath, err)
		}
		if err := fs.WriteFile(lblPath, []byte("0 0.500000 0.500000 0.100000 0.100000\n"), 0644); err != nil {
			t.Fatalf("write %s: %v", lblPath, err)
		}
		names = append(names, name)
	}
	return names
}
