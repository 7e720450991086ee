// Package split partitions a directory of paired image/label files into
// train, valid and test sets by ratio.
package split

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"

	"github.com/penlab-data/synth.dataset/internal/fsutil"
)

// Partition names used for the output directory trees.
const (
	Train = "train"
	Valid = "valid"
	Test  = "test"
)

// Options controls ordering of the split.
type Options struct {
	// Shuffle randomizes file order before partitioning. When false the
	// sorted filename order is used, which makes reruns idempotent.
	Shuffle bool

	// Seed fixes the shuffle order. The same seed over the same input
	// directory yields the same partition assignment.
	Seed int64
}

// Result summarizes a completed split.
type Result struct {
	Train int
	Valid int
	Test  int

	// Assignments maps each image file name to its partition.
	Assignments map[string]string
}

// Total returns the number of pairs distributed.
func (r Result) Total() int {
	return r.Train + r.Valid + r.Test
}

// Split copies paired files from root/images and root/labels into
// root/{train,valid,test}/{images,labels}. The first floor(N*trainRatio)
// pairs go to train, the next floor(N*valRatio) to valid, the remainder to
// test. Images without a matching label file are ignored.
func Split(fs fsutil.FileSystem, root string, trainRatio, valRatio float64, opts Options) (Result, error) {
	if trainRatio < 0 || valRatio < 0 || trainRatio+valRatio > 1 {
		return Result{}, fmt.Errorf("invalid ratios train=%v val=%v", trainRatio, valRatio)
	}

	imagesDir := filepath.Join(root, "images")
	labelsDir := filepath.Join(root, "labels")

	pairs, err := pairedImages(fs, imagesDir, labelsDir)
	if err != nil {
		return Result{}, err
	}

	for _, partition := range []string{Train, Valid, Test} {
		for _, sub := range []string{"images", "labels"} {
			if err := fs.MkdirAll(filepath.Join(root, partition, sub), 0755); err != nil {
				return Result{}, fmt.Errorf("create %s/%s: %w", partition, sub, err)
			}
		}
	}

	if opts.Shuffle {
		rng := rand.New(rand.NewSource(opts.Seed))
		rng.Shuffle(len(pairs), func(i, j int) {
			pairs[i], pairs[j] = pairs[j], pairs[i]
		})
	}

	total := len(pairs)
	trainSplit := int(trainRatio * float64(total))
	valSplit := int(valRatio * float64(total))

	result := Result{Assignments: make(map[string]string, total)}
	for i, image := range pairs {
		var partition string
		switch {
		case i < trainSplit:
			partition = Train
			result.Train++
		case i < trainSplit+valSplit:
			partition = Valid
			result.Valid++
		default:
			partition = Test
			result.Test++
		}

		label := labelName(image)
		srcImage := filepath.Join(imagesDir, image)
		srcLabel := filepath.Join(labelsDir, label)
		dstImage := filepath.Join(root, partition, "images", image)
		dstLabel := filepath.Join(root, partition, "labels", label)

		if err := fs.CopyFile(srcImage, dstImage); err != nil {
			return Result{}, fmt.Errorf("copy %s: %w", image, err)
		}
		if err := fs.CopyFile(srcLabel, dstLabel); err != nil {
			return Result{}, fmt.Errorf("copy %s: %w", label, err)
		}
		result.Assignments[image] = partition
	}
	return result, nil
}

// pairedImages lists image files that have a matching label file, sorted.
func pairedImages(fs fsutil.FileSystem, imagesDir, labelsDir string) ([]string, error) {
	imageEntries, err := fs.ReadDir(imagesDir)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	labelEntries, err := fs.ReadDir(labelsDir)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}

	haveLabel := make(map[string]bool, len(labelEntries))
	for _, entry := range labelEntries {
		if !entry.IsDir() {
			haveLabel[entry.Name()] = true
		}
	}

	var pairs []string
	for _, entry := range imageEntries {
		if entry.IsDir() {
			continue
		}
		if haveLabel[labelName(entry.Name())] {
			pairs = append(pairs, entry.Name())
		}
	}
	sort.Strings(pairs)
	return pairs, nil
}

// labelName maps an image file name to its label file name.
func labelName(image string) string {
	return strings.TrimSuffix(image, filepath.Ext(image)) + ".txt"
}
