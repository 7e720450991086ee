// Package labels reads and writes YOLO-style label files: one object per line,
// space-separated "class_id x_center y_center width height", with the four
// numeric fields normalized to [0,1] by the image dimensions.
package labels

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/penlab-data/synth.dataset/internal/fsutil"
)

// Record is one labeled object.
type Record struct {
	ClassID string
	CenterX float64
	CenterY float64
	Width   float64
	Height  float64
}

// Line renders the record as a single newline-terminated label line.
func (r Record) Line() string {
	return fmt.Sprintf("%s %s %s %s %s\n",
		r.ClassID,
		formatCoord(r.CenterX),
		formatCoord(r.CenterY),
		formatCoord(r.Width),
		formatCoord(r.Height))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// Validate reports an error unless all four numeric fields lie in [0,1].
func (r Record) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"x_center", r.CenterX},
		{"y_center", r.CenterY},
		{"width", r.Width},
		{"height", r.Height},
	} {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("%s out of range: %v", f.name, f.value)
		}
	}
	return nil
}

// Parse parses a single label line.
func Parse(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return Record{}, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}

	r := Record{ClassID: fields[0]}
	values := make([]float64, 4)
	for i, field := range fields[1:] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Record{}, fmt.Errorf("invalid numeric field %q: %w", field, err)
		}
		values[i] = v
	}
	r.CenterX, r.CenterY, r.Width, r.Height = values[0], values[1], values[2], values[3]
	return r, nil
}

// ReadFile parses every line of a label file. Blank lines are skipped;
// a malformed line fails the whole read.
func ReadFile(fs fsutil.FileSystem, path string) ([]Record, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read label file: %w", err)
	}

	var records []Record
	for i, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		r, err := Parse(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// Append appends one validated record to a label file, creating it if needed.
// Label files are write-once per image and accumulate one line per object.
func Append(fs fsutil.FileSystem, path string, r Record) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("refusing to write label: %w", err)
	}
	return fs.AppendFile(path, []byte(r.Line()), os.FileMode(0644))
}

// Normalize converts a pixel-space box to a normalized Record. The box
// center must land inside the image; width and height are clamped so the
// box fits within [0,1] in each dimension.
func Normalize(classID string, centerX, centerY, width, height float64, bgWidth, bgHeight int) (Record, error) {
	if bgWidth <= 0 || bgHeight <= 0 {
		return Record{}, fmt.Errorf("invalid background dimensions %dx%d", bgWidth, bgHeight)
	}

	r := Record{
		ClassID: classID,
		CenterX: centerX / float64(bgWidth),
		CenterY: centerY / float64(bgHeight),
		Width:   width / float64(bgWidth),
		Height:  height / float64(bgHeight),
	}
	if r.CenterX < 0 || r.CenterX > 1 || r.CenterY < 0 || r.CenterY > 1 {
		return Record{}, fmt.Errorf("box center (%v, %v) outside image", r.CenterX, r.CenterY)
	}

	// Clamp extents so the full box stays inside the image.
	r.Width = clampExtent(r.Width, r.CenterX)
	r.Height = clampExtent(r.Height, r.CenterY)
	return r, nil
}

// clampExtent shrinks a normalized extent so that center±extent/2 stays in [0,1].
func clampExtent(extent, center float64) float64 {
	if extent < 0 {
		return 0
	}
	if max := 2 * center; extent > max {
		extent = max
	}
	if max := 2 * (1 - center); extent > max {
		extent = max
	}
	if extent > 1 {
		extent = 1
	}
	return extent
}
