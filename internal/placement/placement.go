// Package placement lays out the non-overlapping grid of candidate positions
// used to paste rendered objects onto a background image.
package placement

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrExhausted is returned by Take when every slot has been consumed.
var ErrExhausted = errors.New("no placement slots remaining")

// Point is a cell-center position in background pixel coordinates.
type Point struct {
	X int
	Y int
}

// Grid enumerates all cell centers for a background of bgWidth x bgHeight
// given the average rendered-object footprint. The grid has
// (bgWidth/avgWidth) x (bgHeight/avgHeight) cells (integer division) with
// centers at (avgWidth/2 + col*avgWidth, avgHeight/2 + row*avgHeight),
// enumerated row-major.
func Grid(bgWidth, bgHeight, avgWidth, avgHeight int) ([]Point, error) {
	if avgWidth <= 0 || avgHeight <= 0 {
		return nil, fmt.Errorf("invalid average footprint %dx%d", avgWidth, avgHeight)
	}

	cols := bgWidth / avgWidth
	rows := bgHeight / avgHeight
	if cols == 0 || rows == 0 {
		return nil, fmt.Errorf("footprint %dx%d too large for background %dx%d",
			avgWidth, avgHeight, bgWidth, bgHeight)
	}

	points := make([]Point, 0, cols*rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			points = append(points, Point{
				X: avgWidth/2 + col*avgWidth,
				Y: avgHeight/2 + row*avgHeight,
			})
		}
	}
	return points, nil
}

// Slots is a set of placement candidates consumed without replacement.
type Slots struct {
	points []Point
}

// NewSlots wraps a candidate list. The list is copied so later Takes do not
// disturb the caller's slice.
func NewSlots(points []Point) *Slots {
	copied := make([]Point, len(points))
	copy(copied, points)
	return &Slots{points: copied}
}

// Take removes and returns a uniformly random unused slot.
func (s *Slots) Take(rng *rand.Rand) (Point, error) {
	if len(s.points) == 0 {
		return Point{}, ErrExhausted
	}
	i := rng.Intn(len(s.points))
	p := s.points[i]
	s.points[i] = s.points[len(s.points)-1]
	s.points = s.points[:len(s.points)-1]
	return p, nil
}

// Remaining reports how many slots are still unused.
func (s *Slots) Remaining() int {
	return len(s.points)
}
