// Package bresenham rasterizes a straight line between two integer cells.
// It is a pure function with no hidden state, used by VisibilityTester to
// sample a sight line cell by cell.
package bresenham

import (
	"slices"

	"github.com/gladys-robotics/navcore/spatialmath"
)

// Line returns the ordered sequence of integer cells from s to t, both
// endpoints included. Reversing the inputs produces the reversed sequence.
// The result always has length max(|dx|, |dy|) + 1.
func Line(s, t spatialmath.Point2) []spatialmath.Point2 {
	x0, y0 := int(s.X), int(s.Y)
	x1, y1 := int(t.X), int(t.Y)

	steep := abs(y1-y0) > abs(x1-x0)
	if steep {
		x0, y0 = y0, x0
		x1, y1 = y1, x1
	}
	// Always rasterize along increasing x and reverse afterwards, so that
	// swapping s and t yields exactly the reversed sequence.
	reversed := x0 > x1
	if reversed {
		x0, y0, x1, y1 = x1, y1, x0, y0
	}

	deltaX := abs(x1 - x0)
	deltaY := abs(y1 - y0)
	errAcc := deltaX / 2
	y := y0

	ystep := -1
	if y0 < y1 {
		ystep = 1
	}

	plot := func(x, y int) spatialmath.Point2 {
		if steep {
			return spatialmath.NewPoint2(float64(y), float64(x))
		}
		return spatialmath.NewPoint2(float64(x), float64(y))
	}

	line := make([]spatialmath.Point2, 0, deltaX+1)
	step := 1
	if x0 > x1 {
		step = -1
	}
	for x := x0; ; x += step {
		line = append(line, plot(x, y))
		errAcc -= deltaY
		if errAcc < 0 {
			y += ystep
			errAcc += deltaX
		}
		if x == x1 {
			break
		}
	}
	if reversed {
		slices.Reverse(line)
	}
	return line
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
