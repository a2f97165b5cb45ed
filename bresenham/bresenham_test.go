package bresenham_test

import (
	"testing"

	"go.viam.com/test"

	"github.com/gladys-robotics/navcore/bresenham"
	"github.com/gladys-robotics/navcore/spatialmath"
)

func TestLineIncludesEndpoints(t *testing.T) {
	t.Parallel()
	line := bresenham.Line(spatialmath.NewPoint2(0, 0), spatialmath.NewPoint2(5, 2))
	test.That(t, line[0], test.ShouldResemble, spatialmath.NewPoint2(0, 0))
	test.That(t, line[len(line)-1], test.ShouldResemble, spatialmath.NewPoint2(5, 2))
}

func TestLineLengthIsChebyshevDistancePlusOne(t *testing.T) {
	t.Parallel()
	cases := []struct {
		s, t spatialmath.Point2
		want int
	}{
		{spatialmath.NewPoint2(0, 0), spatialmath.NewPoint2(8, 0), 9},
		{spatialmath.NewPoint2(0, 0), spatialmath.NewPoint2(0, 8), 9},
		{spatialmath.NewPoint2(0, 0), spatialmath.NewPoint2(4, 8), 9},
		{spatialmath.NewPoint2(3, 3), spatialmath.NewPoint2(3, 3), 1},
	}
	for _, c := range cases {
		line := bresenham.Line(c.s, c.t)
		test.That(t, len(line), test.ShouldEqual, c.want)
	}
}

func TestLineReversedInputsReverseSequence(t *testing.T) {
	t.Parallel()
	forward := bresenham.Line(spatialmath.NewPoint2(0, 0), spatialmath.NewPoint2(5, 3))
	backward := bresenham.Line(spatialmath.NewPoint2(5, 3), spatialmath.NewPoint2(0, 0))
	test.That(t, len(forward), test.ShouldEqual, len(backward))
	for i := range forward {
		test.That(t, forward[i], test.ShouldResemble, backward[len(backward)-1-i])
	}
}
