package costmap_test

import (
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/gladys-robotics/navcore/costmap"
	"github.com/gladys-robotics/navcore/raster"
	"github.com/gladys-robotics/navcore/robotmodel"
)

func TestBuildSingleObstacleCell(t *testing.T) {
	t.Parallel()
	w, h := 9, 9
	no3d := make([]float32, w*h)
	obstacle := make([]float32, w*h)
	flat := make([]float32, w*h)
	for i := range flat {
		flat[i] = 1.0
	}
	obstacleIdx := 4*w + 4
	obstacle[obstacleIdx] = 0.5
	flat[obstacleIdx] = 0.5

	r, err := raster.New(w, h, []string{"NO_3D_CLASS", "OBSTACLE", "FLAT"},
		[][]float32{no3d, obstacle, flat},
		raster.Transform{OriginX: 0, OriginY: 0, ScaleX: 1, ScaleY: -1}, 0, 0)
	test.That(t, err, test.ShouldBeNil)

	robot := robotmodel.Model{Radius: 1, Velocity: 1, Costs: map[string]float64{"FLAT": 0}}
	cm, err := costmap.Build(r, robot, costmap.Options{}, nil)
	test.That(t, err, test.ShouldBeNil)

	c, err := cm.Cost(4, 4)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, costmap.IsObstacle(c), test.ShouldBeTrue)

	other, err := cm.Cost(0, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, other, test.ShouldAlmostEqual, 1.0)
}

func TestBuildMissingBandIsBadRaster(t *testing.T) {
	t.Parallel()
	w, h := 3, 3
	no3d := make([]float32, w*h)
	r, err := raster.New(w, h, []string{"NO_3D_CLASS"}, [][]float32{no3d},
		raster.Transform{ScaleX: 1, ScaleY: -1}, 0, 0)
	test.That(t, err, test.ShouldBeNil)

	robot := robotmodel.Model{Radius: 1, Velocity: 1}
	_, err = costmap.Build(r, robot, costmap.Options{}, nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBuildRejectsNonPositiveRobotFields(t *testing.T) {
	t.Parallel()
	w, h := 3, 3
	no3d := make([]float32, w*h)
	obstacle := make([]float32, w*h)
	r, err := raster.New(w, h, []string{"NO_3D_CLASS", "OBSTACLE"}, [][]float32{no3d, obstacle},
		raster.Transform{ScaleX: 1, ScaleY: -1}, 0, 0)
	test.That(t, err, test.ShouldBeNil)

	_, err = costmap.Build(r, robotmodel.Model{Radius: 0, Velocity: 1}, costmap.Options{}, nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestUnknownCellSentinel(t *testing.T) {
	t.Parallel()
	w, h := 3, 3
	no3d := make([]float32, w*h)
	obstacle := make([]float32, w*h)
	no3d[0] = 0.95
	r, err := raster.New(w, h, []string{"NO_3D_CLASS", "OBSTACLE"}, [][]float32{no3d, obstacle},
		raster.Transform{ScaleX: 1, ScaleY: -1}, 0, 0)
	test.That(t, err, test.ShouldBeNil)

	cm, err := costmap.Build(r, robotmodel.Model{Radius: 1, Velocity: 1}, costmap.Options{}, nil)
	test.That(t, err, test.ShouldBeNil)

	c, err := cm.Cost(0, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, costmap.IsUnknown(c), test.ShouldBeTrue)
}

func TestInflationMarksNeighborsObstacle(t *testing.T) {
	t.Parallel()
	w, h := 5, 5
	no3d := make([]float32, w*h)
	obstacle := make([]float32, w*h)
	centerIdx := 2*w + 2
	obstacle[centerIdx] = 1.0

	r, err := raster.New(w, h, []string{"NO_3D_CLASS", "OBSTACLE"}, [][]float32{no3d, obstacle},
		raster.Transform{ScaleX: 1, ScaleY: -1}, 0, 0)
	test.That(t, err, test.ShouldBeNil)

	cm, err := costmap.Build(r, robotmodel.Model{Radius: 1, Velocity: 1},
		costmap.Options{InflateObstacles: true}, nil)
	test.That(t, err, test.ShouldBeNil)

	c, err := cm.Cost(2, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, math.IsInf(c, 1), test.ShouldBeTrue)
}
