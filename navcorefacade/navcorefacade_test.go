package navcorefacade_test

import (
	"context"
	"testing"

	"go.viam.com/test"

	"github.com/gladys-robotics/navcore/costmap"
	"github.com/gladys-robotics/navcore/navcorefacade"
	"github.com/gladys-robotics/navcore/navgraph"
	"github.com/gladys-robotics/navcore/raster"
	"github.com/gladys-robotics/navcore/robotmodel"
	"github.com/gladys-robotics/navcore/spatialmath"
	"github.com/gladys-robotics/navcore/visibility"
)

func buildFacade(t *testing.T) *navcorefacade.Facade {
	t.Helper()
	w, h := 5, 5
	no3d := make([]float32, w*h)
	obstacle := make([]float32, w*h)
	flat := make([]float32, w*h)
	for i := range flat {
		flat[i] = 1.0
	}
	terrain, err := raster.New(w, h, []string{"NO_3D_CLASS", "OBSTACLE", "FLAT"},
		[][]float32{no3d, obstacle, flat},
		raster.Transform{OriginX: 0, OriginY: 0, ScaleX: 1, ScaleY: -1}, 10, 20)
	test.That(t, err, test.ShouldBeNil)

	robot := robotmodel.Model{Radius: 0.5, Velocity: 1, Costs: map[string]float64{"FLAT": 0}}
	cm, err := costmap.Build(terrain, robot, costmap.Options{}, nil)
	test.That(t, err, test.ShouldBeNil)

	g, err := navgraph.Build(cm, nil, nil)
	test.That(t, err, test.ShouldBeNil)

	zmax := make([]float32, w*h)
	npoints := make([]float32, w*h)
	for i := range zmax {
		zmax[i] = 0.5
		npoints[i] = 1
	}
	elevation, err := raster.New(w, h, []string{"Z_MAX", "N_POINTS"},
		[][]float32{zmax, npoints},
		raster.Transform{OriginX: 0, OriginY: 0, ScaleX: 1, ScaleY: -1}, 10, 20)
	test.That(t, err, test.ShouldBeNil)

	tester, err := visibility.New(elevation, robot)
	test.That(t, err, test.ShouldBeNil)

	return navcorefacade.New(g, tester)
}

func TestNavigationConvertsCustomCoordinatesRoundTrip(t *testing.T) {
	t.Parallel()
	f := buildFacade(t)

	start := spatialmath.NewPoint2(-10, -20)
	goals := []spatialmath.Point2{spatialmath.NewPoint2(-6, -23)}
	res := f.Navigation(start, goals)

	test.That(t, res.Path.Len(), test.ShouldBeGreaterThan, 0)
	first, ok := res.Path.First()
	test.That(t, ok, test.ShouldBeTrue)
	// The path starts at the vertex the start snaps to: UTM (0,0) is a cell
	// center, equidistant from its four mid-edge vertices, and the lowest id
	// among them is the cell's west vertex at UTM (-0.5,0), i.e. custom
	// (-10.5,-20).
	test.That(t, first.X, test.ShouldAlmostEqual, -10.5)
	test.That(t, first.Y, test.ShouldAlmostEqual, -20.0)
}

func TestSingleSourceAllCostsInCustomCoordinates(t *testing.T) {
	t.Parallel()
	f := buildFacade(t)

	start := spatialmath.NewPoint2(-10, -20)
	goals := []spatialmath.Point2{
		spatialmath.NewPoint2(-10, -20),
		spatialmath.NewPoint2(-6, -23),
	}
	costs := f.SingleSourceAllCosts(start, goals)
	test.That(t, len(costs), test.ShouldEqual, 2)
	test.That(t, costs[0], test.ShouldAlmostEqual, 0.0)
	test.That(t, costs[1], test.ShouldBeGreaterThan, 0.0)
}

func TestIsVisibleNearbyPointsAreVisible(t *testing.T) {
	t.Parallel()
	f := buildFacade(t)

	a := spatialmath.NewPoint3(-10, -20, 0.5)
	b := spatialmath.NewPoint3(-9, -20, 0.5)
	visible, err := f.IsVisible(a, b)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, visible, test.ShouldBeTrue)
}

func TestCanCommunicateAllRunsEachTargetIndependently(t *testing.T) {
	t.Parallel()
	f := buildFacade(t)

	a := spatialmath.NewPoint3(0, -2, 0.5)
	targets := []spatialmath.Point3{
		spatialmath.NewPoint3(1, -2, 0.5),
		spatialmath.NewPoint3(2, -3, 0.5),
		spatialmath.NewPoint3(0, -4, 0.5),
	}
	results, err := f.CanCommunicateAll(context.Background(), a, targets)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(results), test.ShouldEqual, len(targets))
	for _, ok := range results {
		test.That(t, ok, test.ShouldBeTrue)
	}
}

func TestOutOfScopeQueriesReturnUnsupportedError(t *testing.T) {
	t.Parallel()
	f := buildFacade(t)

	_, err := f.State()
	test.That(t, err, test.ShouldNotBeNil)

	_, err = f.Accessibility(spatialmath.NewPoint2(0, 0))
	test.That(t, err, test.ShouldNotBeNil)

	err = f.Simulation()
	test.That(t, err, test.ShouldNotBeNil)

	_, err = f.LookAt(spatialmath.NewPoint2(0, 0), spatialmath.NewPoint2(1, 1))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = f.MultiSensorVisibility(nil, spatialmath.NewPoint3(0, 0, 0))
	test.That(t, err, test.ShouldNotBeNil)
}
