package dstarlite_test

import (
	"errors"
	"testing"

	"go.viam.com/test"

	"github.com/gladys-robotics/navcore/costmap"
	"github.com/gladys-robotics/navcore/dstarlite"
	"github.com/gladys-robotics/navcore/navgraph"
	"github.com/gladys-robotics/navcore/raster"
	"github.com/gladys-robotics/navcore/robotmodel"
	"github.com/gladys-robotics/navcore/spatialmath"
)

// buildWalledGraph mirrors navgraph's scenario-2 fixture: a 9x9 cost map
// with an obstacle wall at row 5, gapped only at column 0.
func buildWalledGraph(t *testing.T) *navgraph.Graph {
	t.Helper()
	w, h := 9, 9
	no3d := make([]float32, w*h)
	obstacle := make([]float32, w*h)
	flat := make([]float32, w*h)
	for i := range flat {
		flat[i] = 1.0
	}
	for u := 1; u <= 8; u++ {
		idx := 5*w + u
		obstacle[idx] = 0.8
		flat[idx] = 0.2
	}
	r, err := raster.New(w, h, []string{"NO_3D_CLASS", "OBSTACLE", "FLAT"},
		[][]float32{no3d, obstacle, flat},
		raster.Transform{OriginX: 0, OriginY: 0, ScaleX: 1, ScaleY: -1}, 0, 0)
	test.That(t, err, test.ShouldBeNil)

	robot := robotmodel.Model{Radius: 1, Velocity: 1, Costs: map[string]float64{"FLAT": 0}}
	cm, err := costmap.Build(r, robot, costmap.Options{}, nil)
	test.That(t, err, test.ShouldBeNil)

	g, err := navgraph.Build(cm, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	return g
}

func TestWarmReplanIsNoOp(t *testing.T) {
	t.Parallel()
	g := buildWalledGraph(t)
	start, _ := g.ClosestVertex(spatialmath.NewPoint2(1, -1))
	goal, _ := g.ClosestVertex(spatialmath.NewPoint2(5, -8))

	s, err := dstarlite.New(g, start, goal, nil, nil)
	test.That(t, err, test.ShouldBeNil)

	p0, err := s.Path()
	test.That(t, err, test.ShouldBeNil)

	err = s.Replan(start)
	test.That(t, err, test.ShouldBeNil)
	p1, err := s.Path()
	test.That(t, err, test.ShouldBeNil)

	test.That(t, p1.Points(), test.ShouldResemble, p0.Points())
}

func TestForwardReplanAdvancesAlongPath(t *testing.T) {
	t.Parallel()
	g := buildWalledGraph(t)
	start, _ := g.ClosestVertex(spatialmath.NewPoint2(1, -1))
	goal, _ := g.ClosestVertex(spatialmath.NewPoint2(5, -8))

	s, err := dstarlite.New(g, start, goal, nil, nil)
	test.That(t, err, test.ShouldBeNil)

	p0, err := s.Path()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p0.Len(), test.ShouldBeGreaterThan, 2)

	waypoint := p0.Points()[2]
	nextAnchor, ok := g.ClosestVertex(waypoint)
	test.That(t, ok, test.ShouldBeTrue)

	err = s.Replan(nextAnchor)
	test.That(t, err, test.ShouldBeNil)
	p1, err := s.Path()
	test.That(t, err, test.ShouldBeNil)

	// Advancing the anchor two waypoints along the same optimal path must
	// shorten the remaining path by exactly that many points.
	test.That(t, p1.Len(), test.ShouldEqual, p0.Len()-2)
	test.That(t, p1.Points(), test.ShouldResemble, p0.Points()[2:])
}

func TestNoPathWhenGoalUnreachable(t *testing.T) {
	t.Parallel()
	w, h := 3, 3
	no3d := make([]float32, w*h)
	obstacle := make([]float32, w*h)
	flat := make([]float32, w*h)
	for i := range flat {
		flat[i] = 1.0
	}
	for u := 0; u < w; u++ {
		obstacle[1*w+u] = 1.0
	}
	r, err := raster.New(w, h, []string{"NO_3D_CLASS", "OBSTACLE", "FLAT"},
		[][]float32{no3d, obstacle, flat},
		raster.Transform{OriginX: 0, OriginY: 0, ScaleX: 1, ScaleY: -1}, 0, 0)
	test.That(t, err, test.ShouldBeNil)

	robot := robotmodel.Model{Radius: 1, Velocity: 1, Costs: map[string]float64{"FLAT": 0}}
	cm, err := costmap.Build(r, robot, costmap.Options{}, nil)
	test.That(t, err, test.ShouldBeNil)

	g, err := navgraph.Build(cm, nil, nil)
	test.That(t, err, test.ShouldBeNil)

	start, _ := g.ClosestVertex(spatialmath.NewPoint2(0, 0))
	goal, _ := g.ClosestVertex(spatialmath.NewPoint2(0, -2))

	_, err = dstarlite.New(g, start, goal, nil, nil)
	test.That(t, errors.Is(err, dstarlite.ErrNoPath), test.ShouldBeTrue)
}

func TestMonotonicIncreaseNeverLowersCostToGoal(t *testing.T) {
	t.Parallel()
	g := buildWalledGraph(t)
	start, _ := g.ClosestVertex(spatialmath.NewPoint2(1, -1))
	goal, _ := g.ClosestVertex(spatialmath.NewPoint2(5, -8))

	s, err := dstarlite.New(g, start, goal, nil, nil)
	test.That(t, err, test.ShouldBeNil)

	before, err := s.Path()
	test.That(t, err, test.ShouldBeNil)
	costBefore := pathCost(g, before)

	// Double the weight of every edge touching the gap vertex at (0,-4.5),
	// the only way through the wall, then replan from the same anchor.
	gapVertex, ok := g.VertexAt(spatialmath.NewPoint2(0, -4.5))
	test.That(t, ok, test.ShouldBeTrue)
	for _, e := range g.Neighbors(gapVertex) {
		g.SetEdgeWeight(gapVertex, e.To, e.Weight*2, g.EpochTick()+1)
	}

	err = s.Replan(start)
	test.That(t, err, test.ShouldBeNil)
	after, err := s.Path()
	test.That(t, err, test.ShouldBeNil)
	costAfter := pathCost(g, after)

	test.That(t, costAfter, test.ShouldBeGreaterThanOrEqualTo, costBefore)
}

func pathCost(g *navgraph.Graph, p *spatialmath.Path) float64 {
	points := p.Points()
	total := 0.0
	for i := 0; i+1 < len(points); i++ {
		v, _ := g.ClosestVertex(points[i])
		w, _ := g.ClosestVertex(points[i+1])
		for _, e := range g.Neighbors(v) {
			if e.To == w {
				total += e.Weight
			}
		}
	}
	return total
}
