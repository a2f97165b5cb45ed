// Package navcorefacade presents the higher-level queries a caller
// actually wants — navigation, visibility, and multi-goal cost lookups in
// custom local coordinates, and communication over UTM endpoints —
// delegating each to the underlying NavGraph/VisibilityTester (spec §4.6).
// It also fans a
// multi-robot communication check out across goroutines, since that's the
// one query shape in this facade with independent, parallelizable work.
package navcorefacade

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/gladys-robotics/navcore/astar"
	"github.com/gladys-robotics/navcore/navgraph"
	"github.com/gladys-robotics/navcore/spatialmath"
	"github.com/gladys-robotics/navcore/visibility"
)

// ErrUnsupported is returned by every stub query this facade carries for a
// feature the source implements but this rework leaves out of scope.
var ErrUnsupported = errors.New("navcorefacade: query is out of scope")

// Facade wraps one NavGraph and one VisibilityTester over the same site.
type Facade struct {
	graph   *navgraph.Graph
	visible *visibility.Tester
}

// New builds a Facade over graph and visible, both already constructed
// against the same site's rasters.
func New(graph *navgraph.Graph, visible *visibility.Tester) *Facade {
	return &Facade{graph: graph, visible: visible}
}

// Navigation runs a multi-goal A* search from start toward the closest of
// goals, all given in custom local coordinates, and returns the result with
// its path also in custom coordinates.
func (f *Facade) Navigation(start spatialmath.Point2, goals []spatialmath.Point2) astar.Result {
	utmGoals := make([]spatialmath.Point2, len(goals))
	for i, g := range goals {
		utmGoals[i] = f.graph.CustomToUTM(g)
	}
	res := f.graph.AstarSearchMulti(f.graph.CustomToUTM(start), utmGoals)
	custom := spatialmath.NewPath()
	for _, p := range res.Path.Points() {
		custom.PushBack(f.graph.UTMToCustom(p))
	}
	res.Path = custom
	return res
}

// SingleSourceAllCosts reports the cost from start to every goal, all given
// in custom local coordinates, delegating to NavGraph's equivalently named
// query.
func (f *Facade) SingleSourceAllCosts(start spatialmath.Point2, goals []spatialmath.Point2) []float64 {
	utmGoals := make([]spatialmath.Point2, len(goals))
	for i, g := range goals {
		utmGoals[i] = f.graph.CustomToUTM(g)
	}
	return f.graph.SingleSourceAllCosts(f.graph.CustomToUTM(start), utmGoals)
}

// IsVisible answers a, b in custom local coordinates (z unaffected by the
// planar custom-frame conversion).
func (f *Facade) IsVisible(a, b spatialmath.Point3) (bool, error) {
	utmA := f.graph.CustomToUTM(a.Point2())
	utmB := f.graph.CustomToUTM(b.Point2())
	return f.visible.IsVisible(
		spatialmath.NewPoint3(utmA.X, utmA.Y, a.Z),
		spatialmath.NewPoint3(utmB.X, utmB.Y, b.Z),
	)
}

// CanCommunicate is IsVisible over two already-UTM 3-D endpoints; radio
// line-of-sight uses the same occlusion test as optical visibility.
func (f *Facade) CanCommunicate(a, b spatialmath.Point3) (bool, error) {
	return f.visible.IsVisible(a, b)
}

// CanCommunicateAll reports, for one fixed point a, which of targets it can
// reach — independent per-target occlusion tests run concurrently since
// each is a blocking CPU computation over the same read-only raster.
func (f *Facade) CanCommunicateAll(ctx context.Context, a spatialmath.Point3, targets []spatialmath.Point3) ([]bool, error) {
	out := make([]bool, len(targets))
	eg, _ := errgroup.WithContext(ctx)
	for i, target := range targets {
		i, target := i, target
		eg.Go(func() error {
			ok, err := f.visible.IsVisible(a, target)
			if err != nil {
				return err
			}
			out[i] = ok
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// State reports robot state. Out of scope (spec §4.6): the underlying
// source carries this as a typed no-op, and so does this facade.
func (f *Facade) State() (struct{}, error) { return struct{}{}, ErrUnsupported }

// Accessibility reports whether a point is reachable at all, distinct from
// a full path query. Out of scope (spec §4.6): typed no-op.
func (f *Facade) Accessibility(spatialmath.Point2) (bool, error) {
	return false, ErrUnsupported
}

// Simulation advances a robot-motion simulation. Out of scope (spec §4.6):
// typed no-op.
func (f *Facade) Simulation() error { return ErrUnsupported }

// LookAt computes a heading that orients a robot toward a point. Out of
// scope (spec §4.6): typed no-op.
func (f *Facade) LookAt(spatialmath.Point2, spatialmath.Point2) (float64, error) {
	return 0, ErrUnsupported
}

// MultiSensorVisibility combines several sensors' visibility tests into one
// verdict. Out of scope (spec §4.6): typed no-op; use IsVisible per sensor.
func (f *Facade) MultiSensorVisibility([]spatialmath.Point3, spatialmath.Point3) (bool, error) {
	return false, ErrUnsupported
}
