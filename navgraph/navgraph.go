// Package navgraph builds and serves the planar navigable graph over a
// CostMap: four mid-edge vertices per traversable cell, diagonal and
// straight edges between them, and a position index for closest-vertex
// lookup (spec §4.2).
package navgraph

import (
	"fmt"
	"io"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/gladys-robotics/navcore/astar"
	"github.com/gladys-robotics/navcore/costmap"
	"github.com/gladys-robotics/navcore/internal/epoch"
	"github.com/gladys-robotics/navcore/logging"
	"github.com/gladys-robotics/navcore/spatialmath"
)

// unknownEdgeCost is the finite substitution used for unknown-terrain
// cells so the graph still offers a (costly) path through unexplored
// territory, per spec §3/§4.2.
const unknownEdgeCost = 100.0

// VertexID indexes a vertex in the graph's arena. Aliased to astar.VertexID
// so Graph satisfies astar.Graph without any conversion at the call site.
type VertexID = astar.VertexID

// Edge is an outgoing arc, aliased to astar.Edge.
type Edge = astar.Edge

// Graph is the planar navigable graph over a CostMap.
type Graph struct {
	costMap   *costmap.CostMap
	positions []spatialmath.Point2
	index     map[spatialmath.Point2]VertexID
	adjacency [][]Edge
	epochTick uint64
	rtree     *rtreego.Rtree
}

// Build materializes the graph described in spec §4.2 over cm. epochSrc
// stamps every edge created in this pass with the current tick, so a later
// DStarLite replan can tell which edges have changed since.
func Build(cm *costmap.CostMap, epochSrc *epoch.Source, log logging.Logger) (*Graph, error) {
	tr := cm.Transform()
	hypotenuse := 0.5 * math.Hypot(tr.ScaleX, tr.ScaleY)

	g := &Graph{
		costMap: cm,
		index:   make(map[spatialmath.Point2]VertexID),
	}
	if epochSrc != nil {
		g.epochTick = epochSrc.Now()
	}

	getOrCreate := func(p spatialmath.Point2) VertexID {
		if v, ok := g.index[p]; ok {
			return v
		}
		v := VertexID(len(g.positions))
		g.positions = append(g.positions, p)
		g.adjacency = append(g.adjacency, nil)
		g.index[p] = v
		return v
	}

	addEdge := func(a, b VertexID, weight float64) {
		g.adjacency[a] = append(g.adjacency[a], Edge{To: b, Weight: weight, Stamp: g.epochTick})
		g.adjacency[b] = append(g.adjacency[b], Edge{To: a, Weight: weight, Stamp: g.epochTick})
	}

	width, height := cm.Width(), cm.Height()
	for v := 0; v < height; v++ {
		for u := 0; u < width; u++ {
			cost, err := cm.Cost(u, v)
			if err != nil {
				return nil, errors.Wrapf(err, "navgraph: reading cost at (%d,%d)", u, v)
			}
			if costmap.IsObstacle(cost) {
				continue
			}
			effective := cost
			if costmap.IsUnknown(effective) {
				effective = unknownEdgeCost
			}

			utmX := tr.OriginX + tr.ScaleX*float64(u)
			utmY := tr.OriginY + tr.ScaleY*float64(v)

			vertW := getOrCreate(spatialmath.NewPoint2(utmX-0.5*tr.ScaleX, utmY))
			vertN := getOrCreate(spatialmath.NewPoint2(utmX, utmY-0.5*tr.ScaleY))
			vertE := getOrCreate(spatialmath.NewPoint2(utmX+0.5*tr.ScaleX, utmY))
			vertS := getOrCreate(spatialmath.NewPoint2(utmX, utmY+0.5*tr.ScaleY))

			diag := hypotenuse * effective
			addEdge(vertW, vertN, diag)
			addEdge(vertN, vertE, diag)
			addEdge(vertE, vertS, diag)
			addEdge(vertS, vertW, diag)

			addEdge(vertN, vertS, math.Abs(tr.ScaleY)*effective)
			addEdge(vertW, vertE, math.Abs(tr.ScaleX)*effective)
		}
	}

	if log != nil {
		log.Infow("built nav graph", "vertices", len(g.positions), "width", width, "height", height)
	}
	return g, nil
}

// NumVertices implements astar.Graph.
func (g *Graph) NumVertices() int { return len(g.positions) }

// Position implements astar.Graph.
func (g *Graph) Position(v VertexID) spatialmath.Point2 { return g.positions[v] }

// Neighbors implements astar.Graph.
func (g *Graph) Neighbors(v VertexID) []Edge { return g.adjacency[v] }

// VertexAt returns the vertex exactly at p, if the position index has one.
func (g *Graph) VertexAt(p spatialmath.Point2) (VertexID, bool) {
	v, ok := g.index[p]
	return v, ok
}

// ClosestVertex implements spec §4.2's get_closest_vertex: an exact
// position-index hit, or else the vertex minimizing squared euclidean
// distance, ties broken by lowest vertex id.
func (g *Graph) ClosestVertex(p spatialmath.Point2) (VertexID, bool) {
	if v, ok := g.index[p]; ok {
		return v, true
	}
	return g.closestVertexIndexed(p)
}

// planner returns a fresh astar.Planner over g, as spec §3 requires ("an
// AStarPlanner... created per query").
func (g *Graph) planner() *astar.Planner { return astar.New(g) }

// AstarSearch returns the shortest path between the vertices closest to
// start and goal, snapping at both ends; empty if unreachable.
func (g *Graph) AstarSearch(start, goal spatialmath.Point2) *spatialmath.Path {
	sv, ok := g.ClosestVertex(start)
	if !ok {
		return spatialmath.NewPath()
	}
	gv, ok := g.ClosestVertex(goal)
	if !ok {
		return spatialmath.NewPath()
	}
	return g.planner().Search(sv, gv)
}

// AstarSearchMulti terminates at the first of goals dequeued; cost is
// +Inf if none are reachable.
func (g *Graph) AstarSearchMulti(start spatialmath.Point2, goals []spatialmath.Point2) astar.Result {
	sv, ok := g.ClosestVertex(start)
	if !ok {
		return astar.Result{Path: spatialmath.NewPath(), Cost: math.Inf(1)}
	}
	goalVerts := lo.Map(goals, func(p spatialmath.Point2, _ int) VertexID {
		v, _ := g.ClosestVertex(p)
		return v
	})
	return g.planner().SearchMulti(sv, goalVerts)
}

// SingleSourceAllCosts runs one Dijkstra pass from start and returns the
// cost to each of goals, +Inf for any unreachable goal.
func (g *Graph) SingleSourceAllCosts(start spatialmath.Point2, goals []spatialmath.Point2) []float64 {
	sv, ok := g.ClosestVertex(start)
	if !ok {
		out := make([]float64, len(goals))
		for i := range out {
			out[i] = math.Inf(1)
		}
		return out
	}
	goalVerts := lo.Map(goals, func(p spatialmath.Point2, _ int) VertexID {
		v, _ := g.ClosestVertex(p)
		return v
	})
	return g.planner().SingleSourceAllCosts(sv, goalVerts)
}

// SearchDetailed supplements the original's detailed_astar_search: the
// shortest path plus cumulative cost at each of its points.
func (g *Graph) SearchDetailed(start, goal spatialmath.Point2) astar.DetailedResult {
	sv, okS := g.ClosestVertex(start)
	gv, okG := g.ClosestVertex(goal)
	if !okS || !okG {
		return astar.DetailedResult{Path: spatialmath.NewPath()}
	}
	return g.planner().SearchDetailed(sv, gv)
}

// CustomToUTM delegates to the underlying raster's frame conversion.
func (g *Graph) CustomToUTM(p spatialmath.Point2) spatialmath.Point2 {
	return g.costMap.CustomToUTM(p)
}

// UTMToCustom delegates to the underlying raster's frame conversion.
func (g *Graph) UTMToCustom(p spatialmath.Point2) spatialmath.Point2 {
	return g.costMap.UTMToCustom(p)
}

// EpochTick returns the epoch tick captured when this graph's edges were
// built, used by DStarLite to decide whether stamps have gone stale.
func (g *Graph) EpochTick() uint64 { return g.epochTick }

// SetEdgeWeight updates the weight of the undirected edge between a and b
// in both directions and stamps it with tick, reporting whether the edge
// existed. This is the mutation path spec §3 reserves for DStarLite's
// replan contract: a CostMap must never be mutated once a NavGraph and its
// planners reference it, so terrain changes are applied here instead.
func (g *Graph) SetEdgeWeight(a, b VertexID, weight float64, tick uint64) bool {
	found := false
	for i := range g.adjacency[a] {
		if g.adjacency[a][i].To == b {
			g.adjacency[a][i].Weight = weight
			g.adjacency[a][i].Stamp = tick
			found = true
		}
	}
	for i := range g.adjacency[b] {
		if g.adjacency[b][i].To == a {
			g.adjacency[b][i].Weight = weight
			g.adjacency[b][i].Stamp = tick
			found = true
		}
	}
	return found
}

// WriteDOT dumps the graph in Graphviz DOT format: one node per vertex
// labeled with its position, one edge line per undirected connection
// (written from its lower-id end) labeled with its weight. Supplements the original's nav_graph::write_graphviz, which left
// edge weights as a TODO; this version includes them.
func (g *Graph) WriteDOT(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "graph navgraph {"); err != nil {
		return err
	}
	for v, p := range g.positions {
		if _, err := fmt.Fprintf(w, "  %d [label=\"(%.3f, %.3f)\"];\n", v, p.X, p.Y); err != nil {
			return err
		}
	}
	for v, edges := range g.adjacency {
		for _, e := range edges {
			if VertexID(v) > e.To {
				continue
			}
			if _, err := fmt.Fprintf(w, "  %d -- %d [label=\"%.3f\"];\n", v, e.To, e.Weight); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

// snapshot is the on-disk shape of a built Graph: everything but the
// CostMap it was built from, which a Load caller supplies separately since
// it's still needed for cost/unknown lookups the graph itself doesn't keep.
type snapshot struct {
	Positions []spatialmath.Point2
	Adjacency [][]Edge
	EpochTick uint64
}

// Save msgpack-encodes the graph's vertex positions, adjacency, and epoch
// tick, letting a caller skip rebuilding the graph from its CostMap on
// every process start.
func (g *Graph) Save(w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(snapshot{
		Positions: g.positions,
		Adjacency: g.adjacency,
		EpochTick: g.epochTick,
	})
}

// Load decodes a Graph previously written by Save, pairing it back up with
// cm (the CostMap it was built over) and rebuilding the position index.
func Load(r io.Reader, cm *costmap.CostMap) (*Graph, error) {
	var snap snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, errors.Wrap(err, "navgraph: decode snapshot")
	}
	index := make(map[spatialmath.Point2]VertexID, len(snap.Positions))
	for i, p := range snap.Positions {
		index[p] = VertexID(i)
	}
	return &Graph{
		costMap:   cm,
		positions: snap.Positions,
		index:     index,
		adjacency: snap.Adjacency,
		epochTick: snap.EpochTick,
	}, nil
}
