// Package astar implements a batch best-first shortest-path search over a
// read-only weighted graph: single-source to single-goal, single-source to
// any-of-goals (early exit on first goal dequeue), and single-source to
// all-goals (spec §4.2). The search loop owns its own goal check; there is
// no exception-for-control-flow the way the source's found_goal visitor
// works (spec §9 redesign flag).
package astar

import (
	"container/heap"
	"math"

	"github.com/gladys-robotics/navcore/spatialmath"
)

// VertexID indexes a vertex in a Graph's arena.
type VertexID int32

// Edge is a weighted, directed arc to a neighboring vertex. NavGraph
// materializes both directions of every edge, so an undirected connection
// is two Edge values. Stamp carries the epoch tick the edge's weight was
// last set at; the batch search in this package never reads it — it exists
// so DStarLite can tell which edges changed since its last replan.
type Edge struct {
	To     VertexID
	Weight float64
	Stamp  uint64
}

// Graph is the minimal read-only surface AStarPlanner needs. NavGraph
// implements it directly; nothing in this package imports navgraph, which
// keeps the dependency one-directional (navgraph -> astar).
type Graph interface {
	NumVertices() int
	Position(v VertexID) spatialmath.Point2
	Neighbors(v VertexID) []Edge
}

// Planner runs batch A*/Dijkstra searches over a Graph. A Planner is
// created per query and only ever reads its Graph (spec §3 ownership:
// "created per query and reference the NavGraph by shared read-only
// borrow").
type Planner struct {
	g Graph
}

// New returns a Planner over g.
func New(g Graph) *Planner {
	return &Planner{g: g}
}

type queueItem struct {
	v        VertexID
	priority float64
	index    int
}

type priorityQueue []*queueItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].priority < pq[j].priority }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i]; pq[i].index, pq[j].index = i, j }
func (pq *priorityQueue) Push(x any)         { item := x.(*queueItem); item.index = len(*pq); *pq = append(*pq, item) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

// heuristicToNearest returns the euclidean distance from v's position to
// the nearest of goals — admissible because every edge weight is at least
// cell-cost (bounded below by 1/velocity) times its euclidean length.
func heuristicToNearest(g Graph, v VertexID, goals []VertexID) float64 {
	p := g.Position(v)
	best := math.Inf(1)
	for _, goal := range goals {
		d := p.Distance(g.Position(goal))
		if d < best {
			best = d
		}
	}
	return best
}

// run is the shared A*/Dijkstra driving loop. heuristic may be nil for a
// plain Dijkstra (used by SingleSourceAllCosts, which needs costs to every
// goal rather than an early exit toward one). isGoal is checked at dequeue
// time, not via an exception.
func (p *Planner) run(start VertexID, isGoal func(VertexID) bool, heuristic func(VertexID) float64) (predecessor map[VertexID]VertexID, dist map[VertexID]float64, reached VertexID, found bool) {
	dist = map[VertexID]float64{start: 0}
	predecessor = map[VertexID]VertexID{start: start}
	visited := map[VertexID]bool{}

	pq := &priorityQueue{}
	heap.Init(pq)
	h := 0.0
	if heuristic != nil {
		h = heuristic(start)
	}
	heap.Push(pq, &queueItem{v: start, priority: h})

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*queueItem)
		v := item.v
		if visited[v] {
			continue
		}
		visited[v] = true

		if isGoal != nil && isGoal(v) {
			return predecessor, dist, v, true
		}

		for _, e := range p.g.Neighbors(v) {
			if visited[e.To] {
				continue
			}
			newDist := dist[v] + e.Weight
			if cur, ok := dist[e.To]; !ok || newDist < cur {
				dist[e.To] = newDist
				predecessor[e.To] = v
				priority := newDist
				if heuristic != nil {
					priority += heuristic(e.To)
				}
				heap.Push(pq, &queueItem{v: e.To, priority: priority})
			}
		}
	}
	return predecessor, dist, 0, false
}

func reconstruct(g Graph, predecessor map[VertexID]VertexID, start, goal VertexID) *spatialmath.Path {
	path := spatialmath.NewPath()
	for v := goal; ; {
		path.PushFront(g.Position(v))
		prev, ok := predecessor[v]
		if !ok || prev == v {
			break
		}
		v = prev
	}
	return path
}

// Search returns the shortest path from start to goal, or an empty path if
// goal is unreachable.
func (p *Planner) Search(start, goal VertexID) *spatialmath.Path {
	predecessor, _, _, found := p.run(start, func(v VertexID) bool { return v == goal },
		func(v VertexID) float64 { return p.g.Position(v).Distance(p.g.Position(goal)) })
	if !found {
		return spatialmath.NewPath()
	}
	return reconstruct(p.g, predecessor, start, goal)
}

// Result is the outcome of a multi-goal search: the path to whichever goal
// vertex was dequeued first, and its cost (+Inf if no goal is reachable).
type Result struct {
	Path *spatialmath.Path
	Cost float64
}

// SearchMulti terminates at the first goal vertex dequeued from goals and
// returns the path and Dijkstra distance to it.
func (p *Planner) SearchMulti(start VertexID, goals []VertexID) Result {
	goalSet := make(map[VertexID]bool, len(goals))
	for _, g := range goals {
		goalSet[g] = true
	}
	predecessor, dist, reached, found := p.run(start, func(v VertexID) bool { return goalSet[v] },
		func(v VertexID) float64 { return heuristicToNearest(p.g, v, goals) })
	if !found {
		return Result{Path: spatialmath.NewPath(), Cost: math.Inf(1)}
	}
	return Result{Path: reconstruct(p.g, predecessor, start, reached), Cost: dist[reached]}
}

// SingleSourceAllCosts runs one Dijkstra pass from start and returns the
// cost to each of goals, in order, +Inf for any goal unreachable from
// start.
func (p *Planner) SingleSourceAllCosts(start VertexID, goals []VertexID) []float64 {
	_, dist, _, _ := p.run(start, nil, nil)
	costs := make([]float64, len(goals))
	for i, g := range goals {
		if d, ok := dist[g]; ok {
			costs[i] = d
		} else {
			costs[i] = math.Inf(1)
		}
	}
	return costs
}

// DetailedResult pairs a path with the cumulative cost at each of its
// points, mirroring the original's detailed_path_t (spec-supplemented,
// §3 of the expanded spec).
type DetailedResult struct {
	Path  *spatialmath.Path
	Costs []float64
}

// SearchDetailed behaves like Search but additionally returns the
// cumulative cost at every point along the path.
func (p *Planner) SearchDetailed(start, goal VertexID) DetailedResult {
	predecessor, dist, _, found := p.run(start, func(v VertexID) bool { return v == goal },
		func(v VertexID) float64 { return p.g.Position(v).Distance(p.g.Position(goal)) })
	if !found {
		return DetailedResult{Path: spatialmath.NewPath()}
	}

	var vertices []VertexID
	for v := goal; ; {
		vertices = append(vertices, v)
		prev, ok := predecessor[v]
		if !ok || prev == v {
			break
		}
		v = prev
	}

	path := spatialmath.NewPath()
	costs := make([]float64, 0, len(vertices))
	for i := len(vertices) - 1; i >= 0; i-- {
		path.PushBack(p.g.Position(vertices[i]))
		costs = append(costs, dist[vertices[i]])
	}
	return DetailedResult{Path: path, Costs: costs}
}
