// Package dstarlite implements incremental replanning over a NavGraph:
// a single search instance that reuses prior work across edge-weight
// changes instead of rerunning A* from scratch (spec §4.3).
package dstarlite

import (
	"container/heap"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/gladys-robotics/navcore/astar"
	"github.com/gladys-robotics/navcore/internal/epoch"
	"github.com/gladys-robotics/navcore/logging"
	"github.com/gladys-robotics/navcore/spatialmath"
)

// VertexID and Edge are shared with astar/navgraph so a NavGraph needs no
// adapter to satisfy Graph here.
type VertexID = astar.VertexID
type Edge = astar.Edge

// Graph is the read surface a search instance needs; identical to
// astar.Graph, reused rather than redeclared since NavGraph already
// implements it.
type Graph = astar.Graph

// ErrNoPath is returned by New and Replan when the goal is unreachable,
// and by Path when the anchor vertex has g = +Inf.
var ErrNoPath = errors.New("dstarlite: no path to goal")

// State is the search instance's lifecycle stage (spec §4.3).
type State int

const (
	StateInit State = iota
	StateReady
	StateReplanning
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateReady:
		return "READY"
	case StateReplanning:
		return "REPLANNING"
	default:
		return "UNKNOWN"
	}
}

// key is the lexicographic D*-Lite priority: (min(g,rhs)+h+km, min(g,rhs)).
type key struct {
	k1, k2 float64
}

func (a key) less(b key) bool {
	if a.k1 != b.k1 {
		return a.k1 < b.k1
	}
	return a.k2 < b.k2
}

type pqEntry struct {
	v   VertexID
	k   key
	idx int
}

// indexedQueue is the "two-sided indexed ordered multiset" spec §4.3
// requires: extract-min, membership test, and erase-by-id, none of which a
// plain container/heap binary heap offers on its own. Backed by
// container/heap plus a vertex->slot map so erase/insert stay O(log n).
type indexedQueue struct {
	items []*pqEntry
	pos   map[VertexID]int
}

func newIndexedQueue() *indexedQueue {
	return &indexedQueue{pos: make(map[VertexID]int)}
}

func (q *indexedQueue) Len() int { return len(q.items) }
func (q *indexedQueue) Less(i, j int) bool {
	return q.items[i].k.less(q.items[j].k)
}
func (q *indexedQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].idx, q.items[j].idx = i, j
	q.pos[q.items[i].v] = i
	q.pos[q.items[j].v] = j
}
func (q *indexedQueue) Push(x any) {
	e := x.(*pqEntry)
	e.idx = len(q.items)
	q.pos[e.v] = e.idx
	q.items = append(q.items, e)
}
func (q *indexedQueue) Pop() any {
	old := q.items
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	delete(q.pos, e.v)
	return e
}

func (q *indexedQueue) insert(v VertexID, k key) {
	heap.Push(q, &pqEntry{v: v, k: k})
}

// erase removes v from the queue if present, reporting whether it was.
func (q *indexedQueue) erase(v VertexID) bool {
	idx, ok := q.pos[v]
	if !ok {
		return false
	}
	heap.Remove(q, idx)
	return true
}

func (q *indexedQueue) peekKey() (key, bool) {
	if len(q.items) == 0 {
		return key{}, false
	}
	return q.items[0].k, true
}

func (q *indexedQueue) popMin() (VertexID, key) {
	e := heap.Pop(q).(*pqEntry)
	return e.v, e.k
}

// Search is one incremental D*-Lite instance over a Graph. Not safe for
// concurrent use by multiple goroutines; distinct Search instances over the
// same Graph are safe only while the graph is otherwise immutable (spec
// §4.3's concurrency note).
type Search struct {
	g        Graph
	epochSrc *epoch.Source
	log      logging.Logger

	start, goal, last VertexID
	t                 uint64
	km                float64

	gScore []float64
	rhs    []float64

	pq *indexedQueue

	state State
}

// New builds a Search from start toward goal and runs the initial shortest
// path computation, transitioning INIT -> READY. Returns ErrNoPath if goal
// is unreachable from start.
func New(g Graph, start, goal VertexID, epochSrc *epoch.Source, log logging.Logger) (*Search, error) {
	n := g.NumVertices()
	s := &Search{
		g:        g,
		epochSrc: epochSrc,
		log:      log,
		start:    start,
		goal:     goal,
		last:     start,
		gScore:   make([]float64, n),
		rhs:      make([]float64, n),
		pq:       newIndexedQueue(),
		state:    StateInit,
	}
	for i := range s.gScore {
		s.gScore[i] = math.Inf(1)
		s.rhs[i] = math.Inf(1)
	}
	if epochSrc != nil {
		s.t = epochSrc.Now()
	}

	s.rhs[goal] = 0
	s.pq.insert(goal, s.calcKey(goal))

	err := s.computeShortestPath()
	if log != nil {
		log.Infow("dstarlite initialized", "vertices", n, "state", s.state.String())
	}
	return s, err
}

func (s *Search) calcKey(v VertexID) key {
	m := math.Min(s.gScore[v], s.rhs[v])
	return key{k1: m + s.h(s.start, v) + s.km, k2: m}
}

func (s *Search) h(a, b VertexID) float64 {
	return s.g.Position(a).Distance(s.g.Position(b))
}

func (s *Search) updateVertex(v VertexID) {
	if v != s.goal {
		min := math.Inf(1)
		for _, e := range s.g.Neighbors(v) {
			if c := e.Weight + s.gScore[e.To]; c < min {
				min = c
			}
		}
		s.rhs[v] = min
	}
	s.pq.erase(v)
	if s.gScore[v] != s.rhs[v] {
		s.pq.insert(v, s.calcKey(v))
	}
}

// computeShortestPath is the main D*-Lite loop (spec §4.3): pop until the
// queue's minimum key is no longer below key(start) and g(start)=rhs(start).
func (s *Search) computeShortestPath() error {
	for {
		topKey, ok := s.pq.peekKey()
		if !ok {
			break
		}
		startKey := s.calcKey(s.start)
		if !topKey.less(startKey) && s.gScore[s.start] == s.rhs[s.start] {
			break
		}

		v, kOld := s.pq.popMin()
		kNew := s.calcKey(v)

		switch {
		case kOld.less(kNew):
			s.pq.insert(v, kNew)
		case s.gScore[v] > s.rhs[v]:
			s.gScore[v] = s.rhs[v]
			for _, e := range s.g.Neighbors(v) {
				s.updateVertex(e.To)
			}
		default:
			s.gScore[v] = math.Inf(1)
			s.updateVertex(v)
			for _, e := range s.g.Neighbors(v) {
				s.updateVertex(e.To)
			}
		}
	}

	s.state = StateReady
	if math.IsInf(s.gScore[s.start], 1) {
		return ErrNoPath
	}
	return nil
}

// Path walks greedily from the replanning anchor ("last") to goal, at each
// step choosing the neighbor minimizing edge.weight + g(neighbor). Returns
// ErrNoPath if the anchor cannot reach goal.
func (s *Search) Path() (*spatialmath.Path, error) {
	if math.IsInf(s.gScore[s.last], 1) {
		return nil, ErrNoPath
	}

	path := spatialmath.NewPath()
	path.PushBack(s.g.Position(s.last))

	v := s.last
	for v != s.goal {
		neighbors := s.g.Neighbors(v)
		if len(neighbors) == 0 {
			return nil, ErrNoPath
		}
		best := neighbors[0].To
		min := neighbors[0].Weight + s.gScore[best]
		for _, e := range neighbors[1:] {
			if c := e.Weight + s.gScore[e.To]; c < min {
				min = c
				best = e.To
			}
		}
		v = best
		path.PushBack(s.g.Position(v))
	}
	return path, nil
}

// Replan advances the replanning anchor to now, folds the heuristic drift
// into km, re-evaluates every vertex touched by an edge stamped since the
// last replan, and recomputes the shortest path (spec §4.3). Edge-weight
// changes are applied to the underlying Graph directly (e.g. via
// navgraph.Graph.SetEdgeWeight) before calling Replan.
func (s *Search) Replan(now VertexID) error {
	s.state = StateReplanning
	s.km += s.h(now, s.last)
	s.last = now

	currentTick := s.t
	if s.epochSrc != nil {
		currentTick = s.epochSrc.Now()
	}

	for v := 0; v < s.g.NumVertices(); v++ {
		for _, e := range s.g.Neighbors(VertexID(v)) {
			if e.Stamp > s.t {
				s.updateVertex(VertexID(v))
				s.updateVertex(e.To)
			}
		}
	}

	s.t = currentTick
	err := s.computeShortestPath()
	if s.log != nil {
		s.log.Infow("dstarlite replanned", "anchor", now, "km", s.km, "ok", err == nil)
	}
	return err
}

// State reports the search instance's current lifecycle stage.
func (s *Search) State() State { return s.state }

// WriteDOT dumps the current (g, rhs) cost pair at every vertex plus the
// graph's edges, mirroring the original's per-vertex write_graphviz
// diagnostic.
func (s *Search) WriteDOT(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "digraph dstarlite {"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "  node [shape=box];"); err != nil {
		return err
	}
	for v := 0; v < s.g.NumVertices(); v++ {
		p := s.g.Position(VertexID(v))
		if _, err := fmt.Fprintf(w, "  %d [label=\"pt (%.3f, %.3f) g: %.3f rhs: %.3f\"];\n",
			v, p.X, p.Y, s.gScore[v], s.rhs[v]); err != nil {
			return err
		}
	}
	seen := make(map[[2]VertexID]bool)
	for v := 0; v < s.g.NumVertices(); v++ {
		for _, e := range s.g.Neighbors(VertexID(v)) {
			a, b := VertexID(v), e.To
			if a > b {
				a, b = b, a
			}
			pairKey := [2]VertexID{a, b}
			if seen[pairKey] {
				continue
			}
			seen[pairKey] = true
			if _, err := fmt.Fprintf(w, "  %d -> %d [label=\"%.3f\"];\n", v, e.To, e.Weight); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
