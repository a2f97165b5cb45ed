package spatialmath

import "container/list"

// Path is an ordered, finite, non-repeating sequence of Point2 describing a
// planned route. Path reconstruction from a predecessor chain walks
// backward from goal to start, so Path is built with PushFront and is
// backed by a doubly linked list to keep that operation O(1); Points
// returns the materialized slice once construction is done.
type Path struct {
	points *list.List
}

// NewPath returns an empty Path.
func NewPath() *Path {
	return &Path{points: list.New()}
}

// PushFront prepends p to the path.
func (path *Path) PushFront(p Point2) {
	path.points.PushFront(p)
}

// PushBack appends p to the path.
func (path *Path) PushBack(p Point2) {
	path.points.PushBack(p)
}

// Len returns the number of points in the path.
func (path *Path) Len() int {
	return path.points.Len()
}

// Points materializes the path as an ordered slice.
func (path *Path) Points() []Point2 {
	out := make([]Point2, 0, path.points.Len())
	for e := path.points.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(Point2))
	}
	return out
}

// First returns the first point and whether the path is non-empty.
func (path *Path) First() (Point2, bool) {
	if path.points.Len() == 0 {
		return Point2{}, false
	}
	return path.points.Front().Value.(Point2), true
}

// Last returns the last point and whether the path is non-empty.
func (path *Path) Last() (Point2, bool) {
	if path.points.Len() == 0 {
		return Point2{}, false
	}
	return path.points.Back().Value.(Point2), true
}
