// Package frontier implements Wavefront Frontier Detection over a CostMap:
// find contiguous open-space/unknown boundaries, filter them down to a
// usable shortlist, and rank the survivors for exploration (spec §4.4).
package frontier

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/gladys-robotics/navcore/costmap"
	"github.com/gladys-robotics/navcore/navgraph"
	"github.com/gladys-robotics/navcore/spatialmath"
)

// Errors this component can return.
var (
	ErrBadSeed              = errors.New("frontier: seed cell is unknown or an obstacle")
	ErrUnsupportedAlgorithm = errors.New("frontier: unsupported algorithm")
)

// Algorithm selects the detection strategy. FFD is reserved for a future
// fast-frontier variant that was never built; requesting it here fails
// explicitly with ErrUnsupportedAlgorithm rather than silently falling
// back to WFD.
type Algorithm int

const (
	WFD Algorithm = iota
	FFD
)

// Rect bounds a search region in cell indices, inclusive on both ends.
type Rect struct {
	XMin, XMax, YMin, YMax int
}

type cellKey [2]int

// Frontier is a set of 8-connected frontier cells discovered by one inner
// BFS harvest, before any attribute computation or filtering.
type Frontier struct {
	ID    uuid.UUID
	Cells []spatialmath.Point2
}

// Attributes is the ranked, per-frontier record spec §3 defines.
type Attributes struct {
	ID        uuid.UUID
	Size      int
	Ratio     float64
	Lookout   spatialmath.Point2
	Path      *spatialmath.Path
	Cost      float64
	YawDiff   float64
	Proximity int
}

// Detector runs WFD over a CostMap, optionally reusing a NavGraph for
// attribute computation (A* cost/path to a lookout).
type Detector struct {
	cm *costmap.CostMap
}

// New returns a Detector over cm.
func New(cm *costmap.CostMap) *Detector {
	return &Detector{cm: cm}
}

func isOpenSpace(cost float64) bool {
	return !costmap.IsObstacle(cost) && !costmap.IsUnknown(cost)
}

func (d *Detector) clipRect(r Rect) Rect {
	if r.XMin < 0 {
		r.XMin = 0
	}
	if r.YMin < 0 {
		r.YMin = 0
	}
	if r.XMax > d.cm.Width()-1 {
		r.XMax = d.cm.Width() - 1
	}
	if r.YMax > d.cm.Height()-1 {
		r.YMax = d.cm.Height() - 1
	}
	return r
}

func inRect(u, v int, rect Rect) bool {
	return u >= rect.XMin && u <= rect.XMax && v >= rect.YMin && v <= rect.YMax
}

func (d *Detector) neighbors8(u, v int, rect Rect) []cellKey {
	out := make([]cellKey, 0, 8)
	for dv := -1; dv <= 1; dv++ {
		for du := -1; du <= 1; du++ {
			if du == 0 && dv == 0 {
				continue
			}
			nu, nv := u+du, v+dv
			if inRect(nu, nv, rect) {
				out = append(out, cellKey{nu, nv})
			}
		}
	}
	return out
}

func (d *Detector) cellCenter(u, v int) spatialmath.Point2 {
	tr := d.cm.Transform()
	return spatialmath.NewPoint2(
		tr.OriginX+tr.ScaleX*float64(u),
		tr.OriginY+tr.ScaleY*float64(v),
	)
}

// isFrontierCell reports whether (u,v) is open-space with at least one
// unknown 8-neighbor within rect (spec §4.4).
func (d *Detector) isFrontierCell(u, v int, rect Rect) bool {
	cost, err := d.cm.Cost(u, v)
	if err != nil || !isOpenSpace(cost) {
		return false
	}
	for _, n := range d.neighbors8(u, v, rect) {
		c, err := d.cm.Cost(n[0], n[1])
		if err == nil && costmap.IsUnknown(c) {
			return true
		}
	}
	return false
}

// Detect runs algo starting from seed, confined to rect (clipped to the
// cost map's bounds). Only WFD is implemented.
func (d *Detector) Detect(seedU, seedV int, rect Rect, algo Algorithm) ([]Frontier, error) {
	if algo != WFD {
		return nil, ErrUnsupportedAlgorithm
	}
	rect = d.clipRect(rect)

	seedCost, err := d.cm.Cost(seedU, seedV)
	if err != nil || !isOpenSpace(seedCost) {
		return nil, ErrBadSeed
	}

	mapOpenList := map[cellKey]bool{{seedU, seedV}: true}
	mapCloseList := map[cellKey]bool{}
	frontierOpenList := map[cellKey]bool{}
	frontierCloseList := map[cellKey]bool{}

	queue := []cellKey{{seedU, seedV}}
	var frontiers []Frontier

	for len(queue) > 0 {
		cell := queue[0]
		queue = queue[1:]
		if mapCloseList[cell] {
			continue
		}
		mapCloseList[cell] = true

		if !frontierCloseList[cell] && d.isFrontierCell(cell[0], cell[1], rect) {
			cells := d.harvestFrontier(cell, rect, frontierOpenList, frontierCloseList)
			frontiers = append(frontiers, Frontier{ID: uuid.New(), Cells: cells})
		}

		for _, n := range d.neighbors8(cell[0], cell[1], rect) {
			if mapOpenList[n] || mapCloseList[n] {
				continue
			}
			cost, err := d.cm.Cost(n[0], n[1])
			if err != nil || !isOpenSpace(cost) {
				continue
			}
			mapOpenList[n] = true
			queue = append(queue, n)
		}
	}
	return frontiers, nil
}

// harvestFrontier is the inner BFS: starting at seed, walk 8-connected
// frontier cells only, marking them in frontierOpenList/frontierCloseList
// so the outer BFS never re-harvests them into a second frontier.
func (d *Detector) harvestFrontier(seed cellKey, rect Rect, frontierOpenList, frontierCloseList map[cellKey]bool) []spatialmath.Point2 {
	queue := []cellKey{seed}
	frontierOpenList[seed] = true
	var cells []spatialmath.Point2

	for len(queue) > 0 {
		cell := queue[0]
		queue = queue[1:]
		if frontierCloseList[cell] {
			continue
		}
		frontierCloseList[cell] = true
		cells = append(cells, d.cellCenter(cell[0], cell[1]))

		for _, n := range d.neighbors8(cell[0], cell[1], rect) {
			if frontierOpenList[n] || frontierCloseList[n] {
				continue
			}
			if !d.isFrontierCell(n[0], n[1], rect) {
				continue
			}
			frontierOpenList[n] = true
			queue = append(queue, n)
		}
	}
	return cells
}

// Filter keeps frontiers of at least minSize cells that have at least one
// cell within [minDist, maxDist] of robotPositions[0], then keeps only the
// largest maxCount of those (spec §4.4's filter_frontiers). Every surviving
// frontier is guaranteed to have a cell satisfying the annulus constraint,
// which ComputeAttributes relies on when picking a lookout.
func Filter(frontiers []Frontier, robotPositions []spatialmath.Point2, maxCount, minSize int, minDist, maxDist float64) []Frontier {
	robotPos := robotPositions[0]
	kept := lo.Filter(frontiers, func(f Frontier, _ int) bool {
		if len(f.Cells) < minSize {
			return false
		}
		return lo.SomeBy(f.Cells, func(c spatialmath.Point2) bool {
			d := robotPos.Distance(c)
			return d >= minDist && d <= maxDist
		})
	})
	sort.Slice(kept, func(i, j int) bool { return len(kept[i].Cells) > len(kept[j].Cells) })
	if len(kept) > maxCount {
		kept = kept[:maxCount]
	}
	return kept
}

// SizeStats summarizes the size distribution of a batch of frontiers
// (mean, population standard deviation), a diagnostic the original never
// computed but that's cheap context for a caller deciding min_size/max_count.
type SizeStats struct {
	Mean   float64
	StdDev float64
}

// ComputeSizeStats returns the size-distribution summary for frontiers.
func ComputeSizeStats(frontiers []Frontier) (SizeStats, error) {
	sizes := make(stats.Float64Data, len(frontiers))
	for i, f := range frontiers {
		sizes[i] = float64(len(f.Cells))
	}
	mean, err := sizes.Mean()
	if err != nil {
		return SizeStats{}, err
	}
	stddev, err := sizes.StandardDeviation()
	if err != nil {
		return SizeStats{}, err
	}
	return SizeStats{Mean: mean, StdDev: stddev}, nil
}

// ComputeAttributes ranks filtered frontiers for robot robotYaw at
// robotPositions[0], using ng for A* cost/path to each frontier's lookout
// and robotPositions[1:] as teammates for the proximity attribute.
func ComputeAttributes(frontiers []Frontier, ng *navgraph.Graph, robotPositions []spatialmath.Point2, robotYaw, minDist, maxDist float64) []Attributes {
	totalSize := 0
	for _, f := range frontiers {
		totalSize += len(f.Cells)
	}
	robotPos := robotPositions[0]
	teammates := robotPositions[1:]

	out := make([]Attributes, 0, len(frontiers))
	for _, f := range frontiers {
		lookout, yawDiff, ok := bestLookout(f.Cells, robotPos, robotYaw, minDist, maxDist)
		if !ok {
			continue
		}

		res := ng.AstarSearchMulti(robotPos, []spatialmath.Point2{lookout})

		proximity := 0
		for _, mate := range teammates {
			mateRes := ng.AstarSearchMulti(mate, []spatialmath.Point2{lookout})
			if mateRes.Cost < res.Cost {
				proximity++
			}
		}

		ratio := 0.0
		if totalSize > 0 {
			ratio = float64(len(f.Cells)) / float64(totalSize)
		}

		out = append(out, Attributes{
			ID:        f.ID,
			Size:      len(f.Cells),
			Ratio:     ratio,
			Lookout:   lookout,
			Path:      res.Path,
			Cost:      res.Cost,
			YawDiff:   yawDiff,
			Proximity: proximity,
		})
	}
	return out
}

// bestLookout returns the cell among cells within [minDist, maxDist] of
// robotPos that minimizes the absolute yaw delta from robotYaw.
func bestLookout(cells []spatialmath.Point2, robotPos spatialmath.Point2, robotYaw, minDist, maxDist float64) (spatialmath.Point2, float64, bool) {
	best := spatialmath.Point2{}
	bestDiff := math.Inf(1)
	found := false
	for _, c := range cells {
		d := robotPos.Distance(c)
		if d < minDist || d > maxDist {
			continue
		}
		diff := spatialmath.YawDiff(spatialmath.Yaw(c, robotPos), robotYaw)
		if !found || diff < bestDiff {
			bestDiff = diff
			best = c
			found = true
		}
	}
	return best, bestDiff, found
}
