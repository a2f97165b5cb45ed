// Package costmap builds a single-band traversal-cost raster from a
// per-class probability raster and a robot description (spec §4.1).
package costmap

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/gladys-robotics/navcore/logging"
	"github.com/gladys-robotics/navcore/raster"
	"github.com/gladys-robotics/navcore/robotmodel"
	"github.com/gladys-robotics/navcore/spatialmath"
)

// WUnknown is the sentinel value for "terrain unknown" cells: any negative
// value signals unknown, and -1 is the one this package emits.
const WUnknown = -1.0

const (
	bandNo3DClass = "NO_3D_CLASS"
	bandObstacle  = "OBSTACLE"

	unknownThreshold  = 0.9
	obstacleThreshold = 0.4

	// flagObstacle marks a cell provisionally obstructed during the
	// two-pass inflation sweep. Distinct from both WUnknown and +Inf, so a
	// flagged cell is never taken for an obstacle source within the same
	// sweep, and a cell already at +Inf is never re-flagged. The sweep is
	// not idempotent: run again over its own output, it inflates the
	// committed cells further.
	flagObstacle = -2.0
)

// Errors this component can return.
var (
	ErrBadRaster    = errors.New("costmap: invalid terrain raster")
	ErrBadRobot     = errors.New("costmap: invalid robot model")
	ErrSizeMismatch = errors.New("costmap: source bands have inconsistent size")
)

// Options configures optional CostMap behavior.
type Options struct {
	// InflateObstacles additionally marks cells within floor(radius/scale)
	// of a hard obstacle as obstacles themselves. Disabled by default.
	InflateObstacles bool
}

// CostMap collapses a multi-band terrain raster into a single WEIGHT band,
// per spec §3/§4.1.
type CostMap struct {
	terrain *raster.Raster
	weight  []float32
	width   int
	height  int
}

// Build constructs a CostMap from terrain and robot. terrain must carry at
// least NO_3D_CLASS and OBSTACLE bands, plus every class name referenced in
// robot.Costs.
func Build(terrain *raster.Raster, robot robotmodel.Model, opts Options, log logging.Logger) (*CostMap, error) {
	var errs error
	if robot.Radius <= 0 {
		errs = multierr.Append(errs, errors.Wrap(ErrBadRobot, "radius must be > 0"))
	}
	if robot.Velocity <= 0 {
		errs = multierr.Append(errs, errors.Wrap(ErrBadRobot, "velocity must be > 0"))
	}

	required := make([]string, 0, len(robot.Costs)+2)
	required = append(required, bandNo3DClass, bandObstacle)
	costBands := make(map[string][]float32, len(robot.Costs))
	for name := range robot.Costs {
		required = append(required, name)
	}
	for _, name := range required {
		band, ok := terrain.Band(name)
		if !ok {
			errs = multierr.Append(errs, errors.Wrapf(ErrBadRaster, "missing required band %q", name))
			continue
		}
		if len(band) != terrain.Width()*terrain.Height() {
			errs = multierr.Append(errs, errors.Wrapf(ErrSizeMismatch, "band %q", name))
			continue
		}
		costBands[name] = band
	}
	if errs != nil {
		return nil, errs
	}

	no3d, _ := terrain.Band(bandNo3DClass)
	obstacle, _ := terrain.Band(bandObstacle)

	width, height := terrain.Width(), terrain.Height()
	weight := make([]float32, width*height)
	for i := range weight {
		switch {
		case no3d[i] > unknownThreshold:
			weight[i] = WUnknown
		case obstacle[i] > obstacleThreshold:
			weight[i] = float32(math.Inf(1))
		default:
			w := 1.0
			for name, k := range robot.Costs {
				w += k * float64(costBands[name][i])
			}
			weight[i] = float32(w / robot.Velocity)
		}
	}

	cm := &CostMap{terrain: terrain, weight: weight, width: width, height: height}
	if opts.InflateObstacles {
		cm.inflate(robot.Radius)
	}

	if log != nil {
		log.Infow("built cost map", "width", width, "height", height,
			"classes", len(robot.Costs), "inflate", opts.InflateObstacles)
	}
	return cm, nil
}

// inflate marks every cell within floor(radius/scale) of a hard obstacle
// as itself obstructed, using a flag-then-commit two-pass sweep so a cell
// flagged by one obstacle doesn't cascade into flagging further cells
// within the same pass (spec §4.1).
func (cm *CostMap) inflate(radius float64) {
	tr := cm.terrain.Transform()
	rx := int(math.Floor(radius / math.Abs(tr.ScaleX)))
	ry := int(math.Floor(radius / math.Abs(tr.ScaleY)))
	if rx < 0 {
		rx = 0
	}
	if ry < 0 {
		ry = 0
	}

	isObstacle := func(v float32) bool { return math.IsInf(float64(v), 1) }
	flag := func(u, v int) {
		if !cm.InBounds(u, v) {
			return
		}
		idx := v*cm.width + u
		if !isObstacle(cm.weight[idx]) {
			cm.weight[idx] = flagObstacle
		}
	}

	for y := 0; y < cm.height; y++ {
		for x := 0; x < cm.width; x++ {
			if !isObstacle(cm.weight[y*cm.width+x]) {
				continue
			}
			for dx := -rx; dx <= rx; dx++ {
				for dy := -ry; dy <= ry; dy++ {
					if dx == 0 && dy == 0 {
						continue
					}
					flag(x+dx, y+dy)
				}
			}
		}
	}

	for i, v := range cm.weight {
		if v == flagObstacle {
			cm.weight[i] = float32(math.Inf(1))
		}
	}
}

// Width returns the cost map's width in cells.
func (cm *CostMap) Width() int { return cm.width }

// Height returns the cost map's height in cells.
func (cm *CostMap) Height() int { return cm.height }

// InBounds reports whether (u,v) is within the cost map.
func (cm *CostMap) InBounds(u, v int) bool {
	return u >= 0 && u < cm.width && v >= 0 && v < cm.height
}

// Transform returns the cost map's affine transform, inherited from the
// source terrain raster (spec invariant: "scale, size, and georeferencing
// match the input raster").
func (cm *CostMap) Transform() raster.Transform { return cm.terrain.Transform() }

// CustomToUTM delegates to the source raster's frame conversion (spec
// §4.2: "custom_to_utm / utm_to_custom projections delegated to the
// raster").
func (cm *CostMap) CustomToUTM(p spatialmath.Point2) spatialmath.Point2 {
	return cm.terrain.CustomToUTM(p)
}

// UTMToCustom delegates to the source raster's frame conversion.
func (cm *CostMap) UTMToCustom(p spatialmath.Point2) spatialmath.Point2 {
	return cm.terrain.UTMToCustom(p)
}

// Cost returns the traversal cost at cell (u,v): a positive finite number,
// +Inf for a hard obstacle, or WUnknown (<0) for unknown terrain.
func (cm *CostMap) Cost(u, v int) (float64, error) {
	if !cm.InBounds(u, v) {
		return 0, errors.Wrapf(raster.ErrOutOfBounds, "cell (%d,%d)", u, v)
	}
	return float64(cm.weight[v*cm.width+u]), nil
}

// IsObstacle reports whether cost is the hard-obstacle sentinel.
func IsObstacle(cost float64) bool { return math.IsInf(cost, 1) }

// IsUnknown reports whether cost is the unknown-terrain sentinel.
func IsUnknown(cost float64) bool { return cost < 0 }

// QuantizedView returns an 8-bit visual-inspection view of the cost
// raster: 0 for unknown, 255 for obstacle, floor(cost*5) clamped to
// [0,254] otherwise. Supplements the original's get_weight_band_uchar.
func (cm *CostMap) QuantizedView() []byte {
	out := make([]byte, len(cm.weight))
	for i, v := range cm.weight {
		switch {
		case v < 0:
			out[i] = 0
		case math.IsInf(float64(v), 1):
			out[i] = 255
		default:
			q := math.Floor(float64(v) * 5.0)
			if q > 254 {
				q = 254
			}
			if q < 0 {
				q = 0
			}
			out[i] = byte(q)
		}
	}
	return out
}
