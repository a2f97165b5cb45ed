// Package spatialmath provides the vector and path types shared by the
// planning and visibility packages: Point2, Point3, Pose4, and Path.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Point2 is an ordered pair of real coordinates in some 2-D frame
// (raster-pixel, UTM, or custom — the frame is a property of the caller,
// not of the value). The y axis is image-oriented: it increases downward.
type Point2 struct {
	X, Y float64
}

// NewPoint2 builds a Point2 from raw coordinates.
func NewPoint2(x, y float64) Point2 { return Point2{X: x, Y: y} }

// r2Point returns the golang/geo vector view of p, used internally for
// arithmetic that r2.Point already provides.
func (p Point2) r2Point() r2.Point { return r2.Point{X: p.X, Y: p.Y} }

// Add returns p + q.
func (p Point2) Add(q Point2) Point2 {
	s := p.r2Point().Add(q.r2Point())
	return Point2{X: s.X, Y: s.Y}
}

// Sub returns p - q.
func (p Point2) Sub(q Point2) Point2 {
	s := p.r2Point().Sub(q.r2Point())
	return Point2{X: s.X, Y: s.Y}
}

// DistanceSq returns the squared euclidean distance between p and q.
func (p Point2) DistanceSq(q Point2) float64 {
	d := p.Sub(q)
	return d.X*d.X + d.Y*d.Y
}

// Distance returns the euclidean distance between p and q.
func (p Point2) Distance(q Point2) float64 {
	return math.Sqrt(p.DistanceSq(q))
}

// Yaw returns the angle from b to a, `atan2(b.Y-a.Y, a.X-b.X)` folded into
// (-π, π]. The y axis is image-oriented (positive downward), matching the
// raster frame the whole library operates in.
func Yaw(a, b Point2) float64 {
	theta := math.Atan2(b.Y-a.Y, a.X-b.X)
	return foldAngle(theta)
}

// YawDiff returns the minimal absolute angular delta between two yaws,
// each expected already folded into (-π, π].
func YawDiff(a, b float64) float64 {
	d := foldAngle(a - b)
	return math.Abs(d)
}

func foldAngle(theta float64) float64 {
	const twoPi = 2 * math.Pi
	theta = math.Mod(theta, twoPi)
	if theta <= -math.Pi {
		theta += twoPi
	}
	if theta > math.Pi {
		theta -= twoPi
	}
	return theta
}

// Point3 is a 3-D point, used by RobotModel poses and VisibilityTester.
type Point3 struct {
	X, Y, Z float64
}

// NewPoint3 builds a Point3 from raw coordinates.
func NewPoint3(x, y, z float64) Point3 { return Point3{X: x, Y: y, Z: z} }

func (p Point3) r3Vector() r3.Vector { return r3.Vector{X: p.X, Y: p.Y, Z: p.Z} }

// Point2 projects p onto the XY plane.
func (p Point3) Point2() Point2 { return Point2{X: p.X, Y: p.Y} }

// Distance returns the euclidean distance between p and q in 3-D.
func (p Point3) Distance(q Point3) float64 {
	return p.r3Vector().Sub(q.r3Vector()).Norm()
}

// Pose4 is a 3-D point plus a heading, used for sensor and antenna poses
// relative to a robot body.
type Pose4 struct {
	X, Y, Z, Theta float64
}

// NewPose4 builds a Pose4 from raw fields.
func NewPose4(x, y, z, theta float64) Pose4 {
	return Pose4{X: x, Y: y, Z: z, Theta: theta}
}

// Point3 drops the heading component.
func (p Pose4) Point3() Point3 { return Point3{X: p.X, Y: p.Y, Z: p.Z} }

// Offset applies the pose as a translation (heading ignored) to a body-frame
// origin, yielding the pose's position in the body's reference frame. Sensor
// and antenna poses are composed this way against a robot position.
func (p Pose4) Offset(origin Point3) Point3 {
	return Point3{X: origin.X + p.X, Y: origin.Y + p.Y, Z: origin.Z + p.Z}
}
