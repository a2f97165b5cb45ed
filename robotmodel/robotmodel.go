// Package robotmodel implements the RobotModel contract: radius, velocity,
// per-class cost weights, sensor pose/range/fov, and an optional antenna
// pose/range, loaded from a structured document.
package robotmodel

import (
	"math"
	"os"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/gladys-robotics/navcore/spatialmath"
)

// ErrBadRobot reports a missing required field, a non-positive
// radius/velocity, or a negative mass (mass is optional; zero means absent).
var ErrBadRobot = errors.New("robotmodel: invalid robot description")

// Model is the decoded, validated robot description.
type Model struct {
	Radius   float64
	Velocity float64
	Mass     float64 // optional, unused by the planning core

	SensorPose  spatialmath.Pose4
	SensorRange float64
	SensorFOV   float64

	HasAntenna   bool
	AntennaPose  spatialmath.Pose4
	AntennaRange float64

	// Costs maps terrain class name (as it appears in the raster band
	// registry) to its per-unit traversal weight.
	Costs map[string]float64
}

type poseDoc struct {
	X, Y, Z, T float64
}

type sensorDoc struct {
	Pose  poseDoc
	Range float64
	FOV   float64 `mapstructure:"fov"`
}

type antennaDoc struct {
	Pose  poseDoc
	Range float64
}

type robotDoc struct {
	Radius   float64
	Velocity float64
	Mass     float64
}

type doc struct {
	Robot   robotDoc
	Sensor  sensorDoc
	Antenna *antennaDoc
	Cost    map[string]float64
}

// Load reads and decodes a robot description file (YAML-shaped structured
// document) into a validated Model.
func Load(path string) (Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Model{}, errors.Wrapf(err, "robotmodel: reading %q", path)
	}
	return Parse(raw)
}

// Parse decodes raw YAML bytes into a validated Model.
func Parse(raw []byte) (Model, error) {
	var generic map[string]any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return Model{}, errors.Wrap(err, "robotmodel: parsing document")
	}

	var d doc
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &d,
		WeaklyTypedInput: true,
		DecodeHook:       tolerantFloatHook,
	})
	if err != nil {
		return Model{}, errors.Wrap(err, "robotmodel: building decoder")
	}
	if err := dec.Decode(generic); err != nil {
		return Model{}, errors.Wrap(err, "robotmodel: decoding document")
	}

	return validate(d)
}

// tolerantFloatHook coerces any scalar (int, string, bool) into float64
// using spf13/cast, so a YAML document that writes `cost.FLAT: 0` (an int
// literal) still decodes cleanly into a float64 field.
func tolerantFloatHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Float64 || from.Kind() == reflect.Float64 {
		return data, nil
	}
	return cast.ToFloat64E(data)
}

func validate(d doc) (Model, error) {
	var errs error
	if d.Robot.Radius <= 0 {
		errs = multierr.Append(errs, errors.Wrap(ErrBadRobot, "robot.radius must be > 0"))
	}
	if d.Robot.Velocity <= 0 {
		errs = multierr.Append(errs, errors.Wrap(ErrBadRobot, "robot.velocity must be > 0"))
	}
	if d.Robot.Mass < 0 {
		errs = multierr.Append(errs, errors.Wrap(ErrBadRobot, "robot.mass must be > 0 when present"))
	}
	if d.Sensor.Range <= 0 {
		errs = multierr.Append(errs, errors.Wrap(ErrBadRobot, "sensor.range must be > 0"))
	}
	if d.Sensor.FOV <= 0 || d.Sensor.FOV > 2*math.Pi {
		errs = multierr.Append(errs, errors.Wrap(ErrBadRobot, "sensor.fov must be in (0, 2*pi]"))
	}
	if d.Antenna != nil && d.Antenna.Range <= 0 {
		errs = multierr.Append(errs, errors.Wrap(ErrBadRobot, "antenna.range must be > 0 when antenna is present"))
	}
	if errs != nil {
		return Model{}, errs
	}

	m := Model{
		Radius:      d.Robot.Radius,
		Velocity:    d.Robot.Velocity,
		Mass:        d.Robot.Mass,
		SensorPose:  spatialmath.NewPose4(d.Sensor.Pose.X, d.Sensor.Pose.Y, d.Sensor.Pose.Z, d.Sensor.Pose.T),
		SensorRange: d.Sensor.Range,
		SensorFOV:   d.Sensor.FOV,
		Costs:       d.Cost,
	}
	if d.Antenna != nil {
		m.HasAntenna = true
		m.AntennaPose = spatialmath.NewPose4(d.Antenna.Pose.X, d.Antenna.Pose.Y, d.Antenna.Pose.Z, d.Antenna.Pose.T)
		m.AntennaRange = d.Antenna.Range
	}
	return m, nil
}
