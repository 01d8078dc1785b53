package navigation

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/gapnav/obstaclemap"
)

// Defaults applied to unset config fields.
const (
	DefaultBaseFrame              = "base_link"
	DefaultLaserTopic             = "scan"
	DefaultTransformTimeoutSec    = 3.
	DefaultScanPollingFrequencyHz = 10.
)

// Point is a planar point in meters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vector converts the point.
func (p Point) Vector() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y}
}

// Config describes how to configure the service.
type Config struct {
	BaseFrame  string `json:"base_frame,omitempty"`
	LaserTopic string `json:"laser_topic,omitempty"`

	RobotRadiusM  float64 `json:"robot_radius_m"`
	SafetyMarginM float64 `json:"safety_margin_m"`
	MinGapWidthM  float64 `json:"min_gap_width_m"`
	// Footprint defaults to the square circumscribing the robot radius.
	Footprint []Point `json:"footprint,omitempty"`

	TransformTimeoutSec    float64 `json:"transform_timeout_sec,omitempty"`
	ScanPollingFrequencyHz float64 `json:"scan_polling_frequency_hz,omitempty"`
	DistanceMetric         string  `json:"distance_metric,omitempty"`
	// Goal is the target of the polling loop, in the base frame. Defaults to one meter ahead.
	Goal *Point `json:"goal,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (config *Config) Validate(path string) error {
	if config.RobotRadiusM <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "robot_radius_m")
	}
	if config.SafetyMarginM < 0 {
		return utils.NewConfigValidationError(path, errors.New("safety_margin_m must not be negative"))
	}
	if config.MinGapWidthM < 0 {
		return utils.NewConfigValidationError(path, errors.New("min_gap_width_m must not be negative"))
	}
	if n := len(config.Footprint); n != 0 && n < 3 {
		return utils.NewConfigValidationError(fmt.Sprintf("%s.%s", path, "footprint"),
			errors.Errorf("need at least 3 vertices, got %d", n))
	}
	if config.TransformTimeoutSec < 0 {
		return utils.NewConfigValidationError(path, errors.New("transform_timeout_sec must not be negative"))
	}
	if config.ScanPollingFrequencyHz < 0 {
		return utils.NewConfigValidationError(path, errors.New("scan_polling_frequency_hz must not be negative"))
	}
	if _, err := obstaclemap.ParseMetric(config.DistanceMetric); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	return config.Profile().Validate()
}

// BaseFrameName returns the configured base frame or its default.
func (config *Config) BaseFrameName() string {
	if config.BaseFrame == "" {
		return DefaultBaseFrame
	}
	return config.BaseFrame
}

// LaserTopicName returns the configured laser topic or its default.
func (config *Config) LaserTopicName() string {
	if config.LaserTopic == "" {
		return DefaultLaserTopic
	}
	return config.LaserTopic
}

// Profile builds the robot profile the obstacle map works with.
func (config *Config) Profile() obstaclemap.RobotProfile {
	profile := obstaclemap.RobotProfile{
		Radius:       config.RobotRadiusM,
		SafetyMargin: config.SafetyMarginM,
		MinGapWidth:  config.MinGapWidthM,
	}
	if len(config.Footprint) == 0 {
		profile.Footprint = obstaclemap.SquareFootprint(config.RobotRadiusM)
		return profile
	}
	for _, p := range config.Footprint {
		profile.Footprint = append(profile.Footprint, p.Vector())
	}
	return profile
}

// TransformTimeout is how long a sensor transform lookup may take.
func (config *Config) TransformTimeout() time.Duration {
	sec := config.TransformTimeoutSec
	if sec == 0 {
		sec = DefaultTransformTimeoutSec
	}
	return time.Duration(sec * float64(time.Second))
}

// PollingInterval is the time between two scans.
func (config *Config) PollingInterval() time.Duration {
	hz := config.ScanPollingFrequencyHz
	if hz == 0 {
		hz = DefaultScanPollingFrequencyHz
	}
	return time.Duration(float64(time.Second) / hz)
}

// Metric returns the gap selection metric. Validate rejects unknown names.
func (config *Config) Metric() obstaclemap.Metric {
	m, _ := obstaclemap.ParseMetric(config.DistanceMetric)
	return m
}

// GoalVector returns the polling target.
func (config *Config) GoalVector() r3.Vector {
	if config.Goal == nil {
		return r3.Vector{X: 1}
	}
	return config.Goal.Vector()
}

// ObstacleMapConfig converts the config for obstaclemap.NewObstacleMap.
func (config *Config) ObstacleMapConfig() obstaclemap.Config {
	return obstaclemap.Config{
		RobotFrame:       config.BaseFrameName(),
		Profile:          config.Profile(),
		TransformTimeout: config.TransformTimeout(),
	}
}

// NewConfigFromAttributes decodes an attribute map, as found in a larger JSON document, into a
// config and validates it.
func NewConfigFromAttributes(attributes map[string]interface{}) (*Config, error) {
	var conf Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: &conf, WeaklyTypedInput: true})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, err
	}
	if err := conf.Validate("navigation"); err != nil {
		return nil, err
	}
	return &conf, nil
}

// ReadConfig reads and validates a JSON config file.
func ReadConfig(path string) (*Config, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read navigation config")
	}
	var conf Config
	if err := json.Unmarshal(data, &conf); err != nil {
		return nil, errors.Wrapf(err, "cannot parse %s", path)
	}
	if err := conf.Validate(path); err != nil {
		return nil, err
	}
	return &conf, nil
}
