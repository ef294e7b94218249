package simulation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfiguration is returned when a world cannot be built from a Config.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Update orders accepted in Config.UpdateOrder.
const (
	// OrderSequential lets a boid see the already updated state of the boids
	// processed before it in the same frame.
	OrderSequential = "sequential"
	// OrderSnapshot makes every boid read the population as it was at frame start.
	OrderSnapshot = "snapshot"
)

// Initial velocity modes accepted in Config.InitialVelocity.
const (
	// VelocityTrig draws cos, sin and tan of three independent angles in [0.4, 1).
	VelocityTrig = "trig"
	// VelocityUnit draws the same vector and normalizes it.
	VelocityUnit = "unit"
)

//go:embed config.schema.json
var configSchema string

type Config struct {
	// World Dimensions
	WorldWidth  float64 `json:"worldWidth"`
	WorldHeight float64 `json:"worldHeight"`
	WorldDepth  float64 `json:"worldDepth"`

	// Population and run length
	Population int    `json:"population"`
	Frames     int    `json:"frames"`
	FirstFrame int    `json:"firstFrame"` // Index of the first emitted keyframe
	Seed       uint64 `json:"seed"`

	// Boid tuning
	BoidSize          float64 `json:"boidSize"`
	SeparationPadding float64 `json:"separationPadding"` // desired separation = size² + padding
	MaxSteeringSpeed  float64 `json:"maxSteeringSpeed"`
	MaxSteeringForce  float64 `json:"maxSteeringForce"`

	// Flocking weights
	SeparationWeight float64 `json:"separationWeight"`
	AlignmentWeight  float64 `json:"alignmentWeight"`
	CohesionWeight   float64 `json:"cohesionWeight"`

	UpdateOrder     string `json:"updateOrder"`
	InitialVelocity string `json:"initialVelocity"`

	// Telemetry
	StatsEvery int    `json:"statsEvery"` // 0 disables periodic stats
	LogLevel   string `json:"logLevel"`
}

func DefaultConfig() *Config {
	return &Config{
		WorldWidth:        100,
		WorldHeight:       100,
		WorldDepth:        100,
		Population:        2400,
		Frames:            420,
		FirstFrame:        1,
		Seed:              1,
		BoidSize:          1,
		SeparationPadding: 6,
		MaxSteeringSpeed:  0.4 * 6,
		MaxSteeringForce:  0.8 * 2,
		SeparationWeight:  0.5,
		AlignmentWeight:   0.5,
		CohesionWeight:    0.5,
		UpdateOrder:       OrderSequential,
		InitialVelocity:   VelocityTrig,
		StatsEvery:        0,
		LogLevel:          "info",
	}
}

// Validate checks the configuration eagerly, before any boid is created.
func (c *Config) Validate() error {
	var problems []string
	if c.Population <= 0 {
		problems = append(problems, fmt.Sprintf("population must be positive, got %d", c.Population))
	}
	if c.Frames <= 0 {
		problems = append(problems, fmt.Sprintf("frames must be positive, got %d", c.Frames))
	}
	if !positive(c.WorldWidth) || !positive(c.WorldHeight) || !positive(c.WorldDepth) {
		problems = append(problems, fmt.Sprintf("world dimensions must be positive and finite, got %gx%gx%g",
			c.WorldWidth, c.WorldHeight, c.WorldDepth))
	}
	if !positive(c.BoidSize) {
		problems = append(problems, fmt.Sprintf("boid size must be positive and finite, got %g", c.BoidSize))
	}
	if !finite(c.SeparationPadding) {
		problems = append(problems, fmt.Sprintf("separation padding must be finite, got %g", c.SeparationPadding))
	} else if positive(c.BoidSize) && !positive(c.BoidSize*c.BoidSize+c.SeparationPadding) {
		problems = append(problems, fmt.Sprintf("desired separation (boidSize² + separationPadding) must be positive, got %g",
			c.BoidSize*c.BoidSize+c.SeparationPadding))
	}
	if !finite(c.MaxSteeringSpeed) || !finite(c.MaxSteeringForce) ||
		c.MaxSteeringSpeed < 0 || c.MaxSteeringForce < 0 {
		problems = append(problems, fmt.Sprintf("steering speed and force must be finite and not negative, got %g and %g",
			c.MaxSteeringSpeed, c.MaxSteeringForce))
	}
	if !finite(c.SeparationWeight) || !finite(c.AlignmentWeight) || !finite(c.CohesionWeight) {
		problems = append(problems, fmt.Sprintf("rule weights must be finite, got %g, %g, %g",
			c.SeparationWeight, c.AlignmentWeight, c.CohesionWeight))
	}
	if c.StatsEvery < 0 {
		problems = append(problems, fmt.Sprintf("statsEvery must not be negative, got %d", c.StatsEvery))
	}
	switch c.UpdateOrder {
	case OrderSequential, OrderSnapshot:
	default:
		problems = append(problems, fmt.Sprintf("unknown update order %q", c.UpdateOrder))
	}
	switch c.InitialVelocity {
	case VelocityTrig, VelocityUnit:
	default:
		problems = append(problems, fmt.Sprintf("unknown initial velocity mode %q", c.InitialVelocity))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// positive is false for NaN and +Inf.
func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// LoadConfig loads a JSON or YAML configuration file, validates it against the
// embedded schema and applies it on top of DefaultConfig.
func LoadConfig(configFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := jsonschema.CompileString("config.schema.json", configSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File, YAML is turned into the same JSON document
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".yaml", ".yml":
		if b, err = yamlToJSON(b); err != nil {
			return nil, fmt.Errorf("failed to decode config yaml: %w", err)
		}
	}

	// 3. Validate
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	// 4. Unmarshal into Struct, missing keys keep their defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func yamlToJSON(b []byte) ([]byte, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	return json.Marshal(doc)
}
